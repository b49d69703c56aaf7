package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corralonsoft/corralon-backend/api/middleware"
	"github.com/corralonsoft/corralon-backend/api/responses"
	"github.com/corralonsoft/corralon-backend/api/validators"
	stocksvc "github.com/corralonsoft/corralon-backend/internal/stock"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	pkgerrors "github.com/corralonsoft/corralon-backend/pkg/errors"
	"github.com/corralonsoft/corralon-backend/pkg/logger"
)

// CreateStock starts inventory tracking for a catalog model.
func CreateStock(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "stock service unavailable"))
			return
		}

		var payload createStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, record)
	}
}

// GetStock returns one stock record with its ledger and availability.
func GetStock(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stockID, err := validators.ParseUUIDParam(r, "stockID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithStockID(ctx, stockID.String())
		}

		detail, err := svc.Get(ctx, stockID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, detail)
	}
}

// ListStock returns every stock record with its catalog model preloaded.
func ListStock(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, records)
	}
}

// UpdateStockMetadata changes descriptive fields without touching quantity.
func UpdateStockMetadata(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stockID, err := validators.ParseUUIDParam(r, "stockID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateStockMetadataRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput(stockID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		record, err := svc.UpdateMetadata(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, record)
	}
}

// AddStock records a positive inbound movement.
func AddStock(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return movementHandler(svc.AddStock, logg)
}

// SubtractStock records an outbound movement after checking availability.
func SubtractStock(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return movementHandler(svc.SubtractStock, logg)
}

// OverwriteStock replaces the materialized quantity. Only allowed while the
// record is empty or inactive.
func OverwriteStock(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stockID, err := validators.ParseUUIDParam(r, "stockID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload overwriteStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.OverwriteQuantity(r.Context(), stocksvc.OverwriteInput{
			StockID:     stockID,
			Quantity:    payload.Quantity,
			Responsible: resolveResponsible(r, payload.Responsible),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ReconcileStock rebuilds one record's quantity from delivered orders.
func ReconcileStock(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stockID, err := validators.ParseUUIDParam(r, "stockID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithStockID(ctx, stockID.String())
		}

		result, err := svc.Reconcile(ctx, stockID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ReconcileAllStock reconciles every stock record, isolating per-record
// failures into the report.
func ReconcileAllStock(svc stocksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report, err := svc.ReconcileAll(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, report)
	}
}

func movementHandler(op func(ctx context.Context, input stocksvc.MovementInput) (*stocksvc.MutationResult, error), logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stockID, err := validators.ParseUUIDParam(r, "stockID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload stockMovementRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithStockID(ctx, stockID.String())
		}

		result, err := op(ctx, stocksvc.MovementInput{
			StockID:     stockID,
			Quantity:    payload.Quantity,
			Responsible: resolveResponsible(r, payload.Responsible),
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type createStockRequest struct {
	ModelID             string          `json:"model_id" validate:"required"`
	Unit                string          `json:"unit" validate:"required"`
	InitialQuantity     decimal.Decimal `json:"initial_quantity"`
	DailyProductionRate decimal.Decimal `json:"daily_production_rate"`
	Responsible         string          `json:"responsible"`
}

func (req createStockRequest) toCreateInput(r *http.Request) (stocksvc.CreateStockInput, error) {
	modelID, err := uuid.Parse(req.ModelID)
	if err != nil {
		return stocksvc.CreateStockInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid model id")
	}

	unit, err := enums.ParseStockUnit(strings.TrimSpace(req.Unit))
	if err != nil {
		return stocksvc.CreateStockInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit")
	}

	return stocksvc.CreateStockInput{
		ModelID:             modelID,
		Unit:                unit,
		InitialQuantity:     req.InitialQuantity,
		DailyProductionRate: req.DailyProductionRate,
		Responsible:         resolveResponsible(r, req.Responsible),
	}, nil
}

type updateStockMetadataRequest struct {
	Unit                *string          `json:"unit,omitempty"`
	DailyProductionRate *decimal.Decimal `json:"daily_production_rate,omitempty"`
	IsActive            *bool            `json:"is_active,omitempty"`
}

func (req updateStockMetadataRequest) toUpdateInput(stockID uuid.UUID) (stocksvc.UpdateMetadataInput, error) {
	input := stocksvc.UpdateMetadataInput{
		StockID:             stockID,
		DailyProductionRate: req.DailyProductionRate,
		IsActive:            req.IsActive,
	}

	if req.Unit != nil {
		unit, err := enums.ParseStockUnit(strings.TrimSpace(*req.Unit))
		if err != nil {
			return stocksvc.UpdateMetadataInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid unit")
		}
		input.Unit = &unit
	}

	return input, nil
}

type stockMovementRequest struct {
	Quantity    decimal.Decimal `json:"quantity"`
	Responsible string          `json:"responsible"`
}

type overwriteStockRequest struct {
	Quantity    decimal.Decimal `json:"quantity"`
	Responsible string          `json:"responsible"`
}

// resolveResponsible prefers the explicit body field, falling back to the
// authenticated user's display name.
func resolveResponsible(r *http.Request, explicit string) string {
	if trimmed := strings.TrimSpace(explicit); trimmed != "" {
		return trimmed
	}
	if name, ok := middleware.ResponsibleFromContext(r.Context()); ok {
		return name
	}
	return ""
}
