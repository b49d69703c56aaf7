package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corralonsoft/corralon-backend/api/responses"
	"github.com/corralonsoft/corralon-backend/api/validators"
	catalogsvc "github.com/corralonsoft/corralon-backend/internal/catalog"
	pricingsvc "github.com/corralonsoft/corralon-backend/internal/pricing"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	pkgerrors "github.com/corralonsoft/corralon-backend/pkg/errors"
	"github.com/corralonsoft/corralon-backend/pkg/logger"
)

// CreateModel registers a catalog model.
func CreateModel(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload createModelRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		model, err := svc.CreateModel(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, model)
	}
}

// GetModel returns one catalog model.
func GetModel(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modelID, err := validators.ParseUUIDParam(r, "modelID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		model, err := svc.GetModel(r.Context(), modelID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, model)
	}
}

// ListModels returns catalog models, optionally filtered by product line.
func ListModels(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var product *enums.ProductCategory
		if raw := validators.QueryString(r, "product"); raw != "" {
			parsed, err := enums.ParseProductCategory(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product"))
				return
			}
			product = &parsed
		}

		models, err := svc.ListModels(r.Context(), product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, models)
	}
}

// UpdateModel applies a partial update to a catalog model.
func UpdateModel(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modelID, err := validators.ParseUUIDParam(r, "modelID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateModelRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		model, err := svc.UpdateModel(r.Context(), payload.toUpdateInput(modelID))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, model)
	}
}

// DeleteModel removes a catalog model with no stock or order references.
func DeleteModel(svc catalogsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modelID, err := validators.ParseUUIDParam(r, "modelID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteModel(r.Context(), modelID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ListModelTiers returns a model's price tiers, base tier first.
func ListModelTiers(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modelID, err := validators.ParseUUIDParam(r, "modelID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tiers, err := svc.ListTiers(r.Context(), modelID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, tiers)
	}
}

// UpsertModelTier creates or updates one price tier for a model.
func UpsertModelTier(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modelID, err := validators.ParseUUIDParam(r, "modelID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithModelID(ctx, modelID.String())
		}

		var payload upsertTierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		tier, err := svc.UpsertTier(ctx, modelID, pricingsvc.TierSpec{
			Name:             strings.TrimSpace(payload.Name),
			IsBaseTier:       payload.IsBaseTier,
			Cost:             payload.Cost,
			MarginPct:        payload.MarginPct,
			CardSurchargePct: payload.CardSurchargePct,
			RoundingConstant: payload.RoundingConstant,
		})
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, tier)
	}
}

type createModelRequest struct {
	Product             string          `json:"product" validate:"required"`
	Name                string          `json:"name" validate:"required"`
	WidthMM             *int            `json:"width_mm,omitempty" validate:"omitempty,gt=0"`
	LengthMM            *int            `json:"length_mm,omitempty" validate:"omitempty,gt=0"`
	ThicknessMM         *int            `json:"thickness_mm,omitempty" validate:"omitempty,gt=0"`
	UnitsPerSquareMeter decimal.Decimal `json:"units_per_square_meter"`
}

func (req createModelRequest) toCreateInput() (catalogsvc.CreateModelInput, error) {
	product, err := enums.ParseProductCategory(strings.TrimSpace(req.Product))
	if err != nil {
		return catalogsvc.CreateModelInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product")
	}

	return catalogsvc.CreateModelInput{
		Product:             product,
		Name:                strings.TrimSpace(req.Name),
		WidthMM:             req.WidthMM,
		LengthMM:            req.LengthMM,
		ThicknessMM:         req.ThicknessMM,
		UnitsPerSquareMeter: req.UnitsPerSquareMeter,
	}, nil
}

type updateModelRequest struct {
	Name                *string          `json:"name,omitempty"`
	WidthMM             *int             `json:"width_mm,omitempty" validate:"omitempty,gt=0"`
	LengthMM            *int             `json:"length_mm,omitempty" validate:"omitempty,gt=0"`
	ThicknessMM         *int             `json:"thickness_mm,omitempty" validate:"omitempty,gt=0"`
	UnitsPerSquareMeter *decimal.Decimal `json:"units_per_square_meter,omitempty"`
	IsActive            *bool            `json:"is_active,omitempty"`
}

func (req updateModelRequest) toUpdateInput(modelID uuid.UUID) catalogsvc.UpdateModelInput {
	return catalogsvc.UpdateModelInput{
		ModelID:             modelID,
		Name:                req.Name,
		WidthMM:             req.WidthMM,
		LengthMM:            req.LengthMM,
		ThicknessMM:         req.ThicknessMM,
		UnitsPerSquareMeter: req.UnitsPerSquareMeter,
		IsActive:            req.IsActive,
	}
}

type upsertTierRequest struct {
	Name             string          `json:"name" validate:"required"`
	IsBaseTier       bool            `json:"is_base_tier"`
	Cost             decimal.Decimal `json:"cost"`
	MarginPct        decimal.Decimal `json:"margin_pct"`
	CardSurchargePct decimal.Decimal `json:"card_surcharge_pct"`
	RoundingConstant decimal.Decimal `json:"rounding_constant"`
}
