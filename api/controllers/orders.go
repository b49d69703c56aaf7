package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/corralonsoft/corralon-backend/api/responses"
	"github.com/corralonsoft/corralon-backend/api/validators"
	ordersvc "github.com/corralonsoft/corralon-backend/internal/orders"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	pkgerrors "github.com/corralonsoft/corralon-backend/pkg/errors"
	"github.com/corralonsoft/corralon-backend/pkg/logger"
	"github.com/corralonsoft/corralon-backend/pkg/pagination"
)

// CreateOrder registers a customer order with its lines.
func CreateOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "order service unavailable"))
			return
		}

		var payload createOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.CreateOrder(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// ChangeOrderStatus moves an order to a new status.
func ChangeOrderStatus(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload changeOrderStatusRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseOrderStatus(strings.TrimSpace(payload.Status))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
			return
		}

		order, err := svc.ChangeStatus(r.Context(), ordersvc.ChangeStatusInput{
			OrderID: orderID,
			Status:  status,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// GetOrder returns one order with its lines.
func GetOrder(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		orderID, err := validators.ParseUUIDParam(r, "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.GetOrder(r.Context(), orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, order)
	}
}

// ListOrders returns orders newest first, optionally filtered by status.
// Cursor-paginated via the limit and cursor query parameters.
func ListOrders(svc ordersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var status *enums.OrderStatus
		if raw := validators.QueryString(r, "status"); raw != "" {
			parsed, err := enums.ParseOrderStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status"))
				return
			}
			status = &parsed
		}

		params := pagination.Params{Cursor: validators.QueryString(r, "cursor")}
		if raw := validators.QueryString(r, "limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid limit"))
				return
			}
			params.Limit = limit
		}

		page, err := svc.ListOrders(r.Context(), status, params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

type createOrderRequest struct {
	CustomerName string                   `json:"customer_name" validate:"required"`
	Status       string                   `json:"status,omitempty"`
	Notes        *string                  `json:"notes,omitempty"`
	Lines        []createOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
}

type createOrderLineRequest struct {
	StockID     string           `json:"stock_id" validate:"required"`
	Quantity    decimal.Decimal  `json:"quantity"`
	PriceTierID *string          `json:"price_tier_id,omitempty"`
	UnitPrice   *decimal.Decimal `json:"unit_price,omitempty"`
}

func (req createOrderRequest) toCreateInput() (ordersvc.CreateOrderInput, error) {
	input := ordersvc.CreateOrderInput{
		CustomerName: strings.TrimSpace(req.CustomerName),
		Notes:        req.Notes,
	}

	if raw := strings.TrimSpace(req.Status); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return ordersvc.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		input.Status = status
	}

	lines := make([]ordersvc.OrderLineInput, 0, len(req.Lines))
	for _, line := range req.Lines {
		stockID, err := uuid.Parse(strings.TrimSpace(line.StockID))
		if err != nil {
			return ordersvc.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stock id")
		}

		converted := ordersvc.OrderLineInput{
			StockID:   stockID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		}

		if line.PriceTierID != nil {
			tierID, err := uuid.Parse(strings.TrimSpace(*line.PriceTierID))
			if err != nil {
				return ordersvc.CreateOrderInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid price tier id")
			}
			converted.PriceTierID = &tierID
		}

		lines = append(lines, converted)
	}
	input.Lines = lines

	return input, nil
}

type changeOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}
