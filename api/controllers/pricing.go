package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/corralonsoft/corralon-backend/api/responses"
	"github.com/corralonsoft/corralon-backend/api/validators"
	pricingsvc "github.com/corralonsoft/corralon-backend/internal/pricing"
	"github.com/corralonsoft/corralon-backend/pkg/enums"
	pkgerrors "github.com/corralonsoft/corralon-backend/pkg/errors"
	"github.com/corralonsoft/corralon-backend/pkg/logger"
)

// BulkPricing classifies every active model in a product line and, unless the
// caller asked for a preview, writes the resulting tiers. Preview and commit
// take the same payload so the client can resubmit the previewed input
// unchanged.
func BulkPricing(svc pricingsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "pricing service unavailable"))
			return
		}

		var payload bulkPricingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toBulkInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if payload.Preview {
			result, err := svc.Preview(r.Context(), input)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, result)
			return
		}

		result, err := svc.Commit(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

type bulkPricingRequest struct {
	Product          string                     `json:"product" validate:"required"`
	Mode             string                     `json:"mode" validate:"required"`
	Preview          bool                       `json:"preview"`
	Spec             pricingsvc.PriceUpdateSpec `json:"spec"`
	ExcludedModelIDs []string                   `json:"excluded_model_ids,omitempty"`
}

func (req bulkPricingRequest) toBulkInput() (pricingsvc.BulkInput, error) {
	product, err := enums.ParseProductCategory(strings.TrimSpace(req.Product))
	if err != nil {
		return pricingsvc.BulkInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product")
	}

	mode, err := enums.ParseBulkUpdateMode(strings.TrimSpace(req.Mode))
	if err != nil {
		return pricingsvc.BulkInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid mode")
	}

	excluded := make([]uuid.UUID, 0, len(req.ExcludedModelIDs))
	for _, raw := range req.ExcludedModelIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return pricingsvc.BulkInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid excluded model id")
		}
		excluded = append(excluded, id)
	}

	return pricingsvc.BulkInput{
		Product:          product,
		Mode:             mode,
		Spec:             req.Spec,
		ExcludedModelIDs: excluded,
	}, nil
}
