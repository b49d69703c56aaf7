package controllers

import (
	"net/http"

	"github.com/corralonsoft/corralon-backend/api/responses"
	"github.com/corralonsoft/corralon-backend/api/validators"
	reservationsvc "github.com/corralonsoft/corralon-backend/internal/reservations"
	pkgerrors "github.com/corralonsoft/corralon-backend/pkg/errors"
	"github.com/corralonsoft/corralon-backend/pkg/logger"
)

// StockAvailability returns the reserved/pending/available breakdown for one
// stock record.
func StockAvailability(svc reservationsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "reservation service unavailable"))
			return
		}

		stockID, err := validators.ParseUUIDParam(r, "stockID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithStockID(ctx, stockID.String())
		}

		breakdown, err := svc.Availability(ctx, stockID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		responses.WriteSuccess(w, breakdown)
	}
}
