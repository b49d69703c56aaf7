package controllers

import (
	"context"
	"net/http"

	"github.com/corralonsoft/corralon-backend/api/responses"
	"github.com/corralonsoft/corralon-backend/pkg/config"
	pkgerrors "github.com/corralonsoft/corralon-backend/pkg/errors"
	"github.com/corralonsoft/corralon-backend/pkg/logger"
)

// Pinger reports whether the database connection is usable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Corralon-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, db Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Corralon-Env", cfg.App.Env)

		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "database unreachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
