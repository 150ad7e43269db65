package controllers

import (
	"context"
	"net/http"

	"github.com/vintrack/vintrack-backend/api/responses"
	"github.com/vintrack/vintrack-backend/pkg/config"
	pkgerrors "github.com/vintrack/vintrack-backend/pkg/errors"
	"github.com/vintrack/vintrack-backend/pkg/logger"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Vintrack-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, store Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Vintrack-Env", cfg.App.Env)

		if store != nil {
			if err := store.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "database not reachable"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
