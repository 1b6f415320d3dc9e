package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/luistorres-dev/tiendita-backend/api/responses"
	"github.com/luistorres-dev/tiendita-backend/pkg/config"
	pkgerrors "github.com/luistorres-dev/tiendita-backend/pkg/errors"
	"github.com/luistorres-dev/tiendita-backend/pkg/logger"
)

const readinessTimeout = 3 * time.Second

// Pinger is the probe surface shared by the database and redis clients.
type Pinger interface {
	Ping(context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tiendita-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

func HealthReady(cfg *config.Config, logg *logger.Logger, probes map[string]Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Tiendita-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := map[string]string{}
		failed := false
		for name, probe := range probes {
			if probe == nil {
				checks[name] = "skipped"
				continue
			}
			if err := probe.Ping(ctx); err != nil {
				checks[name] = "down"
				failed = true
				if logg != nil {
					logg.Error(ctx, "readiness probe failed: "+name, err)
				}
				continue
			}
			checks[name] = "up"
		}

		if failed {
			responses.WriteError(ctx, logg, w,
				pkgerrors.New(pkgerrors.CodeDependency, "dependency not ready").WithDetails(checks))
			return
		}

		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
