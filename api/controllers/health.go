package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/dmuriuki/agrimarket-backend/api/responses"
	"github.com/dmuriuki/agrimarket-backend/pkg/config"
	"github.com/dmuriuki/agrimarket-backend/pkg/db"
	pkgerrors "github.com/dmuriuki/agrimarket-backend/pkg/errors"
	"github.com/dmuriuki/agrimarket-backend/pkg/logger"
	"github.com/dmuriuki/agrimarket-backend/pkg/redis"
	"github.com/dmuriuki/agrimarket-backend/pkg/storage/gcs"
)

const readinessTimeout = 5 * time.Second

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AgriMarket-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings every hard dependency and reports which one failed.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP db.Pinger, redisP redis.Pinger, gcsP gcs.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-AgriMarket-Env", cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		defer cancel()

		checks := []struct {
			name   string
			pinger interface {
				Ping(context.Context) error
			}
		}{
			{"database", dbP},
			{"redis", redisP},
			{"gcs", gcsP},
		}

		statuses := map[string]string{}
		for _, check := range checks {
			if check.pinger == nil {
				statuses[check.name] = "skipped"
				continue
			}
			if err := check.pinger.Ping(ctx); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, check.name+" unavailable"))
				return
			}
			statuses[check.name] = "ok"
		}

		responses.WriteSuccess(w, map[string]any{
			"status": "ready",
			"checks": statuses,
		})
	}
}
