package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/luistorres-dev/tiendita-backend/api/controllers"
	"github.com/luistorres-dev/tiendita-backend/api/middleware"
	"github.com/luistorres-dev/tiendita-backend/internal/inventory"
	"github.com/luistorres-dev/tiendita-backend/pkg/config"
	"github.com/luistorres-dev/tiendita-backend/pkg/logger"
	pkgredis "github.com/luistorres-dev/tiendita-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP controllers.Pinger,
	redisP controllers.Pinger,
	idempotencyStore pkgredis.IdempotencyStore,
	inventoryService inventory.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbP,
			"redis":    redisP,
		}))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/inventory", func(r chi.Router) {
		r.Use(middleware.Idempotency(idempotencyStore, cfg.Idempotency.TTL, logg))

		r.Route("/variants/{variantID}", func(r chi.Router) {
			r.Get("/", controllers.GetVariant(inventoryService, logg))
			r.Get("/adjustments", controllers.ListVariantMovements(inventoryService, logg))
			r.Post("/adjustments", controllers.AdjustVariantStock(inventoryService, logg))
		})
	})

	return r
}
