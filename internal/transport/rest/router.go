package rest

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/heartmarshall/morphodict-backend/internal/config"
	"github.com/heartmarshall/morphodict-backend/internal/transport/dataloader"
	"github.com/heartmarshall/morphodict-backend/internal/transport/middleware"
)

// RouterDeps are the handlers and settings the router mounts.
type RouterDeps struct {
	Health  *HealthHandler
	Search  *SearchHandler
	Loaders *dataloader.Repos
	// Limiter is nil when rate limiting is disabled.
	Limiter   *middleware.RateLimiter
	RateLimit config.RateLimitConfig
	CORS      config.CORSConfig
}

// NewRouter builds the HTTP handler. Probes skip rate limiting and the
// per-request dataloaders that the dictionary routes get.
func NewRouter(logger *slog.Logger, deps RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.CORS(deps.CORS),
	)

	r.Get("/live", deps.Health.Live)
	r.Get("/ready", deps.Health.Ready)
	r.Get("/health", deps.Health.Health)

	r.Group(func(api chi.Router) {
		if deps.Limiter != nil {
			api.Use(deps.Limiter.Limit(deps.RateLimit.PerMinute))
		}
		api.Use(dataloader.Middleware(deps.Loaders))

		deps.Search.RegisterHTTP(api)
	})

	return r
}
