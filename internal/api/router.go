package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/sipico/nlsql-gateway/internal/logging"
	"github.com/sipico/nlsql-gateway/internal/metrics"
	"github.com/sipico/nlsql-gateway/internal/middleware"
)

// NewRouter creates a Chi router with all gateway endpoints.
// authMiddleware should be auth.Middleware(registry, logger) and
// rateLimitMiddleware ratelimit.Middleware(limiter, logger).
// /health is the only route outside both.
func NewRouter(handler *Handler, authMiddleware, rateLimitMiddleware func(http.Handler) http.Handler, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.HTTPLogging(logger, logging.DefaultBodyAllowlist))
	r.Use(metrics.Middleware)
	r.Use(chimw.Recoverer)
	r.Use(middleware.MaxBodySize(middleware.DefaultMaxBodyBytes))

	r.Get("/health", handler.HandleHealth)

	r.Group(func(r chi.Router) {
		// Admission runs before auth; credential-less requests fall through to auth.
		r.Use(rateLimitMiddleware)
		r.Use(authMiddleware)

		r.Post("/query", handler.HandleQuery)
		r.Get("/customers", handler.HandleListCustomers)
		r.Post("/customers", handler.HandleCreateCustomer)
		r.Get("/ready", handler.HandleReady)
	})

	return r
}
