package admin

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sipico/nlsql-gateway/internal/metrics"
)

// NewRouter creates the operator router. It is meant for a listener bound to
// a private address and carries no authentication.
func (h *Handler) NewRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)

	r.Handle("/metrics", metrics.Handler(h.gatherer))
	r.Get("/status", h.HandleStatus)
	r.Get("/loglevel", h.HandleGetLogLevel)
	r.Post("/loglevel", h.HandleSetLogLevel)

	return r
}
