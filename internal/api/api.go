// Package api implements the gateway's HTTP surface.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sipico/nlsql-gateway/internal/middleware"
	"github.com/sipico/nlsql-gateway/internal/query"
	"github.com/sipico/nlsql-gateway/internal/storage"
)

// QueryRunner runs a natural-language question through the pipeline.
type QueryRunner interface {
	Run(ctx context.Context, question string) (*query.Response, error)
}

// CustomerStore defines the storage operations needed by the customer and
// readiness handlers.
type CustomerStore interface {
	CreateCustomer(ctx context.Context, c storage.NewCustomer) (*storage.Customer, error)
	ListCustomers(ctx context.Context) ([]*storage.Customer, error)
	Ping(ctx context.Context) error
}

// Handler serves the gateway routes.
type Handler struct {
	queries QueryRunner
	store   CustomerStore
	logger  *slog.Logger
}

// NewHandler creates a new Handler.
// If logger is nil, slog.Default() will be used.
func NewHandler(queries QueryRunner, store CustomerStore, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		queries: queries,
		store:   store,
		logger:  logger,
	}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Default().Error("failed to encode JSON response", "error", err)
	}
}

// writeDetail writes a {"detail": message} JSON error response.
func writeDetail(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"detail": message})
}

// decodeBody decodes the JSON request body into v, writing a 400 (or 413 when
// the body limit was hit) and returning false on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil {
		return true
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeDetail(w, http.StatusRequestEntityTooLarge, middleware.DetailBodyTooLarge)
		return false
	}
	writeDetail(w, http.StatusBadRequest, DetailInvalidBody)
	return false
}
