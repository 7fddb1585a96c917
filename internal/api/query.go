package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/sipico/nlsql-gateway/internal/query"
	"github.com/sipico/nlsql-gateway/internal/storage"
)

// Response details for /query failures.
const (
	DetailInvalidBody     = "Invalid request body"
	DetailEmptyQuestion   = "Question must not be empty"
	DetailUnsafeSQL       = "Unsafe SQL query detected"
	DetailExecutionPrefix = "Error executing query: "
	DetailInternal        = "Internal server error"
)

// QueryRequest is the POST /query body.
type QueryRequest struct {
	Question string `json:"question"`
}

// HandleQuery translates a question to SQL, validates it and returns the rows.
// POST /query
// Body: {"question": "..."}
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	var req QueryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeDetail(w, http.StatusBadRequest, DetailEmptyQuestion)
		return
	}

	resp, err := h.queries.Run(r.Context(), req.Question)
	if err != nil {
		h.handleQueryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleQueryError maps pipeline errors to HTTP responses.
func (h *Handler) handleQueryError(w http.ResponseWriter, err error) {
	var rejected *query.RejectedError
	var execErr *storage.ExecutionError
	switch {
	case errors.As(err, &rejected):
		writeDetail(w, http.StatusBadRequest, DetailUnsafeSQL)
	case errors.As(err, &execErr):
		writeDetail(w, http.StatusInternalServerError, DetailExecutionPrefix+execErr.Message)
	default:
		h.logger.Error("query.unexpected_error", "error", err)
		writeDetail(w, http.StatusInternalServerError, DetailInternal)
	}
}
