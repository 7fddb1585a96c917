// Package admin serves operator endpoints on the internal listener:
// Prometheus metrics and runtime log level control.
package admin

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
)

// BucketCounter reports how many rate limit buckets are live.
type BucketCounter interface {
	Len() int
}

// Handler provides operator endpoints.
type Handler struct {
	gatherer prometheus.Gatherer
	logLevel *slog.LevelVar
	buckets  BucketCounter
	logger   *slog.Logger
}

// NewHandler creates an admin handler. buckets may be nil.
func NewHandler(gatherer prometheus.Gatherer, logLevel *slog.LevelVar, buckets BucketCounter, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if logLevel == nil {
		logLevel = new(slog.LevelVar)
	}

	return &Handler{
		gatherer: gatherer,
		logLevel: logLevel,
		buckets:  buckets,
		logger:   logger,
	}
}

// HandleStatus reports the current log level and live bucket count.
// GET /status
func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	status := map[string]any{
		"level": levelName(h.logLevel.Level()),
	}
	if h.buckets != nil {
		status["buckets"] = h.buckets.Len()
	}
	writeJSON(w, http.StatusOK, status)
}
