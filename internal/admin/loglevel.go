package admin

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sipico/nlsql-gateway/internal/logging"
)

// SetLogLevelRequest is the POST /loglevel body.
type SetLogLevelRequest struct {
	Level string `json:"level"`
}

// HandleGetLogLevel returns the runtime log level
// GET /loglevel
func (h *Handler) HandleGetLogLevel(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"level": levelName(h.logLevel.Level())})
}

// HandleSetLogLevel changes runtime log level
// POST /loglevel
// Body: {"level": "debug|info|warn|error"}
func (h *Handler) HandleSetLogLevel(w http.ResponseWriter, r *http.Request) {
	var req SetLogLevelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Invalid JSON"})
		return
	}

	level, err := logging.ParseLevel(req.Level)
	if err != nil || req.Level == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"detail": "Invalid level (must be: debug, info, warn, error)",
		})
		return
	}

	h.logLevel.Set(level)
	h.logger.Info("log level changed", "new_level", levelName(level))

	writeJSON(w, http.StatusOK, map[string]string{"level": levelName(level)})
}

func levelName(l slog.Level) string {
	switch {
	case l <= slog.LevelDebug:
		return "debug"
	case l <= slog.LevelInfo:
		return "info"
	case l <= slog.LevelWarn:
		return "warn"
	default:
		return "error"
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // Response write errors are unrecoverable
	_ = json.NewEncoder(w).Encode(data)
}
