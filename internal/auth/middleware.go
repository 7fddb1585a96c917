package auth

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/sipico/nlsql-gateway/internal/metrics"
)

// Response details for authentication failures.
const (
	DetailMissingKey = "API key is missing"
	DetailInvalidKey = "Invalid API key"
)

// Middleware returns Chi-compatible middleware for API key validation.
// On success the key is attached to the request context.
func Middleware(reg *Registry, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(HeaderName)

			err := reg.Authenticate(apiKey)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(WithCredential(r.Context(), apiKey)))
			case errors.Is(err, ErrMissingKey):
				metrics.RecordAuthFailure("missing_key")
				writeDetail(w, http.StatusUnauthorized, DetailMissingKey)
			default:
				metrics.RecordAuthFailure("invalid_key")
				logger.Warn("auth.invalid_key",
					"api_key_hash", HashKey(apiKey),
					"path", r.URL.Path,
				)
				writeDetail(w, http.StatusUnauthorized, DetailInvalidKey)
			}
		})
	}
}

// writeDetail writes a {"detail": message} JSON error response.
func writeDetail(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck // Response write errors are unrecoverable
	_ = json.NewEncoder(w).Encode(map[string]string{"detail": message})
}
