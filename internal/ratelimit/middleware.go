package ratelimit

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sipico/nlsql-gateway/internal/auth"
	"github.com/sipico/nlsql-gateway/internal/metrics"
)

// RetryAfterSeconds is the static retry hint sent with 429 responses.
// It is not derived from the bucket's actual deficit.
const RetryAfterSeconds = 60

// DetailExceeded is the 429 response detail.
const DetailExceeded = "Rate limit exceeded. Please try again later."

// rejection is the 429 response body.
type rejection struct {
	Detail     string `json:"detail"`
	RetryAfter int    `json:"retry_after"`
}

// Middleware returns Chi-compatible middleware applying per-key admission control.
// Requests without an API key pass through untouched; the auth middleware
// rejects them.
func Middleware(l *Limiter, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey := r.Header.Get(auth.HeaderName)
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}

			if l.Allow(apiKey) {
				next.ServeHTTP(w, r)
				return
			}

			metrics.RecordRateLimited()
			logger.Warn("rate_limit.exceeded",
				"api_key_hash", auth.HashKey(apiKey),
				"path", r.URL.Path,
			)

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds))
			w.WriteHeader(http.StatusTooManyRequests)
			//nolint:errcheck // Response write errors are unrecoverable
			_ = json.NewEncoder(w).Encode(rejection{
				Detail:     DetailExceeded,
				RetryAfter: RetryAfterSeconds,
			})
		})
	}
}
