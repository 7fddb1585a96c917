package middleware

import (
	"encoding/json"
	"net/http"
)

// DefaultMaxBodyBytes is the request body cap for API routes.
const DefaultMaxBodyBytes int64 = 1 << 20

// DetailBodyTooLarge is the error detail for oversized requests.
const DetailBodyTooLarge = "Request body too large"

// MaxBodySize limits request bodies to maxBytes. Requests that declare a
// larger Content-Length are rejected with 413 before the handler runs;
// others fail when the handler reads past the limit.
func MaxBodySize(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				//nolint:errcheck
				json.NewEncoder(w).Encode(map[string]string{"detail": DetailBodyTooLarge})
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}
