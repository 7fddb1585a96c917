package auth

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()
	reg := NewRegistry([]string{"test_key"})

	tests := []struct {
		name       string
		key        string
		setHeader  bool
		wantStatus int
		wantDetail string
		wantCalled bool
	}{
		{"missing header", "", false, http.StatusUnauthorized, DetailMissingKey, false},
		{"empty header", "", true, http.StatusUnauthorized, DetailMissingKey, false},
		{"invalid key", "invalid_key", true, http.StatusUnauthorized, DetailInvalidKey, false},
		{"valid key", "test_key", true, http.StatusOK, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			called := false
			var gotCredential string
			handler := Middleware(reg, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				gotCredential = CredentialFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodPost, "/query", nil)
			if tt.setHeader {
				req.Header.Set(HeaderName, tt.key)
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantCalled, called)
			if tt.wantCalled {
				assert.Equal(t, tt.key, gotCredential)
				return
			}

			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, map[string]string{"detail": tt.wantDetail}, body)
		})
	}
}

func TestCredentialFromContext_Unauthenticated(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, CredentialFromContext(req.Context()))
	assert.Equal(t, "k", CredentialFromContext(WithCredential(req.Context(), "k")))
}
