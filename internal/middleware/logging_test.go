package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipico/nlsql-gateway/internal/logging"
)

func newTestLogger(level slog.Level) (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level})), &buf
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var lines []map[string]any
	for _, raw := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if raw == "" {
			continue
		}
		var m map[string]any
		require.NoError(t, json.Unmarshal([]byte(raw), &m))
		lines = append(lines, m)
	}
	return lines
}

func echoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write(body)
	})
}

func TestHTTPLogging_DebugLogsRequestAndResponse(t *testing.T) {
	t.Parallel()
	logger, buf := newTestLogger(slog.LevelDebug)
	h := RequestID(HTTPLogging(logger, logging.DefaultBodyAllowlist)(echoHandler()))

	req := httptest.NewRequest(http.MethodPost, "/query?x=1", strings.NewReader(`{"question":"list customers"}`))
	req.Header.Set("X-API-Key", "super-secret-key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"question":"list customers"}`, rec.Body.String())
	assert.NotContains(t, buf.String(), "super-secret-key")

	lines := logLines(t, buf)
	require.Len(t, lines, 2)

	reqLine := lines[0]
	assert.Equal(t, "http.request", reqLine["msg"])
	assert.Equal(t, "POST", reqLine["method"])
	assert.Equal(t, "/query", reqLine["path"])
	assert.Equal(t, "x=1", reqLine["query"])
	assert.NotEmpty(t, reqLine["request_id"])
	assert.Contains(t, reqLine["body"], "list customers")
	headers, ok := reqLine["headers"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "sha256:"+logging.Fingerprint("super-secret-key"), headers["X-Api-Key"])

	respLine := lines[1]
	assert.Equal(t, "http.response", respLine["msg"])
	assert.EqualValues(t, http.StatusCreated, respLine["status_code"])
	assert.Equal(t, reqLine["request_id"], respLine["request_id"])
	assert.Contains(t, respLine, "duration_ms")
}

func TestHTTPLogging_MasksNonAllowlistedFields(t *testing.T) {
	t.Parallel()
	logger, buf := newTestLogger(slog.LevelDebug)
	h := HTTPLogging(logger, logging.DefaultBodyAllowlist)(echoHandler())

	req := httptest.NewRequest(http.MethodPost, "/customers", strings.NewReader(`{"name":"Ada","email":"ada@example.com"}`))
	h.ServeHTTP(httptest.NewRecorder(), req)

	assert.NotContains(t, buf.String(), "ada@example.com")
	assert.Contains(t, buf.String(), logging.Redacted)
}

func TestHTTPLogging_InfoLevelIsSilent(t *testing.T) {
	t.Parallel()
	logger, buf := newTestLogger(slog.LevelInfo)
	h := HTTPLogging(logger, nil)(echoHandler())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(`{"question":"q"}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"question":"q"}`, rec.Body.String())
	assert.Empty(t, buf.String())
}

func TestHTTPLogging_BinaryBody(t *testing.T) {
	t.Parallel()
	logger, buf := newTestLogger(slog.LevelDebug)
	h := HTTPLogging(logger, nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte{0xff, 0xfe, 0x00})
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	lines := logLines(t, buf)
	require.Len(t, lines, 2)
	assert.Equal(t, "[BINARY: 3 bytes]", lines[1]["body"])
	assert.EqualValues(t, http.StatusOK, lines[1]["status_code"])
}

func TestResponseRecorder_FirstStatusWins(t *testing.T) {
	t.Parallel()
	inner := httptest.NewRecorder()
	rec := &responseRecorder{ResponseWriter: inner, statusCode: http.StatusOK, body: new(bytes.Buffer)}
	rec.WriteHeader(http.StatusBadRequest)
	rec.WriteHeader(http.StatusInternalServerError)
	assert.Equal(t, http.StatusBadRequest, rec.statusCode)
}
