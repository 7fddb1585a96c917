package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipico/nlsql-gateway/internal/testutil/mockoracle"
)

func TestGetPort(t *testing.T) {
	tests := []struct {
		name     string
		port     string
		expected string
	}{
		{"default port when not set", "", "8081"},
		{"custom port 9000", "9000", "9000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("PORT", tt.port)
			assert.Equal(t, tt.expected, getPort())
		})
	}
}

func TestCreateHTTPServer(t *testing.T) {
	h := createHandler()
	srv := createHTTPServer("9000", h)
	assert.Equal(t, ":9000", srv.Addr)
	assert.NotNil(t, srv.Handler)
	assert.NotZero(t, srv.ReadHeaderTimeout)
}

func TestCreateHandler_ServesDemoReplies(t *testing.T) {
	h := createHandler()

	body := `{"model":"gpt-4o","messages":[{"role":"system","content":"x"},{"role":"user","content":"Show all customers"}]}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat/completions", strings.NewReader(body))
	req.Header.Set("Authorization", "Bearer sk-local")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Choices, 1)
	assert.JSONEq(t, mockoracle.SQLReply("SELECT * FROM customers"), resp.Choices[0].Message.Content)
}

func TestDoHealthCheck(t *testing.T) {
	srv := httptest.NewServer(createHandler())
	defer srv.Close()

	assert.Equal(t, 0, doHealthCheck(srv.URL+"/health"))
	assert.Equal(t, 1, doHealthCheck(srv.URL+"/missing"))
	assert.Equal(t, 1, doHealthCheck("http://127.0.0.1:1/health"))
}

func TestSetupShutdownHandler(t *testing.T) {
	srv := createHTTPServer("8081", createHandler())
	done := setupShutdownHandler(srv, slog.New(slog.NewJSONHandler(io.Discard, nil)))
	require.NotNil(t, done)

	select {
	case <-done:
		t.Error("expected done channel to be open initially")
	default:
	}
}
