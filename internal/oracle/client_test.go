package oracle

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sipico/nlsql-gateway/internal/testutil/mockoracle"
)

// mockTransport returns a pre-configured HTTP response.
type mockTransport struct {
	statusCode int
	body       []byte
	err        error
}

// RoundTrip implements http.RoundTripper for mockTransport.
func (mt *mockTransport) RoundTrip(*http.Request) (*http.Response, error) {
	if mt.err != nil {
		return nil, mt.err
	}
	return &http.Response{
		StatusCode: mt.statusCode,
		Body:       io.NopCloser(bytes.NewReader(mt.body)),
		Header:     make(http.Header),
	}, nil
}

func TestComplete(t *testing.T) {
	t.Parallel()

	t.Run("returns first choice content", func(t *testing.T) {
		t.Parallel()
		server := mockoracle.New()
		defer server.Close()
		server.SetSQL("show all customers", "SELECT * FROM customers")

		client := NewClient("sk-test", WithBaseURL(server.URL()), WithModel("test-model"))
		got, err := client.Complete(context.Background(), "system prompt", "show all customers")
		require.NoError(t, err)
		assert.Equal(t, `{"sql":"SELECT * FROM customers"}`, got)

		reqs := server.Requests()
		require.Len(t, reqs, 1)
		assert.Equal(t, "test-model", reqs[0].Model)
		require.Len(t, reqs[0].Messages, 2)
		assert.Equal(t, "system", reqs[0].Messages[0].Role)
		assert.Equal(t, "system prompt", reqs[0].Messages[0].Content)
		assert.Equal(t, "show all customers", reqs[0].Question())
	})

	t.Run("trailing slash in base URL", func(t *testing.T) {
		t.Parallel()
		server := mockoracle.New()
		defer server.Close()

		client := NewClient("sk-test", WithBaseURL(server.URL()+"/"))
		_, err := client.Complete(context.Background(), "s", "q")
		require.NoError(t, err)
	})

	t.Run("server error is APIError", func(t *testing.T) {
		t.Parallel()
		server := mockoracle.New()
		defer server.Close()
		server.SetNextError(http.StatusBadGateway, "upstream down", 1)

		client := NewClient("sk-test", WithBaseURL(server.URL()))
		_, err := client.Complete(context.Background(), "s", "q")

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		assert.Equal(t, "upstream down", apiErr.Message)
		assert.Equal(t, "server_error", apiErr.Type)
	})

	t.Run("rate limited", func(t *testing.T) {
		t.Parallel()
		server := mockoracle.New()
		defer server.Close()
		server.SetNextError(http.StatusTooManyRequests, "slow down", 1)

		client := NewClient("sk-test", WithBaseURL(server.URL()))
		_, err := client.Complete(context.Background(), "s", "q")
		assert.ErrorIs(t, err, ErrRateLimited)
	})

	t.Run("context deadline", func(t *testing.T) {
		t.Parallel()
		server := mockoracle.New()
		defer server.Close()
		server.SetDelay(time.Second)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		client := NewClient("sk-test", WithBaseURL(server.URL()))
		_, err := client.Complete(ctx, "s", "q")
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestComplete_ResponseShapes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
		check   func(t *testing.T, err error)
	}{
		{
			name:    "unauthorized",
			status:  http.StatusUnauthorized,
			body:    `{"error":{"message":"bad key"}}`,
			wantErr: ErrUnauthorized,
		},
		{
			name:    "no choices",
			status:  http.StatusOK,
			body:    `{"choices":[]}`,
			wantErr: ErrEmptyResponse,
		},
		{
			name:   "non-JSON error body",
			status: http.StatusInternalServerError,
			body:   `<html>oops</html>`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "Internal Server Error", apiErr.Message)
			},
		},
		{
			name:   "malformed success body",
			status: http.StatusOK,
			body:   `not json`,
			check: func(t *testing.T, err error) {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "failed to decode oracle response")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			client := NewClient("sk-test", WithHTTPClient(&http.Client{
				Transport: &mockTransport{statusCode: tt.status, body: []byte(tt.body)},
			}))
			_, err := client.Complete(context.Background(), "s", "q")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, err)
			}
		})
	}
}

func TestComplete_TransportError(t *testing.T) {
	t.Parallel()
	boom := errors.New("connection refused")
	client := NewClient("sk-test", WithHTTPClient(&http.Client{
		Transport: &mockTransport{err: boom},
	}))

	_, err := client.Complete(context.Background(), "s", "q")
	assert.ErrorIs(t, err, boom)
}

func TestAPIError_Error(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "oracle: status 500: boom", (&APIError{StatusCode: 500, Message: "boom"}).Error())
	assert.Equal(t, "oracle: server_error (status 502): down",
		(&APIError{StatusCode: 502, Type: "server_error", Message: "down"}).Error())
}

func TestNewClient_Defaults(t *testing.T) {
	t.Parallel()
	c := NewClient("k", WithModel(""))
	assert.Equal(t, DefaultBaseURL, c.baseURL)
	assert.Equal(t, DefaultModel, c.model)
	assert.Equal(t, http.DefaultClient, c.httpClient)
}
