package mockoracle

import (
	"bytes"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func post(t *testing.T, s *Server, question string, bearer bool) *http.Response {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"model": "test-model",
		"messages": []map[string]string{
			{"role": "system", "content": "translate"},
			{"role": "user", "content": question},
		},
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, s.URL()+"/chat/completions", bytes.NewReader(body))
	require.NoError(t, err)
	if bearer {
		req.Header.Set("Authorization", "Bearer sk-test")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func content(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	var out struct {
		Choices []struct {
			Message Message `json:"message"`
		} `json:"choices"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Choices, 1)
	return out.Choices[0].Message.Content
}

func TestServer_RepliesFromTable(t *testing.T) {
	t.Parallel()
	s := New()
	defer s.Close()

	s.SetSQL("Show all customers", "SELECT * FROM customers")

	resp := post(t, s, "  show ALL customers ", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"sql":"SELECT * FROM customers"}`, content(t, resp))

	reqs := s.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "test-model", reqs[0].Model)
	assert.Equal(t, "  show ALL customers ", reqs[0].Question())
}

func TestServer_DefaultReplyIsTODO(t *testing.T) {
	t.Parallel()
	s := New()
	defer s.Close()

	resp := post(t, s, "unknown", true)
	assert.Equal(t, `{"sql":"-- TODO"}`, content(t, resp))
}

func TestServer_RequiresBearer(t *testing.T) {
	t.Parallel()
	s := New()
	defer s.Close()

	resp := post(t, s, "q", false)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, s.RequestCount())
}

func TestServer_SetNextError(t *testing.T) {
	t.Parallel()
	s := New()
	defer s.Close()

	s.SetNextError(http.StatusServiceUnavailable, "overloaded", 2)

	for i := 0; i < 2; i++ {
		resp := post(t, s, "q", true)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		assert.Equal(t, "overloaded", body.Error.Message)
	}

	resp := post(t, s, "q", true)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	assert.Equal(t, 3, s.RequestCount())
}

func TestServer_Reset(t *testing.T) {
	t.Parallel()
	s := New()
	defer s.Close()

	s.SetSQL("q", "SELECT 1")
	s.SetNextError(http.StatusInternalServerError, "boom", 1)
	s.Reset()

	resp := post(t, s, "q", true)
	assert.Equal(t, `{"sql":"-- TODO"}`, content(t, resp))
	assert.Equal(t, 1, s.RequestCount())
}

func TestLoadDemo(t *testing.T) {
	t.Parallel()
	s := New()
	defer s.Close()
	s.LoadDemo()

	resp := post(t, s, "show all customers", true)
	assert.Equal(t, `{"sql":"SELECT * FROM customers"}`, content(t, resp))

	resp = post(t, s, "delete all customers", true)
	assert.Equal(t, `{"sql":"-- BLOCKED"}`, content(t, resp))
}
