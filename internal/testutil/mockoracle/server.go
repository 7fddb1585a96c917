// Package mockoracle provides a scripted chat-completions server for testing
// the translator without a real language model.
package mockoracle

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
)

// Message is a chat message as received by the mock.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Request is a chat-completions request recorded by the mock.
type Request struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Question returns the content of the last user message.
func (r Request) Question() string {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Role == "user" {
			return r.Messages[i].Content
		}
	}
	return ""
}

// Failure is a scheduled error response.
type Failure struct {
	Status  int
	Message string
}

// Handler serves POST /chat/completions from a question->reply table.
type Handler struct {
	router chi.Router

	mu           sync.Mutex
	replies      map[string]string
	defaultReply string
	failures     []Failure
	delay        time.Duration
	requests     []Request
}

// NewHandler creates a handler whose unknown questions get a "-- TODO" reply.
func NewHandler() *Handler {
	h := &Handler{
		replies:      make(map[string]string),
		defaultReply: SQLReply("-- TODO"),
	}

	r := chi.NewRouter()
	r.Post("/chat/completions", h.handleCompletion)
	r.Post("/v1/chat/completions", h.handleCompletion)
	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	h.router = r

	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

// SQLReply builds the JSON content the translator expects for a statement.
func SQLReply(sql string) string {
	b, _ := json.Marshal(map[string]string{"sql": sql})
	return string(b)
}

// SetReply sets the raw message content returned for a question.
// Questions are matched case-insensitively after trimming.
func (h *Handler) SetReply(question, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.replies[normalize(question)] = content
}

// SetSQL is SetReply with content built by SQLReply.
func (h *Handler) SetSQL(question, sql string) {
	h.SetReply(question, SQLReply(sql))
}

// SetDefaultReply sets the content returned for unknown questions.
func (h *Handler) SetDefaultReply(content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.defaultReply = content
}

// SetNextError makes the next count requests fail with the given status.
func (h *Handler) SetNextError(status int, message string, count int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i := 0; i < count; i++ {
		h.failures = append(h.failures, Failure{Status: status, Message: message})
	}
}

// SetDelay delays every reply, for exercising client timeouts.
func (h *Handler) SetDelay(d time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.delay = d
}

// Requests returns a copy of the requests received so far.
func (h *Handler) Requests() []Request {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Request, len(h.requests))
	copy(out, h.requests)
	return out
}

// RequestCount returns the number of requests received so far.
func (h *Handler) RequestCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.requests)
}

// Reset clears replies, failures, delay and recorded requests.
func (h *Handler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.replies = make(map[string]string)
	h.defaultReply = SQLReply("-- TODO")
	h.failures = nil
	h.delay = 0
	h.requests = nil
}

func (h *Handler) handleCompletion(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") {
		writeError(w, http.StatusUnauthorized, "invalid_request_error", "Missing bearer token")
		return
	}

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request_error", "Invalid JSON body")
		return
	}

	h.mu.Lock()
	h.requests = append(h.requests, req)
	delay := h.delay
	var failure *Failure
	if len(h.failures) > 0 {
		f := h.failures[0]
		h.failures = h.failures[1:]
		failure = &f
	}
	content, ok := h.replies[normalize(req.Question())]
	if !ok {
		content = h.defaultReply
	}
	h.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}

	if failure != nil {
		writeError(w, failure.Status, "server_error", failure.Message)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"object": "chat.completion",
		"model":  req.Model,
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message": map[string]string{
				"role":    "assistant",
				"content": content,
			},
		}},
	})
}

func normalize(question string) string {
	return strings.ToLower(strings.TrimSpace(question))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	//nolint:errcheck
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, errType, message string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]string{
			"message": message,
			"type":    errType,
		},
	})
}

// Server is a Handler running on an httptest.Server.
type Server struct {
	*Handler
	srv *httptest.Server
}

// New starts a mock oracle on a local test listener.
func New() *Server {
	h := NewHandler()
	return &Server{Handler: h, srv: httptest.NewServer(h)}
}

// URL returns the base URL to pass to oracle.WithBaseURL.
func (s *Server) URL() string {
	return s.srv.URL
}

// Close shuts the server down.
func (s *Server) Close() {
	s.srv.Close()
}
