package oracle

import (
	"errors"
	"fmt"
)

// APIError represents a structured error from the chat-completions API.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("oracle: %s (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("oracle: status %d: %s", e.StatusCode, e.Message)
}

// Sentinel errors for common API error cases.
var (
	ErrUnauthorized  = errors.New("oracle: unauthorized (invalid API key)")
	ErrRateLimited   = errors.New("oracle: rate limited")
	ErrEmptyResponse = errors.New("oracle: response contained no choices")
)
