package storage

import "errors"

var (
	// ErrDuplicate is returned when attempting to create a resource that already exists.
	ErrDuplicate = errors.New("resource already exists")

	// ErrNotFound is returned when a resource is not found.
	ErrNotFound = errors.New("resource not found")
)

// ExecutionError reports that the store failed to run a statement that
// passed validation.
type ExecutionError struct {
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return e.Message
}

// Unwrap returns the underlying engine error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

func executionError(err error) *ExecutionError {
	return &ExecutionError{Message: err.Error(), Err: err}
}
