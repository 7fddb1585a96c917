// Package mockstore provides a configurable mock implementation of storage.Storage for testing.
//
// The MockStorage type uses function fields for each method, allowing tests to customize behavior
// as needed while providing sensible defaults for methods that aren't customized.
package mockstore

import (
	"context"
	"sync"
	"time"

	"github.com/sipico/nlsql-gateway/internal/storage"
)

// MockStorage is a configurable mock implementation of storage.Storage.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a sensible default value.
type MockStorage struct {
	// Customer operations
	CreateCustomerFunc func(ctx context.Context, c storage.NewCustomer) (*storage.Customer, error)
	ListCustomersFunc  func(ctx context.Context) ([]*storage.Customer, error)

	// Query execution
	QueryReadOnlyFunc func(ctx context.Context, sql string) ([]storage.Row, error)

	// Lifecycle
	PingFunc  func(ctx context.Context) error
	CloseFunc func() error

	mu      sync.Mutex
	queries []string
}

// CreateCustomer creates a customer. The default echoes the input with ID 1.
func (m *MockStorage) CreateCustomer(ctx context.Context, c storage.NewCustomer) (*storage.Customer, error) {
	if m.CreateCustomerFunc != nil {
		return m.CreateCustomerFunc(ctx, c)
	}
	now := time.Now().UTC()
	return &storage.Customer{
		ID:        1,
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ListCustomers lists customers. The default is an empty list.
func (m *MockStorage) ListCustomers(ctx context.Context) ([]*storage.Customer, error) {
	if m.ListCustomersFunc != nil {
		return m.ListCustomersFunc(ctx)
	}
	return []*storage.Customer{}, nil
}

// QueryReadOnly records sql and runs it. The default returns no rows.
func (m *MockStorage) QueryReadOnly(ctx context.Context, sql string) ([]storage.Row, error) {
	m.mu.Lock()
	m.queries = append(m.queries, sql)
	m.mu.Unlock()

	if m.QueryReadOnlyFunc != nil {
		return m.QueryReadOnlyFunc(ctx, sql)
	}
	return []storage.Row{}, nil
}

// Queries returns the SQL passed to QueryReadOnly, in call order.
func (m *MockStorage) Queries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.queries...)
}

// Ping checks storage health.
func (m *MockStorage) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

// Close closes the storage.
func (m *MockStorage) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
