// Package storage provides the customer store and the read-only query
// executor, backed by SQLite or PostgreSQL.
package storage

import (
	"context"
	"fmt"
	"strings"
)

// Executor runs validated SQL without write capability.
type Executor interface {
	QueryReadOnly(ctx context.Context, sql string) ([]Row, error)
}

// Storage is the full persistence surface used by the gateway.
type Storage interface {
	Executor

	// Customer operations
	CreateCustomer(ctx context.Context, c NewCustomer) (*Customer, error)
	ListCustomers(ctx context.Context) ([]*Customer, error)

	// Lifecycle
	Ping(ctx context.Context) error
	Close() error
}

// Open selects a backend from databaseURL: postgres:// and postgresql://
// URLs open PostgreSQL, anything else is treated as a SQLite path.
func Open(ctx context.Context, databaseURL string) (Storage, error) {
	if dsn, ok := postgresDSN(databaseURL); ok {
		return NewPostgres(ctx, dsn)
	}

	path := strings.TrimPrefix(databaseURL, "sqlite://")
	if path == "" {
		return nil, fmt.Errorf("empty database URL")
	}
	return New(path)
}

// postgresDSN normalizes driver-qualified schemes such as
// postgresql+asyncpg:// to a plain postgres URL.
func postgresDSN(databaseURL string) (string, bool) {
	scheme, rest, found := strings.Cut(databaseURL, "://")
	if !found {
		return "", false
	}
	base, _, _ := strings.Cut(strings.ToLower(scheme), "+")
	if base != "postgres" && base != "postgresql" {
		return "", false
	}
	return "postgres://" + rest, true
}
