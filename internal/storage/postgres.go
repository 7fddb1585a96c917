package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PostgresStorage implements Storage over a pgx connection pool.
type PostgresStorage struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to dsn, verifies the connection and initializes the schema.
func NewPostgres(ctx context.Context, dsn string) (*PostgresStorage, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := initPostgresSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &PostgresStorage{pool: pool}, nil
}

// CreateCustomer inserts a customer.
// Returns ErrDuplicate if the email is already registered.
func (s *PostgresStorage) CreateCustomer(ctx context.Context, c NewCustomer) (*Customer, error) {
	var out Customer
	err := s.pool.QueryRow(ctx,
		`INSERT INTO customers (name, email, phone) VALUES ($1, $2, $3)
		 RETURNING id, name, email, phone, created_at, updated_at`,
		c.Name, c.Email, c.Phone).
		Scan(&out.ID, &out.Name, &out.Email, &out.Phone, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return nil, ErrDuplicate
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}
	return &out, nil
}

// ListCustomers returns all customers ordered by id.
func (s *PostgresStorage) ListCustomers(ctx context.Context) ([]*Customer, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT id, name, email, phone, created_at, updated_at FROM customers ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	customers, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (*Customer, error) {
		var c Customer
		err := row.Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt)
		return &c, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan customers: %w", err)
	}
	return customers, nil
}

// QueryReadOnly runs query in a read-only transaction that is always
// rolled back. Engine failures are returned as *ExecutionError.
func (s *PostgresStorage) QueryReadOnly(ctx context.Context, query string) ([]Row, error) {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, executionError(err)
	}
	defer func() { _ = tx.Rollback(context.Background()) }()

	rows, err := tx.Query(ctx, query)
	if err != nil {
		return nil, executionError(err)
	}

	result, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, executionError(err)
	}

	out := make([]Row, len(result))
	for i, r := range result {
		for k, v := range r {
			r[k] = normalizeValue(v)
		}
		out[i] = r
	}
	return out, nil
}

// Ping verifies database connectivity.
func (s *PostgresStorage) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// Close closes the pool.
func (s *PostgresStorage) Close() error {
	s.pool.Close()
	return nil
}
