package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresDSN(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"postgres://u:p@db:5432/app", "postgres://u:p@db:5432/app", true},
		{"postgresql://u:p@db/app", "postgres://u:p@db/app", true},
		{"postgresql+asyncpg://u:p@db/app", "postgres://u:p@db/app", true},
		{"POSTGRES://db/app", "postgres://db/app", true},
		{"sqlite:///data/gateway.db", "", false},
		{"/data/gateway.db", "", false},
		{":memory:", "", false},
		{"mysql://db/app", "", false},
	}
	for _, tt := range tests {
		got, ok := postgresDSN(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestOpen_SQLite(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	s, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	assert.IsType(t, &SQLiteStorage{}, s)
	assert.NoError(t, s.Ping(ctx))

	path := filepath.Join(t.TempDir(), "x.db")
	s2, err := Open(ctx, "sqlite://"+path)
	require.NoError(t, err)
	defer func() { _ = s2.Close() }()
	assert.FileExists(t, path)
}

func TestOpen_Empty(t *testing.T) {
	t.Parallel()
	_, err := Open(context.Background(), "")
	assert.Error(t, err)
}

// TestPostgres runs against a real server when TEST_DATABASE_URL is set.
func TestPostgres(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	st, err := Open(ctx, dsn)
	require.NoError(t, err)
	defer func() { _ = st.Close() }()
	s, ok := st.(*PostgresStorage)
	require.True(t, ok)

	_, err = s.pool.Exec(ctx, "TRUNCATE customers RESTART IDENTITY")
	require.NoError(t, err)

	c, err := s.CreateCustomer(ctx, NewCustomer{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Positive(t, c.ID)

	_, err = s.CreateCustomer(ctx, NewCustomer{Name: "Ada 2", Email: "ada@example.com"})
	assert.ErrorIs(t, err, ErrDuplicate)

	rows, err := s.QueryReadOnly(ctx, "SELECT name, email FROM customers")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ada", rows[0]["name"])

	_, err = s.QueryReadOnly(ctx, "DELETE FROM customers")
	var execErr *ExecutionError
	assert.ErrorAs(t, err, &execErr)

	list, err := s.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
	assert.NoError(t, s.Ping(ctx))
}
