package dbtest

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // pure go sqlite driver

	"currency_flip/migrations"
)

// NewSQLite открывает in-memory SQLite со схемой сервиса.
// Одно соединение: у каждого соединения :memory: своя база.
func NewSQLite(tb testing.TB) *sqlx.DB {
	tb.Helper()

	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(tb, err)

	db.SetMaxOpenConns(1)
	tb.Cleanup(func() { db.Close() })

	require.NoError(tb, migrations.Apply(context.Background(), db))

	return db
}
