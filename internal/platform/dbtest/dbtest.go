// Package dbtest provides an in-memory SQLite database with the production schema applied.
package dbtest

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"aecofarm-backend/internal/platform/db"
)

// NewTestDB creates a fresh in-memory SQLite database with the schema applied.
func NewTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	conn, err := sqlx.Open("sqlite", ":memory:?_time_format=sqlite")
	if err != nil {
		t.Fatalf("opening test database: %v", err)
	}
	// :memory: は接続ごとに別DBになるので1本に固定
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		t.Fatalf("enabling foreign keys: %v", err)
	}
	if err := db.EnsureSchema(context.Background(), conn); err != nil {
		conn.Close()
		t.Fatalf("creating test database schema: %v", err)
	}

	t.Cleanup(func() { conn.Close() })

	return conn
}
