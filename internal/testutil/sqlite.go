// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/nekogravitycat/room-booker/internal/db"
)

// NewDB opens a migrated SQLite store in a temporary directory.
// The handle is closed when the test finishes.
func NewDB(tb testing.TB) *db.DB {
	tb.Helper()

	ctx := context.Background()
	handle, err := db.Open(ctx, db.DialectSQLite, filepath.Join(tb.TempDir(), "room_bookings.db"))
	if err != nil {
		tb.Fatalf("failed to open test database: %v", err)
	}
	tb.Cleanup(func() { _ = handle.Close() })

	if _, err := db.Migrate(ctx, handle); err != nil {
		tb.Fatalf("failed to migrate test database: %v", err)
	}
	return handle
}

// MustExec runs a raw statement against the store, failing the test on error.
func MustExec(tb testing.TB, handle *db.DB, query string, args ...any) {
	tb.Helper()
	if _, err := handle.ExecContext(context.Background(), query, args...); err != nil {
		tb.Fatalf("exec %q failed: %v", query, err)
	}
}
