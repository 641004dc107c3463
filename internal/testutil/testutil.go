// Package testutil provides helpers for schemadrift integration tests.
// It builds throwaway SQLite databases so introspection and comparison
// tests can run against a real engine without external services.
package testutil

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// OpenSQLite creates a fresh SQLite database in a temp directory, applies
// the given statements, and returns the open handle plus a connection URL
// for it. The handle and the file are cleaned up with the test.
func OpenSQLite(t *testing.T, statements ...string) (*sql.DB, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("failed to open sqlite database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	Apply(t, db, statements...)

	return db, "sqlite:" + path
}

// Apply runs DDL statements against a database, failing the test on the
// first error.
func Apply(t *testing.T, db *sql.DB, statements ...string) {
	t.Helper()

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("failed to apply %q: %v", stmt, err)
		}
	}
}
