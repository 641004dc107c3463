// Package introspect fetches schema metadata from live databases and
// assembles the snapshots a comparison run consumes. Each supported
// engine has its own implementation of the Introspector interface;
// Open picks one from a connection URL.
package introspect

import (
	"context"
	"database/sql"
	"time"

	"github.com/schemadrift/schemadrift/internal/schema"
)

// queryTimeout bounds every metadata query.
const queryTimeout = 60 * time.Second

// DefaultJobs is the per-table fetch concurrency used when the caller
// does not set one.
const DefaultJobs = 4

// Introspector reads schema metadata from one connection. The database
// argument selects a database (MySQL), schema (Postgres), or is
// ignored (SQLite attaches a single file).
type Introspector interface {
	// Engine returns the schema.Engine* identifier.
	Engine() string

	// Label returns a printable identity for this connection with
	// credentials masked.
	Label() string

	ListDatabases(ctx context.Context) ([]string, error)
	ListTables(ctx context.Context, database string) ([]string, error)
	ListViews(ctx context.Context, database string) ([]string, error)
	TableColumns(ctx context.Context, database, table string) ([]schema.Column, error)
	TableIndexes(ctx context.Context, database, table string) ([]schema.Index, error)
	TableForeignKeys(ctx context.Context, database, table string) ([]schema.ForeignKey, error)
	TableDDL(ctx context.Context, database, table string) (string, error)
	ViewDefinition(ctx context.Context, database, view string) (string, error)
	ServerVersion(ctx context.Context) (string, error)

	Close() error
}

func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
