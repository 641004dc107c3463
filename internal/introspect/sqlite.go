package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/schemadrift/schemadrift/internal/schema"
)

// SQLite introspects a single attached database file through PRAGMA
// statements and sqlite_master. The database argument on every method
// is ignored; a connection sees exactly one file.
type SQLite struct {
	db    *sql.DB
	label string
}

func (s *SQLite) Engine() string { return schema.EngineSQLite }

func (s *SQLite) Label() string { return s.label }

func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) ListDatabases(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, "PRAGMA database_list")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var seq int
		var name string
		var file sql.NullString
		if err := rows.Scan(&seq, &name, &file); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *SQLite) ListTables(ctx context.Context, database string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

func (s *SQLite) ListViews(ctx context.Context, database string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM sqlite_master
		WHERE type = 'view'
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

func (s *SQLite) TableColumns(ctx context.Context, database, table string) ([]schema.Column, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", dquote(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var cid, notNull, pk int
		var name, colType string
		var defaultVal sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}

		col := schema.Column{
			Name:     name,
			Type:     colType,
			Nullable: notNull == 0,
		}
		if defaultVal.Valid {
			col.Default = &defaultVal.String
		}
		if pk > 0 {
			col.Key = schema.KeyPrimary
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (s *SQLite) TableIndexes(ctx context.Context, database, table string) ([]schema.Index, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_list(%s)", dquote(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type indexEntry struct {
		name   string
		unique bool
	}
	var entries []indexEntry
	for rows.Next() {
		var seq, unique, partial int
		var name, origin string
		if err := rows.Scan(&seq, &name, &unique, &origin, &partial); err != nil {
			return nil, err
		}
		// origin "c" is CREATE INDEX; "pk" and "u" back constraints and
		// surface through the column descriptors instead.
		if origin != "c" {
			continue
		}
		entries = append(entries, indexEntry{name: name, unique: unique == 1})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var indexes []schema.Index
	for _, entry := range entries {
		columns, err := s.indexColumns(ctx, entry.name)
		if err != nil {
			return nil, err
		}
		for _, column := range columns {
			indexes = append(indexes, schema.Index{
				Name:       entry.name,
				ColumnName: column,
				Unique:     entry.unique,
			})
		}
	}
	return indexes, nil
}

func (s *SQLite) indexColumns(ctx context.Context, index string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA index_info(%s)", dquote(index)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var seqno, cid int
		var name sql.NullString
		if err := rows.Scan(&seqno, &cid, &name); err != nil {
			return nil, err
		}
		columns = append(columns, name.String)
	}
	return columns, rows.Err()
}

func (s *SQLite) TableForeignKeys(ctx context.Context, database, table string) ([]schema.ForeignKey, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf("PRAGMA foreign_key_list(%s)", dquote(table)))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// SQLite does not name foreign keys; synthesize one per constraint
	// from the first referencing column so both sides of a comparison
	// derive the same name.
	names := make(map[int]string)
	var fks []schema.ForeignKey
	for rows.Next() {
		var id, seq int
		var refTable, from, onUpdate, onDelete, match string
		var to sql.NullString
		if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match); err != nil {
			return nil, err
		}

		name, ok := names[id]
		if !ok {
			name = fmt.Sprintf("fk_%s_%s", table, from)
			names[id] = name
		}
		fks = append(fks, schema.ForeignKey{
			ConstraintName:   name,
			ColumnName:       from,
			ReferencedTable:  refTable,
			ReferencedColumn: to.String,
			OnUpdate:         onUpdate,
			OnDelete:         onDelete,
		})
	}
	return fks, rows.Err()
}

func (s *SQLite) TableDDL(ctx context.Context, database, table string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var ddl string
	err := s.db.QueryRowContext(ctx, `
		SELECT sql FROM sqlite_master
		WHERE type = 'table' AND name = ?`, table).Scan(&ddl)
	if err != nil {
		return "", err
	}
	return ddl, nil
}

func (s *SQLite) ViewDefinition(ctx context.Context, database, view string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var stmt string
	err := s.db.QueryRowContext(ctx, `
		SELECT sql FROM sqlite_master
		WHERE type = 'view' AND name = ?`, view).Scan(&stmt)
	if err != nil {
		return "", err
	}
	return stripCreateView(stmt), nil
}

// stripCreateView reduces a stored CREATE VIEW statement to its SELECT
// body, since sqlite_master keeps the full statement.
func stripCreateView(stmt string) string {
	upper := strings.ToUpper(stmt)
	if at := strings.Index(upper, " AS "); at >= 0 {
		return strings.TrimSpace(stmt[at+4:])
	}
	return strings.TrimSpace(stmt)
}

func (s *SQLite) ServerVersion(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var version string
	if err := s.db.QueryRowContext(ctx, "SELECT sqlite_version()").Scan(&version); err != nil {
		return "", err
	}
	return version, nil
}

func dquote(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
