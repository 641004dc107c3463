package introspect

import (
	"context"
	"database/sql"
	"strings"

	"github.com/schemadrift/schemadrift/internal/schema"
)

// MySQL introspects MySQL and MariaDB servers through information_schema.
type MySQL struct {
	db    *sql.DB
	label string
}

func (m *MySQL) Engine() string { return schema.EngineMySQL }

func (m *MySQL) Label() string { return m.label }

func (m *MySQL) Close() error { return m.db.Close() }

func (m *MySQL) ListDatabases(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, `
		SELECT schema_name
		FROM information_schema.schemata
		WHERE schema_name NOT IN ('information_schema', 'performance_schema', 'mysql', 'sys')
		ORDER BY schema_name`)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

func (m *MySQL) ListTables(ctx context.Context, database string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ?
		  AND table_type = 'BASE TABLE'
		ORDER BY table_name`, database)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

func (m *MySQL) ListViews(ctx context.Context, database string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = ?
		  AND table_type = 'VIEW'
		ORDER BY table_name`, database)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

func (m *MySQL) TableColumns(ctx context.Context, database, table string) ([]schema.Column, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// column_type carries the full declaration, e.g. varchar(50) or
	// decimal(10,2), where data_type would only say varchar.
	rows, err := m.db.QueryContext(ctx, `
		SELECT
			column_name,
			column_type,
			is_nullable,
			column_default,
			column_key,
			extra
		FROM information_schema.columns
		WHERE table_schema = ? AND table_name = ?
		ORDER BY ordinal_position`, database, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var name, colType, nullable, key, extra string
		var defaultVal sql.NullString
		if err := rows.Scan(&name, &colType, &nullable, &defaultVal, &key, &extra); err != nil {
			return nil, err
		}

		col := schema.Column{
			Name:     name,
			Type:     colType,
			Nullable: nullable == "YES",
			Extra:    extra,
			Key:      mysqlColumnKey(key),
		}
		if defaultVal.Valid {
			col.Default = &defaultVal.String
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (m *MySQL) TableIndexes(ctx context.Context, database, table string) ([]schema.Index, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// One row per indexed column; the primary key surfaces through
	// column_key instead.
	rows, err := m.db.QueryContext(ctx, `
		SELECT index_name, column_name, index_type, non_unique
		FROM information_schema.statistics
		WHERE table_schema = ? AND table_name = ?
		  AND index_name != 'PRIMARY'
		ORDER BY index_name, seq_in_index`, database, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var name, column, indexType string
		var nonUnique int
		if err := rows.Scan(&name, &column, &indexType, &nonUnique); err != nil {
			return nil, err
		}
		indexes = append(indexes, schema.Index{
			Name:       name,
			ColumnName: column,
			Type:       indexType,
			Unique:     nonUnique == 0,
		})
	}
	return indexes, rows.Err()
}

func (m *MySQL) TableForeignKeys(ctx context.Context, database, table string) ([]schema.ForeignKey, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := m.db.QueryContext(ctx, `
		SELECT
			kcu.constraint_name,
			kcu.column_name,
			kcu.referenced_table_name,
			kcu.referenced_column_name,
			rc.update_rule,
			rc.delete_rule
		FROM information_schema.key_column_usage kcu
		JOIN information_schema.referential_constraints rc
			ON kcu.constraint_name = rc.constraint_name
			AND kcu.table_schema = rc.constraint_schema
		WHERE kcu.table_schema = ? AND kcu.table_name = ?
		  AND kcu.referenced_table_name IS NOT NULL
		ORDER BY kcu.constraint_name, kcu.ordinal_position`, database, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []schema.ForeignKey
	for rows.Next() {
		var fk schema.ForeignKey
		if err := rows.Scan(&fk.ConstraintName, &fk.ColumnName, &fk.ReferencedTable,
			&fk.ReferencedColumn, &fk.OnUpdate, &fk.OnDelete); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

func (m *MySQL) TableDDL(ctx context.Context, database, table string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var name, ddl string
	err := m.db.QueryRowContext(ctx,
		"SHOW CREATE TABLE "+backquote(database)+"."+backquote(table)).Scan(&name, &ddl)
	if err != nil {
		return "", err
	}
	return ddl, nil
}

func (m *MySQL) ViewDefinition(ctx context.Context, database, view string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var definition string
	err := m.db.QueryRowContext(ctx, `
		SELECT view_definition
		FROM information_schema.views
		WHERE table_schema = ? AND table_name = ?`, database, view).Scan(&definition)
	if err != nil {
		return "", err
	}
	return definition, nil
}

func (m *MySQL) ServerVersion(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var version string
	if err := m.db.QueryRowContext(ctx, "SELECT VERSION()").Scan(&version); err != nil {
		return "", err
	}
	return version, nil
}

func mysqlColumnKey(key string) schema.ColumnKey {
	switch key {
	case "PRI":
		return schema.KeyPrimary
	case "UNI":
		return schema.KeyUnique
	case "MUL":
		return schema.KeyIndex
	default:
		return schema.KeyNone
	}
}

func backquote(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
