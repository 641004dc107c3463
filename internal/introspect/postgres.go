package introspect

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/schemadrift/schemadrift/internal/schema"
	"github.com/schemadrift/schemadrift/internal/sqlgen"
)

// Postgres introspects PostgreSQL servers. The database argument on
// every method names a schema inside the connected database; an empty
// value means public.
type Postgres struct {
	db    *sql.DB
	label string
}

func (p *Postgres) Engine() string { return schema.EnginePostgres }

func (p *Postgres) Label() string { return p.label }

func (p *Postgres) Close() error { return p.db.Close() }

func pgSchema(database string) string {
	if database == "" {
		return "public"
	}
	return database
}

func (p *Postgres) ListDatabases(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, `
		SELECT schema_name FROM information_schema.schemata
		WHERE schema_name NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		ORDER BY schema_name`)
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

func (p *Postgres) ListTables(ctx context.Context, database string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'BASE TABLE'
		ORDER BY table_name`, pgSchema(database))
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

func (p *Postgres) ListViews(ctx context.Context, database string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, `
		SELECT table_name FROM information_schema.tables
		WHERE table_schema = $1 AND table_type = 'VIEW'
		ORDER BY table_name`, pgSchema(database))
	if err != nil {
		return nil, err
	}
	return scanStrings(rows)
}

func (p *Postgres) TableColumns(ctx context.Context, database, table string) ([]schema.Column, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, `
		SELECT
			column_name,
			data_type,
			udt_name,
			character_maximum_length,
			numeric_precision,
			numeric_scale,
			is_nullable,
			column_default
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		ORDER BY ordinal_position`, pgSchema(database), table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var name, dataType, udtName, nullable string
		var maxLength, precision, scale sql.NullInt64
		var defaultVal sql.NullString
		if err := rows.Scan(&name, &dataType, &udtName, &maxLength, &precision,
			&scale, &nullable, &defaultVal); err != nil {
			return nil, err
		}

		col := schema.Column{
			Name:     name,
			Type:     composePostgresType(dataType, udtName, maxLength, precision, scale),
			Nullable: nullable == "YES",
		}
		if defaultVal.Valid {
			col.Default = &defaultVal.String
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	primary, err := p.primaryKeyColumns(ctx, database, table)
	if err != nil {
		return nil, err
	}
	for i := range columns {
		if primary[columns[i].Name] {
			columns[i].Key = schema.KeyPrimary
		}
	}
	return columns, nil
}

// composePostgresType rebuilds the declared type from the pieces
// information_schema spreads over several columns. data_type alone says
// "character varying" with the length elsewhere, reports "ARRAY" for
// arrays, and "USER-DEFINED" for enums and domains.
func composePostgresType(dataType, udtName string, maxLength, precision, scale sql.NullInt64) string {
	switch {
	case dataType == "ARRAY" && udtName != "":
		// Array element types carry a leading underscore in udt_name.
		return strings.TrimPrefix(udtName, "_") + "[]"
	case dataType == "USER-DEFINED" && udtName != "":
		return udtName
	case maxLength.Valid && (dataType == "character varying" || dataType == "character"):
		return fmt.Sprintf("%s(%d)", dataType, maxLength.Int64)
	case dataType == "numeric" && precision.Valid && scale.Valid && scale.Int64 != 0:
		return fmt.Sprintf("numeric(%d,%d)", precision.Int64, scale.Int64)
	case dataType == "numeric" && precision.Valid:
		return fmt.Sprintf("numeric(%d)", precision.Int64)
	default:
		return dataType
	}
}

func (p *Postgres) primaryKeyColumns(ctx context.Context, database, table string) (map[string]bool, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT kcu.column_name
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		WHERE tc.constraint_type = 'PRIMARY KEY'
		  AND tc.table_schema = $1 AND tc.table_name = $2
		ORDER BY kcu.ordinal_position`, pgSchema(database), table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	primary := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		primary[name] = true
	}
	return primary, rows.Err()
}

func (p *Postgres) TableIndexes(ctx context.Context, database, table string) ([]schema.Index, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	// Constraint-backed indexes (primary keys, unique constraints) are
	// excluded; they surface through columns and foreign keys instead.
	rows, err := p.db.QueryContext(ctx, `
		SELECT indexname, indexdef
		FROM pg_indexes
		WHERE schemaname = $1 AND tablename = $2
		  AND indexname NOT IN (
			SELECT conname FROM pg_constraint WHERE contype IN ('p', 'u')
		  )
		ORDER BY indexname`, pgSchema(database), table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var indexes []schema.Index
	for rows.Next() {
		var name, indexDef string
		if err := rows.Scan(&name, &indexDef); err != nil {
			return nil, err
		}
		unique := strings.HasPrefix(indexDef, "CREATE UNIQUE INDEX")
		for _, column := range indexDefColumns(indexDef) {
			indexes = append(indexes, schema.Index{
				Name:       name,
				ColumnName: column,
				Unique:     unique,
			})
		}
	}
	return indexes, rows.Err()
}

// indexDefColumns pulls the column list out of a pg_indexes indexdef,
// e.g. CREATE INDEX idx_email ON public.users USING btree (email).
func indexDefColumns(indexDef string) []string {
	start := strings.Index(indexDef, "(")
	end := strings.LastIndex(indexDef, ")")
	if start < 0 || end <= start {
		return nil
	}
	parts := strings.Split(indexDef[start+1:end], ",")
	columns := make([]string, 0, len(parts))
	for _, part := range parts {
		columns = append(columns, strings.Trim(strings.TrimSpace(part), `"`))
	}
	return columns
}

func (p *Postgres) TableForeignKeys(ctx context.Context, database, table string) ([]schema.ForeignKey, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, `
		SELECT
			tc.constraint_name,
			kcu.column_name,
			ccu.table_name AS foreign_table_name,
			ccu.column_name AS foreign_column_name,
			rc.update_rule,
			rc.delete_rule
		FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON tc.constraint_name = kcu.constraint_name
			AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage AS ccu
			ON ccu.constraint_name = tc.constraint_name
			AND ccu.table_schema = tc.table_schema
		JOIN information_schema.referential_constraints AS rc
			ON rc.constraint_name = tc.constraint_name
			AND rc.constraint_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY'
		  AND tc.table_schema = $1 AND tc.table_name = $2
		ORDER BY tc.constraint_name, kcu.ordinal_position`, pgSchema(database), table)
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

// TableDDL synthesizes a CREATE TABLE statement from the column
// descriptors. Postgres has no SHOW CREATE TABLE equivalent short of
// shelling out to pg_dump.
func (p *Postgres) TableDDL(ctx context.Context, database, table string) (string, error) {
	columns, err := p.TableColumns(ctx, database, table)
	if err != nil {
		return "", err
	}

	var primaryKey []string
	for _, col := range columns {
		if col.Key == schema.KeyPrimary {
			primaryKey = append(primaryKey, col.Name)
		}
	}

	dialect, err := sqlgen.ForEngine(schema.EnginePostgres)
	if err != nil {
		return "", err
	}
	qualified := dialect.QualifyTable(pgSchema(database), table)
	return dialect.CreateTableStatement(qualified, columns, primaryKey), nil
}

func (p *Postgres) ViewDefinition(ctx context.Context, database, view string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var definition string
	err := p.db.QueryRowContext(ctx, `
		SELECT view_definition
		FROM information_schema.views
		WHERE table_schema = $1 AND table_name = $2`, pgSchema(database), view).Scan(&definition)
	if err != nil {
		return "", err
	}
	return definition, nil
}

func (p *Postgres) ServerVersion(ctx context.Context) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var version string
	if err := p.db.QueryRowContext(ctx, "SHOW server_version").Scan(&version); err != nil {
		return "", err
	}
	return version, nil
}
