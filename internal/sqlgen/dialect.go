// Package sqlgen renders DDL text. A Dialect captures the per-engine
// rules a sync script depends on: identifier quoting, name
// qualification, which changes can ride in a combined ALTER TABLE, and
// how column defaults are spelled when a column is redeclared.
package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/schemadrift/schemadrift/internal/schema"
)

// Dialect holds the DDL rendering rules for one engine.
type Dialect struct {
	Engine string

	// CombinesAlterClauses: the engine accepts multiple clauses in one
	// ALTER TABLE statement. SQLite takes exactly one clause per statement.
	CombinesAlterClauses bool

	// SupportsModifyColumn: a column can be redeclared in a single
	// MODIFY COLUMN clause. Postgres expands to ALTER COLUMN clauses,
	// SQLite to a drop+add pair.
	SupportsModifyColumn bool

	// SupportsAddForeignKey: foreign keys can be added through ALTER TABLE.
	SupportsAddForeignKey bool

	// IndexChangesAsClauses: index adds/drops are ALTER TABLE clauses
	// (MySQL) rather than standalone CREATE/DROP INDEX statements.
	IndexChangesAsClauses bool

	// SupportsCreateOrReplaceView: a changed view can be replaced in one
	// statement instead of a drop+create pair.
	SupportsCreateOrReplaceView bool

	// QualifiesTableNames: table references carry the database or schema
	// qualifier. SQLite attaches a single file and uses bare names.
	QualifiesTableNames bool

	// quotesPlainDefaults: the engine reports string defaults bare
	// (MySQL DESCRIBE style) and they need quoting when redeclared.
	// Postgres reports defaults as complete SQL expressions.
	quotesPlainDefaults bool

	quote rune
}

// ForEngine returns the dialect for a Snapshot.Engine value.
func ForEngine(engine string) (Dialect, error) {
	switch engine {
	case schema.EngineMySQL:
		return Dialect{
			Engine:                      schema.EngineMySQL,
			CombinesAlterClauses:        true,
			SupportsModifyColumn:        true,
			SupportsAddForeignKey:       true,
			IndexChangesAsClauses:       true,
			SupportsCreateOrReplaceView: true,
			QualifiesTableNames:         true,
			quotesPlainDefaults:         true,
			quote:                       '`',
		}, nil
	case schema.EnginePostgres:
		return Dialect{
			Engine:                      schema.EnginePostgres,
			CombinesAlterClauses:        true,
			SupportsAddForeignKey:       true,
			SupportsCreateOrReplaceView: true,
			QualifiesTableNames:         true,
			quote:                       '"',
		}, nil
	case schema.EngineSQLite:
		return Dialect{
			Engine:              schema.EngineSQLite,
			quotesPlainDefaults: true,
			quote:               '"',
		}, nil
	default:
		return Dialect{}, fmt.Errorf("no SQL dialect for engine %q", engine)
	}
}

// QuoteIdent quotes an identifier only when it needs it: plain
// identifiers render bare, anything else is wrapped in the dialect's
// quote rune with embedded quotes doubled.
func (d Dialect) QuoteIdent(name string) string {
	if plainIdent(name) {
		return name
	}
	q := string(d.quote)
	return q + strings.ReplaceAll(name, q, q+q) + q
}

// QualifyTable renders a table reference, qualified with the database
// or schema name when the dialect uses qualifiers.
func (d Dialect) QualifyTable(database, table string) string {
	if !d.QualifiesTableNames || database == "" {
		return d.QuoteIdent(table)
	}
	return d.QuoteIdent(database) + "." + d.QuoteIdent(table)
}

func plainIdent(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9', r == '$':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// ColumnClause renders a full column declaration: name, raw type,
// nullability, default, and engine extras, in that order.
func (d Dialect) ColumnClause(col schema.Column) string {
	var b strings.Builder
	b.WriteString(d.QuoteIdent(col.Name))
	b.WriteByte(' ')
	b.WriteString(col.Type)
	if col.Nullable {
		b.WriteString(" NULL")
	} else {
		b.WriteString(" NOT NULL")
	}
	if col.Default != nil {
		b.WriteString(" DEFAULT ")
		b.WriteString(d.DefaultLiteral(*col.Default))
	}
	if col.Extra != "" {
		b.WriteByte(' ')
		b.WriteString(col.Extra)
	}
	return b.String()
}

// DefaultLiteral renders a column default as reported by the engine
// into a form usable in a declaration. Numeric values, keywords,
// function calls, and already-quoted strings pass through; bare
// strings are single-quoted with embedded quotes doubled.
func (d Dialect) DefaultLiteral(value string) string {
	if !d.quotesPlainDefaults {
		return value
	}
	if value == "" {
		return "''"
	}
	if _, err := strconv.ParseFloat(value, 64); err == nil {
		return value
	}
	if strings.HasPrefix(value, "'") && strings.HasSuffix(value, "'") {
		return value
	}
	if strings.Contains(value, "(") && strings.HasSuffix(value, ")") {
		return value
	}
	switch strings.ToUpper(value) {
	case "NULL", "TRUE", "FALSE", "CURRENT_TIMESTAMP", "CURRENT_DATE", "CURRENT_TIME":
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// AddColumnClause renders the ALTER TABLE clause adding a column.
func (d Dialect) AddColumnClause(col schema.Column) string {
	return "ADD COLUMN " + d.ColumnClause(col)
}

// ModifyColumnClauses renders the clauses that redeclare a column to
// the given descriptor, overwriting the target's attributes wholesale.
// MySQL needs one clause, Postgres a clause per attribute, SQLite a
// drop+add pair.
func (d Dialect) ModifyColumnClauses(col schema.Column) []string {
	if d.SupportsModifyColumn {
		return []string{"MODIFY COLUMN " + d.ColumnClause(col)}
	}

	if d.Engine == schema.EnginePostgres {
		name := d.QuoteIdent(col.Name)
		clauses := []string{"ALTER COLUMN " + name + " TYPE " + col.Type}
		if col.Nullable {
			clauses = append(clauses, "ALTER COLUMN "+name+" DROP NOT NULL")
		} else {
			clauses = append(clauses, "ALTER COLUMN "+name+" SET NOT NULL")
		}
		if col.Default != nil {
			clauses = append(clauses, "ALTER COLUMN "+name+" SET DEFAULT "+d.DefaultLiteral(*col.Default))
		} else {
			clauses = append(clauses, "ALTER COLUMN "+name+" DROP DEFAULT")
		}
		return clauses
	}

	// SQLite: no in-place redeclaration.
	return []string{
		d.DropColumnClause(col.Name),
		d.AddColumnClause(col),
	}
}

// DropColumnClause renders the ALTER TABLE clause dropping a column.
func (d Dialect) DropColumnClause(name string) string {
	return "DROP COLUMN " + d.QuoteIdent(name)
}

// AddIndexClause renders an index addition as an ALTER TABLE clause.
// Valid only when IndexChangesAsClauses is set. Columns are the index
// entries in position order (composite indexes span several).
func (d Dialect) AddIndexClause(name string, columns []string, unique bool) string {
	kind := "INDEX"
	if unique {
		kind = "UNIQUE INDEX"
	}
	return fmt.Sprintf("ADD %s %s (%s)", kind, d.QuoteIdent(name), d.identList(columns))
}

// DropIndexClause renders an index removal as an ALTER TABLE clause.
func (d Dialect) DropIndexClause(name string) string {
	return "DROP INDEX " + d.QuoteIdent(name)
}

// CreateIndexStatement renders a standalone CREATE INDEX statement for
// engines where index changes cannot ride in ALTER TABLE.
func (d Dialect) CreateIndexStatement(qualifiedTable, name string, columns []string, unique bool) string {
	kind := "INDEX"
	if unique {
		kind = "UNIQUE INDEX"
	}
	return fmt.Sprintf("CREATE %s %s ON %s (%s)", kind, d.QuoteIdent(name), qualifiedTable, d.identList(columns))
}

func (d Dialect) identList(names []string) string {
	quoted := make([]string, 0, len(names))
	for _, n := range names {
		quoted = append(quoted, d.QuoteIdent(n))
	}
	return strings.Join(quoted, ", ")
}

// DropIndexStatement renders a standalone DROP INDEX statement.
func (d Dialect) DropIndexStatement(name string) string {
	return "DROP INDEX " + d.QuoteIdent(name)
}

// AddForeignKeyClause renders a foreign key addition as an ALTER TABLE
// clause. Valid only when SupportsAddForeignKey is set.
func (d Dialect) AddForeignKeyClause(fk schema.ForeignKey) string {
	var b strings.Builder
	fmt.Fprintf(&b, "ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s (%s)",
		d.QuoteIdent(fk.ConstraintName), d.QuoteIdent(fk.ColumnName),
		d.QuoteIdent(fk.ReferencedTable), d.QuoteIdent(fk.ReferencedColumn))
	if fk.OnUpdate != "" {
		b.WriteString(" ON UPDATE " + fk.OnUpdate)
	}
	if fk.OnDelete != "" {
		b.WriteString(" ON DELETE " + fk.OnDelete)
	}
	return b.String()
}

// DropForeignKeyClause renders a foreign key removal as an ALTER TABLE
// clause. MySQL and Postgres spell it differently.
func (d Dialect) DropForeignKeyClause(name string) string {
	if d.Engine == schema.EngineMySQL {
		return "DROP FOREIGN KEY " + d.QuoteIdent(name)
	}
	return "DROP CONSTRAINT " + d.QuoteIdent(name)
}

// AlterTableStatement assembles clauses into ALTER TABLE text: one
// combined statement where the dialect allows it, otherwise one
// statement per clause separated by ";\n". No trailing terminator.
func (d Dialect) AlterTableStatement(qualifiedTable string, clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	if d.CombinesAlterClauses {
		return "ALTER TABLE " + qualifiedTable + "\n  " + strings.Join(clauses, ",\n  ")
	}
	stmts := make([]string, 0, len(clauses))
	for _, c := range clauses {
		stmts = append(stmts, "ALTER TABLE "+qualifiedTable+" "+c)
	}
	return strings.Join(stmts, ";\n")
}

// CreateTableStatement assembles a CREATE TABLE from column
// declarations and an optional primary key. Engines without a native
// dump statement synthesize their snapshot DDL through this.
func (d Dialect) CreateTableStatement(qualifiedTable string, columns []schema.Column, primaryKey []string) string {
	clauses := make([]string, 0, len(columns)+1)
	for _, col := range columns {
		clauses = append(clauses, "  "+d.ColumnClause(col))
	}
	if len(primaryKey) > 0 {
		clauses = append(clauses, "  PRIMARY KEY ("+d.identList(primaryKey)+")")
	}
	return "CREATE TABLE " + qualifiedTable + " (\n" + strings.Join(clauses, ",\n") + "\n)"
}

// DropTableStatement renders a DROP TABLE for a qualified name.
func (d Dialect) DropTableStatement(qualifiedTable string) string {
	return "DROP TABLE " + qualifiedTable
}

// CreateViewStatement renders a CREATE VIEW from a name and SELECT body.
func (d Dialect) CreateViewStatement(qualifiedView, definition string) string {
	return "CREATE VIEW " + qualifiedView + " AS " + definition
}

// ReplaceViewStatements renders the statements replacing an existing
// view's definition.
func (d Dialect) ReplaceViewStatements(qualifiedView, definition string) []string {
	if d.SupportsCreateOrReplaceView {
		return []string{"CREATE OR REPLACE VIEW " + qualifiedView + " AS " + definition}
	}
	return []string{
		d.DropViewStatement(qualifiedView),
		d.CreateViewStatement(qualifiedView, definition),
	}
}

// DropViewStatement renders a DROP VIEW for a qualified name.
func (d Dialect) DropViewStatement(qualifiedView string) string {
	return "DROP VIEW " + qualifiedView
}
