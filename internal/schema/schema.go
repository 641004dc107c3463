// Package schema defines the descriptor model for captured database
// structure: columns, indexes, foreign keys, tables, views, and the
// Snapshot a comparison run consumes. A Snapshot is immutable once
// built; every comparison fetches a fresh pair.
package schema

import (
	"strings"
	"time"
)

// Engine identifiers as they appear in Snapshot.Engine and connection URLs.
const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// ColumnKey classifies how a column participates in keys.
type ColumnKey string

const (
	KeyNone    ColumnKey = ""
	KeyPrimary ColumnKey = "primary"
	KeyUnique  ColumnKey = "unique"
	KeyIndex   ColumnKey = "index"
)

// Column describes one table column. Type is the raw, engine-specific
// type string (e.g. "VARCHAR(50)", "integer") and is never normalized
// across engines. A nil Default means the column has no default; an
// empty string is a real default of ''.
type Column struct {
	Name     string    `json:"name"`
	Type     string    `json:"type"`
	Nullable bool      `json:"nullable"`
	Default  *string   `json:"default,omitempty"`
	Extra    string    `json:"extra,omitempty"` // engine modifiers, e.g. auto_increment
	Key      ColumnKey `json:"key,omitempty"`
}

// Index describes one index entry. Composite indexes surface as one
// entry per column, matching how engines report them row-wise.
type Index struct {
	Name       string `json:"name"`
	ColumnName string `json:"columnName"`
	Type       string `json:"type,omitempty"`
	Unique     bool   `json:"unique"`
}

// ForeignKey describes one foreign key constraint column.
type ForeignKey struct {
	ConstraintName   string `json:"constraintName"`
	ColumnName       string `json:"columnName"`
	ReferencedTable  string `json:"referencedTable"`
	ReferencedColumn string `json:"referencedColumn"`
	OnUpdate         string `json:"onUpdate,omitempty"`
	OnDelete         string `json:"onDelete,omitempty"`
}

// Table describes one table: its columns in declared order, indexes,
// foreign keys, and the full CREATE statement used verbatim when the
// table must be created on the target.
type Table struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	Indexes     []Index      `json:"indexes,omitempty"`
	ForeignKeys []ForeignKey `json:"foreignKeys,omitempty"`
	DDL         string       `json:"ddl,omitempty"`
}

// View describes one view by name and SELECT body.
type View struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
}

// Snapshot is a point-in-time description of one database or schema.
type Snapshot struct {
	Engine        string    `json:"engine"`
	Database      string    `json:"database"`
	ServerVersion string    `json:"serverVersion,omitempty"`
	CapturedAt    time.Time `json:"capturedAt"`
	Tables        []Table   `json:"tables"`
	Views         []View    `json:"views,omitempty"`
}

// TableNames returns the table names in declared order.
func (s *Snapshot) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for _, t := range s.Tables {
		names = append(names, t.Name)
	}
	return names
}

// ViewNames returns the view names in declared order.
func (s *Snapshot) ViewNames() []string {
	names := make([]string, 0, len(s.Views))
	for _, v := range s.Views {
		names = append(names, v.Name)
	}
	return names
}

// Table returns the table with the given name, folding case according
// to the snapshot's engine, or nil if absent.
func (s *Snapshot) Table(name string) *Table {
	folded := FoldIdentifier(s.Engine, name)
	for i := range s.Tables {
		if FoldIdentifier(s.Engine, s.Tables[i].Name) == folded {
			return &s.Tables[i]
		}
	}
	return nil
}

// View returns the view with the given name, folding case according to
// the snapshot's engine, or nil if absent.
func (s *Snapshot) View(name string) *View {
	folded := FoldIdentifier(s.Engine, name)
	for i := range s.Views {
		if FoldIdentifier(s.Engine, s.Views[i].Name) == folded {
			return &s.Views[i]
		}
	}
	return nil
}

// CaseInsensitiveIdentifiers reports whether the engine matches
// identifiers without regard to case. MySQL and SQLite do; Postgres
// folds unquoted identifiers itself, so stored names compare exact.
func CaseInsensitiveIdentifiers(engine string) bool {
	switch engine {
	case EnginePostgres:
		return false
	default:
		return true
	}
}

// FoldIdentifier returns the comparison form of an identifier for the
// given engine. The original spelling is always preserved in
// descriptors; folding applies only while matching.
func FoldIdentifier(engine, name string) string {
	if CaseInsensitiveIdentifiers(engine) {
		return strings.ToLower(name)
	}
	return name
}

// NormalizeDefinition collapses runs of whitespace in a view body so
// definitions from different engines (or different formatting) compare
// on content. Trailing semicolons are dropped.
func NormalizeDefinition(definition string) string {
	fields := strings.Fields(strings.TrimSuffix(strings.TrimSpace(definition), ";"))
	return strings.Join(fields, " ")
}

// EqualDefaults reports whether two column defaults match. Both nil is
// a match; one nil is not; otherwise string equality.
func EqualDefaults(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
