package diff

import (
	"fmt"

	"github.com/schemadrift/schemadrift/internal/schema"
	"github.com/schemadrift/schemadrift/internal/sqlgen"
)

// CompareOptions parameterizes a structural table comparison.
type CompareOptions struct {
	// Dialect renders the fragments; it belongs to the target engine,
	// since the generated SQL runs there.
	Dialect sqlgen.Dialect

	// SourceEngine decides identifier case rules while matching.
	SourceEngine string

	// QualifiedTarget is the qualified target table reference, needed
	// for standalone index statements.
	QualifiedTarget string

	// IncludeIndexes folds index adds/drops into the generated SQL.
	// When false they are reported for display only.
	IncludeIndexes bool

	// IncludeForeignKeys folds foreign key adds/drops into the
	// generated SQL. When false they are reported for display only.
	IncludeForeignKeys bool
}

// TableComparison is the outcome of comparing one table pair.
type TableComparison struct {
	// Changes lists column-level changes in emission order:
	// source-declared order for adds and modifies, then drops.
	Changes []ColumnChange

	// Clauses are ALTER TABLE clause fragments matching Changes, plus
	// index/foreign-key clauses when those options are enabled.
	Clauses []string

	// Statements are standalone statements that cannot ride in the
	// ALTER (index changes on engines without index clauses).
	Statements []string

	// IndexChanges and ForeignKeyChanges describe existence-level
	// differences for display, regardless of the include options.
	IndexChanges      []string
	ForeignKeyChanges []string
}

// Identical reports whether the pair needs no DDL. Display-only index
// and foreign key differences do not make a pair non-identical.
func (c TableComparison) Identical() bool {
	return len(c.Changes) == 0 && len(c.Clauses) == 0 && len(c.Statements) == 0
}

// CompareTables compares a source and target table that share a
// logical identity (the names need not be textually equal) and returns
// the column changes plus the SQL fragments that reconcile the target.
// Column order is not a tracked attribute: matching is by name only.
func CompareTables(source, target *schema.Table, opts CompareOptions) TableComparison {
	fold := func(name string) string {
		return schema.FoldIdentifier(opts.SourceEngine, name)
	}

	targetCols := make(map[string]schema.Column, len(target.Columns))
	for _, col := range target.Columns {
		targetCols[fold(col.Name)] = col
	}

	var comp TableComparison
	sourceSeen := make(map[string]bool, len(source.Columns))

	// Adds and modifies, in source-declared order.
	for _, sCol := range source.Columns {
		key := fold(sCol.Name)
		sourceSeen[key] = true

		tCol, ok := targetCols[key]
		if !ok {
			comp.Changes = append(comp.Changes, ColumnChange{
				Kind:       ChangeAdd,
				ColumnName: sCol.Name,
				Detail:     "missing on target: " + columnSummary(sCol),
			})
			comp.Clauses = append(comp.Clauses, opts.Dialect.AddColumnClause(sCol))
			continue
		}

		if sCol.Type != tCol.Type || sCol.Nullable != tCol.Nullable || !schema.EqualDefaults(sCol.Default, tCol.Default) {
			comp.Changes = append(comp.Changes, ColumnChange{
				Kind:       ChangeModify,
				ColumnName: sCol.Name,
				Detail:     modifyDetail(sCol, tCol),
			})
			// Full redeclaration: the target column's attributes are
			// overwritten wholesale, not patched.
			comp.Clauses = append(comp.Clauses, opts.Dialect.ModifyColumnClauses(sCol)...)
		}
	}

	// Drops, in target-declared order.
	for _, tCol := range target.Columns {
		if sourceSeen[fold(tCol.Name)] {
			continue
		}
		comp.Changes = append(comp.Changes, ColumnChange{
			Kind:       ChangeDrop,
			ColumnName: tCol.Name,
			Detail:     "present only on target",
		})
		comp.Clauses = append(comp.Clauses, opts.Dialect.DropColumnClause(tCol.Name))
	}

	compareIndexes(source, target, opts, &comp)
	compareForeignKeys(source, target, opts, &comp)

	return comp
}

// compareIndexes matches indexes by name, existence only. An index
// present on both sides is never inspected further.
func compareIndexes(source, target *schema.Table, opts CompareOptions, comp *TableComparison) {
	fold := func(name string) string {
		return schema.FoldIdentifier(opts.SourceEngine, name)
	}
	buckets := Partition(indexNames(source.Indexes), indexNames(target.Indexes), fold)

	for _, name := range buckets.OnlyInSource {
		comp.IndexChanges = append(comp.IndexChanges, "add index "+name)
		if !opts.IncludeIndexes {
			continue
		}
		columns, unique := indexColumns(source.Indexes, name)
		if opts.Dialect.IndexChangesAsClauses {
			comp.Clauses = append(comp.Clauses, opts.Dialect.AddIndexClause(name, columns, unique))
		} else {
			comp.Statements = append(comp.Statements, opts.Dialect.CreateIndexStatement(opts.QualifiedTarget, name, columns, unique))
		}
	}

	for _, name := range buckets.OnlyInTarget {
		comp.IndexChanges = append(comp.IndexChanges, "drop index "+name)
		if !opts.IncludeIndexes {
			continue
		}
		if opts.Dialect.IndexChangesAsClauses {
			comp.Clauses = append(comp.Clauses, opts.Dialect.DropIndexClause(name))
		} else {
			comp.Statements = append(comp.Statements, opts.Dialect.DropIndexStatement(name))
		}
	}
}

// compareForeignKeys matches constraints by name, existence only.
func compareForeignKeys(source, target *schema.Table, opts CompareOptions, comp *TableComparison) {
	fold := func(name string) string {
		return schema.FoldIdentifier(opts.SourceEngine, name)
	}
	buckets := Partition(constraintNames(source.ForeignKeys), constraintNames(target.ForeignKeys), fold)

	for _, name := range buckets.OnlyInSource {
		comp.ForeignKeyChanges = append(comp.ForeignKeyChanges, "add foreign key "+name)
		if !opts.IncludeForeignKeys || !opts.Dialect.SupportsAddForeignKey {
			continue
		}
		if fk := findForeignKey(source.ForeignKeys, name); fk != nil {
			comp.Clauses = append(comp.Clauses, opts.Dialect.AddForeignKeyClause(*fk))
		}
	}

	for _, name := range buckets.OnlyInTarget {
		comp.ForeignKeyChanges = append(comp.ForeignKeyChanges, "drop foreign key "+name)
		if !opts.IncludeForeignKeys || !opts.Dialect.SupportsAddForeignKey {
			continue
		}
		comp.Clauses = append(comp.Clauses, opts.Dialect.DropForeignKeyClause(name))
	}
}

func indexNames(indexes []schema.Index) []string {
	names := make([]string, 0, len(indexes))
	for _, idx := range indexes {
		names = append(names, idx.Name)
	}
	return names
}

// indexColumns gathers the column list of a (possibly composite) index
// in reported order, plus its uniqueness.
func indexColumns(indexes []schema.Index, name string) ([]string, bool) {
	var columns []string
	unique := false
	for _, idx := range indexes {
		if idx.Name == name {
			columns = append(columns, idx.ColumnName)
			unique = idx.Unique
		}
	}
	return columns, unique
}

func constraintNames(fks []schema.ForeignKey) []string {
	names := make([]string, 0, len(fks))
	for _, fk := range fks {
		names = append(names, fk.ConstraintName)
	}
	return names
}

func findForeignKey(fks []schema.ForeignKey, name string) *schema.ForeignKey {
	for i := range fks {
		if fks[i].ConstraintName == name {
			return &fks[i]
		}
	}
	return nil
}

// columnSummary describes a column declaration without its name, for
// change details.
func columnSummary(col schema.Column) string {
	s := col.Type
	if col.Nullable {
		s += " NULL"
	} else {
		s += " NOT NULL"
	}
	if col.Default != nil {
		s += " DEFAULT " + describeDefault(col.Default)
	}
	if col.Extra != "" {
		s += " " + col.Extra
	}
	return s
}

func modifyDetail(sCol, tCol schema.Column) string {
	detail := ""
	add := func(part string) {
		if detail != "" {
			detail += "; "
		}
		detail += part
	}

	if sCol.Type != tCol.Type {
		add(fmt.Sprintf("type %s (target %s)", sCol.Type, tCol.Type))
	}
	if sCol.Nullable != tCol.Nullable {
		add(fmt.Sprintf("%s (target %s)", nullability(sCol.Nullable), nullability(tCol.Nullable)))
	}
	if !schema.EqualDefaults(sCol.Default, tCol.Default) {
		add(fmt.Sprintf("default %s (target %s)", describeDefault(sCol.Default), describeDefault(tCol.Default)))
	}
	return detail
}

func nullability(nullable bool) string {
	if nullable {
		return "NULL"
	}
	return "NOT NULL"
}

func describeDefault(v *string) string {
	if v == nil {
		return "none"
	}
	return fmt.Sprintf("%q", *v)
}
