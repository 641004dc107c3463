package diff

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/schemadrift/schemadrift/internal/schema"
	"github.com/schemadrift/schemadrift/internal/sqlgen"
)

// Options parameterizes one classification run.
type Options struct {
	// IncludeIndexes and IncludeForeignKeys fold index/foreign-key
	// changes into generated SQL. Off by default: those differences are
	// reported for display only.
	IncludeIndexes     bool
	IncludeForeignKeys bool

	// KeepIdentical emits identical diffs for common objects with no
	// differences. They never contribute to counts or the script.
	KeepIdentical bool

	// SourceLabel and TargetLabel identify the two sides in the Set and
	// the script header. Credentials must already be masked.
	SourceLabel string
	TargetLabel string
}

// Classify compares two snapshots and builds the full diff set for one
// run. Diff order is deterministic: table creates, table drops, table
// alters, then the same for views, each bucket sorted by name. Two runs
// over the same snapshots produce the same ids, kinds, and SQL in the
// same order (only RunID and GeneratedAt differ).
func Classify(source, target *schema.Snapshot, opts Options) (*Set, error) {
	if source == nil || target == nil {
		return nil, fmt.Errorf("classification needs both snapshots")
	}
	dialect, err := sqlgen.ForEngine(target.Engine)
	if err != nil {
		return nil, err
	}

	// Identifier case rules follow the source engine.
	fold := func(name string) string {
		return schema.FoldIdentifier(source.Engine, name)
	}

	set := newSet(opts)

	tables := Partition(source.TableNames(), target.TableNames(), fold)

	for _, name := range tables.OnlyInSource {
		tbl := source.Table(name)
		set.Diffs = append(set.Diffs, Diff{
			ID:         diffID(ObjectTable, name),
			ObjectType: ObjectTable,
			Kind:       KindCreate,
			SourceName: name,
			Reason:     "table missing on target",
			SQL:        tbl.DDL,
		})
	}

	for _, name := range tables.OnlyInTarget {
		set.Diffs = append(set.Diffs, Diff{
			ID:         diffID(ObjectTable, name),
			ObjectType: ObjectTable,
			Kind:       KindDrop,
			TargetName: name,
			Reason:     "table present only on target",
			SQL:        dialect.DropTableStatement(dialect.QualifyTable(target.Database, name)),
		})
	}

	for _, name := range tables.Common {
		sTbl := source.Table(name)
		tTbl := tableByFold(target, name, fold)
		d := classifyTablePair(sTbl, tTbl, source, target, dialect, opts)
		if d == nil {
			continue
		}
		set.Diffs = append(set.Diffs, *d)
	}

	views := Partition(source.ViewNames(), target.ViewNames(), fold)

	for _, name := range views.OnlyInSource {
		v := source.View(name)
		qualified := dialect.QualifyTable(target.Database, name)
		set.Diffs = append(set.Diffs, Diff{
			ID:         diffID(ObjectView, name),
			ObjectType: ObjectView,
			Kind:       KindCreate,
			SourceName: name,
			Reason:     "view missing on target",
			SQL:        dialect.CreateViewStatement(qualified, v.Definition),
		})
	}

	for _, name := range views.OnlyInTarget {
		set.Diffs = append(set.Diffs, Diff{
			ID:         diffID(ObjectView, name),
			ObjectType: ObjectView,
			Kind:       KindDrop,
			TargetName: name,
			Reason:     "view present only on target",
			SQL:        dialect.DropViewStatement(dialect.QualifyTable(target.Database, name)),
		})
	}

	for _, name := range views.Common {
		sView := source.View(name)
		tView := viewByFold(target, name, fold)
		if schema.NormalizeDefinition(sView.Definition) == schema.NormalizeDefinition(tView.Definition) {
			if opts.KeepIdentical {
				set.Diffs = append(set.Diffs, Diff{
					ID:         diffID(ObjectView, tView.Name),
					ObjectType: ObjectView,
					Kind:       KindIdentical,
					SourceName: sView.Name,
					TargetName: tView.Name,
					Reason:     "definitions match",
				})
			}
			continue
		}
		qualified := dialect.QualifyTable(target.Database, tView.Name)
		set.Diffs = append(set.Diffs, Diff{
			ID:         diffID(ObjectView, tView.Name),
			ObjectType: ObjectView,
			Kind:       KindAlter,
			SourceName: sView.Name,
			TargetName: tView.Name,
			Reason:     "view definition differs",
			SQL:        strings.Join(dialect.ReplaceViewStatements(qualified, sView.Definition), ";\n"),
		})
	}

	return set, nil
}

// ClassifyTablePair compares one explicitly selected source table
// against one target table (names may differ) and produces a set with
// a single alter-or-identical diff.
func ClassifyTablePair(source, target *schema.Snapshot, sourceTable, targetTable string, opts Options) (*Set, error) {
	if source == nil || target == nil {
		return nil, fmt.Errorf("classification needs both snapshots")
	}
	dialect, err := sqlgen.ForEngine(target.Engine)
	if err != nil {
		return nil, err
	}

	sTbl := source.Table(sourceTable)
	if sTbl == nil {
		return nil, fmt.Errorf("table %q not found in source snapshot", sourceTable)
	}
	tTbl := target.Table(targetTable)
	if tTbl == nil {
		return nil, fmt.Errorf("table %q not found in target snapshot", targetTable)
	}

	set := newSet(opts)
	pairOpts := opts
	pairOpts.KeepIdentical = true
	d := classifyTablePair(sTbl, tTbl, source, target, dialect, pairOpts)
	set.Diffs = append(set.Diffs, *d)
	return set, nil
}

// classifyTablePair compares one common table pair and returns its
// diff, or nil when the pair is identical and identical diffs are not
// kept.
func classifyTablePair(sTbl, tTbl *schema.Table, source, target *schema.Snapshot, dialect sqlgen.Dialect, opts Options) *Diff {
	qualified := dialect.QualifyTable(target.Database, tTbl.Name)
	comp := CompareTables(sTbl, tTbl, CompareOptions{
		Dialect:            dialect,
		SourceEngine:       source.Engine,
		QualifiedTarget:    qualified,
		IncludeIndexes:     opts.IncludeIndexes,
		IncludeForeignKeys: opts.IncludeForeignKeys,
	})

	if comp.Identical() {
		if !opts.KeepIdentical {
			return nil
		}
		return &Diff{
			ID:                diffID(ObjectTable, tTbl.Name),
			ObjectType:        ObjectTable,
			Kind:              KindIdentical,
			SourceName:        sTbl.Name,
			TargetName:        tTbl.Name,
			Reason:            "structures match",
			IndexChanges:      comp.IndexChanges,
			ForeignKeyChanges: comp.ForeignKeyChanges,
		}
	}

	stmts := make([]string, 0, 1+len(comp.Statements))
	if alter := dialect.AlterTableStatement(qualified, comp.Clauses); alter != "" {
		stmts = append(stmts, alter)
	}
	stmts = append(stmts, comp.Statements...)

	return &Diff{
		ID:                diffID(ObjectTable, tTbl.Name),
		ObjectType:        ObjectTable,
		Kind:              KindAlter,
		SourceName:        sTbl.Name,
		TargetName:        tTbl.Name,
		Reason:            alterReason(comp),
		Changes:           comp.Changes,
		IndexChanges:      comp.IndexChanges,
		ForeignKeyChanges: comp.ForeignKeyChanges,
		SQL:               strings.Join(stmts, ";\n"),
	}
}

// tableByFold finds a table using the comparison's fold rule rather
// than the snapshot engine's own rule, so cross-engine matches land on
// the same pair the reconciler matched.
func tableByFold(snap *schema.Snapshot, name string, fold func(string) string) *schema.Table {
	folded := fold(name)
	for i := range snap.Tables {
		if fold(snap.Tables[i].Name) == folded {
			return &snap.Tables[i]
		}
	}
	return nil
}

func viewByFold(snap *schema.Snapshot, name string, fold func(string) string) *schema.View {
	folded := fold(name)
	for i := range snap.Views {
		if fold(snap.Views[i].Name) == folded {
			return &snap.Views[i]
		}
	}
	return nil
}

func newSet(opts Options) *Set {
	return &Set{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		SourceLabel: opts.SourceLabel,
		TargetLabel: opts.TargetLabel,
	}
}

func alterReason(comp TableComparison) string {
	var parts []string
	if n := len(comp.Changes); n > 0 {
		parts = append(parts, countNoun(n, "column change"))
	}
	if n := len(comp.IndexChanges); n > 0 {
		parts = append(parts, countNoun(n, "index change"))
	}
	if n := len(comp.ForeignKeyChanges); n > 0 {
		parts = append(parts, countNoun(n, "foreign key change"))
	}
	return strings.Join(parts, ", ")
}

func countNoun(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
