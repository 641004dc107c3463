// Package engine drives comparison runs end to end: it resolves each
// side to a snapshot (live connection or file), classifies the pair,
// and hands back the diff set with a fresh selection. One Engine runs
// one comparison at a time.
package engine

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/schemadrift/schemadrift/internal/diff"
	"github.com/schemadrift/schemadrift/internal/introspect"
	"github.com/schemadrift/schemadrift/internal/schema"
)

// Side names one end of a comparison: a live connection URL plus
// database (schema for Postgres), or a snapshot file captured earlier.
type Side struct {
	URL      string
	Database string
	File     string
}

// Options adjust a comparison run.
type Options struct {
	IncludeIndexes     bool
	IncludeForeignKeys bool
	KeepIdentical      bool

	// Jobs bounds per-table fetch concurrency; zero means the default.
	Jobs int

	// ExcludeTables drops matching tables (shell-style patterns) from
	// both snapshots before classification.
	ExcludeTables []string
}

// Result is one finished comparison run. Selection starts with nothing
// excluded; it belongs to this run only.
type Result struct {
	Set       *diff.Set
	Selection *diff.Selection
	Source    *schema.Snapshot
	Target    *schema.Snapshot
	Warning   string
}

// OpenFunc dials a connection URL.
type OpenFunc func(ctx context.Context, urlstr string) (introspect.Introspector, error)

// Engine runs comparisons. The zero value is not usable; call New.
type Engine struct {
	open OpenFunc
	busy atomic.Bool
}

func New() *Engine {
	return &Engine{open: introspect.Open}
}

// Compare fetches both sides concurrently and classifies every table
// and view. A second Compare on the same Engine while one is running
// returns ErrComparisonInFlight.
func (e *Engine) Compare(ctx context.Context, source, target Side, opts Options) (*Result, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrComparisonInFlight
	}
	defer e.busy.Store(false)

	snaps, labels, err := e.resolveBoth(ctx, source, target, opts)
	if err != nil {
		return nil, err
	}

	set, err := diff.Classify(snaps[0], snaps[1], diff.Options{
		IncludeIndexes:     opts.IncludeIndexes,
		IncludeForeignKeys: opts.IncludeForeignKeys,
		KeepIdentical:      opts.KeepIdentical,
		SourceLabel:        labels[0],
		TargetLabel:        labels[1],
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Set:       set,
		Selection: diff.NewSelection(set),
		Source:    snaps[0],
		Target:    snaps[1],
		Warning:   introspect.VersionSkew(snaps[0], snaps[1]),
	}, nil
}

// CompareTables runs a single-table comparison: exactly one diff,
// alter or identical, for the chosen pair. The selection is validated
// before anything is fetched.
func (e *Engine) CompareTables(ctx context.Context, source, target Side, sourceTable, targetTable string, opts Options) (*Result, error) {
	if sourceTable == "" {
		return nil, &diff.InvalidSelectionError{Reason: "no source table selected"}
	}
	if targetTable == "" {
		return nil, &diff.InvalidSelectionError{Reason: "no target table selected"}
	}
	if sameSide(source, target) && strings.EqualFold(sourceTable, targetTable) {
		return nil, &diff.InvalidSelectionError{
			Reason: fmt.Sprintf("source and target both name %q on the same database", sourceTable),
		}
	}

	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrComparisonInFlight
	}
	defer e.busy.Store(false)

	var (
		snaps  [2]*schema.Snapshot
		labels [2]string
	)
	sides := [2]Side{source, target}
	tables := [2]string{sourceTable, targetTable}
	roles := [2]string{"source", "target"}

	g, gctx := errgroup.WithContext(ctx)
	for i := range sides {
		i := i
		g.Go(func() error {
			snap, label, err := e.resolveTableSide(gctx, sides[i], tables[i])
			if err != nil {
				return fmt.Errorf("%s: %w", roles[i], err)
			}
			snaps[i], labels[i] = snap, label
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i := range snaps {
		if snaps[i].Table(tables[i]) == nil {
			return nil, &diff.InvalidSelectionError{
				Reason: fmt.Sprintf("table %q not found on the %s side", tables[i], roles[i]),
			}
		}
	}

	set, err := diff.ClassifyTablePair(snaps[0], snaps[1], sourceTable, targetTable, diff.Options{
		IncludeIndexes:     opts.IncludeIndexes,
		IncludeForeignKeys: opts.IncludeForeignKeys,
		SourceLabel:        labels[0],
		TargetLabel:        labels[1],
	})
	if err != nil {
		return nil, err
	}

	return &Result{
		Set:       set,
		Selection: diff.NewSelection(set),
		Source:    snaps[0],
		Target:    snaps[1],
		Warning:   introspect.VersionSkew(snaps[0], snaps[1]),
	}, nil
}

// Snapshot captures one side without comparing it to anything, for
// `schemadrift snapshot` style captures.
func (e *Engine) Snapshot(ctx context.Context, side Side, opts Options) (*schema.Snapshot, error) {
	if !e.busy.CompareAndSwap(false, true) {
		return nil, ErrComparisonInFlight
	}
	defer e.busy.Store(false)

	snap, _, err := e.resolveSide(ctx, side, opts)
	return snap, err
}

func (e *Engine) resolveBoth(ctx context.Context, source, target Side, opts Options) ([2]*schema.Snapshot, [2]string, error) {
	var (
		snaps  [2]*schema.Snapshot
		labels [2]string
	)
	sides := [2]Side{source, target}
	roles := [2]string{"source", "target"}

	g, gctx := errgroup.WithContext(ctx)
	for i := range sides {
		i := i
		g.Go(func() error {
			snap, label, err := e.resolveSide(gctx, sides[i], opts)
			if err != nil {
				return fmt.Errorf("%s: %w", roles[i], err)
			}
			snaps[i], labels[i] = snap, label
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return snaps, labels, err
	}
	return snaps, labels, nil
}

// resolveSide turns one Side into a snapshot and a printable label.
func (e *Engine) resolveSide(ctx context.Context, side Side, opts Options) (*schema.Snapshot, string, error) {
	if side.File != "" {
		snap, err := schema.LoadFile(side.File)
		if err != nil {
			return nil, "", err
		}
		filterTables(snap, opts.ExcludeTables)
		return snap, fmt.Sprintf("%s (%s snapshot)", side.File, snap.Engine), nil
	}

	in, err := e.open(ctx, side.URL)
	if err != nil {
		return nil, "", err
	}
	defer in.Close()

	database, err := sideDatabase(side, in)
	if err != nil {
		return nil, "", err
	}

	snap, err := introspect.BuildSnapshot(ctx, in, database, opts.Jobs)
	if err != nil {
		return nil, "", err
	}
	filterTables(snap, opts.ExcludeTables)

	label := in.Label()
	if snap.ServerVersion != "" {
		label = fmt.Sprintf("%s (%s %s)", in.Label(), snap.Engine, snap.ServerVersion)
	}
	return snap, label, nil
}

// resolveTableSide fetches only the named table from a live side; file
// sides load fully and the lookup happens afterwards.
func (e *Engine) resolveTableSide(ctx context.Context, side Side, table string) (*schema.Snapshot, string, error) {
	if side.File != "" {
		snap, err := schema.LoadFile(side.File)
		if err != nil {
			return nil, "", err
		}
		return snap, fmt.Sprintf("%s (%s snapshot)", side.File, snap.Engine), nil
	}

	in, err := e.open(ctx, side.URL)
	if err != nil {
		return nil, "", err
	}
	defer in.Close()

	database, err := sideDatabase(side, in)
	if err != nil {
		return nil, "", err
	}

	version, err := in.ServerVersion(ctx)
	if err != nil {
		return nil, "", &introspect.MetadataFetchError{
			Engine: in.Engine(), Database: database, Op: "server version", Err: err,
		}
	}

	snap := &schema.Snapshot{
		Engine:        in.Engine(),
		Database:      database,
		ServerVersion: version,
	}

	names, err := in.ListTables(ctx, database)
	if err != nil {
		return nil, "", &introspect.MetadataFetchError{
			Engine: in.Engine(), Database: database, Op: "tables", Err: err,
		}
	}
	stored, ok := matchIdentifier(in.Engine(), names, table)
	if !ok {
		// Leave the snapshot without the table; the caller reports it.
		return snap, in.Label(), nil
	}

	tbl, err := introspect.FetchTable(ctx, in, database, stored)
	if err != nil {
		return nil, "", err
	}
	snap.Tables = []schema.Table{*tbl}

	label := in.Label()
	if version != "" {
		label = fmt.Sprintf("%s (%s %s)", in.Label(), snap.Engine, version)
	}
	return snap, label, nil
}

// sameSide reports whether two sides point at the same database.
func sameSide(a, b Side) bool {
	if a.File != "" || b.File != "" {
		return a.File == b.File
	}
	return a.URL == b.URL && a.Database == b.Database
}

// sideDatabase picks the database for a live side. SQLite attaches one
// file and needs no name; everything else must say where to look.
func sideDatabase(side Side, in introspect.Introspector) (string, error) {
	if side.Database != "" {
		return side.Database, nil
	}
	if in.Engine() == schema.EngineSQLite {
		return "main", nil
	}
	return "", fmt.Errorf("no database selected for %s", in.Label())
}

// matchIdentifier finds the stored spelling of name among names using
// the engine's case rules.
func matchIdentifier(engine string, names []string, name string) (string, bool) {
	folded := schema.FoldIdentifier(engine, name)
	for _, n := range names {
		if schema.FoldIdentifier(engine, n) == folded {
			return n, true
		}
	}
	return "", false
}
