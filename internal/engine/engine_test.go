package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemadrift/schemadrift/internal/diff"
	"github.com/schemadrift/schemadrift/internal/introspect"
	"github.com/schemadrift/schemadrift/internal/schema"
)

// fakeDB serves a canned schema as an Introspector. It can fail one
// fetch by op and object, and optionally block in ListTables until
// released, to hold a run open.
type fakeDB struct {
	engine  string
	version string
	tables  []schema.Table
	views   []schema.View

	failOp     string
	failObject string

	started   chan struct{}
	gate      chan struct{}
	startOnce sync.Once
}

func (f *fakeDB) Engine() string {
	if f.engine == "" {
		return schema.EngineMySQL
	}
	return f.engine
}

func (f *fakeDB) Label() string { return "fake://" + f.Engine() }

func (f *fakeDB) Close() error { return nil }

func (f *fakeDB) broken(op, object string) error {
	if f.failOp == op && f.failObject == object {
		return errors.New("connection reset")
	}
	return nil
}

func (f *fakeDB) ListDatabases(ctx context.Context) ([]string, error) {
	return []string{"shop"}, nil
}

func (f *fakeDB) ListTables(ctx context.Context, database string) ([]string, error) {
	if f.started != nil {
		f.startOnce.Do(func() { close(f.started) })
	}
	if f.gate != nil {
		<-f.gate
	}
	if err := f.broken("tables", ""); err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.tables))
	for _, t := range f.tables {
		names = append(names, t.Name)
	}
	return names, nil
}

func (f *fakeDB) ListViews(ctx context.Context, database string) ([]string, error) {
	names := make([]string, 0, len(f.views))
	for _, v := range f.views {
		names = append(names, v.Name)
	}
	return names, nil
}

func (f *fakeDB) find(table string) *schema.Table {
	for i := range f.tables {
		if f.tables[i].Name == table {
			return &f.tables[i]
		}
	}
	return nil
}

func (f *fakeDB) TableColumns(ctx context.Context, database, table string) ([]schema.Column, error) {
	if err := f.broken("columns", table); err != nil {
		return nil, err
	}
	if t := f.find(table); t != nil {
		return t.Columns, nil
	}
	return nil, nil
}

func (f *fakeDB) TableIndexes(ctx context.Context, database, table string) ([]schema.Index, error) {
	if t := f.find(table); t != nil {
		return t.Indexes, nil
	}
	return nil, nil
}

func (f *fakeDB) TableForeignKeys(ctx context.Context, database, table string) ([]schema.ForeignKey, error) {
	if t := f.find(table); t != nil {
		return t.ForeignKeys, nil
	}
	return nil, nil
}

func (f *fakeDB) TableDDL(ctx context.Context, database, table string) (string, error) {
	if err := f.broken("ddl", table); err != nil {
		return "", err
	}
	if t := f.find(table); t != nil {
		return t.DDL, nil
	}
	return "", nil
}

func (f *fakeDB) ViewDefinition(ctx context.Context, database, view string) (string, error) {
	for _, v := range f.views {
		if v.Name == view {
			return v.Definition, nil
		}
	}
	return "", nil
}

func (f *fakeDB) ServerVersion(ctx context.Context) (string, error) {
	if f.version == "" {
		return "8.0.36", nil
	}
	return f.version, nil
}

func opener(dbs map[string]*fakeDB) OpenFunc {
	return func(ctx context.Context, urlstr string) (introspect.Introspector, error) {
		db, ok := dbs[urlstr]
		if !ok {
			return nil, fmt.Errorf("unknown url %q", urlstr)
		}
		return db, nil
	}
}

func usersTable(extra ...schema.Column) schema.Table {
	columns := append([]schema.Column{
		{Name: "id", Type: "INT", Key: schema.KeyPrimary},
		{Name: "email", Type: "VARCHAR(255)"},
	}, extra...)
	return schema.Table{
		Name:    "users",
		Columns: columns,
		DDL:     "CREATE TABLE users (id INT, email VARCHAR(255))",
	}
}

func testEngine(dbs map[string]*fakeDB) *Engine {
	return &Engine{open: opener(dbs)}
}

func TestEngine_Compare_BuildsSetAndSelection(t *testing.T) {
	src := &fakeDB{tables: []schema.Table{
		usersTable(schema.Column{Name: "name", Type: "VARCHAR(50)"}),
		{Name: "orders", Columns: []schema.Column{{Name: "id", Type: "INT"}}, DDL: "CREATE TABLE orders (id INT)"},
	}}
	tgt := &fakeDB{tables: []schema.Table{usersTable()}}

	eng := testEngine(map[string]*fakeDB{"mysql://src": src, "mysql://tgt": tgt})

	res, err := eng.Compare(context.Background(),
		Side{URL: "mysql://src", Database: "shop"},
		Side{URL: "mysql://tgt", Database: "shop"},
		Options{})

	require.NoError(t, err)
	require.NotNil(t, res.Set)

	counts := res.Set.Counts()
	assert.Equal(t, 1, counts.Create, "orders missing on target")
	assert.Equal(t, 1, counts.Alter, "users gains a column")
	assert.Equal(t, 0, counts.Drop)

	assert.Zero(t, res.Selection.ExcludedCount())
	assert.Contains(t, res.Set.SourceLabel, "fake://mysql")
	assert.Contains(t, res.Set.SourceLabel, "8.0.36")
	assert.Empty(t, res.Warning)
}

func TestEngine_Compare_RejectsOverlappingRuns(t *testing.T) {
	src := &fakeDB{
		tables:  []schema.Table{usersTable()},
		started: make(chan struct{}),
		gate:    make(chan struct{}),
	}
	tgt := &fakeDB{tables: []schema.Table{usersTable()}}

	eng := testEngine(map[string]*fakeDB{"mysql://src": src, "mysql://tgt": tgt})
	sourceSide := Side{URL: "mysql://src", Database: "shop"}
	targetSide := Side{URL: "mysql://tgt", Database: "shop"}

	type outcome struct {
		res *Result
		err error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := eng.Compare(context.Background(), sourceSide, targetSide, Options{})
		done <- outcome{res, err}
	}()

	<-src.started
	_, err := eng.Compare(context.Background(), sourceSide, targetSide, Options{})
	assert.ErrorIs(t, err, ErrComparisonInFlight)

	close(src.gate)
	first := <-done
	require.NoError(t, first.err)
	require.NotNil(t, first.res)

	// The engine frees itself once the run finishes.
	_, err = eng.Compare(context.Background(), sourceSide, targetSide, Options{})
	assert.NoError(t, err)
}

func TestEngine_Compare_FetchFailureAbortsRun(t *testing.T) {
	src := &fakeDB{tables: []schema.Table{usersTable()}}
	tgt := &fakeDB{tables: []schema.Table{usersTable()}, failOp: "columns", failObject: "users"}

	eng := testEngine(map[string]*fakeDB{"mysql://src": src, "mysql://tgt": tgt})

	res, err := eng.Compare(context.Background(),
		Side{URL: "mysql://src", Database: "shop"},
		Side{URL: "mysql://tgt", Database: "shop"},
		Options{})

	require.Error(t, err)
	assert.Nil(t, res)
	assert.Contains(t, err.Error(), "target")

	fe, ok := introspect.AsMetadataFetchError(err)
	require.True(t, ok)
	assert.Equal(t, "users", fe.Object)
	assert.Equal(t, "columns", fe.Op)

	// The busy flag must clear after a failed run.
	tgt.failOp = ""
	_, err = eng.Compare(context.Background(),
		Side{URL: "mysql://src", Database: "shop"},
		Side{URL: "mysql://tgt", Database: "shop"},
		Options{})
	assert.NoError(t, err)
}

func TestEngine_Compare_MissingDatabase(t *testing.T) {
	src := &fakeDB{tables: []schema.Table{usersTable()}}

	eng := testEngine(map[string]*fakeDB{"mysql://src": src})

	_, err := eng.Compare(context.Background(),
		Side{URL: "mysql://src"},
		Side{URL: "mysql://src", Database: "shop"},
		Options{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no database selected")
	assert.Contains(t, err.Error(), "source")
}

func TestEngine_Compare_FileSide(t *testing.T) {
	snap := &schema.Snapshot{
		Engine:   schema.EngineMySQL,
		Database: "shop",
		Tables:   []schema.Table{usersTable()},
	}
	path := filepath.Join(t.TempDir(), "shop.json")
	require.NoError(t, snap.SaveFile(path))

	live := &fakeDB{tables: []schema.Table{usersTable()}}
	eng := testEngine(map[string]*fakeDB{"mysql://live": live})

	res, err := eng.Compare(context.Background(),
		Side{File: path},
		Side{URL: "mysql://live", Database: "shop"},
		Options{KeepIdentical: true})

	require.NoError(t, err)
	assert.Contains(t, res.Set.SourceLabel, path)
	assert.Contains(t, res.Set.SourceLabel, "mysql snapshot")

	counts := res.Set.Counts()
	assert.Equal(t, 0, counts.Total)
	require.Len(t, res.Set.Diffs, 1)
	assert.Equal(t, diff.KindIdentical, res.Set.Diffs[0].Kind)
}

func TestEngine_Compare_ExcludeTablesFilter(t *testing.T) {
	src := &fakeDB{tables: []schema.Table{
		usersTable(),
		{Name: "audit_log", Columns: []schema.Column{{Name: "id", Type: "INT"}}, DDL: "CREATE TABLE audit_log (id INT)"},
	}}
	tgt := &fakeDB{tables: []schema.Table{usersTable()}}

	eng := testEngine(map[string]*fakeDB{"mysql://src": src, "mysql://tgt": tgt})

	res, err := eng.Compare(context.Background(),
		Side{URL: "mysql://src", Database: "shop"},
		Side{URL: "mysql://tgt", Database: "shop"},
		Options{ExcludeTables: []string{"audit_*"}})

	require.NoError(t, err)
	assert.Equal(t, 0, res.Set.Counts().Total, "audit_log is filtered before classification")
}

func TestEngine_CompareTables_ValidatesBeforeFetch(t *testing.T) {
	eng := testEngine(map[string]*fakeDB{})
	side := Side{URL: "mysql://src", Database: "shop"}

	var selErr *diff.InvalidSelectionError

	_, err := eng.CompareTables(context.Background(), side, side, "", "users", Options{})
	require.ErrorAs(t, err, &selErr)

	_, err = eng.CompareTables(context.Background(), side, side, "users", "", Options{})
	require.ErrorAs(t, err, &selErr)

	// Same connection, same database, same table spelled differently.
	_, err = eng.CompareTables(context.Background(), side, side, "Users", "users", Options{})
	require.ErrorAs(t, err, &selErr)
	assert.Contains(t, err.Error(), "same database")
}

func TestEngine_CompareTables_SinglePair(t *testing.T) {
	src := &fakeDB{tables: []schema.Table{usersTable(schema.Column{Name: "name", Type: "VARCHAR(50)"})}}
	tgt := &fakeDB{tables: []schema.Table{usersTable()}}

	eng := testEngine(map[string]*fakeDB{"mysql://src": src, "mysql://tgt": tgt})

	res, err := eng.CompareTables(context.Background(),
		Side{URL: "mysql://src", Database: "shop"},
		Side{URL: "mysql://tgt", Database: "shop"},
		"users", "users", Options{})

	require.NoError(t, err)
	require.Len(t, res.Set.Diffs, 1)
	assert.Equal(t, diff.KindAlter, res.Set.Diffs[0].Kind)
	assert.Contains(t, res.Set.Diffs[0].SQL, "ADD COLUMN name VARCHAR(50) NOT NULL")
}

func TestEngine_CompareTables_SameDatabaseDifferentTables(t *testing.T) {
	db := &fakeDB{tables: []schema.Table{
		usersTable(),
		{Name: "users_archive", Columns: []schema.Column{
			{Name: "id", Type: "INT", Key: schema.KeyPrimary},
		}, DDL: "CREATE TABLE users_archive (id INT)"},
	}}

	eng := testEngine(map[string]*fakeDB{"mysql://db": db})
	side := Side{URL: "mysql://db", Database: "shop"}

	res, err := eng.CompareTables(context.Background(), side, side, "users", "users_archive", Options{})

	require.NoError(t, err)
	require.Len(t, res.Set.Diffs, 1)
	assert.Equal(t, diff.KindAlter, res.Set.Diffs[0].Kind)
}

func TestEngine_CompareTables_MissingTable(t *testing.T) {
	src := &fakeDB{tables: []schema.Table{usersTable()}}
	tgt := &fakeDB{tables: []schema.Table{usersTable()}}

	eng := testEngine(map[string]*fakeDB{"mysql://src": src, "mysql://tgt": tgt})

	_, err := eng.CompareTables(context.Background(),
		Side{URL: "mysql://src", Database: "shop"},
		Side{URL: "mysql://tgt", Database: "shop"},
		"ghosts", "users", Options{})

	var selErr *diff.InvalidSelectionError
	require.ErrorAs(t, err, &selErr)
	assert.Contains(t, selErr.Reason, "ghosts")
	assert.Contains(t, selErr.Reason, "source")
}

func TestEngine_Snapshot(t *testing.T) {
	live := &fakeDB{tables: []schema.Table{usersTable()}}
	eng := testEngine(map[string]*fakeDB{"mysql://live": live})

	snap, err := eng.Snapshot(context.Background(), Side{URL: "mysql://live", Database: "shop"}, Options{})

	require.NoError(t, err)
	assert.Equal(t, "shop", snap.Database)
	assert.Equal(t, []string{"users"}, snap.TableNames())
}

func TestFilterTables(t *testing.T) {
	snap := &schema.Snapshot{
		Engine:   schema.EngineMySQL,
		Database: "shop",
		Tables: []schema.Table{
			{Name: "users"},
			{Name: "audit_log"},
			{Name: "AUDIT_archive"},
		},
	}

	filterTables(snap, []string{"audit_*"})

	assert.Equal(t, []string{"users"}, snap.TableNames())
}
