package introspect

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/schemadrift/schemadrift/internal/schema"
)

// BuildSnapshot captures the full structure of one database. Tables and
// views are fetched concurrently with at most jobs in flight. Any
// failure aborts the whole capture; nothing partial is returned.
func BuildSnapshot(ctx context.Context, in Introspector, database string, jobs int) (*schema.Snapshot, error) {
	if jobs <= 0 {
		jobs = DefaultJobs
	}
	started := time.Now()

	version, err := in.ServerVersion(ctx)
	if err != nil {
		return nil, &MetadataFetchError{Engine: in.Engine(), Database: database, Op: "server version", Err: err}
	}

	tableNames, err := in.ListTables(ctx, database)
	if err != nil {
		return nil, &MetadataFetchError{Engine: in.Engine(), Database: database, Op: "tables", Err: err}
	}
	viewNames, err := in.ListViews(ctx, database)
	if err != nil {
		return nil, &MetadataFetchError{Engine: in.Engine(), Database: database, Op: "views", Err: err}
	}

	tables := make([]schema.Table, len(tableNames))
	views := make([]schema.View, len(viewNames))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, name := range tableNames {
		i, name := i, name
		g.Go(func() error {
			table, err := FetchTable(gctx, in, database, name)
			if err != nil {
				return err
			}
			tables[i] = *table
			return nil
		})
	}
	for i, name := range viewNames {
		i, name := i, name
		g.Go(func() error {
			definition, err := in.ViewDefinition(gctx, database, name)
			if err != nil {
				return &MetadataFetchError{Engine: in.Engine(), Database: database, Object: name, Op: "view definition", Err: err}
			}
			views[i] = schema.View{Name: name, Definition: definition}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("snapshot captured",
		"engine", in.Engine(),
		"database", database,
		"tables", len(tables),
		"views", len(views),
		"jobs", jobs,
		"elapsed", time.Since(started))

	return &schema.Snapshot{
		Engine:        in.Engine(),
		Database:      database,
		ServerVersion: version,
		CapturedAt:    time.Now().UTC(),
		Tables:        tables,
		Views:         views,
	}, nil
}

// FetchTable captures the descriptors of one table.
func FetchTable(ctx context.Context, in Introspector, database, table string) (*schema.Table, error) {
	started := time.Now()
	fail := func(op string, err error) error {
		return &MetadataFetchError{Engine: in.Engine(), Database: database, Object: table, Op: op, Err: err}
	}

	columns, err := in.TableColumns(ctx, database, table)
	if err != nil {
		return nil, fail("columns", err)
	}
	indexes, err := in.TableIndexes(ctx, database, table)
	if err != nil {
		return nil, fail("indexes", err)
	}
	fks, err := in.TableForeignKeys(ctx, database, table)
	if err != nil {
		return nil, fail("foreign keys", err)
	}
	ddl, err := in.TableDDL(ctx, database, table)
	if err != nil {
		return nil, fail("ddl", err)
	}

	slog.Debug("table fetched", "table", table, "columns", len(columns), "elapsed", time.Since(started))

	return &schema.Table{
		Name:        table,
		Columns:     columns,
		Indexes:     indexes,
		ForeignKeys: fks,
		DDL:         ddl,
	}, nil
}
