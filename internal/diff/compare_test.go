package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemadrift/schemadrift/internal/schema"
	"github.com/schemadrift/schemadrift/internal/sqlgen"
)

func strptr(s string) *string { return &s }

func mysqlCompareOpts(t *testing.T) CompareOptions {
	t.Helper()
	d, err := sqlgen.ForEngine(schema.EngineMySQL)
	require.NoError(t, err)
	return CompareOptions{
		Dialect:         d,
		SourceEngine:    schema.EngineMySQL,
		QualifiedTarget: "shop.users",
	}
}

func TestCompareTables_AddColumn(t *testing.T) {
	source := &schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Type: "INT", Key: schema.KeyPrimary},
			{Name: "name", Type: "VARCHAR(50)"},
		},
	}
	target := &schema.Table{
		Name:    "users",
		Columns: []schema.Column{{Name: "id", Type: "INT", Key: schema.KeyPrimary}},
	}

	comp := CompareTables(source, target, mysqlCompareOpts(t))

	require.Len(t, comp.Changes, 1)
	assert.Equal(t, ChangeAdd, comp.Changes[0].Kind)
	assert.Equal(t, "name", comp.Changes[0].ColumnName)
	require.Len(t, comp.Clauses, 1)
	assert.Equal(t, "ADD COLUMN name VARCHAR(50) NOT NULL", comp.Clauses[0])
}

func TestCompareTables_ModifyOnTypeNullableOrDefault(t *testing.T) {
	tests := []struct {
		name   string
		source schema.Column
		target schema.Column
		want   int
	}{
		{
			name:   "type differs",
			source: schema.Column{Name: "n", Type: "BIGINT"},
			target: schema.Column{Name: "n", Type: "INT"},
			want:   1,
		},
		{
			name:   "nullability differs",
			source: schema.Column{Name: "n", Type: "INT", Nullable: true},
			target: schema.Column{Name: "n", Type: "INT"},
			want:   1,
		},
		{
			name:   "default differs",
			source: schema.Column{Name: "n", Type: "INT", Default: strptr("0")},
			target: schema.Column{Name: "n", Type: "INT"},
			want:   1,
		},
		{
			name:   "equal columns",
			source: schema.Column{Name: "n", Type: "INT", Default: strptr("0")},
			target: schema.Column{Name: "n", Type: "INT", Default: strptr("0")},
			want:   0,
		},
		{
			// Extra alone does not trigger a modify; it is only carried
			// along when another attribute changes.
			name:   "extra alone is not a change",
			source: schema.Column{Name: "n", Type: "INT", Extra: "auto_increment"},
			target: schema.Column{Name: "n", Type: "INT"},
			want:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := &schema.Table{Name: "t", Columns: []schema.Column{tt.source}}
			target := &schema.Table{Name: "t", Columns: []schema.Column{tt.target}}

			comp := CompareTables(source, target, mysqlCompareOpts(t))

			assert.Len(t, comp.Changes, tt.want)
			if tt.want == 1 {
				assert.Equal(t, ChangeModify, comp.Changes[0].Kind)
			}
		})
	}
}

func TestCompareTables_ModifyIsFullRedeclaration(t *testing.T) {
	source := &schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "status", Type: "VARCHAR(20)", Default: strptr("active"), Extra: "on update CURRENT_TIMESTAMP"},
		},
	}
	target := &schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "status", Type: "VARCHAR(10)", Nullable: true},
		},
	}

	comp := CompareTables(source, target, mysqlCompareOpts(t))

	require.Len(t, comp.Clauses, 1)
	assert.Equal(t, "MODIFY COLUMN status VARCHAR(20) NOT NULL DEFAULT 'active' on update CURRENT_TIMESTAMP", comp.Clauses[0])
}

func TestCompareTables_DropColumn(t *testing.T) {
	source := &schema.Table{
		Name:    "users",
		Columns: []schema.Column{{Name: "id", Type: "INT"}},
	}
	target := &schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Type: "INT"},
			{Name: "legacy", Type: "TEXT", Nullable: true},
		},
	}

	comp := CompareTables(source, target, mysqlCompareOpts(t))

	require.Len(t, comp.Changes, 1)
	assert.Equal(t, ChangeDrop, comp.Changes[0].Kind)
	assert.Equal(t, "legacy", comp.Changes[0].ColumnName)
	assert.Equal(t, []string{"DROP COLUMN legacy"}, comp.Clauses)
}

func TestCompareTables_ColumnOrderIgnored(t *testing.T) {
	source := &schema.Table{
		Name: "products",
		Columns: []schema.Column{
			{Name: "id", Type: "INT"},
			{Name: "sku", Type: "VARCHAR(32)"},
			{Name: "price", Type: "DECIMAL(10,2)"},
		},
	}
	target := &schema.Table{
		Name: "products",
		Columns: []schema.Column{
			{Name: "price", Type: "DECIMAL(10,2)"},
			{Name: "id", Type: "INT"},
			{Name: "sku", Type: "VARCHAR(32)"},
		},
	}

	comp := CompareTables(source, target, mysqlCompareOpts(t))

	assert.True(t, comp.Identical())
	assert.Empty(t, comp.Changes)
}

func TestCompareTables_EmissionOrderFollowsSource(t *testing.T) {
	source := &schema.Table{
		Name: "t",
		Columns: []schema.Column{
			{Name: "zeta", Type: "INT"},
			{Name: "alpha", Type: "TEXT"},
		},
	}
	target := &schema.Table{Name: "t"}

	comp := CompareTables(source, target, mysqlCompareOpts(t))

	require.Len(t, comp.Changes, 2)
	assert.Equal(t, "zeta", comp.Changes[0].ColumnName)
	assert.Equal(t, "alpha", comp.Changes[1].ColumnName)
}

func TestCompareTables_IdempotentAfterApply(t *testing.T) {
	source := &schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Type: "INT"},
			{Name: "name", Type: "VARCHAR(50)"},
			{Name: "age", Type: "INT", Nullable: true},
		},
	}
	target := &schema.Table{
		Name: "users",
		Columns: []schema.Column{
			{Name: "id", Type: "BIGINT"},
			{Name: "legacy", Type: "TEXT", Nullable: true},
		},
	}

	opts := mysqlCompareOpts(t)
	first := CompareTables(source, target, opts)
	require.NotEmpty(t, first.Changes)

	// Simulate applying the alter: the target takes the source's columns.
	applied := &schema.Table{Name: target.Name, Columns: source.Columns}

	second := CompareTables(source, applied, opts)
	assert.Empty(t, second.Changes)
	assert.True(t, second.Identical())
}

func TestCompareTables_IndexesDisplayOnlyByDefault(t *testing.T) {
	source := &schema.Table{
		Name:    "users",
		Columns: []schema.Column{{Name: "id", Type: "INT"}},
		Indexes: []schema.Index{{Name: "idx_email", ColumnName: "email", Unique: true}},
	}
	target := &schema.Table{
		Name:    "users",
		Columns: []schema.Column{{Name: "id", Type: "INT"}},
		Indexes: []schema.Index{{Name: "idx_old", ColumnName: "old"}},
	}

	comp := CompareTables(source, target, mysqlCompareOpts(t))

	// Reported for display, not folded into SQL
	assert.Equal(t, []string{"add index idx_email", "drop index idx_old"}, comp.IndexChanges)
	assert.Empty(t, comp.Clauses)
	assert.Empty(t, comp.Statements)
	assert.True(t, comp.Identical())
}

func TestCompareTables_IndexesFoldedWhenEnabled(t *testing.T) {
	source := &schema.Table{
		Name:    "users",
		Columns: []schema.Column{{Name: "id", Type: "INT"}},
		Indexes: []schema.Index{
			{Name: "idx_name", ColumnName: "last_name"},
			{Name: "idx_name", ColumnName: "first_name"},
		},
	}
	target := &schema.Table{
		Name:    "users",
		Columns: []schema.Column{{Name: "id", Type: "INT"}},
	}

	opts := mysqlCompareOpts(t)
	opts.IncludeIndexes = true
	comp := CompareTables(source, target, opts)

	// MySQL folds composite index adds into the ALTER clause list
	require.Len(t, comp.Clauses, 1)
	assert.Equal(t, "ADD INDEX idx_name (last_name, first_name)", comp.Clauses[0])
	assert.False(t, comp.Identical())
}

func TestCompareTables_PostgresIndexesAsStatements(t *testing.T) {
	d, err := sqlgen.ForEngine(schema.EnginePostgres)
	require.NoError(t, err)

	source := &schema.Table{
		Name:    "users",
		Columns: []schema.Column{{Name: "id", Type: "integer"}},
		Indexes: []schema.Index{{Name: "idx_email", ColumnName: "email", Unique: true}},
	}
	target := &schema.Table{
		Name:    "users",
		Columns: []schema.Column{{Name: "id", Type: "integer"}},
	}

	comp := CompareTables(source, target, CompareOptions{
		Dialect:         d,
		SourceEngine:    schema.EnginePostgres,
		QualifiedTarget: "public.users",
		IncludeIndexes:  true,
	})

	assert.Empty(t, comp.Clauses)
	require.Len(t, comp.Statements, 1)
	assert.Equal(t, "CREATE UNIQUE INDEX idx_email ON public.users (email)", comp.Statements[0])
}

func TestCompareTables_ForeignKeysFoldedWhenEnabled(t *testing.T) {
	source := &schema.Table{
		Name:    "orders",
		Columns: []schema.Column{{Name: "id", Type: "INT"}},
		ForeignKeys: []schema.ForeignKey{{
			ConstraintName:   "fk_orders_user",
			ColumnName:       "user_id",
			ReferencedTable:  "users",
			ReferencedColumn: "id",
		}},
	}
	target := &schema.Table{
		Name:    "orders",
		Columns: []schema.Column{{Name: "id", Type: "INT"}},
		ForeignKeys: []schema.ForeignKey{{
			ConstraintName:   "fk_stale",
			ColumnName:       "x",
			ReferencedTable:  "y",
			ReferencedColumn: "z",
		}},
	}

	opts := mysqlCompareOpts(t)
	opts.IncludeForeignKeys = true
	comp := CompareTables(source, target, opts)

	assert.Equal(t, []string{"add foreign key fk_orders_user", "drop foreign key fk_stale"}, comp.ForeignKeyChanges)
	require.Len(t, comp.Clauses, 2)
	assert.Equal(t, "ADD CONSTRAINT fk_orders_user FOREIGN KEY (user_id) REFERENCES users (id)", comp.Clauses[0])
	assert.Equal(t, "DROP FOREIGN KEY fk_stale", comp.Clauses[1])
}

func TestCompareTables_CaseFoldingByEngine(t *testing.T) {
	source := &schema.Table{Name: "t", Columns: []schema.Column{{Name: "UserID", Type: "INT"}}}
	target := &schema.Table{Name: "t", Columns: []schema.Column{{Name: "userid", Type: "INT"}}}

	// MySQL source: names match case-insensitively
	comp := CompareTables(source, target, mysqlCompareOpts(t))
	assert.True(t, comp.Identical())

	// Postgres source: exact match required
	pg, err := sqlgen.ForEngine(schema.EnginePostgres)
	require.NoError(t, err)
	comp = CompareTables(source, target, CompareOptions{
		Dialect:         pg,
		SourceEngine:    schema.EnginePostgres,
		QualifiedTarget: "public.t",
	})
	assert.Len(t, comp.Changes, 2) // add UserID, drop userid
}
