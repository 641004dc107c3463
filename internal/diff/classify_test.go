package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemadrift/schemadrift/internal/schema"
)

func shopSnapshot() *schema.Snapshot {
	return &schema.Snapshot{
		Engine:   schema.EngineMySQL,
		Database: "shop",
		Tables: []schema.Table{
			{
				Name: "users",
				Columns: []schema.Column{
					{Name: "id", Type: "INT", Key: schema.KeyPrimary},
					{Name: "name", Type: "VARCHAR(50)"},
				},
				DDL: "CREATE TABLE `users` (\n  `id` INT NOT NULL,\n  `name` VARCHAR(50) NOT NULL,\n  PRIMARY KEY (`id`)\n)",
			},
			{
				Name: "orders",
				Columns: []schema.Column{
					{Name: "id", Type: "INT", Key: schema.KeyPrimary},
					{Name: "total", Type: "DECIMAL(10,2)"},
				},
				DDL: "CREATE TABLE `orders` (\n  `id` INT NOT NULL,\n  `total` DECIMAL(10,2) NOT NULL,\n  PRIMARY KEY (`id`)\n)",
			},
		},
		Views: []schema.View{
			{Name: "recent_orders", Definition: "SELECT id, total FROM orders ORDER BY id DESC LIMIT 100"},
		},
	}
}

func classifyOpts() Options {
	return Options{SourceLabel: "mysql shop@src", TargetLabel: "mysql shop@tgt"}
}

func TestClassify_SelfIdentity(t *testing.T) {
	source := shopSnapshot()
	target := shopSnapshot()

	set, err := Classify(source, target, classifyOpts())

	require.NoError(t, err)
	assert.Empty(t, set.Diffs)
	assert.Equal(t, 0, set.Counts().Total)
}

func TestClassify_CreateUsesDDLVerbatim(t *testing.T) {
	source := shopSnapshot()
	target := shopSnapshot()
	target.Tables = target.Tables[:1] // drop "orders" on the target side

	set, err := Classify(source, target, classifyOpts())

	require.NoError(t, err)
	require.Len(t, set.Diffs, 1)
	d := set.Diffs[0]
	assert.Equal(t, KindCreate, d.Kind)
	assert.Equal(t, "table:orders", d.ID)
	assert.Equal(t, "orders", d.SourceName)
	assert.Equal(t, "", d.TargetName)
	assert.Equal(t, source.Tables[1].DDL, d.SQL)
	assert.Equal(t, Counts{Create: 1, Total: 1}, set.Counts())
}

func TestClassify_DropUsesQualifiedTargetName(t *testing.T) {
	source := shopSnapshot()
	target := shopSnapshot()
	target.Tables = append(target.Tables, schema.Table{
		Name:    "legacy_logs",
		Columns: []schema.Column{{Name: "id", Type: "INT"}},
	})

	set, err := Classify(source, target, classifyOpts())

	require.NoError(t, err)
	require.Len(t, set.Diffs, 1)
	d := set.Diffs[0]
	assert.Equal(t, KindDrop, d.Kind)
	assert.Equal(t, "DROP TABLE shop.legacy_logs", d.SQL)
	assert.Equal(t, "", d.SourceName)
	assert.Equal(t, "legacy_logs", d.TargetName)
}

func TestClassify_AlterWrapsComparatorFragments(t *testing.T) {
	source := shopSnapshot()
	target := shopSnapshot()
	target.Tables[0].Columns = target.Tables[0].Columns[:1] // users loses "name"

	set, err := Classify(source, target, classifyOpts())

	require.NoError(t, err)
	require.Len(t, set.Diffs, 1)
	d := set.Diffs[0]
	assert.Equal(t, KindAlter, d.Kind)
	assert.Equal(t, "table:users", d.ID)
	assert.Equal(t, "ALTER TABLE shop.users\n  ADD COLUMN name VARCHAR(50) NOT NULL", d.SQL)
	require.Len(t, d.Changes, 1)
	assert.Equal(t, ChangeAdd, d.Changes[0].Kind)
	assert.Equal(t, "name", d.Changes[0].ColumnName)
	assert.Contains(t, d.SQL, "ADD COLUMN name VARCHAR(50) NOT NULL")
}

func TestClassify_Determinism(t *testing.T) {
	source := shopSnapshot()
	target := shopSnapshot()
	target.Tables[0].Columns = target.Tables[0].Columns[:1]
	target.Tables = append(target.Tables, schema.Table{Name: "stale", Columns: []schema.Column{{Name: "id", Type: "INT"}}})
	source.Tables = append(source.Tables, schema.Table{Name: "brand_new", DDL: "CREATE TABLE brand_new (id INT)"})

	first, err := Classify(source, target, classifyOpts())
	require.NoError(t, err)
	second, err := Classify(source, target, classifyOpts())
	require.NoError(t, err)

	require.Equal(t, len(first.Diffs), len(second.Diffs))
	for i := range first.Diffs {
		assert.Equal(t, first.Diffs[i].ID, second.Diffs[i].ID)
		assert.Equal(t, first.Diffs[i].Kind, second.Diffs[i].Kind)
		assert.Equal(t, first.Diffs[i].SQL, second.Diffs[i].SQL)
	}

	// Creates come first, then drops, then alters
	assert.Equal(t, KindCreate, first.Diffs[0].Kind)
	assert.Equal(t, KindDrop, first.Diffs[1].Kind)
	assert.Equal(t, KindAlter, first.Diffs[2].Kind)
}

func TestClassify_IdenticalDiffsKeptButNotCounted(t *testing.T) {
	source := shopSnapshot()
	target := shopSnapshot()

	opts := classifyOpts()
	opts.KeepIdentical = true
	set, err := Classify(source, target, opts)

	require.NoError(t, err)
	require.Len(t, set.Diffs, 3) // users, orders, recent_orders
	for _, d := range set.Diffs {
		assert.Equal(t, KindIdentical, d.Kind)
		assert.Empty(t, d.SQL)
	}
	assert.Equal(t, 0, set.Counts().Total)
}

func TestClassify_ViewDefinitionChange(t *testing.T) {
	source := shopSnapshot()
	target := shopSnapshot()
	target.Views[0].Definition = "SELECT id FROM orders"

	set, err := Classify(source, target, classifyOpts())

	require.NoError(t, err)
	require.Len(t, set.Diffs, 1)
	d := set.Diffs[0]
	assert.Equal(t, ObjectView, d.ObjectType)
	assert.Equal(t, KindAlter, d.Kind)
	assert.Equal(t, "view:recent_orders", d.ID)
	assert.Equal(t, "CREATE OR REPLACE VIEW shop.recent_orders AS "+source.Views[0].Definition, d.SQL)
}

func TestClassify_ViewWhitespaceOnlyChangeIsIdentical(t *testing.T) {
	source := shopSnapshot()
	target := shopSnapshot()
	target.Views[0].Definition = "SELECT id, total\n  FROM orders\n  ORDER BY id DESC LIMIT 100;"

	set, err := Classify(source, target, classifyOpts())

	require.NoError(t, err)
	assert.Empty(t, set.Diffs)
}

func TestClassify_ViewCreateAndDrop(t *testing.T) {
	source := shopSnapshot()
	target := shopSnapshot()
	target.Views = []schema.View{{Name: "stale_view", Definition: "SELECT 1"}}

	set, err := Classify(source, target, classifyOpts())

	require.NoError(t, err)
	require.Len(t, set.Diffs, 2)
	assert.Equal(t, KindCreate, set.Diffs[0].Kind)
	assert.Equal(t, "CREATE VIEW shop.recent_orders AS "+source.Views[0].Definition, set.Diffs[0].SQL)
	assert.Equal(t, KindDrop, set.Diffs[1].Kind)
	assert.Equal(t, "DROP VIEW shop.stale_view", set.Diffs[1].SQL)
}

func TestClassify_RunIdentityDiffersAcrossRuns(t *testing.T) {
	source := shopSnapshot()
	target := shopSnapshot()

	first, err := Classify(source, target, classifyOpts())
	require.NoError(t, err)
	second, err := Classify(source, target, classifyOpts())
	require.NoError(t, err)

	assert.NotEmpty(t, first.RunID)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestClassify_UnknownTargetEngine(t *testing.T) {
	source := shopSnapshot()
	target := shopSnapshot()
	target.Engine = "oracle"

	_, err := Classify(source, target, classifyOpts())

	assert.Error(t, err)
}

func TestClassifyTablePair_AlterBetweenDifferentNames(t *testing.T) {
	source := shopSnapshot()
	target := &schema.Snapshot{
		Engine:   schema.EngineMySQL,
		Database: "archive",
		Tables: []schema.Table{
			{
				Name:    "users_backup",
				Columns: []schema.Column{{Name: "id", Type: "INT", Key: schema.KeyPrimary}},
			},
		},
	}

	set, err := ClassifyTablePair(source, target, "users", "users_backup", classifyOpts())

	require.NoError(t, err)
	require.Len(t, set.Diffs, 1)
	d := set.Diffs[0]
	assert.Equal(t, KindAlter, d.Kind)
	assert.Equal(t, "table:users_backup", d.ID)
	assert.Equal(t, "users", d.SourceName)
	assert.Equal(t, "users_backup", d.TargetName)
	assert.Contains(t, d.SQL, "ALTER TABLE archive.users_backup")
	assert.Contains(t, d.SQL, "ADD COLUMN name VARCHAR(50) NOT NULL")
}

func TestClassifyTablePair_IdenticalAlwaysEmitted(t *testing.T) {
	source := shopSnapshot()
	target := shopSnapshot()

	set, err := ClassifyTablePair(source, target, "users", "users", classifyOpts())

	require.NoError(t, err)
	require.Len(t, set.Diffs, 1)
	assert.Equal(t, KindIdentical, set.Diffs[0].Kind)
	assert.Equal(t, 0, set.Counts().Total)
}

func TestClassifyTablePair_MissingTable(t *testing.T) {
	source := shopSnapshot()
	target := shopSnapshot()

	_, err := ClassifyTablePair(source, target, "nope", "users", classifyOpts())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found in source snapshot")

	_, err = ClassifyTablePair(source, target, "users", "nope", classifyOpts())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found in target snapshot")
}

func TestClassify_CrossEngineTargetDialect(t *testing.T) {
	source := shopSnapshot()
	target := &schema.Snapshot{
		Engine:   schema.EnginePostgres,
		Database: "public",
		Tables: []schema.Table{
			{Name: "users", Columns: []schema.Column{
				{Name: "id", Type: "INT", Key: schema.KeyPrimary},
				{Name: "name", Type: "VARCHAR(50)"},
			}},
			{Name: "orders", Columns: []schema.Column{
				{Name: "id", Type: "INT", Key: schema.KeyPrimary},
			}},
		},
		Views: []schema.View{{Name: "recent_orders", Definition: "SELECT id, total FROM orders ORDER BY id DESC LIMIT 100"}},
	}

	set, err := Classify(source, target, classifyOpts())

	require.NoError(t, err)
	require.Len(t, set.Diffs, 1)

	// The generated SQL speaks the target's dialect
	d := set.Diffs[0]
	assert.Equal(t, KindAlter, d.Kind)
	assert.Contains(t, d.SQL, "ALTER TABLE public.orders")
	assert.Contains(t, d.SQL, "ADD COLUMN total DECIMAL(10,2) NOT NULL")
}
