package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRules_NonExistent(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	rules, err := LoadRules()

	// No rules file should return nil, nil
	assert.NoError(t, err)
	assert.Nil(t, rules)
}

func TestLoadRules_Valid(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".schemadrift")
	require.NoError(t, os.MkdirAll(dir, 0755))
	content := `include_indexes: true
include_foreign_keys: true
exclude_tables:
  - "audit_*"
  - schema_migrations
jobs: 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte(content), 0644))

	rules, err := LoadRules()

	require.NoError(t, err)
	require.NotNil(t, rules)
	assert.True(t, rules.IncludeIndexes)
	assert.True(t, rules.IncludeForeignKeys)
	assert.Equal(t, []string{"audit_*", "schema_migrations"}, rules.ExcludeTables)
	assert.Equal(t, 8, rules.Jobs)
}

func TestLoadRules_InvalidYAML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".schemadrift")
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte("jobs: [not an int"), 0644))

	rules, err := LoadRules()

	assert.Error(t, err)
	assert.Nil(t, rules)
	assert.Contains(t, err.Error(), "failed to parse rules")
}

func TestSaveRules_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	rules := &Rules{
		IncludeIndexes: true,
		ExcludeTables:  []string{"tmp_*"},
		Jobs:           2,
	}
	require.NoError(t, SaveRules(rules))

	loaded, err := LoadRules()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, rules, loaded)
}
