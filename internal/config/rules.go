package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const rulesFile = "rules.yaml"

// Rules holds per-user comparison rules loaded from ~/.schemadrift/rules.yaml.
// Flags on the command line take precedence over anything in here.
type Rules struct {
	IncludeIndexes     bool     `yaml:"include_indexes"`
	IncludeForeignKeys bool     `yaml:"include_foreign_keys"`
	ExcludeTables      []string `yaml:"exclude_tables"`
	Jobs               int      `yaml:"jobs"`
}

// RulesPath returns the full path to the rules file
func RulesPath() (string, error) {
	dir, err := SchemadriftDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, rulesFile), nil
}

// LoadRules reads the rules file if present
func LoadRules() (*Rules, error) {
	path, err := RulesPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // No rules file is fine
		}
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	var rules Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}

	return &rules, nil
}

// SaveRules writes the rules file
func SaveRules(rules *Rules) error {
	path, err := RulesPath()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create schemadrift directory: %w", err)
	}

	data, err := yaml.Marshal(rules)
	if err != nil {
		return fmt.Errorf("failed to marshal rules: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write rules: %w", err)
	}

	return nil
}
