package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	schemadriftDir = ".schemadrift"
	configFile     = "schemadrift.json"
)

// SchemadriftDir returns the main schemadrift directory path (~/.schemadrift)
func SchemadriftDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, schemadriftDir), nil
}

// SnapshotBasePath returns the path where snapshot files are stored by default
func SnapshotBasePath() (string, error) {
	dir, err := SchemadriftDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "snapshots"), nil
}

// ConfigPath returns the full path to the config file
func ConfigPath() (string, error) {
	dir, err := SchemadriftDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFile), nil
}

// Exists checks if the config file exists
func Exists() bool {
	path, err := ConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Load reads the config from disk
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("schemadrift not initialized. Run 'schemadrift init' first")
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	// Initialize maps if nil
	if cfg.Connections == nil {
		cfg.Connections = make(map[string]*Connection)
	}

	return &cfg, nil
}

// Save writes the config to disk
func Save(cfg *Config) error {
	dir, err := SchemadriftDir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create schemadrift directory: %w", err)
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Init creates a new config file with defaults
func Init() error {
	if Exists() {
		return fmt.Errorf("schemadrift already initialized")
	}

	cfg := NewConfig()
	return Save(cfg)
}
