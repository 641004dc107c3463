package config

import "time"

// Config represents the global schemadrift configuration
type Config struct {
	Version     int                    `json:"version"`
	Defaults    Defaults               `json:"defaults"`
	Connections map[string]*Connection `json:"connections"`
	Updates     UpdateSettings         `json:"updates"`
}

// Defaults contains default comparison settings
type Defaults struct {
	Jobs               int  `json:"jobs"`
	IncludeIndexes     bool `json:"includeIndexes"`
	IncludeForeignKeys bool `json:"includeForeignKeys"`
}

// Connection represents a registered connection profile. The URL keeps
// its credentials; it never leaves the config file unmasked.
type Connection struct {
	URL      string    `json:"url"`
	Database string    `json:"database,omitempty"`
	AddedAt  time.Time `json:"addedAt"`
}

// UpdateSettings tracks the state of release checks
type UpdateSettings struct {
	LastCheck   time.Time `json:"lastCheck"`
	LastVersion string    `json:"lastVersion,omitempty"`
}

// NewConfig creates a new config with defaults
func NewConfig() *Config {
	return &Config{
		Version: 1,
		Defaults: Defaults{
			Jobs: 4,
		},
		Connections: make(map[string]*Connection),
	}
}
