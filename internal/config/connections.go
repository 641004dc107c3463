package config

import (
	"fmt"
	"sort"
	"time"

	"github.com/xo/dburl"
)

// AddConnection registers a new connection profile
func (c *Config) AddConnection(name, urlstr, database string) error {
	if name == "" {
		return fmt.Errorf("connection name is required")
	}

	// Check if already registered
	if _, exists := c.Connections[name]; exists {
		return fmt.Errorf("connection '%s' already registered", name)
	}

	// Validate the URL up front so a typo surfaces here, not mid-comparison
	if _, err := dburl.Parse(urlstr); err != nil {
		return fmt.Errorf("invalid connection url: %w", err)
	}

	c.Connections[name] = &Connection{
		URL:      urlstr,
		Database: database,
		AddedAt:  time.Now(),
	}

	return nil
}

// RemoveConnection unregisters a connection profile
func (c *Config) RemoveConnection(name string) error {
	if _, exists := c.Connections[name]; !exists {
		return fmt.Errorf("connection '%s' not found", name)
	}

	delete(c.Connections, name)
	return nil
}

// GetConnection returns a connection profile by name
func (c *Config) GetConnection(name string) (*Connection, bool) {
	conn, ok := c.Connections[name]
	return conn, ok
}

// ListConnections returns all connection names, sorted
func (c *Config) ListConnections() []string {
	names := make([]string, 0, len(c.Connections))
	for name := range c.Connections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve turns a command-line argument into a connection URL and database.
// A registered profile name wins; anything else is treated as a URL. An
// explicit database overrides the profile's stored one.
func (c *Config) Resolve(arg, database string) (string, string) {
	if conn, ok := c.Connections[arg]; ok {
		db := conn.Database
		if database != "" {
			db = database
		}
		return conn.URL, db
	}
	return arg, database
}
