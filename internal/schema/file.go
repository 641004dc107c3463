package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// SaveFile writes the snapshot to path as indented JSON.
func (s *Snapshot) SaveFile(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot file: %w", err)
	}

	return nil
}

// LoadFile reads a snapshot previously written by SaveFile and
// validates the fields a comparison run depends on.
func LoadFile(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot file: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to parse snapshot file %s: %w", path, err)
	}

	switch snap.Engine {
	case EngineMySQL, EnginePostgres, EngineSQLite:
	default:
		return nil, fmt.Errorf("snapshot file %s has unknown engine %q", path, snap.Engine)
	}
	if snap.Database == "" {
		return nil, fmt.Errorf("snapshot file %s is missing the database name", path)
	}
	if snap.CapturedAt.IsZero() {
		snap.CapturedAt = time.Now()
	}

	return &snap, nil
}
