package introspect

import (
	"errors"
	"fmt"
)

// MetadataFetchError reports a failed metadata query with enough
// identity to name the object that broke the run.
type MetadataFetchError struct {
	Engine   string
	Database string
	Object   string // table or view name, empty for database-level queries
	Op       string // what was being fetched: "tables", "columns", "ddl", ...
	Err      error
}

func (e *MetadataFetchError) Error() string {
	if e.Object == "" {
		return fmt.Sprintf("failed to fetch %s from %s database %q: %v", e.Op, e.Engine, e.Database, e.Err)
	}
	return fmt.Sprintf("failed to fetch %s for %q in %s database %q: %v", e.Op, e.Object, e.Engine, e.Database, e.Err)
}

func (e *MetadataFetchError) Unwrap() error {
	return e.Err
}

// AsMetadataFetchError unwraps err looking for a MetadataFetchError.
func AsMetadataFetchError(err error) (*MetadataFetchError, bool) {
	var fe *MetadataFetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
