package engine

import "errors"

// ErrComparisonInFlight rejects a run started while the same Engine is
// still working on another one.
var ErrComparisonInFlight = errors.New("a comparison is already running")
