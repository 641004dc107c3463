package tui

import "github.com/schemadrift/schemadrift/internal/engine"

// View represents the current screen
type View int

const (
	ViewLoading View = iota
	ViewDiffs
	ViewDetail
	ViewHelp
	ViewError
)

// Messages for async operations

// CompareDoneMsg indicates the comparison has finished
type CompareDoneMsg struct {
	Result *engine.Result
	Err    error
}
