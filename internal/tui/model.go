// Package tui implements the interactive review screen: the diffs of
// one comparison as a navigable list where individual entries can be
// taken out of the sync script before it is generated.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/schemadrift/schemadrift/internal/diff"
	"github.com/schemadrift/schemadrift/internal/engine"
	"github.com/schemadrift/schemadrift/internal/tui/keys"
	"github.com/schemadrift/schemadrift/internal/tui/styles"
)

// CompareFunc produces the comparison the review screen presents. It
// runs asynchronously after the program starts, behind the spinner.
type CompareFunc func(ctx context.Context) (*engine.Result, error)

// Model is the main TUI state
type Model struct {
	compare CompareFunc
	result  *engine.Result

	// Version info
	version string

	// Styles
	styles *styles.Styles

	// UI state
	width  int
	height int
	ready  bool

	// Navigation
	currentView View
	prevView    View

	// List state
	cursor int
	offset int

	// Help
	help   help.Model
	keyMap keys.KeyMap

	// Comparison failure, shown on the error screen
	err error

	// True once the user asked for the script
	accepted bool

	// Spinner shown while schemas are being fetched
	spinner spinner.Model
}

// NewModel creates a review model for one comparison
func NewModel(compare CompareFunc, version string) *Model {
	h := help.New()
	h.ShowAll = false

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return &Model{
		compare:     compare,
		version:     version,
		styles:      styles.DefaultStyles(),
		currentView: ViewLoading,
		help:        h,
		keyMap:      keys.DefaultKeyMap(),
		spinner:     sp,
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runCompare())
}

// runCompare returns a command that runs the comparison in the background
func (m *Model) runCompare() tea.Cmd {
	return func() tea.Msg {
		result, err := m.compare(context.Background())
		return CompareDoneMsg{Result: result, Err: err}
	}
}

// Result returns the comparison outcome, nil until it completes.
func (m *Model) Result() *engine.Result {
	return m.result
}

// Accepted reports whether the user confirmed script generation.
func (m *Model) Accepted() bool {
	return m.accepted
}

// Err returns the comparison error, if the comparison failed.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) diffCount() int {
	if m.result == nil {
		return 0
	}
	return len(m.result.Set.Diffs)
}

// currentDiff returns the diff under the cursor, nil when the list is
// empty or the comparison has not finished.
func (m *Model) currentDiff() *diff.Diff {
	if m.result == nil || m.cursor < 0 || m.cursor >= len(m.result.Set.Diffs) {
		return nil
	}
	return &m.result.Set.Diffs[m.cursor]
}

// tableHeight returns available height for table content
func (m *Model) tableHeight() int {
	// Header (1) + title bar (1) + footer (1) + command bar (1)
	return m.height - 4
}

// ensureCursorVisible adjusts offset to keep cursor visible
func (m *Model) ensureCursorVisible() {
	tableHeight := m.tableHeight()
	if tableHeight <= 0 {
		return
	}

	if m.cursor < m.offset {
		m.offset = m.cursor
	} else if m.cursor >= m.offset+tableHeight {
		m.offset = m.cursor - tableHeight + 1
	}
}
