package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/schemadrift/schemadrift/internal/diff"
)

// Update handles messages and updates state
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case CompareDoneMsg:
		if msg.Err != nil {
			m.err = msg.Err
			m.currentView = ViewError
			return m, nil
		}
		m.result = msg.Result
		m.currentView = ViewDiffs
		return m, nil
	}

	return m, nil
}

func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Quit works on every screen, even mid-fetch.
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	switch m.currentView {
	case ViewLoading:
		return m, nil

	case ViewError:
		// Any key leaves the error screen.
		return m, tea.Quit

	case ViewHelp:
		if msg.Type == tea.KeyEsc || msg.String() == "?" {
			m.currentView = m.prevView
		}
		return m, nil

	case ViewDetail:
		return m.handleDetailView(msg)
	}

	return m.handleDiffsView(msg)
}

func (m *Model) handleDiffsView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Help):
		m.prevView = m.currentView
		m.currentView = ViewHelp

	case key.Matches(msg, m.keyMap.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureCursorVisible()
		}

	case key.Matches(msg, m.keyMap.Down):
		if m.cursor < m.diffCount()-1 {
			m.cursor++
			m.ensureCursorVisible()
		}

	case key.Matches(msg, m.keyMap.Toggle):
		if d := m.currentDiff(); d != nil && d.Kind != diff.KindIdentical {
			// The id comes from the set itself, so Toggle cannot fail.
			_ = m.result.Selection.Toggle(d.ID)
		}

	case key.Matches(msg, m.keyMap.SelectAll):
		if m.result != nil {
			m.result.Selection.SelectAll()
		}

	case key.Matches(msg, m.keyMap.DeselectAll):
		if m.result != nil {
			m.result.Selection.DeselectAll()
		}

	case key.Matches(msg, m.keyMap.Detail):
		if m.currentDiff() != nil {
			m.prevView = m.currentView
			m.currentView = ViewDetail
		}

	case key.Matches(msg, m.keyMap.Generate):
		if m.result != nil {
			m.accepted = true
			return m, tea.Quit
		}
	}

	return m, nil
}

func (m *Model) handleDetailView(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Back):
		m.currentView = ViewDiffs

	case key.Matches(msg, m.keyMap.Toggle):
		if d := m.currentDiff(); d != nil && d.Kind != diff.KindIdentical {
			_ = m.result.Selection.Toggle(d.ID)
		}

	case key.Matches(msg, m.keyMap.Up):
		if m.cursor > 0 {
			m.cursor--
			m.ensureCursorVisible()
		}

	case key.Matches(msg, m.keyMap.Down):
		if m.cursor < m.diffCount()-1 {
			m.cursor++
			m.ensureCursorVisible()
		}
	}

	return m, nil
}
