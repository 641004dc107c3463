package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/schemadrift/schemadrift/internal/diff"
	"github.com/schemadrift/schemadrift/internal/tui/styles"
)

// View renders the current state
func (m *Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	var sections []string

	// Header
	sections = append(sections, m.renderHeader())

	// Title bar
	sections = append(sections, m.renderTitleBar())

	// Main content
	switch m.currentView {
	case ViewLoading:
		sections = append(sections, m.renderLoading())
	case ViewError:
		sections = append(sections, m.renderError())
	case ViewDetail:
		sections = append(sections, m.renderDetail())
	case ViewHelp:
		sections = append(sections, m.renderHelpPage())
	default:
		sections = append(sections, m.renderDiffsTable())
	}

	// Footer with counts, then the command bar
	sections = append(sections, m.renderFooter())
	sections = append(sections, m.renderKeyHints())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderHeader() string {
	// Logo
	logo := m.styles.Logo.Render("⚡ SCHEMADRIFT")

	// Info
	info := ""
	if m.result != nil {
		info = m.styles.HeaderInfo.Render(fmt.Sprintf("  %s → %s", m.result.Set.SourceLabel, m.result.Set.TargetLabel))
	}

	versionInfo := m.styles.HeaderInfo.Render(fmt.Sprintf("v%s", m.version))

	// Build header line
	left := logo + info
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(versionInfo)

	spacing := m.width - leftWidth - rightWidth - 2
	if spacing < 0 {
		spacing = 0
	}

	header := left + strings.Repeat(" ", spacing) + versionInfo
	return m.styles.Header.Width(m.width).Render(header)
}

func (m *Model) renderTitleBar() string {
	var title string
	var count int

	switch m.currentView {
	case ViewLoading:
		title = "COMPARING"
	case ViewError:
		title = "ERROR"
	case ViewDetail:
		if d := m.currentDiff(); d != nil {
			title = strings.ToUpper(string(d.Kind)) + ": " + d.ID
		}
	case ViewHelp:
		title = "HELP"
	default:
		title = "DIFFS"
		count = m.diffCount()
	}

	// Build title: ─────── TITLE(count) ───────
	titleText := m.styles.TitleText.Render(title)
	if count > 0 {
		titleText += m.styles.TitleCount.Render(fmt.Sprintf("(%d)", count))
	}

	titleWidth := lipgloss.Width(titleText)
	dashWidth := (m.width - titleWidth - 4) / 2
	if dashWidth < 0 {
		dashWidth = 0
	}

	dashes := m.styles.TitleDash.Render(strings.Repeat("─", dashWidth))
	return dashes + " " + titleText + " " + dashes
}

func (m *Model) renderLoading() string {
	return m.padContent("  " + m.spinner.View() + " Fetching schemas...")
}

func (m *Model) renderError() string {
	if m.err == nil {
		return m.padContent("")
	}
	msg := lipgloss.NewStyle().Foreground(styles.ErrorColor).Render("✗ " + m.err.Error())
	return m.padContent("  " + msg)
}

func (m *Model) renderDiffsTable() string {
	if m.diffCount() == 0 {
		empty := m.styles.Muted.Render("No differences found. The schemas match.")
		return m.padContent(empty)
	}

	// Column widths
	selW := 3
	kindW := 10
	objectW := 28
	reasonW := m.width - selW - kindW - objectW - 10
	if reasonW < 20 {
		reasonW = 20
	}

	var rows []string

	// Header
	header := fmt.Sprintf("  %-*s  %-*s  %-*s  %-*s",
		selW, "SEL",
		kindW, "KIND",
		objectW, "OBJECT",
		reasonW, "REASON")
	rows = append(rows, m.styles.TableHeader.Render(header))

	// Calculate visible rows
	tableHeight := m.tableHeight()
	start := m.offset
	end := start + tableHeight
	if end > m.diffCount() {
		end = m.diffCount()
	}

	// Rows
	for i := start; i < end; i++ {
		d := &m.result.Set.Diffs[i]
		excluded := m.result.Selection.IsExcluded(d.ID)

		sel := "[x]"
		if excluded {
			sel = "[ ]"
		}
		if d.Kind == diff.KindIdentical {
			sel = " - "
		}

		// Build row content (without cursor)
		rowContent := fmt.Sprintf("%-*s  %-*s  %-*s  %-*s",
			selW, sel,
			kindW, string(d.Kind),
			objectW, truncate(d.ID, objectW),
			reasonW, truncate(d.Reason, reasonW))

		// Pad to full width
		rowContent = padRight(rowContent, m.width-2)

		if i == m.cursor {
			rows = append(rows, m.styles.TableRowSelected.Width(m.width).Render("> "+rowContent))
		} else if excluded || d.Kind == diff.KindIdentical {
			rows = append(rows, m.styles.Muted.Render("  "+rowContent))
		} else {
			rows = append(rows, "  "+m.kindStyle(d.Kind).Render(rowContent))
		}
	}

	return m.padContent(strings.Join(rows, "\n"))
}

func (m *Model) kindStyle(kind diff.Kind) lipgloss.Style {
	switch kind {
	case diff.KindCreate:
		return m.styles.KindCreate
	case diff.KindAlter:
		return m.styles.KindAlter
	case diff.KindDrop:
		return m.styles.KindDrop
	}
	return m.styles.TableRow
}

func (m *Model) renderDetail() string {
	d := m.currentDiff()
	if d == nil {
		return m.padContent("")
	}

	var lines []string
	lines = append(lines, "  "+m.styles.TitleText.Render(d.Reason))

	names := fmt.Sprintf("source: %s   target: %s", nameOrDash(d.SourceName), nameOrDash(d.TargetName))
	lines = append(lines, "  "+m.styles.Muted.Render(names))
	if m.result.Selection.IsExcluded(d.ID) {
		lines = append(lines, "  "+m.styles.Warning.Render("excluded from the script"))
	}
	lines = append(lines, "")

	for _, ch := range d.Changes {
		marker := "~"
		switch ch.Kind {
		case diff.ChangeAdd:
			marker = "+"
		case diff.ChangeDrop:
			marker = "-"
		}
		lines = append(lines, fmt.Sprintf("  %s %s: %s", marker, ch.ColumnName, ch.Detail))
	}
	for _, change := range d.IndexChanges {
		lines = append(lines, "  ~ "+change)
	}
	for _, change := range d.ForeignKeyChanges {
		lines = append(lines, "  ~ "+change)
	}

	if d.SQL != "" {
		lines = append(lines, "")
		for _, sqlLine := range strings.Split(d.SQL, "\n") {
			lines = append(lines, "  "+m.styles.SQL.Render(sqlLine))
		}
	}

	return m.padContent(strings.Join(lines, "\n"))
}

func (m *Model) renderHelpPage() string {
	m.help.ShowAll = true
	content := "  " + strings.ReplaceAll(m.help.View(m.keyMap), "\n", "\n  ")
	m.help.ShowAll = false
	return m.padContent(content)
}

func (m *Model) renderFooter() string {
	var left, right string

	if m.result != nil {
		counts := m.result.Set.Counts()
		summary := fmt.Sprintf("%d to create, %d to alter, %d to drop", counts.Create, counts.Alter, counts.Drop)
		if n := m.result.Selection.ExcludedCount(); n > 0 {
			summary += fmt.Sprintf(" · %d excluded", n)
		}
		left = "  " + m.styles.Footer.Render(summary)

		if m.result.Warning != "" {
			right = m.styles.Warning.Render("⚠ " + m.result.Warning)
		}
	}

	// Calculate spacing
	leftWidth := lipgloss.Width(left)
	rightWidth := lipgloss.Width(right)
	spacing := m.width - leftWidth - rightWidth - 2
	if spacing < 0 {
		spacing = 0
	}

	return left + strings.Repeat(" ", spacing) + right
}

// CommandKey represents a key-action pair for the command bar
type CommandKey struct {
	Key    string
	Action string
}

// getContextKeys returns the relevant keybindings for the current view
func (m *Model) getContextKeys() []CommandKey {
	switch m.currentView {
	case ViewDiffs:
		return []CommandKey{{"space", "toggle"}, {"a", "all"}, {"n", "none"}, {"enter", "detail"}, {"g", "generate"}, {"?", "help"}, {"q", "quit"}}
	case ViewDetail:
		return []CommandKey{{"space", "toggle"}, {"j/k", "next/prev"}, {"esc", "back"}, {"q", "quit"}}
	case ViewHelp:
		return []CommandKey{{"esc", "back"}}
	default:
		return []CommandKey{{"q", "quit"}}
	}
}

// renderKeyHints renders the command bar at the bottom
func (m *Model) renderKeyHints() string {
	commands := m.getContextKeys()

	var parts []string
	for _, c := range commands {
		parts = append(parts, m.styles.RenderCommand(c.Key, c.Action))
	}
	return "  " + strings.Join(parts, "   ")
}

func (m *Model) padContent(content string) string {
	lines := strings.Split(content, "\n")
	tableHeight := m.tableHeight()

	// Pad to fill available height
	for len(lines) < tableHeight {
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

func nameOrDash(name string) string {
	if name == "" {
		return "-"
	}
	return name
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
