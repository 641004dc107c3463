package styles

import "github.com/charmbracelet/lipgloss"

// Colors
var (
	// Primary colors
	HighlightColor = lipgloss.Color("#00d4aa")
	WhiteColor     = lipgloss.Color("#ffffff")
	MutedColor     = lipgloss.Color("#6b7280")
	BorderColor    = lipgloss.Color("#3f3f46")

	// Background colors
	CursorBg = lipgloss.Color("#2d4f67")
	HeaderBg = lipgloss.Color("#1a1a2e")

	// Diff kind colors
	CreateColor = lipgloss.Color("#10b981")
	AlterColor  = lipgloss.Color("#f59e0b")
	DropColor   = lipgloss.Color("#ef4444")

	// Status colors
	ErrorColor   = lipgloss.Color("#ef4444")
	WarningColor = lipgloss.Color("#f59e0b")
)

// Styles struct holds all styles
type Styles struct {
	// App
	App lipgloss.Style

	// Header
	Header     lipgloss.Style
	Logo       lipgloss.Style
	HeaderInfo lipgloss.Style

	// Title bar
	TitleBar   lipgloss.Style
	TitleText  lipgloss.Style
	TitleCount lipgloss.Style
	TitleDash  lipgloss.Style

	// Table
	TableHeader      lipgloss.Style
	TableRow         lipgloss.Style
	TableRowSelected lipgloss.Style

	// Diff kinds
	KindCreate lipgloss.Style
	KindAlter  lipgloss.Style
	KindDrop   lipgloss.Style

	// Footer
	Footer  lipgloss.Style
	Warning lipgloss.Style

	// Help
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style

	// Cursor
	Cursor lipgloss.Style

	// Muted
	Muted lipgloss.Style

	// SQL preview
	SQL lipgloss.Style

	// Command bar styles
	CommandKey    lipgloss.Style
	CommandAction lipgloss.Style
}

// DefaultStyles returns the default styles
func DefaultStyles() *Styles {
	s := &Styles{}

	// App
	s.App = lipgloss.NewStyle()

	// Header
	s.Header = lipgloss.NewStyle().
		Background(HeaderBg).
		Padding(0, 1)

	s.Logo = lipgloss.NewStyle().
		Bold(true).
		Foreground(HighlightColor)

	s.HeaderInfo = lipgloss.NewStyle().
		Foreground(MutedColor)

	// Title bar
	s.TitleBar = lipgloss.NewStyle().
		Foreground(MutedColor)

	s.TitleText = lipgloss.NewStyle().
		Bold(true).
		Foreground(WhiteColor)

	s.TitleCount = lipgloss.NewStyle().
		Foreground(MutedColor)

	s.TitleDash = lipgloss.NewStyle().
		Foreground(BorderColor)

	// Table
	s.TableHeader = lipgloss.NewStyle().
		Bold(true).
		Foreground(MutedColor).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(BorderColor)

	s.TableRow = lipgloss.NewStyle().
		Foreground(WhiteColor)

	s.TableRowSelected = lipgloss.NewStyle().
		Foreground(WhiteColor).
		Background(CursorBg).
		Bold(true)

	// Diff kinds
	s.KindCreate = lipgloss.NewStyle().
		Foreground(CreateColor)

	s.KindAlter = lipgloss.NewStyle().
		Foreground(AlterColor)

	s.KindDrop = lipgloss.NewStyle().
		Foreground(DropColor)

	// Footer
	s.Footer = lipgloss.NewStyle().
		Foreground(MutedColor)

	s.Warning = lipgloss.NewStyle().
		Foreground(WarningColor)

	// Help
	s.HelpKey = lipgloss.NewStyle().
		Foreground(HighlightColor).
		Bold(true)

	s.HelpDesc = lipgloss.NewStyle().
		Foreground(MutedColor)

	// Cursor
	s.Cursor = lipgloss.NewStyle().
		Foreground(HighlightColor).
		Bold(true)

	// Muted
	s.Muted = lipgloss.NewStyle().
		Foreground(MutedColor)

	// SQL preview
	s.SQL = lipgloss.NewStyle().
		Foreground(HighlightColor)

	// Command bar styles
	s.CommandKey = lipgloss.NewStyle().
		Foreground(HighlightColor).
		Bold(true)

	s.CommandAction = lipgloss.NewStyle().
		Foreground(MutedColor)

	return s
}

// RenderKeyHelp renders a key and its description
func (s *Styles) RenderKeyHelp(key, desc string) string {
	return s.HelpKey.Render("<"+key+">") + " " + s.HelpDesc.Render(desc)
}

// RenderCommand renders a command key for the command bar (no brackets)
func (s *Styles) RenderCommand(key, action string) string {
	return s.CommandKey.Render(key) + " " + s.CommandAction.Render(action)
}
