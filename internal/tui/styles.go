package tui

import "github.com/charmbracelet/lipgloss"

// Colors defines the color palette for the TUI.
var Colors = struct {
	// Base colors
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Muted      lipgloss.Color
	Error      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Background lipgloss.Color

	// Title/text colors
	TitleNormal   lipgloss.Color
	TitleSelected lipgloss.Color

	// QA status colors
	Initial lipgloss.Color
	Pending lipgloss.Color
	Final   lipgloss.Color
}{
	Primary:    lipgloss.Color("#6C5CE7"), // Purple
	Secondary:  lipgloss.Color("#A29BFE"), // Lavender
	Muted:      lipgloss.Color("#636E72"), // Gray
	Error:      lipgloss.Color("#D63031"), // Red
	Success:    lipgloss.Color("#00B894"), // Green
	Warning:    lipgloss.Color("#FDCB6E"), // Yellow
	Background: lipgloss.Color("#2D3436"), // Dark gray

	TitleNormal:   lipgloss.Color("#DFE6E9"), // Light gray
	TitleSelected: lipgloss.Color("#FFEAA7"), // Yellow

	Initial: lipgloss.Color("#74B9FF"), // Light blue
	Pending: lipgloss.Color("#FDCB6E"), // Yellow
	Final:   lipgloss.Color("#00B894"), // Green
}

// Styles contains all the lipgloss styles for the TUI.
type Styles struct {
	// App
	App lipgloss.Style

	// Header
	Header     lipgloss.Style
	HeaderText lipgloss.Style
	HeaderInfo lipgloss.Style

	// Candidate list
	ItemID            lipgloss.Style
	ItemTitle         lipgloss.Style
	ItemTitleSelected lipgloss.Style
	ItemLabel         lipgloss.Style
	ItemMarker        lipgloss.Style
	ItemCreated       lipgloss.Style
	Indicator         lipgloss.Style

	// Detail pane
	Pane        lipgloss.Style
	PaneFocused lipgloss.Style
	DetailTitle lipgloss.Style
	DetailLabel lipgloss.Style
	DetailValue lipgloss.Style
	TeamOn      lipgloss.Style
	TeamOff     lipgloss.Style

	// Status board
	Column        lipgloss.Style
	ColumnFocused lipgloss.Style
	ColumnHeader  lipgloss.Style
	IssueKey      lipgloss.Style
	IssueSelected lipgloss.Style

	// Dialog
	Dialog      lipgloss.Style
	DialogTitle lipgloss.Style

	// Footer
	Footer    lipgloss.Style
	FooterKey lipgloss.Style
	Progress  lipgloss.Style

	// Error
	ErrorMsg lipgloss.Style
}

// DefaultStyles returns the default styles for the TUI.
func DefaultStyles() Styles {
	return Styles{
		App: lipgloss.NewStyle().
			Padding(0, 1),

		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary).
			MarginBottom(1),

		HeaderText: lipgloss.NewStyle().
			Bold(true),

		HeaderInfo: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		ItemID: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		ItemTitle: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal),

		ItemTitleSelected: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected).
			Bold(true),

		ItemLabel: lipgloss.NewStyle().
			Foreground(Colors.Secondary),

		ItemMarker: lipgloss.NewStyle().
			Foreground(Colors.Warning),

		ItemCreated: lipgloss.NewStyle().
			Foreground(Colors.Success),

		Indicator: lipgloss.NewStyle().
			Foreground(Colors.Primary).
			Bold(true),

		Pane: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Muted).
			Padding(0, 1),

		PaneFocused: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Primary).
			Padding(0, 1),

		DetailTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary),

		DetailLabel: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Width(10),

		DetailValue: lipgloss.NewStyle().
			Foreground(Colors.TitleNormal),

		TeamOn: lipgloss.NewStyle().
			Foreground(Colors.Success),

		TeamOff: lipgloss.NewStyle().
			Foreground(Colors.Muted),

		Column: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(Colors.Muted).
			Padding(0, 1),

		ColumnFocused: lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(Colors.Primary).
			Padding(0, 1),

		ColumnHeader: lipgloss.NewStyle().
			Bold(true),

		IssueKey: lipgloss.NewStyle().
			Foreground(Colors.Secondary),

		IssueSelected: lipgloss.NewStyle().
			Foreground(Colors.TitleSelected).
			Bold(true),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Colors.Primary).
			Padding(1, 2),

		DialogTitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(Colors.Primary).
			MarginBottom(1),

		Footer: lipgloss.NewStyle().
			Foreground(Colors.Muted).
			Padding(0, 1),

		FooterKey: lipgloss.NewStyle().
			Foreground(Colors.Secondary).
			Bold(true),

		Progress: lipgloss.NewStyle().
			Foreground(Colors.Warning),

		ErrorMsg: lipgloss.NewStyle().
			Foreground(Colors.Error).
			Bold(true),
	}
}

// StatusStyle colors a QA status by its position in the workflow.
func (s Styles) StatusStyle(index, total int) lipgloss.Style {
	style := s.ColumnHeader
	switch {
	case index == 0:
		return style.Foreground(Colors.Initial)
	case index == total-1:
		return style.Foreground(Colors.Final)
	default:
		return style.Foreground(Colors.Pending)
	}
}
