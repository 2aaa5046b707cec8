package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the keybindings for the TUI.
type KeyMap struct {
	// Navigation
	Up    key.Binding
	Down  key.Binding
	Left  key.Binding
	Right key.Binding
	Focus key.Binding // Switch between candidates and teams

	// Create screen
	Toggle key.Binding // Toggle the team under the cursor
	Create key.Binding // Create issues for assigned candidates

	// Status board
	Move       key.Binding // Change the status of the selected issue
	Group      key.Binding // Switch between team and member grouping
	NextFilter key.Binding
	PrevFilter key.Binding
	Refresh    key.Binding

	// General
	Enter  key.Binding
	Escape key.Binding
	Help   key.Binding
	Quit   key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev column"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next column"),
		),
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch pane"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle team"),
		),
		Create: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "create issues"),
		),
		Move: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "move"),
		),
		Group: key.NewBinding(
			key.WithKeys("g"),
			key.WithHelp("g", "group by"),
		),
		NextFilter: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", "next filter"),
		),
		PrevFilter: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", "prev filter"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "confirm"),
		),
		Escape: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "cancel"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// helpKeys adapts a set of bindings to help.KeyMap.
type helpKeys struct {
	short []key.Binding
	full  [][]key.Binding
}

func (h helpKeys) ShortHelp() []key.Binding  { return h.short }
func (h helpKeys) FullHelp() [][]key.Binding { return h.full }

// CreateHelp returns the bindings of the create screen.
func (k KeyMap) CreateHelp() helpKeys {
	return helpKeys{
		short: []key.Binding{k.Up, k.Down, k.Focus, k.Toggle, k.Create, k.Help, k.Quit},
		full: [][]key.Binding{
			{k.Up, k.Down, k.Focus},
			{k.Toggle, k.Create},
			{k.Help, k.Quit},
		},
	}
}

// BoardHelp returns the bindings of the status board.
func (k KeyMap) BoardHelp() helpKeys {
	return helpKeys{
		short: []key.Binding{k.Left, k.Right, k.Up, k.Down, k.Move, k.Group, k.Help, k.Quit},
		full: [][]key.Binding{
			{k.Up, k.Down, k.Left, k.Right},
			{k.Move, k.Enter, k.Escape},
			{k.Group, k.PrevFilter, k.NextFilter, k.Refresh},
			{k.Help, k.Quit},
		},
	}
}
