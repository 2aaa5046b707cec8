// Package tui provides the terminal user interface for git-qa.
package tui

// Mode represents the current UI mode.
type Mode int

const (
	ModeNormal Mode = iota // Default navigation mode
	ModeBusy               // Waiting for the tracker or the source forge
	ModeMove               // Status picker mode
	ModeHelp               // Help overlay mode
	ModeDone               // Issues created, nothing left to do
)

// String returns the string representation of the mode.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModeBusy:
		return "busy"
	case ModeMove:
		return "move"
	case ModeHelp:
		return "help"
	case ModeDone:
		return "done"
	default:
		return "unknown"
	}
}

// Focus is the pane receiving navigation keys on the create screen.
type Focus int

const (
	FocusCandidates Focus = iota
	FocusTeams
)

func (f Focus) String() string {
	switch f {
	case FocusCandidates:
		return "candidates"
	case FocusTeams:
		return "teams"
	default:
		return "unknown"
	}
}

// Grouping selects the index used to filter the status board.
type Grouping int

const (
	GroupByTeam Grouping = iota
	GroupByMember
)

func (g Grouping) String() string {
	if g == GroupByMember {
		return "member"
	}
	return "team"
}
