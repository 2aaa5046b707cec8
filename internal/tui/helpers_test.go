package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/runoshun/git-qa/internal/domain"
	"github.com/stretchr/testify/require"
)

// run feeds the messages produced by cmd back into the model until the chain ends.
func run(t *testing.T, m tea.Model, cmd tea.Cmd) {
	t.Helper()
	for i := 0; cmd != nil; i++ {
		require.Less(t, i, 100, "command chain does not terminate")
		_, cmd = m.Update(cmd())
	}
}

// press sends a key to the model and runs the resulting commands.
func press(t *testing.T, m tea.Model, keys ...string) {
	t.Helper()
	for _, k := range keys {
		_, cmd := m.Update(keyMsg(k))
		run(t, m, cmd)
	}
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func testRepo() *domain.RepoConfig {
	return &domain.RepoConfig{
		QAStatuses:    []string{"TODO", "IN PROGRESS", "DONE"},
		IgnoredLabels: []string{"qa/skip"},
		Teams: map[string]*domain.TeamConfig{
			"Alpha": {
				JiraProject:   "FOO",
				JiraIssueType: "Task",
				JiraStatuses:  []any{"To Do", "In Progress", "Done"},
				GitHubTeam:    "alpha-team",
				GitHubLabels:  []string{"team/alpha"},
			},
			"Beta": {
				JiraProject:   "FOO",
				JiraIssueType: "Task",
				JiraComponent: "Web",
				JiraStatuses:  map[string]any{"TODO": "Open", "IN PROGRESS": "Doing", "DONE": "Closed"},
				GitHubTeam:    "beta-team",
				GitHubLabels:  []string{"team/beta"},
			},
		},
	}
}
