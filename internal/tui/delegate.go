package tui

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-runewidth"
	"github.com/runoshun/git-qa/internal/domain"
)

type candidateItem struct {
	candidate *domain.Candidate
	commit    domain.Commit
	issues    []domain.CreatedIssue
}

// createdTeams returns the teams that already have an issue.
func (c candidateItem) createdTeams() []string {
	teams := make([]string, 0, len(c.issues))
	for _, issue := range c.issues {
		teams = append(teams, issue.Team)
	}
	return teams
}

// pending reports whether an assigned team still lacks an issue.
func (c candidateItem) pending(repo *domain.RepoConfig) bool {
	created := c.createdTeams()
	for _, team := range domain.AssignmentsFor(c.candidate, repo).Teams() {
		if !slices.Contains(created, team) {
			return true
		}
	}
	return false
}

func (c candidateItem) FilterValue() string {
	return c.candidate.Title
}

// escapeNewlines replaces newline characters with spaces for single-line display.
func escapeNewlines(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")
	return s
}

type candidateDelegate struct {
	repo   *domain.RepoConfig
	styles Styles
}

func newCandidateDelegate(repo *domain.RepoConfig, styles Styles) candidateDelegate {
	return candidateDelegate{repo: repo, styles: styles}
}

func (d candidateDelegate) Height() int {
	return 1
}

func (d candidateDelegate) Spacing() int {
	return 0
}

func (d candidateDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// marker shows whether issues were created (✓) or teams are assigned (•).
func (d candidateDelegate) marker(item candidateItem) string {
	switch {
	case len(item.issues) > 0:
		return d.styles.ItemCreated.Render("✓")
	case domain.AssignmentsFor(item.candidate, d.repo).Assigned():
		return d.styles.ItemMarker.Render("•")
	default:
		return " "
	}
}

func (d candidateDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ci, ok := item.(candidateItem)
	if !ok {
		return
	}
	selected := index == m.Index()

	indicator := " "
	if selected {
		indicator = d.styles.Indicator.Render(">")
	}
	id := d.styles.ItemID.Render(fmt.Sprintf("%-8s", ci.candidate.ShortID()))

	listWidth := m.Width()
	maxTitleLen := listWidth - 14
	if maxTitleLen < 10 {
		maxTitleLen = 10
	}
	title := escapeNewlines(ci.candidate.Title)
	if runewidth.StringWidth(title) > maxTitleLen {
		title = runewidth.Truncate(title, maxTitleLen-3, "...")
	}
	if selected {
		title = d.styles.ItemTitleSelected.Render(title)
	} else {
		title = d.styles.ItemTitle.Render(title)
	}

	_, _ = fmt.Fprint(w, indicator+" "+d.marker(ci)+" "+id+" "+title)
}
