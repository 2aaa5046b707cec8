package tui

import (
	"errors"
	"testing"
	"time"

	"github.com/runoshun/git-qa/internal/domain"
	"github.com/runoshun/git-qa/internal/testutil"
	"github.com/runoshun/git-qa/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardIssues(now time.Time) []domain.TrackerIssue {
	return []domain.TrackerIssue{
		{
			Key:      "FOO-1",
			Project:  "FOO",
			Summary:  "Login flow",
			Status:   domain.TrackerStatus{ID: "2", Name: "In Progress"},
			Assignee: &domain.Assignee{ID: "me", Name: "Me"},
			Updated:  now.Add(-2 * time.Hour),
		},
		{
			Key:        "FOO-2",
			Project:    "FOO",
			Components: []string{"Web"},
			Summary:    "Dark mode",
			Status:     domain.TrackerStatus{ID: "3", Name: "Closed"},
			Assignee:   &domain.Assignee{ID: "other", Name: "Other"},
			Updated:    now.Add(-time.Hour),
		},
		{
			Key:     "FOO-3",
			Project: "FOO",
			Summary: "Settings page",
			Status:  domain.TrackerStatus{ID: "1", Name: "To Do"},
			Updated: now.Add(-3 * time.Hour),
		},
	}
}

func newBoardModel(t *testing.T) (*BoardModel, *testutil.MockTracker) {
	t.Helper()
	clock := testutil.NewMockClock()
	tracker := &testutil.MockTracker{
		Issues:      boardIssues(clock.Now()),
		CurrentUser: "me",
	}
	repo := testRepo()
	m := NewBoardModel(BoardDeps{
		Load:  usecase.NewLoadDashboard(repo, tracker, &testutil.MockStatus{}),
		Move:  usecase.NewMoveIssue(tracker, &testutil.MockLogger{}),
		Clock: clock,
	}, []string{"release-1.1"})
	return m, tracker
}

func columnKeys(m *BoardModel) map[string][]string {
	out := make(map[string][]string)
	for _, col := range m.columns {
		keys := []string{}
		for _, issue := range col.issues {
			keys = append(keys, issue.Key)
		}
		out[col.status] = keys
	}
	return out
}

func TestBoardModel_Load(t *testing.T) {
	// Setup
	m, tracker := newBoardModel(t)

	// Execute
	run(t, m, m.Init())

	// Verify
	assert.Equal(t, ModeNormal, m.Mode())
	assert.Equal(t, [][]string{{"release-1.1"}}, tracker.SearchCalls)
	assert.Equal(t, map[string][]string{
		"TODO":        {"FOO-3"},
		"IN PROGRESS": {"FOO-1"},
		"DONE":        {"FOO-2"},
	}, columnKeys(m))
	assert.Equal(t, "1 / 3 (33.33%)", m.completion)
	assert.Equal(t, "All", m.FilterName())

	view := m.View()
	assert.Contains(t, view, "TODO (1)")
	assert.Contains(t, view, "FOO-3 Settings page")
	assert.Contains(t, view, "3 hours ago")
}

func TestBoardModel_LoadError(t *testing.T) {
	m, tracker := newBoardModel(t)
	tracker.SearchErr = errors.New("search failed")

	run(t, m, m.Init())

	require.Error(t, m.Err())
	assert.Equal(t, 3, m.board.Len(), "partial board is kept")
	assert.Contains(t, m.View(), "search failed")
}

func TestBoardModel_Navigation(t *testing.T) {
	m, _ := newBoardModel(t)
	run(t, m, m.Init())

	press(t, m, "l")
	issue, ok := m.Selected()
	require.True(t, ok)
	assert.Equal(t, "FOO-1", issue.Key)

	press(t, m, "l", "l", "j")
	issue, _ = m.Selected()
	assert.Equal(t, "FOO-2", issue.Key)
	assert.Contains(t, m.View(), "Team      Beta")

	press(t, m, "h", "h", "h")
	issue, _ = m.Selected()
	assert.Equal(t, "FOO-3", issue.Key)
}

func TestBoardModel_MoveIssue(t *testing.T) {
	// Setup
	m, tracker := newBoardModel(t)
	run(t, m, m.Init())

	// Execute
	press(t, m, "l", "m")
	assert.Equal(t, ModeMove, m.Mode())
	assert.Contains(t, m.View(), "Move FOO-1")
	press(t, m, "j", "enter")

	// Verify
	assert.Equal(t, ModeNormal, m.Mode())
	require.NoError(t, m.Err())
	assert.Equal(t, []string{"FOO-1 -> Done"}, tracker.UpdateCalls)
	assert.Equal(t, map[string][]string{
		"TODO":        {"FOO-3"},
		"IN PROGRESS": {},
		"DONE":        {"FOO-2", "FOO-1"},
	}, columnKeys(m))
	issue, _ := m.Selected()
	assert.Equal(t, "FOO-1", issue.Key, "cursor follows the moved issue")
	assert.Equal(t, "2 / 3 (66.67%)", m.completion)
}

func TestBoardModel_MoveRejected(t *testing.T) {
	m, tracker := newBoardModel(t)
	run(t, m, m.Init())

	press(t, m, "l", "l", "m", "k", "enter")

	assert.ErrorIs(t, m.Err(), domain.ErrNotAssignee)
	assert.Empty(t, tracker.UpdateCalls)
}

func TestBoardModel_MoveCancel(t *testing.T) {
	m, tracker := newBoardModel(t)
	run(t, m, m.Init())

	press(t, m, "l", "m", "esc")

	assert.Equal(t, ModeNormal, m.Mode())
	assert.Empty(t, tracker.UpdateCalls)
}

func TestBoardModel_Filters(t *testing.T) {
	m, _ := newBoardModel(t)
	run(t, m, m.Init())

	press(t, m, "]")
	assert.Equal(t, "Alpha", m.FilterName())
	assert.Equal(t, []string{"FOO-3"}, columnKeys(m)["TODO"])
	assert.Empty(t, columnKeys(m)["DONE"])
	assert.Equal(t, "0 / 2 (0%)", m.completion)

	press(t, m, "g")
	assert.Equal(t, GroupByMember, m.group)
	assert.Equal(t, "All", m.FilterName())

	press(t, m, "]", "]")
	assert.Equal(t, "Me", m.FilterName())
	assert.Equal(t, []string{"FOO-1"}, columnKeys(m)["IN PROGRESS"])

	press(t, m, "[", "[", "[")
	assert.Equal(t, "Other", m.FilterName())
}

func TestBoardModel_Refresh(t *testing.T) {
	m, tracker := newBoardModel(t)
	run(t, m, m.Init())

	press(t, m, "r")

	assert.Len(t, tracker.SearchCalls, 2)
	assert.Equal(t, ModeNormal, m.Mode())
}
