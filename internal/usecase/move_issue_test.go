package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/runoshun/git-qa/internal/domain"
	"github.com/runoshun/git-qa/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadedBoard(t *testing.T) *domain.Board {
	t.Helper()
	board, err := domain.NewBoard(testRepo())
	require.NoError(t, err)
	for _, issue := range dashboardIssues() {
		board.Add(issue)
	}
	return board
}

func TestMoveIssue_Execute(t *testing.T) {
	// Setup
	board := loadedBoard(t)
	tracker := &testutil.MockTracker{}
	logger := &testutil.MockLogger{}
	original, _ := board.Issue("FOO-1")

	// Execute
	out, err := NewMoveIssue(tracker, logger).Execute(context.Background(), MoveIssueInput{
		Board: board, Key: "FOO-1", Status: "DONE", CurrentUser: "me",
	})

	// Verify
	require.NoError(t, err)
	assert.Equal(t, []string{"FOO-1 -> Done"}, tracker.UpdateCalls)
	assert.Equal(t, "Done", out.Issue.Status.Name)
	assert.Equal(t, "In Progress", original.Status.Name, "original copy is untouched")

	moved, ok := board.Issue("FOO-1")
	require.True(t, ok)
	assert.Equal(t, "DONE", board.QAStatus(moved))
	assert.Equal(t, "Done", board.ByMember.Issues("Me")[0].Status.Name)
	assert.Equal(t, []string{"INFO [FOO-1] [status] In Progress -> Done"}, logger.Entries)
}

func TestMoveIssue_Rejections(t *testing.T) {
	tests := []struct {
		wantErr error
		name    string
		key     string
		status  string
		user    string
	}{
		{name: "unknown issue", key: "FOO-9", status: "DONE", user: "me", wantErr: domain.ErrIssueNotFound},
		{name: "not assignee", key: "FOO-2", status: "TODO", user: "me", wantErr: domain.ErrNotAssignee},
		{name: "anonymous", key: "FOO-1", status: "DONE", user: "", wantErr: domain.ErrNotAssignee},
		{name: "same status", key: "FOO-1", status: "IN PROGRESS", user: "me", wantErr: domain.ErrSameStatus},
		{name: "unknown status", key: "FOO-1", status: "BLOCKED", user: "me", wantErr: domain.ErrUnknownStatus},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracker := &testutil.MockTracker{}

			_, err := NewMoveIssue(tracker, domain.NopLogger{}).Execute(context.Background(), MoveIssueInput{
				Board: loadedBoard(t), Key: tt.key, Status: tt.status, CurrentUser: tt.user,
			})

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, tracker.UpdateCalls)
		})
	}
}

func TestMoveIssue_TrackerError(t *testing.T) {
	board := loadedBoard(t)
	tracker := &testutil.MockTracker{UpdateErr: domain.ErrNoTransition}

	_, err := NewMoveIssue(tracker, domain.NopLogger{}).Execute(context.Background(), MoveIssueInput{
		Board: board, Key: "FOO-1", Status: "TODO", CurrentUser: "me",
	})

	assert.True(t, errors.Is(err, domain.ErrNoTransition))
	issue, _ := board.Issue("FOO-1")
	assert.Equal(t, "In Progress", issue.Status.Name)
}
