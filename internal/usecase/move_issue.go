package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-qa/internal/domain"
)

// MoveIssueInput contains the parameters for changing the QA status of an issue.
// Fields are ordered to minimize memory padding.
type MoveIssueInput struct {
	Board       *domain.Board
	Key         string // Issue key
	Status      string // Target QA status
	CurrentUser string // Tracker account id of the authenticated user
}

// MoveIssueOutput contains the moved issue.
type MoveIssueOutput struct {
	Issue domain.TrackerIssue
}

// MoveIssue is the use case for transitioning an issue from the board.
type MoveIssue struct {
	tracker domain.Tracker
	logger  domain.Logger
}

// NewMoveIssue creates a new MoveIssue use case.
func NewMoveIssue(tracker domain.Tracker, logger domain.Logger) *MoveIssue {
	return &MoveIssue{tracker: tracker, logger: logger}
}

// Execute moves one of the current user's issues to another QA status and
// swaps the updated copy into the board.
func (uc *MoveIssue) Execute(ctx context.Context, in MoveIssueInput) (*MoveIssueOutput, error) {
	issue, ok := in.Board.Issue(in.Key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrIssueNotFound, in.Key)
	}
	if !issue.IsAssignedTo(in.CurrentUser) {
		return nil, domain.ErrNotAssignee
	}
	if in.Board.QAStatus(issue) == in.Status {
		return nil, domain.ErrSameStatus
	}

	native, err := in.Board.TrackerStatus(issue, in.Status)
	if err != nil {
		return nil, err
	}

	updated, err := uc.tracker.UpdateIssueStatus(ctx, issue, native)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", issue.Key, err)
	}
	in.Board.Replace(issue, updated)

	uc.logger.Info(issue.Key, "status", fmt.Sprintf("%s -> %s", issue.Status.Name, native))
	return &MoveIssueOutput{Issue: updated}, nil
}
