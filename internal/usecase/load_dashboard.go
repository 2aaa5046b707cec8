package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-qa/internal/domain"
)

// LoadDashboardInput contains the parameters for loading the status board.
type LoadDashboardInput struct {
	// OnIssue is called for every issue placed on the board (optional).
	OnIssue func(domain.TrackerIssue)
	Labels  []string // Release labels to search for (required)
}

// LoadDashboardOutput contains the loaded board.
// Fields are ordered to minimize memory padding.
type LoadDashboardOutput struct {
	Board       *domain.Board
	CurrentUser string // Tracker account id of the authenticated user
	Skipped     int    // Issues owned by no configured team
}

// LoadDashboard is the use case for streaming tracker issues into a board.
type LoadDashboard struct {
	repo    *domain.RepoConfig
	tracker domain.Tracker
	status  domain.StatusReporter
}

// NewLoadDashboard creates a new LoadDashboard use case.
func NewLoadDashboard(repo *domain.RepoConfig, tracker domain.Tracker, status domain.StatusReporter) *LoadDashboard {
	return &LoadDashboard{repo: repo, tracker: tracker, status: status}
}

// Execute searches every issue carrying one of the labels and aggregates them.
// On a search error the partially filled board is returned with the error.
func (uc *LoadDashboard) Execute(ctx context.Context, in LoadDashboardInput) (*LoadDashboardOutput, error) {
	if len(in.Labels) == 0 {
		return nil, domain.ErrNoLabels
	}

	board, err := domain.NewBoard(uc.repo)
	if err != nil {
		return nil, err
	}

	user, err := uc.tracker.CurrentUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}

	out := &LoadDashboardOutput{Board: board, CurrentUser: user}
	uc.status.SetStatus("Loading...")
	for issue, err := range uc.tracker.SearchIssues(ctx, in.Labels) {
		if err != nil {
			uc.status.SetStatus(err.Error())
			return out, fmt.Errorf("search issues: %w", err)
		}
		if !board.Add(issue) {
			out.Skipped++
			continue
		}
		if in.OnIssue != nil {
			in.OnIssue(issue)
		}
	}

	uc.status.SetStatus(board.Completion(board.ByTeam.All()).String())
	return out, nil
}
