package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-qa/internal/domain"
)

// ToggleAssignmentInput contains the parameters for toggling a team assignment.
// Fields are ordered to minimize memory padding.
type ToggleAssignmentInput struct {
	Candidate  *domain.Candidate // Candidate to update in place
	CommitHash string            // Commit the candidate was resolved from
	Team       string
	Assigned   bool
}

// ToggleAssignmentOutput contains the assignments after the toggle.
type ToggleAssignmentOutput struct {
	Assignments domain.Assignments
}

// ToggleAssignment is the use case for assigning or unassigning a team.
type ToggleAssignment struct {
	repo  *domain.RepoConfig
	cache domain.CandidateCache
}

// NewToggleAssignment creates a new ToggleAssignment use case.
func NewToggleAssignment(repo *domain.RepoConfig, cache domain.CandidateCache) *ToggleAssignment {
	return &ToggleAssignment{repo: repo, cache: cache}
}

// Execute records the explicit assignment on the candidate and writes the
// whole candidate record back to the cache.
func (uc *ToggleAssignment) Execute(_ context.Context, in ToggleAssignmentInput) (*ToggleAssignmentOutput, error) {
	if _, err := uc.repo.Team(in.Team); err != nil {
		return nil, err
	}

	assignments := domain.AssignmentsFor(in.Candidate, uc.repo)
	assignments.Toggle(in.Team, in.Assigned)
	in.Candidate.Assignments = assignments.Clone()

	if err := uc.cache.CacheCandidate(in.CommitHash, in.Candidate); err != nil {
		return nil, fmt.Errorf("save assignment: %w", err)
	}

	return &ToggleAssignmentOutput{Assignments: assignments}, nil
}
