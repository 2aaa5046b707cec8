// Package usecase contains application use cases.
package usecase

import (
	"context"
	"fmt"
	"iter"

	"github.com/runoshun/git-qa/internal/domain"
)

// ResolveCandidatesInput contains the parameters for resolving candidates.
// Fields are ordered to minimize memory padding.
type ResolveCandidatesInput struct {
	Filter   domain.LabelFilter // Label filter applied to every resolved candidate
	Previous string             // Base ref (required)
	Current  string             // Head ref (required)
}

// CandidateEvent is one step of candidate resolution.
// Fields are ordered to minimize memory padding.
type CandidateEvent struct {
	Candidate *domain.Candidate // Nil when the label filter rejected the candidate
	Commit    domain.Commit
	Index     int // Position of the commit in the input range
	Ignored   int // Running count of duplicate or filtered commits
	Total     int // Number of commits in the range
}

// Shown returns the 1-based position of the candidate among the shown candidates.
func (e CandidateEvent) Shown() int {
	return e.Index - e.Ignored + 1
}

// Progress returns "N / total (K ignored)".
func (e CandidateEvent) Progress() string {
	return fmt.Sprintf("%d / %d (%d ignored)", e.Index+1, e.Total, e.Ignored)
}

// ResolveCandidatesOutput contains the lazily resolved candidates.
type ResolveCandidatesOutput struct {
	// Events yields candidates in commit order. Iteration stops after the first error.
	Events iter.Seq2[CandidateEvent, error]
	Total  int
}

// ResolveCandidates is the use case for turning a commit range into QA candidates.
type ResolveCandidates struct {
	git    domain.Git
	forge  domain.SourceForge
	logger domain.Logger
}

// NewResolveCandidates creates a new ResolveCandidates use case.
func NewResolveCandidates(git domain.Git, forge domain.SourceForge, logger domain.Logger) *ResolveCandidates {
	return &ResolveCandidates{
		git:    git,
		forge:  forge,
		logger: logger,
	}
}

// Execute lists the commits of Current missing from Previous and returns a
// sequence resolving each of them. A pull request reached by several commits is
// yielded once; later commits count as ignored. Candidates rejected by the label
// filter are yielded as nil so callers can still advance their progress.
func (uc *ResolveCandidates) Execute(ctx context.Context, in ResolveCandidatesInput) (*ResolveCandidatesOutput, error) {
	commits, err := uc.git.MutuallyExclusiveCommits(in.Previous, in.Current)
	if err != nil {
		return nil, err
	}
	total := len(commits)

	events := func(yield func(CandidateEvent, error) bool) {
		ignored := 0
		seen := make(map[string]struct{})
		for i, commit := range commits {
			ev := CandidateEvent{Commit: commit, Index: i, Total: total}

			candidate, err := uc.forge.Candidate(ctx, commit)
			if err != nil {
				ev.Ignored = ignored
				yield(ev, fmt.Errorf("resolve %s: %w", shortHash(commit.Hash), err))
				return
			}

			if candidate.IsPullRequest() {
				if _, dup := seen[candidate.ID]; dup {
					ignored++
					uc.logger.Debug(candidate.ID, "resolve", "duplicate commit "+shortHash(commit.Hash))
					continue
				}
				seen[candidate.ID] = struct{}{}
			}

			if !in.Filter.Match(candidate.LabelNames()) {
				ignored++
				candidate = nil
			}

			ev.Candidate = candidate
			ev.Ignored = ignored
			if !yield(ev, nil) {
				return
			}
		}
	}

	return &ResolveCandidatesOutput{Events: events, Total: total}, nil
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}
