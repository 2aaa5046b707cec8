package usecase

import (
	"context"
	"fmt"

	"github.com/runoshun/git-qa/internal/domain"
	"gopkg.in/yaml.v3"
)

// ShowCandidateInput contains the parameters for showing a cached candidate.
type ShowCandidateInput struct {
	CommitHash string
}

// ShowCandidateOutput contains the cached candidate rendered as YAML.
type ShowCandidateOutput struct {
	Candidate *domain.Candidate
	YAML      string
}

// ShowCandidate is the use case for inspecting the cache entry of a commit.
type ShowCandidate struct {
	cache domain.CandidateCache
}

// NewShowCandidate creates a new ShowCandidate use case.
func NewShowCandidate(cache domain.CandidateCache) *ShowCandidate {
	return &ShowCandidate{cache: cache}
}

// Execute loads the candidate cached for the commit. It never touches the network.
func (uc *ShowCandidate) Execute(_ context.Context, in ShowCandidateInput) (*ShowCandidateOutput, error) {
	candidate := uc.cache.CachedCandidate(in.CommitHash)
	if candidate == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrCandidateNotFound, in.CommitHash)
	}

	out, err := yaml.Marshal(candidate)
	if err != nil {
		return nil, fmt.Errorf("render candidate: %w", err)
	}
	return &ShowCandidateOutput{Candidate: candidate, YAML: string(out)}, nil
}
