// Package shared holds helpers used by several use cases.
package shared

import (
	"fmt"

	"github.com/runoshun/git-qa/internal/domain"
)

// LoadTrackerConfig returns the synced global tracker configuration of a repository.
// It returns domain.ErrGlobalConfigMissing when the repository was never synced.
func LoadTrackerConfig(cache domain.GlobalConfigCache, repo *domain.RepoConfig) (*domain.TrackerConfig, error) {
	raw := cache.LoadGlobalConfig(repo.GlobalConfigSource)
	cfg, err := domain.ParseTrackerConfig(raw)
	if err != nil {
		return nil, fmt.Errorf("load global config: %w", err)
	}
	return cfg, nil
}

// EligibleRoster filters a roster down to members that have a tracker account.
// When no mapping is configured the roster is returned unchanged.
func EligibleRoster(roster []string, cfg *domain.TrackerConfig) []string {
	if cfg == nil || len(cfg.Members) == 0 {
		return roster
	}
	out := make([]string, 0, len(roster))
	for _, login := range roster {
		if cfg.TrackerUserID(login) != "" {
			out = append(out, login)
		}
	}
	return out
}
