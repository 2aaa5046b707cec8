package usecase

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/pelletier/go-toml/v2"
	"github.com/runoshun/git-qa/internal/domain"
)

// SyncTeamsInput contains the parameters for syncing.
type SyncTeamsInput struct {
	// OnProgress receives one line per step (optional).
	OnProgress func(line string)
}

// SyncTeamsOutput contains the result of a sync.
type SyncTeamsOutput struct {
	Config  *domain.TrackerConfig
	Rosters map[string][]string // Team handle -> members
}

// SyncTeams is the use case for refreshing the global config and every team roster.
// Fields are ordered to minimize memory padding.
type SyncTeams struct {
	repo   *domain.RepoConfig
	forge  domain.SourceForge
	cache  domain.GlobalConfigCache
	status domain.StatusReporter
	logger domain.Logger
}

// NewSyncTeams creates a new SyncTeams use case.
func NewSyncTeams(
	repo *domain.RepoConfig,
	forge domain.SourceForge,
	cache domain.GlobalConfigCache,
	status domain.StatusReporter,
	logger domain.Logger,
) *SyncTeams {
	return &SyncTeams{
		repo:   repo,
		forge:  forge,
		cache:  cache,
		status: status,
		logger: logger,
	}
}

// Execute downloads the global TOML config, validates and caches it, then
// refetches the roster of every configured team in handle order.
func (uc *SyncTeams) Execute(ctx context.Context, in SyncTeamsInput) (*SyncTeamsOutput, error) {
	progress := func(line string) {
		uc.logger.Info("", "sync", line)
		if in.OnProgress != nil {
			in.OnProgress(line)
		}
	}

	source := uc.repo.GlobalConfigSource
	progress("Fetching global config from: " + source)
	data, err := uc.forge.FetchGlobalConfig(ctx, source)
	if err != nil {
		return uc.fail(err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return uc.fail(fmt.Errorf("%w: %v", domain.ErrInvalidGlobalConfig, err))
	}
	if len(raw) == 0 {
		return uc.fail(domain.ErrNoMembers)
	}
	cfg, err := domain.ParseTrackerConfig(raw)
	if err != nil {
		if errors.Is(err, domain.ErrGlobalConfigMissing) {
			err = domain.ErrNoMembers
		}
		return uc.fail(err)
	}
	if err := uc.cache.SaveGlobalConfig(source, raw); err != nil {
		return uc.fail(fmt.Errorf("save global config: %w", err))
	}

	out := &SyncTeamsOutput{Config: cfg, Rosters: make(map[string][]string)}
	for _, team := range uc.repo.GitHubTeams() {
		progress("Refreshing members for team: " + team)
		members, err := uc.forge.TeamMembers(ctx, team, true)
		if err != nil {
			return uc.fail(err)
		}
		out.Rosters[team] = members
	}

	uc.status.SetStatus("Synced")
	return out, nil
}

func (uc *SyncTeams) fail(err error) (*SyncTeamsOutput, error) {
	uc.status.SetStatus(err.Error())
	uc.logger.Error("", "sync", err.Error())
	return nil, err
}

// CheckSyncOutput reports whether a sync is required.
type CheckSyncOutput struct {
	Reason string
	Needed bool
}

// CheckSync is the use case for detecting a missing global config or roster.
type CheckSync struct {
	repo    *domain.RepoConfig
	configs domain.GlobalConfigCache
	rosters domain.RosterCache
}

// NewCheckSync creates a new CheckSync use case.
func NewCheckSync(repo *domain.RepoConfig, configs domain.GlobalConfigCache, rosters domain.RosterCache) *CheckSync {
	return &CheckSync{repo: repo, configs: configs, rosters: rosters}
}

// Execute reports the first missing piece of synced state.
func (uc *CheckSync) Execute(_ context.Context) (*CheckSyncOutput, error) {
	if len(uc.configs.LoadGlobalConfig(uc.repo.GlobalConfigSource)) == 0 {
		return &CheckSyncOutput{Needed: true, Reason: "global config not cached"}, nil
	}
	for _, team := range uc.repo.GitHubTeams() {
		if _, ok := uc.rosters.TeamMembers(team); !ok {
			return &CheckSyncOutput{Needed: true, Reason: "members of " + team + " not cached"}, nil
		}
	}
	return &CheckSyncOutput{}, nil
}

// DeactivatedMember is a mapped member whose tracker account is inactive.
type DeactivatedMember struct {
	Login string
	User  domain.TrackerUser
}

// FindDeactivatedMembersOutput contains the inactive members.
type FindDeactivatedMembersOutput struct {
	Members []DeactivatedMember
}

// FindDeactivatedMembers is the use case for reporting mapped members with inactive tracker accounts.
type FindDeactivatedMembers struct {
	members *domain.TrackerConfig
	tracker domain.Tracker
}

// NewFindDeactivatedMembers creates a new FindDeactivatedMembers use case.
func NewFindDeactivatedMembers(members *domain.TrackerConfig, tracker domain.Tracker) *FindDeactivatedMembers {
	return &FindDeactivatedMembers{members: members, tracker: tracker}
}

// Execute looks up every mapped account in bulk.
func (uc *FindDeactivatedMembers) Execute(ctx context.Context) (*FindDeactivatedMembersOutput, error) {
	ids := make([]string, 0, len(uc.members.Members))
	for _, id := range uc.members.Members {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	users, err := uc.tracker.DeactivatedUsers(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("look up users: %w", err)
	}

	out := &FindDeactivatedMembersOutput{}
	for _, u := range users {
		out.Members = append(out.Members, DeactivatedMember{Login: uc.members.GitHubUser(u.AccountID), User: u})
	}
	return out, nil
}
