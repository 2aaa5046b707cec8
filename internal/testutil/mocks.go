// Package testutil provides shared test utilities and mock implementations.
package testutil

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/runoshun/git-qa/internal/domain"
)

// Ensure mocks implement their interfaces.
var (
	_ domain.Clock             = (*MockClock)(nil)
	_ domain.Rand              = (*ScriptedRand)(nil)
	_ domain.StatusReporter    = (*MockStatus)(nil)
	_ domain.Logger            = (*MockLogger)(nil)
	_ domain.Git               = (*MockGit)(nil)
	_ domain.SourceForge       = (*MockSourceForge)(nil)
	_ domain.Tracker           = (*MockTracker)(nil)
	_ domain.CandidateCache    = (*MockCache)(nil)
	_ domain.RosterCache       = (*MockCache)(nil)
	_ domain.GlobalConfigCache = (*MockCache)(nil)
)

// MockClock is a test double for domain.Clock.
// After fires immediately and advances the clock, so waits take no real time.
type MockClock struct {
	NowTime time.Time
	Waits   []time.Duration
	mu      sync.Mutex
}

// NewMockClock creates a MockClock starting at a fixed time.
func NewMockClock() *MockClock {
	return &MockClock{NowTime: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

// Now returns the configured time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.NowTime
}

// After records d, advances the clock by d and fires.
func (m *MockClock) After(d time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Waits = append(m.Waits, d)
	m.NowTime = m.NowTime.Add(d)
	ch := make(chan time.Time, 1)
	ch <- m.NowTime
	return ch
}

// Elapsed returns the total time waited since start.
func (m *MockClock) Elapsed(start time.Time) time.Duration {
	return m.Now().Sub(start)
}

// ScriptedRand is a test double for domain.Rand returning scripted values.
type ScriptedRand struct {
	Values []int
	Calls  int
}

// IntN returns the next scripted value modulo n, or 0 when nothing is scripted.
func (r *ScriptedRand) IntN(n int) int {
	defer func() { r.Calls++ }()
	if len(r.Values) == 0 || n <= 0 {
		return 0
	}
	return r.Values[r.Calls%len(r.Values)] % n
}

// MockStatus records every status update.
type MockStatus struct {
	Current string
	History []string
	mu      sync.Mutex
}

// Status returns the current status.
func (m *MockStatus) Status() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Current
}

// SetStatus records msg as the current status.
func (m *MockStatus) SetStatus(msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Current = msg
	m.History = append(m.History, msg)
}

// MockLogger records log entries as "LEVEL [scope] [category] msg".
type MockLogger struct {
	Entries []string
	mu      sync.Mutex
}

func (m *MockLogger) record(level, scope, category, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Entries = append(m.Entries, fmt.Sprintf("%s [%s] [%s] %s", level, scope, category, msg))
}

func (m *MockLogger) Debug(scope, category, msg string) { m.record("DEBUG", scope, category, msg) }
func (m *MockLogger) Info(scope, category, msg string)  { m.record("INFO", scope, category, msg) }
func (m *MockLogger) Warn(scope, category, msg string)  { m.record("WARN", scope, category, msg) }
func (m *MockLogger) Error(scope, category, msg string) { m.record("ERROR", scope, category, msg) }

// MockGit is a test double for domain.Git.
// Fields are ordered to minimize memory padding.
type MockGit struct {
	CommitsErr error
	RemoteErr  error
	Commits    []domain.Commit
	Remote     string
	Branch     string
	Head       string
	Base       string // Last base passed to MutuallyExclusiveCommits
	HeadRef    string // Last head passed to MutuallyExclusiveCommits
}

// MutuallyExclusiveCommits returns the configured commits.
func (m *MockGit) MutuallyExclusiveCommits(base, head string) ([]domain.Commit, error) {
	m.Base, m.HeadRef = base, head
	if m.CommitsErr != nil {
		return nil, m.CommitsErr
	}
	return m.Commits, nil
}

// RemoteURL returns the configured remote.
func (m *MockGit) RemoteURL() (string, error) {
	if m.RemoteErr != nil {
		return "", m.RemoteErr
	}
	return m.Remote, nil
}

// CurrentBranch returns the configured branch.
func (m *MockGit) CurrentBranch() (string, error) {
	return m.Branch, nil
}

// LatestCommit returns the configured HEAD.
func (m *MockGit) LatestCommit() (string, error) {
	return m.Head, nil
}

// RosterCall records one TeamMembers call.
type RosterCall struct {
	Team    string
	Refresh bool
}

// MockSourceForge is a test double for domain.SourceForge.
// Fields are ordered to minimize memory padding.
type MockSourceForge struct {
	Candidates      map[string]*domain.Candidate // Commit hash -> candidate
	CandidateErrs   map[string]error
	Rosters         map[string][]string
	RosterErr       error
	GlobalConfigErr error
	GlobalConfig    []byte
	CandidateCalls  []string
	RosterCalls     []RosterCall
	GlobalSources   []string
	mu              sync.Mutex
}

// NewMockSourceForge creates a MockSourceForge with initialized maps.
func NewMockSourceForge() *MockSourceForge {
	return &MockSourceForge{
		Candidates:    make(map[string]*domain.Candidate),
		CandidateErrs: make(map[string]error),
		Rosters:       make(map[string][]string),
	}
}

// Candidate returns a copy of the configured candidate of the commit.
func (m *MockSourceForge) Candidate(_ context.Context, commit domain.Commit) (*domain.Candidate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CandidateCalls = append(m.CandidateCalls, commit.Hash)
	if err := m.CandidateErrs[commit.Hash]; err != nil {
		return nil, err
	}
	if c, ok := m.Candidates[commit.Hash]; ok {
		return c.Clone(), nil
	}
	return &domain.Candidate{ID: commit.Hash, Title: commit.Subject}, nil
}

// TeamMembers returns the configured roster.
func (m *MockSourceForge) TeamMembers(_ context.Context, team string, refresh bool) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RosterCalls = append(m.RosterCalls, RosterCall{Team: team, Refresh: refresh})
	if m.RosterErr != nil {
		return nil, m.RosterErr
	}
	return slices.Clone(m.Rosters[team]), nil
}

// FetchGlobalConfig returns the configured document.
func (m *MockSourceForge) FetchGlobalConfig(_ context.Context, source string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GlobalSources = append(m.GlobalSources, source)
	if m.GlobalConfigErr != nil {
		return nil, m.GlobalConfigErr
	}
	return m.GlobalConfig, nil
}

// CreateCall records one CreateIssues call.
type CreateCall struct {
	Candidate   *domain.Candidate
	Labels      []string
	Assignments []domain.TeamAssignment
}

// MockTracker is a test double for domain.Tracker.
// Fields are ordered to minimize memory padding.
type MockTracker struct {
	CreateErr   error
	SearchErr   error
	UserErr     error
	UpdateErr   error
	Issues      []domain.TrackerIssue
	Users       []domain.TrackerUser
	CreateCalls []CreateCall
	UpdateCalls []string // "KEY -> status"
	SearchCalls [][]string
	UserIDs     []string // Ids passed to DeactivatedUsers
	CurrentUser string
	Server      string
	FailTeam    string // CreateErr is returned on reaching this team, with the issues created before it
	NextKey     int
	mu          sync.Mutex
}

// CreateIssues records the call and returns sequential issue keys.
func (m *MockTracker) CreateIssues(_ context.Context, candidate *domain.Candidate, labels []string, assignments []domain.TeamAssignment) ([]domain.CreatedIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateCalls = append(m.CreateCalls, CreateCall{Candidate: candidate, Labels: labels, Assignments: assignments})
	if m.CreateErr != nil && m.FailTeam == "" {
		return nil, m.CreateErr
	}
	created := make([]domain.CreatedIssue, 0, len(assignments))
	for _, a := range assignments {
		if m.CreateErr != nil && a.Team == m.FailTeam {
			return created, m.CreateErr
		}
		m.NextKey++
		key := fmt.Sprintf("QA-%d", m.NextKey)
		created = append(created, domain.CreatedIssue{Team: a.Team, Member: a.Member, Key: key, URL: m.IssueURL(key)})
	}
	return created, nil
}

// SearchIssues yields the configured issues, then SearchErr if set.
func (m *MockTracker) SearchIssues(_ context.Context, labels []string) iter.Seq2[domain.TrackerIssue, error] {
	m.mu.Lock()
	m.SearchCalls = append(m.SearchCalls, labels)
	m.mu.Unlock()
	return func(yield func(domain.TrackerIssue, error) bool) {
		for _, issue := range m.Issues {
			if !yield(issue, nil) {
				return
			}
		}
		if m.SearchErr != nil {
			yield(domain.TrackerIssue{}, m.SearchErr)
		}
	}
}

// CurrentUserID returns the configured user.
func (m *MockTracker) CurrentUserID(_ context.Context) (string, error) {
	if m.UserErr != nil {
		return "", m.UserErr
	}
	return m.CurrentUser, nil
}

// UpdateIssueStatus records the call and returns the moved copy.
func (m *MockTracker) UpdateIssueStatus(_ context.Context, issue domain.TrackerIssue, status string) (domain.TrackerIssue, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls = append(m.UpdateCalls, issue.Key+" -> "+status)
	if m.UpdateErr != nil {
		return domain.TrackerIssue{}, m.UpdateErr
	}
	return issue.WithStatus(status, issue.Updated.Add(time.Minute)), nil
}

// DeactivatedUsers returns the configured inactive users.
func (m *MockTracker) DeactivatedUsers(_ context.Context, ids []string) ([]domain.TrackerUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UserIDs = append(m.UserIDs, ids...)
	var out []domain.TrackerUser
	for _, u := range m.Users {
		if !u.Active {
			out = append(out, u)
		}
	}
	return out, nil
}

// IssueURL returns a browse URL under Server.
func (m *MockTracker) IssueURL(key string) string {
	return m.Server + "browse/" + key
}

// MockCache is an in-memory candidate, roster and global config cache.
// Fields are ordered to minimize memory padding.
type MockCache struct {
	Commits       map[string]string // Commit hash -> candidate id
	Candidates    map[string]*domain.Candidate
	Rosters       map[string][]string
	GlobalConfigs map[string]map[string]any
	SaveErr       error
	mu            sync.Mutex
}

// NewMockCache creates an empty MockCache.
func NewMockCache() *MockCache {
	return &MockCache{
		Commits:       make(map[string]string),
		Candidates:    make(map[string]*domain.Candidate),
		Rosters:       make(map[string][]string),
		GlobalConfigs: make(map[string]map[string]any),
	}
}

// CachedCandidate returns a copy of the candidate linked to the commit.
func (m *MockCache) CachedCandidate(commitHash string) *domain.Candidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	id, ok := m.Commits[commitHash]
	if !ok {
		return nil
	}
	return m.Candidates[id].Clone()
}

// CachedPullRequest returns a copy of the cached pull request.
func (m *MockCache) CachedPullRequest(number string) *domain.Candidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Candidates[number].Clone()
}

// LinkCommit links a commit to a candidate id.
func (m *MockCache) LinkCommit(commitHash, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Commits[commitHash] = number
	return nil
}

// CacheCandidate stores a copy of the candidate.
func (m *MockCache) CacheCandidate(commitHash string, candidate *domain.Candidate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Candidates[candidate.ID] = candidate.Clone()
	m.Commits[commitHash] = candidate.ID
	return nil
}

// TeamMembers returns the cached roster.
func (m *MockCache) TeamMembers(team string) ([]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	members, ok := m.Rosters[team]
	return slices.Clone(members), ok
}

// SaveTeamMembers stores a roster.
func (m *MockCache) SaveTeamMembers(team string, members []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Rosters[team] = slices.Clone(members)
	return nil
}

// LoadGlobalConfig returns the config saved for source, or an empty map.
func (m *MockCache) LoadGlobalConfig(source string) map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cfg, ok := m.GlobalConfigs[source]; ok {
		return cfg
	}
	return map[string]any{}
}

// SaveGlobalConfig stores the config of source.
func (m *MockCache) SaveGlobalConfig(source string, cfg map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.GlobalConfigs[source] = cfg
	return nil
}
