package domain

import (
	"context"
	"iter"
	"time"
)

// Git provides version-control operations.
type Git interface {
	// MutuallyExclusiveCommits returns the commits of head that have no
	// patch-equivalent commit in base, oldest first.
	MutuallyExclusiveCommits(base, head string) ([]Commit, error)

	// RemoteURL returns the URL of the origin remote.
	RemoteURL() (string, error)

	// CurrentBranch returns the name of the current branch.
	CurrentBranch() (string, error)

	// LatestCommit returns the hash of HEAD.
	LatestCommit() (string, error)
}

// CandidateCache persists resolved candidates.
type CandidateCache interface {
	// CachedCandidate returns the candidate cached for a commit, or nil.
	CachedCandidate(commitHash string) *Candidate

	// CachedPullRequest returns the candidate cached for a pull request number, or nil.
	CachedPullRequest(number string) *Candidate

	// LinkCommit records that a commit resolves to an already cached pull request.
	LinkCommit(commitHash, number string) error

	// CacheCandidate stores a candidate for a commit.
	CacheCandidate(commitHash string, candidate *Candidate) error
}

// RosterCache persists team rosters.
type RosterCache interface {
	// TeamMembers returns the cached roster. ok is false if it was never fetched.
	TeamMembers(team string) (members []string, ok bool)

	// SaveTeamMembers stores a roster.
	SaveTeamMembers(team string, members []string) error
}

// GlobalConfigCache persists global config documents keyed by their source.
type GlobalConfigCache interface {
	LoadGlobalConfig(source string) map[string]any
	SaveGlobalConfig(source string, cfg map[string]any) error
}

// TrackerCache persists tracker lookups.
type TrackerCache interface {
	// Transitions returns issue type -> status name -> transition id for a project.
	Transitions(project string) map[string]map[string]string

	// SaveTransitions stores the transitions of a project.
	SaveTransitions(project string, transitions map[string]map[string]string) error

	// UserID returns the cached account id of a credential pair.
	UserID(email, token string) string

	// SaveUserID stores the account id of a credential pair.
	SaveUserID(email, token, id string) error
}

// SourceForge resolves commits and team rosters against the source-forge API.
type SourceForge interface {
	// Candidate resolves a commit to a pull request or bare-commit candidate.
	Candidate(ctx context.Context, commit Commit) (*Candidate, error)

	// TeamMembers returns the roster of a team, fetching it when absent or refresh is set.
	TeamMembers(ctx context.Context, team string, refresh bool) ([]string, error)

	// FetchGlobalConfig downloads the raw global config document.
	FetchGlobalConfig(ctx context.Context, source string) ([]byte, error)
}

// TeamAssignment is the assignee chosen for a team.
type TeamAssignment struct {
	Team       string
	Member     string // Source-forge login, empty if nobody was available
	AssigneeID string // Tracker account id, empty if unassigned
}

// CreatedIssue is an issue created for a team.
type CreatedIssue struct {
	Team   string
	Member string
	Key    string
	URL    string
}

// Tracker creates, searches and transitions tracker issues.
type Tracker interface {
	// CreateIssues creates one issue per assignment, in order.
	CreateIssues(ctx context.Context, candidate *Candidate, labels []string, assignments []TeamAssignment) ([]CreatedIssue, error)

	// SearchIssues streams the issues of the configured projects carrying any of the labels.
	SearchIssues(ctx context.Context, labels []string) iter.Seq2[TrackerIssue, error]

	// CurrentUserID returns the account id of the authenticated user.
	CurrentUserID(ctx context.Context) (string, error)

	// UpdateIssueStatus transitions an issue and returns the updated copy.
	UpdateIssueStatus(ctx context.Context, issue TrackerIssue, status string) (TrackerIssue, error)

	// DeactivatedUsers returns the inactive accounts among ids.
	DeactivatedUsers(ctx context.Context, ids []string) ([]TrackerUser, error)

	// IssueURL returns the browse URL of an issue.
	IssueURL(key string) string
}

// StatusReporter shows a single live status line to the user.
type StatusReporter interface {
	Status() string
	SetStatus(msg string)
}

// Logger writes categorized log entries.
type Logger interface {
	Debug(scope, category, msg string)
	Info(scope, category, msg string)
	Warn(scope, category, msg string)
	Error(scope, category, msg string)
}

// Clock provides time operations for testability.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// After returns a channel that receives after d elapses.
	After(d time.Duration) <-chan time.Time
}

// RealClock implements Clock using the system clock.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// After waits for d on the system clock.
func (RealClock) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// NopLogger discards every entry.
type NopLogger struct{}

func (NopLogger) Debug(_, _, _ string) {}
func (NopLogger) Info(_, _, _ string)  {}
func (NopLogger) Warn(_, _, _ string)  {}
func (NopLogger) Error(_, _, _ string) {}

// NopStatus discards status updates.
type NopStatus struct{}

func (NopStatus) Status() string     { return "" }
func (NopStatus) SetStatus(_ string) {}
