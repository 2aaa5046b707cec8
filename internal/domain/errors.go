package domain

import "errors"

// Domain errors.
var (
	ErrNotGitRepository     = errors.New("not a git repository (or any of the parent directories)")
	ErrNoRepoSelected       = errors.New("no repository selected (set 'repo' in the config file)")
	ErrUnknownRepo          = errors.New("unknown repository")
	ErrNoTeams              = errors.New("no teams configured")
	ErrUnknownTeam          = errors.New("unknown team")
	ErrNoStatusMapping      = errors.New("jira_statuses not configured")
	ErrInvalidStatusMapping = errors.New("invalid status mapping")
	ErrUnknownStatus        = errors.New("unknown status")
	ErrGlobalConfigMissing  = errors.New("global config not synced (run 'git-qa sync' first)")
	ErrInvalidGlobalConfig  = errors.New("unable to parse TOML source")
	ErrNoMembers            = errors.New("no members found in TOML source")
	ErrEmptyRoster          = errors.New("team has no members")
	ErrNoTransition         = errors.New("no transition to status")
	ErrNotAssignee          = errors.New("issue is not assigned to the current user")
	ErrSameStatus           = errors.New("issue already has this status")
	ErrIssueNotFound        = errors.New("issue not found")
	ErrCandidateNotFound    = errors.New("candidate not found in cache")
	ErrNoLabels             = errors.New("at least one label is required")
	ErrInvalidRemote        = errors.New("remote is not a GitHub repository")
	ErrConfigExists         = errors.New("config file already exists")
	ErrInvalidConfigKey     = errors.New("invalid config key")
	ErrRetriesExhausted     = errors.New("retries exhausted")
	ErrNoCandidates         = errors.New("no candidates found")
)
