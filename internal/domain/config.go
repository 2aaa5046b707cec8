package domain

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"
)

// Config represents the application configuration.
// Fields are ordered to minimize memory padding.
type Config struct {
	Repos         map[string]*RepoConfig `toml:"repos"`
	IncludeLabels []string               `toml:"include_labels,omitempty"` // Default required labels for create
	Repo          string                 `toml:"repo"`                     // Selected repository name
	CacheDir      string                 `toml:"cache_dir,omitempty"`
	Auth          AuthConfig             `toml:"auth"`
	Log           LogConfig              `toml:"log"`
	Warnings      []string               `toml:"-"` // Unknown keys found while loading
}

// AuthConfig holds credentials from the [auth] section.
type AuthConfig struct {
	GitHub GitHubAuth `toml:"github"`
	Jira   JiraAuth   `toml:"jira"`
}

// GitHubAuth holds source-forge credentials.
type GitHubAuth struct {
	User  string `toml:"user"`
	Token string `toml:"token"`
}

// JiraAuth holds tracker credentials.
type JiraAuth struct {
	Email string `toml:"email"`
	Token string `toml:"token"`
}

// LogConfig holds logging settings from [log] section.
type LogConfig struct {
	Level string `toml:"level,omitempty"` // Log level: debug, info, warn, error
}

// RepoConfig is the QA configuration of one repository.
// Fields are ordered to minimize memory padding.
type RepoConfig struct {
	Teams              map[string]*TeamConfig `toml:"teams"`
	QAStatuses         []string               `toml:"qa_statuses"`
	IgnoredLabels      []string               `toml:"ignored_labels,omitempty"`
	Path               string                 `toml:"path,omitempty"`
	GlobalConfigSource string                 `toml:"global_config_source"`
}

// TeamConfig maps a team to its tracker project and source-forge team.
// Fields are ordered to minimize memory padding.
type TeamConfig struct {
	// JiraStatuses is either a list aligned with the repository qa_statuses
	// or a table mapping QA status to tracker status name.
	JiraStatuses   any      `toml:"jira_statuses"`
	GitHubLabels   []string `toml:"github_labels,omitempty"`
	ExcludeMembers []string `toml:"exclude_members,omitempty"`
	JiraProject    string   `toml:"jira_project"`
	JiraIssueType  string   `toml:"jira_issue_type"`
	JiraComponent  string   `toml:"jira_component,omitempty"`
	GitHubTeam     string   `toml:"github_team"`
}

// SelectedRepo returns the configuration of the selected repository.
func (c *Config) SelectedRepo() (*RepoConfig, error) {
	if c.Repo == "" {
		return nil, ErrNoRepoSelected
	}
	repo, ok := c.Repos[c.Repo]
	if !ok || repo == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRepo, c.Repo)
	}
	return repo, nil
}

// Validate returns human readable configuration errors. An empty result means valid.
func (c *Config) Validate() []string {
	var errs []string
	if c.Auth.GitHub.User == "" || c.Auth.GitHub.Token == "" {
		errs = append(errs, "auth -> github\n  user and token required")
	}
	if c.Auth.Jira.Email == "" || c.Auth.Jira.Token == "" {
		errs = append(errs, "auth -> jira\n  email and token required")
	}

	if c.Repo == "" {
		return append(errs, "repo\n  field required")
	}
	repo, ok := c.Repos[c.Repo]
	if !ok || repo == nil {
		return append(errs, "repo\n  unknown repository: "+c.Repo)
	}

	prefix := "repos -> " + c.Repo
	switch info, err := os.Stat(repo.Path); {
	case repo.Path == "":
		errs = append(errs, prefix+" -> path\n  field required")
	case err != nil || !info.IsDir():
		errs = append(errs, prefix+" -> path\n  directory does not exist: "+repo.Path)
	}
	if repo.GlobalConfigSource == "" {
		errs = append(errs, prefix+" -> global_config_source\n  field required")
	}
	if len(repo.QAStatuses) < 2 {
		errs = append(errs, prefix+" -> qa_statuses\n  must have at least 2 statuses")
	}
	if len(repo.Teams) == 0 {
		errs = append(errs, prefix+" -> teams\n  must have at least one team")
	}
	for _, name := range repo.TeamNames() {
		team := repo.Teams[name]
		if team.JiraProject == "" || team.JiraIssueType == "" || team.GitHubTeam == "" {
			errs = append(errs, fmt.Sprintf("%s -> teams -> %s\n  jira_project, jira_issue_type and github_team required", prefix, name))
			continue
		}
		if _, err := team.StatusMap(repo.QAStatuses); err != nil {
			errs = append(errs, fmt.Sprintf("%s -> teams -> %s -> jira_statuses\n  %v", prefix, name, err))
		}
	}
	return errs
}

// TeamNames returns the configured team names in sorted order.
func (r *RepoConfig) TeamNames() []string {
	names := make([]string, 0, len(r.Teams))
	for name := range r.Teams {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Team returns the configuration of the named team.
func (r *RepoConfig) Team(name string) (*TeamConfig, error) {
	if len(r.Teams) == 0 {
		return nil, ErrNoTeams
	}
	team, ok := r.Teams[name]
	if !ok || team == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTeam, name)
	}
	return team, nil
}

// GitHubTeams returns the distinct source-forge team handles in sorted order.
func (r *RepoConfig) GitHubTeams() []string {
	var handles []string
	for _, team := range r.Teams {
		if !slices.Contains(handles, team.GitHubTeam) {
			handles = append(handles, team.GitHubTeam)
		}
	}
	slices.Sort(handles)
	return handles
}

// JiraProjects returns the distinct tracker projects in team-name order.
func (r *RepoConfig) JiraProjects() []string {
	var projects []string
	for _, name := range r.TeamNames() {
		p := r.Teams[name].JiraProject
		if !slices.Contains(projects, p) {
			projects = append(projects, p)
		}
	}
	return projects
}

// InitialStatus returns the first QA status.
func (r *RepoConfig) InitialStatus() string {
	if len(r.QAStatuses) == 0 {
		return ""
	}
	return r.QAStatuses[0]
}

// FinalStatus returns the terminal QA status.
func (r *RepoConfig) FinalStatus() string {
	if len(r.QAStatuses) == 0 {
		return ""
	}
	return r.QAStatuses[len(r.QAStatuses)-1]
}

// StatusMap returns the mapping from QA status to tracker status name for the team.
func (t *TeamConfig) StatusMap(qaStatuses []string) (map[string]string, error) {
	out := make(map[string]string, len(qaStatuses))
	switch v := t.JiraStatuses.(type) {
	case nil:
		return nil, ErrNoStatusMapping
	case []string:
		return zipStatuses(qaStatuses, v)
	case []any:
		names := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: non-string status %v", ErrInvalidStatusMapping, item)
			}
			names = append(names, s)
		}
		return zipStatuses(qaStatuses, names)
	case map[string]string:
		for qa, name := range v {
			out[qa] = name
		}
	case map[string]any:
		for qa, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: non-string status for %s", ErrInvalidStatusMapping, qa)
			}
			out[qa] = s
		}
	default:
		return nil, fmt.Errorf("%w: unsupported type %T", ErrInvalidStatusMapping, v)
	}

	for qa := range out {
		if !slices.Contains(qaStatuses, qa) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownStatus, qa)
		}
	}
	return out, nil
}

func zipStatuses(qaStatuses, names []string) (map[string]string, error) {
	if len(names) != len(qaStatuses) {
		return nil, fmt.Errorf("%w: expected %d statuses, got %d", ErrInvalidStatusMapping, len(qaStatuses), len(names))
	}
	out := make(map[string]string, len(names))
	for i, qa := range qaStatuses {
		out[qa] = names[i]
	}
	return out, nil
}

// TrackerConfig is the global configuration shared by every repository of an organization.
// It is fetched from the repository's global_config_source during sync.
type TrackerConfig struct {
	Members    map[string]string `json:"members"` // Source-forge login -> tracker account id
	JiraServer string            `json:"jira_server"`

	reversed map[string]string
}

// ParseTrackerConfig builds a TrackerConfig from a decoded global config document.
func ParseTrackerConfig(raw map[string]any) (*TrackerConfig, error) {
	if len(raw) == 0 {
		return nil, ErrGlobalConfigMissing
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGlobalConfig, err)
	}
	var cfg TrackerConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGlobalConfig, err)
	}
	if cfg.JiraServer == "" {
		return nil, fmt.Errorf("%w: jira_server required", ErrInvalidGlobalConfig)
	}
	if len(cfg.Members) == 0 {
		return nil, ErrNoMembers
	}
	if !strings.HasSuffix(cfg.JiraServer, "/") {
		cfg.JiraServer += "/"
	}
	return &cfg, nil
}

// TrackerUserID returns the tracker account id of a source-forge login.
func (c *TrackerConfig) TrackerUserID(login string) string {
	return c.Members[login]
}

// GitHubUser returns the source-forge login of a tracker account id.
func (c *TrackerConfig) GitHubUser(accountID string) string {
	if c.reversed == nil {
		c.reversed = make(map[string]string, len(c.Members))
		for login, id := range c.Members {
			c.reversed[id] = login
		}
	}
	return c.reversed[accountID]
}

// IssueURL returns the browse URL of an issue.
func (c *TrackerConfig) IssueURL(key string) string {
	return c.JiraServer + "browse/" + key
}
