// Package app provides the dependency injection container for the application.
package app

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/runoshun/git-qa/internal/domain"
	"github.com/runoshun/git-qa/internal/infra/cache"
	"github.com/runoshun/git-qa/internal/infra/config"
	"github.com/runoshun/git-qa/internal/infra/git"
	"github.com/runoshun/git-qa/internal/infra/github"
	"github.com/runoshun/git-qa/internal/infra/jira"
	"github.com/runoshun/git-qa/internal/infra/logging"
	"github.com/runoshun/git-qa/internal/infra/netclient"
	"github.com/runoshun/git-qa/internal/usecase"
	"github.com/runoshun/git-qa/internal/usecase/shared"
)

// Field names a lazily initialized container field.
type Field string

// Lazily initialized fields. Resetting a field also resets the fields derived from it.
const (
	FieldConfig        Field = "config"
	FieldRepo          Field = "repo"
	FieldGit           Field = "git"
	FieldRepoID        Field = "repo_id"
	FieldLogger        Field = "logger"
	FieldGitHub        Field = "github"
	FieldTrackerConfig Field = "tracker_config"
	FieldJira          Field = "jira"
)

// dependents lists the fields computed from each field.
var dependents = map[Field][]Field{
	FieldConfig:        {FieldRepo, FieldLogger, FieldGitHub, FieldJira, FieldTrackerConfig},
	FieldRepo:          {FieldGit, FieldTrackerConfig, FieldJira},
	FieldGit:           {FieldRepoID},
	FieldRepoID:        {FieldGitHub, FieldTrackerConfig},
	FieldLogger:        {FieldGitHub, FieldJira},
	FieldGitHub:        nil,
	FieldTrackerConfig: {FieldJira},
	FieldJira:          nil,
}

// Options configures a Container.
// Fields are ordered to minimize memory padding.
type Options struct {
	Loader     *config.Loader // Defaults to config.NewLoader()
	HTTPClient *http.Client
	Clock      domain.Clock
	Stderr     io.Writer
	CacheDir   string // --cache-dir flag value
	WorkDir    string // Directory used when a repository has no path
	GitHubAPI  string // Overrides the GitHub API base URL
}

// Container provides dependency injection for the application.
// Expensive collaborators are built on first use and cached until Reset.
// Fields are ordered to minimize memory padding.
type Container struct {
	Clock         domain.Clock
	Rand          domain.Rand
	Status        *StatusRelay
	Loader        *config.Loader
	ConfigManager *config.Manager
	Logger        *slog.Logger // Process diagnostics on stderr
	httpClient    *http.Client

	config        lazy[*domain.Config]
	repo          lazy[*domain.RepoConfig]
	git           lazy[*git.Client]
	repoID        lazy[string]
	fileLogger    lazy[*logging.Logger]
	github        lazy[*github.Repository]
	trackerConfig lazy[*domain.TrackerConfig]
	jira          lazy[*jira.Client]

	cacheDirFlag string
	workDir      string
	githubAPI    string
	mu           sync.Mutex // Guards Loader, ConfigManager and cacheDirFlag
}

// New creates a new Container. Nothing is loaded until first use.
func New(opts Options) *Container {
	if opts.Loader == nil {
		opts.Loader = config.NewLoader()
	}
	if opts.Clock == nil {
		opts.Clock = domain.RealClock{}
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.WorkDir == "" {
		opts.WorkDir, _ = os.Getwd()
	}

	c := &Container{
		Clock:         opts.Clock,
		Rand:          domain.DefaultRand(),
		Status:        NewStatusRelay(),
		Loader:        opts.Loader,
		ConfigManager: config.NewManager(opts.Loader.GlobalPath()),
		Logger: slog.New(slog.NewTextHandler(opts.Stderr, &slog.HandlerOptions{
			Level: slog.LevelWarn,
		})),
		httpClient:   opts.HTTPClient,
		cacheDirFlag: opts.CacheDir,
		workDir:      opts.WorkDir,
		githubAPI:    opts.GitHubAPI,
	}

	c.config.init = c.loadConfig
	c.repo.init = c.loadRepo
	c.git.init = c.openGit
	c.repoID.init = c.loadRepoID
	c.fileLogger.init = c.openLogger
	c.github.init = c.newGitHub
	c.trackerConfig.init = c.loadTrackerConfig
	c.jira.init = c.newJira
	return c
}

func (c *Container) field(f Field) resettable {
	switch f {
	case FieldConfig:
		return &c.config
	case FieldRepo:
		return &c.repo
	case FieldGit:
		return &c.git
	case FieldRepoID:
		return &c.repoID
	case FieldLogger:
		return &c.fileLogger
	case FieldGitHub:
		return &c.github
	case FieldTrackerConfig:
		return &c.trackerConfig
	case FieldJira:
		return &c.jira
	}
	return nil
}

// Reset invalidates fields and everything derived from them.
// The next accessor call recomputes them.
func (c *Container) Reset(fields ...Field) {
	seen := make(map[Field]bool)
	var visit func(Field)
	visit = func(f Field) {
		if seen[f] {
			return
		}
		seen[f] = true
		if f == FieldLogger {
			if l, ok := c.fileLogger.peek(); ok && l != nil {
				_ = l.Close()
			}
		}
		if r := c.field(f); r != nil {
			r.reset()
		}
		for _, d := range dependents[f] {
			visit(d)
		}
	}
	for _, f := range fields {
		visit(f)
	}
}

// SetCacheDir overrides the cache directory, as the --cache-dir flag does.
func (c *Container) SetCacheDir(dir string) {
	c.mu.Lock()
	c.cacheDirFlag = dir
	c.mu.Unlock()
	c.Reset(FieldLogger, FieldRepoID)
}

// SetConfigPath loads the global configuration from path instead of the default location.
func (c *Container) SetConfigPath(path string) {
	c.mu.Lock()
	c.Loader = config.NewLoaderWithPaths(path, c.Loader.RepoConfigPath())
	c.ConfigManager = config.NewManager(path)
	c.mu.Unlock()
	c.Reset(FieldConfig)
}

// Close releases open resources.
func (c *Container) Close() error {
	if l, ok := c.fileLogger.peek(); ok && l != nil {
		return l.Close()
	}
	return nil
}

// Config returns the loaded configuration.
func (c *Container) Config() (*domain.Config, error) {
	return c.config.get()
}

// Repo returns the selected repository configuration.
func (c *Container) Repo() (*domain.RepoConfig, error) {
	return c.repo.get()
}

// Git returns the git client of the selected repository.
func (c *Container) Git() (*git.Client, error) {
	return c.git.get()
}

// RepoID returns "org/repo" derived from the origin remote.
func (c *Container) RepoID() (string, error) {
	return c.repoID.get()
}

// FileLogger returns the cache log file logger.
func (c *Container) FileLogger() domain.Logger {
	l, err := c.fileLogger.get()
	if err != nil || l == nil {
		return domain.NopLogger{}
	}
	return l
}

// GitHub returns the source-forge client of the selected repository.
func (c *Container) GitHub() (*github.Repository, error) {
	return c.github.get()
}

// TrackerConfig returns the synced global tracker configuration.
func (c *Container) TrackerConfig() (*domain.TrackerConfig, error) {
	return c.trackerConfig.get()
}

// Jira returns the tracker client of the selected repository.
func (c *Container) Jira() (*jira.Client, error) {
	return c.jira.get()
}

// CacheDir returns the resolved cache directory.
func (c *Container) CacheDir() string {
	cfg, err := c.Config()
	if err != nil {
		cfg = nil
	}
	c.mu.Lock()
	flag := c.cacheDirFlag
	c.mu.Unlock()
	return config.ResolveCacheDir(flag, cfg)
}

// ForgeCache returns the source-forge cache of the selected repository.
func (c *Container) ForgeCache() (*cache.ForgeCache, error) {
	id, err := c.RepoID()
	if err != nil {
		return nil, err
	}
	org, name := domain.SplitRepoID(id)
	return cache.NewForgeCache(c.CacheDir(), org, name), nil
}

// TrackerCache returns the tracker cache.
func (c *Container) TrackerCache() *cache.TrackerCache {
	return cache.NewTrackerCache(c.CacheDir())
}

func (c *Container) loadConfig() (*domain.Config, error) {
	c.mu.Lock()
	loader := c.Loader
	c.mu.Unlock()
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	for _, w := range cfg.Warnings {
		c.Logger.Warn("config", "warning", w)
	}
	return cfg, nil
}

func (c *Container) loadRepo() (*domain.RepoConfig, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	return cfg.SelectedRepo()
}

func (c *Container) openGit() (*git.Client, error) {
	repo, err := c.Repo()
	if err != nil {
		return nil, err
	}
	dir := repo.Path
	if dir == "" {
		dir = c.workDir
	}
	return git.NewClient(dir)
}

func (c *Container) loadRepoID() (string, error) {
	g, err := c.Git()
	if err != nil {
		return "", err
	}
	remote, err := g.RemoteURL()
	if err != nil {
		return "", err
	}
	return domain.ParseRepoID(remote)
}

func (c *Container) openLogger() (*logging.Logger, error) {
	level := ""
	if cfg, err := c.Config(); err == nil {
		level = cfg.Log.Level
	}
	return logging.New(c.CacheDir(), logging.ParseLevel(level)), nil
}

func (c *Container) netClient(category, user, password string, rateLimit netclient.RateLimitFunc) *netclient.Client {
	return netclient.New(netclient.Options{
		HTTPClient: c.httpClient,
		Clock:      c.Clock,
		Status:     c.Status,
		Logger:     c.FileLogger(),
		RateLimit:  rateLimit,
		Username:   user,
		Password:   password,
		Category:   category,
	})
}

func (c *Container) newGitHub() (*github.Repository, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	id, err := c.RepoID()
	if err != nil {
		return nil, err
	}
	fc, err := c.ForgeCache()
	if err != nil {
		return nil, err
	}
	return github.New(github.Options{
		Client:     c.netClient("github", cfg.Auth.GitHub.User, cfg.Auth.GitHub.Token, github.RateLimit),
		Candidates: fc,
		Rosters:    fc,
		Logger:     c.FileLogger(),
		RepoID:     id,
		APIURL:     c.githubAPI,
	}), nil
}

func (c *Container) loadTrackerConfig() (*domain.TrackerConfig, error) {
	repo, err := c.Repo()
	if err != nil {
		return nil, err
	}
	fc, err := c.ForgeCache()
	if err != nil {
		return nil, err
	}
	return shared.LoadTrackerConfig(fc, repo)
}

func (c *Container) newJira() (*jira.Client, error) {
	cfg, err := c.Config()
	if err != nil {
		return nil, err
	}
	repo, err := c.Repo()
	if err != nil {
		return nil, err
	}
	tc, err := c.TrackerConfig()
	if err != nil {
		return nil, err
	}
	return jira.New(jira.Options{
		HTTP:   c.netClient("jira", cfg.Auth.Jira.Email, cfg.Auth.Jira.Token, jira.RateLimit),
		Cache:  c.TrackerCache(),
		Repo:   repo,
		Config: tc,
		Logger: c.FileLogger(),
		Clock:  c.Clock,
		Email:  cfg.Auth.Jira.Email,
		Token:  cfg.Auth.Jira.Token,
	}), nil
}

// UseCase factory methods

// ResolveCandidatesUseCase returns a new ResolveCandidates use case.
func (c *Container) ResolveCandidatesUseCase() (*usecase.ResolveCandidates, error) {
	g, err := c.Git()
	if err != nil {
		return nil, err
	}
	gh, err := c.GitHub()
	if err != nil {
		return nil, err
	}
	return usecase.NewResolveCandidates(g, gh, c.FileLogger()), nil
}

// ToggleAssignmentUseCase returns a new ToggleAssignment use case.
func (c *Container) ToggleAssignmentUseCase() (*usecase.ToggleAssignment, error) {
	repo, err := c.Repo()
	if err != nil {
		return nil, err
	}
	fc, err := c.ForgeCache()
	if err != nil {
		return nil, err
	}
	return usecase.NewToggleAssignment(repo, fc), nil
}

// CreateIssuesUseCase returns a new CreateIssues use case.
func (c *Container) CreateIssuesUseCase() (*usecase.CreateIssues, error) {
	repo, err := c.Repo()
	if err != nil {
		return nil, err
	}
	tc, err := c.TrackerConfig()
	if err != nil {
		return nil, err
	}
	gh, err := c.GitHub()
	if err != nil {
		return nil, err
	}
	j, err := c.Jira()
	if err != nil {
		return nil, err
	}
	return usecase.NewCreateIssues(repo, tc, gh, j, c.Rand, c.Status, c.FileLogger()), nil
}

// SyncTeamsUseCase returns a new SyncTeams use case.
func (c *Container) SyncTeamsUseCase() (*usecase.SyncTeams, error) {
	repo, err := c.Repo()
	if err != nil {
		return nil, err
	}
	gh, err := c.GitHub()
	if err != nil {
		return nil, err
	}
	fc, err := c.ForgeCache()
	if err != nil {
		return nil, err
	}
	return usecase.NewSyncTeams(repo, gh, fc, c.Status, c.FileLogger()), nil
}

// CheckSyncUseCase returns a new CheckSync use case.
func (c *Container) CheckSyncUseCase() (*usecase.CheckSync, error) {
	repo, err := c.Repo()
	if err != nil {
		return nil, err
	}
	fc, err := c.ForgeCache()
	if err != nil {
		return nil, err
	}
	return usecase.NewCheckSync(repo, fc, fc), nil
}

// FindDeactivatedMembersUseCase returns a new FindDeactivatedMembers use case.
func (c *Container) FindDeactivatedMembersUseCase() (*usecase.FindDeactivatedMembers, error) {
	tc, err := c.TrackerConfig()
	if err != nil {
		return nil, err
	}
	j, err := c.Jira()
	if err != nil {
		return nil, err
	}
	return usecase.NewFindDeactivatedMembers(tc, j), nil
}

// LoadDashboardUseCase returns a new LoadDashboard use case.
func (c *Container) LoadDashboardUseCase() (*usecase.LoadDashboard, error) {
	repo, err := c.Repo()
	if err != nil {
		return nil, err
	}
	j, err := c.Jira()
	if err != nil {
		return nil, err
	}
	return usecase.NewLoadDashboard(repo, j, c.Status), nil
}

// MoveIssueUseCase returns a new MoveIssue use case.
func (c *Container) MoveIssueUseCase() (*usecase.MoveIssue, error) {
	j, err := c.Jira()
	if err != nil {
		return nil, err
	}
	return usecase.NewMoveIssue(j, c.FileLogger()), nil
}

// ShowCandidateUseCase returns a new ShowCandidate use case.
func (c *Container) ShowCandidateUseCase() (*usecase.ShowCandidate, error) {
	fc, err := c.ForgeCache()
	if err != nil {
		return nil, err
	}
	return usecase.NewShowCandidate(fc), nil
}
