package cli

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/runoshun/git-qa/internal/app"
	"github.com/runoshun/git-qa/internal/infra/cache"
	"github.com/runoshun/git-qa/internal/infra/config"
	"github.com/stretchr/testify/require"
)

const testSource = "https://example.com/qa/config.toml"

// testEnv is a temporary configuration, cache directory and git repository.
type testEnv struct {
	container *app.Container
	dir       string
	repoDir   string
	cacheDir  string
	config    string
}

func newTestEnv(t *testing.T, opts ...func(*app.Options)) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:      dir,
		repoDir:  filepath.Join(dir, "app"),
		cacheDir: filepath.Join(dir, "cache"),
		config:   filepath.Join(dir, "config", "config.toml"),
	}
	o := app.Options{
		Loader:   config.NewLoaderWithPaths(env.config, ""),
		Stderr:   &bytes.Buffer{},
		CacheDir: env.cacheDir,
		WorkDir:  dir,
	}
	for _, opt := range opts {
		opt(&o)
	}
	env.container = app.New(o)
	t.Cleanup(func() { _ = env.container.Close() })
	return env
}

// writeConfig writes a valid configuration selecting a repository at repoDir.
func (e *testEnv) writeConfig(t *testing.T, source string) {
	t.Helper()
	e.writeRaw(t, fmt.Sprintf(`repo = "app"

[auth.github]
user = "octocat"
token = "gh-secret"

[auth.jira]
email = "qa@example.com"
token = "jira-secret"

[repos.app]
path = %q
global_config_source = %q
qa_statuses = ["TODO", "DONE"]
ignored_labels = ["qa/skip"]

[repos.app.teams.Alpha]
jira_project = "FOO"
jira_issue_type = "Task"
jira_statuses = ["To Do", "Done"]
github_team = "alpha-team"
github_labels = ["team/alpha"]
`, e.repoDir, source))
}

func (e *testEnv) writeRaw(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(e.config), 0o755))
	require.NoError(t, os.WriteFile(e.config, []byte(content), 0o600))
}

// initRepo creates the git repository with a GitHub origin.
func (e *testEnv) initRepo(t *testing.T) {
	t.Helper()
	require.NoError(t, os.MkdirAll(e.repoDir, 0o755))
	runGit(t, e.repoDir, "init", "-b", "main")
	runGit(t, e.repoDir, "config", "user.email", "test@example.com")
	runGit(t, e.repoDir, "config", "user.name", "Test User")
	runGit(t, e.repoDir, "config", "commit.gpgsign", "false")
	runGit(t, e.repoDir, "remote", "add", "origin", "https://github.com/org/app.git")
	require.NoError(t, os.WriteFile(filepath.Join(e.repoDir, "README.md"), []byte("# App\n"), 0o644))
	runGit(t, e.repoDir, "add", "README.md")
	runGit(t, e.repoDir, "commit", "-m", "Initial commit")
}

// seedSync stores a global config and roster so no sync is required.
func (e *testEnv) seedSync(t *testing.T) *cache.ForgeCache {
	t.Helper()
	fc := cache.NewForgeCache(e.cacheDir, "org", "app")
	require.NoError(t, fc.SaveGlobalConfig(testSource, map[string]any{
		"jira_server": "https://example.atlassian.net",
		"members":     map[string]any{"alice": "id-alice"},
	}))
	require.NoError(t, fc.SaveTeamMembers("alpha-team", []string{"alice"}))
	return fc
}

// execute runs the root command and returns stdout and stderr.
func (e *testEnv) execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCommand(e.container, "1.2.3")
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

// stubProgram replaces the screen runner and records the models it receives.
func stubProgram(t *testing.T) *[]tea.Model {
	t.Helper()
	var models []tea.Model
	orig := runProgramFunc
	runProgramFunc = func(_ *app.Container, model tea.Model) error {
		models = append(models, model)
		return nil
	}
	t.Cleanup(func() { runProgramFunc = orig })
	return &models
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v failed: %s", args, out)
	return strings.TrimSpace(string(out))
}
