package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand(nil, "1.2.3")

	assert.Equal(t, "git-qa", cmd.Use)
	assert.Equal(t, "1.2.3", cmd.Version)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("cache-dir"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))

	names := make(map[string]string)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = sub.GroupID
	}
	assert.Equal(t, map[string]string{
		"create": groupQA,
		"status": groupQA,
		"sync":   groupSetup,
		"cache":  groupSetup,
		"config": groupSetup,
	}, names)
}

func TestRootCommand_Help(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.execute(t, "--help")
	require.NoError(t, err)

	assert.Contains(t, stdout, "QA Commands:")
	assert.Contains(t, stdout, "Setup Commands:")
	assert.Contains(t, stdout, "create")
}

func TestRootCommand_Version(t *testing.T) {
	env := newTestEnv(t)

	stdout, _, err := env.execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "1.2.3")
}

func TestRootCommand_MissingConfigFile(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "missing.toml")

	_, _, err := env.execute(t, "--config", path, "cache", "find")

	require.Error(t, err)
	assert.Equal(t, "the selected config file "+path+" does not exist", err.Error())
}

func TestRootCommand_ConfigFlag(t *testing.T) {
	env := newTestEnv(t)
	other := filepath.Join(env.dir, "other.toml")
	env.config = other
	env.writeRaw(t, "cache_dir = \"/from/other\"\n")

	// Execute
	stdout, _, err := env.execute(t, "--config", other, "config", "find")

	// Verify
	require.NoError(t, err)
	assert.Equal(t, other+"\n", stdout)
}

func TestRootCommand_CacheDirFlag(t *testing.T) {
	env := newTestEnv(t)
	dir := filepath.Join(env.dir, "flag-cache")

	stdout, _, err := env.execute(t, "--cache-dir", dir, "cache", "find")

	require.NoError(t, err)
	assert.Equal(t, dir+"\n", stdout)
}

func TestLoadRepo(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "empty config",
			content: "",
			wantErr: "invalid configuration:\n  auth -> github\n  user and token required",
		},
		{
			name: "unknown repository",
			content: `repo = "nope"
[auth.github]
user = "u"
token = "t"
[auth.jira]
email = "e"
token = "t"
`,
			wantErr: "repo\n  unknown repository: nope",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.writeRaw(t, tt.content)

			_, _, err := loadRepo(env.container)

			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadRepo_Valid(t *testing.T) {
	env := newTestEnv(t)
	env.initRepo(t)
	env.writeConfig(t, testSource)

	cfg, repo, err := loadRepo(env.container)

	require.NoError(t, err)
	assert.Equal(t, "app", cfg.Repo)
	assert.Equal(t, []string{"TODO", "DONE"}, repo.QAStatuses)
}

func TestLoadRepo_NilContainer(t *testing.T) {
	_, _, err := loadRepo(nil)
	assert.Error(t, err)
}
