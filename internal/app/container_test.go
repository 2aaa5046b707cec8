package app

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/runoshun/git-qa/internal/domain"
	"github.com/runoshun/git-qa/internal/infra/config"
	"github.com/runoshun/git-qa/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func newTestContainer(t *testing.T, content string) (*Container, string) {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	writeConfig(t, path, content)
	c := New(Options{
		Loader:   config.NewLoaderWithPaths(path, ""),
		Stderr:   &bytes.Buffer{},
		CacheDir: filepath.Join(dir, "cache"),
		WorkDir:  dir,
	})
	t.Cleanup(func() { _ = c.Close() })
	return c, path
}

func TestLazy(t *testing.T) {
	calls := 0
	l := lazy[int]{init: func() (int, error) {
		calls++
		return calls, nil
	}}

	v, err := l.get()
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	v, _ = l.get()
	assert.Equal(t, 1, v, "value is computed once")

	_, ok := l.peek()
	assert.True(t, ok)

	l.reset()
	_, ok = l.peek()
	assert.False(t, ok)

	v, _ = l.get()
	assert.Equal(t, 2, v)
}

func TestLazy_KeepsErrorUntilReset(t *testing.T) {
	fail := true
	l := lazy[string]{init: func() (string, error) {
		if fail {
			return "", errors.New("not yet")
		}
		return "ok", nil
	}}

	_, err := l.get()
	require.Error(t, err)

	fail = false
	_, err = l.get()
	require.Error(t, err)

	l.reset()
	v, err := l.get()
	require.NoError(t, err)
	assert.Equal(t, "ok", v)
}

func TestContainer_ConfigAndReset(t *testing.T) {
	// Setup
	c, path := newTestContainer(t, `repo = "app"

[repos.app]
qa_statuses = ["A", "B"]
`)

	// Execute
	repo, err := c.Repo()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, repo.QAStatuses)

	writeConfig(t, path, `repo = "app"

[repos.app]
qa_statuses = ["X", "Y", "Z"]
`)

	cached, err := c.Repo()
	require.NoError(t, err)
	assert.Same(t, repo, cached, "repo is memoized")

	// Resetting config cascades to the repo.
	c.Reset(FieldConfig)
	fresh, err := c.Repo()
	require.NoError(t, err)
	assert.Equal(t, []string{"X", "Y", "Z"}, fresh.QAStatuses)
}

func TestContainer_NoRepoSelected(t *testing.T) {
	c, _ := newTestContainer(t, ``)

	_, err := c.Repo()

	assert.ErrorIs(t, err, domain.ErrNoRepoSelected)
}

func TestContainer_CacheDir(t *testing.T) {
	t.Setenv(config.EnvCache, "")
	c, _ := newTestContainer(t, `cache_dir = "/from/config"`)
	assert.NotEqual(t, "/from/config", c.CacheDir(), "flag wins")

	c.SetCacheDir("")
	assert.Equal(t, "/from/config", c.CacheDir())
}

func TestContainer_FileLogger(t *testing.T) {
	c, _ := newTestContainer(t, `[log]
level = "debug"
`)

	c.FileLogger().Debug("", "test", "hello")
	require.NoError(t, c.Close())

	content, err := os.ReadFile(domain.LogPath(c.CacheDir()))
	require.NoError(t, err)
	assert.Contains(t, string(content), "[DEBUG] [global] [test] hello")
}

func TestStatusRelay(t *testing.T) {
	relay := NewStatusRelay()
	relay.SetStatus("dropped")
	assert.Empty(t, relay.Status())

	target := &testutil.MockStatus{}
	relay.Attach(target)
	relay.SetStatus("Loading...")

	assert.Equal(t, "Loading...", relay.Status())
	assert.Equal(t, []string{"Loading..."}, target.History)

	relay.Attach(nil)
	relay.SetStatus("dropped again")
	assert.Len(t, target.History, 1)
}

func TestWriterStatus(t *testing.T) {
	var buf bytes.Buffer
	s := NewWriterStatus(&buf)

	s.SetStatus("one")
	s.SetStatus("one")
	s.SetStatus("")
	s.SetStatus("two")

	assert.Equal(t, "one\ntwo\n", buf.String())
	assert.Equal(t, "two", s.Status())
}
