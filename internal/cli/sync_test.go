package cli

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/runoshun/git-qa/internal/app"
	"github.com/runoshun/git-qa/internal/infra/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newSyncServer serves the global config, a team roster and tracker accounts.
func newSyncServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/qa/config.toml", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprintf(w, "jira_server = %q\n\n[members]\nalice = \"id-alice\"\nbob = \"id-bob\"\n", srv.URL+"/jira")
	})
	mux.HandleFunc("/orgs/org/teams/alpha-team/members", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `[{"login":"bob","type":"User"},{"login":"alice","type":"User"},{"login":"ci","type":"Bot"}]`)
	})
	mux.HandleFunc("/jira/rest/api/2/user/bulk", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = fmt.Fprint(w, `{"values":[`+
			`{"accountId":"id-alice","displayName":"Alice","active":true},`+
			`{"accountId":"id-bob","displayName":"Bob","active":false}],"total":2}`)
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestSync(t *testing.T) {
	// Setup
	srv := newSyncServer(t)
	env := newTestEnv(t, func(o *app.Options) { o.GitHubAPI = srv.URL })
	env.initRepo(t)
	source := srv.URL + "/qa/config.toml"
	env.writeConfig(t, source)

	// Execute
	stdout, stderr, err := env.execute(t, "sync")

	// Verify
	require.NoError(t, err)
	assert.Equal(t, "Fetching global config from: "+source+"\n"+
		"Refreshing members for team: alpha-team\n"+
		"alpha-team: 2 members\n"+
		"Deactivated tracker accounts:\n"+
		"- bob (Bob)\n", stdout)
	assert.Contains(t, stderr, "Synced")

	fc := cache.NewForgeCache(env.cacheDir, "org", "app")
	members, ok := fc.TeamMembers("alpha-team")
	require.True(t, ok)
	assert.Equal(t, []string{"alice", "bob"}, members)
	assert.Equal(t, srv.URL+"/jira", fc.LoadGlobalConfig(source)["jira_server"])
}

func TestSync_InvalidConfig(t *testing.T) {
	env := newTestEnv(t)

	_, _, err := env.execute(t, "sync")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestSync_FetchError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	t.Cleanup(srv.Close)
	env := newTestEnv(t, func(o *app.Options) { o.GitHubAPI = srv.URL })
	env.initRepo(t)
	env.writeConfig(t, srv.URL+"/qa/config.toml")

	_, _, err := env.execute(t, "sync")

	require.Error(t, err)
	_, ok := cache.NewForgeCache(env.cacheDir, "org", "app").TeamMembers("alpha-team")
	assert.False(t, ok)
}
