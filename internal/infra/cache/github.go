package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/runoshun/git-qa/internal/domain"
)

// Ensure ForgeCache implements the cache ports.
var (
	_ domain.CandidateCache    = (*ForgeCache)(nil)
	_ domain.RosterCache       = (*ForgeCache)(nil)
	_ domain.GlobalConfigCache = (*ForgeCache)(nil)
)

// ForgeCache caches source-forge data of one repository.
type ForgeCache struct {
	dir string // <cache>/github/<org>/<repo>
}

// NewForgeCache creates a ForgeCache for org/repo under cacheDir.
func NewForgeCache(cacheDir, org, repo string) *ForgeCache {
	return &ForgeCache{dir: domain.GitHubCacheDir(cacheDir, org, repo)}
}

// Dir returns the repository cache directory.
func (c *ForgeCache) Dir() string {
	return c.dir
}

// The global config document is shared by every repository of the organization.
func (c *ForgeCache) globalConfigPath() string {
	return filepath.Join(filepath.Dir(c.dir), domain.GlobalConfigFile)
}

func (c *ForgeCache) readGlobalConfigs() map[string]map[string]any {
	data := make(map[string]map[string]any)
	content := readFile(c.globalConfigPath())
	if content == nil {
		return data
	}
	if err := json.Unmarshal(content, &data); err != nil || data == nil {
		return make(map[string]map[string]any)
	}
	return data
}

// LoadGlobalConfig returns the global config saved for source, or an empty map.
func (c *ForgeCache) LoadGlobalConfig(source string) map[string]any {
	cfg := c.readGlobalConfigs()[source]
	if cfg == nil {
		return map[string]any{}
	}
	return cfg
}

// SaveGlobalConfig merges the config for source into the global config document.
func (c *ForgeCache) SaveGlobalConfig(source string, cfg map[string]any) error {
	data := c.readGlobalConfigs()
	data[source] = cfg
	content, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal global config: %w", err)
	}
	return WriteAtomic(c.globalConfigPath(), content)
}

// TeamMembers returns the cached roster of team in sorted order.
// ok is false if the roster was never fetched; an empty roster is still ok.
func (c *ForgeCache) TeamMembers(team string) ([]string, bool) {
	content, err := os.ReadFile(domain.TeamMembersCachePath(c.dir, team))
	if err != nil {
		return nil, false
	}
	members := []string{}
	for _, line := range strings.Split(string(content), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			members = append(members, line)
		}
	}
	slices.Sort(members)
	return members, true
}

// SaveTeamMembers stores the roster of team as newline-separated logins.
func (c *ForgeCache) SaveTeamMembers(team string, members []string) error {
	sorted := append([]string(nil), members...)
	slices.Sort(sorted)
	return WriteAtomic(domain.TeamMembersCachePath(c.dir, team), []byte(strings.Join(sorted, "\n")))
}

// HasTeamMembers reports whether any roster has been cached.
func (c *ForgeCache) HasTeamMembers() bool {
	entries, err := os.ReadDir(filepath.Join(c.dir, "team_members"))
	if err != nil {
		return false
	}
	for _, e := range entries {
		if !e.IsDir() && !isTemp(e.Name()) {
			return true
		}
	}
	return false
}

// CachedCandidate returns the candidate cached for a commit, or nil.
func (c *ForgeCache) CachedCandidate(commitHash string) *Candidate {
	entries, err := os.ReadDir(domain.CommitCacheDir(c.dir, commitHash))
	if err != nil {
		return nil
	}
	for _, e := range entries {
		name := e.Name()
		if isTemp(name) {
			continue
		}
		if name == domain.NoPullRequestFile {
			return loadCandidate(filepath.Join(domain.CommitCacheDir(c.dir, commitHash), name))
		}
		if domain.IsPullRequestID(name) {
			return c.CachedPullRequest(name)
		}
	}
	return nil
}

// CachedPullRequest returns the candidate cached for a pull request number, or nil.
func (c *ForgeCache) CachedPullRequest(number string) *Candidate {
	return loadCandidate(domain.PullRequestCachePath(c.dir, number))
}

// LinkCommit writes the zero-byte marker linking commitHash to a cached pull request.
func (c *ForgeCache) LinkCommit(commitHash, number string) error {
	return WriteAtomic(filepath.Join(domain.CommitCacheDir(c.dir, commitHash), number), nil)
}

// CacheCandidate stores a candidate resolved from commitHash.
// Pull requests are stored once under their number and linked from the commit;
// bare commits are stored as no_pr.json in the commit directory.
func (c *ForgeCache) CacheCandidate(commitHash string, candidate *Candidate) error {
	content, err := json.Marshal(candidate)
	if err != nil {
		return fmt.Errorf("marshal candidate: %w", err)
	}

	commitDir := domain.CommitCacheDir(c.dir, commitHash)
	if !candidate.IsPullRequest() {
		return WriteAtomic(filepath.Join(commitDir, domain.NoPullRequestFile), content)
	}

	if err := WriteAtomic(domain.PullRequestCachePath(c.dir, candidate.ID), content); err != nil {
		return err
	}
	return c.LinkCommit(commitHash, candidate.ID)
}

// Candidate is an alias kept short for readability inside the package.
type Candidate = domain.Candidate

func loadCandidate(path string) *Candidate {
	content := readFile(path)
	if content == nil {
		return nil
	}
	var candidate Candidate
	if err := json.Unmarshal(content, &candidate); err != nil || candidate.ID == "" {
		return nil
	}
	return &candidate
}
