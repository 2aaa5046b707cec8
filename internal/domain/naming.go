package domain

import (
	"fmt"
	"path/filepath"
	"strings"
)

// File and directory names of the cache layout.
const (
	ConfigFileName      = "config.toml"
	RepoConfigDirName   = ".git-qa"
	NoPullRequestFile   = "no_pr.json"
	GlobalConfigFile    = "config.json"
	UserIDsFile         = "user_ids.json"
	TransitionsFile     = "transitions.json"
	LogFileName         = "git-qa.log"
	AppName             = "git-qa"
	githubCacheDirName  = "github"
	trackerCacheDirName = "jira"
)

// GitHubCacheDir returns the source-forge cache directory of a repository.
// Layout: <cache>/github/<org>/<repo>
func GitHubCacheDir(cacheDir, org, repo string) string {
	return filepath.Join(cacheDir, githubCacheDirName, org, repo)
}

// CommitCacheDir returns the directory holding the marker or no_pr.json of a commit.
func CommitCacheDir(repoCacheDir, hash string) string {
	return filepath.Join(repoCacheDir, "commits", hash)
}

// PullRequestCachePath returns the path of a cached pull request.
func PullRequestCachePath(repoCacheDir, number string) string {
	return filepath.Join(repoCacheDir, "pull_requests", number+".json")
}

// TeamMembersCachePath returns the path of a cached team roster.
func TeamMembersCachePath(repoCacheDir, team string) string {
	return filepath.Join(repoCacheDir, "team_members", team+".txt")
}

// TrackerCacheDir returns the tracker cache directory.
// Layout: <cache>/jira
func TrackerCacheDir(cacheDir string) string {
	return filepath.Join(cacheDir, trackerCacheDirName)
}

// TransitionsCachePath returns the path of the cached transitions of a project.
func TransitionsCachePath(trackerDir, project string) string {
	return filepath.Join(trackerDir, "projects", project, TransitionsFile)
}

// LogPath returns the path of the log file.
func LogPath(cacheDir string) string {
	return filepath.Join(cacheDir, "logs", LogFileName)
}

// RepoConfigPath returns the path of the repository-local config file.
func RepoConfigPath(repoPath string) string {
	return filepath.Join(repoPath, RepoConfigDirName, ConfigFileName)
}

// GlobalConfigDir returns the global config directory under configHome.
func GlobalConfigDir(configHome string) string {
	return filepath.Join(configHome, AppName)
}

// ParseRepoID extracts "org/repo" from a GitHub remote URL.
//
//	https://github.com/foo/bar.git -> foo/bar
//	git@github.com:foo/bar.git     -> foo/bar
func ParseRepoID(remoteURL string) (string, error) {
	_, rest, ok := strings.Cut(strings.TrimSpace(remoteURL), "github.com")
	if !ok || len(rest) < 2 {
		return "", fmt.Errorf("%w: %s", ErrInvalidRemote, remoteURL)
	}
	id := strings.TrimSuffix(strings.TrimSuffix(rest[1:], "/"), ".git")
	org, repo, ok := strings.Cut(id, "/")
	if !ok || org == "" || repo == "" || strings.Contains(repo, "/") {
		return "", fmt.Errorf("%w: %s", ErrInvalidRemote, remoteURL)
	}
	return id, nil
}

// SplitRepoID splits "org/repo" into its parts.
func SplitRepoID(id string) (org, repo string) {
	org, repo, _ = strings.Cut(id, "/")
	return org, repo
}
