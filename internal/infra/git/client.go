// Package git provides git operations.
package git

import (
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/runoshun/git-qa/internal/domain"
)

// Client provides git operations on one repository.
// Repository inspection goes through go-git; patch-equivalence uses the git CLI.
type Client struct {
	repo     *git.Repository
	repoRoot string // Top level of the working tree
}

// Ensure Client implements domain.Git interface.
var _ domain.Git = (*Client)(nil)

// NewClient opens the repository containing dir.
func NewClient(dir string) (*Client, error) {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{
		DetectDotGit:          true,
		EnableDotGitCommonDir: true,
	})
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) {
			return nil, domain.ErrNotGitRepository
		}
		return nil, fmt.Errorf("open repository: %w", err)
	}

	root := dir
	if wt, err := repo.Worktree(); err == nil {
		root = wt.Filesystem.Root()
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Client{repo: repo, repoRoot: root}, nil
}

// RepoRoot returns the top level of the working tree.
func (c *Client) RepoRoot() string {
	return c.repoRoot
}

// RemoteURL returns the first URL of the origin remote.
func (c *Client) RemoteURL() (string, error) {
	remote, err := c.repo.Remote("origin")
	if err != nil {
		return "", fmt.Errorf("get origin remote: %w", err)
	}
	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", fmt.Errorf("origin remote has no URL")
	}
	return urls[0], nil
}

// CurrentBranch returns the name of the current branch, or "HEAD" when detached.
func (c *Client) CurrentBranch() (string, error) {
	head, err := c.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get current branch: %w", err)
	}
	if !head.Name().IsBranch() {
		return "HEAD", nil
	}
	return head.Name().Short(), nil
}

// LatestCommit returns the hash of HEAD.
func (c *Client) LatestCommit() (string, error) {
	head, err := c.repo.Head()
	if err != nil {
		return "", fmt.Errorf("failed to get HEAD: %w", err)
	}
	return head.Hash().String(), nil
}

// ResolveRef returns the commit hash a revision points to.
func (c *Client) ResolveRef(ref string) (string, error) {
	hash, err := c.repo.ResolveRevision(plumbing.Revision(ref))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", ref, err)
	}
	return hash.String(), nil
}

// MutuallyExclusiveCommits returns the commits of head without a patch-equivalent
// commit in base, oldest first, as reported by git cherry.
func (c *Client) MutuallyExclusiveCommits(base, head string) ([]domain.Commit, error) {
	//nolint:gosec // refs are passed as arguments, not shell input
	cmd := exec.Command("git", "cherry", "-v", base, head)
	cmd.Dir = c.repoRoot
	out, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("git cherry %s %s: %w: %s", base, head, err, strings.TrimSpace(string(out)))
	}
	return parseCherry(string(out)), nil
}

// parseCherry parses "git cherry -v" output, skipping commits already in upstream.
func parseCherry(out string) []domain.Commit {
	var commits []domain.Commit
	for _, line := range strings.Split(out, "\n") {
		fields := strings.SplitN(strings.TrimSpace(line), " ", 3)
		if len(fields) < 2 || fields[0] != "+" {
			continue
		}
		commit := domain.Commit{Hash: fields[1]}
		if len(fields) == 3 {
			commit.Subject = fields[2]
		}
		commits = append(commits, commit)
	}
	return commits
}
