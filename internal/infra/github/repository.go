// Package github resolves commits and team rosters against the GitHub REST API.
package github

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/runoshun/git-qa/internal/domain"
	"github.com/runoshun/git-qa/internal/infra/netclient"
)

// Default endpoints.
const (
	DefaultAPIURL = "https://api.github.com"
	DefaultWebURL = "https://github.com"
)

// Ensure Repository implements domain.SourceForge.
var _ domain.SourceForge = (*Repository)(nil)

// Options configures a Repository.
// Fields are ordered to minimize memory padding.
type Options struct {
	Client     *netclient.Client
	Candidates domain.CandidateCache
	Rosters    domain.RosterCache
	Logger     domain.Logger
	RepoID     string // "org/repo"
	APIURL     string
	WebURL     string
}

// Repository is the source-forge view of one repository.
// Fields are ordered to minimize memory padding.
type Repository struct {
	client     *netclient.Client
	candidates domain.CandidateCache
	rosters    domain.RosterCache
	logger     domain.Logger
	repoID     string
	org        string
	apiURL     string
	webURL     string
}

// New creates a Repository.
func New(opts Options) *Repository {
	r := &Repository{
		client:     opts.Client,
		candidates: opts.Candidates,
		rosters:    opts.Rosters,
		logger:     opts.Logger,
		repoID:     opts.RepoID,
		apiURL:     strings.TrimRight(opts.APIURL, "/"),
		webURL:     strings.TrimRight(opts.WebURL, "/"),
	}
	r.org, _ = domain.SplitRepoID(opts.RepoID)
	if r.apiURL == "" {
		r.apiURL = DefaultAPIURL
	}
	if r.webURL == "" {
		r.webURL = DefaultWebURL
	}
	if r.logger == nil {
		r.logger = domain.NopLogger{}
	}
	return r
}

// RateLimit reports the wait dictated by an exhausted primary rate limit:
// a 403 with X-RateLimit-Remaining of zero waits until X-RateLimit-Reset plus one second.
func RateLimit(resp *http.Response, now time.Time) (time.Duration, bool) {
	if resp.StatusCode != http.StatusForbidden || resp.Header.Get("X-RateLimit-Remaining") != "0" {
		return 0, false
	}
	reset, err := strconv.ParseFloat(resp.Header.Get("X-RateLimit-Reset"), 64)
	if err != nil {
		return time.Minute, true
	}
	resetAt := time.Unix(0, int64(reset*float64(time.Second)))
	return resetAt.Sub(now) + time.Second, true
}

type searchResult struct {
	Items []pullRequest `json:"items"`
}

type user struct {
	Login string `json:"login"`
	Type  string `json:"type"`
}

type pullRequest struct {
	Body   *string        `json:"body"`
	Title  string         `json:"title"`
	User   user           `json:"user"`
	Labels []domain.Label `json:"labels"`
	Number int            `json:"number"`
}

type review struct {
	User              user   `json:"user"`
	AuthorAssociation string `json:"author_association"`
}

// Candidate resolves a commit to the pull request that merged it, or to a bare commit.
// Results are served from the cache when present. A commit whose pull request is
// already cached is linked to it without fetching reviews again.
func (r *Repository) Candidate(ctx context.Context, commit domain.Commit) (*domain.Candidate, error) {
	if cached := r.candidates.CachedCandidate(commit.Hash); cached != nil {
		return cached, nil
	}
	r.logger.Debug(commit.Hash, "github", "cache miss, searching pull request")

	q := url.Values{"q": {fmt.Sprintf("sha:%s repo:%s", commit.Hash, r.repoID)}}
	resp, err := r.client.Get(ctx, r.apiURL+"/search/issues?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("search pull request of %s: %w", commit.Hash, err)
	}
	var result searchResult
	if err := resp.Decode(&result); err != nil {
		return nil, err
	}

	if len(result.Items) == 0 {
		candidate := &domain.Candidate{
			ID:    commit.Hash,
			Title: commit.Subject,
			URL:   fmt.Sprintf("%s/%s/commit/%s", r.webURL, r.repoID, commit.Hash),
		}
		if err := r.candidates.CacheCandidate(commit.Hash, candidate); err != nil {
			return nil, fmt.Errorf("cache commit %s: %w", commit.Hash, err)
		}
		return candidate, nil
	}

	pr := result.Items[0]
	number := strconv.Itoa(pr.Number)
	if cached := r.candidates.CachedPullRequest(number); cached != nil {
		if err := r.candidates.LinkCommit(commit.Hash, number); err != nil {
			return nil, fmt.Errorf("link commit %s: %w", commit.Hash, err)
		}
		return cached, nil
	}

	candidate := &domain.Candidate{
		ID:     number,
		Title:  pr.Title,
		URL:    fmt.Sprintf("%s/%s/pull/%s", r.webURL, r.repoID, number),
		User:   pr.User.Login,
		Labels: pr.Labels,
	}
	if candidate.Labels == nil {
		candidate.Labels = []domain.Label{}
	}
	if pr.Body != nil {
		candidate.Body = strings.TrimSuffix(domain.NormalizeLineEndings(*pr.Body), "\n")
	}

	reviewers, err := r.reviewers(ctx, number)
	if err != nil {
		return nil, err
	}
	candidate.Reviewers = reviewers

	if err := r.candidates.CacheCandidate(commit.Hash, candidate); err != nil {
		return nil, fmt.Errorf("cache pull request %s: %w", number, err)
	}
	return candidate, nil
}

// reviewers returns the distinct reviewers of a pull request in order of first review.
// The association of a reviewer is the lowercased one of their latest review.
func (r *Repository) reviewers(ctx context.Context, number string) ([]domain.Reviewer, error) {
	org, repo := domain.SplitRepoID(r.repoID)
	resp, err := r.client.Get(ctx, fmt.Sprintf("%s/repos/%s/%s/pulls/%s/reviews", r.apiURL, org, repo, number))
	if err != nil {
		return nil, fmt.Errorf("list reviews of #%s: %w", number, err)
	}
	var reviews []review
	if err := resp.Decode(&reviews); err != nil {
		return nil, err
	}

	reviewers := []domain.Reviewer{}
	index := make(map[string]int)
	for _, rv := range reviews {
		association := strings.ToLower(rv.AuthorAssociation)
		if i, ok := index[rv.User.Login]; ok {
			reviewers[i].Association = association
			continue
		}
		index[rv.User.Login] = len(reviewers)
		reviewers = append(reviewers, domain.Reviewer{Name: rv.User.Login, Association: association})
	}
	return reviewers, nil
}

// TeamMembers returns the sorted logins of a team's human members.
// The cached roster is used unless refresh is set or it was never fetched.
func (r *Repository) TeamMembers(ctx context.Context, team string, refresh bool) ([]string, error) {
	if !refresh {
		if members, ok := r.rosters.TeamMembers(team); ok {
			return members, nil
		}
	}

	resp, err := r.client.Get(ctx, fmt.Sprintf("%s/orgs/%s/teams/%s/members?per_page=100", r.apiURL, r.org, team))
	if err != nil {
		return nil, fmt.Errorf("list members of %s: %w", team, err)
	}
	var users []user
	if err := resp.Decode(&users); err != nil {
		return nil, err
	}

	members := []string{}
	for _, u := range users {
		if u.Type == "User" {
			members = append(members, u.Login)
		}
	}
	slices.Sort(members)

	if err := r.rosters.SaveTeamMembers(team, members); err != nil {
		return nil, fmt.Errorf("cache members of %s: %w", team, err)
	}
	r.logger.Info("global", "github", fmt.Sprintf("refreshed team %s: %d members", team, len(members)))
	return members, nil
}

// FetchGlobalConfig downloads the global config document with a single request.
func (r *Repository) FetchGlobalConfig(ctx context.Context, source string) ([]byte, error) {
	resp, err := r.client.GetOnce(ctx, source)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}
