// Package jira implements the tracker client against the Jira Cloud REST API v2.
package jira

import (
	"context"
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/runoshun/git-qa/internal/domain"
	"github.com/runoshun/git-qa/internal/infra/netclient"
)

// API paths relative to the server URL.
const (
	myselfAPI      = "rest/api/2/myself"
	issueAPI       = "rest/api/2/issue"
	transitionsAPI = "rest/api/2/issue/%s/transitions"
	searchAPI      = "rest/api/2/search"
	userBulkAPI    = "rest/api/2/user/bulk"
)

// PageSize is the page size of paginated requests.
const PageSize = 100

// searchFields are the issue fields requested by SearchIssues.
var searchFields = []string{
	"assignee",
	"components",
	"description",
	"issuetype",
	"labels",
	"project",
	"status",
	"summary",
	"updated",
}

// Ensure Client implements domain.Tracker.
var _ domain.Tracker = (*Client)(nil)

// Options configures a Client.
// Fields are ordered to minimize memory padding.
type Options struct {
	HTTP   *netclient.Client
	Cache  domain.TrackerCache
	Repo   *domain.RepoConfig
	Config *domain.TrackerConfig
	Logger domain.Logger
	Clock  domain.Clock
	Email  string
	Token  string
}

// Client is the tracker client of one repository.
// Fields are ordered to minimize memory padding.
type Client struct {
	http   *netclient.Client
	cache  domain.TrackerCache
	repo   *domain.RepoConfig
	config *domain.TrackerConfig
	logger domain.Logger
	clock  domain.Clock

	// project -> issue type -> status name -> transition id
	transitions map[string]map[string]map[string]string
	email       string
	token       string
	userID      string
	mu          sync.Mutex
}

// New creates a Client.
func New(opts Options) *Client {
	c := &Client{
		http:        opts.HTTP,
		cache:       opts.Cache,
		repo:        opts.Repo,
		config:      opts.Config,
		logger:      opts.Logger,
		clock:       opts.Clock,
		email:       opts.Email,
		token:       opts.Token,
		transitions: make(map[string]map[string]map[string]string),
	}
	if c.logger == nil {
		c.logger = domain.NopLogger{}
	}
	if c.clock == nil {
		c.clock = domain.RealClock{}
	}
	return c
}

// RateLimit honors the Retry-After header of 429 and 5xx responses,
// waiting its value plus one second.
func RateLimit(resp *http.Response, _ time.Time) (time.Duration, bool) {
	value := resp.Header.Get("Retry-After")
	if value == "" {
		return 0, false
	}
	if resp.StatusCode != http.StatusTooManyRequests && (resp.StatusCode < 500 || resp.StatusCode >= 600) {
		return 0, false
	}
	seconds, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return time.Duration((seconds + 1) * float64(time.Second)), true
}

func (c *Client) url(path string) string {
	return c.config.JiraServer + path
}

// IssueURL returns the browse URL of an issue.
func (c *Client) IssueURL(key string) string {
	return c.config.IssueURL(key)
}

// CurrentUserID returns the account id of the authenticated user,
// looking it up once and caching it per credential pair.
func (c *Client) CurrentUserID(ctx context.Context) (string, error) {
	c.mu.Lock()
	id := c.userID
	c.mu.Unlock()
	if id != "" {
		return id, nil
	}

	if id = c.cache.UserID(c.email, c.token); id == "" {
		resp, err := c.http.Get(ctx, c.url(myselfAPI))
		if err != nil {
			return "", fmt.Errorf("get current user: %w", err)
		}
		var me struct {
			AccountID string `json:"accountId"`
		}
		if err := resp.Decode(&me); err != nil {
			return "", err
		}
		id = me.AccountID
		if err := c.cache.SaveUserID(c.email, c.token, id); err != nil {
			return "", fmt.Errorf("cache user id: %w", err)
		}
	}

	c.mu.Lock()
	c.userID = id
	c.mu.Unlock()
	return id, nil
}

type createFields struct {
	Assignee    *accountRef `json:"assignee,omitempty"`
	IssueType   nameRef     `json:"issuetype"`
	Project     keyRef      `json:"project"`
	Description string      `json:"description"`
	Summary     string      `json:"summary"`
	Labels      []string    `json:"labels"`
	Components  []nameRef   `json:"components,omitempty"`
}

type nameRef struct {
	Name string `json:"name"`
}

type keyRef struct {
	Key string `json:"key"`
}

type accountRef struct {
	ID string `json:"id"`
}

// CreateIssues creates one issue per assignment, in order, and stops at the first failure.
// Issues created before the failure are returned along with the error.
func (c *Client) CreateIssues(ctx context.Context, candidate *domain.Candidate, labels []string, assignments []domain.TeamAssignment) ([]domain.CreatedIssue, error) {
	description := Description(candidate)
	if labels == nil {
		labels = []string{}
	}

	created := make([]domain.CreatedIssue, 0, len(assignments))
	for _, a := range assignments {
		team, err := c.repo.Team(a.Team)
		if err != nil {
			return created, err
		}
		fields := createFields{
			IssueType:   nameRef{Name: team.JiraIssueType},
			Project:     keyRef{Key: team.JiraProject},
			Description: description,
			Labels:      labels,
			Summary:     candidate.Title,
		}
		if a.AssigneeID != "" {
			fields.Assignee = &accountRef{ID: a.AssigneeID}
		}
		if team.JiraComponent != "" {
			fields.Components = []nameRef{{Name: team.JiraComponent}}
		}

		resp, err := c.http.Post(ctx, c.url(issueAPI), map[string]any{"fields": fields})
		if err != nil {
			return created, fmt.Errorf("create issue for %s: %w", a.Team, err)
		}
		var issue struct {
			Key string `json:"key"`
		}
		if err := resp.Decode(&issue); err != nil {
			return created, err
		}

		c.logger.Info(candidate.ID, "jira", fmt.Sprintf("created %s for team %s", issue.Key, a.Team))
		created = append(created, domain.CreatedIssue{
			Team:   a.Team,
			Member: a.Member,
			Key:    issue.Key,
			URL:    c.IssueURL(issue.Key),
		})
	}
	return created, nil
}

type searchPage struct {
	Issues []rawIssue `json:"issues"`
	Total  int        `json:"total"`
}

type rawIssue struct {
	Key    string `json:"key"`
	Fields struct {
		Assignee    *domain.Assignee     `json:"assignee"`
		Description *string              `json:"description"`
		Status      domain.TrackerStatus `json:"status"`
		Project     keyRef               `json:"project"`
		IssueType   nameRef              `json:"issuetype"`
		Summary     string               `json:"summary"`
		Updated     string               `json:"updated"`
		Labels      []string             `json:"labels"`
		Components  []nameRef            `json:"components"`
	} `json:"fields"`
}

// jiraTimeLayout is the timestamp format of the Jira REST API.
const jiraTimeLayout = "2006-01-02T15:04:05.000-0700"

func parseTime(value string) time.Time {
	if t, err := time.Parse(jiraTimeLayout, value); err == nil {
		return t
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t
	}
	return time.Time{}
}

func (r rawIssue) toDomain() domain.TrackerIssue {
	issue := domain.TrackerIssue{
		Key:        r.Key,
		Project:    r.Fields.Project.Key,
		Type:       r.Fields.IssueType.Name,
		Status:     r.Fields.Status,
		Assignee:   r.Fields.Assignee,
		Labels:     r.Fields.Labels,
		Summary:    r.Fields.Summary,
		Updated:    parseTime(r.Fields.Updated),
		Components: make([]string, 0, len(r.Fields.Components)),
	}
	if r.Fields.Description != nil {
		issue.Description = *r.Fields.Description
	}
	for _, comp := range r.Fields.Components {
		issue.Components = append(issue.Components, comp.Name)
	}
	return issue
}

// JQL returns the search query of issues in the given projects carrying any of the labels.
func JQL(projects, labels []string) string {
	return fmt.Sprintf("project in %s and labels in %s", jqlList(projects), jqlList(labels))
}

func jqlList(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, item := range items {
		quoted = append(quoted, `"`+item+`"`)
	}
	return "(" + strings.Join(quoted, ", ") + ")"
}

// SearchIssues streams the issues of the repository's projects carrying any of the labels.
// Pages are fetched lazily, and the transitions of each issue's project and type are
// resolved before the issue is yielded. The sequence stops after the first error.
func (c *Client) SearchIssues(ctx context.Context, labels []string) iter.Seq2[domain.TrackerIssue, error] {
	query := JQL(c.repo.JiraProjects(), labels)
	return func(yield func(domain.TrackerIssue, error) bool) {
		offset := 0
		for {
			resp, err := c.http.Post(ctx, c.url(searchAPI), map[string]any{
				"jql":        query,
				"fields":     searchFields,
				"maxResults": PageSize,
				"startAt":    offset,
			})
			if err != nil {
				yield(domain.TrackerIssue{}, fmt.Errorf("search issues: %w", err))
				return
			}
			var page searchPage
			if err := resp.Decode(&page); err != nil {
				yield(domain.TrackerIssue{}, err)
				return
			}

			for _, raw := range page.Issues {
				offset++
				issue := raw.toDomain()
				if err := c.ensureTransitions(ctx, issue); err != nil {
					yield(domain.TrackerIssue{}, err)
					return
				}
				if !yield(issue, nil) {
					return
				}
			}

			if offset >= page.Total || len(page.Issues) == 0 {
				return
			}
		}
	}
}

// ensureTransitions loads the transitions of the issue's project and type,
// from memory, then the cache, then the API.
func (c *Client) ensureTransitions(ctx context.Context, issue domain.TrackerIssue) error {
	c.mu.Lock()
	types, ok := c.transitions[issue.Project]
	if !ok {
		types = c.cache.Transitions(issue.Project)
		c.transitions[issue.Project] = types
	}
	_, ok = types[issue.Type]
	c.mu.Unlock()
	if ok {
		return nil
	}

	resp, err := c.http.Get(ctx, c.url(fmt.Sprintf(transitionsAPI, url.PathEscape(issue.Key))))
	if err != nil {
		return fmt.Errorf("get transitions of %s: %w", issue.Key, err)
	}
	var data struct {
		Transitions []struct {
			ID string `json:"id"`
			To struct {
				Name string `json:"name"`
			} `json:"to"`
		} `json:"transitions"`
	}
	if err := resp.Decode(&data); err != nil {
		return err
	}

	byStatus := make(map[string]string, len(data.Transitions))
	for _, t := range data.Transitions {
		byStatus[t.To.Name] = t.ID
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	types = c.transitions[issue.Project]
	types[issue.Type] = byStatus
	if err := c.cache.SaveTransitions(issue.Project, types); err != nil {
		return fmt.Errorf("cache transitions of %s: %w", issue.Project, err)
	}
	return nil
}

func (c *Client) transitionID(issue domain.TrackerIssue, status string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id, ok := c.transitions[issue.Project][issue.Type][status]
	return id, ok
}

// UpdateIssueStatus moves an issue to the named tracker status and returns the
// updated copy. The given issue is not modified.
func (c *Client) UpdateIssueStatus(ctx context.Context, issue domain.TrackerIssue, status string) (domain.TrackerIssue, error) {
	if err := c.ensureTransitions(ctx, issue); err != nil {
		return domain.TrackerIssue{}, err
	}
	id, ok := c.transitionID(issue, status)
	if !ok {
		return domain.TrackerIssue{}, fmt.Errorf("%w %q for %s", domain.ErrNoTransition, status, issue.Key)
	}

	body := map[string]any{"transition": map[string]string{"id": id}}
	if _, err := c.http.Post(ctx, c.url(fmt.Sprintf(transitionsAPI, url.PathEscape(issue.Key))), body); err != nil {
		return domain.TrackerIssue{}, fmt.Errorf("transition %s: %w", issue.Key, err)
	}
	c.logger.Info(issue.Key, "jira", "moved to "+status)
	return issue.WithStatus(status, c.clock.Now()), nil
}

// GetUsers looks up tracker accounts in bulk.
func (c *Client) GetUsers(ctx context.Context, ids []string) ([]domain.TrackerUser, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var users []domain.TrackerUser
	offset := 0
	for {
		q := url.Values{
			"maxResults": {strconv.Itoa(PageSize)},
			"startAt":    {strconv.Itoa(offset)},
			"accountId":  ids,
		}
		resp, err := c.http.Get(ctx, c.url(userBulkAPI)+"?"+q.Encode())
		if err != nil {
			return nil, fmt.Errorf("get users: %w", err)
		}
		var page struct {
			Values []domain.TrackerUser `json:"values"`
			Total  int                  `json:"total"`
		}
		if err := resp.Decode(&page); err != nil {
			return nil, err
		}
		users = append(users, page.Values...)
		offset += len(page.Values)
		if offset >= page.Total || len(page.Values) == 0 {
			return users, nil
		}
	}
}

// DeactivatedUsers returns the inactive accounts among ids.
func (c *Client) DeactivatedUsers(ctx context.Context, ids []string) ([]domain.TrackerUser, error) {
	users, err := c.GetUsers(ctx, ids)
	if err != nil {
		return nil, err
	}
	var inactive []domain.TrackerUser
	for _, u := range users {
		if !u.Active {
			inactive = append(inactive, u)
		}
	}
	return inactive, nil
}
