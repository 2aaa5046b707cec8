package domain

import (
	"slices"
	"strings"
)

// Label is a pull request label.
type Label struct {
	Name  string `json:"name" yaml:"name"`
	Color string `json:"color" yaml:"color"`
}

// Reviewer is a pull request reviewer with their association to the repository.
type Reviewer struct {
	Name        string `json:"name" yaml:"name"`
	Association string `json:"association" yaml:"association"`
}

// Candidate is one unit of change to verify: a merged pull request or a bare commit.
// Fields are ordered to minimize memory padding.
type Candidate struct {
	// Assignments holds an explicit team assignment made by a user.
	// Nil means no explicit assignment was ever recorded.
	Assignments map[string]bool `json:"assignments,omitempty" yaml:"assignments,omitempty"`

	ID        string     `json:"id" yaml:"id"` // PR number (digits) or commit hash
	Title     string     `json:"title" yaml:"title"`
	URL       string     `json:"url" yaml:"url"`
	User      string     `json:"user,omitempty" yaml:"user,omitempty"` // Author login, empty for bare commits
	Body      string     `json:"body,omitempty" yaml:"body,omitempty"`
	Labels    []Label    `json:"labels,omitempty" yaml:"labels,omitempty"`
	Reviewers []Reviewer `json:"reviewers,omitempty" yaml:"reviewers,omitempty"`
}

// IsPullRequest reports whether the candidate identity is a pull request number.
func (c *Candidate) IsPullRequest() bool {
	return IsPullRequestID(c.ID)
}

// IsPullRequestID reports whether id is a non-empty digits-only string.
func IsPullRequestID(id string) bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ShortID returns the display identity: the PR number or the abbreviated commit hash.
func (c *Candidate) ShortID() string {
	if c.IsPullRequest() || len(c.ID) <= 7 {
		return c.ID
	}
	return c.ID[:7]
}

// DisplayName returns "PR 123" or "Commit abcdef1".
func (c *Candidate) DisplayName() string {
	if c.IsPullRequest() {
		return "PR " + c.ID
	}
	return "Commit " + c.ShortID()
}

// LabelNames returns the label names in their original order.
func (c *Candidate) LabelNames() []string {
	names := make([]string, 0, len(c.Labels))
	for _, l := range c.Labels {
		names = append(names, l.Name)
	}
	return names
}

// IsReviewer reports whether login reviewed this candidate.
func (c *Candidate) IsReviewer(login string) bool {
	return slices.ContainsFunc(c.Reviewers, func(r Reviewer) bool {
		return r.Name == login
	})
}

// Clone returns a deep copy of the candidate.
func (c *Candidate) Clone() *Candidate {
	if c == nil {
		return nil
	}
	cp := *c
	cp.Labels = slices.Clone(c.Labels)
	cp.Reviewers = slices.Clone(c.Reviewers)
	if c.Assignments != nil {
		cp.Assignments = make(map[string]bool, len(c.Assignments))
		for k, v := range c.Assignments {
			cp.Assignments[k] = v
		}
	}
	return &cp
}

// Commit is a commit returned by the version-control collaborator.
type Commit struct {
	Hash    string
	Subject string
}

// LabelFilter decides which candidates are shown after resolution.
// Fields are ordered to minimize memory padding.
type LabelFilter struct {
	Ignored  []string // Candidates carrying any of these labels are dropped
	Required []string // When set, candidates must carry at least one of these labels
}

// Match reports whether the label set passes the filter.
func (f LabelFilter) Match(labels []string) bool {
	for _, l := range labels {
		if slices.Contains(f.Ignored, l) {
			return false
		}
	}
	if len(f.Required) == 0 {
		return true
	}
	for _, l := range labels {
		if slices.Contains(f.Required, l) {
			return true
		}
	}
	return false
}

// NormalizeLineEndings converts CRLF/CR line endings to LF.
func NormalizeLineEndings(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
