package domain

import (
	"slices"
	"time"
)

// TrackerStatus is the native status of a tracker issue.
type TrackerStatus struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Assignee is the tracker user an issue is assigned to.
type Assignee struct {
	ID       string `json:"accountId"`
	Name     string `json:"displayName"`
	TimeZone string `json:"timeZone"`
}

// TrackerIssue is an issue fetched from the tracker.
// Fields are ordered to minimize memory padding.
type TrackerIssue struct {
	Updated     time.Time
	Assignee    *Assignee
	Labels      []string
	Components  []string
	Status      TrackerStatus
	Key         string
	Project     string
	Type        string
	Description string
	Summary     string
}

// WithStatus returns a copy of the issue moved to the named status at the given time.
// The receiver is left untouched.
func (i TrackerIssue) WithStatus(name string, now time.Time) TrackerIssue {
	cp := i
	cp.Labels = slices.Clone(i.Labels)
	cp.Components = slices.Clone(i.Components)
	if i.Assignee != nil {
		a := *i.Assignee
		cp.Assignee = &a
	}
	cp.Status = TrackerStatus{ID: i.Status.ID, Name: name}
	if !i.Updated.IsZero() {
		now = now.In(i.Updated.Location())
	}
	cp.Updated = now
	return cp
}

// AssigneeName returns the assignee display name or an empty string.
func (i TrackerIssue) AssigneeName() string {
	if i.Assignee == nil {
		return ""
	}
	return i.Assignee.Name
}

// IsAssignedTo reports whether the issue is assigned to the tracker account.
func (i TrackerIssue) IsAssignedTo(accountID string) bool {
	return i.Assignee != nil && accountID != "" && i.Assignee.ID == accountID
}

// NewIssue is a tracker issue to be created for one team.
// Fields are ordered to minimize memory padding.
type NewIssue struct {
	Labels      []string
	Team        string
	Project     string
	IssueType   string
	Component   string
	Summary     string
	Description string
	AssigneeID  string // Empty leaves the issue unassigned
}

// TrackerUser is a tracker account returned by the bulk user lookup.
type TrackerUser struct {
	AccountID   string `json:"accountId"`
	DisplayName string `json:"displayName"`
	Active      bool   `json:"active"`
}
