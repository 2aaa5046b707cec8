package domain

import (
	"fmt"
	"slices"
	"strings"
)

// UnassignedKey is the member index key of issues without assignee.
const UnassignedKey = ":unassigned"

// IssueIndex groups issues under a key extracted from each issue.
// The team and member filters of the dashboard are both IssueIndex values.
type IssueIndex struct {
	key    func(TrackerIssue) string
	issues map[string]map[string]TrackerIssue
}

// NewIssueIndex creates an index using key to extract the grouping key of an issue.
func NewIssueIndex(key func(TrackerIssue) string) *IssueIndex {
	return &IssueIndex{
		key:    key,
		issues: make(map[string]map[string]TrackerIssue),
	}
}

// MemberKey groups issues by assignee display name.
func MemberKey(issue TrackerIssue) string {
	if issue.Assignee == nil {
		return UnassignedKey
	}
	return issue.Assignee.Name
}

// Add indexes an issue. Issues with an empty key are skipped.
func (x *IssueIndex) Add(issue TrackerIssue) {
	k := x.key(issue)
	if k == "" {
		return
	}
	bucket, ok := x.issues[k]
	if !ok {
		bucket = make(map[string]TrackerIssue)
		x.issues[k] = bucket
	}
	bucket[issue.Key] = issue
}

// Update replaces old with updated wherever old is indexed.
// The bucket of an issue does not change.
func (x *IssueIndex) Update(old, updated TrackerIssue) {
	for _, bucket := range x.issues {
		if _, ok := bucket[old.Key]; ok {
			bucket[old.Key] = updated
		}
	}
}

// Keys returns the index keys sorted case-insensitively.
func (x *IssueIndex) Keys() []string {
	keys := make([]string, 0, len(x.issues))
	for k := range x.issues {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, func(a, b string) int {
		if c := strings.Compare(strings.ToLower(a), strings.ToLower(b)); c != 0 {
			return c
		}
		return strings.Compare(a, b)
	})
	return keys
}

// Issues returns the issues under key, most recently updated first.
func (x *IssueIndex) Issues(key string) []TrackerIssue {
	return sortedIssues(x.issues[key])
}

// All returns every indexed issue, most recently updated first.
func (x *IssueIndex) All() []TrackerIssue {
	all := make(map[string]TrackerIssue)
	for _, bucket := range x.issues {
		for k, issue := range bucket {
			all[k] = issue
		}
	}
	return sortedIssues(all)
}

func sortedIssues(m map[string]TrackerIssue) []TrackerIssue {
	out := make([]TrackerIssue, 0, len(m))
	for _, issue := range m {
		out = append(out, issue)
	}
	slices.SortFunc(out, func(a, b TrackerIssue) int {
		if c := b.Updated.Compare(a.Updated); c != 0 {
			return c
		}
		return strings.Compare(a.Key, b.Key)
	})
	return out
}

type teamKey struct {
	project   string
	component string
}

// Board aggregates tracker issues by team and QA status.
// Unknown tracker statuses fall back to the final QA status.
type Board struct {
	repo     *RepoConfig
	teams    map[teamKey]string
	statuses map[string]map[string]string // team -> tracker status -> QA status
	issues   map[string]TrackerIssue

	ByTeam   *IssueIndex
	ByMember *IssueIndex
}

// NewBoard creates an empty board for the repository.
func NewBoard(repo *RepoConfig) (*Board, error) {
	if len(repo.Teams) == 0 {
		return nil, ErrNoTeams
	}
	b := &Board{
		repo:     repo,
		teams:    make(map[teamKey]string, len(repo.Teams)),
		statuses: make(map[string]map[string]string, len(repo.Teams)),
		issues:   make(map[string]TrackerIssue),
		ByMember: NewIssueIndex(MemberKey),
	}
	for _, name := range repo.TeamNames() {
		team := repo.Teams[name]
		b.teams[teamKey{project: team.JiraProject, component: team.JiraComponent}] = name

		qaMap, err := team.StatusMap(repo.QAStatuses)
		if err != nil {
			return nil, fmt.Errorf("team %s: %w", name, err)
		}
		reversed := make(map[string]string, len(qaMap))
		for qa, native := range qaMap {
			reversed[native] = qa
		}
		b.statuses[name] = reversed
	}
	b.ByTeam = NewIssueIndex(b.TeamOf)
	return b, nil
}

// TeamOf returns the team owning the issue, or an empty string.
func (b *Board) TeamOf(issue TrackerIssue) string {
	if len(issue.Components) == 0 {
		return b.teams[teamKey{project: issue.Project}]
	}
	for _, c := range issue.Components {
		if team, ok := b.teams[teamKey{project: issue.Project, component: c}]; ok {
			return team
		}
	}
	return ""
}

// QAStatus returns the QA status of the issue.
func (b *Board) QAStatus(issue TrackerIssue) string {
	if qa, ok := b.statuses[b.TeamOf(issue)][issue.Status.Name]; ok {
		return qa
	}
	return b.repo.FinalStatus()
}

// TrackerStatus translates a QA status into the tracker status name of the issue's team.
func (b *Board) TrackerStatus(issue TrackerIssue, qaStatus string) (string, error) {
	for native, qa := range b.statuses[b.TeamOf(issue)] {
		if qa == qaStatus {
			return native, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownStatus, qaStatus)
}

// Add adds an issue to the board and both indices.
// It returns false when no team owns the issue.
func (b *Board) Add(issue TrackerIssue) bool {
	if b.TeamOf(issue) == "" {
		return false
	}
	b.issues[issue.Key] = issue
	b.ByTeam.Add(issue)
	b.ByMember.Add(issue)
	return true
}

// Replace swaps an updated issue into the board and both indices.
func (b *Board) Replace(old, updated TrackerIssue) {
	b.issues[updated.Key] = updated
	b.ByTeam.Update(old, updated)
	b.ByMember.Update(old, updated)
}

// Issue returns the board issue with the given key.
func (b *Board) Issue(key string) (TrackerIssue, bool) {
	issue, ok := b.issues[key]
	return issue, ok
}

// Len returns the number of issues on the board.
func (b *Board) Len() int {
	return len(b.issues)
}

// Statuses returns the QA statuses, one board column each.
func (b *Board) Statuses() []string {
	return b.repo.QAStatuses
}

// Columns groups issues by QA status. Every QA status has an entry.
func (b *Board) Columns(issues []TrackerIssue) map[string][]TrackerIssue {
	cols := make(map[string][]TrackerIssue, len(b.repo.QAStatuses))
	for _, s := range b.repo.QAStatuses {
		cols[s] = nil
	}
	for _, issue := range issues {
		s := b.QAStatus(issue)
		cols[s] = append(cols[s], issue)
	}
	return cols
}

// Completion counts issues in the final QA status.
func (b *Board) Completion(issues []TrackerIssue) Completion {
	final := b.repo.FinalStatus()
	c := Completion{Total: len(issues)}
	for _, issue := range issues {
		if b.QAStatus(issue) == final {
			c.Done++
		}
	}
	return c
}

// Completion is the ratio of issues in the final QA status.
type Completion struct {
	Done  int
	Total int
}

// Percent formats the ratio as a percentage with two decimals,
// except for exactly 0 and 100.
func (c Completion) Percent() string {
	if c.Total == 0 || c.Done == 0 {
		return "0"
	}
	if c.Done >= c.Total {
		return "100"
	}
	return fmt.Sprintf("%.2f", float64(c.Done)*100/float64(c.Total))
}

// String returns "done / total (percent%)".
func (c Completion) String() string {
	return fmt.Sprintf("%d / %d (%s%%)", c.Done, c.Total, c.Percent())
}
