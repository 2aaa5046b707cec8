package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/runoshun/git-qa/internal/domain"
	"github.com/runoshun/git-qa/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createFixture struct {
	forge   *testutil.MockSourceForge
	tracker *testutil.MockTracker
	rng     *testutil.ScriptedRand
	status  *testutil.MockStatus
	members *domain.TrackerConfig
}

func newCreateFixture() *createFixture {
	forge := testutil.NewMockSourceForge()
	forge.Rosters["alpha-team"] = []string{"alice", "bob", "carol"}
	forge.Rosters["beta-team"] = []string{"bot", "dave"}
	return &createFixture{
		forge:   forge,
		tracker: &testutil.MockTracker{Server: "https://jira.example.com/"},
		rng:     &testutil.ScriptedRand{},
		status:  &testutil.MockStatus{},
		members: &domain.TrackerConfig{
			JiraServer: "https://jira.example.com/",
			Members:    map[string]string{"alice": "A", "bob": "B", "carol": "C", "dave": "D", "bot": "X"},
		},
	}
}

func (f *createFixture) useCase() *CreateIssues {
	return NewCreateIssues(testRepo(), f.members, f.forge, f.tracker, f.rng, f.status, domain.NopLogger{})
}

func TestCreateIssues_Execute(t *testing.T) {
	// Setup
	f := newCreateFixture()
	f.rng.Values = []int{1}
	first := &domain.Candidate{
		ID:        "12",
		User:      "alice",
		Labels:    []domain.Label{{Name: "team/alpha"}},
		Reviewers: []domain.Reviewer{{Name: "bob", Association: "member"}},
	}
	second := &domain.Candidate{
		ID:     "13",
		User:   "erin",
		Labels: []domain.Label{{Name: "team/alpha"}, {Name: "team/beta"}},
	}

	var seen []string
	in := CreateIssuesInput{
		Candidates: []*domain.Candidate{first, second},
		Labels:     []string{"qa-7.50"},
		OnCreated:  func(r CandidateIssues) { seen = append(seen, r.Candidate.ID) },
	}

	// Execute
	out, err := f.useCase().Execute(context.Background(), in)

	// Verify
	require.NoError(t, err)
	require.Len(t, f.tracker.CreateCalls, 2)
	assert.Equal(t, []domain.TeamAssignment{
		{Team: "Alpha", Member: "bob", AssigneeID: "B"},
	}, f.tracker.CreateCalls[0].Assignments)
	assert.Equal(t, []domain.TeamAssignment{
		{Team: "Alpha", Member: "carol", AssigneeID: "C"},
		{Team: "Beta", Member: "dave", AssigneeID: "D"},
	}, f.tracker.CreateCalls[1].Assignments)
	assert.Equal(t, []string{"qa-7.50"}, f.tracker.CreateCalls[0].Labels)

	require.Len(t, out.Results, 2)
	assert.Equal(t, "QA-1", out.Results[0].Issues[0].Key)
	assert.Equal(t, "https://jira.example.com/browse/QA-3", out.Results[1].Issues[1].URL)
	assert.Equal(t, []string{"12", "13"}, seen)

	assert.Equal(t, 1, out.Tally.Count("alpha-team", "bob"))
	assert.Equal(t, 1, out.Tally.Count("alpha-team", "carol"))
	assert.Equal(t, 1, out.Tally.Count("beta-team", "dave"))
	assert.Equal(t, 1, f.rng.Calls)

	for _, call := range f.forge.RosterCalls {
		assert.False(t, call.Refresh)
	}
	assert.Equal(t, "Finished", f.status.Current)
}

func TestCreateIssues_SingleTeamScenario(t *testing.T) {
	f := newCreateFixture()
	candidate := &domain.Candidate{
		ID:     "7",
		Labels: []domain.Label{{Name: "team/alpha"}, {Name: "baz-label"}},
	}

	_, err := f.useCase().Execute(context.Background(), CreateIssuesInput{
		Candidates: []*domain.Candidate{candidate},
		Labels:     []string{"qa"},
	})

	require.NoError(t, err)
	require.Len(t, f.tracker.CreateCalls, 1)
	require.Len(t, f.tracker.CreateCalls[0].Assignments, 1)
	assert.Equal(t, "Alpha", f.tracker.CreateCalls[0].Assignments[0].Team)
	assert.Same(t, candidate, f.tracker.CreateCalls[0].Candidate)
}

func TestCreateIssues_SkipsUnassigned(t *testing.T) {
	f := newCreateFixture()
	skipped := &domain.Candidate{ID: "1", Labels: []domain.Label{{Name: "team/alpha"}, {Name: "qa/skip"}}}
	unlabeled := &domain.Candidate{ID: "2"}

	out, err := f.useCase().Execute(context.Background(), CreateIssuesInput{
		Candidates: []*domain.Candidate{skipped, nil, unlabeled},
		Labels:     []string{"qa"},
	})

	require.NoError(t, err)
	assert.Empty(t, f.tracker.CreateCalls)
	assert.Empty(t, out.Results)
}

func TestCreateIssues_ExplicitAssignmentWins(t *testing.T) {
	f := newCreateFixture()
	candidate := &domain.Candidate{
		ID:          "1",
		Labels:      []domain.Label{{Name: "team/alpha"}},
		Assignments: map[string]bool{"Alpha": false, "Beta": true},
	}

	_, err := f.useCase().Execute(context.Background(), CreateIssuesInput{
		Candidates: []*domain.Candidate{candidate},
		Labels:     []string{"qa"},
	})

	require.NoError(t, err)
	require.Len(t, f.tracker.CreateCalls, 1)
	assert.Equal(t, []domain.TeamAssignment{{Team: "Beta", Member: "dave", AssigneeID: "D"}}, f.tracker.CreateCalls[0].Assignments)
}

func TestCreateIssues_NoAvailableMember(t *testing.T) {
	f := newCreateFixture()
	f.forge.Rosters["beta-team"] = []string{"bot", "zoe"} // bot excluded, zoe unmapped
	candidate := &domain.Candidate{ID: "1", Labels: []domain.Label{{Name: "team/beta"}}}

	out, err := f.useCase().Execute(context.Background(), CreateIssuesInput{
		Candidates: []*domain.Candidate{candidate},
		Labels:     []string{"qa"},
	})

	require.NoError(t, err)
	assert.Equal(t, []domain.TeamAssignment{{Team: "Beta"}}, f.tracker.CreateCalls[0].Assignments)
	require.Len(t, out.Results, 1)
	assert.Empty(t, out.Results[0].Issues[0].Member)
}

func TestCreateIssues_AuthorNeverSelected(t *testing.T) {
	f := newCreateFixture()
	f.forge.Rosters["alpha-team"] = []string{"alice"}
	candidate := &domain.Candidate{ID: "1", User: "alice", Labels: []domain.Label{{Name: "team/alpha"}}}

	_, err := f.useCase().Execute(context.Background(), CreateIssuesInput{
		Candidates: []*domain.Candidate{candidate},
		Labels:     []string{"qa"},
	})

	require.NoError(t, err)
	assert.Empty(t, f.tracker.CreateCalls[0].Assignments[0].Member)
}

func TestCreateIssues_HaltsOnError(t *testing.T) {
	f := newCreateFixture()
	f.tracker.CreateErr = errors.New("400 Bad Request")
	candidates := []*domain.Candidate{
		{ID: "1", Labels: []domain.Label{{Name: "team/alpha"}}},
		{ID: "2", Labels: []domain.Label{{Name: "team/alpha"}}},
	}

	out, err := f.useCase().Execute(context.Background(), CreateIssuesInput{
		Candidates: candidates,
		Labels:     []string{"qa"},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "create issues for PR 1: 400 Bad Request")
	assert.Len(t, f.tracker.CreateCalls, 1)
	assert.Empty(t, out.Results)
}

func TestCreateIssues_SkipsCreatedTeams(t *testing.T) {
	f := newCreateFixture()
	both := &domain.Candidate{ID: "1", User: "alice", Labels: []domain.Label{{Name: "team/alpha"}, {Name: "team/beta"}}}
	done := &domain.Candidate{ID: "2", User: "alice", Labels: []domain.Label{{Name: "team/alpha"}}}

	out, err := f.useCase().Execute(context.Background(), CreateIssuesInput{
		Created:    map[*domain.Candidate][]string{both: {"Alpha"}, done: {"Alpha"}},
		Candidates: []*domain.Candidate{both, done},
		Labels:     []string{"qa"},
	})

	require.NoError(t, err)
	require.Len(t, f.tracker.CreateCalls, 1)
	require.Len(t, f.tracker.CreateCalls[0].Assignments, 1)
	assert.Equal(t, "Beta", f.tracker.CreateCalls[0].Assignments[0].Team)
	require.Len(t, out.Results, 1)
	assert.Same(t, both, out.Results[0].Candidate)
}

func TestCreateIssues_PartialFailureKeepsCreated(t *testing.T) {
	f := newCreateFixture()
	f.tracker.CreateErr = errors.New("400 Bad Request")
	f.tracker.FailTeam = "Beta"
	candidate := &domain.Candidate{ID: "1", User: "alice", Labels: []domain.Label{{Name: "team/alpha"}, {Name: "team/beta"}}}

	out, err := f.useCase().Execute(context.Background(), CreateIssuesInput{
		Candidates: []*domain.Candidate{candidate},
		Labels:     []string{"qa"},
	})

	require.Error(t, err)
	require.Len(t, out.Results, 1)
	require.Len(t, out.Results[0].Issues, 1)
	assert.Equal(t, "Alpha", out.Results[0].Issues[0].Team)
}

func TestCreateIssues_RosterError(t *testing.T) {
	f := newCreateFixture()
	f.forge.RosterErr = errors.New("offline")

	_, err := f.useCase().Execute(context.Background(), CreateIssuesInput{
		Candidates: []*domain.Candidate{{ID: "1", Labels: []domain.Label{{Name: "team/alpha"}}}},
		Labels:     []string{"qa"},
	})

	assert.ErrorContains(t, err, "get members of alpha-team: offline")
	assert.Empty(t, f.tracker.CreateCalls)
}

func TestCreateIssues_RequiresLabels(t *testing.T) {
	f := newCreateFixture()

	_, err := f.useCase().Execute(context.Background(), CreateIssuesInput{})

	assert.ErrorIs(t, err, domain.ErrNoLabels)
}
