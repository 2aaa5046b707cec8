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

type resolved struct {
	ids     []string
	ignored []int
	err     error
}

func collect(t *testing.T, out *ResolveCandidatesOutput) resolved {
	t.Helper()
	var r resolved
	for ev, err := range out.Events {
		if err != nil {
			r.err = err
			break
		}
		id := ""
		if ev.Candidate != nil {
			id = ev.Candidate.ID
		}
		r.ids = append(r.ids, id)
		r.ignored = append(r.ignored, ev.Ignored)
	}
	return r
}

func newResolveFixture() (*testutil.MockGit, *testutil.MockSourceForge) {
	git := &testutil.MockGit{Commits: []domain.Commit{
		{Hash: "c1c1c1c1c1", Subject: "first"},
		{Hash: "c2c2c2c2c2", Subject: "second"},
		{Hash: "c3c3c3c3c3", Subject: "third"},
		{Hash: "c4c4c4c4c4", Subject: "fourth"},
	}}
	forge := testutil.NewMockSourceForge()
	forge.Candidates["c1c1c1c1c1"] = &domain.Candidate{ID: "2", Title: "PR two", Labels: []domain.Label{{Name: "team/alpha"}}}
	forge.Candidates["c2c2c2c2c2"] = &domain.Candidate{ID: "2", Title: "PR two", Labels: []domain.Label{{Name: "team/alpha"}}}
	forge.Candidates["c4c4c4c4c4"] = &domain.Candidate{ID: "1", Title: "PR one", Labels: []domain.Label{{Name: "qa/skip"}}}
	return git, forge
}

func TestResolveCandidates_Execute(t *testing.T) {
	// Setup
	git, forge := newResolveFixture()
	uc := NewResolveCandidates(git, forge, domain.NopLogger{})

	// Execute
	out, err := uc.Execute(context.Background(), ResolveCandidatesInput{Previous: "v1", Current: "v2"})
	require.NoError(t, err)
	r := collect(t, out)

	// Verify
	require.NoError(t, r.err)
	assert.Equal(t, 4, out.Total)
	assert.Equal(t, []string{"2", "c3c3c3c3c3", "1"}, r.ids)
	assert.Equal(t, []int{0, 1, 1}, r.ignored)
	assert.Equal(t, "v1", git.Base)
	assert.Equal(t, "v2", git.HeadRef)
}

func TestResolveCandidates_DedupInvariant(t *testing.T) {
	git, forge := newResolveFixture()
	uc := NewResolveCandidates(git, forge, domain.NopLogger{})

	out, err := uc.Execute(context.Background(), ResolveCandidatesInput{})
	require.NoError(t, err)

	yielded, lastIgnored := 0, 0
	for ev, err := range out.Events {
		require.NoError(t, err)
		if ev.Candidate != nil {
			yielded++
		}
		lastIgnored = ev.Ignored
	}
	assert.Equal(t, len(git.Commits), yielded+lastIgnored)
}

func TestResolveCandidates_LabelFilter(t *testing.T) {
	git, forge := newResolveFixture()
	uc := NewResolveCandidates(git, forge, domain.NopLogger{})

	out, err := uc.Execute(context.Background(), ResolveCandidatesInput{
		Filter: domain.LabelFilter{Ignored: []string{"qa/skip"}},
	})
	require.NoError(t, err)
	r := collect(t, out)

	require.NoError(t, r.err)
	assert.Equal(t, []string{"2", "c3c3c3c3c3", ""}, r.ids)
	assert.Equal(t, []int{0, 1, 2}, r.ignored)
}

func TestResolveCandidates_RequiredLabels(t *testing.T) {
	git, forge := newResolveFixture()
	uc := NewResolveCandidates(git, forge, domain.NopLogger{})

	out, err := uc.Execute(context.Background(), ResolveCandidatesInput{
		Filter: domain.LabelFilter{Required: []string{"team/alpha"}},
	})
	require.NoError(t, err)
	r := collect(t, out)

	require.NoError(t, r.err)
	assert.Equal(t, []string{"2", "", ""}, r.ids)
	assert.Equal(t, []int{0, 2, 3}, r.ignored)
}

func TestResolveCandidates_StopsOnError(t *testing.T) {
	git, forge := newResolveFixture()
	forge.CandidateErrs["c3c3c3c3c3"] = errors.New("boom")
	uc := NewResolveCandidates(git, forge, domain.NopLogger{})

	out, err := uc.Execute(context.Background(), ResolveCandidatesInput{})
	require.NoError(t, err)
	r := collect(t, out)

	assert.Equal(t, []string{"2"}, r.ids)
	require.Error(t, r.err)
	assert.Contains(t, r.err.Error(), "resolve c3c3c3c: boom")
	assert.NotContains(t, forge.CandidateCalls, "c4c4c4c4c4")
}

func TestResolveCandidates_EarlyBreak(t *testing.T) {
	git, forge := newResolveFixture()
	uc := NewResolveCandidates(git, forge, domain.NopLogger{})

	out, err := uc.Execute(context.Background(), ResolveCandidatesInput{})
	require.NoError(t, err)
	for range out.Events {
		break
	}

	assert.Equal(t, []string{"c1c1c1c1c1"}, forge.CandidateCalls)
}

func TestResolveCandidates_GitError(t *testing.T) {
	git := &testutil.MockGit{CommitsErr: errors.New("unable to get commits between a and b")}
	uc := NewResolveCandidates(git, testutil.NewMockSourceForge(), domain.NopLogger{})

	_, err := uc.Execute(context.Background(), ResolveCandidatesInput{Previous: "a", Current: "b"})

	assert.EqualError(t, err, "unable to get commits between a and b")
}

func TestCandidateEvent_Progress(t *testing.T) {
	ev := CandidateEvent{Index: 3, Ignored: 1, Total: 4}

	assert.Equal(t, 3, ev.Shown())
	assert.Equal(t, "4 / 4 (1 ignored)", ev.Progress())
}
