package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// firstRand always picks the first member of a tie.
type firstRand struct {
	calls int
}

func (r *firstRand) IntN(int) int {
	r.calls++
	return 0
}

func TestSelectAssignee(t *testing.T) {
	tests := []struct {
		name string
		in   SelectInput
		want string
	}{
		{
			name: "empty roster",
			in:   SelectInput{Team: "t"},
			want: "",
		},
		{
			name: "author is never selected",
			in:   SelectInput{Team: "t", Author: "alice", Roster: []string{"alice", "bob"}},
			want: "bob",
		},
		{
			name: "excluded members are never selected",
			in:   SelectInput{Team: "t", Roster: []string{"alice", "bob"}, Exclude: []string{"alice"}},
			want: "bob",
		},
		{
			name: "only author and excluded",
			in:   SelectInput{Team: "t", Author: "alice", Roster: []string{"alice", "bob"}, Exclude: []string{"bob"}},
			want: "",
		},
		{
			name: "reviewer preferred",
			in:   SelectInput{Team: "t", Roster: []string{"alice", "bob", "carol"}, Reviewers: []string{"carol"}},
			want: "carol",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectAssignee(tt.in, NewTally(), &firstRand{})
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectAssignee_LeastLoadedFirst(t *testing.T) {
	// Setup
	tally := NewTally()
	rng := &firstRand{}
	in := SelectInput{Team: "t", Roster: []string{"carol", "alice", "bob"}}

	// Execute
	var picks []string
	for range 7 {
		picks = append(picks, SelectAssignee(in, tally, rng))
	}

	// Verify
	assert.Equal(t, []string{"alice", "bob", "carol", "alice", "bob", "carol", "alice"}, picks)
	assert.Equal(t, 3, tally.Count("t", "alice"))
	assert.Equal(t, 2, tally.Count("t", "bob"))
	assert.Equal(t, 2, tally.Count("t", "carol"))
}

func TestSelectAssignee_ReviewerLosesWhenMoreLoaded(t *testing.T) {
	tally := NewTally()
	tally.Increment("t", "carol")
	in := SelectInput{Team: "t", Roster: []string{"alice", "carol"}, Reviewers: []string{"carol"}}

	assert.Equal(t, "alice", SelectAssignee(in, tally, &firstRand{}))
}

func TestSelectAssignee_SingleWinnerSkipsRand(t *testing.T) {
	rng := &firstRand{}
	in := SelectInput{Team: "t", Roster: []string{"alice", "bob"}, Reviewers: []string{"bob"}}

	assert.Equal(t, "bob", SelectAssignee(in, NewTally(), rng))
	assert.Equal(t, 0, rng.calls)
}

func TestSelectAssignee_TalliesAreScopedByTeam(t *testing.T) {
	tally := NewTally()
	tally.Increment("other", "alice")
	in := SelectInput{Team: "t", Roster: []string{"alice", "bob"}}

	assert.Equal(t, "alice", SelectAssignee(in, tally, &firstRand{}))
	assert.Equal(t, 1, tally.Count("t", "alice"))
	assert.Equal(t, 1, tally.Count("other", "alice"))
}

func TestSelectAssignee_DefaultRandPicksEveryTiedMember(t *testing.T) {
	in := SelectInput{Team: "t", Roster: []string{"m1", "m2"}}
	picked := make(map[string]int)

	for range 200 {
		picked[SelectAssignee(in, NewTally(), DefaultRand())]++
	}

	assert.Positive(t, picked["m1"])
	assert.Positive(t, picked["m2"])
	assert.Equal(t, 200, picked["m1"]+picked["m2"])
}
