package domain

import (
	"math/rand/v2"
	"slices"
)

// Rand is the source of randomness used to break ties between equally loaded members.
type Rand interface {
	IntN(n int) int
}

// DefaultRand returns a non-deterministic Rand backed by math/rand/v2.
func DefaultRand() Rand {
	return globalRand{}
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Tally counts the assignments made to each roster member during one creation run.
// It is keyed by source-forge team handle, then by member login.
type Tally map[string]map[string]int

// NewTally creates an empty tally.
func NewTally() Tally {
	return make(Tally)
}

// Count returns the number of assignments made to member of team.
func (t Tally) Count(team, member string) int {
	return t[team][member]
}

// Increment records one more assignment of member in team.
func (t Tally) Increment(team, member string) {
	members, ok := t[team]
	if !ok {
		members = make(map[string]int)
		t[team] = members
	}
	members[member]++
}

// SelectInput contains the parameters for choosing an assignee.
// Fields are ordered to minimize memory padding.
type SelectInput struct {
	Team      string   // Source-forge team handle, the tally key
	Author    string   // Candidate author, never selected
	Roster    []string // Team member logins
	Reviewers []string // Candidate reviewers, preferred within the least loaded tier
	Exclude   []string // Members never selected
}

type memberRank struct {
	count       int
	notReviewer bool
}

func (r memberRank) less(o memberRank) bool {
	if r.count != o.count {
		return r.count < o.count
	}
	return !r.notReviewer && o.notReviewer
}

// SelectAssignee picks the assignee for a team.
// Members with the fewest assignments in this run win, reviewers of the candidate win
// within that tier, and the remaining tie is broken uniformly at random.
// The tally is incremented for the chosen member. An empty string means nobody is available.
func SelectAssignee(in SelectInput, tally Tally, rng Rand) string {
	var eligible []string
	for _, m := range in.Roster {
		if m == "" || m == in.Author || slices.Contains(in.Exclude, m) || slices.Contains(eligible, m) {
			continue
		}
		eligible = append(eligible, m)
	}
	if len(eligible) == 0 {
		return ""
	}
	slices.Sort(eligible)

	var best []string
	var bestRank memberRank
	for _, m := range eligible {
		rank := memberRank{
			count:       tally.Count(in.Team, m),
			notReviewer: !slices.Contains(in.Reviewers, m),
		}
		switch {
		case len(best) == 0 || rank.less(bestRank):
			best = []string{m}
			bestRank = rank
		case rank == bestRank:
			best = append(best, m)
		}
	}

	chosen := best[0]
	if len(best) > 1 {
		chosen = best[rng.IntN(len(best))]
	}
	tally.Increment(in.Team, chosen)
	return chosen
}
