package domain

import "slices"

// Assignments maps a team name to whether the candidate is assigned to it.
type Assignments map[string]bool

// DefaultAssignments computes the team assignment set from a candidate's labels.
// A team is assigned when the labels intersect its github_labels, unless the labels
// intersect the repository's ignored labels, which unassigns every team.
func DefaultAssignments(labels []string, repo *RepoConfig) Assignments {
	ignored := false
	for _, l := range labels {
		if slices.Contains(repo.IgnoredLabels, l) {
			ignored = true
			break
		}
	}

	out := make(Assignments, len(repo.Teams))
	for name, team := range repo.Teams {
		if ignored {
			out[name] = false
			continue
		}
		out[name] = intersects(labels, team.GitHubLabels)
	}
	return out
}

// AssignmentsFor returns the assignments of a candidate.
// An explicit assignment cached on the candidate is an override: it is used verbatim
// (teams missing from it count as unassigned) until the candidate record is re-fetched.
func AssignmentsFor(c *Candidate, repo *RepoConfig) Assignments {
	if c.Assignments == nil {
		return DefaultAssignments(c.LabelNames(), repo)
	}
	out := make(Assignments, len(repo.Teams))
	for name := range repo.Teams {
		out[name] = c.Assignments[name]
	}
	return out
}

// Toggle sets the assignment of team.
func (a Assignments) Toggle(team string, assigned bool) {
	a[team] = assigned
}

// Assigned reports whether any team is assigned.
func (a Assignments) Assigned() bool {
	for _, v := range a {
		if v {
			return true
		}
	}
	return false
}

// Teams returns the assigned team names in sorted order.
func (a Assignments) Teams() []string {
	var teams []string
	for name, v := range a {
		if v {
			teams = append(teams, name)
		}
	}
	slices.Sort(teams)
	return teams
}

// Clone returns a copy of the assignments.
func (a Assignments) Clone() Assignments {
	out := make(Assignments, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func intersects(a, b []string) bool {
	for _, x := range a {
		if slices.Contains(b, x) {
			return true
		}
	}
	return false
}
