package usecase

import (
	"context"
	"fmt"
	"slices"

	"github.com/runoshun/git-qa/internal/domain"
	"github.com/runoshun/git-qa/internal/usecase/shared"
)

// CreateIssuesInput contains the parameters for creating QA issues.
// Fields are ordered to minimize memory padding.
type CreateIssuesInput struct {
	// OnCreated is called after the issues of each candidate are created (optional).
	OnCreated func(CandidateIssues)
	// Created lists the teams whose issues already exist per candidate; they are skipped.
	Created    map[*domain.Candidate][]string
	Candidates []*domain.Candidate // Candidates in display order
	Labels     []string            // Labels put on every issue (required)
}

// CandidateIssues are the issues created for one candidate.
type CandidateIssues struct {
	Candidate *domain.Candidate
	Issues    []domain.CreatedIssue
}

// CreateIssuesOutput contains the result of the creation run.
type CreateIssuesOutput struct {
	Results []CandidateIssues
	Tally   domain.Tally
}

// CreateIssues is the use case for creating one tracker issue per assigned team.
// Fields are ordered to minimize memory padding.
type CreateIssues struct {
	repo    *domain.RepoConfig
	members *domain.TrackerConfig
	forge   domain.SourceForge
	tracker domain.Tracker
	rng     domain.Rand
	status  domain.StatusReporter
	logger  domain.Logger
}

// NewCreateIssues creates a new CreateIssues use case.
func NewCreateIssues(
	repo *domain.RepoConfig,
	members *domain.TrackerConfig,
	forge domain.SourceForge,
	tracker domain.Tracker,
	rng domain.Rand,
	status domain.StatusReporter,
	logger domain.Logger,
) *CreateIssues {
	return &CreateIssues{
		repo:    repo,
		members: members,
		forge:   forge,
		tracker: tracker,
		rng:     rng,
		status:  status,
		logger:  logger,
	}
}

// Execute creates the issues of every assigned candidate, in order, teams sorted
// by name. Assignees are balanced across the whole run. The first failure stops
// the run and the issues created so far are returned with the error.
func (uc *CreateIssues) Execute(ctx context.Context, in CreateIssuesInput) (*CreateIssuesOutput, error) {
	if len(in.Labels) == 0 {
		return nil, domain.ErrNoLabels
	}

	out := &CreateIssuesOutput{Tally: domain.NewTally()}
	var todo []*domain.Candidate
	for _, c := range in.Candidates {
		if c != nil && len(pendingTeams(c, uc.repo, in.Created[c])) > 0 {
			todo = append(todo, c)
		}
	}

	for i, c := range todo {
		uc.status.SetStatus(fmt.Sprintf("Creating %d / %d: %s", i+1, len(todo), c.DisplayName()))

		assignments, err := uc.assign(ctx, c, pendingTeams(c, uc.repo, in.Created[c]), out.Tally)
		if err != nil {
			return out, err
		}

		created, err := uc.tracker.CreateIssues(ctx, c, in.Labels, assignments)
		if len(created) > 0 || err == nil {
			result := CandidateIssues{Candidate: c, Issues: created}
			out.Results = append(out.Results, result)
			if in.OnCreated != nil {
				in.OnCreated(result)
			}
		}
		if err != nil {
			return out, fmt.Errorf("create issues for %s: %w", c.DisplayName(), err)
		}
	}

	uc.status.SetStatus("Finished")
	return out, nil
}

// pendingTeams returns the assigned teams of c without an issue yet, sorted.
func pendingTeams(c *domain.Candidate, repo *domain.RepoConfig, created []string) []string {
	var teams []string
	for _, name := range domain.AssignmentsFor(c, repo).Teams() {
		if !slices.Contains(created, name) {
			teams = append(teams, name)
		}
	}
	return teams
}

// assign picks one assignee per team.
func (uc *CreateIssues) assign(ctx context.Context, c *domain.Candidate, teams []string, tally domain.Tally) ([]domain.TeamAssignment, error) {
	reviewers := make([]string, 0, len(c.Reviewers))
	for _, r := range c.Reviewers {
		reviewers = append(reviewers, r.Name)
	}

	assignments := make([]domain.TeamAssignment, 0, len(teams))
	for _, name := range teams {
		team, err := uc.repo.Team(name)
		if err != nil {
			return nil, err
		}

		roster, err := uc.forge.TeamMembers(ctx, team.GitHubTeam, false)
		if err != nil {
			return nil, fmt.Errorf("get members of %s: %w", team.GitHubTeam, err)
		}

		member := domain.SelectAssignee(domain.SelectInput{
			Team:      team.GitHubTeam,
			Author:    c.User,
			Roster:    shared.EligibleRoster(roster, uc.members),
			Reviewers: reviewers,
			Exclude:   team.ExcludeMembers,
		}, tally, uc.rng)

		a := domain.TeamAssignment{Team: name, Member: member}
		if member != "" && uc.members != nil {
			a.AssigneeID = uc.members.TrackerUserID(member)
		}
		if member == "" {
			uc.logger.Warn(c.ShortID(), "assign", "no available member in "+team.GitHubTeam)
		}
		assignments = append(assignments, a)
	}
	return assignments, nil
}
