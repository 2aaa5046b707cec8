package cli

import (
	"github.com/runoshun/git-qa/internal/app"
	"github.com/runoshun/git-qa/internal/domain"
	"github.com/runoshun/git-qa/internal/tui"
	"github.com/runoshun/git-qa/internal/usecase"
	"github.com/spf13/cobra"
)

// newCreateCommand creates the create command.
func newCreateCommand(c *app.Container) *cobra.Command {
	var labels []string
	var include []string

	cmd := &cobra.Command{
		Use:   "create <previous-ref> <current-ref>",
		Short: "Create QA issues",
		Long: `Create QA issues for the changes between two refs.

Commits of <current-ref> without a patch-equivalent commit in <previous-ref>
are resolved to pull requests. Candidates are assigned to teams from their
labels; assignments can be changed before creating the issues.

Examples:
  git-qa create v1.0.0 v1.1.0 -l release-1.1
  git-qa create origin/release main -l qa/1.1 -i changelog/fixed`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, repo, err := loadRepo(c)
			if err != nil {
				return err
			}
			if len(include) == 0 {
				include = cfg.IncludeLabels
			}
			if err := ensureSynced(cmd, c); err != nil {
				return err
			}

			resolve, err := c.ResolveCandidatesUseCase()
			if err != nil {
				return err
			}
			toggle, err := c.ToggleAssignmentUseCase()
			if err != nil {
				return err
			}
			create, err := c.CreateIssuesUseCase()
			if err != nil {
				return err
			}

			model := tui.NewCreateModel(tui.CreateDeps{
				Resolve: resolve,
				Toggle:  toggle,
				Create:  create,
				Repo:    repo,
			}, usecase.ResolveCandidatesInput{
				Filter:   domain.LabelFilter{Ignored: repo.IgnoredLabels, Required: include},
				Previous: args[0],
				Current:  args[1],
			}, labels)
			return runProgramFunc(c, model)
		},
	}

	cmd.Flags().StringArrayVarP(&labels, "label", "l", nil, "Label attached to created issues (repeatable)")
	cmd.Flags().StringArrayVarP(&include, "include-labels", "i", nil, "Label a pull request must carry (repeatable, defaults to include_labels)")
	_ = cmd.MarkFlagRequired("label")

	return cmd
}
