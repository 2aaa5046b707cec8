package cli

import (
	"github.com/runoshun/git-qa/internal/app"
	"github.com/runoshun/git-qa/internal/tui"
	"github.com/spf13/cobra"
)

// newStatusCommand creates the status command.
func newStatusCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "status <label>...",
		Short: "Display the QA dashboard",
		Long: `Display the QA issues carrying any of the labels, one column per QA status.

Issues assigned to you can be moved to another status from the board.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := loadRepo(c); err != nil {
				return err
			}
			if err := ensureSynced(cmd, c); err != nil {
				return err
			}

			load, err := c.LoadDashboardUseCase()
			if err != nil {
				return err
			}
			move, err := c.MoveIssueUseCase()
			if err != nil {
				return err
			}

			model := tui.NewBoardModel(tui.BoardDeps{
				Load:  load,
				Move:  move,
				Clock: c.Clock,
			}, args)
			return runProgramFunc(c, model)
		},
	}
}
