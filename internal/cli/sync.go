package cli

import (
	"fmt"

	"github.com/runoshun/git-qa/internal/app"
	"github.com/runoshun/git-qa/internal/usecase"
	"github.com/spf13/cobra"
)

// newSyncCommand creates the sync command.
func newSyncCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Sync team data",
		Long: `Fetch the global config of the repository and refresh every team roster.

Tracker accounts mapped in the global config that are no longer active are reported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, _, err := loadRepo(c); err != nil {
				return err
			}
			out, err := runSync(cmd, c)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, team := range sortedKeys(out.Rosters) {
				_, _ = fmt.Fprintf(w, "%s: %d members\n", team, len(out.Rosters[team]))
			}

			uc, err := c.FindDeactivatedMembersUseCase()
			if err != nil {
				return err
			}
			deactivated, err := uc.Execute(cmd.Context())
			if err != nil {
				return fmt.Errorf("check tracker accounts: %w", err)
			}
			if len(deactivated.Members) > 0 {
				_, _ = fmt.Fprintln(w, "Deactivated tracker accounts:")
				for _, m := range deactivated.Members {
					_, _ = fmt.Fprintf(w, "- %s (%s)\n", m.Login, m.User.DisplayName)
				}
			}
			return nil
		},
	}
}

// runSync syncs team data, printing progress lines to stdout and status to stderr.
func runSync(cmd *cobra.Command, c *app.Container) (*usecase.SyncTeamsOutput, error) {
	uc, err := c.SyncTeamsUseCase()
	if err != nil {
		return nil, err
	}

	c.Status.Attach(app.NewWriterStatus(cmd.ErrOrStderr()))
	defer c.Status.Attach(nil)

	w := cmd.OutOrStdout()
	out, err := uc.Execute(cmd.Context(), usecase.SyncTeamsInput{
		OnProgress: func(line string) {
			_, _ = fmt.Fprintln(w, line)
		},
	})
	if err != nil {
		return nil, err
	}
	c.Reset(app.FieldTrackerConfig)
	return out, nil
}

// ensureSynced runs a sync when team data was never fetched.
func ensureSynced(cmd *cobra.Command, c *app.Container) error {
	uc, err := c.CheckSyncUseCase()
	if err != nil {
		return err
	}
	out, err := uc.Execute(cmd.Context())
	if err != nil {
		return err
	}
	if !out.Needed {
		return nil
	}
	_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "Sync required: %s\n", out.Reason)
	_, err = runSync(cmd, c)
	return err
}
