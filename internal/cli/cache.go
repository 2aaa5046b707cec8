package cli

import (
	"errors"
	"fmt"
	"os"
	"slices"

	"github.com/runoshun/git-qa/internal/app"
	"github.com/runoshun/git-qa/internal/infra/cache"
	"github.com/runoshun/git-qa/internal/usecase"
	"github.com/spf13/cobra"
)

// newCacheCommand creates the cache command.
func newCacheCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the cache",
		Long:  `Locate, inspect and purge cached pull requests, rosters and tracker data.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newCacheFindCommand(c))
	cmd.AddCommand(newCachePurgeCommand(c))
	cmd.AddCommand(newCacheShowCommand(c))

	return cmd
}

// newCacheFindCommand creates the cache find subcommand.
func newCacheFindCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "find",
		Short: "Show the location of the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), c.CacheDir())
			return nil
		},
	}
}

// newCachePurgeCommand creates the cache purge subcommand.
func newCachePurgeCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "purge",
		Short: "Remove the cache directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dir := c.CacheDir()
			w := cmd.OutOrStdout()
			if _, err := os.Stat(dir); errors.Is(err, os.ErrNotExist) {
				_, _ = fmt.Fprintf(w, "Cache directory %s does not exist.\n", dir)
				return nil
			}

			// The log file lives in the cache directory.
			c.Reset(app.FieldLogger)
			_, _ = fmt.Fprintf(w, "Removing %s...\n", dir)
			return cache.Purge(dir)
		},
	}
}

// newCacheShowCommand creates the cache show subcommand.
func newCacheShowCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "show <commit>",
		Short: "Show the candidate cached for a commit",
		Long: `Show the candidate cached for a commit as YAML.

The cache is read only; nothing is fetched from the network.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			uc, err := c.ShowCandidateUseCase()
			if err != nil {
				return err
			}
			out, err := uc.Execute(cmd.Context(), usecase.ShowCandidateInput{CommitHash: args[0]})
			if err != nil {
				return err
			}
			_, _ = fmt.Fprint(cmd.OutOrStdout(), out.YAML)
			return nil
		},
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
