package cli

import (
	"fmt"
	"strings"

	"github.com/runoshun/git-qa/internal/app"
	"github.com/spf13/cobra"
)

// newConfigCommand creates the config command.
func newConfigCommand(c *app.Container) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long:  `Manage the git-qa configuration file.`,
		// No RunE: shows subcommand list when called without arguments
	}

	cmd.AddCommand(newConfigFindCommand(c))
	cmd.AddCommand(newConfigShowCommand(c))
	cmd.AddCommand(newConfigInitCommand(c))
	cmd.AddCommand(newConfigSetCommand(c))

	return cmd
}

// newConfigFindCommand creates the config find subcommand.
func newConfigFindCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "find",
		Short: "Show the location of the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := c.ConfigManager.Path()
			if strings.Contains(path, " ") {
				path = `"` + path + `"`
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), path)
			return nil
		},
	}
}

// newConfigShowCommand creates the config show subcommand.
func newConfigShowCommand(c *app.Container) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show the contents of the config file",
		Long: `Show the contents of the config file.

Auth tokens are scrubbed unless --all is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !c.ConfigManager.Exists() {
				return fmt.Errorf("no config file found at %s (run 'git-qa config init')", c.ConfigManager.Path())
			}
			text, err := c.ConfigManager.Show(all)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(text, "\n"))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&all, "all", "a", false, "Do not scrub secret fields")

	return cmd
}

// newConfigInitCommand creates the config init subcommand.
func newConfigInitCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Generate the config file template",
		Long: `Generate the config file template.

Error conditions:
- Target file already exists: error`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := c.ConfigManager.Init(); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created config file: %s\n", c.ConfigManager.Path())
			return nil
		},
	}
}

// newConfigSetCommand creates the config set subcommand.
func newConfigSetCommand(c *app.Container) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Assign a value to a config file entry",
		Long: `Assign a value to a config file entry.

Keys are dotted paths; values are parsed as TOML and stored as strings otherwise.

Examples:
  git-qa config set repo agent
  git-qa config set auth.github.user octocat
  git-qa config set repos.agent.qa_statuses '["TODO", "DONE"]'`,
		Args: cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			if err := c.ConfigManager.Set(args[0], args[1]); err != nil {
				return err
			}
			c.Reset(app.FieldConfig)
			return nil
		},
	}
}
