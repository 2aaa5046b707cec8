// Package cli provides the command-line interface for git-qa.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/runoshun/git-qa/internal/app"
	"github.com/runoshun/git-qa/internal/domain"
	"github.com/spf13/cobra"
)

// Command group IDs.
const (
	groupQA    = "qa"
	groupSetup = "setup"
)

// NewRootCommand creates the root command for git-qa.
// It receives the container for dependency injection and version for display.
func NewRootCommand(c *app.Container, version string) *cobra.Command {
	var cacheDir string
	var configPath string

	root := &cobra.Command{
		Use:   "git-qa",
		Short: "QA ticket generator for pull requests",
		Long: `git-qa turns the pull requests merged between two git refs into QA issues.

Each candidate is assigned to teams based on its labels, one reviewer-aware
assignee is picked per team and issues are created in the tracker. The status
board follows QA progress of a release.`,
		Version: version,
		// SilenceUsage prevents usage from being printed on errors
		SilenceUsage: true,
		// SilenceErrors prevents Cobra from printing errors (we handle it in main)
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if c == nil {
				return nil
			}
			if cacheDir != "" {
				c.SetCacheDir(cacheDir)
			}
			if configPath != "" {
				if _, err := os.Stat(configPath); err != nil {
					return fmt.Errorf("the selected config file %s does not exist", configPath)
				}
				c.SetConfigPath(configPath)
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cacheDir, "cache-dir", "", "Directory used to cache data [env: GIT_QA_CACHE]")
	root.PersistentFlags().StringVar(&configPath, "config", "", "Config file to use [env: GIT_QA_CONFIG]")

	root.AddGroup(
		&cobra.Group{ID: groupQA, Title: "QA Commands:"},
		&cobra.Group{ID: groupSetup, Title: "Setup Commands:"},
	)

	createCmd := newCreateCommand(c)
	createCmd.GroupID = groupQA

	statusCmd := newStatusCommand(c)
	statusCmd.GroupID = groupQA

	syncCmd := newSyncCommand(c)
	syncCmd.GroupID = groupSetup

	cacheCmd := newCacheCommand(c)
	cacheCmd.GroupID = groupSetup

	configCmd := newConfigCommand(c)
	configCmd.GroupID = groupSetup

	root.AddCommand(
		createCmd,
		statusCmd,
		syncCmd,
		cacheCmd,
		configCmd,
	)

	return root
}

// loadRepo validates the configuration and returns the selected repository.
func loadRepo(c *app.Container) (*domain.Config, *domain.RepoConfig, error) {
	if c == nil {
		return nil, nil, errors.New("no configuration available")
	}
	cfg, err := c.Config()
	if err != nil {
		return nil, nil, err
	}
	if problems := cfg.Validate(); len(problems) > 0 {
		return nil, nil, fmt.Errorf("invalid configuration:\n  %s", strings.Join(problems, "\n  "))
	}
	repo, err := c.Repo()
	if err != nil {
		return nil, nil, err
	}
	return cfg, repo, nil
}
