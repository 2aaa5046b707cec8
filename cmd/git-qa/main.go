// Package main is the entry point for the git-qa CLI.
package main

import (
	"fmt"
	"os"

	"github.com/runoshun/git-qa/internal/app"
	"github.com/runoshun/git-qa/internal/cli"
)

// version is set at build time using -ldflags.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	// Create dependency injection container
	container := app.New(app.Options{})
	defer func() { _ = container.Close() }()

	// Create and execute root command
	rootCmd := cli.NewRootCommand(container, version)
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}
