// Package main provides the entry point for the wikiwalk CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for wikiwalk.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wikiwalk",
		Short: "Measure how often first links lead to Philosophy",
		Long: `wikiwalk runs the "first link leads to Philosophy" experiment.
It fetches random encyclopedia articles, repeatedly follows the first
qualifying link in each article body, and records whether the chain
reaches the target article before looping, dead-ending, or running out
of steps.

Results are printed as a summary report and saved to a local database
so runs can be listed and compared later.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewRunCmd())
	cmd.AddCommand(NewStatsCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
