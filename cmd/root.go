// Package cmd implements the CLI commands for BriefPipe using Cobra.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gaurav-prasanna/briefpipe/config"
)

var rootCmd = &cobra.Command{
	Use:   "briefpipe",
	Short: "BriefPipe — turn listing pages into structured article briefings",
	Long: `BriefPipe fetches a page, asks a language model which links matter,
extracts the content behind each one, and aggregates the results into a
briefing digest.

Usage:
  briefpipe run <url> --prompt "..." [flags]
  briefpipe serve
  briefpipe briefing add|list
  briefpipe campaign add|list`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger builds the process logger from the configured level.
func newLogger(cfg *config.Config) zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()
}
