// Package main provides the aang CLI entry point.
package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/aanlab/aang/internal/logging"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	// humanOutput controls whether to use human-readable output
	humanOutput bool
	verbose     bool
	flushLogs   func()
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		exitWithError(ExitError, "%v", err)
	}
}

var rootCmd = &cobra.Command{
	Use:   "aang",
	Short: "Infer author genders for the ACL Anthology Network",
	Long: `aang classifies the authors of the ACL Anthology Network by gender.

Each author goes through a cascade of name lists, a statistical first-name
detector, cached Namsor answers and optional web lookups; the first confident
answer wins. Answers are stored in SQLite (or Postgres) and can be exported
as JSONL. All commands output JSON by default.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// API keys may live in a local .env file
		_ = godotenv.Load()

		done, err := logging.Install(verbose)
		if err != nil {
			return err
		}
		flushLogs = done
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if flushLogs != nil {
			flushLogs()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&humanOutput, "human", false, "Use human-readable output instead of JSON")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
	rootCmd.Version = Version
}
