package main

import (
	"time"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recorded corpus runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		store := openStore(ctx, loadConfig())
		defer store.Close()

		runs, err := store.Runs(ctx)
		if err != nil {
			return err
		}
		if !humanOutput {
			return outputJSON(runs)
		}
		for _, r := range runs {
			outputHuman("%s  %s  %d authors, %d classified, %d unknown (%s)\n",
				r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Authors, r.Classified, r.Unknown,
				r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
		}
		return nil
	},
}
