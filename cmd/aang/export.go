package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/aanlab/aang/internal/gender"
	"github.com/aanlab/aang/internal/storage"
)

var (
	exportGender string
	exportAppend bool
)

func init() {
	exportCmd.Flags().StringVar(&exportGender, "gender", "", "Export only this gender (male, female, unknown)")
	exportCmd.Flags().BoolVar(&exportAppend, "append", false, "Append to the file instead of replacing it")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export stored classifications as JSONL",
	Long: `Export stored classifications as JSONL, one record per line, sorted by
name. Writes to stdout when no file is given.

Examples:
  aang export genders.jsonl
  aang export --gender female > female.jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadConfig()

	var filter *gender.Gender
	if exportGender != "" {
		g, err := gender.Parse(exportGender)
		if err != nil {
			exitWithError(ExitError, "%v", err)
		}
		filter = &g
	}

	store := openStore(ctx, cfg)
	defer store.Close()

	recs, err := store.List(ctx, filter)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		enc := json.NewEncoder(os.Stdout)
		for _, rec := range recs {
			if err := enc.Encode(rec); err != nil {
				return err
			}
		}
		return nil
	}

	if exportAppend {
		for _, rec := range recs {
			if err := storage.Append(args[0], rec); err != nil {
				return err
			}
		}
	} else if err := storage.WriteAll(args[0], recs); err != nil {
		return err
	}
	if humanOutput {
		outputHuman("Exported %d records to %s\n", len(recs), args[0])
		return nil
	}
	return outputJSON(CountResponse{Status: "exported", Count: len(recs), Path: args[0]})
}
