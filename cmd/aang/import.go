package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/aanlab/aang/internal/storage"
)

var importReplace bool

func init() {
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "Replace all stored authors (SQLite only)")
	rootCmd.AddCommand(importCmd)
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import classifications from JSONL",
	Long: `Import records written by "aang export". Existing authors are
updated; with --replace the SQLite database is rebuilt from the file.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg := loadConfig()
	if _, err := os.Stat(args[0]); err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	store := openStore(ctx, cfg)
	defer store.Close()

	var n int
	if importReplace {
		db, ok := store.(*storage.DB)
		if !ok {
			exitWithError(ExitConfigError, "--replace is only supported for SQLite databases")
		}
		count, err := db.RebuildFromJSONL(ctx, args[0])
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		n = count
	} else {
		recs, err := storage.ReadAll(args[0])
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		for _, rec := range recs {
			if rec.ClassifiedAt.IsZero() {
				rec.ClassifiedAt = time.Now().UTC()
			}
			if err := store.Put(ctx, rec); err != nil {
				return err
			}
		}
		n = len(recs)
	}

	if humanOutput {
		outputHuman("Imported %d records from %s\n", n, args[0])
		return nil
	}
	return outputJSON(CountResponse{Status: "imported", Count: n, Path: args[0]})
}
