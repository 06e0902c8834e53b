package main

import (
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/aanlab/aang/internal/gender"
	"github.com/aanlab/aang/internal/namestat"
	"github.com/aanlab/aang/internal/storage"
)

var firstnamesStore bool

func init() {
	firstnamesCmd.Flags().BoolVar(&firstnamesStore, "store", false, "Store resolved authors in the database")
	rootCmd.AddCommand(firstnamesCmd)
}

var firstnamesCmd = &cobra.Command{
	Use:   "firstnames [file]",
	Short: "Classify authors by the first names of known authors",
	Long: `Classify authors whose first name is common among authors of one
gender only. Counts come from the known female and male author lists; names
must appear more than twice for one gender and never for the other.

Reads names from file, one per line (default save/unknown.txt).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFirstnames,
}

// FirstNameResult is one line of firstnames output.
type FirstNameResult struct {
	gender.Result
	Conflict bool `json:"conflict,omitempty"`
}

func runFirstnames(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, layout := requireDataDir()

	path := layout.Unknowns()
	if len(args) == 1 {
		path = args[0]
	}
	names, err := readNames(path)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	sort.Strings(names)

	known, err := loadKnown(cfg)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	stats := namestat.NewCorpusStats(known)

	var store storage.Store
	if firstnamesStore {
		store = openStore(ctx, cfg)
		defer store.Close()
	}

	var results []FirstNameResult
	for _, n := range names {
		g, conflict := stats.Resolve(n)
		if !g.Known() && !conflict {
			continue
		}
		r := FirstNameResult{
			Result:   gender.Result{Name: n, Gender: g, Source: gender.SourceCorpusStats},
			Conflict: conflict,
		}
		if conflict {
			r.Source = gender.SourceNone
			r.Detail = "full and first-token counts disagree"
		}
		if store != nil && g.Known() {
			if err := store.Put(ctx, storage.FromResult(r.Result, time.Now())); err != nil {
				return err
			}
		}
		results = append(results, r)
	}

	if humanOutput {
		for _, r := range results {
			printResultHuman(r.Result)
		}
		outputHuman("%d of %d names resolved\n", len(results), len(names))
		return nil
	}
	return outputJSON(results)
}
