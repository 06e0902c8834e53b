package main

import (
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/aanlab/aang/internal/gender"
	"github.com/aanlab/aang/internal/initials"
	"github.com/aanlab/aang/internal/name"
	"github.com/aanlab/aang/internal/storage"
)

var initialsStore bool

func init() {
	initialsCmd.Flags().BoolVar(&initialsStore, "store", false, "Store resolved authors in the database")
	rootCmd.AddCommand(initialsCmd)
}

var initialsCmd = &cobra.Command{
	Use:   "initials [file]",
	Short: "Resolve initials-only authors against known full names",
	Long: `Match authors written with initials ("Park, J. W.") against known
authors sharing the surname ("Park, Ji Woo") and adopt their gender.

Reads names from file, one per line (default save/unknown.txt).`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInitials,
}

// InitialsResult is one resolved author.
type InitialsResult struct {
	Author   string        `json:"author"`
	FullName string        `json:"full_name"`
	Gender   gender.Gender `json:"gender"`
	Strength string        `json:"strength"`
}

func runInitials(cmd *cobra.Command, args []string) error {
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
	idx := initials.NewIndex(known)

	var store storage.Store
	if initialsStore {
		store = openStore(ctx, cfg)
		defer store.Close()
	}

	var results []InitialsResult
	candidates := 0
	for _, n := range names {
		if !name.IsInitials(n, ",") {
			continue
		}
		candidates++
		m, ok := idx.BestMatch(n)
		if !ok {
			continue
		}
		results = append(results, InitialsResult{
			Author:   m.Author,
			FullName: m.FullName,
			Gender:   m.Gender,
			Strength: m.Strength.String(),
		})
		if store != nil {
			rec := storage.Record{
				Name:         n,
				Gender:       m.Gender,
				Source:       gender.SourceInitials,
				Detail:       m.FullName,
				ClassifiedAt: time.Now().UTC(),
			}
			if err := store.Put(ctx, rec); err != nil {
				return err
			}
		}
	}

	if humanOutput {
		for _, r := range results {
			outputHuman("%s -> %s: %s (%s)\n", r.Author, r.FullName, r.Gender, r.Strength)
		}
		outputHuman("%d of %d initials-only names resolved\n", len(results), candidates)
		return nil
	}
	return outputJSON(results)
}
