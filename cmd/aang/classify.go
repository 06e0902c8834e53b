package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/aanlab/aang/internal/cascade"
	"github.com/aanlab/aang/internal/gender"
	"github.com/aanlab/aang/internal/storage"
)

var (
	classifyFlags cascadeFlags
	classifyStore bool
)

func init() {
	classifyCmd.Flags().BoolVar(&classifyFlags.face, "face", false, "Fall back to image search and face attributes")
	classifyCmd.Flags().BoolVar(&classifyFlags.affiliations, "affiliations", false, "Add the author's affiliation to image searches")
	classifyCmd.Flags().BoolVar(&classifyFlags.noWeb, "no-web", false, "Skip the gpeters.com lookup")
	classifyCmd.Flags().BoolVar(&classifyStore, "store", false, "Store known answers in the database")
	rootCmd.AddCommand(classifyCmd)
}

var classifyCmd = &cobra.Command{
	Use:   "classify <name>...",
	Short: "Classify author names",
	Long: `Run the gender cascade on one or more author names ("Last, First").

Examples:
  aang classify "Smith, John"
  aang classify --face --human "Ivanova, Elena" "Li, X."`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, layout := requireDataDir()

	cls, err := buildClassifier(cfg, layout, classifyFlags)
	if err != nil {
		exitForSetupError(err)
	}

	var store storage.Store
	if classifyStore {
		store = openStore(ctx, cfg)
		defer store.Close()
	}

	results := make([]gender.Result, 0, len(args))
	for _, author := range args {
		res, err := cls.Classify(ctx, author, cascade.Options{Face: classifyFlags.face})
		if err != nil {
			return err
		}
		if store != nil && res.Known() {
			if err := store.Put(ctx, storage.FromResult(res, time.Now())); err != nil {
				return err
			}
		}
		results = append(results, res)
	}

	if humanOutput {
		for _, r := range results {
			printResultHuman(r)
		}
		return nil
	}
	return outputJSON(results)
}
