package main

import (
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aanlab/aang/internal/aan"
	"github.com/aanlab/aang/internal/initials"
	"github.com/aanlab/aang/internal/namestat"
	"github.com/aanlab/aang/internal/pipeline"
)

var (
	corpusFlags       cascadeFlags
	corpusAfter       int
	corpusWorkers     int
	corpusForce       bool
	corpusUnknownOut  string
	corpusInitials    bool
	corpusCorpusStats bool
)

func init() {
	corpusCmd.Flags().BoolVar(&corpusFlags.face, "face", false, "Fall back to image search and face attributes")
	corpusCmd.Flags().BoolVar(&corpusFlags.affiliations, "affiliations", false, "Add authors' affiliations to image searches")
	corpusCmd.Flags().BoolVar(&corpusFlags.noWeb, "no-web", false, "Skip the gpeters.com lookup")
	corpusCmd.Flags().IntVar(&corpusAfter, "after", pipeline.DefaultAfter, "Only papers published after this year")
	corpusCmd.Flags().IntVar(&corpusWorkers, "workers", pipeline.DefaultWorkers, "Concurrent classifications")
	corpusCmd.Flags().BoolVar(&corpusForce, "force", false, "Reclassify authors already in the database")
	corpusCmd.Flags().StringVar(&corpusUnknownOut, "unknown-out", "", "Write unclassified authors here (default save/unknown.txt)")
	corpusCmd.Flags().BoolVar(&corpusInitials, "initials", true, "Resolve initials-only authors against known full names")
	corpusCmd.Flags().BoolVar(&corpusCorpusStats, "corpus-stats", false, "Use first-name counts of known authors on cascade misses")
	rootCmd.AddCommand(corpusCmd)
}

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Classify every author of the AAN corpus",
	Long: `Classify the authors of all papers in release/2014/acl-metadata.txt
published after --after. Authors in the known lists are stored directly, the
rest go through the cascade. Unclassified authors are written to a file.

Examples:
  aang corpus
  aang corpus --after 2000 --workers 8 --face`,
	Args: cobra.NoArgs,
	RunE: runCorpus,
}

func runCorpus(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, layout := requireDataDir()

	papers, err := aan.LoadMetadata(layout.Metadata())
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	known, err := loadKnown(cfg)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	cls, err := buildClassifier(cfg, layout, corpusFlags)
	if err != nil {
		exitForSetupError(err)
	}

	var fallbacks []pipeline.Fallback
	if corpusInitials {
		fallbacks = append(fallbacks, pipeline.InitialsFallback{Index: initials.NewIndex(known)})
	}
	if corpusCorpusStats {
		fallbacks = append(fallbacks, pipeline.CorpusFallback{Stats: namestat.NewCorpusStats(known)})
	}

	store := openStore(ctx, cfg)
	defer store.Close()

	p := pipeline.New(cls, store, pipeline.Config{
		After:   corpusAfter,
		Face:    corpusFlags.face,
		Workers: corpusWorkers,
		Force:   corpusForce,
	}, pipeline.WithKnown(known), pipeline.WithFallbacks(fallbacks...))

	sum, err := p.Run(ctx, papers)
	if err != nil {
		return err
	}
	zap.L().Debug("memoised first names", zap.Int("count", cls.Remembered()))

	out := corpusUnknownOut
	if out == "" {
		out = layout.Unknowns()
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return err
	}
	if err := pipeline.WriteUnknowns(out, sum.Unknown); err != nil {
		return err
	}

	if humanOutput {
		outputHuman("Run %s\n", sum.Run.ID)
		outputHuman("  authors:     %d\n", sum.Run.Authors)
		outputHuman("  skipped:     %d (already stored)\n", sum.Skipped)
		outputHuman("  known lists: %d\n", sum.Known)
		outputHuman("  cascade:     %d\n", sum.Cascade)
		outputHuman("  fallbacks:   %d\n", sum.Fallback)
		outputHuman("  unknown:     %d (written to %s)\n", len(sum.Unknown), out)
		return nil
	}
	return outputJSON(sum)
}
