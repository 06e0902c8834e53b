package main

import (
	"github.com/spf13/cobra"

	"github.com/aanlab/aang/internal/aan"
	"github.com/aanlab/aang/internal/pipeline"
	"github.com/aanlab/aang/internal/report"
	"github.com/aanlab/aang/internal/storage"
)

var reportAfter int

func init() {
	reportCmd.Flags().IntVar(&reportAfter, "after", pipeline.DefaultAfter, "Only papers published after this year")
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Summarise female authorship by year",
	Long: `Count female, male and unknown authorships per publication year using
the stored classifications, with the female share among classified
authorships and the number of papers with a female first author.`,
	Args: cobra.NoArgs,
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, layout := requireDataDir()

	papers, err := aan.LoadMetadata(layout.Metadata())
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}

	store := openStore(ctx, cfg)
	defer store.Close()
	genders, err := storage.Known(ctx, store)
	if err != nil {
		return err
	}

	r := report.Build(papers, genders, reportAfter)
	if !humanOutput {
		return outputJSON(r)
	}

	outputHuman("%-6s %8s %8s %8s %8s %8s %12s\n", "year", "papers", "female", "male", "unknown", "share", "female-1st")
	for _, y := range r.Years {
		outputHuman("%-6d %8d %8d %8d %8d %8s %12d\n", y.Year, y.Papers, y.Female, y.Male, y.Unknown, percent(y.FemaleShare), y.FemaleFirst)
	}
	t := r.Total
	outputHuman("%-6s %8d %8d %8d %8d %8s %12d\n", "all", t.Papers, t.Female, t.Male, t.Unknown, percent(t.FemaleShare), t.FemaleFirst)
	outputHuman("\nyearly female share: mean %s, std %s\n", percent(r.MeanShare), percent(r.StdShare))
	return nil
}
