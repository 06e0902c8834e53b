package main

import (
	"os"
	"os/signal"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/aanlab/aang/internal/config"
	"github.com/aanlab/aang/internal/name"
	"github.com/aanlab/aang/internal/namelist"
	"github.com/aanlab/aang/internal/namsor"
)

var namsorLimit int

func init() {
	namsorFetchCmd.Flags().IntVar(&namsorLimit, "limit", 0, "Stop after this many lookups (0 = no limit)")
	namsorCmd.AddCommand(namsorFetchCmd)
	rootCmd.AddCommand(namsorCmd)
}

var namsorCmd = &cobra.Command{
	Use:   "namsor",
	Short: "Manage the Namsor answer cache",
}

var namsorFetchCmd = &cobra.Command{
	Use:   "fetch [file]",
	Short: "Look up authors with the Namsor API and append to the cache",
	Long: `Send each author name not yet in save/namresults.txt to the Namsor
gender API and append the answers to the cache, which the cascade reads.

Reads names from file, one per line (default save/unknown.txt).
Requires NAMSOR_API_KEY.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runNamsorFetch,
}

// cachedNames returns the names already present in a cache file.
func cachedNames(path string) (namelist.Set, error) {
	seen := namelist.NewSet()
	if !fileExists(path) {
		return seen, nil
	}
	lines, err := namelist.ReadSet(path)
	if err != nil {
		return nil, err
	}
	for line := range lines {
		e, err := namsor.ParseLine(line)
		if err != nil {
			return nil, err
		}
		seen.Add(e.Name)
	}
	return seen, nil
}

// alreadyCached reports whether author is in the cache, which holds
// unescaped names.
func alreadyCached(seen namelist.Set, author string) bool {
	author = strings.TrimSpace(author)
	return seen.Has(author) || seen.Has(name.Unescape(author))
}

func runNamsorFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	cfg, layout := requireDataDir()
	if cfg.NamsorAPIKey == "" {
		exitWithError(ExitConfigError, "%s is not set", config.EnvNamsorAPIKey)
	}

	path := layout.Unknowns()
	if len(args) == 1 {
		path = args[0]
	}
	names, err := readNames(path)
	if err != nil {
		exitWithError(ExitDataError, "%v", err)
	}
	sort.Strings(names)

	cachePath := layout.NamsorResults()
	seen, err := cachedNames(cachePath)
	if err != nil {
		exitWithError(ExitDataError, "reading %s: %v", cachePath, err)
	}

	client := namsor.NewClient(namsor.WithAPIKey(cfg.NamsorAPIKey))
	log := zap.L().Named("namsor")
	fetched := 0
	for _, n := range names {
		if namsorLimit > 0 && fetched >= namsorLimit {
			break
		}
		if alreadyCached(seen, n) {
			continue
		}
		e, err := client.Classify(ctx, n)
		switch {
		case err == nil:
		case namsor.IsAuthError(err):
			exitWithError(ExitConfigError, "%v", err)
		case namsor.IsRateLimited(err), ctx.Err() != nil:
			log.Warn("stopping early", zap.Error(err), zap.Int("fetched", fetched))
			return reportFetched(fetched, cachePath)
		default:
			log.Warn("lookup failed", zap.String("author", n), zap.Error(err))
			continue
		}
		if err := namsor.AppendCache(cachePath, []namsor.Entry{e}); err != nil {
			return err
		}
		seen.Add(e.Name)
		fetched++
	}
	return reportFetched(fetched, cachePath)
}

func reportFetched(n int, path string) error {
	if humanOutput {
		outputHuman("Appended %d answers to %s\n", n, path)
		return nil
	}
	return outputJSON(CountResponse{Status: "ok", Count: n, Path: path})
}
