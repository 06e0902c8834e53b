package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/aanlab/aang/internal/affiliation"
	"github.com/aanlab/aang/internal/bing"
	"github.com/aanlab/aang/internal/cascade"
	"github.com/aanlab/aang/internal/config"
	"github.com/aanlab/aang/internal/face"
	"github.com/aanlab/aang/internal/gpeters"
	"github.com/aanlab/aang/internal/namelist"
	"github.com/aanlab/aang/internal/namestat"
	"github.com/aanlab/aang/internal/namsor"
	"github.com/aanlab/aang/internal/storage"
)

// loadConfig loads the global config or exits with a config error.
func loadConfig() *config.GlobalConfig {
	cfg, err := config.LoadGlobalConfig()
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	return cfg
}

// requireDataDir returns the config and the layout of the AAN data
// directory, or exits with a config error.
func requireDataDir() (*config.GlobalConfig, config.Layout) {
	cfg := loadConfig()
	dir, err := config.ValidateDataDir()
	if err != nil {
		if errors.Is(err, config.ErrDataDirNotConfigured) {
			exitWithError(ExitConfigError, "%s", config.HelpfulConfigMessage())
		}
		exitWithError(ExitConfigError, "%v", err)
	}
	return cfg, config.Layout{Root: dir}
}

// openStore opens the configured database, creating the SQLite directory if
// needed.
func openStore(ctx context.Context, cfg *config.GlobalConfig) storage.Store {
	dsn := cfg.DatabaseDSN()
	if !strings.Contains(dsn, "://") {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			exitWithError(ExitError, "creating database directory: %v", err)
		}
	}
	s, err := storage.Open(ctx, dsn)
	if err != nil {
		exitWithError(ExitError, "opening database: %v", err)
	}
	return s
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// existing filters paths down to the files that exist.
func existing(paths []string) []string {
	var out []string
	for _, p := range paths {
		if fileExists(p) {
			out = append(out, p)
		} else {
			zap.L().Debug("skipping missing list", zap.String("path", p))
		}
	}
	return out
}

// loadKnown reads the known female and male author lists that exist.
func loadKnown(cfg *config.GlobalConfig) (namelist.Gendered, error) {
	female, male := cfg.KnownLists()
	return namelist.LoadKnown(existing(female), existing(male))
}

// readNames reads a name-per-line file.
func readNames(path string) ([]string, error) {
	set, err := namelist.ReadSet(path)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(set))
	for n := range set {
		names = append(names, n)
	}
	return names, nil
}

// cascadeFlags are the lookup switches shared by classify, corpus and serve.
type cascadeFlags struct {
	noWeb        bool
	face         bool
	affiliations bool
}

// buildClassifier assembles the cascade from the files found in the data
// directory. Missing optional sources disable their stage.
func buildClassifier(cfg *config.GlobalConfig, layout config.Layout, flags cascadeFlags) (*cascade.Classifier, error) {
	log := zap.L().Named("setup")
	var opts []cascade.Option

	if len(cfg.ManualFemale) > 0 || len(cfg.ManualMale) > 0 {
		manual := namelist.Manual()
		if err := manual.Extend(cfg.ManualFemale, cfg.ManualMale); err != nil {
			return nil, err
		}
		opts = append(opts, cascade.WithManual(manual))
	}

	male, female, unisex := layout.IndianLists()
	if fileExists(male) && fileExists(female) && fileExists(unisex) {
		indian, err := namelist.LoadIndian(male, female, unisex)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cascade.WithIndian(indian))
		log.Debug("loaded Indian lists", zap.Int("male", len(indian.Male)), zap.Int("female", len(indian.Female)))
	}

	if fileExists(layout.Census()) {
		census, err := namelist.LoadCensus(layout.Census())
		if err != nil {
			return nil, err
		}
		opts = append(opts, cascade.WithCensus(census))
		log.Debug("loaded census lists", zap.Int("male", len(census.Male)), zap.Int("female", len(census.Female)))
	}

	if cfg.NameStats != "" {
		d := namestat.NewDetector()
		if t := cfg.Thresholds.StatsThreshold; t > 0 {
			d.Threshold = t
		}
		if err := d.Load(cfg.NameStats); err != nil {
			return nil, err
		}
		opts = append(opts, cascade.WithDetector(d))
		log.Debug("loaded name statistics", zap.Int("names", d.Len()))
	}

	if fileExists(layout.NamsorResults()) {
		minScale := namsor.DefaultMinScale
		if s := cfg.Thresholds.NamsorScale; s > 0 {
			minScale = s
		}
		cache, err := namsor.LoadCache(layout.NamsorResults(), minScale)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cascade.WithNamsor(cache))
		log.Debug("loaded Namsor cache", zap.Int("entries", cache.Len()))
	}

	alone, veto := gpeters.DefaultMinRatio, gpeters.FaceMinRatio
	if r := cfg.Thresholds.GPetersRatio; r > 0 {
		alone = r
	}
	if r := cfg.Thresholds.GPetersVeto; r > 0 {
		veto = r
	}
	opts = append(opts, cascade.WithRatioThresholds(alone, veto))
	if !flags.noWeb {
		opts = append(opts, cascade.WithRatios(gpeters.NewClient()))
	}

	if flags.face {
		fc, err := buildFace(cfg, layout, flags.affiliations)
		if err != nil {
			return nil, err
		}
		opts = append(opts, cascade.WithFace(fc))
	}

	return cascade.New(opts...), nil
}

// errMissingKey reports a web stage enabled without credentials.
var errMissingKey = errors.New("missing API key")

func buildFace(cfg *config.GlobalConfig, layout config.Layout, withAffiliations bool) (*face.Classifier, error) {
	if cfg.BingSearchKey == "" || cfg.FaceAPIKey == "" {
		return nil, fmt.Errorf("%w: face lookups need %s and %s", errMissingKey, config.EnvBingSearchKey, config.EnvFaceAPIKey)
	}
	searchOpts := []bing.SearchOption{bing.WithSearchKey(cfg.BingSearchKey)}
	if cfg.SearchEndpoint != "" {
		searchOpts = append(searchOpts, bing.WithSearchEndpoint(cfg.SearchEndpoint))
	}
	faceOpts := []bing.FaceOption{bing.WithFaceKey(cfg.FaceAPIKey)}
	if cfg.FaceEndpoint != "" {
		faceOpts = append(faceOpts, bing.WithFaceEndpoint(cfg.FaceEndpoint))
	}

	var opts []face.Option
	if withAffiliations {
		idx, err := affiliation.Load(layout.AuthorIDs(), layout.AffiliationPairs())
		if err != nil {
			return nil, err
		}
		zap.L().Debug("loaded affiliations", zap.Int("authors", idx.Len()))
		opts = append(opts, face.WithAffiliations(idx))
	}
	return face.NewClassifier(bing.NewSearchClient(searchOpts...), bing.NewFaceClient(faceOpts...), opts...), nil
}

// exitForSetupError maps classifier setup failures to exit codes.
func exitForSetupError(err error) {
	if errors.Is(err, errMissingKey) {
		exitWithError(ExitConfigError, "%v", err)
	}
	exitWithError(ExitDataError, "%v", err)
}
