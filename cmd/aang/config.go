package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aanlab/aang/internal/config"
)

func init() {
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config [key]",
	Short: "Show configuration values",
	Long: `Show the effective configuration: the global config file merged with
environment overrides. API keys are never printed, only whether they are set.

Keys:
  path       Path of the global config file
  data-dir   AAN data directory (AAN_DIR)
  database   Database path or postgres:// URL (AANG_DATABASE)`,
	Args: cobra.MaximumNArgs(1),
	RunE: runConfig,
}

// ConfigResponse is the effective configuration.
type ConfigResponse struct {
	Path        string            `json:"path"`
	DataDir     string            `json:"data_dir,omitempty"`
	Database    string            `json:"database"`
	NameStats   string            `json:"name_stats,omitempty"`
	KeysSet     map[string]bool   `json:"keys_set"`
	Thresholds  config.Thresholds `json:"thresholds"`
	KnownFemale []string          `json:"known_female"`
	KnownMale   []string          `json:"known_male"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	female, male := cfg.KnownLists()
	resp := ConfigResponse{
		Path:      config.GlobalConfigPath(),
		DataDir:   cfg.DataDir,
		Database:  cfg.DatabaseDSN(),
		NameStats: cfg.NameStats,
		KeysSet: map[string]bool{
			config.EnvNamsorAPIKey:  cfg.NamsorAPIKey != "",
			config.EnvBingSearchKey: cfg.BingSearchKey != "",
			config.EnvFaceAPIKey:    cfg.FaceAPIKey != "",
		},
		Thresholds:  cfg.Thresholds,
		KnownFemale: female,
		KnownMale:   male,
	}

	if len(args) == 1 {
		var v string
		switch args[0] {
		case "path":
			v = resp.Path
		case "data-dir":
			v = resp.DataDir
		case "database":
			v = resp.Database
		default:
			exitWithError(ExitError, "unknown config key: %s", args[0])
		}
		if humanOutput {
			fmt.Println(v)
			return nil
		}
		return outputJSON(map[string]string{args[0]: v})
	}

	if humanOutput {
		outputHuman("path:       %s\n", resp.Path)
		outputHuman("data-dir:   %s\n", resp.DataDir)
		outputHuman("database:   %s\n", resp.Database)
		outputHuman("name-stats: %s\n", resp.NameStats)
		for _, k := range []string{config.EnvNamsorAPIKey, config.EnvBingSearchKey, config.EnvFaceAPIKey} {
			outputHuman("%-16s %v\n", k+":", resp.KeysSet[k])
		}
		return nil
	}
	return outputJSON(resp)
}
