// Package config handles the global aang configuration and the layout of
// the AAN data directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/aang/config.yml.
type GlobalConfig struct {
	DataDir        string     `yaml:"data_dir,omitempty"`
	Database       string     `yaml:"database,omitempty"`
	NamsorAPIKey   string     `yaml:"namsor_api_key,omitempty"`
	BingSearchKey  string     `yaml:"bing_search_key,omitempty"`
	FaceAPIKey     string     `yaml:"face_api_key,omitempty"`
	FaceEndpoint   string     `yaml:"face_endpoint,omitempty"`
	SearchEndpoint string     `yaml:"search_endpoint,omitempty"`
	NameStats      string     `yaml:"name_stats,omitempty"`
	KnownFemale    []string   `yaml:"known_female,omitempty"`
	KnownMale      []string   `yaml:"known_male,omitempty"`
	ManualFemale   []string   `yaml:"manual_female,omitempty"`
	ManualMale     []string   `yaml:"manual_male,omitempty"`
	Thresholds     Thresholds `yaml:"thresholds,omitempty"`
}

// Thresholds tune the classifiers. Zero values fall back to the defaults.
type Thresholds struct {
	NamsorScale    float64 `yaml:"namsor_scale,omitempty" json:"namsor_scale,omitempty"`
	GPetersRatio   float64 `yaml:"gpeters_ratio,omitempty" json:"gpeters_ratio,omitempty"`
	GPetersVeto    float64 `yaml:"gpeters_veto,omitempty" json:"gpeters_veto,omitempty"`
	StatsThreshold float64 `yaml:"stats_threshold,omitempty" json:"stats_threshold,omitempty"`
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "aang"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// Environment variables that override config file values.
const (
	EnvDataDir       = "AAN_DIR"
	EnvDatabase      = "AANG_DATABASE"
	EnvNamsorAPIKey  = "NAMSOR_API_KEY"
	EnvBingSearchKey = "BING_SEARCH_KEY"
	EnvFaceAPIKey    = "FACE_API_KEY"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/aang/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file and applies
// environment overrides. Returns an empty config (not an error) if the
// file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	var cfg GlobalConfig
	if path := GlobalConfigPath(); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing global config: %w", err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}

	cfg.DataDir = GetConfigValue(EnvDataDir, cfg.DataDir)
	cfg.Database = GetConfigValue(EnvDatabase, cfg.Database)
	cfg.NamsorAPIKey = GetConfigValue(EnvNamsorAPIKey, cfg.NamsorAPIKey)
	cfg.BingSearchKey = GetConfigValue(EnvBingSearchKey, cfg.BingSearchKey)
	cfg.FaceAPIKey = GetConfigValue(EnvFaceAPIKey, cfg.FaceAPIKey)

	if cfg.DataDir != "" {
		cfg.DataDir = ExpandTilde(cfg.DataDir)
	}
	if cfg.NameStats != "" {
		cfg.NameStats = ExpandTilde(cfg.NameStats)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetConfigValue returns the environment variable if set, else fallback.
func GetConfigValue(envVar, fallback string) string {
	if v := os.Getenv(envVar); v != "" {
		return v
	}
	return fallback
}

// ExpandTilde replaces a leading ~ with the user's home directory.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~"))
	}
	return path
}

// ErrDataDirNotConfigured is returned when data_dir is not set.
var ErrDataDirNotConfigured = errors.New("data_dir not configured")

// ErrDataDirNotExist is returned when the configured data_dir doesn't exist.
var ErrDataDirNotExist = errors.New("data_dir does not exist")

// ValidateDataDir returns the configured AAN data directory after checking
// it exists.
func ValidateDataDir() (string, error) {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return "", err
	}
	if cfg.DataDir == "" {
		return "", ErrDataDirNotConfigured
	}
	if _, err := os.Stat(cfg.DataDir); err != nil {
		return "", fmt.Errorf("%w: %s", ErrDataDirNotExist, cfg.DataDir)
	}
	return cfg.DataDir, nil
}

// HelpfulConfigMessage explains how to point aang at the AAN data.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`No AAN data directory configured.

Tip: set %s or create %s:
  mkdir -p %s
  echo 'data_dir: /path/to/aan' > %s`,
		EnvDataDir,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
