package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/jmarlow/fieldscan/internal/meta"
)

// CLIConfig holds optional defaults read from the config file.
type CLIConfig struct {
	Root       string   `yaml:"root,omitempty"`
	Tool       string   `yaml:"tool,omitempty"`
	MetaFields []string `yaml:"meta_fields,omitempty"`
	BandFields []string `yaml:"band_fields,omitempty"`
	MaxBand    int      `yaml:"max_band,omitempty"`
}

// configPath returns the path to the CLI config file.
func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, ".config", "fieldscan", "config.yaml"), nil
}

// loadConfig reads the CLI config from disk.
// Returns a zero-value config if the file doesn't exist.
func loadConfig() (CLIConfig, error) {
	path, err := configPath()
	if err != nil {
		return CLIConfig{}, err
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return CLIConfig{}, nil
	}
	if err != nil {
		return CLIConfig{}, fmt.Errorf("reading config: %w", err)
	}

	var cfg CLIConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// getRoot returns the survey root: positional arg, env var, config, or ".".
func getRoot(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	if v := os.Getenv("FIELDSCAN_ROOT"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil && cfg.Root != "" {
		return cfg.Root
	}
	return "."
}

// getTool returns the tag reader binary: flag, env var, or config. An empty
// result makes the runner fall back to exiftool on PATH.
func getTool() string {
	if flagTool != "" {
		return flagTool
	}
	if v := os.Getenv("FIELDSCAN_TOOL"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil {
		return cfg.Tool
	}
	return ""
}

// getMetaFields returns the single-file extraction fields: flag value,
// config, or the documented default (Software, SwVersion).
func getMetaFields(flagFields []string) []string {
	if len(flagFields) > 0 {
		return flagFields
	}
	cfg, err := loadConfig()
	if err == nil && len(cfg.MetaFields) > 0 {
		return cfg.MetaFields
	}
	return meta.DefaultFields
}

// getBandFields returns the per-band extraction fields: flag value, config,
// or the documented default (FileName, BandName, CentralWavelength,
// WavelengthFWHM).
func getBandFields(flagFields []string) []string {
	if len(flagFields) > 0 {
		return flagFields
	}
	cfg, err := loadConfig()
	if err == nil && len(cfg.BandFields) > 0 {
		return cfg.BandFields
	}
	return meta.DefaultBandFields
}

// getMaxBand returns the highest band suffix searched for: flag, config, or 11.
func getMaxBand(flagMax int) int {
	if flagMax > 0 {
		return flagMax
	}
	cfg, err := loadConfig()
	if err == nil && cfg.MaxBand > 0 {
		return cfg.MaxBand
	}
	return meta.DefaultMaxBand
}
