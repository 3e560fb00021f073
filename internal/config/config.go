package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds application configuration
type Config struct {
	// Global settings
	Format  string `mapstructure:"format"`
	Quiet   bool   `mapstructure:"quiet"`
	Verbose bool   `mapstructure:"verbose"`

	// Default values for commands
	Defaults DefaultsConfig `mapstructure:"defaults"`

	// Credential selection
	Auth AuthConfig `mapstructure:"auth"`

	// Remote automation job settings
	Job JobConfig `mapstructure:"job"`

	// Run log retention
	Runs RunsConfig `mapstructure:"runs"`
}

// DefaultsConfig holds default values for apply/list commands
type DefaultsConfig struct {
	Percentage int      `mapstructure:"percentage"`
	Include    []string `mapstructure:"include"`
	Exclude    []string `mapstructure:"exclude"`
	Tenants    []string `mapstructure:"tenants"`
}

// AuthConfig selects how tokens are acquired.
// Mode "default" walks the full credential chain (env, workload identity,
// managed identity, CLI). Mode "managed-identity" skips straight to the
// platform-assigned identity, optionally pinned to a client id.
type AuthConfig struct {
	Mode     string `mapstructure:"mode"`
	ClientID string `mapstructure:"client_id"`
	TenantID string `mapstructure:"tenant_id"`
}

// JobConfig locates the automation account hosting the remote runbook
type JobConfig struct {
	Subscription  string `mapstructure:"subscription"`
	ResourceGroup string `mapstructure:"resource_group"`
	Account       string `mapstructure:"account"`
	Runbook       string `mapstructure:"runbook"`
	PollInterval  string `mapstructure:"poll_interval"`
}

// RunsConfig controls local run log files
type RunsConfig struct {
	Dir  string `mapstructure:"dir"`
	Keep int    `mapstructure:"keep"`
}

// Default returns a Config with default values
func Default() *Config {
	return &Config{
		Format:  "text",
		Quiet:   false,
		Verbose: false,
		Defaults: DefaultsConfig{
			Percentage: 1,
		},
		Auth: AuthConfig{
			Mode: "default",
		},
		Job: JobConfig{
			Runbook:      "Set-SamplingPercentage",
			PollInterval: "10s",
		},
		Runs: RunsConfig{
			Keep: 20,
		},
	}
}

// Meta records where the loaded configuration came from
type Meta struct {
	ConfigFile string
}

// Load loads configuration from files and environment
// Config file search order (highest precedence first):
// 1. ./.azsam.yaml or ./.azsam.yml
// 2. ~/.azsam.yaml or ~/.azsam.yml
// 3. $XDG_CONFIG_HOME/azsam/config.yaml (or ~/.config/azsam/config.yaml)
// 4. /etc/azsam/config.yaml
func Load() (*Config, error) {
	cfg, _, err := LoadWithMeta()
	return cfg, err
}

// LoadWithMeta is Load plus provenance metadata for `config show`
func LoadWithMeta() (*Config, *Meta, error) {
	cfg := Default()
	meta := &Meta{}

	// Try to find and load config file in order of precedence
	configFile := findConfigFile()
	if configFile != "" {
		v := viper.New()
		v.SetConfigFile(configFile)

		if err := v.ReadInConfig(); err != nil {
			return nil, nil, err
		}

		if err := v.Unmarshal(cfg); err != nil {
			return nil, nil, err
		}
		meta.ConfigFile = configFile
	}

	// Override with environment variables
	applyEnvOverrides(cfg)

	return cfg, meta, nil
}

// findConfigFile searches for config file in standard locations
func findConfigFile() string {
	// Config file names to search for (in order)
	names := []string{".azsam.yaml", ".azsam.yml", "azsam.yaml", "azsam.yml"}

	// Get home directory
	home, homeErr := os.UserHomeDir()

	// Get config directory (XDG_CONFIG_HOME or ~/.config)
	configDir, configDirErr := os.UserConfigDir()

	// Search locations in order of precedence (highest first)
	var searchPaths []string

	// 1. Current directory
	cwd, err := os.Getwd()
	if err == nil {
		searchPaths = append(searchPaths, cwd)
	}

	// 2. Home directory
	if homeErr == nil {
		searchPaths = append(searchPaths, home)
	}

	// 3. Config directory (e.g., ~/.config/azsam/)
	if configDirErr == nil {
		searchPaths = append(searchPaths, filepath.Join(configDir, "azsam"))
	}

	// 4. System config
	searchPaths = append(searchPaths, "/etc/azsam")

	// Search for config file
	for _, dir := range searchPaths {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				return path
			}
		}
		// Also check for config.yaml in subdirs
		path := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// applyEnvOverrides applies environment variable overrides to config.
// Credential plumbing also honors the platform's own AZURE_* variables,
// these only cover tool behavior.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("AZSAM_FORMAT"); v != "" {
		cfg.Format = v
	}
	if v := os.Getenv("AZSAM_QUIET"); v == "true" || v == "1" {
		cfg.Quiet = true
	}
	if v := os.Getenv("AZSAM_VERBOSE"); v == "true" || v == "1" {
		cfg.Verbose = true
	}
	if v := os.Getenv("AZSAM_AUTH_MODE"); v != "" {
		cfg.Auth.Mode = v
	}
	if v := os.Getenv("AZSAM_CLIENT_ID"); v != "" {
		cfg.Auth.ClientID = v
	}
	if v := os.Getenv("AZSAM_TENANT_ID"); v != "" {
		cfg.Auth.TenantID = v
	}
	if v := os.Getenv("AZSAM_RUNS_DIR"); v != "" {
		cfg.Runs.Dir = v
	}
}

// LoadFromFile loads configuration from a specific file
func LoadFromFile(path string) (*Config, error) {
	v := viper.New()

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ConfigFile returns the path to the config file that would be loaded
func ConfigFile() string {
	return findConfigFile()
}

// ComputeSources maps each top-level setting to where its value came from:
// "flag", "config" or "default". Used by `config show` provenance output.
func ComputeSources(meta *Meta, flagsSet map[string]bool) map[string]string {
	fromFile := meta != nil && meta.ConfigFile != ""

	source := func(flag string) string {
		if flagsSet[flag] {
			return "flag"
		}
		if fromFile {
			return "config"
		}
		return "default"
	}

	return map[string]string{
		"format":  source("format"),
		"quiet":   source("quiet"),
		"verbose": source("verbose"),
	}
}
