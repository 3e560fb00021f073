package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vburojevic/azsam/internal/config"
	"github.com/vburojevic/azsam/internal/output"
)

// ConfigCmd shows or manages configuration
type ConfigCmd struct {
	Show     ConfigShowCmd     `cmd:"" default:"withargs" help:"Show current configuration"`
	Path     ConfigPathCmd     `cmd:"" help:"Show configuration file path"`
	Generate ConfigGenerateCmd `cmd:"" help:"Generate sample configuration file"`
}

// ConfigShowCmd shows current configuration
type ConfigShowCmd struct{}

// Run executes the config show command
func (c *ConfigShowCmd) Run(globals *Globals) error {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}

	if globals.Format == "ndjson" {
		out := map[string]interface{}{
			"type":          "config",
			"schemaVersion": output.SchemaVersion,
			"format":        cfg.Format,
			"quiet":         cfg.Quiet,
			"verbose":       cfg.Verbose,
			"defaults":      cfg.Defaults,
			"auth":          cfg.Auth,
			"job":           cfg.Job,
			"runs":          cfg.Runs,
		}
		if globals.ConfigFile != "" {
			out["config_file"] = globals.ConfigFile
		}
		if len(globals.ConfigSources) > 0 {
			out["sources"] = globals.ConfigSources
		}
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(out)
	}

	// Text output. Provenance markers show whether a value came from a
	// flag, the config file or the built-in default.
	src := func(key string) string {
		if s, ok := globals.ConfigSources[key]; ok {
			return "  (" + s + ")"
		}
		return ""
	}

	fmt.Fprintln(globals.Stdout, "Current Configuration:")
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintf(globals.Stdout, "  format:  %s%s\n", globals.Format, src("format"))
	fmt.Fprintf(globals.Stdout, "  quiet:   %v%s\n", globals.Quiet, src("quiet"))
	fmt.Fprintf(globals.Stdout, "  verbose: %v%s\n", globals.Verbose, src("verbose"))
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "Defaults:")
	fmt.Fprintf(globals.Stdout, "  percentage: %d\n", cfg.Defaults.Percentage)
	if len(cfg.Defaults.Include) > 0 {
		fmt.Fprintf(globals.Stdout, "  include:    %s\n", strings.Join(cfg.Defaults.Include, ", "))
	}
	if len(cfg.Defaults.Exclude) > 0 {
		fmt.Fprintf(globals.Stdout, "  exclude:    %s\n", strings.Join(cfg.Defaults.Exclude, ", "))
	}
	if len(cfg.Defaults.Tenants) > 0 {
		fmt.Fprintf(globals.Stdout, "  tenants:    %s\n", strings.Join(cfg.Defaults.Tenants, ", "))
	}
	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "Auth:")
	fmt.Fprintf(globals.Stdout, "  mode:      %s\n", cfg.Auth.Mode)
	if cfg.Auth.ClientID != "" {
		fmt.Fprintf(globals.Stdout, "  client_id: %s\n", cfg.Auth.ClientID)
	}
	if cfg.Auth.TenantID != "" {
		fmt.Fprintf(globals.Stdout, "  tenant_id: %s\n", cfg.Auth.TenantID)
	}

	if cfg.Job.Subscription != "" || cfg.Job.Account != "" {
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintln(globals.Stdout, "Job:")
		fmt.Fprintf(globals.Stdout, "  subscription:   %s\n", cfg.Job.Subscription)
		fmt.Fprintf(globals.Stdout, "  resource_group: %s\n", cfg.Job.ResourceGroup)
		fmt.Fprintf(globals.Stdout, "  account:        %s\n", cfg.Job.Account)
		fmt.Fprintf(globals.Stdout, "  runbook:        %s\n", cfg.Job.Runbook)
		fmt.Fprintf(globals.Stdout, "  poll_interval:  %s\n", cfg.Job.PollInterval)
	}

	fmt.Fprintln(globals.Stdout, "")
	fmt.Fprintln(globals.Stdout, "Runs:")
	if cfg.Runs.Dir != "" {
		fmt.Fprintf(globals.Stdout, "  dir:  %s\n", cfg.Runs.Dir)
	}
	fmt.Fprintf(globals.Stdout, "  keep: %d\n", cfg.Runs.Keep)

	if path := configFilePath(globals); path != "" {
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintf(globals.Stdout, "Loaded from: %s\n", path)
	}

	return nil
}

// configFilePath prefers the file main actually loaded over a fresh probe
func configFilePath(globals *Globals) string {
	if globals.ConfigFile != "" {
		return globals.ConfigFile
	}
	return config.ConfigFile()
}

// ConfigPathCmd shows config file path
type ConfigPathCmd struct{}

// Run executes the config path command
func (c *ConfigPathCmd) Run(globals *Globals) error {
	path := configFilePath(globals)

	if globals.Format == "ndjson" {
		out := map[string]interface{}{
			"type":          "config_path",
			"schemaVersion": output.SchemaVersion,
			"path":          path,
		}
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(out)
	}

	if path == "" {
		fmt.Fprintln(globals.Stdout, "No configuration file found")
		fmt.Fprintln(globals.Stdout, "")
		fmt.Fprintln(globals.Stdout, "Create one at:")
		fmt.Fprintln(globals.Stdout, "  ~/.azsam.yaml")
		fmt.Fprintln(globals.Stdout, "  ./.azsam.yaml")
		fmt.Fprintln(globals.Stdout, "  ~/.config/azsam/config.yaml")
	} else {
		fmt.Fprintf(globals.Stdout, "Config file: %s\n", path)
	}

	return nil
}

// ConfigGenerateCmd generates a sample configuration file
type ConfigGenerateCmd struct{}

// Run executes the config generate command
func (c *ConfigGenerateCmd) Run(globals *Globals) error {
	sampleConfig := `# azsam configuration file
# Place this file at ~/.azsam.yaml, ./.azsam.yaml or ~/.config/azsam/config.yaml

# Output format: "text" (default) or "ndjson"
format: text

# Suppress non-essential warnings and info
quiet: false

# Enable verbose/debug output
verbose: false

# Default values for apply and pick
defaults:
  # Sampling percentage applied when -p is omitted (0-100)
  percentage: 1

  # Only target these subscriptions (exact id or name, case-insensitive)
  # include:
  #   - prod-payments
  #   - 00000000-0000-0000-0000-000000000000

  # Never target these subscriptions
  # exclude:
  #   - prod-core

  # Only consider these tenants (id or domain)
  # tenants:
  #   - contoso.onmicrosoft.com

# Credential selection
auth:
  # "default" walks the standard credential chain (environment, managed
  # identity, CLI). "managed-identity" goes straight to the
  # platform-assigned identity.
  mode: default

  # Pin a user-assigned managed identity
  # client_id: 00000000-0000-0000-0000-000000000000

  # Pin the tenant used for token requests
  # tenant_id: 00000000-0000-0000-0000-000000000000

# Automation account hosting the remote runbook (azsam job start/tail)
# job:
#   subscription: 00000000-0000-0000-0000-000000000000
#   resource_group: rg-operations
#   account: aa-operations
#   runbook: Set-SamplingPercentage
#   poll_interval: 10s

# Recorded run logs (azsam apply --run-log, azsam runs)
runs:
  # dir: ~/.azsam/runs
  keep: 20
`

	fmt.Fprint(globals.Stdout, sampleConfig)
	return nil
}
