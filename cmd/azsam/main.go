package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/alecthomas/kong"

	"github.com/vburojevic/azsam/internal/cli"
	"github.com/vburojevic/azsam/internal/config"
)

const quickStart = `azsam - ingestion sampling control for Application Insights

START HERE (safe, changes nothing):
  azsam apply --dry-run

Flags:
  -p    Target sampling percentage 0-100 (default 1)
  -n    Dry run: report what would change without changing it

Other useful commands:
  azsam list                            List reachable subscriptions
  azsam apply -p 5 -i payments-prod     Update one subscription
  azsam pick                            Choose subscriptions interactively
  azsam doctor                          Check credentials and configuration
`

func main() {
	// Show quick start if no args provided
	if len(os.Args) == 1 {
		fmt.Print(quickStart)
		return
	}

	// Load configuration from files/environment (plus provenance metadata).
	cfg, meta, err := config.LoadWithMeta()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load config: %v\n", err)
		cfg = config.Default()
		meta = nil
	}

	var c cli.CLI

	// Apply config defaults before parsing
	// These will be overridden by CLI flags if specified
	vars := kong.Vars{
		"config_format":     cfg.Format,
		"config_percentage": strconv.Itoa(cfg.Defaults.Percentage),
		"config_keep":       strconv.Itoa(cfg.Runs.Keep),
	}

	ctx := kong.Parse(&c,
		kong.Name("azsam"),
		kong.Description("azsam: set the ingestion sampling percentage on every Application Insights component the identity can reach\n\nSTART HERE: azsam apply --dry-run"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}),
		vars,
	)

	// Create globals with config fallbacks
	globals := cli.NewGlobalsWithConfig(&c, cfg)
	// Record which flags were explicitly provided so commands can distinguish
	// CLI overrides from config defaults.
	flagsSet := map[string]bool{}
	for _, p := range ctx.Path {
		if p.Flag != nil {
			flagsSet[p.Flag.Name] = true
		}
	}
	globals.FlagsSet = flagsSet
	if meta != nil {
		globals.ConfigFile = meta.ConfigFile
		globals.ConfigSources = config.ComputeSources(meta, flagsSet)
	} else {
		globals.ConfigSources = config.ComputeSources(nil, flagsSet)
	}
	err = ctx.Run(globals)
	if err != nil {
		os.Exit(1)
	}
}
