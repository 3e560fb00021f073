package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"

	"github.com/vburojevic/azsam/internal/config"
	"github.com/vburojevic/azsam/internal/filter"
	"github.com/vburojevic/azsam/internal/output"
	"github.com/vburojevic/azsam/internal/report"
	"github.com/vburojevic/azsam/internal/runlog"
	"github.com/vburojevic/azsam/internal/sampler"
)

// ApplyCmd updates the sampling percentage on every telemetry resource in
// every targeted subscription
type ApplyCmd struct {
	Percentage int      `short:"p" default:"${config_percentage}" help:"Target sampling percentage (0-100)"`
	Include    []string `short:"i" help:"Only target subscriptions matching this id or name, case-insensitive (repeatable)"`
	Exclude    []string `short:"x" help:"Drop subscriptions matching this id or name, case-insensitive (repeatable)"`
	Tenant     []string `help:"Only consider these tenants by id or domain (repeatable)"`
	DryRun     bool     `short:"n" help:"Report intended changes without applying them"`
	Output     string   `short:"o" help:"Write the run's NDJSON events to this file"`
	RunLog     bool     `help:"Record the run's NDJSON events under the runs directory"`
}

// Run executes the apply command
func (c *ApplyCmd) Run(globals *Globals) error {
	if c.Percentage < 0 || c.Percentage > 100 {
		return c.outputError(globals, "INVALID_PERCENTAGE",
			fmt.Sprintf("percentage must be between 0 and 100, got %d", c.Percentage))
	}
	applyFilterDefaults(globals.Config, c)

	api, err := globals.management()
	if err != nil {
		return c.outputError(globals, "INVALID_AUTH_MODE", err.Error())
	}

	rep, cleanup, err := buildReporter(globals, c.Output, c.RunLog, "apply")
	if err != nil {
		return c.outputError(globals, "RUN_LOG_ERROR", err.Error())
	}
	defer cleanup()

	runner := sampler.NewRunner(api, rep, globals.Log)
	_, err = runner.Run(context.Background(), sampler.Params{
		Target: float64(c.Percentage),
		DryRun: c.DryRun,
		Filter: filter.Options{
			Include: c.Include,
			Exclude: c.Exclude,
			Tenants: c.Tenant,
		},
	})
	if err != nil {
		return runError(globals, err)
	}
	return nil
}

func (c *ApplyCmd) outputError(globals *Globals, code, message string, hint ...string) error {
	return outputErrorCommon(globals, code, message, hint...)
}

// applyFilterDefaults fills selection lists from config when flags are
// absent. Flags replace, never merge.
func applyFilterDefaults(cfg *config.Config, c *ApplyCmd) {
	if cfg == nil {
		return
	}
	if len(c.Include) == 0 {
		c.Include = cfg.Defaults.Include
	}
	if len(c.Exclude) == 0 {
		c.Exclude = cfg.Defaults.Exclude
	}
	if len(c.Tenant) == 0 {
		c.Tenant = cfg.Defaults.Tenants
	}
}

// buildReporter assembles the console reporter plus, when asked, an NDJSON
// run log file. The file always records NDJSON regardless of the console
// format.
func buildReporter(globals *Globals, path string, runLog bool, prefix string) (sampler.Reporter, func(), error) {
	var reps []sampler.Reporter
	if globals.Format == "ndjson" {
		reps = append(reps, report.NewNDJSON(globals.Stdout))
	} else {
		t := report.NewText(globals.Stdout)
		t.Quiet = globals.Quiet
		reps = append(reps, t)
	}

	cleanup := func() {}
	if path == "" && runLog {
		dir := ""
		if globals.Config != nil {
			dir = globals.Config.Runs.Dir
		}
		generated, err := runlog.GeneratePath(dir, prefix)
		if err != nil {
			return nil, nil, err
		}
		path = generated
	}

	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create run log: %w", err)
		}
		bw := bufio.NewWriter(f)
		reps = append(reps, report.NewNDJSON(bw))
		cleanup = func() {
			if err := bw.Flush(); err != nil {
				globals.Debug("failed to flush run log: %v", err)
			}
			if err := f.Close(); err != nil {
				globals.Debug("failed to close run log: %v", err)
			}
		}
		emitInfo(globals, output.NewEmitter(globals.Stdout), fmt.Sprintf("Recording run to %s", path))
	}

	if len(reps) == 1 {
		return reps[0], cleanup, nil
	}
	return report.NewMulti(reps...), cleanup, nil
}
