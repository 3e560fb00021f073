package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/vburojevic/azsam/internal/output"
	"github.com/vburojevic/azsam/internal/runlog"
)

// RunsCmd manages recorded run log files
type RunsCmd struct {
	List  RunsListCmd  `cmd:"" default:"1" help:"List recorded runs"`
	Show  RunsShowCmd  `cmd:"" help:"Show path to a recorded run"`
	Clean RunsCleanCmd `cmd:"" help:"Delete old run logs"`
}

// resolveRunsDir picks the run log directory: flag, then config, then the
// package default
func resolveRunsDir(globals *Globals, flag string) string {
	if flag != "" {
		return flag
	}
	if globals.Config != nil && globals.Config.Runs.Dir != "" {
		return globals.Config.Runs.Dir
	}
	return ""
}

// RunsListCmd lists recorded runs
type RunsListCmd struct {
	Dir   string `help:"Run log directory (default: ~/.azsam/runs)"`
	Limit int    `default:"20" help:"Max runs to show"`
}

// Run executes the runs list command
func (c *RunsListCmd) Run(globals *Globals) error {
	dir := resolveRunsDir(globals, c.Dir)
	runs, err := runlog.List(dir)
	if err != nil {
		return c.outputError(globals, "LIST_RUNS_ERROR", err.Error())
	}

	if len(runs) == 0 {
		if globals.Format == "ndjson" {
			output.NewNDJSONWriter(globals.Stdout).WriteInfo("No run logs found", "", "")
		} else {
			fmt.Fprintln(globals.Stdout, "No run logs found")
			if dir == "" {
				dir = runlog.DefaultDirPath()
			}
			fmt.Fprintf(globals.Stdout, "Run log directory: %s\n", dir)
		}
		return nil
	}

	// Limit output
	if c.Limit > 0 && len(runs) > c.Limit {
		runs = runs[:c.Limit]
	}

	if globals.Format == "ndjson" {
		for _, r := range runs {
			ro := RunOutput{
				Type:          "run_log",
				SchemaVersion: output.SchemaVersion,
				Path:          r.Path,
				Name:          r.Name,
				Timestamp:     r.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
				Size:          r.Size,
				Prefix:        r.Prefix,
			}
			data, _ := json.Marshal(ro)
			fmt.Fprintln(globals.Stdout, string(data))
		}
	} else {
		fmt.Fprintf(globals.Stdout, "Run logs (%d):\n", len(runs))
		for i, r := range runs {
			fmt.Fprintf(globals.Stdout, "  [%d] %s  %s  %s\n",
				i+1,
				r.Timestamp.Format("2006-01-02 15:04:05"),
				formatSize(r.Size),
				r.Name)
		}
		if dir == "" {
			dir = runlog.DefaultDirPath()
		}
		fmt.Fprintf(globals.Stdout, "\nDirectory: %s\n", dir)
	}

	return nil
}

func (c *RunsListCmd) outputError(globals *Globals, code, message string) error {
	return outputErrorCommon(globals, code, message)
}

// RunsShowCmd shows the path to a recorded run
type RunsShowCmd struct {
	Index  int    `arg:"" optional:"" help:"Run index from list (1-based)"`
	Dir    string `help:"Run log directory (default: ~/.azsam/runs)"`
	Latest bool   `help:"Show most recent run"`
}

// Run executes the runs show command
func (c *RunsShowCmd) Run(globals *Globals) error {
	dir := resolveRunsDir(globals, c.Dir)

	var run *runlog.File
	if c.Latest || c.Index == 0 {
		r, err := runlog.Latest(dir)
		if err != nil {
			return c.outputError(globals, "RUNS_ERROR", err.Error())
		}
		if r == nil {
			return c.outputError(globals, "NO_RUNS", "no run logs found")
		}
		run = r
	} else {
		runs, err := runlog.List(dir)
		if err != nil {
			return c.outputError(globals, "LIST_RUNS_ERROR", err.Error())
		}
		if len(runs) == 0 {
			return c.outputError(globals, "NO_RUNS", "no run logs found")
		}
		if c.Index < 1 || c.Index > len(runs) {
			return c.outputError(globals, "INVALID_INDEX",
				fmt.Sprintf("index %d out of range (1-%d)", c.Index, len(runs)))
		}
		run = &runs[c.Index-1]
	}

	if globals.Format == "ndjson" {
		ro := RunOutput{
			Type:          "run_log",
			SchemaVersion: output.SchemaVersion,
			Path:          run.Path,
			Name:          run.Name,
			Timestamp:     run.Timestamp.Format("2006-01-02T15:04:05Z07:00"),
			Size:          run.Size,
			Prefix:        run.Prefix,
		}
		data, _ := json.Marshal(ro)
		fmt.Fprintln(globals.Stdout, string(data))
	} else {
		// Just output the path for easy piping
		fmt.Fprintln(globals.Stdout, run.Path)
	}

	return nil
}

func (c *RunsShowCmd) outputError(globals *Globals, code, message string) error {
	return outputErrorCommon(globals, code, message)
}

// RunsCleanCmd deletes old run logs
type RunsCleanCmd struct {
	Dir    string `help:"Run log directory (default: ~/.azsam/runs)"`
	Keep   int    `default:"${config_keep}" help:"Number of runs to keep"`
	DryRun bool   `help:"Show what would be deleted without deleting"`
}

// Run executes the runs clean command
func (c *RunsCleanCmd) Run(globals *Globals) error {
	dir := resolveRunsDir(globals, c.Dir)

	if c.DryRun {
		runs, err := runlog.List(dir)
		if err != nil {
			return c.outputError(globals, "LIST_RUNS_ERROR", err.Error())
		}

		if len(runs) <= c.Keep {
			if globals.Format == "ndjson" {
				output.NewNDJSONWriter(globals.Stdout).WriteInfo(
					fmt.Sprintf("Nothing to clean (have %d, keeping %d)", len(runs), c.Keep), "", "")
			} else {
				fmt.Fprintf(globals.Stdout, "Nothing to clean (have %d run(s), keeping %d)\n", len(runs), c.Keep)
			}
			return nil
		}

		toDelete := runs[c.Keep:]
		if globals.Format == "ndjson" {
			w := output.NewNDJSONWriter(globals.Stdout)
			for _, r := range toDelete {
				w.WriteInfo(fmt.Sprintf("Would delete: %s", r.Name), "", "")
			}
		} else {
			fmt.Fprintf(globals.Stdout, "Would delete %d run(s):\n", len(toDelete))
			for _, r := range toDelete {
				fmt.Fprintf(globals.Stdout, "  %s\n", r.Name)
			}
		}
		return nil
	}

	deleted, err := runlog.Clean(dir, c.Keep)
	if err != nil {
		return c.outputError(globals, "CLEAN_ERROR", err.Error())
	}

	if len(deleted) == 0 {
		if globals.Format == "ndjson" {
			output.NewNDJSONWriter(globals.Stdout).WriteInfo("No runs to clean", "", "")
		} else {
			fmt.Fprintln(globals.Stdout, "No runs to clean")
		}
		return nil
	}

	if globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteInfo(
			fmt.Sprintf("Deleted %d run(s)", len(deleted)), "", "")
	} else {
		fmt.Fprintf(globals.Stdout, "Deleted %d run(s):\n", len(deleted))
		for _, p := range deleted {
			fmt.Fprintf(globals.Stdout, "  %s\n", filepath.Base(p))
		}
	}

	return nil
}

func (c *RunsCleanCmd) outputError(globals *Globals, code, message string) error {
	return outputErrorCommon(globals, code, message)
}

// RunOutput is the NDJSON output format for run log info
type RunOutput struct {
	Type          string `json:"type"`
	SchemaVersion int    `json:"schemaVersion"`
	Path          string `json:"path"`
	Name          string `json:"name"`
	Timestamp     string `json:"timestamp"`
	Size          int64  `json:"size"`
	Prefix        string `json:"prefix,omitempty"`
}

// formatSize formats bytes into human-readable format
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return strconv.FormatInt(bytes, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
