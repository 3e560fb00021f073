package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vburojevic/azsam/internal/azure"
	"github.com/vburojevic/azsam/internal/config"
	"github.com/vburojevic/azsam/internal/output"
	"github.com/vburojevic/azsam/internal/runlog"
	"github.com/vburojevic/azsam/internal/sampler"
)

// DoctorCmd checks credentials and configuration
type DoctorCmd struct{}

// checkResult represents a single diagnostic check
type checkResult struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Message string `json:"message,omitempty"`
	Details string `json:"details,omitempty"`
}

// doctorReport is the complete diagnostic report
type doctorReport struct {
	Type          string        `json:"type"`
	SchemaVersion int           `json:"schemaVersion"`
	Timestamp     string        `json:"timestamp"`
	Checks        []checkResult `json:"checks"`
	AllPassed     bool          `json:"all_passed"`
	ErrorCount    int           `json:"error_count"`
	WarnCount     int           `json:"warn_count"`
}

// Run executes the doctor command
func (c *DoctorCmd) Run(globals *Globals) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var checks []checkResult

	// Check config file
	checks = append(checks, c.checkConfig())

	// Check credential
	checks = append(checks, c.checkCredential(ctx, globals))

	// Check tenant and subscription visibility
	checks = append(checks, c.checkDiscovery(ctx, globals))

	// Check run log directory
	checks = append(checks, c.checkRunsDir(globals))

	// Check job configuration
	checks = append(checks, c.checkJobConfig(globals))

	// Count errors and warnings
	errorCount := 0
	warnCount := 0
	for _, check := range checks {
		if check.Status == "error" {
			errorCount++
		} else if check.Status == "warning" {
			warnCount++
		}
	}

	report := doctorReport{
		Type:          "doctor",
		SchemaVersion: output.SchemaVersion,
		Timestamp:     time.Now().Format(time.RFC3339),
		Checks:        checks,
		AllPassed:     errorCount == 0,
		ErrorCount:    errorCount,
		WarnCount:     warnCount,
	}

	if globals.Format == "ndjson" {
		encoder := json.NewEncoder(globals.Stdout)
		return encoder.Encode(report)
	}

	// Text output
	fmt.Fprintln(globals.Stdout, "azsam Doctor")
	fmt.Fprintln(globals.Stdout, "============")
	fmt.Fprintln(globals.Stdout)

	for _, check := range checks {
		var icon string
		switch check.Status {
		case "ok":
			icon = "✓"
		case "warning":
			icon = "⚠"
		case "error":
			icon = "✗"
		}

		fmt.Fprintf(globals.Stdout, "%s %s\n", icon, check.Name)
		if check.Message != "" {
			fmt.Fprintf(globals.Stdout, "  %s\n", check.Message)
		}
		if check.Details != "" {
			fmt.Fprintf(globals.Stdout, "  %s\n", check.Details)
		}
	}

	fmt.Fprintln(globals.Stdout)
	if errorCount == 0 && warnCount == 0 {
		fmt.Fprintln(globals.Stdout, "All checks passed!")
	} else {
		fmt.Fprintf(globals.Stdout, "Errors: %d, Warnings: %d\n", errorCount, warnCount)
	}

	return nil
}

func (c *DoctorCmd) checkConfig() checkResult {
	configPath := config.ConfigFile()
	if configPath == "" {
		return checkResult{
			Name:    "Config",
			Status:  "ok",
			Message: "Using defaults (no config file)",
			Details: "Create with: azsam config generate > ~/.azsam.yaml",
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return checkResult{
			Name:    "Config",
			Status:  "error",
			Message: "Config file has errors",
			Details: err.Error(),
		}
	}

	absPath, _ := filepath.Abs(configPath)
	return checkResult{
		Name:    "Config",
		Status:  "ok",
		Message: fmt.Sprintf("Loaded from: %s", absPath),
		Details: fmt.Sprintf("Format: %s, Auth mode: %s", cfg.Format, cfg.Auth.Mode),
	}
}

func (c *DoctorCmd) checkCredential(ctx context.Context, globals *Globals) checkResult {
	api, err := globals.management()
	if err != nil {
		return checkResult{
			Name:    "Credential",
			Status:  "error",
			Message: "Credential could not be built",
			Details: err.Error(),
		}
	}

	if err := api.Verify(ctx); err != nil {
		return checkResult{
			Name:    "Credential",
			Status:  "error",
			Message: "Token acquisition failed",
			Details: azure.ErrorMessage(err),
		}
	}

	mode := "default"
	if globals.Config != nil && globals.Config.Auth.Mode != "" {
		mode = globals.Config.Auth.Mode
	}
	return checkResult{
		Name:    "Credential",
		Status:  "ok",
		Message: fmt.Sprintf("Token acquired (mode: %s)", mode),
	}
}

func (c *DoctorCmd) checkDiscovery(ctx context.Context, globals *Globals) checkResult {
	api, err := globals.management()
	if err != nil {
		return checkResult{
			Name:    "Discovery",
			Status:  "error",
			Message: "Credential could not be built",
			Details: err.Error(),
		}
	}

	subs, warnings, err := sampler.Discover(ctx, api, globals.Log)
	if err != nil {
		return checkResult{
			Name:    "Discovery",
			Status:  "error",
			Message: "Subscription enumeration failed",
			Details: err.Error(),
		}
	}

	tenants := make(map[string]struct{})
	for _, sub := range subs {
		tenants[sub.TenantID] = struct{}{}
	}

	if len(subs) == 0 {
		return checkResult{
			Name:    "Discovery",
			Status:  "warning",
			Message: "No subscriptions visible",
			Details: "The identity needs Reader access on at least one subscription",
		}
	}

	result := checkResult{
		Name:    "Discovery",
		Status:  "ok",
		Message: fmt.Sprintf("%d subscription(s) across %d tenant(s)", len(subs), len(tenants)),
	}
	if len(warnings) > 0 {
		result.Status = "warning"
		result.Details = fmt.Sprintf("%d tenant(s) skipped during enumeration; run `azsam list` for details", len(warnings))
	}
	return result
}

func (c *DoctorCmd) checkRunsDir(globals *Globals) checkResult {
	dir := resolveRunsDir(globals, "")
	if dir == "" {
		dir = runlog.DefaultDirPath()
	}

	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return checkResult{
			Name:    "Run logs",
			Status:  "ok",
			Message: "Directory not created yet",
			Details: fmt.Sprintf("Will be created at %s on first --run-log", dir),
		}
	}

	if !c.checkWritePermission(dir) {
		return checkResult{
			Name:    "Run logs",
			Status:  "warning",
			Message: fmt.Sprintf("Directory not writable: %s", dir),
			Details: "Recording runs with --run-log will fail",
		}
	}

	return checkResult{
		Name:    "Run logs",
		Status:  "ok",
		Message: dir,
	}
}

func (c *DoctorCmd) checkJobConfig(globals *Globals) checkResult {
	jc := jobConfig(globals)
	target := jobTarget{}.withConfig(jc)
	if err := target.validate(); err != nil {
		return checkResult{
			Name:    "Automation job",
			Status:  "warning",
			Message: "Job section not configured (job commands need it)",
			Details: err.Error(),
		}
	}

	return checkResult{
		Name:    "Automation job",
		Status:  "ok",
		Message: fmt.Sprintf("Account %s in %s", jc.Account, jc.Subscription),
		Details: fmt.Sprintf("Runbook: %s", jc.Runbook),
	}
}

// checkWritePermission checks if we can write to a directory
func (c *DoctorCmd) checkWritePermission(path string) bool {
	testFile := filepath.Join(path, ".azsam_test_"+fmt.Sprint(os.Getpid()))
	f, err := os.Create(testFile)
	if err != nil {
		return false
	}
	f.Close()
	os.Remove(testFile)
	return true
}
