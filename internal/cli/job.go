package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vburojevic/azsam/internal/automation"
	"github.com/vburojevic/azsam/internal/azure"
	"github.com/vburojevic/azsam/internal/config"
	"github.com/vburojevic/azsam/internal/domain"
	"github.com/vburojevic/azsam/internal/output"
)

// JobCmd groups the remote automation job commands
type JobCmd struct {
	Start JobStartCmd `cmd:"" help:"Start the sampling runbook as an automation job and follow its output"`
	Tail  JobTailCmd  `cmd:"" help:"Follow the output of an existing automation job"`
}

// jobTarget locates the automation account. Flags win over the job section
// of the config file.
type jobTarget struct {
	Subscription  string `help:"Subscription hosting the automation account"`
	ResourceGroup string `help:"Resource group of the automation account"`
	Account       string `help:"Automation account name"`
	TenantID      string `help:"Tenant of the automation subscription (defaults to the credential's home tenant)"`
}

func (t jobTarget) withConfig(jc config.JobConfig) jobTarget {
	if t.Subscription == "" {
		t.Subscription = jc.Subscription
	}
	if t.ResourceGroup == "" {
		t.ResourceGroup = jc.ResourceGroup
	}
	if t.Account == "" {
		t.Account = jc.Account
	}
	return t
}

func (t jobTarget) validate() error {
	var missing []string
	if t.Subscription == "" {
		missing = append(missing, "--subscription")
	}
	if t.ResourceGroup == "" {
		missing = append(missing, "--resource-group")
	}
	if t.Account == "" {
		missing = append(missing, "--account")
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("automation account not configured: missing %s", strings.Join(missing, ", "))
}

// jobConfig returns the effective job section
func jobConfig(globals *Globals) config.JobConfig {
	if globals.Config != nil {
		return globals.Config.Job
	}
	return config.Default().Job
}

// resolvePollInterval picks the tail poll interval: flag, then config,
// then the tailer default
func resolvePollInterval(flag time.Duration, jc config.JobConfig) (time.Duration, error) {
	if flag > 0 {
		return flag, nil
	}
	if jc.PollInterval == "" {
		return automation.DefaultPollInterval, nil
	}
	d, err := time.ParseDuration(jc.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("invalid job.poll_interval %q: %v", jc.PollInterval, err)
	}
	return d, nil
}

// automationFor builds the automation client for the resolved target
func (g *Globals) automationFor(t jobTarget) (AutomationAPI, error) {
	opts, err := credentialOptions(g)
	if err != nil {
		return nil, err
	}
	return g.NewAutomation(opts, t.Subscription, t.TenantID, t.ResourceGroup, t.Account)
}

// JobStartCmd starts the remote runbook
type JobStartCmd struct {
	jobTarget `embed:""`

	Runbook string            `help:"Runbook name (defaults to the configured runbook)"`
	Param   map[string]string `short:"P" help:"Runbook parameter as name=value (repeatable)"`
	NoWait  bool              `help:"Start the job and return without tailing"`
	Poll    time.Duration     `help:"Poll interval while tailing (defaults to the configured interval)"`
}

// Run executes the job start command
func (c *JobStartCmd) Run(globals *Globals) error {
	jc := jobConfig(globals)
	target := c.jobTarget.withConfig(jc)
	if err := target.validate(); err != nil {
		return outputErrorCommon(globals, "CONFIG_REQUIRED", err.Error(),
			"Add a job section to the config file or pass --subscription, --resource-group and --account")
	}

	runbook := c.Runbook
	if runbook == "" {
		runbook = jc.Runbook
	}
	if runbook == "" {
		return outputErrorCommon(globals, "CONFIG_REQUIRED", "no runbook configured",
			"Pass --runbook or set job.runbook in the config file")
	}

	poll, err := resolvePollInterval(c.Poll, jc)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_POLL_INTERVAL", err.Error())
	}

	api, err := globals.automationFor(target)
	if err != nil {
		return outputErrorCommon(globals, "AUTOMATION_FAILED", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	job, err := api.StartJob(ctx, runbook, c.Param)
	if err != nil {
		hint := ""
		if azure.IsAuthError(err) {
			hint = hintForAuth(err)
		}
		return outputErrorCommon(globals, "JOB_START_FAILED", err.Error(), hint)
	}

	emitter := output.NewEmitter(globals.Stdout)
	if globals.Format == "ndjson" {
		emitter.Job(&job)
	} else if !globals.Quiet {
		fmt.Fprintf(globals.Stdout, "Started job %s (runbook %s)\n", job.Name, job.Runbook)
	}

	if c.NoWait {
		return nil
	}
	return tailJob(ctx, globals, api, job.Name, poll)
}

// JobTailCmd follows an already running job
type JobTailCmd struct {
	jobTarget `embed:""`

	Name string        `arg:"" help:"Job name to follow"`
	Poll time.Duration `help:"Poll interval (defaults to the configured interval)"`
}

// Run executes the job tail command
func (c *JobTailCmd) Run(globals *Globals) error {
	jc := jobConfig(globals)
	target := c.jobTarget.withConfig(jc)
	if err := target.validate(); err != nil {
		return outputErrorCommon(globals, "CONFIG_REQUIRED", err.Error(),
			"Add a job section to the config file or pass --subscription, --resource-group and --account")
	}

	poll, err := resolvePollInterval(c.Poll, jc)
	if err != nil {
		return outputErrorCommon(globals, "INVALID_POLL_INTERVAL", err.Error())
	}

	api, err := globals.automationFor(target)
	if err != nil {
		return outputErrorCommon(globals, "AUTOMATION_FAILED", err.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return tailJob(ctx, globals, api, c.Name, poll)
}

// tailJob follows the job until it reaches a terminal status. Interrupt
// stops the tail, not the remote job.
func tailJob(ctx context.Context, globals *Globals, api AutomationAPI, name string, poll time.Duration) error {
	sink := &jobSink{
		globals: globals,
		emitter: output.NewEmitter(globals.Stdout),
		job:     name,
	}

	tailer := automation.NewTailer(api, sink, poll, globals.Log)
	err := tailer.Tail(ctx, name)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.Canceled):
		return outputErrorCommon(globals, "INTERRUPTED",
			fmt.Sprintf("stopped tailing job %s; the job keeps running remotely", name),
			fmt.Sprintf("Resume with `azsam job tail %s`", name))
	default:
		var failed *automation.JobFailedError
		if errors.As(err, &failed) {
			return outputErrorCommon(globals, "JOB_FAILED", err.Error())
		}
		return outputErrorCommon(globals, "TAIL_FAILED", err.Error())
	}
}

// jobSink renders tailer events in the active output format
type jobSink struct {
	globals *Globals
	emitter *output.Emitter
	job     string
}

func (s *jobSink) JobStatus(job domain.Job) {
	if s.globals.Format == "ndjson" {
		s.emitter.Job(&job)
		return
	}
	if s.globals.Quiet {
		return
	}
	fmt.Fprintf(s.globals.Stdout, "Job %s: %s\n", job.Name, job.Status)
}

func (s *jobSink) JobStream(entry domain.JobStreamEntry) {
	if s.globals.Format == "ndjson" {
		s.emitter.JobStream(s.job, &entry)
		return
	}

	line := entry.Text
	switch entry.Kind {
	case domain.JobStreamWarning:
		line = output.Styles.Warning.Render("warning:") + " " + line
	case domain.JobStreamError:
		line = output.Styles.Danger.Render("error:") + " " + line
	case domain.JobStreamVerbose, domain.JobStreamProgress:
		if s.globals.Quiet {
			return
		}
		line = output.Styles.Skipped.Render(strings.ToLower(string(entry.Kind))+":") + " " + line
	}
	fmt.Fprintln(s.globals.Stdout, line)
}

func (s *jobSink) Warning(message string) {
	emitWarning(s.globals, s.emitter, message)
}
