package cli

import (
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/vburojevic/azsam/internal/azure"
	"github.com/vburojevic/azsam/internal/config"
	"github.com/vburojevic/azsam/internal/output"
	"github.com/vburojevic/azsam/internal/sampler"
)

// CLI is the root command structure for azsam
type CLI struct {
	// Global flags
	Format  string `short:"f" default:"${config_format}" enum:"text,ndjson" help:"Output format"`
	Quiet   bool   `short:"q" help:"Suppress non-essential warnings and info"`
	Verbose bool   `short:"v" help:"Show debug output (credential resolution, request detail)"`

	// Commands
	Apply      ApplyCmd      `cmd:"" help:"Set the ingestion sampling percentage on every telemetry resource"`
	List       ListCmd       `cmd:"" help:"List subscriptions discovered across all reachable tenants"`
	Components ComponentsCmd `cmd:"" help:"List telemetry resources in one subscription"`
	Pick       PickCmd       `cmd:"" help:"Interactively pick subscriptions, then run the update"`
	Job        JobCmd        `cmd:"" help:"Start or tail a remote automation job"`
	Runs       RunsCmd       `cmd:"" help:"Manage recorded run log files"`
	Doctor     DoctorCmd     `cmd:"" help:"Check credentials and configuration"`
	Config     ConfigCmd     `cmd:"" help:"Show or manage configuration"`
	Version    VersionCmd    `cmd:"" help:"Show version information"`
}

// Globals holds shared state for all commands
type Globals struct {
	Format  string
	Quiet   bool
	Verbose bool
	Stdout  io.Writer
	Stderr  io.Writer
	Config  *config.Config
	Log     *zap.Logger

	// Provenance recorded by main so `config show` can explain itself
	FlagsSet      map[string]bool
	ConfigFile    string
	ConfigSources map[string]string

	// Client factories. Tests swap these for fakes.
	NewManagement func(opts azure.Options) sampler.ManagementAPI
	NewAutomation func(opts azure.Options, subscriptionID, tenantID, resourceGroup, account string) (AutomationAPI, error)
}

// NewGlobals creates a new Globals instance from CLI flags
func NewGlobals(cli *CLI) *Globals {
	return NewGlobalsWithConfig(cli, config.Default())
}

// NewGlobalsWithConfig creates a new Globals instance with config fallbacks
func NewGlobalsWithConfig(cli *CLI, cfg *config.Config) *Globals {
	g := &Globals{
		Format:        cli.Format,
		Quiet:         cli.Quiet,
		Verbose:       cli.Verbose,
		Stdout:        os.Stdout,
		Stderr:        os.Stderr,
		Config:        cfg,
		NewManagement: newManagementClient,
		NewAutomation: newAutomationClient,
	}

	// Apply config values if CLI flags weren't explicitly set
	if cfg != nil {
		if !cli.Quiet && cfg.Quiet {
			g.Quiet = cfg.Quiet
		}
		if !cli.Verbose && cfg.Verbose {
			g.Verbose = cfg.Verbose
		}
	}

	g.Log = newLogger(g.Verbose)
	return g
}

// newLogger builds the debug logger behind --verbose. Non-verbose runs get
// a nop logger; user-facing output never goes through it.
func newLogger(verbose bool) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.OutputPaths = []string{"stderr"}
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}

// Debug logs a formatted debug line if verbose mode is enabled
func (g *Globals) Debug(format string, args ...interface{}) {
	if g.Verbose && g.Log != nil {
		g.Log.Sugar().Debugf(format, args...)
	}
}

// VersionCmd shows version information
type VersionCmd struct{}

// Run executes the version command
func (v *VersionCmd) Run(globals *Globals) error {
	if globals.Format == "ndjson" {
		return output.NewEmitter(globals.Stdout).Metadata(Version, Commit, Date)
	}
	_, err := io.WriteString(globals.Stdout, "azsam version "+Version+" ("+Commit+")\n")
	return err
}

// Version information (set at build time)
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)
