package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/vburojevic/azsam/internal/domain"
	"github.com/vburojevic/azsam/internal/output"
	"github.com/vburojevic/azsam/internal/sampler"
)

// Text renders the run as human-readable tables and status lines
type Text struct {
	w io.Writer
	// Quiet suppresses non-essential warnings, never tables or errors
	Quiet bool
}

var _ sampler.Reporter = (*Text)(nil)

// NewText creates a text reporter
func NewText(w io.Writer) *Text {
	return &Text{w: w}
}

func (t *Text) RunStart(target float64, dryRun bool, totalTargets int) {
	mode := ""
	if dryRun {
		mode = " " + output.Styles.WouldUpdate.Render("(dry-run, nothing will change)")
	}
	fmt.Fprintf(t.w, "Target sampling: %s%%%s across %d subscription(s)\n",
		formatPct(target), mode, totalTargets)
}

func (t *Text) DiscoveryWarning(warn domain.DiscoveryWarning) {
	if t.Quiet {
		return
	}
	fmt.Fprintf(t.w, "%s %s\n", output.Styles.Warning.Render("Warning:"), warn.Message)
}

func (t *Text) Subscription(sub domain.Subscription, index, total int) {
	name := output.Styles.Subscription.Render(sub.Name)
	tenant := output.Styles.Tenant.Render(sub.TenantDomain)
	fmt.Fprintf(t.w, "\n[%d/%d] %s (%s)\n", index, total, name, tenant)
}

func (t *Text) Result(res domain.SubscriptionResult) {
	if res.Skipped {
		fmt.Fprintf(t.w, "  %s %s\n", output.Styles.Failed.Render("Skipped:"), res.Error)
		return
	}

	fmt.Fprintln(t.w, "  Before:")
	t.renderTable(res.Before)

	for _, action := range res.Actions {
		t.renderAction(action)
	}

	if res.After != nil {
		fmt.Fprintln(t.w, "  After:")
		t.renderTable(res.After)
	}

	if res.Error != "" {
		fmt.Fprintf(t.w, "  %s %s\n", output.Styles.Warning.Render("Warning:"), res.Error)
	}
}

func (t *Text) renderTable(resources []domain.TelemetryResource) {
	if len(resources) == 0 {
		fmt.Fprintln(t.w, "    (no telemetry resources)")
		return
	}

	table := tablewriter.NewWriter(t.w)
	table.Header([]string{"Resource", "Resource Group", "Sampling %"})
	for _, r := range resources {
		table.Append([]string{r.Name, r.ResourceGroup, formatPct(r.SamplingPercentage)})
	}
	table.Render()
}

func (t *Text) renderAction(action domain.ResourceAction) {
	indicator := output.StatusIndicator(action.Status)
	line := fmt.Sprintf("  %s %s: %s%% -> %s%%",
		indicator, action.Resource, formatPct(action.Before), formatPct(action.Target))
	if action.Error != "" {
		line += " (" + action.Error + ")"
	}
	fmt.Fprintln(t.w, line)
}

func (t *Text) Summary(summary *domain.RunSummary) {
	verb := "updated"
	count := summary.Updated
	if summary.DryRun {
		verb = "would update"
		count = summary.WouldUpdate
	}
	fmt.Fprintf(t.w, "\nSummary: %d subscription(s), %d resource(s), %d %s, %d failed, %d skipped\n",
		summary.Subscriptions, summary.Resources, count, verb,
		summary.Failed, summary.SkippedSubscriptions)
}

func (t *Text) Done(hasFailures bool) {
	fmt.Fprintf(t.w, "Done. %s\n", output.RunStatusText(hasFailures))
}

// formatPct renders a percentage without trailing zero noise
func formatPct(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
