package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/vburojevic/azsam/internal/domain"
	"github.com/vburojevic/azsam/internal/output"
)

// ComponentsCmd lists the telemetry resources in one subscription
type ComponentsCmd struct {
	Subscription string `arg:"" help:"Subscription id or name"`
}

// Run executes the components command
func (c *ComponentsCmd) Run(globals *Globals) error {
	ctx := context.Background()

	subs, err := discoverSorted(ctx, globals, nil)
	if err != nil {
		return runError(globals, err)
	}

	sub, ok := findSubscription(subs, c.Subscription)
	if !ok {
		return c.outputError(globals, "SUBSCRIPTION_NOT_FOUND",
			fmt.Sprintf("no subscription matches %q by id or name", c.Subscription),
			"Run `azsam list` to see the subscriptions the identity can reach")
	}

	api, err := globals.management()
	if err != nil {
		return c.outputError(globals, "INVALID_AUTH_MODE", err.Error())
	}
	scope, err := api.Scope(sub.ID, sub.TenantID)
	if err != nil {
		return c.outputError(globals, "SCOPE_FAILED",
			fmt.Sprintf("switching to subscription %s failed: %v", sub.ID, err))
	}

	resources, err := scope.ListTelemetryResources(ctx)
	if err != nil {
		return c.outputError(globals, "LIST_FAILED", err.Error())
	}

	if globals.Format == "ndjson" {
		w := output.NewNDJSONWriter(globals.Stdout)
		for _, res := range resources {
			if err := w.WriteResource(sub.ID, "current", &res); err != nil {
				return err
			}
		}
		return nil
	}

	fmt.Fprintf(globals.Stdout, "%s (%s)\n", sub.Name, sub.TenantDomain)
	if len(resources) == 0 {
		fmt.Fprintln(globals.Stdout, "    (no telemetry resources)")
		return nil
	}

	table := tablewriter.NewWriter(globals.Stdout)
	table.Header([]string{"Resource", "Resource Group", "Sampling %", "Location"})
	for _, res := range resources {
		table.Append([]string{res.Name, res.ResourceGroup, formatPercent(res.SamplingPercentage), res.Location})
	}
	table.Render()
	return nil
}

func (c *ComponentsCmd) outputError(globals *Globals, code, message string, hint ...string) error {
	return outputErrorCommon(globals, code, message, hint...)
}

// findSubscription matches by exact case-insensitive id or name, the same
// equality the include/exclude filters use
func findSubscription(subs []domain.Subscription, term string) (domain.Subscription, bool) {
	for _, sub := range subs {
		if strings.EqualFold(sub.ID, term) || strings.EqualFold(sub.Name, term) {
			return sub, true
		}
	}
	return domain.Subscription{}, false
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
