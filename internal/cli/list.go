package cli

import (
	"context"
	"fmt"

	"github.com/olekukonko/tablewriter"

	"github.com/vburojevic/azsam/internal/domain"
	"github.com/vburojevic/azsam/internal/filter"
	"github.com/vburojevic/azsam/internal/output"
	"github.com/vburojevic/azsam/internal/sampler"
)

// ListCmd lists the subscriptions the identity can reach, in run order
type ListCmd struct {
	Tenant []string `help:"Only list subscriptions from these tenants by id or domain (repeatable)"`
}

// Run executes the list command
func (c *ListCmd) Run(globals *Globals) error {
	ctx := context.Background()

	subs, err := discoverSorted(ctx, globals, c.Tenant)
	if err != nil {
		return runError(globals, err)
	}

	if globals.Format == "ndjson" {
		return c.outputNDJSON(globals, subs)
	}
	return c.outputText(globals, subs)
}

// discoverSorted is the shared discovery front half of list, components
// and pick: verify, enumerate, optionally narrow by tenant, sort.
func discoverSorted(ctx context.Context, globals *Globals, tenants []string) ([]domain.Subscription, error) {
	api, err := globals.management()
	if err != nil {
		return nil, outputErrorCommon(globals, "INVALID_AUTH_MODE", err.Error())
	}

	if err := api.Verify(ctx); err != nil {
		return nil, &sampler.AuthError{Err: err}
	}

	subs, warnings, err := sampler.Discover(ctx, api, globals.Log)
	emitter := output.NewEmitter(globals.Stdout)
	for _, w := range warnings {
		if globals.Format == "ndjson" {
			emitter.DiscoveryWarning(&w)
			continue
		}
		emitWarning(globals, emitter, w.Message)
	}
	if err != nil {
		return nil, err
	}

	if len(tenants) > 0 {
		tf := filter.NewTenantFilter(tenants)
		narrowed := subs[:0]
		for _, sub := range subs {
			if tf.Match(&sub) {
				narrowed = append(narrowed, sub)
			}
		}
		subs = narrowed
	}

	filter.SortTargets(subs)
	return subs, nil
}

func (c *ListCmd) outputNDJSON(globals *Globals, subs []domain.Subscription) error {
	w := output.NewNDJSONWriter(globals.Stdout)
	for i, sub := range subs {
		if err := w.WriteSubscription(&sub, i+1, len(subs)); err != nil {
			return err
		}
	}
	return nil
}

func (c *ListCmd) outputText(globals *Globals, subs []domain.Subscription) error {
	if len(subs) == 0 {
		fmt.Fprintln(globals.Stdout, "No subscriptions found")
		return nil
	}

	table := tablewriter.NewWriter(globals.Stdout)
	table.Header([]string{"NAME", "SUBSCRIPTION ID", "TENANT", "STATE"})
	tenants := make(map[string]struct{})
	for _, sub := range subs {
		table.Append([]string{sub.Name, sub.ID, sub.TenantDomain, string(sub.State)})
		tenants[sub.TenantID] = struct{}{}
	}
	table.Render()

	fmt.Fprintf(globals.Stdout, "\n%d subscription(s) across %d tenant(s)\n", len(subs), len(tenants))
	return nil
}
