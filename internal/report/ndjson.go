package report

import (
	"io"

	"github.com/vburojevic/azsam/internal/domain"
	"github.com/vburojevic/azsam/internal/output"
	"github.com/vburojevic/azsam/internal/sampler"
)

// NDJSON renders the run as one event per line for machine consumers.
// Encoding errors are not actionable mid-run and are dropped.
type NDJSON struct {
	e *output.Emitter
}

var _ sampler.Reporter = (*NDJSON)(nil)

// NewNDJSON creates an NDJSON reporter
func NewNDJSON(w io.Writer) *NDJSON {
	return &NDJSON{e: output.NewEmitter(w)}
}

func (n *NDJSON) RunStart(target float64, dryRun bool, totalTargets int) {
	n.e.RunStart(target, dryRun, totalTargets)
}

func (n *NDJSON) DiscoveryWarning(warn domain.DiscoveryWarning) {
	n.e.DiscoveryWarning(&warn)
}

func (n *NDJSON) Subscription(sub domain.Subscription, index, total int) {
	n.e.Subscription(&sub, index, total)
}

func (n *NDJSON) Result(res domain.SubscriptionResult) {
	if res.Skipped {
		n.e.DiscoveryWarning(&domain.DiscoveryWarning{
			Stage:   "subscription",
			Message: "subscription " + res.Subscription.ID + " skipped: " + res.Error,
		})
		return
	}

	for i := range res.Before {
		n.e.Resource(res.Subscription.ID, "before", &res.Before[i])
	}
	for i := range res.Actions {
		n.e.Update(res.Subscription.ID, &res.Actions[i])
	}
	for i := range res.After {
		n.e.Resource(res.Subscription.ID, "after", &res.After[i])
	}

	if res.Error != "" {
		n.e.DiscoveryWarning(&domain.DiscoveryWarning{
			Stage:   "subscription",
			Message: "subscription " + res.Subscription.ID + ": " + res.Error,
		})
	}
}

func (n *NDJSON) Summary(summary *domain.RunSummary) {
	n.e.Summary(summary)
}

func (n *NDJSON) Done(hasFailures bool) {
	n.e.Done(hasFailures, "")
}
