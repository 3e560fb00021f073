package report

import (
	"github.com/vburojevic/azsam/internal/domain"
	"github.com/vburojevic/azsam/internal/sampler"
)

// Multi fans every event out to multiple reporters. Used to show text on
// the terminal while recording NDJSON to a run log file.
type Multi struct {
	reporters []sampler.Reporter
}

var _ sampler.Reporter = (*Multi)(nil)

// NewMulti creates a fan-out reporter
func NewMulti(reporters ...sampler.Reporter) *Multi {
	return &Multi{reporters: reporters}
}

func (m *Multi) RunStart(target float64, dryRun bool, totalTargets int) {
	for _, r := range m.reporters {
		r.RunStart(target, dryRun, totalTargets)
	}
}

func (m *Multi) DiscoveryWarning(warn domain.DiscoveryWarning) {
	for _, r := range m.reporters {
		r.DiscoveryWarning(warn)
	}
}

func (m *Multi) Subscription(sub domain.Subscription, index, total int) {
	for _, r := range m.reporters {
		r.Subscription(sub, index, total)
	}
}

func (m *Multi) Result(res domain.SubscriptionResult) {
	for _, r := range m.reporters {
		r.Result(res)
	}
}

func (m *Multi) Summary(summary *domain.RunSummary) {
	for _, r := range m.reporters {
		r.Summary(summary)
	}
}

func (m *Multi) Done(hasFailures bool) {
	for _, r := range m.reporters {
		r.Done(hasFailures)
	}
}
