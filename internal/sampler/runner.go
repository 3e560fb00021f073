package sampler

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/vburojevic/azsam/internal/domain"
	"github.com/vburojevic/azsam/internal/filter"
)

// Params holds one run's inputs after flag/config merging
type Params struct {
	// Target is the sampling percentage to set, 0 to 100
	Target float64
	// DryRun reports changes without applying them
	DryRun bool
	// Filter selects which discovered subscriptions are targeted
	Filter filter.Options
}

// Runner drives a full run: verify, discover, filter, sort, update, report
type Runner struct {
	api ManagementAPI
	rep Reporter
	log *zap.Logger
}

// NewRunner wires a runner
func NewRunner(api ManagementAPI, rep Reporter, log *zap.Logger) *Runner {
	return &Runner{api: api, rep: rep, log: log}
}

// Run executes the whole workflow. Only credential failure, total
// discovery failure and filter exhaustion abort; everything else is
// reported and the run continues.
func (r *Runner) Run(ctx context.Context, params Params) (*domain.RunSummary, error) {
	if err := r.api.Verify(ctx); err != nil {
		return nil, &AuthError{Err: err}
	}

	subs, warnings, err := Discover(ctx, r.api, r.log)
	for _, w := range warnings {
		r.rep.DiscoveryWarning(w)
	}
	if err != nil {
		return nil, err
	}

	targets, err := filter.Apply(subs, params.Filter)
	if err != nil {
		return nil, err
	}
	filter.SortTargets(targets)

	return r.RunTargets(ctx, targets, params)
}

// RunTargets executes the update workflow over an already-selected target
// list. The interactive picker calls this directly with its selection.
func (r *Runner) RunTargets(ctx context.Context, targets []domain.Subscription, params Params) (*domain.RunSummary, error) {
	summary := domain.NewRunSummary(params.DryRun, params.Target)
	strategy := NewStrategy(params.DryRun)
	updater := NewUpdater(r.api, strategy, params.Target, r.log)

	r.rep.RunStart(params.Target, params.DryRun, len(targets))
	r.log.Info("run started",
		zap.Float64("target", params.Target),
		zap.Bool("dryRun", params.DryRun),
		zap.Int("targets", len(targets)))

	for i, sub := range targets {
		r.rep.Subscription(sub, i+1, len(targets))
		result := updater.Process(ctx, sub)
		r.rep.Result(result)
		summary.Observe(result)
	}

	summary.FinishedAt = time.Now().UTC()
	r.rep.Summary(summary)
	r.rep.Done(summary.HasFailures)
	r.log.Info("run finished",
		zap.Int("subscriptions", summary.Subscriptions),
		zap.Int("updated", summary.Updated),
		zap.Int("failed", summary.Failed))

	return summary, nil
}
