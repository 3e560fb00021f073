package sampler

import (
	"context"

	"github.com/vburojevic/azsam/internal/domain"
)

// Strategy is the single point where apply and dry-run diverge. Everything
// else in the workflow runs identically in both modes.
type Strategy interface {
	// Update attempts (or pretends to attempt) one resource update
	Update(ctx context.Context, api ResourceAPI, res domain.TelemetryResource, target float64) domain.ResourceAction
	// DryRun reports whether this strategy mutates anything
	DryRun() bool
}

// NewStrategy picks the strategy for the run
func NewStrategy(dryRun bool) Strategy {
	if dryRun {
		return simulateStrategy{}
	}
	return applyStrategy{}
}

type applyStrategy struct{}

func (applyStrategy) DryRun() bool { return false }

func (applyStrategy) Update(ctx context.Context, api ResourceAPI, res domain.TelemetryResource, target float64) domain.ResourceAction {
	action := domain.ResourceAction{
		Resource:      res.Name,
		ResourceGroup: res.ResourceGroup,
		Before:        res.SamplingPercentage,
		Target:        target,
		Status:        domain.UpdateStatusUpdated,
	}
	if err := api.UpdateSamplingPercentage(ctx, res, target); err != nil {
		action.Status = domain.UpdateStatusFailed
		action.Error = err.Error()
	}
	return action
}

type simulateStrategy struct{}

func (simulateStrategy) DryRun() bool { return true }

func (simulateStrategy) Update(_ context.Context, _ ResourceAPI, res domain.TelemetryResource, target float64) domain.ResourceAction {
	return domain.ResourceAction{
		Resource:      res.Name,
		ResourceGroup: res.ResourceGroup,
		Before:        res.SamplingPercentage,
		Target:        target,
		Status:        domain.UpdateStatusWouldUpdate,
	}
}
