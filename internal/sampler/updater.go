package sampler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/vburojevic/azsam/internal/domain"
)

// Updater processes one subscription at a time: scope, snapshot, update
// every eligible resource, snapshot again. Failures inside a subscription
// mark it and never abort the run.
type Updater struct {
	api      ManagementAPI
	strategy Strategy
	target   float64
	log      *zap.Logger
}

// NewUpdater creates an updater for one run's parameters
func NewUpdater(api ManagementAPI, strategy Strategy, target float64, log *zap.Logger) *Updater {
	return &Updater{
		api:      api,
		strategy: strategy,
		target:   target,
		log:      log,
	}
}

// Process runs the full update workflow for one subscription
func (u *Updater) Process(ctx context.Context, sub domain.Subscription) domain.SubscriptionResult {
	result := domain.SubscriptionResult{Subscription: sub}

	scope, err := u.api.Scope(sub.ID, sub.TenantID)
	if err != nil {
		u.log.Warn("subscription scope failed",
			zap.String("subscription", sub.ID),
			zap.Error(err))
		result.Skipped = true
		result.Error = fmt.Sprintf("switching to subscription failed: %v", err)
		return result
	}

	before, err := scope.ListTelemetryResources(ctx)
	if err != nil {
		u.log.Warn("resource listing failed",
			zap.String("subscription", sub.ID),
			zap.Error(err))
		result.Skipped = true
		result.Error = fmt.Sprintf("listing telemetry resources failed: %v", err)
		return result
	}
	result.Before = before

	for _, res := range before {
		if !res.Eligible() {
			continue
		}
		action := u.strategy.Update(ctx, scope, res, u.target)
		if action.Status == domain.UpdateStatusFailed {
			u.log.Warn("resource update failed",
				zap.String("subscription", sub.ID),
				zap.String("resource", res.QualifiedName()),
				zap.String("error", action.Error))
		}
		result.Actions = append(result.Actions, action)
	}

	// The after snapshot is taken even in dry-run so both tables always
	// appear and an unchanged after state is visible proof nothing moved.
	after, err := scope.ListTelemetryResources(ctx)
	if err != nil {
		u.log.Warn("after snapshot failed",
			zap.String("subscription", sub.ID),
			zap.Error(err))
		result.Error = fmt.Sprintf("after snapshot failed: %v", err)
		return result
	}
	result.After = after

	return result
}
