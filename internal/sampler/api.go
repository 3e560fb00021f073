package sampler

import (
	"context"

	"github.com/vburojevic/azsam/internal/domain"
)

// ManagementAPI is the slice of the management plane the workflow needs.
// The production implementation wraps the platform SDK; tests use fakes.
type ManagementAPI interface {
	// Verify acquires a token without touching any resource
	Verify(ctx context.Context) error
	// ListTenants enumerates every directory visible to the credential
	ListTenants(ctx context.Context) ([]domain.Tenant, error)
	// ListSubscriptions enumerates subscriptions in one tenant
	ListSubscriptions(ctx context.Context, tenant domain.Tenant) ([]domain.Subscription, error)
	// Scope pins a client to one subscription in one tenant. Every
	// subscription gets a fresh scope before any of its resources are
	// touched.
	Scope(subscriptionID, tenantID string) (ResourceAPI, error)
}

// ResourceAPI operates on telemetry resources inside one subscription
type ResourceAPI interface {
	ListTelemetryResources(ctx context.Context) ([]domain.TelemetryResource, error)
	UpdateSamplingPercentage(ctx context.Context, res domain.TelemetryResource, percentage float64) error
}

// Reporter receives presentation events in run order. Implementations only
// format; they never alter or filter what they are given.
type Reporter interface {
	RunStart(target float64, dryRun bool, totalTargets int)
	DiscoveryWarning(warn domain.DiscoveryWarning)
	Subscription(sub domain.Subscription, index, total int)
	Result(res domain.SubscriptionResult)
	Summary(summary *domain.RunSummary)
	Done(hasFailures bool)
}
