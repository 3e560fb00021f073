package sampler

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/vburojevic/azsam/internal/domain"
)

// ErrNoSubscriptions means discovery finished without finding anything to
// work on. Runs abort on it.
var ErrNoSubscriptions = errors.New("no subscriptions discovered in any tenant")

// AuthError wraps a failure to acquire credentials before the run starts
type AuthError struct {
	Err error
}

func (e *AuthError) Error() string { return "authentication failed: " + e.Err.Error() }
func (e *AuthError) Unwrap() error { return e.Err }

// DiscoveryError wraps a failure that prevented any discovery at all, as
// opposed to a single tenant failing.
type DiscoveryError struct {
	Err error
}

func (e *DiscoveryError) Error() string { return "discovery failed: " + e.Err.Error() }
func (e *DiscoveryError) Unwrap() error { return e.Err }

// Discover walks every visible tenant and collects its subscriptions.
// A tenant whose listing fails produces a warning and the walk continues;
// only finding nothing at all is fatal. Duplicate subscription ids keep
// their first occurrence (guest subscriptions can surface in two tenants).
func Discover(ctx context.Context, api ManagementAPI, log *zap.Logger) ([]domain.Subscription, []domain.DiscoveryWarning, error) {
	tenants, err := api.ListTenants(ctx)
	if err != nil {
		return nil, nil, &DiscoveryError{Err: fmt.Errorf("list tenants: %w", err)}
	}
	log.Debug("tenants discovered", zap.Int("count", len(tenants)))

	var (
		subs     []domain.Subscription
		warnings []domain.DiscoveryWarning
		seen     = make(map[string]bool)
	)

	for _, tenant := range tenants {
		found, err := api.ListSubscriptions(ctx, tenant)
		if err != nil {
			log.Warn("tenant listing failed",
				zap.String("tenant", tenant.ID),
				zap.Error(err))
			warnings = append(warnings, domain.DiscoveryWarning{
				TenantID: tenant.ID,
				Stage:    "subscriptions",
				Message:  fmt.Sprintf("listing subscriptions in tenant %s failed: %v", tenant.Domain, err),
			})
			continue
		}

		for _, sub := range found {
			if seen[sub.ID] {
				log.Debug("duplicate subscription dropped",
					zap.String("subscription", sub.ID),
					zap.String("tenant", tenant.ID))
				continue
			}
			seen[sub.ID] = true
			subs = append(subs, sub)
		}
		log.Debug("tenant walked",
			zap.String("tenant", tenant.ID),
			zap.String("domain", tenant.Domain),
			zap.Int("subscriptions", len(found)))
	}

	if len(subs) == 0 {
		return nil, warnings, &DiscoveryError{Err: ErrNoSubscriptions}
	}
	return subs, warnings, nil
}
