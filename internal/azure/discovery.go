package azure

import (
	"context"

	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"

	"github.com/vburojevic/azsam/internal/domain"
)

// ListTenants enumerates every directory visible to the credential
func (c *Client) ListTenants(ctx context.Context) ([]domain.Tenant, error) {
	cred, err := c.credential("")
	if err != nil {
		return nil, err
	}

	tenants, err := armsubscriptions.NewTenantsClient(cred, nil)
	if err != nil {
		return nil, err
	}

	var out []domain.Tenant
	pager := tenants.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, t := range page.Value {
			out = append(out, tenantFromSDK(t))
		}
	}
	return out, nil
}

// ListSubscriptions enumerates subscriptions visible in one tenant. The
// returned subscriptions carry the tenant's domain for sorting and display.
func (c *Client) ListSubscriptions(ctx context.Context, tenant domain.Tenant) ([]domain.Subscription, error) {
	cred, err := c.credential(tenant.ID)
	if err != nil {
		return nil, err
	}

	subs, err := armsubscriptions.NewClient(cred, nil)
	if err != nil {
		return nil, err
	}

	var out []domain.Subscription
	pager := subs.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, s := range page.Value {
			out = append(out, subscriptionFromSDK(s, tenant))
		}
	}
	return out, nil
}

func tenantFromSDK(t *armsubscriptions.TenantIDDescription) domain.Tenant {
	out := domain.Tenant{}
	if t.TenantID != nil {
		out.ID = *t.TenantID
	}
	if t.DefaultDomain != nil {
		out.Domain = *t.DefaultDomain
	}
	if t.DisplayName != nil {
		out.DisplayName = *t.DisplayName
	}
	return out
}

func subscriptionFromSDK(s *armsubscriptions.Subscription, tenant domain.Tenant) domain.Subscription {
	out := domain.Subscription{
		TenantID:     tenant.ID,
		TenantDomain: tenant.Domain,
	}
	if s.SubscriptionID != nil {
		out.ID = *s.SubscriptionID
	}
	if s.DisplayName != nil {
		out.Name = *s.DisplayName
	}
	// The listing API reports the owning tenant; trust it over the lookup
	// tenant when present (B2B subscriptions can show up in both).
	if s.TenantID != nil && *s.TenantID != "" {
		out.TenantID = *s.TenantID
	}
	if s.State != nil {
		out.State = domain.SubscriptionState(*s.State)
	}
	return out
}
