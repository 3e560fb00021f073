package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/applicationinsights/armapplicationinsights"

	"github.com/vburojevic/azsam/internal/domain"
)

// defaultSamplingPercentage is what the platform applies when the property
// is absent on a component: ingest everything.
const defaultSamplingPercentage = 100

// SubscriptionScope is a management client pinned to one subscription in
// one tenant. Work inside a subscription always goes through a fresh scope
// so no call can leak into the previous subscription.
type SubscriptionScope struct {
	subscriptionID string
	components     *armapplicationinsights.ComponentsClient
}

// Scope builds a subscription-pinned client using the tenant's credential
func (c *Client) Scope(subscriptionID, tenantID string) (*SubscriptionScope, error) {
	cred, err := c.credential(tenantID)
	if err != nil {
		return nil, err
	}

	components, err := armapplicationinsights.NewComponentsClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, err
	}

	return &SubscriptionScope{
		subscriptionID: subscriptionID,
		components:     components,
	}, nil
}

// ListTelemetryResources enumerates every component in the subscription.
// Rows without a usable name or resource group are dropped here so callers
// never see them.
func (s *SubscriptionScope) ListTelemetryResources(ctx context.Context) ([]domain.TelemetryResource, error) {
	var out []domain.TelemetryResource
	pager := s.components.NewListPager(nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, comp := range page.Value {
			res := componentToResource(comp)
			if !res.Eligible() {
				continue
			}
			out = append(out, res)
		}
	}
	return out, nil
}

// UpdateSamplingPercentage sets the ingestion sampling percentage on one
// component. The write is a full read-modify-write because the management
// API replaces the property bag on update.
func (s *SubscriptionScope) UpdateSamplingPercentage(ctx context.Context, res domain.TelemetryResource, percentage float64) error {
	current, err := s.components.Get(ctx, res.ResourceGroup, res.Name, nil)
	if err != nil {
		return fmt.Errorf("get %s: %w", res.QualifiedName(), err)
	}

	comp := current.Component
	if comp.Properties == nil {
		comp.Properties = &armapplicationinsights.ComponentProperties{
			ApplicationType: to.Ptr(armapplicationinsights.ApplicationTypeWeb),
		}
	}
	comp.Properties.SamplingPercentage = to.Ptr(percentage)

	_, err = s.components.CreateOrUpdate(ctx, res.ResourceGroup, res.Name, comp, nil)
	if err != nil {
		return fmt.Errorf("update %s: %w", res.QualifiedName(), err)
	}
	return nil
}

// componentToResource maps the SDK component to the domain type. A missing
// sampling property means the platform default of 100 percent.
func componentToResource(comp *armapplicationinsights.Component) domain.TelemetryResource {
	out := domain.TelemetryResource{
		SamplingPercentage: defaultSamplingPercentage,
	}
	if comp.ID != nil {
		out.ID = *comp.ID
		if parsed, err := arm.ParseResourceID(*comp.ID); err == nil {
			out.ResourceGroup = parsed.ResourceGroupName
		}
	}
	if comp.Name != nil {
		out.Name = *comp.Name
	}
	if comp.Location != nil {
		out.Location = *comp.Location
	}
	if comp.Properties != nil {
		if comp.Properties.SamplingPercentage != nil {
			out.SamplingPercentage = *comp.Properties.SamplingPercentage
		}
		if comp.Properties.AppID != nil {
			out.AppID = *comp.Properties.AppID
		}
	}
	return out
}
