package domain

import "strings"

// SubscriptionState represents the provisioning state of a subscription
type SubscriptionState string

const (
	SubscriptionStateEnabled  SubscriptionState = "Enabled"
	SubscriptionStateDisabled SubscriptionState = "Disabled"
	SubscriptionStateWarned   SubscriptionState = "Warned"
	SubscriptionStatePastDue  SubscriptionState = "PastDue"
	SubscriptionStateDeleted  SubscriptionState = "Deleted"
)

// Tenant represents a directory the credential can enumerate
type Tenant struct {
	ID          string `json:"id"`
	Domain      string `json:"domain"` // default verified domain, e.g. contoso.onmicrosoft.com
	DisplayName string `json:"displayName,omitempty"`
}

// Subscription represents a subscription visible in one tenant
type Subscription struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	TenantID     string            `json:"tenantId"`
	TenantDomain string            `json:"tenantDomain,omitempty"`
	State        SubscriptionState `json:"state,omitempty"`
}

// IsEnabled returns true if the subscription accepts management calls
func (s *Subscription) IsEnabled() bool {
	return s.State == SubscriptionStateEnabled
}

// TelemetryResource represents an Application Insights component
type TelemetryResource struct {
	ID                 string  `json:"id"`
	Name               string  `json:"name"`
	ResourceGroup      string  `json:"resourceGroup"`
	Location           string  `json:"location,omitempty"`
	SamplingPercentage float64 `json:"samplingPercentage"`
	AppID              string  `json:"appId,omitempty"`
}

// Eligible reports whether the resource carries enough identity to be read
// or written. Components with a blank name or resource group show up in
// half-deleted resource groups and reject management calls.
func (r *TelemetryResource) Eligible() bool {
	return strings.TrimSpace(r.Name) != "" && strings.TrimSpace(r.ResourceGroup) != ""
}

// QualifiedName returns the resource group qualified component name
func (r *TelemetryResource) QualifiedName() string {
	if r.ResourceGroup == "" {
		return r.Name
	}
	return r.ResourceGroup + "/" + r.Name
}
