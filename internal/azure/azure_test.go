package azure

import (
	"testing"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/applicationinsights/armapplicationinsights"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/automation/armautomation"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/resources/armsubscriptions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/azsam/internal/domain"
)

func TestParseAuthMode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected AuthMode
		wantErr  bool
	}{
		{"default", "default", AuthModeDefault, false},
		{"managed identity", "managed-identity", AuthModeManagedIdentity, false},
		{"empty means default", "", AuthModeDefault, false},
		{"unknown mode", "service-principal", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mode, err := ParseAuthMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, mode)
		})
	}
}

func TestTenantFromSDK(t *testing.T) {
	t.Run("maps all fields", func(t *testing.T) {
		out := tenantFromSDK(&armsubscriptions.TenantIDDescription{
			TenantID:      to.Ptr("tid-1"),
			DefaultDomain: to.Ptr("contoso.onmicrosoft.com"),
			DisplayName:   to.Ptr("Contoso"),
		})

		assert.Equal(t, "tid-1", out.ID)
		assert.Equal(t, "contoso.onmicrosoft.com", out.Domain)
		assert.Equal(t, "Contoso", out.DisplayName)
	})

	t.Run("tolerates nil fields", func(t *testing.T) {
		out := tenantFromSDK(&armsubscriptions.TenantIDDescription{})
		assert.Empty(t, out.ID)
		assert.Empty(t, out.Domain)
	})
}

func TestSubscriptionFromSDK(t *testing.T) {
	tenant := domain.Tenant{ID: "tid-1", Domain: "contoso.onmicrosoft.com"}

	t.Run("carries tenant identity onto the subscription", func(t *testing.T) {
		out := subscriptionFromSDK(&armsubscriptions.Subscription{
			SubscriptionID: to.Ptr("1111-2222"),
			DisplayName:    to.Ptr("Prod"),
			State:          to.Ptr(armsubscriptions.SubscriptionStateEnabled),
		}, tenant)

		assert.Equal(t, "1111-2222", out.ID)
		assert.Equal(t, "Prod", out.Name)
		assert.Equal(t, "tid-1", out.TenantID)
		assert.Equal(t, "contoso.onmicrosoft.com", out.TenantDomain)
		assert.Equal(t, domain.SubscriptionStateEnabled, out.State)
		assert.True(t, out.IsEnabled())
	})

	t.Run("listing tenant id wins over lookup tenant", func(t *testing.T) {
		out := subscriptionFromSDK(&armsubscriptions.Subscription{
			SubscriptionID: to.Ptr("1111-2222"),
			TenantID:       to.Ptr("tid-owner"),
		}, tenant)

		assert.Equal(t, "tid-owner", out.TenantID)
		assert.Equal(t, "contoso.onmicrosoft.com", out.TenantDomain)
	})
}

func TestComponentToResource(t *testing.T) {
	t.Run("maps component with sampling", func(t *testing.T) {
		out := componentToResource(&armapplicationinsights.Component{
			ID:       to.Ptr("/subscriptions/1111/resourceGroups/rg-prod/providers/Microsoft.Insights/components/web-insights"),
			Name:     to.Ptr("web-insights"),
			Location: to.Ptr("westeurope"),
			Properties: &armapplicationinsights.ComponentProperties{
				SamplingPercentage: to.Ptr(25.0),
				AppID:              to.Ptr("app-guid"),
			},
		})

		assert.Equal(t, "web-insights", out.Name)
		assert.Equal(t, "rg-prod", out.ResourceGroup)
		assert.Equal(t, "westeurope", out.Location)
		assert.Equal(t, 25.0, out.SamplingPercentage)
		assert.Equal(t, "app-guid", out.AppID)
		assert.True(t, out.Eligible())
		assert.Equal(t, "rg-prod/web-insights", out.QualifiedName())
	})

	t.Run("missing sampling property means platform default", func(t *testing.T) {
		out := componentToResource(&armapplicationinsights.Component{
			ID:         to.Ptr("/subscriptions/1111/resourceGroups/rg-prod/providers/Microsoft.Insights/components/web-insights"),
			Name:       to.Ptr("web-insights"),
			Properties: &armapplicationinsights.ComponentProperties{},
		})

		assert.Equal(t, 100.0, out.SamplingPercentage)
	})

	t.Run("nil properties means platform default", func(t *testing.T) {
		out := componentToResource(&armapplicationinsights.Component{
			Name: to.Ptr("web-insights"),
		})

		assert.Equal(t, 100.0, out.SamplingPercentage)
	})

	t.Run("component without id has no resource group", func(t *testing.T) {
		out := componentToResource(&armapplicationinsights.Component{
			Name: to.Ptr("orphan"),
		})

		assert.Empty(t, out.ResourceGroup)
		assert.False(t, out.Eligible())
	})

	t.Run("blank name is not eligible", func(t *testing.T) {
		out := componentToResource(&armapplicationinsights.Component{
			ID:   to.Ptr("/subscriptions/1111/resourceGroups/rg-prod/providers/Microsoft.Insights/components/x"),
			Name: to.Ptr("   "),
		})

		assert.False(t, out.Eligible())
	})
}

func TestJobFromSDK(t *testing.T) {
	created := time.Date(2026, 8, 21, 9, 0, 0, 0, time.UTC)
	ended := created.Add(5 * time.Minute)

	t.Run("maps job properties", func(t *testing.T) {
		out := jobFromSDK("fallback-name", armautomation.Job{
			Name: to.Ptr("job-123"),
			Properties: &armautomation.JobProperties{
				Status:       to.Ptr(armautomation.JobStatusCompleted),
				Runbook:      &armautomation.RunbookAssociationProperty{Name: to.Ptr("Set-Sampling")},
				CreationTime: &created,
				EndTime:      &ended,
			},
		})

		assert.Equal(t, "job-123", out.Name)
		assert.Equal(t, "Set-Sampling", out.Runbook)
		assert.Equal(t, domain.JobStatusCompleted, out.Status)
		require.NotNil(t, out.CreatedAt)
		assert.Equal(t, created, *out.CreatedAt)
		require.NotNil(t, out.EndedAt)
		assert.True(t, out.Status.IsTerminal())
		assert.True(t, out.Status.Succeeded())
	})

	t.Run("falls back to requested name", func(t *testing.T) {
		out := jobFromSDK("requested", armautomation.Job{})
		assert.Equal(t, "requested", out.Name)
		assert.False(t, out.Status.IsTerminal())
	})

	t.Run("carries exception text", func(t *testing.T) {
		out := jobFromSDK("j", armautomation.Job{
			Properties: &armautomation.JobProperties{
				Status:    to.Ptr(armautomation.JobStatusFailed),
				Exception: to.Ptr("The runbook exploded"),
			},
		})
		assert.Equal(t, "The runbook exploded", out.Exception)
		assert.True(t, out.Status.IsTerminal())
		assert.False(t, out.Status.Succeeded())
	})
}

func TestStreamFromSDK(t *testing.T) {
	at := time.Date(2026, 8, 21, 9, 1, 0, 0, time.UTC)

	t.Run("maps stream properties", func(t *testing.T) {
		out := streamFromSDK(&armautomation.JobStream{
			ID: to.Ptr("arm-id"),
			Properties: &armautomation.JobStreamProperties{
				JobStreamID: to.Ptr("stream-7"),
				StreamText:  to.Ptr("Updating rg-prod/web-insights"),
				StreamType:  to.Ptr(armautomation.JobStreamTypeOutput),
				Time:        &at,
			},
		})

		assert.Equal(t, "stream-7", out.ID)
		assert.Equal(t, domain.JobStreamOutput, out.Kind)
		assert.Equal(t, "Updating rg-prod/web-insights", out.Text)
		require.NotNil(t, out.Time)
		assert.Equal(t, at, *out.Time)
	})

	t.Run("falls back to summary text", func(t *testing.T) {
		out := streamFromSDK(&armautomation.JobStream{
			Properties: &armautomation.JobStreamProperties{
				StreamType: to.Ptr(armautomation.JobStreamTypeProgress),
				Summary:    to.Ptr("3 of 9 complete"),
			},
		})

		assert.Equal(t, "3 of 9 complete", out.Text)
		assert.Equal(t, "3 of 9 complete", out.Summary)
	})
}
