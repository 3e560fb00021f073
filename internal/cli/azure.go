package cli

import (
	"context"

	"github.com/vburojevic/azsam/internal/automation"
	"github.com/vburojevic/azsam/internal/azure"
	"github.com/vburojevic/azsam/internal/config"
	"github.com/vburojevic/azsam/internal/domain"
	"github.com/vburojevic/azsam/internal/sampler"
)

// AutomationAPI is what the job commands need from the automation plane
type AutomationAPI interface {
	StartJob(ctx context.Context, runbook string, params map[string]string) (domain.Job, error)
	automation.JobAPI
}

// managementClient adapts azure.Client to the workflow interface. The only
// translation is Scope, whose concrete return type must become the
// interface the updater consumes.
type managementClient struct {
	*azure.Client
}

func (m managementClient) Scope(subscriptionID, tenantID string) (sampler.ResourceAPI, error) {
	return m.Client.Scope(subscriptionID, tenantID)
}

func newManagementClient(opts azure.Options) sampler.ManagementAPI {
	return managementClient{Client: azure.NewClient(opts)}
}

func newAutomationClient(opts azure.Options, subscriptionID, tenantID, resourceGroup, account string) (AutomationAPI, error) {
	return azure.NewClient(opts).Automation(subscriptionID, tenantID, resourceGroup, account)
}

// credentialOptions maps the auth section of the config onto client options
func credentialOptions(globals *Globals) (azure.Options, error) {
	cfg := globals.Config
	if cfg == nil {
		cfg = config.Default()
	}
	mode, err := azure.ParseAuthMode(cfg.Auth.Mode)
	if err != nil {
		return azure.Options{}, err
	}
	return azure.Options{
		Mode:     mode,
		ClientID: cfg.Auth.ClientID,
		TenantID: cfg.Auth.TenantID,
	}, nil
}

// management builds the discovery/update client the run commands share
func (g *Globals) management() (sampler.ManagementAPI, error) {
	opts, err := credentialOptions(g)
	if err != nil {
		return nil, err
	}
	return g.NewManagement(opts), nil
}
