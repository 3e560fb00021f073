package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/to"
	"github.com/Azure/azure-sdk-for-go/sdk/resourcemanager/automation/armautomation"
	"github.com/google/uuid"

	"github.com/vburojevic/azsam/internal/domain"
)

// Automation is a client pinned to one automation account
type Automation struct {
	resourceGroup string
	account       string
	jobs          *armautomation.JobClient
	streams       *armautomation.JobStreamClient
}

// Automation builds a client for the account hosting the remote runbook
func (c *Client) Automation(subscriptionID, tenantID, resourceGroup, account string) (*Automation, error) {
	cred, err := c.credential(tenantID)
	if err != nil {
		return nil, err
	}

	jobs, err := armautomation.NewJobClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, err
	}
	streams, err := armautomation.NewJobStreamClient(subscriptionID, cred, nil)
	if err != nil {
		return nil, err
	}

	return &Automation{
		resourceGroup: resourceGroup,
		account:       account,
		jobs:          jobs,
		streams:       streams,
	}, nil
}

// StartJob creates a runbook job. Job names must be unique within the
// account, so each start mints a fresh one.
func (a *Automation) StartJob(ctx context.Context, runbook string, params map[string]string) (domain.Job, error) {
	name := uuid.NewString()

	create := armautomation.JobCreateParameters{
		Properties: &armautomation.JobCreateProperties{
			Runbook: &armautomation.RunbookAssociationProperty{
				Name: to.Ptr(runbook),
			},
		},
	}
	if len(params) > 0 {
		create.Properties.Parameters = make(map[string]*string, len(params))
		for k, v := range params {
			create.Properties.Parameters[k] = to.Ptr(v)
		}
	}

	resp, err := a.jobs.Create(ctx, a.resourceGroup, a.account, name, create, nil)
	if err != nil {
		return domain.Job{}, fmt.Errorf("create job for runbook %s: %w", runbook, err)
	}
	return jobFromSDK(name, resp.Job), nil
}

// Job fetches the current state of a job by name
func (a *Automation) Job(ctx context.Context, name string) (domain.Job, error) {
	resp, err := a.jobs.Get(ctx, a.resourceGroup, a.account, name, nil)
	if err != nil {
		return domain.Job{}, err
	}
	return jobFromSDK(name, resp.Job), nil
}

// JobStreams returns all output produced by the job so far, oldest first
func (a *Automation) JobStreams(ctx context.Context, name string) ([]domain.JobStreamEntry, error) {
	var out []domain.JobStreamEntry
	pager := a.streams.NewListByJobPager(a.resourceGroup, a.account, name, nil)
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		for _, s := range page.Value {
			out = append(out, streamFromSDK(s))
		}
	}
	return out, nil
}

func jobFromSDK(name string, job armautomation.Job) domain.Job {
	out := domain.Job{Name: name}
	if job.Name != nil {
		out.Name = *job.Name
	}
	props := job.Properties
	if props == nil {
		return out
	}
	if props.Status != nil {
		out.Status = domain.JobStatus(*props.Status)
	}
	if props.Runbook != nil && props.Runbook.Name != nil {
		out.Runbook = *props.Runbook.Name
	}
	if props.CreationTime != nil {
		out.CreatedAt = props.CreationTime
	}
	if props.EndTime != nil {
		out.EndedAt = props.EndTime
	}
	if props.Exception != nil {
		out.Exception = *props.Exception
	}
	return out
}

func streamFromSDK(s *armautomation.JobStream) domain.JobStreamEntry {
	out := domain.JobStreamEntry{}
	if s.ID != nil {
		out.ID = *s.ID
	}
	props := s.Properties
	if props == nil {
		return out
	}
	if props.JobStreamID != nil {
		out.ID = *props.JobStreamID
	}
	if props.Time != nil {
		out.Time = props.Time
	}
	if props.StreamType != nil {
		out.Kind = domain.JobStreamKind(*props.StreamType)
	}
	if props.StreamText != nil {
		out.Text = *props.StreamText
	} else if props.Summary != nil {
		out.Text = *props.Summary
	}
	if props.Summary != nil {
		out.Summary = *props.Summary
	}
	return out
}
