package sampler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/vburojevic/azsam/internal/domain"
	"github.com/vburojevic/azsam/internal/filter"
)

// fakeResourceAPI is an in-memory subscription scope
type fakeResourceAPI struct {
	resources []domain.TelemetryResource
	listErr   error            // fails the first listing
	afterErr  error            // fails the second listing
	updateErr map[string]error // per resource name
	updates   []string
	listCalls int
}

func (f *fakeResourceAPI) ListTelemetryResources(_ context.Context) ([]domain.TelemetryResource, error) {
	f.listCalls++
	if f.listCalls == 1 && f.listErr != nil {
		return nil, f.listErr
	}
	if f.listCalls > 1 && f.afterErr != nil {
		return nil, f.afterErr
	}
	out := make([]domain.TelemetryResource, len(f.resources))
	copy(out, f.resources)
	return out, nil
}

func (f *fakeResourceAPI) UpdateSamplingPercentage(_ context.Context, res domain.TelemetryResource, pct float64) error {
	if err := f.updateErr[res.Name]; err != nil {
		return err
	}
	f.updates = append(f.updates, res.Name)
	for i := range f.resources {
		if f.resources[i].Name == res.Name {
			f.resources[i].SamplingPercentage = pct
		}
	}
	return nil
}

// fakeManagement is an in-memory management plane
type fakeManagement struct {
	verifyErr  error
	tenants    []domain.Tenant
	tenantsErr error
	subs       map[string][]domain.Subscription // keyed by tenant id
	subsErr    map[string]error
	scopes     map[string]*fakeResourceAPI // keyed by subscription id
	scopeErr   map[string]error
	scoped     []string
}

func (f *fakeManagement) Verify(_ context.Context) error { return f.verifyErr }

func (f *fakeManagement) ListTenants(_ context.Context) ([]domain.Tenant, error) {
	if f.tenantsErr != nil {
		return nil, f.tenantsErr
	}
	return f.tenants, nil
}

func (f *fakeManagement) ListSubscriptions(_ context.Context, tenant domain.Tenant) ([]domain.Subscription, error) {
	if err := f.subsErr[tenant.ID]; err != nil {
		return nil, err
	}
	return f.subs[tenant.ID], nil
}

func (f *fakeManagement) Scope(subscriptionID, tenantID string) (ResourceAPI, error) {
	f.scoped = append(f.scoped, subscriptionID+"@"+tenantID)
	if err := f.scopeErr[subscriptionID]; err != nil {
		return nil, err
	}
	scope, ok := f.scopes[subscriptionID]
	if !ok {
		scope = &fakeResourceAPI{}
		if f.scopes == nil {
			f.scopes = map[string]*fakeResourceAPI{}
		}
		f.scopes[subscriptionID] = scope
	}
	return scope, nil
}

// captureReporter records presentation events in order
type captureReporter struct {
	started      bool
	startTargets int
	warnings     []domain.DiscoveryWarning
	headers      []domain.Subscription
	results      []domain.SubscriptionResult
	summary      *domain.RunSummary
	done         bool
	hasFailures  bool
}

func (r *captureReporter) RunStart(_ float64, _ bool, total int) {
	r.started = true
	r.startTargets = total
}
func (r *captureReporter) DiscoveryWarning(w domain.DiscoveryWarning) {
	r.warnings = append(r.warnings, w)
}
func (r *captureReporter) Subscription(sub domain.Subscription, _, _ int) {
	r.headers = append(r.headers, sub)
}
func (r *captureReporter) Result(res domain.SubscriptionResult) {
	r.results = append(r.results, res)
}
func (r *captureReporter) Summary(s *domain.RunSummary) { r.summary = s }
func (r *captureReporter) Done(hasFailures bool) {
	r.done = true
	r.hasFailures = hasFailures
}

func resource(name, rg string, sampling float64) domain.TelemetryResource {
	return domain.TelemetryResource{Name: name, ResourceGroup: rg, SamplingPercentage: sampling}
}

// twoTenantFixture builds the canonical two tenant, two subscription setup
func twoTenantFixture() *fakeManagement {
	return &fakeManagement{
		tenants: []domain.Tenant{
			{ID: "tid-b", Domain: "fabrikam.onmicrosoft.com"},
			{ID: "tid-a", Domain: "contoso.onmicrosoft.com"},
		},
		subs: map[string][]domain.Subscription{
			"tid-a": {{ID: "sub-prod", Name: "Prod", TenantID: "tid-a", TenantDomain: "contoso.onmicrosoft.com"}},
			"tid-b": {{ID: "sub-dev", Name: "Dev", TenantID: "tid-b", TenantDomain: "fabrikam.onmicrosoft.com"}},
		},
		scopes: map[string]*fakeResourceAPI{
			"sub-prod": {resources: []domain.TelemetryResource{resource("prod-insights", "rg-prod", 100)}},
			"sub-dev":  {resources: []domain.TelemetryResource{resource("dev-insights", "rg-dev", 100)}},
		},
	}
}

func TestRunner_Run(t *testing.T) {
	ctx := context.Background()

	t.Run("updates every resource across tenants in sorted order", func(t *testing.T) {
		api := twoTenantFixture()
		rep := &captureReporter{}
		runner := NewRunner(api, rep, zaptest.NewLogger(t))

		summary, err := runner.Run(ctx, Params{Target: 5})
		require.NoError(t, err)

		// contoso sorts before fabrikam regardless of tenant walk order
		require.Len(t, rep.headers, 2)
		assert.Equal(t, "Prod", rep.headers[0].Name)
		assert.Equal(t, "Dev", rep.headers[1].Name)

		assert.Equal(t, 5.0, api.scopes["sub-prod"].resources[0].SamplingPercentage)
		assert.Equal(t, 5.0, api.scopes["sub-dev"].resources[0].SamplingPercentage)

		assert.Equal(t, 2, summary.Subscriptions)
		assert.Equal(t, 2, summary.Updated)
		assert.Equal(t, 0, summary.Failed)
		assert.False(t, summary.HasFailures)
		assert.True(t, rep.done)
		assert.False(t, rep.hasFailures)

		// both results carry before and after snapshots
		for _, res := range rep.results {
			assert.Len(t, res.Before, 1)
			assert.Len(t, res.After, 1)
			assert.Equal(t, 100.0, res.Before[0].SamplingPercentage)
			assert.Equal(t, 5.0, res.After[0].SamplingPercentage)
		}
	})

	t.Run("include filter leaves other subscriptions untouched", func(t *testing.T) {
		api := twoTenantFixture()
		rep := &captureReporter{}
		runner := NewRunner(api, rep, zaptest.NewLogger(t))

		_, err := runner.Run(ctx, Params{Target: 5, Filter: filter.Options{Include: []string{"Prod"}}})
		require.NoError(t, err)

		require.Len(t, rep.headers, 1)
		assert.Equal(t, "Prod", rep.headers[0].Name)
		assert.Equal(t, 100.0, api.scopes["sub-dev"].resources[0].SamplingPercentage)
		assert.Zero(t, api.scopes["sub-dev"].listCalls)
	})

	t.Run("dry run makes no update calls but reports would_update", func(t *testing.T) {
		api := twoTenantFixture()
		rep := &captureReporter{}
		runner := NewRunner(api, rep, zaptest.NewLogger(t))

		summary, err := runner.Run(ctx, Params{Target: 5, DryRun: true})
		require.NoError(t, err)

		assert.Empty(t, api.scopes["sub-prod"].updates)
		assert.Empty(t, api.scopes["sub-dev"].updates)
		assert.Equal(t, 100.0, api.scopes["sub-prod"].resources[0].SamplingPercentage)

		assert.Equal(t, 2, summary.WouldUpdate)
		assert.Equal(t, 0, summary.Updated)
		assert.True(t, summary.DryRun)

		// after snapshot still taken so the report shows both tables
		require.Len(t, rep.results, 2)
		for _, res := range rep.results {
			assert.Len(t, res.After, 1)
			assert.Equal(t, 100.0, res.After[0].SamplingPercentage)
			require.Len(t, res.Actions, 1)
			assert.Equal(t, domain.UpdateStatusWouldUpdate, res.Actions[0].Status)
		}
	})

	t.Run("auth failure aborts before discovery", func(t *testing.T) {
		api := twoTenantFixture()
		api.verifyErr = errors.New("no identity endpoint")
		runner := NewRunner(api, &captureReporter{}, zaptest.NewLogger(t))

		_, err := runner.Run(ctx, Params{Target: 5})
		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Empty(t, api.scoped)
	})

	t.Run("tenant listing failure aborts as discovery failure", func(t *testing.T) {
		api := twoTenantFixture()
		api.tenantsErr = errors.New("management api down")
		runner := NewRunner(api, &captureReporter{}, zaptest.NewLogger(t))

		_, err := runner.Run(ctx, Params{Target: 5})
		var discErr *DiscoveryError
		require.ErrorAs(t, err, &discErr)
	})

	t.Run("zero subscriptions aborts", func(t *testing.T) {
		api := &fakeManagement{
			tenants: []domain.Tenant{{ID: "tid-a", Domain: "contoso.onmicrosoft.com"}},
			subs:    map[string][]domain.Subscription{},
		}
		runner := NewRunner(api, &captureReporter{}, zaptest.NewLogger(t))

		_, err := runner.Run(ctx, Params{Target: 5})
		require.ErrorIs(t, err, ErrNoSubscriptions)
	})

	t.Run("filter exhaustion aborts", func(t *testing.T) {
		api := twoTenantFixture()
		runner := NewRunner(api, &captureReporter{}, zaptest.NewLogger(t))

		_, err := runner.Run(ctx, Params{Target: 5, Filter: filter.Options{Include: []string{"nosuch"}}})
		var exhausted *filter.ExhaustedError
		require.ErrorAs(t, err, &exhausted)
	})

	t.Run("one tenant failing produces a warning and the rest proceeds", func(t *testing.T) {
		api := twoTenantFixture()
		api.subsErr = map[string]error{"tid-b": errors.New("guest access revoked")}
		rep := &captureReporter{}
		runner := NewRunner(api, rep, zaptest.NewLogger(t))

		summary, err := runner.Run(ctx, Params{Target: 5})
		require.NoError(t, err)

		require.Len(t, rep.warnings, 1)
		assert.Equal(t, "tid-b", rep.warnings[0].TenantID)
		assert.Contains(t, rep.warnings[0].Message, "guest access revoked")

		assert.Equal(t, 1, summary.Subscriptions)
		assert.Equal(t, 5.0, api.scopes["sub-prod"].resources[0].SamplingPercentage)
	})

	t.Run("duplicate subscription ids keep first occurrence", func(t *testing.T) {
		api := twoTenantFixture()
		// the same subscription also shows up in the second tenant
		api.subs["tid-b"] = append(api.subs["tid-b"], domain.Subscription{
			ID: "sub-prod", Name: "Prod", TenantID: "tid-b", TenantDomain: "fabrikam.onmicrosoft.com",
		})
		rep := &captureReporter{}
		runner := NewRunner(api, rep, zaptest.NewLogger(t))

		_, err := runner.Run(ctx, Params{Target: 5})
		require.NoError(t, err)

		assert.Len(t, rep.headers, 2)
		// processed once, under its first-seen tenant
		count := 0
		for _, s := range api.scoped {
			if s == "sub-prod@tid-a" || s == "sub-prod@tid-b" {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})
}

func TestUpdater_Process(t *testing.T) {
	ctx := context.Background()
	log := zaptest.NewLogger(t)

	t.Run("scope failure skips the subscription", func(t *testing.T) {
		api := twoTenantFixture()
		api.scopeErr = map[string]error{"sub-prod": errors.New("tenant requires MFA")}
		updater := NewUpdater(api, NewStrategy(false), 5, log)

		result := updater.Process(ctx, domain.Subscription{ID: "sub-prod", Name: "Prod", TenantID: "tid-a"})

		assert.True(t, result.Skipped)
		assert.Contains(t, result.Error, "switching to subscription failed")
		assert.Empty(t, result.Actions)
	})

	t.Run("listing failure skips the subscription", func(t *testing.T) {
		api := twoTenantFixture()
		api.scopes["sub-prod"].listErr = errors.New("provider not registered")
		updater := NewUpdater(api, NewStrategy(false), 5, log)

		result := updater.Process(ctx, domain.Subscription{ID: "sub-prod", TenantID: "tid-a"})

		assert.True(t, result.Skipped)
		assert.Contains(t, result.Error, "listing telemetry resources failed")
	})

	t.Run("one resource failing does not stop the others", func(t *testing.T) {
		api := twoTenantFixture()
		scope := api.scopes["sub-prod"]
		scope.resources = []domain.TelemetryResource{
			resource("a-insights", "rg", 100),
			resource("b-insights", "rg", 100),
			resource("c-insights", "rg", 100),
		}
		scope.updateErr = map[string]error{"b-insights": errors.New("locked by policy")}
		updater := NewUpdater(api, NewStrategy(false), 5, log)

		result := updater.Process(ctx, domain.Subscription{ID: "sub-prod", TenantID: "tid-a"})

		require.Len(t, result.Actions, 3)
		assert.Equal(t, domain.UpdateStatusUpdated, result.Actions[0].Status)
		assert.Equal(t, domain.UpdateStatusFailed, result.Actions[1].Status)
		assert.Contains(t, result.Actions[1].Error, "locked by policy")
		assert.Equal(t, domain.UpdateStatusUpdated, result.Actions[2].Status)
		assert.Equal(t, []string{"a-insights", "c-insights"}, scope.updates)
	})

	t.Run("resources without identity are never touched", func(t *testing.T) {
		api := twoTenantFixture()
		scope := api.scopes["sub-prod"]
		scope.resources = []domain.TelemetryResource{
			resource("  ", "rg", 100),
			resource("named", "", 100),
			resource("good-insights", "rg", 100),
		}
		updater := NewUpdater(api, NewStrategy(false), 5, log)

		result := updater.Process(ctx, domain.Subscription{ID: "sub-prod", TenantID: "tid-a"})

		require.Len(t, result.Actions, 1)
		assert.Equal(t, "good-insights", result.Actions[0].Resource)
		assert.Equal(t, []string{"good-insights"}, scope.updates)
	})

	t.Run("after snapshot failure keeps the actions", func(t *testing.T) {
		api := twoTenantFixture()
		api.scopes["sub-prod"].afterErr = errors.New("throttled")
		updater := NewUpdater(api, NewStrategy(false), 5, log)

		result := updater.Process(ctx, domain.Subscription{ID: "sub-prod", TenantID: "tid-a"})

		assert.False(t, result.Skipped)
		require.Len(t, result.Actions, 1)
		assert.Equal(t, domain.UpdateStatusUpdated, result.Actions[0].Status)
		assert.Nil(t, result.After)
		assert.Contains(t, result.Error, "after snapshot failed")
	})

	t.Run("empty subscription yields empty tables", func(t *testing.T) {
		api := twoTenantFixture()
		api.scopes["sub-prod"].resources = nil
		updater := NewUpdater(api, NewStrategy(false), 5, log)

		result := updater.Process(ctx, domain.Subscription{ID: "sub-prod", TenantID: "tid-a"})

		assert.False(t, result.Skipped)
		assert.Empty(t, result.Actions)
		assert.Empty(t, result.Before)
	})
}

func TestStrategy(t *testing.T) {
	t.Run("apply strategy reports before and target", func(t *testing.T) {
		scope := &fakeResourceAPI{resources: []domain.TelemetryResource{resource("r", "rg", 42)}}
		action := NewStrategy(false).Update(context.Background(), scope, scope.resources[0], 5)

		assert.Equal(t, 42.0, action.Before)
		assert.Equal(t, 5.0, action.Target)
		assert.Equal(t, domain.UpdateStatusUpdated, action.Status)
	})

	t.Run("strategies report their mode", func(t *testing.T) {
		assert.False(t, NewStrategy(false).DryRun())
		assert.True(t, NewStrategy(true).DryRun())
	})
}

func TestRunSummary_Observe(t *testing.T) {
	summary := domain.NewRunSummary(false, 5)

	summary.Observe(domain.SubscriptionResult{
		Actions: []domain.ResourceAction{
			{Status: domain.UpdateStatusUpdated},
			{Status: domain.UpdateStatusFailed},
		},
	})
	summary.Observe(domain.SubscriptionResult{Skipped: true})

	assert.Equal(t, 2, summary.Subscriptions)
	assert.Equal(t, 1, summary.SkippedSubscriptions)
	assert.Equal(t, 1, summary.Updated)
	assert.Equal(t, 1, summary.Failed)
	assert.True(t, summary.HasFailures)
}
