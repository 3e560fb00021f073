package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vburojevic/azsam/internal/domain"
)

func sampleResult() domain.SubscriptionResult {
	return domain.SubscriptionResult{
		Subscription: domain.Subscription{
			ID:           "sub-prod",
			Name:         "Prod",
			TenantDomain: "contoso.onmicrosoft.com",
		},
		Before: []domain.TelemetryResource{
			{Name: "web-insights", ResourceGroup: "rg-prod", SamplingPercentage: 100},
		},
		Actions: []domain.ResourceAction{
			{Resource: "web-insights", ResourceGroup: "rg-prod", Before: 100, Target: 5, Status: domain.UpdateStatusUpdated},
		},
		After: []domain.TelemetryResource{
			{Name: "web-insights", ResourceGroup: "rg-prod", SamplingPercentage: 5},
		},
	}
}

func TestText(t *testing.T) {
	t.Run("renders header tables and done marker in order", func(t *testing.T) {
		var buf bytes.Buffer
		rep := NewText(&buf)

		rep.RunStart(5, false, 1)
		rep.Subscription(sampleResult().Subscription, 1, 1)
		rep.Result(sampleResult())
		summary := domain.NewRunSummary(false, 5)
		summary.Observe(sampleResult())
		rep.Summary(summary)
		rep.Done(false)

		out := buf.String()
		assert.Contains(t, out, "Target sampling: 5%")
		assert.Contains(t, out, "[1/1]")
		assert.Contains(t, out, "Prod")
		assert.Contains(t, out, "contoso.onmicrosoft.com")
		assert.Contains(t, out, "Before:")
		assert.Contains(t, out, "After:")
		assert.Contains(t, out, "web-insights")
		assert.Contains(t, out, "rg-prod")
		assert.Contains(t, out, "100% -> 5%")
		assert.Contains(t, out, "Summary: 1 subscription(s), 1 resource(s), 1 updated")
		assert.Contains(t, out, "Done.")

		// before table shows up before the action line, the action before after
		beforeIdx := strings.Index(out, "Before:")
		actionIdx := strings.Index(out, "100% -> 5%")
		afterIdx := strings.Index(out, "After:")
		assert.Less(t, beforeIdx, actionIdx)
		assert.Less(t, actionIdx, afterIdx)
	})

	t.Run("dry run announced in header and summary", func(t *testing.T) {
		var buf bytes.Buffer
		rep := NewText(&buf)

		rep.RunStart(5, true, 2)
		summary := domain.NewRunSummary(true, 5)
		summary.Observe(domain.SubscriptionResult{
			Actions: []domain.ResourceAction{{Status: domain.UpdateStatusWouldUpdate}},
		})
		rep.Summary(summary)

		out := buf.String()
		assert.Contains(t, out, "dry-run")
		assert.Contains(t, out, "would update")
	})

	t.Run("skipped subscription renders reason not tables", func(t *testing.T) {
		var buf bytes.Buffer
		rep := NewText(&buf)

		rep.Result(domain.SubscriptionResult{
			Subscription: domain.Subscription{ID: "sub-x", Name: "X"},
			Skipped:      true,
			Error:        "switching to subscription failed: MFA required",
		})

		out := buf.String()
		assert.Contains(t, out, "Skipped:")
		assert.Contains(t, out, "MFA required")
		assert.NotContains(t, out, "Before:")
	})

	t.Run("empty subscription gets placeholder tables", func(t *testing.T) {
		var buf bytes.Buffer
		rep := NewText(&buf)

		rep.Result(domain.SubscriptionResult{
			Subscription: domain.Subscription{ID: "sub-x"},
			After:        []domain.TelemetryResource{},
		})

		assert.Contains(t, buf.String(), "(no telemetry resources)")
	})

	t.Run("quiet suppresses discovery warnings only", func(t *testing.T) {
		var buf bytes.Buffer
		rep := NewText(&buf)
		rep.Quiet = true

		rep.DiscoveryWarning(domain.DiscoveryWarning{Message: "tenant unreachable"})
		assert.Empty(t, buf.String())

		rep.Result(domain.SubscriptionResult{Skipped: true, Error: "boom"})
		assert.Contains(t, buf.String(), "boom")
	})

	t.Run("failed action shows the error inline", func(t *testing.T) {
		var buf bytes.Buffer
		rep := NewText(&buf)

		res := sampleResult()
		res.Actions[0].Status = domain.UpdateStatusFailed
		res.Actions[0].Error = "locked by policy"
		rep.Result(res)

		assert.Contains(t, buf.String(), "locked by policy")
	})
}

func decodeLines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	dec := json.NewDecoder(bytes.NewReader(buf.Bytes()))
	for dec.More() {
		var m map[string]interface{}
		require.NoError(t, dec.Decode(&m))
		out = append(out, m)
	}
	return out
}

func TestNDJSON(t *testing.T) {
	t.Run("emits full event sequence", func(t *testing.T) {
		var buf bytes.Buffer
		rep := NewNDJSON(&buf)

		rep.RunStart(5, false, 1)
		rep.Subscription(sampleResult().Subscription, 1, 1)
		rep.Result(sampleResult())
		summary := domain.NewRunSummary(false, 5)
		rep.Summary(summary)
		rep.Done(false)

		events := decodeLines(t, &buf)
		var types []string
		for _, e := range events {
			types = append(types, e["type"].(string))
		}
		assert.Equal(t, []string{
			"run_start", "subscription", "resource", "resource_update",
			"resource", "run_summary", "done",
		}, types)

		// before and after phases are distinguishable
		assert.Equal(t, "before", events[2]["phase"])
		assert.Equal(t, "after", events[4]["phase"])
	})

	t.Run("skipped subscription becomes a warning event", func(t *testing.T) {
		var buf bytes.Buffer
		rep := NewNDJSON(&buf)

		rep.Result(domain.SubscriptionResult{
			Subscription: domain.Subscription{ID: "sub-x"},
			Skipped:      true,
			Error:        "boom",
		})

		events := decodeLines(t, &buf)
		require.Len(t, events, 1)
		assert.Equal(t, "warning", events[0]["type"])
		assert.Contains(t, events[0]["message"], "boom")
	})
}

func TestMulti(t *testing.T) {
	t.Run("fans out to all reporters", func(t *testing.T) {
		var text, ndjson bytes.Buffer
		rep := NewMulti(NewText(&text), NewNDJSON(&ndjson))

		rep.RunStart(5, false, 1)
		rep.Done(true)

		assert.Contains(t, text.String(), "Target sampling: 5%")
		events := decodeLines(t, &ndjson)
		require.Len(t, events, 2)
		assert.Equal(t, "run_start", events[0]["type"])
		assert.Equal(t, true, events[1]["hasFailures"])
	})
}
