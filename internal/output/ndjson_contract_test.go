package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vburojevic/azsam/internal/domain"
)

func decodeAll(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	t.Helper()

	dec := json.NewDecoder(bytes.NewReader(buf.Bytes()))
	var out []map[string]interface{}
	for {
		var m map[string]interface{}
		err := dec.Decode(&m)
		if err == nil {
			out = append(out, m)
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		require.NoError(t, err)
	}
	return out
}

func getByType(t *testing.T, items []map[string]interface{}, typ string) map[string]interface{} {
	t.Helper()
	for _, m := range items {
		if m["type"] == typ {
			return m
		}
	}
	require.FailNowf(t, "missing NDJSON type", "type=%s", typ)
	return nil
}

func TestNDJSONWriterContract_AllTypesHaveSchemaVersion(t *testing.T) {
	now := time.Date(2026, 8, 21, 10, 0, 0, 0, time.UTC)

	buf := &bytes.Buffer{}
	w := NewNDJSONWriter(buf)

	require.NoError(t, w.WriteRunStart(5, true, 2))
	require.NoError(t, w.WriteSubscription(&domain.Subscription{
		ID:           "1111",
		Name:         "Prod",
		TenantID:     "tid-1",
		TenantDomain: "contoso.onmicrosoft.com",
	}, 1, 2))
	require.NoError(t, w.WriteResource("1111", "before", &domain.TelemetryResource{
		Name:               "web-insights",
		ResourceGroup:      "rg-prod",
		SamplingPercentage: 100,
	}))
	require.NoError(t, w.WriteUpdate("1111", &domain.ResourceAction{
		Resource:      "web-insights",
		ResourceGroup: "rg-prod",
		Before:        100,
		Target:        5,
		Status:        domain.UpdateStatusWouldUpdate,
	}))
	require.NoError(t, w.WriteResource("1111", "after", &domain.TelemetryResource{
		Name:               "web-insights",
		ResourceGroup:      "rg-prod",
		SamplingPercentage: 5,
	}))

	summary := domain.NewRunSummary(true, 5)
	summary.FinishedAt = now
	require.NoError(t, w.WriteSummary(summary))

	require.NoError(t, w.WriteError("E_CODE", "something went wrong"))
	require.NoError(t, w.WriteInfo("info", "1111", "apply"))
	require.NoError(t, w.WriteWarning("warn"))
	require.NoError(t, w.WriteDiscoveryWarning(&domain.DiscoveryWarning{
		TenantID: "tid-2",
		Stage:    "subscriptions",
		Message:  "listing failed",
	}))
	require.NoError(t, w.WriteMetadata("0.0.0", "deadbeef", "2026-08-21"))
	require.NoError(t, w.WriteJob(&domain.Job{
		Name:    "job-1",
		Runbook: "Set-Sampling",
		Status:  domain.JobStatusRunning,
	}))
	require.NoError(t, w.WriteJobStream("job-1", &domain.JobStreamEntry{
		ID:   "s1",
		Time: &now,
		Kind: domain.JobStreamOutput,
		Text: "hello",
	}))
	require.NoError(t, w.WriteDone(false, "done"))

	items := decodeAll(t, buf)
	require.GreaterOrEqual(t, len(items), 1)

	for _, it := range items {
		require.Contains(t, it, "type")
		require.Contains(t, it, "schemaVersion")
		require.EqualValues(t, SchemaVersion, it["schemaVersion"])
	}

	meta := getByType(t, items, "metadata")
	require.EqualValues(t, 1, meta["contract_version"])

	stream := getByType(t, items, "job_stream")
	require.Contains(t, stream, "timestamp")

	done := getByType(t, items, "done")
	require.Equal(t, false, done["hasFailures"])
}
