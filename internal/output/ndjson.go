package output

import (
	"encoding/json"
	"io"
	"time"

	"github.com/vburojevic/azsam/internal/domain"
)

// NDJSONWriter writes run events as NDJSON
type NDJSONWriter struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewNDJSONWriter creates a new NDJSON writer
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // keep resource names unescaped and avoid extra allocations
	return &NDJSONWriter{
		w:       w,
		encoder: enc,
	}
}

// RunStartOutput announces a run and its parameters
type RunStartOutput struct {
	Type          string  `json:"type"` // Always "run_start"
	SchemaVersion int     `json:"schemaVersion"`
	Timestamp     string  `json:"timestamp"`
	Target        float64 `json:"target"`
	DryRun        bool    `json:"dryRun"`
	Subscriptions int     `json:"subscriptions"`
}

// SubscriptionOutput is the per-subscription header event
type SubscriptionOutput struct {
	Type          string `json:"type"` // Always "subscription"
	SchemaVersion int    `json:"schemaVersion"`
	ID            string `json:"id"`
	Name          string `json:"name"`
	TenantID      string `json:"tenantId,omitempty"`
	TenantDomain  string `json:"tenantDomain,omitempty"`
	Index         int    `json:"index"`
	Total         int    `json:"total"`
}

// ResourceOutput is one telemetry resource snapshot row
type ResourceOutput struct {
	Type          string  `json:"type"` // Always "resource"
	SchemaVersion int     `json:"schemaVersion"`
	Subscription  string  `json:"subscription"`
	Resource      string  `json:"resource"`
	ResourceGroup string  `json:"resourceGroup,omitempty"`
	Sampling      float64 `json:"samplingPercentage"`
	Phase         string  `json:"phase"` // "before" or "after"
}

// UpdateOutput records one resource update attempt
type UpdateOutput struct {
	Type          string  `json:"type"` // Always "resource_update"
	SchemaVersion int     `json:"schemaVersion"`
	Subscription  string  `json:"subscription"`
	Resource      string  `json:"resource"`
	ResourceGroup string  `json:"resourceGroup,omitempty"`
	Before        float64 `json:"before"`
	Target        float64 `json:"target"`
	Status        string  `json:"status"`
	Error         string  `json:"error,omitempty"`
}

// InfoOutput represents an informational message
type InfoOutput struct {
	Type          string `json:"type"` // Always "info"
	SchemaVersion int    `json:"schemaVersion"`
	Message       string `json:"message"`
	Subscription  string `json:"subscription,omitempty"`
	Mode          string `json:"mode,omitempty"`
}

// WarningOutput represents a warning message
type WarningOutput struct {
	Type          string `json:"type"` // Always "warning"
	SchemaVersion int    `json:"schemaVersion"`
	Message       string `json:"message"`
	TenantID      string `json:"tenantId,omitempty"`
	Stage         string `json:"stage,omitempty"`
}

// MetadataOutput describes runtime/tool metadata for agents
type MetadataOutput struct {
	Type            string `json:"type"` // Always "metadata"
	SchemaVersion   int    `json:"schemaVersion"`
	Version         string `json:"version"`
	Commit          string `json:"commit"`
	BuildDate       string `json:"build_date,omitempty"`
	ContractVersion int    `json:"contract_version,omitempty"`
}

// JobOutput describes an automation job transition
type JobOutput struct {
	Type          string `json:"type"` // Always "job"
	SchemaVersion int    `json:"schemaVersion"`
	Name          string `json:"name"`
	Runbook       string `json:"runbook,omitempty"`
	Status        string `json:"status"`
	Exception     string `json:"exception,omitempty"`
}

// JobStreamOutput is one line of remote runbook output
type JobStreamOutput struct {
	Type          string `json:"type"` // Always "job_stream"
	SchemaVersion int    `json:"schemaVersion"`
	Job           string `json:"job"`
	StreamID      string `json:"streamId,omitempty"`
	Kind          string `json:"kind"`
	Text          string `json:"text"`
	Timestamp     string `json:"timestamp,omitempty"`
}

// DoneOutput is the terminal marker of a run
type DoneOutput struct {
	Type          string `json:"type"` // Always "done"
	SchemaVersion int    `json:"schemaVersion"`
	HasFailures   bool   `json:"hasFailures"`
	Message       string `json:"message,omitempty"`
}

// WriteRunStart outputs the run announcement
func (w *NDJSONWriter) WriteRunStart(target float64, dryRun bool, subscriptions int) error {
	return w.encoder.Encode(&RunStartOutput{
		Type:          "run_start",
		SchemaVersion: SchemaVersion,
		Timestamp:     time.Now().UTC().Format(time.RFC3339Nano),
		Target:        target,
		DryRun:        dryRun,
		Subscriptions: subscriptions,
	})
}

// WriteSubscription outputs a per-subscription header event
func (w *NDJSONWriter) WriteSubscription(sub *domain.Subscription, index, total int) error {
	return w.encoder.Encode(&SubscriptionOutput{
		Type:          "subscription",
		SchemaVersion: SchemaVersion,
		ID:            sub.ID,
		Name:          sub.Name,
		TenantID:      sub.TenantID,
		TenantDomain:  sub.TenantDomain,
		Index:         index,
		Total:         total,
	})
}

// WriteResource outputs one resource snapshot row
func (w *NDJSONWriter) WriteResource(subscriptionID, phase string, res *domain.TelemetryResource) error {
	return w.encoder.Encode(&ResourceOutput{
		Type:          "resource",
		SchemaVersion: SchemaVersion,
		Subscription:  subscriptionID,
		Resource:      res.Name,
		ResourceGroup: res.ResourceGroup,
		Sampling:      res.SamplingPercentage,
		Phase:         phase,
	})
}

// WriteUpdate outputs one resource update attempt
func (w *NDJSONWriter) WriteUpdate(subscriptionID string, action *domain.ResourceAction) error {
	return w.encoder.Encode(&UpdateOutput{
		Type:          "resource_update",
		SchemaVersion: SchemaVersion,
		Subscription:  subscriptionID,
		Resource:      action.Resource,
		ResourceGroup: action.ResourceGroup,
		Before:        action.Before,
		Target:        action.Target,
		Status:        string(action.Status),
		Error:         action.Error,
	})
}

// WriteSummary outputs the run summary
func (w *NDJSONWriter) WriteSummary(summary *domain.RunSummary) error {
	summary.SchemaVersion = SchemaVersion
	return w.encoder.Encode(summary)
}

// WriteError outputs an error
func (w *NDJSONWriter) WriteError(code, message string, hint ...string) error {
	err := domain.NewErrorOutput(code, message)
	if len(hint) > 0 {
		err.Hint = hint[0]
	}
	err.SchemaVersion = SchemaVersion
	return w.encoder.Encode(err)
}

// WriteRaw outputs raw JSON data
func (w *NDJSONWriter) WriteRaw(v interface{}) error {
	return w.encoder.Encode(v)
}

// WriteInfo outputs an informational message
func (w *NDJSONWriter) WriteInfo(message, subscription, mode string) error {
	return w.encoder.Encode(&InfoOutput{
		Type:          "info",
		SchemaVersion: SchemaVersion,
		Message:       message,
		Subscription:  subscription,
		Mode:          mode,
	})
}

// WriteWarning outputs a warning message
func (w *NDJSONWriter) WriteWarning(message string) error {
	return w.encoder.Encode(&WarningOutput{
		Type:          "warning",
		SchemaVersion: SchemaVersion,
		Message:       message,
	})
}

// WriteDiscoveryWarning outputs a warning tied to a discovery stage
func (w *NDJSONWriter) WriteDiscoveryWarning(warn *domain.DiscoveryWarning) error {
	return w.encoder.Encode(&WarningOutput{
		Type:          "warning",
		SchemaVersion: SchemaVersion,
		Message:       warn.Message,
		TenantID:      warn.TenantID,
		Stage:         warn.Stage,
	})
}

// WriteMetadata outputs runtime metadata
func (w *NDJSONWriter) WriteMetadata(version, commit, buildDate string) error {
	return w.encoder.Encode(&MetadataOutput{
		Type:            "metadata",
		SchemaVersion:   SchemaVersion,
		Version:         version,
		Commit:          commit,
		BuildDate:       buildDate,
		ContractVersion: 1,
	})
}

// WriteJob outputs a job transition event
func (w *NDJSONWriter) WriteJob(job *domain.Job) error {
	return w.encoder.Encode(&JobOutput{
		Type:          "job",
		SchemaVersion: SchemaVersion,
		Name:          job.Name,
		Runbook:       job.Runbook,
		Status:        string(job.Status),
		Exception:     job.Exception,
	})
}

// WriteJobStream outputs one line of runbook output
func (w *NDJSONWriter) WriteJobStream(jobName string, entry *domain.JobStreamEntry) error {
	out := &JobStreamOutput{
		Type:          "job_stream",
		SchemaVersion: SchemaVersion,
		Job:           jobName,
		StreamID:      entry.ID,
		Kind:          string(entry.Kind),
		Text:          entry.Text,
	}
	if entry.Time != nil {
		out.Timestamp = entry.Time.UTC().Format(time.RFC3339Nano)
	}
	return w.encoder.Encode(out)
}

// WriteDone outputs the terminal run marker
func (w *NDJSONWriter) WriteDone(hasFailures bool, message string) error {
	return w.encoder.Encode(&DoneOutput{
		Type:          "done",
		SchemaVersion: SchemaVersion,
		HasFailures:   hasFailures,
		Message:       message,
	})
}
