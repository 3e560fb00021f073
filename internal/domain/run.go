package domain

import "time"

// UpdateStatus describes what happened to a single resource during a run
type UpdateStatus string

const (
	UpdateStatusUpdated     UpdateStatus = "updated"
	UpdateStatusWouldUpdate UpdateStatus = "would_update"
	UpdateStatusFailed      UpdateStatus = "failed"
	UpdateStatusSkipped     UpdateStatus = "skipped"
)

// ResourceAction records the outcome of one resource update attempt
type ResourceAction struct {
	Resource      string       `json:"resource"`
	ResourceGroup string       `json:"resourceGroup,omitempty"`
	Before        float64      `json:"before"`
	Target        float64      `json:"target"`
	Status        UpdateStatus `json:"status"`
	Error         string       `json:"error,omitempty"`
}

// SubscriptionResult aggregates what happened inside one subscription
type SubscriptionResult struct {
	Subscription Subscription        `json:"subscription"`
	Before       []TelemetryResource `json:"before,omitempty"`
	After        []TelemetryResource `json:"after,omitempty"`
	Actions      []ResourceAction    `json:"actions,omitempty"`
	Skipped      bool                `json:"skipped,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// RunSummary aggregates a full run across subscriptions
type RunSummary struct {
	Type          string    `json:"type"`          // Always "run_summary"
	SchemaVersion int       `json:"schemaVersion"` // Schema version for compatibility
	StartedAt     time.Time `json:"startedAt"`
	FinishedAt    time.Time `json:"finishedAt"`
	DryRun        bool      `json:"dryRun"`
	Target        float64   `json:"target"`

	Subscriptions        int `json:"subscriptions"`
	SkippedSubscriptions int `json:"skippedSubscriptions"`
	Resources            int `json:"resources"`
	Updated              int `json:"updated"`
	WouldUpdate          int `json:"wouldUpdate"`
	Failed               int `json:"failed"`

	HasFailures bool `json:"hasFailures"`
}

// NewRunSummary creates an empty summary stamped with the start time
func NewRunSummary(dryRun bool, target float64) *RunSummary {
	return &RunSummary{
		Type:      "run_summary",
		StartedAt: time.Now().UTC(),
		DryRun:    dryRun,
		Target:    target,
	}
}

// Observe folds one subscription result into the summary
func (s *RunSummary) Observe(res SubscriptionResult) {
	s.Subscriptions++
	if res.Skipped {
		s.SkippedSubscriptions++
		s.HasFailures = true
		return
	}
	for _, a := range res.Actions {
		s.Resources++
		switch a.Status {
		case UpdateStatusUpdated:
			s.Updated++
		case UpdateStatusWouldUpdate:
			s.WouldUpdate++
		case UpdateStatusFailed:
			s.Failed++
			s.HasFailures = true
		}
	}
}

// DiscoveryWarning records a tenant or subscription listing that failed
// without aborting the run
type DiscoveryWarning struct {
	TenantID string `json:"tenantId,omitempty"`
	Stage    string `json:"stage"` // "tenant" or "subscriptions"
	Message  string `json:"message"`
}

// ErrorOutput represents a structured error for NDJSON output
type ErrorOutput struct {
	Type          string `json:"type"`           // Always "error"
	SchemaVersion int    `json:"schemaVersion"`  // Schema version for compatibility
	Code          string `json:"code"`           // Machine-readable error code
	Message       string `json:"message"`        // Human-readable message
	Hint          string `json:"hint,omitempty"` // Optional remediation hint
}

// NewErrorOutput creates a new error output
// Note: SchemaVersion should be set by the caller (output package)
func NewErrorOutput(code, message string) *ErrorOutput {
	return &ErrorOutput{
		Type:    "error",
		Code:    code,
		Message: message,
	}
}
