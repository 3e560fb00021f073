package domain

import "time"

// JobStatus represents the lifecycle state of an automation job
type JobStatus string

const (
	JobStatusNew        JobStatus = "New"
	JobStatusActivating JobStatus = "Activating"
	JobStatusRunning    JobStatus = "Running"
	JobStatusCompleted  JobStatus = "Completed"
	JobStatusFailed     JobStatus = "Failed"
	JobStatusStopped    JobStatus = "Stopped"
	JobStatusSuspended  JobStatus = "Suspended"
)

// IsTerminal returns true once the job can no longer produce output
func (s JobStatus) IsTerminal() bool {
	switch s {
	case JobStatusCompleted, JobStatusFailed, JobStatusStopped, JobStatusSuspended:
		return true
	}
	return false
}

// Succeeded returns true only for a clean completion
func (s JobStatus) Succeeded() bool {
	return s == JobStatusCompleted
}

// Job represents one automation runbook execution
type Job struct {
	Name      string     `json:"name"`
	Runbook   string     `json:"runbook"`
	Status    JobStatus  `json:"status"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
	EndedAt   *time.Time `json:"endedAt,omitempty"`
	Exception string     `json:"exception,omitempty"`
}

// JobStreamKind mirrors the stream channels a runbook writes to
type JobStreamKind string

const (
	JobStreamOutput   JobStreamKind = "Output"
	JobStreamWarning  JobStreamKind = "Warning"
	JobStreamError    JobStreamKind = "Error"
	JobStreamVerbose  JobStreamKind = "Verbose"
	JobStreamProgress JobStreamKind = "Progress"
)

// JobStreamEntry is one line of runbook output
type JobStreamEntry struct {
	ID      string        `json:"id"`
	Time    *time.Time    `json:"time,omitempty"`
	Kind    JobStreamKind `json:"kind"`
	Text    string        `json:"text"`
	Summary string        `json:"summary,omitempty"`
}
