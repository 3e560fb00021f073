package output

import (
	"io"

	"github.com/vburojevic/azsam/internal/domain"
)

// Emitter wraps NDJSONWriter with helpers that reuse one encoder.
type Emitter struct {
	w *NDJSONWriter
}

func NewEmitter(w io.Writer) *Emitter {
	return &Emitter{w: NewNDJSONWriter(w)}
}

func (e *Emitter) RunStart(target float64, dryRun bool, subs int) error {
	return e.w.WriteRunStart(target, dryRun, subs)
}
func (e *Emitter) Subscription(sub *domain.Subscription, index, total int) error {
	return e.w.WriteSubscription(sub, index, total)
}
func (e *Emitter) Resource(subID, phase string, res *domain.TelemetryResource) error {
	return e.w.WriteResource(subID, phase, res)
}
func (e *Emitter) Update(subID string, action *domain.ResourceAction) error {
	return e.w.WriteUpdate(subID, action)
}
func (e *Emitter) Summary(s *domain.RunSummary) error { return e.w.WriteSummary(s) }
func (e *Emitter) Error(code, msg string) error       { return e.w.WriteError(code, msg) }
func (e *Emitter) Warning(msg string) error           { return e.w.WriteWarning(msg) }
func (e *Emitter) DiscoveryWarning(warn *domain.DiscoveryWarning) error {
	return e.w.WriteDiscoveryWarning(warn)
}
func (e *Emitter) Info(msg, subscription, mode string) error {
	return e.w.WriteInfo(msg, subscription, mode)
}
func (e *Emitter) Metadata(version, commit, buildDate string) error {
	return e.w.WriteMetadata(version, commit, buildDate)
}
func (e *Emitter) Job(job *domain.Job) error { return e.w.WriteJob(job) }
func (e *Emitter) JobStream(jobName string, entry *domain.JobStreamEntry) error {
	return e.w.WriteJobStream(jobName, entry)
}
func (e *Emitter) Done(hasFailures bool, message string) error {
	return e.w.WriteDone(hasFailures, message)
}
