package automation

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"

	"github.com/vburojevic/azsam/internal/domain"
)

// DefaultPollInterval is how often the tailer asks for job state and output
const DefaultPollInterval = 10 * time.Second

// maxPollFailures hard-stops a tail after this many consecutive failed polls
const maxPollFailures = 5

// JobAPI is the slice of the automation plane the tailer polls.
// The production implementation wraps the platform SDK; tests use fakes.
type JobAPI interface {
	Job(ctx context.Context, name string) (domain.Job, error)
	JobStreams(ctx context.Context, name string) ([]domain.JobStreamEntry, error)
}

// Sink receives tail events in the order the tailer observes them
type Sink interface {
	// JobStatus fires on the first poll and on every status transition
	JobStatus(job domain.Job)
	// JobStream fires once per output entry, oldest first
	JobStream(entry domain.JobStreamEntry)
	// Warning reports a failed poll the tailer will retry
	Warning(message string)
}

// JobFailedError reports a job that reached a terminal status other than
// a clean completion.
type JobFailedError struct {
	Job domain.Job
}

func (e *JobFailedError) Error() string {
	msg := fmt.Sprintf("job %s ended with status %s", e.Job.Name, strings.ToLower(string(e.Job.Status)))
	if e.Job.Exception != "" {
		msg += ": " + e.Job.Exception
	}
	return msg
}

// Tailer follows one runbook job until it reaches a terminal status,
// forwarding output and status transitions to a sink.
type Tailer struct {
	api      JobAPI
	sink     Sink
	interval time.Duration
	clock    clock.Clock
	log      *zap.Logger
}

// NewTailer builds a tailer polling at the given interval. A non-positive
// interval falls back to DefaultPollInterval.
func NewTailer(api JobAPI, sink Sink, interval time.Duration, log *zap.Logger) *Tailer {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Tailer{
		api:      api,
		sink:     sink,
		interval: interval,
		clock:    clock.New(),
		log:      log,
	}
}

// Tail polls the named job until it reaches a terminal status. It returns
// a JobFailedError when the job ends in any terminal status other than
// Completed, and the context error when cancelled first. Failed polls are
// retried on the next tick; only maxPollFailures in a row abort the tail.
func (t *Tailer) Tail(ctx context.Context, name string) error {
	ticker := t.clock.Ticker(t.interval)
	defer ticker.Stop()

	seen := make(map[string]struct{})
	var lastStatus domain.JobStatus
	failures := 0

	for {
		job, done, err := t.poll(ctx, name, seen, &lastStatus)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return ctx.Err()
			}
			failures++
			if failures >= maxPollFailures {
				return fmt.Errorf("polling job %s: %w", name, err)
			}
			t.log.Warn("job poll failed",
				zap.String("job", name),
				zap.Int("failures", failures),
				zap.Error(err))
			t.sink.Warning(fmt.Sprintf("polling job %s failed (attempt %d/%d): %v", name, failures, maxPollFailures, err))
		case done:
			if !job.Status.Succeeded() {
				return &JobFailedError{Job: job}
			}
			return nil
		default:
			failures = 0
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// poll fetches the job once and forwards whatever is new. done reports a
// terminal status; output is fetched after the status read so a terminal
// poll still drains everything the job wrote before it ended.
func (t *Tailer) poll(ctx context.Context, name string, seen map[string]struct{}, lastStatus *domain.JobStatus) (domain.Job, bool, error) {
	job, err := t.api.Job(ctx, name)
	if err != nil {
		return domain.Job{}, false, err
	}

	entries, err := t.api.JobStreams(ctx, name)
	if err != nil {
		return job, false, err
	}

	for _, entry := range entries {
		key := streamKey(entry)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		t.sink.JobStream(entry)
	}

	if job.Status != *lastStatus {
		*lastStatus = job.Status
		t.sink.JobStatus(job)
	}

	return job, job.Status.IsTerminal(), nil
}

// streamKey dedupes entries across polls. Stream IDs are normally set;
// the composite fallback covers responses that omit them.
func streamKey(entry domain.JobStreamEntry) string {
	if entry.ID != "" {
		return entry.ID
	}
	ts := ""
	if entry.Time != nil {
		ts = entry.Time.Format(time.RFC3339Nano)
	}
	return string(entry.Kind) + "|" + ts + "|" + entry.Text
}
