package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"shotmaster/internal/logging"
	"shotmaster/internal/media"
	"shotmaster/internal/notify"
	"shotmaster/internal/providers"
	"shotmaster/internal/sidecar"
)

// DefaultMaxRetries and DefaultPollDelay match the cadence long video
// generations need: up to ~7.5 minutes of polling.
const (
	DefaultMaxRetries = 30
	DefaultPollDelay  = 15 * time.Second
)

// Task is one outstanding or completed generation request, identified by
// the provider-issued id and persisted in the owning shot's sidecar under
// tasks/<id>.
type Task struct {
	id       string
	doc      *sidecar.Document
	provider providers.Provider
	dest     *media.Folder
	notifier *notify.Center
	log      *slog.Logger

	polling atomic.Bool
	sleeper func(ctx context.Context, d time.Duration) error

	mu        sync.Mutex
	statusLog string
}

// Option customizes a task.
type Option func(*Task)

// WithSleeper overrides how poll delays are performed (useful for tests).
func WithSleeper(sleeper func(ctx context.Context, d time.Duration) error) Option {
	return func(t *Task) {
		if sleeper != nil {
			t.sleeper = sleeper
		}
	}
}

// New wires a task to the shot sidecar it persists into and the media
// folder that receives its artifact.
func New(id string, doc *sidecar.Document, provider providers.Provider, dest *media.Folder, notifier *notify.Center, logger *slog.Logger, opts ...Option) *Task {
	t := &Task{
		id:       id,
		doc:      doc,
		provider: provider,
		dest:     dest,
		notifier: notifier,
		log:      logging.NewComponentLogger(logger, "task"),
		sleeper:  sleepContext,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Task) ID() string { return t.id }

func (t *Task) key() string { return "tasks/" + t.id }

// Data returns the task's sidecar-backed fields.
func (t *Task) Data() map[string]any {
	data, _ := t.doc.Get(t.key()).(map[string]any)
	return data
}

// Status returns the last known state, defaulting to submitted for a task
// that has never been polled.
func (t *Task) Status() providers.State {
	if raw, ok := t.Data()["status"].(string); ok && raw != "" {
		return providers.State(raw)
	}
	return providers.StateSubmitted
}

// Workflow returns the workflow recorded at submission time.
func (t *Task) Workflow() string {
	workflow, _ := t.Data()["workflow"].(string)
	return workflow
}

// Update merges fields into the task's sidecar entry.
func (t *Task) Update(fields map[string]any) {
	t.doc.Merge(t.key(), fields)
}

// RemoveFromSidecar deletes the task's entry from the shot sidecar. It
// does not cancel an in-flight polling loop.
func (t *Task) RemoveFromSidecar() {
	t.doc.Unset(t.key())
}

// IsChecking reports whether a polling loop currently owns this task.
func (t *Task) IsChecking() bool { return t.polling.Load() }

// StatusLog is the human-readable attempt counter shown while polling.
func (t *Task) StatusLog() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.statusLog
}

func (t *Task) setStatusLog(s string) {
	t.mu.Lock()
	t.statusLog = s
	t.mu.Unlock()
}

// CheckStatus polls the provider until the task reaches a terminal state
// or the retry budget runs out. Exactly one loop may own the task at a
// time; a concurrent call is a no-op. Exhaustion leaves the task in its
// last known non-terminal state so the caller may resume polling later.
func (t *Task) CheckStatus(ctx context.Context, maxRetries int, delay time.Duration) error {
	if !t.polling.CompareAndSwap(false, true) {
		return nil
	}
	defer func() {
		t.polling.Store(false)
		t.setStatusLog("")
	}()

	if t.Status().Terminal() {
		return nil
	}

	t.log.Info("polling started",
		logging.String(logging.FieldTaskID, t.id),
		logging.String(logging.FieldProvider, t.provider.Name()))

	for attempt := 0; attempt <= maxRetries; attempt++ {
		status, err := t.provider.PollStatus(ctx, t.id, t.Workflow())
		if err != nil {
			t.log.Error("status poll failed",
				logging.String(logging.FieldTaskID, t.id), logging.Error(err))
			if t.notifier != nil {
				t.notifier.Add(fmt.Sprintf("Generation status check failed: %v", err), notify.SeverityError)
			}
			return err
		}

		t.Update(status.Fields())

		switch {
		case status.State == providers.StateSucceed && status.ResultURL != "":
			return t.downloadResult(ctx, status.ResultURL)
		case status.State == providers.StateSucceed:
			t.log.Warn("task succeeded without a result url",
				logging.String(logging.FieldTaskID, t.id))
			return nil
		case status.State == providers.StateFailed:
			t.log.Warn("task failed",
				logging.String(logging.FieldTaskID, t.id),
				logging.String("status_msg", status.Message))
			if t.notifier != nil {
				t.notifier.Add(fmt.Sprintf("Generation task %s failed", t.id), notify.SeverityError)
			}
			return nil
		}

		if attempt < maxRetries {
			t.setStatusLog(fmt.Sprintf("(attempt %d/%d)", attempt+1, maxRetries))
			if err := t.sleeper(ctx, delay); err != nil {
				return err
			}
		}
	}

	t.log.Warn("task did not finish within the retry budget",
		logging.String(logging.FieldTaskID, t.id),
		logging.Int("max_retries", maxRetries))
	if t.notifier != nil {
		t.notifier.Add(fmt.Sprintf("Generation task %s is still running; check again later", t.id), notify.SeverityWarning)
	}
	return nil
}

// downloadResult pulls the artifact into the destination media folder and
// records the task's provenance on the new item.
func (t *Task) downloadResult(ctx context.Context, url string) error {
	item, err := t.dest.DownloadFromURL(ctx, url)
	if err != nil {
		t.log.Error("result download failed",
			logging.String(logging.FieldTaskID, t.id), logging.Error(err))
		if t.notifier != nil {
			t.notifier.Add(fmt.Sprintf("Failed to download result for task %s", t.id), notify.SeverityError)
		}
		return err
	}

	info := map[string]any{
		"provider": t.provider.Name(),
		"task_id":  t.id,
	}
	data := t.Data()
	for _, field := range []string{"workflow", "prompt", "model", "source"} {
		if v, ok := data[field]; ok {
			info[field] = v
		}
	}
	item.SetGenInfo(info)

	t.log.Info("task artifact downloaded",
		logging.String(logging.FieldTaskID, t.id),
		logging.String(logging.FieldMedia, item.Path()))
	if t.notifier != nil {
		t.notifier.Add("Generation finished", notify.SeveritySuccess, notify.WithMedia(item))
	}
	return nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
