// Package tasks tracks the backend email-scan job from submission to a
// terminal status.
//
// The core abstraction is Tracker, which validates and submits the scan,
// persists the returned task id so polling survives process restarts, and
// follows the task at a fixed cadence. Progress flows to the CLI/UI layers
// through a channel with non-blocking sends.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jobtrail/trailctl/internal/services"
	"github.com/jobtrail/trailctl/internal/shared"
	"github.com/jobtrail/trailctl/internal/store"
	"golang.org/x/time/rate"
)

// DefaultPollInterval is the fixed cadence of the status poll loop.
const DefaultPollInterval = 2 * time.Second

// Status is a task status reported by the scan backend.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusStarted Status = "STARTED"
	StatusRetry   Status = "RETRY"
	StatusSuccess Status = "SUCCESS"
	StatusFailure Status = "FAILURE"
	StatusRevoked Status = "REVOKED"
)

// ParseStatus normalizes a raw backend status string.
func ParseStatus(s string) Status {
	return Status(strings.ToUpper(strings.TrimSpace(s)))
}

// Terminal reports whether no further state change can occur. The backend
// only ever settles on SUCCESS or FAILURE; REVOKED is reported but the
// loop keeps polling it like any other in-flight status.
func (s Status) Terminal() bool {
	return s == StatusSuccess || s == StatusFailure
}

// SubmitOptions carries the first-run starting point. StartDate is either
// a yyyy-MM-dd date no later than today or a free-text value.
type SubmitOptions struct {
	StartDate string
}

// Tracker submits the email-scan job and follows it to completion.
// At most one poll loop is active at a time.
type Tracker struct {
	client   *services.Client
	state    store.Store
	logger   *log.Logger
	interval time.Duration

	mu     sync.Mutex
	active bool
	status Status
}

// TrackerOpts contains optional Tracker configuration.
type TrackerOpts struct {
	// Interval overrides the poll cadence. Zero means DefaultPollInterval.
	Interval time.Duration
}

// NewTracker creates a Tracker polling at the default cadence.
func NewTracker(client *services.Client, state store.Store, logger *log.Logger, opts TrackerOpts) *Tracker {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Tracker{
		client:   client,
		state:    state,
		logger:   logger,
		interval: interval,
	}
}

// Active reports whether a poll loop is currently running. The UI disables
// the submit control while true.
func (t *Tracker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

// Status returns the last observed task status.
func (t *Tracker) Status() Status {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.status
}

func (t *Tracker) setStatus(s Status) {
	t.mu.Lock()
	t.status = s
	t.mu.Unlock()
}

// validateStartDate accepts free text, but a value that parses as a
// calendar date must not lie in the future.
func validateStartDate(value string) error {
	if strings.TrimSpace(value) == "" {
		return shared.ErrStartDateRequired
	}
	if d, err := time.Parse("2006-01-02", value); err == nil {
		today := time.Now().Truncate(24 * time.Hour)
		if d.After(today) {
			return fmt.Errorf("%w: start date %s is in the future", shared.ErrInvalidInput, value)
		}
	}
	return nil
}

// Submit validates preconditions, runs the first-run flow when needed, and
// submits the scan. The returned task id is already persisted when Submit
// returns; call Follow to poll it.
//
// No network call is made when validation fails: a connected spreadsheet
// is required, and a first-time user must supply a starting point, which
// is logged to the backend before the real submission. On fetch-log
// success the profile's first-run flag is cleared for subsequent calls.
func (t *Tracker) Submit(ctx context.Context, profile *services.Profile, opts SubmitOptions) (string, error) {
	if t.Active() {
		return "", shared.ErrScanActive
	}

	if !profile.SheetConnected() {
		return "", fmt.Errorf("%w: connect a spreadsheet before fetching jobs from email", shared.ErrSheetNotConnected)
	}

	if profile.FirstTimeUser {
		if err := validateStartDate(opts.StartDate); err != nil {
			return "", err
		}
		if err := t.client.AddFetchLog(ctx, opts.StartDate); err != nil {
			return "", fmt.Errorf("failed to record fetch starting point: %w", err)
		}
		profile.FirstTimeUser = false
		t.logger.Info("fetch starting point recorded", "from", opts.StartDate)
	}

	taskID, err := t.client.SubmitScan(ctx)
	if err != nil {
		return "", err
	}

	if err := t.state.SetPendingTask(taskID); err != nil {
		t.logger.Warn("failed to persist task id", "error", err)
	}
	t.setStatus(StatusPending)
	t.logger.Info("scan submitted", "task_id", taskID)

	return taskID, nil
}

// Resume returns the persisted task id from a previous run, if any. The
// caller follows it without re-submitting; status starts at PENDING.
func (t *Tracker) Resume() (string, bool) {
	taskID, err := t.state.PendingTask()
	if err != nil {
		t.logger.Warn("failed to read pending task", "error", err)
		return "", false
	}
	if taskID == "" {
		return "", false
	}

	t.setStatus(StatusPending)
	t.logger.Info("resuming pending scan", "task_id", taskID)
	return taskID, true
}

// Follow polls the task at the fixed cadence until it reaches a terminal
// status or the poll fails, sending updates through progress (which may be
// nil). It blocks the calling goroutine; the TUI wraps it in its own.
//
// On a terminal status the persisted task id is erased. A transport error
// during polling is terminal-by-failure: the id is erased and the error
// returned. Context cancellation is teardown, not failure: the loop stops
// and the id stays persisted for a later resume.
func (t *Tracker) Follow(ctx context.Context, taskID string, progress chan<- ProgressUpdate) (Status, error) {
	t.mu.Lock()
	if t.active {
		t.mu.Unlock()
		return "", shared.ErrScanActive
	}
	t.active = true
	t.mu.Unlock()

	defer func() {
		t.mu.Lock()
		t.active = false
		t.mu.Unlock()
	}()

	sendProgress(progress, pollingStartedUpdate(taskID))

	limiter := rate.NewLimiter(rate.Every(t.interval), 1)
	// Drain the initial token so the first poll happens one interval
	// after submission, matching the backend's expectations.
	limiter.Allow()

	for {
		if err := limiter.Wait(ctx); err != nil {
			// Teardown: leave the persisted id for resume.
			t.logger.Debug("poll loop cancelled", "task_id", taskID)
			return t.Status(), nil
		}

		raw, err := t.client.TaskStatus(ctx, taskID)
		if err != nil {
			if ctx.Err() != nil {
				t.logger.Debug("poll loop cancelled", "task_id", taskID)
				return t.Status(), nil
			}
			if cerr := t.state.ClearPendingTask(); cerr != nil {
				t.logger.Warn("failed to clear task id", "error", cerr)
			}
			t.logger.Warn("status poll failed", "task_id", taskID, "error", err)
			sendProgress(progress, pollErrorUpdate(taskID, err))
			return StatusFailure, fmt.Errorf("error fetching task status: %w", err)
		}

		status := ParseStatus(raw)
		t.setStatus(status)
		sendProgress(progress, statusUpdate(taskID, status))

		if status.Terminal() {
			if cerr := t.state.ClearPendingTask(); cerr != nil {
				t.logger.Warn("failed to clear task id", "error", cerr)
			}
			t.logger.Info("scan finished", "task_id", taskID, "status", status)
			sendProgress(progress, finishedUpdate(taskID, status))
			return status, nil
		}
	}
}

// sendProgress sends an update without blocking. A full or absent channel
// drops the update rather than stalling the loop.
func sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}
