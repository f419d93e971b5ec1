package main

import (
	"context"
	"fmt"

	"github.com/jobtrail/trailctl/internal/shared"
	"github.com/jobtrail/trailctl/internal/tasks"
	"github.com/urfave/cli/v3"
)

// ScanRun submits an email scan and follows it to a terminal status.
//
// A first-time account must pass --from so the backend knows how far back
// the first scan should reach.
func (r *Runner) ScanRun(ctx context.Context, cmd *cli.Command) error {
	profile, err := r.verifier.Run(ctx)
	if err != nil || profile == nil {
		return fmt.Errorf("%w: session verification failed", shared.ErrNotAuthenticated)
	}

	taskID, err := r.tracker.Submit(ctx, profile, tasks.SubmitOptions{StartDate: cmd.String("from")})
	if err != nil {
		return err
	}

	r.writePlain("Scanning emails for job application updates (task %s)\n", taskID)
	return r.followScan(ctx, taskID)
}

// ScanResume picks up a scan left behind by an earlier run.
func (r *Runner) ScanResume(ctx context.Context, cmd *cli.Command) error {
	if _, err := r.verifier.Run(ctx); err != nil {
		return fmt.Errorf("%w: session verification failed", shared.ErrNotAuthenticated)
	}

	taskID, ok := r.tracker.Resume()
	if !ok {
		return fmt.Errorf("%w: nothing to resume", shared.ErrNoPendingTask)
	}

	r.writePlain("Resuming scan (task %s)\n", taskID)
	return r.followScan(ctx, taskID)
}

// ScanStatus fetches a task's status once, without polling. With no
// argument it looks at the persisted pending task.
func (r *Runner) ScanStatus(ctx context.Context, cmd *cli.Command) error {
	taskID := cmd.StringArg("id")
	if taskID == "" {
		var ok bool
		if taskID, ok = r.tracker.Resume(); !ok {
			return fmt.Errorf("%w: pass a task id or submit a scan first", shared.ErrNoPendingTask)
		}
	}

	raw, err := r.client.TaskStatus(ctx, taskID)
	if err != nil {
		return err
	}

	return r.writePlain("Task %s: %s\n", taskID, tasks.ParseStatus(raw))
}

// followScan drains progress updates to stdout while the tracker polls.
func (r *Runner) followScan(ctx context.Context, taskID string) error {
	progress := make(chan tasks.ProgressUpdate, 50)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for update := range progress {
			if update.Phase == tasks.PollTick {
				r.writePlain("  %s\n", update.Message)
			}
		}
	}()

	status, err := r.tracker.Follow(ctx, taskID, progress)
	close(progress)
	<-done

	if err != nil {
		return err
	}

	switch status {
	case tasks.StatusSuccess:
		return r.writePlain("✓ Scan complete\n")
	case tasks.StatusFailure:
		return fmt.Errorf("scan failed (task %s)", taskID)
	default:
		return r.writePlain("Scan stopped with status %s; run `trailctl scan resume` to continue\n", status)
	}
}
