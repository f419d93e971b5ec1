package tasks

import "fmt"

// ProgressUpdate represents a progress event during a tracked scan.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	TaskID  string // Task being tracked
	Status  Status // Last observed status, when applicable
	Message string // Human-readable message for display
	Err     error  // Set when the poll loop failed
}

// Operation phase enumeration
type Phase int

const (
	PollStarted Phase = iota
	PollTick
	ScanFinished
	PollFailed
)

func (p Phase) String() string {
	switch p {
	case PollStarted:
		return "poll_started"
	case PollTick:
		return "poll_tick"
	case ScanFinished:
		return "scan_finished"
	case PollFailed:
		return "poll_failed"
	default:
		return ""
	}
}

func pollingStartedUpdate(taskID string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PollStarted,
		TaskID:  taskID,
		Status:  StatusPending,
		Message: "Scanning emails for job application updates...",
	}
}

func statusUpdate(taskID string, status Status) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PollTick,
		TaskID:  taskID,
		Status:  status,
		Message: fmt.Sprintf("Task %s: %s", taskID, status),
	}
}

func finishedUpdate(taskID string, status Status) ProgressUpdate {
	msg := "Scan complete"
	if status == StatusFailure {
		msg = "Scan failed"
	}
	return ProgressUpdate{
		Phase:   ScanFinished,
		TaskID:  taskID,
		Status:  status,
		Message: msg,
	}
}

func pollErrorUpdate(taskID string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PollFailed,
		TaskID:  taskID,
		Status:  StatusFailure,
		Message: fmt.Sprintf("Error fetching task status: %v", err),
		Err:     err,
	}
}
