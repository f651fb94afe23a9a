package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/vk/taskgrid/internal/task"
)

var (
	// ErrForeignTask is returned when a task already belongs to another scheduler.
	ErrForeignTask = errors.New("task is owned by another scheduler")
	// ErrAlreadyLaunched is returned when registering a task that was started
	// before it had a scheduler.
	ErrAlreadyLaunched = errors.New("task was launched before registration")
)

// Record is the bookkeeping entry for one task that reached a terminal state.
type Record struct {
	// Order is the 1-based position in which the task was reported.
	Order      int
	TaskID     uint64
	Name       string
	StartedAt  time.Time
	FinishedAt time.Time
	Err        error
}

// Record statuses.
const (
	StatusFinished   = "finished"
	StatusFailed     = "failed"
	StatusIncomplete = "incomplete"
	StatusSkipped    = "skipped"
)

// Status condenses the outcome of the task. A task is incomplete when its own
// work ran but a sibling failed, and skipped when its work never ran because
// another task failed.
func (r Record) Status() string {
	switch {
	case r.Err == nil:
		return StatusFinished
	case task.IsRootCause(r.Err):
		return StatusFailed
	case task.IsIncomplete(r.Err):
		return StatusIncomplete
	default:
		return StatusSkipped
	}
}

// Recorder receives every record as it is produced. Implementations must be
// safe for concurrent use.
type Recorder interface {
	Record(ctx context.Context, runID string, rec Record) error
}

// Summary counts task outcomes for a run.
type Summary struct {
	RunID      string `json:"run_id"`
	Total      int    `json:"total"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	Skipped    int    `json:"skipped"`
	Incomplete int    `json:"incomplete"`
	Pending    int    `json:"pending"`
}
