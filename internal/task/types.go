package task

import (
	"context"
)

// State is the lifecycle state of a task.
type State int32

const (
	// Created means the task has not been launched.
	Created State = iota
	// Pending means the task is waiting for its relatives to finish.
	Pending
	// Gated means the task is waiting for its parent's work to finish.
	Gated
	// Running means the task's work is executing.
	Running
	// Completing means the work is done and the task is waiting for its siblings.
	Completing
	// Finished is the terminal state of a task that succeeded.
	Finished
	// Failed is the terminal state of a task whose work, relatives, parent or
	// siblings failed.
	Failed
)

func (s State) String() string {
	switch s {
	case Created:
		return "created"
	case Pending:
		return "pending"
	case Gated:
		return "gated"
	case Running:
		return "running"
	case Completing:
		return "completing"
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether s is Finished or Failed.
func (s State) Terminal() bool {
	return s == Finished || s == Failed
}

// Work is the payload of a task.
type Work interface {
	Run(ctx context.Context, t *Task) error
}

// WorkFunc adapts an ordinary function to the Work interface.
type WorkFunc func(ctx context.Context, t *Task) error

// Run calls f(ctx, t).
func (f WorkFunc) Run(ctx context.Context, t *Task) error {
	return f(ctx, t)
}

// Scheduler is notified once per task, after the task and all of its
// siblings have reached a terminal state.
type Scheduler interface {
	NotifyExecution(ctx context.Context, t *Task)
}

// Limiter is an optional interface a Scheduler may implement to bound how many
// task payloads run at the same time. Acquire blocks until a slot is free and
// returns the function that gives it back.
type Limiter interface {
	Acquire(ctx context.Context) (release func(), err error)
}
