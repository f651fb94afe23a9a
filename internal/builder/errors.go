package builder

import "errors"

var (
	// ErrUnknownTask is returned when a relationship names a task that is not declared.
	ErrUnknownTask = errors.New("unknown task")
	// ErrDuplicateTask is returned when two task blocks share a name.
	ErrDuplicateTask = errors.New("duplicate task name")
	// ErrUnknownRunner is returned when a task block names an unregistered runner.
	ErrUnknownRunner = errors.New("unknown runner")
)
