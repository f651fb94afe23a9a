package task

import (
	"errors"
	"fmt"
)

// ErrParentFailed is the cause recorded on a sibling whose parent never
// granted it permission to run.
var ErrParentFailed = errors.New("parent task did not complete its work")

// UpstreamError is the error of a task that did not run its work because a
// relative or its parent failed.
type UpstreamError struct {
	Task     string
	Upstream string
	Err      error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("task %q skipped due to upstream failure of %q: %v", e.Task, e.Upstream, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// SiblingError is the error of a task whose own work succeeded but whose
// sibling subtree did not.
type SiblingError struct {
	Task    string
	Sibling string
	Err     error
}

func (e *SiblingError) Error() string {
	return fmt.Sprintf("task %q: sibling %q failed: %v", e.Task, e.Sibling, e.Err)
}

func (e *SiblingError) Unwrap() error { return e.Err }

// PanicError is the error of a task whose work panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task work panicked: %v", e.Value)
}

// IsRootCause reports whether err originates in a task's own work rather than
// being inherited from another task.
func IsRootCause(err error) bool {
	if err == nil {
		return false
	}
	var up *UpstreamError
	if errors.As(err, &up) {
		return false
	}
	var sib *SiblingError
	return !errors.As(err, &sib)
}

// IsIncomplete reports whether err belongs to a task whose own work succeeded
// but whose sibling subtree failed.
func IsIncomplete(err error) bool {
	_, ok := err.(*SiblingError)
	return ok
}
