// Package task defines domain-specific errors
package task

import (
	"errors"
	"fmt"
)

// Domain errors - defined once, used everywhere
var (
	ErrInvalidTaskID    = errors.New("invalid task ID")
	ErrInvalidTaskName  = errors.New("invalid task name")
	ErrNegativeEstimate = errors.New("estimated hours cannot be negative")
	ErrInvalidPriority  = errors.New("invalid priority")
	ErrInvalidStatus    = errors.New("invalid status")
	ErrSelfDependency   = errors.New("task cannot depend on itself")
	ErrInvalidValue     = errors.New("invalid value")

	// ErrTaskTimeout marks a task body that exceeded its configured deadline.
	ErrTaskTimeout = errors.New("task execution timed out")

	// ErrDuplicateOutput is returned when execution context writes collide.
	ErrDuplicateOutput = errors.New("outputs already recorded for task")
)

// ExecutionError wraps a task body failure. It is recorded on the task and
// surfaced in the run summary; it never aborts sibling tasks.
type ExecutionError struct {
	TaskID string
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("task %s failed: %v", e.TaskID, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}
