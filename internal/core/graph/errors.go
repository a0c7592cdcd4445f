// Package graph defines domain-specific errors
package graph

import (
	"errors"
	"fmt"
	"strings"
)

// Domain errors - defined once, used everywhere
var (
	ErrEmptyGraph    = errors.New("graph requires at least one task")
	ErrNilTask       = errors.New("task cannot be nil")
	ErrDuplicateTask = errors.New("duplicate task ID")
)

// DanglingDependencyError reports a dependency id that does not resolve to
// any task in the graph. Fatal at build time, never recovered automatically.
type DanglingDependencyError struct {
	TaskID       string
	DependencyID string
}

func (e *DanglingDependencyError) Error() string {
	return fmt.Sprintf("task %s depends on unknown task %s", e.TaskID, e.DependencyID)
}

// CycleError reports that the scheduler could not make progress with tasks
// remaining: the named tasks form or depend on a dependency cycle.
type CycleError struct {
	Stranded []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected among tasks: %s", strings.Join(e.Stranded, ", "))
}
