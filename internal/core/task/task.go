// Package task provides the core task domain entities
// following Clean Architecture principles with zero external dependencies.
package task

import (
	"sort"
	"time"
)

// Status represents the lifecycle state of a task.
type Status string

const (
	// StatusPending means the task has not started yet
	StatusPending Status = "pending"
	// StatusReady is a transient property computed by the scheduler;
	// it is never persisted on a task by the engine
	StatusReady Status = "ready"
	// StatusRunning means the task body is executing
	StatusRunning Status = "running"
	// StatusCompleted means the task finished successfully
	StatusCompleted Status = "completed"
	// StatusFailed means the task body returned an error
	StatusFailed Status = "failed"
	// StatusBlocked means a dependency failed and the blocking policy is active
	StatusBlocked Status = "blocked"
	// StatusCancelled means the engine cancelled the task before it started
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether the status is a final state.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusBlocked, StatusCancelled:
		return true
	}
	return false
}

// Valid reports whether the status is a known value.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusReady, StatusRunning, StatusCompleted,
		StatusFailed, StatusBlocked, StatusCancelled:
		return true
	}
	return false
}

// Priority is an ordinal urgency level; a lower value is more urgent.
// Priority is reporting metadata only and never affects scheduling order.
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityMedium
	PriorityLow
)

// String returns the lowercase name of the priority.
func (p Priority) String() string {
	switch p {
	case PriorityCritical:
		return "critical"
	case PriorityHigh:
		return "high"
	case PriorityMedium:
		return "medium"
	case PriorityLow:
		return "low"
	}
	return "unknown"
}

// Valid reports whether the priority is a known ordinal.
func (p Priority) Valid() bool {
	return p >= PriorityCritical && p <= PriorityLow
}

// Weight returns the scoring weight used for resource allocation reports.
func (p Priority) Weight() float64 {
	return float64(PriorityLow - p + 1)
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, ErrInvalidPriority
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	switch string(text) {
	case "critical":
		*p = PriorityCritical
	case "high":
		*p = PriorityHigh
	case "medium":
		*p = PriorityMedium
	case "low":
		*p = PriorityLow
	default:
		return ErrInvalidPriority
	}
	return nil
}

// Task represents one unit of work in a dependency graph.
// PRINCIPLES:
// - KISS: Simple struct, no complex hierarchies
// - SRP: Only responsible for task data, not execution
type Task struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description,omitempty"`
	Category       string    `json:"category,omitempty"`
	Priority       Priority  `json:"priority"`
	EstimatedHours float64   `json:"estimated_hours"`
	Dependencies   []string  `json:"dependencies,omitempty"`
	Status         Status    `json:"status"`
	Outputs        Values    `json:"outputs,omitempty"`
	CheckpointData Values    `json:"checkpoint_data,omitempty"`
	StartedAt      time.Time `json:"started_at,omitzero"`
	CompletedAt    time.Time `json:"completed_at,omitzero"`

	// Err holds the terminal failure cause when Status is StatusFailed.
	Err error `json:"-"`
}

// New builds a validated task with an immutable, sorted, deduplicated
// dependency set. Tasks start in StatusPending.
func New(id, name string, estimatedHours float64, deps ...string) (*Task, error) {
	t := &Task{
		ID:             id,
		Name:           name,
		Priority:       PriorityMedium,
		EstimatedHours: estimatedHours,
		Dependencies:   normalizeDeps(deps),
		Status:         StatusPending,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate ensures task integrity.
// PRINCIPLES:
// - SRP: Single responsibility - validation only
// - KISS: Simple validation rules, easy to understand
func (t *Task) Validate() error {
	if t.ID == "" {
		return ErrInvalidTaskID
	}
	if t.Name == "" {
		return ErrInvalidTaskName
	}
	if t.EstimatedHours < 0 {
		return ErrNegativeEstimate
	}
	if !t.Priority.Valid() {
		return ErrInvalidPriority
	}
	if t.Status != "" && !t.Status.Valid() {
		return ErrInvalidStatus
	}
	for _, dep := range t.Dependencies {
		if dep == t.ID {
			return ErrSelfDependency
		}
	}
	return nil
}

// normalizeDeps sorts and deduplicates a dependency list, dropping empties.
func normalizeDeps(deps []string) []string {
	if len(deps) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(deps))
	out := make([]string, 0, len(deps))
	for _, d := range deps {
		if d == "" {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		out = append(out, d)
	}
	sort.Strings(out)
	if len(out) == 0 {
		return nil
	}
	return out
}
