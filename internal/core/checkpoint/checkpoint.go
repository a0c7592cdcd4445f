// Package checkpoint provides point-in-time snapshots of task state and the
// shared execution context, restorable by name.
package checkpoint

import (
	"sort"
	"time"

	"github.com/taskflow/taskflow/internal/core/task"
)

// TaskState is the per-task portion of a snapshot.
type TaskState struct {
	Status         task.Status `json:"status"`
	Outputs        task.Values `json:"outputs,omitempty"`
	CheckpointData task.Values `json:"checkpoint_data,omitempty"`
}

// Checkpoint is an immutable, named snapshot of every task's mutable state
// plus the execution context at capture time.
// PRINCIPLES:
// - KISS: Simple struct with clear fields
// - SRP: Only responsible for checkpoint data structure
type Checkpoint struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	RunID     string                 `json:"run_id,omitempty"`
	Completed []string               `json:"completed"`
	Tasks     map[string]TaskState   `json:"tasks"`
	Context   map[string]task.Values `json:"context"`
	CreatedAt time.Time              `json:"created_at"`
}

// Validate ensures checkpoint integrity.
// PRINCIPLES:
// - SRP: Single responsibility - validation only
// - KISS: Simple validation rules, easy to understand
func (c *Checkpoint) Validate() error {
	if c.ID == "" {
		return ErrInvalidCheckpointID
	}
	if c.Name == "" {
		return ErrInvalidCheckpointName
	}
	if c.Tasks == nil {
		return ErrNilTaskState
	}
	return nil
}

// clone returns a deep copy so stored snapshots stay immutable even if the
// caller mutates the returned value.
func (c *Checkpoint) clone() *Checkpoint {
	cp := &Checkpoint{
		ID:        c.ID,
		Name:      c.Name,
		RunID:     c.RunID,
		Completed: append([]string(nil), c.Completed...),
		Tasks:     make(map[string]TaskState, len(c.Tasks)),
		Context:   make(map[string]task.Values, len(c.Context)),
		CreatedAt: c.CreatedAt,
	}
	for id, ts := range c.Tasks {
		cp.Tasks[id] = TaskState{
			Status:         ts.Status,
			Outputs:        ts.Outputs.Clone(),
			CheckpointData: ts.CheckpointData.Clone(),
		}
	}
	for id, vs := range c.Context {
		cp.Context[id] = vs.Clone()
	}
	sort.Strings(cp.Completed)
	return cp
}
