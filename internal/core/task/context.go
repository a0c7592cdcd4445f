// Package task provides the shared execution context
package task

import "sync"

// ExecutionContext accumulates each task's outputs as a run progresses.
// It is read-only to task bodies and write-once per task id; the engine is
// the sole writer, at level boundaries.
type ExecutionContext struct {
	mu      sync.RWMutex
	outputs map[string]Values
}

// NewExecutionContext creates an empty execution context.
func NewExecutionContext() *ExecutionContext {
	return &ExecutionContext{outputs: make(map[string]Values)}
}

// Record stores a completed task's outputs. Each id is written exactly once;
// a second write for the same id is rejected.
func (c *ExecutionContext) Record(id string, outputs Values) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.outputs[id]; exists {
		return ErrDuplicateOutput
	}
	c.outputs[id] = outputs.Clone()
	return nil
}

// Outputs returns the outputs recorded for a task id.
func (c *ExecutionContext) Outputs(id string) (Values, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	vs, ok := c.outputs[id]
	if !ok {
		return nil, false
	}
	return vs.Clone(), true
}

// Len returns the number of tasks with recorded outputs.
func (c *ExecutionContext) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.outputs)
}

// Snapshot returns a deep copy of the full id to outputs mapping.
func (c *ExecutionContext) Snapshot() map[string]Values {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]Values, len(c.outputs))
	for id, vs := range c.outputs {
		out[id] = vs.Clone()
	}
	return out
}

// Replace overwrites the full mapping wholesale. Used by checkpoint restore;
// it must not run concurrently with an in-flight level.
func (c *ExecutionContext) Replace(snapshot map[string]Values) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outputs = make(map[string]Values, len(snapshot))
	for id, vs := range snapshot {
		c.outputs[id] = vs.Clone()
	}
}
