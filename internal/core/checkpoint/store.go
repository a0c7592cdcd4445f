// Package checkpoint provides the in-run checkpoint store
package checkpoint

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/taskflow/taskflow/internal/core/graph"
	"github.com/taskflow/taskflow/internal/core/task"

	imetrics "github.com/taskflow/taskflow/internal/infrastructure/metrics"
)

// Store captures and restores snapshots of one graph's task state and its
// execution context. Snapshots are appended to an ordered list and never
// removed; Restore resolves a name to the most recently created match.
//
// Store is a single-writer facility: Create and Restore must not run
// concurrently with an in-flight level execution.
type Store struct {
	graph   *graph.Graph
	execCtx *task.ExecutionContext
	runID   string
	ordered []*Checkpoint
	saver   Saver
}

// NewStore creates a store bound to a graph and its execution context.
func NewStore(g *graph.Graph, execCtx *task.ExecutionContext) *Store {
	return &Store{graph: g, execCtx: execCtx}
}

// WithRunID tags every snapshot with the owning run id.
func (s *Store) WithRunID(runID string) *Store {
	s.runID = runID
	return s
}

// WithSaver additionally persists every snapshot through the given saver.
func (s *Store) WithSaver(saver Saver) *Store {
	s.saver = saver
	return s
}

// Create snapshots the current task states and execution context under the
// given name, appends the snapshot, and returns it. When a saver is
// configured the snapshot is persisted as well; a persistence failure is
// returned but the in-memory snapshot is kept.
func (s *Store) Create(ctx context.Context, name string) (*Checkpoint, error) {
	if name == "" {
		return nil, ErrInvalidCheckpointName
	}

	cp := &Checkpoint{
		ID:        uuid.New().String(),
		Name:      name,
		RunID:     s.runID,
		Tasks:     make(map[string]TaskState, s.graph.Len()),
		Context:   s.execCtx.Snapshot(),
		CreatedAt: time.Now(),
	}
	s.graph.Each(func(t *task.Task) {
		cp.Tasks[t.ID] = TaskState{
			Status:         t.Status,
			Outputs:        t.Outputs.Clone(),
			CheckpointData: t.CheckpointData.Clone(),
		}
		if t.Status == task.StatusCompleted {
			cp.Completed = append(cp.Completed, t.ID)
		}
	})

	s.ordered = append(s.ordered, cp)

	if s.saver != nil {
		if err := s.saver.Save(ctx, cp.clone()); err != nil {
			return cp.clone(), err
		}
	}
	return cp.clone(), nil
}

// Restore overwrites every task's status, outputs, and checkpoint data plus
// the execution context with the most recent snapshot carrying the given
// name. An unknown name fails with *NotFoundError and leaves current state
// unmodified.
func (s *Store) Restore(name string) error {
	cp := s.find(name)
	if cp == nil {
		return &NotFoundError{Name: name}
	}

	s.graph.Each(func(t *task.Task) {
		state, ok := cp.Tasks[t.ID]
		if !ok {
			return
		}
		t.Status = state.Status
		t.Outputs = state.Outputs.Clone()
		t.CheckpointData = state.CheckpointData.Clone()
		if state.Status != task.StatusFailed {
			t.Err = nil
		}
	})
	s.execCtx.Replace(cp.Context)
	imetrics.IncRestores()
	return nil
}

// List returns copies of all snapshots in creation order.
func (s *Store) List() []*Checkpoint {
	out := make([]*Checkpoint, 0, len(s.ordered))
	for _, cp := range s.ordered {
		out = append(out, cp.clone())
	}
	return out
}

// Len returns the number of snapshots taken.
func (s *Store) Len() int {
	return len(s.ordered)
}

// find returns the most recently created snapshot with the given name.
func (s *Store) find(name string) *Checkpoint {
	for i := len(s.ordered) - 1; i >= 0; i-- {
		if s.ordered[i].Name == name {
			return s.ordered[i]
		}
	}
	return nil
}
