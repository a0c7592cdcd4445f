// Package graph provides the dependency graph that owns the full task set
// following Clean Architecture principles with zero external dependencies.
package graph

import (
	"sort"

	"github.com/taskflow/taskflow/internal/core/task"
)

// Graph owns the task arena and the derived dependents adjacency.
// PRINCIPLES:
// - KISS: contiguous task storage with an id index, no scattered nodes
// - SRP: Only responsible for graph structure, not execution
//
// The graph is immutable after Build except for task status, outputs,
// checkpoint data, and timestamps, which only the execution engine mutates.
type Graph struct {
	tasks      []task.Task
	index      map[string]int
	dependents map[string][]string
}

// Build constructs a validated graph from a set of tasks. Every dependency
// id must resolve to a task in the same set; a miss fails with
// *DanglingDependencyError. Duplicate ids are rejected. Cycle detection is
// not performed here; a cyclic graph surfaces as *CycleError when a level
// plan or critical path is requested.
func Build(tasks []*task.Task) (*Graph, error) {
	if len(tasks) == 0 {
		return nil, ErrEmptyGraph
	}

	g := &Graph{
		tasks:      make([]task.Task, 0, len(tasks)),
		index:      make(map[string]int, len(tasks)),
		dependents: make(map[string][]string),
	}

	for _, t := range tasks {
		if t == nil {
			return nil, ErrNilTask
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := g.index[t.ID]; dup {
			return nil, ErrDuplicateTask
		}
		cp := *t
		cp.Dependencies = append([]string(nil), t.Dependencies...)
		cp.Outputs = t.Outputs.Clone()
		cp.CheckpointData = t.CheckpointData.Clone()
		if cp.Status == "" {
			cp.Status = task.StatusPending
		}
		g.index[cp.ID] = len(g.tasks)
		g.tasks = append(g.tasks, cp)
	}

	// Resolve edges and derive dependents
	for i := range g.tasks {
		t := &g.tasks[i]
		for _, dep := range t.Dependencies {
			if _, ok := g.index[dep]; !ok {
				return nil, &DanglingDependencyError{TaskID: t.ID, DependencyID: dep}
			}
			g.dependents[dep] = append(g.dependents[dep], t.ID)
		}
	}
	for id := range g.dependents {
		sort.Strings(g.dependents[id])
	}

	return g, nil
}

// Len returns the number of tasks in the graph.
func (g *Graph) Len() int {
	return len(g.tasks)
}

// Task returns the task with the given id, or false when absent. The pointer
// addresses the arena entry; callers other than the engine must treat it as
// read-only.
func (g *Graph) Task(id string) (*task.Task, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return &g.tasks[i], true
}

// IDs returns every task id in sorted order.
func (g *Graph) IDs() []string {
	ids := make([]string, 0, len(g.tasks))
	for i := range g.tasks {
		ids = append(ids, g.tasks[i].ID)
	}
	sort.Strings(ids)
	return ids
}

// Dependents returns the ids of tasks that directly depend on id, sorted.
func (g *Graph) Dependents(id string) []string {
	deps := g.dependents[id]
	if len(deps) == 0 {
		return nil
	}
	return append([]string(nil), deps...)
}

// Dependencies returns the sorted dependency ids of the given task.
func (g *Graph) Dependencies(id string) []string {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	deps := g.tasks[i].Dependencies
	if len(deps) == 0 {
		return nil
	}
	return append([]string(nil), deps...)
}

// Each calls fn for every task in sorted id order.
func (g *Graph) Each(fn func(*task.Task)) {
	for _, id := range g.IDs() {
		fn(&g.tasks[g.index[id]])
	}
}

// TotalHours sums the estimated hours of every task.
func (g *Graph) TotalHours() float64 {
	var total float64
	for i := range g.tasks {
		total += g.tasks[i].EstimatedHours
	}
	return total
}
