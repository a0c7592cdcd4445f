// Package plan partitions a task graph into parallel-executable levels.
//
// A level is a maximal batch of tasks whose dependencies are all satisfied
// by strictly earlier levels; the concatenation of all levels is a valid
// topological order of the graph.
package plan

import (
	"sort"

	"github.com/taskflow/taskflow/internal/core/graph"
	"github.com/taskflow/taskflow/internal/core/task"
)

// Levels computes the ordered level partition of the graph.
// PRINCIPLES:
// - KISS: completed/remaining set iteration, no in-degree bookkeeping
// - Deterministic: levels are sorted by task id so repeated calls on the
//   same graph produce identical plans
//
// When no remaining task can progress the stranded ids are reported via
// *graph.CycleError instead of looping forever.
func Levels(g *graph.Graph) ([][]string, error) {
	completed := make(map[string]struct{}, g.Len())
	remaining := make(map[string]struct{}, g.Len())
	for _, id := range g.IDs() {
		remaining[id] = struct{}{}
	}

	var levels [][]string
	for len(remaining) > 0 {
		var level []string
		for id := range remaining {
			if depsSatisfied(g, id, completed) {
				level = append(level, id)
			}
		}
		if len(level) == 0 {
			stranded := make([]string, 0, len(remaining))
			for id := range remaining {
				stranded = append(stranded, id)
			}
			sort.Strings(stranded)
			return nil, &graph.CycleError{Stranded: stranded}
		}
		sort.Strings(level)
		for _, id := range level {
			completed[id] = struct{}{}
			delete(remaining, id)
		}
		levels = append(levels, level)
	}
	return levels, nil
}

// depsSatisfied reports whether every dependency of id is in the completed set.
func depsSatisfied(g *graph.Graph, id string, completed map[string]struct{}) bool {
	t, _ := g.Task(id)
	for _, dep := range t.Dependencies {
		if _, ok := completed[dep]; !ok {
			return false
		}
	}
	return true
}

// TopologicalOrder returns the concatenation of all levels: a deterministic
// topological order of the graph's task ids.
func TopologicalOrder(g *graph.Graph) ([]string, error) {
	levels, err := Levels(g)
	if err != nil {
		return nil, err
	}
	order := make([]string, 0, g.Len())
	for _, level := range levels {
		order = append(order, level...)
	}
	return order, nil
}

// LevelOf returns the level index of every task id in the plan.
func LevelOf(levels [][]string) map[string]int {
	index := make(map[string]int)
	for i, level := range levels {
		for _, id := range level {
			index[id] = i
		}
	}
	return index
}

// Ready returns the ids in the given level whose dependencies have all
// reached StatusCompleted. Readiness is a transient property computed here,
// never persisted on a task.
func Ready(g *graph.Graph, level []string) []string {
	ready := make([]string, 0, len(level))
	for _, id := range level {
		t, ok := g.Task(id)
		if !ok {
			continue
		}
		ok = true
		for _, dep := range t.Dependencies {
			dt, found := g.Task(dep)
			if !found || dt.Status != task.StatusCompleted {
				ok = false
				break
			}
		}
		if ok {
			ready = append(ready, id)
		}
	}
	return ready
}
