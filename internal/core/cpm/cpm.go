// Package cpm computes the critical path of a task graph: the dependency
// chain with the maximum cumulative estimated duration, which lower-bounds
// the minimum possible completion time.
package cpm

import (
	"github.com/taskflow/taskflow/internal/core/graph"
	"github.com/taskflow/taskflow/internal/core/plan"
)

// Result holds the critical path and its total weight in hours.
type Result struct {
	Path       []string `json:"path"`
	TotalHours float64  `json:"total_hours"`
}

// Analyze computes the source-to-sink longest path through the dependency
// DAG via topological order and dynamic programming:
//
//	dist[v] = hours(v) + max(dist[u] for u in dependencies(v), default 0)
//
// Ties are broken toward the lexicographically smallest id sequence so the
// result is deterministic. A cyclic graph fails with the same
// *graph.CycleError the level scheduler produces, since the computation is
// delegated to a topological order.
func Analyze(g *graph.Graph) (Result, error) {
	order, err := plan.TopologicalOrder(g)
	if err != nil {
		return Result{}, err
	}

	dist := make(map[string]float64, len(order))
	paths := make(map[string][]string, len(order))

	for _, id := range order {
		t, _ := g.Task(id)

		var bestDist float64
		var bestPath []string
		for _, dep := range t.Dependencies {
			d := dist[dep]
			switch {
			case bestPath == nil, d > bestDist:
				bestDist, bestPath = d, paths[dep]
			case d == bestDist && lessPath(paths[dep], bestPath):
				bestPath = paths[dep]
			}
		}

		dist[id] = t.EstimatedHours + bestDist
		p := make([]string, 0, len(bestPath)+1)
		p = append(p, bestPath...)
		paths[id] = append(p, id)
	}

	var best Result
	for _, id := range order {
		switch {
		case best.Path == nil, dist[id] > best.TotalHours:
			best = Result{Path: paths[id], TotalHours: dist[id]}
		case dist[id] == best.TotalHours && lessPath(paths[id], best.Path):
			best.Path = paths[id]
		}
	}
	return best, nil
}

// lessPath reports whether a is lexicographically smaller than b as an id
// sequence.
func lessPath(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
