package validation

import (
	"sort"

	coregraph "github.com/taskflow/taskflow/internal/core/graph"
)

// GraphOptions controls optional structural checks.
type GraphOptions struct {
	// CheckCycles enables eager detection of dependency cycles. The level
	// scheduler discovers cycles lazily either way; this check lets callers
	// fail fast before planning.
	CheckCycles bool
}

// ValidateGraph performs structural validation on a built graph. Intended
// for graphs reconstructed from external documents where builder guards may
// have been bypassed.
func ValidateGraph(g *coregraph.Graph, opts ...GraphOptions) error {
	if g == nil {
		return Error{Field: "graph", Message: "failed 'required' rule"}
	}

	var opt GraphOptions
	if len(opts) > 0 {
		opt = opts[0]
	}

	for _, id := range g.IDs() {
		if err := TaskID(id); err != nil {
			return err
		}
	}

	if opt.CheckCycles {
		return checkCycles(g)
	}
	return nil
}

// checkCycles runs an iterative three-color DFS and reports any cycle via
// the same *graph.CycleError the scheduler produces.
func checkCycles(g *coregraph.Graph) error {
	const (
		white = iota
		grey
		black
	)
	color := make(map[string]int, g.Len())

	var stranded []string
	var visit func(id string) bool
	visit = func(id string) bool {
		color[id] = grey
		for _, dep := range g.Dependencies(id) {
			switch color[dep] {
			case grey:
				return true
			case white:
				if visit(dep) {
					return true
				}
			}
		}
		color[id] = black
		return false
	}

	for _, id := range g.IDs() {
		if color[id] == white && visit(id) {
			// Everything still grey is on or behind the cycle.
			for n, c := range color {
				if c == grey {
					stranded = append(stranded, n)
				}
			}
			sort.Strings(stranded)
			return &coregraph.CycleError{Stranded: stranded}
		}
	}
	return nil
}
