package cpm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow/internal/core/graph"
	"github.com/taskflow/taskflow/internal/core/task"
)

func buildGraph(t *testing.T, hours map[string]float64, deps map[string][]string) *graph.Graph {
	t.Helper()
	tasks := make([]*task.Task, 0, len(hours))
	for id, h := range hours {
		tk, err := task.New(id, "Task "+id, h, deps[id]...)
		require.NoError(t, err)
		tasks = append(tasks, tk)
	}
	g, err := graph.Build(tasks)
	require.NoError(t, err)
	return g
}

func TestAnalyze_Diamond(t *testing.T) {
	// a(1) -> b(2) -> d(3) outweighs a(1) -> c(1) -> d(3)
	g := buildGraph(t,
		map[string]float64{"a": 1, "b": 2, "c": 1, "d": 3},
		map[string][]string{"b": {"a"}, "c": {"a"}, "d": {"b", "c"}},
	)

	result, err := Analyze(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "d"}, result.Path)
	assert.InDelta(t, 6.0, result.TotalHours, 1e-9)
}

func TestAnalyze_TieBreak(t *testing.T) {
	// two chains of equal weight; the lexicographically smaller id sequence
	// wins
	g := buildGraph(t,
		map[string]float64{"a": 2, "x": 1, "b": 2, "y": 1},
		map[string][]string{"x": {"a"}, "y": {"b"}},
	)

	result, err := Analyze(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "x"}, result.Path)
	assert.InDelta(t, 3.0, result.TotalHours, 1e-9)
}

func TestAnalyze_TieBreakSharedSink(t *testing.T) {
	// both predecessors of d carry the same distance; the path through b is
	// lexicographically smaller than through c
	g := buildGraph(t,
		map[string]float64{"a": 1, "b": 2, "c": 2, "d": 1},
		map[string][]string{"b": {"a"}, "c": {"a"}, "d": {"b", "c"}},
	)

	result, err := Analyze(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "d"}, result.Path)
	assert.InDelta(t, 4.0, result.TotalHours, 1e-9)
}

func TestAnalyze_SingleTask(t *testing.T) {
	g := buildGraph(t, map[string]float64{"only": 5}, nil)

	result, err := Analyze(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"only"}, result.Path)
	assert.InDelta(t, 5.0, result.TotalHours, 1e-9)
}

func TestAnalyze_Cycle(t *testing.T) {
	g := buildGraph(t,
		map[string]float64{"a": 1, "b": 1},
		map[string][]string{"a": {"b"}, "b": {"a"}},
	)

	_, err := Analyze(g)
	var cycle *graph.CycleError
	assert.ErrorAs(t, err, &cycle)
}
