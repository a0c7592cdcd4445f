package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coregraph "github.com/taskflow/taskflow/internal/core/graph"
	"github.com/taskflow/taskflow/internal/core/task"
)

type sample struct {
	ID    string  `json:"id" validate:"required,task_id"`
	Name  string  `json:"name" validate:"required"`
	Hours float64 `json:"estimated_hours" validate:"gte=0"`
}

func TestStruct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Struct(sample{ID: "build-api", Name: "Build", Hours: 2}))
	})

	t.Run("invalid id and negative hours", func(t *testing.T) {
		err := Struct(sample{ID: "bad id!", Name: "Build", Hours: -2})
		var errs Errors
		require.ErrorAs(t, err, &errs)
		assert.Len(t, errs, 2)
		// JSON tag names are reported, not Go field names
		assert.Equal(t, "id", errs[0].Field)
		assert.Equal(t, "estimated_hours", errs[1].Field)
	})

	t.Run("missing name", func(t *testing.T) {
		err := Struct(sample{ID: "ok", Hours: 1})
		assert.Error(t, err)
	})
}

func TestTaskID(t *testing.T) {
	assert.NoError(t, TaskID("a"))
	assert.NoError(t, TaskID("build-api_v2.1"))
	assert.Error(t, TaskID(""))
	assert.Error(t, TaskID("-leading"))
	assert.Error(t, TaskID("has space"))
}

func buildGraph(t *testing.T, specs map[string][]string) *coregraph.Graph {
	t.Helper()
	tasks := make([]*task.Task, 0, len(specs))
	for id, deps := range specs {
		tk, err := task.New(id, "Task "+id, 1, deps...)
		require.NoError(t, err)
		tasks = append(tasks, tk)
	}
	g, err := coregraph.Build(tasks)
	require.NoError(t, err)
	return g
}

func TestValidateGraph(t *testing.T) {
	t.Run("nil graph", func(t *testing.T) {
		assert.Error(t, ValidateGraph(nil))
	})

	t.Run("acyclic passes with cycle check", func(t *testing.T) {
		g := buildGraph(t, map[string][]string{
			"a": nil, "b": {"a"}, "c": {"a", "b"},
		})
		assert.NoError(t, ValidateGraph(g, GraphOptions{CheckCycles: true}))
	})

	t.Run("cycle detected eagerly", func(t *testing.T) {
		g := buildGraph(t, map[string][]string{
			"a": {"c"}, "b": {"a"}, "c": {"b"},
		})
		err := ValidateGraph(g, GraphOptions{CheckCycles: true})
		var cycle *coregraph.CycleError
		require.ErrorAs(t, err, &cycle)
		assert.NotEmpty(t, cycle.Stranded)
	})

	t.Run("cycles ignored without option", func(t *testing.T) {
		g := buildGraph(t, map[string][]string{
			"a": {"b"}, "b": {"a"},
		})
		assert.NoError(t, ValidateGraph(g))
	})
}
