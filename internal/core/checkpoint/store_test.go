package checkpoint

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow/internal/core/graph"
	"github.com/taskflow/taskflow/internal/core/task"
)

func buildFixture(t *testing.T) (*graph.Graph, *task.ExecutionContext, *Store) {
	t.Helper()
	a, err := task.New("a", "Task a", 1)
	require.NoError(t, err)
	b, err := task.New("b", "Task b", 2, "a")
	require.NoError(t, err)
	g, err := graph.Build([]*task.Task{a, b})
	require.NoError(t, err)
	ec := task.NewExecutionContext()
	return g, ec, NewStore(g, ec)
}

func TestStore_RoundTrip(t *testing.T) {
	g, ec, store := buildFixture(t)
	ctx := context.Background()

	// complete task a
	ta, _ := g.Task("a")
	ta.Status = task.StatusCompleted
	ta.Outputs = task.Values{"result": task.String("done")}
	require.NoError(t, ec.Record("a", ta.Outputs))

	cp, err := store.Create(ctx, "before_b")
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, cp.Completed)
	assert.Equal(t, task.StatusCompleted, cp.Tasks["a"].Status)

	// mutate further: b fails, a's outputs change
	tb, _ := g.Task("b")
	tb.Status = task.StatusFailed
	tb.Err = &task.ExecutionError{TaskID: "b", Err: assert.AnError}
	ta.Outputs["result"] = task.String("overwritten")

	require.NoError(t, store.Restore("before_b"))

	assert.Equal(t, task.StatusPending, tb.Status)
	assert.Nil(t, tb.Err)
	assert.Equal(t, task.String("done"), ta.Outputs["result"])

	got, ok := ec.Outputs("a")
	require.True(t, ok)
	assert.Equal(t, task.String("done"), got["result"])
}

func TestStore_RestoreUnknownNameLeavesStateUntouched(t *testing.T) {
	g, ec, store := buildFixture(t)

	ta, _ := g.Task("a")
	ta.Status = task.StatusRunning
	require.NoError(t, ec.Record("a", task.Values{"k": task.Bool(true)}))

	err := store.Restore("never_created")
	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "never_created", notFound.Name)

	assert.Equal(t, task.StatusRunning, ta.Status)
	assert.Equal(t, 1, ec.Len())
}

func TestStore_RestorePicksMostRecentMatch(t *testing.T) {
	g, _, store := buildFixture(t)
	ctx := context.Background()

	ta, _ := g.Task("a")

	_, err := store.Create(ctx, "mark")
	require.NoError(t, err)

	ta.Status = task.StatusCompleted
	_, err = store.Create(ctx, "mark")
	require.NoError(t, err)

	ta.Status = task.StatusFailed
	require.NoError(t, store.Restore("mark"))
	assert.Equal(t, task.StatusCompleted, ta.Status)
}

func TestStore_SnapshotsAreImmutable(t *testing.T) {
	g, _, store := buildFixture(t)
	ctx := context.Background()

	ta, _ := g.Task("a")
	ta.Outputs = task.Values{"n": task.Number(1)}
	cp, err := store.Create(ctx, "snap")
	require.NoError(t, err)

	// mutating the returned snapshot must not affect a later restore
	cp.Tasks["a"].Outputs["n"] = task.Number(99)
	ta.Outputs["n"] = task.Number(50)

	require.NoError(t, store.Restore("snap"))
	assert.Equal(t, task.Number(1), ta.Outputs["n"])
}

func TestStore_CreateRequiresName(t *testing.T) {
	_, _, store := buildFixture(t)
	_, err := store.Create(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidCheckpointName)
}

func TestStore_List(t *testing.T) {
	_, _, store := buildFixture(t)
	ctx := context.Background()

	_, err := store.Create(ctx, "one")
	require.NoError(t, err)
	_, err = store.Create(ctx, "two")
	require.NoError(t, err)

	list := store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "one", list[0].Name)
	assert.Equal(t, "two", list[1].Name)
	assert.Equal(t, 2, store.Len())
}

func TestCheckpoint_Validate(t *testing.T) {
	cp := &Checkpoint{ID: "id", Name: "n", Tasks: map[string]TaskState{}}
	assert.NoError(t, cp.Validate())

	assert.ErrorIs(t, (&Checkpoint{Name: "n", Tasks: map[string]TaskState{}}).Validate(), ErrInvalidCheckpointID)
	assert.ErrorIs(t, (&Checkpoint{ID: "id", Tasks: map[string]TaskState{}}).Validate(), ErrInvalidCheckpointName)
	assert.ErrorIs(t, (&Checkpoint{ID: "id", Name: "n"}).Validate(), ErrNilTaskState)
}
