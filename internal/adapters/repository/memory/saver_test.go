package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow/internal/core/checkpoint"
	"github.com/taskflow/taskflow/internal/core/task"
)

func sampleCheckpoint(id, name string, at time.Time) *checkpoint.Checkpoint {
	return &checkpoint.Checkpoint{
		ID:        id,
		Name:      name,
		RunID:     "run-1",
		Completed: []string{"a"},
		Tasks: map[string]checkpoint.TaskState{
			"a": {
				Status:  task.StatusCompleted,
				Outputs: task.Values{"out": task.String("done")},
			},
			"b": {Status: task.StatusPending},
		},
		Context: map[string]task.Values{
			"a": {"out": task.String("done")},
		},
		CreatedAt: at,
	}
}

func TestSaver_SaveLoad(t *testing.T) {
	saver := New(nil)
	ctx := context.Background()

	cp := sampleCheckpoint("cp-1", "level_0_start", time.Now().UTC())
	require.NoError(t, saver.Save(ctx, cp))

	loaded, err := saver.Load(ctx, "cp-1")
	require.NoError(t, err)
	assert.Equal(t, cp.Name, loaded.Name)
	assert.Equal(t, cp.RunID, loaded.RunID)
	assert.Equal(t, cp.Completed, loaded.Completed)
	assert.True(t, cp.Tasks["a"].Outputs.Equal(loaded.Tasks["a"].Outputs))
	assert.Equal(t, task.StatusPending, loaded.Tasks["b"].Status)
}

func TestSaver_SaveValidation(t *testing.T) {
	saver := New(nil)
	ctx := context.Background()

	assert.ErrorIs(t, saver.Save(ctx, nil), checkpoint.ErrInvalidCheckpointID)
	assert.ErrorIs(t,
		saver.Save(ctx, &checkpoint.Checkpoint{Name: "n", Tasks: map[string]checkpoint.TaskState{}}),
		checkpoint.ErrInvalidCheckpointID)
}

func TestSaver_LoadMissing(t *testing.T) {
	saver := New(nil)

	_, err := saver.Load(context.Background(), "ghost")
	var notFound *checkpoint.NotFoundError
	assert.ErrorAs(t, err, &notFound)

	_, err = saver.Load(context.Background(), "")
	assert.ErrorIs(t, err, checkpoint.ErrInvalidCheckpointID)
}

func TestSaver_List(t *testing.T) {
	saver := New(nil)
	ctx := context.Background()
	base := time.Now().UTC()

	require.NoError(t, saver.Save(ctx, sampleCheckpoint("cp-1", "level_0_start", base)))
	require.NoError(t, saver.Save(ctx, sampleCheckpoint("cp-2", "level_1_start", base.Add(time.Minute))))
	require.NoError(t, saver.Save(ctx, sampleCheckpoint("cp-3", "level_0_start", base.Add(2*time.Minute))))

	t.Run("newest first", func(t *testing.T) {
		all, err := saver.List(ctx, checkpoint.Filter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "cp-3", all[0].ID)
	})

	t.Run("filter by name", func(t *testing.T) {
		named, err := saver.List(ctx, checkpoint.Filter{Name: "level_0_start"})
		require.NoError(t, err)
		require.Len(t, named, 2)
		assert.Equal(t, "cp-3", named[0].ID)
		assert.Equal(t, "cp-1", named[1].ID)
	})

	t.Run("limit and offset", func(t *testing.T) {
		page, err := saver.List(ctx, checkpoint.Filter{Limit: 1, Offset: 1})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "cp-2", page[0].ID)
	})

	t.Run("since", func(t *testing.T) {
		since := base.Add(30 * time.Second)
		recent, err := saver.List(ctx, checkpoint.Filter{Since: &since})
		require.NoError(t, err)
		assert.Len(t, recent, 2)
	})

	t.Run("invalid filter", func(t *testing.T) {
		_, err := saver.List(ctx, checkpoint.Filter{Limit: -1})
		assert.ErrorIs(t, err, checkpoint.ErrInvalidLimit)
	})
}

func TestSaver_Delete(t *testing.T) {
	saver := New(nil)
	ctx := context.Background()

	require.NoError(t, saver.Save(ctx, sampleCheckpoint("cp-1", "snap", time.Now())))
	require.NoError(t, saver.Delete(ctx, "cp-1"))

	_, err := saver.Load(ctx, "cp-1")
	assert.Error(t, err)

	var notFound *checkpoint.NotFoundError
	assert.ErrorAs(t, saver.Delete(ctx, "cp-1"), &notFound)
	assert.ErrorIs(t, saver.Delete(ctx, ""), checkpoint.ErrInvalidCheckpointID)
}
