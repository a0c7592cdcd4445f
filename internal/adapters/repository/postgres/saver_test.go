package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflow/taskflow/internal/core/checkpoint"
	"github.com/taskflow/taskflow/internal/core/task"
)

func TestSaver_Validation(t *testing.T) {
	saver := New(nil, nil)

	assert.ErrorIs(t, saver.Save(context.Background(), nil), checkpoint.ErrInvalidCheckpointID)

	_, err := saver.Load(context.Background(), "")
	assert.ErrorIs(t, err, checkpoint.ErrInvalidCheckpointID)

	assert.ErrorIs(t, saver.Delete(context.Background(), ""), checkpoint.ErrInvalidCheckpointID)

	_, err = saver.List(context.Background(), checkpoint.Filter{Limit: -1})
	assert.ErrorIs(t, err, checkpoint.ErrInvalidLimit)
}

func TestSaver_Integration(t *testing.T) {
	dsn := os.Getenv("TASKFLOW_TEST_POSTGRES")
	if dsn == "" {
		t.Skip("Integration test requires PostgreSQL database (set TASKFLOW_TEST_POSTGRES)")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	saver := New(pool, nil)
	require.NoError(t, saver.CreateSchema(ctx))

	cp := &checkpoint.Checkpoint{
		ID:        "cp-it-1",
		Name:      "level_0_start",
		RunID:     "run-it",
		Completed: []string{"a"},
		Tasks: map[string]checkpoint.TaskState{
			"a": {
				Status:  task.StatusCompleted,
				Outputs: task.Values{"rows": task.Number(42)},
			},
		},
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, saver.Save(ctx, cp))
	defer saver.Delete(ctx, cp.ID)

	loaded, err := saver.Load(ctx, cp.ID)
	require.NoError(t, err)
	assert.Equal(t, cp.Name, loaded.Name)
	assert.True(t, cp.Tasks["a"].Outputs.Equal(loaded.Tasks["a"].Outputs))

	list, err := saver.List(ctx, checkpoint.Filter{RunID: "run-it"})
	require.NoError(t, err)
	assert.NotEmpty(t, list)
}
