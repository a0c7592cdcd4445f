package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionContext_WriteOnce(t *testing.T) {
	ec := NewExecutionContext()

	require.NoError(t, ec.Record("a", Values{"out": String("first")}))
	err := ec.Record("a", Values{"out": String("second")})
	assert.ErrorIs(t, err, ErrDuplicateOutput)

	got, ok := ec.Outputs("a")
	require.True(t, ok)
	assert.Equal(t, String("first"), got["out"])

	_, ok = ec.Outputs("missing")
	assert.False(t, ok)
	assert.Equal(t, 1, ec.Len())
}

func TestExecutionContext_SnapshotIsolation(t *testing.T) {
	ec := NewExecutionContext()
	require.NoError(t, ec.Record("a", Values{"n": Number(1)}))

	snap := ec.Snapshot()
	snap["a"]["n"] = Number(99)

	got, _ := ec.Outputs("a")
	assert.Equal(t, Number(1), got["n"])
}

func TestExecutionContext_Replace(t *testing.T) {
	ec := NewExecutionContext()
	require.NoError(t, ec.Record("a", Values{"n": Number(1)}))
	require.NoError(t, ec.Record("b", Values{"n": Number(2)}))

	ec.Replace(map[string]Values{"c": {"n": Number(3)}})

	_, ok := ec.Outputs("a")
	assert.False(t, ok)
	got, ok := ec.Outputs("c")
	require.True(t, ok)
	assert.Equal(t, Number(3), got["n"])
	assert.Equal(t, 1, ec.Len())
}
