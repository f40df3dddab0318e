package types

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskError_Error(t *testing.T) {
	cause := errors.New("boom")
	err := NewTaskError("worker", "task-1", cause)

	assert.Contains(t, err.Error(), "worker")
	assert.Contains(t, err.Error(), "task-1")
	assert.Contains(t, err.Error(), "boom")
}

func TestTaskError_Unwrap(t *testing.T) {
	cause := errors.New("boom")
	err := NewTaskError("worker", "task-1", cause)

	assert.Equal(t, cause, errors.Unwrap(err))
}

func TestTaskError_Is(t *testing.T) {
	err := NewTaskError("queue", "task-2", ErrQueueClosed)

	assert.True(t, errors.Is(err, ErrQueueClosed))
	assert.False(t, errors.Is(err, ErrPoolStopped))
}

func TestTaskError_WrappedChain(t *testing.T) {
	wrapped := fmt.Errorf("while draining: %w", ErrQueueClosed)
	err := NewTaskError("pipeline", "task-3", wrapped)

	assert.True(t, errors.Is(err, ErrQueueClosed))
}

func TestTaskError_WithContext(t *testing.T) {
	err := NewTaskError("worker", "task-4", errors.New("boom")).
		WithContext("worker_id", 7).
		WithContext("attempt", 1)

	require.NotNil(t, err.Context)
	assert.Equal(t, 7, err.Context["worker_id"])
	assert.Equal(t, 1, err.Context["attempt"])
}

func TestSentinelErrorsAreDistinct(t *testing.T) {
	sentinels := []error{
		ErrQueueClosed,
		ErrQueueFull,
		ErrQueueEmpty,
		ErrPoolStopped,
		ErrNilTask,
		ErrInsufficientFunds,
		ErrInvalidAmount,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i == j {
				continue
			}
			assert.False(t, errors.Is(a, b), "%v should not match %v", a, b)
		}
	}
}
