package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jzx17/gotaskpool/internal/testutils"
	"github.com/jzx17/gotaskpool/pkg/types"
)

func TestNewPool(t *testing.T) {
	tests := []struct {
		name        string
		config      *Config
		expectError bool
	}{
		{
			name:        "nil config should use default",
			config:      nil,
			expectError: false,
		},
		{
			name: "valid config",
			config: &Config{
				Workers:       5,
				QueueCapacity: 50,
			},
			expectError: false,
		},
		{
			name: "zero workers should error",
			config: &Config{
				Workers:       0,
				QueueCapacity: 50,
			},
			expectError: true,
		},
		{
			name: "negative workers should error",
			config: &Config{
				Workers:       -1,
				QueueCapacity: 50,
			},
			expectError: true,
		},
		{
			name: "zero queue capacity should error",
			config: &Config{
				Workers:       5,
				QueueCapacity: 0,
			},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pool, err := NewPool(tt.config)

			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, pool)
			} else {
				assert.NoError(t, err)
				require.NotNil(t, pool)
				assert.Equal(t, PoolStateRunning, pool.State())
				if tt.config == nil {
					assert.Equal(t, 10, pool.Size()) // default pool size
				} else {
					assert.Equal(t, tt.config.Workers, pool.Size())
				}
				pool.Shutdown()
				assert.True(t, pool.AwaitTermination(2*time.Second))
			}
		})
	}
}

func TestPool_SubmitAndWait(t *testing.T) {
	pool, err := NewPool(&Config{Workers: 2, QueueCapacity: 10})
	require.NoError(t, err)
	defer shutdownPool(t, pool)

	var executed int32
	handle, err := pool.Submit(func(ctx context.Context) error {
		atomic.AddInt32(&executed, 1)
		return nil
	})
	require.NoError(t, err)
	require.NotNil(t, handle)

	_, err = handle.Wait(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&executed))
}

func TestPool_SubmitFuncReturnsValue(t *testing.T) {
	pool, err := NewPool(&Config{Workers: 2, QueueCapacity: 10})
	require.NoError(t, err)
	defer shutdownPool(t, pool)

	handle, err := SubmitFunc(pool, func(ctx context.Context) (string, error) {
		return "done", nil
	})
	require.NoError(t, err)

	value, err := handle.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "done", value)
}

func TestPool_SubmitNilTask(t *testing.T) {
	pool, err := NewPool(&Config{Workers: 1, QueueCapacity: 1})
	require.NoError(t, err)
	defer shutdownPool(t, pool)

	_, err = pool.Submit(nil)
	assert.ErrorIs(t, err, types.ErrNilTask)

	_, err = SubmitFunc[int](pool, nil)
	assert.ErrorIs(t, err, types.ErrNilTask)
}

// One worker, three tasks, the second fails: tasks one and three must
// still complete successfully and the failure must stay confined to
// the second task's handle.
func TestPool_TaskFailureDoesNotKillWorker(t *testing.T) {
	pool, err := NewPool(&Config{Workers: 1, QueueCapacity: 10})
	require.NoError(t, err)
	defer shutdownPool(t, pool)

	taskErr := errors.New("task 2 failed")

	h1, err := pool.Submit(func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	h2, err := pool.Submit(func(ctx context.Context) error { return taskErr })
	require.NoError(t, err)
	h3, err := pool.Submit(func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = h1.Wait(ctx)
	assert.NoError(t, err)

	_, err = h2.Wait(ctx)
	assert.ErrorIs(t, err, taskErr)

	_, err = h3.Wait(ctx)
	assert.NoError(t, err)

	stats := pool.Stats()
	assert.Equal(t, int64(2), stats.TotalProcessed)
	assert.Equal(t, int64(1), stats.TotalFailed)
}

func TestPool_PanicRecovery(t *testing.T) {
	var handled int32
	pool, err := NewPool(&Config{
		Workers:       1,
		QueueCapacity: 10,
		ErrorHandler: func(err error) error {
			atomic.AddInt32(&handled, 1)
			return nil
		},
	})
	require.NoError(t, err)
	defer shutdownPool(t, pool)

	h1, err := pool.Submit(func(ctx context.Context) error {
		panic("something went wrong")
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err = h1.Wait(ctx)
	require.Error(t, err)

	var taskErr *types.TaskError
	require.ErrorAs(t, err, &taskErr)
	assert.Equal(t, "worker", taskErr.Operation)
	assert.Contains(t, taskErr.Cause.Error(), "something went wrong")
	assert.Contains(t, taskErr.Context, "stack_trace")

	// the worker must survive and run the next task
	h2, err := pool.Submit(func(ctx context.Context) error { return nil })
	require.NoError(t, err)
	_, err = h2.Wait(ctx)
	assert.NoError(t, err)

	assert.Equal(t, int32(1), atomic.LoadInt32(&handled))
}

func TestPool_ShutdownRejectsSubmissions(t *testing.T) {
	pool, err := NewPool(&Config{Workers: 2, QueueCapacity: 10})
	require.NoError(t, err)

	pool.Shutdown()

	_, err = pool.Submit(func(ctx context.Context) error { return nil })
	assert.ErrorIs(t, err, types.ErrPoolStopped)

	_, err = SubmitFunc(pool, func(ctx context.Context) (int, error) { return 0, nil })
	assert.ErrorIs(t, err, types.ErrPoolStopped)

	assert.True(t, pool.AwaitTermination(2*time.Second))
	assert.Equal(t, PoolStateStopped, pool.State())
}

func TestPool_ShutdownIsIdempotent(t *testing.T) {
	pool, err := NewPool(&Config{Workers: 1, QueueCapacity: 1})
	require.NoError(t, err)

	pool.Shutdown()
	pool.Shutdown()

	assert.True(t, pool.AwaitTermination(2*time.Second))
}

// Shutdown must let already-queued tasks finish; every handle reaches
// a terminal state.
func TestPool_ShutdownDrainsQueuedTasks(t *testing.T) {
	pool, err := NewPool(&Config{Workers: 2, QueueCapacity: 32})
	require.NoError(t, err)

	var completed int32
	handles := make([]*Handle[struct{}], 0, 20)
	for i := 0; i < 20; i++ {
		h, err := pool.Submit(func(ctx context.Context) error {
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&completed, 1)
			return nil
		})
		require.NoError(t, err)
		handles = append(handles, h)
	}

	pool.Shutdown()
	require.True(t, pool.AwaitTermination(5*time.Second))

	assert.Equal(t, int32(20), atomic.LoadInt32(&completed))
	for _, h := range handles {
		_, ok, err := h.Result()
		assert.True(t, ok, "handle %s not terminal after termination", h.ID())
		assert.NoError(t, err)
	}
}

func TestPool_AwaitTerminationTimesOut(t *testing.T) {
	pool, err := NewPool(&Config{Workers: 1, QueueCapacity: 1})
	require.NoError(t, err)

	release := make(chan struct{})
	_, err = pool.Submit(func(ctx context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, err)

	pool.Shutdown()

	// the worker is stuck in the task, so a short wait must fail
	assert.False(t, pool.AwaitTermination(50*time.Millisecond))

	close(release)
	assert.True(t, pool.AwaitTermination(2*time.Second))
}

// Same scenario driven by a mock clock: the await timer fires without
// any real time passing.
func TestPool_AwaitTerminationMockClock(t *testing.T) {
	mock := testutils.NewMockClock(t)
	clk := testutils.NewClockWrapper(mock)

	pool, err := NewPool(&Config{Workers: 1, QueueCapacity: 1, Clock: clk})
	require.NoError(t, err)

	release := make(chan struct{})
	handle, err := pool.Submit(func(ctx context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, err)

	pool.Shutdown()

	trap := mock.Trap().NewTimer()
	defer trap.Close()

	result := make(chan bool, 1)
	go func() {
		result <- pool.AwaitTermination(time.Second)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// wait for AwaitTermination to create its timer, then fire it
	call := trap.MustWait(ctx)
	call.Release(ctx)
	mock.Advance(time.Second).MustWait(ctx)

	select {
	case completed := <-result:
		assert.False(t, completed)
	case <-time.After(5 * time.Second):
		t.Fatal("AwaitTermination did not return after the timer fired")
	}

	close(release)
	_, err = handle.Wait(ctx)
	assert.NoError(t, err)
	assert.Eventually(t, func() bool {
		return pool.State() == PoolStateStopped
	}, 5*time.Second, 10*time.Millisecond)
}

func TestPool_SubmitBlocksUnderBackpressure(t *testing.T) {
	pool, err := NewPool(&Config{Workers: 1, QueueCapacity: 1})
	require.NoError(t, err)
	defer shutdownPool(t, pool)

	release := make(chan struct{})

	// occupy the single worker
	_, err = pool.Submit(func(ctx context.Context) error {
		<-release
		return nil
	})
	require.NoError(t, err)

	// fill the queue; the worker may have grabbed the first task
	// already, so keep adding until TrySubmit reports full
	require.Eventually(t, func() bool {
		_, err := pool.TrySubmit(func(ctx context.Context) error {
			<-release
			return nil
		})
		return errors.Is(err, types.ErrQueueFull)
	}, 2*time.Second, time.Millisecond)

	// now a blocking submit must wait for queue space
	var blockedDone int32
	go func() {
		_, err := pool.Submit(func(ctx context.Context) error { return nil })
		assert.NoError(t, err)
		atomic.StoreInt32(&blockedDone, 1)
	}()

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), atomic.LoadInt32(&blockedDone))

	close(release)
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&blockedDone) == 1
	}, 5*time.Second, 10*time.Millisecond)
}

func TestPool_ConcurrentSubmitters(t *testing.T) {
	pool, err := NewPool(&Config{Workers: 8, QueueCapacity: 16})
	require.NoError(t, err)

	const (
		submitters        = 8
		tasksPerSubmitter = 50
	)

	var executed int64
	var wg sync.WaitGroup
	for s := 0; s < submitters; s++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < tasksPerSubmitter; i++ {
				_, err := pool.Submit(func(ctx context.Context) error {
					atomic.AddInt64(&executed, 1)
					return nil
				})
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	pool.Shutdown()
	require.True(t, pool.AwaitTermination(5*time.Second))

	assert.Equal(t, int64(submitters*tasksPerSubmitter), atomic.LoadInt64(&executed))
	stats := pool.Stats()
	assert.Equal(t, int64(submitters*tasksPerSubmitter), stats.TotalProcessed)
	assert.Equal(t, int64(0), stats.TotalFailed)
}

func TestPool_WorkerStatsAll(t *testing.T) {
	pool, err := NewPool(&Config{Workers: 3, QueueCapacity: 10})
	require.NoError(t, err)
	defer shutdownPool(t, pool)

	stats := pool.WorkerStatsAll()
	require.Len(t, stats, 3)
	for i, s := range stats {
		assert.Equal(t, i, s.ID)
	}
}

func shutdownPool(t *testing.T, pool *Pool) {
	t.Helper()
	pool.Shutdown()
	assert.True(t, pool.AwaitTermination(5*time.Second))
}
