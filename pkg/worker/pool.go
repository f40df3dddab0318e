package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jzx17/gotaskpool/pkg/queue"
	"github.com/jzx17/gotaskpool/pkg/types"
)

// PoolState defines the lifecycle state of a Pool
type PoolState int32

const (
	// PoolStateRunning accepts submissions
	PoolStateRunning PoolState = iota
	// PoolStateDraining rejects submissions while queued tasks finish
	PoolStateDraining
	// PoolStateStopped means all workers have exited
	PoolStateStopped
)

// String returns the string representation of PoolState
func (ps PoolState) String() string {
	switch ps {
	case PoolStateRunning:
		return "running"
	case PoolStateDraining:
		return "draining"
	case PoolStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config defines configuration for a fixed worker pool
type Config struct {
	// Workers is the number of worker goroutines
	Workers int

	// QueueCapacity is the capacity of the internal task queue
	QueueCapacity int

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// ErrorHandler is invoked by workers when a task fails (optional)
	ErrorHandler types.ErrorHandler
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Workers:       10,
		QueueCapacity: 100,
		Clock:         types.NewRealClock(),
	}
}

// Pool is a fixed-size worker pool. Submitted tasks are enqueued into
// a private bounded queue; idle workers dequeue and execute them and
// publish each outcome through a Handle. Submission blocks under
// backpressure when the queue is full.
//
// Lifecycle: running → draining → stopped. Shutdown moves the pool to
// draining and closes the intake; queued tasks still run. Once every
// worker has exited the pool is stopped.
type Pool struct {
	config  *Config
	queue   *queue.Bounded[*job]
	workers []*Worker

	state        int32 // atomic PoolState
	shutdownOnce sync.Once
	done         chan struct{} // closed when all workers have exited
}

// NewPool creates a pool and spawns its workers immediately.
func NewPool(config *Config) (*Pool, error) {
	if config == nil {
		config = DefaultConfig()
	}

	// parameter validation
	if config.Workers <= 0 {
		return nil, fmt.Errorf("worker count must be positive, got %d", config.Workers)
	}
	if config.QueueCapacity <= 0 {
		return nil, fmt.Errorf("queue capacity must be positive, got %d", config.QueueCapacity)
	}
	if config.Clock == nil {
		config.Clock = types.NewRealClock()
	}

	q, err := queue.NewBounded[*job](config.QueueCapacity)
	if err != nil {
		return nil, err
	}

	p := &Pool{
		config:  config,
		queue:   q,
		workers: make([]*Worker, config.Workers),
		state:   int32(PoolStateRunning),
		done:    make(chan struct{}),
	}

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < config.Workers; i++ {
		w := newWorker(i, q, config.Clock, config.ErrorHandler)
		p.workers[i] = w
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(ctx)
		}()
	}

	go func() {
		wg.Wait()
		atomic.StoreInt32(&p.state, int32(PoolStateStopped))
		close(p.done)
	}()

	return p, nil
}

// Submit submits a task with no produced value. It blocks while the
// internal queue is full and returns types.ErrPoolStopped once the
// pool is no longer running.
func (p *Pool) Submit(task Task) (*Handle[struct{}], error) {
	if task == nil {
		return nil, types.ErrNilTask
	}
	return SubmitFunc(p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, task(ctx)
	})
}

// TrySubmit submits a task without blocking on backpressure. Returns
// types.ErrQueueFull when the intake is full.
func (p *Pool) TrySubmit(task Task) (*Handle[struct{}], error) {
	if task == nil {
		return nil, types.ErrNilTask
	}
	return TrySubmitFunc(p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, task(ctx)
	})
}

// SubmitFunc submits a function producing a value of type R and
// returns a typed handle to its eventual result. It blocks while the
// internal queue is full; the handle itself is returned immediately
// after the task is enqueued.
func SubmitFunc[R any](p *Pool, fn func(ctx context.Context) (R, error)) (*Handle[R], error) {
	h, j, err := prepare(p, fn)
	if err != nil {
		return nil, err
	}
	if err := p.queue.Enqueue(j); err != nil {
		// closed between the state check and the enqueue
		return nil, types.ErrPoolStopped
	}
	return h, nil
}

// TrySubmitFunc is the non-blocking variant of SubmitFunc.
func TrySubmitFunc[R any](p *Pool, fn func(ctx context.Context) (R, error)) (*Handle[R], error) {
	h, j, err := prepare(p, fn)
	if err != nil {
		return nil, err
	}
	if err := p.queue.TryEnqueue(j); err != nil {
		if err == types.ErrQueueFull {
			return nil, types.ErrQueueFull
		}
		return nil, types.ErrPoolStopped
	}
	return h, nil
}

// prepare validates the submission and binds a fresh handle to a job.
func prepare[R any](p *Pool, fn func(ctx context.Context) (R, error)) (*Handle[R], *job, error) {
	if fn == nil {
		return nil, nil, types.ErrNilTask
	}
	if p.State() != PoolStateRunning {
		return nil, nil, types.ErrPoolStopped
	}

	h := newHandle[R]()
	j := &job{
		id: h.id,
		run: func(ctx context.Context) error {
			value, err := fn(ctx)
			h.complete(value, err)
			return err
		},
		fail: func(err error) {
			var zero R
			h.complete(zero, err)
		},
	}
	return h, j, nil
}

// Shutdown transitions the pool from running to draining: the intake
// is closed so no further submissions are accepted, while tasks
// already queued run to completion. Shutdown is idempotent and returns
// without waiting; use AwaitTermination to wait for the workers.
func (p *Pool) Shutdown() {
	p.shutdownOnce.Do(func() {
		atomic.CompareAndSwapInt32(&p.state,
			int32(PoolStateRunning), int32(PoolStateDraining))
		p.queue.Close()
	})
}

// AwaitTermination blocks until every worker has exited or timeout
// elapses, whichever comes first, and reports whether termination
// completed in time. In-flight tasks are never aborted; termination
// relies on workers observing the closed intake.
func (p *Pool) AwaitTermination(timeout time.Duration) bool {
	timer := p.config.Clock.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-p.done:
		return true
	case <-timer.C():
		return false
	}
}

// State returns the current pool state.
func (p *Pool) State() PoolState {
	return PoolState(atomic.LoadInt32(&p.state))
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return p.config.Workers
}

// QueueLen returns the number of queued tasks.
func (p *Pool) QueueLen() int {
	return p.queue.Len()
}

// QueueCapacity returns the intake queue capacity.
func (p *Pool) QueueCapacity() int {
	return p.config.QueueCapacity
}

// Stats returns aggregate pool statistics.
func (p *Pool) Stats() PoolStats {
	var active int
	var processed, failed int64
	for _, w := range p.workers {
		if w.State() == WorkerStateWorking {
			active++
		}
		s := w.Stats()
		processed += s.TotalProcessed
		failed += s.TotalFailed
	}

	return PoolStats{
		State:          p.State(),
		PoolSize:       p.config.Workers,
		ActiveWorkers:  active,
		QueueLen:       p.queue.Len(),
		QueueCapacity:  p.config.QueueCapacity,
		TotalProcessed: processed,
		TotalFailed:    failed,
	}
}

// WorkerStatsAll returns per-worker statistics.
func (p *Pool) WorkerStatsAll() []WorkerStats {
	stats := make([]WorkerStats, len(p.workers))
	for i, w := range p.workers {
		stats[i] = w.Stats()
	}
	return stats
}

// PoolStats defines aggregate statistics for a pool
type PoolStats struct {
	State          PoolState
	PoolSize       int
	ActiveWorkers  int
	QueueLen       int
	QueueCapacity  int
	TotalProcessed int64
	TotalFailed    int64
}
