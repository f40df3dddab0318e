package worker

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/jzx17/gotaskpool/pkg/queue"
	"github.com/jzx17/gotaskpool/pkg/types"
)

// WorkerState defines the state of a Worker
type WorkerState int32

const (
	// WorkerStateIdle represents idle worker state
	WorkerStateIdle WorkerState = iota
	// WorkerStateWorking represents working worker state
	WorkerStateWorking
	// WorkerStateStopped represents stopped worker state
	WorkerStateStopped
)

// String returns the string representation of WorkerState
func (ws WorkerState) String() string {
	switch ws {
	case WorkerStateIdle:
		return "idle"
	case WorkerStateWorking:
		return "working"
	case WorkerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Worker is a single worker goroutine. It loops dequeuing jobs from
// the pool's queue, executes them with panic recovery, publishes each
// outcome to the job's handle, and exits once the queue reports closed
// and empty. A failing job never terminates the loop.
type Worker struct {
	id    int
	queue *queue.Bounded[*job]
	state int32 // atomic WorkerState

	// statistics
	totalProcessed int64
	totalFailed    int64
	lastTaskTime   int64 // Unix nanosecond timestamp

	errorHandler types.ErrorHandler
	clock        types.Clock
}

func newWorker(id int, q *queue.Bounded[*job], clock types.Clock, handler types.ErrorHandler) *Worker {
	return &Worker{
		id:           id,
		state:        int32(WorkerStateIdle),
		queue:        q,
		clock:        clock,
		errorHandler: handler,
	}
}

// ID returns the Worker ID
func (w *Worker) ID() int {
	return w.id
}

// State returns the current Worker state
func (w *Worker) State() WorkerState {
	return WorkerState(atomic.LoadInt32(&w.state))
}

// run is the worker loop. It exits when the queue is closed and
// drained.
func (w *Worker) run(ctx context.Context) {
	defer atomic.StoreInt32(&w.state, int32(WorkerStateStopped))

	for {
		j, err := w.queue.Dequeue()
		if err != nil {
			// closed and drained
			return
		}
		w.processJob(ctx, j)
	}
}

// processJob executes a single job and records the outcome.
func (w *Worker) processJob(ctx context.Context, j *job) {
	atomic.StoreInt32(&w.state, int32(WorkerStateWorking))
	defer atomic.StoreInt32(&w.state, int32(WorkerStateIdle))

	startTime := w.clock.Now()
	atomic.StoreInt64(&w.lastTaskTime, startTime.UnixNano())

	err := w.executeJob(ctx, j)

	if err != nil {
		// the handle may already hold the error if run returned it;
		// the panic path reaches the handle only through fail
		j.fail(err)
		atomic.AddInt64(&w.totalFailed, 1)
		w.handleError(err)
	} else {
		atomic.AddInt64(&w.totalProcessed, 1)
	}
}

// executeJob executes a job with panic recovery support
func (w *Worker) executeJob(ctx context.Context, j *job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			// record panic information
			var buf [4096]byte
			n := runtime.Stack(buf[:], false)

			var cause error
			switch v := r.(type) {
			case error:
				cause = fmt.Errorf("panic: %w", v)
			default:
				cause = fmt.Errorf("panic: %v", v)
			}

			err = types.NewTaskError("worker", j.id, cause).
				WithContext("stack_trace", string(buf[:n])).
				WithContext("worker_id", w.id)
		}
	}()

	return j.run(ctx)
}

// handleError forwards a task failure to the configured handler.
func (w *Worker) handleError(err error) {
	if w.errorHandler == nil {
		return
	}
	if handlerErr := w.errorHandler(err); handlerErr != nil {
		// the handler could not process the failure; the outcome is
		// already published on the handle, nothing more to do
	}
}

// Stats gets Worker statistics
func (w *Worker) Stats() WorkerStats {
	return WorkerStats{
		ID:             w.id,
		State:          w.State(),
		TotalProcessed: atomic.LoadInt64(&w.totalProcessed),
		TotalFailed:    atomic.LoadInt64(&w.totalFailed),
		LastTaskTime:   time.Unix(0, atomic.LoadInt64(&w.lastTaskTime)),
	}
}

// WorkerStats defines Worker statistics
type WorkerStats struct {
	ID             int
	State          WorkerState
	TotalProcessed int64
	TotalFailed    int64
	LastTaskTime   time.Time
}

// IsActive checks if Worker is executing a task
func (ws WorkerStats) IsActive() bool {
	return ws.State == WorkerStateWorking
}

// IsIdle checks if Worker is idle
func (ws WorkerStats) IsIdle() bool {
	return ws.State == WorkerStateIdle
}

// GetSuccessRate gets the success rate
func (ws WorkerStats) GetSuccessRate() float64 {
	total := ws.TotalProcessed + ws.TotalFailed
	if total == 0 {
		return 0
	}
	return float64(ws.TotalProcessed) / float64(total)
}
