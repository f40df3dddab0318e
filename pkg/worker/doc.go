/*
Package worker provides a fixed-size worker pool with bounded intake, typed result handles and graceful shutdown.

# Overview

This package implements a bounded concurrent task-execution engine supporting:
- Fixed number of worker goroutines
- Bounded task queue with blocking backpressure on submit
- Typed result handles (poll or block for outcomes)
- Panic recovery inside workers
- Graceful drain-then-stop shutdown
- Complete statistical information

# Core Components

## Pool

Fixed-size worker pool implementation providing the following features:
- A private bounded queue as the task intake
- Blocking Submit under backpressure, non-blocking TrySubmit
- Idempotent Shutdown that drains queued tasks
- AwaitTermination with timeout
- Real-time statistics

## Worker

Single worker goroutine implementation responsible for:
- Dequeuing and executing tasks until the intake is closed and drained
- Panic recovery and error wrapping
- Publishing each outcome to its handle
- Statistics collection

## Handle

Single-writer result cell for one task:
- Transitions exactly once from pending to success or failure
- Done channel, blocking Wait, non-blocking Result

# Concurrency Safety

All components are safe for concurrent use:
- No task is dequeued by more than one worker
- A failing or panicking task never kills a worker goroutine
- Atomic operations ensure statistical accuracy
- Shutdown wakes every goroutine blocked on the intake

# Error Handling

Failures surface as values, never as control flow out of a worker:
- Task errors and recovered panics are published on the task's Handle
- Panics are wrapped in types.TaskError with a stack trace
- An optional types.ErrorHandler observes every failure
- Submissions after Shutdown fail with types.ErrPoolStopped

# Usage Examples

Basic usage:

	pool, err := worker.NewPool(&worker.Config{
		Workers:       4,
		QueueCapacity: 64,
	})
	if err != nil {
		log.Fatal(err)
	}

	handle, err := pool.Submit(func(ctx context.Context) error {
		// Execute work
		return nil
	})
	if err != nil {
		log.Printf("Failed to submit task: %v", err)
	}

	if _, err := handle.Wait(context.Background()); err != nil {
		log.Printf("Task failed: %v", err)
	}

	pool.Shutdown()
	if !pool.AwaitTermination(5 * time.Second) {
		log.Println("Workers did not finish in time")
	}

Tasks that produce a value:

	handle, err := worker.SubmitFunc(pool, func(ctx context.Context) (int, error) {
		return compute(), nil
	})
	if err != nil {
		log.Fatal(err)
	}

	value, err := handle.Wait(ctx)

Polling instead of blocking:

	if value, ok, err := handle.Result(); ok {
		// terminal state reached
		_ = value
		_ = err
	}

Retrieve statistics:

	stats := pool.Stats()
	fmt.Printf("Active Workers: %d/%d\n", stats.ActiveWorkers, stats.PoolSize)
	fmt.Printf("Queue: %d/%d\n", stats.QueueLen, stats.QueueCapacity)

# Configuration Options

Config supports the following settings:
- Workers: Number of worker goroutines
- QueueCapacity: Task intake capacity
- Clock: Time source, mockable in tests
- ErrorHandler: Observer for task failures
*/
package worker
