// Package pipeline composes producers and consumers over a shared
// bounded queue. The queue is the sole coordination mechanism: closing
// it after the last producer finishes is what terminates the
// consumers, no separate done flag is needed.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/jzx17/gotaskpool/pkg/queue"
)

// ProduceFunc generates items and pushes them through emit. emit
// blocks while the queue is full (backpressure) and returns
// types.ErrQueueClosed if the queue was closed underneath the
// producer. A producer returns once it has emitted its last item.
type ProduceFunc[T any] func(ctx context.Context, emit func(T) error) error

// ConsumeFunc processes one item drained from the queue.
type ConsumeFunc[T any] func(ctx context.Context, item T) error

// Config defines configuration for a producer/consumer pipeline
type Config struct {
	// Producers is the number of producer goroutines
	Producers int

	// Consumers is the number of consumer goroutines
	Consumers int

	// QueueCapacity is the capacity of the shared queue
	QueueCapacity int
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Producers:     1,
		Consumers:     1,
		QueueCapacity: 64,
	}
}

// Pipeline runs N producers and M consumers against a shared bounded
// queue. Each Run uses a fresh queue, so a Pipeline value is reusable.
type Pipeline[T any] struct {
	config *Config
}

// New creates a pipeline with the given configuration.
func New[T any](config *Config) (*Pipeline[T], error) {
	if config == nil {
		config = DefaultConfig()
	}

	// parameter validation
	if config.Producers <= 0 {
		return nil, fmt.Errorf("producer count must be positive, got %d", config.Producers)
	}
	if config.Consumers <= 0 {
		return nil, fmt.Errorf("consumer count must be positive, got %d", config.Consumers)
	}
	if config.QueueCapacity <= 0 {
		return nil, fmt.Errorf("queue capacity must be positive, got %d", config.QueueCapacity)
	}

	return &Pipeline[T]{config: config}, nil
}

// Run spawns the configured producers and consumers and blocks until
// both sides have finished. The queue is closed once every producer
// has returned; consumers drain the remaining items and treat the
// closed queue as their termination signal. The first error from any
// producer or consumer is returned; the pipeline still runs to
// completion so no goroutine is left behind.
//
// Cancellation is cooperative: produce and consume receive ctx and are
// expected to return when it is done, which closes the queue and
// unwinds the rest.
func (p *Pipeline[T]) Run(ctx context.Context, produce ProduceFunc[T], consume ConsumeFunc[T]) error {
	if produce == nil || consume == nil {
		return fmt.Errorf("produce and consume functions are required")
	}

	q, err := queue.NewBounded[T](p.config.QueueCapacity)
	if err != nil {
		return err
	}

	var errOnce sync.Once
	var firstErr error
	record := func(err error) {
		if err != nil {
			errOnce.Do(func() { firstErr = err })
		}
	}

	emit := func(item T) error {
		return q.Enqueue(item)
	}

	var producers sync.WaitGroup
	for i := 0; i < p.config.Producers; i++ {
		producers.Add(1)
		go func() {
			defer producers.Done()
			record(produce(ctx, emit))
		}()
	}

	// the last producer to finish closes the queue
	go func() {
		producers.Wait()
		q.Close()
	}()

	var consumers sync.WaitGroup
	for i := 0; i < p.config.Consumers; i++ {
		consumers.Add(1)
		go func() {
			defer consumers.Done()
			for {
				item, err := q.Dequeue()
				if err != nil {
					// closed and drained
					return
				}
				record(consume(ctx, item))
			}
		}()
	}

	producers.Wait()
	consumers.Wait()
	return firstErr
}
