package worker

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Handle represents the eventual outcome of one submitted task. It is
// a single-writer cell: the worker that executed the task transitions
// it exactly once from pending to success or failure. Any number of
// readers may poll with Result or block with Wait or Done.
type Handle[R any] struct {
	id    string
	done  chan struct{}
	once  sync.Once
	value R
	err   error
}

func newHandle[R any]() *Handle[R] {
	return &Handle[R]{
		id:   uuid.NewString(),
		done: make(chan struct{}),
	}
}

// ID returns the task ID assigned at submission.
func (h *Handle[R]) ID() string {
	return h.id
}

// Done returns a channel that is closed once the task has reached a
// terminal state.
func (h *Handle[R]) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the task reaches a terminal state or ctx is done,
// whichever comes first, and returns the task's value and error.
func (h *Handle[R]) Wait(ctx context.Context) (R, error) {
	select {
	case <-h.done:
		return h.value, h.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// Result returns the task outcome without blocking. ok reports whether
// the task has reached a terminal state; value and err are only
// meaningful when ok is true.
func (h *Handle[R]) Result() (value R, ok bool, err error) {
	select {
	case <-h.done:
		return h.value, true, h.err
	default:
		var zero R
		return zero, false, nil
	}
}

// complete publishes the terminal state. Only the first call has any
// effect; the value and error are visible to readers before done is
// closed.
func (h *Handle[R]) complete(value R, err error) {
	h.once.Do(func() {
		h.value = value
		h.err = err
		close(h.done)
	})
}
