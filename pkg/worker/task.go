package worker

import (
	"context"
)

// Task is a unit of work submitted to a pool: a callable value, not an
// inheritance hierarchy. Tasks that produce a result go through
// SubmitFunc instead.
type Task func(ctx context.Context) error

// job is the internal unit the pool's queue carries. run executes the
// submitted function and publishes success to the handle; fail
// publishes a failure, used when run errors or panics. Both paths go
// through the handle's one-shot transition, so calling fail after a
// successful run is a no-op.
type job struct {
	id   string
	run  func(ctx context.Context) error
	fail func(err error)
}
