// Package types defines shared error types for the task engine
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrQueueClosed indicates the queue has been closed. Consumers
	// treat it as the normal termination signal once the queue drains.
	ErrQueueClosed = errors.New("queue is closed")

	// ErrQueueFull indicates a non-blocking enqueue found the queue full
	ErrQueueFull = errors.New("queue is full")

	// ErrQueueEmpty indicates a non-blocking dequeue found the queue empty
	ErrQueueEmpty = errors.New("queue is empty")

	// ErrPoolStopped indicates a submission was rejected because the
	// pool is no longer running
	ErrPoolStopped = errors.New("worker pool is stopped")

	// ErrNilTask indicates a nil task was submitted
	ErrNilTask = errors.New("task cannot be nil")

	// ErrInsufficientFunds indicates a withdrawal exceeds the balance
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount indicates a non-positive deposit or withdrawal amount
	ErrInvalidAmount = errors.New("amount must be positive")
)

// TaskError represents a failure while executing a task
type TaskError struct {
	// Operation is the name of the operation where the error occurred
	Operation string

	// TaskID identifies the failed task
	TaskID string

	// Cause is the underlying error
	Cause error

	// Context contains error context information
	Context map[string]interface{}
}

// Error implements the error interface
func (e *TaskError) Error() string {
	return fmt.Sprintf("task error in operation %s (task %s): %v", e.Operation, e.TaskID, e.Cause)
}

// Unwrap returns the underlying error
func (e *TaskError) Unwrap() error {
	return e.Cause
}

// Is checks if the error is a specific error
func (e *TaskError) Is(target error) bool {
	return errors.Is(e.Cause, target)
}

// NewTaskError creates a new task error
func NewTaskError(operation, taskID string, cause error) *TaskError {
	return &TaskError{
		Operation: operation,
		TaskID:    taskID,
		Cause:     cause,
		Context:   make(map[string]interface{}),
	}
}

// WithContext adds error context
func (e *TaskError) WithContext(key string, value interface{}) *TaskError {
	e.Context[key] = value
	return e
}

// ErrorHandler defines an error handling function invoked by workers
// when a task fails. Returning a non-nil error means the handler could
// not process the failure; the pool ignores it either way.
type ErrorHandler func(error) error
