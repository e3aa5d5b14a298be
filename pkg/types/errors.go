// Package types defines error types
package types

import (
	"errors"
	"fmt"
)

// Predefined errors
var (
	// ErrPoolClosed indicates the pool has begun shutting down and rejects new tasks
	ErrPoolClosed = errors.New("worker pool is closed")

	// ErrNilTask indicates a nil task was submitted
	ErrNilTask = errors.New("task cannot be nil")

	// ErrInvalidWorkerCount indicates the requested worker count cannot be used
	ErrInvalidWorkerCount = errors.New("invalid worker count")

	// ErrStopTimeout indicates workers did not terminate within the stop bound
	ErrStopTimeout = errors.New("timeout waiting for workers to stop")

	// ErrTaskExited is the panic value recorded for a task that ended its
	// goroutine with runtime.Goexit instead of returning
	ErrTaskExited = errors.New("task exited its goroutine without returning")
)

// TaskPanicError describes a task that panicked while a worker was running it
type TaskPanicError struct {
	// Pool is the name of the pool that ran the task
	Pool string

	// TaskSeq is the submission sequence number of the task
	TaskSeq uint64

	// WorkerID is the worker that was running the task
	WorkerID int

	// Value is the value passed to panic
	Value interface{}

	// Stack is the stack trace captured at recovery
	Stack string
}

// NewTaskPanicError creates a TaskPanicError from a recovered value
func NewTaskPanicError(pool string, seq uint64, workerID int, value interface{}, stack []byte) *TaskPanicError {
	return &TaskPanicError{
		Pool:     pool,
		TaskSeq:  seq,
		WorkerID: workerID,
		Value:    value,
		Stack:    string(stack),
	}
}

// Error implements the error interface
func (e *TaskPanicError) Error() string {
	return fmt.Sprintf("task %d panicked on worker %d: %v", e.TaskSeq, e.WorkerID, e.Value)
}

// Unwrap returns the panic value when it is an error
func (e *TaskPanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// IsTaskPanic reports whether err is or wraps a TaskPanicError
func IsTaskPanic(err error) bool {
	var panicErr *TaskPanicError
	return errors.As(err, &panicErr)
}
