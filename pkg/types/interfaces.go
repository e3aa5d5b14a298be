// Package types defines core interfaces and types for the thread pool library
package types

import (
	"context"
	"time"
)

// Task is a unit of work. It takes no arguments and returns nothing;
// failures are the task's own concern.
type Task func()

// ShutdownMode selects what happens to queued tasks on shutdown
type ShutdownMode int

const (
	// ShutdownGraceful runs every queued task before workers stop
	ShutdownGraceful ShutdownMode = iota
	// ShutdownImmediate discards queued tasks that have not started
	ShutdownImmediate
)

// String returns the string representation of ShutdownMode
func (m ShutdownMode) String() string {
	switch m {
	case ShutdownGraceful:
		return "graceful"
	case ShutdownImmediate:
		return "immediate"
	default:
		return "unknown"
	}
}

// ParseShutdownMode parses "graceful" or "immediate"
func ParseShutdownMode(s string) (ShutdownMode, bool) {
	switch s {
	case "graceful", "":
		return ShutdownGraceful, true
	case "immediate":
		return ShutdownImmediate, true
	default:
		return ShutdownGraceful, false
	}
}

// WorkerPool defines the worker pool interface
type WorkerPool interface {
	// Submit queues a task for execution
	Submit(task Task) error

	// Shutdown stops the pool and waits for every worker to terminate
	Shutdown(mode ShutdownMode)

	// ShutdownContext is Shutdown with a bounded wait
	ShutdownContext(ctx context.Context, mode ShutdownMode) error

	// Close performs a graceful shutdown and releases resources
	Close() error

	// Size returns the number of workers
	Size() int

	// Stats returns worker pool statistics
	Stats() WorkerPoolStats
}

// TaskObserver receives task failures recovered by the pool
type TaskObserver interface {
	OnTaskPanic(err *TaskPanicError)
}

// TaskProgressObserver is optionally implemented by a TaskObserver to
// follow task execution.
type TaskProgressObserver interface {
	OnTaskStart(workerID int, seq uint64)
	OnTaskDone(workerID int, seq uint64, d time.Duration)
}

// WorkerPoolStats defines basic statistics for worker pools
type WorkerPoolStats struct {
	// PoolSize is the number of workers
	PoolSize int

	// ActiveWorkers is the number of workers running a task
	ActiveWorkers int

	// IdleWorkers is the number of workers waiting for a task
	IdleWorkers int

	// StoppedWorkers is the number of workers that have exited
	StoppedWorkers int

	// QueueSize is the current number of tasks in the queue
	QueueSize int

	// Submitted is the number of accepted tasks
	Submitted int64

	// Completed is the number of tasks that ran to completion
	Completed int64

	// Panicked is the number of tasks that panicked
	Panicked int64

	// Dropped is the number of queued tasks discarded by an immediate shutdown
	Dropped int64

	// Rejected is the number of submissions refused after shutdown
	Rejected int64
}

// Pending returns accepted tasks that have neither finished nor been dropped
func (s WorkerPoolStats) Pending() int64 {
	return s.Submitted - s.Completed - s.Panicked - s.Dropped
}
