/*
Package worker provides a fixed-size worker pool that runs submitted tasks
on long-lived goroutines.

# Overview

A WorkerPool starts its workers when it is constructed. Every worker loops on
a shared queue.SafeQueue: it parks until a task is queued or the pool begins
shutting down, runs the task, and goes back to waiting. Submit never blocks;
it appends to the queue and wakes one idle worker.

The pool supports:
- Fixed number of worker goroutines (defaults to HardwareConcurrency)
- FIFO dispatch of submitted tasks
- Graceful and immediate shutdown
- Per-task panic recovery with an optional TaskObserver
- Prometheus metrics and structured lifecycle logging

# Core Components

## WorkerPool

Owns the queue and the workers. Submit, Shutdown, ShutdownContext and Close
are safe to call from any goroutine.

## Worker

Single dispatch loop. A panicking task is recovered into a
*types.TaskPanicError, reported to the observer, and the worker carries on
with the next task.

# Shutdown

Shutdown(types.ShutdownGraceful) stops accepting tasks, lets the workers
drain everything already queued, and returns once all of them have exited.
Shutdown(types.ShutdownImmediate) discards queued tasks that have not
started; tasks already running are always allowed to finish. An immediate
call made while a graceful shutdown is draining cuts the drain short.

Once shutdown has begun, Submit fails with types.ErrPoolClosed.

# Usage Examples

Basic usage:

	pool, err := worker.NewWorkerPool(&worker.Config{Workers: 4})
	if err != nil {
		log.Fatal(err)
	}
	defer pool.Close()

	if err := pool.Submit(func() {
		fmt.Println("hello from a worker")
	}); err != nil {
		log.Printf("Failed to submit task: %v", err)
	}

Bounded shutdown:

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.ShutdownContext(ctx, types.ShutdownGraceful); err != nil {
		pool.Shutdown(types.ShutdownImmediate)
	}

Retrieve statistics:

	stats := pool.Stats()
	fmt.Printf("Active Workers: %d/%d\n", stats.ActiveWorkers, stats.PoolSize)
	fmt.Printf("Pending: %d\n", stats.Pending())

# Configuration Options

Config supports the following configurations:
- Workers: Number of worker goroutines
- Name: Pool name used in logs and metric labels
- StopTimeout: Upper bound on the wait performed by Close
- Clock: Time source, replaceable in tests
- Logger: slog logger for lifecycle events
- Observer: Receives task panics and, optionally, progress events
- Registerer: Prometheus registerer; metrics are disabled when nil
*/
package worker
