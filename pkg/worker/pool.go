package worker

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jzx17/gothreadpool/pkg/queue"
	"github.com/jzx17/gothreadpool/pkg/types"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sys/cpu"
)

// Config defines configuration for the worker pool
type Config struct {
	// Workers is the number of worker goroutines (0 means HardwareConcurrency)
	Workers int

	// Name identifies the pool in logs and metrics (defaults to "pool-<uuid>")
	Name string

	// StopTimeout bounds how long Close waits for workers (0 waits forever)
	StopTimeout time.Duration

	// Clock for time operations (optional, defaults to real clock)
	Clock types.Clock

	// Logger for lifecycle events (optional, defaults to slog.Default())
	Logger *slog.Logger

	// Observer receives task panics and, optionally, task progress
	Observer types.TaskObserver

	// Registerer enables Prometheus metrics when set
	Registerer prometheus.Registerer
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Workers:     0,
		StopTimeout: 10 * time.Second,
		Clock:       types.NewRealClock(),
		Logger:      slog.Default(),
	}
}

const (
	poolRunning int32 = iota
	poolStopping
	poolStopped
)

// WorkerPool is a fixed-size worker pool fed by a SafeQueue
type WorkerPool struct {
	// counters written by submitters and by workers live on separate lines
	seq       uint64
	submitted int64
	rejected  int64
	_         cpu.CacheLinePad
	completed int64
	panicked  int64
	dropped   int64

	config  *Config
	name    string
	workers []*Worker
	queue   *queue.SafeQueue[*queuedTask]
	logger  *slog.Logger
	metrics *Metrics

	// lifecycle
	state     int32 // poolRunning, poolStopping, poolStopped
	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
}

var _ types.WorkerPool = (*WorkerPool)(nil)

// NewWorkerPool creates a worker pool and starts its workers
func NewWorkerPool(config *Config) (*WorkerPool, error) {
	if config == nil {
		config = DefaultConfig()
	}

	// parameter validation
	if config.Workers < 0 {
		return nil, fmt.Errorf("%w: must be non-negative, got %d", types.ErrInvalidWorkerCount, config.Workers)
	}
	if config.StopTimeout < 0 {
		return nil, fmt.Errorf("stop timeout must be non-negative, got %v", config.StopTimeout)
	}

	workerCount := config.Workers
	if workerCount == 0 {
		workerCount = HardwareConcurrency()
	}

	if config.Clock == nil {
		config.Clock = types.NewRealClock()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	name := config.Name
	if name == "" {
		name = "pool-" + uuid.NewString()
	}

	pool := &WorkerPool{
		config:  config,
		name:    name,
		workers: make([]*Worker, workerCount),
		queue:   queue.New[*queuedTask](),
		logger:  logger.With("pool", name),
		done:    make(chan struct{}),
	}

	if config.Registerer != nil {
		metrics, err := newMetrics(config.Registerer, pool)
		if err != nil {
			return nil, err
		}
		pool.metrics = metrics
	}

	// create workers
	for i := 0; i < workerCount; i++ {
		worker := NewWorkerWithClock(i, pool.queue, config.Clock)
		worker.SetLogger(logger, name)
		worker.SetObserver(config.Observer)
		worker.SetCompletionCallback(pool.onTaskComplete)
		pool.workers[i] = worker
	}

	// start all workers
	for _, worker := range pool.workers {
		go worker.Run()
	}

	go pool.awaitWorkers()

	pool.logger.Info("Worker pool started", "workers", workerCount)
	return pool, nil
}

// awaitWorkers joins every worker exactly once and then closes done.
// Workers only stop after the queue is closed, so the pool is already
// stopping by the time this proceeds.
func (p *WorkerPool) awaitWorkers() {
	for _, worker := range p.workers {
		<-worker.Done()
	}
	atomic.CompareAndSwapInt32(&p.state, poolStopping, poolStopped)
	p.logger.Info("Worker pool stopped",
		"completed", atomic.LoadInt64(&p.completed),
		"panicked", atomic.LoadInt64(&p.panicked),
		"dropped", atomic.LoadInt64(&p.dropped))
	close(p.done)
}

// onTaskComplete is the completion callback shared by all workers
func (p *WorkerPool) onTaskComplete(d time.Duration, panicked bool) {
	if panicked {
		atomic.AddInt64(&p.panicked, 1)
	} else {
		atomic.AddInt64(&p.completed, 1)
	}

	if p.metrics != nil {
		if panicked {
			p.metrics.panicked.Inc()
		} else {
			p.metrics.completed.Inc()
		}
		p.metrics.taskDuration.Observe(d.Seconds())
	}
}

// Submit queues a task. It never blocks and fails with types.ErrPoolClosed
// once shutdown has begun.
func (p *WorkerPool) Submit(task types.Task) error {
	if task == nil {
		return types.ErrNilTask
	}

	seq := atomic.AddUint64(&p.seq, 1)
	atomic.AddInt64(&p.submitted, 1)

	if err := p.queue.Push(newQueuedTask(seq, task)); err != nil {
		atomic.AddInt64(&p.submitted, -1)
		atomic.AddInt64(&p.rejected, 1)
		if p.metrics != nil {
			p.metrics.rejected.Inc()
		}
		return err
	}

	if p.metrics != nil {
		p.metrics.submitted.Inc()
	}
	return nil
}

// Shutdown stops the pool and waits until every worker has terminated.
// Graceful mode runs all queued tasks first; immediate mode discards them.
// Repeated and concurrent calls are safe, and an immediate call escalates a
// graceful shutdown that is still draining.
//
// Shutdown must not be called from inside a task of the same pool: it would
// wait for its own worker forever. A task can start the shutdown with
// ShutdownContext and an already-expired context instead.
func (p *WorkerPool) Shutdown(mode types.ShutdownMode) {
	p.initiateShutdown(mode)
	<-p.done
}

// ShutdownContext is Shutdown with a bounded wait. It returns ctx.Err() if
// the workers are still running when ctx ends; the pool keeps stopping in
// the background. Unlike Shutdown it is safe to call from inside a task.
func (p *WorkerPool) ShutdownContext(ctx context.Context, mode types.ShutdownMode) error {
	p.initiateShutdown(mode)

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// initiateShutdown flips the queue's closed flag and wakes all workers
func (p *WorkerPool) initiateShutdown(mode types.ShutdownMode) {
	if atomic.CompareAndSwapInt32(&p.state, poolRunning, poolStopping) {
		p.logger.Info("Worker pool shutdown requested", "mode", mode.String())
	}

	dropped := p.queue.Close(mode == types.ShutdownImmediate)
	if n := len(dropped); n > 0 {
		atomic.AddInt64(&p.dropped, int64(n))
		if p.metrics != nil {
			p.metrics.dropped.Add(float64(n))
		}
		p.logger.Info("Discarded queued tasks", "count", n)
	}
}

// Close gracefully shuts the pool down, waiting at most Config.StopTimeout,
// and releases its metrics. Later calls return the first result. Like
// Shutdown, it must not be called from inside a task of the same pool.
func (p *WorkerPool) Close() error {
	p.closeOnce.Do(func() {
		p.initiateShutdown(types.ShutdownGraceful)

		if p.config.StopTimeout > 0 {
			timer := p.config.Clock.NewTimer(p.config.StopTimeout)
			defer timer.Stop()

			select {
			case <-p.done:
			case <-timer.C():
				p.logger.Warn("Workers did not stop in time", "timeout", p.config.StopTimeout)
				p.closeErr = fmt.Errorf("close %s: %w", p.name, types.ErrStopTimeout)
				if p.metrics != nil {
					go func() {
						<-p.done
						p.metrics.unregister()
					}()
				}
				return
			}
		} else {
			<-p.done
		}

		if p.metrics != nil {
			p.metrics.unregister()
		}
	})

	return p.closeErr
}

// Done is closed once every worker has terminated
func (p *WorkerPool) Done() <-chan struct{} {
	return p.done
}

// Name returns the pool name
func (p *WorkerPool) Name() string {
	return p.name
}

// Size returns the worker pool size
func (p *WorkerPool) Size() int {
	return len(p.workers)
}

// activeWorkers counts workers currently running a task
func (p *WorkerPool) activeWorkers() int {
	var n int
	for _, worker := range p.workers {
		if worker.State() == WorkerStateRunning {
			n++
		}
	}
	return n
}

// Stats gets basic worker pool statistics
func (p *WorkerPool) Stats() types.WorkerPoolStats {
	stats := types.WorkerPoolStats{
		PoolSize:  len(p.workers),
		QueueSize: p.queue.TryLen(),
		Submitted: atomic.LoadInt64(&p.submitted),
		Completed: atomic.LoadInt64(&p.completed),
		Panicked:  atomic.LoadInt64(&p.panicked),
		Dropped:   atomic.LoadInt64(&p.dropped),
		Rejected:  atomic.LoadInt64(&p.rejected),
	}

	for _, worker := range p.workers {
		switch worker.State() {
		case WorkerStateRunning:
			stats.ActiveWorkers++
		case WorkerStateWaiting:
			stats.IdleWorkers++
		case WorkerStateStopped:
			stats.StoppedWorkers++
		}
	}

	return stats
}

// GetWorkerStats gets statistics of all Workers
func (p *WorkerPool) GetWorkerStats() []WorkerStats {
	stats := make([]WorkerStats, len(p.workers))
	for i, worker := range p.workers {
		stats[i] = worker.Stats()
	}
	return stats
}

// IsRunning checks if the worker pool accepts tasks
func (p *WorkerPool) IsRunning() bool {
	return atomic.LoadInt32(&p.state) == poolRunning
}

// IsClosed checks if every worker has terminated
func (p *WorkerPool) IsClosed() bool {
	return atomic.LoadInt32(&p.state) == poolStopped
}

// QueueLength gets the current queue length
func (p *WorkerPool) QueueLength() int {
	return p.queue.TryLen()
}
