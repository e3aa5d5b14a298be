package worker

import (
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jzx17/gothreadpool/pkg/queue"
	"github.com/jzx17/gothreadpool/pkg/types"
)

// WorkerState defines the state of a Worker
type WorkerState int32

const (
	// WorkerStateWaiting represents a worker blocked on the queue
	WorkerStateWaiting WorkerState = iota
	// WorkerStateRunning represents a worker executing a task
	WorkerStateRunning
	// WorkerStateStopped represents a worker that has exited its loop
	WorkerStateStopped
)

// String returns the string representation of WorkerState
func (ws WorkerState) String() string {
	switch ws {
	case WorkerStateWaiting:
		return "waiting"
	case WorkerStateRunning:
		return "running"
	case WorkerStateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Worker represents a single worker goroutine
type Worker struct {
	id    int
	pool  string
	state int32 // atomic state
	queue *queue.SafeQueue[*queuedTask]
	done  chan struct{}

	// statistics
	totalProcessed int64
	totalPanicked  int64
	lastTaskTime   int64 // Unix nanosecond timestamp

	observer types.TaskObserver
	logger   *slog.Logger

	// pool callback for syncing statistics
	completionCallback func(time.Duration, bool)

	// time operations
	clock types.Clock

	// synchronization
	mu sync.RWMutex
}

// NewWorker creates a new Worker reading from q with default real clock
func NewWorker(id int, q *queue.SafeQueue[*queuedTask]) *Worker {
	return NewWorkerWithClock(id, q, types.NewRealClock())
}

// NewWorkerWithClock creates a new Worker with specified clock
func NewWorkerWithClock(id int, q *queue.SafeQueue[*queuedTask], clock types.Clock) *Worker {
	if clock == nil {
		clock = types.NewRealClock()
	}

	return &Worker{
		id:     id,
		state:  int32(WorkerStateWaiting),
		queue:  q,
		done:   make(chan struct{}),
		clock:  clock,
		logger: slog.Default(),
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

// SetObserver sets the task observer
func (w *Worker) SetObserver(observer types.TaskObserver) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.observer = observer
}

// SetLogger sets the logger and the pool name used in log records
func (w *Worker) SetLogger(logger *slog.Logger, pool string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if logger != nil {
		w.logger = logger
	}
	w.pool = pool
}

// SetCompletionCallback sets the task completion callback
func (w *Worker) SetCompletionCallback(callback func(time.Duration, bool)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.completionCallback = callback
}

// Run is the dispatch loop. It returns once the queue reports no more work.
// If a task ends the goroutine with runtime.Goexit, the loop continues on a
// new goroutine so queued work is never stranded.
func (w *Worker) Run() {
	normalReturn := false
	defer func() {
		if !normalReturn {
			go w.Run()
			return
		}
		atomic.StoreInt32(&w.state, int32(WorkerStateStopped))
		close(w.done)
	}()

	for {
		task, ok := w.queue.Pop()
		if !ok {
			normalReturn = true
			return
		}
		w.processTask(task)
	}
}

// Done is closed when the dispatch loop has stopped
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

// processTask processes a single task. Panics and runtime.Goexit are both
// reported as a TaskPanicError; accounting runs in a deferred call so it also
// happens while a Goexit unwinds the goroutine.
func (w *Worker) processTask(task *queuedTask) {
	atomic.StoreInt32(&w.state, int32(WorkerStateRunning))
	defer atomic.StoreInt32(&w.state, int32(WorkerStateWaiting))

	w.mu.RLock()
	observer := w.observer
	callback := w.completionCallback
	w.mu.RUnlock()

	progress, _ := observer.(types.TaskProgressObserver)

	startTime := w.clock.Now()
	atomic.StoreInt64(&w.lastTaskTime, startTime.UnixNano())

	if progress != nil {
		w.notify(func() { progress.OnTaskStart(w.id, task.Seq()) })
	}

	returned := false
	defer func() {
		var panicErr *types.TaskPanicError
		if r := recover(); r != nil {
			panicErr = w.newPanicError(task, r)
		} else if !returned {
			panicErr = w.newPanicError(task, types.ErrTaskExited)
		}
		executionTime := w.clock.Since(startTime)

		panicked := panicErr != nil
		if panicked {
			atomic.AddInt64(&w.totalPanicked, 1)
			w.handlePanic(task, observer, panicErr)
		} else {
			atomic.AddInt64(&w.totalProcessed, 1)
		}

		if progress != nil {
			w.notify(func() { progress.OnTaskDone(w.id, task.Seq(), executionTime) })
		}

		if callback != nil {
			callback(executionTime, panicked)
		}
	}()

	task.run()
	returned = true
}

func (w *Worker) newPanicError(task *queuedTask, value interface{}) *types.TaskPanicError {
	var buf [4096]byte
	n := runtime.Stack(buf[:], false)
	return types.NewTaskPanicError(w.pool, task.Seq(), w.id, value, buf[:n])
}

// handlePanic reports a task panic. Without an observer the panic is only
// counted and logged at debug level.
func (w *Worker) handlePanic(task *queuedTask, observer types.TaskObserver, err *types.TaskPanicError) {
	if observer == nil {
		w.logger.Debug("Task panicked",
			"pool", w.pool,
			"worker_id", w.id,
			"task", task.ID(),
			"panic", err.Value)
		return
	}
	w.notify(func() { observer.OnTaskPanic(err) })
}

// notify calls an observer hook, keeping the worker alive if it panics
func (w *Worker) notify(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("Task observer panicked",
				"pool", w.pool,
				"worker_id", w.id,
				"panic", r)
		}
	}()
	fn()
}

// Stats gets Worker statistics
func (w *Worker) Stats() WorkerStats {
	var last time.Time
	if ns := atomic.LoadInt64(&w.lastTaskTime); ns != 0 {
		last = time.Unix(0, ns)
	}

	return WorkerStats{
		ID:             w.id,
		State:          w.State(),
		TotalProcessed: atomic.LoadInt64(&w.totalProcessed),
		TotalPanicked:  atomic.LoadInt64(&w.totalPanicked),
		LastTaskTime:   last,
	}
}

// WorkerStats defines Worker statistics
type WorkerStats struct {
	ID             int
	State          WorkerState
	TotalProcessed int64
	TotalPanicked  int64
	LastTaskTime   time.Time
}

// IsActive checks if Worker is running a task
func (ws WorkerStats) IsActive() bool {
	return ws.State == WorkerStateRunning
}

// IsIdle checks if Worker is waiting for a task
func (ws WorkerStats) IsIdle() bool {
	return ws.State == WorkerStateWaiting
}

// GetSuccessRate gets the share of tasks that did not panic
func (ws WorkerStats) GetSuccessRate() float64 {
	total := ws.TotalProcessed + ws.TotalPanicked
	if total == 0 {
		return 0
	}
	return float64(ws.TotalProcessed) / float64(total)
}
