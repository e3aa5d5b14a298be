// Package errors provides task observers that receive failures recovered by
// the worker pool.
package errors

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jzx17/gothreadpool/pkg/types"
)

// LoggingObserver logs task panics at error level and task start and
// completion at debug level.
type LoggingObserver struct {
	logger    *slog.Logger
	withStack bool
}

// LoggingObserverConfig contains configuration for LoggingObserver
type LoggingObserverConfig struct {
	// Logger receives records (defaults to slog.Default())
	Logger *slog.Logger
	// IncludeStack adds the recovered stack trace to panic records
	IncludeStack bool
}

// NewLoggingObserver creates a logging observer
func NewLoggingObserver(config *LoggingObserverConfig) *LoggingObserver {
	o := &LoggingObserver{logger: slog.Default()}
	if config != nil {
		if config.Logger != nil {
			o.logger = config.Logger
		}
		o.withStack = config.IncludeStack
	}
	return o
}

// OnTaskPanic implements types.TaskObserver
func (o *LoggingObserver) OnTaskPanic(err *types.TaskPanicError) {
	attrs := []any{
		"pool", err.Pool,
		"worker_id", err.WorkerID,
		"task_seq", err.TaskSeq,
		"panic", err.Value,
	}
	if o.withStack {
		attrs = append(attrs, "stack", err.Stack)
	}
	o.logger.Error("Task panicked", attrs...)
}

// OnTaskStart implements types.TaskProgressObserver
func (o *LoggingObserver) OnTaskStart(workerID int, seq uint64) {
	o.logger.Debug("Task started", "worker_id", workerID, "task_seq", seq)
}

// OnTaskDone implements types.TaskProgressObserver
func (o *LoggingObserver) OnTaskDone(workerID int, seq uint64, d time.Duration) {
	o.logger.Debug("Task finished", "worker_id", workerID, "task_seq", seq, "duration", d)
}

// CollectingObserver records every task panic it receives
type CollectingObserver struct {
	mu     sync.Mutex
	errors []*types.TaskPanicError
	limit  int
}

// NewCollectingObserver creates a collecting observer keeping at most limit
// errors (0 keeps all). When full, the oldest error is discarded.
func NewCollectingObserver(limit int) *CollectingObserver {
	return &CollectingObserver{limit: limit}
}

// OnTaskPanic implements types.TaskObserver
func (o *CollectingObserver) OnTaskPanic(err *types.TaskPanicError) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.limit > 0 && len(o.errors) >= o.limit {
		copy(o.errors, o.errors[1:])
		o.errors = o.errors[:len(o.errors)-1]
	}
	o.errors = append(o.errors, err)
}

// Errors returns a copy of the recorded errors in arrival order
func (o *CollectingObserver) Errors() []*types.TaskPanicError {
	o.mu.Lock()
	defer o.mu.Unlock()

	out := make([]*types.TaskPanicError, len(o.errors))
	copy(out, o.errors)
	return out
}

// Len returns the number of recorded errors
func (o *CollectingObserver) Len() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.errors)
}

// Reset discards all recorded errors
func (o *CollectingObserver) Reset() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errors = nil
}

// FuncObserver adapts a function to types.TaskObserver
type FuncObserver func(err *types.TaskPanicError)

// OnTaskPanic implements types.TaskObserver
func (f FuncObserver) OnTaskPanic(err *types.TaskPanicError) {
	f(err)
}

// MultiObserver fans every notification out to its observers in order.
// Progress notifications go only to observers that implement
// types.TaskProgressObserver.
type MultiObserver struct {
	observers []types.TaskObserver
}

// NewMultiObserver creates a fan-out observer, skipping nil entries
func NewMultiObserver(observers ...types.TaskObserver) *MultiObserver {
	m := &MultiObserver{observers: make([]types.TaskObserver, 0, len(observers))}
	for _, o := range observers {
		if o != nil {
			m.observers = append(m.observers, o)
		}
	}
	return m
}

// OnTaskPanic implements types.TaskObserver
func (m *MultiObserver) OnTaskPanic(err *types.TaskPanicError) {
	for _, o := range m.observers {
		o.OnTaskPanic(err)
	}
}

// OnTaskStart implements types.TaskProgressObserver
func (m *MultiObserver) OnTaskStart(workerID int, seq uint64) {
	for _, o := range m.observers {
		if p, ok := o.(types.TaskProgressObserver); ok {
			p.OnTaskStart(workerID, seq)
		}
	}
}

// OnTaskDone implements types.TaskProgressObserver
func (m *MultiObserver) OnTaskDone(workerID int, seq uint64, d time.Duration) {
	for _, o := range m.observers {
		if p, ok := o.(types.TaskProgressObserver); ok {
			p.OnTaskDone(workerID, seq, d)
		}
	}
}

var (
	_ types.TaskObserver         = (*LoggingObserver)(nil)
	_ types.TaskProgressObserver = (*LoggingObserver)(nil)
	_ types.TaskObserver         = (*CollectingObserver)(nil)
	_ types.TaskObserver         = FuncObserver(nil)
	_ types.TaskObserver         = (*MultiObserver)(nil)
	_ types.TaskProgressObserver = (*MultiObserver)(nil)
)
