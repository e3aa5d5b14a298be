package worker

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus metrics for worker pool monitoring
type Metrics struct {
	submitted    prometheus.Counter
	completed    prometheus.Counter
	panicked     prometheus.Counter
	dropped      prometheus.Counter
	rejected     prometheus.Counter
	queueDepth   prometheus.GaugeFunc
	activeWorker prometheus.GaugeFunc
	taskDuration prometheus.Histogram

	registerer prometheus.Registerer
}

// newMetrics creates the pool metrics and registers them with reg.
// Gauges are sampled from the pool at scrape time.
func newMetrics(reg prometheus.Registerer, pool *WorkerPool) (*Metrics, error) {
	labels := prometheus.Labels{"pool": pool.name}

	m := &Metrics{
		submitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "threadpool_tasks_submitted_total",
			Help:        "Total tasks accepted by the pool",
			ConstLabels: labels,
		}),
		completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "threadpool_tasks_completed_total",
			Help:        "Total tasks that ran to completion",
			ConstLabels: labels,
		}),
		panicked: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "threadpool_tasks_panicked_total",
			Help:        "Total tasks that panicked",
			ConstLabels: labels,
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "threadpool_tasks_dropped_total",
			Help:        "Total queued tasks discarded by an immediate shutdown",
			ConstLabels: labels,
		}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "threadpool_tasks_rejected_total",
			Help:        "Total submissions refused after shutdown",
			ConstLabels: labels,
		}),
		queueDepth: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "threadpool_queue_depth",
			Help:        "Current number of queued tasks",
			ConstLabels: labels,
		}, func() float64 {
			return float64(pool.QueueLength())
		}),
		activeWorker: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name:        "threadpool_active_workers",
			Help:        "Workers currently running a task",
			ConstLabels: labels,
		}, func() float64 {
			return float64(pool.activeWorkers())
		}),
		taskDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "threadpool_task_duration_seconds",
			Help:        "Time spent running tasks",
			ConstLabels: labels,
			Buckets:     []float64{0.0001, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 5.0},
		}),
		registerer: reg,
	}

	registered := make([]prometheus.Collector, 0, 8)
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			for _, r := range registered {
				reg.Unregister(r)
			}
			return nil, fmt.Errorf("register pool metrics: %w", err)
		}
		registered = append(registered, c)
	}

	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.submitted,
		m.completed,
		m.panicked,
		m.dropped,
		m.rejected,
		m.queueDepth,
		m.activeWorker,
		m.taskDuration,
	}
}

// unregister removes every pool collector from the registerer
func (m *Metrics) unregister() {
	for _, c := range m.collectors() {
		m.registerer.Unregister(c)
	}
}
