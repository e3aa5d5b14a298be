// Package main runs a small demo that feeds periodic tasks to a worker pool.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jzx17/gothreadpool/internal/config"
	poolerrors "github.com/jzx17/gothreadpool/internal/errors"
	"github.com/jzx17/gothreadpool/pkg/types"
	"github.com/jzx17/gothreadpool/pkg/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	var (
		configFile  = flag.String("config", "", "Configuration file path (YAML)")
		workers     = flag.Int("workers", 0, "Number of workers (0 uses hardware concurrency)")
		iterations  = flag.Int("iterations", 0, "Number of submission rounds")
		interval    = flag.Duration("interval", 0, "Delay between submission rounds")
		mode        = flag.String("mode", "", "Shutdown mode after the last round (graceful, immediate)")
		metricsAddr = flag.String("metrics-addr", "", "Serve Prometheus metrics on this address")
	)
	flag.Parse()

	cfg, err := config.LoadFile(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.ApplyEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	// flags given on the command line win over file and environment
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "workers":
			cfg.Pool.Workers = *workers
		case "iterations":
			cfg.Demo.Iterations = *iterations
		case "interval":
			cfg.Demo.Interval = interval.String()
		case "mode":
			cfg.Demo.ShutdownMode = *mode
		case "metrics-addr":
			cfg.Demo.MetricsAddr = *metricsAddr
		}
	})

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Demo.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Demo failed", "error", err)
		os.Exit(1)
	}
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}

func run(ctx context.Context, cfg *config.FileConfig, logger *slog.Logger) error {
	poolCfg, err := cfg.ToPoolConfig()
	if err != nil {
		return err
	}
	interval, err := cfg.IntervalDuration()
	if err != nil {
		return err
	}

	registry := prometheus.NewRegistry()
	poolCfg.Logger = logger
	poolCfg.Registerer = registry
	recent := poolerrors.NewCollectingObserver(16)
	poolCfg.Observer = poolerrors.NewMultiObserver(
		poolerrors.NewLoggingObserver(&poolerrors.LoggingObserverConfig{
			Logger:       logger,
			IncludeStack: true,
		}),
		recent,
	)

	pool, err := worker.NewWorkerPool(poolCfg)
	if err != nil {
		return fmt.Errorf("create pool: %w", err)
	}

	if cfg.Demo.MetricsAddr != "" {
		server := serveMetrics(cfg.Demo.MetricsAddr, registry, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			_ = server.Shutdown(shutdownCtx)
		}()
	}

	if err := feed(ctx, pool, poolCfg.Clock, cfg.Demo.Iterations, interval, logger); err != nil {
		logger.Warn("Interrupted, discarding queued tasks", "error", err)
		pool.Shutdown(types.ShutdownImmediate)
		return nil
	}

	pool.Shutdown(cfg.Mode())

	stats := pool.Stats()
	logger.Info("Demo finished",
		"submitted", stats.Submitted,
		"completed", stats.Completed,
		"panicked", stats.Panicked,
		"dropped", stats.Dropped)
	for _, perr := range recent.Errors() {
		logger.Warn("Recent task panic", "task_seq", perr.TaskSeq, "error", perr.Error())
	}

	return pool.Close()
}

// feed submits the two demo functions once per interval. It returns
// ctx.Err() if interrupted before the last round.
func feed(ctx context.Context, pool types.WorkerPool, clock types.Clock, rounds int, interval time.Duration, logger *slog.Logger) error {
	ticker := clock.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; i < rounds; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C():
		}

		for _, task := range demoTasks(logger, i) {
			if err := pool.Submit(task); err != nil {
				if errors.Is(err, types.ErrPoolClosed) {
					return err
				}
				logger.Error("Failed to submit task", "error", err)
			}
		}
	}
	return nil
}

func demoTasks(logger *slog.Logger, round int) []types.Task {
	return []types.Task{
		func() { logger.Info("Function 1", "round", round) },
		func() { logger.Info("Function 2", "round", round) },
	}
}

func serveMetrics(addr string, registry *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()

	return server
}
