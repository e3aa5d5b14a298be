package main

import (
	"context"
	"testing"
	"time"

	"github.com/jzx17/gothreadpool/internal/config"
	"github.com/jzx17/gothreadpool/internal/testutils"
	"github.com/jzx17/gothreadpool/pkg/types"
	"github.com/jzx17/gothreadpool/pkg/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	cfg := config.Default()
	cfg.Pool.Workers = 2
	cfg.Demo.Iterations = 3
	cfg.Demo.Interval = "1ms"

	logger, buf := testutils.BufferLogger()
	require.NoError(t, run(context.Background(), cfg, logger))

	out := buf.String()
	assert.Contains(t, out, "Function 1")
	assert.Contains(t, out, "Function 2")
	assert.Contains(t, out, "submitted=6")
	assert.Contains(t, out, "completed=6")
}

func TestRun_Interrupted(t *testing.T) {
	cfg := config.Default()
	cfg.Pool.Workers = 1
	cfg.Demo.Iterations = 1000
	cfg.Demo.Interval = "1h"

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	logger, buf := testutils.BufferLogger()
	require.NoError(t, run(ctx, cfg, logger))
	assert.Contains(t, buf.String(), "Interrupted")
}

func TestFeed_StopsOnClosedPool(t *testing.T) {
	pool, err := worker.NewWorkerPool(&worker.Config{
		Workers: 1,
		Logger:  testutils.DiscardLogger(),
	})
	require.NoError(t, err)
	pool.Shutdown(types.ShutdownGraceful)

	err = feed(context.Background(), pool, types.NewRealClock(), 5, time.Millisecond, testutils.DiscardLogger())
	assert.ErrorIs(t, err, types.ErrPoolClosed)
}

func TestFeed_PacedByClock(t *testing.T) {
	mock := testutils.NewMockClock(t)
	pool, err := worker.NewWorkerPool(&worker.Config{
		Workers: 1,
		Logger:  testutils.DiscardLogger(),
	})
	require.NoError(t, err)
	defer pool.Shutdown(types.ShutdownImmediate)

	fed := make(chan error, 1)
	go func() {
		fed <- feed(context.Background(), pool, testutils.NewClockWrapper(mock), 3, time.Second, testutils.DiscardLogger())
	}()

	// nothing is submitted before the first tick
	assert.Equal(t, int64(0), pool.Stats().Submitted)

	var got error
	testutils.AssertEventually(t, func() bool {
		select {
		case got = <-fed:
			return true
		default:
			mock.Advance(time.Second)
			return false
		}
	})

	require.NoError(t, got)
	assert.Equal(t, int64(6), pool.Stats().Submitted)
}
