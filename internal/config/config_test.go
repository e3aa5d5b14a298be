package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jzx17/gothreadpool/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "threadpool.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
pool:
  name: demo
  workers: 3
  stop_timeout: 2s
demo:
  iterations: 5
  interval: 250ms
  shutdown_mode: immediate
  metrics_addr: ":9090"
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "demo", cfg.Pool.Name)
	assert.Equal(t, 3, cfg.Pool.Workers)
	assert.Equal(t, 5, cfg.Demo.Iterations)
	assert.Equal(t, ":9090", cfg.Demo.MetricsAddr)
	assert.Equal(t, types.ShutdownImmediate, cfg.Mode())
	// unset keys keep their defaults
	assert.Equal(t, "info", cfg.Demo.LogLevel)

	interval, err := cfg.IntervalDuration()
	require.NoError(t, err)
	assert.Equal(t, 250*time.Millisecond, interval)

	poolCfg, err := cfg.ToPoolConfig()
	require.NoError(t, err)
	assert.Equal(t, "demo", poolCfg.Name)
	assert.Equal(t, 3, poolCfg.Workers)
	assert.Equal(t, 2*time.Second, poolCfg.StopTimeout)
}

func TestLoadFile_Errors(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadFile(writeConfig(t, "pool: [not, a, map"))
	assert.Error(t, err)
}

func TestLoadFile_EmptyPathUsesDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, types.ShutdownGraceful, cfg.Mode())
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("THREADPOOL_NAME", "from-env")
	t.Setenv("THREADPOOL_WORKERS", "7")
	t.Setenv("THREADPOOL_ITERATIONS", "2")
	t.Setenv("THREADPOOL_INTERVAL", "10ms")
	t.Setenv("THREADPOOL_SHUTDOWN_MODE", "immediate")

	cfg := Default()
	cfg.Pool.Workers = 2
	require.NoError(t, cfg.ApplyEnv())

	assert.Equal(t, "from-env", cfg.Pool.Name)
	assert.Equal(t, 7, cfg.Pool.Workers)
	assert.Equal(t, 2, cfg.Demo.Iterations)
	assert.Equal(t, "10ms", cfg.Demo.Interval)
	assert.Equal(t, types.ShutdownImmediate, cfg.Mode())
}

func TestApplyEnv_InvalidNumber(t *testing.T) {
	t.Setenv("THREADPOOL_WORKERS", "many")
	assert.Error(t, Default().ApplyEnv())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*FileConfig)
	}{
		{"negative workers", func(c *FileConfig) { c.Pool.Workers = -1 }},
		{"negative iterations", func(c *FileConfig) { c.Demo.Iterations = -1 }},
		{"bad stop timeout", func(c *FileConfig) { c.Pool.StopTimeout = "soon" }},
		{"bad interval", func(c *FileConfig) { c.Demo.Interval = "often" }},
		{"zero interval", func(c *FileConfig) { c.Demo.Interval = "0s" }},
		{"unknown mode", func(c *FileConfig) { c.Demo.ShutdownMode = "eventually" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
