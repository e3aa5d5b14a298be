// Package config loads the settings of the threadpool demo from a YAML file
// and THREADPOOL_* environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/jzx17/gothreadpool/pkg/types"
	"github.com/jzx17/gothreadpool/pkg/worker"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override
const EnvPrefix = "THREADPOOL"

// FileConfig is the structure of the configuration file
type FileConfig struct {
	Pool PoolConfig `yaml:"pool"`
	Demo DemoConfig `yaml:"demo"`
}

// PoolConfig holds worker pool settings
type PoolConfig struct {
	Name        string `yaml:"name"`
	Workers     int    `yaml:"workers"`
	StopTimeout string `yaml:"stop_timeout"`
}

// DemoConfig holds settings of the demo task feeder
type DemoConfig struct {
	Iterations   int    `yaml:"iterations"`
	Interval     string `yaml:"interval"`
	ShutdownMode string `yaml:"shutdown_mode"`
	MetricsAddr  string `yaml:"metrics_addr"`
	LogLevel     string `yaml:"log_level"`
}

// Default returns the demo defaults: 10 rounds, one per second, graceful stop
func Default() *FileConfig {
	return &FileConfig{
		Pool: PoolConfig{
			StopTimeout: "10s",
		},
		Demo: DemoConfig{
			Iterations:   10,
			Interval:     "1s",
			ShutdownMode: types.ShutdownGraceful.String(),
			LogLevel:     "info",
		},
	}
}

// LoadFile reads a YAML file on top of the defaults
func LoadFile(path string) (*FileConfig, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv applies THREADPOOL_* environment variable overrides
func (f *FileConfig) ApplyEnv() error {
	if val := os.Getenv(EnvPrefix + "_NAME"); val != "" {
		f.Pool.Name = val
	}
	if val := os.Getenv(EnvPrefix + "_WORKERS"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s_WORKERS: %w", EnvPrefix, err)
		}
		f.Pool.Workers = n
	}
	if val := os.Getenv(EnvPrefix + "_STOP_TIMEOUT"); val != "" {
		f.Pool.StopTimeout = val
	}
	if val := os.Getenv(EnvPrefix + "_ITERATIONS"); val != "" {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("invalid %s_ITERATIONS: %w", EnvPrefix, err)
		}
		f.Demo.Iterations = n
	}
	if val := os.Getenv(EnvPrefix + "_INTERVAL"); val != "" {
		f.Demo.Interval = val
	}
	if val := os.Getenv(EnvPrefix + "_SHUTDOWN_MODE"); val != "" {
		f.Demo.ShutdownMode = val
	}
	if val := os.Getenv(EnvPrefix + "_METRICS_ADDR"); val != "" {
		f.Demo.MetricsAddr = val
	}
	if val := os.Getenv(EnvPrefix + "_LOG_LEVEL"); val != "" {
		f.Demo.LogLevel = val
	}
	return nil
}

// Validate checks the configuration
func (f *FileConfig) Validate() error {
	if f.Pool.Workers < 0 {
		return fmt.Errorf("pool.workers must be non-negative")
	}
	if f.Demo.Iterations < 0 {
		return fmt.Errorf("demo.iterations must be non-negative")
	}
	if _, err := parseDuration("pool.stop_timeout", f.Pool.StopTimeout); err != nil {
		return err
	}
	interval, err := parseDuration("demo.interval", f.Demo.Interval)
	if err != nil {
		return err
	}
	if interval <= 0 {
		return fmt.Errorf("demo.interval must be positive")
	}
	if _, ok := types.ParseShutdownMode(f.Demo.ShutdownMode); !ok {
		return fmt.Errorf("unknown shutdown mode: %s", f.Demo.ShutdownMode)
	}
	return nil
}

// ToPoolConfig converts the pool section to a worker.Config
func (f *FileConfig) ToPoolConfig() (*worker.Config, error) {
	config := worker.DefaultConfig()
	config.Name = f.Pool.Name
	config.Workers = f.Pool.Workers

	if f.Pool.StopTimeout != "" {
		d, err := parseDuration("pool.stop_timeout", f.Pool.StopTimeout)
		if err != nil {
			return nil, err
		}
		config.StopTimeout = d
	}

	return config, nil
}

// IntervalDuration returns the parsed demo interval
func (f *FileConfig) IntervalDuration() (time.Duration, error) {
	return parseDuration("demo.interval", f.Demo.Interval)
}

// Mode returns the configured shutdown mode
func (f *FileConfig) Mode() types.ShutdownMode {
	mode, _ := types.ParseShutdownMode(f.Demo.ShutdownMode)
	return mode
}

func parseDuration(field, s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", field, err)
	}
	return d, nil
}
