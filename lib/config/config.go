// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for critfs.
type Config struct {
	// Mountpoint is the directory where the pseudo-filesystem is
	// mounted.
	Mountpoint string `yaml:"mountpoint"`

	// AllowOther permits other users to read the mount. Requires
	// user_allow_other in /etc/fuse.conf.
	AllowOther bool `yaml:"allow_other"`

	// Monitor configures the instrumentation side.
	Monitor MonitorConfig `yaml:"monitor"`

	// Metrics configures the optional Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`

	// Log configures logging.
	Log LogConfig `yaml:"log"`
}

// MonitorConfig configures the per-CPU maxima tracking.
type MonitorConfig struct {
	// CPUs is the number of CPUs to track. Zero means all CPUs of
	// the host.
	CPUs int `yaml:"cpus"`

	// TickRate is the raw counter frequency in ticks per second.
	// The default of 1e9 records durations in nanoseconds.
	TickRate uint64 `yaml:"tick_rate"`

	// Preemption enables the preemption-disabled maximum field of
	// the report.
	Preemption bool `yaml:"preemption"`

	// CritSection enables the critical-section maximum field of the
	// report.
	CritSection bool `yaml:"critsection"`
}

// MetricsConfig configures the Prometheus scrape endpoint.
type MetricsConfig struct {
	// Listen is the address to serve /metrics on. Empty disables
	// the endpoint.
	Listen string `yaml:"listen"`
}

// LogConfig configures logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
}

// Default returns the base configuration. Loading a config file
// overrides these values field by field.
func Default() *Config {
	return &Config{
		Mountpoint: "/run/critfs",
		Monitor: MonitorConfig{
			TickRate:    1_000_000_000,
			Preemption:  true,
			CritSection: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the config file named by the CRITFS_CONFIG environment
// variable. There is no default path — if CRITFS_CONFIG is not set,
// this fails.
func Load() (*Config, error) {
	path := os.Getenv("CRITFS_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("CRITFS_CONFIG environment variable not set; " +
			"set it to the path of your critfs.yaml config file, or use --config flag")
	}
	return LoadFile(path)
}

// LoadFile reads and parses the config file at path on top of the
// defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Mountpoint == "" {
		errs = append(errs, fmt.Errorf("mountpoint is required"))
	}

	if c.Monitor.CPUs < 0 {
		errs = append(errs, fmt.Errorf("monitor.cpus must not be negative"))
	}

	if c.Monitor.TickRate == 0 {
		errs = append(errs, fmt.Errorf("monitor.tick_rate must be positive"))
	}

	levels := []string{"debug", "info", "warn", "error"}
	if !contains(levels, c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level must be one of: %v", levels))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func contains(slice []string, s string) bool {
	for _, item := range slice {
		if item == s {
			return true
		}
	}
	return false
}
