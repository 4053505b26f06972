// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/critfs/critfs/lib/clock"
	"github.com/critfs/critfs/lib/config"
	"github.com/critfs/critfs/lib/critmon"
	"github.com/critfs/critfs/lib/critmon/critfs"
	"github.com/critfs/critfs/lib/export"
	"github.com/critfs/critfs/lib/sched"
	"github.com/critfs/critfs/lib/version"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		showVersion bool
		configPath  string
		mountpoint  string
		synthetic   bool
	)
	flag.BoolVar(&showVersion, "version", false, "print version information and exit")
	flag.StringVar(&configPath, "config", "", "path to critfs.yaml (overrides CRITFS_CONFIG)")
	flag.StringVar(&mountpoint, "mountpoint", "", "mount directory (overrides the config file)")
	flag.BoolVar(&synthetic, "synthetic", false, "generate a synthetic instrumentation workload (for demos and soak tests)")
	flag.Parse()

	if showVersion {
		fmt.Printf("critfs %s\n", version.Info())
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if mountpoint != "" {
		cfg.Mountpoint = mountpoint
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := newLogger(cfg.Log.Level)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	monitor, err := sched.NewMonitor(sched.Options{
		CPUs:     cfg.Monitor.CPUs,
		TickRate: critmon.TickRate(cfg.Monitor.TickRate),
	})
	if err != nil {
		return err
	}

	reader, err := critmon.NewReader(critmon.Config{
		Source:      monitor,
		TickRate:    critmon.TickRate(cfg.Monitor.TickRate),
		Preemption:  cfg.Monitor.Preemption,
		CritSection: cfg.Monitor.CritSection,
	})
	if err != nil {
		return err
	}

	server, err := critfs.Mount(critfs.Options{
		Mountpoint: cfg.Mountpoint,
		Reader:     reader,
		AllowOther: cfg.AllowOther,
		Logger:     logger,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := server.Unmount(); err != nil {
			logger.Error("unmounting", "error", err)
		}
	}()

	if cfg.Metrics.Listen != "" {
		go serveMetrics(ctx, logger, cfg.Metrics.Listen, monitor)
	}

	if synthetic {
		workload := &syntheticWorkload{monitor: monitor, clock: clock.Real()}
		go workload.run(ctx, 10*time.Millisecond)
		logger.Info("synthetic workload started")
	}

	logger.Info("critfs running",
		"mountpoint", cfg.Mountpoint,
		"cpus", monitor.CPUCount(),
		"preemption", cfg.Monitor.Preemption,
		"critsection", cfg.Monitor.CritSection,
	)

	<-ctx.Done()
	logger.Info("shutting down")
	return nil
}

// loadConfig resolves the configuration: an explicit --config path
// wins, then CRITFS_CONFIG, then built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	if os.Getenv("CRITFS_CONFIG") != "" {
		return config.Load()
	}
	return config.Default(), nil
}

// newLogger creates the standard critfs logger: a JSON handler
// writing to stderr. It also sets the default slog logger so that
// third-party code using slog.Info etc. gets the same handler.
func newLogger(level string) (*slog.Logger, error) {
	var slogLevel slog.Level
	if err := slogLevel.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slogLevel,
	}))
	slog.SetDefault(logger)
	return logger, nil
}

// serveMetrics runs the Prometheus endpoint until ctx is cancelled.
func serveMetrics(ctx context.Context, logger *slog.Logger, listen string, monitor *sched.Monitor) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(export.NewCollector(monitor))

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	server := &http.Server{Addr: listen, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("metrics server shutdown", "error", err)
		}
	}()

	logger.Info("metrics endpoint listening", "address", listen)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("metrics server", "error", err)
	}
}
