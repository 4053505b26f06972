// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package export publishes the monitor's current per-CPU maxima as
// Prometheus gauges. Collection uses the monitor's non-destructive
// peek path, so scrapes never interfere with the pseudo-file's
// read-and-reset semantics.
package export

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/critfs/critfs/lib/critmon"
	"github.com/critfs/critfs/lib/sched"
)

// Collector implements prometheus.Collector over a sched.Monitor.
type Collector struct {
	monitor *sched.Monitor

	prempDesc *prometheus.Desc
	critDesc  *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector builds a Collector for the given monitor.
func NewCollector(monitor *sched.Monitor) *Collector {
	return &Collector{
		monitor: monitor,
		prempDesc: prometheus.NewDesc(
			"critfs_preemption_max_seconds",
			"Maximum observed time with preemption disabled since the last report drain.",
			[]string{"cpu"}, nil,
		),
		critDesc: prometheus.NewDesc(
			"critfs_critsection_max_seconds",
			"Maximum observed critical-section time since the last report drain.",
			[]string{"cpu"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.prempDesc
	ch <- c.critDesc
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	rate := c.monitor.TickRate()
	for cpu := 0; cpu < c.monitor.CPUCount(); cpu++ {
		label := strconv.Itoa(cpu)
		ch <- prometheus.MustNewConstMetric(c.prempDesc, prometheus.GaugeValue,
			ticksToSeconds(rate, c.monitor.PeekPreemption(cpu)), label)
		ch <- prometheus.MustNewConstMetric(c.critDesc, prometheus.GaugeValue,
			ticksToSeconds(rate, c.monitor.PeekCritSection(cpu)), label)
	}
}

func ticksToSeconds(rate critmon.TickRate, ticks uint64) float64 {
	sec, nsec := rate.Split(ticks)
	return float64(sec) + float64(nsec)/1e9
}
