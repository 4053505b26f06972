// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

package sched

import (
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/critfs/critfs/lib/clock"
	"github.com/critfs/critfs/lib/critmon"
)

// Options configures a Monitor.
type Options struct {
	// CPUs is the number of CPUs to track. Zero means
	// runtime.NumCPU(). Negative is an error.
	CPUs int

	// TickRate is the unit durations are recorded in. Zero means
	// critmon.DefaultTickRate (nanoseconds).
	TickRate critmon.TickRate

	// Clock measures region durations. If nil, defaults to
	// clock.Real().
	Clock clock.Clock
}

// Monitor holds the shared per-CPU maxima. All methods are safe for
// concurrent use from any goroutine; the counters themselves are the
// only shared mutable state.
type Monitor struct {
	rate  critmon.TickRate
	clock clock.Clock
	premp []atomic.Uint64
	crit  []atomic.Uint64
}

var _ critmon.StatsSource = (*Monitor)(nil)

// NewMonitor builds a Monitor with zeroed maxima.
func NewMonitor(options Options) (*Monitor, error) {
	if options.CPUs < 0 {
		return nil, fmt.Errorf("sched: negative CPU count %d", options.CPUs)
	}
	if options.CPUs == 0 {
		options.CPUs = runtime.NumCPU()
	}
	if options.TickRate == 0 {
		options.TickRate = critmon.DefaultTickRate
	}
	if options.Clock == nil {
		options.Clock = clock.Real()
	}
	return &Monitor{
		rate:  options.TickRate,
		clock: options.Clock,
		premp: make([]atomic.Uint64, options.CPUs),
		crit:  make([]atomic.Uint64, options.CPUs),
	}, nil
}

// CPUCount returns the number of CPUs the monitor tracks.
func (m *Monitor) CPUCount() int { return len(m.premp) }

// TickRate returns the unit the monitor records durations in.
func (m *Monitor) TickRate() critmon.TickRate { return m.rate }

// RecordPreemption folds a measured preemption-disabled interval, in
// raw ticks, into cpu's maximum. Out-of-range CPUs are dropped.
func (m *Monitor) RecordPreemption(cpu int, ticks uint64) {
	if cpu >= 0 && cpu < len(m.premp) {
		storeMax(&m.premp[cpu], ticks)
	}
}

// RecordCritSection folds a measured critical-section interval, in
// raw ticks, into cpu's maximum. Out-of-range CPUs are dropped.
func (m *Monitor) RecordCritSection(cpu int, ticks uint64) {
	if cpu >= 0 && cpu < len(m.crit) {
		storeMax(&m.crit[cpu], ticks)
	}
}

// SampleAndResetPreemption returns cpu's preemption-disabled maximum
// and resets it to zero as one atomic operation.
func (m *Monitor) SampleAndResetPreemption(cpu int) uint64 {
	if cpu < 0 || cpu >= len(m.premp) {
		return 0
	}
	return m.premp[cpu].Swap(0)
}

// SampleAndResetCritSection returns cpu's critical-section maximum
// and resets it to zero as one atomic operation.
func (m *Monitor) SampleAndResetCritSection(cpu int) uint64 {
	if cpu < 0 || cpu >= len(m.crit) {
		return 0
	}
	return m.crit[cpu].Swap(0)
}

// PeekPreemption returns cpu's current preemption-disabled maximum
// without resetting it. Observational exports (Prometheus) use this
// so scrapes never interfere with the report's destructive reads.
func (m *Monitor) PeekPreemption(cpu int) uint64 {
	if cpu < 0 || cpu >= len(m.premp) {
		return 0
	}
	return m.premp[cpu].Load()
}

// PeekCritSection returns cpu's current critical-section maximum
// without resetting it.
func (m *Monitor) PeekCritSection(cpu int) uint64 {
	if cpu < 0 || cpu >= len(m.crit) {
		return 0
	}
	return m.crit[cpu].Load()
}

// storeMax raises counter to value if value is larger. Lock-free:
// concurrent writers race only to publish the larger of their values.
func storeMax(counter *atomic.Uint64, value uint64) {
	for {
		current := counter.Load()
		if value <= current {
			return
		}
		if counter.CompareAndSwap(current, value) {
			return
		}
	}
}

// Region is an in-progress hazardous interval. End measures the
// elapsed time and folds it into the monitor's maximum for the CPU
// captured at Begin time.
type Region struct {
	monitor *Monitor
	cpu     int
	start   time.Time
	record  func(cpu int, ticks uint64)
}

// BeginPreemption starts measuring a preemption-disabled interval on
// cpu.
func (m *Monitor) BeginPreemption(cpu int) Region {
	return Region{monitor: m, cpu: cpu, start: m.clock.Now(), record: m.RecordPreemption}
}

// BeginCritSection starts measuring a critical section on cpu.
func (m *Monitor) BeginCritSection(cpu int) Region {
	return Region{monitor: m, cpu: cpu, start: m.clock.Now(), record: m.RecordCritSection}
}

// End closes the region and records its duration. Calling End on a
// zero Region is a no-op.
func (r Region) End() {
	if r.monitor == nil {
		return
	}
	elapsed := r.monitor.clock.Now().Sub(r.start)
	r.record(r.cpu, r.monitor.rate.Ticks(elapsed))
}
