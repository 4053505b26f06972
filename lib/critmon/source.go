// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

package critmon

// StatsSource provides the per-CPU maxima that the report renders.
// The instrumentation side (see lib/sched) owns the counters and
// updates them concurrently; each SampleAndReset call returns the
// current maximum for one CPU and resets it to zero as one atomic
// operation. This package never serializes access across CPUs —
// cross-CPU atomicity is the source's responsibility.
type StatsSource interface {
	// CPUCount returns the number of CPUs the source tracks.
	// Records are emitted for CPUs 0 .. CPUCount()-1 in order.
	CPUCount() int

	// SampleAndResetPreemption returns the maximum time preemption
	// was disabled on cpu, in raw ticks, and resets it to zero.
	SampleAndResetPreemption(cpu int) uint64

	// SampleAndResetCritSection returns the maximum time spent in a
	// critical section on cpu, in raw ticks, and resets it to zero.
	SampleAndResetCritSection(cpu int) uint64
}
