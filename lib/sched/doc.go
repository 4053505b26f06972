// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package sched maintains the per-CPU concurrency-hazard maxima that
// the critmon report exposes: the longest observed interval with
// preemption disabled and the longest observed critical section,
// per CPU, since the last destructive read.
//
// Instrumented code brackets its hazardous regions:
//
//	region := monitor.BeginCritSection(cpu)
//	// ... hold the lock ...
//	region.End()
//
// or records pre-measured intervals directly with RecordCritSection /
// RecordPreemption. Updates are lock-free monotonic-max stores, safe
// from any goroutine; Monitor implements critmon.StatsSource so a
// report reader can sample and reset the maxima atomically.
package sched
