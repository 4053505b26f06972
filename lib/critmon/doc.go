// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package critmon generates the critical-section monitor report: a
// line-oriented text view of per-CPU worst-case latency contributors
// (maximum time with preemption disabled, maximum time inside a
// critical section).
//
// The report is never materialized as a whole. A Reader describes the
// report's shape (which metrics are enabled, how raw ticks convert to
// seconds); each Open creates a Session that produces the report
// incrementally through arbitrarily small Read calls. Reading is
// destructive: rendering a duration field samples the underlying
// maximum and resets it to zero, exactly once per field per drain, no
// matter how the caller chunks its reads.
//
// One record per CPU:
//
//	<cpu>[,<sec>.<nsec>][,<sec>.<nsec>]\n
//
// with the nanosecond part zero-padded to nine digits and a field
// present only when its metric is enabled.
package critmon
