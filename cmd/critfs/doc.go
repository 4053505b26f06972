// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

// Critfs mounts the critical-section monitor pseudo-filesystem: a
// single read-only file whose content is the live per-CPU report of
// worst-case preemption-disabled and critical-section durations.
// Reading the file drains (and resets) the maxima.
//
//	critfs --mountpoint /run/critfs
//	cat /run/critfs/critmon
//	0,0.000123456,0.000045678
//	1,0.000000000,0.000089012
//
// Configuration comes from a YAML file (--config or CRITFS_CONFIG);
// --synthetic generates a fabricated instrumentation workload for
// demos, and metrics.listen enables a Prometheus endpoint exposing
// the current maxima without resetting them.
package main
