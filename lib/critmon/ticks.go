// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

package critmon

import "time"

// TickRate is the frequency of the raw performance counter that the
// instrumentation records durations in, in ticks per second.
type TickRate uint64

// DefaultTickRate treats raw counter values as nanoseconds.
const DefaultTickRate TickRate = 1_000_000_000

// Split converts a raw tick count into whole seconds and a nanosecond
// remainder in [0, 1e9).
func (r TickRate) Split(ticks uint64) (sec, nsec uint64) {
	sec = ticks / uint64(r)
	rem := ticks % uint64(r)
	nsec = rem * uint64(time.Second) / uint64(r)
	return sec, nsec
}

// Ticks converts a time.Duration into raw ticks at this rate.
// Negative durations convert to zero.
func (r TickRate) Ticks(d time.Duration) uint64 {
	if d <= 0 {
		return 0
	}
	sec := uint64(d / time.Second)
	rem := uint64(d % time.Second)
	return sec*uint64(r) + rem*uint64(r)/uint64(time.Second)
}
