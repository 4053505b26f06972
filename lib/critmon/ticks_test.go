// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

package critmon

import (
	"testing"
	"time"
)

func TestTickRateSplit(t *testing.T) {
	tests := []struct {
		name     string
		rate     TickRate
		ticks    uint64
		wantSec  uint64
		wantNsec uint64
	}{
		{"zero", DefaultTickRate, 0, 0, 0},
		{"nanosecond ticks sub-second", DefaultTickRate, 500_000_000, 0, 500_000_000},
		{"nanosecond ticks mixed", DefaultTickRate, 1_500_000_000, 1, 500_000_000},
		{"nanosecond ticks tiny remainder", DefaultTickRate, 12_000_000_034, 12, 34},
		{"24 MHz counter", TickRate(24_000_000), 36_000_000, 1, 500_000_000},
		{"24 MHz single tick", TickRate(24_000_000), 1, 0, 41},
		{"1 kHz counter", TickRate(1000), 2500, 2, 500_000_000},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			sec, nsec := test.rate.Split(test.ticks)
			if sec != test.wantSec || nsec != test.wantNsec {
				t.Errorf("Split(%d) = (%d, %d), want (%d, %d)",
					test.ticks, sec, nsec, test.wantSec, test.wantNsec)
			}
		})
	}
}

func TestTickRateTicks(t *testing.T) {
	tests := []struct {
		name string
		rate TickRate
		d    time.Duration
		want uint64
	}{
		{"zero", DefaultTickRate, 0, 0},
		{"negative", DefaultTickRate, -time.Second, 0},
		{"nanosecond identity", DefaultTickRate, 1500 * time.Millisecond, 1_500_000_000},
		{"24 MHz", TickRate(24_000_000), 1500 * time.Millisecond, 36_000_000},
		{"large duration does not overflow", DefaultTickRate, 2 * time.Hour, 7_200_000_000_000},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := test.rate.Ticks(test.d); got != test.want {
				t.Errorf("Ticks(%v) = %d, want %d", test.d, got, test.want)
			}
		})
	}
}

// Split and Ticks agree: converting a duration to ticks and back
// yields the original second/nanosecond breakdown (up to tick
// granularity).
func TestTickRateRoundTrip(t *testing.T) {
	rate := TickRate(24_000_000)
	d := 3*time.Second + 250*time.Millisecond
	sec, nsec := rate.Split(rate.Ticks(d))
	if sec != 3 || nsec != 250_000_000 {
		t.Errorf("round trip = (%d, %d), want (3, 250000000)", sec, nsec)
	}
}
