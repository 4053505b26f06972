// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

package sched

import (
	"sync"
	"testing"
	"time"

	"github.com/critfs/critfs/lib/clock"
	"github.com/critfs/critfs/lib/critmon"
)

var testStart = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestMonitor(t *testing.T, cpus int, fake *clock.FakeClock) *Monitor {
	t.Helper()
	monitor, err := NewMonitor(Options{CPUs: cpus, Clock: fake})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	return monitor
}

func TestNewMonitorDefaults(t *testing.T) {
	monitor, err := NewMonitor(Options{})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	if monitor.CPUCount() < 1 {
		t.Errorf("CPUCount = %d, want >= 1", monitor.CPUCount())
	}
	if monitor.TickRate() != critmon.DefaultTickRate {
		t.Errorf("TickRate = %d, want %d", monitor.TickRate(), critmon.DefaultTickRate)
	}
}

func TestNewMonitorRejectsNegativeCPUs(t *testing.T) {
	if _, err := NewMonitor(Options{CPUs: -1}); err == nil {
		t.Error("NewMonitor(CPUs: -1) succeeded")
	}
}

func TestRecordKeepsMaximum(t *testing.T) {
	monitor := newTestMonitor(t, 2, clock.Fake(testStart))

	monitor.RecordPreemption(0, 100)
	monitor.RecordPreemption(0, 50)
	monitor.RecordPreemption(0, 300)
	monitor.RecordPreemption(0, 200)

	if got := monitor.PeekPreemption(0); got != 300 {
		t.Errorf("PeekPreemption(0) = %d, want 300", got)
	}
	if got := monitor.PeekPreemption(1); got != 0 {
		t.Errorf("PeekPreemption(1) = %d, want 0", got)
	}
}

func TestSampleAndReset(t *testing.T) {
	monitor := newTestMonitor(t, 1, clock.Fake(testStart))
	monitor.RecordCritSection(0, 42)

	if got := monitor.SampleAndResetCritSection(0); got != 42 {
		t.Errorf("first sample = %d, want 42", got)
	}
	if got := monitor.SampleAndResetCritSection(0); got != 0 {
		t.Errorf("second sample = %d, want 0", got)
	}
}

func TestPeekDoesNotReset(t *testing.T) {
	monitor := newTestMonitor(t, 1, clock.Fake(testStart))
	monitor.RecordPreemption(0, 7)

	if got := monitor.PeekPreemption(0); got != 7 {
		t.Errorf("PeekPreemption = %d, want 7", got)
	}
	if got := monitor.SampleAndResetPreemption(0); got != 7 {
		t.Errorf("sample after peek = %d, want 7", got)
	}
}

func TestOutOfRangeCPUsAreDropped(t *testing.T) {
	monitor := newTestMonitor(t, 1, clock.Fake(testStart))

	monitor.RecordPreemption(-1, 10)
	monitor.RecordPreemption(5, 10)
	monitor.RecordCritSection(5, 10)

	if got := monitor.SampleAndResetPreemption(5); got != 0 {
		t.Errorf("sample of out-of-range CPU = %d, want 0", got)
	}
	if got := monitor.PeekPreemption(0); got != 0 {
		t.Errorf("in-range counter = %d after out-of-range records, want 0", got)
	}
}

func TestRegionMeasuresElapsed(t *testing.T) {
	fake := clock.Fake(testStart)
	monitor := newTestMonitor(t, 2, fake)

	region := monitor.BeginCritSection(1)
	fake.Advance(1500 * time.Millisecond)
	region.End()

	if got := monitor.PeekCritSection(1); got != 1_500_000_000 {
		t.Errorf("PeekCritSection(1) = %d, want 1500000000", got)
	}
	if got := monitor.PeekCritSection(0); got != 0 {
		t.Errorf("PeekCritSection(0) = %d, want 0", got)
	}
}

func TestRegionKeepsLongest(t *testing.T) {
	fake := clock.Fake(testStart)
	monitor := newTestMonitor(t, 1, fake)

	for _, d := range []time.Duration{30 * time.Millisecond, 80 * time.Millisecond, 10 * time.Millisecond} {
		region := monitor.BeginPreemption(0)
		fake.Advance(d)
		region.End()
	}

	if got := monitor.PeekPreemption(0); got != 80_000_000 {
		t.Errorf("PeekPreemption = %d, want 80000000", got)
	}
}

func TestZeroRegionEndIsNoOp(t *testing.T) {
	var region Region
	region.End()
}

func TestConcurrentRecords(t *testing.T) {
	monitor := newTestMonitor(t, 1, clock.Fake(testStart))

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 1; i <= 1000; i++ {
				monitor.RecordPreemption(0, uint64(w*1000+i))
			}
		}(w)
	}
	wg.Wait()

	// The maximum of all recorded values is 8000: worker 7's last
	// record.
	if got := monitor.PeekPreemption(0); got != 8000 {
		t.Errorf("PeekPreemption = %d, want 8000", got)
	}
}
