// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"testing"
	"time"

	"github.com/critfs/critfs/lib/clock"
	"github.com/critfs/critfs/lib/sched"
)

func TestSyntheticWorkloadStep(t *testing.T) {
	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	monitor, err := sched.NewMonitor(sched.Options{CPUs: 2, Clock: fake})
	if err != nil {
		t.Fatalf("NewMonitor: %v", err)
	}
	workload := &syntheticWorkload{monitor: monitor, clock: fake}

	// Step 0: critical section on CPU 0, 1ms hold.
	done := make(chan struct{})
	go func() {
		workload.step(0)
		close(done)
	}()
	waitForSleeper(t, fake)
	fake.Advance(time.Millisecond)
	<-done

	if got := monitor.PeekCritSection(0); got != 1_000_000 {
		t.Errorf("PeekCritSection(0) = %d, want 1000000", got)
	}

	// Step 3: preemption region on CPU 1, 4ms hold.
	done = make(chan struct{})
	go func() {
		workload.step(3)
		close(done)
	}()
	waitForSleeper(t, fake)
	fake.Advance(4 * time.Millisecond)
	<-done

	if got := monitor.PeekPreemption(1); got != 4_000_000 {
		t.Errorf("PeekPreemption(1) = %d, want 4000000", got)
	}
}

// waitForSleeper blocks until a goroutine parks in the fake clock's
// Sleep, so Advance cannot race ahead of registration.
func waitForSleeper(t *testing.T, fake *clock.FakeClock) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for fake.Sleepers() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for workload to sleep")
		}
		time.Sleep(time.Millisecond)
	}
}
