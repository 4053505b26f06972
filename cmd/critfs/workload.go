// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"time"

	"github.com/critfs/critfs/lib/clock"
	"github.com/critfs/critfs/lib/sched"
)

// syntheticWorkload feeds the monitor with fabricated hazardous
// regions so a freshly mounted filesystem has data to show. Each
// step holds one region on a rotating CPU for a varying duration,
// alternating between the two metrics.
type syntheticWorkload struct {
	monitor *sched.Monitor
	clock   clock.Clock
}

func (w *syntheticWorkload) run(ctx context.Context, interval time.Duration) {
	ticker := w.clock.NewTicker(interval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		w.step(i)
	}
}

func (w *syntheticWorkload) step(i int) {
	cpu := i % w.monitor.CPUCount()
	hold := time.Duration(1+i%9) * time.Millisecond

	var region sched.Region
	if i%2 == 0 {
		region = w.monitor.BeginCritSection(cpu)
	} else {
		region = w.monitor.BeginPreemption(cpu)
	}
	w.clock.Sleep(hold)
	region.End()
}
