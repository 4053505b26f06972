// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"sync"
	"time"
)

// FakeClock is a deterministic Clock for tests. Time does not pass on
// its own; it advances only when Advance is called. Goroutines blocked
// in Sleep wake when the fake time passes their deadline.
type FakeClock struct {
	mu      sync.Mutex
	now     time.Time
	waiters []*fakeWaiter
	tickers []*fakeTicker
}

type fakeWaiter struct {
	deadline time.Time
	done     chan struct{}
}

type fakeTicker struct {
	interval time.Duration
	next     time.Time
	c        chan time.Time
	stopped  bool
}

// Fake returns a FakeClock whose current time is start.
func Fake(start time.Time) *FakeClock {
	return &FakeClock{now: start}
}

// Now returns the current fake time.
func (f *FakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Sleep blocks until the fake time advances past d from now. A
// non-positive d returns immediately.
func (f *FakeClock) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	f.mu.Lock()
	waiter := &fakeWaiter{
		deadline: f.now.Add(d),
		done:     make(chan struct{}),
	}
	f.waiters = append(f.waiters, waiter)
	f.mu.Unlock()
	<-waiter.done
}

// NewTicker returns a Ticker driven by Advance. Each Advance delivers
// at most one tick per elapsed interval (ticks are coalesced when the
// consumer falls behind, matching time.Ticker).
func (f *FakeClock) NewTicker(d time.Duration) *Ticker {
	if d <= 0 {
		panic("clock: non-positive ticker interval")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ticker := &fakeTicker{
		interval: d,
		next:     f.now.Add(d),
		c:        make(chan time.Time, 1),
	}
	f.tickers = append(f.tickers, ticker)
	return &Ticker{
		C: ticker.c,
		stopFunc: func() {
			f.mu.Lock()
			defer f.mu.Unlock()
			ticker.stopped = true
		},
	}
}

// Advance moves the fake time forward by d, waking sleepers whose
// deadlines have passed and firing due tickers.
func (f *FakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)

	remaining := f.waiters[:0]
	for _, waiter := range f.waiters {
		if !waiter.deadline.After(f.now) {
			close(waiter.done)
			continue
		}
		remaining = append(remaining, waiter)
	}
	f.waiters = remaining

	for _, ticker := range f.tickers {
		if ticker.stopped {
			continue
		}
		for !ticker.next.After(f.now) {
			select {
			case ticker.c <- ticker.next:
			default:
			}
			ticker.next = ticker.next.Add(ticker.interval)
		}
	}
}

// Sleepers returns the number of goroutines currently blocked in
// Sleep. Tests use this to wait for a goroutine to park before
// calling Advance.
func (f *FakeClock) Sleepers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.waiters)
}
