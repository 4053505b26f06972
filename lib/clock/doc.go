// Copyright 2026 The critfs Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction for testability.
//
// Production code accepts a Clock interface parameter instead of calling
// time.Now, time.Sleep, or time.NewTicker directly. In production,
// Real() provides the standard library behavior. In tests, Fake()
// provides a deterministic clock that advances only when Advance is
// called.
//
// Add a Clock field to structs that use time:
//
//	type Monitor struct {
//	    clock clock.Clock
//	    // ...
//	}
//
// In production:
//
//	m := &Monitor{clock: clock.Real()}
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	m := &Monitor{clock: c}
//	c.Advance(5 * time.Second)
package clock
