// Package testutil provides deterministic clocks for tests and golden
// traces.
package testutil

import (
	"sync"
	"time"
)

// FixedClock is a deterministic engine.Clock for tests: it starts at a
// fixed instant and advances by a fixed step on every call, so commit
// timestamps are reproducible across runs.
//
// Thread-safety: all methods are safe for concurrent use via internal
// mutex.
type FixedClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewFixedClock creates a clock starting at start, advancing by step per
// Now() call. A zero step freezes the clock.
func NewFixedClock(start time.Time, step time.Duration) *FixedClock {
	return &FixedClock{now: start.UTC(), step: step}
}

// Epoch is the conventional start instant used across tests so golden
// traces agree on timestamps.
var Epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// NewEpochClock creates a FixedClock at Epoch advancing one second per
// call.
func NewEpochClock() *FixedClock {
	return NewFixedClock(Epoch, time.Second)
}

// Now returns the current instant and advances the clock by one step.
func (c *FixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Set repositions the clock.
func (c *FixedClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t.UTC()
}
