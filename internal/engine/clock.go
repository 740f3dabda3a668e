package engine

import "time"

// Clock supplies commit timestamps. The engine never orders by wall-clock
// time - revisions do that - but committed_at is recorded on every event
// and snapshot, and tests need it deterministic.
type Clock interface {
	Now() time.Time
}

// SystemClock is the production clock.
type SystemClock struct{}

// Now returns the current UTC time.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
