// Package ids generates the millisecond-derived identifiers used for
// announcements, schedules and artifact filenames.
package ids

import (
	"sync"
	"time"
)

// Generator produces unique int64 identifiers.
type Generator interface {
	Next() int64
}

// Clock returns wall-clock milliseconds. Extracted for tests.
type Clock func() int64

// Monotonic derives ids from wall-clock milliseconds but never repeats one:
// ids requested within the same millisecond (or after a clock step backwards)
// continue from the last issued value. Identifiers stay human-readable as
// creation timestamps while being collision-free under concurrent creation.
type Monotonic struct {
	mu    sync.Mutex
	last  int64
	clock Clock
}

// NewMonotonic builds a generator backed by the system clock.
func NewMonotonic() *Monotonic {
	return &Monotonic{clock: func() int64 { return time.Now().UnixMilli() }}
}

// NewMonotonicWithClock builds a generator with an injected clock.
func NewMonotonicWithClock(clock Clock) *Monotonic {
	return &Monotonic{clock: clock}
}

// Next returns the next identifier.
func (g *Monotonic) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.clock()
	if now <= g.last {
		now = g.last + 1
	}
	g.last = now
	return now
}
