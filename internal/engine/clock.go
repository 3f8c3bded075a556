package engine

import "time"

// Clock provides the current time. It is injected so overdue sweeps can be
// tested against a fixed clock.
type Clock interface {
	Now() time.Time
}

// realClock is the production Clock backed by time.Now.
type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }
