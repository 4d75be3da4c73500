package inventory

import (
	"sync"
	"time"
)

type IDGenerator interface {
	// Next returns an id greater than floor.
	Next(floor int64) int64
}

// MillisIDs hands out wall-clock milliseconds, bumped past the previous id and
// past floor when the clock has not moved on. Ids stay below 2^53, so
// browsers read them back exactly.
type MillisIDs struct {
	mu   sync.Mutex
	now  func() time.Time
	last int64
}

func NewMillisIDs() *MillisIDs {
	return &MillisIDs{now: time.Now}
}

func (g *MillisIDs) Next(floor int64) int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	id := max(g.now().UnixMilli(), g.last+1, floor+1)
	g.last = id
	return id
}
