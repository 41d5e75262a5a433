package engine

import (
	"sync/atomic"

	"sprintline/internal/game"
)

// Clock hands out monotonic request ids. Ascending request id is the
// deterministic tie-break for requests sharing a tick, so ids must be unique
// per Game and never reused.
//
// Thread-safety: safe for concurrent use (atomic operations). Transport
// workers stamp ids without holding the Game's submission lock.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0; the first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock that resumes from a specific request id.
func NewClockAt(start game.RequestID) *Clock {
	c := &Clock{}
	c.seq.Store(int64(start))
	return c
}

// Next returns the next request id and advances the clock.
func (c *Clock) Next() game.RequestID {
	return game.RequestID(c.seq.Add(1))
}

// Current returns the most recently issued id without advancing.
func (c *Clock) Current() game.RequestID {
	return game.RequestID(c.seq.Load())
}

// Observe raises the clock to at least id. Called when a client supplies its
// own request id, so stamped ids never collide with client-chosen ones.
func (c *Clock) Observe(id game.RequestID) {
	for {
		cur := c.seq.Load()
		if cur >= int64(id) {
			return
		}
		if c.seq.CompareAndSwap(cur, int64(id)) {
			return
		}
	}
}
