// Package session owns game lifetimes. The allocator hands out small dense
// integer ids and reclaims them; the registry maps ids to live games and
// issues credentials to joining users. Callers outside this package hold
// only ids, never game references with independent lifetimes.
package session

import (
	"container/heap"
	"fmt"

	"sprintline/internal/engine"
)

// ID identifies one live session slot.
type ID int

// intHeap is a min-heap of freed slot indices.
type intHeap []ID

func (h intHeap) Len() int           { return len(h) }
func (h intHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intHeap) Push(x any)        { *h = append(*h, x.(ID)) }
func (h *intHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// Allocator assigns session ids densely, reusing the smallest freed id
// before extending the slot array. Releasing the rightmost live slot trims
// the trailing run of free slots so storage stays bounded by the highest
// live id.
//
// Invariant: every index below len(slots) is either live or on the free
// heap exactly once, and the free heap never holds an index at or beyond
// len(slots).
//
// Allocator is not safe for concurrent use; the Registry serializes access.
type Allocator struct {
	slots []*engine.Game
	free  intHeap
}

// NewAllocator returns an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Allocate stores g and returns its id, preferring the smallest freed slot.
func (a *Allocator) Allocate(g *engine.Game) ID {
	if len(a.free) > 0 {
		id := heap.Pop(&a.free).(ID)
		a.slots[id] = g
		return id
	}
	a.slots = append(a.slots, g)
	return ID(len(a.slots) - 1)
}

// Get returns the live game at id.
func (a *Allocator) Get(id ID) (*engine.Game, bool) {
	if id < 0 || int(id) >= len(a.slots) || a.slots[id] == nil {
		return nil, false
	}
	return a.slots[id], true
}

// Release frees id for reuse. Releasing the high-water slot shrinks the
// slot array past every trailing freed slot and drops those indices from
// the free heap.
func (a *Allocator) Release(id ID) error {
	if _, ok := a.Get(id); !ok {
		return fmt.Errorf("session %d is not live", id)
	}
	a.slots[id] = nil
	if int(id) != len(a.slots)-1 {
		heap.Push(&a.free, id)
		return nil
	}

	// Trim the trailing free run, released slot included.
	end := len(a.slots) - 1
	for end > 0 && a.slots[end-1] == nil {
		end--
	}
	a.slots = a.slots[:end]

	kept := a.free[:0]
	for _, f := range a.free {
		if int(f) < end {
			kept = append(kept, f)
		}
	}
	a.free = kept
	heap.Init(&a.free)
	return nil
}

// Live returns the number of live sessions.
func (a *Allocator) Live() int {
	return len(a.slots) - len(a.free)
}

// HighWater returns the current slot array length, the bound below which
// every id is live or freed.
func (a *Allocator) HighWater() int {
	return len(a.slots)
}
