package engine

import (
	"sort"

	"sprintline/internal/game"
)

// Timeline holds the committed requests of a Game, bucketed by target tick.
// Within a bucket requests are kept sorted by request id ascending, so the
// whole structure realizes one total order: (tick, request_id). Replay walks
// that order; it is the only order that exists.
//
// Timeline is not safe for concurrent use. The owning Game serializes access.
type Timeline struct {
	ticks map[game.Tick][]game.Request
	index map[game.RequestID]game.Tick
}

// NewTimeline returns an empty timeline.
func NewTimeline() *Timeline {
	return &Timeline{
		ticks: make(map[game.Tick][]game.Request),
		index: make(map[game.RequestID]game.Tick),
	}
}

// Len returns the number of committed requests.
func (t *Timeline) Len() int { return len(t.index) }

// Contains reports whether a request with the given id is committed.
func (t *Timeline) Contains(id game.RequestID) bool {
	_, ok := t.index[id]
	return ok
}

// Insert commits req at its target tick, keeping the bucket sorted by
// request id. Inserting an id that is already present is a programming
// error upstream; Insert overwrites nothing and assumes the caller checked.
func (t *Timeline) Insert(req game.Request) {
	bucket := t.ticks[req.TargetTick]
	at := sort.Search(len(bucket), func(i int) bool {
		return bucket[i].RequestID >= req.RequestID
	})
	bucket = append(bucket, game.Request{})
	copy(bucket[at+1:], bucket[at:])
	bucket[at] = req
	t.ticks[req.TargetTick] = bucket
	t.index[req.RequestID] = req.TargetTick
}

// Remove drops the request with the given id. It reports whether the id was
// present. Empty buckets are deleted so At never returns a stale empty slice.
func (t *Timeline) Remove(id game.RequestID) bool {
	tick, ok := t.index[id]
	if !ok {
		return false
	}
	bucket := t.ticks[tick]
	for i, req := range bucket {
		if req.RequestID == id {
			bucket = append(bucket[:i], bucket[i+1:]...)
			break
		}
	}
	if len(bucket) == 0 {
		delete(t.ticks, tick)
	} else {
		t.ticks[tick] = bucket
	}
	delete(t.index, id)
	return true
}

// At returns the committed requests at a tick, sorted by request id. The
// returned slice is the internal bucket; callers must not mutate it.
func (t *Timeline) At(tick game.Tick) []game.Request {
	return t.ticks[tick]
}

// Ticks returns the occupied ticks in ascending order.
func (t *Timeline) Ticks() []game.Tick {
	out := make([]game.Tick, 0, len(t.ticks))
	for tick := range t.ticks {
		out = append(out, tick)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Ascend calls fn for every committed request in (tick, request_id) order.
// Iteration stops early if fn returns false.
func (t *Timeline) Ascend(fn func(req game.Request) bool) {
	for _, tick := range t.Ticks() {
		for _, req := range t.ticks[tick] {
			if !fn(req) {
				return
			}
		}
	}
}

// Before collects every committed request strictly ordered before
// (tick, id), in replay order.
func (t *Timeline) Before(tick game.Tick, id game.RequestID) []game.Request {
	var out []game.Request
	t.Ascend(func(req game.Request) bool {
		if req.TargetTick > tick || (req.TargetTick == tick && req.RequestID >= id) {
			return false
		}
		out = append(out, req)
		return true
	})
	return out
}

// From collects every committed request ordered at or after (tick, id), in
// replay order. The request with the given id itself is excluded.
func (t *Timeline) From(tick game.Tick, id game.RequestID) []game.Request {
	var out []game.Request
	started := false
	t.Ascend(func(req game.Request) bool {
		if !started {
			if req.TargetTick < tick || (req.TargetTick == tick && req.RequestID < id) {
				return true
			}
			started = true
		}
		if req.RequestID != id {
			out = append(out, req)
		}
		return true
	})
	return out
}

// Requests returns every committed request in replay order. The slice is
// freshly allocated.
func (t *Timeline) Requests() []game.Request {
	out := make([]game.Request, 0, len(t.index))
	t.Ascend(func(req game.Request) bool {
		out = append(out, req)
		return true
	})
	return out
}
