package engine

import (
	"log/slog"
	"sync"

	"sprintline/internal/game"
)

// Game owns one session's baseline, timeline, and current state, and
// resolves submissions against them. All methods are safe for concurrent
// use; a single mutex serializes resolution so every submission observes a
// fully resolved timeline. Distinct Games share nothing and resolve
// concurrently.
type Game struct {
	mu       sync.Mutex
	log      *slog.Logger
	ids      *Clock
	baseline *game.State
	timeline *Timeline
	state    *game.State
	broken   error
}

// NewGame returns a Game with an empty timeline over the initial world.
func NewGame(log *slog.Logger) *Game {
	if log == nil {
		log = slog.Default()
	}
	base := game.NewState()
	return &Game{
		log:      log,
		ids:      NewClock(),
		baseline: base,
		timeline: NewTimeline(),
		state:    base,
	}
}

// NextRequestID stamps a fresh request id. Ids grow monotonically and never
// collide with ids already observed on submitted requests.
func (g *Game) NextRequestID() game.RequestID {
	return g.ids.Next()
}

// State returns the current resolved state. The snapshot is immutable;
// callers may read it without holding any lock.
func (g *Game) State() *game.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Timeline returns the committed requests in replay order.
func (g *Game) Timeline() []game.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.timeline.Requests()
}

// Broken reports the consistency error that wedged this Game, or nil.
func (g *Game) Broken() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.broken
}

// Join registers a user on the baseline with a starting token budget.
// Registration is not a timeline event: adding a user commutes with every
// committed request, so it lands on the baseline and on the current state
// directly, and survives any future replay.
func (g *Game) Join(u game.User, tokens int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.broken != nil {
		return g.broken
	}
	if _, ok := g.baseline.Users[u.ID]; ok {
		return ErrUserExists
	}
	g.baseline = g.baseline.WithUser(u, tokens)
	g.state = g.state.WithUser(u, tokens)
	g.log.Debug("user joined", "user_id", int64(u.ID), "role", u.Role.String())
	return nil
}

// Submit resolves one incoming request against the committed timeline.
//
// The request's target tick may precede ticks already committed. Resolution
// replays everything ordered before (tick, request_id) from the baseline,
// applies the incoming request, then re-validates everything ordered after
// it. Requests that stop applying under the new history are removed from the
// timeline and reported in Update.Invalidated; an incoming request that the
// rules reject appears there alone, with the timeline untouched.
//
// The only non-nil error is a *ConsistencyError: a committed request failed
// replay, which breaks the determinism contract and permanently wedges the
// Game.
func (g *Game) Submit(req game.Request) (game.Update, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.broken != nil {
		return game.Update{}, g.broken
	}

	if g.timeline.Contains(req.RequestID) {
		g.log.Debug("duplicate request id",
			"request_id", int64(req.RequestID), "op", req.Op)
		return game.Update{
			Invalidated: []game.Request{req},
		}, nil
	}

	// Replay the prefix strictly before the insertion point. These requests
	// were valid when committed and the prefix history is unchanged, so any
	// failure here is a broken handler, not a rule outcome.
	s := g.baseline
	for _, prev := range g.timeline.Before(req.TargetTick, req.RequestID) {
		next, err := game.Apply(s, prev)
		if err != nil {
			return game.Update{}, g.wedge(prev, err)
		}
		s = next
	}

	// Optimistic application of the incoming request. A rejection is a
	// resolution outcome: report it and leave the timeline as it was.
	afterReq, err := game.Apply(s, req)
	if err != nil {
		if rej := game.AsRejection(err); rej != nil {
			g.log.Debug("request rejected",
				"request_id", int64(req.RequestID),
				"op", req.Op,
				"tick", int64(req.TargetTick),
				"code", rej.Code,
				"reason", rej.Message)
			return game.Update{Invalidated: []game.Request{req}}, nil
		}
		return game.Update{}, g.wedge(req, err)
	}

	update := game.Update{Committed: []game.Request{req}}

	// Re-validate the suffix under the new history. A request that no
	// longer applies is evicted; later requests continue from the state it
	// would have produced had it never existed.
	s = afterReq
	for _, later := range g.timeline.From(req.TargetTick, req.RequestID) {
		next, err := game.Apply(s, later)
		if err != nil {
			if rej := game.AsRejection(err); rej != nil {
				g.timeline.Remove(later.RequestID)
				update.Invalidated = append(update.Invalidated, later)
				g.log.Debug("request invalidated by insertion",
					"request_id", int64(later.RequestID),
					"op", later.Op,
					"tick", int64(later.TargetTick),
					"code", rej.Code,
					"caused_by", int64(req.RequestID))
				continue
			}
			return game.Update{}, g.wedge(later, err)
		}
		s = next
	}

	g.timeline.Insert(req)
	g.ids.Observe(req.RequestID)
	g.state = s
	g.log.Debug("request committed",
		"request_id", int64(req.RequestID),
		"op", req.Op,
		"tick", int64(req.TargetTick),
		"invalidated", len(update.Invalidated))
	return update, nil
}

// wedge records the first consistency violation and returns it. Once set,
// every later call fails with the same error.
func (g *Game) wedge(req game.Request, cause error) error {
	ce := &ConsistencyError{
		Tick:      req.TargetTick,
		RequestID: req.RequestID,
		Op:        req.Op,
		Cause:     cause,
	}
	g.broken = ce
	g.log.Error("internal consistency violation",
		"request_id", int64(req.RequestID),
		"op", req.Op,
		"tick", int64(req.TargetTick),
		"cause", cause)
	return ce
}
