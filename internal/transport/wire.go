// Package transport exposes sessions over HTTP and fans resolution results
// out to connected players over WebSocket. It owns connection lifecycle
// only; every game decision is delegated to the engine.
package transport

import (
	"sprintline/internal/game"
	"sprintline/internal/session"
)

// Command is one player message received over a session socket. The
// credentials ride on every command; the engine re-checks them during
// resolution, so a forged pair surfaces as a rejected request rather than
// a transport error.
type Command struct {
	UserID     game.UserID      `json:"user_id"`
	Authcode   int64            `json:"authcode"`
	RequestID  game.RequestID   `json:"request_id,omitempty"`
	TargetTick game.Tick        `json:"target_tick"`
	Target     game.ObjectID    `json:"target,omitempty"`
	Op         string           `json:"operation"`
	Args       map[string]int64 `json:"args,omitempty"`
}

// Request converts the wire command into an engine request.
func (c Command) Request() game.Request {
	return game.Request{
		UserID:     c.UserID,
		Authcode:   c.Authcode,
		RequestID:  c.RequestID,
		TargetTick: c.TargetTick,
		Target:     c.Target,
		Op:         c.Op,
		Args:       c.Args,
	}
}

// Envelope is one server-to-client message.
type Envelope struct {
	Type     string         `json:"type"`
	Update   *game.Update   `json:"update,omitempty"`
	Snapshot *game.Snapshot `json:"snapshot,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// Envelope types.
const (
	TypeUpdate   = "update"
	TypeSnapshot = "snapshot"
	TypeError    = "error"
)

// CreateResponse is the body returned by POST /games.
type CreateResponse struct {
	SessionID session.ID `json:"session_id"`
}

// JoinRequest is the body accepted by POST /games/{id}/join.
type JoinRequest struct {
	Name string `json:"name"`
}

// ErrorResponse is the body of every non-2xx HTTP reply.
type ErrorResponse struct {
	Error string `json:"error"`
}
