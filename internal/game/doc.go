// Package game defines the simulated world: users, entities, the immutable
// per-tick State snapshot, and the operation registry that routes commands
// to game rules.
//
// RULE CONTRACT:
//
// Every operation handler is a pure function (State, Request) -> (State, error).
// A handler never mutates its input State; it either returns a new State value
// (produced via Clone) or a *Rejection describing why the request is not
// applicable. Rejections are validation results, not faults - they travel back
// to callers as data.
//
// DETERMINISM:
//
// Handlers must not consult wall clocks, randomness, or anything outside the
// (State, Request) pair. Two replays from the same baseline with the same
// request sequence produce identical State values. The resolution engine in
// package engine depends on this for its cascading re-validation pass.
package game
