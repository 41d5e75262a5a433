// Package engine implements the request resolution engine: the component
// that merges timestamped commands from many users into one consistent,
// causally-ordered history.
//
// ARCHITECTURE:
//
// Single-Writer Resolution:
// Each Game resolves one submission at a time under an exclusive critical
// section. Full-history replay makes fine-grained locking unprofitable, so
// the mutex is the whole concurrency story for one Game; distinct Games
// share nothing and resolve concurrently.
//
// Submission Flow:
//  1. Replay the committed history ordered before the incoming request,
//     re-deriving the working state from the baseline.
//  2. Apply the incoming request. Rejections return immediately with the
//     timeline untouched.
//  3. Re-validate every committed request ordered after the insertion point.
//     Requests whose preconditions the insertion broke are removed from the
//     timeline and reported as invalidated.
//  4. Adopt the final working state as the Game's committed state.
//
// This is optimistic insertion with cascading re-validation - rebase
// semantics for collaborative histories. A late-arriving, earlier-ticked
// command can knock out already-accepted later commands, and one Submit call
// discovers and reports every casualty.
//
// DETERMINISM:
//
// History order is total: ascending tick, then ascending request id within a
// tick. Rule evaluation is pure (package game), so replaying the same
// history from the same baseline always produces identical state. A
// committed request that fails to re-apply during the pre-insertion replay
// breaks that contract and surfaces as a *ConsistencyError; the Game is
// unusable afterwards.
package engine
