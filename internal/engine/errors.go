package engine

import (
	"errors"
	"fmt"

	"sprintline/internal/game"
)

// ConsistencyError reports that a previously committed, previously valid
// request failed to re-apply during the pre-insertion replay. Rule
// evaluation is pure, so this can only mean a broken determinism contract in
// a handler; the Game's timeline no longer has a trustworthy derivation and
// every later submission fails with the same error.
//
// This is the one failure that crosses the engine boundary as a hard error.
// Rule-level rejections never do - they come back as data in the Update.
type ConsistencyError struct {
	Tick      game.Tick
	RequestID game.RequestID
	Op        string
	Cause     error
}

// Error implements the error interface.
func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("internal consistency violation: committed request %d (%s, tick %d) failed to re-apply: %v",
		e.RequestID, e.Op, e.Tick, e.Cause)
}

// Unwrap exposes the underlying rejection for inspection.
func (e *ConsistencyError) Unwrap() error { return e.Cause }

// IsConsistencyError reports whether err is (or wraps) a ConsistencyError.
func IsConsistencyError(err error) bool {
	var ce *ConsistencyError
	return errors.As(err, &ce)
}

// ErrUserExists is returned by Join when the user id is already registered.
var ErrUserExists = errors.New("user id already registered")
