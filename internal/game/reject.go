package game

import (
	"errors"
	"fmt"
)

// RejectCode categorizes why a request was not applicable.
type RejectCode string

const (
	// RejectRule means a game-rule precondition failed.
	RejectRule RejectCode = "RULE"

	// RejectUnknownTarget means the request referenced an entity id that
	// does not exist in the current state.
	RejectUnknownTarget RejectCode = "UNKNOWN_TARGET"

	// RejectUnknownOperation means the operation name is not in the
	// target's capability set (or the game-scoped table).
	RejectUnknownOperation RejectCode = "UNKNOWN_OPERATION"

	// RejectUnauthorized means the authcode does not match the claimed user.
	RejectUnauthorized RejectCode = "UNAUTHORIZED"

	// RejectDuplicate means the request id was already committed.
	RejectDuplicate RejectCode = "DUPLICATE"
)

// Rejection is the first-class validation outcome meaning "this request is
// not applicable under the given state". It satisfies error so handlers can
// return it through the ordinary error path, but it is data, not a fault:
// the engine resolves every Rejection locally and reports it through the
// Update's invalidated list.
type Rejection struct {
	Code    RejectCode
	Message string
}

// Error implements the error interface.
func (r *Rejection) Error() string {
	return fmt.Sprintf("%s: %s", r.Code, r.Message)
}

// Rejectf builds a Rejection with a formatted message.
func Rejectf(code RejectCode, format string, args ...any) *Rejection {
	return &Rejection{Code: code, Message: fmt.Sprintf(format, args...)}
}

// AsRejection unwraps err into a *Rejection, or returns nil if err is not a
// rejection. Anything that is not a Rejection crossing out of request
// application is an engine fault, not a rule outcome.
func AsRejection(err error) *Rejection {
	var rej *Rejection
	if errors.As(err, &rej) {
		return rej
	}
	return nil
}
