package call

import (
	"errors"
	"fmt"
)

var (
	// ErrBusy means a non-terminal call session already exists; a client
	// holds at most one.
	ErrBusy = errors.New("call already in progress")

	// ErrNoPendingCall means Accept or Decline was invoked with no offer
	// waiting.
	ErrNoPendingCall = errors.New("no pending incoming call")

	// ErrCancelled means the session was torn down while an async step
	// (media acquisition, negotiation) was still in flight; the step
	// unwound without completing.
	ErrCancelled = errors.New("call cancelled")

	// ErrMediaUnavailable wraps a local capture failure. Local-only: no
	// event is emitted and the session reverts to idle.
	ErrMediaUnavailable = errors.New("failed to acquire local audio")
)

// Error annotates a failure with the negotiation step that produced it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(op string, err error) *Error {
	return &Error{Op: op, Err: err}
}
