package model

import (
	"errors"
	"fmt"
)

// Validation errors are deterministic and caller-correctable; they are
// returned synchronously and must not be retried automatically. Conflict is
// the one transient kind: it means a concurrent writer won and the caller
// may retry with fresh state.
var (
	ErrNotFound             = errors.New("not found")
	ErrConflict             = errors.New("concurrent update conflict")
	ErrDuplicateApplication = errors.New("application already exists for this posting and candidate")
	ErrPostingClosed        = errors.New("posting is not accepting applications")
	ErrNotFoundOrForbidden  = errors.New("notification not found or not owned by recipient")

	ErrCancellationReasonRequired = errors.New("cancellation requires a reason")
	ErrSessionNotStarted          = errors.New("session has not started yet")
	ErrSessionNotEnded            = errors.New("session has not ended yet")
	ErrSessionEnded               = errors.New("session has already ended")
	ErrConfirmationNotYetOpen     = errors.New("attendance confirmation window has not opened yet")
	ErrConfirmationWindowClosed   = errors.New("attendance confirmation window has closed")
)

// IllegalTransitionError reports an edge outside the state machine graph.
type IllegalTransitionError struct {
	Entity string // "application" or "session"
	From   string
	To     string
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal %s transition from %q to %q", e.Entity, e.From, e.To)
}

// IsIllegalTransition reports whether err wraps an IllegalTransitionError.
func IsIllegalTransition(err error) bool {
	var ite *IllegalTransitionError
	return errors.As(err, &ite)
}
