// Package scheduling holds the time-window rules for session transitions.
// Every predicate is pure over (session, now) so the rules are testable
// without a store or a real clock.
package scheduling

import (
	"time"

	"github.com/sportlink/opportunity-engine/internal/model"
)

// CanConfirm validates the attendance confirmation window: the session must
// still be upcoming, now must fall on the scheduled start's calendar day, and
// the session must not be over. The distinct errors let a caller tell "not
// yet confirmable" apart from "window closed".
func CanConfirm(s *model.Session, now time.Time) error {
	if s.Status != model.SessionStatusUpcoming {
		return model.ErrConfirmationWindowClosed
	}
	if !sameDay(now, s.ScheduledStart) {
		if now.Before(s.ScheduledStart) {
			return model.ErrConfirmationNotYetOpen
		}
		return model.ErrConfirmationWindowClosed
	}
	if now.After(s.ScheduledEnd) {
		return model.ErrConfirmationWindowClosed
	}
	return nil
}

// CanMarkNoShow permits no_show only after the scheduled end, and only when
// attendance was never confirmed.
func CanMarkNoShow(s *model.Session, now time.Time) error {
	if s.Status != model.SessionStatusUpcoming {
		return &model.IllegalTransitionError{
			Entity: "session",
			From:   string(s.Status),
			To:     string(model.SessionStatusNoShow),
		}
	}
	if now.Before(s.ScheduledEnd) {
		return model.ErrSessionNotEnded
	}
	if s.Attendance == model.AttendancePresent {
		return &model.IllegalTransitionError{
			Entity: "session",
			From:   string(s.Status),
			To:     string(model.SessionStatusNoShow),
		}
	}
	return nil
}

// CanComplete permits completion once the session has started.
func CanComplete(s *model.Session, now time.Time) error {
	if s.Status != model.SessionStatusUpcoming {
		return &model.IllegalTransitionError{
			Entity: "session",
			From:   string(s.Status),
			To:     string(model.SessionStatusCompleted),
		}
	}
	if now.Before(s.ScheduledStart) {
		return model.ErrSessionNotStarted
	}
	return nil
}

// CanCancel permits cancellation with a non-empty reason any time before the
// scheduled end.
func CanCancel(s *model.Session, now time.Time, reason string) error {
	if s.Status != model.SessionStatusUpcoming {
		return &model.IllegalTransitionError{
			Entity: "session",
			From:   string(s.Status),
			To:     string(model.SessionStatusCancelled),
		}
	}
	if reason == "" {
		return model.ErrCancellationReasonRequired
	}
	if !now.Before(s.ScheduledEnd) {
		return model.ErrSessionEnded
	}
	return nil
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
