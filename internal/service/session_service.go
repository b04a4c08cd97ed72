package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sportlink/opportunity-engine/internal/model"
	"github.com/sportlink/opportunity-engine/internal/scheduling"
)

// SessionService owns the session state machine. All time-window rules live
// in the scheduling package; this service reads the clock once per call and
// lets the guard decide.
type SessionService struct {
	sessions SessionStore
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewSessionService(sessions SessionStore, notifier Notifier, logger *zap.Logger) *SessionService {
	return &SessionService{
		sessions: sessions,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create schedules a new session between a coach and a student.
func (s *SessionService) Create(ctx context.Context, coachID, studentID uuid.UUID, start, end time.Time) (*model.Session, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("scheduled_start must be before scheduled_end")
	}
	if !end.After(s.now()) {
		return nil, fmt.Errorf("session must end in the future")
	}

	session := &model.Session{
		ID:             uuid.New(),
		CoachID:        coachID,
		StudentID:      studentID,
		ScheduledStart: start,
		ScheduledEnd:   end,
		Status:         model.SessionStatusUpcoming,
		Attendance:     model.AttendanceUnset,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	s.logger.Info("Session created",
		zap.String("session_id", session.ID.String()),
		zap.String("coach_id", coachID.String()),
		zap.String("student_id", studentID.String()),
		zap.Time("scheduled_start", start),
	)

	return session, nil
}

// Transition moves a session into one of its terminal statuses. A retried
// call that finds the session already at target is a no-op success.
func (s *SessionService) Transition(ctx context.Context, sessionID uuid.UUID, target model.SessionStatus, actor uuid.UUID, reason string) (*model.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if session.Status == target {
		return session, nil
	}

	now := s.now()
	attendance := session.Attendance

	switch target {
	case model.SessionStatusCancelled:
		if err := scheduling.CanCancel(session, now, reason); err != nil {
			return nil, err
		}
	case model.SessionStatusNoShow:
		if err := scheduling.CanMarkNoShow(session, now); err != nil {
			return nil, err
		}
		attendance = model.AttendanceAbsent
		reason = ""
	case model.SessionStatusCompleted:
		if err := scheduling.CanComplete(session, now); err != nil {
			return nil, err
		}
		// Attendance stays present only if it was confirmed in the window;
		// completion itself never invents it.
		if attendance != model.AttendancePresent {
			attendance = model.AttendanceUnset
		}
		reason = ""
	default:
		return nil, &model.IllegalTransitionError{
			Entity: "session",
			From:   string(session.Status),
			To:     string(target),
		}
	}

	updated, err := s.sessions.UpdateStatus(ctx, sessionID, model.SessionStatusUpcoming, target, attendance, reason)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Session transitioned",
		zap.String("session_id", sessionID.String()),
		zap.String("to", string(target)),
		zap.String("actor", actor.String()),
	)

	payload := map[string]any{
		"from": string(model.SessionStatusUpcoming),
		"to":   string(target),
	}
	if updated.CancellationReason != "" {
		payload["reason"] = updated.CancellationReason
	}

	s.notifier.Publish(ctx, model.LifecycleEvent{
		Kind:       model.KindSessionStatus,
		SubjectRef: updated.ID,
		Parties:    []uuid.UUID{updated.CoachID, updated.StudentID},
		Actor:      actor,
		Payload:    payload,
		EmittedAt:  s.now(),
	})

	return updated, nil
}

// ConfirmAttendance records presence during the same-day window: the session
// is still upcoming, today is the scheduled day, and the session is not over.
// It changes attendance only, never the status.
func (s *SessionService) ConfirmAttendance(ctx context.Context, sessionID, actor uuid.UUID) (*model.Session, error) {
	session, err := s.sessions.GetByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if err := scheduling.CanConfirm(session, s.now()); err != nil {
		return nil, err
	}

	updated, err := s.sessions.ConfirmAttendance(ctx, sessionID)
	if err != nil {
		// A concurrent transition closed the window between the check and
		// the write.
		if errors.Is(err, model.ErrConflict) {
			return nil, model.ErrConfirmationWindowClosed
		}
		return nil, err
	}

	s.logger.Info("Attendance confirmed",
		zap.String("session_id", sessionID.String()),
		zap.String("actor", actor.String()),
	)

	return updated, nil
}

// GetByID returns one session.
func (s *SessionService) GetByID(ctx context.Context, sessionID uuid.UUID) (*model.Session, error) {
	return s.sessions.GetByID(ctx, sessionID)
}

// ListByParty returns all sessions a user takes part in, soonest first.
func (s *SessionService) ListByParty(ctx context.Context, userID uuid.UUID) ([]*model.Session, error) {
	return s.sessions.GetByParty(ctx, userID)
}
