package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sportlink/opportunity-engine/internal/model"
	"github.com/sportlink/opportunity-engine/internal/repository/base"
)

type SessionRepository struct {
	*base.Repository
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{Repository: base.NewRepository(pool)}
}

const sessionColumns = `id, coach_id, student_id, scheduled_start, scheduled_end,
		status, attendance, cancellation_reason, created_at, updated_at`

// Create inserts a new upcoming session.
func (r *SessionRepository) Create(ctx context.Context, s *model.Session) error {
	query := `
		INSERT INTO sessions (id, coach_id, student_id, scheduled_start, scheduled_end, status, attendance)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		s.ID, s.CoachID, s.StudentID, s.ScheduledStart, s.ScheduledEnd, s.Status, s.Attendance,
	).Scan(&s.CreatedAt, &s.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	return nil
}

// GetByID returns a session or model.ErrNotFound.
func (r *SessionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE id = $1`

	s, err := scanSession(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get session by id: %w", err)
	}

	return s, nil
}

// UpdateStatus commits a session transition with a compare-and-swap on the
// current status, setting attendance and cancellation reason atomically with
// the status itself.
func (r *SessionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.SessionStatus, attendance model.Attendance, reason string) (*model.Session, error) {
	query := `
		UPDATE sessions
		SET status = $1, attendance = $2, cancellation_reason = $3, updated_at = now()
		WHERE id = $4 AND status = $5
		RETURNING ` + sessionColumns

	s, err := scanSession(r.QueryRow(ctx, query, to, attendance, reason, id, from))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, r.resolveMiss(ctx, id)
		}
		return nil, fmt.Errorf("update session status: %w", err)
	}

	return s, nil
}

// ConfirmAttendance sets attendance to present while the session is still
// upcoming. The status guard in the WHERE clause keeps the write atomic with
// respect to concurrent transitions.
func (r *SessionRepository) ConfirmAttendance(ctx context.Context, id uuid.UUID) (*model.Session, error) {
	query := `
		UPDATE sessions
		SET attendance = 'present', updated_at = now()
		WHERE id = $1 AND status = 'upcoming'
		RETURNING ` + sessionColumns

	s, err := scanSession(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, r.resolveMiss(ctx, id)
		}
		return nil, fmt.Errorf("confirm attendance: %w", err)
	}

	return s, nil
}

// resolveMiss distinguishes a missing session from a lost compare-and-swap.
func (r *SessionRepository) resolveMiss(ctx context.Context, id uuid.UUID) error {
	var exists bool
	if err := r.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, id).Scan(&exists); err != nil {
		return fmt.Errorf("check session exists: %w", err)
	}
	if !exists {
		return model.ErrNotFound
	}
	return model.ErrConflict
}

// GetByParty returns all sessions where the user is coach or student,
// soonest first.
func (r *SessionRepository) GetByParty(ctx context.Context, userID uuid.UUID) ([]*model.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM sessions
		WHERE coach_id = $1 OR student_id = $1
		ORDER BY scheduled_start ASC
	`

	rows, err := r.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list sessions by party: %w", err)
	}
	defer rows.Close()

	var sessions []*model.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

func scanSession(row pgx.Row) (*model.Session, error) {
	var s model.Session
	err := row.Scan(
		&s.ID,
		&s.CoachID,
		&s.StudentID,
		&s.ScheduledStart,
		&s.ScheduledEnd,
		&s.Status,
		&s.Attendance,
		&s.CancellationReason,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
