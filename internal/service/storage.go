package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/sportlink/opportunity-engine/internal/model"
)

// The services depend on these narrow store interfaces rather than the pgx
// repositories directly, so the state-machine logic is testable against
// in-memory fakes. The repository package satisfies all of them.

type PostingStore interface {
	Create(ctx context.Context, p *model.Posting) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Posting, error)
	ListActive(ctx context.Context, now time.Time) ([]*model.Posting, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.PostingStatus) error
	CloseExpired(ctx context.Context, now time.Time) ([]*model.Posting, error)
}

type ProfileStore interface {
	Upsert(ctx context.Context, p *model.CandidateProfile) error
	GetByCandidateID(ctx context.Context, candidateID uuid.UUID) (*model.CandidateProfile, error)
	ListAll(ctx context.Context) ([]*model.CandidateProfile, error)
}

type ApplicationStore interface {
	Create(ctx context.Context, app *model.Application, first model.StatusChange) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Application, error)
	LoadHistory(ctx context.Context, app *model.Application) error
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.ApplicationStatus, actor uuid.UUID, reason string) (*model.Application, error)
	GetByCandidateID(ctx context.Context, candidateID uuid.UUID) ([]*model.Application, error)
	GetByPostingID(ctx context.Context, postingID uuid.UUID) ([]*model.Application, error)
}

type SessionStore interface {
	Create(ctx context.Context, s *model.Session) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Session, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.SessionStatus, attendance model.Attendance, reason string) (*model.Session, error)
	ConfirmAttendance(ctx context.Context, id uuid.UUID) (*model.Session, error)
	GetByParty(ctx context.Context, userID uuid.UUID) ([]*model.Session, error)
}

type NotificationStore interface {
	Upsert(ctx context.Context, n *model.Notification) error
	MarkRead(ctx context.Context, id int64, recipientID uuid.UUID) error
	List(ctx context.Context, recipientID uuid.UUID, after *model.NotificationCursor, limit int) ([]*model.Notification, error)
	CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error)
}

// Notifier is how the lifecycle services hand committed events to the
// dispatcher. Publishing never returns an error: a transition that already
// committed must not appear to fail because of delivery trouble.
type Notifier interface {
	Publish(ctx context.Context, event model.LifecycleEvent)
}
