package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	"github.com/sportlink/opportunity-engine/internal/model"
)

// DefaultPageSize bounds a notification page when the caller passes no limit.
const DefaultPageSize = 20

// NotificationService turns lifecycle events into per-recipient inbox rows.
// Delivery is at-least-once: an event that fails to store is kept on an
// in-process backlog and re-dispatched by the background worker; the upsert
// key makes redelivery idempotent.
type NotificationService struct {
	repo   NotificationStore
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	backlog []model.LifecycleEvent
}

func NewNotificationService(repo NotificationStore, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

// Publish dispatches an event, parking it on the backlog when storage is
// unavailable. It never reports failure to the caller: the originating
// transition is the source of truth and has already committed.
func (s *NotificationService) Publish(ctx context.Context, event model.LifecycleEvent) {
	if err := s.Dispatch(ctx, event); err != nil {
		s.logger.Warn("Dispatch failed, queued for retry",
			zap.String("kind", string(event.Kind)),
			zap.String("subject_ref", event.SubjectRef.String()),
			zap.Error(err),
		)
		s.mu.Lock()
		s.backlog = append(s.backlog, event)
		s.mu.Unlock()
	}
}

// Dispatch resolves the recipient set and upserts one inbox row per
// recipient. Safe to call repeatedly for the same event.
func (s *NotificationService) Dispatch(ctx context.Context, event model.LifecycleEvent) error {
	createdAt := event.EmittedAt
	if createdAt.IsZero() {
		createdAt = s.now()
	}

	for _, recipient := range event.Recipients() {
		n := &model.Notification{
			RecipientID: recipient,
			Kind:        event.Kind,
			SubjectRef:  event.SubjectRef,
			Payload:     event.Payload,
			CreatedAt:   createdAt,
		}
		if err := s.repo.Upsert(ctx, n); err != nil {
			return fmt.Errorf("deliver to %s: %w", recipient, err)
		}
	}

	return nil
}

// RetryBacklog re-dispatches parked events with backoff. Called periodically
// by the background worker; events that still fail go back on the backlog.
func (s *NotificationService) RetryBacklog(ctx context.Context) {
	s.mu.Lock()
	pending := s.backlog
	s.backlog = nil
	s.mu.Unlock()

	if len(pending) == 0 {
		return
	}

	s.logger.Info("Retrying notification backlog", zap.Int("events", len(pending)))

	for _, event := range pending {
		backoff := retry.WithMaxRetries(5, retry.NewFibonacci(100*time.Millisecond))
		err := retry.Do(ctx, backoff, func(ctx context.Context) error {
			if err := s.Dispatch(ctx, event); err != nil {
				return retry.RetryableError(err)
			}
			return nil
		})
		if err != nil {
			s.logger.Error("Dispatch retry exhausted, event re-queued",
				zap.String("kind", string(event.Kind)),
				zap.String("subject_ref", event.SubjectRef.String()),
				zap.Error(err),
			)
			s.mu.Lock()
			s.backlog = append(s.backlog, event)
			s.mu.Unlock()
		}
	}
}

// BacklogSize reports how many events await redelivery.
func (s *NotificationService) BacklogSize() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.backlog)
}

// MarkRead idempotently marks a notification read on behalf of its owner.
func (s *NotificationService) MarkRead(ctx context.Context, id int64, recipientID uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id, recipientID); err != nil {
		return err
	}

	s.logger.Debug("Notification read",
		zap.Int64("notification_id", id),
		zap.String("recipient_id", recipientID.String()),
	)

	return nil
}

// List returns one inbox page plus the cursor for the next one (nil when the
// page was not full).
func (s *NotificationService) List(ctx context.Context, recipientID uuid.UUID, after *model.NotificationCursor, limit int) ([]*model.Notification, *model.NotificationCursor, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}

	items, err := s.repo.List(ctx, recipientID, after, limit)
	if err != nil {
		return nil, nil, err
	}

	var next *model.NotificationCursor
	if len(items) == limit {
		c := items[len(items)-1].CursorFor()
		next = &c
	}

	return items, next, nil
}

// CountUnread returns the recipient's unread count.
func (s *NotificationService) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}
