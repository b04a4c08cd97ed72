package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sportlink/opportunity-engine/internal/model"
	"github.com/sportlink/opportunity-engine/internal/repository/base"
)

type NotificationRepository struct {
	*base.Repository
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{Repository: base.NewRepository(pool)}
}

const notificationColumns = `id, recipient_id, kind, subject_ref, payload, read, created_at`

// Upsert delivers one notification. If an unread row for the same
// (recipient, kind, subject) already exists the payload and timestamp are
// refreshed in place; read rows are never touched, a new row is inserted
// instead. The partial unique index makes this a single conditional write,
// so concurrent re-delivery of the same event cannot duplicate rows. The
// update is additionally guarded on created_at so a delayed redelivery of an
// older event can never rewind an unread row past a newer one.
func (r *NotificationRepository) Upsert(ctx context.Context, n *model.Notification) error {
	query := `
		INSERT INTO notifications (recipient_id, kind, subject_ref, payload, read, created_at)
		VALUES ($1, $2, $3, $4, false, $5)
		ON CONFLICT (recipient_id, kind, subject_ref) WHERE NOT read
		DO UPDATE SET payload = EXCLUDED.payload, created_at = EXCLUDED.created_at
		WHERE notifications.created_at <= EXCLUDED.created_at
		RETURNING id, created_at
	`

	err := r.QueryRow(
		ctx, query,
		n.RecipientID, n.Kind, n.SubjectRef, n.Payload, n.CreatedAt,
	).Scan(&n.ID, &n.CreatedAt)

	if err != nil {
		// No row back means the guard rejected the write: the unread row
		// already carries a newer event, so this delivery is superseded.
		if base.IsNotFound(err) {
			return nil
		}
		return fmt.Errorf("upsert notification: %w", err)
	}

	return nil
}

// MarkRead sets the read flag for a notification owned by the recipient.
// Marking an already-read notification is a no-op success; a wrong owner or
// a missing row maps to model.ErrNotFoundOrForbidden, deliberately
// indistinguishable.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, recipientID uuid.UUID) error {
	query := `
		UPDATE notifications
		SET read = true
		WHERE id = $1 AND recipient_id = $2
	`

	affected, err := r.ExecAffected(ctx, query, id, recipientID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}

	if affected == 0 {
		return model.ErrNotFoundOrForbidden
	}

	return nil
}

// List returns one page of a recipient's inbox, unread first and newest
// first within each group. Pass a nil cursor for the first page.
func (r *NotificationRepository) List(ctx context.Context, recipientID uuid.UUID, after *model.NotificationCursor, limit int) ([]*model.Notification, error) {
	query := `
		SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1
		ORDER BY read ASC, created_at DESC, id DESC
		LIMIT $2
	`
	args := []any{recipientID, limit}

	if after != nil {
		query = `
			SELECT ` + notificationColumns + `
			FROM notifications
			WHERE recipient_id = $1
			  AND (read > $2
				OR (read = $2 AND created_at < $3)
				OR (read = $2 AND created_at = $3 AND id < $4))
			ORDER BY read ASC, created_at DESC, id DESC
			LIMIT $5
		`
		args = []any{recipientID, after.Read, after.CreatedAt, after.ID, limit}
	}

	rows, err := r.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.Kind,
			&n.SubjectRef,
			&n.Payload,
			&n.Read,
			&n.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

// CountUnread returns the recipient's unread badge count.
func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID uuid.UUID) (int64, error) {
	var count int64
	err := r.QueryRow(ctx,
		`SELECT count(*) FROM notifications WHERE recipient_id = $1 AND NOT read`,
		recipientID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}
