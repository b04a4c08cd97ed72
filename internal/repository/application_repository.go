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

type ApplicationRepository struct {
	*base.Repository
}

func NewApplicationRepository(pool *pgxpool.Pool) *ApplicationRepository {
	return &ApplicationRepository{Repository: base.NewRepository(pool)}
}

// Create inserts the application together with its first history entry.
// A unique violation on (posting_id, candidate_id) maps to
// model.ErrDuplicateApplication.
func (r *ApplicationRepository) Create(ctx context.Context, app *model.Application, first model.StatusChange) error {
	tx, err := r.Pool().Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO applications (id, posting_id, candidate_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at
	`

	err = tx.QueryRow(ctx, query, app.ID, app.PostingID, app.CandidateID, app.Status).
		Scan(&app.CreatedAt, &app.UpdatedAt)
	if err != nil {
		if base.IsUniqueViolation(err) {
			return model.ErrDuplicateApplication
		}
		return fmt.Errorf("create application: %w", err)
	}

	historyQuery := `
		INSERT INTO application_status_history (application_id, seq, status, actor, reason)
		VALUES ($1, 1, $2, $3, $4)
	`
	if _, err := tx.Exec(ctx, historyQuery, app.ID, first.Status, first.Actor, first.Reason); err != nil {
		return fmt.Errorf("create application history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	app.History = []model.StatusChange{first}
	return nil
}

// GetByID returns an application without its history, or model.ErrNotFound.
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Application, error) {
	query := `
		SELECT id, posting_id, candidate_id, status, created_at, updated_at
		FROM applications
		WHERE id = $1
	`

	app, err := scanApplication(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get application by id: %w", err)
	}

	return app, nil
}

// LoadHistory fills the application's ordered status history.
func (r *ApplicationRepository) LoadHistory(ctx context.Context, app *model.Application) error {
	query := `
		SELECT status, actor, reason, created_at
		FROM application_status_history
		WHERE application_id = $1
		ORDER BY seq ASC
	`

	rows, err := r.Query(ctx, query, app.ID)
	if err != nil {
		return fmt.Errorf("load application history: %w", err)
	}
	defer rows.Close()

	var history []model.StatusChange
	for rows.Next() {
		var change model.StatusChange
		if err := rows.Scan(&change.Status, &change.Actor, &change.Reason, &change.CreatedAt); err != nil {
			return fmt.Errorf("scan status change: %w", err)
		}
		history = append(history, change)
	}

	app.History = history
	return rows.Err()
}

// UpdateStatus commits one state-machine transition: a compare-and-swap on
// the current status plus the matching history row, in one transaction.
// Zero rows affected means the application vanished (model.ErrNotFound) or a
// concurrent transition won (model.ErrConflict).
func (r *ApplicationRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.ApplicationStatus, actor uuid.UUID, reason string) (*model.Application, error) {
	tx, err := r.Pool().Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE applications
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
		RETURNING id, posting_id, candidate_id, status, created_at, updated_at
	`

	app, err := scanApplication(tx.QueryRow(ctx, query, to, id, from))
	if err != nil {
		if base.IsNotFound(err) {
			var exists bool
			if err := r.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM applications WHERE id = $1)`, id).Scan(&exists); err != nil {
				return nil, fmt.Errorf("check application exists: %w", err)
			}
			if !exists {
				return nil, model.ErrNotFound
			}
			return nil, model.ErrConflict
		}
		return nil, fmt.Errorf("update application status: %w", err)
	}

	historyQuery := `
		INSERT INTO application_status_history (application_id, seq, status, actor, reason)
		SELECT $1, coalesce(max(seq), 0) + 1, $2, $3, $4
		FROM application_status_history
		WHERE application_id = $1
	`
	if _, err := tx.Exec(ctx, historyQuery, id, to, actor, reason); err != nil {
		return nil, fmt.Errorf("append application history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	return app, nil
}

// GetByCandidateID returns all applications of one candidate, newest first.
func (r *ApplicationRepository) GetByCandidateID(ctx context.Context, candidateID uuid.UUID) ([]*model.Application, error) {
	query := `
		SELECT id, posting_id, candidate_id, status, created_at, updated_at
		FROM applications
		WHERE candidate_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, candidateID)
}

// GetByPostingID returns all applications for one posting, newest first.
func (r *ApplicationRepository) GetByPostingID(ctx context.Context, postingID uuid.UUID) ([]*model.Application, error) {
	query := `
		SELECT id, posting_id, candidate_id, status, created_at, updated_at
		FROM applications
		WHERE posting_id = $1
		ORDER BY created_at DESC
	`
	return r.list(ctx, query, postingID)
}

func (r *ApplicationRepository) list(ctx context.Context, query string, arg any) ([]*model.Application, error) {
	rows, err := r.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list applications: %w", err)
	}
	defer rows.Close()

	var apps []*model.Application
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		apps = append(apps, app)
	}

	return apps, rows.Err()
}

func scanApplication(row pgx.Row) (*model.Application, error) {
	var app model.Application
	err := row.Scan(
		&app.ID,
		&app.PostingID,
		&app.CandidateID,
		&app.Status,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &app, nil
}
