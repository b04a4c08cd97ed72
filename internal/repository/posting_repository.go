package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sportlink/opportunity-engine/internal/model"
	"github.com/sportlink/opportunity-engine/internal/repository/base"
)

type PostingRepository struct {
	*base.Repository
}

func NewPostingRepository(pool *pgxpool.Pool) *PostingRepository {
	return &PostingRepository{Repository: base.NewRepository(pool)}
}

const postingColumns = `id, publisher_id, title, sport, skills, min_years, city, country,
		remote_ok, languages, deadline, positions, status, created_at, updated_at`

// Create inserts a new posting.
func (r *PostingRepository) Create(ctx context.Context, p *model.Posting) error {
	query := `
		INSERT INTO postings (id, publisher_id, title, sport, skills, min_years, city, country,
			remote_ok, languages, deadline, positions, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at, updated_at
	`

	err := r.QueryRow(
		ctx, query,
		p.ID, p.PublisherID, p.Title, p.Sport, p.Skills, p.MinYears, p.City, p.Country,
		p.RemoteOK, p.Languages, p.Deadline, p.Positions, p.Status,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create posting: %w", err)
	}

	return nil
}

// GetByID returns a posting or model.ErrNotFound.
func (r *PostingRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Posting, error) {
	query := `SELECT ` + postingColumns + ` FROM postings WHERE id = $1`

	p, err := scanPosting(r.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get posting by id: %w", err)
	}

	return p, nil
}

// ListActive returns all postings currently accepting applications.
func (r *PostingRepository) ListActive(ctx context.Context, now time.Time) ([]*model.Posting, error) {
	query := `
		SELECT ` + postingColumns + `
		FROM postings
		WHERE status = 'active' AND deadline > $1
		ORDER BY created_at DESC
	`

	rows, err := r.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("list active postings: %w", err)
	}
	defer rows.Close()

	var postings []*model.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan posting: %w", err)
		}
		postings = append(postings, p)
	}

	return postings, rows.Err()
}

// UpdateStatus moves a posting between statuses with a compare-and-swap on
// the current status. Zero rows affected means either the posting is gone
// (model.ErrNotFound) or a concurrent writer moved it (model.ErrConflict).
func (r *PostingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.PostingStatus) error {
	query := `
		UPDATE postings
		SET status = $1, updated_at = now()
		WHERE id = $2 AND status = $3
	`

	affected, err := r.ExecAffected(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("update posting status: %w", err)
	}

	if affected == 0 {
		var exists bool
		if err := r.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM postings WHERE id = $1)`, id).Scan(&exists); err != nil {
			return fmt.Errorf("check posting exists: %w", err)
		}
		if !exists {
			return model.ErrNotFound
		}
		return model.ErrConflict
	}

	return nil
}

// CloseExpired closes every active posting whose deadline has passed and
// returns the closed records for logging.
func (r *PostingRepository) CloseExpired(ctx context.Context, now time.Time) ([]*model.Posting, error) {
	query := `
		UPDATE postings
		SET status = 'closed', updated_at = now()
		WHERE status = 'active' AND deadline <= $1
		RETURNING ` + postingColumns

	rows, err := r.Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("close expired postings: %w", err)
	}
	defer rows.Close()

	var closed []*model.Posting
	for rows.Next() {
		p, err := scanPosting(rows)
		if err != nil {
			return nil, fmt.Errorf("scan posting: %w", err)
		}
		closed = append(closed, p)
	}

	return closed, rows.Err()
}

func scanPosting(row pgx.Row) (*model.Posting, error) {
	var p model.Posting
	err := row.Scan(
		&p.ID,
		&p.PublisherID,
		&p.Title,
		&p.Sport,
		&p.Skills,
		&p.MinYears,
		&p.City,
		&p.Country,
		&p.RemoteOK,
		&p.Languages,
		&p.Deadline,
		&p.Positions,
		&p.Status,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
