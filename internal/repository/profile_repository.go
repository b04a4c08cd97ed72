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

type ProfileRepository struct {
	*base.Repository
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{Repository: base.NewRepository(pool)}
}

// Upsert creates or replaces a candidate's profile.
func (r *ProfileRepository) Upsert(ctx context.Context, p *model.CandidateProfile) error {
	query := `
		INSERT INTO candidate_profiles (candidate_id, skills, years, city, country, remote_ok, languages)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (candidate_id) DO UPDATE SET
			skills = EXCLUDED.skills,
			years = EXCLUDED.years,
			city = EXCLUDED.city,
			country = EXCLUDED.country,
			remote_ok = EXCLUDED.remote_ok,
			languages = EXCLUDED.languages,
			updated_at = now()
		RETURNING updated_at
	`

	err := r.QueryRow(
		ctx, query,
		p.CandidateID, p.Skills, p.Years, p.City, p.Country, p.RemoteOK, p.Languages,
	).Scan(&p.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert candidate profile: %w", err)
	}

	return nil
}

// GetByCandidateID returns a profile or model.ErrNotFound.
func (r *ProfileRepository) GetByCandidateID(ctx context.Context, candidateID uuid.UUID) (*model.CandidateProfile, error) {
	query := `
		SELECT candidate_id, skills, years, city, country, remote_ok, languages, updated_at
		FROM candidate_profiles
		WHERE candidate_id = $1
	`

	p, err := scanProfile(r.QueryRow(ctx, query, candidateID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("get candidate profile: %w", err)
	}

	return p, nil
}

// ListAll returns every candidate profile, for batch rescoring against a
// freshly published posting.
func (r *ProfileRepository) ListAll(ctx context.Context) ([]*model.CandidateProfile, error) {
	query := `
		SELECT candidate_id, skills, years, city, country, remote_ok, languages, updated_at
		FROM candidate_profiles
		ORDER BY candidate_id
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list candidate profiles: %w", err)
	}
	defer rows.Close()

	var profiles []*model.CandidateProfile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate profile: %w", err)
		}
		profiles = append(profiles, p)
	}

	return profiles, rows.Err()
}

func scanProfile(row pgx.Row) (*model.CandidateProfile, error) {
	var p model.CandidateProfile
	err := row.Scan(
		&p.CandidateID,
		&p.Skills,
		&p.Years,
		&p.City,
		&p.Country,
		&p.RemoteOK,
		&p.Languages,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}
