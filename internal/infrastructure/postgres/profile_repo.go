package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/carematch/carematch/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ProfileRepository struct {
	pool *pgxpool.Pool
}

func NewProfileRepository(pool *pgxpool.Pool) *ProfileRepository {
	return &ProfileRepository{pool: pool}
}

func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	var p domain.Profile
	err := r.pool.QueryRow(ctx,
		`SELECT id, role, full_name, email, city, created_at FROM profiles WHERE id = $1`,
		id).Scan(&p.ID, &p.Role, &p.FullName, &p.Email, &p.City, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return &p, nil
}

type FreelancerRepository struct {
	pool *pgxpool.Pool
}

func NewFreelancerRepository(pool *pgxpool.Pool) *FreelancerRepository {
	return &FreelancerRepository{pool: pool}
}

// AvailableInCity reads a snapshot of the candidate pool. No lock is
// held: a freelancer flipping available_now after sourcing does not
// retract an already-sent notification.
func (r *FreelancerRepository) AvailableInCity(ctx context.Context, city string) ([]*domain.Candidate, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.full_name, p.email, f.city, f.available_now,
		       f.max_children, f.has_first_aid, f.has_newborn_care, f.has_special_needs,
		       f.rate_min, f.rate_max, f.languages
		FROM freelancer_profiles f
		JOIN profiles p ON p.id = f.profile_id
		WHERE p.role = 'freelancer' AND f.city = $1 AND f.available_now`,
		city)
	if err != nil {
		return nil, fmt.Errorf("source candidates: %w", err)
	}
	defer rows.Close()

	var pool []*domain.Candidate
	for rows.Next() {
		var c domain.Candidate
		if err := rows.Scan(
			&c.ID, &c.FullName, &c.Email, &c.City, &c.AvailableNow,
			&c.MaxChildren, &c.HasFirstAid, &c.HasNewbornCare, &c.HasSpecialNeeds,
			&c.RateMin, &c.RateMax, &c.Languages,
		); err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		pool = append(pool, &c)
	}
	return pool, nil
}
