package repository

import (
	"context"

	"github.com/carematch/carematch/internal/domain"
)

type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
}

type FreelancerRepository interface {
	// AvailableInCity sources the candidate pool: role = freelancer,
	// exact city match, available-now flag set. A query error must be
	// propagated, never collapsed into an empty pool.
	AvailableInCity(ctx context.Context, city string) ([]*domain.Candidate, error)
}
