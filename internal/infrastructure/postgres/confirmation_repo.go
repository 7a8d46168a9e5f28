package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/carematch/carematch/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConfirmationRepository struct {
	pool *pgxpool.Pool
}

func NewConfirmationRepository(pool *pgxpool.Pool) *ConfirmationRepository {
	return &ConfirmationRepository{pool: pool}
}

// Confirm upserts in a single statement guarded against the database
// clock: the INSERT sources its row from job_requests filtered on an
// open window, so a request arriving one tick after expiry writes
// nothing and gets a classified rejection.
func (r *ConfirmationRepository) Confirm(ctx context.Context, jobID, freelancerID string) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO job_confirmations (job_id, freelancer_id, status, is_open_job_accepted, note)
		SELECT j.id, $2, 'available', FALSE, NULL
		FROM job_requests j
		WHERE j.id = $1 AND j.status = 'notifying' AND j.confirm_ends_at >= NOW()
		ON CONFLICT (job_id, freelancer_id)
		DO UPDATE SET status = 'available', is_open_job_accepted = FALSE, note = NULL, updated_at = NOW()`,
		jobID, freelancerID)
	if err != nil {
		return fmt.Errorf("confirm: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classify(ctx, jobID, func(j *domain.Job, now time.Time) error {
			return j.CanConfirm(now)
		}, domain.ErrWindowClosed)
	}
	return nil
}

// AcceptOpenJob is the sole path into the candidate pool after expiry.
// A prior declined row is overwritten back to available: the client
// keeps the final gate at Selection, so re-entry is harmless.
func (r *ConfirmationRepository) AcceptOpenJob(ctx context.Context, jobID, freelancerID, note string) error {
	tag, err := r.pool.Exec(ctx, `
		INSERT INTO job_confirmations (job_id, freelancer_id, status, is_open_job_accepted, note)
		SELECT j.id, $2, 'available', TRUE, $3
		FROM job_requests j
		WHERE j.id = $1 AND j.status = 'notifying' AND j.confirm_ends_at < NOW()
		ON CONFLICT (job_id, freelancer_id)
		DO UPDATE SET status = 'available', is_open_job_accepted = TRUE, note = EXCLUDED.note, updated_at = NOW()`,
		jobID, freelancerID, note)
	if err != nil {
		return fmt.Errorf("accept open job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return r.classify(ctx, jobID, func(j *domain.Job, now time.Time) error {
			return j.CanAcceptOpenJob(now)
		}, domain.ErrWindowOpen)
	}
	return nil
}

// Decline flips available → declined. Update-where-match-none is not
// distinguished from update-one: declining a freelancer with no
// confirmation succeeds as a no-op.
func (r *ConfirmationRepository) Decline(ctx context.Context, jobID, freelancerID string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE job_confirmations
		SET    status = 'declined', updated_at = NOW()
		WHERE  job_id = $1 AND freelancer_id = $2 AND status = 'available'`,
		jobID, freelancerID)
	if err != nil {
		return fmt.Errorf("decline: %w", err)
	}
	return nil
}

func (r *ConfirmationRepository) ListConfirmed(ctx context.Context, jobID string) ([]*domain.ConfirmedFreelancer, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.freelancer_id, p.full_name, f.city, f.rate_min, f.rate_max,
		       f.languages, c.note, c.is_open_job_accepted, c.updated_at
		FROM job_confirmations c
		JOIN profiles p            ON p.id = c.freelancer_id
		JOIN freelancer_profiles f ON f.profile_id = c.freelancer_id
		WHERE c.job_id = $1 AND c.status = 'available'
		ORDER BY c.updated_at ASC`,
		jobID)
	if err != nil {
		return nil, fmt.Errorf("list confirmed: %w", err)
	}
	defer rows.Close()

	var confirmed []*domain.ConfirmedFreelancer
	for rows.Next() {
		var cf domain.ConfirmedFreelancer
		if err := rows.Scan(
			&cf.FreelancerID, &cf.FullName, &cf.City, &cf.RateMin, &cf.RateMax,
			&cf.Languages, &cf.Note, &cf.IsOpenJobAccepted, &cf.ConfirmedAt,
		); err != nil {
			return nil, fmt.Errorf("scan confirmed freelancer: %w", err)
		}
		confirmed = append(confirmed, &cf)
	}
	return confirmed, nil
}

func (r *ConfirmationRepository) PurgeCompletedJobs(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM job_confirmations c
		USING job_requests j
		WHERE c.job_id = j.id AND j.status = 'completed' AND j.updated_at < $1`,
		cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge confirmations: %w", err)
	}
	return tag.RowsAffected(), nil
}

// classify re-reads the job with the DB clock to turn a guarded write
// that matched nothing into the precise domain error.
func (r *ConfirmationRepository) classify(ctx context.Context, jobID string, check func(*domain.Job, time.Time) error, fallback error) error {
	var j domain.Job
	var now time.Time
	err := r.pool.QueryRow(ctx,
		`SELECT status, confirm_ends_at, NOW() FROM job_requests WHERE id = $1`,
		jobID).Scan(&j.Status, &j.ConfirmEndsAt, &now)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrJobNotFound
	}
	if err != nil {
		return fmt.Errorf("classify confirmation failure: %w", err)
	}
	if cerr := check(&j, now); cerr != nil {
		return cerr
	}
	// The guard failed at write time; the state must have moved since.
	return fallback
}
