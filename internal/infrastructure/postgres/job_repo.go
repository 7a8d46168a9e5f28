package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/carematch/carematch/internal/domain"
	"github.com/carematch/carematch/internal/repository"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const jobColumns = `id, client_id, city, children_count, age_group,
	       need_first_aid, need_newborn_care, need_special_needs,
	       budget_min, budget_max, languages, confirm_window_seconds,
	       status, confirm_starts_at, confirm_ends_at,
	       selected_freelancer_id, locked_at, stage, offer_amount,
	       created_at, updated_at`

type JobRepository struct {
	pool *pgxpool.Pool
}

func NewJobRepository(pool *pgxpool.Pool) *JobRepository {
	return &JobRepository{pool: pool}
}

func (r *JobRepository) Create(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	query := `
		INSERT INTO job_requests (
			client_id, city, children_count, age_group,
			need_first_aid, need_newborn_care, need_special_needs,
			budget_min, budget_max, languages,
			confirm_window_seconds, status, stage
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + jobColumns

	row := r.pool.QueryRow(ctx, query,
		job.ClientID,
		job.City,
		job.ChildrenCount,
		job.AgeGroup,
		job.Requirements.FirstAid,
		job.Requirements.NewbornCare,
		job.Requirements.SpecialNeeds,
		job.BudgetMin,
		job.BudgetMax,
		job.Languages,
		job.ConfirmWindowSeconds,
		job.Status,
		job.Stage,
	)
	return scanJob(row)
}

func (r *JobRepository) GetByID(ctx context.Context, jobID string) (*domain.Job, time.Time, error) {
	// NOW() rides along so window comparisons use the database clock,
	// not each API node's own.
	query := `SELECT ` + jobColumns + `, NOW() FROM job_requests WHERE id = $1`

	var dbNow time.Time
	job, err := scanJob(r.pool.QueryRow(ctx, query, jobID), &dbNow)
	if err != nil {
		return nil, time.Time{}, err
	}
	return job, dbNow, nil
}

func (r *JobRepository) ListByClient(ctx context.Context, input repository.ListJobsInput) ([]*domain.Job, error) {
	args := []any{input.ClientID}
	where := []string{"client_id = $1"}

	if input.Status != "" {
		args = append(args, input.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if input.CursorTime != nil {
		args = append(args, *input.CursorTime, input.CursorID)
		where = append(where, fmt.Sprintf("(created_at, id) < ($%d, $%d)", len(args)-1, len(args)))
	}
	args = append(args, input.Limit)

	query := fmt.Sprintf(`
		SELECT %s
		FROM job_requests
		WHERE %s
		ORDER BY created_at DESC, id DESC
		LIMIT $%d`,
		jobColumns, strings.Join(where, " AND "), len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*domain.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, nil
}

// BeginNotify is the ready/notifying → notifying transition: guard the
// status, stamp a fresh window from the DB clock, clear any prior
// selection, and replace the fan-out wholesale. One transaction, so a
// crash mid-sequence leaves no half-reopened window.
func (r *JobRepository) BeginNotify(ctx context.Context, input repository.BeginNotifyInput) (*domain.Job, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin notify tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		UPDATE job_requests
		SET    status                 = 'notifying',
		       confirm_starts_at      = NOW(),
		       confirm_ends_at        = NOW() + make_interval(secs => $3),
		       selected_freelancer_id = NULL,
		       locked_at              = NULL,
		       updated_at             = NOW()
		WHERE id = $1 AND client_id = $2 AND status IN ('ready', 'notifying')
		RETURNING `+jobColumns,
		input.JobID, input.ClientID, int(input.Window.Seconds()))

	job, err := scanJob(row)
	if err != nil {
		if errors.Is(err, domain.ErrJobNotFound) {
			return nil, r.classifyBeginNotify(ctx, input.JobID, input.ClientID)
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM job_candidate_notifications WHERE job_id = $1`, input.JobID); err != nil {
		return nil, fmt.Errorf("purge notifications: %w", err)
	}
	if _, err := tx.Exec(ctx,
		`DELETE FROM job_confirmations WHERE job_id = $1`, input.JobID); err != nil {
		return nil, fmt.Errorf("purge confirmations: %w", err)
	}

	if len(input.CandidateIDs) > 0 {
		// Single statement keeps the fan-out all-or-nothing.
		if _, err := tx.Exec(ctx, `
			INSERT INTO job_candidate_notifications (job_id, freelancer_id, status)
			SELECT $1, unnest($2::text[]), 'pending'`,
			input.JobID, input.CandidateIDs); err != nil {
			return nil, fmt.Errorf("fan out notifications: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit notify tx: %w", err)
	}
	return job, nil
}

// classifyBeginNotify turns a zero-row guard miss into the precise error.
func (r *JobRepository) classifyBeginNotify(ctx context.Context, jobID, clientID string) error {
	job, _, err := r.GetByID(ctx, jobID)
	if err != nil {
		return err // ErrJobNotFound
	}
	// Not-owned is reported as not-found so job existence does not leak.
	if job.ClientID != clientID {
		return domain.ErrJobNotFound
	}
	if err := job.CanRestart(); err != nil {
		return err
	}
	return domain.ErrCannotRestart
}

// SelectFreelancer locks the job to the winner. FOR UPDATE serialises
// concurrent selections on the same row; the conditional update is kept
// as a second line of defence so zero rows affected always means the
// lock was lost, never silently reassigned.
func (r *JobRepository) SelectFreelancer(ctx context.Context, jobID, clientID, freelancerID string) (string, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("select tx: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx,
		`SELECT `+jobColumns+` FROM job_requests WHERE id = $1 AND client_id = $2 FOR UPDATE`,
		jobID, clientID)
	job, err := scanJob(row)
	if err != nil {
		return "", err
	}
	if job.Assigned() {
		return "", domain.ErrJobLocked
	}

	var confirmStatus domain.ConfirmationStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM job_confirmations WHERE job_id = $1 AND freelancer_id = $2`,
		jobID, freelancerID).Scan(&confirmStatus)
	if errors.Is(err, pgx.ErrNoRows) || (err == nil && confirmStatus != domain.ConfirmationAvailable) {
		return "", domain.ErrNotConfirmed
	}
	if err != nil {
		return "", fmt.Errorf("check confirmation: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		UPDATE job_requests
		SET    status                 = 'locked',
		       selected_freelancer_id = $2,
		       locked_at              = NOW(),
		       stage                  = $3,
		       updated_at             = NOW()
		WHERE id = $1 AND status = 'notifying'`,
		jobID, freelancerID, job.NextStage())
	if err != nil {
		return "", fmt.Errorf("lock job: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return "", domain.ErrJobLocked
	}

	// Winner included: the conversation supersedes the notification.
	if _, err := tx.Exec(ctx,
		`DELETE FROM job_candidate_notifications WHERE job_id = $1`, jobID); err != nil {
		return "", fmt.Errorf("clear notifications: %w", err)
	}

	var conversationID string
	err = tx.QueryRow(ctx, `
		INSERT INTO conversations (job_id, client_id, freelancer_id)
		VALUES ($1, $2, $3)
		RETURNING id`,
		jobID, clientID, freelancerID).Scan(&conversationID)
	if err != nil {
		return "", fmt.Errorf("create conversation: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit select tx: %w", err)
	}
	return conversationID, nil
}

// pgx.Row and pgx.Rows both implement this.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanJob avoids repeating the Scan call across queries; extra receives
// any trailing columns (e.g. NOW()).
func scanJob(row rowScanner, extra ...any) (*domain.Job, error) {
	var j domain.Job
	dests := append([]any{
		&j.ID, &j.ClientID, &j.City, &j.ChildrenCount, &j.AgeGroup,
		&j.Requirements.FirstAid, &j.Requirements.NewbornCare, &j.Requirements.SpecialNeeds,
		&j.BudgetMin, &j.BudgetMax, &j.Languages, &j.ConfirmWindowSeconds,
		&j.Status, &j.ConfirmStartsAt, &j.ConfirmEndsAt,
		&j.SelectedFreelancerID, &j.LockedAt, &j.Stage, &j.OfferAmount,
		&j.CreatedAt, &j.UpdatedAt,
	}, extra...)

	if err := row.Scan(dests...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrJobNotFound
		}
		return nil, fmt.Errorf("scan job: %w", err)
	}
	return &j, nil
}
