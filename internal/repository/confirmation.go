package repository

import (
	"context"
	"time"

	"github.com/carematch/carematch/internal/domain"
)

type ConfirmationRepository interface {
	// Confirm upserts an {available} row for (job, freelancer). The write
	// is guarded in SQL against the database clock; on a miss the repo
	// classifies it into domain.ErrJobNotFound, domain.ErrJobLocked or
	// domain.ErrWindowClosed.
	Confirm(ctx context.Context, jobID, freelancerID string) error

	// AcceptOpenJob is the post-window path: upserts {available, note,
	// is_open_job_accepted}. Legal only once the window has closed and
	// the job is not locked. A prior declined row is overwritten.
	AcceptOpenJob(ctx context.Context, jobID, freelancerID, note string) error

	// Decline flips an available row to declined. Matching zero rows is
	// not an error: declining a freelancer who never confirmed is a
	// deliberate no-op success.
	Decline(ctx context.Context, jobID, freelancerID string) error

	// ListConfirmed returns all available confirmations for the job,
	// enriched with freelancer profile data.
	ListConfirmed(ctx context.Context, jobID string) ([]*domain.ConfirmedFreelancer, error)

	// PurgeCompletedJobs mirrors NotificationRepository.PurgeCompletedJobs.
	PurgeCompletedJobs(ctx context.Context, cutoff time.Time) (int64, error)
}
