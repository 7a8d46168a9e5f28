package repository

import (
	"context"
	"time"

	"github.com/carematch/carematch/internal/domain"
)

type ListJobsInput struct {
	ClientID   string
	Status     domain.JobStatus // empty = all statuses
	CursorTime *time.Time       // nil = first page
	CursorID   string           // used only when CursorTime is non-nil
	Limit      int
}

// BeginNotifyInput drives the sourcing→fan-out→window-open transition.
// It is shared by job creation and restart: both purge prior
// notifications/confirmations and reinsert, never append.
type BeginNotifyInput struct {
	JobID        string
	ClientID     string
	Window       time.Duration
	CandidateIDs []string
}

// UseCases depend on interfaces, not concrete implementations, so the DB
// can be swapped and tests can pass fakes.
type JobRepository interface {
	Create(ctx context.Context, job *domain.Job) (*domain.Job, error)

	// GetByID also returns the database clock read in the same query, so
	// every window comparison uses one authoritative time source.
	GetByID(ctx context.Context, jobID string) (*domain.Job, time.Time, error)

	ListByClient(ctx context.Context, input ListJobsInput) ([]*domain.Job, error)

	// BeginNotify atomically guards the status, stamps a fresh window,
	// clears any prior selection, deletes old notifications and
	// confirmations, and fans out the new batch — all in one tx.
	// Returns domain.ErrJobNotFound (missing or not owned) or
	// domain.ErrCannotRestart when the guard fails.
	BeginNotify(ctx context.Context, input BeginNotifyInput) (*domain.Job, error)

	// SelectFreelancer atomically locks the job to the winner, stamps the
	// negotiation stage, deletes all notification rows, and creates the
	// conversation. Returns the conversation ID. A conditional update
	// distinguishes a lost lock race (domain.ErrJobLocked) from
	// domain.ErrJobNotFound and domain.ErrNotConfirmed.
	SelectFreelancer(ctx context.Context, jobID, clientID, freelancerID string) (string, error)
}
