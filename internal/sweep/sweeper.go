// Package sweep purges notification and confirmation rows left behind by
// long-completed jobs. It is storage hygiene only: live jobs and their
// windows are never touched.
package sweep

import (
	"context"
	"log/slog"
	"time"

	"github.com/carematch/carematch/internal/metrics"
	"github.com/carematch/carematch/internal/repository"
)

type Sweeper struct {
	notifications repository.NotificationRepository
	confirmations repository.ConfirmationRepository
	logger        *slog.Logger
	retention     time.Duration
}

func NewSweeper(
	notifications repository.NotificationRepository,
	confirmations repository.ConfirmationRepository,
	logger *slog.Logger,
	retention time.Duration,
) *Sweeper {
	return &Sweeper{
		notifications: notifications,
		confirmations: confirmations,
		logger:        logger.With("component", "sweeper"),
		retention:     retention,
	}
}

// Run performs one sweep pass. Each table is swept independently so a
// failure in one does not block the other.
func (s *Sweeper) Run(ctx context.Context) {
	cutoff := time.Now().Add(-s.retention)

	if n, err := s.notifications.PurgeCompletedJobs(ctx, cutoff); err != nil {
		s.logger.ErrorContext(ctx, "purge notifications", "error", err)
	} else {
		metrics.SweptRowsTotal.WithLabelValues("job_candidate_notifications").Add(float64(n))
		s.logger.InfoContext(ctx, "purged notifications", "rows", n, "cutoff", cutoff)
	}

	if n, err := s.confirmations.PurgeCompletedJobs(ctx, cutoff); err != nil {
		s.logger.ErrorContext(ctx, "purge confirmations", "error", err)
	} else {
		metrics.SweptRowsTotal.WithLabelValues("job_confirmations").Add(float64(n))
		s.logger.InfoContext(ctx, "purged confirmations", "rows", n, "cutoff", cutoff)
	}
}
