package repository

import (
	"context"
	"time"

	"github.com/carematch/carematch/internal/domain"
)

type NotificationRepository interface {
	// MarkOpened stamps opened/opened_at on the freelancer's own row.
	// Returns domain.ErrNotificationNotFound when no row matched.
	MarkOpened(ctx context.Context, notificationID, freelancerID string) error

	// ListForFreelancer returns the caller's inbox, newest first.
	ListForFreelancer(ctx context.Context, freelancerID string) ([]*domain.NotificationWithJob, error)

	// PurgeCompletedJobs deletes notification rows whose job completed
	// before the cutoff. Retention housekeeping only — live jobs are
	// never touched.
	PurgeCompletedJobs(ctx context.Context, cutoff time.Time) (int64, error)
}
