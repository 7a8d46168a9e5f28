package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/carematch/carematch/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

// MarkOpened has no state-machine effect; it only records that the
// freelancer saw the opportunity.
func (r *NotificationRepository) MarkOpened(ctx context.Context, notificationID, freelancerID string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE job_candidate_notifications
		SET    status = 'opened', opened_at = COALESCE(opened_at, NOW())
		WHERE  id = $1 AND freelancer_id = $2`,
		notificationID, freelancerID)
	if err != nil {
		return fmt.Errorf("mark notification opened: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) ListForFreelancer(ctx context.Context, freelancerID string) ([]*domain.NotificationWithJob, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT n.id, n.job_id, n.freelancer_id, n.status, n.opened_at, n.created_at,
		       j.city, j.children_count, j.age_group, j.confirm_ends_at
		FROM job_candidate_notifications n
		JOIN job_requests j ON j.id = n.job_id
		WHERE n.freelancer_id = $1
		ORDER BY n.created_at DESC`,
		freelancerID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var items []*domain.NotificationWithJob
	for rows.Next() {
		var n domain.NotificationWithJob
		if err := rows.Scan(
			&n.ID, &n.JobID, &n.FreelancerID, &n.Status, &n.OpenedAt, &n.CreatedAt,
			&n.JobCity, &n.ChildrenCount, &n.AgeGroup, &n.JobConfirmEndsAt,
		); err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, &n)
	}
	return items, nil
}

func (r *NotificationRepository) PurgeCompletedJobs(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM job_candidate_notifications n
		USING job_requests j
		WHERE n.job_id = j.id AND j.status = 'completed' AND j.updated_at < $1`,
		cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge notifications: %w", err)
	}
	return tag.RowsAffected(), nil
}
