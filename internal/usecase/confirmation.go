package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/carematch/carematch/internal/domain"
	"github.com/carematch/carematch/internal/events"
	"github.com/carematch/carematch/internal/metrics"
	"github.com/carematch/carematch/internal/repository"
)

type ConfirmationUsecase struct {
	confirmations repository.ConfirmationRepository
	notifications repository.NotificationRepository
	jobs          repository.JobRepository
	events        events.Publisher
	logger        *slog.Logger
}

func NewConfirmationUsecase(
	confirmations repository.ConfirmationRepository,
	notifications repository.NotificationRepository,
	jobs repository.JobRepository,
	publisher events.Publisher,
	logger *slog.Logger,
) *ConfirmationUsecase {
	return &ConfirmationUsecase{
		confirmations: confirmations,
		notifications: notifications,
		jobs:          jobs,
		events:        publisher,
		logger:        logger.With("component", "confirmation_usecase"),
	}
}

// Confirm records in-window availability. Many freelancers may confirm
// concurrently; mutual exclusion happens only at Selection.
func (u *ConfirmationUsecase) Confirm(ctx context.Context, jobID, freelancerID string) error {
	if err := u.confirmations.Confirm(ctx, jobID, freelancerID); err != nil {
		return err
	}

	metrics.ConfirmationsTotal.WithLabelValues("confirm").Inc()
	u.events.Publish(ctx, events.Event{
		Type:         events.TypeJobConfirmed,
		JobID:        jobID,
		FreelancerID: freelancerID,
	})
	return nil
}

// AcceptOpenJob is the post-window path; the note is mandatory.
func (u *ConfirmationUsecase) AcceptOpenJob(ctx context.Context, jobID, freelancerID, note string) error {
	note = strings.TrimSpace(note)
	// Characters, not bytes: a Hebrew note is multibyte in UTF-8.
	if note == "" || utf8.RuneCountInString(note) > domain.MaxOpenJobNoteLen {
		return domain.ErrNoteRequired
	}

	if err := u.confirmations.AcceptOpenJob(ctx, jobID, freelancerID, note); err != nil {
		return err
	}

	metrics.ConfirmationsTotal.WithLabelValues("open_job").Inc()
	u.events.Publish(ctx, events.Event{
		Type:         events.TypeJobConfirmed,
		JobID:        jobID,
		FreelancerID: freelancerID,
	})
	return nil
}

// Decline is owner-only and succeeds even when it matches no
// confirmation row.
func (u *ConfirmationUsecase) Decline(ctx context.Context, jobID, clientID, freelancerID string) error {
	job, _, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return err
	}
	if job.ClientID != clientID {
		return domain.ErrJobNotFound
	}
	if err := job.CanDecline(); err != nil {
		return err
	}

	if err := u.confirmations.Decline(ctx, jobID, freelancerID); err != nil {
		return err
	}
	metrics.ConfirmationsTotal.WithLabelValues("decline").Inc()
	return nil
}

type ConfirmedList struct {
	Freelancers   []*domain.ConfirmedFreelancer
	ConfirmEndsAt *time.Time
}

// ListConfirmed is the client's review surface, visible regardless of
// window state.
func (u *ConfirmationUsecase) ListConfirmed(ctx context.Context, jobID, clientID string) (ConfirmedList, error) {
	job, _, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return ConfirmedList{}, err
	}
	if job.ClientID != clientID {
		return ConfirmedList{}, domain.ErrJobNotFound
	}

	confirmed, err := u.confirmations.ListConfirmed(ctx, jobID)
	if err != nil {
		return ConfirmedList{}, fmt.Errorf("list confirmed: %w", err)
	}
	return ConfirmedList{Freelancers: confirmed, ConfirmEndsAt: job.ConfirmEndsAt}, nil
}

func (u *ConfirmationUsecase) OpenNotification(ctx context.Context, notificationID, freelancerID string) error {
	return u.notifications.MarkOpened(ctx, notificationID, freelancerID)
}

func (u *ConfirmationUsecase) ListNotifications(ctx context.Context, freelancerID string) ([]*domain.NotificationWithJob, error) {
	items, err := u.notifications.ListForFreelancer(ctx, freelancerID)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	return items, nil
}
