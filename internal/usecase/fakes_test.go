package usecase_test

import (
	"context"
	"log/slog"
	"time"

	"github.com/carematch/carematch/internal/domain"
	"github.com/carematch/carematch/internal/events"
	"github.com/carematch/carematch/internal/repository"
)

// ---- repository fakes ----

type fakeJobRepo struct {
	create           func(ctx context.Context, job *domain.Job) (*domain.Job, error)
	getByID          func(ctx context.Context, jobID string) (*domain.Job, time.Time, error)
	listByClient     func(ctx context.Context, input repository.ListJobsInput) ([]*domain.Job, error)
	beginNotify      func(ctx context.Context, input repository.BeginNotifyInput) (*domain.Job, error)
	selectFreelancer func(ctx context.Context, jobID, clientID, freelancerID string) (string, error)
}

func (r *fakeJobRepo) Create(ctx context.Context, job *domain.Job) (*domain.Job, error) {
	return r.create(ctx, job)
}

func (r *fakeJobRepo) GetByID(ctx context.Context, jobID string) (*domain.Job, time.Time, error) {
	return r.getByID(ctx, jobID)
}

func (r *fakeJobRepo) ListByClient(ctx context.Context, input repository.ListJobsInput) ([]*domain.Job, error) {
	return r.listByClient(ctx, input)
}

func (r *fakeJobRepo) BeginNotify(ctx context.Context, input repository.BeginNotifyInput) (*domain.Job, error) {
	return r.beginNotify(ctx, input)
}

func (r *fakeJobRepo) SelectFreelancer(ctx context.Context, jobID, clientID, freelancerID string) (string, error) {
	return r.selectFreelancer(ctx, jobID, clientID, freelancerID)
}

type fakeFreelancerRepo struct {
	availableInCity func(ctx context.Context, city string) ([]*domain.Candidate, error)
}

func (r *fakeFreelancerRepo) AvailableInCity(ctx context.Context, city string) ([]*domain.Candidate, error) {
	return r.availableInCity(ctx, city)
}

type fakeConfirmationRepo struct {
	confirm       func(ctx context.Context, jobID, freelancerID string) error
	acceptOpenJob func(ctx context.Context, jobID, freelancerID, note string) error
	decline       func(ctx context.Context, jobID, freelancerID string) error
	listConfirmed func(ctx context.Context, jobID string) ([]*domain.ConfirmedFreelancer, error)
}

func (r *fakeConfirmationRepo) Confirm(ctx context.Context, jobID, freelancerID string) error {
	return r.confirm(ctx, jobID, freelancerID)
}

func (r *fakeConfirmationRepo) AcceptOpenJob(ctx context.Context, jobID, freelancerID, note string) error {
	return r.acceptOpenJob(ctx, jobID, freelancerID, note)
}

func (r *fakeConfirmationRepo) Decline(ctx context.Context, jobID, freelancerID string) error {
	return r.decline(ctx, jobID, freelancerID)
}

func (r *fakeConfirmationRepo) ListConfirmed(ctx context.Context, jobID string) ([]*domain.ConfirmedFreelancer, error) {
	return r.listConfirmed(ctx, jobID)
}

func (r *fakeConfirmationRepo) PurgeCompletedJobs(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fakeNotificationRepo struct {
	markOpened        func(ctx context.Context, notificationID, freelancerID string) error
	listForFreelancer func(ctx context.Context, freelancerID string) ([]*domain.NotificationWithJob, error)
}

func (r *fakeNotificationRepo) MarkOpened(ctx context.Context, notificationID, freelancerID string) error {
	return r.markOpened(ctx, notificationID, freelancerID)
}

func (r *fakeNotificationRepo) ListForFreelancer(ctx context.Context, freelancerID string) ([]*domain.NotificationWithJob, error) {
	return r.listForFreelancer(ctx, freelancerID)
}

func (r *fakeNotificationRepo) PurgeCompletedJobs(_ context.Context, _ time.Time) (int64, error) {
	return 0, nil
}

type fakeConversationRepo struct {
	getByID func(ctx context.Context, id, userID string) (*domain.Conversation, error)
}

func (r *fakeConversationRepo) GetByID(ctx context.Context, id, userID string) (*domain.Conversation, error) {
	return r.getByID(ctx, id, userID)
}

// ---- collaborator fakes ----

type fakeSender struct {
	send func(ctx context.Context, to, subject, body string) error
}

func (s *fakeSender) Send(ctx context.Context, to, subject, body string) error {
	if s.send == nil {
		return nil
	}
	return s.send(ctx, to, subject, body)
}

type capturingPublisher struct {
	published []events.Event
}

func (p *capturingPublisher) Publish(_ context.Context, e events.Event) {
	p.published = append(p.published, e)
}

func testLogger() *slog.Logger { return slog.Default() }
