package usecase

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/carematch/carematch/internal/domain"
	"github.com/carematch/carematch/internal/email"
	"github.com/carematch/carematch/internal/events"
	"github.com/carematch/carematch/internal/match"
	"github.com/carematch/carematch/internal/metrics"
	"github.com/carematch/carematch/internal/repository"
)

type JobUsecase struct {
	jobs          repository.JobRepository
	freelancers   repository.FreelancerRepository
	conversations repository.ConversationRepository
	emails        email.Sender
	events        events.Publisher
	logger        *slog.Logger
	batchLimit    int
}

func NewJobUsecase(
	jobs repository.JobRepository,
	freelancers repository.FreelancerRepository,
	conversations repository.ConversationRepository,
	emails email.Sender,
	publisher events.Publisher,
	logger *slog.Logger,
	batchLimit int,
) *JobUsecase {
	if batchLimit <= 0 {
		batchLimit = match.DefaultBatchLimit
	}
	return &JobUsecase{
		jobs:          jobs,
		freelancers:   freelancers,
		conversations: conversations,
		emails:        emails,
		events:        publisher,
		logger:        logger.With("component", "job_usecase"),
		batchLimit:    batchLimit,
	}
}

type CreateJobInput struct {
	ClientID             string
	City                 string
	ChildrenCount        int
	AgeGroup             string
	Requirements         domain.Requirements
	BudgetMin            *float64
	BudgetMax            *float64
	Languages            []string
	ConfirmWindowSeconds int
}

// NotifyResult is what both job creation and restart hand back: the job
// with its freshly opened window and the fan-out size.
type NotifyResult struct {
	Job               *domain.Job
	NotificationsSent int
}

// CreateJob persists the request and synchronously runs
// sourcing → filter → fan-out → window open before returning.
func (u *JobUsecase) CreateJob(ctx context.Context, input CreateJobInput) (NotifyResult, error) {
	if input.ConfirmWindowSeconds == 0 {
		input.ConfirmWindowSeconds = domain.DefaultConfirmWindowSeconds
	}

	job := &domain.Job{
		ClientID:             input.ClientID,
		City:                 input.City,
		ChildrenCount:        input.ChildrenCount,
		AgeGroup:             input.AgeGroup,
		Requirements:         input.Requirements,
		BudgetMin:            input.BudgetMin,
		BudgetMax:            input.BudgetMax,
		Languages:            input.Languages,
		ConfirmWindowSeconds: input.ConfirmWindowSeconds,
		Status:               domain.JobStatusReady,
		Stage:                domain.StageIntro,
	}

	created, err := u.jobs.Create(ctx, job)
	if err != nil {
		return NotifyResult{}, fmt.Errorf("create job: %w", err)
	}

	return u.notify(ctx, created)
}

// Restart discards prior notifications and confirmations and re-enters
// notifying with a fresh window. The only recovery path for a window
// that closed without a satisfactory lock; never automatic.
func (u *JobUsecase) Restart(ctx context.Context, jobID, clientID string) (NotifyResult, error) {
	job, _, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return NotifyResult{}, err
	}
	if job.ClientID != clientID {
		return NotifyResult{}, domain.ErrJobNotFound
	}
	if err := job.CanRestart(); err != nil {
		return NotifyResult{}, err
	}

	result, err := u.notify(ctx, job)
	if err != nil {
		return NotifyResult{}, err
	}
	metrics.RestartsTotal.Inc()
	return result, nil
}

func (u *JobUsecase) notify(ctx context.Context, job *domain.Job) (NotifyResult, error) {
	// A sourcing error is a hard failure of the whole operation — it must
	// never be collapsed into "zero candidates".
	pool, err := u.freelancers.AvailableInCity(ctx, job.City)
	if err != nil {
		return NotifyResult{}, fmt.Errorf("source candidates: %w", err)
	}

	candidateIDs := match.Filter(job, pool, u.batchLimit)

	updated, err := u.jobs.BeginNotify(ctx, repository.BeginNotifyInput{
		JobID:        job.ID,
		ClientID:     job.ClientID,
		Window:       time.Duration(job.ConfirmWindowSeconds) * time.Second,
		CandidateIDs: candidateIDs,
	})
	if err != nil {
		return NotifyResult{}, err
	}

	metrics.CandidatesEligible.Observe(float64(len(candidateIDs)))
	metrics.NotificationsFannedOut.Add(float64(len(candidateIDs)))

	u.sendOpportunityEmails(ctx, updated, pool, candidateIDs)
	u.events.Publish(ctx, events.Event{
		Type:       events.TypeJobNotified,
		JobID:      updated.ID,
		Candidates: len(candidateIDs),
	})

	return NotifyResult{Job: updated, NotificationsSent: len(candidateIDs)}, nil
}

// sendOpportunityEmails is best-effort: a bounced email never fails the
// fan-out.
func (u *JobUsecase) sendOpportunityEmails(ctx context.Context, job *domain.Job, pool []*domain.Candidate, ids []string) {
	byID := make(map[string]*domain.Candidate, len(pool))
	for _, c := range pool {
		byID[c.ID] = c
	}

	subject, body := email.Opportunity(job.City, job.ChildrenCount)
	for _, id := range ids {
		c := byID[id]
		if c == nil || c.Email == "" {
			continue
		}
		if err := u.emails.Send(ctx, c.Email, subject, body); err != nil {
			u.logger.WarnContext(ctx, "opportunity email", "freelancer_id", id, "error", err)
		}
	}
}

// Select locks the job to one confirmed freelancer and opens their
// conversation. Returns the conversation ID.
func (u *JobUsecase) Select(ctx context.Context, jobID, clientID, freelancerID string) (string, error) {
	conversationID, err := u.jobs.SelectFreelancer(ctx, jobID, clientID, freelancerID)
	if err != nil {
		return "", err
	}

	metrics.JobsLockedTotal.Inc()
	u.events.Publish(ctx, events.Event{
		Type:           events.TypeJobLocked,
		JobID:          jobID,
		FreelancerID:   freelancerID,
		ConversationID: conversationID,
	})
	return conversationID, nil
}

// GetJob is visible to the owning client and, once locked, the selected
// freelancer.
func (u *JobUsecase) GetJob(ctx context.Context, jobID, userID string) (*domain.Job, error) {
	job, _, err := u.jobs.GetByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ClientID == userID {
		return job, nil
	}
	if job.SelectedFreelancerID != nil && *job.SelectedFreelancerID == userID {
		return job, nil
	}
	return nil, domain.ErrForbidden
}

func (u *JobUsecase) GetConversation(ctx context.Context, id, userID string) (*domain.Conversation, error) {
	return u.conversations.GetByID(ctx, id, userID)
}

type ListJobsInput struct {
	ClientID string
	Status   string
	Cursor   string
	Limit    int
}

type ListJobsResult struct {
	Jobs       []*domain.Job
	NextCursor *string
}

type jobCursor struct {
	CreatedAt time.Time `json:"c"`
	ID        string    `json:"i"`
}

func decodeJobCursor(s string) (*time.Time, string, error) {
	b, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, "", fmt.Errorf("decode cursor: %w", err)
	}
	var c jobCursor
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, "", fmt.Errorf("unmarshal cursor: %w", err)
	}
	return &c.CreatedAt, c.ID, nil
}

func encodeJobCursor(createdAt time.Time, id string) string {
	b, _ := json.Marshal(jobCursor{CreatedAt: createdAt, ID: id})
	return base64.RawURLEncoding.EncodeToString(b)
}

func (u *JobUsecase) ListJobs(ctx context.Context, input ListJobsInput) (ListJobsResult, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	repoInput := repository.ListJobsInput{
		ClientID: input.ClientID,
		Limit:    limit + 1,
	}

	if input.Status != "" {
		switch domain.JobStatus(input.Status) {
		case domain.JobStatusReady, domain.JobStatusNotifying, domain.JobStatusLocked,
			domain.JobStatusActive, domain.JobStatusCompleted:
			repoInput.Status = domain.JobStatus(input.Status)
		default:
			return ListJobsResult{}, domain.ErrInvalidStatus
		}
	}

	if input.Cursor != "" {
		cursorTime, cursorID, err := decodeJobCursor(input.Cursor)
		if err != nil {
			return ListJobsResult{}, domain.ErrInvalidCursor
		}
		repoInput.CursorTime = cursorTime
		repoInput.CursorID = cursorID
	}

	jobs, err := u.jobs.ListByClient(ctx, repoInput)
	if err != nil {
		return ListJobsResult{}, fmt.Errorf("list jobs: %w", err)
	}

	var nextCursor *string
	if len(jobs) == limit+1 {
		jobs = jobs[:limit]
		// Cursor points at the last row returned; the next page resumes
		// strictly after it.
		last := jobs[limit-1]
		s := encodeJobCursor(last.CreatedAt, last.ID)
		nextCursor = &s
	}

	return ListJobsResult{Jobs: jobs, NextCursor: nextCursor}, nil
}
