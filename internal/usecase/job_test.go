package usecase_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/carematch/carematch/internal/domain"
	"github.com/carematch/carematch/internal/events"
	"github.com/carematch/carematch/internal/repository"
	"github.com/carematch/carematch/internal/usecase"
)

func newJobUsecase(jobs *fakeJobRepo, freelancers *fakeFreelancerRepo, pub *capturingPublisher) *usecase.JobUsecase {
	return usecase.NewJobUsecase(jobs, freelancers, &fakeConversationRepo{}, &fakeSender{}, pub, testLogger(), 30)
}

func poolOf(ids ...string) []*domain.Candidate {
	var pool []*domain.Candidate
	for _, id := range ids {
		pool = append(pool, &domain.Candidate{
			ID:           id,
			Email:        id + "@example.com",
			City:         "Tel Aviv",
			AvailableNow: true,
			MaxChildren:  3,
			HasFirstAid:  true,
		})
	}
	return pool
}

func TestCreateJob_FansOutToEligibleCandidates(t *testing.T) {
	var captured repository.BeginNotifyInput

	jobs := &fakeJobRepo{
		create: func(_ context.Context, j *domain.Job) (*domain.Job, error) {
			j.ID = "job-1"
			return j, nil
		},
		beginNotify: func(_ context.Context, input repository.BeginNotifyInput) (*domain.Job, error) {
			captured = input
			ends := time.Now().Add(90 * time.Second)
			return &domain.Job{ID: input.JobID, Status: domain.JobStatusNotifying, ConfirmEndsAt: &ends}, nil
		},
	}
	freelancers := &fakeFreelancerRepo{
		availableInCity: func(_ context.Context, city string) ([]*domain.Candidate, error) {
			if city != "Tel Aviv" {
				t.Errorf("sourced city %q, want Tel Aviv", city)
			}
			return poolOf("f2", "f1"), nil
		},
	}
	pub := &capturingPublisher{}

	result, err := newJobUsecase(jobs, freelancers, pub).CreateJob(context.Background(), usecase.CreateJobInput{
		ClientID:      "client-1",
		City:          "Tel Aviv",
		ChildrenCount: 2,
		Requirements:  domain.Requirements{FirstAid: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.NotificationsSent != 2 {
		t.Errorf("NotificationsSent = %d, want 2", result.NotificationsSent)
	}
	if want := []string{"f1", "f2"}; !reflect.DeepEqual(captured.CandidateIDs, want) {
		t.Errorf("fan-out IDs = %v, want sorted %v", captured.CandidateIDs, want)
	}
	if captured.Window != 90*time.Second {
		t.Errorf("window = %v, want default 90s", captured.Window)
	}
	if len(pub.published) != 1 || pub.published[0].Type != events.TypeJobNotified {
		t.Errorf("published = %+v, want one %s event", pub.published, events.TypeJobNotified)
	}
}

func TestCreateJob_SourcingErrorIsHardFailure(t *testing.T) {
	sourceErr := errors.New("pool query failed")

	jobs := &fakeJobRepo{
		create: func(_ context.Context, j *domain.Job) (*domain.Job, error) {
			j.ID = "job-1"
			return j, nil
		},
		beginNotify: func(_ context.Context, _ repository.BeginNotifyInput) (*domain.Job, error) {
			t.Fatal("fan-out must not run when sourcing fails")
			return nil, nil
		},
	}
	freelancers := &fakeFreelancerRepo{
		availableInCity: func(_ context.Context, _ string) ([]*domain.Candidate, error) {
			return nil, sourceErr
		},
	}

	_, err := newJobUsecase(jobs, freelancers, &capturingPublisher{}).CreateJob(context.Background(), usecase.CreateJobInput{
		ClientID: "client-1", City: "Tel Aviv", ChildrenCount: 1,
	})
	if !errors.Is(err, sourceErr) {
		t.Errorf("error = %v, want wrapped sourcing error", err)
	}
}

func TestCreateJob_EmailFailureDoesNotFailFanOut(t *testing.T) {
	jobs := &fakeJobRepo{
		create: func(_ context.Context, j *domain.Job) (*domain.Job, error) {
			j.ID = "job-1"
			return j, nil
		},
		beginNotify: func(_ context.Context, input repository.BeginNotifyInput) (*domain.Job, error) {
			return &domain.Job{ID: input.JobID, Status: domain.JobStatusNotifying}, nil
		},
	}
	freelancers := &fakeFreelancerRepo{
		availableInCity: func(_ context.Context, _ string) ([]*domain.Candidate, error) {
			return poolOf("f1"), nil
		},
	}

	sender := &fakeSender{
		send: func(_ context.Context, _, _, _ string) error { return errors.New("smtp down") },
	}
	uc := usecase.NewJobUsecase(jobs, freelancers, &fakeConversationRepo{}, sender, &capturingPublisher{}, testLogger(), 30)

	result, err := uc.CreateJob(context.Background(), usecase.CreateJobInput{
		ClientID: "client-1", City: "Tel Aviv", ChildrenCount: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NotificationsSent != 1 {
		t.Errorf("NotificationsSent = %d, want 1", result.NotificationsSent)
	}
}

func TestRestart_RejectedForAssignedJob(t *testing.T) {
	winner := "f1"
	jobs := &fakeJobRepo{
		getByID: func(_ context.Context, _ string) (*domain.Job, time.Time, error) {
			return &domain.Job{
				ID: "job-1", ClientID: "client-1",
				Status: domain.JobStatusLocked, SelectedFreelancerID: &winner,
			}, time.Now(), nil
		},
	}

	_, err := newJobUsecase(jobs, &fakeFreelancerRepo{}, &capturingPublisher{}).
		Restart(context.Background(), "job-1", "client-1")
	if !errors.Is(err, domain.ErrCannotRestart) {
		t.Errorf("error = %v, want ErrCannotRestart", err)
	}
}

func TestRestart_NonOwnerSeesNotFound(t *testing.T) {
	jobs := &fakeJobRepo{
		getByID: func(_ context.Context, _ string) (*domain.Job, time.Time, error) {
			return &domain.Job{ID: "job-1", ClientID: "client-1", Status: domain.JobStatusNotifying}, time.Now(), nil
		},
	}

	_, err := newJobUsecase(jobs, &fakeFreelancerRepo{}, &capturingPublisher{}).
		Restart(context.Background(), "job-1", "someone-else")
	if !errors.Is(err, domain.ErrJobNotFound) {
		t.Errorf("error = %v, want ErrJobNotFound", err)
	}
}

func TestRestart_ReopensWindowWithFreshBatch(t *testing.T) {
	var captured repository.BeginNotifyInput

	jobs := &fakeJobRepo{
		getByID: func(_ context.Context, _ string) (*domain.Job, time.Time, error) {
			return &domain.Job{
				ID: "job-1", ClientID: "client-1", City: "Tel Aviv",
				ChildrenCount: 1, ConfirmWindowSeconds: 120,
				Status: domain.JobStatusNotifying,
			}, time.Now(), nil
		},
		beginNotify: func(_ context.Context, input repository.BeginNotifyInput) (*domain.Job, error) {
			captured = input
			ends := time.Now().Add(120 * time.Second)
			return &domain.Job{ID: input.JobID, Status: domain.JobStatusNotifying, ConfirmEndsAt: &ends}, nil
		},
	}
	freelancers := &fakeFreelancerRepo{
		availableInCity: func(_ context.Context, _ string) ([]*domain.Candidate, error) {
			return poolOf("f3"), nil
		},
	}

	result, err := newJobUsecase(jobs, freelancers, &capturingPublisher{}).
		Restart(context.Background(), "job-1", "client-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.NotificationsSent != 1 {
		t.Errorf("NotificationsSent = %d, want 1", result.NotificationsSent)
	}
	if captured.Window != 120*time.Second {
		t.Errorf("window = %v, want the job's configured 120s", captured.Window)
	}
}

func TestSelect_ReturnsConversationAndPublishes(t *testing.T) {
	jobs := &fakeJobRepo{
		selectFreelancer: func(_ context.Context, jobID, clientID, freelancerID string) (string, error) {
			if jobID != "job-1" || clientID != "client-1" || freelancerID != "f1" {
				t.Errorf("SelectFreelancer(%s, %s, %s)", jobID, clientID, freelancerID)
			}
			return "conv-1", nil
		},
	}
	pub := &capturingPublisher{}

	conversationID, err := newJobUsecase(jobs, &fakeFreelancerRepo{}, pub).
		Select(context.Background(), "job-1", "client-1", "f1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if conversationID != "conv-1" {
		t.Errorf("conversationID = %q, want conv-1", conversationID)
	}
	if len(pub.published) != 1 || pub.published[0].Type != events.TypeJobLocked {
		t.Errorf("published = %+v, want one %s event", pub.published, events.TypeJobLocked)
	}
}

func TestSelect_UnconfirmedFreelancerRejected(t *testing.T) {
	jobs := &fakeJobRepo{
		selectFreelancer: func(_ context.Context, _, _, _ string) (string, error) {
			return "", domain.ErrNotConfirmed
		},
	}
	pub := &capturingPublisher{}

	_, err := newJobUsecase(jobs, &fakeFreelancerRepo{}, pub).
		Select(context.Background(), "job-1", "client-1", "f9")
	if !errors.Is(err, domain.ErrNotConfirmed) {
		t.Errorf("error = %v, want ErrNotConfirmed", err)
	}
	if len(pub.published) != 0 {
		t.Errorf("no event should be published on failure, got %+v", pub.published)
	}
}

func TestGetJob_Access(t *testing.T) {
	winner := "f1"
	jobs := &fakeJobRepo{
		getByID: func(_ context.Context, _ string) (*domain.Job, time.Time, error) {
			return &domain.Job{
				ID: "job-1", ClientID: "client-1",
				Status: domain.JobStatusLocked, SelectedFreelancerID: &winner,
			}, time.Now(), nil
		},
	}
	uc := newJobUsecase(jobs, &fakeFreelancerRepo{}, &capturingPublisher{})

	if _, err := uc.GetJob(context.Background(), "job-1", "client-1"); err != nil {
		t.Errorf("owner access: %v", err)
	}
	if _, err := uc.GetJob(context.Background(), "job-1", "f1"); err != nil {
		t.Errorf("selected freelancer access: %v", err)
	}
	if _, err := uc.GetJob(context.Background(), "job-1", "f2"); !errors.Is(err, domain.ErrForbidden) {
		t.Errorf("stranger access: %v, want ErrForbidden", err)
	}
}

func TestListJobs_PaginatesWithCursor(t *testing.T) {
	now := time.Now()
	page := make([]*domain.Job, 3)
	for i := range page {
		page[i] = &domain.Job{ID: string(rune('a' + i)), CreatedAt: now.Add(-time.Duration(i) * time.Hour)}
	}

	jobs := &fakeJobRepo{
		listByClient: func(_ context.Context, input repository.ListJobsInput) ([]*domain.Job, error) {
			if input.Limit != 3 { // limit + 1
				t.Errorf("repo limit = %d, want 3", input.Limit)
			}
			return page, nil
		},
	}

	result, err := newJobUsecase(jobs, &fakeFreelancerRepo{}, &capturingPublisher{}).
		ListJobs(context.Background(), usecase.ListJobsInput{ClientID: "client-1", Limit: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Jobs) != 2 {
		t.Errorf("len(jobs) = %d, want 2", len(result.Jobs))
	}
	if result.NextCursor == nil {
		t.Error("expected a next cursor")
	}
}

func TestListJobs_PagesCoverEveryJobExactlyOnce(t *testing.T) {
	now := time.Now().Truncate(time.Second)
	all := []*domain.Job{
		{ID: "j1", CreatedAt: now},
		{ID: "j2", CreatedAt: now.Add(-time.Hour)},
		{ID: "j3", CreatedAt: now.Add(-2 * time.Hour)},
	}

	// Mirrors the SQL: newest first, strict (created_at, id) < cursor.
	jobs := &fakeJobRepo{
		listByClient: func(_ context.Context, input repository.ListJobsInput) ([]*domain.Job, error) {
			var page []*domain.Job
			for _, j := range all {
				if input.CursorTime != nil {
					before := j.CreatedAt.Before(*input.CursorTime) ||
						(j.CreatedAt.Equal(*input.CursorTime) && j.ID < input.CursorID)
					if !before {
						continue
					}
				}
				page = append(page, j)
				if len(page) == input.Limit {
					break
				}
			}
			return page, nil
		},
	}
	uc := newJobUsecase(jobs, &fakeFreelancerRepo{}, &capturingPublisher{})

	var seen []string
	cursor := ""
	for range all {
		result, err := uc.ListJobs(context.Background(), usecase.ListJobsInput{
			ClientID: "client-1", Limit: 2, Cursor: cursor,
		})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, j := range result.Jobs {
			seen = append(seen, j.ID)
		}
		if result.NextCursor == nil {
			break
		}
		cursor = *result.NextCursor
	}

	if want := []string{"j1", "j2", "j3"}; !reflect.DeepEqual(seen, want) {
		t.Errorf("paged through %v, want %v", seen, want)
	}
}

func TestListJobs_InvalidStatus(t *testing.T) {
	uc := newJobUsecase(&fakeJobRepo{}, &fakeFreelancerRepo{}, &capturingPublisher{})
	_, err := uc.ListJobs(context.Background(), usecase.ListJobsInput{ClientID: "c", Status: "bogus"})
	if !errors.Is(err, domain.ErrInvalidStatus) {
		t.Errorf("error = %v, want ErrInvalidStatus", err)
	}
}
