package domain

import (
	"errors"
	"time"
)

var (
	ErrJobNotFound   = errors.New("job not found")
	ErrJobLocked     = errors.New("job has already been assigned")
	ErrWindowClosed  = errors.New("confirmation window has ended")
	ErrWindowOpen    = errors.New("confirmation window is still open")
	ErrNotConfirmed  = errors.New("freelancer has not confirmed availability")
	ErrCannotRestart = errors.New("cannot restart a job that has been assigned or completed")
	ErrNoteRequired  = errors.New("a note is required to accept an open job")
	ErrInvalidStatus = errors.New("invalid job status")
	ErrInvalidCursor = errors.New("invalid cursor")
)

type JobStatus string

const (
	JobStatusReady     JobStatus = "ready"
	JobStatusNotifying JobStatus = "notifying"
	JobStatusLocked    JobStatus = "locked"
	JobStatusActive    JobStatus = "active"
	JobStatusCompleted JobStatus = "completed"
)

// Negotiation stage labels carried over into the conversation on lock.
type Stage string

const (
	StageIntro     Stage = "intro"
	StageOfferMade Stage = "offer_made"
)

const (
	MinConfirmWindowSeconds     = 30
	MaxConfirmWindowSeconds     = 180
	DefaultConfirmWindowSeconds = 90
)

// Requirements are the capability flags a job may demand from a candidate.
type Requirements struct {
	FirstAid     bool
	NewbornCare  bool
	SpecialNeeds bool
}

type Job struct {
	ID       string
	ClientID string

	// Matching criteria, immutable after creation.
	City          string
	ChildrenCount int
	AgeGroup      string
	Requirements  Requirements
	BudgetMin     *float64 // nil = unbounded
	BudgetMax     *float64
	Languages     []string // empty = no constraint

	ConfirmWindowSeconds int
	Status               JobStatus
	ConfirmStartsAt      *time.Time
	ConfirmEndsAt        *time.Time
	SelectedFreelancerID *string
	LockedAt             *time.Time

	// Negotiation sub-state, mutated by the chat layer.
	Stage       Stage
	OfferAmount *float64

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Assigned reports whether the job has been locked to a freelancer
// (or progressed further).
func (j *Job) Assigned() bool {
	switch j.Status {
	case JobStatusLocked, JobStatusActive, JobStatusCompleted:
		return true
	}
	return false
}

// WindowOpen reports whether now falls inside the confirmation window.
// The boundary itself is inclusive: a confirm at exactly confirm_ends_at
// is accepted.
func (j *Job) WindowOpen(now time.Time) bool {
	return j.Status == JobStatusNotifying && j.ConfirmEndsAt != nil && !now.After(*j.ConfirmEndsAt)
}

// CanConfirm returns nil when an in-window confirm is legal at now.
func (j *Job) CanConfirm(now time.Time) error {
	if j.Assigned() {
		return ErrJobLocked
	}
	if !j.WindowOpen(now) {
		return ErrWindowClosed
	}
	return nil
}

// CanAcceptOpenJob returns nil when a post-window accept-with-note is
// legal at now. The two confirm paths are never both legal.
func (j *Job) CanAcceptOpenJob(now time.Time) error {
	if j.Assigned() {
		return ErrJobLocked
	}
	if j.Status != JobStatusNotifying || j.ConfirmEndsAt == nil || j.WindowOpen(now) {
		return ErrWindowOpen
	}
	return nil
}

// CanDecline returns nil when the owning client may still decline a
// confirmation. Expiry does not block a decline; a lock does.
func (j *Job) CanDecline() error {
	if j.Assigned() {
		return ErrJobLocked
	}
	return nil
}

// CanRestart returns nil when the job may re-enter the notifying state.
func (j *Job) CanRestart() error {
	if j.Assigned() {
		return ErrCannotRestart
	}
	return nil
}

// NextStage derives the negotiation stage stamped on lock from any
// price-offer sub-state left by the chat layer.
func (j *Job) NextStage() Stage {
	if j.OfferAmount != nil {
		return StageOfferMade
	}
	return StageIntro
}
