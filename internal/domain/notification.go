package domain

import (
	"errors"
	"time"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending"
	NotificationOpened  NotificationStatus = "opened"
)

// Notification is one fanned-out candidate opportunity for a job.
type Notification struct {
	ID           string
	JobID        string
	FreelancerID string
	Status       NotificationStatus
	OpenedAt     *time.Time
	CreatedAt    time.Time
}

// NotificationWithJob is the freelancer-inbox projection: the
// notification plus enough of the job to render the opportunity.
type NotificationWithJob struct {
	Notification

	JobCity          string
	ChildrenCount    int
	AgeGroup         string
	JobConfirmEndsAt *time.Time
}
