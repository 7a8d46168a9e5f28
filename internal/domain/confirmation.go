package domain

import "time"

type ConfirmationStatus string

const (
	ConfirmationAvailable ConfirmationStatus = "available"
	ConfirmationDeclined  ConfirmationStatus = "declined"
)

// Confirmation is the per-(job, freelancer) availability record.
// A freelancer confirming twice overwrites the same row.
type Confirmation struct {
	JobID             string
	FreelancerID      string
	Status            ConfirmationStatus
	Note              *string
	IsOpenJobAccepted bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ConfirmedFreelancer is a confirmation enriched with profile data for
// client review.
type ConfirmedFreelancer struct {
	FreelancerID      string
	FullName          string
	City              string
	RateMin           *float64
	RateMax           *float64
	Languages         []string
	Note              *string
	IsOpenJobAccepted bool
	ConfirmedAt       time.Time
}

const (
	MinOpenJobNoteLen = 1
	MaxOpenJobNoteLen = 500
)
