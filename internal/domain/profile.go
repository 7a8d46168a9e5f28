package domain

import (
	"errors"
	"time"
)

var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrForbidden       = errors.New("forbidden")
)

type Role string

const (
	RoleClient     Role = "client"
	RoleFreelancer Role = "freelancer"
)

// Profile is the caller identity row keyed by the auth provider's subject.
type Profile struct {
	ID        string
	Role      Role
	FullName  string
	Email     string
	City      string
	CreatedAt time.Time
}

// Candidate is the read-only freelancer projection used by matching.
// It is a snapshot taken at sourcing time; later profile edits do not
// retract an already-sent notification.
type Candidate struct {
	ID           string
	FullName     string
	Email        string
	City         string
	AvailableNow bool

	MaxChildren     int
	HasFirstAid     bool
	HasNewbornCare  bool
	HasSpecialNeeds bool
	RateMin         *float64 // nil = unbounded
	RateMax         *float64
	Languages       []string
}
