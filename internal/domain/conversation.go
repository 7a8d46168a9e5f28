package domain

import (
	"errors"
	"time"
)

var ErrConversationNotFound = errors.New("conversation not found")

// Conversation links the client and the locked-in freelancer for a job.
// It is created by Selection and supersedes the job's notifications.
type Conversation struct {
	ID           string
	JobID        string
	ClientID     string
	FreelancerID string
	CreatedAt    time.Time
}
