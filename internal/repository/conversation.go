package repository

import (
	"context"

	"github.com/carematch/carematch/internal/domain"
)

type ConversationRepository interface {
	// GetByID returns the conversation only when userID is one of its two
	// participants; domain.ErrConversationNotFound otherwise.
	GetByID(ctx context.Context, id, userID string) (*domain.Conversation, error)
}
