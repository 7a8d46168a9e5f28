package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/carematch/carematch/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ConversationRepository struct {
	pool *pgxpool.Pool
}

func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{pool: pool}
}

func (r *ConversationRepository) GetByID(ctx context.Context, id, userID string) (*domain.Conversation, error) {
	var c domain.Conversation
	err := r.pool.QueryRow(ctx, `
		SELECT id, job_id, client_id, freelancer_id, created_at
		FROM conversations
		WHERE id = $1 AND (client_id = $2 OR freelancer_id = $2)`,
		id, userID).Scan(&c.ID, &c.JobID, &c.ClientID, &c.FreelancerID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, fmt.Errorf("scan conversation: %w", err)
	}
	return &c, nil
}
