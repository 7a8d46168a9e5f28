// Package events publishes compact matching events for the external
// realtime push tier. Publishing is best-effort: a failed publish is
// logged and never fails the operation that produced it.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const Channel = "carematch.match"

const (
	TypeJobNotified  = "job.notified"
	TypeJobConfirmed = "job.confirmed"
	TypeJobLocked    = "job.locked"
)

type Event struct {
	Type           string    `json:"type"`
	JobID          string    `json:"job_id"`
	FreelancerID   string    `json:"freelancer_id,omitempty"`
	ConversationID string    `json:"conversation_id,omitempty"`
	Candidates     int       `json:"candidates,omitempty"`
	At             time.Time `json:"at"`
}

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// LogPublisher logs events instead of publishing them — used when no
// Redis is configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger.With("component", "events")}
}

func (p *LogPublisher) Publish(ctx context.Context, e Event) {
	p.logger.InfoContext(ctx, "match event", "type", e.Type, "job_id", e.JobID)
}

// RedisPublisher pushes events onto a pub/sub channel consumed by the
// realtime tier.
type RedisPublisher struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisPublisher(client *redis.Client, logger *slog.Logger) *RedisPublisher {
	return &RedisPublisher{client: client, logger: logger.With("component", "events")}
}

func (p *RedisPublisher) Publish(ctx context.Context, e Event) {
	if e.At.IsZero() {
		e.At = time.Now()
	}
	payload, err := json.Marshal(e)
	if err != nil {
		p.logger.ErrorContext(ctx, "marshal event", "type", e.Type, "error", err)
		return
	}
	if err := p.client.Publish(ctx, Channel, payload).Err(); err != nil {
		p.logger.WarnContext(ctx, "publish event", "type", e.Type, "job_id", e.JobID, "error", err)
	}
}
