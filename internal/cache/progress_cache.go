package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// ProgressCache keeps the submitted-question set per attempt hot, so the
// attempt endpoint can answer progress reads without hitting the database.
// Redis is a cache only; the database stays authoritative.
type ProgressCache interface {
	SetSubmitted(ctx context.Context, attemptID uint, questionIDs []uint) error
	GetSubmitted(ctx context.Context, attemptID uint) ([]uint, bool, error)
	Invalidate(ctx context.Context, attemptID uint) error
}

type redisProgressCache struct {
	client *redis.Client
	logger *slog.Logger
	ttl    time.Duration
}

func NewRedisProgressCache(client *redis.Client, logger *slog.Logger, ttl time.Duration) ProgressCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &redisProgressCache{
		client: client,
		logger: logger,
		ttl:    ttl,
	}
}

func progressKey(attemptID uint) string {
	return fmt.Sprintf("attempt:%d:submitted", attemptID)
}

func (c *redisProgressCache) SetSubmitted(ctx context.Context, attemptID uint, questionIDs []uint) error {
	payload, err := json.Marshal(questionIDs)
	if err != nil {
		return fmt.Errorf("failed to marshal submitted set: %w", err)
	}
	if err := c.client.Set(ctx, progressKey(attemptID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache submitted set: %w", err)
	}
	return nil
}

func (c *redisProgressCache) GetSubmitted(ctx context.Context, attemptID uint) ([]uint, bool, error) {
	payload, err := c.client.Get(ctx, progressKey(attemptID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read submitted set: %w", err)
	}

	var questionIDs []uint
	if err := json.Unmarshal(payload, &questionIDs); err != nil {
		// A corrupt entry is dropped, not trusted.
		c.logger.Warn("Discarding corrupt progress cache entry", "attempt_id", attemptID)
		_ = c.client.Del(ctx, progressKey(attemptID)).Err()
		return nil, false, nil
	}
	return questionIDs, true, nil
}

func (c *redisProgressCache) Invalidate(ctx context.Context, attemptID uint) error {
	if err := c.client.Del(ctx, progressKey(attemptID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate progress cache: %w", err)
	}
	return nil
}

// NoopProgressCache skips caching entirely; used when Redis is not
// configured.
type NoopProgressCache struct{}

func (NoopProgressCache) SetSubmitted(ctx context.Context, attemptID uint, questionIDs []uint) error {
	return nil
}

func (NoopProgressCache) GetSubmitted(ctx context.Context, attemptID uint) ([]uint, bool, error) {
	return nil, false, nil
}

func (NoopProgressCache) Invalidate(ctx context.Context, attemptID uint) error {
	return nil
}
