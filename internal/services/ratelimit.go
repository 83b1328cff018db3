package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func NewRateLimiter(client *redis.Client, interval time.Duration) *RateLimiter {
	if interval <= 0 {
		interval = DefaultSettleInterval
	}
	return &RateLimiter{client: client, interval: interval}
}

// RateLimiter enforces a minimum interval between settlements per account.
// The key carries the interval as TTL, so tracking state expires on its own
// instead of accumulating one entry per account forever.
type RateLimiter struct {
	client   *redis.Client
	interval time.Duration
}

func (r *RateLimiter) Allow(ctx context.Context, accountID uuid.UUID) (bool, error) {
	key := fmt.Sprintf(KeySettleRateLimit, accountID)

	ok, err := r.client.SetNX(ctx, key, 1, r.interval).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit check: %w", err)
	}

	return ok, nil
}
