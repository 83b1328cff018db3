package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/KP12130/KPCasinoAI/internal/services"
)

func TestRateLimiter(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
	defer client.Close()

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}

	limiter := services.NewRateLimiter(client, 200*time.Millisecond)
	accountID := uuid.New()

	allowed, err := limiter.Allow(ctx, accountID)
	if err != nil {
		t.Fatalf("Failed to check limiter: %v", err)
	}
	if !allowed {
		t.Error("First settlement should be allowed")
	}

	allowed, err = limiter.Allow(ctx, accountID)
	if err != nil {
		t.Fatalf("Failed to check limiter: %v", err)
	}
	if allowed {
		t.Error("Second settlement within the interval should be denied")
	}

	// Another account is not affected.
	allowed, err = limiter.Allow(ctx, uuid.New())
	if err != nil {
		t.Fatalf("Failed to check limiter: %v", err)
	}
	if !allowed {
		t.Error("Different account should be allowed")
	}

	time.Sleep(250 * time.Millisecond)

	allowed, err = limiter.Allow(ctx, accountID)
	if err != nil {
		t.Fatalf("Failed to check limiter: %v", err)
	}
	if !allowed {
		t.Error("Settlement after the interval should be allowed")
	}
}
