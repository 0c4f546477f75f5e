// Package cache opens the Redis connection shared by the analytics cache
// and the job queue.
package cache

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const pingTimeout = 5 * time.Second

// New creates a new Redis client and checks that it answers.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("platform/cache: ping %s: %w", addr, err)
	}

	return client, nil
}

// Optional returns a client for addr, or nil when Redis is unreachable. A
// nil client runs the analytics service without its shared cache.
func Optional(ctx context.Context, addr string, logger *slog.Logger) *redis.Client {
	client, err := New(ctx, addr)
	if err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("redis unavailable, analytics cache disabled", slog.Any("error", err))
		return nil
	}
	return client
}
