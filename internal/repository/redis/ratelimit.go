package redis

import (
	"context"
	"fmt"
	"time"
)

const rateLimitPrefix = "articlehub:ratelimit:"

// RateLimiter is a fixed one-minute window counter per key
type RateLimiter struct {
	client *Client
	limit  int64
	now    func() time.Time
}

// Decision is the outcome of a rate limit check
type Decision struct {
	Allowed   bool
	Limit     int
	Remaining int
	ResetAt   time.Time
}

// NewRateLimiter allows requestsPerMinute+burst requests per key and minute
func NewRateLimiter(client *Client, requestsPerMinute, burst int) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  int64(requestsPerMinute + burst),
		now:    time.Now,
	}
}

// Allow counts a request against key
func (r *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	windowStart := r.now().Truncate(time.Minute)
	fullKey := fmt.Sprintf("%s%s:%d", rateLimitPrefix, key, windowStart.Unix())

	pipe := r.client.rdb.Pipeline()
	incr := pipe.Incr(ctx, fullKey)
	pipe.ExpireNX(ctx, fullKey, time.Minute)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{}, fmt.Errorf("failed to execute rate limit check: %w", err)
	}

	count := incr.Val()
	remaining := r.limit - count
	if remaining < 0 {
		remaining = 0
	}

	return Decision{
		Allowed:   count <= r.limit,
		Limit:     int(r.limit),
		Remaining: int(remaining),
		ResetAt:   windowStart.Add(time.Minute),
	}, nil
}
