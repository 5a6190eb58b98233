package redis

import (
	"context"
	"fmt"

	"github.com/Rrens/article-hub/internal/config"
	"github.com/redis/go-redis/v9"
)

// Client wraps the Redis connection shared by the job broker and the rate
// limiter
type Client struct {
	rdb *redis.Client
}

// NewClient connects to Redis and verifies the connection
func NewClient(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// NewClientFrom wraps an existing go-redis client
func NewClientFrom(rdb *redis.Client) *Client {
	return &Client{rdb: rdb}
}

// Ping checks that the broker is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
