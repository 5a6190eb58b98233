package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Rrens/article-hub/internal/domain"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const resultKeyPrefix = "jobs:result:"

// Queue is the job broker: a Redis list of JSON job envelopes plus one
// short-lived list per job holding its result
type Queue struct {
	client    *Client
	name      string
	resultTTL time.Duration
}

// NewQueue creates a queue on the named list
func NewQueue(client *Client, name string, resultTTL time.Duration) *Queue {
	return &Queue{
		client:    client,
		name:      name,
		resultTTL: resultTTL,
	}
}

// Submit enqueues a job and returns its ID without waiting for it
func (q *Queue) Submit(ctx context.Context, name string, payload any) (string, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("failed to encode payload: %w", err)
	}

	job := domain.Job{
		ID:          uuid.NewString(),
		Name:        name,
		Payload:     raw,
		SubmittedAt: time.Now().UTC(),
	}

	body, err := json.Marshal(job)
	if err != nil {
		return "", fmt.Errorf("failed to encode job: %w", err)
	}

	if err := q.client.rdb.LPush(ctx, q.name, body).Err(); err != nil {
		return "", fmt.Errorf("failed to enqueue job: %w", err)
	}
	return job.ID, nil
}

// Consume pops the oldest job, or returns nil, nil when none arrives within
// timeout
func (q *Queue) Consume(ctx context.Context, timeout time.Duration) (*domain.Job, error) {
	res, err := q.client.rdb.BRPop(ctx, timeout, q.name).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop job: %w", err)
	}

	// BRPOP replies with [list, value]
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BRPOP reply of length %d", len(res))
	}

	var job domain.Job
	if err := json.Unmarshal([]byte(res[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to decode job: %w", err)
	}
	return &job, nil
}

// PublishResult stores the job outcome where WaitResult can find it. The
// result expires after the configured TTL whether or not anyone waits.
func (q *Queue) PublishResult(ctx context.Context, result domain.JobResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	key := resultKeyPrefix + result.JobID
	pipe := q.client.rdb.TxPipeline()
	pipe.LPush(ctx, key, body)
	pipe.Expire(ctx, key, q.resultTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish result: %w", err)
	}
	return nil
}

// WaitResult blocks until the job's result is published. It returns nil,
// nil when timeout elapses first.
func (q *Queue) WaitResult(ctx context.Context, jobID string, timeout time.Duration) (*domain.JobResult, error) {
	res, err := q.client.rdb.BLPop(ctx, timeout, resultKeyPrefix+jobID).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to wait for result: %w", err)
	}
	if len(res) != 2 {
		return nil, fmt.Errorf("unexpected BLPOP reply of length %d", len(res))
	}

	var result domain.JobResult
	if err := json.Unmarshal([]byte(res[1]), &result); err != nil {
		return nil, fmt.Errorf("failed to decode result: %w", err)
	}
	return &result, nil
}
