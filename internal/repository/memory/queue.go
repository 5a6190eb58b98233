package memory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Rrens/article-hub/internal/domain"
	"github.com/google/uuid"
)

const queueCapacity = 1024

// Queue is an in-process job broker with the same contract as the Redis one
type Queue struct {
	jobs chan domain.Job

	mu      sync.Mutex
	results map[string]chan domain.JobResult
}

// NewQueue creates an empty queue
func NewQueue() *Queue {
	return &Queue{
		jobs:    make(chan domain.Job, queueCapacity),
		results: make(map[string]chan domain.JobResult),
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

	select {
	case q.jobs <- job:
		return job.ID, nil
	case <-ctx.Done():
		return "", ctx.Err()
	default:
		return "", errors.New("queue is full")
	}
}

// Consume returns the next job, or nil, nil when none arrives within timeout
func (q *Queue) Consume(ctx context.Context, timeout time.Duration) (*domain.Job, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case job := <-q.jobs:
		return &job, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// PublishResult records the outcome of a job for WaitResult
func (q *Queue) PublishResult(ctx context.Context, result domain.JobResult) error {
	select {
	case q.resultChan(result.JobID) <- result:
	default:
		// A result was already published for this job
	}
	return nil
}

// WaitResult blocks until the job's result is published. It returns nil,
// nil when timeout elapses first.
func (q *Queue) WaitResult(ctx context.Context, jobID string, timeout time.Duration) (*domain.JobResult, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case result := <-q.resultChan(jobID):
		q.mu.Lock()
		delete(q.results, jobID)
		q.mu.Unlock()
		return &result, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Pending returns the number of queued jobs
func (q *Queue) Pending() int {
	return len(q.jobs)
}

func (q *Queue) resultChan(jobID string) chan domain.JobResult {
	q.mu.Lock()
	defer q.mu.Unlock()

	ch, ok := q.results[jobID]
	if !ok {
		ch = make(chan domain.JobResult, 1)
		q.results[jobID] = ch
	}
	return ch
}
