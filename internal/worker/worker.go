package worker

import (
	"context"
	"fmt"
	"time"

	"github.com/Rrens/article-hub/internal/config"
	"github.com/Rrens/article-hub/internal/domain"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const (
	pollTimeout    = 2 * time.Second
	retryDelay     = time.Second
	publishTimeout = 5 * time.Second
)

// Queue is the broker as seen by the worker
type Queue interface {
	Submit(ctx context.Context, name string, payload any) (string, error)
	// Consume returns nil, nil when no job arrives within timeout
	Consume(ctx context.Context, timeout time.Duration) (*domain.Job, error)
	PublishResult(ctx context.Context, result domain.JobResult) error
}

// Handler executes one job
type Handler interface {
	Handle(ctx context.Context, job domain.Job) error
}

// Worker consumes jobs with a fixed number of goroutines and, when enabled,
// schedules the periodic article count
type Worker struct {
	queue   Queue
	handler Handler
	cfg     config.WorkerConfig
}

// New creates a worker
func New(queue Queue, handler Handler, cfg config.WorkerConfig) *Worker {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Worker{
		queue:   queue,
		handler: handler,
		cfg:     cfg,
	}
}

// Run blocks until ctx is cancelled
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	for i := 0; i < w.cfg.Concurrency; i++ {
		id := i
		g.Go(func() error {
			w.consume(ctx, id)
			return nil
		})
	}

	if w.cfg.BeatEnabled && w.cfg.CountInterval > 0 {
		g.Go(func() error {
			w.beat(ctx)
			return nil
		})
	}

	log.Info().
		Int("concurrency", w.cfg.Concurrency).
		Bool("beat", w.cfg.BeatEnabled).
		Dur("count_interval", w.cfg.CountInterval).
		Msg("Worker started")

	return g.Wait()
}

func (w *Worker) consume(ctx context.Context, id int) {
	logger := log.With().Int("consumer", id).Logger()

	for ctx.Err() == nil {
		job, err := w.queue.Consume(ctx, pollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			logger.Error().Err(err).Msg("Failed to consume job")
			sleep(ctx, retryDelay)
			continue
		}
		if job == nil {
			continue
		}

		w.Process(ctx, *job)
	}
}

// Process runs one job and publishes its result. Handler failures and
// panics are logged and reported as failed results.
func (w *Worker) Process(ctx context.Context, job domain.Job) {
	logger := log.With().Str("job_id", job.ID).Str("job", job.Name).Logger()
	start := time.Now()
	logger.Debug().Msg("Job started")

	err := w.run(ctx, job)

	result := domain.JobResult{
		JobID:      job.ID,
		Status:     domain.JobStatusSucceeded,
		FinishedAt: time.Now().UTC(),
	}
	if err != nil {
		result.Status = domain.JobStatusFailed
		result.Error = err.Error()
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Job failed")
	} else {
		logger.Info().Dur("duration", time.Since(start)).Msg("Job finished")
	}

	// Publish even when shutting down so a waiting request is not left
	// hanging on a job that did run.
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := w.queue.PublishResult(pubCtx, result); err != nil {
		logger.Error().Err(err).Msg("Failed to publish job result")
	}
}

func (w *Worker) run(ctx context.Context, job domain.Job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return w.handler.Handle(ctx, job)
}

func (w *Worker) beat(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.CountInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			id, err := w.queue.Submit(ctx, domain.JobLogArticlesCount, struct{}{})
			if err != nil {
				log.Error().Err(err).Msg("Failed to schedule article count")
				continue
			}
			log.Debug().Str("job_id", id).Msg("Scheduled article count")
		}
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
