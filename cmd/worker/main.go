package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rrens/article-hub/internal/config"
	"github.com/Rrens/article-hub/internal/logging"
	"github.com/Rrens/article-hub/internal/repository/mongo"
	"github.com/Rrens/article-hub/internal/repository/redis"
	"github.com/Rrens/article-hub/internal/worker"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Setup(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := mongo.NewClient(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	redisClient, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	topics, err := logging.OpenTopics(cfg.Logging.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open topic logs")
	}
	defer topics.Close()

	tasks := worker.NewTasks(mongo.NewArticleRepository(db), mongo.NewLogRepository(db), topics)
	queue := redis.NewQueue(redisClient, cfg.Jobs.Queue, cfg.Jobs.ResultTTL)

	log.Info().
		Str("queue", cfg.Jobs.Queue).
		Int("concurrency", cfg.Worker.Concurrency).
		Bool("beat", cfg.Worker.BeatEnabled).
		Msg("Starting worker")

	if err := worker.New(queue, tasks, cfg.Worker).Run(ctx); err != nil {
		log.Error().Err(err).Msg("Worker stopped with error")
		return
	}

	log.Info().Msg("Worker stopped")
}
