package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Rrens/article-hub/internal/api"
	"github.com/Rrens/article-hub/internal/api/handler"
	"github.com/Rrens/article-hub/internal/config"
	"github.com/Rrens/article-hub/internal/logging"
	"github.com/Rrens/article-hub/internal/repository/mongo"
	"github.com/Rrens/article-hub/internal/repository/redis"
	"github.com/Rrens/article-hub/internal/security"
	"github.com/Rrens/article-hub/internal/service"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	// Load .env file - try multiple locations
	for _, p := range []string{".env", "../.env", "../../.env"} {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Setup(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	log.Info().
		Str("host", cfg.Server.Host).
		Int("port", cfg.Server.Port).
		Msg("Starting article API server")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := mongo.NewClient(ctx, cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(context.Background()); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if cfg.Database.AutoMigrate {
		dsn, err := cfg.Database.MigrateURL()
		if err != nil {
			log.Fatal().Err(err).Msg("Invalid database uri")
		}
		if err := mongo.RunMigrations(dsn, cfg.Database.MigrationsPath); err != nil {
			log.Fatal().Err(err).Msg("Failed to run migrations")
		}
	}

	// Initialize Redis
	redisClient, err := redis.NewClient(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	queue := redis.NewQueue(redisClient, cfg.Jobs.Queue, cfg.Jobs.ResultTTL)

	users := mongo.NewUserRepository(db)
	articles := mongo.NewArticleRepository(db)

	tokens, err := security.NewJWTManager(
		cfg.Auth.JWTSecret,
		cfg.Auth.Algorithm,
		cfg.Auth.AccessTokenTTL(),
		cfg.Auth.RefreshTokenTTL,
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create token manager")
	}

	userService, err := service.NewUserService(users, security.NewPasswordHasher(cfg.Auth.BcryptCost), tokens, queue)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create user service")
	}

	router, err := api.NewRouter(cfg, api.Services{
		Users:       userService,
		Articles:    service.NewArticleService(articles, queue, queue, cfg.Jobs.ResultTimeout),
		Identity:    service.NewIdentityResolver(tokens, users, cfg.Auth.RejectRefreshAsAccess),
		RateLimiter: redis.NewRateLimiter(redisClient, cfg.Security.RateLimit.RequestsPerMinute, cfg.Security.RateLimit.Burst),
		Readiness: map[string]handler.Pinger{
			"database": db,
			"broker":   redisClient,
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build router")
	}

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("Server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		// Graceful shutdown with timeout
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("Server stopped with error")
		return
	}

	log.Info().Msg("Server stopped")
}
