package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/Rrens/article-hub/internal/config"
	"github.com/Rrens/article-hub/internal/logging"
	"github.com/Rrens/article-hub/internal/repository/mongo"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

func main() {
	source := flag.String("source", "", "migration source URL (defaults to database.migrations_path)")
	flag.Parse()

	// Load .env file if it exists
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := logging.Setup(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to set up logging: %v\n", err)
		os.Exit(1)
	}

	if *source == "" {
		*source = cfg.Database.MigrationsPath
	}

	dsn, err := cfg.Database.MigrateURL()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid database uri")
	}

	log.Info().Str("database", cfg.Database.Name).Str("source", *source).Msg("Applying migrations")

	if err := mongo.RunMigrations(dsn, *source); err != nil {
		log.Fatal().Err(err).Msg("Migration failed")
	}
}
