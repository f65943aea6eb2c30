package main

import (
	"context"
	"os"

	"fridge-backend/config"
	"fridge-backend/database"
	"fridge-backend/logging"

	"github.com/rs/zerolog"
)

func main() {
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: "console"})
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to initialize logging")
	}
	defer closer.Close()

	version, err := migrate(context.Background(), cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to apply migrations")
	}
	logger.Info().Str("driver", cfg.DatabaseDriver).Int64("version", version).Msg("schema is up to date")
}

// migrate brings the configured database up to date and returns its version.
func migrate(ctx context.Context, cfg *config.Config) (int64, error) {
	db, err := database.Open(ctx, database.Config{
		Driver:      cfg.DatabaseDriver,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
	})
	if err != nil {
		return 0, err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return 0, err
	}
	return database.Version(db)
}
