package main

import (
	"context"
	"fmt"
	"os"

	"fridge-backend/apperr"
	"fridge-backend/config"
	"fridge-backend/database"
	"fridge-backend/logging"
	"fridge-backend/service"
	"fridge-backend/session"

	"github.com/rs/zerolog"
)

// Usage: create-test-user [username] [pin]
func main() {
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	username, pin := "test", "1234"
	if len(os.Args) > 1 {
		username = os.Args[1]
	}
	if len(os.Args) > 2 {
		pin = os.Args[2]
	}

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, Format: "console"})
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to initialize logging")
	}
	defer closer.Close()

	user, err := createUser(context.Background(), cfg, logger, username, pin)
	if err != nil {
		if apperr.Is(err, apperr.KindConflict) {
			logger.Info().Str("username", username).Msg("user already exists")
			return
		}
		logger.Fatal().Err(err).Msg("failed to create user")
	}

	fmt.Printf("Test user created\n")
	fmt.Printf("   ID: %d\n", user.UserID)
	fmt.Printf("   Username: %s\n", user.Username)
	fmt.Printf("   PIN: %s\n", pin)
}

// createUser migrates the configured database and registers username.
func createUser(ctx context.Context, cfg *config.Config, logger zerolog.Logger, username, pin string) (*service.RegisterResult, error) {
	db, err := database.Open(ctx, database.Config{
		Driver:      cfg.DatabaseDriver,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
	})
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		return nil, err
	}

	auth := service.NewAuthService(
		service.AuthWithDatabase(db),
		service.AuthWithSessionStore(session.NewMemoryStore()),
		service.AuthWithLogger(logger),
	)
	return auth.Register(ctx, service.RegisterRequest{Username: username, PIN: pin})
}
