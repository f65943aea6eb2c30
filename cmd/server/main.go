package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fridge-backend/config"
	"fridge-backend/database"
	"fridge-backend/handlers"
	"fridge-backend/logging"
	"fridge-backend/service"
	"fridge-backend/session"
	"fridge-backend/storage"
	"fridge-backend/weather"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const shutdownTimeout = 10 * time.Second

func main() {
	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	logger, logCloser, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	})
	if err != nil {
		boot.Fatal().Err(err).Msg("failed to initialize logging")
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database
	db, err := database.Open(ctx, database.Config{
		Driver:      cfg.DatabaseDriver,
		DatabaseURL: cfg.DatabaseURL,
		SQLitePath:  cfg.SQLitePath,
	})
	if err != nil {
		logger.Fatal().Err(err).Str("driver", cfg.DatabaseDriver).Msg("failed to open database")
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}
	logger.Info().Str("driver", db.Driver).Msg("database ready")

	// Initialize storage
	blobs, err := storage.NewStorage(ctx, storage.StorageConfig{
		Type:         storage.StorageType(cfg.StorageType),
		LocalPath:    cfg.StorageLocalPath,
		S3Bucket:     cfg.S3Bucket,
		S3Region:     cfg.S3Region,
		S3Endpoint:   cfg.S3Endpoint,
		AWSAccessKey: cfg.AWSAccessKey,
		AWSSecretKey: cfg.AWSSecretKey,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize storage")
	}
	logger.Info().Str("type", cfg.StorageType).Msg("storage initialized")

	sessions := newSessionStore(ctx, cfg, db, logger)

	// Initialize services
	authService := service.NewAuthService(
		service.AuthWithDatabase(db),
		service.AuthWithSessionStore(sessions),
		service.AuthWithLogger(logger),
	)
	magnetService := service.NewMagnetService(
		service.MagnetWithDatabase(db),
		service.MagnetWithStorage(blobs),
		service.MagnetWithLogger(logger),
	)
	calendarService := service.NewCalendarService(
		service.CalendarWithDatabase(db),
		service.CalendarWithLogger(logger),
	)
	circleService := service.NewCircleService(
		service.CircleWithDatabase(db),
		service.CircleWithLogger(logger),
	)
	mailService := service.NewMailService(
		service.MailWithDatabase(db),
		service.MailWithLogger(logger),
	)
	weatherClient := weather.NewClient(
		weather.WithTimeout(cfg.WeatherTimeout),
		weather.WithLogger(logger),
	)

	gin.SetMode(cfg.GinMode)
	router := handlers.NewRouter(handlers.RouterConfig{
		Logger:      logger,
		CORSOrigin:  cfg.CORSOrigin,
		MaxFileSize: cfg.MaxUploadBytes,
		Sessions:    sessions,
		Storage:     blobs,
		Weather:     weatherClient,
		Auth:        authService,
		Magnets:     magnetService,
		Calendar:    calendarService,
		Circles:     circleService,
		Mail:        mailService,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}

// newSessionStore picks the session backend. Database sessions with a TTL
// get a background sweep of expired rows.
func newSessionStore(ctx context.Context, cfg *config.Config, db *database.DB, logger zerolog.Logger) session.Store {
	if cfg.SessionStore != "database" {
		logger.Info().Dur("ttl", cfg.SessionTTL).Msg("using in-memory sessions")
		return session.NewMemoryStore(session.WithTTL(cfg.SessionTTL))
	}

	store := session.NewSQLStore(db, cfg.SessionTTL)
	logger.Info().Dur("ttl", cfg.SessionTTL).Msg("using database sessions")
	if cfg.SessionTTL > 0 {
		go purgeSessions(ctx, store, cfg.SessionTTL, logger)
	}
	return store
}

func purgeSessions(ctx context.Context, store *session.SQLStore, every time.Duration, logger zerolog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.Purge(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("failed to purge expired sessions")
				continue
			}
			if n > 0 {
				logger.Debug().Int64("purged", n).Msg("expired sessions removed")
			}
		}
	}
}
