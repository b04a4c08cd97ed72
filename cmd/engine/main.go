package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/sportlink/opportunity-engine/internal/app"
	"github.com/sportlink/opportunity-engine/internal/config"
	"github.com/sportlink/opportunity-engine/internal/matching"
	"github.com/sportlink/opportunity-engine/internal/repository"
	"github.com/sportlink/opportunity-engine/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting opportunity engine",
		zap.String("environment", cfg.Environment),
		zap.Int("match_threshold", cfg.MatchThreshold),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath, logger)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	postingRepo := repository.NewPostingRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	applicationRepo := repository.NewApplicationRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)

	notifications := service.NewNotificationService(notificationRepo, logger)

	matches, err := service.NewMatchService(matching.DefaultWeights, cfg.MatchThreshold, postingRepo, profileRepo, notifications, logger)
	if err != nil {
		logger.Fatal("Failed to create match service", zap.Error(err))
	}

	engine := &app.Engine{
		Postings:      service.NewPostingService(postingRepo, matches, logger),
		Applications:  service.NewApplicationService(applicationRepo, postingRepo, notifications, logger),
		Sessions:      service.NewSessionService(sessionRepo, notifications, logger),
		Matches:       matches,
		Notifications: notifications,
	}

	worker := app.NewWorker(engine.Postings, engine.Notifications, cfg.SweepInterval, cfg.RetryInterval, logger)
	worker.Start(ctx)
	defer worker.Stop()

	// The delivery transport (poll endpoint, push, email) mounts on the
	// engine; this process only keeps state converging.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down")
}
