// Package main is the entry point for the PharmaLedger background worker.
// It runs the periodic sweeps: notification delivery, message promotion,
// outbox relay and refresh token cleanup.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"pharmaledger/internal/config"
	"pharmaledger/internal/core/security"
	"pharmaledger/internal/domain/auth"
	"pharmaledger/internal/domain/messaging"
	"pharmaledger/internal/domain/notification"
	"pharmaledger/internal/infrastructure/broker"
	"pharmaledger/internal/infrastructure/metrics"
	"pharmaledger/internal/infrastructure/storage/postgres"
	"pharmaledger/internal/infrastructure/storage/postgres/auth_repo"
	"pharmaledger/internal/infrastructure/storage/postgres/messaging_repo"
	"pharmaledger/internal/jobs"
	"pharmaledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Errorw("worker exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	log.Info("starting pharmaledger worker")

	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	poolCfg.ApplicationName = "pharmaledger-worker"
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	txm := postgres.NewTxManager(pool, cfg.DBStatementTimeout)

	client, err := broker.NewClient(ctx, broker.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()
	publisher := broker.NewPublisher(client)

	m := metrics.New()
	m.RegisterPool(pool.Stats)

	// Token cleanup needs no JWT signing, only the token repository.
	authService := auth.NewService(
		auth_repo.NewUserRepo(txm),
		auth_repo.NewTokenRepo(txm),
		txm,
		auth.NewJWTService(auth.DefaultJWTConfig(cfg.JWTSecret)),
		security.NewRoleAuthorizer(),
		auth.DefaultServiceConfig(),
	)

	h := &jobs.Handlers{
		Notifications: notification.NewService(messaging_repo.NewNotificationRepo(txm), publisher),
		Messages:      messaging.NewService(messaging_repo.NewMessageRepo(txm), txm),
		Outbox:        postgres.NewOutboxRelay(txm, cfg.OutboxBatchSize, publisher),
		Tokens:        authService,
		Observer:      m,
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		Concurrency: cfg.WorkerConcurrency,
		Logger:      log,
		Handlers:    h.TaskHandlers(),
		Cron: jobs.Schedule(jobs.ScheduleConfig{
			NotificationsDispatch: cfg.NotifySweepCron,
			MessagesPromote:       cfg.MessagePromoteCron,
			OutboxRelay:           cfg.OutboxRelayCron,
			AuthCleanupTokens:     cfg.TokenCleanupCron,
		}),
	})
	if err != nil {
		return fmt.Errorf("create worker: %w", err)
	}

	metricsServer := &http.Server{
		Addr:              cfg.WorkerMetricsAddr,
		Handler:           m.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return worker.Run(gctx)
	})
	g.Go(func() error {
		log.Infow("worker metrics listening", "addr", cfg.WorkerMetricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return metricsServer.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
