// Package main is the entry point for the PharmaLedger API server.
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

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"pharmaledger/internal/config"
	"pharmaledger/internal/core/security"
	"pharmaledger/internal/domain"
	"pharmaledger/internal/domain/auth"
	"pharmaledger/internal/domain/notification"
	"pharmaledger/internal/infrastructure/broker"
	v1 "pharmaledger/internal/infrastructure/http/v1"
	"pharmaledger/internal/infrastructure/http/v1/handlers"
	"pharmaledger/internal/infrastructure/metrics"
	"pharmaledger/internal/infrastructure/storage/postgres"
	"pharmaledger/internal/infrastructure/storage/postgres/auth_repo"
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
		log.Errorw("server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger) error {
	log.Infow("starting pharmaledger server", "env", cfg.AppEnv, "version", handlers.Version)

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.DBMaxConns
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txm := postgres.NewTxManager(pool, cfg.DBStatementTimeout)

	checks := map[string]handlers.Pinger{"postgres": pool.Healthy}

	// --- Redis (optional for the API; notifications are delivered by the worker) ---
	var notifications notification.Publisher
	client, err := broker.NewClient(ctx, broker.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		log.Warnw("redis unavailable, live notifications disabled", "addr", cfg.RedisAddr, "error", err)
	} else {
		defer func() { _ = client.Close() }()
		notifications = broker.NewPublisher(client)
		checks["redis"] = redisPinger(client)
	}

	// --- Metrics ---
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		m = metrics.New()
		m.RegisterPool(pool.Stats)
	}

	// --- Auth ---
	jwtCfg := auth.DefaultJWTConfig(cfg.JWTSecret)
	jwtCfg.AccessTokenTTL = cfg.JWTAccessTTL
	jwtService := auth.NewJWTService(jwtCfg)

	authz := security.NewRoleAuthorizer()
	authCfg := auth.DefaultServiceConfig()
	authCfg.RefreshTokenExpiry = cfg.JWTRefreshTTL
	authService := auth.NewService(
		auth_repo.NewUserRepo(txm),
		auth_repo.NewTokenRepo(txm),
		txm,
		jwtService,
		authz,
		authCfg,
	)

	if cfg.BootstrapAdminUsername != "" {
		if err := authService.EnsureSuperAdmin(ctx, cfg.BootstrapAdminUsername, cfg.BootstrapAdminPassword); err != nil {
			return fmt.Errorf("bootstrap superadmin: %w", err)
		}
	}

	// --- Router ---
	var events domain.EventPublisher = postgres.NewOutboxPublisher(txm)
	router := v1.NewRouter(v1.RouterConfig{
		TxManager:          txm,
		Health:             handlers.NewHealthHandler(pool, checks),
		Logger:             log,
		JWTValidator:       jwtService,
		AuthService:        authService,
		Authorizer:         authz,
		Events:             events,
		Notifications:      notifications,
		Metrics:            m,
		DeviceIDs:          cfg.DeviceIDs,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Production:         cfg.IsProduction(),
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("server listening", "addr", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		log.Info("server stopped")
		return nil
	})
	return g.Wait()
}

func redisPinger(client *redis.Client) handlers.Pinger {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
