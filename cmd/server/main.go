package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/computeledger/internal/adapter/http"
	"github.com/iho/computeledger/internal/adapter/http/handler"
	"github.com/iho/computeledger/internal/adapter/http/middleware"
	postgresRepo "github.com/iho/computeledger/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/computeledger/internal/adapter/repository/redis"
	"github.com/iho/computeledger/internal/infrastructure/auth"
	"github.com/iho/computeledger/internal/infrastructure/config"
	"github.com/iho/computeledger/internal/infrastructure/eventpublisher"
	"github.com/iho/computeledger/internal/infrastructure/logger"
	"github.com/iho/computeledger/internal/infrastructure/metrics"
	"github.com/iho/computeledger/internal/infrastructure/postgres"
	"github.com/iho/computeledger/internal/infrastructure/redis"
	"github.com/iho/computeledger/internal/usecase"
)

const limiterIdleTimeout = 10 * time.Minute

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "computeledger: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DatabaseMigrateOnStart {
		if err := postgres.RunMigrations(cfg.DatabaseURL, log); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseConnectTimeout,
		Logger:         &log,
	})
	if err != nil {
		return fmt.Errorf("failed to connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	// Repositories
	txManager := postgresRepo.NewTxManager(pool)
	walletRepo := postgresRepo.NewWalletRepository(pool)
	entryRepo := postgresRepo.NewLedgerEntryRepository(pool)
	ledgerRepo := postgresRepo.NewLedgerRepository(pool)
	outboxRepo := postgresRepo.NewOutboxRepository(pool)
	idGen := postgresRepo.NewULIDGenerator()

	// Use cases
	computeUC := usecase.NewComputeUseCase(txManager, walletRepo, entryRepo, outboxRepo, idGen, usecase.WithObserver(m))
	walletUC := usecase.NewWalletUseCase(walletRepo, entryRepo)
	ledgerUC := usecase.NewLedgerUseCase(ledgerRepo)

	routerCfg := httpAdapter.RouterConfig{
		ComputeHandler: handler.NewComputeHandler(computeUC),
		WalletHandler:  handler.NewWalletHandler(walletUC),
		LedgerHandler:  handler.NewLedgerHandler(ledgerUC),
		Logger:         log,
		Metrics:        m,
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}),
		IdempotencyTTL: cfg.IdempotencyTTL,
		RequestTimeout: cfg.HTTPRequestTimeout,
	}

	var redisPinger handler.Pinger
	if cfg.RedisURL != "" {
		redisClient, err := redis.NewClient(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer redisClient.Close()
		log.Info().Msg("connected to redis")

		routerCfg.IdempotencyStore = redisRepo.NewIdempotencyStore(redisClient)
		redisPinger = redis.Pinger(redisClient)
	} else {
		log.Warn().Msg("REDIS_URL not set, idempotency keys disabled")
	}
	routerCfg.HealthHandler = handler.NewHealthHandler(pool.Ping, redisPinger)

	if cfg.AuthEnabled {
		routerCfg.TokenVerifier = auth.NewJWTManager(cfg.JWTSecret, cfg.JWTExpiration)
	}

	if cfg.RateLimitRPS > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).OnLimit(m.RateLimitHits.Inc)
		routerCfg.RateLimiter = limiter
		go sweepLimiters(ctx, limiter)
	}

	// Outbox worker
	publisher, closer, err := buildPublisher(cfg, log)
	if err != nil {
		return fmt.Errorf("failed to create event publisher: %w", err)
	}
	if closer != nil {
		defer closer.Close()
	}
	if publisher != nil {
		worker := eventpublisher.NewEventPublisher(eventpublisher.Config{
			OutboxRepo: outboxRepo,
			Publisher:  publisher,
			Logger:     log,
			Observe:    m.ObservePublish,
			BatchSize:  cfg.OutboxBatchSize,
			Interval:   cfg.OutboxInterval,
		})
		go func() {
			if err := worker.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("event publisher stopped")
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      httpAdapter.NewRouter(routerCfg),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// buildPublisher returns the outbox publisher selected by EVENT_PUBLISHER.
// A nil publisher disables the outbox worker; events stay queued.
func buildPublisher(cfg *config.Config, log zerolog.Logger) (eventpublisher.Publisher, io.Closer, error) {
	switch cfg.EventPublisher {
	case config.PublisherNone, "":
		return nil, nil, nil
	case config.PublisherLog:
		return eventpublisher.NewLogPublisher(log), nil, nil
	case config.PublisherNATS:
		p, err := eventpublisher.NewNATSPublisher(cfg.NATSURL, cfg.NATSSubjectPrefix)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	case config.PublisherKafka:
		p := eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		return p, p, nil
	default:
		return nil, nil, fmt.Errorf("unknown event publisher %q", cfg.EventPublisher)
	}
}

func sweepLimiters(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(limiterIdleTimeout)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.CleanupLimiters(limiterIdleTimeout)
		}
	}
}
