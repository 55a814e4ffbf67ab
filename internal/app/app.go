// Package app assembles the reputation service: storage, cache, event bus,
// services, and the HTTP server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/cache"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/config"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/event"
	handlerhttp "github.com/InfofriyendsTechnology/RateOn-sub000/internal/handler/http"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/repository/postgres"
	"github.com/InfofriyendsTechnology/RateOn-sub000/internal/service"
	"github.com/InfofriyendsTechnology/RateOn-sub000/migrations"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/database"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/health"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/kafka"
	"github.com/InfofriyendsTechnology/RateOn-sub000/pkg/logger"
)

// App holds the assembled service and its closable dependencies.
type App struct {
	cfg    *config.Config
	logger *slog.Logger

	pool     *pgxpool.Pool
	redis    *redis.Client
	producer *kafka.Producer
	server   *http.Server
}

// New builds the application from configuration.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	log := logger.New(cfg.ServiceName, cfg.LogLevel)
	slog.SetDefault(log)

	pool, err := database.NewPostgresPool(ctx, cfg.PostgresPoolConfig(), log)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := database.RunMigrations(ctx, pool, migrations.Files, log); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	database.RegisterPoolMetrics(pool, cfg.ServiceName)

	redisClient, err := database.NewRedisClient(ctx, cfg.RedisClientConfig())
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}

	var (
		producer *kafka.Producer
		events   service.Notifier
	)
	if cfg.Kafka.Enabled {
		producer = kafka.NewProducer(kafka.DefaultProducerConfig(cfg.Kafka.Brokers), log)
		events = event.NewPublisher(producer, log)
	}

	// Repositories.
	reviewRepo := postgres.NewReviewRepository(pool)
	itemRepo := postgres.NewItemRepository(pool)
	businessRepo := postgres.NewBusinessRepository(pool)
	userRepo := postgres.NewUserRepository(pool)
	activityRepo := postgres.NewActivityRepository(pool)
	socialRepo := postgres.NewSocialRepository(pool)

	// Services.
	businessCache := cache.NewBusinessCache(redisClient, cfg.Cache.BusinessTTL, log)
	aggregator := service.NewAggregateService(itemRepo, reviewRepo, businessRepo, businessCache, events, log)
	trust := service.NewTrustService(activityRepo, userRepo, events, log)
	reviews := service.NewReviewService(reviewRepo, itemRepo, businessRepo, userRepo, socialRepo, aggregator, trust, events, log)
	businesses := service.NewBusinessService(businessRepo, businessCache, trust, log)
	items := service.NewItemService(itemRepo, businessRepo, aggregator, trust, log)
	social := service.NewSocialService(socialRepo, userRepo, trust, log)
	users := service.NewUserService(userRepo)
	cascades := service.NewCascadeService(userRepo, reviewRepo, itemRepo, businessRepo, activityRepo, socialRepo, aggregator, log)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	if producer != nil {
		healthHandler.Register("kafka", producer.Ping)
	}

	router := handlerhttp.NewRouter(handlerhttp.RouterConfig{
		ServiceName: cfg.ServiceName,
		Logger:      log,
		Health:      healthHandler,
		Reviews:     handlerhttp.NewReviewHandler(reviews, log),
		Businesses:  handlerhttp.NewBusinessHandler(businesses, items, reviews, cascades, aggregator, users, log),
		Items:       handlerhttp.NewItemHandler(items, reviews, users, log),
		Users:       handlerhttp.NewUserHandler(users, trust, social, cascades, log),
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	return &App{
		cfg:      cfg,
		logger:   log,
		pool:     pool,
		redis:    redisClient,
		producer: producer,
		server:   server,
	}, nil
}

// Run serves HTTP until SIGINT/SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server listening", slog.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-stop:
		a.logger.Info("shutting down", slog.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.server.Shutdown(ctx); err != nil {
		a.logger.Error("http shutdown failed", slog.String("error", err.Error()))
	}

	a.Close()
	return nil
}

// Close releases every held connection.
func (a *App) Close() {
	if a.producer != nil {
		if err := a.producer.Close(); err != nil {
			a.logger.Error("kafka close failed", slog.String("error", err.Error()))
		}
	}
	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close failed", slog.String("error", err.Error()))
	}
	a.pool.Close()
}
