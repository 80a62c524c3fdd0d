package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LuanMakohin/api-simples/internal/config"
	"github.com/LuanMakohin/api-simples/internal/gateway"
	"github.com/LuanMakohin/api-simples/internal/infra/external"
	"github.com/LuanMakohin/api-simples/internal/infra/http/handler"
	"github.com/LuanMakohin/api-simples/internal/infra/memory"
	"github.com/LuanMakohin/api-simples/internal/infra/metrics"
	"github.com/LuanMakohin/api-simples/internal/infra/postgres"
	"github.com/LuanMakohin/api-simples/internal/infra/rabbitmq"
	redisInfra "github.com/LuanMakohin/api-simples/internal/infra/redis"
	"github.com/LuanMakohin/api-simples/internal/logger"
	"github.com/LuanMakohin/api-simples/internal/usecase"
	"github.com/LuanMakohin/api-simples/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Setup(cfg.LogLevel, cfg.LogPretty)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("could not create database pool")
	}
	defer dbPool.Close()
	if err := dbPool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("database is not responding")
	}
	if err := postgres.Migrate(ctx, dbPool); err != nil {
		log.Fatal().Err(err).Msg("failed to migrate database")
	}
	log.Info().Msg("connected to PostgreSQL")

	var (
		idempotencyRepo gateway.IdempotencyRepository
		recentCache     gateway.RecentCache
		notificationLog gateway.NotificationLog
	)
	redisClient, err := redisInfra.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, falling back to in-process caches")
		cache := memory.NewCache()
		idempotencyRepo, recentCache, notificationLog = memory.NewIdempotencyStore(), cache, cache
	} else {
		defer redisClient.Close()
		log.Info().Msg("connected to Redis")
		idempotencyRepo = redisInfra.NewIdempotencyRepository(redisClient)
		recentCache = redisInfra.NewRecentCache(redisClient)
		notificationLog = redisInfra.NewNotificationLog(redisClient, 0)
	}

	collector := metrics.NewPrometheus()
	userRepository := postgres.NewUserRepository(dbPool)
	transferRepository := postgres.NewTransferRepository(dbPool)
	depositRepository := postgres.NewDepositRepository(dbPool)
	uow := postgres.NewUow(dbPool)

	g, ctx := errgroup.WithContext(ctx)

	var publisher gateway.TaskPublisher
	switch cfg.QueueDriver {
	case config.QueueMemory:
		queue := memory.NewQueue(1024, cfg.Workers, cfg.QueueMaxAttempts, cfg.QueueRetryBackoff)
		publisher = queue
		dispatcher := worker.NewSettlementDispatcher(worker.Dependencies{
			Users:           userRepository,
			Transfers:       transferRepository,
			Deposits:        depositRepository,
			Transactions:    uow,
			Authorizer:      external.NewAuthorizationClient(cfg.AuthorizationURL, cfg.GatewayTimeout),
			Notifier:        external.NewNotificationClient(cfg.NotificationURL, cfg.GatewayTimeout),
			NotificationLog: notificationLog,
			Metrics:         collector,
		})
		g.Go(func() error { return queue.Consume(ctx, dispatcher.Handle) })
		log.Info().Int("workers", cfg.Workers).Msg("settling in process")
	default:
		conn, err := rabbitmq.Dial(cfg.RabbitMQURL, "ledger_api_publisher")
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
		}
		defer conn.Close()
		ch, err := conn.Channel()
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open RabbitMQ channel")
		}
		defer ch.Close()
		if err := rabbitmq.DeclareTopology(ch); err != nil {
			log.Fatal().Err(err).Msg("failed to declare RabbitMQ topology")
		}
		publisher = rabbitmq.NewPublisher(ch)
		log.Info().Msg("connected to RabbitMQ")
	}

	recentOpts := usecase.RecentOptions{Cache: recentCache, Window: cfg.RecentWindow, TTL: cfg.RecentTTL}
	router := handler.NewRouter(handler.RouterConfig{
		Transfers: handler.NewTransferHandler(
			usecase.NewAdmitTransfer(userRepository, transferRepository, publisher),
			usecase.NewManageTransfers(transferRepository, userRepository, recentOpts),
		),
		Deposits: handler.NewDepositHandler(
			usecase.NewAdmitDeposit(userRepository, depositRepository, publisher),
			usecase.NewManageDeposits(depositRepository, userRepository, recentOpts),
		),
		Users:       handler.NewUserHandler(usecase.NewManageUsers(userRepository)),
		Idempotency: idempotencyRepo,
		Metrics:     metricsOnRouter(cfg, collector),
	})

	servers := []*http.Server{{Addr: cfg.HTTPAddr, Handler: router}}
	if cfg.MetricsAddr != "" {
		servers = append(servers, &http.Server{Addr: cfg.MetricsAddr, Handler: collector.Handler()})
	}
	for _, srv := range servers {
		g.Go(func() error {
			log.Info().Str("addr", srv.Addr).Msg("http server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("api stopped with error")
		return
	}
	log.Info().Msg("api stopped")
}

// metricsOnRouter mounts /metrics on the API port unless a dedicated address is configured.
func metricsOnRouter(cfg *config.Config, collector *metrics.Prometheus) http.Handler {
	if cfg.MetricsAddr != "" {
		return nil
	}
	return collector.Handler()
}
