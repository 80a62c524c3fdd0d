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
	"github.com/LuanMakohin/api-simples/internal/infra/external"
	"github.com/LuanMakohin/api-simples/internal/infra/memory"
	"github.com/LuanMakohin/api-simples/internal/infra/metrics"
	"github.com/LuanMakohin/api-simples/internal/infra/mongodb"
	"github.com/LuanMakohin/api-simples/internal/infra/postgres"
	"github.com/LuanMakohin/api-simples/internal/infra/rabbitmq"
	redisInfra "github.com/LuanMakohin/api-simples/internal/infra/redis"
	"github.com/LuanMakohin/api-simples/internal/logger"
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
	if cfg.QueueDriver != config.QueueRabbitMQ {
		log.Fatal().Str("driver", cfg.QueueDriver).Msg("the worker only consumes from RabbitMQ; the api settles in process with the memory driver")
	}

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

	collector := metrics.NewPrometheus()
	deps := worker.Dependencies{
		Users:        postgres.NewUserRepository(dbPool),
		Transfers:    postgres.NewTransferRepository(dbPool),
		Deposits:     postgres.NewDepositRepository(dbPool),
		Transactions: postgres.NewUow(dbPool),
		Authorizer:   external.NewAuthorizationClient(cfg.AuthorizationURL, cfg.GatewayTimeout),
		Notifier:     external.NewNotificationClient(cfg.NotificationURL, cfg.GatewayTimeout),
		Metrics:      collector,
	}

	redisClient, err := redisInfra.Connect(ctx, cfg.RedisAddr)
	if err != nil {
		log.Warn().Err(err).Msg("redis unavailable, notification dedup is per process")
		deps.NotificationLog = memory.NewCache()
	} else {
		defer redisClient.Close()
		deps.NotificationLog = redisInfra.NewNotificationLog(redisClient, 0)
	}

	mongoClient, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Warn().Err(err).Msg("mongodb unavailable, settlement audit disabled")
	} else {
		defer func() {
			if err := mongoClient.Disconnect(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to disconnect from MongoDB")
			}
		}()
		deps.Audit = mongodb.NewAuditRepository(mongoClient, cfg.MongoDatabase)
		log.Info().Msg("connected to MongoDB")
	}

	conn, err := rabbitmq.Dial(cfg.RabbitMQURL, "ledger_settlement_worker")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer conn.Close()

	// Republishing uses its own channel so it never competes with the consuming one.
	consumeCh, err := conn.Channel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open RabbitMQ channel")
	}
	defer consumeCh.Close()
	publishCh, err := conn.Channel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open RabbitMQ channel")
	}
	defer publishCh.Close()
	if err := rabbitmq.DeclareTopology(consumeCh); err != nil {
		log.Fatal().Err(err).Msg("failed to declare RabbitMQ topology")
	}

	consumer := rabbitmq.NewConsumer(consumeCh, rabbitmq.NewPublisher(publishCh), rabbitmq.ConsumerOptions{
		Workers:     cfg.Workers,
		MaxAttempts: cfg.QueueMaxAttempts,
		Backoff:     cfg.QueueRetryBackoff,
	})
	dispatcher := worker.NewSettlementDispatcher(deps)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return consumer.Consume(ctx, dispatcher.Handle) })

	if cfg.MetricsAddr != "" {
		srv := &http.Server{Addr: cfg.MetricsAddr, Handler: collector.Handler()}
		g.Go(func() error {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	log.Info().Msg("settlement worker started")
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("worker stopped with error")
		return
	}
	log.Info().Msg("worker stopped")
}
