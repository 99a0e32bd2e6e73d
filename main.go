package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scango/internal/app"
	"scango/internal/config"
	"scango/internal/events"
	"scango/internal/logging"
	"scango/internal/realtime"
	"scango/internal/seed"
	"scango/internal/session"
	"scango/pkg/rabbitmq"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	// --- Configuration ---
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Must(cfg.LogDevelopment)
	defer logger.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
	logger.Info("server gracefully stopped")
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	// --- Database ---
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}

	deps := app.Dependencies{DB: db, Logger: logger}

	// --- Redis (optional): shared change notifications and sessions ---
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis at %s: %w", cfg.RedisAddr, err)
		}
		deps.Broker = realtime.NewRedisBroker(client, logger.Named("realtime"))
		deps.Sessions = session.NewRedisStore(client)
		logger.Info("redis connected", zap.String("addr", cfg.RedisAddr))
	}

	g, gctx := errgroup.WithContext(ctx)

	// --- Order events ---
	switch cfg.EventBroker {
	case config.BrokerAMQP:
		mqClient, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQURL}, logger.Named("rabbitmq"))
		if err != nil {
			return err
		}
		defer mqClient.Close()
		deps.Events = events.NewAMQPPublisher(mqClient)

		g.Go(func() error {
			return mqClient.Consume(gctx, events.LogHandler(logger.Named("order-events")))
		})
	case config.BrokerKafka:
		writer := events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer writer.Close()
		deps.Events = events.NewKafkaPublisher(writer)
		logger.Info("publishing order events to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	a, err := app.New(cfg, deps)
	if err != nil {
		return fmt.Errorf("failed to assemble application: %w", err)
	}

	// --- Starter catalog ---
	if cfg.SeedCatalog {
		catalog, err := seed.Load(cfg.SeedFile)
		if err != nil {
			return err
		}
		if _, err := seed.Apply(ctx, a.ProductRepository(), catalog, logger.Named("seed")); err != nil {
			return err
		}
	}

	// --- HTTP server ---
	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", cfg.AppPort))
		return a.Fiber.Listen(cfg.AppPort)
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		return a.Fiber.ShutdownWithTimeout(10 * time.Second)
	})

	return g.Wait()
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseDSN)
	default:
		dialector = sqlite.Open(cfg.DatabaseDSN)
	}
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", cfg.DBDriver, err)
	}
	return db, nil
}
