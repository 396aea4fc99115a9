package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"dispatch/cmd"
	kafkain "dispatch/internal/adapters/in/kafka"
	"dispatch/internal/adapters/out/geo"
	kafkaout "dispatch/internal/adapters/out/kafka"
	"dispatch/internal/adapters/out/postgres"

	"github.com/sirupsen/logrus"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	if err := run(logger); err != nil {
		logger.WithError(err).Fatal("dispatch stopped with error")
	}
}

func run(logger *logrus.Logger) error {
	cfg, err := cmd.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse LOG_LEVEL: %w", err)
	}
	logger.SetLevel(level)
	entry := logrus.NewEntry(logger).WithField("service", "dispatch")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := gorm.Open(postgresdriver.Open(cfg.DSN()), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlDB.Close()
	}()

	if err = postgres.Migrate(db.WithContext(ctx)); err != nil {
		return err
	}

	geoClient, err := geo.NewDefaultDirectoryClient()
	if err != nil {
		return err
	}

	syncProducer, err := kafkaout.NewSyncProducer(cfg.KafkaBrokers())
	if err != nil {
		return err
	}
	producer, err := kafkaout.NewOrderStatusChangedProducer(
		syncProducer,
		cfg.KafkaOrderChangedTopic,
		kafkaout.DefaultBreakerSettings(),
		entry,
	)
	if err != nil {
		_ = syncProducer.Close()
		return err
	}
	defer func() {
		if closeErr := producer.Close(); closeErr != nil {
			entry.WithError(closeErr).Warn("kafka producer close failed")
		}
	}()

	root := cmd.NewCompositionRoot(cfg, db, geoClient, producer, entry)

	jobManager, outboxJob, err := root.CreateJobs()
	if err != nil {
		return err
	}
	if err = jobManager.StartAll(ctx); err != nil {
		return err
	}
	defer jobManager.StopAll()

	group, err := kafkain.NewConsumerGroup(cfg.KafkaBrokers(), cfg.KafkaConsumerGroup)
	if err != nil {
		return err
	}
	consumer, err := root.CreateBasketConfirmedConsumer(group)
	if err != nil {
		_ = group.Close()
		return err
	}
	consumer.Start(ctx)
	defer func() {
		if stopErr := consumer.Stop(); stopErr != nil {
			entry.WithError(stopErr).Warn("kafka consumer stop failed")
		}
	}()

	var background sync.WaitGroup
	defer background.Wait()

	background.Add(1)
	go func() {
		defer background.Done()
		if listenErr := root.CreateOutboxListener().Listen(ctx, outboxJob.Trigger); listenErr != nil {
			entry.WithError(listenErr).Error("outbox listener stopped, relying on scheduled outbox ticks")
		}
	}()

	server, err := root.CreateHTTPServer()
	if err != nil {
		return err
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(fmt.Sprintf("0.0.0.0:%s", cfg.HTTPPort))
	}()

	select {
	case <-ctx.Done():
		entry.Info("shutdown requested")
	case err = <-serverErr:
		stop()
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return errors.New("http server stopped unexpectedly")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err = server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}
