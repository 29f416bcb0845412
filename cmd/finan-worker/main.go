package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/felipetaua/finan/internal/amqp"
	"github.com/felipetaua/finan/internal/config"
	applog "github.com/felipetaua/finan/internal/log"
	"github.com/felipetaua/finan/internal/store"
	"github.com/felipetaua/finan/internal/worker"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentWorker})
	applog.SetDefault(logger)

	logger.Info("Starting finan-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}
	if cfg.AMQPURL == "" {
		logger.Error("AMQP_URL is required for the worker")
		os.Exit(1)
	}

	st, err := store.New(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to open store", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer st.Close()

	xpWorker := worker.NewXPWorker(st)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Consuming transaction events",
		"exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)

	err = amqp.ConsumeWithReconnect(ctx, cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, xpWorker.HandleTransactionCreated)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Worker stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("Worker stopped gracefully")
}
