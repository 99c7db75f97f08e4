package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog"

	"github.com/imrishuroy/easyorder/internal/aws"
	"github.com/imrishuroy/easyorder/internal/config"
	"github.com/imrishuroy/easyorder/internal/logging"
	"github.com/imrishuroy/easyorder/internal/notify"
	"github.com/imrishuroy/easyorder/internal/orders"
	"github.com/imrishuroy/easyorder/internal/store"
)

func main() {
	cfg, err := config.Load(os.Getenv("EASYORDER_CONFIG_FILE"))
	if err != nil {
		fallback := logging.New(config.LogConfig{})
		fallback.Fatal().Err(err).Msg("failed to load config")
	}
	logger := logging.New(cfg.Log)

	if err := run(cfg, logger); err != nil {
		logger.Fatal().Err(err).Msg("worker stopped")
	}
}

func run(cfg *config.Config, logger zerolog.Logger) error {
	ctx := context.Background()

	db, err := store.Open(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	p := NewProcessor(orders.NewStore(db), logger)

	// RUN_LOCAL drains the queue with long polling instead of running under Lambda.
	if !cfg.Server.RunLocal {
		lambda.Start(p.Handle)
		return nil
	}

	if cfg.Queue.URL == "" {
		return errors.New("queue.url is required to run the worker locally")
	}
	clients, err := aws.NewAWSClients(ctx, cfg.AWS)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := notify.NewConsumer(clients.SQS, cfg.Queue.URL, cfg.Queue.WaitTime, cfg.Queue.MaxMessages, p.Process, logger)
	return consumer.Run(ctx)
}
