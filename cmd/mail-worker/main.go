package main

import (
	"context"
	"errors"
	"os"
	"time"

	"cashflow/internal/amqp"
	"cashflow/internal/cli"
	"cashflow/internal/config"
	"cashflow/internal/log"
	"cashflow/internal/mail"
	"cashflow/internal/worker"
)

const sendTimeout = 15 * time.Second

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(log.ComponentWorker)
	cfg := cli.LoadAndValidateConfig(logger, (*config.Config).ValidateWorker)

	client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}
	defer client.Close()

	w := worker.NewMailWorker(mail.NewResendDispatcher(cfg.ResendAPIKey, cfg.MailFrom), sendTimeout, cfg.OTPTTL)

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(context.Context) {
		delivered, skipped, failed := w.Stats()
		logger.Info("Mail worker stopping",
			"delivered", delivered,
			"skipped", skipped,
			"failed", failed)
	})

	logger.Info("Starting mail worker", "queue", cfg.AMQPQueue, "exchange", cfg.AMQPExchange)
	if err := client.ConsumeMailJobs(ctx, w.HandleMailJob); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Mail consumption failed", log.FieldError, err)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
}
