package main

import (
	"context"
	"errors"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"econguide/internal/cli"
	"econguide/internal/log"
	"econguide/internal/worker"
)

func main() {
	cfg, logger := cli.Bootstrap()
	logger = logger.WithComponent(log.ComponentWorker)
	logger.Info("Starting guide-worker", "report_interval", cfg.ReportInterval)

	amqpClient, err := cli.ConnectAMQP(logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize AMQP client", log.FieldError, err)
		os.Exit(1)
	}

	ctx, stop := cli.SignalContext(context.Background(), logger)
	defer stop()

	reporter := worker.NewReporter(worker.NewTally(), cfg.ReportInterval, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return amqpClient.ConsumeCalculations(gctx, reporter.HandleEvent)
	})
	g.Go(func() error {
		return reporter.Run(gctx)
	})

	exitCode := 0
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Message consumption failed", log.FieldError, err)
		exitCode = 1
	}

	if err := cli.GracefulShutdown(logger, 10*time.Second, cli.ShutdownStep{
		Name: "amqp",
		Fn:   func(context.Context) error { return amqpClient.Close() },
	}); err != nil {
		exitCode = 1
	}

	stop()
	logger.Info("Worker stopped")
	os.Exit(exitCode)
}
