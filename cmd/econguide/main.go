package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"econguide/internal/cache"
	"econguide/internal/cli"
	apphttp "econguide/internal/http"
	"econguide/internal/log"
	"econguide/internal/services"
)

const (
	topicCacheSize  = 64
	cleanupInterval = time.Minute
	shutdownTimeout = 30 * time.Second
)

func main() {
	cfg, logger := cli.Bootstrap()

	ctx, stop := cli.SignalContext(context.Background(), logger)
	defer stop()

	catalog, closeCatalog, err := cli.OpenCatalog(ctx, logger, cfg)
	if err != nil {
		logger.Error("Failed to initialize content backend", log.FieldError, err, log.FieldBackend, cfg.ContentBackend)
		os.Exit(1)
	}

	cacheManager := cache.NewManager(logger)
	cached := cache.NewCatalog(catalog, topicCacheSize, cfg.CacheTTL, cacheManager)
	cacheManager.StartCleanup(cleanupInterval)

	// Calculation events are optional; the guide works without a broker.
	var publisher services.EventPublisher
	amqpClient, err := cli.ConnectAMQP(logger, cfg)
	switch {
	case errors.Is(err, cli.ErrAMQPDisabled):
		logger.Info("Calculation events disabled - no AMQP_URL provided")
	case err != nil:
		logger.Warn("Calculation events disabled", log.FieldError, err)
	default:
		publisher = amqpClient
	}

	srv := apphttp.NewServer(":"+cfg.Port, apphttp.Options{
		Catalog:    cached,
		Calculator: services.NewCalculator(publisher, logger),
		Logger:     logger,
		RateLimit:  cfg.RateLimit,
	})

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting econguide server", "port", cfg.Port, log.FieldBackend, cfg.ContentBackend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	exitCode := 0
	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil {
			logger.Error("Server error", log.FieldError, err, "port", cfg.Port)
			exitCode = 1
		}
	}

	steps := []cli.ShutdownStep{
		{Name: "http", Fn: srv.Shutdown},
		{Name: "cache", Fn: func(context.Context) error { cacheManager.Stop(); return nil }},
		{Name: "backend", Fn: func(context.Context) error { return closeCatalog() }},
	}
	if amqpClient != nil {
		steps = append(steps, cli.ShutdownStep{Name: "amqp", Fn: func(context.Context) error { return amqpClient.Close() }})
	}
	if err := cli.GracefulShutdown(logger, shutdownTimeout, steps...); err != nil {
		exitCode = 1
	}

	stop()
	logger.Info("Server stopped gracefully")
	os.Exit(exitCode)
}
