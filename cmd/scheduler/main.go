package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/prediction-pool/internal/app"
	"github.com/riskibarqy/prediction-pool/internal/config"
	"github.com/riskibarqy/prediction-pool/internal/observability"
	"github.com/riskibarqy/prediction-pool/internal/platform/logging"
)

func main() {
	runOnce := flag.String("run", "", "run a single job by name and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(logging.Options{
		Level:          cfg.LogLevel,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.ServiceVersion,
		Environment:    cfg.AppEnv,
	})
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger, *runOnce); err != nil {
		logger.Error("scheduler failed", "error", err)
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *logging.Logger, runOnce string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		return fmt.Errorf("init uptrace: %w", err)
	}
	stopProfiler, err := observability.InitPyroscope(cfg, logger)
	if err != nil {
		return fmt.Errorf("init pyroscope: %w", err)
	}

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := a.Close(shutdownCtx); err != nil {
			logger.Error("close app", "error", err)
		}
		if err := stopProfiler(); err != nil {
			logger.Error("stop pyroscope", "error", err)
		}
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error("shutdown uptrace", "error", err)
		}
	}()

	if runOnce != "" {
		logger.Info("running job once", "job", runOnce)
		return a.Scheduler.RunJob(ctx, runOnce)
	}

	a.Scheduler.Start(ctx)
	logger.Info("scheduler started", "jobs", a.Scheduler.JobNames())
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.JobTimeout)
	defer cancel()
	if err := a.Scheduler.Stop(stopCtx); err != nil {
		logger.Warn("scheduler stop timed out", "error", err)
	}
	logger.Info("scheduler stopped")
	return nil
}
