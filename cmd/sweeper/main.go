package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carematch/carematch/config"
	"github.com/carematch/carematch/internal/health"
	"github.com/carematch/carematch/internal/infrastructure/postgres"
	ctxlog "github.com/carematch/carematch/internal/log"
	"github.com/carematch/carematch/internal/metrics"
	"github.com/carematch/carematch/internal/sweep"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	logger.Info("db connected")

	metrics.Register()
	checker := health.NewChecker(pool, nil, logger, prometheus.DefaultRegisterer)

	sweeper := sweep.NewSweeper(
		postgres.NewNotificationRepository(pool),
		postgres.NewConfirmationRepository(pool),
		logger,
		time.Duration(cfg.RetentionDays)*24*time.Hour,
	)

	c := cron.New()
	if _, err := c.AddFunc(cfg.SweepCron, func() { sweeper.Run(ctx) }); err != nil {
		stop()
		log.Fatalf("cron expression %q: %v", cfg.SweepCron, err)
	}
	c.Start()
	logger.Info("sweeper scheduled", "cron", cfg.SweepCron, "retention_days", cfg.RetentionDays)

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)
	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()

	<-c.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}

	logger.Info("sweeper shut down")
}

func newLogger(env string, level slog.Level) *slog.Logger {
	var inner slog.Handler
	if env == "local" {
		inner = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      level,
			TimeFormat: time.Kitchen,
		})
	} else {
		inner = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: level,
		})
	}
	return slog.New(ctxlog.NewContextHandler(inner))
}
