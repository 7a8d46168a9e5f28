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
	"github.com/carematch/carematch/internal/email"
	"github.com/carematch/carematch/internal/events"
	"github.com/carematch/carematch/internal/health"
	"github.com/carematch/carematch/internal/infrastructure/postgres"
	ctxlog "github.com/carematch/carematch/internal/log"
	"github.com/carematch/carematch/internal/metrics"
	httptransport "github.com/carematch/carematch/internal/transport/http"
	"github.com/carematch/carematch/internal/transport/http/handler"
	"github.com/carematch/carematch/internal/usecase"
	"github.com/gin-gonic/gin"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := newLogger(cfg.Env, cfg.SlogLevel())

	if cfg.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		stop()
		log.Fatalf("db: %v", err)
	}
	defer pool.Close()

	var (
		redisDep  health.Pinger
		publisher events.Publisher = events.NewLogPublisher(logger)
	)
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			stop()
			log.Fatalf("redis: %v", err)
		}
		redisClient := redis.NewClient(opts)
		defer redisClient.Close()
		redisDep = health.RedisPinger{Client: redisClient}
		publisher = events.NewRedisPublisher(redisClient, logger)
	}

	profileRepo := postgres.NewProfileRepository(pool)
	freelancerRepo := postgres.NewFreelancerRepository(pool)
	jobRepo := postgres.NewJobRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	confirmationRepo := postgres.NewConfirmationRepository(pool)
	conversationRepo := postgres.NewConversationRepository(pool)

	sender := email.NewSender(cfg.Env, cfg.ResendAPIKey, cfg.ResendFrom, logger)

	jobUsecase := usecase.NewJobUsecase(jobRepo, freelancerRepo, conversationRepo,
		sender, publisher, logger, cfg.CandidateBatchLimit)
	jobHandler := handler.NewJobHandler(jobUsecase, logger)

	confirmationUsecase := usecase.NewConfirmationUsecase(confirmationRepo, notificationRepo,
		jobRepo, publisher, logger)
	confirmationHandler := handler.NewConfirmationHandler(confirmationUsecase, logger)

	metrics.Register()
	checker := health.NewChecker(pool, redisDep, logger, prometheus.DefaultRegisterer)

	srv := http.Server{
		Addr: ":" + cfg.Port,
		Handler: httptransport.NewRouter(logger, jobHandler, confirmationHandler, profileRepo,
			httptransport.RouterConfig{
				JWTSecret:      []byte(cfg.JWTSecret),
				RateLimitRPS:   cfg.RateLimitRPS,
				RateLimitBurst: cfg.RateLimitBurst,
			}),
	}

	metricsSrv := metrics.NewServer(":"+cfg.MetricsPort, checker)

	go func() {
		logger.Info("server started", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server: %v", err)
		}
	}()

	go func() {
		logger.Info("metrics server started", "port", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()

	<-ctx.Done()
	stop()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", "error", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		logger.Error("metrics server shutdown", "error", err)
	}
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
