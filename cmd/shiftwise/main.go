package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/shiftwise/shiftwise/internal/app"
	"github.com/shiftwise/shiftwise/internal/auth"
	"github.com/shiftwise/shiftwise/internal/observability"
	"github.com/shiftwise/shiftwise/internal/platform/cache"
	"github.com/shiftwise/shiftwise/internal/platform/db"
	"github.com/shiftwise/shiftwise/internal/shared"
	"github.com/shiftwise/shiftwise/internal/stats"
	"github.com/shiftwise/shiftwise/internal/timeclock"
	"github.com/shiftwise/shiftwise/internal/workers"
	"github.com/shiftwise/shiftwise/internal/workplace"
	"github.com/shiftwise/shiftwise/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)

	metrics := observability.NewMetrics()

	authRepo := auth.NewRepository(dbpool)
	sessionStore := auth.NewSessionStore(redisClient, cfg.SessionTTL)
	authService := auth.NewService(authRepo, sessionStore)
	authHandler := auth.NewHandler(logger, authService)

	timeclockRepo := timeclock.NewRepository(dbpool)
	timeclockService := timeclock.NewService(timeclockRepo, auditLogger, idempotencyStore)
	timeclockHandler := timeclock.NewHandler(logger, timeclockService, timeclockRepo, metrics)

	statsCache := stats.NewCache(redisClient, cfg.StatsCacheTTL)
	statsService := stats.NewService(timeclockRepo, statsCache)
	statsHandler := stats.NewHandler(logger, statsService)

	workplaceRepo := workplace.NewRepository(dbpool)
	workplaceService := workplace.NewService(workplaceRepo, auditLogger)
	workplaceHandler := workplace.NewHandler(logger, workplaceService)

	workersRepo := workers.NewRepository(dbpool)
	workersService := workers.NewService(workersRepo, workplaceRepo, timeclockService, statsService, auditLogger)
	workersHandler := workers.NewHandler(logger, workersService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:           logger,
		Config:           cfg,
		AuthService:      authService,
		AuthHandler:      authHandler,
		TimeclockHandler: timeclockHandler,
		StatsHandler:     statsHandler,
		WorkplaceHandler: workplaceHandler,
		WorkersHandler:   workersHandler,
		JobsHandler:      jobsHandler,
		Metrics:          metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
