package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/shiftwise/shiftwise/internal/app"
	"github.com/shiftwise/shiftwise/internal/platform/cache"
	"github.com/shiftwise/shiftwise/internal/platform/db"
	"github.com/shiftwise/shiftwise/internal/shared"
	"github.com/shiftwise/shiftwise/internal/stats"
	"github.com/shiftwise/shiftwise/internal/timeclock"
	"github.com/shiftwise/shiftwise/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	timeclockRepo := timeclock.NewRepository(pool)
	statsCache := stats.NewCache(redisClient, cfg.StatsCacheTTL)
	statsService := stats.NewService(timeclockRepo, statsCache)
	auditLogger := shared.NewAuditLogger(pool)

	warmupJob := jobs.NewStatsWarmupJob(statsService, pool, logger)
	staleScanJob := jobs.NewStaleShiftScanJob(pool, auditLogger, logger, cfg.StaleShiftThreshold)

	warmupTask, err := jobs.NewStatsWarmupTask(jobs.StatsWarmupPayload{})
	if err != nil {
		logger.Error("build warmup task", slog.Any("error", err))
		os.Exit(1)
	}
	staleScanTask, err := jobs.NewStaleShiftScanTask(jobs.StaleShiftScanPayload{})
	if err != nil {
		logger.Error("build stale scan task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskStatsWarmup, Handler: warmupJob.Handle},
			{Type: jobs.TaskStaleShiftScan, Handler: staleScanJob.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: "*/30 * * * *", Task: warmupTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: "0 * * * *", Task: staleScanTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
