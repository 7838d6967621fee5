package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/layer-3/trustgate/adapters/postgres"
	"github.com/layer-3/trustgate/adapters/store"
	"github.com/layer-3/trustgate/config"
	"github.com/layer-3/trustgate/jobs"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.LoadWorker()
	if err != nil {
		zap.NewExample().Fatal("failed to load config", zap.Error(err))
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	// Redis entries expire natively and the memory store is swept in-process
	if cfg.RevocationBackend != config.BackendPostgres {
		logger.Info("revocation backend needs no worker", zap.String("backend", cfg.RevocationBackend))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(ctx, cfg.PGDSN)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()

	redisOpts, err := asynq.ParseRedisURI(cfg.RedisURL)
	if err != nil {
		logger.Fatal("parse redis url", zap.Error(err))
	}

	sweep := jobs.NewSweepJob(store.NewPostgresStore(db, cfg.RevocationRetention), cfg.RevocationRetention, logger.Named("sweep"))
	task, err := jobs.NewSweepTask(jobs.SweepPayload{})
	if err != nil {
		logger.Fatal("build sweep task", zap.Error(err))
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: redisOpts,
		Logger:    logger.Named("worker"),
		Handlers:  []jobs.TaskHandler{{Type: jobs.TaskTypeRevocationSweep, Handler: sweep.Handle}},
		Cron:      []jobs.CronRegistration{{Spec: cfg.SweepSpec, Task: task}},
	})
	if err != nil {
		logger.Fatal("init worker", zap.Error(err))
	}

	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal("worker stopped", zap.Error(err))
	}
}
