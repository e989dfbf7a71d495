package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic_intake_backend/internal/email"
	journeyrepo "clinic_intake_backend/internal/journey/repository"
	journeyservice "clinic_intake_backend/internal/journey/service"
	"clinic_intake_backend/internal/realtime"
	"clinic_intake_backend/internal/scheduler"
	"clinic_intake_backend/platform/config"
	"clinic_intake_backend/platform/db"
	"clinic_intake_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting scheduler", "env", cfg.Env)

	if !cfg.IsRedisEnabled() {
		panic("REDIS_URL is required for the scheduler")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	rdb, err := realtime.NewRedisClient(ctx, cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	alerts := realtime.NewRedisBus(rdb, cfg.GetRealtimeChannel(), log)
	defer func() { _ = alerts.Close() }()

	fetcher := journeyservice.NewFetcher(journeyrepo.New(pool))
	sweeper := scheduler.NewStallSweeper(fetcher, sender, alerts, cfg.GetFrontDeskEmail(), log.WithComponent("stall_sweeper"))

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	dispatcher := scheduler.NewSweepDispatcher(client, cfg.GetStallSweepInterval(), log)
	go dispatcher.Run(ctx)

	worker, err := scheduler.NewWorker(cfg, sender, sweeper, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}

	worker.Run(ctx)
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return errors.New(name + ": invalid retry attempts")
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
