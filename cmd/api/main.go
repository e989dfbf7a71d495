package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"clinic_intake_backend/internal/carerequests"
	"clinic_intake_backend/internal/discharge"
	"clinic_intake_backend/internal/education"
	"clinic_intake_backend/internal/email"
	"clinic_intake_backend/internal/events"
	apphttp "clinic_intake_backend/internal/http"
	"clinic_intake_backend/internal/http/router"
	"clinic_intake_backend/internal/intake"
	"clinic_intake_backend/internal/journey"
	"clinic_intake_backend/internal/leads"
	"clinic_intake_backend/internal/notification"
	"clinic_intake_backend/internal/realtime"
	"clinic_intake_backend/internal/scheduler"
	"clinic_intake_backend/platform/config"
	"clinic_intake_backend/platform/db"
	"clinic_intake_backend/platform/logger"
	"clinic_intake_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg, log)
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

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
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	emailQueue, closeQueue := initEmailQueue(cfg, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	hub := realtime.NewHub(log)
	startRealtimeForwarder(ctx, cfg, hub, log)

	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(sender, emailQueue, log)
	notificationModule.RegisterHandlers(eventBus)

	journeyModule := journey.NewModule(pool, eventBus, hub, cfg, log)
	go journeyModule.RunListener(ctx)

	leadsModule := leads.NewModule(pool, eventBus, val, cfg)
	careRequestsModule := carerequests.NewModule(pool, eventBus, val, cfg)
	intakeModule := intake.NewModule(pool, eventBus, val, cfg)
	dischargeModule := discharge.NewModule(pool, eventBus, val)
	educationModule, err := education.NewModule(val)
	if err != nil {
		log.Error("failed to load education library", "error", err)
		panic("failed to load education library: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:   cfg,
		Logger:   log,
		Health:   db.NewPoolAdapter(pool),
		EventBus: eventBus,
		Modules: []apphttp.Module{
			journeyModule,
			leadsModule,
			careRequestsModule,
			intakeModule,
			dischargeModule,
			educationModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		// SSE streams never finish on their own
		hub.Close()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		eventBus.Wait()
		journeyModule.Tracker().Wait()
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

func initEmailQueue(cfg config.SchedulerConfig, log *logger.Logger) (notification.EmailQueue, func()) {
	if cfg.GetRedisURL() == "" {
		log.Warn("REDIS_URL not configured; emails are sent inline")
		return nil, nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize email queue client", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

// startRealtimeForwarder relays events published by the scheduler process to
// this instance's SSE clients.
func startRealtimeForwarder(ctx context.Context, cfg *config.Config, hub *realtime.Hub, log *logger.Logger) {
	if !cfg.IsRedisEnabled() {
		return
	}

	rdb, err := realtime.NewRedisClient(ctx, cfg.GetRedisURL(), cfg.GetRedisTLSInsecure())
	if err != nil {
		log.Error("failed to connect realtime redis; cross-process alerts disabled", "error", err)
		return
	}
	bus := realtime.NewRedisBus(rdb, cfg.GetRealtimeChannel(), log)
	if err := bus.StartForwarder(ctx, hub.Broadcast); err != nil {
		log.Error("failed to start realtime forwarder", "error", err)
		_ = bus.Close()
		return
	}
	go func() {
		<-ctx.Done()
		_ = bus.Close()
	}()
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
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
