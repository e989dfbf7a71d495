package scheduler

import (
	"context"
	"fmt"

	"clinic_intake_backend/internal/email"
	"clinic_intake_backend/platform/config"
	"clinic_intake_backend/platform/logger"

	"github.com/hibiken/asynq"
)

type Worker struct {
	server  *asynq.Server
	mux     *asynq.ServeMux
	sender  email.Sender
	sweeper *StallSweeper
	log     *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, sender email.Sender, sweeper *StallSweeper, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queueName(cfg): 1,
		},
	})

	w := &Worker{
		server:  server,
		sender:  sender,
		sweeper: sweeper,
		log:     log,
	}
	w.mux = w.routes()
	return w, nil
}

func (w *Worker) routes() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskSendEmail, w.handleSendEmail)
	mux.HandleFunc(TaskStallSweep, w.handleStallSweep)
	return mux
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleSendEmail(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseEmailPayload(task)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	return payload.Deliver(ctx, w.sender)
}

func (w *Worker) handleStallSweep(ctx context.Context, _ *asynq.Task) error {
	if w.sweeper == nil {
		return nil
	}
	_, err := w.sweeper.Sweep(ctx)
	return err
}
