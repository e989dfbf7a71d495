package scheduler

import (
	"context"
	"time"

	"clinic_intake_backend/platform/logger"
)

const defaultStallSweepInterval = time.Hour

// SweepEnqueuer enqueues stall sweep tasks.
type SweepEnqueuer interface {
	EnqueueStallSweep(ctx context.Context, window time.Duration) error
}

// SweepDispatcher periodically enqueues a stall sweep.
type SweepDispatcher struct {
	queue    SweepEnqueuer
	log      *logger.Logger
	interval time.Duration
}

func NewSweepDispatcher(queue SweepEnqueuer, interval time.Duration, log *logger.Logger) *SweepDispatcher {
	if interval <= 0 {
		interval = defaultStallSweepInterval
	}
	return &SweepDispatcher{queue: queue, log: log, interval: interval}
}

func (d *SweepDispatcher) Run(ctx context.Context) {
	if d == nil || d.queue == nil {
		return
	}

	d.dispatch(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.dispatch(ctx)
		}
	}
}

func (d *SweepDispatcher) dispatch(ctx context.Context) {
	// window slightly below the interval so the next tick is never a duplicate
	if err := d.queue.EnqueueStallSweep(ctx, d.interval-time.Second); err != nil {
		d.log.Warn("stall sweep enqueue failed", "error", err)
	}
}
