package scheduler

import (
	"context"
	"fmt"
	"time"

	"clinic_intake_backend/internal/email"
	"clinic_intake_backend/internal/journey/domain"
	"clinic_intake_backend/internal/realtime"
	"clinic_intake_backend/platform/logger"
)

// SnapshotFetcher loads the pipeline tables.
type SnapshotFetcher interface {
	Fetch(ctx context.Context) (domain.Snapshot, error)
}

// AlertPublisher relays realtime events to API instances.
type AlertPublisher interface {
	Publish(ctx context.Context, event realtime.Event) error
}

// StallAlert is the payload of a stall_alert event.
type StallAlert struct {
	Count     int               `json:"count"`
	Prospects []domain.Prospect `json:"prospects"`
}

// StallSweeper finds prospects stuck past their stage threshold that need
// staff action, then emails a digest and alerts connected staff.
type StallSweeper struct {
	fetcher SnapshotFetcher
	sender  email.Sender
	alerts  AlertPublisher
	to      string
	log     *logger.Logger
	now     func() time.Time
}

// NewStallSweeper creates a sweeper. alerts may be nil and an empty to skips the digest.
func NewStallSweeper(fetcher SnapshotFetcher, sender email.Sender, alerts AlertPublisher, to string, log *logger.Logger) *StallSweeper {
	return &StallSweeper{fetcher: fetcher, sender: sender, alerts: alerts, to: to, log: log, now: time.Now}
}

// Sweep returns the stalled prospects it reported.
func (s *StallSweeper) Sweep(ctx context.Context) ([]domain.Prospect, error) {
	snap, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("stall sweep fetch: %w", err)
	}

	board := domain.BuildBoard(snap, s.now())
	stalled := board.StalledActionable()
	if len(stalled) == 0 {
		s.log.Debug("stall sweep found nothing")
		return stalled, nil
	}

	if s.alerts != nil {
		event := realtime.Event{
			Type:    realtime.EventStallAlert,
			Message: fmt.Sprintf("%d prospects waiting on follow-up", len(stalled)),
			Data:    StallAlert{Count: len(stalled), Prospects: stalled},
		}
		if err := s.alerts.Publish(ctx, event); err != nil {
			s.log.Warn("stall alert publish failed", "error", err)
		}
	}

	if s.to != "" {
		items := make([]email.StallDigestItem, 0, len(stalled))
		for _, p := range stalled {
			items = append(items, email.StallDigestItem{
				PatientName:  p.Name,
				Stage:        string(p.CurrentStage),
				WaitingSince: p.CreatedAt,
			})
		}
		if err := s.sender.SendStallDigestEmail(ctx, s.to, items); err != nil {
			return stalled, fmt.Errorf("stall digest: %w", err)
		}
	}

	s.log.Info("stall sweep reported prospects", "count", len(stalled))
	return stalled, nil
}
