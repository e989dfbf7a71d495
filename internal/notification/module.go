// Package notification sends patient emails in response to domain events.
// Domain modules publish events and never talk to the mail provider.
package notification

import (
	"context"

	"clinic_intake_backend/internal/email"
	"clinic_intake_backend/internal/events"
	"clinic_intake_backend/internal/scheduler"
	"clinic_intake_backend/platform/logger"
)

// EmailQueue hands email delivery to the background worker.
type EmailQueue interface {
	EnqueueEmail(ctx context.Context, payload scheduler.EmailPayload) error
}

// Module handles all notification-related event subscriptions.
type Module struct {
	sender email.Sender
	queue  EmailQueue
	log    *logger.Logger
}

// New creates the module. With a nil queue emails are sent inline.
func New(sender email.Sender, queue EmailQueue, log *logger.Logger) *Module {
	return &Module{sender: sender, queue: queue, log: log}
}

// RegisterHandlers subscribes to the events that trigger patient emails.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.IntakeFormsSent{}.EventName(), m)
	bus.Subscribe(events.VisitScheduled{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.IntakeFormsSent:
		return m.dispatch(ctx, scheduler.EmailPayload{
			Kind:         scheduler.EmailIntakeForms,
			To:           e.PatientEmail,
			PatientName:  e.PatientName,
			FormURL:      e.FormURL,
			TemplateType: e.TemplateType,
		})
	case events.VisitScheduled:
		return m.dispatch(ctx, scheduler.EmailPayload{
			Kind:          scheduler.EmailVisitScheduled,
			To:            e.PatientEmail,
			PatientName:   e.PatientName,
			ScheduledDate: e.ScheduledDate,
			TemplateType:  e.TemplateType,
		})
	default:
		return nil
	}
}

func (m *Module) dispatch(ctx context.Context, payload scheduler.EmailPayload) error {
	if payload.To == "" {
		m.log.Warn("notification skipped, no recipient", "kind", payload.Kind)
		return nil
	}

	if m.queue != nil {
		err := m.queue.EnqueueEmail(ctx, payload)
		if err == nil {
			return nil
		}
		m.log.Warn("email enqueue failed, sending inline", "kind", payload.Kind, "error", err)
	}

	if err := payload.Deliver(ctx, m.sender); err != nil {
		m.log.Error("email send failed", "kind", payload.Kind, "error", err)
		return err
	}
	return nil
}
