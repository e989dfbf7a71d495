package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinic_intake_backend/internal/email"
	"clinic_intake_backend/internal/events"
	"clinic_intake_backend/internal/scheduler"
	"clinic_intake_backend/platform/logger"

	"github.com/google/uuid"
)

type testSender struct {
	intakeCalls int
	visitCalls  int
	lastURL     string
}

func (s *testSender) SendIntakeFormsEmail(_ context.Context, _, _, formURL, _ string) error {
	s.intakeCalls++
	s.lastURL = formURL
	return nil
}

func (s *testSender) SendVisitScheduledEmail(context.Context, string, string, time.Time, string) error {
	s.visitCalls++
	return nil
}

func (s *testSender) SendStallDigestEmail(context.Context, string, []email.StallDigestItem) error {
	return nil
}

type testQueue struct {
	payloads []scheduler.EmailPayload
	err      error
}

func (q *testQueue) EnqueueEmail(_ context.Context, p scheduler.EmailPayload) error {
	if q.err != nil {
		return q.err
	}
	q.payloads = append(q.payloads, p)
	return nil
}

func formsSent() events.IntakeFormsSent {
	return events.IntakeFormsSent{
		BaseEvent:     events.NewBaseEvent(),
		CareRequestID: uuid.New(),
		IntakeFormID:  uuid.New(),
		PatientName:   "Jane Roe",
		PatientEmail:  "jane@example.com",
		FormURL:       "https://clinic.test/intake/forms/1",
		TemplateType:  "neuro",
	}
}

func TestHandleSendsInlineWithoutQueue(t *testing.T) {
	sender := &testSender{}
	m := New(sender, nil, logger.Discard())

	if err := m.Handle(context.Background(), formsSent()); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if sender.intakeCalls != 1 || sender.lastURL != "https://clinic.test/intake/forms/1" {
		t.Fatalf("sender = %+v", sender)
	}

	visit := events.VisitScheduled{
		BaseEvent:     events.NewBaseEvent(),
		PatientName:   "Jane Roe",
		PatientEmail:  "jane@example.com",
		ScheduledDate: time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC),
		TemplateType:  "msk",
	}
	if err := m.Handle(context.Background(), visit); err != nil {
		t.Fatalf("Handle visit: %v", err)
	}
	if sender.visitCalls != 1 {
		t.Fatalf("visitCalls = %d", sender.visitCalls)
	}
}

func TestHandleEnqueuesWhenQueueConfigured(t *testing.T) {
	sender := &testSender{}
	queue := &testQueue{}
	m := New(sender, queue, logger.Discard())

	if err := m.Handle(context.Background(), formsSent()); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(queue.payloads) != 1 || sender.intakeCalls != 0 {
		t.Fatalf("queued %d, inline %d", len(queue.payloads), sender.intakeCalls)
	}
	p := queue.payloads[0]
	if p.Kind != scheduler.EmailIntakeForms || p.To != "jane@example.com" || p.TemplateType != "neuro" {
		t.Fatalf("payload = %+v", p)
	}
}

func TestHandleFallsBackInlineWhenEnqueueFails(t *testing.T) {
	sender := &testSender{}
	m := New(sender, &testQueue{err: errors.New("redis down")}, logger.Discard())

	if err := m.Handle(context.Background(), formsSent()); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if sender.intakeCalls != 1 {
		t.Fatalf("intakeCalls = %d, want inline fallback", sender.intakeCalls)
	}
}

func TestHandleSkipsMissingRecipient(t *testing.T) {
	sender := &testSender{}
	m := New(sender, nil, logger.Discard())
	evt := formsSent()
	evt.PatientEmail = ""

	if err := m.Handle(context.Background(), evt); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if sender.intakeCalls != 0 {
		t.Fatal("email sent without recipient")
	}
}

func TestRegisterHandlersWithBus(t *testing.T) {
	bus := events.NewInMemoryBus(logger.Discard())
	sender := &testSender{}
	New(sender, nil, logger.Discard()).RegisterHandlers(bus)

	if err := bus.PublishSync(context.Background(), formsSent()); err != nil {
		t.Fatalf("PublishSync: %v", err)
	}
	if sender.intakeCalls != 1 {
		t.Fatalf("intakeCalls = %d", sender.intakeCalls)
	}
}
