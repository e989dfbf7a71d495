package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"clinic_intake_backend/internal/email"
	"clinic_intake_backend/internal/journey/domain"
	"clinic_intake_backend/internal/realtime"
	"clinic_intake_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

type recordingSender struct {
	mu      sync.Mutex
	intake  []string
	visits  []string
	digests [][]email.StallDigestItem
	err     error
}

func (s *recordingSender) SendIntakeFormsEmail(_ context.Context, to, _, _, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intake = append(s.intake, to)
	return s.err
}

func (s *recordingSender) SendVisitScheduledEmail(_ context.Context, to, _ string, _ time.Time, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.visits = append(s.visits, to)
	return s.err
}

func (s *recordingSender) SendStallDigestEmail(_ context.Context, _ string, items []email.StallDigestItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.digests = append(s.digests, items)
	return s.err
}

type staticFetcher struct {
	snap domain.Snapshot
	err  error
}

func (f staticFetcher) Fetch(context.Context) (domain.Snapshot, error) { return f.snap, f.err }

type recordingAlerts struct {
	events []realtime.Event
}

func (a *recordingAlerts) Publish(_ context.Context, e realtime.Event) error {
	a.events = append(a.events, e)
	return nil
}

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string                  { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool            { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string            { return "" }
func (c testSchedulerConfig) GetAsynqConcurrency() int             { return 1 }
func (c testSchedulerConfig) GetStallSweepInterval() time.Duration { return time.Hour }

var sweepNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func TestEmailPayloadDeliver(t *testing.T) {
	sender := &recordingSender{}
	ctx := context.Background()

	if err := (EmailPayload{Kind: EmailIntakeForms, To: "a@example.com", TemplateType: "msk"}).Deliver(ctx, sender); err != nil {
		t.Fatalf("intake: %v", err)
	}
	if err := (EmailPayload{Kind: EmailVisitScheduled, To: "b@example.com", TemplateType: "neuro"}).Deliver(ctx, sender); err != nil {
		t.Fatalf("visit: %v", err)
	}
	if len(sender.intake) != 1 || sender.intake[0] != "a@example.com" || len(sender.visits) != 1 {
		t.Fatalf("sender = %+v", sender)
	}

	err := (EmailPayload{Kind: "sms"}).Deliver(ctx, sender)
	if !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("unknown kind err = %v, want SkipRetry", err)
	}
}

func TestWorkerRoutesTasks(t *testing.T) {
	sender := &recordingSender{}
	w := &Worker{sender: sender, log: logger.Discard()}
	mux := w.routes()

	task, err := NewEmailTask(EmailPayload{Kind: EmailVisitScheduled, To: "jane@example.com", TemplateType: "msk"})
	if err != nil {
		t.Fatal(err)
	}
	if err := mux.ProcessTask(context.Background(), task); err != nil {
		t.Fatalf("email task: %v", err)
	}
	if len(sender.visits) != 1 {
		t.Fatalf("visits = %v", sender.visits)
	}

	bad := asynq.NewTask(TaskSendEmail, []byte("{"))
	if err := mux.ProcessTask(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("malformed payload err = %v, want SkipRetry", err)
	}

	if err := mux.ProcessTask(context.Background(), NewStallSweepTask()); err != nil {
		t.Fatalf("sweep without sweeper: %v", err)
	}
}

func TestStallSweeperReportsStalledActionable(t *testing.T) {
	snap := domain.Snapshot{Leads: []domain.Lead{
		{ID: uuid.New(), Name: "Old Lead", Email: "old@example.com", FunnelStage: "new", CreatedAt: sweepNow.Add(-72 * time.Hour)},
		{ID: uuid.New(), Name: "Fresh Lead", Email: "fresh@example.com", FunnelStage: "new", CreatedAt: sweepNow.Add(-2 * time.Hour)},
	}}
	sender := &recordingSender{}
	alerts := &recordingAlerts{}
	s := NewStallSweeper(staticFetcher{snap: snap}, sender, alerts, "desk@clinic.test", logger.Discard())
	s.now = func() time.Time { return sweepNow }

	stalled, err := s.Sweep(context.Background())
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(stalled) != 1 || stalled[0].Name != "Old Lead" {
		t.Fatalf("stalled = %+v", stalled)
	}
	if len(sender.digests) != 1 || len(sender.digests[0]) != 1 || sender.digests[0][0].PatientName != "Old Lead" {
		t.Fatalf("digests = %+v", sender.digests)
	}
	if len(alerts.events) != 1 || alerts.events[0].Type != realtime.EventStallAlert {
		t.Fatalf("alerts = %+v", alerts.events)
	}
	if payload, ok := alerts.events[0].Data.(StallAlert); !ok || payload.Count != 1 {
		t.Fatalf("alert data = %#v", alerts.events[0].Data)
	}
}

func TestStallSweeperQuietWhenNothingStalled(t *testing.T) {
	snap := domain.Snapshot{Leads: []domain.Lead{
		{ID: uuid.New(), Name: "Fresh", FunnelStage: "new", CreatedAt: sweepNow.Add(-time.Hour)},
	}}
	sender := &recordingSender{}
	alerts := &recordingAlerts{}
	s := NewStallSweeper(staticFetcher{snap: snap}, sender, alerts, "desk@clinic.test", logger.Discard())
	s.now = func() time.Time { return sweepNow }

	if _, err := s.Sweep(context.Background()); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if len(sender.digests) != 0 || len(alerts.events) != 0 {
		t.Fatalf("unexpected output: digests %d alerts %d", len(sender.digests), len(alerts.events))
	}
}

func TestStallSweeperFetchError(t *testing.T) {
	s := NewStallSweeper(staticFetcher{err: errors.New("db down")}, &recordingSender{}, nil, "", logger.Discard())
	if _, err := s.Sweep(context.Background()); err == nil {
		t.Fatal("expected fetch error")
	}
}

func TestClientEnqueue(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	ctx := context.Background()
	if err := c.EnqueueEmail(ctx, EmailPayload{Kind: EmailIntakeForms, To: "jane@example.com", TemplateType: "neuro"}); err != nil {
		t.Fatalf("EnqueueEmail: %v", err)
	}
	if err := c.EnqueueStallSweep(ctx, time.Minute); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	if err := c.EnqueueStallSweep(ctx, time.Minute); err != nil {
		t.Fatalf("duplicate sweep should be dropped silently: %v", err)
	}
}

func TestNewClientRequiresRedis(t *testing.T) {
	if _, err := NewClient(testSchedulerConfig{}); err == nil {
		t.Fatal("expected error without redis url")
	}
}

type countingEnqueuer struct {
	mu    sync.Mutex
	calls int
}

func (e *countingEnqueuer) EnqueueStallSweep(context.Context, time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.calls++
	return nil
}

func TestSweepDispatcherEnqueuesOnStart(t *testing.T) {
	q := &countingEnqueuer{}
	d := NewSweepDispatcher(q, time.Hour, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for {
		q.mu.Lock()
		calls := q.calls
		q.mu.Unlock()
		if calls == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("dispatcher never enqueued")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()
	<-done
}
