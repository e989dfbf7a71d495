package changefeed

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"clinic_intake_backend/platform/logger"

	"github.com/jackc/pgx/v5/pgconn"
)

type fakeConn struct {
	notes   chan *pgconn.Notification
	fail    chan error
	execSQL []string
	mu      sync.Mutex
	closed  atomic.Bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{notes: make(chan *pgconn.Notification, 8), fail: make(chan error, 1)}
}

func (c *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.mu.Lock()
	c.execSQL = append(c.execSQL, sql)
	c.mu.Unlock()
	return pgconn.CommandTag{}, nil
}

func (c *fakeConn) WaitForNotification(ctx context.Context) (*pgconn.Notification, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-c.fail:
		return nil, err
	case n := <-c.notes:
		return n, nil
	}
}

func (c *fakeConn) Close(context.Context) error {
	c.closed.Store(true)
	return nil
}

func (c *fakeConn) send(payload string) {
	c.notes <- &pgconn.Notification{Channel: "intake_changes", Payload: payload}
}

func recv(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e := <-ch:
		return e
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantErr bool
	}{
		{name: "insert", payload: `{"table":"intake_forms","eventType":"INSERT","new":{"id":"a","status":"submitted"},"old":null}`},
		{name: "lowercase op", payload: `{"table":"intakes","eventType":"update","new":{"id":"b"},"old":{"id":"b"}}`},
		{name: "missing table", payload: `{"eventType":"INSERT"}`, wantErr: true},
		{name: "unknown op", payload: `{"table":"intakes","eventType":"TRUNCATE"}`, wantErr: true},
		{name: "garbage", payload: `nope`, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.payload)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Decode err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEventAccessors(t *testing.T) {
	e, err := Decode(`{"table":"intakes","eventType":"DELETE","new":null,"old":{"id":"x1","score":3}}`)
	if err != nil {
		t.Fatal(err)
	}
	if e.RecordID() != "x1" {
		t.Fatalf("RecordID = %q", e.RecordID())
	}
	if e.Old.String("score") != "3" || e.New.String("status") != "" {
		t.Fatal("unexpected row accessors")
	}
}

func TestListenerDispatchesAndFiltersTables(t *testing.T) {
	conn := newFakeConn()
	l := NewListener(func(context.Context) (Conn, error) { return conn, nil }, "intake_changes", []string{"intake_forms", "intakes"}, logger.Discard())

	got := make(chan Event, 4)
	l.OnEvent(func(_ context.Context, e Event) { got <- e })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	conn.send(`{"table":"leads","eventType":"INSERT","new":{"id":"skip"}}`)
	conn.send(`{broken`)
	conn.send(`{"table":"intake_forms","eventType":"INSERT","new":{"id":"f1","status":"submitted"}}`)

	e := recv(t, got)
	if e.Table != "intake_forms" || e.RecordID() != "f1" {
		t.Fatalf("got %+v", e)
	}

	conn.mu.Lock()
	defer conn.mu.Unlock()
	if len(conn.execSQL) != 1 || conn.execSQL[0] != `LISTEN "intake_changes"` {
		t.Fatalf("exec = %v", conn.execSQL)
	}
}

func TestListenerReconnects(t *testing.T) {
	first := newFakeConn()
	second := newFakeConn()
	var dials atomic.Int32

	dial := func(context.Context) (Conn, error) {
		switch dials.Add(1) {
		case 1:
			return first, nil
		case 2:
			return nil, errors.New("connection refused")
		default:
			return second, nil
		}
	}

	l := NewListener(dial, "intake_changes", nil, logger.Discard())
	l.minBackoff = time.Millisecond
	l.maxBackoff = 5 * time.Millisecond

	got := make(chan Event, 4)
	l.OnEvent(func(_ context.Context, e Event) { got <- e })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go l.Run(ctx)

	first.fail <- errors.New("conn reset")
	second.send(`{"table":"intakes","eventType":"UPDATE","new":{"id":"i1","status":"completed"}}`)

	if e := recv(t, got); e.RecordID() != "i1" {
		t.Fatalf("got %+v", e)
	}
	if !first.closed.Load() {
		t.Fatal("dropped connection must be closed")
	}
	if dials.Load() < 3 {
		t.Fatalf("expected redial, dials = %d", dials.Load())
	}
}
