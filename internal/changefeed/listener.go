package changefeed

import (
	"context"
	"errors"
	"time"

	"clinic_intake_backend/platform/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Handler receives every decoded event for a subscribed table.
type Handler func(ctx context.Context, event Event)

// Conn is the subset of *pgx.Conn the listener needs.
type Conn interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

// Dialer opens a dedicated connection for LISTEN.
type Dialer func(ctx context.Context) (Conn, error)

// PgxDialer dials connString with pgx.
func PgxDialer(connString string) Dialer {
	return func(ctx context.Context) (Conn, error) {
		conn, err := pgx.Connect(ctx, connString)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// Listener holds a LISTEN connection and fans events out to handlers,
// reconnecting with exponential back-off when the connection drops.
type Listener struct {
	dial       Dialer
	channel    string
	tables     map[string]bool
	handlers   []Handler
	log        *logger.Logger
	minBackoff time.Duration
	maxBackoff time.Duration
}

// NewListener listens on channel and forwards events of the given tables.
func NewListener(dial Dialer, channel string, tables []string, log *logger.Logger) *Listener {
	allowed := make(map[string]bool, len(tables))
	for _, t := range tables {
		allowed[t] = true
	}
	return &Listener{
		dial:       dial,
		channel:    channel,
		tables:     allowed,
		log:        log.WithComponent("changefeed"),
		minBackoff: 500 * time.Millisecond,
		maxBackoff: 30 * time.Second,
	}
}

// OnEvent registers a handler. Handlers run sequentially on the listener
// goroutine and must not block.
func (l *Listener) OnEvent(h Handler) {
	l.handlers = append(l.handlers, h)
}

// Run blocks until ctx is cancelled.
func (l *Listener) Run(ctx context.Context) {
	backoff := l.minBackoff
	for {
		err := l.listen(ctx, func() { backoff = l.minBackoff })
		if ctx.Err() != nil {
			return
		}
		l.log.Warn("changefeed connection lost", "error", err, "retryIn", backoff)

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > l.maxBackoff {
			backoff = l.maxBackoff
		}
	}
}

func (l *Listener) listen(ctx context.Context, onConnected func()) error {
	conn, err := l.dial(ctx)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return err
	}
	onConnected()
	l.log.Info("changefeed listening", "channel", l.channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return err
		}
		if n == nil {
			return errors.New("nil notification")
		}
		l.dispatch(ctx, n.Payload)
	}
}

func (l *Listener) dispatch(ctx context.Context, payload string) {
	event, err := Decode(payload)
	if err != nil {
		l.log.Warn("dropping change notification", "error", err)
		return
	}
	if len(l.tables) > 0 && !l.tables[event.Table] {
		return
	}
	l.log.ChangeEvent(event.Table, event.EventType, event.RecordID())
	for _, h := range l.handlers {
		h(ctx, event)
	}
}
