package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"clinic_intake_backend/internal/events"
	"clinic_intake_backend/internal/journey/domain"
	"clinic_intake_backend/internal/realtime"
	"clinic_intake_backend/platform/apperr"
	"clinic_intake_backend/platform/logger"
)

const (
	msgLoadFailed      = "failed to load prospect journey"
	defaultRefreshTime = 30 * time.Second
)

// ErrSuperseded is returned by Refresh when a newer refresh started before
// this one finished; its result was discarded.
var ErrSuperseded = errors.New("journey refresh superseded")

// SnapshotFetcher loads the tracker input.
type SnapshotFetcher interface {
	Fetch(ctx context.Context) (domain.Snapshot, error)
}

// Broadcaster pushes events to connected staff.
type Broadcaster interface {
	Broadcast(event realtime.Event)
}

// JourneyUpdate is the payload of a journey_updated push.
type JourneyUpdate struct {
	Generation uint64         `json:"generation"`
	Summary    domain.Summary `json:"summary"`
}

type viewState struct {
	board      *domain.Board
	err        error
	generation uint64
	loaded     bool
}

// Tracker owns the current Prospect Journey view state. Every refresh takes
// a new generation number; only the newest generation may write the state.
type Tracker struct {
	fetcher SnapshotFetcher
	push    Broadcaster
	log     *logger.Logger
	now     func() time.Time
	timeout time.Duration

	issued atomic.Uint64
	mu     sync.RWMutex
	state  viewState
	wg     sync.WaitGroup
}

// NewTracker creates a tracker. push may be nil.
func NewTracker(fetcher SnapshotFetcher, push Broadcaster, log *logger.Logger) *Tracker {
	return &Tracker{
		fetcher: fetcher,
		push:    push,
		log:     log.WithComponent("journey"),
		now:     time.Now,
		timeout: defaultRefreshTime,
	}
}

// Refresh loads a fresh snapshot and, unless superseded, makes it the
// current state. A failure replaces the state with the error.
func (t *Tracker) Refresh(ctx context.Context) error {
	gen := t.issued.Add(1)

	// Refreshes outlive the request that triggered them.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), t.timeout)
	defer cancel()

	snap, err := t.fetcher.Fetch(ctx)
	var board domain.Board
	if err == nil {
		board = domain.BuildBoard(snap, t.now())
		board.Generation = gen
	}

	t.mu.Lock()
	if gen != t.issued.Load() {
		t.mu.Unlock()
		return ErrSuperseded
	}
	if err != nil {
		t.state = viewState{err: err, generation: gen, loaded: true}
	} else {
		t.state = viewState{board: &board, generation: gen, loaded: true}
	}
	t.mu.Unlock()

	if err != nil {
		t.log.RefreshFailed(gen, err)
		t.broadcast(realtime.Event{Type: realtime.EventJourneyError, Message: msgLoadFailed})
		return apperr.Unavailable(msgLoadFailed, err)
	}

	t.broadcast(realtime.Event{
		Type: realtime.EventJourneyUpdated,
		Data: JourneyUpdate{Generation: gen, Summary: board.Summary},
	})
	return nil
}

// RefreshEvents are the bus events after which the board is reloaded.
var RefreshEvents = []string{
	events.LeadCreated{}.EventName(),
	events.LeadStageChanged{}.EventName(),
	events.CareRequestChanged{}.EventName(),
	events.IntakeSubmitted{}.EventName(),
	events.EpisodeDischarged{}.EventName(),
}

// SubscribeRefresh schedules an async refresh for every event in RefreshEvents.
func (t *Tracker) SubscribeRefresh(bus events.Bus) {
	refresh := events.HandlerFunc(func(ctx context.Context, event events.Event) error {
		t.RefreshAsync()
		return nil
	})
	for _, name := range RefreshEvents {
		bus.Subscribe(name, refresh)
	}
}

// RefreshAsync starts a detached refresh. Errors end up in the view state.
func (t *Tracker) RefreshAsync() {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		_ = t.Refresh(context.Background())
	}()
}

// Wait blocks until every refresh started by RefreshAsync has returned.
func (t *Tracker) Wait() {
	t.wg.Wait()
}

// Current returns the current board, loading it on first use. When the last
// refresh failed the error is returned and no older board is served.
func (t *Tracker) Current(ctx context.Context) (domain.Board, error) {
	t.mu.RLock()
	loaded := t.state.loaded
	t.mu.RUnlock()

	if !loaded {
		if err := t.Refresh(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
			return domain.Board{}, err
		}
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	switch {
	case !t.state.loaded:
		return domain.Board{}, apperr.Unavailable("prospect journey is still loading", nil)
	case t.state.err != nil:
		return domain.Board{}, apperr.Unavailable(msgLoadFailed, t.state.err)
	default:
		return *t.state.board, nil
	}
}

// Generation returns the generation of the state currently held.
func (t *Tracker) Generation() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.state.generation
}

func (t *Tracker) broadcast(event realtime.Event) {
	if t.push != nil {
		t.push.Broadcast(event)
	}
}
