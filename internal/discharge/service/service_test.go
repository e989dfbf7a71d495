package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"clinic_intake_backend/internal/discharge/domain"
	"clinic_intake_backend/internal/discharge/repository"
	"clinic_intake_backend/internal/discharge/transport"
	"clinic_intake_backend/internal/events"
	"clinic_intake_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeRepo struct {
	episodes   map[uuid.UUID]*repository.Episode
	discharges map[uuid.UUID]*repository.Discharge
}

func newFakeRepo(episodes ...repository.Episode) *fakeRepo {
	r := &fakeRepo{episodes: map[uuid.UUID]*repository.Episode{}, discharges: map[uuid.UUID]*repository.Discharge{}}
	for i := range episodes {
		e := episodes[i]
		r.episodes[e.ID] = &e
	}
	return r
}

func (r *fakeRepo) ListEpisodes(_ context.Context, status string) ([]repository.Episode, error) {
	var out []repository.Episode
	for _, e := range r.episodes {
		if status == "" || e.Status == status {
			out = append(out, *e)
		}
	}
	return out, nil
}

func (r *fakeRepo) Create(_ context.Context, p repository.CreateParams) (repository.Discharge, error) {
	e, ok := r.episodes[p.EpisodeID]
	if !ok {
		return repository.Discharge{}, apperr.NotFound("episode not found")
	}
	if !domain.CanDischarge(e.Status) {
		return repository.Discharge{}, apperr.Conflict("only active episodes can be discharged")
	}
	for _, d := range r.discharges {
		if d.EpisodeID == p.EpisodeID {
			return repository.Discharge{}, apperr.Conflict("episode already has a discharge")
		}
	}
	d := &repository.Discharge{
		ID:            uuid.New(),
		EpisodeID:     p.EpisodeID,
		Reason:        p.Reason,
		Summary:       p.Summary,
		HomeProgram:   p.HomeProgram,
		OutcomeScores: p.OutcomeScores,
		Status:        domain.DischargeDraft,
		CreatedBy:     p.CreatedBy,
		CreatedAt:     time.Now(),
	}
	r.discharges[d.ID] = d
	return *d, nil
}

func (r *fakeRepo) Finalize(_ context.Context, id, actorID uuid.UUID) (repository.Discharge, error) {
	d, ok := r.discharges[id]
	if !ok {
		return repository.Discharge{}, apperr.NotFound("discharge not found")
	}
	if !domain.CanFinalize(d.Status) {
		return repository.Discharge{}, apperr.Conflict("discharge is already finalized")
	}
	now := time.Now()
	d.Status = domain.DischargeFinalized
	d.FinalizedBy = &actorID
	d.FinalizedAt = &now
	r.episodes[d.EpisodeID].Status = domain.EpisodeDischarged
	return *d, nil
}

type recordingBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, e events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, e)
}

func (b *recordingBus) PublishSync(ctx context.Context, e events.Event) error {
	b.Publish(ctx, e)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

func TestDischargeLifecycle(t *testing.T) {
	ctx := context.Background()
	episode := repository.Episode{ID: uuid.New(), PatientName: "Jane Roe", Status: domain.EpisodeActive}
	repo := newFakeRepo(episode)
	bus := &recordingBus{}
	svc := New(repo, bus)
	actor := uuid.New()

	draft, err := svc.Create(ctx, episode.ID, actor, transport.CreateDischargeRequest{
		Reason:  string(domain.ReasonGoalsMet),
		Summary: "  <b>Pain free</b> at rest ",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if draft.Status != domain.DischargeDraft {
		t.Fatalf("status = %q, want draft", draft.Status)
	}
	if draft.Summary != "Pain free at rest" {
		t.Fatalf("summary = %q", draft.Summary)
	}
	if draft.OutcomeScores == nil {
		t.Fatal("outcome scores should render as an empty object")
	}
	if len(bus.published) != 0 {
		t.Fatalf("draft published %d events", len(bus.published))
	}

	_, err = svc.Create(ctx, episode.ID, actor, transport.CreateDischargeRequest{Reason: string(domain.ReasonOther)})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second discharge err = %v, want conflict", err)
	}

	final, err := svc.Finalize(ctx, draft.ID, actor)
	if err != nil {
		t.Fatalf("Finalize: %v", err)
	}
	if final.FinalizedBy == nil || *final.FinalizedBy != actor {
		t.Fatalf("finalizedBy = %v", final.FinalizedBy)
	}
	if repo.episodes[episode.ID].Status != domain.EpisodeDischarged {
		t.Fatal("episode should be discharged")
	}
	if len(bus.published) != 1 {
		t.Fatalf("published %d events, want 1", len(bus.published))
	}
	evt, ok := bus.published[0].(events.EpisodeDischarged)
	if !ok || evt.EpisodeID != episode.ID || evt.DischargeID != draft.ID || evt.Reason != "goals_met" {
		t.Fatalf("event = %#v", bus.published[0])
	}

	if _, err := svc.Finalize(ctx, draft.ID, actor); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("refinalize err = %v, want conflict", err)
	}
	if len(bus.published) != 1 {
		t.Fatal("failed finalize must not publish")
	}
}

func TestCreateRejectsInactiveEpisode(t *testing.T) {
	episode := repository.Episode{ID: uuid.New(), Status: domain.EpisodeDischarged}
	svc := New(newFakeRepo(episode), &recordingBus{})

	_, err := svc.Create(context.Background(), episode.ID, uuid.New(), transport.CreateDischargeRequest{Reason: "plateau"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("err = %v, want conflict", err)
	}

	_, err = svc.Create(context.Background(), uuid.New(), uuid.New(), transport.CreateDischargeRequest{Reason: "plateau"})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("err = %v, want not found", err)
	}
}

func TestListEpisodesFiltersByStatus(t *testing.T) {
	repo := newFakeRepo(
		repository.Episode{ID: uuid.New(), Status: domain.EpisodeActive},
		repository.Episode{ID: uuid.New(), Status: domain.EpisodeDischarged},
	)
	svc := New(repo, &recordingBus{})

	all, err := svc.ListEpisodes(context.Background(), "")
	if err != nil || all.Total != 2 {
		t.Fatalf("all = %+v, err %v", all, err)
	}
	active, err := svc.ListEpisodes(context.Background(), domain.EpisodeActive)
	if err != nil || active.Total != 1 || active.Items[0].Status != domain.EpisodeActive {
		t.Fatalf("active = %+v, err %v", active, err)
	}
}
