package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic_intake_backend/internal/discharge/repository"
	"clinic_intake_backend/internal/discharge/service"
	"clinic_intake_backend/internal/events"
	"clinic_intake_backend/platform/apperr"
	"clinic_intake_backend/platform/httpkit"
	"clinic_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type stubRepo struct {
	episodeID   uuid.UUID
	dischargeID uuid.UUID
}

func (r stubRepo) ListEpisodes(context.Context, string) ([]repository.Episode, error) {
	return []repository.Episode{{ID: r.episodeID, Status: "active"}}, nil
}

func (r stubRepo) Create(_ context.Context, p repository.CreateParams) (repository.Discharge, error) {
	if p.EpisodeID != r.episodeID {
		return repository.Discharge{}, apperr.NotFound("episode not found")
	}
	return repository.Discharge{ID: r.dischargeID, EpisodeID: p.EpisodeID, Reason: p.Reason, Status: "draft"}, nil
}

func (r stubRepo) Finalize(_ context.Context, id, _ uuid.UUID) (repository.Discharge, error) {
	if id != r.dischargeID {
		return repository.Discharge{}, apperr.NotFound("discharge not found")
	}
	return repository.Discharge{ID: id, EpisodeID: r.episodeID, Status: "finalized"}, nil
}

type nopBus struct{}

func (nopBus) Publish(context.Context, events.Event)           {}
func (nopBus) PublishSync(context.Context, events.Event) error { return nil }
func (nopBus) Subscribe(string, events.Handler)                {}

func TestDischargeRoutes(t *testing.T) {
	repo := stubRepo{episodeID: uuid.New(), dischargeID: uuid.New()}

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		if c.GetHeader("X-Test-Anon") == "" {
			c.Set(httpkit.ContextUserIDKey, uuid.New())
			c.Set(httpkit.ContextRolesKey, []string{httpkit.RoleStaff})
		}
	})
	h := New(service.New(repo, nopBus{}), validator.New())
	h.RegisterEpisodeRoutes(r.Group("/episodes"))
	h.RegisterDischargeRoutes(r.Group("/discharges"))

	episodePath := "/episodes/" + repo.episodeID.String() + "/discharge"
	tests := []struct {
		name   string
		method string
		path   string
		body   string
		anon   bool
		want   int
	}{
		{name: "list", method: http.MethodGet, path: "/episodes?status=active", want: http.StatusOK},
		{name: "list bad status", method: http.MethodGet, path: "/episodes?status=paused", want: http.StatusBadRequest},
		{name: "create", method: http.MethodPost, path: episodePath, body: `{"reason":"goals_met","summary":"done","outcomeScores":{"nprs":1}}`, want: http.StatusCreated},
		{name: "create bad reason", method: http.MethodPost, path: episodePath, body: `{"reason":"bored"}`, want: http.StatusBadRequest},
		{name: "create unknown episode", method: http.MethodPost, path: "/episodes/" + uuid.NewString() + "/discharge", body: `{"reason":"other"}`, want: http.StatusNotFound},
		{name: "create bad id", method: http.MethodPost, path: "/episodes/nope/discharge", body: `{"reason":"other"}`, want: http.StatusBadRequest},
		{name: "finalize", method: http.MethodPost, path: "/discharges/" + repo.dischargeID.String() + "/finalize", want: http.StatusOK},
		{name: "finalize unknown", method: http.MethodPost, path: "/discharges/" + uuid.NewString() + "/finalize", want: http.StatusNotFound},
		{name: "finalize anonymous", method: http.MethodPost, path: "/discharges/" + repo.dischargeID.String() + "/finalize", anon: true, want: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.anon {
				req.Header.Set("X-Test-Anon", "1")
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d, body %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}
