package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic_intake_backend/internal/journey/domain"
	"clinic_intake_backend/internal/journey/service"
	"clinic_intake_backend/internal/journey/transport"
	"clinic_intake_backend/platform/apperr"

	"github.com/gin-gonic/gin"
)

type fakeTracker struct {
	board      domain.Board
	currentErr error
	refreshErr error
	refreshes  int
}

func (f *fakeTracker) Current(context.Context) (domain.Board, error) {
	return f.board, f.currentErr
}

func (f *fakeTracker) Refresh(context.Context) error {
	f.refreshes++
	return f.refreshErr
}

func newRouter(tr BoardReader) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(tr, nil).RegisterRoutes(r.Group("/journey"))
	return r
}

func TestGetBoard(t *testing.T) {
	board := domain.Board{
		Prospects:  []domain.Prospect{{Name: "Jane", CurrentStage: domain.StageFormsSent}},
		Summary:    domain.Summary{Total: 1, Active: 1},
		Generation: 4,
	}

	tests := []struct {
		name          string
		path          string
		tracker       *fakeTracker
		wantStatus    int
		wantRefreshes int
	}{
		{name: "current board", path: "/journey", tracker: &fakeTracker{board: board}, wantStatus: http.StatusOK},
		{name: "refresh first", path: "/journey?refresh=true", tracker: &fakeTracker{board: board}, wantStatus: http.StatusOK, wantRefreshes: 1},
		{name: "superseded refresh still serves", path: "/journey?refresh=true", tracker: &fakeTracker{board: board, refreshErr: service.ErrSuperseded}, wantStatus: http.StatusOK, wantRefreshes: 1},
		{name: "load failure", path: "/journey", tracker: &fakeTracker{currentErr: apperr.Unavailable("failed to load prospect journey", errors.New("db down"))}, wantStatus: http.StatusServiceUnavailable},
		{name: "bad query", path: "/journey?refresh=maybe", tracker: &fakeTracker{}, wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			newRouter(tt.tracker).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
			}
			if tt.tracker.refreshes != tt.wantRefreshes {
				t.Fatalf("refreshes = %d", tt.tracker.refreshes)
			}
			if tt.wantStatus != http.StatusOK {
				return
			}
			var got domain.Board
			if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
				t.Fatal(err)
			}
			if got.Generation != 4 || len(got.Prospects) != 1 || got.Prospects[0].NextAction != "" {
				t.Fatalf("unexpected board %+v", got)
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	tr := &fakeTracker{board: domain.Board{Summary: domain.Summary{Total: 3, Stalled: 1}, Generation: 9}}
	w := httptest.NewRecorder()
	newRouter(tr).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/journey/refresh", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got transport.RefreshResponse
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	if got.Generation != 9 || got.Summary.Stalled != 1 || tr.refreshes != 1 {
		t.Fatalf("unexpected response %+v", got)
	}

	failing := &fakeTracker{refreshErr: apperr.Unavailable("failed to load prospect journey", nil)}
	w = httptest.NewRecorder()
	newRouter(failing).ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/journey/refresh", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d", w.Code)
	}
}
