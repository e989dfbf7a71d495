package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"clinic_intake_backend/internal/education/library"
	"clinic_intake_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

func TestEducationRoutes(t *testing.T) {
	lib, err := library.LoadLibrary()
	if err != nil {
		t.Fatal(err)
	}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(lib, validator.New()).RegisterRoutes(r.Group("/education"))

	tests := []struct {
		name string
		path string
		want int
	}{
		{name: "list", path: "/education", want: http.StatusOK},
		{name: "list category", path: "/education?category=neuro", want: http.StatusOK},
		{name: "bad category", path: "/education?category=cardio", want: http.StatusBadRequest},
		{name: "page", path: "/education/low-back-pain", want: http.StatusOK},
		{name: "missing page", path: "/education/nope", want: http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestListFiltersCategory(t *testing.T) {
	lib, err := library.LoadLibrary()
	if err != nil {
		t.Fatal(err)
	}
	gin.SetMode(gin.TestMode)
	r := gin.New()
	New(lib, validator.New()).RegisterRoutes(r.Group("/education"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/education?category=msk", nil))

	var body listResponse
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Total == 0 {
		t.Fatal("expected msk pages")
	}
	for _, p := range body.Items {
		if p.Category != library.CategoryMSK {
			t.Fatalf("page %q has category %q", p.Slug, p.Category)
		}
	}
}
