package httpkit

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"clinic_intake_backend/platform/apperr"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

type testJWTConfig struct{}

func (testJWTConfig) GetJWTAccessSecret() string { return testSecret }

func init() {
	gin.SetMode(gin.TestMode)
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestHandleErrorMapsKinds(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{name: "not found", err: apperr.NotFound("lead not found"), wantStatus: http.StatusNotFound, wantMsg: "lead not found"},
		{name: "wrapped conflict", err: fmt.Errorf("approve: %w", apperr.Conflict("already converted")), wantStatus: http.StatusConflict, wantMsg: "already converted"},
		{name: "unavailable", err: apperr.Unavailable("failed to load prospect journey", errors.New("conn refused")), wantStatus: http.StatusServiceUnavailable, wantMsg: "failed to load prospect journey"},
		{name: "untyped", err: errors.New("pq: boom"), wantStatus: http.StatusInternalServerError, wantMsg: msgInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)

			if !HandleError(c, tt.err) {
				t.Fatal("expected error to be handled")
			}
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			var body ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Error != tt.wantMsg {
				t.Fatalf("message = %q, want %q", body.Error, tt.wantMsg)
			}
		})
	}
}

func TestHandleErrorNil(t *testing.T) {
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	if HandleError(c, nil) {
		t.Fatal("nil error must not be handled")
	}
}

func newAuthRouter() *gin.Engine {
	r := gin.New()
	r.GET("/staff", AuthRequired(testJWTConfig{}), func(c *gin.Context) {
		id := MustGetIdentity(c)
		c.JSON(http.StatusOK, gin.H{"userId": id.UserID()})
	})
	r.GET("/admin", AuthRequired(testJWTConfig{}), RequireRole(RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	userID := uuid.New()
	valid := jwt.MapClaims{
		"sub":   userID.String(),
		"type":  "access",
		"roles": []string{RoleStaff},
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	refresh := jwt.MapClaims{"sub": userID.String(), "type": "refresh", "roles": []string{RoleStaff}}
	patient := jwt.MapClaims{"sub": userID.String(), "type": "access", "roles": []string{"patient"}}
	expired := jwt.MapClaims{"sub": userID.String(), "type": "access", "roles": []string{RoleStaff}, "exp": time.Now().Add(-time.Hour).Unix()}

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
	}{
		{name: "missing token", path: "/staff", wantStatus: http.StatusUnauthorized},
		{name: "bearer header", path: "/staff", header: "Bearer " + signToken(t, valid), wantStatus: http.StatusOK},
		{name: "query token", path: "/staff?token=" + signToken(t, valid), wantStatus: http.StatusOK},
		{name: "refresh token rejected", path: "/staff", header: "Bearer " + signToken(t, refresh), wantStatus: http.StatusUnauthorized},
		{name: "expired", path: "/staff", header: "Bearer " + signToken(t, expired), wantStatus: http.StatusUnauthorized},
		{name: "non staff role", path: "/staff", header: "Bearer " + signToken(t, patient), wantStatus: http.StatusForbidden},
		{name: "staff on admin route", path: "/admin", header: "Bearer " + signToken(t, valid), wantStatus: http.StatusForbidden},
	}

	router := newAuthRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (%s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestAdminRoleAllowed(t *testing.T) {
	claims := jwt.MapClaims{"sub": uuid.NewString(), "type": "access", "roles": []string{RoleStaff, RoleAdmin}}
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, claims))
	rec := httptest.NewRecorder()
	newAuthRouter().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRateLimit(t *testing.T) {
	limiter := NewPerMinuteLimiter(2, nil)
	r := gin.New()
	r.GET("/public", limiter.RateLimit(), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/public", nil))
		codes = append(codes, rec.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("unexpected codes %v", codes)
	}
}
