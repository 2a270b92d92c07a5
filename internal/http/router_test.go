package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/writecoach-backend/internal/catalog"
	types "github.com/yungbote/writecoach-backend/internal/domain"
	httpH "github.com/yungbote/writecoach-backend/internal/http/handlers"
	httpMW "github.com/yungbote/writecoach-backend/internal/http/middleware"
	"github.com/yungbote/writecoach-backend/internal/observability"
	"github.com/yungbote/writecoach-backend/internal/platform/logger"
	"github.com/yungbote/writecoach-backend/internal/services"
)

const testSecret = "test-secret"

type stubProgress struct{}

func (stubProgress) Skills(context.Context) ([]*types.SkillProgress, error) {
	return []*types.SkillProgress{}, nil
}

func (stubProgress) Streak(context.Context) (*types.Streak, error) {
	return &types.Streak{CurrentStreak: 2, LongestStreak: 4}, nil
}

func (stubProgress) Achievements(context.Context) ([]services.AchievementView, error) {
	return []services.AchievementView{}, nil
}

func (stubProgress) MarkAchievementsSeen(context.Context) (int64, error) { return 0, nil }

func bearer(t *testing.T, child uuid.UUID) string {
	t.Helper()
	claims := httpMW.ChildClaims{
		ChildID:          child.String(),
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return "Bearer " + tok
}

func newTestRouter(t *testing.T) (*gin.Engine, *observability.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	m := observability.NewMetrics()
	// Services behind the session, grading and curriculum handlers are
	// never reached without a token.
	r := NewRouter(RouterConfig{
		Log:               logger.Nop(),
		Metrics:           m,
		AuthMiddleware:    httpMW.NewAuthMiddleware(logger.Nop(), testSecret),
		SessionHandler:    httpH.NewSessionHandler(logger.Nop(), nil),
		GradingHandler:    httpH.NewGradingHandler(logger.Nop(), nil),
		ProgressHandler:   httpH.NewProgressHandler(stubProgress{}),
		CurriculumHandler: httpH.NewCurriculumHandler(nil),
		LessonHandler:     httpH.NewLessonHandler(cat),
		HealthHandler:     httpH.NewHealthHandler(nil),
	})
	return r, m
}

func TestRouterPublicAndProtectedRoutes(t *testing.T) {
	r, _ := newTestRouter(t)

	cases := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodGet, "/healthcheck", http.StatusOK},
		{http.MethodGet, "/api/lessons", http.StatusOK},
		// Protected routes reject before reaching a handler.
		{http.MethodGet, "/api/progress/skills", http.StatusUnauthorized},
		{http.MethodPost, "/api/grade", http.StatusUnauthorized},
		{http.MethodPost, "/api/revise", http.StatusUnauthorized},
		{http.MethodPost, "/api/sessions", http.StatusUnauthorized},
		{http.MethodPost, "/api/chat", http.StatusUnauthorized},
		{http.MethodGet, "/api/curriculum", http.StatusUnauthorized},
		{http.MethodGet, "/api/no-such-route", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(tc.method, tc.path, nil))
		if rec.Code != tc.status {
			t.Fatalf("%s %s: want=%d got=%d", tc.method, tc.path, tc.status, rec.Code)
		}
	}
}

func TestRouterAuthorizedRequestReachesHandler(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/progress/streak", nil)
	req.Header.Set("Authorization", bearer(t, uuid.New()))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200 got=%d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"currentStreak":2`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestRouterTraceHeadersAndMetrics(t *testing.T) {
	r, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/lessons", nil)
	req.Header.Set("X-Request-Id", "req-123")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "req-123" {
		t.Fatalf("request id not echoed: %q", got)
	}
	if rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("missing trace id header")
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `route="/api/lessons"`) {
		t.Fatalf("api request not recorded:\n%s", rec.Body.String())
	}
}
