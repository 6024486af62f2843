package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/anonto42/sparkmatch/backend/internal/middleware"
	"github.com/anonto42/sparkmatch/backend/internal/models"
	"github.com/anonto42/sparkmatch/backend/internal/repositories/repotest"
	"github.com/anonto42/sparkmatch/backend/internal/validators"
	"github.com/anonto42/sparkmatch/backend/pkg/cache"
)

const testSecret = "router-secret"

func bearer(t *testing.T, userID uint) string {
	t.Helper()
	claims := &models.JwtCustomClaims{
		UserID:           userID,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + signed
}

func newServer(t *testing.T) (*echo.Echo, *Services, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	db := repotest.NewDB(t)
	require.NoError(t, AutoMigrate(db))

	svc := NewServices(Dependencies{
		Postgres: db,
		Posts:    repotest.NewPostRepo(),
		Messages: &repotest.MessageRepo{},
		Unread:   cache.NewMemoryUnreadCounter(time.Minute),
		Log:      log,
	})
	for _, name := range []string{"ada", "bo"} {
		require.NoError(t, svc.Users.CreateUser(context.Background(), &models.User{Name: name, Email: name + "@example.com"}))
	}

	e := echo.New()
	e.Validator = validators.NewValidator()
	SetupMiddleware(e, log)
	SetupRoutes(e, svc, middleware.JWTAuthMiddleware(testSecret), log)
	return e, svc, logs
}

func request(e *echo.Echo, method, path, auth, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if auth != "" {
		req.Header.Set(echo.HeaderAuthorization, auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_HealthIsPublic(t *testing.T) {
	e, _, _ := newServer(t)
	assert.Equal(t, http.StatusOK, request(e, http.MethodGet, "/health", "", "").Code)
}

func TestRoutes_APIRequiresBearer(t *testing.T) {
	e, _, _ := newServer(t)
	assert.Equal(t, http.StatusUnauthorized, request(e, http.MethodGet, "/api/v1/notifications/user/1", "", "").Code)
	assert.Equal(t, http.StatusUnauthorized, request(e, http.MethodGet, "/api/v1/notifications/user/1", "Bearer nope", "").Code)
}

func TestRoutes_MessageRaisesNotification(t *testing.T) {
	e, _, _ := newServer(t)
	ada, bo := bearer(t, 1), bearer(t, 2)

	rec := request(e, http.MethodPost, "/api/v1/chat/2/messages", ada, `{"content":"coffee on friday?"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = request(e, http.MethodGet, "/api/v1/chat/1/messages", bo, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "coffee on friday?")

	rec = request(e, http.MethodGet, "/api/v1/notifications/user/2/unread-count", bo, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":1}`, rec.Body.String())

	rec = request(e, http.MethodGet, "/api/v1/notifications/user/2", bo, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"url":"/chat/1"`)
	assert.Contains(t, rec.Body.String(), `"type":"message"`)
}

func TestRoutes_AdviceWithoutGenerator(t *testing.T) {
	e, _, _ := newServer(t)
	rec := request(e, http.MethodPost, "/api/v1/advice", bearer(t, 1), `{"prompt":"how do I open?"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestSetupMiddleware_LogsRequests(t *testing.T) {
	e, _, logs := newServer(t)
	request(e, http.MethodGet, "/health", "", "")
	request(e, http.MethodGet, "/api/v1/notifications/user/1", "", "")

	ok := logs.FilterMessage("request").All()
	require.Len(t, ok, 1)
	assert.Equal(t, "/health", ok[0].ContextMap()["uri"])

	failed := logs.FilterMessage("request failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, int64(http.StatusUnauthorized), failed[0].ContextMap()["status"])
}
