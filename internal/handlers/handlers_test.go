package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/anonto42/sparkmatch/backend/internal/middleware"
	"github.com/anonto42/sparkmatch/backend/internal/models"
	"github.com/anonto42/sparkmatch/backend/internal/repositories"
	"github.com/anonto42/sparkmatch/backend/internal/repositories/repotest"
	"github.com/anonto42/sparkmatch/backend/internal/services"
	"github.com/anonto42/sparkmatch/backend/internal/session"
	"github.com/anonto42/sparkmatch/backend/internal/validators"
	"github.com/anonto42/sparkmatch/backend/pkg/cache"
)

const testUserHeader = "X-Test-User"

type fakeGenerator struct {
	text string
	err  error
}

func (g *fakeGenerator) Generate(_ context.Context, _, _ string) (string, error) {
	return g.text, g.err
}

type testServer struct {
	e             *echo.Echo
	notifications *services.NotificationService
	posts         *repotest.PostRepo
	messages      *repotest.MessageRepo
	users         repositories.UserRepository
	gen           *fakeGenerator
}

// newTestServer mounts every handler behind a middleware that trusts testUserHeader.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := repotest.NewDB(t)
	log := zap.NewNop()

	users := repositories.NewPostgresUserRepository(db)
	for _, name := range []string{"ada", "bo", "cy"} {
		require.NoError(t, users.CreateUser(context.Background(), &models.User{Name: name, Email: name + "@example.com"}))
	}

	notifications := services.NewNotificationService(
		repositories.NewPostgresNotificationRepository(db),
		cache.NewMemoryUnreadCounter(time.Minute),
		log,
	)
	posts := repotest.NewPostRepo()
	messages := &repotest.MessageRepo{}
	gen := &fakeGenerator{text: "  Ask about their favourite trail.  "}

	e := echo.New()
	e.Validator = validators.NewValidator()
	g := e.Group("/api/v1", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id, err := strconv.Atoi(c.Request().Header.Get(testUserHeader)); err == nil {
				c.Set(middleware.SessionKey, session.Session{UserID: uint(id), Token: "test"})
			}
			return next(c)
		}
	})

	NewNotificationHandler(notifications).RegisterNotificationRoutes(g)
	NewPostHandler(posts).RegisterPostRoutes(g)
	NewCommentHandler(services.NewCommentService(repositories.NewPostgresCommentRepository(db), posts, notifications, log)).RegisterCommentRoutes(g)
	NewLikeHandler(services.NewLikeService(repositories.NewPostgresLikeRepository(db), posts, notifications, log)).RegisterLikeRoutes(g)
	NewChatHandler(services.NewChatService(messages, users, notifications, log)).RegisterChatRoutes(g)
	NewAdviceHandler(services.NewAdviceService(gen, messages, log)).RegisterAdviceRoutes(g)
	e.GET("/health", HealthCheck)

	return &testServer{e: e, notifications: notifications, posts: posts, messages: messages, users: users, gen: gen}
}

func (s *testServer) do(t *testing.T, method, path string, userID uint, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if userID != 0 {
		req.Header.Set(testUserHeader, strconv.Itoa(int(userID)))
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", 0, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])
}

func TestNotificationHandler_Lifecycle(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/notifications", 2, `{"recipientId":1,"content":"Bo liked your photo","type":"like"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Notification](t, rec)
	assert.False(t, created.IsRead)
	require.NotNil(t, created.Type)
	assert.Equal(t, "like", *created.Type)

	for i := 0; i < 11; i++ {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/notifications", 2, `{"recipientId":1,"content":"ping"}`).Code)
	}

	rec = s.do(t, http.MethodGet, "/api/v1/notifications/user/1?page=2&pageSize=5", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[models.NotificationPage](t, rec)
	assert.Equal(t, int64(12), page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 5, page.PageSize)
	assert.Equal(t, int64(3), page.TotalPages)
	assert.Len(t, page.Items, 5)

	rec = s.do(t, http.MethodGet, "/api/v1/notifications/user/1?page=abc", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[models.NotificationPage](t, rec)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 10, page.PageSize)

	id := strconv.Itoa(int(created.ID))
	rec = s.do(t, http.MethodPatch, "/api/v1/notifications/"+id+"/read", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[models.Notification](t, rec).IsRead)

	rec = s.do(t, http.MethodGet, "/api/v1/notifications/user/1/unread-count", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]int64{"count": 11}, decode[map[string]int64](t, rec))

	rec = s.do(t, http.MethodPatch, "/api/v1/notifications/user/1/read-all", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]int64{"count": 11}, decode[map[string]int64](t, rec))

	rec = s.do(t, http.MethodPatch, "/api/v1/notifications/user/1/read-all", 1, "")
	assert.Equal(t, map[string]int64{"count": 0}, decode[map[string]int64](t, rec))

	rec = s.do(t, http.MethodPatch, "/api/v1/notifications/"+id, 1, `{"read":false,"url":"/profile/2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[models.Notification](t, rec)
	assert.False(t, updated.IsRead)
	require.NotNil(t, updated.URL)
	assert.Equal(t, "/profile/2", *updated.URL)
	assert.Equal(t, "Bo liked your photo", updated.Content)

	rec = s.do(t, http.MethodGet, "/api/v1/notifications/user/1/grouped", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[models.GroupedNotifications](t, rec).Today, 12)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, "/api/v1/notifications/"+id, 1, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/api/v1/notifications/"+id, 1, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPatch, "/api/v1/notifications/"+id+"/read", 1, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPatch, "/api/v1/notifications/"+id, 1, `{"read":true}`).Code)
}

func TestNotificationHandler_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		user   uint
		body   string
		status int
	}{
		{"unauthenticated", http.MethodGet, "/api/v1/notifications/user/1", 0, "", http.StatusUnauthorized},
		{"other recipient", http.MethodGet, "/api/v1/notifications/user/2", 1, "", http.StatusForbidden},
		{"bad recipient id", http.MethodGet, "/api/v1/notifications/user/x", 1, "", http.StatusBadRequest},
		{"zero recipient", http.MethodPost, "/api/v1/notifications", 1, `{"recipientId":0,"content":"hi"}`, http.StatusBadRequest},
		{"blank content", http.MethodPost, "/api/v1/notifications", 1, `{"recipientId":2,"content":"   "}`, http.StatusBadRequest},
		{"malformed body", http.MethodPost, "/api/v1/notifications", 1, `{`, http.StatusBadRequest},
		{"missing id", http.MethodPatch, "/api/v1/notifications/999/read", 1, "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := s.do(t, tt.method, tt.path, tt.user, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestNotificationHandler_OwnershipOnMutations(t *testing.T) {
	s := newTestServer(t)
	n, err := s.notifications.Create(context.Background(), models.CreateNotificationRequest{RecipientID: 1, Content: "hello"})
	require.NoError(t, err)
	id := strconv.Itoa(int(n.ID))

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPatch, "/api/v1/notifications/"+id+"/read", 2, "").Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, "/api/v1/notifications/"+id, 2, "").Code)

	got, err := s.notifications.Get(context.Background(), n.ID)
	require.NoError(t, err)
	assert.False(t, got.IsRead)
}

func TestPostAndCommentHandlers(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/posts", 1, `{"content":"Sunday hike anyone?"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	post := decode[models.Post](t, rec)
	assert.Equal(t, uint(1), post.UserID)
	postPath := "/api/v1/posts/" + post.ID.Hex()

	rec = s.do(t, http.MethodPost, postPath+"/comments", 2, `{"content":"count me in"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	root := decode[models.Comment](t, rec)

	rec = s.do(t, http.MethodPost, postPath+"/comments", 3, `{"content":"same","parent_id":`+strconv.Itoa(int(root.ID))+`}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	reply := decode[models.Comment](t, rec)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, postPath+"/comments", 3, `{"content":"x","parent_id":999}`).Code)

	rec = s.do(t, http.MethodGet, postPath+"/comments", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var forest []struct {
		ID      uint   `json:"ID"`
		Content string `json:"content"`
		Replies []struct {
			ID uint `json:"ID"`
		} `json:"replies"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &forest))
	require.Len(t, forest, 1)
	assert.Equal(t, root.ID, forest[0].ID)
	require.Len(t, forest[0].Replies, 1)
	assert.Equal(t, reply.ID, forest[0].Replies[0].ID)

	rec = s.do(t, http.MethodGet, postPath, 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[models.Post](t, rec).CommentsCount)

	replyPath := "/api/v1/comments/" + strconv.Itoa(int(reply.ID))
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodPut, replyPath, 2, `{"content":"hijack"}`).Code)
	rec = s.do(t, http.MethodPut, replyPath, 3, `{"content":"same here"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "same here", decode[models.Comment](t, rec).Content)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodDelete, replyPath, 1, "").Code)
	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, replyPath, 3, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, replyPath, 3, "").Code)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/posts/not-an-id", 1, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/posts/not-an-id/comments", 1, "").Code)
}

func TestPostHandler_List(t *testing.T) {
	s := newTestServer(t)
	for i := 0; i < 3; i++ {
		require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/posts", 1, `{"content":"post"}`).Code)
	}

	rec := s.do(t, http.MethodGet, "/api/v1/posts?page=2&pageSize=2", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var page struct {
		Items      []models.Post `json:"items"`
		Total      int64         `json:"total"`
		TotalPages int64         `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &page))
	assert.Equal(t, int64(3), page.Total)
	assert.Equal(t, int64(2), page.TotalPages)
	assert.Len(t, page.Items, 1)
}

func TestLikeHandler(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/api/v1/posts", 1, `{"content":"rooftop bar recs"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	likes := "/api/v1/posts/" + decode[models.Post](t, rec).ID.Hex() + "/likes"

	rec = s.do(t, http.MethodPost, likes, 2, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	status := decode[models.LikeStatus](t, rec)
	assert.Equal(t, int64(1), status.Count)
	assert.True(t, status.Liked)

	assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, likes, 2, "").Code)

	rec = s.do(t, http.MethodGet, likes, 3, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[models.LikeStatus](t, rec).Liked)

	count, err := s.notifications.UnreadCount(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.Equal(t, http.StatusNoContent, s.do(t, http.MethodDelete, likes, 2, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, likes, 2, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodPost, "/api/v1/posts/nope/likes", 2, "").Code)
}

func TestChatHandler(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/chat/2/messages", 1, `{"content":"hey there"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	sent := decode[models.Message](t, rec)
	assert.Equal(t, uint(1), sent.SenderID)
	assert.Equal(t, uint(2), sent.RecipientID)

	require.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/api/v1/chat/1/messages", 2, `{"content":"hi!"}`).Code)

	rec = s.do(t, http.MethodGet, "/api/v1/chat/2/messages", 1, "")
	require.Equal(t, http.StatusOK, rec.Code)
	history := decode[[]models.Message](t, rec)
	require.Len(t, history, 2)
	assert.Equal(t, "hey there", history[0].Content)
	assert.Equal(t, "hi!", history[1].Content)

	count, err := s.notifications.UnreadCount(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/chat/2/messages", 1, `{"content":""}`).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/api/v1/chat/1/messages", 1, "").Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/api/v1/chat/77/messages", 1, "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/api/v1/chat/2/messages", 0, "").Code)

	s.messages.SetErr(errors.New("mongo down"))
	rec = s.do(t, http.MethodGet, "/api/v1/chat/2/messages", 1, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "mongo down")
}

func TestAdviceHandler(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/v1/advice", 1, `{"prompt":"what should I say first?"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Ask about their favourite trail.", decode[models.AdviceResponse](t, rec).Suggestion)

	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodPost, "/api/v1/advice", 1, `{"prompt":"hi"}`).Code)

	s.gen.err = errors.New("quota exceeded")
	assert.Equal(t, http.StatusBadGateway, s.do(t, http.MethodPost, "/api/v1/advice", 1, `{"prompt":"what should I say first?"}`).Code)
}

func TestAdviceHandler_Unconfigured(t *testing.T) {
	e := echo.New()
	e.Validator = validators.NewValidator()
	g := e.Group("", func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.SessionKey, session.Session{UserID: 1})
			return next(c)
		}
	})
	NewAdviceHandler(services.NewAdviceService(nil, &repotest.MessageRepo{}, zap.NewNop())).RegisterAdviceRoutes(g)

	req := httptest.NewRequest(http.MethodPost, "/advice", strings.NewReader(`{"prompt":"any tips?"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
