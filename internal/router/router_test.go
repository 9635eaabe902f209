package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"taskflow/internal/auth"
	"taskflow/internal/cache"
	"taskflow/internal/config"
	"taskflow/internal/handler"
	"taskflow/internal/model"
	"taskflow/internal/repository/memory"
	"taskflow/internal/service"
)

type testServer struct {
	t     *testing.T
	e     *echo.Echo
	jwt   *auth.JWTService
	kv    *cache.Memory
	users *memory.UserRepository
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := zap.NewNop()

	jwtService, err := auth.NewJWTService("test-secret")
	require.NoError(t, err)

	kv := cache.NewMemory()
	users := memory.NewUserRepository()
	authService := service.NewAuthService(users, jwtService, logger)
	taskService := service.NewTaskService(memory.NewTaskRepository(), cache.NewTaskCache(kv), logger)

	e := echo.New()
	cfg := &config.Config{CORS: config.CORS{AllowedOrigins: []string{"http://localhost:3000"}}}
	Register(e, cfg, logger, auth.NewGate(jwtService, logger),
		handler.NewAuthHandler(authService), handler.NewTaskHandler(taskService))

	return &testServer{t: t, e: e, jwt: jwtService, kv: kv, users: users}
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) signup(email, password string) string {
	rec := s.do(http.MethodPost, "/api/auth/user/signup", "",
		`{"email":"`+email+`","password":"`+password+`","fname":"Test","lname":"User"}`)
	require.Equal(s.t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp handler.AuthResponse
	require.NoError(s.t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Token
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestEndToEnd_TaskLifecycle(t *testing.T) {
	s := newTestServer(t)

	s.signup("alice@x.io", "secret1")

	rec := s.do(http.MethodPost, "/api/auth/user/login", "", `{"email":"alice@x.io","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	token := decode[handler.AuthResponse](t, rec).Token
	require.NotEmpty(t, token)

	rec = s.do(http.MethodPost, "/api/tasks", token, `{"title":"T1","description":"d"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[handler.TaskResponse](t, rec).Task
	assert.Equal(t, model.TaskStatusPending, created.Status)
	id := created.ID.String()

	rec = s.do(http.MethodGet, "/api/tasks", token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	tasks := decode[handler.TaskListResponse](t, rec).Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, "T1", tasks[0].Title)
	assert.Equal(t, model.TaskStatusPending, tasks[0].Status)

	rec = s.do(http.MethodPut, "/api/tasks/"+id, token, `{"status":"completed"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.TaskStatusCompleted, decode[handler.TaskResponse](t, rec).Task.Status)

	rec = s.do(http.MethodGet, "/api/tasks", token, "")
	tasks = decode[handler.TaskListResponse](t, rec).Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, model.TaskStatusCompleted, tasks[0].Status)

	rec = s.do(http.MethodDelete, "/api/tasks/"+id, token, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "T1", decode[handler.TaskResponse](t, rec).Task.Title)

	rec = s.do(http.MethodGet, "/api/tasks", token, "")
	assert.Empty(t, decode[handler.TaskListResponse](t, rec).Tasks)
	assert.Contains(t, rec.Body.String(), `"tasks":[]`)
}

func TestEndToEnd_SignupTokenResolvesToUser(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("carol@x.io", "secret1")

	userID, err := s.jwt.Verify(token)
	require.NoError(t, err)
	user, err := s.users.FindByEmail(context.Background(), "carol@x.io")
	require.NoError(t, err)
	assert.Equal(t, user.ID, userID)
}

func TestEndToEnd_RepeatedListIsStable(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("dave@x.io", "secret1")
	for _, title := range []string{"A", "B", "C"} {
		rec := s.do(http.MethodPost, "/api/tasks", token, `{"title":"`+title+`","description":"d"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	first := s.do(http.MethodGet, "/api/tasks", token, "")
	second := s.do(http.MethodGet, "/api/tasks", token, "")

	require.Equal(t, http.StatusOK, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Len(t, decode[handler.TaskListResponse](t, second).Tasks, 3)
}

func TestEndToEnd_CacheServesThenInvalidates(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("bob@x.io", "secret1")
	userID, err := s.jwt.Verify(token)
	require.NoError(t, err)

	rec := s.do(http.MethodGet, "/api/tasks", token, "")
	require.Equal(t, http.StatusOK, rec.Code)

	raw, _ := s.kv.Get(context.Background(), cache.TaskListKey(userID))
	assert.NotNil(t, raw, "list populates the snapshot")

	rec = s.do(http.MethodPost, "/api/tasks", token, `{"title":"T1","description":"d"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	raw, _ = s.kv.Get(context.Background(), cache.TaskListKey(userID))
	assert.Nil(t, raw, "create drops the snapshot")

	rec = s.do(http.MethodGet, "/api/tasks", token, "")
	assert.Len(t, decode[handler.TaskListResponse](t, rec).Tasks, 1)
}

func TestEndToEnd_Ownership(t *testing.T) {
	s := newTestServer(t)
	alice := s.signup("alice@x.io", "secret1")
	bob := s.signup("bob@x.io", "secret1")

	rec := s.do(http.MethodPost, "/api/tasks", alice, `{"title":"private","description":"d"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[handler.TaskResponse](t, rec).Task.ID.String()

	missing := s.do(http.MethodPut, "/api/tasks/00000000-0000-4000-8000-000000000000", bob, `{"title":"x"}`)
	foreign := s.do(http.MethodPut, "/api/tasks/"+id, bob, `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, foreign.Code)
	assert.Equal(t, missing.Code, foreign.Code)
	assert.JSONEq(t, missing.Body.String(), foreign.Body.String())

	rec = s.do(http.MethodDelete, "/api/tasks/"+id, bob, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/tasks", bob, "")
	assert.Empty(t, decode[handler.TaskListResponse](t, rec).Tasks)

	rec = s.do(http.MethodGet, "/api/tasks", alice, "")
	tasks := decode[handler.TaskListResponse](t, rec).Tasks
	require.Len(t, tasks, 1)
	assert.Equal(t, "private", tasks[0].Title)
}

func TestEndToEnd_AuthFailures(t *testing.T) {
	s := newTestServer(t)
	s.signup("alice@x.io", "secret1")

	rec := s.do(http.MethodPost, "/api/auth/user/signup", "",
		`{"email":"alice@x.io","password":"other12","fname":"A","lname":"B"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "USER_ALREADY_EXISTS")

	rec = s.do(http.MethodPost, "/api/auth/user/login", "", `{"email":"alice@x.io","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(http.MethodPost, "/api/auth/user/login", "", `{"email":"ghost@x.io","password":"secret1"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/api/tasks", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"unauthorized","code":"UNAUTHORIZED"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/api/tasks", "not.a.token", `{"title":"T1","description":"d"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthzAndCORS(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))

	req := httptest.NewRequest(http.MethodOptions, "/api/tasks", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
	rec = httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
	assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
}
