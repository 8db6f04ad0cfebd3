package app

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"solveit_backend/internal/config"
	"solveit_backend/internal/model"
	"solveit_backend/pkg/database"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func testConfig() *config.Config {
	return &config.Config{
		Server:    config.ServerConfig{Port: "0", Mode: "test"},
		Database:  config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:", LogLevel: "silent"},
		JWT:       config.JWTConfig{Secret: "app-test-secret", ExpireTime: time.Hour},
		Auth:      config.AuthConfig{GuestUserID: "demo-user-id"},
		Streak:    config.StreakConfig{Timezone: "UTC", CronSecret: "cron-secret"},
		CORS:      config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
		RateLimit: config.RateLimitConfig{MaxRequests: 1000, WindowMinutes: 1},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := testConfig()
	db, err := database.InitDB(&cfg.Database)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	a, err := New(cfg, db, nil)
	require.NoError(t, err)
	t.Cleanup(func() { a.Close(context.Background()) })
	return a
}

func call(t *testing.T, a *App, method, path string, body interface{}, header http.Header) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w.Code, env
}

func seedQuestion(t *testing.T, a *App) *model.Question {
	t.Helper()
	company := &model.Company{Name: "Google", Slug: "google"}
	require.NoError(t, a.DB.Create(company).Error)
	q := &model.Question{CompanyID: company.ID, Title: "Two Sum", Topic: "Array", Frequency: "100.0", LeetcodeURL: "https://leetcode.com/problems/two-sum"}
	require.NoError(t, a.DB.Create(q).Error)
	return q
}

func bearer(token string) http.Header {
	return http.Header{"Authorization": {"Bearer " + token}}
}

func TestSignupProgressStatsFlow(t *testing.T) {
	a := newTestApp(t)
	q := seedQuestion(t, a)

	code, env := call(t, a, http.MethodPost, "/api/auth/signup", gin.H{"name": "Ada", "email": "ada@example.com", "password": "secret1"}, nil)
	require.Equal(t, http.StatusCreated, code)
	var signup struct {
		Token string           `json:"token"`
		User  model.PublicUser `json:"user"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &signup))
	require.NotEmpty(t, signup.Token)

	code, env = call(t, a, http.MethodPost, "/api/user/progress", gin.H{"questionId": q.ID, "status": "DONE"}, bearer(signup.Token))
	require.Equal(t, http.StatusOK, code)
	var update model.ProgressUpdate
	require.NoError(t, json.Unmarshal(env.Data, &update))
	assert.Equal(t, 1, update.Streak.CurrentStreak)

	code, env = call(t, a, http.MethodGet, "/api/user/stats", nil, bearer(signup.Token))
	require.Equal(t, http.StatusOK, code)
	var stats model.UserStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 1, stats.TotalSolved)
	assert.Equal(t, 1, stats.CurrentStreak)
	assert.Equal(t, []model.TopicCount{{Name: "Array", Value: 1}}, stats.TopicMastery)

	code, env = call(t, a, http.MethodGet, "/api/companies?type=topic&query=arr", nil, bearer(signup.Token))
	require.Equal(t, http.StatusOK, code)
	var companies []model.CompanySummary
	require.NoError(t, json.Unmarshal(env.Data, &companies))
	require.Len(t, companies, 1)
	assert.EqualValues(t, 1, companies[0].SolvedCount)

	code, env = call(t, a, http.MethodGet, "/api/companies/google", nil, bearer(signup.Token))
	require.Equal(t, http.StatusOK, code)
	var detail model.CompanyDetail
	require.NoError(t, json.Unmarshal(env.Data, &detail))
	require.Len(t, detail.Questions, 1)
	assert.Equal(t, model.StatusDone, detail.Questions[0].Status)

	code, _ = call(t, a, http.MethodGet, "/api/auth/me", nil, bearer(signup.Token))
	assert.Equal(t, http.StatusOK, code)
}

func TestAuthErrors(t *testing.T) {
	a := newTestApp(t)

	code, _ := call(t, a, http.MethodPost, "/api/auth/signup", gin.H{"name": "A", "email": "a@example.com", "password": "secret1"}, nil)
	assert.Equal(t, http.StatusBadRequest, code, "name too short")

	code, _ = call(t, a, http.MethodPost, "/api/auth/signup", gin.H{"name": "Ada", "email": "a@example.com", "password": "12345"}, nil)
	assert.Equal(t, http.StatusBadRequest, code, "password too short")

	code, _ = call(t, a, http.MethodPost, "/api/auth/signup", gin.H{"name": "Ada", "email": "a@example.com", "password": "secret1"}, nil)
	require.Equal(t, http.StatusCreated, code)
	code, _ = call(t, a, http.MethodPost, "/api/auth/signup", gin.H{"name": "Ada", "email": "a@example.com", "password": "secret1"}, nil)
	assert.Equal(t, http.StatusConflict, code)

	code, _ = call(t, a, http.MethodPost, "/api/auth/login", gin.H{"email": "a@example.com", "password": "wrong!"}, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, a, http.MethodGet, "/api/user/stats", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, a, http.MethodGet, "/api/user/stats", nil, bearer("not-a-jwt"))
	assert.Equal(t, http.StatusForbidden, code)
}

func TestGuestModeAndValidation(t *testing.T) {
	a := newTestApp(t)
	q := seedQuestion(t, a)
	guest := http.Header{"X-User-Id": {"demo-user-id"}}

	code, _ := call(t, a, http.MethodGet, "/api/user/stats", nil, guest)
	assert.Equal(t, http.StatusNotFound, code, "guest has no row before the first write")

	code, _ = call(t, a, http.MethodPost, "/api/user/progress", gin.H{"questionId": q.ID, "status": "SOLVED"}, guest)
	assert.Equal(t, http.StatusBadRequest, code)

	code, _ = call(t, a, http.MethodPost, "/api/user/progress", gin.H{"questionId": "missing", "status": "DONE"}, guest)
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = call(t, a, http.MethodPost, "/api/user/progress", gin.H{"questionId": q.ID, "status": "REVISING"}, guest)
	require.Equal(t, http.StatusOK, code)

	code, env := call(t, a, http.MethodGet, "/api/user/stats", nil, guest)
	require.Equal(t, http.StatusOK, code)
	var stats model.UserStats
	require.NoError(t, json.Unmarshal(env.Data, &stats))
	assert.Equal(t, 0, stats.TotalSolved)
	require.Len(t, stats.RevisingQuestions, 1)
}

func TestCronEndpoint(t *testing.T) {
	a := newTestApp(t)

	code, _ := call(t, a, http.MethodGet, "/api/cron/daily-streak", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, code)

	code, _ = call(t, a, http.MethodGet, "/api/cron/daily-streak", nil, bearer("wrong"))
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := call(t, a, http.MethodGet, "/api/cron/daily-streak", nil, bearer("cron-secret"))
	require.Equal(t, http.StatusOK, code)
	var result model.SweepResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.Equal(t, a.Calendar.Today().String(), result.Day)

	// A reloaded config without a secret opens the endpoint.
	reloaded := testConfig()
	reloaded.Streak.CronSecret = ""
	a.ApplyConfig(reloaded)
	code, _ = call(t, a, http.MethodGet, "/api/cron/daily-streak", nil, nil)
	assert.Equal(t, http.StatusOK, code)
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)

	code, env := call(t, a, http.MethodGet, "/api/health", nil, nil)
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, string(env.Data), `"redis":"disabled"`)
}
