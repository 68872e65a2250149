package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/studyace/internal/api"
	"github.com/phrazzld/studyace/internal/config"
	"github.com/phrazzld/studyace/internal/platform/logger"
	"github.com/phrazzld/studyace/internal/service/account"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:                   8080,
			LogLevel:               "debug",
			AllowedOrigins:         []string{"https://study.example"},
			ShutdownTimeoutSeconds: 2,
		},
		Database: config.DatabaseConfig{Backend: "memory", MaxOpenConns: 1},
		Auth: config.AuthConfig{
			JWTSecret:                   "thisisasecretkeythatis32charslong!!",
			BCryptCost:                  4,
			TokenLifetimeMinutes:        60,
			RefreshTokenLifetimeMinutes: 1440,
		},
		Session: config.SessionConfig{
			Backend:    "memory",
			TTLMinutes: 60,
			CookieName: "studyace_session",
		},
	}
}

func newTestApplication(t *testing.T) *application {
	t.Helper()
	cfg := testConfig()
	l, _ := logger.NewTestLogger()

	st, err := openStorage(context.Background(), cfg, l)
	require.NoError(t, err)
	app, err := newApplication(cfg, l, st)
	require.NoError(t, err)
	return app
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	app := newTestApplication(t)
	rec := doJSON(t, app.setupRouter(), http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRegisterThenDashboard(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/auth/register", "",
		api.RegisterRequest{Username: "ada", Password: "password123"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var auth api.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &auth))
	require.NotEmpty(t, auth.AccessToken)
	assert.Equal(t, "ada", auth.Username)

	rec = doJSON(t, router, http.MethodGet, "/api/me", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var dash account.Dashboard
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Equal(t, auth.UserID, dash.UserID)
	assert.Equal(t, 0, dash.Points)

	rec = doJSON(t, router, http.MethodGet, "/api/sets", auth.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sets []api.SetSummaryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sets))
	require.Len(t, sets, 1)
	assert.True(t, sets[0].IsDefault)
}

func TestDashboardRequiresToken(t *testing.T) {
	app := newTestApplication(t)
	rec := doJSON(t, app.setupRouter(), http.MethodGet, "/api/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAnonymousRequestGetsSessionCookie(t *testing.T) {
	app := newTestApplication(t)
	rec := doJSON(t, app.setupRouter(), http.MethodGet, "/api/leaderboard", "", nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "studyace_session" {
			found = true
			assert.True(t, c.HttpOnly)
			assert.NotEmpty(t, c.Value)
		}
	}
	assert.True(t, found, "session cookie not set")
}

func TestCORSPreflight(t *testing.T) {
	app := newTestApplication(t)
	router := app.setupRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/sets", nil)
	req.Header.Set("Origin", "https://study.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "https://study.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodOptions, "/api/sets", nil)
	req.Header.Set("Origin", "https://evil.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardEchoesOrigin(t *testing.T) {
	app := newTestApplication(t)
	app.config.Server.AllowedOrigins = []string{"*"}

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rec := httptest.NewRecorder()
	app.setupRouter().ServeHTTP(rec, req)

	assert.Equal(t, "https://anywhere.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServeStopsOnCancel(t *testing.T) {
	app := newTestApplication(t)
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.serve(ctx, ln) }()

	url := "http://" + ln.Addr().String() + "/health"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
