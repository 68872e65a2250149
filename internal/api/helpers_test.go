package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/api/middleware"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/events"
	"github.com/phrazzld/studyace/internal/mocks"
	"github.com/phrazzld/studyace/internal/platform/logger"
	"github.com/phrazzld/studyace/internal/platform/memory"
	"github.com/phrazzld/studyace/internal/service"
	"github.com/phrazzld/studyace/internal/service/account"
	"github.com/phrazzld/studyace/internal/service/auth"
	"github.com/phrazzld/studyace/internal/service/practice"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testCookieName = "studyace_session"

// testAPI is the full /api router over memory stores. Tokens are issued by
// mocks.MockJWTService, so mocks.AccessToken(id) authenticates as id.
type testAPI struct {
	router   http.Handler
	users    *memory.UserStore
	sets     *memory.SetStore
	accounts account.Service
	logs     *logger.TestLogBuffer
}

type apiOptions struct {
	sets     service.SetService
	practice practice.Service
}

func newTestAPI(t *testing.T, opts ...func(*apiOptions)) *testAPI {
	t.Helper()
	log, buf := logger.NewTestLogger()

	db := memory.NewDB()
	users := memory.NewUserStore(db, bcrypt.MinCost)
	sets := memory.NewSetStore(db)
	tx := memory.NewTransactor(db, users, sets)
	sessions := memory.NewSessionStore(time.Hour, log)
	emitter := events.NewInMemoryEventEmitter(log)

	accounts := account.NewService(users, tx, sessions, auth.NewBcryptVerifier(), emitter, log)
	setSvc, err := service.NewSetService(sets, tx, log)
	require.NoError(t, err)

	o := apiOptions{
		sets:     setSvc,
		practice: practice.NewService(sets, tx, sessions, emitter, log),
	}
	for _, opt := range opts {
		opt(&o)
	}

	jwt := mocks.NewMockJWTService()
	r := chi.NewRouter()
	r.Use(middleware.NewTraceMiddleware(log))
	r.Get("/health", Health)
	RegisterRoutes(r, Handlers{
		Auth:     NewAuthHandler(accounts, jwt, time.Hour),
		Account:  NewAccountHandler(accounts),
		Sets:     NewSetHandler(o.sets),
		Practice: NewPracticeHandler(o.practice),
	}, middleware.NewAuthMiddleware(jwt), middleware.NewSessionMiddleware(testCookieName, time.Hour, false))

	return &testAPI{router: r, users: users, sets: sets, accounts: accounts, logs: buf}
}

// request describes one call against the test router.
type request struct {
	method  string
	path    string
	body    any
	userID  uuid.UUID
	cookies []*http.Cookie
	header  http.Header
	raw     io.Reader
}

func (a *testAPI) do(t *testing.T, req request) *httptest.ResponseRecorder {
	t.Helper()
	body := req.raw
	if body == nil && req.body != nil {
		b, err := json.Marshal(req.body)
		require.NoError(t, err)
		body = bytes.NewReader(b)
	}
	r := httptest.NewRequest(req.method, req.path, body)
	if req.body != nil {
		r.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.header {
		r.Header[k] = v
	}
	if req.userID != uuid.Nil {
		r.Header.Set("Authorization", "Bearer "+mocks.AccessToken(req.userID))
	}
	for _, c := range req.cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, r)
	return w
}

func (a *testAPI) register(t *testing.T, username string) *domain.User {
	t.Helper()
	user, err := a.accounts.Register(context.Background(), username, "password123")
	require.NoError(t, err)
	return user
}

func (a *testAPI) createSet(t *testing.T, owner uuid.UUID, title string, public bool, cards ...domain.CardInput) *domain.FlashcardSet {
	t.Helper()
	set, err := domain.NewFlashcardSet(owner, title, cards)
	require.NoError(t, err)
	set.IsPublic = public
	require.NoError(t, a.sets.Create(context.Background(), set))
	return set
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == testCookieName {
			return c
		}
	}
	t.Fatalf("response set no %s cookie", testCookieName)
	return nil
}

var capitals = []domain.CardInput{
	{Term: "France", Definition: "Paris", Tags: "europe"},
	{Term: "Japan", Definition: "Tokyo", Tags: "asia"},
	{Term: "Spain", Definition: "Madrid", Tags: "europe, iberia"},
}

func definitionOf(cards []domain.CardInput, term string) string {
	for _, c := range cards {
		if c.Term == term {
			return c.Definition
		}
	}
	return ""
}

func newJSONRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	b, err := json.Marshal(body)
	require.NoError(t, err)
	r := httptest.NewRequest(method, path, bytes.NewReader(b))
	r.Header.Set("Content-Type", "application/json")
	return r
}

func newRecorder() *httptest.ResponseRecorder {
	return httptest.NewRecorder()
}
