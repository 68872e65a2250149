package account

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/gamification"
	"github.com/phrazzld/studyace/internal/events"
	"github.com/phrazzld/studyace/internal/mocks"
	"github.com/phrazzld/studyace/internal/platform/memory"
	"github.com/phrazzld/studyace/internal/service/auth"
	"github.com/phrazzld/studyace/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	svc      *serviceImpl
	users    *memory.UserStore
	sets     *memory.SetStore
	sessions *memory.SessionStore
	events   []*events.Event
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := memory.NewDB()
	f := &fixture{
		users:    memory.NewUserStore(db, bcrypt.MinCost),
		sets:     memory.NewSetStore(db),
		sessions: memory.NewSessionStore(time.Hour, nil),
		now:      time.Date(2025, 6, 1, 18, 30, 0, 0, time.UTC),
	}
	emitter := events.NewInMemoryEventEmitter(nil)
	emitter.RegisterHandler(events.HandlerFunc(func(_ context.Context, e *events.Event) error {
		f.events = append(f.events, e)
		return nil
	}))

	svc := NewService(
		f.users,
		memory.NewTransactor(db, f.users, f.sets),
		f.sessions,
		auth.NewBcryptVerifier(),
		emitter,
		nil,
	).(*serviceImpl)
	svc.now = func() time.Time { return f.now }
	f.svc = svc
	return f
}

func (f *fixture) register(t *testing.T, name string) *domain.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), name, "password123")
	require.NoError(t, err)
	return u
}

func TestNewService_PanicsOnNilDependencies(t *testing.T) {
	t.Parallel()
	db := memory.NewDB()
	users := memory.NewUserStore(db, bcrypt.MinCost)
	tx := memory.NewTransactor(db, users, memory.NewSetStore(db))
	sessions := memory.NewSessionStore(time.Hour, nil)
	verifier := auth.NewBcryptVerifier()
	emitter := events.NewInMemoryEventEmitter(nil)

	assert.Panics(t, func() { NewService(nil, tx, sessions, verifier, emitter, nil) })
	assert.Panics(t, func() { NewService(users, nil, sessions, verifier, emitter, nil) })
	assert.Panics(t, func() { NewService(users, tx, nil, verifier, emitter, nil) })
	assert.Panics(t, func() { NewService(users, tx, sessions, nil, emitter, nil) })
	assert.Panics(t, func() { NewService(users, tx, sessions, verifier, nil, nil) })
}

func TestRegister(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	u := f.register(t, "ada")
	assert.NotEqual(t, uuid.Nil, u.ID)
	assert.Empty(t, u.Password)

	sets, err := f.sets.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, sets, 1)
	assert.True(t, sets[0].IsDefault)
	assert.Equal(t, domain.DefaultSetTitle, sets[0].Title)
	assert.Len(t, sets[0].Cards, 4)

	require.Len(t, f.events, 1)
	assert.Equal(t, events.TypeUserRegistered, f.events[0].Type)

	_, err = f.svc.Register(ctx, "ADA", "password123")
	assert.ErrorIs(t, err, store.ErrUsernameExists)

	_, err = f.svc.Register(ctx, "bob", "short")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.ErrorIs(t, err, domain.ErrPasswordTooShort)

	_, err = f.svc.Register(ctx, "two words", "password123")
	assert.ErrorIs(t, err, domain.ErrInvalidUsername)
}

func TestAuthenticate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "ada")

	got, err := f.svc.Authenticate(ctx, "ada", "password123", "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = f.svc.Authenticate(ctx, "ada", "wrong-password", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.svc.Authenticate(ctx, "nobody", "password123", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestPasswordChecksGoThroughVerifier(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "ada")

	reject := &mocks.MockPasswordVerifier{}
	f.svc.verifier = reject
	_, err := f.svc.Authenticate(ctx, "ada", "password123", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.ErrorIs(t, f.svc.Delete(ctx, u.ID, "password123"), ErrInvalidCredentials)
	assert.Equal(t, []string{"password123", "password123"}, reject.Calls)

	f.svc.verifier = &mocks.MockPasswordVerifier{Accept: true}
	got, err := f.svc.Authenticate(ctx, "ada", "anything", "")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestAuthenticate_MergesAnonymousChallenge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "ada")

	anon := &domain.Ledger{Challenge: domain.NewDailyChallenge(f.now)}
	anon.Challenge.Progress = 6
	require.NoError(t, f.sessions.SaveLedger(ctx, "browser-1", anon))

	_, err := f.svc.Authenticate(ctx, "ada", "password123", "browser-1")
	require.NoError(t, err)

	ledger, err := f.users.GetLedger(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, ledger.Challenge.Progress)
	assert.True(t, ledger.Challenge.IsFor(f.now))

	// Yesterday's anonymous progress is ignored.
	stale := &domain.Ledger{Challenge: domain.NewDailyChallenge(f.now.AddDate(0, 0, -1))}
	stale.Challenge.Progress = 9
	require.NoError(t, f.sessions.SaveLedger(ctx, "browser-2", stale))
	_, err = f.svc.Authenticate(ctx, "ada", "password123", "browser-2")
	require.NoError(t, err)

	ledger, err = f.users.GetLedger(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, ledger.Challenge.Progress)

	// An unknown session is not an error.
	_, err = f.svc.Authenticate(ctx, "ada", "password123", "never-seen")
	assert.NoError(t, err)
}

func TestAuthenticate_KeepsCompletedChallenge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "ada")

	ledger, err := f.users.GetLedger(ctx, u.ID)
	require.NoError(t, err)
	tracker := gamification.NewTracker(ledger)
	for i := 0; i < domain.DailyChallengeGoal; i++ {
		tracker.Advance(f.now, 1)
	}
	require.True(t, ledger.Challenge.Completed)
	require.NoError(t, f.users.SaveLedger(ctx, u.ID, ledger))
	points, completions := ledger.Points, ledger.ChallengesCompleted

	anon := &domain.Ledger{Challenge: domain.NewDailyChallenge(f.now)}
	anon.Challenge.Progress = 3
	require.NoError(t, f.sessions.SaveLedger(ctx, "browser-1", anon))

	_, err = f.svc.Authenticate(ctx, "ada", "password123", "browser-1")
	require.NoError(t, err)

	ledger, err = f.users.GetLedger(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ledger.Challenge.Completed)
	assert.Equal(t, domain.DailyChallengeGoal, ledger.Challenge.Progress)

	// Finishing another ten answers the same day pays nothing more.
	tracker = gamification.NewTracker(ledger)
	for i := 0; i < domain.DailyChallengeGoal; i++ {
		assert.False(t, tracker.Advance(f.now, 1))
	}
	assert.Equal(t, points, ledger.Points)
	assert.Equal(t, completions, ledger.ChallengesCompleted)
}

func TestAuthenticate_AdoptsCompletedAnonymousChallenge(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "ada")

	anon := &domain.Ledger{Challenge: domain.NewDailyChallenge(f.now)}
	anon.Challenge.Progress = anon.Challenge.Goal
	anon.Challenge.Completed = true
	require.NoError(t, f.sessions.SaveLedger(ctx, "browser-1", anon))

	_, err := f.svc.Authenticate(ctx, "ada", "password123", "browser-1")
	require.NoError(t, err)

	ledger, err := f.users.GetLedger(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, ledger.Challenge.Completed)
	assert.Equal(t, 1, ledger.ChallengesCompleted)
	assert.Contains(t, ledger.Badges, gamification.BadgeChallengeWinner)
	assert.Equal(t, 0, ledger.Points)
}

func TestDashboard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "ada")

	require.NoError(t, f.users.SaveLedger(ctx, u.ID, &domain.Ledger{
		Points:     120,
		Streak:     6,
		LastActive: domain.DateOf(f.now.AddDate(0, 0, -1)),
	}))
	set, err := domain.NewFlashcardSet(u.ID, "Mine", []domain.CardInput{
		{Term: "a", Definition: "1"}, {Term: "b", Definition: "2"},
	})
	require.NoError(t, err)
	require.NoError(t, f.sets.Create(ctx, set))

	dash, err := f.svc.Dashboard(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "ada", dash.Username)
	assert.Equal(t, 120, dash.Points)
	assert.Equal(t, 7, dash.Streak)
	assert.Equal(t, "Intermediate", dash.Level)
	require.NotNil(t, dash.NextLevel)
	assert.Equal(t, "Advanced", dash.NextLevel.Name)
	assert.Equal(t, 380, dash.PointsToNextLevel)
	assert.Equal(t, []string{gamification.BadgeStreak7, gamification.BadgePoints100}, dash.Badges)
	assert.Equal(t, []string{
		gamification.AchievementFirstSet,
		gamification.AchievementPoints100,
		gamification.AchievementStreak7,
	}, dash.Achievements)
	assert.Equal(t, gamification.AchievementStreak7, dash.LatestAchievement)
	assert.True(t, dash.Challenge.IsFor(f.now))

	ledger, err := f.users.GetLedger(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, 7, ledger.Streak)

	_, err = f.svc.Dashboard(ctx, uuid.New())
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func TestChangeUsername(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	ada := f.register(t, "ada")
	f.register(t, "bob")

	require.NoError(t, f.svc.ChangeUsername(ctx, ada.ID, "lovelace"))
	got, err := f.svc.GetUser(ctx, ada.ID)
	require.NoError(t, err)
	assert.Equal(t, "lovelace", got.Username)

	assert.ErrorIs(t, f.svc.ChangeUsername(ctx, ada.ID, "Bob"), store.ErrUsernameExists)
	assert.ErrorIs(t, f.svc.ChangeUsername(ctx, ada.ID, ""), domain.ErrValidation)
	assert.ErrorIs(t, f.svc.ChangeUsername(ctx, uuid.New(), "ghost"), store.ErrUserNotFound)

	_, err = f.svc.Authenticate(ctx, "lovelace", "password123", "")
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "ada")

	assert.ErrorIs(t, f.svc.ChangePassword(ctx, u.ID, "wrong-password", "newpassword1"), ErrInvalidCredentials)
	assert.ErrorIs(t, f.svc.ChangePassword(ctx, u.ID, "password123", "tiny"), domain.ErrValidation)

	require.NoError(t, f.svc.ChangePassword(ctx, u.ID, "password123", "newpassword1"))

	_, err := f.svc.Authenticate(ctx, "ada", "password123", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = f.svc.Authenticate(ctx, "ada", "newpassword1", "")
	assert.NoError(t, err)
}

func TestDelete(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)
	u := f.register(t, "ada")

	assert.ErrorIs(t, f.svc.Delete(ctx, u.ID, "wrong-password"), ErrInvalidCredentials)
	require.NoError(t, f.svc.Delete(ctx, u.ID, "password123"))

	_, err := f.svc.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	sets, err := f.sets.ListByUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, sets)

	assert.ErrorIs(t, f.svc.Delete(ctx, u.ID, "password123"), store.ErrUserNotFound)
}

func TestLeaderboard(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	f := newFixture(t)

	points := map[string]int{"ada": 90, "bob": 90, "cy": 50, "dee": 10}
	ids := map[string]uuid.UUID{}
	for name, p := range points {
		u := f.register(t, name)
		ids[name] = u.ID
		require.NoError(t, f.users.SaveLedger(ctx, u.ID, &domain.Ledger{Points: p}))
	}

	board, err := f.svc.Leaderboard(ctx, ids["dee"], 2)
	require.NoError(t, err)
	assert.Equal(t, 4, board.Total)
	require.Len(t, board.Standings, 2)
	assert.Equal(t, "ada", board.Standings[0].DisplayName)
	assert.Equal(t, 1, board.Standings[0].Rank)
	assert.Equal(t, 1, board.Standings[1].Rank)
	require.NotNil(t, board.Viewer)
	assert.Equal(t, 4, board.Viewer.Rank)
	assert.Equal(t, "dee", board.Viewer.DisplayName)

	board, err = f.svc.Leaderboard(ctx, uuid.Nil, 0)
	require.NoError(t, err)
	require.Len(t, board.Standings, 4)
	assert.Nil(t, board.Viewer)
	assert.Equal(t, 3, board.Standings[2].Rank)
	assert.Equal(t, "Beginner", board.Standings[3].Level)
}

func TestServiceError(t *testing.T) {
	t.Parallel()
	cause := errors.New("disk full")
	err := newError("register", "failed to create user", cause)
	assert.Equal(t, "register operation failed: failed to create user: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}
