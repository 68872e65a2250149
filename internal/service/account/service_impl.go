package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/gamification"
	"github.com/phrazzld/studyace/internal/events"
	"github.com/phrazzld/studyace/internal/platform/logger"
	"github.com/phrazzld/studyace/internal/service/auth"
	"github.com/phrazzld/studyace/internal/store"
)

var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	users    store.UserStore
	tx       store.Transactor
	sessions store.SessionStore
	verifier auth.PasswordVerifier
	emitter  events.EventEmitter
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates an account Service.
func NewService(
	users store.UserStore,
	tx store.Transactor,
	sessions store.SessionStore,
	verifier auth.PasswordVerifier,
	emitter events.EventEmitter,
	logger *slog.Logger,
) Service {
	if users == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("users cannot be nil")
	}
	if tx == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tx cannot be nil")
	}
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessions cannot be nil")
	}
	if verifier == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("verifier cannot be nil")
	}
	if emitter == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &serviceImpl{
		users:    users,
		tx:       tx,
		sessions: sessions,
		verifier: verifier,
		emitter:  emitter,
		now:      time.Now,
		logger:   logger.With(slog.String("component", "account_service")),
	}
}

// Register implements Service.
func (s *serviceImpl) Register(ctx context.Context, username, password string) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := domain.NewUser(username, password)
	if err != nil {
		log.Debug("registration rejected", slog.String("reason", err.Error()))
		return nil, fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		if err := st.Users.Create(ctx, user); err != nil {
			return err
		}
		set, err := domain.NewDefaultSet(user.ID)
		if err != nil {
			return err
		}
		return st.Sets.Create(ctx, set)
	})
	if err != nil {
		if errors.Is(err, store.ErrUsernameExists) {
			log.Debug("registration rejected: username taken", slog.String("username", user.Username))
			return nil, store.ErrUsernameExists
		}
		log.Error("failed to register user",
			slog.String("username", user.Username),
			slog.String("error", err.Error()))
		return nil, newError("register", "failed to create user", err)
	}

	log.Info("user registered",
		slog.String("user_id", user.ID.String()),
		slog.String("username", user.Username))
	s.emit(ctx, domain.UserActor(user.ID), events.TypeUserRegistered, events.UserRegistered{
		UserID:   user.ID,
		Username: user.Username,
	})
	return user, nil
}

// Authenticate implements Service.
func (s *serviceImpl) Authenticate(
	ctx context.Context,
	username, password, anonymousSessionID string,
) (*domain.User, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if store.IsNotFoundError(err) {
			log.Debug("login failed: unknown user")
			return nil, ErrInvalidCredentials
		}
		log.Error("failed to load user for login", slog.String("error", err.Error()))
		return nil, newError("authenticate", "failed to load user", err)
	}
	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		log.Debug("login failed: wrong password", slog.String("user_id", user.ID.String()))
		return nil, ErrInvalidCredentials
	}

	if anonymousSessionID != "" {
		if err := s.mergeAnonymousChallenge(ctx, user.ID, anonymousSessionID); err != nil {
			// The login itself succeeded; losing anonymous progress is not fatal.
			log.Warn("failed to merge anonymous challenge",
				slog.String("user_id", user.ID.String()),
				slog.String("error", err.Error()))
		}
	}
	return user, nil
}

func (s *serviceImpl) mergeAnonymousChallenge(ctx context.Context, userID uuid.UUID, sessionID string) error {
	anon, err := s.sessions.GetLedger(ctx, sessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	today := domain.DateOf(s.now())
	return s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		ledger, err := st.Users.GetLedger(ctx, userID)
		if err != nil {
			return err
		}
		if !gamification.MergeOnLogin(&anon.Challenge, ledger, today) {
			return nil
		}
		logger.FromContextOrDefault(ctx, s.logger).Debug("merged anonymous challenge progress",
			slog.String("user_id", userID.String()),
			slog.Int("progress", ledger.Challenge.Progress))
		return st.Users.SaveLedger(ctx, userID, ledger)
	})
}

// GetUser implements Service.
func (s *serviceImpl) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrUserNotFound
		}
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to get user",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, newError("get_user", "failed to get user", err)
	}
	return user, nil
}

// Dashboard implements Service.
func (s *serviceImpl) Dashboard(ctx context.Context, userID uuid.UUID) (*Dashboard, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	today := domain.DateOf(s.now())

	var dash *Dashboard
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		user, err := st.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		ledger, err := st.Users.GetLedger(ctx, userID)
		if err != nil {
			return err
		}
		stats, err := st.Sets.Stats(ctx, userID)
		if err != nil {
			return err
		}

		gamification.TouchActivity(ledger, today)
		challenge := gamification.NewTracker(ledger).Status(today)
		gamification.RecomputeAchievements(ledger, stats, today)
		if err := st.Users.SaveLedger(ctx, userID, ledger); err != nil {
			return err
		}

		dash = newDashboard(user, ledger, challenge)
		return nil
	})
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to build dashboard",
			slog.String("user_id", userID.String()),
			slog.String("error", err.Error()))
		return nil, newError("dashboard", "failed to load dashboard", err)
	}
	return dash, nil
}

func newDashboard(user *domain.User, ledger *domain.Ledger, challenge domain.DailyChallenge) *Dashboard {
	dash := &Dashboard{
		UserID:            user.ID,
		Username:          user.Username,
		Points:            ledger.Points,
		Streak:            ledger.Streak,
		Level:             gamification.LevelFor(ledger.Points).Name,
		Badges:            nonNil(ledger.Badges),
		Achievements:      nonNil(ledger.Achievements),
		LatestAchievement: gamification.LatestAchievement(ledger),
		Challenge:         challenge,
	}
	if next, ok := gamification.NextLevel(ledger.Points); ok {
		dash.NextLevel = &next
		dash.PointsToNextLevel = next.MinPoints - ledger.Points
	}
	return dash
}

// ChangeUsername implements Service.
func (s *serviceImpl) ChangeUsername(ctx context.Context, userID uuid.UUID, username string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidateUsername(username); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		user, err := st.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		user.Username = username
		user.UpdatedAt = s.now().UTC()
		return st.Users.Update(ctx, user)
	})
	switch {
	case err == nil:
		log.Info("username changed", slog.String("user_id", userID.String()))
		return nil
	case errors.Is(err, store.ErrUsernameExists):
		return store.ErrUsernameExists
	case store.IsNotFoundError(err):
		return store.ErrUserNotFound
	}
	log.Error("failed to change username",
		slog.String("user_id", userID.String()),
		slog.String("error", err.Error()))
	return newError("change_username", "failed to update user", err)
}

// ChangePassword implements Service.
func (s *serviceImpl) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := domain.ValidatePassword(next); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrValidation, err)
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		user, err := st.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.verifier.Compare(user.HashedPassword, current); err != nil {
			return ErrInvalidCredentials
		}
		user.Password = next
		user.UpdatedAt = s.now().UTC()
		return st.Users.Update(ctx, user)
	})
	switch {
	case err == nil:
		log.Info("password changed", slog.String("user_id", userID.String()))
		return nil
	case errors.Is(err, ErrInvalidCredentials):
		return ErrInvalidCredentials
	case store.IsNotFoundError(err):
		return store.ErrUserNotFound
	}
	log.Error("failed to change password",
		slog.String("user_id", userID.String()),
		slog.String("error", err.Error()))
	return newError("change_password", "failed to update user", err)
}

// Delete implements Service.
func (s *serviceImpl) Delete(ctx context.Context, userID uuid.UUID, password string) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	err := s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		user, err := st.Users.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
			return ErrInvalidCredentials
		}
		return st.Users.Delete(ctx, userID)
	})
	switch {
	case err == nil:
		log.Info("user deleted", slog.String("user_id", userID.String()))
		return nil
	case errors.Is(err, ErrInvalidCredentials):
		return ErrInvalidCredentials
	case store.IsNotFoundError(err):
		return store.ErrUserNotFound
	}
	log.Error("failed to delete user",
		slog.String("user_id", userID.String()),
		slog.String("error", err.Error()))
	return newError("delete", "failed to delete user", err)
}

// Leaderboard implements Service.
func (s *serviceImpl) Leaderboard(ctx context.Context, viewer uuid.UUID, limit int) (*Leaderboard, error) {
	rows, err := s.users.Leaderboard(ctx)
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Error("failed to load leaderboard",
			slog.String("error", err.Error()))
		return nil, newError("leaderboard", "failed to load scores", err)
	}

	competitors := make([]gamification.Competitor, 0, len(rows))
	for _, r := range rows {
		competitors = append(competitors, gamification.Competitor{
			ID:          r.UserID,
			DisplayName: r.Username,
			Points:      r.Points,
		})
	}
	standings := gamification.Rank(competitors)

	board := &Leaderboard{Standings: standings, Total: len(standings)}
	if viewer != uuid.Nil {
		if own, ok := gamification.Find(standings, viewer); ok {
			board.Viewer = &own
		}
	}
	if limit > 0 && limit < len(standings) {
		board.Standings = standings[:limit]
	}
	return board, nil
}

func (s *serviceImpl) emit(ctx context.Context, actor domain.Actor, eventType string, payload any) {
	event, err := events.NewEvent(eventType, actor.Key(), payload)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		logger.FromContextOrDefault(ctx, s.logger).Warn("failed to emit event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}

func nonNil(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
