package practice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/gamification"
	engine "github.com/phrazzld/studyace/internal/domain/practice"
	"github.com/phrazzld/studyace/internal/events"
	"github.com/phrazzld/studyace/internal/platform/logger"
	"github.com/phrazzld/studyace/internal/store"
)

var _ Service = (*serviceImpl)(nil)

type serviceImpl struct {
	sets     store.SetStore
	tx       store.Transactor
	sessions store.SessionStore
	emitter  events.EventEmitter
	engine   *engine.Engine
	now      func() time.Time
	logger   *slog.Logger
}

// Option customizes a Service.
type Option func(*serviceImpl)

// WithClock replaces time.Now as the source of "today".
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) { s.now = now }
}

// WithRandom replaces the random source used for shuffles and choices.
func WithRandom(rnd engine.Random) Option {
	return func(s *serviceImpl) { s.engine = engine.NewEngine(rnd) }
}

// NewService creates a practice Service. Set reads go through sets; user
// ledgers are read and written through tx; session progress and anonymous
// ledgers live in sessions.
func NewService(
	sets store.SetStore,
	tx store.Transactor,
	sessions store.SessionStore,
	emitter events.EventEmitter,
	logger *slog.Logger,
	opts ...Option,
) Service {
	if sets == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sets cannot be nil")
	}
	if tx == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("tx cannot be nil")
	}
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessions cannot be nil")
	}
	if emitter == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("emitter cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &serviceImpl{
		sets:     sets,
		tx:       tx,
		sessions: sessions,
		emitter:  emitter,
		engine:   engine.NewEngine(engine.NewRandom()),
		now:      time.Now,
		logger:   logger.With(slog.String("component", "practice_service")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StartOrResume implements Service.
func (s *serviceImpl) StartOrResume(
	ctx context.Context,
	actor domain.Actor,
	setID uuid.UUID,
	d domain.Discipline,
) (*engine.Question, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("actor", actor.Key()),
		slog.String("set_id", setID.String()),
		slog.String("discipline", string(d)))

	if !actor.Valid() {
		return nil, ErrMissingActor
	}

	set, err := s.loadSet(ctx, actor, setID)
	if err != nil {
		return nil, err
	}

	key := store.NewSessionKey(actor, d, setID)
	state, err := s.loadSession(ctx, key)
	if err != nil {
		log.Error("failed to load practice session", slog.String("error", err.Error()))
		return nil, NewStartOrResumeError("failed to load session", err)
	}

	state, q, err := s.engine.Current(set, d, state)
	if err != nil {
		if errors.Is(err, engine.ErrInsufficientCards) || errors.Is(err, engine.ErrUnknownDiscipline) {
			log.Debug("practice refused", slog.String("reason", err.Error()))
			return nil, err
		}
		return nil, NewStartOrResumeError("failed to prepare question", err)
	}

	if err := s.sessions.SaveSession(ctx, key, state); err != nil {
		log.Error("failed to save practice session", slog.String("error", err.Error()))
		return nil, NewStartOrResumeError("failed to save session", err)
	}

	today := domain.DateOf(s.now())
	if _, err := s.updateLedger(ctx, actor, func(l *domain.Ledger, _ gamification.SetStats) (bool, error) {
		return gamification.TouchActivity(l, today), nil
	}); err != nil {
		log.Error("failed to record activity", slog.String("error", err.Error()))
		return nil, NewStartOrResumeError("failed to record activity", err)
	}

	log.Debug("serving practice question",
		slog.Int("position", q.Position),
		slog.Int("total", q.Total))
	return &q, nil
}

// SubmitAnswer implements Service.
func (s *serviceImpl) SubmitAnswer(
	ctx context.Context,
	actor domain.Actor,
	setID uuid.UUID,
	d domain.Discipline,
	answer engine.Answer,
) (*Outcome, error) {
	log := logger.FromContextOrDefault(ctx, s.logger).With(
		slog.String("actor", actor.Key()),
		slog.String("set_id", setID.String()),
		slog.String("discipline", string(d)))

	if !actor.Valid() {
		return nil, ErrMissingActor
	}

	set, err := s.loadSet(ctx, actor, setID)
	if err != nil {
		return nil, err
	}

	key := store.NewSessionKey(actor, d, setID)
	state, err := s.loadSession(ctx, key)
	if err != nil {
		log.Error("failed to load practice session", slog.String("error", err.Error()))
		return nil, NewSubmitAnswerError("failed to load session", err)
	}

	today := domain.DateOf(s.now())
	var (
		next     *engine.SessionState
		result   engine.Result
		rewarder *gamification.Rewarder
		newAch   []string
	)
	ledger, err := s.updateLedger(ctx, actor, func(l *domain.Ledger, stats gamification.SetStats) (bool, error) {
		gamification.TouchActivity(l, today)
		rewarder = gamification.NewRewarder(l, today)

		var err error
		next, result, err = s.engine.Submit(set, d, state, answer, rewarder)
		if err != nil {
			return false, err
		}
		newAch = gamification.RecomputeAchievements(l, stats, today)
		return true, nil
	})
	if err != nil {
		if errors.Is(err, engine.ErrNoActiveSession) || errors.Is(err, engine.ErrUnknownDiscipline) {
			log.Debug("answer refused", slog.String("reason", err.Error()))
			return nil, err
		}
		log.Error("failed to apply answer", slog.String("error", err.Error()))
		return nil, NewSubmitAnswerError("failed to apply answer", err)
	}

	if next == nil {
		err = s.sessions.DeleteSession(ctx, key)
	} else {
		err = s.sessions.SaveSession(ctx, key, next)
	}
	if err != nil {
		log.Error("failed to persist practice session", slog.String("error", err.Error()))
		return nil, NewSubmitAnswerError("failed to persist session", err)
	}

	log.Info("answer graded",
		slog.String("verdict", string(result.Verdict)),
		slog.Int("points", result.PointsAwarded),
		slog.Bool("finished", result.Finished()))

	out := &Outcome{
		Result:          result,
		NewBadges:       rewarder.NewBadges,
		NewAchievements: newAch,
		TotalPoints:     ledger.Points,
		Streak:          ledger.Streak,
		Level:           gamification.LevelFor(ledger.Points).Name,
	}
	s.emitOutcome(ctx, actor, set.ID, d, today, out)
	return out, nil
}

// ChallengeStatus implements Service.
func (s *serviceImpl) ChallengeStatus(ctx context.Context, actor domain.Actor) (domain.DailyChallenge, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	if !actor.Valid() {
		return domain.DailyChallenge{}, ErrMissingActor
	}

	ledger, err := s.readLedger(ctx, actor)
	if err != nil {
		log.Error("failed to load ledger",
			slog.String("actor", actor.Key()),
			slog.String("error", err.Error()))
		return domain.DailyChallenge{}, NewChallengeStatusError("failed to load ledger", err)
	}
	return gamification.NewTracker(ledger).Status(domain.DateOf(s.now())), nil
}

// loadSet fetches setID and hides sets the actor may not practise.
func (s *serviceImpl) loadSet(ctx context.Context, actor domain.Actor, setID uuid.UUID) (*domain.FlashcardSet, error) {
	set, err := s.sets.GetByID(ctx, setID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, store.ErrSetNotFound
		}
		return nil, &ServiceError{Operation: "load_set", Message: "failed to load set", Err: err}
	}
	if !set.AccessibleBy(actor.UserID) {
		return nil, store.ErrSetNotFound
	}
	return set, nil
}

func (s *serviceImpl) loadSession(ctx context.Context, key store.SessionKey) (*engine.SessionState, error) {
	state, err := s.sessions.GetSession(ctx, key)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil, nil
	}
	return state, err
}

// ledgerFn mutates a ledger and reports whether it must be saved.
type ledgerFn func(l *domain.Ledger, stats gamification.SetStats) (bool, error)

// updateLedger loads the actor's ledger, applies fn and saves the result.
// User ledgers are updated in one transaction; anonymous ledgers live in the
// session store and start empty.
func (s *serviceImpl) updateLedger(ctx context.Context, actor domain.Actor, fn ledgerFn) (*domain.Ledger, error) {
	if !actor.Authenticated() {
		ledger, err := s.anonymousLedger(ctx, actor.SessionID)
		if err != nil {
			return nil, err
		}
		changed, err := fn(ledger, gamification.SetStats{})
		if err != nil || !changed {
			return ledger, err
		}
		return ledger, s.sessions.SaveLedger(ctx, actor.SessionID, ledger)
	}

	var ledger *domain.Ledger
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		l, err := st.Users.GetLedger(ctx, actor.UserID)
		if err != nil {
			return err
		}
		stats, err := st.Sets.Stats(ctx, actor.UserID)
		if err != nil {
			return err
		}
		changed, err := fn(l, stats)
		if err != nil {
			return err
		}
		ledger = l
		if !changed {
			return nil
		}
		return st.Users.SaveLedger(ctx, actor.UserID, l)
	})
	if err != nil {
		return nil, err
	}
	return ledger, nil
}

func (s *serviceImpl) readLedger(ctx context.Context, actor domain.Actor) (*domain.Ledger, error) {
	if !actor.Authenticated() {
		return s.anonymousLedger(ctx, actor.SessionID)
	}
	var ledger *domain.Ledger
	err := s.tx.WithinTx(ctx, func(ctx context.Context, st store.Stores) error {
		l, err := st.Users.GetLedger(ctx, actor.UserID)
		ledger = l
		return err
	})
	return ledger, err
}

func (s *serviceImpl) anonymousLedger(ctx context.Context, sessionID string) (*domain.Ledger, error) {
	ledger, err := s.sessions.GetLedger(ctx, sessionID)
	if errors.Is(err, store.ErrSessionNotFound) {
		return &domain.Ledger{}, nil
	}
	return ledger, err
}

// emitOutcome publishes the events for a graded answer. Delivery failures
// are logged and never fail the request.
func (s *serviceImpl) emitOutcome(
	ctx context.Context,
	actor domain.Actor,
	setID uuid.UUID,
	d domain.Discipline,
	today time.Time,
	out *Outcome,
) {
	s.emit(ctx, actor, events.TypeAnswerGraded, events.AnswerGraded{
		SetID:      setID,
		Discipline: string(d),
		Verdict:    string(out.Verdict),
		Points:     out.PointsAwarded,
	})
	if out.Summary != nil {
		s.emit(ctx, actor, events.TypeSessionCompleted, events.SessionCompleted{
			SetID:      setID,
			Discipline: string(d),
			Score:      out.Summary.Score,
			Total:      out.Summary.Total,
		})
	}
	if out.ChallengeCompleted {
		s.emit(ctx, actor, events.TypeChallengeCompleted, events.ChallengeCompleted{
			Date:  today.Format(time.DateOnly),
			Bonus: gamification.ChallengeBonusPoints,
		})
	}
	for _, badge := range out.NewBadges {
		s.emit(ctx, actor, events.TypeBadgeEarned, events.BadgeEarned{Badge: badge})
	}
}

func (s *serviceImpl) emit(ctx context.Context, actor domain.Actor, eventType string, payload any) {
	log := logger.FromContextOrDefault(ctx, s.logger)
	event, err := events.NewEvent(eventType, actor.Key(), payload)
	if err == nil {
		err = s.emitter.EmitEvent(ctx, event)
	}
	if err != nil {
		log.Warn("failed to emit event",
			slog.String("event_type", eventType),
			slog.String("error", err.Error()))
	}
}
