package practice

import (
	"fmt"

	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/similarity"
)

// Rewarder receives the gamification side effects of graded answers.
type Rewarder interface {
	// Award adds points to the learner's ledger.
	Award(points int)
	// AdvanceChallenge records n correct answers toward today's challenge and
	// reports whether this call completed it.
	AdvanceChallenge(n int) bool
}

// mode is the per-discipline behaviour plugged into the engine.
type mode interface {
	// minCards is the smallest eligible card count that can start a session.
	minCards() int
	// eligible lists the indices of cards that can be asked in this mode.
	eligible(set *domain.FlashcardSet) []int
	// render fills in the mode-specific parts of q, memoizing any random
	// choices in state.
	render(e *Engine, state *SessionState, set *domain.FlashcardSet, idx int, q *Question)
	// grade compares the answer with the card and returns the grading plus
	// the reference to reveal after a wrong answer.
	grade(e *Engine, state *SessionState, set *domain.FlashcardSet, idx int, a Answer) (similarity.Grading, string)
}

var modes = map[domain.Discipline]mode{
	domain.DisciplineClassic:        classicMode{},
	domain.DisciplineMultipleChoice: multipleChoiceMode{},
	domain.DisciplineFillBlank:      fillBlankMode{},
}

// Engine sequences practice sessions. It is safe for concurrent use if its
// Random is.
type Engine struct {
	rnd Random
}

// NewEngine creates an Engine drawing randomness from rnd.
func NewEngine(rnd Random) *Engine {
	if rnd == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("random source cannot be nil")
	}
	return &Engine{rnd: rnd}
}

func modeFor(d domain.Discipline) (mode, error) {
	m, ok := modes[d]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDiscipline, d)
	}
	return m, nil
}

// Start creates a fresh session over set, discarding any previous state.
func (e *Engine) Start(set *domain.FlashcardSet, d domain.Discipline) (*SessionState, error) {
	if set == nil {
		return nil, ErrNilSet
	}
	m, err := modeFor(d)
	if err != nil {
		return nil, err
	}

	order := m.eligible(set)
	if len(order) < m.minCards() {
		return nil, fmt.Errorf("%w: %s needs at least %d eligible cards, set has %d",
			ErrInsufficientCards, d, m.minCards(), len(order))
	}
	e.rnd.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	return &SessionState{
		Discipline: d,
		SetID:      set.ID,
		Order:      order,
	}, nil
}

// Current returns the question at the cursor of state. A nil, finished, or
// stale state is replaced by a new session. The returned state must be
// persisted since rendering may memoize choices.
func (e *Engine) Current(
	set *domain.FlashcardSet,
	d domain.Discipline,
	state *SessionState,
) (*SessionState, Question, error) {
	if set == nil {
		return nil, Question{}, ErrNilSet
	}
	m, err := modeFor(d)
	if err != nil {
		return nil, Question{}, err
	}

	if state == nil || state.Done() || !state.matches(set, d, len(m.eligible(set))) {
		state, err = e.Start(set, d)
		if err != nil {
			return nil, Question{}, err
		}
	}

	idx := state.Order[state.Cursor]
	card := set.Cards[idx]
	q := Question{
		Discipline: d,
		SetID:      set.ID,
		CardID:     card.ID,
		Term:       card.Term,
		Prompt:     card.Term,
		Position:   state.Position(),
		Total:      state.Total(),
		Score:      state.Score,
	}
	m.render(e, state, set, idx, &q)

	return state, q, nil
}

// Submit grades a for the current question of state, reports rewards to r,
// and advances the cursor by one. When the last question is answered the
// returned state is nil and the result carries a Summary.
func (e *Engine) Submit(
	set *domain.FlashcardSet,
	d domain.Discipline,
	state *SessionState,
	a Answer,
	r Rewarder,
) (*SessionState, Result, error) {
	if set == nil {
		return nil, Result{}, ErrNilSet
	}
	m, err := modeFor(d)
	if err != nil {
		return nil, Result{}, err
	}
	if state == nil || state.Done() {
		return nil, Result{}, ErrNoActiveSession
	}
	if !state.matches(set, d, len(m.eligible(set))) {
		return nil, Result{}, fmt.Errorf("%w: set changed since the session started", ErrNoActiveSession)
	}

	idx := state.Order[state.Cursor]
	grading, expected := m.grade(e, state, set, idx, a)

	res := Result{
		Verdict: grading.Verdict,
		Ratio:   grading.Ratio,
		Hint:    grading.Hint,
	}
	switch grading.Verdict {
	case similarity.Correct:
		state.Score++
		res.PointsAwarded = PointsCorrect
		if r != nil {
			r.Award(PointsCorrect)
			res.ChallengeCompleted = r.AdvanceChallenge(1)
		}
	case similarity.Partial:
		// Partial credit earns points but does not count toward the challenge.
		res.PointsAwarded = PointsPartial
		if r != nil {
			r.Award(PointsPartial)
		}
	default:
		res.Expected = expected
	}

	state.forget(state.Cursor)
	state.Cursor++

	res.Score = state.Score
	res.Answered = state.Cursor
	res.Total = state.Total()

	if state.Done() {
		res.Summary = &Summary{Score: state.Score, Total: state.Total()}
		return nil, res, nil
	}
	return state, res, nil
}
