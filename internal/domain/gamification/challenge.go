package gamification

import (
	"time"

	"github.com/phrazzld/studyace/internal/domain"
)

// ChallengeBonusPoints is awarded once when a daily challenge is completed.
const ChallengeBonusPoints = 50

// ChallengeTracker tracks progress toward the daily goal.
type ChallengeTracker interface {
	// Status returns today's challenge, starting a new one if the stored
	// challenge belongs to another day.
	Status(today time.Time) domain.DailyChallenge

	// Advance adds n to today's progress and reports whether this call
	// completed the challenge. Completed challenges ignore further progress.
	Advance(today time.Time, n int) bool
}

// ledgerTracker keeps the challenge inside a ledger and pays the completion
// bonus into the same ledger.
type ledgerTracker struct {
	ledger *domain.Ledger
}

// NewTracker returns a ChallengeTracker operating on l.
func NewTracker(l *domain.Ledger) ChallengeTracker {
	if l == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("ledger cannot be nil")
	}
	return &ledgerTracker{ledger: l}
}

func (t *ledgerTracker) Status(today time.Time) domain.DailyChallenge {
	return *GetOrInit(&t.ledger.Challenge, today)
}

func (t *ledgerTracker) Advance(today time.Time, n int) bool {
	c := GetOrInit(&t.ledger.Challenge, today)
	if c.Completed || n <= 0 {
		return false
	}

	c.Progress += n
	if c.Progress < c.Goal {
		return false
	}

	c.Progress = c.Goal
	c.Completed = true
	t.ledger.ChallengesCompleted++
	Award(t.ledger, ChallengeBonusPoints)
	return true
}

// GetOrInit resets c to a fresh challenge unless it already belongs to today,
// and returns it.
func GetOrInit(c *domain.DailyChallenge, today time.Time) *domain.DailyChallenge {
	if !c.IsFor(today) {
		*c = domain.NewDailyChallenge(today)
	}
	if c.Goal <= 0 {
		c.Goal = domain.DailyChallengeGoal
	}
	return c
}

// MergeOnLogin carries an anonymous session's progress for today into the
// user's ledger. Progress is overwritten, not summed. A challenge the user
// already completed today stays completed and keeps its progress. Adopting a
// completed anonymous challenge counts toward ChallengesCompleted and
// refreshes badges, but the bonus points stay with the anonymous ledger.
// Challenges from other days are ignored. It reports whether user changed.
func MergeOnLogin(anon *domain.DailyChallenge, user *domain.Ledger, today time.Time) bool {
	if anon == nil || user == nil || !anon.IsFor(today) {
		return false
	}
	c := GetOrInit(&user.Challenge, today)
	if c.Completed {
		return false
	}
	if c.Progress == anon.Progress && !anon.Completed {
		return false
	}

	c.Progress = anon.Progress
	if anon.Completed {
		c.Progress = c.Goal
		c.Completed = true
		user.ChallengesCompleted++
		refreshBadges(user)
	}
	return true
}
