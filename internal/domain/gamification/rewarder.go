package gamification

import (
	"time"

	"github.com/phrazzld/studyace/internal/domain"
)

// Rewarder applies practice rewards to one ledger on one day and remembers
// what changed, so callers can report it.
type Rewarder struct {
	ledger  *domain.Ledger
	tracker ChallengeTracker
	today   time.Time

	// NewBadges lists badges first shown during this exchange.
	NewBadges []string
	// ChallengeCompleted is set when the daily challenge completed during this exchange.
	ChallengeCompleted bool
}

// NewRewarder binds a Rewarder to l for today.
func NewRewarder(l *domain.Ledger, today time.Time) *Rewarder {
	return &Rewarder{
		ledger:  l,
		tracker: NewTracker(l),
		today:   today,
	}
}

// Award adds points to the ledger.
func (r *Rewarder) Award(points int) {
	r.NewBadges = append(r.NewBadges, Award(r.ledger, points)...)
}

// AdvanceChallenge moves today's challenge forward.
func (r *Rewarder) AdvanceChallenge(n int) bool {
	before := r.ledger.Badges
	done := r.tracker.Advance(r.today, n)
	if done {
		r.ChallengeCompleted = true
		r.NewBadges = append(r.NewBadges, added(before, r.ledger.Badges)...)
	}
	return done
}
