package gamification

import (
	"time"

	"github.com/phrazzld/studyace/internal/domain"
)

// TouchActivity records activity on today. The streak grows by one when the
// previous activity was exactly yesterday and restarts at 1 after any gap.
// Repeated calls on the same day change nothing. It reports whether the
// ledger was modified.
func TouchActivity(l *domain.Ledger, today time.Time) bool {
	today = domain.DateOf(today)
	if !l.LastActive.IsZero() && domain.DateOf(l.LastActive).Equal(today) {
		return false
	}

	if !l.LastActive.IsZero() && domain.DaysBetween(l.LastActive, today) == 1 {
		l.Streak++
	} else {
		l.Streak = 1
	}
	l.LastActive = today
	l.Badges = DeriveBadges(l)
	return true
}
