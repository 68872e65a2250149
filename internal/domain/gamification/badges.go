package gamification

import "github.com/phrazzld/studyace/internal/domain"

// Badge labels.
const (
	BadgeStreak7         = "7-day streak"
	BadgeStreak30        = "30-day streak"
	BadgePoints100       = "100 points"
	BadgePoints500       = "500 points"
	BadgeChallengeWinner = "Daily Challenge Winner"
)

type badgeRule struct {
	label  string
	earned func(l *domain.Ledger) bool
}

var badgeRules = []badgeRule{
	{BadgeStreak7, func(l *domain.Ledger) bool { return l.Streak >= 7 }},
	{BadgeStreak30, func(l *domain.Ledger) bool { return l.Streak >= 30 }},
	{BadgePoints100, func(l *domain.Ledger) bool { return l.Points >= 100 }},
	{BadgePoints500, func(l *domain.Ledger) bool { return l.Points >= 500 }},
	{BadgeChallengeWinner, func(l *domain.Ledger) bool { return l.ChallengesCompleted > 0 }},
}

// DeriveBadges returns the badges the ledger currently qualifies for, in a
// fixed order. It is a snapshot: a badge whose condition lapses (a broken
// streak) disappears.
func DeriveBadges(l *domain.Ledger) []string {
	badges := []string{}
	for _, rule := range badgeRules {
		if rule.earned(l) {
			badges = append(badges, rule.label)
		}
	}
	return badges
}

// Award adds points and recomputes the badge snapshot. It returns the badges
// that were not shown before the call.
func Award(l *domain.Ledger, points int) []string {
	if points > 0 {
		l.Points += points
	}
	return refreshBadges(l)
}

func refreshBadges(l *domain.Ledger) []string {
	before := l.Badges
	l.Badges = DeriveBadges(l)
	return added(before, l.Badges)
}

// added lists the entries of after that are missing from before.
func added(before, after []string) []string {
	seen := make(map[string]bool, len(before))
	for _, b := range before {
		seen[b] = true
	}
	var out []string
	for _, a := range after {
		if !seen[a] {
			out = append(out, a)
		}
	}
	return out
}
