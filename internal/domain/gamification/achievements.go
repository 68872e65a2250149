package gamification

import (
	"time"

	"github.com/phrazzld/studyace/internal/domain"
)

// Achievement labels.
const (
	AchievementFirstSet       = "Created your first set"
	AchievementFiveSets       = "Created 5 sets"
	AchievementTwentyCards    = "Added 20 cards"
	AchievementPoints100      = "Scored 100 points"
	AchievementPoints500      = "Scored 500 points"
	AchievementStreak7        = "7-day streak"
	AchievementStreak30       = "30-day streak"
	AchievementDailyChallenge = "Completed today's daily challenge"
)

// AchievementInput is everything achievements are computed from.
// Sets and Cards exclude the seeded default set.
type AchievementInput struct {
	Sets               int
	Cards              int
	Points             int
	Streak             int
	ChallengeCompleted bool
}

// DeriveAchievements returns the achievements earned by in, in a fixed order.
func DeriveAchievements(in AchievementInput) []string {
	earned := []string{}

	// Content milestones
	if in.Sets >= 1 {
		earned = append(earned, AchievementFirstSet)
	}
	if in.Sets >= 5 {
		earned = append(earned, AchievementFiveSets)
	}
	if in.Cards >= 20 {
		earned = append(earned, AchievementTwentyCards)
	}

	// Point milestones
	if in.Points >= 100 {
		earned = append(earned, AchievementPoints100)
	}
	if in.Points >= 500 {
		earned = append(earned, AchievementPoints500)
	}

	// Streak milestones
	if in.Streak >= 7 {
		earned = append(earned, AchievementStreak7)
	}
	if in.Streak >= 30 {
		earned = append(earned, AchievementStreak30)
	}

	if in.ChallengeCompleted {
		earned = append(earned, AchievementDailyChallenge)
	}

	return earned
}

// SetStats summarizes a learner's own content, excluding the default set.
type SetStats struct {
	Sets  int
	Cards int
}

// RecomputeAchievements replaces the ledger's achievements with a fresh
// derivation and returns the ones that are new.
func RecomputeAchievements(l *domain.Ledger, stats SetStats, today time.Time) []string {
	before := l.Achievements
	l.Achievements = DeriveAchievements(AchievementInput{
		Sets:               stats.Sets,
		Cards:              stats.Cards,
		Points:             l.Points,
		Streak:             l.Streak,
		ChallengeCompleted: l.Challenge.IsFor(today) && l.Challenge.Completed,
	})
	return added(before, l.Achievements)
}

// LatestAchievement returns the most significant achievement shown, or "".
func LatestAchievement(l *domain.Ledger) string {
	if len(l.Achievements) == 0 {
		return ""
	}
	return l.Achievements[len(l.Achievements)-1]
}
