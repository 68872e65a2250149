package domain

import "time"

// DailyChallengeGoal is the number of correct answers that completes a day's challenge.
const DailyChallengeGoal = 10

// DailyChallenge tracks progress toward the per-day goal. Completed is sticky
// for the rest of Date once set.
type DailyChallenge struct {
	Date      time.Time `json:"date"`
	Goal      int       `json:"goal"`
	Progress  int       `json:"progress"`
	Completed bool      `json:"completed"`
}

// NewDailyChallenge returns a fresh challenge for the given day.
func NewDailyChallenge(day time.Time) DailyChallenge {
	return DailyChallenge{Date: DateOf(day), Goal: DailyChallengeGoal}
}

// IsFor reports whether the challenge belongs to day.
func (c DailyChallenge) IsFor(day time.Time) bool {
	return !c.Date.IsZero() && c.Date.Equal(DateOf(day))
}

// Ledger is the accumulated engagement record for one learner, either a
// registered user or an anonymous session.
type Ledger struct {
	Points int `json:"points"`
	Streak int `json:"streak"`
	// LastActive is the calendar date of the most recent activity; zero means never.
	LastActive          time.Time      `json:"last_active"`
	Badges              []string       `json:"badges"`
	Achievements        []string       `json:"achievements"`
	Challenge           DailyChallenge `json:"challenge"`
	ChallengesCompleted int            `json:"challenges_completed"`
}

// HasBadge reports whether the ledger currently shows label.
func (l *Ledger) HasBadge(label string) bool {
	return contains(l.Badges, label)
}

// HasAchievement reports whether the ledger currently shows label.
func (l *Ledger) HasAchievement(label string) bool {
	return contains(l.Achievements, label)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
