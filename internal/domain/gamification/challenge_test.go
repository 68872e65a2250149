package gamification

import (
	"testing"
	"time"

	"github.com/phrazzld/studyace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackerCompletesOnce(t *testing.T) {
	t.Parallel()

	today := day(2025, 4, 1)
	l := &domain.Ledger{Points: 40}
	tracker := NewTracker(l)

	status := tracker.Status(today)
	assert.Equal(t, domain.DailyChallengeGoal, status.Goal)
	assert.Equal(t, 0, status.Progress)

	for i := 0; i < domain.DailyChallengeGoal-1; i++ {
		require.False(t, tracker.Advance(today, 1))
	}
	assert.Equal(t, 40, l.Points)

	assert.True(t, tracker.Advance(today, 1))
	assert.Equal(t, 40+ChallengeBonusPoints, l.Points)
	assert.Equal(t, 1, l.ChallengesCompleted)
	assert.Contains(t, l.Badges, BadgeChallengeWinner)

	// Completion is sticky and pays out once.
	assert.False(t, tracker.Advance(today, 5))
	assert.Equal(t, 40+ChallengeBonusPoints, l.Points)
	assert.True(t, tracker.Status(today).Completed)
	assert.Equal(t, domain.DailyChallengeGoal, tracker.Status(today).Progress)
}

func TestTrackerResetsOnNewDay(t *testing.T) {
	t.Parallel()

	l := &domain.Ledger{Challenge: domain.DailyChallenge{
		Date: domain.DateOf(day(2025, 4, 1)), Goal: 10, Progress: 10, Completed: true,
	}}
	tracker := NewTracker(l)

	next := day(2025, 4, 2)
	status := tracker.Status(next)
	assert.False(t, status.Completed)
	assert.Equal(t, 0, status.Progress)
	assert.Equal(t, domain.DateOf(next), status.Date)

	assert.False(t, tracker.Advance(next, 3))
	assert.Equal(t, 3, l.Challenge.Progress)
}

func TestTrackerOverflowCapsAtGoal(t *testing.T) {
	t.Parallel()

	today := day(2025, 4, 1)
	l := &domain.Ledger{}
	tracker := NewTracker(l)

	assert.True(t, tracker.Advance(today, 25))
	assert.Equal(t, domain.DailyChallengeGoal, l.Challenge.Progress)
}

func TestMergeOnLogin(t *testing.T) {
	t.Parallel()

	today := day(2025, 7, 7)
	challenge := func(d time.Time, progress int, completed bool) domain.DailyChallenge {
		return domain.DailyChallenge{Date: domain.DateOf(d), Goal: 10, Progress: progress, Completed: completed}
	}

	t.Run("today's anonymous progress overwrites", func(t *testing.T) {
		anon := challenge(today, 3, false)
		user := &domain.Ledger{Challenge: challenge(today, 8, false)}

		assert.True(t, MergeOnLogin(&anon, user, today))
		assert.Equal(t, 3, user.Challenge.Progress, "last write wins, no summing")
	})

	t.Run("stale anonymous challenge is ignored", func(t *testing.T) {
		anon := challenge(today.AddDate(0, 0, -1), 9, false)
		user := &domain.Ledger{Challenge: challenge(today, 2, false)}

		assert.False(t, MergeOnLogin(&anon, user, today))
		assert.Equal(t, 2, user.Challenge.Progress)
	})

	t.Run("user challenge from another day is replaced", func(t *testing.T) {
		anon := challenge(today, 10, true)
		user := &domain.Ledger{Points: 20, Challenge: challenge(today.AddDate(0, 0, -3), 4, false)}

		assert.True(t, MergeOnLogin(&anon, user, today))
		assert.True(t, user.Challenge.IsFor(today))
		assert.True(t, user.Challenge.Completed)
		assert.Equal(t, 1, user.ChallengesCompleted)
		assert.Contains(t, user.Badges, BadgeChallengeWinner)
		assert.Equal(t, 20, user.Points, "the bonus is not paid twice")
	})

	t.Run("completed user challenge stays completed", func(t *testing.T) {
		user := &domain.Ledger{}
		tracker := NewTracker(user)
		for i := 0; i < domain.DailyChallengeGoal; i++ {
			tracker.Advance(today, 1)
		}
		require.True(t, user.Challenge.Completed)
		points, completions := user.Points, user.ChallengesCompleted

		anon := challenge(today, 3, false)
		assert.False(t, MergeOnLogin(&anon, user, today))
		assert.True(t, user.Challenge.Completed)
		assert.Equal(t, domain.DailyChallengeGoal, user.Challenge.Progress)

		anonDone := challenge(today, 10, true)
		assert.False(t, MergeOnLogin(&anonDone, user, today))

		for i := 0; i < domain.DailyChallengeGoal; i++ {
			assert.False(t, tracker.Advance(today, 1))
		}
		assert.Equal(t, points, user.Points)
		assert.Equal(t, completions, user.ChallengesCompleted)
	})

	assert.False(t, MergeOnLogin(nil, &domain.Ledger{}, today))
}

func TestRewarder(t *testing.T) {
	t.Parallel()

	today := day(2025, 4, 1)
	l := &domain.Ledger{Points: 30, Challenge: domain.DailyChallenge{
		Date: domain.DateOf(today), Goal: 10, Progress: 9,
	}}
	r := NewRewarder(l, today)

	r.Award(10)
	assert.True(t, r.AdvanceChallenge(1))

	assert.True(t, r.ChallengeCompleted)
	assert.Equal(t, 90, l.Points)
	assert.Equal(t, []string{BadgeChallengeWinner}, r.NewBadges)

	// Later exchanges the same day earn no bonus.
	r2 := NewRewarder(l, today.Add(time.Hour))
	r2.Award(10)
	assert.False(t, r2.AdvanceChallenge(1))
	assert.Equal(t, 100, l.Points)
	assert.Equal(t, []string{BadgePoints100}, r2.NewBadges)
}
