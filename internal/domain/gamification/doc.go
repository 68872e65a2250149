// Package gamification derives engagement rewards from a learner's ledger:
// daily streaks, points, badges, achievements, the daily challenge, levels
// and the leaderboard.
//
// Everything here is a pure function of its inputs and "today", which the
// caller supplies. Functions mutate the ledger passed to them in place and
// leave persistence to the caller.
package gamification
