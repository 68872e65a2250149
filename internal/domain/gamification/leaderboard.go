package gamification

import (
	"sort"

	"github.com/google/uuid"
)

// Competitor is one leaderboard input row.
type Competitor struct {
	ID          uuid.UUID
	DisplayName string
	Points      int
}

// Standing is a ranked leaderboard row.
type Standing struct {
	Rank        int       `json:"rank"`
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"display_name"`
	Points      int       `json:"points"`
	Level       string    `json:"level"`
}

// Rank orders competitors by points, highest first, keeping input order among
// equals. Equal points share a rank and the next distinct score skips ahead
// (90, 90, 50 rank 1, 1, 3). Every competitor appears in the result.
func Rank(competitors []Competitor) []Standing {
	sorted := make([]Competitor, len(competitors))
	copy(sorted, competitors)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Points > sorted[j].Points
	})

	standings := make([]Standing, len(sorted))
	for i, c := range sorted {
		rank := i + 1
		if i > 0 && c.Points == sorted[i-1].Points {
			rank = standings[i-1].Rank
		}
		standings[i] = Standing{
			Rank:        rank,
			ID:          c.ID,
			DisplayName: c.DisplayName,
			Points:      c.Points,
			Level:       LevelFor(c.Points).Name,
		}
	}
	return standings
}

// Find returns the standing for id, if present.
func Find(standings []Standing, id uuid.UUID) (Standing, bool) {
	for _, s := range standings {
		if s.ID == id {
			return s, true
		}
	}
	return Standing{}, false
}
