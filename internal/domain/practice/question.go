package practice

import (
	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/similarity"
)

// Points awarded per verdict.
const (
	PointsCorrect = 10
	PointsPartial = 2
)

// Question is what the learner sees for the current card.
type Question struct {
	Discipline domain.Discipline `json:"discipline"`
	SetID      uuid.UUID         `json:"set_id"`
	CardID     uuid.UUID         `json:"card_id"`
	Term       string            `json:"term"`
	// Prompt is the text to answer: the term, or the blanked definition.
	Prompt   string   `json:"prompt"`
	Options  []string `json:"options,omitempty"`
	Position int      `json:"position"`
	Total    int      `json:"total"`
	Score    int      `json:"score"`
}

// Answer is a learner's response. Choice is a 1-based option number for
// multiple choice and takes precedence over Text when set.
type Answer struct {
	Text   string `json:"answer"`
	Choice int    `json:"choice,omitempty"`
}

// Summary is the terminal report of a finished session.
type Summary struct {
	Score int `json:"score"`
	Total int `json:"total"`
}

// Result describes the grading of one answer and its consequences.
type Result struct {
	Verdict similarity.Verdict `json:"verdict"`
	Ratio   float64            `json:"ratio"`
	Hint    string             `json:"hint,omitempty"`
	// Expected reveals the reference answer after a wrong answer.
	Expected           string   `json:"expected,omitempty"`
	PointsAwarded      int      `json:"points_awarded"`
	ChallengeCompleted bool     `json:"challenge_completed"`
	Score              int      `json:"score"`
	Answered           int      `json:"answered"`
	Total              int      `json:"total"`
	Summary            *Summary `json:"summary,omitempty"`
}

// Finished reports whether this answer ended the session.
func (r Result) Finished() bool {
	return r.Summary != nil
}
