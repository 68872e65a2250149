package practice

import (
	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
)

// SessionState is the resumable progress of one practice run. It is a plain
// value object so that any session store can serialize it.
type SessionState struct {
	Discipline domain.Discipline `json:"discipline"`
	SetID      uuid.UUID         `json:"set_id"`
	// Order holds indices into the set's Cards, fixed until exhausted.
	Order  []int `json:"order"`
	Cursor int   `json:"cursor"`
	Score  int   `json:"score"`
	// Blanks memoizes the blanked word index per cursor (fill_blank).
	Blanks map[int]int `json:"blanks,omitempty"`
	// Options memoizes the option card indices per cursor (multiple_choice).
	Options map[int][]int `json:"options,omitempty"`
}

// Total is the number of questions in the run.
func (s *SessionState) Total() int {
	return len(s.Order)
}

// Done reports whether every question has been answered.
func (s *SessionState) Done() bool {
	return s.Cursor >= len(s.Order)
}

// Position is the 1-based number of the current question.
func (s *SessionState) Position() int {
	return s.Cursor + 1
}

// matches reports whether the state still describes a run over set under d.
// A mismatched set, discipline, eligible card count, or an index that no
// longer fits the set marks the state as stale.
func (s *SessionState) matches(set *domain.FlashcardSet, d domain.Discipline, eligible int) bool {
	if s.Discipline != d || s.SetID != set.ID || len(s.Order) != eligible {
		return false
	}
	for _, idx := range s.Order {
		if idx < 0 || idx >= len(set.Cards) {
			return false
		}
	}
	return s.Cursor >= 0
}

// forget drops scratch data for a cursor that has been answered.
func (s *SessionState) forget(cursor int) {
	delete(s.Blanks, cursor)
	delete(s.Options, cursor)
}
