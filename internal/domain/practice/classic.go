package practice

import (
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/similarity"
)

// classicMode asks for the definition of a term and grades by similarity.
type classicMode struct{}

func (classicMode) minCards() int { return 2 }

func (classicMode) eligible(set *domain.FlashcardSet) []int {
	return allIndices(set)
}

func (classicMode) render(*Engine, *SessionState, *domain.FlashcardSet, int, *Question) {}

func (classicMode) grade(
	_ *Engine,
	_ *SessionState,
	set *domain.FlashcardSet,
	idx int,
	a Answer,
) (similarity.Grading, string) {
	ref := set.Cards[idx].Definition
	return similarity.Grade(a.Text, ref), ref
}

func allIndices(set *domain.FlashcardSet) []int {
	out := make([]int, len(set.Cards))
	for i := range out {
		out[i] = i
	}
	return out
}
