package practice

import (
	"strings"

	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/similarity"
)

// OptionCount is the number of candidate definitions shown per question.
const OptionCount = 4

// multipleChoiceMode offers the correct definition among distractors drawn
// from the same set.
type multipleChoiceMode struct{}

func (multipleChoiceMode) minCards() int { return OptionCount }

func (multipleChoiceMode) eligible(set *domain.FlashcardSet) []int {
	return allIndices(set)
}

func (multipleChoiceMode) render(e *Engine, state *SessionState, set *domain.FlashcardSet, idx int, q *Question) {
	for _, i := range e.options(state, set, idx) {
		q.Options = append(q.Options, set.Cards[i].Definition)
	}
}

func (multipleChoiceMode) grade(
	e *Engine,
	state *SessionState,
	set *domain.FlashcardSet,
	idx int,
	a Answer,
) (similarity.Grading, string) {
	ref := set.Cards[idx].Definition
	text := a.Text
	if a.Choice > 0 {
		text = ""
		opts := e.options(state, set, idx)
		if a.Choice <= len(opts) {
			text = set.Cards[opts[a.Choice-1]].Definition
		}
	}
	return similarity.Exact(text, ref), ref
}

// options returns the memoized option card indices for the current cursor,
// choosing them on first use. The correct card is always included and no
// two options share a definition, compared the way answers are graded.
func (e *Engine) options(state *SessionState, set *domain.FlashcardSet, idx int) []int {
	if opts, ok := state.Options[state.Cursor]; ok && validOptions(opts, set, idx) {
		return opts
	}

	others := make([]int, 0, len(set.Cards)-1)
	for i := range set.Cards {
		if i != idx {
			others = append(others, i)
		}
	}
	e.rnd.Shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })

	seen := map[string]bool{optionKey(set.Cards[idx].Definition): true}
	opts := []int{idx}
	for _, i := range others {
		if len(opts) == OptionCount {
			break
		}
		key := optionKey(set.Cards[i].Definition)
		if seen[key] {
			continue
		}
		seen[key] = true
		opts = append(opts, i)
	}
	e.rnd.Shuffle(len(opts), func(i, j int) { opts[i], opts[j] = opts[j], opts[i] })

	if state.Options == nil {
		state.Options = make(map[int][]int)
	}
	state.Options[state.Cursor] = opts
	return opts
}

func optionKey(def string) string {
	return strings.ToLower(strings.TrimSpace(def))
}

func validOptions(opts []int, set *domain.FlashcardSet, idx int) bool {
	hasCorrect := false
	for _, i := range opts {
		if i < 0 || i >= len(set.Cards) {
			return false
		}
		if i == idx {
			hasCorrect = true
		}
	}
	return hasCorrect
}
