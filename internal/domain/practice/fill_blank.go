package practice

import (
	"strings"

	"github.com/phrazzld/studyace/internal/domain"
	"github.com/phrazzld/studyace/internal/domain/similarity"
)

// BlankMarker replaces the hidden word in a fill-in-the-blank prompt.
const BlankMarker = "____"

// minBlankWords is the shortest definition, in words, that can be blanked.
const minBlankWords = 3

const wordPunctuation = ".,;:!?"

var stopWords = func() map[string]bool {
	words := []string{
		"a", "an", "the", "some", "and", "or", "but", "if", "then", "with",
		"of", "to", "for", "on", "in", "by", "at", "from", "as", "is", "are",
		"was", "were", "be", "been", "being", "that", "this", "these", "those",
		"it", "its", "their", "his", "her", "our", "your", "my", "i", "you",
		"he", "she", "they", "we", "not", "so", "do", "does", "did",
	}
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}()

// fillBlankMode hides one important word of the definition.
type fillBlankMode struct{}

func (fillBlankMode) minCards() int { return 1 }

func (fillBlankMode) eligible(set *domain.FlashcardSet) []int {
	var out []int
	for i, c := range set.Cards {
		if len(strings.Fields(c.Definition)) >= minBlankWords {
			out = append(out, i)
		}
	}
	return out
}

func (fillBlankMode) render(e *Engine, state *SessionState, set *domain.FlashcardSet, idx int, q *Question) {
	words := strings.Fields(set.Cards[idx].Definition)
	blank := e.blank(state, words)

	shown := make([]string, len(words))
	copy(shown, words)
	shown[blank] = BlankMarker
	q.Prompt = strings.Join(shown, " ")
}

func (fillBlankMode) grade(
	e *Engine,
	state *SessionState,
	set *domain.FlashcardSet,
	idx int,
	a Answer,
) (similarity.Grading, string) {
	words := strings.Fields(set.Cards[idx].Definition)
	missing := strings.Trim(words[e.blank(state, words)], wordPunctuation)
	return similarity.Exact(strings.Trim(strings.TrimSpace(a.Text), wordPunctuation), missing), missing
}

// blank returns the memoized blank index for the current cursor, choosing it
// on first use.
func (e *Engine) blank(state *SessionState, words []string) int {
	if i, ok := state.Blanks[state.Cursor]; ok && i >= 0 && i < len(words) {
		return i
	}

	i := 0
	if candidates := importantWords(words); len(candidates) > 0 {
		i = candidates[e.rnd.IntN(len(candidates))]
	}

	if state.Blanks == nil {
		state.Blanks = make(map[int]int)
	}
	state.Blanks[state.Cursor] = i
	return i
}

// importantWords returns the indices of words worth blanking: not a stop
// word and longer than two characters once punctuation is trimmed.
func importantWords(words []string) []int {
	var out []int
	for i, w := range words {
		bare := strings.ToLower(strings.Trim(w, wordPunctuation))
		if len([]rune(bare)) > 2 && !stopWords[bare] {
			out = append(out, i)
		}
	}
	return out
}
