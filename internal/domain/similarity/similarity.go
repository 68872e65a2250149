// Package similarity grades free-text answers against a reference string.
//
// The ratio is the Ratcliff/Obershelp "gestalt" measure 2*M/T, where M is the
// number of characters in matching blocks and T the combined length of both
// strings. It is computed over runes after lower-casing, so two empty strings
// compare as identical (ratio 1).
package similarity

import (
	"strings"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"
)

// Verdict is the outcome of grading one answer.
type Verdict string

const (
	Correct Verdict = "correct"
	Partial Verdict = "partial"
	Wrong   Verdict = "wrong"
)

// Grading thresholds. A ratio must be strictly greater than a threshold to
// reach that verdict.
const (
	CorrectThreshold = 0.70
	PartialThreshold = 0.40
)

// Grading is the result of comparing an answer with its reference.
type Grading struct {
	Verdict Verdict `json:"verdict"`
	Ratio   float64 `json:"ratio"`
	// Hint is a strict prefix of the reference, set only for Partial.
	Hint string `json:"hint,omitempty"`
}

// Ratio returns the case-insensitive similarity of a and b in [0, 1].
func Ratio(a, b string) float64 {
	m := difflib.NewMatcher(runes(strings.ToLower(a)), runes(strings.ToLower(b)))
	return m.Ratio()
}

// Grade compares a free-text answer with the reference definition. A
// reference of one rune has no non-empty strict prefix to hint with, so
// answers to it are never Partial.
func Grade(answer, reference string) Grading {
	r := Ratio(answer, reference)
	switch {
	case r > CorrectThreshold:
		return Grading{Verdict: Correct, Ratio: r}
	case r > PartialThreshold && utf8.RuneCountInString(reference) > 1:
		return Grading{Verdict: Partial, Ratio: r, Hint: Hint(reference)}
	default:
		return Grading{Verdict: Wrong, Ratio: r}
	}
}

// Exact grades structured answers: Correct on case-insensitive equality after
// trimming surrounding whitespace, Wrong otherwise.
func Exact(answer, reference string) Grading {
	if strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(reference)) {
		return Grading{Verdict: Correct, Ratio: 1}
	}
	return Grading{Verdict: Wrong, Ratio: 0}
}

// Hint returns the first half of reference, measured in runes. The result is
// always shorter than reference and empty only for references of one rune or less.
func Hint(reference string) string {
	rs := []rune(reference)
	return string(rs[:len(rs)/2])
}

// runes splits s into one-element strings, one per rune.
func runes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
