package domain

import (
	"fmt"
	"strings"
)

// Discipline is a practice mode.
type Discipline string

const (
	// DisciplineClassic shows a term and grades a typed definition by similarity.
	DisciplineClassic Discipline = "classic"
	// DisciplineMultipleChoice shows a term and four candidate definitions.
	DisciplineMultipleChoice Discipline = "multiple_choice"
	// DisciplineFillBlank shows a definition with one word blanked out.
	DisciplineFillBlank Discipline = "fill_blank"
)

// Disciplines lists every supported practice mode.
func Disciplines() []Discipline {
	return []Discipline{DisciplineClassic, DisciplineMultipleChoice, DisciplineFillBlank}
}

// ParseDiscipline maps a mode name to a Discipline. Hyphens and case are tolerated.
func ParseDiscipline(s string) (Discipline, error) {
	d := Discipline(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_"))
	for _, known := range Disciplines() {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDiscipline, s)
}
