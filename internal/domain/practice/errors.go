package practice

import (
	"errors"

	"github.com/phrazzld/studyace/internal/domain"
)

// Engine refusals. Callers match them with errors.Is.
var (
	// ErrInsufficientCards is returned when the set has too few eligible cards
	// for the requested discipline. No session is created.
	ErrInsufficientCards = errors.New("not enough cards for this practice mode")

	// ErrNoActiveSession is returned when an answer arrives without a live
	// session for the same set and discipline. The caller should fetch the
	// current question again.
	ErrNoActiveSession = errors.New("no active practice session")

	// ErrUnknownDiscipline is returned for unsupported practice modes.
	ErrUnknownDiscipline = domain.ErrUnknownDiscipline

	// ErrNilSet is returned when no flashcard set is supplied.
	ErrNilSet = errors.New("flashcard set cannot be nil")
)
