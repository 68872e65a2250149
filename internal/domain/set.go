package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Flashcard set validation errors
var (
	ErrEmptySetID      = errors.New("set ID cannot be empty")
	ErrEmptySetTitle   = errors.New("set title cannot be empty")
	ErrSetTitleTooLong = errors.New("set title must be at most 200 characters long")
	ErrTooFewCards     = errors.New("a set needs at least 2 cards with both a term and a definition")
	ErrEmptyTerm       = errors.New("card term cannot be empty")
	ErrEmptyDefinition = errors.New("card definition cannot be empty")
)

// MinCardsPerSet is the smallest number of complete cards a saved set may hold.
const MinCardsPerSet = 2

const maxTitleLength = 200

// DefaultSetTitle names the sample set every new account starts with.
// It is excluded from achievement counting.
const DefaultSetTitle = "Python (default)"

// Flashcard is a single term/definition pair. Tags is the raw comma-delimited
// label list exactly as entered.
type Flashcard struct {
	ID         uuid.UUID `json:"id"`
	SetID      uuid.UUID `json:"set_id"`
	Position   int       `json:"position"`
	Term       string    `json:"term"`
	Definition string    `json:"definition"`
	Tags       string    `json:"tags,omitempty"`
}

// TagList splits Tags on commas, trimming whitespace and dropping empty
// entries. Case and duplicates are preserved.
func (c Flashcard) TagList() []string {
	if strings.TrimSpace(c.Tags) == "" {
		return nil
	}
	var tags []string
	for _, tag := range strings.Split(c.Tags, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// HasTag reports whether the card carries the given tag (exact match after trimming).
func (c Flashcard) HasTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	for _, t := range c.TagList() {
		if t == tag {
			return true
		}
	}
	return false
}

// CardInput is an unvalidated term/definition pair as supplied by a user,
// an import file, or a form.
type CardInput struct {
	Term       string `json:"term"`
	Definition string `json:"definition"`
	Tags       string `json:"tags,omitempty"`
}

// FlashcardSet is a titled, ordered collection of cards owned by one user.
type FlashcardSet struct {
	ID        uuid.UUID   `json:"id"`
	UserID    uuid.UUID   `json:"user_id"`
	Title     string      `json:"title"`
	IsDefault bool        `json:"is_default"`
	IsPublic  bool        `json:"is_public"`
	Cards     []Flashcard `json:"cards"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// NewFlashcardSet builds a set from raw card inputs. Rows missing a term or a
// definition are dropped; fewer than MinCardsPerSet remaining is an error.
func NewFlashcardSet(userID uuid.UUID, title string, inputs []CardInput) (*FlashcardSet, error) {
	now := time.Now().UTC()
	set := &FlashcardSet{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     strings.TrimSpace(title),
		CreatedAt: now,
		UpdatedAt: now,
	}
	set.ReplaceCards(inputs)

	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

// ReplaceCards swaps the set's cards for the complete rows of inputs,
// renumbering positions from zero.
func (s *FlashcardSet) ReplaceCards(inputs []CardInput) {
	cards := make([]Flashcard, 0, len(inputs))
	for _, in := range CompleteCards(inputs) {
		cards = append(cards, Flashcard{
			ID:         uuid.New(),
			SetID:      s.ID,
			Position:   len(cards),
			Term:       in.Term,
			Definition: in.Definition,
			Tags:       strings.TrimSpace(in.Tags),
		})
	}
	s.Cards = cards
}

// CompleteCards trims inputs and keeps only rows with both a term and a definition.
func CompleteCards(inputs []CardInput) []CardInput {
	out := make([]CardInput, 0, len(inputs))
	for _, in := range inputs {
		term := strings.TrimSpace(in.Term)
		def := strings.TrimSpace(in.Definition)
		if term == "" || def == "" {
			continue
		}
		out = append(out, CardInput{Term: term, Definition: def, Tags: in.Tags})
	}
	return out
}

// Validate checks if the FlashcardSet has valid data.
func (s *FlashcardSet) Validate() error {
	if s.ID == uuid.Nil {
		return ErrEmptySetID
	}
	if s.UserID == uuid.Nil {
		return ErrEmptyUserID
	}
	if s.Title == "" {
		return ErrEmptySetTitle
	}
	if len(s.Title) > maxTitleLength {
		return ErrSetTitleTooLong
	}
	if len(s.Cards) < MinCardsPerSet {
		return ErrTooFewCards
	}
	for i, c := range s.Cards {
		if c.Term == "" {
			return fmt.Errorf("card %d: %w", i+1, ErrEmptyTerm)
		}
		if c.Definition == "" {
			return fmt.Errorf("card %d: %w", i+1, ErrEmptyDefinition)
		}
	}
	return nil
}

// AccessibleBy reports whether userID may read and practise the set.
// uuid.Nil stands for an anonymous caller.
func (s *FlashcardSet) AccessibleBy(userID uuid.UUID) bool {
	return s.IsPublic || (userID != uuid.Nil && s.UserID == userID)
}

// OwnedBy reports whether userID may modify the set.
func (s *FlashcardSet) OwnedBy(userID uuid.UUID) bool {
	return userID != uuid.Nil && s.UserID == userID
}

// Search returns the cards whose term or definition contains query,
// ignoring case.
func (s *FlashcardSet) Search(query string) []Flashcard {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return s.Cards
	}
	var out []Flashcard
	for _, c := range s.Cards {
		if strings.Contains(strings.ToLower(c.Term), q) ||
			strings.Contains(strings.ToLower(c.Definition), q) {
			out = append(out, c)
		}
	}
	return out
}

// Tags returns the distinct tags used in the set in first-seen order.
func (s *FlashcardSet) Tags() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range s.Cards {
		for _, t := range c.TagList() {
			if !seen[t] {
				seen[t] = true
				out = append(out, t)
			}
		}
	}
	return out
}

// CardsTagged returns the cards carrying tag, in set order.
func (s *FlashcardSet) CardsTagged(tag string) []Flashcard {
	var out []Flashcard
	for _, c := range s.Cards {
		if c.HasTag(tag) {
			out = append(out, c)
		}
	}
	return out
}

// DefaultSetCards is the sample content seeded into every new account.
func DefaultSetCards() []CardInput {
	return []CardInput{
		{Term: "Python", Definition: "A high-level programming language."},
		{Term: "Variable", Definition: "A storage location paired with an associated symbolic name."},
		{Term: "Function", Definition: "A block of reusable code that performs a specific task."},
		{Term: "Loop", Definition: "A programming construct that repeats a block of code."},
	}
}

// NewDefaultSet builds the seeded sample set for a freshly registered user.
func NewDefaultSet(userID uuid.UUID) (*FlashcardSet, error) {
	set, err := NewFlashcardSet(userID, DefaultSetTitle, DefaultSetCards())
	if err != nil {
		return nil, err
	}
	set.IsDefault = true
	return set, nil
}
