// Package interchange reads and writes flashcard decks in the portable file
// formats used for import and export.
//
// JSON decks look like {"title": "...", "cards": [{"term": "...",
// "definition": "...", "tags": "..."}]}. CSV decks start with a header row
// naming at least the Term and Definition columns; a Tags column is optional
// and extra columns are ignored. Card text is passed through as read.
package interchange

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/phrazzld/studyace/internal/domain"
)

// Format names a deck file format.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

var (
	// ErrUnsupportedFormat is returned for an unknown Format.
	ErrUnsupportedFormat = errors.New("unsupported deck format")

	// ErrMalformedDeck is returned when the input cannot be parsed as the
	// requested format.
	ErrMalformedDeck = errors.New("malformed deck file")
)

// Deck is the portable form of a flashcard set.
type Deck struct {
	Title string             `json:"title"`
	Cards []domain.CardInput `json:"cards"`
}

// ParseFormat accepts a format name case-insensitively. A leading dot is
// tolerated so file extensions can be passed directly.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), ".")); f {
	case FormatJSON, FormatCSV:
		return f, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// ContentType returns the MIME type for f.
func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv"
	}
	return "application/json"
}

// FromSet converts a stored set into a Deck.
func FromSet(set *domain.FlashcardSet) Deck {
	deck := Deck{Title: set.Title, Cards: make([]domain.CardInput, 0, len(set.Cards))}
	for _, c := range set.Cards {
		deck.Cards = append(deck.Cards, domain.CardInput{
			Term:       c.Term,
			Definition: c.Definition,
			Tags:       c.Tags,
		})
	}
	return deck
}

// Decode reads a deck in format f from r.
func Decode(f Format, r io.Reader) (Deck, error) {
	switch f {
	case FormatJSON:
		return decodeJSON(r)
	case FormatCSV:
		return decodeCSV(r)
	}
	return Deck{}, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// Encode writes deck to w in format f.
func Encode(f Format, w io.Writer, deck Deck) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(deck)
	case FormatCSV:
		return encodeCSV(w, deck)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

func decodeJSON(r io.Reader) (Deck, error) {
	var deck Deck
	if err := json.NewDecoder(r).Decode(&deck); err != nil {
		return Deck{}, fmt.Errorf("%w: %w", ErrMalformedDeck, err)
	}
	if deck.Cards == nil {
		deck.Cards = []domain.CardInput{}
	}
	return deck, nil
}

func decodeCSV(r io.Reader) (Deck, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return Deck{}, fmt.Errorf("%w: missing header row: %w", ErrMalformedDeck, err)
	}

	cols := map[string]int{}
	for i, name := range header {
		// Spreadsheet exports often prefix the first cell with a BOM.
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		cols[strings.ToLower(name)] = i
	}
	termCol, okTerm := cols["term"]
	defCol, okDef := cols["definition"]
	if !okTerm || !okDef {
		return Deck{}, fmt.Errorf("%w: header must name Term and Definition columns", ErrMalformedDeck)
	}
	tagsCol, hasTags := cols["tags"]

	deck := Deck{Cards: []domain.CardInput{}}
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Deck{}, fmt.Errorf("%w: %w", ErrMalformedDeck, err)
		}
		card := domain.CardInput{
			Term:       field(record, termCol),
			Definition: field(record, defCol),
		}
		if hasTags {
			card.Tags = field(record, tagsCol)
		}
		deck.Cards = append(deck.Cards, card)
	}
	return deck, nil
}

func encodeCSV(w io.Writer, deck Deck) error {
	withTags := false
	for _, c := range deck.Cards {
		if c.Tags != "" {
			withTags = true
			break
		}
	}

	writer := csv.NewWriter(w)
	header := []string{"Term", "Definition"}
	if withTags {
		header = append(header, "Tags")
	}
	if err := writer.Write(header); err != nil {
		return err
	}
	for _, c := range deck.Cards {
		row := []string{c.Term, c.Definition}
		if withTags {
			row = append(row, c.Tags)
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func field(record []string, i int) string {
	if i < len(record) {
		return record[i]
	}
	return ""
}
