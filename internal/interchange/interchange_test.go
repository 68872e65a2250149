package interchange

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/phrazzld/studyace/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"CSV", FormatCSV, false},
		{".json", FormatJSON, false},
		{" csv ", FormatCSV, false},
		{"xml", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()
	in := `{"title":"Spanish","cards":[
		{"term":"hola","definition":"hello","tags":"greeting, basic"},
		{"term":"  adios ","definition":"goodbye"}
	]}`

	deck, err := Decode(FormatJSON, strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, "Spanish", deck.Title)
	require.Len(t, deck.Cards, 2)
	assert.Equal(t, "greeting, basic", deck.Cards[0].Tags)
	// Text is not normalized by the codec.
	assert.Equal(t, "  adios ", deck.Cards[1].Term)

	_, err = Decode(FormatJSON, strings.NewReader(`{"title":`))
	assert.ErrorIs(t, err, ErrMalformedDeck)
}

func TestDecodeCSV(t *testing.T) {
	t.Parallel()

	t.Run("term and definition only", func(t *testing.T) {
		deck, err := Decode(FormatCSV, strings.NewReader("Term,Definition\nhola,hello\n\"a, b\",\"with, comma\"\n"))
		require.NoError(t, err)
		require.Len(t, deck.Cards, 2)
		assert.Equal(t, domain.CardInput{Term: "a, b", Definition: "with, comma"}, deck.Cards[1])
	})

	t.Run("reordered columns with tags and bom", func(t *testing.T) {
		in := "\ufeffDefinition,Extra,Term,Tags\nhello,x,hola,greeting\ngoodbye,y,adios\n"
		deck, err := Decode(FormatCSV, strings.NewReader(in))
		require.NoError(t, err)
		require.Len(t, deck.Cards, 2)
		assert.Equal(t, domain.CardInput{Term: "hola", Definition: "hello", Tags: "greeting"}, deck.Cards[0])
		assert.Equal(t, domain.CardInput{Term: "adios", Definition: "goodbye"}, deck.Cards[1])
	})

	t.Run("missing columns", func(t *testing.T) {
		_, err := Decode(FormatCSV, strings.NewReader("Word,Meaning\na,b\n"))
		assert.ErrorIs(t, err, ErrMalformedDeck)
	})

	t.Run("empty input", func(t *testing.T) {
		_, err := Decode(FormatCSV, strings.NewReader(""))
		assert.ErrorIs(t, err, ErrMalformedDeck)
	})
}

func TestEncodeDecodeSet(t *testing.T) {
	t.Parallel()
	set, err := domain.NewFlashcardSet(uuid.New(), "Capitals", []domain.CardInput{
		{Term: "France", Definition: "Paris", Tags: "europe"},
		{Term: "Japan", Definition: "Tokyo, Honshu"},
	})
	require.NoError(t, err)
	deck := FromSet(set)

	var csvBuf bytes.Buffer
	require.NoError(t, Encode(FormatCSV, &csvBuf, deck))
	assert.True(t, strings.HasPrefix(csvBuf.String(), "Term,Definition,Tags\n"))
	assert.Contains(t, csvBuf.String(), `Japan,"Tokyo, Honshu",`)

	fromCSV, err := Decode(FormatCSV, &csvBuf)
	require.NoError(t, err)
	assert.Equal(t, deck.Cards, fromCSV.Cards)

	var jsonBuf bytes.Buffer
	require.NoError(t, Encode(FormatJSON, &jsonBuf, deck))
	fromJSON, err := Decode(FormatJSON, &jsonBuf)
	require.NoError(t, err)
	assert.Equal(t, deck, fromJSON)

	assert.ErrorIs(t, Encode(Format("xml"), &jsonBuf, deck), ErrUnsupportedFormat)
	assert.Equal(t, "text/csv", FormatCSV.ContentType())
}

func TestEncodeCSV_OmitsEmptyTagsColumn(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	require.NoError(t, Encode(FormatCSV, &buf, Deck{Cards: []domain.CardInput{{Term: "a", Definition: "b"}}}))
	assert.Equal(t, "Term,Definition\na,b\n", buf.String())
}
