package textpath

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitRunes(t *testing.T) {
	assert.Nil(t, Split("", Runes))
	assert.Equal(t, []string{"a", "π", "字"}, Split("aπ字", Runes))
	// combining marks are separate code points
	assert.Len(t, Split("e\u0301", Runes), 2)
}

func TestSplitGraphemes(t *testing.T) {
	assert.Nil(t, Split("", Graphemes))
	flag := "\U0001F1E9\U0001F1EA" // regional indicator pair
	got := Split("a"+flag+"e\u0301", Graphemes)
	assert.Equal(t, []string{"a", flag, "e\u0301"}, got)
	assert.Equal(t, "a"+flag+"e\u0301", strings.Join(got, ""))
}

func TestParseSegmentation(t *testing.T) {
	assert.Equal(t, Graphemes, ParseSegmentation("Graphemes"))
	assert.Equal(t, Graphemes, ParseSegmentation("clusters"))
	assert.Equal(t, Runes, ParseSegmentation("runes"))
	assert.Equal(t, Runes, ParseSegmentation("whatever"))
	assert.Equal(t, "graphemes", Graphemes.String())
}
