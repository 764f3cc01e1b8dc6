package textpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAlign(t *testing.T) {
	cases := map[string]Align{
		"left":    AlignLeft,
		"Start":   AlignLeft,
		" right ": AlignRight,
		"end":     AlignRight,
		"center":  AlignCenter,
		"middle":  AlignCenter,
		"":        AlignCenter,
		"justify": AlignCenter,
	}
	for in, want := range cases {
		assert.Equal(t, want, ParseAlign(in), "ParseAlign(%q)", in)
	}
	assert.Equal(t, "center", Align(7).String())
	assert.Equal(t, "right", AlignRight.String())
}

func TestPathLength(t *testing.T) {
	assert.InDelta(t, 0.0, Path{}.Length(), epsilon)
	assert.InDelta(t, 0.0, Path{{3, 4}}.Length(), epsilon)
	assert.InDelta(t, 5.0, Path{{0, 0}, {3, 4}}.Length(), epsilon)
	assert.InDelta(t, 15.0, Path{{0, 0}, {3, 4}, {3, 14}}.Length(), epsilon)
	assert.InDelta(t, 30.0, Path{{0, 0}, {3, 4}, {3, 14}}.Scale(2).Length(), epsilon)
}

func TestPathReversed(t *testing.T) {
	assert.False(t, Path{{0, 0}, {10, 0}}.Reversed())
	assert.True(t, Path{{10, 0}, {0, 5}}.Reversed())
	// vertical paths run left to right
	assert.False(t, Path{{5, 0}, {5, 10}}.Reversed())
	assert.False(t, Path{{5, 0}}.Reversed())
}
