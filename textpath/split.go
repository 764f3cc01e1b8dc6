package textpath

import (
	"strings"

	"github.com/rivo/uniseg"
)

// Segmentation selects what counts as one character during layout.
type Segmentation int

const (
	// Runes places every Unicode code point on its own.
	Runes Segmentation = iota
	// Graphemes keeps user-perceived characters (base plus combining marks,
	// emoji sequences) together.
	Graphemes
)

// ParseSegmentation maps "graphemes"/"grapheme"/"clusters" to Graphemes,
// anything else to Runes.
func ParseSegmentation(s string) Segmentation {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "graphemes", "grapheme", "clusters":
		return Graphemes
	default:
		return Runes
	}
}

func (s Segmentation) String() string {
	if s == Graphemes {
		return "graphemes"
	}
	return "runes"
}

// Split cuts text into the fragments that are measured and drawn one by one.
func Split(text string, mode Segmentation) []string {
	if text == "" {
		return nil
	}
	if mode == Graphemes {
		out := make([]string, 0, uniseg.GraphemeClusterCount(text))
		gr := uniseg.NewGraphemes(text)
		for gr.Next() {
			out = append(out, gr.Str())
		}
		return out
	}
	out := make([]string, 0, len(text))
	for _, r := range text {
		out = append(out, string(r))
	}
	return out
}
