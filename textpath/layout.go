package textpath

import (
	"math"
	"strings"
)

// MeasureFunc returns the rendered width of a text fragment.
type MeasureFunc func(fragment string) float64

// DrawFunc receives one character, the position of its center on the path
// and the rotation of the segment it sits on, in radians.
type DrawFunc func(char string, x, y, angle float64)

// Placement describes where and how to draw one character.
type Placement struct {
	Char  string  `json:"char"`
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Angle float64 `json:"angle"`
}

// Layout walks text along path and calls draw once per character (code
// point). measure is called once for the whole text and once per character.
//
// Characters are drawn in reading order unless the path runs from right to
// left, in which case they are drawn last to first with angles flipped by π.
// Text longer than the path is extrapolated past the last segment. A path
// with fewer than two points draws nothing.
func Layout(text string, path Path, measure MeasureFunc, draw DrawFunc, align Align) {
	LayoutFragments(Split(text, Runes), path, measure, draw, align)
}

// LayoutFragments is Layout over an explicit sequence of fragments, each of
// which is measured and drawn as a single unit.
func LayoutFragments(fragments []string, path Path, measure MeasureFunc, draw DrawFunc, align Align) {
	if len(path) < 2 {
		return
	}
	textLength := measure(strings.Join(fragments, ""))
	startM := align.start(path.Length() - textLength)

	end := len(path)
	reverse := path.Reversed()

	// cursor over the path: segment [offset-1, offset]
	offset := 1
	p1, p2 := path[0], path[1]
	segmentM := 0.0
	segmentLength := p1.Distance(p2)

	n := len(fragments)
	for i := 0; i < n; i++ {
		index := i
		if reverse {
			index = n - i - 1
		}
		char := fragments[index]
		charLength := measure(char)
		charM := startM + charLength/2
		for offset < end-1 && segmentM+segmentLength < charM {
			p1 = p2
			offset++
			p2 = path[offset]
			segmentM += segmentLength
			segmentLength = p1.Distance(p2)
		}
		angle := math.Atan2(p2.Y-p1.Y, p2.X-p1.X)
		if reverse {
			angle = upright(angle)
		}
		pos := p1.Lerp(p2, (charM-segmentM)/segmentLength)
		draw(char, pos.X, pos.Y, angle)
		startM += charLength
	}
}

// Place runs Layout and collects the placements in draw order.
func Place(text string, path Path, measure MeasureFunc, align Align) []Placement {
	return PlaceFragments(Split(text, Runes), path, measure, align)
}

// PlaceFragments runs LayoutFragments and collects the placements in draw order.
func PlaceFragments(fragments []string, path Path, measure MeasureFunc, align Align) []Placement {
	placements := make([]Placement, 0, len(fragments))
	LayoutFragments(fragments, path, measure, func(char string, x, y, angle float64) {
		placements = append(placements, Placement{Char: char, X: x, Y: y, Angle: angle})
	}, align)
	return placements
}

// upright flips a tangent angle by π, staying within [-π, π].
func upright(angle float64) float64 {
	if angle > 0 {
		return angle - math.Pi
	}
	return angle + math.Pi
}
