package textpath

import "strings"

// Align places the text block within the arc length of the path.
type Align int

const (
	AlignCenter Align = iota // default
	AlignLeft
	AlignRight
)

// ParseAlign maps left/center/right (and the start/middle/end aliases) to an
// Align. Unknown values fall back to AlignCenter.
func ParseAlign(s string) Align {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "start":
		return AlignLeft
	case "right", "end":
		return AlignRight
	default:
		return AlignCenter
	}
}

func (a Align) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	default:
		return "center"
	}
}

// start returns the arc length offset of the first character given the
// slack, that is path length minus text width.
func (a Align) start(slack float64) float64 {
	switch a {
	case AlignLeft:
		return 0
	case AlignRight:
		return slack
	default:
		return slack / 2
	}
}
