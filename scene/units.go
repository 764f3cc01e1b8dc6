package scene

import (
	"strconv"
	"strings"
)

// Unit represents the original unit of a length value as specified in DSL.
type Unit int

const (
	UnitNone Unit = iota // unit-less numbers, resolved by the caller's default
	UnitMM               // millimeters
	UnitCM               // centimeters
	UnitIN               // inches
	UnitPT               // points
	UnitPercent          // percent of a reference length, see Length.Resolve
)

// Conversion constants between pt and mm.
const (
	PtToMm = 0.352777
	MmToPt = 1.0 / PtToMm
)

// UnitToString returns a short string for a Unit value.
func UnitToString(u Unit) string {
	switch u {
	case UnitMM:
		return "mm"
	case UnitCM:
		return "cm"
	case UnitIN:
		return "in"
	case UnitPT:
		return "pt"
	case UnitPercent:
		return "%"
	default:
		return ""
	}
}

// Length preserves a numeric value with its unit.
type Length struct {
	Value float64 `json:"value"`
	Unit  Unit    `json:"unit"`
}

// Or returns l with UnitNone replaced by def.
func (l Length) Or(def Unit) Length {
	if l.Unit == UnitNone {
		l.Unit = def
	}
	return l
}

// ToMM converts the length to millimeters; unit-less values are taken as mm.
// Percentages have no absolute size here, use Resolve.
func (l Length) ToMM() float64 {
	switch l.Unit {
	case UnitCM:
		return l.Value * 10
	case UnitIN:
		return l.Value * 25.4
	case UnitPT:
		return l.Value * PtToMm
	default:
		return l.Value
	}
}

// Resolve converts the length to millimeters, taking percentages of ref (mm).
func (l Length) Resolve(ref float64) float64 {
	if l.Unit == UnitPercent {
		return l.Value * ref / 100
	}
	return l.ToMM()
}

// ToPT converts the length to points; unit-less values are taken as pt.
func (l Length) ToPT() float64 {
	if l.Unit == UnitNone || l.Unit == UnitPT {
		return l.Value
	}
	return l.ToMM() * MmToPt
}

// JSON returns the debug representation of l.
func (l Length) JSON() RawLengthJSON {
	return RawLengthJSON{Value: l.Value, Unit: UnitToString(l.Unit)}
}

// ParseRawLengthStr parses a DSL length string preserving its unit.
// The second result is false when value is not a number.
func ParseRawLengthStr(value string) (Length, bool) {
	v := strings.ToLower(strings.TrimSpace(value))
	if v == "" {
		return Length{}, false
	}
	unit := UnitNone
	for _, suf := range []struct {
		s string
		u Unit
	}{{"mm", UnitMM}, {"cm", UnitCM}, {"in", UnitIN}, {"pt", UnitPT}, {"%", UnitPercent}} {
		if strings.HasSuffix(v, suf.s) {
			unit = suf.u
			v = strings.TrimSpace(strings.TrimSuffix(v, suf.s))
			break
		}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return Length{}, false
	}
	return Length{Value: f, Unit: unit}, true
}
