// Package textpath distributes the characters of a string along a polyline.
//
// The layout walks the arc length of the path and hands every character to a
// caller supplied draw callback together with its center position and the
// rotation (in radians) of the segment it sits on. Text measurement is
// delegated to the caller as well, so the package works with any rendering
// surface:
//
//	path := textpath.Path{{20, 33}, {40, 31}, {60, 30}, {80, 31}, {100, 33}}
//	textpath.Layout("My text path :-)", path, face.TextWidth,
//		func(ch string, x, y, angle float64) {
//			// translate to (x, y), rotate by angle, draw ch
//		}, textpath.AlignCenter)
//
// When the path runs from right to left (its first point lies right of its
// last point) the characters are walked backwards and every angle is flipped
// by π, which keeps the glyphs upright.
package textpath
