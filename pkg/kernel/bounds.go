package kernel

import "github.com/chazu/hexcede/pkg/geometry"

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min geometry.Point `json:"min"`
	Max geometry.Point `json:"max"`
}

// Width returns the horizontal extent.
func (b Bounds) Width() float64 {
	return b.Max.X - b.Min.X
}

// Height returns the vertical extent.
func (b Bounds) Height() float64 {
	return b.Max.Y - b.Min.Y
}

// Within reports whether b lies inside outer, allowing tol of overhang on
// every side.
func (b Bounds) Within(outer Bounds, tol float64) bool {
	return b.Min.X >= outer.Min.X-tol && b.Min.Y >= outer.Min.Y-tol &&
		b.Max.X <= outer.Max.X+tol && b.Max.Y <= outer.Max.Y+tol
}
