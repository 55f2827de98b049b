// Package geometry builds the rounded regular polygon outline of a hexcede
// icon as an SVG-compatible path of lines and cubic Bezier curves.
package geometry

import "math"

// Point is a 2D coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Polar returns the point at the given angle (radians) and distance from the
// origin. Angle zero points along +Y, so corner 0 of an unrotated polygon sits
// straight below the center in SVG coordinates.
func Polar(angle, radius float64) Point {
	return Point{X: math.Sin(angle) * radius, Y: math.Cos(angle) * radius}
}

// Add returns the sum of two points.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the difference of two points.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns the point scaled by a factor.
func (p Point) Scale(factor float64) Point {
	return Point{X: p.X * factor, Y: p.Y * factor}
}

// Distance returns the Euclidean distance to another point.
func (p Point) Distance(other Point) float64 {
	return math.Hypot(p.X-other.X, p.Y-other.Y)
}

// Length returns the distance from the origin.
func (p Point) Length() float64 {
	return math.Hypot(p.X, p.Y)
}

// IsFinite reports whether both coordinates are finite numbers.
func (p Point) IsFinite() bool {
	return !math.IsNaN(p.X) && !math.IsInf(p.X, 0) &&
		!math.IsNaN(p.Y) && !math.IsInf(p.Y, 0)
}

// ApproxEqual reports whether two points are within tol of each other on
// both axes.
func (p Point) ApproxEqual(other Point, tol float64) bool {
	return math.Abs(p.X-other.X) <= tol && math.Abs(p.Y-other.Y) <= tol
}
