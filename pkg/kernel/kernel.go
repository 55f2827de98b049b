// Package kernel defines the abstract 2D shape kernel interface. The
// composer uses it to cross-check rounded outlines against an independent
// signed-distance model and to measure their extent on the canvas.
// Implementations wrap their own shape representation behind Shape.
package kernel

import (
	"fmt"

	"github.com/chazu/hexcede/pkg/geometry"
)

// Shape is an opaque handle to a kernel shape.
type Shape interface {
	// Distance returns the signed distance from p to the shape's boundary,
	// negative inside.
	Distance(p geometry.Point) float64
	// Bounds returns the axis-aligned bounding box.
	Bounds() Bounds
}

// Kernel is the abstract 2D shape kernel interface.
type Kernel interface {
	// Polygon builds a closed polygon through vertices.
	Polygon(vertices []geometry.Point) (Shape, error)

	// Offset grows (positive) or shrinks (negative) a shape by d.
	Offset(s Shape, d float64) Shape

	// Translate moves a shape by (x, y).
	Translate(s Shape, x, y float64) Shape
}

// RoundedPolygon builds the kernel shape of a rounded regular polygon: the
// polygon through the arc centers around (0, 0), grown by the corner radius
// and moved to p's origin. Its boundary coincides with the arcs and flat
// edges of geometry.RoundedPolygon.
func RoundedPolygon(k Kernel, p geometry.PolygonParams) (Shape, error) {
	origin := geometry.Point{X: p.OriginX, Y: p.OriginY}
	if !origin.IsFinite() {
		return nil, fmt.Errorf("%w: origin %v must be finite", geometry.ErrInvalidGeometry, origin)
	}
	centered := p
	centered.OriginX, centered.OriginY = 0, 0
	centers, err := geometry.ArcCenters(centered)
	if err != nil {
		return nil, err
	}
	core, err := k.Polygon(centers)
	if err != nil {
		return nil, err
	}
	return k.Translate(k.Offset(core, p.CornerRadius), origin.X, origin.Y), nil
}
