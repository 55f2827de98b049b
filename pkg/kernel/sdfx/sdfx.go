// Package sdfx implements the kernel.Kernel interface using the
// github.com/deadsy/sdfx signed distance field library.
package sdfx

import (
	"fmt"
	"math"

	"github.com/chazu/hexcede/pkg/geometry"
	"github.com/chazu/hexcede/pkg/kernel"
	"github.com/deadsy/sdfx/sdf"
	v2 "github.com/deadsy/sdfx/vec/v2"
)

// Compile-time interface check.
var _ kernel.Kernel = (*SdfxKernel)(nil)

// sdfxShape wraps an sdf.SDF2 to implement kernel.Shape.
type sdfxShape struct {
	s sdf.SDF2
}

// Distance returns the signed distance from p to the boundary.
func (s *sdfxShape) Distance(p geometry.Point) float64 {
	return s.s.Evaluate(toVec(p))
}

// Bounds returns the axis-aligned bounding box.
func (s *sdfxShape) Bounds() kernel.Bounds {
	bb := s.s.BoundingBox()
	return kernel.Bounds{Min: fromVec(bb.Min), Max: fromVec(bb.Max)}
}

// SdfxKernel implements kernel.Kernel using sdfx.
type SdfxKernel struct{}

// New returns a new SdfxKernel.
func New() *SdfxKernel {
	return &SdfxKernel{}
}

// unwrap extracts the underlying sdf.SDF2 from a kernel.Shape.
func unwrap(s kernel.Shape) sdf.SDF2 {
	return s.(*sdfxShape).s
}

// wrap creates a kernel.Shape from an sdf.SDF2.
func wrap(s sdf.SDF2) kernel.Shape {
	return &sdfxShape{s: s}
}

func toVec(p geometry.Point) v2.Vec {
	return v2.Vec{X: p.X, Y: p.Y}
}

func fromVec(v v2.Vec) geometry.Point {
	return geometry.Point{X: v.X, Y: v.Y}
}

// polygonSDF2 takes its distance from an sdfx line mesh and its sign from a
// winding number over the vertices. The mesh's own quadtree winding count
// misreports points level with a vertex.
type polygonSDF2 struct {
	mesh   sdf.SDF2
	vertex []v2.Vec
}

func (s *polygonSDF2) Evaluate(p v2.Vec) float64 {
	d := math.Abs(s.mesh.Evaluate(p))
	if winding(p, s.vertex) != 0 {
		return -d
	}
	return d
}

func (s *polygonSDF2) BoundingBox() sdf.Box2 {
	return s.mesh.BoundingBox()
}

// winding counts how often the closed polygon winds around p. Edges are
// half-open in Y so a vertex on the ray through p is counted once.
func winding(p v2.Vec, vertex []v2.Vec) int {
	wn := 0
	for i, a := range vertex {
		b := vertex[(i+1)%len(vertex)]
		side := (b.X-a.X)*(p.Y-a.Y) - (p.X-a.X)*(b.Y-a.Y)
		switch {
		case a.Y <= p.Y && b.Y > p.Y && side > 0:
			wn++
		case a.Y > p.Y && b.Y <= p.Y && side < 0:
			wn--
		}
	}
	return wn
}

// Polygon creates a closed polygon through the given vertices.
func (k *SdfxKernel) Polygon(vertices []geometry.Point) (kernel.Shape, error) {
	if len(vertices) < geometry.MinSides {
		return nil, fmt.Errorf("sdfx polygon: %w: %d vertices", geometry.ErrInvalidSideCount, len(vertices))
	}
	vs := make([]v2.Vec, len(vertices))
	for i, p := range vertices {
		vs[i] = toVec(p)
	}
	mesh, err := sdf.Polygon2D(vs)
	if err != nil {
		return nil, fmt.Errorf("sdfx polygon: %w", err)
	}
	return wrap(&polygonSDF2{mesh: mesh, vertex: vs}), nil
}

// Offset grows a shape by d, rounding its convex corners with radius d.
func (k *SdfxKernel) Offset(s kernel.Shape, d float64) kernel.Shape {
	return wrap(sdf.Offset2D(unwrap(s), d))
}

// Translate moves a shape by (x, y).
func (k *SdfxKernel) Translate(s kernel.Shape, x, y float64) kernel.Shape {
	m := sdf.Translate2d(v2.Vec{X: x, Y: y})
	return wrap(sdf.Transform2D(unwrap(s), m))
}
