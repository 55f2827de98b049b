package geometry

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const tol = 1e-9

// bezierAt evaluates a cubic Bezier starting at p0.
func bezierAt(p0 Point, s Segment, t float64) Point {
	mt := 1 - t
	a := p0.Scale(mt * mt * mt)
	b := s.Points[0].Scale(3 * mt * mt * t)
	c := s.Points[1].Scale(3 * mt * t * t)
	d := s.Points[2].Scale(t * t * t)
	return a.Add(b).Add(c).Add(d)
}

func mustPolygon(t *testing.T, p PolygonParams) Path {
	t.Helper()
	path, err := RoundedPolygon(p)
	if err != nil {
		t.Fatalf("RoundedPolygon(%+v): %v", p, err)
	}
	return path
}

func TestRoundedPolygonSegmentCounts(t *testing.T) {
	for _, sides := range []int{3, 4, 5, 6, 7, 8, 12, 64} {
		path := mustPolygon(t, DefaultPolygon(sides, 147, 29.4))
		counts := path.Counts()

		if counts[VerbMoveTo] != 1 {
			t.Errorf("sides=%d: expected 1 MoveTo, got %d", sides, counts[VerbMoveTo])
		}
		if counts[VerbCubicTo] != sides {
			t.Errorf("sides=%d: expected %d CubicTo, got %d", sides, sides, counts[VerbCubicTo])
		}
		if counts[VerbLineTo] != sides-1 {
			t.Errorf("sides=%d: expected %d LineTo, got %d", sides, sides-1, counts[VerbLineTo])
		}
		if counts[VerbClose] != 1 {
			t.Errorf("sides=%d: expected 1 Close, got %d", sides, counts[VerbClose])
		}
		if len(path) != 2*sides+1 {
			t.Errorf("sides=%d: expected %d segments, got %d", sides, 2*sides+1, len(path))
		}
		if err := path.Validate(); err != nil {
			t.Errorf("sides=%d: Validate: %v", sides, err)
		}
	}
}

func TestRoundedPolygonSegmentOrder(t *testing.T) {
	path := mustPolygon(t, DefaultPolygon(5, 100, 15))

	if path[0].Verb != VerbMoveTo || path[1].Verb != VerbCubicTo {
		t.Fatalf("expected MoveTo, CubicTo prefix, got %s, %s", path[0].Verb, path[1].Verb)
	}
	for i := 2; i < len(path)-1; i += 2 {
		if path[i].Verb != VerbLineTo || path[i+1].Verb != VerbCubicTo {
			t.Fatalf("segments %d,%d: expected LineTo, CubicTo, got %s, %s",
				i, i+1, path[i].Verb, path[i+1].Verb)
		}
	}
	if path[len(path)-1].Verb != VerbClose {
		t.Fatalf("expected trailing Close, got %s", path[len(path)-1].Verb)
	}
}

// The closing instruction draws the last flat edge; it must be as long as
// every explicit LineTo edge for the outline to be regular and closed.
func TestRoundedPolygonClosesRegularly(t *testing.T) {
	for _, sides := range []int{3, 6, 9} {
		path := mustPolygon(t, DefaultPolygon(sides, 120, 18))
		start, _ := path.Start()

		var edges []float64
		var cursor Point
		for _, s := range path {
			end, ok := s.End()
			if !ok {
				continue
			}
			if s.Verb == VerbLineTo {
				edges = append(edges, cursor.Distance(end))
			}
			cursor = end
		}
		closing := cursor.Distance(start)

		for i, e := range edges {
			if math.Abs(e-closing) > 1e-7 {
				t.Errorf("sides=%d: edge %d length %v, closing edge %v", sides, i, e, closing)
			}
		}
	}
}

func TestRoundedPolygonConcreteHexagon(t *testing.T) {
	const radius, corner = 147.0, 29.4
	path := mustPolygon(t, DefaultPolygon(6, radius, corner))
	c, err := CornerGeometry(6, corner)
	if err != nil {
		t.Fatalf("CornerGeometry: %v", err)
	}

	start, ok := path.Start()
	if !ok {
		t.Fatal("path has no leading MoveTo")
	}

	// The MoveTo point is the entry tangent of corner 0, one corner radius
	// away from an arc center sitting on the first bisector (angle 0, +Y).
	center := start.Sub(Polar(-c.ArcHalfAngle, corner))
	if !center.ApproxEqual(Point{X: 0, Y: radius - corner}, tol) {
		t.Errorf("arc center = %+v, want (0, %v)", center, radius-corner)
	}
	if d := start.Distance(center); math.Abs(d-corner) > tol {
		t.Errorf("MoveTo distance from arc center = %v, want %v", d, corner)
	}

	counts := path.Counts()
	if counts[VerbCubicTo] != 6 || counts[VerbLineTo] != 5 {
		t.Errorf("expected 6 curves and 5 lines, got %v", counts)
	}
	if !strings.HasPrefix(path.String(), "M ") || !strings.HasSuffix(path.String(), " Z") {
		t.Errorf("unexpected path data: %s", path.String())
	}
}

func TestCornerGeometryArcHalfAngle(t *testing.T) {
	// Each corner turns the outline by 2π/n, so its arc spans half of that on
	// either side of the bisector.
	for _, sides := range []int{3, 4, 6, 10} {
		c, err := CornerGeometry(sides, 12)
		if err != nil {
			t.Fatalf("sides=%d: %v", sides, err)
		}
		want := math.Pi / float64(sides)
		if math.Abs(c.ArcHalfAngle-want) > tol {
			t.Errorf("sides=%d: ArcHalfAngle = %v, want %v", sides, c.ArcHalfAngle, want)
		}
		wantLong := 12 / math.Sin(c.InteriorHalfAngle)
		if math.Abs(c.LongDiagonal-wantLong) > tol {
			t.Errorf("sides=%d: LongDiagonal = %v, want %v", sides, c.LongDiagonal, wantLong)
		}
	}
}

func TestRoundedPolygonRotationalSymmetry(t *testing.T) {
	for _, sides := range []int{3, 5, 6, 8} {
		base := DefaultPolygon(sides, 147, 25)
		base.RotationDegrees = 7

		rotated := base
		rotated.RotationDegrees += 360 / float64(sides)

		a := mustPolygon(t, base).Curves()
		b := mustPolygon(t, rotated).Curves()

		// Rotating by one step moves every corner onto its successor.
		shifted := append(append([]Segment{}, a[1:]...), a[0])
		if diff := cmp.Diff(shifted, b, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
			t.Errorf("sides=%d: rotated curves differ (-want +got):\n%s", sides, diff)
		}
	}
}

func TestRoundedPolygonSmallCornerLimit(t *testing.T) {
	const radius = 100.0
	p := DefaultPolygon(6, radius, 1e-6)
	path := mustPolygon(t, p)

	i := 0
	var cursor Point
	for _, s := range path {
		if s.Verb == VerbCubicTo {
			ideal := Polar(p.cornerAngle(i), radius)
			for _, pt := range []Point{cursor, s.Points[0], s.Points[1], s.Points[2]} {
				if pt.Distance(ideal) > 1e-5 {
					t.Errorf("corner %d: point %+v not near ideal vertex %+v", i, pt, ideal)
				}
			}
			i++
		}
		if end, ok := s.End(); ok {
			cursor = end
		}
	}
}

// The cubic approximation is exact at its midpoint and tangent to the edges
// at its ends.
func TestRoundedPolygonCurvesFollowArcs(t *testing.T) {
	p := DefaultPolygon(4, 80, 20)
	p.OriginX, p.OriginY = 80, 80
	path := mustPolygon(t, p)
	centers, err := ArcCenters(p)
	if err != nil {
		t.Fatalf("ArcCenters: %v", err)
	}

	i := 0
	var cursor Point
	for _, s := range path {
		if s.Verb == VerbCubicTo {
			mid := bezierAt(cursor, s, 0.5)
			if d := mid.Distance(centers[i]); math.Abs(d-20) > 1e-9 {
				t.Errorf("corner %d: curve midpoint %v from arc center, want 20", i, d)
			}
			if d := cursor.Distance(centers[i]); math.Abs(d-20) > tol {
				t.Errorf("corner %d: entry tangent %v from arc center, want 20", i, d)
			}
			if d := s.Points[2].Distance(centers[i]); math.Abs(d-20) > tol {
				t.Errorf("corner %d: exit tangent %v from arc center, want 20", i, d)
			}
			i++
		}
		if end, ok := s.End(); ok {
			cursor = end
		}
	}
}

func TestRoundedPolygonOrigin(t *testing.T) {
	base := mustPolygon(t, DefaultPolygon(6, 50, 10))
	p := DefaultPolygon(6, 50, 10)
	p.OriginX, p.OriginY = 30, -12
	moved := mustPolygon(t, p)

	if diff := cmp.Diff(base.Translate(30, -12), moved, cmpopts.EquateApprox(0, 1e-12)); diff != "" {
		t.Errorf("translated path differs (-want +got):\n%s", diff)
	}
}

// Without AdjustRadius the arc centers sit at the long diagonal and the
// radius has no effect on the outline.
func TestRoundedPolygonLongDiagonalCenters(t *testing.T) {
	p := DefaultPolygon(6, 147, 29.4)
	p.AdjustRadius = false
	centers, err := ArcCenters(p)
	if err != nil {
		t.Fatalf("ArcCenters: %v", err)
	}
	want := 29.4 * (math.Sqrt(3)/2 + 1/(2*math.Sqrt(3)))
	for i, c := range centers {
		if math.Abs(c.Length()-want) > tol {
			t.Errorf("arc center %d at distance %v, want %v", i, c.Length(), want)
		}
	}
	if math.Abs(want-33.948) > 1e-3 {
		t.Errorf("long diagonal = %v, want about 33.948", want)
	}

	small := p
	small.Radius = 20
	if diff := cmp.Diff(mustPolygon(t, p), mustPolygon(t, small)); diff != "" {
		t.Errorf("radius changed a non-adjusted outline (-want +got):\n%s", diff)
	}
}

func TestRoundedPolygonErrors(t *testing.T) {
	tests := []struct {
		name   string
		params PolygonParams
		want   error
	}{
		{"two sides", DefaultPolygon(2, 100, 10), ErrInvalidSideCount},
		{"zero sides", DefaultPolygon(0, 100, 10), ErrInvalidSideCount},
		{"zero radius", DefaultPolygon(6, 0, 10), ErrInvalidGeometry},
		{"negative corner", DefaultPolygon(6, 100, -1), ErrInvalidGeometry},
		{"zero corner", DefaultPolygon(6, 100, 0), ErrInvalidGeometry},
		{"nan corner", DefaultPolygon(6, 100, math.NaN()), ErrInvalidGeometry},
		{"infinite radius", DefaultPolygon(6, math.Inf(1), 10), ErrInvalidGeometry},
		{"corner equals radius", DefaultPolygon(6, 100, 100), ErrInvalidGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, err := RoundedPolygon(tt.params)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if path != nil {
				t.Errorf("expected nil path on error, got %d segments", len(path))
			}
		})
	}
}

func TestMaxCornerRadius(t *testing.T) {
	if got := MaxCornerRadius(6, 147, true); got != 147 {
		t.Errorf("adjusted max = %v, want 147", got)
	}
	if got := MaxCornerRadius(3, 100, false); !math.IsInf(got, 1) {
		t.Errorf("non-adjusted max = %v, want +Inf", got)
	}

	big := DefaultPolygon(3, 100, 500)
	big.AdjustRadius = false
	if _, err := RoundedPolygon(big); err != nil {
		t.Errorf("non-adjusted corner radius above the radius rejected: %v", err)
	}
}
