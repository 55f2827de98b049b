package geometry

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidSideCount is returned for polygons with fewer than three sides.
	ErrInvalidSideCount = errors.New("invalid side count")
	// ErrInvalidGeometry is returned when the radius and corner radius cannot
	// produce a well-formed outline.
	ErrInvalidGeometry = errors.New("invalid geometry")
)

// MinSides is the smallest side count of a polygon.
const MinSides = 3

// PolygonParams describes a rounded regular polygon.
type PolygonParams struct {
	SideCount       int     `json:"side_count"`
	Radius          float64 `json:"radius"`
	CornerRadius    float64 `json:"corner_radius"`
	OriginX         float64 `json:"origin_x"`
	OriginY         float64 `json:"origin_y"`
	RotationDegrees float64 `json:"rotation_degrees"`

	// AdjustRadius selects how far the arc centers sit from the origin. When
	// true they sit at Radius - CornerRadius, so Radius reaches the outermost
	// point of each rounded corner. When false they sit at the corner's long
	// diagonal and Radius does not affect the outline.
	AdjustRadius bool `json:"adjust_radius"`
}

// DefaultPolygon returns params for an unrotated polygon centered on the
// origin with AdjustRadius set.
func DefaultPolygon(sides int, radius, cornerRadius float64) PolygonParams {
	return PolygonParams{
		SideCount:    sides,
		Radius:       radius,
		CornerRadius: cornerRadius,
		AdjustRadius: true,
	}
}

// Corner holds the per-corner quantities shared by every corner of a rounded
// regular polygon. Angles are in radians, lengths in the units of the corner
// radius.
type Corner struct {
	InteriorHalfAngle float64 // half of one interior vertex angle
	PointDistance     float64 // arc center to tangent point, along the edge
	ShortDiagonal     float64
	LongDiagonalLower float64
	LongDiagonalUpper float64
	LongDiagonal      float64 // arc center to the unrounded vertex
	ArcHalfAngle      float64 // half the angle swept by the corner arc
	ControlPointRatio float64 // Bezier handle length as a fraction of tangent-to-vertex
}

// CornerGeometry computes the corner quantities for a polygon with the given
// side count and corner radius.
func CornerGeometry(sides int, cornerRadius float64) (Corner, error) {
	if sides < MinSides {
		return Corner{}, fmt.Errorf("%w: %d (minimum %d)", ErrInvalidSideCount, sides, MinSides)
	}
	if !(cornerRadius > 0) || math.IsInf(cornerRadius, 0) {
		return Corner{}, fmt.Errorf("%w: corner radius %v must be positive and finite", ErrInvalidGeometry, cornerRadius)
	}

	var c Corner
	n := float64(sides)
	c.InteriorHalfAngle = (math.Pi * (n - 2)) / (2 * n)
	c.PointDistance = cornerRadius / math.Tan(c.InteriorHalfAngle)
	c.ShortDiagonal = c.PointDistance * math.Sin(c.InteriorHalfAngle)

	lowerSq := cornerRadius*cornerRadius - c.ShortDiagonal*c.ShortDiagonal
	if lowerSq < 0 {
		return Corner{}, fmt.Errorf("%w: corner radius %v too small for %d sides (short diagonal %v)",
			ErrInvalidGeometry, cornerRadius, sides, c.ShortDiagonal)
	}
	c.LongDiagonalLower = math.Sqrt(lowerSq)
	c.LongDiagonalUpper = c.PointDistance * math.Cos(c.InteriorHalfAngle)
	c.LongDiagonal = c.LongDiagonalLower + c.LongDiagonalUpper

	c.ArcHalfAngle = math.Acos(c.LongDiagonalLower / cornerRadius)
	c.ControlPointRatio = 4 / (3 * (1/math.Cos(c.ArcHalfAngle) + 1))
	return c, nil
}

// centerDistance returns the distance from the polygon center to each
// corner's arc center.
func (p PolygonParams) centerDistance(c Corner) float64 {
	if p.AdjustRadius {
		return p.Radius - p.CornerRadius
	}
	return c.LongDiagonal
}

// MaxCornerRadius returns the exclusive upper bound on the corner radius for
// a polygon of the given side count and radius. Corner radii at or above it
// put the arc centers on or past the origin. Without AdjustRadius the arc
// centers scale with the corner radius alone and there is no bound.
func MaxCornerRadius(sides int, radius float64, adjust bool) float64 {
	if !adjust {
		return math.Inf(1)
	}
	return radius
}

func (p PolygonParams) check() (Corner, error) {
	if p.SideCount < MinSides {
		return Corner{}, fmt.Errorf("%w: %d (minimum %d)", ErrInvalidSideCount, p.SideCount, MinSides)
	}
	if !(p.Radius > 0) || math.IsInf(p.Radius, 0) {
		return Corner{}, fmt.Errorf("%w: radius %v must be positive and finite", ErrInvalidGeometry, p.Radius)
	}
	for _, v := range []float64{p.OriginX, p.OriginY, p.RotationDegrees} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Corner{}, fmt.Errorf("%w: origin and rotation must be finite", ErrInvalidGeometry)
		}
	}
	c, err := CornerGeometry(p.SideCount, p.CornerRadius)
	if err != nil {
		return Corner{}, err
	}
	if d := p.centerDistance(c); !(d > 0) {
		return Corner{}, fmt.Errorf("%w: corner radius %v must be below %v for radius %v",
			ErrInvalidGeometry, p.CornerRadius, MaxCornerRadius(p.SideCount, p.Radius, p.AdjustRadius), p.Radius)
	}
	return c, nil
}

// cornerAngle returns the bisecting angle of corner i.
func (p PolygonParams) cornerAngle(i int) float64 {
	return float64(i)*math.Pi*2/float64(p.SideCount) + p.RotationDegrees*math.Pi/180
}

// ArcCenters returns the center of each corner's rounding arc, translated by
// the origin.
func ArcCenters(p PolygonParams) ([]Point, error) {
	c, err := p.check()
	if err != nil {
		return nil, err
	}
	origin := Point{X: p.OriginX, Y: p.OriginY}
	dist := p.centerDistance(c)
	centers := make([]Point, p.SideCount)
	for i := range centers {
		centers[i] = Polar(p.cornerAngle(i), dist).Add(origin)
	}
	return centers, nil
}

// RoundedPolygon traces a regular polygon whose corners are replaced by
// circular arcs, each approximated by one cubic Bezier. The path starts with
// a MoveTo onto corner 0's entry tangent point; every later corner is reached
// by a LineTo along the flat edge; each corner contributes one CubicTo; a
// Close ends the outline.
func RoundedPolygon(p PolygonParams) (Path, error) {
	c, err := p.check()
	if err != nil {
		return nil, err
	}

	dist := p.centerDistance(c)
	path := make(Path, 0, 2*p.SideCount+1)

	for i := 0; i < p.SideCount; i++ {
		angle := p.cornerAngle(i)
		arcCenter := Polar(angle, dist)
		aim := Polar(angle, dist+c.LongDiagonal)

		first := arcCenter.Add(Polar(angle-c.ArcHalfAngle, p.CornerRadius))
		second := arcCenter.Add(Polar(angle+c.ArcHalfAngle, p.CornerRadius))

		firstControl := first.Add(aim.Sub(first).Scale(c.ControlPointRatio))
		secondControl := second.Add(aim.Sub(second).Scale(c.ControlPointRatio))

		if i == 0 {
			path = append(path, MoveTo(first))
		} else {
			path = append(path, LineTo(first))
		}
		path = append(path, CubicTo(firstControl, secondControl, second))
	}
	path = append(path, Close())

	path = path.Translate(p.OriginX, p.OriginY)
	if err := path.Validate(); err != nil {
		return nil, fmt.Errorf("rounded polygon: %w", err)
	}
	return path, nil
}
