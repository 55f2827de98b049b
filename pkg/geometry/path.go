package geometry

import (
	"fmt"
	"strconv"
	"strings"
)

// Verb identifies the kind of a path segment.
type Verb uint8

const (
	VerbMoveTo  Verb = iota // start a subpath at Points[0]
	VerbLineTo              // straight line to Points[0]
	VerbCubicTo             // cubic Bezier through Points[0], Points[1] to Points[2]
	VerbClose               // close the subpath
)

func (v Verb) String() string {
	switch v {
	case VerbMoveTo:
		return "MoveTo"
	case VerbLineTo:
		return "LineTo"
	case VerbCubicTo:
		return "CubicTo"
	case VerbClose:
		return "Close"
	default:
		return fmt.Sprintf("Verb(%d)", int(v))
	}
}

// command returns the SVG path command letter for the verb.
func (v Verb) command() string {
	switch v {
	case VerbMoveTo:
		return "M"
	case VerbLineTo:
		return "L"
	case VerbCubicTo:
		return "C"
	case VerbClose:
		return "Z"
	default:
		return "?"
	}
}

// pointCount returns how many points a segment of this verb carries.
func (v Verb) pointCount() int {
	switch v {
	case VerbMoveTo, VerbLineTo:
		return 1
	case VerbCubicTo:
		return 3
	default:
		return 0
	}
}

// Segment is a single path command. Only the first Verb.pointCount() entries
// of Points are meaningful.
type Segment struct {
	Verb   Verb     `json:"verb"`
	Points [3]Point `json:"points"`
}

// MoveTo returns a move segment.
func MoveTo(p Point) Segment {
	return Segment{Verb: VerbMoveTo, Points: [3]Point{p}}
}

// LineTo returns a straight line segment.
func LineTo(p Point) Segment {
	return Segment{Verb: VerbLineTo, Points: [3]Point{p}}
}

// CubicTo returns a cubic Bezier segment.
func CubicTo(c1, c2, end Point) Segment {
	return Segment{Verb: VerbCubicTo, Points: [3]Point{c1, c2, end}}
}

// Close returns a close-path segment.
func Close() Segment {
	return Segment{Verb: VerbClose}
}

// End returns the current point after the segment. Close has no endpoint of
// its own; ok is false for it.
func (s Segment) End() (p Point, ok bool) {
	n := s.Verb.pointCount()
	if n == 0 {
		return Point{}, false
	}
	return s.Points[n-1], true
}

// Path is an ordered sequence of segments forming one closed outline.
type Path []Segment

// Counts returns the number of segments per verb.
func (p Path) Counts() map[Verb]int {
	counts := make(map[Verb]int, 4)
	for _, s := range p {
		counts[s.Verb]++
	}
	return counts
}

// Start returns the point of the leading MoveTo.
func (p Path) Start() (Point, bool) {
	if len(p) == 0 || p[0].Verb != VerbMoveTo {
		return Point{}, false
	}
	return p[0].Points[0], true
}

// Curves returns the cubic segments in order.
func (p Path) Curves() []Segment {
	var curves []Segment
	for _, s := range p {
		if s.Verb == VerbCubicTo {
			curves = append(curves, s)
		}
	}
	return curves
}

// Translate returns a copy of the path shifted by (dx, dy).
func (p Path) Translate(dx, dy float64) Path {
	offset := Point{X: dx, Y: dy}
	out := make(Path, len(p))
	for i, s := range p {
		out[i] = s
		for j := 0; j < s.Verb.pointCount(); j++ {
			out[i].Points[j] = s.Points[j].Add(offset)
		}
	}
	return out
}

// Validate checks the structural invariant of an outline: one leading
// MoveTo, line and curve segments, one trailing Close, finite coordinates.
func (p Path) Validate() error {
	if len(p) < 2 {
		return fmt.Errorf("path has %d segments, need at least a move and a close", len(p))
	}
	if p[0].Verb != VerbMoveTo {
		return fmt.Errorf("path must start with MoveTo, got %s", p[0].Verb)
	}
	if last := p[len(p)-1]; last.Verb != VerbClose {
		return fmt.Errorf("path must end with Close, got %s", last.Verb)
	}
	for i, s := range p[1 : len(p)-1] {
		if s.Verb != VerbLineTo && s.Verb != VerbCubicTo {
			return fmt.Errorf("segment %d: unexpected %s inside path", i+1, s.Verb)
		}
	}
	for i, s := range p {
		for j := 0; j < s.Verb.pointCount(); j++ {
			if !s.Points[j].IsFinite() {
				return fmt.Errorf("segment %d: %w: non-finite coordinate %v", i, ErrInvalidGeometry, s.Points[j])
			}
		}
	}
	return nil
}

// String renders the path as SVG path data, e.g. "M 1 2 C 3 4 5 6 7 8 Z".
func (p Path) String() string {
	var b strings.Builder
	for i, s := range p {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s.Verb.command())
		for j := 0; j < s.Verb.pointCount(); j++ {
			b.WriteByte(' ')
			b.WriteString(formatCoord(s.Points[j].X))
			b.WriteByte(' ')
			b.WriteString(formatCoord(s.Points[j].Y))
		}
	}
	return b.String()
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
