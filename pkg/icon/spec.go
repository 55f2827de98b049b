// Package icon defines the input configuration of a hexcede icon, resolves
// its side-count dependent defaults and validates it before any geometry is
// computed.
package icon

import (
	"github.com/chazu/hexcede/pkg/geometry"
	"github.com/chazu/hexcede/pkg/palette"
)

// Defaults used by NewSpec.
const (
	DefaultSides       = 6
	DefaultRadius      = 147.0
	DefaultStrokeWidth = 9.97701
	DefaultText        = "HC"

	// DefaultCornerRatio is the corner radius as a fraction of the radius
	// when no corner radius is given.
	DefaultCornerRatio = 0.2
)

// Spec is the caller-facing configuration of one icon. Pointer fields and a
// zero CornerRadius mean "use the default for this side count".
type Spec struct {
	Name         string          `json:"name,omitempty"`
	Primary      palette.Color   `json:"primary"`
	SideCount    int             `json:"side_count"`
	Radius       float64         `json:"radius"`
	CornerRadius float64         `json:"corner_radius,omitempty"`
	StrokeWidth  float64         `json:"stroke_width"`
	Text         string          `json:"text"`
	TextSize     *int            `json:"text_size,omitempty"`
	TextPosition *geometry.Point `json:"text_position,omitempty"`
	Rotation     *float64        `json:"rotation,omitempty"` // degrees
	Offset       geometry.Point  `json:"offset"`              // leading canvas margin
}

// NewSpec returns a Spec with the stock hexagon badge settings.
func NewSpec() Spec {
	return Spec{
		Primary:     palette.Default,
		SideCount:   DefaultSides,
		Radius:      DefaultRadius,
		StrokeWidth: DefaultStrokeWidth,
		Text:        DefaultText,
	}
}

// Resolved is a Spec with every default filled in.
type Resolved struct {
	Name         string
	Primary      palette.Color
	SideCount    int
	Radius       float64
	CornerRadius float64
	StrokeWidth  float64
	Text         string
	TextSize     int
	TextPosition geometry.Point
	Rotation     float64
	Offset       geometry.Point
}

// layoutDefaults are the label and rotation defaults for a side count.
type layoutDefaults struct {
	textSize     int
	textPosition geometry.Point
	rotation     float64
}

// defaultsFor returns the layout defaults. Triangles get their own tuning;
// every other polygon shares one, with a rotation that puts a flat edge at
// the bottom.
func defaultsFor(sides int) layoutDefaults {
	if sides == 3 {
		return layoutDefaults{
			textSize:     115,
			textPosition: geometry.Point{X: 148, Y: 132},
			rotation:     164,
		}
	}
	turn := -90.0
	if sides%2 != 0 {
		turn = 90
	}
	rotation := 3.0
	if sides != 0 {
		rotation += turn / float64(sides)
	}
	return layoutDefaults{
		textSize:     136,
		textPosition: geometry.Point{X: 154, Y: 128},
		rotation:     rotation,
	}
}

// Resolve fills in every omitted field. It does not validate.
func Resolve(s Spec) Resolved {
	d := defaultsFor(s.SideCount)
	r := Resolved{
		Name:         s.Name,
		Primary:      s.Primary,
		SideCount:    s.SideCount,
		Radius:       s.Radius,
		CornerRadius: s.CornerRadius,
		StrokeWidth:  s.StrokeWidth,
		Text:         s.Text,
		TextSize:     d.textSize,
		TextPosition: d.textPosition,
		Rotation:     d.rotation,
		Offset:       s.Offset,
	}
	if r.CornerRadius == 0 {
		r.CornerRadius = r.Radius * DefaultCornerRatio
	}
	if s.TextSize != nil {
		r.TextSize = *s.TextSize
	}
	if s.TextPosition != nil {
		r.TextPosition = *s.TextPosition
	}
	if s.Rotation != nil {
		r.Rotation = *s.Rotation
	}
	return r
}

// PolygonParams returns the outline parameters of the icon. The stroke is
// centered on the path, so the path radius shrinks by half the stroke width
// to keep the outer edge of the stroke at Radius.
func (r Resolved) PolygonParams() geometry.PolygonParams {
	return geometry.PolygonParams{
		SideCount:       r.SideCount,
		Radius:          r.Radius - r.StrokeWidth/2,
		CornerRadius:    r.CornerRadius,
		OriginX:         r.Radius + r.Offset.X,
		OriginY:         r.Radius + r.Offset.Y,
		RotationDegrees: r.Rotation,
		AdjustRadius:    true,
	}
}

// CanvasSize returns the outer width and height of the icon document.
func (r Resolved) CanvasSize() (width, height float64) {
	return r.Radius*2 + r.Offset.X, r.Radius*2 + r.Offset.Y
}

// TextAnchor returns where the label's centered baseline sits.
func (r Resolved) TextAnchor() geometry.Point {
	return geometry.Point{
		X: r.TextPosition.X + r.Offset.X,
		Y: r.TextPosition.Y + float64(r.TextSize)/2 + r.Offset.Y,
	}
}

// LetterSpacing returns the label's letter spacing.
func (r Resolved) LetterSpacing() float64 {
	return float64(r.TextSize) / 16
}

// IntPtr and FloatPtr help build optional Spec fields.
func IntPtr(v int) *int { return &v }

// FloatPtr returns a pointer to v.
func FloatPtr(v float64) *float64 { return &v }
