package palette

import "math"

// Hue rotations and fixed saturation/value levels of the derived colors.
const (
	secondaryHueShift = 0.03333
	secondaryDarken   = 0.16

	lightingHueShift   = 0.02777
	lightingSaturation = 0.21
	lightingValue      = 0.46

	backgroundValue = 0.15
)

// backgroundStops are the (hue shift, saturation) pairs of the three
// background gradient stops.
var backgroundStops = [3]struct{ hueShift, saturation float64 }{
	{-0.11666, 0.13},
	{-0.05000, 0.05},
	{-0.08333, 0.14},
}

// Default is the primary color used when none is given.
var Default = MustRGB255(177, 255, 0)

// BackgroundEnd is the fixed last stop of the background gradient.
var BackgroundEnd = MustRGB255(26, 26, 26)

// Palette is the full color scheme of an icon.
type Palette struct {
	Primary      Color    `json:"primary"`
	Secondary    Color    `json:"secondary"`
	LightingTint string   `json:"lighting_tint"` // "#rrggbb"
	Background   [3]Color `json:"background"`
}

// Derive computes the palette for a primary color. It is a pure function:
// equal inputs give equal palettes.
func Derive(primary Color) Palette {
	hsv := RGBToHSV(primary)

	p := Palette{
		Primary: primary,
		Secondary: HSVToRGB(HSV{
			H: hsv.H + secondaryHueShift,
			S: hsv.S,
			V: math.Max(hsv.V-secondaryDarken, 0),
		}),
		LightingTint: HSVToRGB(HSV{
			H: hsv.H + lightingHueShift,
			S: lightingSaturation,
			V: lightingValue,
		}).Hex(),
	}
	for i, stop := range backgroundStops {
		p.Background[i] = HSVToRGB(HSV{H: hsv.H + stop.hueShift, S: stop.saturation, V: backgroundValue})
	}
	return p
}

// StrokeGradient returns the two stops of the outline and label gradient.
func (p Palette) StrokeGradient() [2]Color {
	return [2]Color{p.Primary, p.Secondary}
}
