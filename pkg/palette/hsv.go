package palette

import (
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// HSV is a hue/saturation/value triple. H is a fraction of a full turn in
// [0,1); S and V are in [0,1].
type HSV struct {
	H, S, V float64
}

// RGBToHSV converts a color to HSV with a fractional hue.
func RGBToHSV(c Color) HSV {
	h, s, v := c.colorful().Hsv()
	return HSV{H: WrapHue(h / 360), S: s, V: v}
}

// HSVToRGB converts an HSV triple back to RGB. The hue is wrapped into
// [0,1) first.
func HSVToRGB(hsv HSV) Color {
	deg := WrapHue(hsv.H) * 360
	if deg >= 360 {
		deg = 0
	}
	return fromColorful(colorful.Hsv(deg, hsv.S, hsv.V))
}

// WrapHue maps any hue onto [0,1), wrapping negative values around the top.
func WrapHue(h float64) float64 {
	h = math.Mod(h, 1)
	if h < 0 {
		h++
	}
	if h >= 1 {
		h = 0
	}
	return h
}
