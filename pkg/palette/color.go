// Package palette derives the color scheme of a hexcede icon from a single
// primary color by rotating it in HSV space.
package palette

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ErrInvalidColor is returned for color inputs outside the representable
// range or in an unknown format.
var ErrInvalidColor = errors.New("invalid color")

// Color is an sRGB color with channels in [0,1].
type Color struct {
	R, G, B float64
}

// FromRGB255 builds a Color from 0-255 channel values.
func FromRGB255(r, g, b int) (Color, error) {
	for _, v := range []int{r, g, b} {
		if v < 0 || v > 255 {
			return Color{}, fmt.Errorf("%w: channel %d outside 0-255", ErrInvalidColor, v)
		}
	}
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}, nil
}

// MustRGB255 is like FromRGB255 but panics on out-of-range channels. It is
// meant for constants.
func MustRGB255(r, g, b int) Color {
	c, err := FromRGB255(r, g, b)
	if err != nil {
		panic(err)
	}
	return c
}

// ParseHex parses "#rgb" or "#rrggbb". The leading '#' is optional.
func ParseHex(s string) (Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	if len(s) != 4 && len(s) != 7 {
		return Color{}, fmt.Errorf("%w: %q is not a #rgb or #rrggbb hex color", ErrInvalidColor, s)
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q: %v", ErrInvalidColor, s, err)
	}
	// Rebuild from the bytes so truncating serializers give them back.
	r, g, b := c.RGB255()
	return FromRGB255(int(r), int(g), int(b))
}

// Validate reports whether every channel is a finite value in [0,1].
func (c Color) Validate() error {
	for _, v := range []float64{c.R, c.G, c.B} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%w: channel %v outside [0,1]", ErrInvalidColor, v)
		}
	}
	return nil
}

// RGB255 returns the channels as 0-255 integers. Channels are clamped to
// [0,1] and truncated, never rounded up.
func (c Color) RGB255() (r, g, b int) {
	cl := c.colorful().Clamped()
	return int(cl.R * 255), int(cl.G * 255), int(cl.B * 255)
}

// Hex returns the color as "#rrggbb".
func (c Color) Hex() string {
	r, g, b := c.RGB255()
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

// CSS returns the color as "rgb(r, g, b)".
func (c Color) CSS() string {
	r, g, b := c.RGB255()
	return fmt.Sprintf("rgb(%d, %d, %d)", r, g, b)
}

func (c Color) String() string {
	return c.Hex()
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

func fromColorful(c colorful.Color) Color {
	return Color{R: c.R, G: c.G, B: c.B}
}
