package server

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/chazu/hexcede/pkg/geometry"
	"github.com/chazu/hexcede/pkg/icon"
	"github.com/chazu/hexcede/pkg/palette"
)

// errBadQuery marks query parameters that could not be parsed.
var errBadQuery = errors.New("bad query parameter")

// specFromQuery builds an icon spec from /icon.svg query parameters. Absent
// parameters keep the stock settings; padding defaults to the server's.
func specFromQuery(q url.Values, padding float64) (icon.Spec, error) {
	spec := icon.NewSpec()
	spec.Offset = geometry.Point{X: padding, Y: padding}

	var errs []error
	float := func(key string, dst *float64) bool {
		v := q.Get(key)
		if v == "" {
			return false
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q is not a number", errBadQuery, key, v))
			return false
		}
		*dst = f
		return true
	}
	integer := func(key string, dst *int) bool {
		v := q.Get(key)
		if v == "" {
			return false
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: %s=%q is not an integer", errBadQuery, key, v))
			return false
		}
		*dst = n
		return true
	}

	if v := q.Get("color"); v != "" {
		c, err := palette.ParseHex(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("%w: color: %w", errBadQuery, err))
		}
		spec.Primary = c
	}
	if q.Has("text") {
		spec.Text = q.Get("text")
	}
	integer("sides", &spec.SideCount)
	float("radius", &spec.Radius)
	float("corner_radius", &spec.CornerRadius)
	float("stroke_width", &spec.StrokeWidth)

	var size int
	if integer("text_size", &size) {
		spec.TextSize = icon.IntPtr(size)
	}
	var rotation float64
	if float("rotation", &rotation) {
		spec.Rotation = icon.FloatPtr(rotation)
	}
	var pad float64
	if float("padding", &pad) {
		spec.Offset = geometry.Point{X: pad, Y: pad}
	}

	// A lone text_x or text_y keeps the other coordinate's default.
	pos := icon.Resolve(spec).TextPosition
	hasX := float("text_x", &pos.X)
	hasY := float("text_y", &pos.Y)
	if hasX || hasY {
		spec.TextPosition = &pos
	}

	if err := errors.Join(errs...); err != nil {
		return icon.Spec{}, err
	}
	return spec, nil
}
