package compose

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	svg "github.com/ajstarks/svgo"
	"github.com/samber/lo"

	"github.com/chazu/hexcede/pkg/geometry"
	"github.com/chazu/hexcede/pkg/palette"
)

// Fixed template element ids.
const (
	lightFilterID  = "point-light-filter-0"
	shapeShadowID  = "drop-shadow-filter-1"
	labelShadowID  = "filter-1"
	backgroundID   = "gradient-0"
	backgroundUse  = "gradient-0-0"
	strokeID       = "gradient-4"
	strokeUse      = "gradient-4-0"
	labelUse       = "gradient-4-2"
	labelUseOffset = "gradient-4-1"
	groupID        = "object-0"
)

// FontFamily is the label typeface the template asks for.
const FontFamily = "Virtual Rave"

// backgroundOffsets are the stop offsets of the background gradient. The
// last stop is always palette.BackgroundEnd.
var backgroundOffsets = [4]string{"0", "0.329", "0.668", "1"}

// strokeOffsets are the stop offsets of the outline/label gradient.
var strokeOffsets = [2]string{"0.206", "1"}

// userGradient is a linearGradient in user space that inherits its stops.
type userGradient struct {
	id             string
	x1, y1, x2, y2 string
	transform      string
	href           string
}

// The user-space gradients are tuned to the template's 500x500 design box
// and do not scale with the icon radius.
var (
	backgroundGradient = userGradient{
		id: backgroundUse, x1: "254.441", y1: "95.568", x2: "254.441", y2: "381.342",
		href: backgroundID,
	}
	strokeGradient = userGradient{
		id: strokeUse, x1: "254.441", y1: "129.484", x2: "254.441", y2: "347.426",
		transform: "matrix(0.856583, -0.947811, 1.205319, 1.089302, -251.460723, 228.820822)",
		href:      strokeID,
	}
	labelGradient = userGradient{
		id: labelUse, x1: "250", y1: "211.367", x2: "250", y2: "288.632",
		transform: "matrix(2.117156, -1.023286, 0.783822, 1.621715, -440.789734, 135.68454)",
		href:      strokeID,
	}
	labelGradientOffset = userGradient{
		id: labelUseOffset, x1: "250", y1: "211.367", x2: "250", y2: "288.632",
		transform: "matrix(2.117156, -1.023286, 0.783822, 1.621715, -441.128571, 135.533746)",
		href:      strokeID,
	}
)

// stop is one gradient stop.
type stop struct {
	offset string
	color  string
}

// templateData is everything the template needs from one icon.
type templateData struct {
	Width, Height float64
	Path          geometry.Path
	StrokeWidth   float64
	Palette       palette.Palette
	Text          string
	TextSize      int
	TextAnchor    geometry.Point
	LetterSpacing float64
}

// errWriter remembers the first write error so the svgo calls, which do not
// report errors, can run unchecked.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	ew.err = err
	return n, err
}

// num formats a float with the fewest digits that round-trip.
func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func attr(name, value string) string {
	return fmt.Sprintf(`%s="%s"`, name, value)
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

// writeSVG fills the icon template.
func writeSVG(w io.Writer, d templateData) error {
	ew := &errWriter{w: w}
	canvas := svg.New(ew)

	canvas.Startraw(
		attr("width", num(d.Width)+"px"),
		attr("height", num(d.Height)+"px"),
		`preserveAspectRatio="none"`,
	)

	canvas.Def()
	writeLightFilter(canvas, d.Palette.LightingTint)
	writeUserGradient(canvas, backgroundGradient)
	writeStops(canvas, backgroundID, backgroundStops(d.Palette))
	writeUserGradient(canvas, strokeGradient)
	writeStops(canvas, strokeID, strokeStops(d.Palette))
	writeShadowFilter(canvas, shapeShadowID)
	writeUserGradient(canvas, labelGradient)
	writeShadowFilter(canvas, labelShadowID)
	writeUserGradient(canvas, labelGradientOffset)
	canvas.DefEnd()

	canvas.Group(
		"filter: url('#"+lightFilterID+"');",
		attr("id", groupID),
	)
	canvas.Rect(0, 0, ceil(d.Width), ceil(d.Height),
		"filter: none; stroke-width: 6px; fill: rgb(64, 64, 64); visibility: hidden; shape-rendering: geometricprecision;")
	canvas.Path(d.Path.String(), fmt.Sprintf(
		"paint-order: fill; fill-rule: nonzero; stroke: url('#%s'); filter: url('#%s'); stroke-width: %spx; fill: url('#%s'); shape-rendering: geometricprecision;",
		strokeUse, shapeShadowID, num(d.StrokeWidth), backgroundUse))
	writeLabel(canvas, d)
	canvas.Gend()
	canvas.End()

	if ew.err != nil {
		return fmt.Errorf("write svg: %w", ew.err)
	}
	return nil
}

func ceil(v float64) int {
	i := int(v)
	if float64(i) < v {
		i++
	}
	return i
}

// writeLightFilter emits the specular plus diffuse point-light filter that
// gives the badge its sheen.
func writeLightFilter(canvas *svg.SVG, tint string) {
	canvas.Filter(lightFilterID,
		`primitiveUnits="objectBoundingBox" color-interpolation-filters="sRGB" x="-50%" y="-50%" width="200%" height="200%"`)
	canvas.FeSpecularLighting(svg.Filterspec{Result: "specular-lighting"}, 1, 1.81, 13, tint)
	canvas.FePointLight(0.5, 0.5, 0.5)
	canvas.FeSpecEnd()
	canvas.FeDiffuseLighting(svg.Filterspec{Result: "diffuse-lighting"}, 1, 0.2, attr("lighting-color", tint))
	fmt.Fprintln(canvas.Writer)
	canvas.FePointLight(0.5, 0.5, 0.5)
	canvas.FeDiffEnd()
	fmt.Fprintln(canvas.Writer, `<feMerge result="lighting">`)
	fmt.Fprintln(canvas.Writer, `<feMergeNode in="diffuse-lighting"/>`)
	fmt.Fprintln(canvas.Writer, `<feMergeNode in="specular-lighting"/>`)
	fmt.Fprintln(canvas.Writer, `</feMerge>`)
	// svgo only takes integer k coefficients.
	fmt.Fprintln(canvas.Writer,
		`<feComposite in="SourceGraphic" in2="lighting" operator="arithmetic" k1="1" k2="0.41" k3="0" k4="0"/>`)
	canvas.Fend()
}

// writeShadowFilter emits a soft drop shadow offset to the lower right.
func writeShadowFilter(canvas *svg.SVG, id string) {
	canvas.Filter(id, `color-interpolation-filters="sRGB" x="-50%" y="-50%" width="200%" height="200%"`)
	canvas.FeGaussianBlur(svg.Filterspec{In: "SourceAlpha"}, 1, 1)
	canvas.FeOffset(svg.Filterspec{}, 3, 3)
	fmt.Fprintln(canvas.Writer, `<feComponentTransfer result="offsetblur">`)
	canvas.FeFuncLinear("A", 0.58, 0)
	canvas.FeCompEnd()
	canvas.FeFlood(svg.Filterspec{}, "rgb(0, 0, 0)", 0.3)
	canvas.FeComposite(svg.Filterspec{In2: "offsetblur"}, "in", 0, 0, 0, 0)
	fmt.Fprintln(canvas.Writer, `<feMerge>`)
	fmt.Fprintln(canvas.Writer, `<feMergeNode/>`)
	fmt.Fprintln(canvas.Writer, `<feMergeNode in="SourceGraphic"/>`)
	fmt.Fprintln(canvas.Writer, `</feMerge>`)
	canvas.Fend()
}

// writeUserGradient emits a userSpaceOnUse gradient linked to a stop list.
// svgo's LinearGradient only takes percentage coordinates.
func writeUserGradient(canvas *svg.SVG, g userGradient) {
	attrs := []string{
		attr("id", g.id),
		`gradientUnits="userSpaceOnUse"`,
		attr("x1", g.x1), attr("y1", g.y1), attr("x2", g.x2), attr("y2", g.y2),
	}
	if g.transform != "" {
		attrs = append(attrs, attr("gradientTransform", g.transform))
	}
	attrs = append(attrs, attr("xlink:href", "#"+g.href))
	fmt.Fprintf(canvas.Writer, "<linearGradient %s/>\n", strings.Join(attrs, " "))
}

func writeStops(canvas *svg.SVG, id string, stops []stop) {
	fmt.Fprintf(canvas.Writer, "<linearGradient %s>\n", attr("id", id))
	for _, s := range stops {
		fmt.Fprintf(canvas.Writer, "<stop offset=\"%s\" style=\"stop-color: %s;\"/>\n", s.offset, s.color)
	}
	fmt.Fprintln(canvas.Writer, "</linearGradient>")
}

// backgroundStops pairs the three derived background colors and the fixed
// end color with their offsets.
func backgroundStops(p palette.Palette) []stop {
	colors := append(p.Background[:], palette.BackgroundEnd)
	return lo.Map(colors, func(c palette.Color, i int) stop {
		return stop{offset: backgroundOffsets[i], color: c.CSS()}
	})
}

func strokeStops(p palette.Palette) []stop {
	g := p.StrokeGradient()
	return lo.Map(g[:], func(c palette.Color, i int) stop {
		return stop{offset: strokeOffsets[i], color: c.CSS()}
	})
}

// writeLabel emits the centered text label. svgo's Text only takes integer
// coordinates.
func writeLabel(canvas *svg.SVG, d templateData) {
	style := fmt.Sprintf(
		"font-family: &quot;%s&quot;; font-size: %dpx; font-weight: 600; stroke-linejoin: round; stroke-width: 7px; text-anchor: middle; white-space: pre; fill: url(&quot;#%s&quot;); filter: url(&quot;#%s&quot;);",
		FontFamily, d.TextSize, labelUse, labelShadowID)
	fmt.Fprintf(canvas.Writer, "<text %s %s %s %s>%s</text>\n",
		attr("letter-spacing", num(d.LetterSpacing)),
		attr("style", style),
		attr("x", num(d.TextAnchor.X)),
		attr("y", num(d.TextAnchor.Y)),
		escape(d.Text))
}
