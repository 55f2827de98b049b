// Package compose turns icon specs into finished SVG documents: it resolves
// defaults, validates, derives the palette, traces the rounded outline and
// fills the static badge template.
package compose

import (
	"bytes"
	"fmt"
	"math"

	"github.com/chazu/hexcede/pkg/geometry"
	"github.com/chazu/hexcede/pkg/icon"
	"github.com/chazu/hexcede/pkg/kernel"
	"github.com/chazu/hexcede/pkg/palette"
)

// ContentType is the media type of every Document.
const ContentType = "image/svg+xml"

// outlineTolerance is how far, in canvas units, the traced outline may
// stray from the kernel model before a warning is attached.
const outlineTolerance = 1e-6

// Document is one rendered icon.
type Document struct {
	Name     string   `json:"name"`
	SVG      []byte   `json:"-"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Warnings []string `json:"warnings,omitempty"`
}

// Option configures Compose.
type Option func(*options)

type options struct {
	kernel kernel.Kernel
}

// WithKernel cross-checks every outline against a shape built by k and
// warns when it leaves the canvas.
func WithKernel(k kernel.Kernel) Option {
	return func(o *options) { o.kernel = k }
}

// Compose renders one icon. Specs failing Tier 1 validation return the
// validation error and no document.
func Compose(spec icon.Spec, opts ...Option) (*Document, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	r := icon.Resolve(spec)
	result := icon.ValidateAll(r)
	if err := result.Err(); err != nil {
		return nil, err
	}

	pal := palette.Derive(r.Primary)
	params := r.PolygonParams()
	path, err := geometry.RoundedPolygon(params)
	if err != nil {
		return nil, fmt.Errorf("compose %s: %w", displayName(r.Name), err)
	}

	width, height := r.CanvasSize()
	doc := &Document{Name: r.Name, Width: width, Height: height}
	for _, w := range result.Warnings {
		doc.Warnings = append(doc.Warnings, w.Error())
	}

	if o.kernel != nil {
		warnings, err := checkOutline(o.kernel, params, path, width, height)
		if err != nil {
			return nil, fmt.Errorf("compose %s: kernel check: %w", displayName(r.Name), err)
		}
		doc.Warnings = append(doc.Warnings, warnings...)
	}

	var buf bytes.Buffer
	err = writeSVG(&buf, templateData{
		Width:         width,
		Height:        height,
		Path:          path,
		StrokeWidth:   r.StrokeWidth,
		Palette:       pal,
		Text:          r.Text,
		TextSize:      r.TextSize,
		TextAnchor:    r.TextAnchor(),
		LetterSpacing: r.LetterSpacing(),
	})
	if err != nil {
		return nil, fmt.Errorf("compose %s: %w", displayName(r.Name), err)
	}
	doc.SVG = buf.Bytes()
	return doc, nil
}

// ComposeSet renders every icon of a set in order. The first failure aborts
// the walk.
func ComposeSet(set *icon.Set, opts ...Option) ([]*Document, error) {
	if set == nil {
		return nil, nil
	}
	docs := make([]*Document, 0, set.Len())
	for _, spec := range set.Specs() {
		doc, err := Compose(spec, opts...)
		if err != nil {
			return nil, fmt.Errorf("compose set: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// checkOutline builds the outline with the kernel, confirms every on-curve
// point of the path lies on it and reports whether it fits the canvas.
func checkOutline(k kernel.Kernel, p geometry.PolygonParams, path geometry.Path, width, height float64) ([]string, error) {
	shape, err := kernel.RoundedPolygon(k, p)
	if err != nil {
		return nil, err
	}

	var warnings []string
	worst := 0.0
	for _, seg := range path {
		if pt, ok := seg.End(); ok {
			worst = math.Max(worst, math.Abs(shape.Distance(pt)))
		}
	}
	if worst > outlineTolerance {
		warnings = append(warnings, fmt.Sprintf("outline deviates from the kernel model by %g", worst))
	}

	canvas := kernel.Bounds{Max: geometry.Point{X: width, Y: height}}
	if b := shape.Bounds(); !b.Within(canvas, outlineTolerance) {
		warnings = append(warnings, fmt.Sprintf(
			"outline %gx%g at (%g, %g) leaves the %gx%g canvas",
			b.Width(), b.Height(), b.Min.X, b.Min.Y, width, height))
	}
	return warnings, nil
}

func displayName(name string) string {
	if name == "" {
		return "icon"
	}
	return fmt.Sprintf("icon %q", name)
}
