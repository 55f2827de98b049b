package icon

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/chazu/hexcede/pkg/geometry"
	"github.com/chazu/hexcede/pkg/palette"
)

// ErrInvalidText is returned for labels that cannot be written to a
// document.
var ErrInvalidText = errors.New("invalid text")

// ValidationSeverity indicates whether a validation finding blocks
// composition or is merely informational.
type ValidationSeverity int

const (
	SeverityError   ValidationSeverity = iota // blocks composition
	SeverityWarning                           // informational
)

func (s ValidationSeverity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return fmt.Sprintf("ValidationSeverity(%d)", int(s))
	}
}

// MaxSides is the largest side count an icon may have.
const MaxSides = 64

// MaxLabelRunes is the longest label that fits the default text box. Longer
// labels get a Tier 2 warning.
const MaxLabelRunes = 3

// ValidationError describes a single validation finding. Err carries the
// sentinel of the failing domain, so errors.Is works on findings.
type ValidationError struct {
	Icon     string             // icon name (empty for anonymous icons)
	Field    string             // which input field has the problem
	Message  string             // human-readable description
	Severity ValidationSeverity // error or warning
	Err      error
}

func (e ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] ", e.Severity)
	if e.Icon != "" {
		fmt.Fprintf(&b, "icon %q: ", e.Icon)
	}
	fmt.Fprintf(&b, "%s: %s", e.Field, e.Message)
	return b.String()
}

func (e ValidationError) Unwrap() error { return e.Err }

// ValidationErrors joins several findings into one error.
type ValidationErrors []ValidationError

func (es ValidationErrors) Error() string {
	msgs := make([]string, len(es))
	for i, e := range es {
		msgs[i] = e.Error()
	}
	return strings.Join(msgs, "; ")
}

// Unwrap exposes every finding to errors.Is and errors.As.
func (es ValidationErrors) Unwrap() []error {
	errs := make([]error, len(es))
	for i, e := range es {
		errs[i] = e
	}
	return errs
}

// ValidationResult bundles errors (blocking) and warnings (advisory) from
// both validation tiers.
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationError
}

// Err returns the blocking findings as a single error, or nil.
func (r ValidationResult) Err() error {
	if len(r.Errors) == 0 {
		return nil
	}
	return ValidationErrors(r.Errors)
}

// IsValidation reports whether err came from validation.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

// Validate runs the Tier 1 checks on a resolved icon and returns every
// blocking finding as one error, or nil when the icon can be composed.
func Validate(r Resolved) error {
	return ValidationErrors(validateFields(r)).orNil()
}

// ValidateAll runs both tiers. Tier 1 covers every field the geometry and
// palette stages consume; Tier 2 flags inputs that compose fine but are
// likely to look wrong.
func ValidateAll(r Resolved) ValidationResult {
	return ValidationResult{
		Errors:   validateFields(r),
		Warnings: validateLayout(r),
	}
}

// ValidateSet runs ValidateAll on every icon in the set.
func ValidateSet(s *Set) ValidationResult {
	var result ValidationResult
	for _, spec := range s.Specs() {
		r := ValidateAll(Resolve(spec))
		result.Errors = append(result.Errors, r.Errors...)
		result.Warnings = append(result.Warnings, r.Warnings...)
	}
	return result
}

func (es ValidationErrors) orNil() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// validateFields is Tier 1. Checks that depend on an earlier field are
// skipped once that field has failed, so a single mistake yields a single
// finding.
func validateFields(r Resolved) []ValidationError {
	var errs []ValidationError
	fail := func(field string, sentinel error, format string, args ...any) {
		errs = append(errs, ValidationError{
			Icon:     r.Name,
			Field:    field,
			Message:  fmt.Sprintf(format, args...),
			Severity: SeverityError,
			Err:      sentinel,
		})
	}

	if err := r.Primary.Validate(); err != nil {
		fail("color", palette.ErrInvalidColor, "%v", err)
	}

	sidesOK := false
	switch {
	case r.SideCount < geometry.MinSides:
		fail("sides", geometry.ErrInvalidSideCount, "side count %d is below %d", r.SideCount, geometry.MinSides)
	case r.SideCount > MaxSides:
		fail("sides", geometry.ErrInvalidSideCount, "side count %d is above %d", r.SideCount, MaxSides)
	default:
		sidesOK = true
	}

	radiusOK := finite(r.Radius) && r.Radius > 0
	if !radiusOK {
		fail("radius", geometry.ErrInvalidGeometry, "radius %v must be positive and finite", r.Radius)
	}

	strokeOK := finite(r.StrokeWidth) && r.StrokeWidth >= 0
	switch {
	case !strokeOK:
		fail("stroke_width", geometry.ErrInvalidGeometry, "stroke width %v must be non-negative and finite", r.StrokeWidth)
	case radiusOK && r.StrokeWidth >= 2*r.Radius:
		strokeOK = false
		fail("stroke_width", geometry.ErrInvalidGeometry, "stroke width %v leaves no room inside radius %v", r.StrokeWidth, r.Radius)
	}

	cornerOK := finite(r.CornerRadius) && r.CornerRadius > 0
	if !cornerOK {
		fail("corner_radius", geometry.ErrInvalidGeometry, "corner radius %v must be positive and finite", r.CornerRadius)
	}

	if sidesOK && radiusOK && strokeOK && cornerOK {
		p := r.PolygonParams()
		if limit := geometry.MaxCornerRadius(p.SideCount, p.Radius, p.AdjustRadius); r.CornerRadius >= limit {
			fail("corner_radius", geometry.ErrInvalidGeometry,
				"corner radius %v must be below %v for a %d-sided outline of radius %v",
				r.CornerRadius, limit, p.SideCount, p.Radius)
		}
	}

	if !finite(r.Rotation) {
		fail("rotation", geometry.ErrInvalidGeometry, "rotation %v must be finite", r.Rotation)
	}
	if !r.Offset.IsFinite() || r.Offset.X < 0 || r.Offset.Y < 0 {
		fail("offset", geometry.ErrInvalidGeometry, "offset %v must be finite and non-negative", r.Offset)
	}
	if !r.TextPosition.IsFinite() {
		fail("text_position", geometry.ErrInvalidGeometry, "text position %v must be finite", r.TextPosition)
	}
	if r.TextSize <= 0 {
		fail("text_size", geometry.ErrInvalidGeometry, "text size %d must be positive", r.TextSize)
	}
	if !utf8.ValidString(r.Text) {
		fail("text", ErrInvalidText, "text is not valid UTF-8")
	}
	return errs
}

// validateLayout is Tier 2.
func validateLayout(r Resolved) []ValidationError {
	var warns []ValidationError
	warn := func(field, format string, args ...any) {
		warns = append(warns, ValidationError{
			Icon:     r.Name,
			Field:    field,
			Message:  fmt.Sprintf(format, args...),
			Severity: SeverityWarning,
		})
	}

	if strings.TrimSpace(r.Text) == "" {
		warn("text", "label is empty")
	} else if n := utf8.RuneCountInString(r.Text); n > MaxLabelRunes {
		warn("text", "label has %d characters; more than %d may overflow the outline", n, MaxLabelRunes)
	}
	if r.StrokeWidth == 0 {
		warn("stroke_width", "outline has no stroke")
	}
	if w, h := r.CanvasSize(); r.TextPosition.X < 0 || r.TextPosition.Y < 0 ||
		r.TextPosition.X+r.Offset.X > w || r.TextPosition.Y+r.Offset.Y > h {
		warn("text_position", "label anchor %v lies outside the %vx%v canvas", r.TextPosition, w, h)
	}
	return warns
}
