package geometry

import (
	"errors"
	"math"
	"testing"
)

func TestPathString(t *testing.T) {
	path := Path{
		MoveTo(Point{X: 1, Y: 2}),
		LineTo(Point{X: 3.5, Y: -4}),
		CubicTo(Point{X: 0.25, Y: 0}, Point{X: 10, Y: 11}, Point{X: 12, Y: 13.125}),
		Close(),
	}
	want := "M 1 2 L 3.5 -4 C 0.25 0 10 11 12 13.125 Z"
	if got := path.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestPathValidate(t *testing.T) {
	tests := []struct {
		name    string
		path    Path
		wantErr bool
	}{
		{"minimal", Path{MoveTo(Point{}), Close()}, false},
		{"empty", Path{}, true},
		{"missing move", Path{LineTo(Point{}), Close()}, true},
		{"missing close", Path{MoveTo(Point{}), LineTo(Point{X: 1})}, true},
		{"double move", Path{MoveTo(Point{}), MoveTo(Point{}), Close()}, true},
		{"close inside", Path{MoveTo(Point{}), Close(), LineTo(Point{}), Close()}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.path.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestPathValidateNaN(t *testing.T) {
	path := Path{MoveTo(Point{X: math.NaN()}), Close()}
	if err := path.Validate(); !errors.Is(err, ErrInvalidGeometry) {
		t.Errorf("expected ErrInvalidGeometry for NaN coordinate, got %v", err)
	}
}

func TestSegmentEnd(t *testing.T) {
	c := CubicTo(Point{X: 1}, Point{X: 2}, Point{X: 3, Y: 4})
	end, ok := c.End()
	if !ok || end != (Point{X: 3, Y: 4}) {
		t.Errorf("CubicTo End() = %v, %v", end, ok)
	}
	if _, ok := Close().End(); ok {
		t.Error("Close End() should report no endpoint")
	}
}

func TestPolar(t *testing.T) {
	p := Polar(0, 10)
	if !p.ApproxEqual(Point{X: 0, Y: 10}, 1e-12) {
		t.Errorf("Polar(0, 10) = %+v", p)
	}
	p = Polar(math.Pi/2, 10)
	if !p.ApproxEqual(Point{X: 10, Y: 0}, 1e-12) {
		t.Errorf("Polar(π/2, 10) = %+v", p)
	}
}

func TestVerbString(t *testing.T) {
	if VerbCubicTo.String() != "CubicTo" {
		t.Errorf("VerbCubicTo.String() = %q", VerbCubicTo.String())
	}
	if Verb(42).String() != "Verb(42)" {
		t.Errorf("unknown verb String() = %q", Verb(42).String())
	}
}
