package engine

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"

	"github.com/chazu/hexcede/pkg/geometry"
	"github.com/chazu/hexcede/pkg/icon"
	"github.com/chazu/hexcede/pkg/palette"
)

// ---------------------------------------------------------------------------
// Custom Sexp types for passing Go values through the zygomys environment
// ---------------------------------------------------------------------------

// sexpColor wraps a palette.Color produced by (color ...).
type sexpColor struct {
	c palette.Color
}

func (s *sexpColor) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(color %q)", s.c.Hex())
}
func (s *sexpColor) Type() *zygo.RegisteredType { return nil }

// sexpIcon wraps a declared icon.Spec.
type sexpIcon struct {
	spec icon.Spec
}

func (s *sexpIcon) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(icon %q)", s.spec.Name)
}
func (s *sexpIcon) Type() *zygo.RegisteredType { return nil }

// ---------------------------------------------------------------------------
// Keyword argument parsing
// ---------------------------------------------------------------------------

// isKW checks if a Sexp is a preprocessed keyword string.
// Returns the keyword name (without prefix) and true if it is.
func isKW(s zygo.Sexp) (string, bool) {
	str, ok := s.(*zygo.SexpStr)
	if !ok {
		return "", false
	}
	return strings.CutPrefix(str.S, kwPrefix)
}

// kwArgs holds the result of parsing a mixed positional+keyword argument list.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates args into keyword and positional arguments. A keyword
// without a value maps to SexpNull.
func parseArgs(args []zygo.Sexp) kwArgs {
	result := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		name, ok := isKW(args[i])
		if !ok {
			result.positional = append(result.positional, args[i])
			continue
		}
		if i+1 < len(args) {
			result.kw[name] = args[i+1]
			i++
		} else {
			result.kw[name] = zygo.SexpNull
		}
	}
	return result
}

// ---------------------------------------------------------------------------
// Value extraction helpers
// ---------------------------------------------------------------------------

// toFloat64 extracts a float64 from a Sexp (SexpInt or SexpFloat).
func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %s", describe(s))
}

// toInt extracts an int. Floats are accepted when they hold a whole number.
func toInt(s zygo.Sexp) (int, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return int(v.Val), nil
	case *zygo.SexpFloat:
		if v.Val == math.Trunc(v.Val) && math.Abs(v.Val) <= math.MaxInt32 {
			return int(v.Val), nil
		}
		return 0, fmt.Errorf("expected integer, got %g", v.Val)
	}
	return 0, fmt.Errorf("expected integer, got %s", describe(s))
}

// toString extracts a string from a Sexp. Keywords are not strings.
func toString(s zygo.Sexp) (string, error) {
	if _, ok := isKW(s); !ok {
		if str, ok := s.(*zygo.SexpStr); ok {
			return str.S, nil
		}
	}
	return "", fmt.Errorf("expected string, got %s", describe(s))
}

// toColor accepts a (color ...) value or a hex string.
func toColor(s zygo.Sexp) (palette.Color, error) {
	if c, ok := s.(*sexpColor); ok {
		return c.c, nil
	}
	hex, err := toString(s)
	if err != nil {
		return palette.Color{}, fmt.Errorf("expected color or hex string, got %s", describe(s))
	}
	return palette.ParseHex(hex)
}

// toRGB reads a three element list or array of 0-255 channel values.
func toRGB(s zygo.Sexp) (palette.Color, error) {
	items, err := sexpListToSlice(s)
	if err != nil {
		return palette.Color{}, err
	}
	if len(items) != 3 {
		return palette.Color{}, fmt.Errorf("expected 3 channels, got %d", len(items))
	}
	var ch [3]int
	for i, item := range items {
		if ch[i], err = toInt(item); err != nil {
			return palette.Color{}, fmt.Errorf("channel %d: %w", i, err)
		}
	}
	return palette.FromRGB255(ch[0], ch[1], ch[2])
}

// sexpListToSlice converts a SexpPair (Lisp list) or SexpArray to a Go slice.
func sexpListToSlice(s zygo.Sexp) ([]zygo.Sexp, error) {
	switch v := s.(type) {
	case *zygo.SexpPair:
		return zygo.ListToArray(v)
	case *zygo.SexpArray:
		return v.Val, nil
	case *zygo.SexpSentinel:
		if v == zygo.SexpNull {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("expected list or array, got %s", describe(s))
}

func describe(s zygo.Sexp) string {
	if s == nil {
		return "nothing"
	}
	if name, ok := isKW(s); ok {
		return "keyword :" + name
	}
	return fmt.Sprintf("%T (%s)", s, s.SexpString(nil))
}

// ---------------------------------------------------------------------------
// deficon keywords
// ---------------------------------------------------------------------------

// specSetter applies one deficon keyword to the spec under construction.
type specSetter func(spec *icon.Spec, v zygo.Sexp) error

func floatField(field func(*icon.Spec) *float64) specSetter {
	return func(spec *icon.Spec, v zygo.Sexp) error {
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		*field(spec) = f
		return nil
	}
}

// iconKeywords maps deficon keywords to setters. :from and the label
// position keywords are handled separately because they depend on other
// keywords.
var iconKeywords = map[string]specSetter{
	"sides": func(spec *icon.Spec, v zygo.Sexp) error {
		n, err := toInt(v)
		spec.SideCount = n
		return err
	},
	"radius":        floatField(func(s *icon.Spec) *float64 { return &s.Radius }),
	"corner-radius": floatField(func(s *icon.Spec) *float64 { return &s.CornerRadius }),
	"stroke-width":  floatField(func(s *icon.Spec) *float64 { return &s.StrokeWidth }),
	"x":             floatField(func(s *icon.Spec) *float64 { return &s.Offset.X }),
	"y":             floatField(func(s *icon.Spec) *float64 { return &s.Offset.Y }),
	"padding": func(spec *icon.Spec, v zygo.Sexp) error {
		f, err := toFloat64(v)
		spec.Offset = geometry.Point{X: f, Y: f}
		return err
	},
	"rotation": func(spec *icon.Spec, v zygo.Sexp) error {
		f, err := toFloat64(v)
		spec.Rotation = icon.FloatPtr(f)
		return err
	},
	"color": func(spec *icon.Spec, v zygo.Sexp) error {
		c, err := toColor(v)
		spec.Primary = c
		return err
	},
	"rgb": func(spec *icon.Spec, v zygo.Sexp) error {
		c, err := toRGB(v)
		spec.Primary = c
		return err
	},
	"text": func(spec *icon.Spec, v zygo.Sexp) error {
		s, err := toString(v)
		spec.Text = s
		return err
	},
	"text-size": func(spec *icon.Spec, v zygo.Sexp) error {
		n, err := toInt(v)
		spec.TextSize = icon.IntPtr(n)
		return err
	},
}

// deficon builds a spec from a deficon argument list.
func deficon(args []zygo.Sexp) (icon.Spec, error) {
	pa := parseArgs(args)
	if len(pa.positional) != 1 {
		return icon.Spec{}, fmt.Errorf("expected exactly one name, got %d positional arguments", len(pa.positional))
	}
	name, err := toString(pa.positional[0])
	if err != nil {
		return icon.Spec{}, fmt.Errorf("name: %w", err)
	}
	if _, ok := pa.kw["color"]; ok {
		if _, ok := pa.kw["rgb"]; ok {
			return icon.Spec{}, errors.New(":color and :rgb are mutually exclusive")
		}
	}

	spec := icon.NewSpec()
	if v, ok := pa.kw["from"]; ok {
		base, ok := v.(*sexpIcon)
		if !ok {
			return icon.Spec{}, fmt.Errorf("from: expected icon, got %s", describe(v))
		}
		spec = base.spec
	}
	spec.Name = name

	keys := lo.Keys(pa.kw)
	sort.Strings(keys)
	for _, key := range keys {
		switch key {
		case "from", "text-x", "text-y":
			continue
		}
		apply, ok := iconKeywords[key]
		if !ok {
			return icon.Spec{}, fmt.Errorf("unknown keyword :%s", key)
		}
		if err := apply(&spec, pa.kw[key]); err != nil {
			return icon.Spec{}, fmt.Errorf("%s: %w", key, err)
		}
	}

	if err := applyTextPosition(&spec, pa.kw); err != nil {
		return icon.Spec{}, err
	}
	return spec, nil
}

// applyTextPosition sets :text-x and :text-y. A missing coordinate keeps the
// value the spec resolves to for its side count.
func applyTextPosition(spec *icon.Spec, kw map[string]zygo.Sexp) error {
	xv, hasX := kw["text-x"]
	yv, hasY := kw["text-y"]
	if !hasX && !hasY {
		return nil
	}
	pos := icon.Resolve(*spec).TextPosition
	if hasX {
		f, err := toFloat64(xv)
		if err != nil {
			return fmt.Errorf("text-x: %w", err)
		}
		pos.X = f
	}
	if hasY {
		f, err := toFloat64(yv)
		if err != nil {
			return fmt.Errorf("text-y: %w", err)
		}
		pos.Y = f
	}
	spec.TextPosition = &pos
	return nil
}

// ---------------------------------------------------------------------------
// Builtin registration
// ---------------------------------------------------------------------------

type builtinFunc = func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error)

// evalState tracks the first builtin failure of one evaluation so it can be
// reported with its original error chain.
type evalState struct {
	err error
}

// wrap records the error of fn, prefixed with the builtin name.
func (st *evalState) wrap(fn builtinFunc) builtinFunc {
	return func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		v, err := fn(env, name, args)
		if err != nil {
			err = fmt.Errorf("%s: %w", name, err)
			if st.err == nil {
				st.err = err
			}
			return zygo.SexpNull, err
		}
		return v, nil
	}
}

// registerBuiltins installs the icon DSL into a zygomys environment. deficon
// adds to set.
//
// Source code must be preprocessed with preprocessSource() before evaluation so
// that :keyword tokens are converted to recognizable string literals.
func registerBuiltins(env *zygo.Zlisp, set *icon.Set, st *evalState) {

	// (color "#B1FF00") or (color 177 255 0)
	env.AddFunction("color", st.wrap(func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		switch len(args) {
		case 1:
			c, err := toColor(args[0])
			if err != nil {
				return nil, err
			}
			return &sexpColor{c: c}, nil
		case 3:
			c, err := toRGB(&zygo.SexpArray{Val: args})
			if err != nil {
				return nil, err
			}
			return &sexpColor{c: c}, nil
		}
		return nil, fmt.Errorf("expected a hex string or r g b, got %d arguments", len(args))
	}))

	// (deficon "hc" :sides 6 :color brand :text "HC")
	env.AddFunction("deficon", st.wrap(func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		spec, err := deficon(args)
		if err != nil {
			return nil, err
		}
		if err := icon.Validate(icon.Resolve(spec)); err != nil {
			return nil, err
		}
		if err := set.Add(spec); err != nil {
			return nil, err
		}
		return &sexpIcon{spec: spec}, nil
	}))

	// (icon "hc")
	env.AddFunction("icon", st.wrap(func(env *zygo.Zlisp, name string, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("expected one name, got %d arguments", len(args))
		}
		iconName, err := toString(args[0])
		if err != nil {
			return nil, err
		}
		spec, ok := set.Lookup(iconName)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownIcon, iconName)
		}
		return &sexpIcon{spec: spec}, nil
	}))
}
