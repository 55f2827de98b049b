package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/chazu/hexcede/pkg/config"
	"github.com/chazu/hexcede/pkg/geometry"
	"github.com/chazu/hexcede/pkg/icon"
	"github.com/chazu/hexcede/pkg/palette"
	"github.com/chazu/hexcede/pkg/server"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// cliFlags holds the parsed command line.
type cliFlags struct {
	color        string
	sides        int
	text         string
	radius       float64
	cornerRadius float64
	strokeWidth  float64
	textSize     int
	rotation     float64
	padding      float64

	out    string
	script string
	outDir string
	serve  bool
	addr   string

	set map[string]bool // flags given explicitly
}

// parseFlags reads args on top of cfg; environment settings become the flag
// defaults, so explicit flags win.
func parseFlags(args []string, cfg config.Config) (cliFlags, error) {
	f := cliFlags{set: make(map[string]bool)}
	fs := flag.NewFlagSet("hexcede", flag.ContinueOnError)
	fs.StringVar(&f.color, "color", palette.Default.Hex(), "primary color as #rrggbb")
	fs.IntVar(&f.sides, "sides", icon.DefaultSides, "number of sides (3 to 64)")
	fs.StringVar(&f.text, "text", icon.DefaultText, "label text")
	fs.Float64Var(&f.radius, "radius", icon.DefaultRadius, "outer radius")
	fs.Float64Var(&f.cornerRadius, "corner-radius", 0, "corner radius (0 = 20% of the radius)")
	fs.Float64Var(&f.strokeWidth, "stroke-width", icon.DefaultStrokeWidth, "outline stroke width")
	fs.IntVar(&f.textSize, "text-size", 0, "label font size (0 = default for the side count)")
	fs.Float64Var(&f.rotation, "rotation", 0, "rotation in degrees (default depends on the side count)")
	fs.Float64Var(&f.padding, "padding", cfg.Padding, "leading canvas margin")
	fs.StringVar(&f.out, "o", "-", "output file, - for stdout")
	fs.StringVar(&f.script, "script", "", "icon script; writes <name>.svg per icon into -out-dir")
	fs.StringVar(&f.outDir, "out-dir", ".", "output directory for -script")
	fs.BoolVar(&f.serve, "serve", false, "start the HTTP server")
	fs.StringVar(&f.addr, "addr", cfg.Addr, "HTTP listen address for -serve")
	if err := fs.Parse(args); err != nil {
		return cliFlags{}, err
	}
	if fs.NArg() > 0 {
		return cliFlags{}, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	fs.Visit(func(fl *flag.Flag) { f.set[fl.Name] = true })
	return f, nil
}

// spec builds the single-icon spec described by the flags.
func (f cliFlags) spec() (icon.Spec, error) {
	c, err := palette.ParseHex(f.color)
	if err != nil {
		return icon.Spec{}, fmt.Errorf("-color: %w", err)
	}
	spec := icon.NewSpec()
	spec.Primary = c
	spec.SideCount = f.sides
	spec.Text = f.text
	spec.Radius = f.radius
	spec.CornerRadius = f.cornerRadius
	spec.StrokeWidth = f.strokeWidth
	spec.Offset = geometry.Point{X: f.padding, Y: f.padding}
	if f.set["text-size"] {
		spec.TextSize = icon.IntPtr(f.textSize)
	}
	if f.set["rotation"] {
		spec.Rotation = icon.FloatPtr(f.rotation)
	}
	return spec, nil
}

func run(args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	f, err := parseFlags(args, cfg)
	if err != nil {
		return err
	}
	cfg.Padding = f.padding
	cfg.Addr = f.addr
	if err := cfg.Validate(); err != nil {
		return err
	}

	switch {
	case f.serve:
		srv, err := server.New(cfg)
		if err != nil {
			return err
		}
		log.Printf("Starting web server on %s", cfg.Addr)
		return http.ListenAndServe(cfg.Addr, srv.Routes())
	case f.script != "":
		return writeScript(NewApp(cfg), f.script, f.outDir)
	default:
		return writeIcon(NewApp(cfg), f, stdout)
	}
}

func writeIcon(app *App, f cliFlags, stdout io.Writer) error {
	spec, err := f.spec()
	if err != nil {
		return err
	}
	doc, err := app.Generate(spec)
	if err != nil {
		return err
	}
	for _, w := range doc.Warnings {
		log.Printf("warning: %s", w)
	}
	if f.out == "-" {
		_, err := stdout.Write(doc.SVG)
		return err
	}
	if err := os.WriteFile(f.out, doc.SVG, 0o644); err != nil {
		return fmt.Errorf("write icon: %w", err)
	}
	log.Printf("wrote %s", f.out)
	return nil
}

func writeScript(app *App, path, outDir string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read script: %w", err)
	}
	result := app.Evaluate(context.Background(), string(source))
	for _, w := range result.Warnings {
		log.Printf("warning: %s", w.Message)
	}
	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			if e.Line > 0 {
				msgs = append(msgs, fmt.Sprintf("%s:%d: %s", path, e.Line, e.Message))
			} else {
				msgs = append(msgs, fmt.Sprintf("%s: %s", path, e.Message))
			}
		}
		return errors.New(strings.Join(msgs, "\n"))
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	for _, ic := range result.Icons {
		name, err := fileName(ic.Name)
		if err != nil {
			return err
		}
		dst := filepath.Join(outDir, name)
		if err := os.WriteFile(dst, []byte(ic.SVG), 0o644); err != nil {
			return fmt.Errorf("write icon %q: %w", ic.Name, err)
		}
		log.Printf("wrote %s", dst)
	}
	return nil
}

// fileName maps an icon name to its output file name. Names that would
// escape the output directory are rejected.
func fileName(name string) (string, error) {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		return "", fmt.Errorf("icon name %q cannot be used as a file name", name)
	}
	return name + ".svg", nil
}
