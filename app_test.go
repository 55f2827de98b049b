package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/chazu/hexcede/pkg/config"
	"github.com/chazu/hexcede/pkg/icon"
)

func testConfig() config.Config {
	return config.Config{
		Addr:           ":8080",
		Padding:        32,
		EvalTimeout:    5 * time.Second,
		MaxScriptBytes: 65536,
	}
}

// TestE2EExampleScript exercises the full pipeline: script -> engine -> icon
// set -> composer -> SVG documents.
func TestE2EExampleScript(t *testing.T) {
	app := NewApp(testConfig())

	source, err := os.ReadFile("examples/badges.hexcede")
	if err != nil {
		t.Fatalf("failed to read badges.hexcede: %v", err)
	}

	result := app.Evaluate(context.Background(), string(source))

	if len(result.Errors) > 0 {
		for _, e := range result.Errors {
			t.Errorf("eval error (line %d): %s", e.Line, e.Message)
		}
		t.FailNow()
	}

	var names []string
	for _, ic := range result.Icons {
		names = append(names, ic.Name)
		if !strings.HasPrefix(ic.SVG, "<?xml") {
			t.Errorf("icon %q: not an SVG document", ic.Name)
		}
		if len(ic.Warnings) != 0 {
			t.Errorf("icon %q: unexpected warnings %v", ic.Name, ic.Warnings)
		}
	}
	if diff := cmp.Diff([]string{"hc", "hc-padded", "tri", "oct"}, names); diff != "" {
		t.Fatalf("icon names (-want +got):\n%s", diff)
	}

	// Only the padded copy carries a margin.
	if got := result.Icons[0].Width; got != 294 {
		t.Errorf("hc width = %v, want 294", got)
	}
	if got := result.Icons[1].Width; got != 326 {
		t.Errorf("hc-padded width = %v, want 326", got)
	}
}

// TestE2ESyntaxError ensures eval errors are reported, not fatal errors.
func TestE2ESyntaxError(t *testing.T) {
	app := NewApp(testConfig())
	result := app.Evaluate(context.Background(), `(deficon "test"`)

	if len(result.Errors) == 0 {
		t.Fatal("expected eval errors for syntax error")
	}
	if len(result.Icons) != 0 {
		t.Errorf("expected 0 icons on error, got %d", len(result.Icons))
	}
}

func TestE2EFatalErrorReported(t *testing.T) {
	cfg := testConfig()
	cfg.MaxScriptBytes = 8
	app := NewApp(cfg)

	result := app.Evaluate(context.Background(), `(deficon "too-long")`)
	if len(result.Errors) != 1 || !strings.Contains(result.Errors[0].Message, "too large") {
		t.Fatalf("errors = %+v", result.Errors)
	}
}

func TestGenerate(t *testing.T) {
	app := NewApp(testConfig())

	doc, err := app.Generate(icon.NewSpec())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if doc.Width != 294 || doc.Height != 294 {
		t.Errorf("size = %vx%v, want 294x294", doc.Width, doc.Height)
	}

	bad := icon.NewSpec()
	bad.SideCount = 2
	if _, err := app.Generate(bad); !icon.IsValidation(err) {
		t.Errorf("err = %v, want a validation error", err)
	}
}

func TestRunSingleIconToStdout(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"-sides", "3", "-text", "T", "-color", "#ff4000", "-padding", "0", "-o", "-"}, &out)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	svg := out.String()
	for _, want := range []string{`width="294px"`, "font-size: 115px", ">T</text>"} {
		if !strings.Contains(svg, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestRunSingleIconToFile(t *testing.T) {
	dst := filepath.Join(t.TempDir(), "badge.svg")
	if err := run([]string{"-rotation", "0", "-text-size", "100", "-o", dst}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	// Default padding comes from the environment config.
	if !strings.Contains(string(data), `width="326px"`) || !strings.Contains(string(data), "font-size: 100px") {
		t.Errorf("unexpected document:\n%.300s", data)
	}
}

func TestRunScript(t *testing.T) {
	dir := t.TempDir()
	script := filepath.Join(dir, "icons.hexcede")
	source := `
(deficon "a" :sides 4 :text "A")
(deficon "b" :from (icon "a") :text "B")
`
	if err := os.WriteFile(script, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")

	if err := run([]string{"-script", script, "-out-dir", outDir}, &bytes.Buffer{}); err != nil {
		t.Fatalf("run: %v", err)
	}
	for _, name := range []string{"a.svg", "b.svg"} {
		data, err := os.ReadFile(filepath.Join(outDir, name))
		if err != nil {
			t.Errorf("missing %s: %v", name, err)
			continue
		}
		if !bytes.HasPrefix(data, []byte("<?xml")) {
			t.Errorf("%s is not an SVG document", name)
		}
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	badScript := filepath.Join(dir, "bad.hexcede")
	if err := os.WriteFile(badScript, []byte("(deficon \"a\")\n(deficon \"a\")"), 0o644); err != nil {
		t.Fatal(err)
	}
	slashScript := filepath.Join(dir, "slash.hexcede")
	if err := os.WriteFile(slashScript, []byte(`(deficon "../escape")`), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		wantMsg string
	}{
		{name: "bad color", args: []string{"-color", "purple"}, wantMsg: "-color"},
		{name: "too few sides", args: []string{"-sides", "2"}, wantMsg: "side count 2"},
		{name: "negative padding", args: []string{"-padding", "-1"}, wantMsg: "padding"},
		{name: "stray argument", args: []string{"extra"}, wantMsg: "unexpected arguments"},
		{name: "missing script", args: []string{"-script", filepath.Join(dir, "nope")}, wantMsg: "read script"},
		{name: "duplicate icon", args: []string{"-script", badScript, "-out-dir", dir}, wantMsg: "duplicate"},
		{name: "unsafe name", args: []string{"-script", slashScript, "-out-dir", dir}, wantMsg: "cannot be used as a file name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := run(tt.args, &bytes.Buffer{})
			if err == nil || !strings.Contains(err.Error(), tt.wantMsg) {
				t.Fatalf("err = %v, want containing %q", err, tt.wantMsg)
			}
		})
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		name    string
		want    string
		wantErr bool
	}{
		{name: "hc", want: "hc.svg"},
		{name: "icon-1", want: "icon-1.svg"},
		{name: "", wantErr: true},
		{name: "..", wantErr: true},
		{name: "a/b", wantErr: true},
		{name: `a\b`, wantErr: true},
	}
	for _, tt := range tests {
		got, err := fileName(tt.name)
		if (err != nil) != tt.wantErr {
			t.Errorf("fileName(%q) err = %v, wantErr %v", tt.name, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("fileName(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}
