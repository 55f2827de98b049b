package main

import (
	"context"
	"log"

	"github.com/chazu/hexcede/pkg/compose"
	"github.com/chazu/hexcede/pkg/config"
	"github.com/chazu/hexcede/pkg/engine"
	"github.com/chazu/hexcede/pkg/icon"
	"github.com/chazu/hexcede/pkg/kernel"
	"github.com/chazu/hexcede/pkg/kernel/sdfx"
)

// App ties the engine, kernel and composer together for the CLI.
type App struct {
	engine *engine.Engine
	kernel kernel.Kernel
}

// IconData is one rendered icon.
type IconData struct {
	Name     string   `json:"name"`
	SVG      string   `json:"svg"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Warnings []string `json:"warnings"`
}

// EvalErrorData is a JSON-serializable eval error or warning. Line is zero
// when the failure has no source position.
type EvalErrorData struct {
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
}

// EvalResult is the full result of running a script.
type EvalResult struct {
	Icons    []IconData      `json:"icons"`
	Errors   []EvalErrorData `json:"errors"`
	Warnings []EvalErrorData `json:"warnings"`
}

// NewApp creates a new App with an engine and the sdfx kernel.
func NewApp(cfg config.Config) *App {
	return &App{
		engine: engine.NewEngine(
			engine.WithTimeout(cfg.EvalTimeout),
			engine.WithMaxSourceBytes(cfg.MaxScriptBytes),
		),
		kernel: sdfx.New(),
	}
}

// Generate renders a single icon.
func (a *App) Generate(spec icon.Spec) (*compose.Document, error) {
	doc, err := compose.Compose(spec, compose.WithKernel(a.kernel))
	if err != nil {
		log.Printf("Generate error: %v", err)
		return nil, err
	}
	return doc, nil
}

// Evaluate runs an icon script and renders every icon it declares.
func (a *App) Evaluate(ctx context.Context, source string) EvalResult {
	result := EvalResult{
		Icons:    []IconData{},
		Errors:   []EvalErrorData{},
		Warnings: []EvalErrorData{},
	}

	// Step 1: Evaluate the script into an icon set.
	res, err := a.engine.Evaluate(ctx, source)
	if err != nil {
		// Fatal error (panic, timeout, etc.)
		log.Printf("Evaluate fatal error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{Message: err.Error()})
		return result
	}

	for _, w := range res.Warnings {
		result.Warnings = append(result.Warnings, EvalErrorData{
			Message: w.Icon + ": " + w.Message,
		})
	}

	// Step 2: Convert eval errors to the result format.
	if len(res.Errors) > 0 {
		for _, e := range res.Errors {
			result.Errors = append(result.Errors, EvalErrorData{
				Line:    e.Line,
				Message: e.Message,
			})
		}
		return result
	}

	// Step 3: Compose every icon.
	docs, err := compose.ComposeSet(res.Set, compose.WithKernel(a.kernel))
	if err != nil {
		log.Printf("Compose error: %v", err)
		result.Errors = append(result.Errors, EvalErrorData{
			Message: "composition failed: " + err.Error(),
		})
		return result
	}

	for _, doc := range docs {
		result.Icons = append(result.Icons, IconData{
			Name:     doc.Name,
			SVG:      string(doc.SVG),
			Width:    doc.Width,
			Height:   doc.Height,
			Warnings: doc.Warnings,
		})
	}

	return result
}
