// Package engine provides the Lisp evaluation engine for hexcede icon
// scripts. It wraps zygomys in a sandboxed environment and produces an
// icon.Set from user source code.
package engine

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"
	"github.com/samber/lo"

	"github.com/chazu/hexcede/pkg/icon"
)

var (
	// ErrSourceTooLarge is returned when a script exceeds the configured
	// size limit.
	ErrSourceTooLarge = errors.New("source too large")

	// ErrUnknownIcon is reported by (icon "name") for undeclared names.
	ErrUnknownIcon = errors.New("unknown icon")
)

// EvalError represents a non-fatal error encountered during evaluation,
// such as a parse error or a runtime error in user code.
type EvalError struct {
	Line    int    `json:"line,omitempty"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Unwrap returns the builtin error behind e, if any.
func (e EvalError) Unwrap() error { return e.Err }

// EvalWarning is an advisory finding on one declared icon.
type EvalWarning struct {
	Icon    string `json:"icon"`
	Message string `json:"message"`
}

// EvalResult bundles the full output of an evaluation. Set is nil whenever
// Errors is non-empty.
type EvalResult struct {
	Set      *icon.Set
	Errors   []EvalError
	Warnings []EvalWarning
}

// Engine wraps the zygomys interpreter for icon script evaluation.
// It is safe for concurrent use; each call to Evaluate creates a fresh
// sandboxed environment for determinism. Starting a new evaluation
// supersedes any still running on the same Engine.
type Engine struct {
	mu         sync.Mutex
	generation uint64

	timeout   time.Duration
	maxSource int
}

// Option configures an Engine.
type Option func(*Engine)

// WithTimeout sets the hard limit for one evaluation.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithMaxSourceBytes rejects sources longer than n bytes. Zero means no
// limit.
func WithMaxSourceBytes(n int) Option {
	return func(e *Engine) { e.maxSource = n }
}

// NewEngine creates a new Engine instance.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{timeout: EvalTimeout}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs an icon script and collects the icons it declares.
//
// Return semantics:
//   - On success: returns a result with a Set (possibly with Warnings) and nil error
//   - On parse/eval failure: returns a result with Errors and a nil Set, nil error
//   - On fatal failure (timeout, panic, superseded, ctx done): returns nil + error
func (e *Engine) Evaluate(ctx context.Context, source string) (*EvalResult, error) {
	if e.maxSource > 0 && len(source) > e.maxSource {
		return nil, fmt.Errorf("%w: %d bytes exceeds the %d byte limit", ErrSourceTooLarge, len(source), e.maxSource)
	}

	e.mu.Lock()
	e.generation++
	gen := e.generation
	e.mu.Unlock()

	ch := make(chan evalOutcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalOutcome{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()

		res, err := evaluate(source)
		ch <- evalOutcome{result: res, err: err}
	}()

	return waitWithTimeout(ctx, ch, gen, &e.mu, &e.generation, e.timeout)
}

// sandboxMu serializes sandbox creation across engines; zygomys sets up
// package-level state there. Running a loaded sandbox does not take it.
var sandboxMu sync.Mutex

// newSandbox creates a sandbox with the icon builtins installed.
func newSandbox(set *icon.Set, st *evalState) *zygo.Zlisp {
	sandboxMu.Lock()
	defer sandboxMu.Unlock()

	// Sandbox mode prevents user code from accessing the filesystem or syscalls.
	env := zygo.NewZlispSandbox()
	registerBuiltins(env, set, st)
	return env
}

// evaluate performs the actual zygomys evaluation in a fresh sandbox.
func evaluate(source string) (*EvalResult, error) {
	set := icon.NewSet()

	// Empty source is a valid program that declares nothing.
	if strings.TrimSpace(source) == "" {
		return &EvalResult{Set: set}, nil
	}

	var st evalState
	env := newSandbox(set, &st)
	defer env.Stop()

	if err := env.LoadString(preprocessSource(source)); err != nil {
		return &EvalResult{Errors: parseZygomysError(err)}, nil
	}
	if _, err := env.Run(); err != nil {
		errs := parseZygomysError(err)
		if st.err != nil {
			errs[0].Message = st.err.Error()
			errs[0].Err = st.err
		}
		return &EvalResult{Errors: errs}, nil
	}

	found := icon.ValidateSet(set)
	warnings := lo.Map(found.Warnings, func(w icon.ValidationError, _ int) EvalWarning {
		return EvalWarning{Message: w.Field + ": " + w.Message, Icon: w.Icon}
	})
	return &EvalResult{Set: set, Warnings: warnings}, nil
}

// linePattern matches zygomys messages carrying "Error on line N: ..."
// anywhere in the text.
var linePattern = regexp.MustCompile(`(?is)^(.*?)(?:error )?on line (\d+):\s*(.*)$`)

// linePatternShort matches simpler "line N: ..." patterns.
var linePatternShort = regexp.MustCompile(`(?is)^line (\d+):\s*(.*)$`)

// parseZygomysError converts a zygomys error into one or more EvalError values.
// It attempts to extract line number information from the error message.
func parseZygomysError(err error) []EvalError {
	msg := err.Error()

	if m := linePatternShort.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[1])
		return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
	}

	if m := linePattern.FindStringSubmatch(msg); m != nil {
		line, _ := strconv.Atoi(m[2])
		parts := lo.Compact([]string{
			strings.TrimSpace(m[1]),
			strings.TrimSpace(m[3]),
		})
		return []EvalError{{Line: line, Message: strings.Join(parts, ": ")}}
	}

	// Fallback: no line info available.
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
