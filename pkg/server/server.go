// Package server exposes icon rendering and script evaluation over HTTP.
package server

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/chazu/hexcede/pkg/compose"
	"github.com/chazu/hexcede/pkg/config"
	"github.com/chazu/hexcede/pkg/engine"
	"github.com/chazu/hexcede/pkg/icon"
	"github.com/chazu/hexcede/pkg/kernel"
	"github.com/chazu/hexcede/pkg/kernel/sdfx"
)

//go:embed index.md
var indexMarkdown []byte

const pageShell = `<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>hexcede</title></head>
<body>
%s</body>
</html>
`

// Server serves icons and script evaluation over HTTP.
type Server struct {
	cfg    config.Config
	kernel kernel.Kernel
	index  []byte
}

// New builds a Server. The index page is rendered once here.
func New(cfg config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	var body bytes.Buffer
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	if err := md.Convert(indexMarkdown, &body); err != nil {
		return nil, fmt.Errorf("render index: %w", err)
	}
	return &Server{
		cfg:    cfg,
		kernel: sdfx.New(),
		index:  []byte(fmt.Sprintf(pageShell, body.String())),
	}, nil
}

// Routes returns the handler for every endpoint, wrapped in request
// logging.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /icon.svg", s.handleIcon)
	mux.HandleFunc("POST /api/eval", s.handleEval)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return logMiddleware(mux)
}

// --- Handlers ---

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(s.index)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}

func (s *Server) handleIcon(w http.ResponseWriter, r *http.Request) {
	spec, err := specFromQuery(r.URL.Query(), s.cfg.Padding)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	doc, err := compose.Compose(spec, compose.WithKernel(s.kernel))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	for _, warning := range doc.Warnings {
		w.Header().Add("X-Icon-Warning", warning)
	}
	if r.URL.Query().Get("download") == "1" {
		w.Header().Set("Content-Disposition", `attachment; filename="image.svg"`)
	}
	w.Header().Set("Content-Type", compose.ContentType)
	_, _ = w.Write(doc.SVG)
}

type iconResp struct {
	Name     string   `json:"name"`
	SVG      string   `json:"svg"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	Warnings []string `json:"warnings,omitempty"`
}

type evalResp struct {
	Icons    []iconResp           `json:"icons"`
	Errors   []engine.EvalError   `json:"errors"`
	Warnings []engine.EvalWarning `json:"warnings"`
}

func (s *Server) handleEval(w http.ResponseWriter, r *http.Request) {
	body := r.Body
	if s.cfg.MaxScriptBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, int64(s.cfg.MaxScriptBytes))
	}
	source, err := io.ReadAll(body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, err.Error(), http.StatusRequestEntityTooLarge)
			return
		}
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// One engine per request: evaluations on a shared engine supersede each
	// other.
	eng := engine.NewEngine(
		engine.WithTimeout(s.cfg.EvalTimeout),
		engine.WithMaxSourceBytes(s.cfg.MaxScriptBytes),
	)
	res, err := eng.Evaluate(r.Context(), string(source))
	if err != nil {
		log.Printf("eval failed: %v", err)
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	resp := evalResp{
		Icons:    []iconResp{},
		Errors:   []engine.EvalError{},
		Warnings: []engine.EvalWarning{},
	}
	resp.Errors = append(resp.Errors, res.Errors...)
	resp.Warnings = append(resp.Warnings, res.Warnings...)
	if len(res.Errors) > 0 {
		writeJSON(w, http.StatusBadRequest, resp)
		return
	}

	docs, err := compose.ComposeSet(res.Set, compose.WithKernel(s.kernel))
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	for _, doc := range docs {
		resp.Icons = append(resp.Icons, iconResp{
			Name:     doc.Name,
			SVG:      string(doc.SVG),
			Width:    doc.Width,
			Height:   doc.Height,
			Warnings: doc.Warnings,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

// statusFor maps a failure to a response status.
func statusFor(err error) int {
	switch {
	case icon.IsValidation(err):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrSourceTooLarge):
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start))
	})
}
