// Package httpdump serves dumps of live values over HTTP.
//
// Values are registered by name with a function producing them on demand,
// so every request dumps the current state:
//
//	h := httpdump.New(textDumper, httpdump.WithFormat(render.FormatJSON, jsonDumper, "application/json"))
//	h.Register("config", func() any { return cfg })
//	router.Mount("/debug/dump", h)
//
// GET / lists the registered names, one per line. GET /{name} dumps one
// value in the format selected by the "format" query parameter.
package httpdump

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/spyglass/pkg/dump"
	"github.com/matzehuels/spyglass/pkg/errors"
	"github.com/matzehuels/spyglass/pkg/render"
)

// Response headers carrying dump statistics.
const (
	HeaderDumpID = "X-Spyglass-Dump-Id"
	HeaderNodes  = "X-Spyglass-Nodes"
)

type format struct {
	dumper      *dump.Dumper
	contentType string
}

// Handler is an http.Handler dumping registered values. It is safe for
// concurrent use; each request runs its own dump session.
type Handler struct {
	router   chi.Router
	logger   *log.Logger
	fallback string

	mu      sync.RWMutex
	values  map[string]func() any
	formats map[string]format
}

// Option configures a Handler.
type Option func(*Handler)

// WithFormat serves the format name with d, answering with contentType.
func WithFormat(name string, d *dump.Dumper, contentType string) Option {
	return func(h *Handler) {
		h.formats[name] = format{dumper: d, contentType: contentType}
	}
}

// WithLogger sets the request logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(h *Handler) { h.logger = l }
}

// New returns a handler whose default text format is rendered by d.
func New(d *dump.Dumper, opts ...Option) *Handler {
	h := &Handler{
		logger:   log.Default(),
		fallback: render.FormatText,
		values:   make(map[string]func() any),
		formats: map[string]format{
			render.FormatText: {dumper: d, contentType: "text/plain; charset=utf-8"},
		},
	}
	for _, opt := range opts {
		opt(h)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)
	r.Get("/", h.list)
	r.Get("/{name}", h.dump)
	h.router = r
	return h
}

// Register makes fn's value available under name, replacing any earlier
// registration.
func (h *Handler) Register(name string, fn func() any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.values[name] = fn
}

// Names returns the registered names in sorted order.
func (h *Handler) Names() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	names := make([]string, 0, len(h.values))
	for n := range h.values {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) list(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	for _, n := range h.Names() {
		_, _ = w.Write([]byte(n + "\n"))
	}
}

func (h *Handler) dump(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	h.mu.RLock()
	fn, ok := h.values[name]
	h.mu.RUnlock()
	if !ok {
		h.fail(w, errors.New(errors.ErrCodeNotFound, "no value registered as %q", name))
		return
	}

	fmtName := r.URL.Query().Get("format")
	if fmtName == "" {
		fmtName = h.fallback
	}
	f, ok := h.formats[fmtName]
	if !ok || f.dumper == nil {
		h.fail(w, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", fmtName))
		return
	}

	res := f.dumper.Analyze(r.Context(), fn(), name)
	w.Header().Set("Content-Type", f.contentType)
	w.Header().Set(HeaderDumpID, res.DumpID)
	w.Header().Set(HeaderNodes, strconv.Itoa(res.Stats.Nodes))
	_, _ = w.Write([]byte(res.Output))
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, errors.ErrCodeNotFound):
		status = http.StatusNotFound
	case errors.Is(err, errors.ErrCodeInvalidFormat):
		status = http.StatusBadRequest
	}
	http.Error(w, errors.UserMessage(err), status)
}

func (h *Handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("request",
			"method", r.Method,
			"path", strings.TrimSuffix(r.URL.Path, "/"),
			"status", ww.Status(),
			"duration", time.Since(start))
	})
}
