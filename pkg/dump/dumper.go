package dump

import (
	"context"
	"fmt"
	"reflect"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/spyglass/pkg/analysis"
	"github.com/matzehuels/spyglass/pkg/cache"
	"github.com/matzehuels/spyglass/pkg/chunk"
	"github.com/matzehuels/spyglass/pkg/codegen"
	"github.com/matzehuels/spyglass/pkg/config"
	"github.com/matzehuels/spyglass/pkg/errors"
	"github.com/matzehuels/spyglass/pkg/governor"
	"github.com/matzehuels/spyglass/pkg/hive"
	"github.com/matzehuels/spyglass/pkg/model"
	"github.com/matzehuels/spyglass/pkg/observability"
)

// Dumper analyzes values. It is immutable after New and safe for
// concurrent use; every Analyze call runs in its own session.
type Dumper struct {
	cfg      config.Config
	renderer Renderer
	logger   *log.Logger

	hooks     []Hook
	extra     []analysis.Analyzer
	table     *analysis.Table
	generator *codegen.Generator

	cache cache.Cache
	keyer cache.Keyer
	clock clock.Clock
	probe governor.MemoryProbe
}

// Option configures a Dumper.
type Option func(*Dumper)

// WithLogger sets the logger. The default is log.Default().
func WithLogger(l *log.Logger) Option {
	return func(d *Dumper) { d.logger = l }
}

// WithHooks appends traversal hooks, fired in the given order.
func WithHooks(h ...Hook) Option {
	return func(d *Dumper) { d.hooks = append(d.hooks, h...) }
}

// WithAnalyzer registers an analyzer ahead of the built-in ones, so it wins
// for every value it accepts.
func WithAnalyzer(a analysis.Analyzer) Option {
	return func(d *Dumper) { d.extra = append(d.extra, a) }
}

// WithCache sets the chunk backend. Without one, or with chunking disabled
// in the configuration, dumps are assembled in memory.
func WithCache(c cache.Cache) Option {
	return func(d *Dumper) { d.cache = c }
}

// WithKeyer sets how chunk keys are derived. The default is
// cache.DefaultKeyer.
func WithKeyer(k cache.Keyer) Option {
	return func(d *Dumper) { d.keyer = k }
}

// WithClock sets the clock the governor measures time with.
func WithClock(c clock.Clock) Option {
	return func(d *Dumper) { d.clock = c }
}

// WithProbe sets the governor's memory probe.
func WithProbe(p governor.MemoryProbe) Option {
	return func(d *Dumper) { d.probe = p }
}

// New validates cfg and returns a Dumper rendering with r.
func New(cfg config.Config, r Renderer, opts ...Option) (*Dumper, error) {
	if r == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "renderer is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := &Dumper{
		cfg:      cfg,
		renderer: r,
		logger:   log.Default(),
		keyer:    cache.NewDefaultKeyer(),
		clock:    clock.New(),
		probe:    governor.RuntimeProbe{},
	}
	for _, opt := range opts {
		opt(d)
	}
	if !cfg.Chunks.Enabled || d.cache == nil {
		d.cache = cache.NewNullCache()
	}
	d.table = analysis.NewTable(append(d.extra, analysis.Defaults()...)...)
	d.generator = codegen.New(cfg.Codegen)
	return d, nil
}

// Config returns the configuration the Dumper was built with.
func (d *Dumper) Config() config.Config { return d.cfg }

// Stats summarizes one dump.
type Stats struct {
	Nodes      int
	Recursions int
	Limits     int
	Failures   int
	Chunks     int
	Duration   time.Duration

	// Degraded is set when chunking was requested but the dump was
	// assembled in memory.
	Degraded bool
}

// Result is the outcome of one dump.
type Result struct {
	DumpID string
	Output string
	Stats  Stats
}

// Analyze renders v under the root name. It never panics and never fails:
// every problem is reported inside Output.
func (d *Dumper) Analyze(ctx context.Context, v any, name string) (res Result) {
	if ctx == nil {
		ctx = context.Background()
	}
	s := d.newSession(ctx)
	res.DumpID = s.store.DumpID()
	observability.Dump().OnDumpStart(ctx, res.DumpID, name)

	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("dump aborted", "name", name, "panic", r)
			res.Output = d.abortMarker(name, r)
			s.stats.Failures++
		}
		s.close()
		res.Stats = s.finishStats()
		observability.Dump().OnDumpComplete(ctx, res.DumpID, res.Stats.observed())
		d.logger.Debug("dump complete",
			"name", name,
			"nodes", res.Stats.Nodes,
			"recursions", res.Stats.Recursions,
			"limits", res.Stats.Limits,
			"chunks", res.Stats.Chunks,
			"duration", res.Stats.Duration)
	}()

	root := model.New(reflect.ValueOf(v), name, model.Root())
	frag := s.route(root)
	doc := s.store.Resolve(string(frag))
	if f, ok := d.renderer.(Finisher); ok {
		doc = f.Finish(root, doc)
	}
	res.Output = doc
	return res
}

// abortMarker renders the visible trace of a dump that panicked. The
// renderer is tried first; if it panics too, plain text is used.
func (d *Dumper) abortMarker(name string, cause any) (out string) {
	text := fmt.Sprintf("[dump of %s aborted: %s]", name, errors.Annotation(cause))
	defer func() {
		if recover() != nil {
			out = text
		}
	}()
	p := model.Placeholder(name, model.KindFailure, "aborted")
	p.Meta.Set(model.MetaFailure, errors.Annotation(cause))
	out = string(d.renderer.RenderLeaf(p))
	if f, ok := d.renderer.(Finisher); ok {
		out = f.Finish(p, out)
	}
	return out
}

func (d *Dumper) newSession(ctx context.Context) *session {
	lim := d.cfg.Limits
	gov := governor.New(governor.Limits{
		MaxDepth:    lim.MaxDepth,
		MaxDuration: lim.Timeout.Duration,
		MaxMemory:   lim.MaxMemory(),
		MinHeadroom: lim.MinHeadroom(),
	}, governor.WithClock(d.clock), governor.WithProbe(d.probe))

	return &session{
		ctx:   ctx,
		d:     d,
		gov:   gov,
		hive:  hive.New(),
		store: chunk.NewStore(ctx, d.cache, d.keyer, d.logger),
		env:   analysis.NewEnv(d.cfg.Analysis),
	}
}

func (st Stats) observed() observability.DumpStats {
	return observability.DumpStats{
		Nodes:      st.Nodes,
		Recursions: st.Recursions,
		Limits:     st.Limits,
		Failures:   st.Failures,
		Chunks:     st.Chunks,
		Duration:   st.Duration,
	}
}
