package governor

import (
	"time"

	"github.com/benbjohnson/clock"
)

// DefaultSampleEvery is how many checks share one memory sample.
const DefaultSampleEvery = 64

// HardMaxDepth bounds nesting even when MaxDepth is negative or larger, so
// values that mint fresh identities on every read (getters returning new
// structs) cannot exhaust the goroutine stack.
const HardMaxDepth = 2048

// Reason explains the last negative verdict of CheckContinue.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonDepth
	ReasonTime
	ReasonMemory
)

func (r Reason) String() string {
	switch r {
	case ReasonDepth:
		return "nesting limit"
	case ReasonTime:
		return "time limit"
	case ReasonMemory:
		return "memory limit"
	}
	return "none"
}

// Limits are the ceilings of one dump. Zero values disable the time and
// memory checks; a negative MaxDepth leaves only HardMaxDepth in force.
type Limits struct {
	MaxDepth    int
	MaxDuration time.Duration
	MaxMemory   uint64
	MinHeadroom uint64
	SampleEvery int
}

// Governor tracks elapsed time, memory headroom and nesting for one dump.
// It is not safe for concurrent use; every dump owns its own instance.
type Governor struct {
	limits Limits
	clock  clock.Clock
	probe  MemoryProbe

	start     time.Time
	startHeap uint64

	level  int
	checks int
	heap   uint64
	free   uint64
	reason Reason
}

// Option configures a Governor.
type Option func(*Governor)

// WithClock replaces the wall clock, typically with clock.NewMock() in tests.
func WithClock(c clock.Clock) Option {
	return func(g *Governor) {
		if c != nil {
			g.clock = c
		}
	}
}

// WithProbe replaces the memory probe.
func WithProbe(p MemoryProbe) Option {
	return func(g *Governor) {
		if p != nil {
			g.probe = p
		}
	}
}

// New starts a governor. The start time and heap reading are taken now.
func New(l Limits, opts ...Option) *Governor {
	if l.SampleEvery <= 0 {
		l.SampleEvery = DefaultSampleEvery
	}
	g := &Governor{
		limits: l,
		clock:  clock.New(),
		probe:  RuntimeProbe{},
		level:  -1,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.start = g.clock.Now()
	g.startHeap = g.probe.HeapBytes()
	g.heap = g.startHeap
	g.free = g.probe.FreeBytes()
	return g
}

// EnterLevel opens one composite level and returns it. The root composite
// is level 0.
func (g *Governor) EnterLevel() int {
	g.level++
	return g.level
}

// LeaveLevel closes the innermost level. Extra calls are ignored.
func (g *Governor) LeaveLevel() {
	if g.level >= 0 {
		g.level--
	}
}

// Level returns the innermost open level, -1 when none is open.
func (g *Governor) Level() int {
	return g.level
}

// CheckContinue reports whether the current dispatch may proceed.
func (g *Governor) CheckContinue() bool {
	g.reason = g.verdict()
	return g.reason == ReasonNone
}

// Reason returns why the last CheckContinue returned false.
func (g *Governor) Reason() Reason {
	return g.reason
}

// Elapsed returns the time since the governor started.
func (g *Governor) Elapsed() time.Duration {
	return g.clock.Since(g.start)
}

// HeapGrowth returns the heap growth observed at the last sample.
func (g *Governor) HeapGrowth() uint64 {
	if g.heap < g.startHeap {
		return 0
	}
	return g.heap - g.startHeap
}

func (g *Governor) maxDepth() int {
	if g.limits.MaxDepth < 0 {
		return HardMaxDepth
	}
	return min(g.limits.MaxDepth, HardMaxDepth)
}

func (g *Governor) verdict() Reason {
	if g.level > g.maxDepth() {
		return ReasonDepth
	}
	if g.limits.MaxDuration > 0 && g.Elapsed() > g.limits.MaxDuration {
		return ReasonTime
	}
	if g.limits.MaxMemory == 0 && g.limits.MinHeadroom == 0 {
		return ReasonNone
	}

	g.checks++
	if g.checks%g.limits.SampleEvery == 0 {
		g.heap = g.probe.HeapBytes()
		g.free = g.probe.FreeBytes()
	}

	if g.limits.MaxMemory > 0 && g.HeapGrowth() > g.limits.MaxMemory {
		return ReasonMemory
	}
	if g.limits.MinHeadroom > 0 && g.free < g.limits.MinHeadroom {
		return ReasonMemory
	}
	return ReasonNone
}
