package dump

import (
	"context"
	"strconv"

	"github.com/matzehuels/spyglass/pkg/analysis"
	"github.com/matzehuels/spyglass/pkg/chunk"
	"github.com/matzehuels/spyglass/pkg/governor"
	"github.com/matzehuels/spyglass/pkg/hive"
	"github.com/matzehuels/spyglass/pkg/model"
	"github.com/matzehuels/spyglass/pkg/observability"
)

// session is the analysis context of one dump. Nothing in it is shared
// with other dumps.
type session struct {
	ctx   context.Context
	d     *Dumper
	gov   *governor.Governor
	hive  *hive.Hive
	store *chunk.Store
	env   *analysis.Env

	// path is the chain from the root to the node being routed. It is the
	// only place parent links exist.
	path []*model.Model

	seq   int
	stats Stats
}

// route classifies m, applies the governor and hive checks and renders it.
func (s *session) route(m *model.Model) Fragment {
	s.seq++
	m.Seq = s.seq
	m.Level = len(s.path)
	var parent *model.Model
	if len(s.path) > 0 {
		parent = s.path[len(s.path)-1]
		m.ParentSeq = parent.Seq
	}
	s.path = append(s.path, m)
	defer func() { s.path = s.path[:len(s.path)-1] }()
	s.stats.Nodes++

	if isSynthetic(m) {
		m.DomID = childDomID(parent, m, m.Kind.String())
		return s.placeholder(m)
	}

	a, salt := s.classify(m, parent != nil)
	id, hasID := hive.Of(m.Data)
	if hasID {
		m.DomID = identityDomID(id, salt)
	} else {
		m.DomID = childDomID(parent, m, salt)
	}
	if r := s.fire(BeforeRoute, m); r != m {
		// A replacement is routed as what it now holds, under the
		// original DOM id.
		m = r
		if isSynthetic(m) {
			return s.placeholder(m)
		}
		a, _ = s.classify(m, parent != nil)
		id, hasID = hive.Of(m.Data)
	}

	switch {
	case m.Kind == model.KindUnknown:
		s.d.logger.Debug("unroutable value", "name", m.Name, "type", m.TypeLabel)
		return ""
	case !m.Kind.IsComposite():
		return s.leaf(m)
	case a == nil:
		// A composite no analyzer accepts renders as an empty composite.
		return s.composite(m, nil)
	}

	if hasID && s.hive.IsOpen(id) {
		return s.recursion(m, id)
	}

	level := s.gov.EnterLevel()
	defer s.gov.LeaveLevel()
	if hasID {
		if analysis.IsNamespace(m.Data) {
			s.hive.MarkPermanent(id, m.DomID)
		} else {
			s.hive.MarkOpen(id, m.DomID)
		}
		defer s.hive.MarkClosed(id)
	}
	if !s.gov.CheckContinue() {
		return s.limit(m, level)
	}

	m = s.fire(BeforeAnalyze, m)
	children := s.enumerate(a, m)
	m = s.fire(AfterAnalyze, m)
	return s.composite(m, children)
}

// classify unwraps m, sets its kind and picks the analyzer for it. The salt
// distinguishes DOM ids of different views of the same identity.
func (s *session) classify(m *model.Model, child bool) (analysis.Analyzer, string) {
	unwrap(m, child)
	m.Kind = classify(m.Data)
	salt := m.Kind.String()
	c, ok := analysis.ForKind(m.Kind)
	if !ok {
		return nil, salt
	}
	a, ok := s.d.table.Lookup(c, m.Data)
	if !ok {
		return nil, salt
	}
	return a, a.Name()
}

// composite renders m from its routed children and moves the result into
// the chunk store.
func (s *session) composite(m *model.Model, children []*model.Model) Fragment {
	s.generate(m)
	frags := make([]Fragment, 0, len(children))
	for _, c := range children {
		frags = append(frags, s.route(c))
	}
	m = s.fire(AfterRoute, m)
	frag := s.d.renderer.RenderComposite(m, frags)

	handle, err := s.store.Put(m.DomID+"."+strconv.Itoa(m.Seq), string(frag))
	if err != nil {
		s.d.logger.Debug("chunk not stored", "dom", m.DomID, "err", err)
		return frag
	}
	return Fragment(handle)
}

func (s *session) leaf(m *model.Model) Fragment {
	if !s.gov.CheckContinue() {
		return s.limit(m, s.gov.Level())
	}
	describeScalar(m, s.d.cfg.Analysis.MaxStringLen)
	s.generate(m)
	m = s.fire(AfterRoute, m)
	return s.d.renderer.RenderLeaf(m)
}

func (s *session) recursion(m *model.Model, id hive.Identity) Fragment {
	target := s.hive.DomID(id)
	m.DomID = target
	m.Kind = model.KindRecursion
	m.Meta.Set(model.MetaTarget, target)
	s.generate(m)
	s.stats.Recursions++
	observability.Dump().OnRecursion(s.ctx, s.store.DumpID(), target)
	m = s.fire(AfterRoute, m)
	return s.d.renderer.RenderRecursion(m)
}

// limit replaces m by a "limit reached" placeholder.
func (s *session) limit(m *model.Model, level int) Fragment {
	reason := s.gov.Reason().String()
	p := model.Placeholder(m.Name, model.KindLimit, m.TypeLabel)
	p.Connector = m.Connector
	p.DomID = m.DomID
	p.Level, p.Seq, p.ParentSeq = m.Level, m.Seq, m.ParentSeq
	p.Meta.Set(model.MetaReason, reason)
	s.path[len(s.path)-1] = p
	observability.Dump().OnLimitReached(s.ctx, s.store.DumpID(), reason, level)
	return s.placeholder(p)
}

// placeholder renders a synthetic node produced by an analyzer or the
// governor.
func (s *session) placeholder(m *model.Model) Fragment {
	switch m.Kind {
	case model.KindLimit:
		s.stats.Limits++
	case model.KindFailure:
		s.stats.Failures++
	}
	m = s.fire(AfterRoute, m)
	return s.d.renderer.RenderLeaf(m)
}

// enumerate runs the analyzer. A panicking analyzer yields the children
// it produced so far plus a failure placeholder.
func (s *session) enumerate(a analysis.Analyzer, m *model.Model) (children []*model.Model) {
	defer func() {
		if r := recover(); r != nil {
			s.d.logger.Debug("analyzer failed", "analyzer", a.Name(), "name", m.Name, "panic", r)
			p := model.Placeholder(a.Name(), model.KindFailure, m.TypeLabel)
			p.Meta.Set(model.MetaFailure, annotation(r))
			children = append(children, p)
		}
	}()
	return a.Children(s.env, m)
}

func (s *session) generate(m *model.Model) {
	if code, ok := s.d.generator.Generate(s.path); ok {
		m.Code = code
	}
}

// fire runs the hooks for ev. Replacements keep the DOM id of the model
// they replace.
func (s *session) fire(ev Event, m *model.Model) *model.Model {
	for _, h := range s.d.hooks {
		r := h.Fire(ev, m)
		if r == nil || r == m {
			continue
		}
		if r.DomID != m.DomID {
			s.d.logger.Debug("hook changed dom id, restoring", "event", ev, "name", m.Name)
			r.DomID = m.DomID
		}
		m = r
		s.path[len(s.path)-1] = m
	}
	return m
}

func (s *session) close() {
	s.stats.Chunks = s.store.Len()
	s.stats.Degraded = s.store.Failed()
	if err := s.store.Close(); err != nil {
		s.d.logger.Debug("chunk store close", "err", err)
	}
}

func (s *session) finishStats() Stats {
	st := s.stats
	st.Duration = s.gov.Elapsed()
	return st
}

func isSynthetic(m *model.Model) bool {
	return !m.Data.IsValid() && m.Kind != model.KindUnknown
}
