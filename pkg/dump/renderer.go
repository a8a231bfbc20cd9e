package dump

import (
	"github.com/matzehuels/spyglass/pkg/model"
)

// Fragment is rendered output. The engine never inspects it; it may hold
// chunk handles until the dump is assembled.
type Fragment string

// Renderer turns models into fragments. Models are final when passed in
// and must not be modified.
type Renderer interface {
	// RenderLeaf renders scalars and placeholders. Placeholders carry
	// KindLimit or KindFailure and explain themselves in Meta.
	RenderLeaf(m *model.Model) Fragment

	// RenderComposite renders a composite from its already rendered
	// children, in enumeration order.
	RenderComposite(m *model.Model, children []Fragment) Fragment

	// RenderRecursion renders a reference to a value already open on the
	// current path. m.Meta holds the target DOM id under model.MetaTarget.
	RenderRecursion(m *model.Model) Fragment
}

// Finisher is implemented by renderers that wrap the assembled document,
// for example in a document header.
type Finisher interface {
	Finish(root *model.Model, doc string) string
}

// Event identifies a hook point.
type Event int

const (
	// BeforeRoute fires once the router classified a value, before it
	// decides between recursion marker, limit placeholder and dispatch.
	BeforeRoute Event = iota
	// BeforeAnalyze fires before an analyzer enumerates a composite.
	BeforeAnalyze
	// AfterAnalyze fires after enumeration, with metadata the analyzer
	// attached.
	AfterAnalyze
	// AfterRoute fires last, right before the model is rendered.
	AfterRoute
)

func (e Event) String() string {
	switch e {
	case BeforeRoute:
		return "before-route"
	case BeforeAnalyze:
		return "before-analyze"
	case AfterAnalyze:
		return "after-analyze"
	case AfterRoute:
		return "after-route"
	}
	return "unknown"
}

// Hook observes the traversal and may replace the current model. A
// replacement must keep the model's DomID; the engine restores the
// original id otherwise. Returning nil keeps the current model.
type Hook interface {
	Fire(ev Event, m *model.Model) *model.Model
}

// HookFunc adapts a function to the Hook interface.
type HookFunc func(ev Event, m *model.Model) *model.Model

// Fire calls f.
func (f HookFunc) Fire(ev Event, m *model.Model) *model.Model { return f(ev, m) }
