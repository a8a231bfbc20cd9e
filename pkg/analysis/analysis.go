package analysis

import (
	"reflect"

	"github.com/matzehuels/spyglass/pkg/config"
	"github.com/matzehuels/spyglass/pkg/model"
)

// Capability is the type family an analyzer handles.
type Capability int

const (
	CapContainer Capability = iota
	CapObject
	CapCallable
	CapHandle
)

func (c Capability) String() string {
	switch c {
	case CapContainer:
		return "container"
	case CapObject:
		return "object"
	case CapCallable:
		return "callable"
	case CapHandle:
		return "handle"
	}
	return "unknown"
}

// ForKind maps a routed kind to the capability that analyzes it.
func ForKind(k model.Kind) (Capability, bool) {
	switch k {
	case model.KindContainer:
		return CapContainer, true
	case model.KindObject:
		return CapObject, true
	case model.KindCallable:
		return CapCallable, true
	case model.KindHandle:
		return CapHandle, true
	}
	return 0, false
}

// Analyzer enumerates the children of one family of composite values.
type Analyzer interface {
	// Name identifies the analyzer. It salts the DOM ids of the nodes it
	// produces.
	Name() string

	// Capability is the family the analyzer belongs to.
	Capability() Capability

	// Accepts reports whether the analyzer can enumerate v. The value has
	// already been unwrapped from pointers and interfaces.
	Accepts(v reflect.Value) bool

	// Children returns the ordered children of m. It may attach metadata
	// and qualifiers to m itself; m is not yet rendered.
	Children(env *Env, m *model.Model) []*model.Model
}

// Env carries the settings analyzers read during one dump.
type Env struct {
	// Getters enables calling Get*/Is*/Has* methods.
	Getters bool

	// Methods enables listing the exported method set.
	Methods bool

	// Unexported includes unexported struct fields.
	Unexported bool

	// MaxChildren caps container entries. Zero means no cap.
	MaxChildren int
}

// NewEnv builds an Env from configuration.
func NewEnv(c config.Analysis) *Env {
	return &Env{
		Getters:     c.Getters,
		Methods:     c.Methods,
		Unexported:  c.Unexported,
		MaxChildren: c.MaxChildren,
	}
}

// Defaults returns the built-in analyzers in registration order.
func Defaults() []Analyzer {
	return []Analyzer{
		NamespaceAnalyzer{},
		ContainerAnalyzer{},
		ObjectAnalyzer{},
		CallableAnalyzer{},
		HandleAnalyzer{},
	}
}

// Table resolves analyzers by capability. Analyzers registered earlier win.
type Table struct {
	byCap map[Capability][]Analyzer
}

// NewTable builds a table from analyzers in priority order.
func NewTable(analyzers ...Analyzer) *Table {
	t := &Table{byCap: make(map[Capability][]Analyzer)}
	for _, a := range analyzers {
		t.byCap[a.Capability()] = append(t.byCap[a.Capability()], a)
	}
	return t
}

// Lookup returns the first analyzer of capability c that accepts v.
func (t *Table) Lookup(c Capability, v reflect.Value) (Analyzer, bool) {
	for _, a := range t.byCap[c] {
		if a.Accepts(v) {
			return a, true
		}
	}
	return nil, false
}

// omitted returns the placeholder summarizing n children cut by MaxChildren.
func omitted(n int) *model.Model {
	p := model.Placeholder("…", model.KindLimit, "omitted")
	p.Meta.Set(model.MetaOmitted, itoa(n))
	p.Meta.Set(model.MetaReason, itoa(n)+" more")
	return p
}

// failure returns a placeholder for a child that could not be read.
func failure(name string, label string, cause any) *model.Model {
	p := model.Placeholder(name, model.KindFailure, label)
	p.Meta.Set(model.MetaFailure, annotate(cause))
	return p
}

// info returns a suppressed descriptive leaf, used for facts that have no
// expression syntax such as parameter types or channel capacity.
func info(name string, v any) *model.Model {
	m := model.New(reflect.ValueOf(v), name, model.Connector{})
	m.Codegen = model.CodegenSuppressed
	return m
}
