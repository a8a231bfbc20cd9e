package model

import (
	"reflect"
	"slices"
)

// Kind is the type family the router classified a value into.
type Kind int

const (
	KindUnknown Kind = iota
	KindCallable
	KindContainer
	KindObject
	KindHandle
	KindString
	KindFloat
	KindInt
	KindBool
	KindNull

	// Synthetic kinds produced by the engine itself.
	KindRecursion
	KindLimit
	KindFailure
)

var kindNames = [...]string{
	KindUnknown:   "unknown",
	KindCallable:  "callable",
	KindContainer: "container",
	KindObject:    "object",
	KindHandle:    "handle",
	KindString:    "string",
	KindFloat:     "float",
	KindInt:       "int",
	KindBool:      "bool",
	KindNull:      "null",
	KindRecursion: "recursion",
	KindLimit:     "limit",
	KindFailure:   "failure",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// IsComposite reports whether values of this kind are dispatched to an analyzer.
func (k Kind) IsComposite() bool {
	switch k {
	case KindCallable, KindContainer, KindObject, KindHandle:
		return true
	}
	return false
}

// CodegenKind controls how the code generator treats a node.
type CodegenKind int

const (
	// CodegenNormal nodes are reachable with plain expression syntax.
	CodegenNormal CodegenKind = iota
	// CodegenSuppressed nodes cannot be reached from outside the value's
	// package (unexported fields, synthetic nodes). No code is generated for
	// them or for anything below them.
	CodegenSuppressed
	// CodegenSpecial nodes need a multi-step form, e.g. map entries keyed by
	// values that have no literal syntax.
	CodegenSpecial
)

// Model describes one observed value instance in the dump tree.
type Model struct {
	// Data is the observed value. It is borrowed from the host and never
	// mutated.
	Data reflect.Value

	// Name is the display key: an index, field name, map key or method name.
	Name string

	// Kind is the routed type family. Set by the router.
	Kind Kind

	// TypeLabel is the human-readable type, e.g. "map[string]int".
	TypeLabel string

	// Qualifiers are extra annotations contributed by analyzers, such as
	// "unexported" or "getter".
	Qualifiers []string

	// Connector describes how the parent reaches this value.
	Connector Connector

	// DomID is a stable identifier for recursion markers and chunk lookup.
	DomID string

	// Meta holds auxiliary facts. It does not affect traversal.
	Meta *Meta

	// Codegen controls code generation for this node.
	Codegen CodegenKind

	// Code is the generated access expression, empty when absent.
	Code string

	// Deref counts pointer indirections the router stripped from Data.
	Deref int

	// Assert is the dynamic type the router unwrapped from an interface
	// holding Data, empty when Data was not boxed.
	Assert string

	// Level is the composite nesting level of the node (root is 0).
	Level int

	// Seq is a per-dump sequence number, ParentSeq the parent's (0 for root).
	// Renderers that draw graphs use them as node ids.
	Seq       int
	ParentSeq int
}

// New creates a model for v with the given name and connector.
func New(v reflect.Value, name string, c Connector) *Model {
	m := &Model{
		Data:      v,
		Name:      name,
		Connector: c,
		Meta:      NewMeta(),
	}
	if v.IsValid() {
		m.TypeLabel = v.Type().String()
	}
	return m
}

// Placeholder creates a synthetic model with no backing value. Placeholders
// are never reproducible by code.
func Placeholder(name string, kind Kind, label string) *Model {
	return &Model{
		Name:      name,
		Kind:      kind,
		TypeLabel: label,
		Meta:      NewMeta(),
		Codegen:   CodegenSuppressed,
	}
}

// Qualify appends a qualifier and returns m for chaining.
func (m *Model) Qualify(q string) *Model {
	if !slices.Contains(m.Qualifiers, q) {
		m.Qualifiers = append(m.Qualifiers, q)
	}
	return m
}

// HasQualifier reports whether q was attached to m.
func (m *Model) HasQualifier(q string) bool {
	return slices.Contains(m.Qualifiers, q)
}

// Clone returns a shallow copy of m with its own qualifier slice and meta.
// Data still refers to the same host value.
func (m *Model) Clone() *Model {
	c := *m
	c.Qualifiers = slices.Clone(m.Qualifiers)
	c.Meta = m.Meta.Clone()
	c.Connector.Params = slices.Clone(m.Connector.Params)
	return &c
}

// Label returns the type label with qualifiers appended in parentheses style
// used by the text renderers: "int (unexported, inherited from Base)".
func (m *Model) Label() string {
	if len(m.Qualifiers) == 0 {
		return m.TypeLabel
	}
	s := m.TypeLabel
	for i, q := range m.Qualifiers {
		if i == 0 {
			if s != "" {
				s += " "
			}
			s += "(" + q
			continue
		}
		s += ", " + q
	}
	return s + ")"
}
