package analysis

import (
	"reflect"
	"sync"

	"github.com/matzehuels/spyglass/pkg/model"
)

// GlobalsKey is the reserved entry under which every namespace lists itself.
const GlobalsKey = "GLOBALS"

// Namespace is a registry of package-level variables and constants, the
// dumpable analogue of a global symbol table.
//
// A namespace contains itself under [GlobalsKey], so it is self-referential
// by construction. The router renders a namespace once per dump and marks
// every later encounter as a recursion.
type Namespace struct {
	qualifier string

	mu      sync.RWMutex
	entries []nsEntry
}

type nsEntry struct {
	name     string
	value    any
	constant bool
}

// NewNamespace returns a namespace whose entries are reached as
// qualifier.Name in generated code. An empty qualifier leaves names bare.
func NewNamespace(qualifier string) *Namespace {
	ns := &Namespace{qualifier: qualifier}
	ns.entries = append(ns.entries, nsEntry{name: GlobalsKey, value: ns})
	return ns
}

// Var registers a variable. Pass a pointer to the variable so that dumps
// read its current value.
func (ns *Namespace) Var(name string, ptr any) *Namespace {
	ns.add(nsEntry{name: name, value: ptr})
	return ns
}

// Const registers a constant value.
func (ns *Namespace) Const(name string, v any) *Namespace {
	ns.add(nsEntry{name: name, value: v, constant: true})
	return ns
}

func (ns *Namespace) add(e nsEntry) {
	ns.mu.Lock()
	defer ns.mu.Unlock()
	for i := range ns.entries {
		if ns.entries[i].name == e.name {
			ns.entries[i] = e
			return
		}
	}
	ns.entries = append(ns.entries, e)
}

// Len returns the number of registered entries, the self entry included.
func (ns *Namespace) Len() int {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return len(ns.entries)
}

// Qualifier returns the expression prefix of the namespace's entries.
func (ns *Namespace) Qualifier() string { return ns.qualifier }

func (ns *Namespace) snapshot() []nsEntry {
	ns.mu.RLock()
	defer ns.mu.RUnlock()
	return append([]nsEntry(nil), ns.entries...)
}

func (ns *Namespace) qualify(name string) string {
	if ns.qualifier == "" {
		return name
	}
	return ns.qualifier + "." + name
}

var namespaceType = reflect.TypeFor[Namespace]()

// IsNamespace reports whether v is a Namespace after pointer unwrapping.
func IsNamespace(v reflect.Value) bool {
	return v.IsValid() && v.Type() == namespaceType
}

// NamespaceAnalyzer enumerates a [Namespace] in registration order.
// Variables use static connectors and constants use constant connectors, so
// generated code anchors at the qualified name.
type NamespaceAnalyzer struct{}

func (NamespaceAnalyzer) Name() string                 { return "namespace" }
func (NamespaceAnalyzer) Capability() Capability       { return CapContainer }
func (NamespaceAnalyzer) Accepts(v reflect.Value) bool { return IsNamespace(v) }

func (NamespaceAnalyzer) Children(env *Env, m *model.Model) []*model.Model {
	ns, ok := namespaceOf(m.Data)
	if !ok {
		return nil
	}
	entries := ns.snapshot()
	out := make([]*model.Model, 0, len(entries))
	for _, e := range entries {
		if e.name == GlobalsKey && e.value == any(ns) {
			continue
		}
		v := reflect.ValueOf(e.value)
		if e.constant {
			c := model.New(v, e.name, model.Constant(ns.qualify(e.name)))
			out = append(out, c.Qualify("constant"))
			continue
		}
		if v.Kind() == reflect.Pointer && !v.IsNil() {
			v = v.Elem()
		}
		out = append(out, model.New(v, e.name, model.Static(ns.qualify(e.name))).Qualify("variable"))
	}
	m.Meta.Set(model.MetaLength, itoa(len(out)))
	return out
}

func namespaceOf(v reflect.Value) (*Namespace, bool) {
	if !IsNamespace(v) || !v.CanAddr() || !v.CanInterface() {
		return nil, false
	}
	return v.Addr().Interface().(*Namespace), true
}
