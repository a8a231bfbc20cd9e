package analysis

import (
	"reflect"
	"slices"
	"strconv"

	"github.com/matzehuels/spyglass/pkg/model"
)

// ContainerAnalyzer enumerates slices, arrays and maps.
//
// Slices and arrays yield their elements in index order. Maps yield their
// entries sorted by key (see [SortKeys]); keys without literal syntax make
// the entry a special codegen node.
type ContainerAnalyzer struct{}

func (ContainerAnalyzer) Name() string           { return "container" }
func (ContainerAnalyzer) Capability() Capability { return CapContainer }

func (ContainerAnalyzer) Accepts(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

func (a ContainerAnalyzer) Children(env *Env, m *model.Model) []*model.Model {
	v := m.Data
	m.Meta.Set(model.MetaLength, strconv.Itoa(v.Len()))
	if v.Kind() == reflect.Slice {
		m.Meta.Set(model.MetaCap, strconv.Itoa(v.Cap()))
	}
	if v.Kind() == reflect.Map {
		return mapEntries(env, v)
	}

	n, rest := capped(env, v.Len())
	out := make([]*model.Model, 0, n+1)
	for i := range n {
		key := strconv.Itoa(i)
		out = append(out, model.New(v.Index(i), key, model.Index(key)))
	}
	if rest > 0 {
		out = append(out, omitted(rest))
	}
	return out
}

type mapEntry struct {
	key, val reflect.Value
}

// mapEntries walks the map with an iterator rather than MapIndex, so
// entries whose key is not equal to itself (NaN) keep their value.
func mapEntries(env *Env, v reflect.Value) []*model.Model {
	entries := make([]mapEntry, 0, v.Len())
	for it := v.MapRange(); it.Next(); {
		entries = append(entries, mapEntry{it.Key(), it.Value()})
	}
	slices.SortStableFunc(entries, func(a, b mapEntry) int {
		return compareValues(a.key, b.key)
	})

	n, rest := capped(env, len(entries))
	out := make([]*model.Model, 0, n+1)
	for _, e := range entries[:n] {
		name := KeyName(e.key)
		var child *model.Model
		if lit, ok := KeyLiteral(e.key); ok {
			child = model.New(e.val, name, model.Key(lit))
		} else {
			child = model.New(e.val, name, model.Key(name))
			child.Codegen = model.CodegenSpecial
		}
		out = append(out, child)
	}
	if rest > 0 {
		out = append(out, omitted(rest))
	}
	return out
}

// capped splits n entries into the shown count and the omitted rest.
func capped(env *Env, n int) (int, int) {
	if env == nil || env.MaxChildren <= 0 || n <= env.MaxChildren {
		return n, 0
	}
	return env.MaxChildren, n - env.MaxChildren
}
