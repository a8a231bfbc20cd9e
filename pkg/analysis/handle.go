package analysis

import (
	"fmt"
	"reflect"
	"strconv"

	"github.com/matzehuels/spyglass/pkg/model"
)

// HandleAnalyzer describes opaque handles: channels and unsafe pointers.
// Their contents cannot be enumerated without side effects, so only the
// handle's own properties are listed. Pointers reach it only when a pointer
// chain loops back onto itself.
type HandleAnalyzer struct{}

func (HandleAnalyzer) Name() string           { return "handle" }
func (HandleAnalyzer) Capability() Capability { return CapHandle }

func (HandleAnalyzer) Accepts(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Chan, reflect.UnsafePointer, reflect.Pointer:
		return !v.IsNil()
	}
	return false
}

func (HandleAnalyzer) Children(_ *Env, m *model.Model) []*model.Model {
	v := m.Data
	addr := fmt.Sprintf("%#x", v.Pointer())
	m.Meta.Set(model.MetaAddress, addr)
	if v.Kind() != reflect.Chan {
		return []*model.Model{info("address", addr)}
	}

	t := v.Type()
	m.Meta.Set(model.MetaDirection, t.ChanDir().String())
	m.Meta.Set(model.MetaElem, t.Elem().String())
	m.Meta.Set(model.MetaLength, strconv.Itoa(v.Len()))
	m.Meta.Set(model.MetaCap, strconv.Itoa(v.Cap()))
	return []*model.Model{
		info("direction", t.ChanDir().String()),
		info("elem", t.Elem().String()),
		info("len", v.Len()),
		info("cap", v.Cap()),
	}
}
