package analysis

import (
	"fmt"
	"reflect"
	"runtime"
	"strconv"

	"github.com/matzehuels/spyglass/pkg/model"
)

// CallableAnalyzer describes function values: the function name and
// declaring position when the runtime knows them, the signature, and one
// descriptive leaf per parameter and result.
type CallableAnalyzer struct{}

func (CallableAnalyzer) Name() string           { return "callable" }
func (CallableAnalyzer) Capability() Capability { return CapCallable }

func (CallableAnalyzer) Accepts(v reflect.Value) bool {
	return v.Kind() == reflect.Func && !v.IsNil()
}

func (CallableAnalyzer) Children(_ *Env, m *model.Model) []*model.Model {
	v := m.Data
	t := v.Type()
	m.Meta.Set(model.MetaSignature, t.String())
	if _, ok := m.Meta.Get(model.MetaSource); !ok {
		if fn := runtime.FuncForPC(v.Pointer()); fn != nil {
			file, line := fn.FileLine(fn.Entry())
			m.Meta.Set(model.MetaFunction, fn.Name())
			m.Meta.Set(model.MetaSource, fmt.Sprintf("%s:%d", file, line))
		}
	}
	if t.IsVariadic() {
		m.Meta.Set(model.MetaVariadic, "true")
	}

	params := typeList(t)
	out := make([]*model.Model, 0, len(params)+t.NumOut())
	for i, p := range params {
		out = append(out, info("param "+strconv.Itoa(i), p).Qualify("parameter"))
	}
	for i := range t.NumOut() {
		out = append(out, info("result "+strconv.Itoa(i), t.Out(i).String()).Qualify("result"))
	}
	return out
}
