package analysis

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"github.com/matzehuels/spyglass/pkg/errors"
	"github.com/matzehuels/spyglass/pkg/model"
)

// Qualifiers attached by the object analyzer.
const (
	QualUnexported = "unexported"
	QualGetter     = "getter"
	QualMethod     = "method"
	qualInherited  = "inherited from "
)

// ObjectAnalyzer enumerates struct values.
//
// Fields come first, in four groups that each keep declaration order:
// own exported, own unexported, inherited (promoted through embedding)
// exported, inherited unexported. Embedded structs are not listed
// themselves; their promoted fields are. When enabled, getter results
// follow, then the exported method set.
type ObjectAnalyzer struct{}

func (ObjectAnalyzer) Name() string                 { return "object" }
func (ObjectAnalyzer) Capability() Capability       { return CapObject }
func (ObjectAnalyzer) Accepts(v reflect.Value) bool { return v.Kind() == reflect.Struct }

func (a ObjectAnalyzer) Children(env *Env, m *model.Model) []*model.Model {
	if env == nil {
		env = &Env{}
	}
	v := m.Data
	var groups [4][]*model.Model
	for _, f := range reflect.VisibleFields(v.Type()) {
		if f.Anonymous && isStructLike(f.Type) {
			continue
		}
		if !f.IsExported() && !env.Unexported {
			continue
		}
		group := 0
		if !f.IsExported() {
			group = 1
		}
		if len(f.Index) > 1 {
			group += 2
		}
		groups[group] = append(groups[group], fieldChild(v, f))
	}

	var out []*model.Model
	for _, g := range groups {
		out = append(out, g...)
	}
	recv := receiver(v)
	if env.Getters && recv.IsValid() {
		out = append(out, getters(recv)...)
	}
	if env.Methods && recv.IsValid() {
		out = append(out, methods(recv)...)
	}
	return out
}

func fieldChild(v reflect.Value, f reflect.StructField) *model.Model {
	var owner string
	if len(f.Index) > 1 {
		owner = deref(v.Type().FieldByIndex(f.Index[:len(f.Index)-1]).Type).Name()
	}
	fv, err := v.FieldByIndexErr(f.Index)
	var child *model.Model
	if err != nil {
		child = failure(f.Name, f.Type.String(), err)
		child.Connector = model.Field(f.Name)
	} else {
		child = model.New(fv, f.Name, model.Field(f.Name))
	}
	if !f.IsExported() {
		child.Qualify(QualUnexported)
		child.Codegen = model.CodegenSuppressed
	}
	if owner != "" {
		child.Qualify(qualInherited + owner)
	}
	return child
}

func isStructLike(t reflect.Type) bool {
	return deref(t).Kind() == reflect.Struct
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

// receiver returns the value whose method set is listed: the address of v
// when possible, so pointer methods are included. Values read through
// unexported fields cannot be called and yield an invalid receiver.
func receiver(v reflect.Value) reflect.Value {
	if v.CanAddr() {
		v = v.Addr()
	}
	if !v.CanInterface() {
		return reflect.Value{}
	}
	return v
}

// IsGetterName reports whether name looks like an accessor: Get, Is or Has
// followed by an upper-case letter.
func IsGetterName(name string) bool {
	for _, p := range [...]string{"Get", "Is", "Has"} {
		rest, ok := strings.CutPrefix(name, p)
		if ok && rest != "" && rest[0] >= 'A' && rest[0] <= 'Z' {
			return true
		}
	}
	return false
}

func isGetter(name string, t reflect.Type) bool {
	if !IsGetterName(name) || t.NumIn() != 0 {
		return false
	}
	switch t.NumOut() {
	case 1:
		return true
	case 2:
		return t.Out(1) == errorType
	}
	return false
}

func getters(recv reflect.Value) []*model.Model {
	var out []*model.Model
	rt := recv.Type()
	for i := range rt.NumMethod() {
		meth := rt.Method(i)
		mv := recv.Method(i)
		if !isGetter(meth.Name, mv.Type()) {
			continue
		}
		out = append(out, callGetter(meth.Name, mv))
	}
	return out
}

// callGetter invokes a zero-argument getter. A panic or a non-nil error
// becomes a failure placeholder.
func callGetter(name string, mv reflect.Value) (child *model.Model) {
	defer func() {
		if r := recover(); r != nil {
			child = failure(name, mv.Type().Out(0).String(), r)
			child.Connector = model.Method(name)
			child.Qualify(QualGetter)
		}
	}()
	res := mv.Call(nil)
	if len(res) == 2 && !res[1].IsNil() {
		err, _ := res[1].Interface().(error)
		child = failure(name, mv.Type().Out(0).String(), errors.Wrap(errors.ErrCodeIntrospection, err, "%s", name))
		child.Connector = model.Method(name)
		return child.Qualify(QualGetter)
	}
	return model.New(res[0], name, model.Method(name)).Qualify(QualGetter)
}

func methods(recv reflect.Value) []*model.Model {
	rt := recv.Type()
	out := make([]*model.Model, 0, rt.NumMethod())
	for i := range rt.NumMethod() {
		meth := rt.Method(i)
		mv := recv.Method(i)
		child := model.New(mv, meth.Name, model.Method(meth.Name, typeList(mv.Type())...))
		if fn := runtime.FuncForPC(meth.Func.Pointer()); fn != nil {
			file, line := fn.FileLine(fn.Entry())
			child.Meta.Set(model.MetaFunction, fn.Name())
			child.Meta.Set(model.MetaSource, fmt.Sprintf("%s:%d", file, line))
		}
		out = append(out, child.Qualify(QualMethod))
	}
	return out
}
