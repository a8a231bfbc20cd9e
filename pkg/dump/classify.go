package dump

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/spyglass/pkg/analysis"
	"github.com/matzehuels/spyglass/pkg/cache"
	"github.com/matzehuels/spyglass/pkg/errors"
	"github.com/matzehuels/spyglass/pkg/hive"
	"github.com/matzehuels/spyglass/pkg/model"
)

// domIDLen is the number of hash characters in a DOM id.
const domIDLen = 12

// unwrap strips interfaces and pointers from m.Data, counting pointer
// indirections in m.Deref. For children, the dynamic type of an outermost
// interface is kept in m.Assert. A pointer chain that loops back onto
// itself stops at the repeated pointer.
func unwrap(m *model.Model, child bool) {
	v := m.Data
	var seen map[uintptr]bool
loop:
	for first := true; v.IsValid(); first = false {
		switch v.Kind() {
		case reflect.Interface:
			if v.IsNil() {
				break loop
			}
			if first && child {
				m.Assert = v.Elem().Type().String()
			}
			v = v.Elem()
		case reflect.Pointer:
			if v.IsNil() {
				break loop
			}
			if seen == nil {
				seen = make(map[uintptr]bool)
			}
			if seen[v.Pointer()] {
				break loop
			}
			seen[v.Pointer()] = true
			m.Deref++
			v = v.Elem()
		default:
			break loop
		}
	}
	m.Data = v
	if v.IsValid() {
		m.TypeLabel = strings.Repeat("*", m.Deref) + v.Type().String()
	}
}

// classify returns the kind family of an unwrapped value. The order of
// the tests is significant.
func classify(v reflect.Value) model.Kind {
	if !v.IsValid() {
		return model.KindNull
	}
	k := v.Kind()
	switch {
	case k == reflect.Func:
		if v.IsNil() {
			return model.KindNull
		}
		return model.KindCallable
	case k == reflect.Slice, k == reflect.Array, k == reflect.Map, analysis.IsNamespace(v):
		return model.KindContainer
	case k == reflect.Struct:
		return model.KindObject
	case k == reflect.Chan, k == reflect.UnsafePointer, k == reflect.Pointer:
		if v.IsNil() {
			return model.KindNull
		}
		return model.KindHandle
	case k == reflect.String:
		return model.KindString
	case k == reflect.Float32, k == reflect.Float64, k == reflect.Complex64, k == reflect.Complex128:
		return model.KindFloat
	case k >= reflect.Int && k <= reflect.Uintptr:
		return model.KindInt
	case k == reflect.Bool:
		return model.KindBool
	case k == reflect.Interface:
		return model.KindNull
	}
	return model.KindUnknown
}

// describeScalar attaches the display value and scalar facts to m.
func describeScalar(m *model.Model, maxStringLen int) {
	v := m.Data
	switch m.Kind {
	case model.KindString:
		s := v.String()
		runes := utf8.RuneCountInString(s)
		m.Meta.Set(model.MetaLength, strconv.Itoa(len(s)))
		m.Meta.Set(model.MetaRunes, strconv.Itoa(runes))
		if utf8.ValidString(s) {
			m.Meta.Set(model.MetaEncoding, "utf-8")
		} else {
			m.Meta.Set(model.MetaEncoding, "binary")
		}
		if maxStringLen > 0 && runes > maxStringLen {
			s = string([]rune(s)[:maxStringLen]) + "…"
			m.Meta.Set(model.MetaTruncated, "true")
		}
		m.Meta.Set(model.MetaValue, s)
	case model.KindFloat:
		switch v.Kind() {
		case reflect.Complex64:
			m.Meta.Set(model.MetaValue, strconv.FormatComplex(v.Complex(), 'g', -1, 64))
		case reflect.Complex128:
			m.Meta.Set(model.MetaValue, strconv.FormatComplex(v.Complex(), 'g', -1, 128))
		default:
			m.Meta.Set(model.MetaValue, strconv.FormatFloat(v.Float(), 'g', -1, v.Type().Bits()))
		}
	case model.KindInt:
		if v.CanInt() {
			m.Meta.Set(model.MetaValue, strconv.FormatInt(v.Int(), 10))
		} else {
			m.Meta.Set(model.MetaValue, strconv.FormatUint(v.Uint(), 10))
		}
	case model.KindBool:
		m.Meta.Set(model.MetaValue, strconv.FormatBool(v.Bool()))
	case model.KindNull:
		if m.TypeLabel == "" {
			m.TypeLabel = "nil"
		}
		m.Meta.Set(model.MetaValue, "nil")
	}
}

// identityDomID derives a DOM id from a value's address identity.
func identityDomID(id hive.Identity, salt string) string {
	key := fmt.Sprintf("%s|%x|%d|%s", id.Type, id.Ptr, id.Len, salt)
	return "n" + cache.ShortHash([]byte(key), domIDLen)
}

// childDomID derives a DOM id for values without identity from the
// parent's id and the connector reaching the value.
func childDomID(parent, m *model.Model, salt string) string {
	var base string
	if parent != nil {
		base = parent.DomID
	}
	key := base + "/" + m.Connector.Type.String() + ":" + m.Connector.Key + ":" + m.Name + "|" + salt
	return "n" + cache.ShortHash([]byte(key), domIDLen)
}

func annotation(v any) string { return errors.Annotation(v) }
