package analysis

import (
	"reflect"
	"strconv"

	"github.com/matzehuels/spyglass/pkg/errors"
)

var errorType = reflect.TypeFor[error]()

func itoa(n int) string { return strconv.Itoa(n) }

func annotate(cause any) string { return errors.Annotation(cause) }

// typeList renders the parameter types of a function type, marking the
// variadic parameter with "...".
func typeList(t reflect.Type) []string {
	params := make([]string, t.NumIn())
	for i := range params {
		in := t.In(i)
		if t.IsVariadic() && i == t.NumIn()-1 {
			params[i] = "..." + in.Elem().String()
			continue
		}
		params[i] = in.String()
	}
	return params
}
