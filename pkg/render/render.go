package render

import (
	"strings"

	"github.com/matzehuels/spyglass/pkg/model"
)

// Output format names.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
)

// Formats lists the output formats in help order.
var Formats = []string{FormatText, FormatJSON, FormatDOT, FormatSVG}

// Value returns the display value the router attached to a scalar.
func Value(m *model.Model) string {
	v, _ := m.Meta.Get(model.MetaValue)
	return v
}

// summaryKeys are the meta entries shown next to a node's type.
var summaryKeys = []string{
	model.MetaLength,
	model.MetaCap,
	model.MetaRunes,
	model.MetaEncoding,
	model.MetaTruncated,
	model.MetaOmitted,
	model.MetaFunction,
	model.MetaSource,
	model.MetaDirection,
	model.MetaAddress,
}

// Summary returns the notable meta entries of m as "key=value" pairs.
func Summary(m *model.Model) string {
	var parts []string
	for _, k := range summaryKeys {
		if v, ok := m.Meta.Get(k); ok {
			parts = append(parts, k+"="+v)
		}
	}
	return strings.Join(parts, " ")
}

// Reason returns the explanation carried by a placeholder.
func Reason(m *model.Model) string {
	switch m.Kind {
	case model.KindLimit:
		r, _ := m.Meta.Get(model.MetaReason)
		return r
	case model.KindFailure:
		r, _ := m.Meta.Get(model.MetaFailure)
		return r
	}
	return ""
}
