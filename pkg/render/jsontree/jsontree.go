// Package jsontree renders dumps as JSON.
//
// Every node becomes an object with its name, kind, type, DOM id, access
// expression and metadata. Scalars carry a typed "value", placeholders a
// "reason", recursion markers a "target" and composites a "children" array:
//
//	{"name":"xs","kind":"container","type":"[]int","id":"n1a2b3c4d5e6f",
//	 "code":"xs","meta":{"length":"1","cap":"1"},
//	 "children":[{"name":"0","kind":"int","type":"int","value":7}]}
package jsontree

import (
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/matzehuels/spyglass/pkg/dump"
	"github.com/matzehuels/spyglass/pkg/model"
	"github.com/matzehuels/spyglass/pkg/render"
)

// Renderer renders JSON. It is stateless and safe for concurrent use.
type Renderer struct {
	indent bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithIndent pretty-prints the finished document.
func WithIndent(on bool) Option {
	return func(r *Renderer) { r.indent = on }
}

// New returns a JSON renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// set applies sjson.Set and keeps doc unchanged when the path is rejected.
func set(doc, path string, v any) string {
	out, err := sjson.Set(doc, path, v)
	if err != nil {
		return doc
	}
	return out
}

func setRaw(doc, path, raw string) string {
	out, err := sjson.SetRaw(doc, path, raw)
	if err != nil {
		return doc
	}
	return out
}

var pathEscaper = strings.NewReplacer(
	`\`, `\\`,
	".", `\.`,
	"*", `\*`,
	"?", `\?`,
	"|", `\|`,
	"#", `\#`,
	"@", `\@`,
)

func (r *Renderer) node(m *model.Model) string {
	doc := "{}"
	doc = set(doc, "name", m.Name)
	doc = set(doc, "kind", m.Kind.String())
	if m.TypeLabel != "" {
		doc = set(doc, "type", m.TypeLabel)
	}
	if len(m.Qualifiers) > 0 {
		doc = set(doc, "qualifiers", m.Qualifiers)
	}
	if m.DomID != "" {
		doc = set(doc, "id", m.DomID)
	}
	if m.Code != "" {
		doc = set(doc, "code", m.Code)
	}
	for _, k := range m.Meta.Keys() {
		if k == model.MetaValue {
			continue
		}
		v, _ := m.Meta.Get(k)
		doc = set(doc, "meta."+pathEscaper.Replace(k), v)
	}
	return doc
}

// RenderLeaf implements dump.Renderer.
func (r *Renderer) RenderLeaf(m *model.Model) dump.Fragment {
	doc := r.node(m)
	v := render.Value(m)
	switch m.Kind {
	case model.KindLimit, model.KindFailure:
		doc = set(doc, "reason", render.Reason(m))
	case model.KindInt, model.KindBool:
		doc = setRaw(doc, "value", v)
	case model.KindFloat:
		if gjson.Valid(v) && gjson.Parse(v).Type == gjson.Number {
			doc = setRaw(doc, "value", v)
		} else {
			doc = set(doc, "value", v)
		}
	case model.KindNull:
		doc = setRaw(doc, "value", "null")
	default:
		doc = set(doc, "value", v)
	}
	return dump.Fragment(doc)
}

// RenderComposite implements dump.Renderer. Children are spliced in raw,
// since they may still be chunk handles. Empty fragments, left by values
// nothing can route, are dropped.
func (r *Renderer) RenderComposite(m *model.Model, children []dump.Fragment) dump.Fragment {
	parts := make([]string, 0, len(children))
	for _, c := range children {
		if c != "" {
			parts = append(parts, string(c))
		}
	}
	return dump.Fragment(setRaw(r.node(m), "children", "["+strings.Join(parts, ",")+"]"))
}

// RenderRecursion implements dump.Renderer.
func (r *Renderer) RenderRecursion(m *model.Model) dump.Fragment {
	target, _ := m.Meta.Get(model.MetaTarget)
	return dump.Fragment(set(r.node(m), "target", target))
}

// Finish implements dump.Finisher.
func (r *Renderer) Finish(_ *model.Model, doc string) string {
	if !r.indent {
		return doc
	}
	return string(pretty.Pretty([]byte(doc)))
}

var (
	_ dump.Renderer = (*Renderer)(nil)
	_ dump.Finisher = (*Renderer)(nil)
)
