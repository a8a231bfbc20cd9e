// Package codegen synthesizes Go expressions that reach a dumped node from
// the dump root.
//
// The generator walks the connector chain the router holds while it
// traverses, concatenating each connector's text. Output is advisory: a
// convenience for copy and paste, never code to run automatically.
package codegen

import (
	"fmt"
	"go/token"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/matzehuels/spyglass/pkg/config"
	"github.com/matzehuels/spyglass/pkg/model"
)

// RootFallback anchors expressions whose root name is not a Go identifier.
const RootFallback = "v"

// Ellipsis terminates a truncated parameter list.
const Ellipsis = "…"

// Generator builds access expressions. The zero value generates nothing.
type Generator struct {
	enabled       bool
	maxParamChars int
}

// New returns a generator configured by cfg.
func New(cfg config.Codegen) *Generator {
	return &Generator{enabled: cfg.Enabled, maxParamChars: cfg.MaxParamChars}
}

// Enabled reports whether the generator produces output.
func (g *Generator) Enabled() bool { return g != nil && g.enabled }

// Generate returns the expression reaching the last model of path. path
// runs from the dump root to the node. It reports false when generation is
// disabled, when any node on the path is suppressed, or when a connector has
// no expression form.
func (g *Generator) Generate(path []*model.Model) (string, bool) {
	if !g.Enabled() || len(path) == 0 {
		return "", false
	}
	for _, m := range path {
		if m.Codegen == model.CodegenSuppressed {
			return "", false
		}
	}

	start := 0
	for i := len(path) - 1; i > 0; i-- {
		if path[i].Connector.Type.Anchors() {
			start = i
			break
		}
	}
	expr := anchor(path[start])

	var loops []loop
	for i := start + 1; i < len(path); i++ {
		parent, node := path[i-1], path[i]
		switch node.Connector.Type {
		case model.ConnectorIndex, model.ConnectorKey:
			base := indexBase(expr, parent)
			if node.Codegen == model.CodegenSpecial && node.Connector.Type == model.ConnectorKey {
				l := newLoop(len(loops), base, node.Connector.Key)
				loops = append(loops, l)
				expr = l.value
				continue
			}
			expr = base + g.ConnectorText(node.Connector)
		case model.ConnectorField, model.ConnectorMethod:
			expr = selectorBase(expr, parent) + g.ConnectorText(node.Connector)
		case model.ConnectorStatic, model.ConnectorConstant:
			expr = node.Connector.Key
		default:
			return "", false
		}
	}
	if len(loops) == 0 {
		return expr, true
	}
	return nest(loops, expr), true
}

// ConnectorText returns the text a connector appends to its parent's
// expression.
func (g *Generator) ConnectorText(c model.Connector) string {
	switch c.Type {
	case model.ConnectorIndex, model.ConnectorKey:
		return "[" + c.Key + "]"
	case model.ConnectorField:
		return "." + c.Key
	case model.ConnectorMethod:
		return "." + c.Key + "(" + g.params(c.Params) + ")"
	case model.ConnectorStatic, model.ConnectorConstant:
		return c.Key
	}
	return ""
}

func (g *Generator) params(ps []string) string {
	s := strings.Join(ps, ", ")
	if g.maxParamChars <= 0 || utf8.RuneCountInString(s) <= g.maxParamChars {
		return s
	}
	r := []rune(s)
	return string(r[:g.maxParamChars]) + Ellipsis
}

func anchor(m *model.Model) string {
	if m.Connector.Type.Anchors() {
		return m.Connector.Key
	}
	if m.Name != "_" && token.IsIdentifier(m.Name) {
		return m.Name
	}
	return RootFallback
}

// unbox appends the type assertion for a parent read out of an interface.
func unbox(expr string, parent *model.Model) string {
	if parent.Assert == "" {
		return expr
	}
	return expr + ".(" + parent.Assert + ")"
}

// indexBase prepares expr for an index expression. Pointers to arrays
// index directly; pointers to slices, maps and strings need an explicit
// dereference.
func indexBase(expr string, parent *model.Model) string {
	expr = unbox(expr, parent)
	if parent.Deref == 0 {
		return expr
	}
	if parent.Deref == 1 && parent.Data.IsValid() && parent.Data.Kind() == reflect.Array {
		return expr
	}
	return "(" + strings.Repeat("*", parent.Deref) + expr + ")"
}

// selectorBase prepares expr for a selector. Selectors dereference one
// pointer level implicitly.
func selectorBase(expr string, parent *model.Model) string {
	expr = unbox(expr, parent)
	if parent.Deref <= 1 {
		return expr
	}
	return "(" + strings.Repeat("*", parent.Deref-1) + expr + ")"
}

// loop is one range statement reaching a map entry whose key has no literal
// form.
type loop struct {
	header string
	cond   string
	value  string
}

func newLoop(depth int, over, key string) loop {
	k, x := "k", "x"
	if depth > 0 {
		n := strconv.Itoa(depth + 1)
		k, x = k+n, x+n
	}
	return loop{
		header: fmt.Sprintf("for %s, %s := range %s {", k, x, over),
		cond:   fmt.Sprintf("if fmt.Sprint(%s) == %s {", k, strconv.Quote(key)),
		value:  x,
	}
}

func nest(loops []loop, expr string) string {
	var b strings.Builder
	indent := 0
	line := func(s string) {
		b.WriteString(strings.Repeat("\t", indent))
		b.WriteString(s)
		b.WriteByte('\n')
	}
	for _, l := range loops {
		line(l.header)
		indent++
		line(l.cond)
		indent++
	}
	line("_ = " + expr)
	for range loops {
		indent--
		line("}")
		indent--
		line("}")
	}
	return strings.TrimSuffix(b.String(), "\n")
}
