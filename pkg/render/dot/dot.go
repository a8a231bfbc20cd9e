package dot

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/spyglass/pkg/dump"
	"github.com/matzehuels/spyglass/pkg/model"
	"github.com/matzehuels/spyglass/pkg/render"
)

// Options configures diagram rendering.
type Options struct {
	// Detailed adds DOM ids and metadata summaries to node labels.
	// When false, only the name, type and value are shown.
	Detailed bool
}

// Renderer produces DOT fragments. It is stateless and safe for concurrent
// use.
type Renderer struct {
	opts Options
}

// New returns a DOT renderer.
func New(opts ...Options) *Renderer {
	r := &Renderer{}
	if len(opts) > 0 {
		r.opts = opts[0]
	}
	return r
}

func nodeID(seq int) string {
	return "n" + strconv.Itoa(seq)
}

func (r *Renderer) label(m *model.Model, extra string) string {
	parts := []string{m.Name}
	if l := m.Label(); l != "" {
		parts = append(parts, l)
	}
	if extra != "" {
		parts = append(parts, extra)
	}
	if r.opts.Detailed {
		if s := render.Summary(m); s != "" {
			parts = append(parts, s)
		}
		if m.DomID != "" {
			parts = append(parts, "id: "+m.DomID)
		}
	}
	return strings.Join(parts, "\n")
}

func (r *Renderer) node(buf *bytes.Buffer, m *model.Model, label string, attrs ...string) {
	attrs = append([]string{fmt.Sprintf("label=%q", label)}, attrs...)
	fmt.Fprintf(buf, "  %s [%s];\n", nodeID(m.Seq), strings.Join(attrs, ", "))
	if m.ParentSeq > 0 {
		edge := ""
		if m.Kind == model.KindRecursion {
			edge = " [style=dashed]"
		}
		fmt.Fprintf(buf, "  %s -> %s%s;\n", nodeID(m.ParentSeq), nodeID(m.Seq), edge)
	}
}

// RenderLeaf implements dump.Renderer.
func (r *Renderer) RenderLeaf(m *model.Model) dump.Fragment {
	var buf bytes.Buffer
	switch m.Kind {
	case model.KindLimit:
		r.node(&buf, m, r.label(m, "limit reached: "+render.Reason(m)), `style="filled"`, "fillcolor=lightgrey")
	case model.KindFailure:
		r.node(&buf, m, r.label(m, "failed: "+render.Reason(m)), `style="filled"`, "fillcolor=mistyrose")
	case model.KindString:
		r.node(&buf, m, r.label(m, strconv.Quote(render.Value(m))))
	default:
		r.node(&buf, m, r.label(m, render.Value(m)))
	}
	return dump.Fragment(buf.String())
}

// RenderComposite implements dump.Renderer.
func (r *Renderer) RenderComposite(m *model.Model, children []dump.Fragment) dump.Fragment {
	var buf bytes.Buffer
	extra := ""
	if !r.opts.Detailed {
		extra = render.Summary(m)
	}
	r.node(&buf, m, r.label(m, extra), `style="rounded,filled"`, "fillcolor=white")
	for _, c := range children {
		buf.WriteString(string(c))
	}
	return dump.Fragment(buf.String())
}

// RenderRecursion implements dump.Renderer.
func (r *Renderer) RenderRecursion(m *model.Model) dump.Fragment {
	var buf bytes.Buffer
	target, _ := m.Meta.Get(model.MetaTarget)
	r.node(&buf, m, r.label(m, "↻ "+target), `style="rounded,dashed"`, "fontcolor=grey40")
	return dump.Fragment(buf.String())
}

// Finish implements dump.Finisher by wrapping the statements in a digraph.
func (r *Renderer) Finish(_ *model.Model, doc string) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, fontname=\"monospace\", fontsize=12, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.2;\n")
	buf.WriteString("\n")
	buf.WriteString(doc)
	buf.WriteString("}\n")
	return buf.String()
}

var (
	_ dump.Renderer = (*Renderer)(nil)
	_ dump.Finisher = (*Renderer)(nil)
)

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales from the
// origin in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
