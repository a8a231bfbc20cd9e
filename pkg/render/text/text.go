// Package text renders dumps as indented, optionally colored, terminal
// text.
//
// Each node takes one line, indented by its nesting level:
//
//	cfg: *main.Config  // cfg
//	  Name: string = "api"  // cfg.Name
//	  Ports: []int (length=2 cap=2)  // cfg.Ports
//	    0: int = 80  // cfg.Ports[0]
//	    1: int = 443  // cfg.Ports[1]
//	  Self: *main.Config ↻ n3f1c2a9b0d11
package text

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/spyglass/pkg/dump"
	"github.com/matzehuels/spyglass/pkg/model"
	"github.com/matzehuels/spyglass/pkg/render"
)

var (
	colorCyan   = lipgloss.Color("36")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	styleName      = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	styleType      = lipgloss.NewStyle().Foreground(colorGray)
	styleValue     = lipgloss.NewStyle().Foreground(colorCyan)
	styleMeta      = lipgloss.NewStyle().Foreground(colorDim)
	styleCode      = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	styleRecursion = lipgloss.NewStyle().Foreground(colorBlue)
	styleLimit     = lipgloss.NewStyle().Foreground(colorYellow)
	styleFailure   = lipgloss.NewStyle().Foreground(colorRed)
)

const (
	iconRecursion = "↻"
	iconLimit     = "⋯"
	iconFailure   = "✗"
)

// Renderer renders text. The zero value renders plain text without codes.
type Renderer struct {
	color  bool
	code   bool
	indent string
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithColor enables lipgloss styling.
func WithColor(on bool) Option {
	return func(r *Renderer) { r.color = on }
}

// WithCode appends generated access expressions as trailing comments.
func WithCode(on bool) Option {
	return func(r *Renderer) { r.code = on }
}

// WithIndent sets the per-level indentation. The default is two spaces.
func WithIndent(s string) Option {
	return func(r *Renderer) { r.indent = s }
}

// New returns a text renderer. Codes are shown and colors are off unless
// configured otherwise.
func New(opts ...Option) *Renderer {
	r := &Renderer{code: true, indent: "  "}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Renderer) paint(s lipgloss.Style, text string) string {
	if !r.color || text == "" {
		return text
	}
	return s.Render(text)
}

// head renders "name: label" at the node's indentation.
func (r *Renderer) head(m *model.Model) string {
	var b strings.Builder
	b.WriteString(strings.Repeat(r.indent, m.Level))
	b.WriteString(r.paint(styleName, m.Name))
	b.WriteString(":")
	if label := m.Label(); label != "" {
		b.WriteString(" ")
		b.WriteString(r.paint(styleType, label))
	}
	return b.String()
}

// tail renders the code comment and terminates the line. Multi-line code
// continues on comment lines below the node.
func (r *Renderer) tail(m *model.Model) string {
	if !r.code || m.Code == "" {
		return "\n"
	}
	lines := strings.Split(m.Code, "\n")
	out := "  " + r.paint(styleCode, "// "+lines[0]) + "\n"
	pad := strings.Repeat(r.indent, m.Level+1)
	for _, l := range lines[1:] {
		out += pad + r.paint(styleCode, "// "+l) + "\n"
	}
	return out
}

// RenderLeaf implements dump.Renderer.
func (r *Renderer) RenderLeaf(m *model.Model) dump.Fragment {
	line := r.head(m)
	switch m.Kind {
	case model.KindLimit:
		line += " " + r.paint(styleLimit, iconLimit+" limit reached ("+render.Reason(m)+")")
	case model.KindFailure:
		line += " " + r.paint(styleFailure, iconFailure+" "+render.Reason(m))
	case model.KindString:
		line += " = " + r.paint(styleValue, strconv.Quote(render.Value(m)))
		if s := render.Summary(m); s != "" {
			line += " " + r.paint(styleMeta, "("+s+")")
		}
	default:
		line += " = " + r.paint(styleValue, render.Value(m))
	}
	return dump.Fragment(line + r.tail(m))
}

// RenderComposite implements dump.Renderer.
func (r *Renderer) RenderComposite(m *model.Model, children []dump.Fragment) dump.Fragment {
	var b strings.Builder
	b.WriteString(r.head(m))
	if s := render.Summary(m); s != "" {
		b.WriteString(" " + r.paint(styleMeta, "("+s+")"))
	}
	b.WriteString(r.tail(m))
	for _, c := range children {
		b.WriteString(string(c))
	}
	return dump.Fragment(b.String())
}

// RenderRecursion implements dump.Renderer.
func (r *Renderer) RenderRecursion(m *model.Model) dump.Fragment {
	target, _ := m.Meta.Get(model.MetaTarget)
	line := r.head(m) + " " + r.paint(styleRecursion, iconRecursion+" "+target)
	return dump.Fragment(line + r.tail(m))
}

var _ dump.Renderer = (*Renderer)(nil)
