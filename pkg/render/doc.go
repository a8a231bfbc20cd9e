// Package render holds the reference renderers of the dump engine and the
// helpers they share.
//
// Three renderers implement [dump.Renderer]:
//
//   - [text]: indented terminal output styled with lipgloss
//   - [jsontree]: a JSON document, one object per node
//   - [dot]: a Graphviz digraph, convertible to SVG with [dot.RenderSVG]
//
// Renderers are stateless so one instance can serve concurrent dumps. They
// receive children already rendered and must treat those fragments as
// opaque: a child may still be a chunk handle that is only expanded once
// the whole dump is assembled.
//
// [dump.Renderer]: github.com/matzehuels/spyglass/pkg/dump.Renderer
// [text]: github.com/matzehuels/spyglass/pkg/render/text
// [jsontree]: github.com/matzehuels/spyglass/pkg/render/jsontree
// [dot]: github.com/matzehuels/spyglass/pkg/render/dot
// [dot.RenderSVG]: github.com/matzehuels/spyglass/pkg/render/dot.RenderSVG
package render
