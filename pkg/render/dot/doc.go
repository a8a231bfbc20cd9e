// Package dot renders dumps as Graphviz node-link diagrams.
//
// Every routed node becomes a DOT node named after its sequence number, with
// an edge from its parent. Composites are drawn as rounded boxes, scalars as
// plain boxes, placeholders filled grey and recursion markers dashed, labelled
// with the DOM id of the value they point back to.
//
// The fragments are plain DOT statements, so the renderer keeps no state
// between calls and chunked fragments can be spliced back in any order. The
// [Renderer.Finish] step wraps them in a digraph.
//
// # SVG
//
// [RenderSVG] lays out a DOT document with the embedded Graphviz build:
//
//	d, _ := dump.New(cfg, dot.New())
//	res := d.Analyze(ctx, v, "v")
//	svg, err := dot.RenderSVG(ctx, res.Output)
package dot
