package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/matzehuels/spyglass/pkg/dump"
	"github.com/matzehuels/spyglass/pkg/errors"
	"github.com/matzehuels/spyglass/pkg/render"
	"github.com/matzehuels/spyglass/pkg/render/dot"
	"github.com/matzehuels/spyglass/pkg/render/jsontree"
	"github.com/matzehuels/spyglass/pkg/render/text"
)

// renderOpts holds the output flags shared by dump, browse and serve.
type renderOpts struct {
	format   string // output format: text, json, dot, svg
	color    bool   // lipgloss styling for text output
	detailed bool   // DOM ids and meta in diagram labels
	indent   bool   // pretty-print JSON output
}

// validateFormat checks the --format flag.
func validateFormat(f string) error {
	if !slices.Contains(render.Formats, f) {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %s (must be one of %s)", f, strings.Join(render.Formats, ", "))
	}
	return nil
}

// newRenderer returns the renderer producing opts.format. SVG dumps are
// rendered as DOT and laid out afterwards by finishOutput.
func newRenderer(opts renderOpts, code bool) (dump.Renderer, error) {
	switch opts.format {
	case render.FormatText:
		return text.New(text.WithColor(opts.color), text.WithCode(code)), nil
	case render.FormatJSON:
		return jsontree.New(jsontree.WithIndent(opts.indent)), nil
	case render.FormatDOT, render.FormatSVG:
		return dot.New(dot.Options{Detailed: opts.detailed}), nil
	}
	return nil, validateFormat(opts.format)
}

// finishOutput converts an assembled dump into the bytes written for
// format.
func finishOutput(ctx context.Context, format string, res dump.Result) ([]byte, error) {
	if format == render.FormatSVG {
		svg, err := dot.RenderSVG(ctx, res.Output)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "render SVG")
		}
		return svg, nil
	}
	out := res.Output
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return []byte(out), nil
}

// extensions maps formats to output file extensions.
var extensions = map[string]string{
	render.FormatText: "txt",
	render.FormatJSON: "json",
	render.FormatDOT:  "dot",
	render.FormatSVG:  "svg",
}

// outputPath derives the file a dump named name is written to. A single
// dump goes to output itself; several dumps share output as a base path:
// "out.svg" becomes "out_service.svg".
func outputPath(output, format, name string, multiple bool) string {
	if !multiple {
		return output
	}
	base := output
	if ext := filepath.Ext(output); slices.Contains(render.Formats, strings.TrimPrefix(ext, ".")) ||
		ext == "."+extensions[format] {
		base = strings.TrimSuffix(output, ext)
	}
	return fmt.Sprintf("%s_%s.%s", base, name, extensions[format])
}

// openOutput opens path for writing, or stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{stdout}, nil
	}
	if err := errors.ValidateOutputPath(path); err != nil {
		return nil, err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "create %s", dir)
		}
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
