package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-graphviz"

	"github.com/pmwhite/gexf-viewer/pkg/layout"
	"github.com/pmwhite/gexf-viewer/pkg/observability"
	"github.com/pmwhite/gexf-viewer/pkg/render"
)

// DefaultColors are the height band fills used when Options.Colors is empty.
var DefaultColors = []string{"#dbeafe", "#dcfce7", "#fef9c3", "#fee2e2", "#f3e8ff", "#ffedd5"}

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the node id and height to each label.
	Detailed bool

	// Scale is the number of points per layout unit. Zero means 1.
	Scale float64

	// Colors are fill colours indexed by height modulo their count.
	Colors []string
}

// ToDOT converts a snapshot to Graphviz DOT with every node pinned at its
// layout position. The result can be rendered with [RenderSVG],
// [RenderPDF] or [RenderPNG].
func ToDOT(s layout.Snapshot, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}
	colors := opts.Colors
	if len(colors) == 0 {
		colors = DefaultColors
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  notranslate=true;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontsize=14, margin=\"0.1,0.05\"];\n")
	buf.WriteString("  edge [arrowsize=0.6, color=\"#64748b\"];\n")
	buf.WriteString("\n")

	for _, n := range s.Nodes {
		attrs := []string{
			fmt.Sprintf("label=%q", fmtLabel(n, opts.Detailed)),
			fmt.Sprintf("pos=\"%s,%s!\"", fmtCoord(n.Position.X*scale), fmtCoord(-n.Position.Y*scale)),
			fmt.Sprintf("fillcolor=%q", colors[n.Height%len(colors)]),
		}
		fmt.Fprintf(&buf, "  %d [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, n := range s.Nodes {
		for _, target := range n.Outward {
			fmt.Fprintf(&buf, "  %d -> %d;\n", n.ID, target)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n layout.NodeState, detailed bool) string {
	if !detailed {
		return n.Label
	}
	return fmt.Sprintf("%s\nid: %d\nheight: %d", n.Label, n.ID, n.Height)
}

func fmtCoord(v float64) string {
	if v == 0 {
		v = 0 // drop the sign of -0
	}
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// RenderSVG renders DOT produced by [ToDOT] to SVG using the neato engine.
// Returns the SVG bytes ready for display or further conversion with
// [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) (svg []byte, err error) {
	start := time.Now()
	observability.Render().OnRenderStart(ctx, "svg", strings.Count(dot, "pos="))
	defer func() {
		observability.Render().OnRenderComplete(ctx, "svg", time.Since(start), err)
	}()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

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
	viewBoxRe = regexp.MustCompile(`viewBox="(-?[0-9.]+)\s+(-?[0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's fixed-unit svg element with one
// that scales to its container.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="%s %s %.2f %.2f" width="%.0f" height="%.0f">`,
		match[1], match[2], w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders DOT as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders DOT as PNG via SVG conversion at the given scale.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
