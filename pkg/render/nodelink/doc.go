// Package nodelink renders layout snapshots as node-link diagrams.
//
// # Overview
//
// The simulation decides where every node goes; Graphviz only draws. [ToDOT]
// emits each node with a pinned pos="x,y!" attribute and [RenderSVG] runs
// the neato engine, which keeps pinned nodes in place and routes straight
// edges between them. The y axis is flipped on the way out because Graphviz
// grows upward while layout heights grow downward.
//
// # Usage
//
//	dot := nodelink.ToDOT(engine.Snapshot(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output, use the render functions:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0) // 2x scale
//
// # Options
//
//   - Detailed: labels include the node id and height
//   - Scale: points per layout unit (default 1)
//   - Colors: fill colours cycled by height band
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
