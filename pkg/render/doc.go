// Package render converts rendered layouts between output formats.
//
// # Overview
//
// Rendering happens in two stages. The [nodelink] subpackage turns a
// layout snapshot into Graphviz DOT with every node pinned at its simulated
// position, and renders that DOT to SVG in-process. This package then
// converts SVG to PDF or PNG with the external rsvg-convert tool (from
// librsvg):
//
//	dot := nodelink.ToDOT(snapshot, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0) // 2x scale
//
// When rsvg-convert is not installed, [ToPDF] and [ToPNG] fail with an
// UNSUPPORTED error that tells the user how to install it.
package render
