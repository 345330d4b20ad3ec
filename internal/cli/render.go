package cli

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	gexfio "github.com/pmwhite/gexf-viewer/pkg/io"
	"github.com/pmwhite/gexf-viewer/pkg/layout"
	"github.com/pmwhite/gexf-viewer/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	output   string   // output file (single format) or base path (multiple)
	formats  []string // output formats: "svg", "png", "pdf", "dot", "json", "gexf"
	ticks    int      // ticks to simulate before rendering
	detailed bool     // add ids and heights to node labels
	scale    float64  // points per layout unit
}

// renderCommand creates the render command, which simulates a layout and
// draws the result with Graphviz using the simulated positions.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		sim        simFlags
		formatsStr string
	)
	opts := renderOpts{ticks: defaultTicks, scale: 1}

	cmd := &cobra.Command{
		Use:   "render [graph.gexf]",
		Short: "Simulate a layout and draw it as SVG, PNG, PDF or DOT",
		Long: `Simulate a layout and draw it as SVG, PNG, PDF or DOT.

Nodes are pinned at their simulated positions and coloured by height. PNG and
PDF output require rsvg-convert on the PATH. Several formats may be given at
once, in which case -o is used as the base path for every file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sim.resolve(cmd)
			if err != nil {
				return err
			}
			opts.formats = parseFormats(formatsStr, "svg")
			if err := validateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], cfg, &opts)
		},
	}

	sim.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json, gexf (comma-separated)")
	cmd.Flags().IntVarP(&opts.ticks, "ticks", "n", opts.ticks, "number of ticks to simulate")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "show node ids and heights in labels")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "points per layout unit")

	return cmd
}

// validFormats is the set of supported render formats.
var validFormats = map[string]bool{"svg": true, "png": true, "pdf": true, "dot": true, "json": true, "gexf": true}

// validateFormats checks that all requested formats are valid.
func validateFormats(formats []string) error {
	for _, f := range formats {
		if !validFormats[f] {
			return fmt.Errorf("invalid format: %s (must be 'svg', 'png', 'pdf', 'dot', 'json', or 'gexf')", f)
		}
	}
	return nil
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if validFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns the file written for format.
func (o *renderOpts) outputPath(input, format string) string {
	if len(o.formats) == 1 && o.output != "" {
		return o.output
	}
	return basePath(o.output, input) + "." + format
}

// runRender simulates input and writes every requested format.
func (c *CLI) runRender(ctx context.Context, input string, cfg layout.Config, opts *renderOpts) error {
	logger := loggerFromContext(ctx)
	logger.Infof("Rendering %s", input)

	e, err := loadEngine(ctx, input, cfg)
	if err != nil {
		return err
	}

	spinner := newSpinner(ctx, fmt.Sprintf("Simulating %d ticks...", opts.ticks))
	spinner.Start()
	if err := simulate(ctx, e, opts.ticks); err != nil {
		spinner.StopWithError("Simulation failed")
		return err
	}

	snap := e.Snapshot()
	dot := nodelink.ToDOT(snap, nodelink.Options{Detailed: opts.detailed, Scale: opts.scale})
	spinner.SetMessage(fmt.Sprintf("Rendering %s...", strings.Join(opts.formats, ", ")))

	var written []string
	for _, format := range opts.formats {
		data, err := renderSnapshot(ctx, snap, dot, format, opts)
		if err != nil {
			spinner.StopWithError("Render failed")
			return fmt.Errorf("%s: %w", format, err)
		}
		logger.Debugf("Generated %s: %d bytes", format, len(data))

		path := opts.outputPath(input, format)
		if err := writeFile(path, data); err != nil {
			spinner.StopWithError("Render failed")
			return err
		}
		written = append(written, path)
	}
	spinner.Stop()

	printSuccess("Render complete")
	for _, path := range written {
		printFile(path)
	}
	printStats(len(snap.Nodes), edgeCount(e), snap.Tick, e.Energy())
	return nil
}

// renderSnapshot encodes snap in a single format. dot is the precomputed
// DOT source shared by the Graphviz formats.
func renderSnapshot(ctx context.Context, snap layout.Snapshot, dot, format string, opts *renderOpts) ([]byte, error) {
	switch format {
	case "dot":
		return []byte(dot), nil
	case "svg":
		return nodelink.RenderSVG(ctx, dot)
	case "pdf":
		return nodelink.RenderPDF(ctx, dot)
	case "png":
		return nodelink.RenderPNG(ctx, dot, 2.0)
	case "json", "gexf":
		var buf bytes.Buffer
		var err error
		if format == "gexf" {
			err = gexfio.WriteGEXF(snap, &buf)
		} else {
			err = gexfio.WriteSnapshot(snap, &buf)
		}
		return buf.Bytes(), err
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

func writeFile(path string, data []byte) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	if _, err := out.Write(data); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}
