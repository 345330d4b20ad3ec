package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	gexfio "github.com/pmwhite/gexf-viewer/pkg/io"
	"github.com/pmwhite/gexf-viewer/pkg/layout"
)

// layoutOpts holds the command-line flags for the layout command.
type layoutOpts struct {
	output string // output file; stdout when empty
	format string // "json" or "gexf"
	ticks  int    // ticks to simulate before writing
	bands  bool   // print a per-height summary
}

// layoutCommand creates the layout command, which runs the simulation
// without a display and writes the final positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var sim simFlags
	opts := layoutOpts{ticks: defaultTicks}

	cmd := &cobra.Command{
		Use:   "layout [graph.gexf]",
		Short: "Simulate a layout and write the final node positions",
		Long: `Simulate a layout and write the final node positions.

The input is a GEXF or JSON graph. The simulation runs for --ticks ticks and
the resulting snapshot is written as JSON (the same document the serve
command streams) or as GEXF with viz:position elements.

Without -o the snapshot is written to stdout.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sim.resolve(cmd)
			if err != nil {
				return err
			}
			opts.format = strings.ToLower(opts.format)
			if opts.format == "" {
				opts.format = formatOf(opts.output, "json")
			}
			if opts.format != "json" && opts.format != "gexf" {
				return fmt.Errorf("invalid format: %s (must be 'json' or 'gexf')", opts.format)
			}
			return c.runLayout(cmd.Context(), args[0], cfg, opts)
		},
	}

	sim.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "", "output format: json (default), gexf")
	cmd.Flags().IntVarP(&opts.ticks, "ticks", "n", opts.ticks, "number of ticks to simulate")
	cmd.Flags().BoolVar(&opts.bands, "bands", false, "print node counts per height band (to stderr when writing to stdout)")

	return cmd
}

// runLayout loads input, simulates it and writes the snapshot.
func (c *CLI) runLayout(ctx context.Context, input string, cfg layout.Config, opts layoutOpts) error {
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

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
	spinner.Stop()
	prog.done(fmt.Sprintf("Simulated %d ticks", opts.ticks))

	snap := e.Snapshot()
	if err := writeSnapshot(snap, opts.format, opts.output); err != nil {
		return err
	}

	// Status lines would interleave with the document on stdout.
	if opts.output == "" {
		if opts.bands {
			printBands(os.Stderr, snap)
		}
		return nil
	}
	printSuccess("Layout complete")
	printFile(opts.output)
	printStats(len(snap.Nodes), edgeCount(e), snap.Tick, e.Energy())
	if opts.bands {
		printBands(os.Stdout, snap)
	}
	return nil
}

// writeSnapshot encodes snap in format to path, or stdout if path is empty.
func writeSnapshot(snap layout.Snapshot, format, path string) error {
	out, err := openOutput(path)
	if err != nil {
		return err
	}
	return encodeSnapshot(out, snap, format, path)
}

// encodeSnapshot writes snap to out and closes it. A close error is
// returned when encoding succeeded.
func encodeSnapshot(out io.WriteCloser, snap layout.Snapshot, format, path string) (err error) {
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", displayPath(path), cerr)
		}
	}()

	switch format {
	case "gexf":
		err = gexfio.WriteGEXF(snap, out)
	default:
		err = gexfio.WriteSnapshot(snap, out)
	}
	if err != nil {
		return fmt.Errorf("write %s: %w", displayPath(path), err)
	}
	return nil
}

// formatOf returns the format implied by the extension of path, or def if
// path has no extension.
func formatOf(path, def string) string {
	switch ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), ".")); ext {
	case "":
		return def
	case "xml":
		return "gexf"
	default:
		return ext
	}
}

func displayPath(path string) string {
	if path == "" {
		return "stdout"
	}
	return path
}
