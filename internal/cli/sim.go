package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/pmwhite/gexf-viewer/pkg/config"
	"github.com/pmwhite/gexf-viewer/pkg/errors"
	gexfio "github.com/pmwhite/gexf-viewer/pkg/io"
	"github.com/pmwhite/gexf-viewer/pkg/layout"
	"github.com/pmwhite/gexf-viewer/pkg/scheduler"
)

// simFlags holds the flags shared by every command that runs a simulation.
// Flags override values from the --config file only when set explicitly.
type simFlags struct {
	config    string
	seed      uint64
	subSteps  int
	placement string
	direction string
	flatten   bool
}

// register adds the simulation flags to cmd.
func (f *simFlags) register(cmd *cobra.Command) {
	def := layout.DefaultConfig()
	cmd.Flags().StringVarP(&f.config, "config", "c", "", "layout config file (.toml, .yaml or .json)")
	cmd.Flags().Uint64Var(&f.seed, "seed", def.Seed, "random seed for initial placement")
	cmd.Flags().IntVar(&f.subSteps, "substeps", def.SubStepsPerTick, "integration sub-steps per tick")
	cmd.Flags().StringVar(&f.placement, "placement", def.Placement, "initial placement: random, height, parent")
	cmd.Flags().StringVar(&f.direction, "direction", def.HeightDirection, "height follows inward or outward edges")
	cmd.Flags().BoolVar(&f.flatten, "flatten-cycles", def.FlattenCycles, "lay out cyclic graphs on one band instead of failing")
}

// resolve loads the config file and applies explicitly set flags on top.
func (f *simFlags) resolve(cmd *cobra.Command) (layout.Config, error) {
	cfg, err := config.Load(f.config)
	if err != nil {
		return layout.Config{}, err
	}
	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Seed = f.seed
	}
	if flags.Changed("substeps") {
		cfg.SubStepsPerTick = f.subSteps
	}
	if flags.Changed("placement") {
		cfg.Placement = f.placement
	}
	if flags.Changed("direction") {
		cfg.HeightDirection = f.direction
	}
	if flags.Changed("flatten-cycles") {
		cfg.FlattenCycles = f.flatten
	}
	if err := cfg.Validate(); err != nil {
		return layout.Config{}, err
	}
	return cfg, nil
}

// loadEngine imports the graph at path into a new engine and starts it.
func loadEngine(ctx context.Context, path string, cfg layout.Config) (*layout.Engine, error) {
	logger := loggerFromContext(ctx)

	doc, err := gexfio.Import(path)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Read %s: %d nodes, %d edges", path, len(doc.Nodes), len(doc.Edges))

	e, err := layout.New(cfg, layout.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	if err := e.Load(doc.Nodes, doc.Edges); err != nil {
		return nil, err
	}
	if err := e.Start(); err != nil {
		return nil, err
	}
	if err := e.HeightErr(); err != nil {
		printWarning("%s; heights flattened", errors.UserMessage(err))
	}
	return e, nil
}

// simulate advances e by ticks, stopping early if ctx is cancelled.
func simulate(ctx context.Context, e *layout.Engine, ticks int) error {
	for range ticks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

// reloader returns a function that re-imports path into sched and reports
// the result to logger. A failed import leaves the running simulation
// untouched.
func reloader(sched *scheduler.Scheduler, path string, logger *log.Logger) func(context.Context) error {
	return func(context.Context) error {
		doc, err := gexfio.Import(path)
		if err != nil {
			return err
		}
		if err := sched.Load(doc.Nodes, doc.Edges); err != nil {
			return err
		}
		logger.Infof("Reloaded %s: %d nodes, %d edges", path, len(doc.Nodes), len(doc.Edges))
		return nil
	}
}

// nopCloser wraps an io.Writer with a no-op Close method.
type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

// openOutput returns a WriteCloser for the given path.
// If path is empty, it returns os.Stdout wrapped in nopCloser.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

// edgeCount returns the number of edges in the engine's graph.
func edgeCount(e *layout.Engine) int {
	if g := e.Graph(); g != nil {
		return g.EdgeCount()
	}
	return 0
}
