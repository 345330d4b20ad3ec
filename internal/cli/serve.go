package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pmwhite/gexf-viewer/pkg/layout"
	"github.com/pmwhite/gexf-viewer/pkg/live"
	"github.com/pmwhite/gexf-viewer/pkg/scheduler"
	"github.com/pmwhite/gexf-viewer/pkg/watch"
)

const (
	defaultAddr     = "localhost:8080"
	shutdownTimeout = 5 * time.Second
)

// serveOpts holds the command-line flags for the serve command.
type serveOpts struct {
	addr  string
	fps   int
	watch bool
}

// serveCommand creates the serve command, which streams the layout to
// browsers.
func (c *CLI) serveCommand() *cobra.Command {
	var sim simFlags
	opts := serveOpts{addr: defaultAddr, fps: scheduler.DefaultFPS}

	cmd := &cobra.Command{
		Use:   "serve [graph.gexf]",
		Short: "Stream the layout to a browser",
		Long: `Stream the layout to a browser.

Serves a viewer at / that draws every frame pushed over /ws. The JSON API
under /api exposes the latest snapshot and statistics and accepts pause,
resume, restart and reload commands. With --watch the graph is reloaded
whenever the input file changes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := sim.resolve(cmd)
			if err != nil {
				return err
			}
			return c.runServe(cmd.Context(), args[0], cfg, opts)
		},
	}

	sim.register(cmd)
	cmd.Flags().StringVarP(&opts.addr, "addr", "a", opts.addr, "listen address")
	cmd.Flags().IntVar(&opts.fps, "fps", opts.fps, "frames per second")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "reload when the input file changes")

	return cmd
}

// runServe runs the scheduler, HTTP server and optional watcher until ctx
// is cancelled or one of them fails.
func (c *CLI) runServe(ctx context.Context, input string, cfg layout.Config, opts serveOpts) error {
	logger := loggerFromContext(ctx)

	e, err := loadEngine(ctx, input, cfg)
	if err != nil {
		return err
	}
	sched := scheduler.New(e, scheduler.WithFPS(opts.fps), scheduler.WithLogger(logger))
	reload := reloader(sched, input, logger)

	srv := live.New(sched, live.WithLogger(logger), live.WithReloader(reload))
	sched.Subscribe(srv.Publish)

	httpSrv := &http.Server{
		Addr:              opts.addr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return sched.Run(ctx)
	})
	g.Go(func() error {
		logger.Infof("Serving %s on http://%s", input, opts.addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		srv.Close()
		return httpSrv.Shutdown(shutdownCtx)
	})
	if opts.watch {
		g.Go(func() error {
			w := watch.New(input, watch.WithLogger(logger))
			return w.Run(ctx, func() {
				if err := reload(ctx); err != nil {
					logger.Warn("reload failed", "error", err)
				}
			})
		})
	}

	return g.Wait()
}
