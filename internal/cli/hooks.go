package cli

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pmwhite/gexf-viewer/pkg/observability"
)

// stepLogInterval is how often OnStep logs; every tick would flood the output.
const stepLogInterval = 100

// logHooks reports observability events as debug logs.
type logHooks struct {
	logger *log.Logger
}

// RegisterHooks installs hooks that log engine, render and stream events
// at debug level. Call it once before running a command.
func (c *CLI) RegisterHooks() {
	h := logHooks{logger: c.Logger}
	observability.SetLayoutHooks(h)
	observability.SetRenderHooks(h)
	observability.SetStreamHooks(h)
}

func (h logHooks) OnLoad(nodes, edges int, d time.Duration, err error) {
	if err != nil {
		h.logger.Debug("load failed", "nodes", nodes, "edges", edges, "duration", d, "error", err)
		return
	}
	h.logger.Debug("load", "nodes", nodes, "edges", edges, "duration", d)
}

func (h logHooks) OnStep(tick int, energy float64, d time.Duration) {
	if tick%stepLogInterval == 0 {
		h.logger.Debug("tick", "tick", tick, "energy", energy, "duration", d)
	}
}

func (h logHooks) OnRenderStart(_ context.Context, format string, nodes int) {
	h.logger.Debug("render start", "format", format, "nodes", nodes)
}

func (h logHooks) OnRenderComplete(_ context.Context, format string, d time.Duration, err error) {
	h.logger.Debug("render done", "format", format, "duration", d, "error", err)
}

func (h logHooks) OnClientConnect(_ context.Context, id string) {
	h.logger.Debug("client connected", "client", id)
}

func (h logHooks) OnClientDisconnect(_ context.Context, id string, frames int) {
	h.logger.Debug("client disconnected", "client", id, "frames", frames)
}

func (h logHooks) OnFrameDropped(_ context.Context, id string, tick int) {
	h.logger.Debug("frame dropped", "client", id, "tick", tick)
}
