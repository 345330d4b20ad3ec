// Package scheduler drives a layout engine at a fixed frame rate.
//
// A [Scheduler] is the only goroutine-safe way to share a [layout.Engine].
// Every engine call goes through its mutex, and each completed tick
// publishes an immutable [layout.Snapshot] that readers fetch with
// [Scheduler.Latest] without blocking the simulation.
//
// Frames are produced either by [Scheduler.Run], which ticks on a timer
// until its context is cancelled, or by calling [Scheduler.Tick] from an
// existing event loop such as a terminal UI.
package scheduler

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/pmwhite/gexf-viewer/pkg/graph"
	"github.com/pmwhite/gexf-viewer/pkg/layout"
)

// DefaultFPS is the frame rate used when no interval is configured.
const DefaultFPS = 30

// FrameHandler receives every published snapshot. It runs on the goroutine
// that produced the frame, must not block and must not call back into the
// Scheduler other than through Latest.
type FrameHandler func(layout.Snapshot)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithInterval sets the time between ticks in Run.
func WithInterval(d time.Duration) Option { return func(s *Scheduler) { s.interval = d } }

// WithFPS sets the tick rate in frames per second.
func WithFPS(fps int) Option {
	return func(s *Scheduler) {
		if fps > 0 {
			s.interval = time.Second / time.Duration(fps)
		}
	}
}

// WithLogger sets the logger for tick failures and state changes.
func WithLogger(l *log.Logger) Option { return func(s *Scheduler) { s.logger = l } }

// WithFrameHandler registers a handler called after each published frame.
func WithFrameHandler(h FrameHandler) Option {
	return func(s *Scheduler) { s.handlers = append(s.handlers, h) }
}

// Scheduler serialises access to an Engine and ticks it.
type Scheduler struct {
	interval time.Duration
	logger   *log.Logger
	handlers []FrameHandler

	mu     sync.Mutex
	engine *layout.Engine
	paused bool
	frames int

	// pubMu is taken before mu is released so frames publish in step order.
	pubMu  sync.Mutex
	latest atomic.Pointer[layout.Snapshot]
}

// New wraps e. The scheduler takes ownership: callers must not use e
// directly afterwards.
func New(e *layout.Engine, opts ...Option) *Scheduler {
	s := &Scheduler{
		interval: time.Second / DefaultFPS,
		engine:   e,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	snap := e.Snapshot()
	s.latest.Store(&snap)
	return s
}

// Interval returns the time between ticks in Run.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Run ticks the engine every interval until ctx is cancelled. It returns
// ctx.Err().
func (s *Scheduler) Run(ctx context.Context) error {
	t := time.NewTicker(s.interval)
	defer t.Stop()
	s.logger.Debug("scheduler started", "interval", s.interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Debug("scheduler stopped", "frames", s.Frames())
			return ctx.Err()
		case <-t.C:
			s.Tick()
		}
	}
}

// Tick advances the engine by one tick unless paused and publishes the
// resulting snapshot. It reports whether a step was taken.
func (s *Scheduler) Tick() bool {
	s.mu.Lock()
	if s.paused || s.engine.State() != layout.StateRunning {
		s.mu.Unlock()
		return false
	}
	if err := s.engine.Step(); err != nil {
		s.mu.Unlock()
		s.logger.Warn("step failed", "error", err)
		return false
	}
	s.frames++
	s.publishLocked(s.engine.Snapshot())
	return true
}

// Do runs fn with exclusive access to the engine and publishes a fresh
// snapshot afterwards, whether or not fn fails.
func (s *Scheduler) Do(fn func(*layout.Engine) error) error {
	s.mu.Lock()
	err := fn(s.engine)
	s.publishLocked(s.engine.Snapshot())
	return err
}

// Load replaces the graph and restarts the layout. On failure the previous
// graph keeps running.
func (s *Scheduler) Load(nodes []graph.NodeDescriptor, edges []graph.EdgeDescriptor) error {
	return s.Do(func(e *layout.Engine) error {
		if err := e.Load(nodes, edges); err != nil {
			return err
		}
		return e.Start()
	})
}

// Restart re-places the current graph with seed and resumes ticking.
func (s *Scheduler) Restart(seed uint64) error {
	return s.Do(func(e *layout.Engine) error {
		e.Reseed(seed)
		return e.Start()
	})
}

// Pause stops Tick from stepping. No step starts after Pause returns.
func (s *Scheduler) Pause() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.paused {
		s.paused = true
		s.logger.Debug("simulation paused")
	}
}

// Resume undoes Pause. Simulation state is kept across the pause.
func (s *Scheduler) Resume() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.paused {
		s.paused = false
		s.logger.Debug("simulation resumed")
	}
}

// Toggle flips between paused and running and returns the new paused state.
func (s *Scheduler) Toggle() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.paused = !s.paused
	return s.paused
}

// Paused reports whether ticking is suspended.
func (s *Scheduler) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

// Frames returns the number of ticks stepped by this scheduler.
func (s *Scheduler) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Stats returns the engine statistics.
func (s *Scheduler) Stats() layout.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Stats()
}

// Subscribe adds h to the handlers called after each published frame.
func (s *Scheduler) Subscribe(h FrameHandler) {
	s.pubMu.Lock()
	defer s.pubMu.Unlock()
	s.handlers = append(s.handlers, h)
}

// Latest returns the most recently published snapshot without blocking.
func (s *Scheduler) Latest() layout.Snapshot { return *s.latest.Load() }

// publishLocked releases mu and hands snap to readers and handlers.
func (s *Scheduler) publishLocked(snap layout.Snapshot) {
	s.pubMu.Lock()
	s.mu.Unlock()
	defer s.pubMu.Unlock()

	s.latest.Store(&snap)
	for _, h := range s.handlers {
		h(snap)
	}
}
