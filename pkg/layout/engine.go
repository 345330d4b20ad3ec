package layout

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/pmwhite/gexf-viewer/pkg/errors"
	"github.com/pmwhite/gexf-viewer/pkg/graph"
	"github.com/pmwhite/gexf-viewer/pkg/observability"
	"github.com/pmwhite/gexf-viewer/pkg/physics"
	"github.com/pmwhite/gexf-viewer/pkg/spatial"
)

// State is the lifecycle phase of an Engine.
type State int

const (
	StateUninitialized State = iota
	StateLoaded
	StateRunning
)

func (s State) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateRunning:
		return "running"
	default:
		return "uninitialized"
	}
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for load and step diagnostics.
func WithLogger(l *log.Logger) Option { return func(e *Engine) { e.logger = l } }

// WithPlacer overrides the placement strategy named in the Config.
func WithPlacer(p Placer) Option { return func(e *Engine) { e.placer = p } }

// Engine owns one graph and advances its layout one tick at a time.
//
// An Engine is not safe for concurrent use. Callers that step from one
// goroutine and read from another should go through the scheduler package,
// which serialises access and publishes immutable snapshots.
type Engine struct {
	cfg    Config
	params physics.Params
	dir    graph.Direction
	placer Placer
	logger *log.Logger
	seed   uint64

	g          *graph.Graph
	index      *spatial.Index
	outward    [][]int
	state      State
	generation string
	heightErr  error
	ticks      int
	steps      int
}

// New validates cfg and returns an Engine in the uninitialized state.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	dir, _ := graph.ParseDirection(cfg.HeightDirection)
	e := &Engine{
		cfg:    cfg,
		params: cfg.Params(),
		dir:    dir,
		placer: placers[cfg.Placement],
		seed:   cfg.Seed,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if kick := cfg.MaxKick(); kick >= cfg.CellSize/2 {
		e.logger.Warn("repulsion may keep the layout from settling", "maxKick", kick, "cellSize", cfg.CellSize)
	}
	return e, nil
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config { return e.cfg }

// State returns the current lifecycle phase.
func (e *Engine) State() State { return e.state }

// Graph returns the loaded graph, or nil before the first successful load.
// Callers must treat it as read-only.
func (e *Engine) Graph() *graph.Graph { return e.g }

// Generation identifies the current load. It changes on every successful
// Load so that consumers can tell a reload from a continuing simulation.
func (e *Engine) Generation() string { return e.generation }

// Tick returns the number of ticks stepped since the last Start.
func (e *Engine) Tick() int { return e.ticks }

// HeightErr returns the cycle error that was flattened during the last load,
// or nil when heights were computed normally.
func (e *Engine) HeightErr() error { return e.heightErr }

// Seed returns the seed the next Start will place nodes with.
func (e *Engine) Seed() uint64 { return e.seed }

// Reseed changes the placement seed used by subsequent Start calls.
func (e *Engine) Reseed(seed uint64) { e.seed = seed }

// Load builds a graph from the descriptors and computes node heights. On
// success the new graph replaces any previous one and the engine enters the
// loaded state. On failure the engine is left exactly as it was.
func (e *Engine) Load(nodes []graph.NodeDescriptor, edges []graph.EdgeDescriptor) (err error) {
	start := time.Now()
	defer func() {
		observability.Layout().OnLoad(len(nodes), len(edges), time.Since(start), err)
	}()

	g, err := graph.Load(nodes, edges)
	if err != nil {
		e.logger.Debug("load rejected", "nodes", len(nodes), "edges", len(edges), "error", err)
		return err
	}

	var heightErr error
	if err := graph.ComputeHeights(g, e.dir); err != nil {
		if !e.cfg.FlattenCycles || !errors.Is(err, errors.ErrCodeCyclicGraph) {
			e.logger.Debug("height computation failed", "error", err)
			return err
		}
		graph.Flatten(g)
		heightErr = err
		e.logger.Warn("graph has a cycle, heights flattened", "error", err)
	}

	outward := make([][]int, g.NodeCount())
	for i, n := range g.Nodes() {
		outward[i] = n.OutwardIDs()
	}

	e.g = g
	e.index = spatial.New(e.cfg.CellSize, e.cfg.CellCapacity)
	e.outward = outward
	e.heightErr = heightErr
	e.generation = uuid.NewString()
	e.state = StateLoaded
	e.ticks, e.steps = 0, 0

	e.logger.Debug("graph loaded",
		"nodes", g.NodeCount(),
		"edges", g.EdgeCount(),
		"max_height", graph.MaxHeight(g),
		"generation", e.generation)
	return nil
}

// Start assigns initial positions from the engine seed, zeroes velocities and
// enters the running state. Calling Start while running restarts the layout
// from a fresh placement.
func (e *Engine) Start() error {
	if e.state == StateUninitialized {
		return errors.New(errors.ErrCodeInvalidState, "start called before a graph was loaded")
	}
	rng := newRand(e.seed)
	for _, n := range e.g.Nodes() {
		n.Velocity = zero
		n.Force = zero
	}
	e.placer(e.g, rng, e.cfg)
	separateCoincident(e.g, rng, e.cfg.MinClampDistance)

	e.state = StateRunning
	e.ticks, e.steps = 0, 0
	e.logger.Debug("layout started", "seed", e.seed, "placement", e.cfg.Placement)
	return nil
}

// Step advances the simulation by one tick of SubStepsPerTick sub-steps.
// It does nothing before a graph is loaded and fails if the graph is loaded
// but Start has not been called.
func (e *Engine) Step() error {
	switch e.state {
	case StateUninitialized:
		return nil
	case StateLoaded:
		return errors.New(errors.ErrCodeInvalidState, "step called before start")
	}
	nodes := e.g.Nodes()
	if len(nodes) == 0 {
		return nil
	}

	start := time.Now()
	for range e.cfg.SubStepsPerTick {
		e.index.Rebuild(nodes)
		physics.Accumulate(nodes, e.index, e.params)
		physics.Integrate(nodes, e.cfg.Damping)
		e.steps++
	}
	e.ticks++

	if dropped := e.index.Dropped(); dropped > 0 {
		e.logger.Debug("spatial cells over capacity", "tick", e.ticks, "dropped", dropped)
	}
	observability.Layout().OnStep(e.ticks, physics.KineticEnergy(nodes), time.Since(start))
	return nil
}

// Run steps the engine n times, stopping at the first error.
func (e *Engine) Run(n int) error {
	for range n {
		if err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Reset discards the graph and returns the engine to the uninitialized
// state. The placement seed is kept.
func (e *Engine) Reset() {
	e.g = nil
	e.index = nil
	e.outward = nil
	e.heightErr = nil
	e.generation = ""
	e.state = StateUninitialized
	e.ticks, e.steps = 0, 0
}

// Energy returns the total kinetic energy of the loaded graph.
func (e *Engine) Energy() float64 {
	if e.g == nil {
		return 0
	}
	return physics.KineticEnergy(e.g.Nodes())
}

// Stats summarises the engine for status displays and the stats endpoint.
type Stats struct {
	State      string  `json:"state"`
	Generation string  `json:"generation,omitempty"`
	Seed       uint64  `json:"seed"`
	Tick       int     `json:"tick"`
	SubSteps   int     `json:"subSteps"`
	Nodes      int     `json:"nodes"`
	Edges      int     `json:"edges"`
	MaxHeight  int     `json:"maxHeight"`
	Energy     float64 `json:"energy"`
	MaxSpeed   float64 `json:"maxSpeed"`
	Cells      int     `json:"cells"`
	Dropped    int     `json:"dropped"`
	Flattened  bool    `json:"flattened,omitempty"`
}

// Stats returns a summary of the current state.
func (e *Engine) Stats() Stats {
	s := Stats{
		State:      e.state.String(),
		Generation: e.generation,
		Seed:       e.seed,
		Tick:       e.ticks,
		SubSteps:   e.steps,
		Flattened:  e.heightErr != nil,
	}
	if e.g == nil {
		return s
	}
	nodes := e.g.Nodes()
	s.Nodes = e.g.NodeCount()
	s.Edges = e.g.EdgeCount()
	s.MaxHeight = graph.MaxHeight(e.g)
	s.Energy = physics.KineticEnergy(nodes)
	s.MaxSpeed = physics.MaxSpeed(nodes)
	s.Cells = e.index.Occupied()
	s.Dropped = e.index.Dropped()
	return s
}
