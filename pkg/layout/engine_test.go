package layout

import (
	"bytes"
	"math"
	"math/rand/v2"
	"reflect"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/pmwhite/gexf-viewer/pkg/errors"
	"github.com/pmwhite/gexf-viewer/pkg/geom"
	"github.com/pmwhite/gexf-viewer/pkg/graph"
)

func diamond() ([]graph.NodeDescriptor, []graph.EdgeDescriptor) {
	nodes := []graph.NodeDescriptor{{ID: 1, Label: "a"}, {ID: 2, Label: "b"}, {ID: 3, Label: "c"}, {ID: 4, Label: "d"}}
	edges := []graph.EdgeDescriptor{{Source: 1, Target: 2}, {Source: 1, Target: 3}, {Source: 2, Target: 4}, {Source: 3, Target: 4}}
	return nodes, edges
}

func newEngine(t *testing.T, cfg Config, opts ...Option) *Engine {
	t.Helper()
	e, err := New(cfg, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func running(t *testing.T, cfg Config, nodes []graph.NodeDescriptor, edges []graph.EdgeDescriptor, opts ...Option) *Engine {
	t.Helper()
	e := newEngine(t, cfg, opts...)
	if err := e.Load(nodes, edges); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return e
}

// randomDAG returns n nodes and m edges that only point from lower to
// higher IDs, so the graph is acyclic.
func randomDAG(n, m int, seed uint64) ([]graph.NodeDescriptor, []graph.EdgeDescriptor) {
	rng := rand.New(rand.NewPCG(seed, seed))
	nodes := make([]graph.NodeDescriptor, n)
	for i := range nodes {
		nodes[i] = graph.NodeDescriptor{ID: i}
	}
	edges := make([]graph.EdgeDescriptor, 0, m)
	for len(edges) < m {
		a, b := rng.IntN(n), rng.IntN(n)
		if a == b {
			continue
		}
		edges = append(edges, graph.EdgeDescriptor{Source: min(a, b), Target: max(a, b)})
	}
	return nodes, edges
}

func TestStateMachine(t *testing.T) {
	e := newEngine(t, DefaultConfig())
	if e.State() != StateUninitialized {
		t.Fatalf("State() = %v, want uninitialized", e.State())
	}
	if err := e.Step(); err != nil {
		t.Errorf("Step before load: %v, want nil", err)
	}
	if err := e.Start(); !errors.Is(err, errors.ErrCodeInvalidState) {
		t.Errorf("Start before load: %v, want INVALID_STATE", err)
	}

	nodes, edges := diamond()
	if err := e.Load(nodes, edges); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if e.State() != StateLoaded {
		t.Fatalf("State() = %v, want loaded", e.State())
	}
	if err := e.Step(); !errors.Is(err, errors.ErrCodeInvalidState) {
		t.Errorf("Step before start: %v, want INVALID_STATE", err)
	}

	if err := e.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := e.Run(3); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if e.State() != StateRunning || e.Tick() != 3 {
		t.Errorf("after 3 steps: state %v tick %d", e.State(), e.Tick())
	}

	e.Reset()
	if e.State() != StateUninitialized || e.Graph() != nil {
		t.Errorf("Reset left state %v", e.State())
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Damping = 0
	if _, err := New(cfg); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("New with zero damping: %v, want INVALID_CONFIG", err)
	}
}

func TestDiamondHeights(t *testing.T) {
	nodes, edges := diamond()
	e := running(t, DefaultConfig(), nodes, edges)

	want := map[int]int{1: 0, 2: 1, 3: 1, 4: 2}
	for _, n := range e.Snapshot().Nodes {
		if n.Height != want[n.ID] {
			t.Errorf("height(%d) = %d, want %d", n.ID, n.Height, want[n.ID])
		}
	}
}

func TestFailedLoadKeepsPreviousGraph(t *testing.T) {
	nodes, edges := diamond()
	e := running(t, DefaultConfig(), nodes, edges)
	if err := e.Run(5); err != nil {
		t.Fatal(err)
	}
	before := e.Snapshot()

	bad := []graph.EdgeDescriptor{{Source: 1, Target: 99}}
	err := e.Load(nodes, bad)
	if !errors.Is(err, errors.ErrCodeUnknownNodeReference) {
		t.Fatalf("Load with edge to 99: %v, want UNKNOWN_NODE_REFERENCE", err)
	}
	if e.State() != StateRunning {
		t.Errorf("State() = %v after failed load, want running", e.State())
	}
	if after := e.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Errorf("snapshot changed after failed load")
	}
}

func TestCycleRejectedByDefault(t *testing.T) {
	e := newEngine(t, DefaultConfig())
	nodes := []graph.NodeDescriptor{{ID: 1}, {ID: 2}}
	edges := []graph.EdgeDescriptor{{Source: 1, Target: 2}, {Source: 2, Target: 1}}

	if err := e.Load(nodes, edges); !errors.Is(err, errors.ErrCodeCyclicGraph) {
		t.Fatalf("Load cycle: %v, want CYCLIC_GRAPH", err)
	}
	if e.State() != StateUninitialized {
		t.Errorf("State() = %v, want uninitialized", e.State())
	}
}

func TestCycleFlattened(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FlattenCycles = true
	nodes := []graph.NodeDescriptor{{ID: 1}, {ID: 2}, {ID: 3}}
	edges := []graph.EdgeDescriptor{{Source: 1, Target: 2}, {Source: 2, Target: 1}, {Source: 2, Target: 3}}
	e := running(t, cfg, nodes, edges)

	if !errors.Is(e.HeightErr(), errors.ErrCodeCyclicGraph) {
		t.Errorf("HeightErr() = %v, want CYCLIC_GRAPH", e.HeightErr())
	}
	for _, n := range e.Snapshot().Nodes {
		if n.Height != 0 {
			t.Errorf("height(%d) = %d, want 0", n.ID, n.Height)
		}
	}
	if !e.Stats().Flattened {
		t.Error("Stats().Flattened = false")
	}
}

func TestEnergyStaysBounded(t *testing.T) {
	nodes, edges := randomDAG(60, 120, 3)
	e := running(t, DefaultConfig(), nodes, edges)

	for i := range 1000 {
		if err := e.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	for _, n := range e.Graph().Nodes() {
		if !n.Position.IsFinite() || !n.Velocity.IsFinite() {
			t.Fatalf("node %d not finite: pos %v vel %v", n.ID, n.Position, n.Velocity)
		}
	}
	if s := e.Stats().MaxSpeed; s > 10 {
		t.Errorf("max speed %v after 1000 steps", s)
	}
	if en := e.Energy(); math.IsNaN(en) || math.IsInf(en, 0) {
		t.Errorf("energy %v", en)
	}
}

// tree returns a seven node binary tree.
func tree() ([]graph.NodeDescriptor, []graph.EdgeDescriptor) {
	nodes := make([]graph.NodeDescriptor, 7)
	for i := range nodes {
		nodes[i] = graph.NodeDescriptor{ID: i + 1}
	}
	edges := []graph.EdgeDescriptor{
		{Source: 1, Target: 2}, {Source: 1, Target: 3},
		{Source: 2, Target: 4}, {Source: 2, Target: 5},
		{Source: 3, Target: 6}, {Source: 3, Target: 7},
	}
	return nodes, edges
}

func TestDefaultsSettle(t *testing.T) {
	nodes, edges := tree()
	for _, placement := range []string{PlacementHeight, PlacementParent, PlacementRandom} {
		t.Run(placement, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Placement = placement
			e := running(t, cfg, nodes, edges)

			if err := e.Run(3000); err != nil {
				t.Fatal(err)
			}
			if s := e.Stats().MaxSpeed; s >= 1 {
				t.Errorf("max speed %v after 3000 ticks, want < 1", s)
			}
		})
	}
}

func TestNewWarnsOnLargeKick(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)

	newEngine(t, DefaultConfig(), WithLogger(logger))
	if buf.Len() != 0 {
		t.Errorf("defaults logged %q", buf.String())
	}

	cfg := DefaultConfig()
	cfg.RepulsionStrength = 500
	cfg.MinClampDistance = 1
	newEngine(t, cfg, WithLogger(logger))
	if !strings.Contains(buf.String(), "maxKick") {
		t.Errorf("no warning for maxKick %v, log %q", cfg.MaxKick(), buf.String())
	}
}

func TestTwoNodesSettleAtRestLength(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RepulsionStrength = 0
	cfg.CenteringStrength = 0
	cfg.DepthStrength = 0
	cfg.SpringStrengthOutward = 0.01
	cfg.SpringStrengthInward = 0.01
	cfg.Damping = 0.1
	cfg.Placement = PlacementRandom

	nodes := []graph.NodeDescriptor{{ID: 1}, {ID: 2}}
	edges := []graph.EdgeDescriptor{{Source: 1, Target: 2}}

	for _, seed := range []uint64{1, 7} {
		cfg.Seed = seed
		e := running(t, cfg, nodes, edges)
		if err := e.Run(2000); err != nil {
			t.Fatal(err)
		}
		s := e.Snapshot()
		d := s.Nodes[0].Position.Sub(s.Nodes[1].Position).Len()
		if math.Abs(d-cfg.RestLength) > 1 {
			t.Errorf("seed %d: distance %v, want %v", seed, d, cfg.RestLength)
		}
	}
}

func TestSingleNodeStaysPut(t *testing.T) {
	e := running(t, DefaultConfig(), []graph.NodeDescriptor{{ID: 1}}, nil)
	start := e.Snapshot().Nodes[0].Position

	if err := e.Run(100); err != nil {
		t.Fatal(err)
	}
	if got := e.Snapshot().Nodes[0].Position; got != start {
		t.Errorf("single node moved from %v to %v", start, got)
	}
}

func TestIsolatedNodeOnlyCentres(t *testing.T) {
	cfg := DefaultConfig()
	place := func(g *graph.Graph, _ *rand.Rand, _ Config) {
		pos := map[int]geom.Vec{1: {X: 0, Y: 500}, 2: {X: 100, Y: 600}, 3: {X: 1000, Y: 1000}}
		for _, n := range g.Nodes() {
			n.Position = pos[n.ID]
		}
	}
	nodes := []graph.NodeDescriptor{{ID: 1}, {ID: 2}, {ID: 3}}
	edges := []graph.EdgeDescriptor{{Source: 1, Target: 2}}
	e := running(t, cfg, nodes, edges, WithPlacer(place))

	if err := e.Step(); err != nil {
		t.Fatal(err)
	}
	centroid := geom.Vec{X: 1100.0 / 3, Y: 2100.0 / 3}
	want := centroid.Sub(geom.Vec{X: 1000, Y: 1000}).Scale(cfg.CenteringStrength)

	n, _ := e.Graph().Lookup(3)
	if math.Abs(n.Velocity.X-want.X) > 1e-12 || math.Abs(n.Velocity.Y-want.Y) > 1e-12 {
		t.Errorf("isolated velocity = %v, want %v", n.Velocity, want)
	}
}

func TestDeterministic(t *testing.T) {
	nodes, edges := randomDAG(40, 60, 11)
	a := running(t, DefaultConfig(), nodes, edges)
	b := running(t, DefaultConfig(), nodes, edges)

	if err := a.Run(200); err != nil {
		t.Fatal(err)
	}
	if err := b.Run(200); err != nil {
		t.Fatal(err)
	}
	sa, sb := a.Snapshot(), b.Snapshot()
	sa.Generation, sb.Generation = "", ""
	if !reflect.DeepEqual(sa, sb) {
		t.Error("two engines with the same seed diverged")
	}
}

func TestRestartReplaysPlacement(t *testing.T) {
	nodes, edges := diamond()
	e := running(t, DefaultConfig(), nodes, edges)
	first := e.Snapshot()

	if err := e.Run(50); err != nil {
		t.Fatal(err)
	}
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if again := e.Snapshot(); !reflect.DeepEqual(first, again) {
		t.Error("restart with the same seed produced a different placement")
	}

	e.Reseed(e.Seed() + 1)
	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if reflect.DeepEqual(first, e.Snapshot()) {
		t.Error("reseeded restart reproduced the original placement")
	}
}

func TestEmptyGraph(t *testing.T) {
	e := running(t, DefaultConfig(), nil, nil)
	if err := e.Run(10); err != nil {
		t.Fatal(err)
	}
	s := e.Snapshot()
	if s.Nodes == nil || len(s.Nodes) != 0 {
		t.Errorf("Snapshot().Nodes = %#v, want empty non-nil", s.Nodes)
	}
	if e.Energy() != 0 {
		t.Errorf("Energy() = %v", e.Energy())
	}
}

func TestGenerationChangesOnLoad(t *testing.T) {
	nodes, edges := diamond()
	e := running(t, DefaultConfig(), nodes, edges)
	g1 := e.Generation()
	if err := e.Load(nodes, edges); err != nil {
		t.Fatal(err)
	}
	if g1 == "" || g1 == e.Generation() {
		t.Errorf("generation %q then %q", g1, e.Generation())
	}
}

func TestSnapshotIsCopy(t *testing.T) {
	nodes, edges := diamond()
	e := running(t, DefaultConfig(), nodes, edges)
	s := e.Snapshot()
	pos := s.Nodes[0].Position

	if err := e.Run(10); err != nil {
		t.Fatal(err)
	}
	if s.Nodes[0].Position != pos {
		t.Error("snapshot changed after stepping")
	}
	if !reflect.DeepEqual(s.Nodes[0].Outward, []int{2, 3}) {
		t.Errorf("Outward = %v, want [2 3]", s.Nodes[0].Outward)
	}

	s.Nodes[0].Outward[0] = 99
	s.Nodes[0].Outward = append(s.Nodes[0].Outward, 42)
	if got := e.Snapshot().Nodes[0].Outward; !reflect.DeepEqual(got, []int{2, 3}) {
		t.Errorf("editing a snapshot changed the next one: Outward = %v", got)
	}
}

func TestSnapshotBounds(t *testing.T) {
	s := Snapshot{Nodes: []NodeState{
		{ID: 1, Position: geom.Vec{X: -5, Y: 2}},
		{ID: 2, Position: geom.Vec{X: 7, Y: -1}},
	}}
	lo, hi, ok := s.Bounds()
	if !ok || lo != (geom.Vec{X: -5, Y: -1}) || hi != (geom.Vec{X: 7, Y: 2}) {
		t.Errorf("Bounds() = %v %v %v", lo, hi, ok)
	}
	if _, _, ok := (Snapshot{}).Bounds(); ok {
		t.Error("empty snapshot has bounds")
	}
	if idx := s.IndexByID(); idx[2] != 1 {
		t.Errorf("IndexByID()[2] = %d", idx[2])
	}
}
