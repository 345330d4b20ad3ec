package physics

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/pmwhite/gexf-viewer/pkg/geom"
	"github.com/pmwhite/gexf-viewer/pkg/graph"
	"github.com/pmwhite/gexf-viewer/pkg/spatial"
)

const eps = 1e-9

func near(a, b geom.Vec, tol float64) bool {
	return math.Abs(a.X-b.X) <= tol && math.Abs(a.Y-b.Y) <= tol
}

// only fills in MinClamp so a test can enable a single force term.
func only(p Params) Params {
	if p.MinClamp == 0 {
		p.MinClamp = 1
	}
	return p
}

func load(t *testing.T, nodes []graph.NodeDescriptor, edges []graph.EdgeDescriptor, pos map[int]geom.Vec) *graph.Graph {
	t.Helper()
	g, err := graph.Load(nodes, edges)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := graph.ComputeHeights(g, graph.Inward); err != nil {
		t.Fatalf("ComputeHeights: %v", err)
	}
	for id, p := range pos {
		n, _ := g.Lookup(id)
		n.Position = p
	}
	return g
}

func step(g *graph.Graph, p Params) {
	idx := spatial.New(100, 0)
	idx.Rebuild(g.Nodes())
	Accumulate(g.Nodes(), idx, p)
}

func TestRepulsion(t *testing.T) {
	g := load(t, []graph.NodeDescriptor{{ID: 1}, {ID: 2}}, nil, map[int]geom.Vec{
		1: {X: 10, Y: 10},
		2: {X: 20, Y: 10},
	})
	step(g, only(Params{Repulsion: 100}))

	a, _ := g.Lookup(1)
	b, _ := g.Lookup(2)
	if !near(a.Force, geom.Vec{X: -1}, eps) {
		t.Errorf("a.Force = %v, want {-1 0}", a.Force)
	}
	if !near(b.Force, geom.Vec{X: 1}, eps) {
		t.Errorf("b.Force = %v, want {1 0}", b.Force)
	}
}

func TestRepulsionOnlyWithinCell(t *testing.T) {
	g := load(t, []graph.NodeDescriptor{{ID: 1}, {ID: 2}}, nil, map[int]geom.Vec{
		1: {X: 95, Y: 10},
		2: {X: 105, Y: 10},
	})
	step(g, only(Params{Repulsion: 100}))

	for _, n := range g.Nodes() {
		if n.Force != (geom.Vec{}) {
			t.Errorf("node %d in its own cell got force %v", n.ID, n.Force)
		}
	}
}

func TestRepulsionCoincident(t *testing.T) {
	g := load(t, []graph.NodeDescriptor{{ID: 1}, {ID: 2}}, nil, map[int]geom.Vec{
		1: {X: 5, Y: 5},
		2: {X: 5, Y: 5},
	})
	step(g, only(Params{Repulsion: 2, MinClamp: 1}))

	a, _ := g.Lookup(1)
	b, _ := g.Lookup(2)
	if !a.Force.IsFinite() || !b.Force.IsFinite() {
		t.Fatalf("non-finite forces: %v %v", a.Force, b.Force)
	}
	if math.Abs(a.Force.Len()-2) > eps {
		t.Errorf("|a.Force| = %v, want Repulsion/MinClamp^2 = 2", a.Force.Len())
	}
	if !near(a.Force.Add(b.Force), geom.Vec{}, eps) {
		t.Errorf("coincident forces not opposite: %v %v", a.Force, b.Force)
	}
	if a.Force.X >= 0 || b.Force.X <= 0 {
		t.Errorf("lower ID should move toward -x: a=%v b=%v", a.Force, b.Force)
	}
}

func TestSpring(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   geom.Vec // force on node 1 (source) at (0,0) with node 2 at (30,40)
	}{
		{"ZeroRest", Params{SpringOutward: 0.1}, geom.Vec{X: 3, Y: 4}},
		{"Stretched", Params{SpringOutward: 0.1, RestLength: 40}, geom.Vec{X: 0.6, Y: 0.8}},
		{"Compressed", Params{SpringOutward: 0.1, RestLength: 60}, geom.Vec{X: -0.6, Y: -0.8}},
		{"AtRest", Params{SpringOutward: 0.1, RestLength: 50}, geom.Vec{}},
		{"InwardOnlyIgnoredBySource", Params{SpringInward: 0.1}, geom.Vec{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := load(t, []graph.NodeDescriptor{{ID: 1}, {ID: 2}}, []graph.EdgeDescriptor{{Source: 1, Target: 2}},
				map[int]geom.Vec{1: {}, 2: {X: 30, Y: 40}})
			step(g, only(tt.params))
			a, _ := g.Lookup(1)
			if !near(a.Force, tt.want, 1e-9) {
				t.Errorf("Force = %v, want %v", a.Force, tt.want)
			}
		})
	}
}

func TestSpringAsymmetry(t *testing.T) {
	g := load(t, []graph.NodeDescriptor{{ID: 1}, {ID: 2}}, []graph.EdgeDescriptor{{Source: 1, Target: 2}},
		map[int]geom.Vec{1: {}, 2: {X: 300}})
	step(g, only(Params{SpringOutward: 0.01, SpringInward: 0.02}))

	a, _ := g.Lookup(1)
	b, _ := g.Lookup(2)
	if !near(a.Force, geom.Vec{X: 3}, eps) {
		t.Errorf("source force = %v, want {3 0}", a.Force)
	}
	if !near(b.Force, geom.Vec{X: -6}, eps) {
		t.Errorf("target force = %v, want {-6 0}", b.Force)
	}
}

func TestDepthPull(t *testing.T) {
	g := load(t, []graph.NodeDescriptor{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 9}},
		[]graph.EdgeDescriptor{{Source: 1, Target: 2}, {Source: 2, Target: 3}},
		map[int]geom.Vec{1: {Y: 50}, 2: {X: 500, Y: 100}, 3: {X: 1000, Y: 0}, 9: {X: 5000, Y: 70}})
	step(g, only(Params{LayerSpacing: 100, DepthStrength: 0.01}))

	want := map[int]geom.Vec{
		1: {Y: -0.5}, // height 0, target 0
		2: {},        // height 1, at target
		3: {Y: 2},    // height 2, target 200
		9: {},        // isolated: no band
	}
	for id, w := range want {
		n, _ := g.Lookup(id)
		if !near(n.Force, w, eps) {
			t.Errorf("node %d force = %v, want %v", id, n.Force, w)
		}
	}
}

func TestCentering(t *testing.T) {
	g := load(t, []graph.NodeDescriptor{{ID: 1}, {ID: 2}}, nil,
		map[int]geom.Vec{1: {X: -1000}, 2: {X: 1000, Y: 400}})
	step(g, only(Params{Centering: 0.001}))

	a, _ := g.Lookup(1)
	if !near(a.Force, geom.Vec{X: 1, Y: 0.2}, eps) {
		t.Errorf("Force = %v, want {1 0.2}", a.Force)
	}
}

func TestSingleNodeNoForce(t *testing.T) {
	g := load(t, []graph.NodeDescriptor{{ID: 1}}, nil, map[int]geom.Vec{1: {X: 37, Y: -12}})
	step(g, Params{Repulsion: 500, SpringOutward: 0.01, SpringInward: 0.01, RestLength: 100,
		LayerSpacing: 100, DepthStrength: 0.01, Centering: 0.0002, MinClamp: 1})

	n, _ := g.Lookup(1)
	if n.Force != (geom.Vec{}) {
		t.Errorf("single node force = %v, want zero", n.Force)
	}
}

func TestAccumulateResetsForce(t *testing.T) {
	g := load(t, []graph.NodeDescriptor{{ID: 1}}, nil, nil)
	n, _ := g.Lookup(1)
	n.Force = geom.Vec{X: 99, Y: 99}
	step(g, only(Params{}))
	if n.Force != (geom.Vec{}) {
		t.Errorf("Force not reset: %v", n.Force)
	}
}

func TestEmptyGraph(t *testing.T) {
	if c := Centroid(nil); c != (geom.Vec{}) {
		t.Errorf("Centroid(nil) = %v", c)
	}
	Accumulate(nil, spatial.New(100, 0), Params{Centering: 1})
	Integrate(nil, 0.5)
	if KineticEnergy(nil) != 0 {
		t.Error("KineticEnergy(nil) != 0")
	}
}

func TestOrderIndependence(t *testing.T) {
	descs := make([]graph.NodeDescriptor, 30)
	var edges []graph.EdgeDescriptor
	pos := map[int]geom.Vec{}
	rng := rand.New(rand.NewPCG(7, 7))
	for i := range descs {
		descs[i] = graph.NodeDescriptor{ID: i}
		pos[i] = geom.Vec{X: rng.Float64() * 300, Y: rng.Float64() * 300}
		if i > 0 {
			edges = append(edges, graph.EdgeDescriptor{Source: rng.IntN(i), Target: i})
		}
	}
	p := Params{Repulsion: 500, SpringOutward: 0.0025, SpringInward: 0.005, RestLength: 100,
		LayerSpacing: 100, DepthStrength: 0.01, Centering: 0.0002, MinClamp: 1}

	forward := load(t, descs, edges, pos)
	step(forward, p)

	reversed := make([]graph.NodeDescriptor, len(descs))
	for i, d := range descs {
		reversed[len(descs)-1-i] = d
	}
	backward := load(t, reversed, edges, pos)
	step(backward, p)

	for _, n := range forward.Nodes() {
		m, _ := backward.Lookup(n.ID)
		if !near(n.Force, m.Force, 1e-9) {
			t.Errorf("node %d: force %v vs %v depends on order", n.ID, n.Force, m.Force)
		}
	}
}

func TestIntegrate(t *testing.T) {
	n := &graph.Node{
		Position: geom.Vec{X: 10, Y: 10},
		Velocity: geom.Vec{X: 4, Y: -2},
		Force:    geom.Vec{X: 1, Y: 1},
	}
	Integrate([]*graph.Node{n}, 0.25)

	if !near(n.Velocity, geom.Vec{X: 4, Y: -0.5}, eps) {
		t.Errorf("Velocity = %v, want {4 -0.5}", n.Velocity)
	}
	if !near(n.Position, geom.Vec{X: 14, Y: 9.5}, eps) {
		t.Errorf("Position = %v, want {14 9.5}", n.Position)
	}
	if e := KineticEnergy([]*graph.Node{n}); math.Abs(e-16.25) > eps {
		t.Errorf("KineticEnergy = %v, want 16.25", e)
	}
	if s := MaxSpeed([]*graph.Node{n}); s != 4 {
		t.Errorf("MaxSpeed = %v, want 4", s)
	}
}
