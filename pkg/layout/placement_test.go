package layout

import (
	"testing"

	"github.com/pmwhite/gexf-viewer/pkg/graph"
)

func loaded(t *testing.T, nodes []graph.NodeDescriptor, edges []graph.EdgeDescriptor) *graph.Graph {
	t.Helper()
	g, err := graph.Load(nodes, edges)
	if err != nil {
		t.Fatal(err)
	}
	if err := graph.ComputeHeights(g, graph.Inward); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestPlacersDeterministic(t *testing.T) {
	nodes, edges := randomDAG(30, 45, 5)
	for _, name := range []string{PlacementRandom, PlacementHeight, PlacementParent} {
		t.Run(name, func(t *testing.T) {
			place, ok := PlacerFor(name)
			if !ok {
				t.Fatalf("PlacerFor(%q) not found", name)
			}
			a, b := loaded(t, nodes, edges), loaded(t, nodes, edges)
			place(a, newRand(9), DefaultConfig())
			place(b, newRand(9), DefaultConfig())

			pa, pb := a.Positions(), b.Positions()
			for i := range pa {
				if pa[i] != pb[i] {
					t.Fatalf("node %d: %v vs %v", i, pa[i], pb[i])
				}
				if !pa[i].IsFinite() {
					t.Fatalf("node %d not finite: %v", i, pa[i])
				}
			}
		})
	}
}

func TestPlaceByHeightBands(t *testing.T) {
	nodes, edges := diamond()
	g := loaded(t, nodes, edges)
	cfg := DefaultConfig()
	PlaceByHeight(g, newRand(1), cfg)

	for _, n := range g.Nodes() {
		lo := float64(n.Height) * cfg.LayerSpacing
		if n.Position.Y < lo || n.Position.Y > lo+cfg.Scatter {
			t.Errorf("node %d at y=%v, want band [%v, %v]", n.ID, n.Position.Y, lo, lo+cfg.Scatter)
		}
	}
}

func TestPlaceNearParentBelowParent(t *testing.T) {
	nodes := []graph.NodeDescriptor{{ID: 1}, {ID: 2}, {ID: 3}, {ID: 4}}
	edges := []graph.EdgeDescriptor{{Source: 1, Target: 2}, {Source: 1, Target: 3}, {Source: 3, Target: 4}}
	g := loaded(t, nodes, edges)
	cfg := DefaultConfig()
	PlaceNearParent(g, newRand(1), cfg)

	for _, e := range edges {
		parent, _ := g.Lookup(e.Source)
		child, _ := g.Lookup(e.Target)
		if got := child.Position.Y - parent.Position.Y; got != cfg.LayerSpacing {
			t.Errorf("%d -> %d: dy = %v, want %v", e.Source, e.Target, got, cfg.LayerSpacing)
		}
	}
}

func TestSeparateCoincident(t *testing.T) {
	g := loaded(t, []graph.NodeDescriptor{{ID: 1}, {ID: 2}, {ID: 3}}, nil)
	separateCoincident(g, newRand(1), 1)

	seen := map[[2]float64]bool{}
	for _, n := range g.Nodes() {
		k := [2]float64{n.Position.X, n.Position.Y}
		if seen[k] {
			t.Fatalf("position %v shared", n.Position)
		}
		seen[k] = true
	}
}
