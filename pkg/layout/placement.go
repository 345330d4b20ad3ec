package layout

import (
	"math"
	"math/rand/v2"

	"github.com/pmwhite/gexf-viewer/pkg/geom"
	"github.com/pmwhite/gexf-viewer/pkg/graph"
)

// Placer assigns an initial position to every node of g. It must draw all
// randomness from rng so that a seeded placement is reproducible.
type Placer func(g *graph.Graph, rng *rand.Rand, cfg Config)

var placers = map[string]Placer{
	PlacementRandom: PlaceRandom,
	PlacementHeight: PlaceByHeight,
	PlacementParent: PlaceNearParent,
}

// PlacerFor returns the built-in placer registered under name.
func PlacerFor(name string) (Placer, bool) {
	p, ok := placers[name]
	return p, ok
}

// newRand returns the placement source for seed.
func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
}

// PlaceRandom scatters nodes uniformly over a square whose side grows with
// the square root of the node count.
func PlaceRandom(g *graph.Graph, rng *rand.Rand, cfg Config) {
	side := max(cfg.RestLength, 1) * max(1, math.Sqrt(float64(g.NodeCount())))
	for _, n := range g.Nodes() {
		n.Position = geom.Vec{X: rng.Float64() * side, Y: rng.Float64() * side}
	}
}

// PlaceByHeight puts each node on its height band, spaced horizontally by
// the spring rest length and centred on x = 0, with seeded jitter.
func PlaceByHeight(g *graph.Graph, rng *rand.Rand, cfg Config) {
	nodes := g.Nodes()
	width := make(map[int]int)
	slot := make([]int, len(nodes))
	for _, n := range nodes {
		slot[n.Index] = width[n.Height]
		width[n.Height]++
	}
	spacing := max(cfg.RestLength, 1)
	for _, n := range nodes {
		offset := float64(width[n.Height]-1) / 2
		n.Position = geom.Vec{
			X: (float64(slot[n.Index])-offset)*spacing + rng.Float64()*cfg.Scatter,
			Y: float64(n.Height)*cfg.LayerSpacing + rng.Float64()*cfg.Scatter,
		}
	}
}

// PlaceNearParent walks the graph from nodes without predecessors and
// places each unvisited successor one layer below its parent, fanned out
// horizontally with a spread that halves at every level.
func PlaceNearParent(g *graph.Graph, rng *rand.Rand, cfg Config) {
	nodes := g.Nodes()
	visited := make([]bool, len(nodes))
	spread := max(cfg.RestLength, 1) * 4
	layer := cfg.LayerSpacing
	if layer == 0 {
		layer = max(cfg.RestLength, 1)
	}

	type item struct {
		node  *graph.Node
		scale float64
	}
	var stack []item
	rootX := 0.0

	// Roots first, then anything a cycle kept out of reach.
	order := append(g.Roots(), nodes...)
	for _, root := range order {
		if visited[root.Index] {
			continue
		}
		visited[root.Index] = true
		root.Position = geom.Vec{X: rootX + rng.Float64()*cfg.Scatter, Y: rng.Float64() * cfg.Scatter}
		rootX += spread * 2

		stack = append(stack[:0], item{root, spread})
		for len(stack) > 0 {
			it := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			offset := float64(len(it.node.Outward)-1) / 2
			for i, child := range it.node.Outward {
				if visited[child.Index] {
					continue
				}
				visited[child.Index] = true
				child.Position = geom.Vec{
					X: it.node.Position.X + (float64(i)-offset)*it.scale + rng.Float64()*cfg.Scatter,
					Y: it.node.Position.Y + layer,
				}
				stack = append(stack, item{child, it.scale / 2})
			}
		}
	}
}

// separateCoincident nudges nodes until no two share an exact position, so
// that the first step never sees a zero-distance pair.
func separateCoincident(g *graph.Graph, rng *rand.Rand, minClamp float64) {
	seen := make(map[geom.Vec]bool, g.NodeCount())
	for _, n := range g.Nodes() {
		for seen[n.Position] {
			n.Position = n.Position.Add(geom.Vec{
				X: (rng.Float64() + 0.5) * minClamp,
				Y: (rng.Float64() - 0.5) * minClamp,
			})
		}
		seen[n.Position] = true
	}
}
