package physics

import (
	"github.com/pmwhite/gexf-viewer/pkg/geom"
	"github.com/pmwhite/gexf-viewer/pkg/graph"
	"github.com/pmwhite/gexf-viewer/pkg/spatial"
)

// coincidentOffset replaces the separation of two nodes closer than
// MinClamp. Its sign follows ID order so the pair is pushed apart.
var coincidentOffset = geom.Vec{X: 0.3, Y: 0.3}

// Params holds the force constants for one step.
type Params struct {
	Repulsion     float64 // Repulsion strength between cell mates
	SpringOutward float64 // Spring strength toward successors
	SpringInward  float64 // Spring strength toward predecessors
	RestLength    float64 // Separation at which a spring exerts no force
	LayerSpacing  float64 // Vertical distance between height bands
	DepthStrength float64 // Strength of the pull toward the height band
	Centering     float64 // Strength of the pull toward the centroid
	MinClamp      float64 // Distances below this are clamped
}

// Accumulate resets the Force of every node and sums repulsion, spring
// attraction, depth pull and centering into it. Positions are read only.
// idx must have been rebuilt from the current positions.
func Accumulate(nodes []*graph.Node, idx *spatial.Index, p Params) {
	centroid := Centroid(nodes)
	for _, n := range nodes {
		n.Force = geom.Vec{}
		n.Force = n.Force.
			Add(repulsion(n, idx, p)).
			Add(springs(n, p)).
			Add(depthPull(n, p)).
			Add(centering(n, centroid, p))
	}
}

// Centroid returns the mean node position, or the origin for no nodes.
func Centroid(nodes []*graph.Node) geom.Vec {
	if len(nodes) == 0 {
		return geom.Vec{}
	}
	var sum geom.Vec
	for _, n := range nodes {
		sum = sum.Add(n.Position)
	}
	return sum.Div(float64(len(nodes)))
}

// separation returns the vector from other to n and its clamped length.
// For nearly coincident pairs it substitutes coincidentOffset.
func separation(n, other *graph.Node, minClamp float64) (geom.Vec, float64) {
	diff := n.Position.Sub(other.Position)
	d := diff.Len()
	if d >= minClamp {
		return diff, d
	}
	diff = coincidentOffset
	if n.ID < other.ID {
		diff = diff.Scale(-1)
	}
	return diff, minClamp
}

func repulsion(n *graph.Node, idx *spatial.Index, p Params) geom.Vec {
	var f geom.Vec
	if p.Repulsion == 0 {
		return f
	}
	for _, other := range idx.NeighborsOf(n) {
		if other == n {
			continue
		}
		diff, d := separation(n, other, p.MinClamp)
		f = f.Add(diff.Unit().Scale(p.Repulsion / (d * d)))
	}
	return f
}

func springs(n *graph.Node, p Params) geom.Vec {
	var f geom.Vec
	for _, other := range n.Outward {
		f = f.Add(spring(n, other, p.SpringOutward, p))
	}
	for _, other := range n.Inward {
		f = f.Add(spring(n, other, p.SpringInward, p))
	}
	return f
}

// spring pulls n toward other by k*(d - RestLength); a negative extension
// pushes them apart.
func spring(n, other *graph.Node, k float64, p Params) geom.Vec {
	if other == n || k == 0 {
		return geom.Vec{}
	}
	diff, d := separation(n, other, p.MinClamp)
	return diff.Unit().Scale(-k * (d - p.RestLength))
}

func depthPull(n *graph.Node, p Params) geom.Vec {
	if !n.HasHeight || n.Degree() == 0 || p.DepthStrength == 0 {
		return geom.Vec{}
	}
	target := float64(n.Height) * p.LayerSpacing
	return geom.Vec{Y: (target - n.Position.Y) * p.DepthStrength}
}

func centering(n *graph.Node, centroid geom.Vec, p Params) geom.Vec {
	return centroid.Sub(n.Position).Scale(p.Centering)
}
