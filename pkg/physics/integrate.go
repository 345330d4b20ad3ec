package physics

import (
	"math"

	"github.com/pmwhite/gexf-viewer/pkg/graph"
)

// Integrate advances every node by one semi-implicit Euler step using the
// force accumulated by [Accumulate]. damping is the fraction of velocity
// lost per step and must lie in (0, 1).
func Integrate(nodes []*graph.Node, damping float64) {
	keep := 1 - damping
	for _, n := range nodes {
		n.Velocity = n.Velocity.Scale(keep).Add(n.Force)
		n.Position = n.Position.Add(n.Velocity)
	}
}

// KineticEnergy returns the sum of squared velocities.
func KineticEnergy(nodes []*graph.Node) float64 {
	e := 0.0
	for _, n := range nodes {
		e += n.Velocity.LenSq()
	}
	return e
}

// MaxSpeed returns the largest absolute velocity component over all nodes.
func MaxSpeed(nodes []*graph.Node) float64 {
	m := 0.0
	for _, n := range nodes {
		m = max(m, math.Abs(n.Velocity.X), math.Abs(n.Velocity.Y))
	}
	return m
}
