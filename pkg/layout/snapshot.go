package layout

import (
	"slices"

	"github.com/pmwhite/gexf-viewer/pkg/geom"
)

var zero geom.Vec

// NodeState is the renderable view of one node.
type NodeState struct {
	ID       int      `json:"id"`
	Label    string   `json:"label"`
	Position geom.Vec `json:"position"`
	Height   int      `json:"height"`
	Outward  []int    `json:"outward"`
}

// Snapshot is a copy of the layout at one tick. It shares no memory with
// the engine or with other snapshots.
type Snapshot struct {
	Generation string      `json:"generation,omitempty"`
	Tick       int         `json:"tick"`
	State      string      `json:"state"`
	Nodes      []NodeState `json:"nodes"`
}

// Snapshot copies the current node states in iteration order. Before a
// graph is loaded it returns a snapshot with no nodes.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{
		Generation: e.generation,
		Tick:       e.ticks,
		State:      e.state.String(),
		Nodes:      []NodeState{},
	}
	if e.g == nil {
		return s
	}
	s.Nodes = make([]NodeState, e.g.NodeCount())
	for i, n := range e.g.Nodes() {
		s.Nodes[i] = NodeState{
			ID:       n.ID,
			Label:    n.DisplayLabel(),
			Position: n.Position,
			Height:   n.Height,
			Outward:  slices.Clone(e.outward[i]),
		}
	}
	return s
}

// Empty reports whether the snapshot has no nodes.
func (s Snapshot) Empty() bool { return len(s.Nodes) == 0 }

// IndexByID maps node IDs to their position in Nodes.
func (s Snapshot) IndexByID() map[int]int {
	m := make(map[int]int, len(s.Nodes))
	for i, n := range s.Nodes {
		m[n.ID] = i
	}
	return m
}

// Bounds returns the axis-aligned bounding box of all node positions.
// ok is false for an empty snapshot.
func (s Snapshot) Bounds() (lo, hi geom.Vec, ok bool) {
	if len(s.Nodes) == 0 {
		return lo, hi, false
	}
	lo, hi = s.Nodes[0].Position, s.Nodes[0].Position
	for _, n := range s.Nodes[1:] {
		p := n.Position
		lo.X, lo.Y = min(lo.X, p.X), min(lo.Y, p.Y)
		hi.X, hi.Y = max(hi.X, p.X), max(hi.Y, p.Y)
	}
	return lo, hi, true
}
