package graph

import (
	"slices"
	"strconv"

	"github.com/pmwhite/gexf-viewer/pkg/errors"
	"github.com/pmwhite/gexf-viewer/pkg/geom"
)

// NodeDescriptor is the loader-facing description of a node.
type NodeDescriptor struct {
	ID    int    `json:"id"`
	Label string `json:"label,omitempty"`
}

// EdgeDescriptor is the loader-facing description of a directed edge.
type EdgeDescriptor struct {
	Source int `json:"source"`
	Target int `json:"target"`
}

// Node is a vertex of the graph together with its simulation state.
//
// The zero value is not usable; nodes are created by [Load].
type Node struct {
	ID    int    // Unique identifier
	Label string // Optional display label
	Index int    // Position in Graph.Nodes(), stable for one load

	Outward []*Node // Successors (this node is the edge source)
	Inward  []*Node // Predecessors (this node is the edge target)

	Position geom.Vec
	Velocity geom.Vec
	Force    geom.Vec // Accumulator, reset at the start of every step

	// Height is the topological depth assigned by ComputeHeights.
	// It is meaningful only when HasHeight is true.
	Height    int
	HasHeight bool
}

// Degree returns the number of adjacency entries of n in both directions.
func (n *Node) Degree() int { return len(n.Outward) + len(n.Inward) }

// DisplayLabel returns the label if set, otherwise the decimal ID.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return strconv.Itoa(n.ID)
}

// OutwardIDs returns the IDs of the node's successors in edge order.
func (n *Node) OutwardIDs() []int {
	ids := make([]int, len(n.Outward))
	for i, o := range n.Outward {
		ids[i] = o.ID
	}
	return ids
}

// Graph maps node IDs to nodes and keeps a materialized node sequence
// for iteration.
//
// Graph is not safe for concurrent use without external synchronization.
type Graph struct {
	byID  map[int]*Node
	nodes []*Node
	edges []EdgeDescriptor
}

// Load constructs a graph from node and edge descriptors.
//
// All nodes are created before any edge is attached, since attaching an
// edge mutates both endpoints. Load returns a DUPLICATE_ID error if two
// node descriptors share an ID, and an UNKNOWN_NODE_REFERENCE error if an
// edge names an ID that is not in the node set. On error no graph is
// returned.
//
// Node iteration order follows descriptor order.
func Load(nodes []NodeDescriptor, edges []EdgeDescriptor) (*Graph, error) {
	g := &Graph{
		byID:  make(map[int]*Node, len(nodes)),
		nodes: make([]*Node, 0, len(nodes)),
		edges: slices.Clone(edges),
	}

	for _, d := range nodes {
		if _, exists := g.byID[d.ID]; exists {
			return nil, errors.New(errors.ErrCodeDuplicateID, "node %d declared more than once", d.ID)
		}
		n := &Node{ID: d.ID, Label: d.Label, Index: len(g.nodes)}
		g.byID[d.ID] = n
		g.nodes = append(g.nodes, n)
	}

	for _, e := range edges {
		src, ok := g.byID[e.Source]
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownNodeReference, "edge %d->%d: unknown source node %d", e.Source, e.Target, e.Source)
		}
		dst, ok := g.byID[e.Target]
		if !ok {
			return nil, errors.New(errors.ErrCodeUnknownNodeReference, "edge %d->%d: unknown target node %d", e.Source, e.Target, e.Target)
		}
		src.Outward = append(src.Outward, dst)
		dst.Inward = append(dst.Inward, src)
	}

	return g, nil
}

// Nodes returns all nodes in descriptor order.
// The returned slice is shared with the graph and must not be modified;
// the nodes it points to are the graph's own.
func (g *Graph) Nodes() []*Node { return g.nodes }

// Node returns the node with the given ID, or a NOT_FOUND error.
func (g *Graph) Node(id int) (*Node, error) {
	n, ok := g.byID[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "node %d not found", id)
	}
	return n, nil
}

// Lookup returns the node with the given ID and true, or nil and false.
func (g *Graph) Lookup(id int) (*Node, bool) {
	n, ok := g.byID[id]
	return n, ok
}

// Edges returns a copy of the edge descriptors in load order.
func (g *Graph) Edges() []EdgeDescriptor { return slices.Clone(g.edges) }

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of edges in the graph.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Positions returns a copy of every node position in iteration order.
func (g *Graph) Positions() []geom.Vec {
	out := make([]geom.Vec, len(g.nodes))
	for i, n := range g.nodes {
		out[i] = n.Position
	}
	return out
}

// Roots returns nodes with no predecessors, in iteration order.
func (g *Graph) Roots() []*Node {
	var roots []*Node
	for _, n := range g.nodes {
		if len(n.Inward) == 0 {
			roots = append(roots, n)
		}
	}
	return roots
}
