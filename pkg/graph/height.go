package graph

import (
	"fmt"
	"slices"
	"strings"

	"github.com/pmwhite/gexf-viewer/pkg/errors"
)

// Direction selects which adjacency list height computation follows.
type Direction int

const (
	// Inward measures depth from nodes with no predecessors: a node's
	// height is 1 + the maximum height of its Inward neighbors.
	Inward Direction = iota
	// Outward measures depth from nodes with no successors.
	Outward
)

// String returns "inward" or "outward".
func (d Direction) String() string {
	if d == Outward {
		return "outward"
	}
	return "inward"
}

// ParseDirection parses "inward" (or "") and "outward".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "inward", "predecessors":
		return Inward, nil
	case "outward", "successors":
		return Outward, nil
	}
	return Inward, errors.New(errors.ErrCodeInvalidConfig, "unknown height direction %q (must be 'inward' or 'outward')", s)
}

func (d Direction) from(n *Node) []*Node {
	if d == Outward {
		return n.Outward
	}
	return n.Inward
}

// visit states for height computation.
const (
	unvisited uint8 = iota
	inProgress
	computed
)

type frame struct {
	node *Node
	next int // index of the next dependency to examine
}

// ComputeHeights assigns a topological height to every node of g.
//
// A node with no dependencies along dir has height 0; any other node has
// height 1 + max(height of each dependency). Each node is computed exactly
// once, dependencies before dependents, using an explicit stack.
//
// If dir contains a cycle, ComputeHeights returns a CYCLIC_GRAPH error
// naming the nodes on the cycle and leaves every node's height unset.
func ComputeHeights(g *Graph, dir Direction) error {
	nodes := g.Nodes()
	state := make([]uint8, len(nodes))
	heights := make([]int, len(nodes))
	var stack []frame

	for _, start := range nodes {
		if state[start.Index] != unvisited {
			continue
		}
		state[start.Index] = inProgress
		stack = append(stack[:0], frame{node: start})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			deps := dir.from(top.node)

			if top.next < len(deps) {
				dep := deps[top.next]
				top.next++
				switch state[dep.Index] {
				case unvisited:
					state[dep.Index] = inProgress
					stack = append(stack, frame{node: dep})
				case inProgress:
					clearHeights(g)
					return cycleError(stack, dep, dir)
				}
				continue
			}

			h := 0
			for _, dep := range deps {
				h = max(h, heights[dep.Index]+1)
			}
			heights[top.node.Index] = h
			state[top.node.Index] = computed
			stack = stack[:len(stack)-1]
		}
	}

	for i, n := range nodes {
		n.Height = heights[i]
		n.HasHeight = true
	}
	return nil
}

// Flatten assigns height 0 to every node. It is the fallback for graphs
// whose heights are undefined because of a cycle.
func Flatten(g *Graph) {
	for _, n := range g.Nodes() {
		n.Height = 0
		n.HasHeight = true
	}
}

// MaxHeight returns the largest assigned height, or 0 for an empty graph.
func MaxHeight(g *Graph) int {
	m := 0
	for _, n := range g.Nodes() {
		if n.HasHeight {
			m = max(m, n.Height)
		}
	}
	return m
}

func clearHeights(g *Graph) {
	for _, n := range g.Nodes() {
		n.Height = 0
		n.HasHeight = false
	}
}

// cycleError reports the in-progress path from the first occurrence of
// closing back to the top of the stack.
func cycleError(stack []frame, closing *Node, dir Direction) error {
	start := slices.IndexFunc(stack, func(f frame) bool { return f.node == closing })
	ids := make([]string, 0, len(stack)-start+1)
	for _, f := range stack[start:] {
		ids = append(ids, fmt.Sprint(f.node.ID))
	}
	ids = append(ids, fmt.Sprint(closing.ID))
	return errors.New(errors.ErrCodeCyclicGraph, "%s adjacency contains a cycle: %s", dir, strings.Join(ids, " -> "))
}
