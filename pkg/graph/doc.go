// Package graph provides the graph model consumed by the layout engine.
//
// # Overview
//
// A [Graph] owns its nodes and their directed adjacency. It is built once
// per load from already-decoded descriptors with [Load] and is replaced
// wholesale on the next load: there is no incremental mutation API.
//
// Edges are not stored as independent entities. Each edge is represented
// on both endpoints: the source gains an Outward reference to the target,
// and the target gains an Inward reference to the source.
//
//	g, err := graph.Load(
//	    []graph.NodeDescriptor{{ID: 1, Label: "app"}, {ID: 2, Label: "lib"}},
//	    []graph.EdgeDescriptor{{Source: 1, Target: 2}},
//	)
//
// [Load] fails with DUPLICATE_ID when two descriptors share an id and with
// UNKNOWN_NODE_REFERENCE when an edge names an id absent from the node set.
// No partial graph is returned on failure.
//
// # Mutable State
//
// After construction adjacency is immutable. Only the simulation fields of
// [Node] (Position, Velocity, Force, Height) change, and only from the
// engine's step sequence.
//
// # Heights
//
// [ComputeHeights] assigns each node its topological depth along a chosen
// [Direction]. It uses an explicit stack rather than recursion and fails
// with CYCLIC_GRAPH when the direction contains a cycle.
package graph
