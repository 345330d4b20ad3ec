// Package layout drives the force-directed simulation of a directed graph.
//
// # Lifecycle
//
// An [Engine] moves through three states:
//
//	uninitialized --Load--> loaded --Start--> running --Step--> running
//
// [Engine.Load] builds a [graph.Graph] from descriptors and assigns every
// node a height. Heights follow the inward adjacency by default: a node with
// no predecessors sits at height 0 and every other node sits one layer below
// its deepest predecessor. A failed load leaves the previous graph and state
// untouched. When [Config.FlattenCycles] is set, a cyclic graph is accepted
// with every height at 0 and the cycle reported by [Engine.HeightErr].
//
// [Engine.Start] places nodes with the configured [Placer], seeded from
// [Config.Seed], so a given graph, configuration and seed always produce the
// same sequence of snapshots.
//
// # Forces
//
// Each sub-step rebuilds the [spatial.Index], accumulates repulsion between
// nodes sharing a cell, springs along edges in both directions, a vertical
// pull toward each connected node's height band and a weak pull toward the
// centroid, then integrates with damping. See package physics for the exact
// terms.
//
// # Snapshots
//
// [Engine.Snapshot] returns an immutable [Snapshot] that renderers may keep
// after the engine moves on.
package layout
