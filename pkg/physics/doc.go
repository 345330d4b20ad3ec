// Package physics computes per-node forces and integrates motion for the
// layout simulation.
//
// One simulation step is two passes over the node set. [Accumulate] resets
// every Force accumulator and sums four terms from a frozen position
// snapshot:
//
//  1. Repulsion from nodes sharing the node's spatial cell, with magnitude
//     Repulsion / max(d, MinClamp)^2.
//  2. Hookean springs to Outward and Inward neighbors, each direction with
//     its own strength, proportional to (d - RestLength).
//  3. Depth pull, vertical only, toward Height * LayerSpacing. Nodes
//     without edges have no generational band and feel no depth pull.
//  4. Centering toward the centroid of all positions.
//
// [Integrate] then applies semi-implicit Euler with linear damping:
//
//	velocity = velocity*(1 - damping) + force
//	position = position + velocity
//
// Because no position changes until every force is known, the result does
// not depend on node iteration order beyond floating-point rounding.
package physics
