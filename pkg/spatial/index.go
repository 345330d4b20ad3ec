// Package spatial buckets nodes into fixed-size square cells for
// approximate neighbor queries.
//
// The index is rebuilt from scratch every simulation step: [Index.Clear]
// followed by one [Index.Insert] per node. A query with [Index.NeighborsOf]
// returns only the contents of the node's own cell, not the surrounding
// 3x3 neighborhood, which bounds the work per node at the cost of missing
// nearby nodes across a cell border.
//
// Each cell holds at most Capacity references. Inserts into a full cell are
// dropped for that step and counted in [Index.Dropped].
package spatial

import (
	"math"

	"github.com/pmwhite/gexf-viewer/pkg/geom"
	"github.com/pmwhite/gexf-viewer/pkg/graph"
)

// DefaultCapacity is the per-cell cap used when New is given capacity <= 0.
const DefaultCapacity = 100

// Key identifies a cell by its integer coordinates. Coordinates may be negative.
type Key struct {
	X, Y int
}

// Index maps cell keys to bounded lists of nodes.
//
// Index is not safe for concurrent use.
type Index struct {
	cellSize float64
	capacity int
	cells    map[Key][]*graph.Node
	size     int
	dropped  int
}

// New creates an empty index with the given cell size and per-cell capacity.
// cellSize must be positive; a non-positive capacity selects DefaultCapacity.
func New(cellSize float64, capacity int) *Index {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Index{
		cellSize: cellSize,
		capacity: capacity,
		cells:    make(map[Key][]*graph.Node),
	}
}

// CellSize returns the side length of a cell.
func (ix *Index) CellSize() float64 { return ix.cellSize }

// Capacity returns the maximum number of nodes held per cell.
func (ix *Index) Capacity() int { return ix.capacity }

// KeyOf returns the cell containing p: (floor(x/cellSize), floor(y/cellSize)).
func (ix *Index) KeyOf(p geom.Vec) Key {
	return Key{
		X: int(math.Floor(p.X / ix.cellSize)),
		Y: int(math.Floor(p.Y / ix.cellSize)),
	}
}

// Clear discards all cell contents. Cell slices are kept for reuse.
func (ix *Index) Clear() {
	for k, c := range ix.cells {
		if len(c) == 0 {
			delete(ix.cells, k)
			continue
		}
		clear(c)
		ix.cells[k] = c[:0]
	}
	ix.size = 0
	ix.dropped = 0
}

// Insert adds n to the cell containing its current position. It reports
// false when the cell is already full; the node is then absent from the
// index until the next rebuild.
func (ix *Index) Insert(n *graph.Node) bool {
	k := ix.KeyOf(n.Position)
	c := ix.cells[k]
	if len(c) >= ix.capacity {
		ix.dropped++
		return false
	}
	ix.cells[k] = append(c, n)
	ix.size++
	return true
}

// NeighborsOf returns the contents of the cell containing n, in insertion
// order. The result includes n itself when n was inserted; callers skip it.
// The returned slice is owned by the index and valid until the next Clear.
func (ix *Index) NeighborsOf(n *graph.Node) []*graph.Node {
	return ix.cells[ix.KeyOf(n.Position)]
}

// Len returns the number of nodes currently held.
func (ix *Index) Len() int { return ix.size }

// Dropped returns the number of inserts rejected since the last Clear.
func (ix *Index) Dropped() int { return ix.dropped }

// Occupied returns the number of non-empty cells.
func (ix *Index) Occupied() int {
	n := 0
	for _, c := range ix.cells {
		if len(c) > 0 {
			n++
		}
	}
	return n
}

// Rebuild clears the index and inserts every node.
func (ix *Index) Rebuild(nodes []*graph.Node) {
	ix.Clear()
	for _, n := range nodes {
		ix.Insert(n)
	}
}
