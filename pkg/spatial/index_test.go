package spatial

import (
	"testing"

	"github.com/pmwhite/gexf-viewer/pkg/geom"
	"github.com/pmwhite/gexf-viewer/pkg/graph"
)

func node(id int, x, y float64) *graph.Node {
	return &graph.Node{ID: id, Position: geom.Vec{X: x, Y: y}}
}

func TestKeyOf(t *testing.T) {
	ix := New(100, 0)
	tests := []struct {
		p    geom.Vec
		want Key
	}{
		{geom.Vec{X: 0, Y: 0}, Key{0, 0}},
		{geom.Vec{X: 99.9, Y: 100}, Key{0, 1}},
		{geom.Vec{X: -0.1, Y: -100}, Key{-1, -1}},
		{geom.Vec{X: -100.1, Y: 250}, Key{-2, 2}},
	}
	for _, tt := range tests {
		if got := ix.KeyOf(tt.p); got != tt.want {
			t.Errorf("KeyOf(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}
}

func TestNeighborsOfSharesCell(t *testing.T) {
	ix := New(100, 10)
	a := node(1, 10, 10)
	b := node(2, 90, 50)
	c := node(3, 110, 10) // next cell over
	d := node(4, -10, 10) // negative cell
	ix.Rebuild([]*graph.Node{a, b, c, d})

	got := ix.NeighborsOf(a)
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("NeighborsOf(a) = %v, want [a b]", got)
	}
	if got := ix.NeighborsOf(c); len(got) != 1 || got[0] != c {
		t.Errorf("NeighborsOf(c) = %v, want [c]", got)
	}
	if got := ix.NeighborsOf(d); len(got) != 1 || got[0] != d {
		t.Errorf("NeighborsOf(d) = %v, want [d]", got)
	}
	if ix.Occupied() != 3 {
		t.Errorf("Occupied = %d, want 3", ix.Occupied())
	}
}

func TestCapacity(t *testing.T) {
	const capacity = 8
	ix := New(100, capacity)
	nodes := make([]*graph.Node, capacity+5)
	for i := range nodes {
		nodes[i] = node(i, float64(i), float64(i))
	}

	// Below capacity every other node in the cell is returned.
	for _, n := range nodes[:capacity-1] {
		ix.Insert(n)
	}
	if got := len(ix.NeighborsOf(nodes[0])); got != capacity-1 {
		t.Errorf("below capacity: %d neighbors, want %d", got, capacity-1)
	}

	for _, n := range nodes[capacity-1:] {
		ix.Insert(n)
	}
	if got := len(ix.NeighborsOf(nodes[0])); got != capacity {
		t.Errorf("over capacity: %d neighbors, want at most %d", got, capacity)
	}
	if ix.Dropped() != 5 {
		t.Errorf("Dropped = %d, want 5", ix.Dropped())
	}
	if ix.Len() != capacity {
		t.Errorf("Len = %d, want %d", ix.Len(), capacity)
	}
}

func TestDefaultCapacity(t *testing.T) {
	ix := New(100, 0)
	if ix.Capacity() != DefaultCapacity {
		t.Fatalf("Capacity = %d, want %d", ix.Capacity(), DefaultCapacity)
	}
	n := DefaultCapacity + 5
	for i := 0; i < n; i++ {
		ix.Insert(node(i, 1, 1))
	}
	if got := len(ix.NeighborsOf(node(-1, 2, 2))); got != DefaultCapacity {
		t.Errorf("cell holds %d, want %d", got, DefaultCapacity)
	}
}

func TestClear(t *testing.T) {
	ix := New(50, 2)
	a := node(1, 1, 1)
	ix.Insert(a)
	ix.Insert(node(2, 2, 2))
	ix.Insert(node(3, 3, 3))

	ix.Clear()
	if ix.Len() != 0 || ix.Dropped() != 0 {
		t.Errorf("after Clear: Len=%d Dropped=%d", ix.Len(), ix.Dropped())
	}
	if got := ix.NeighborsOf(a); len(got) != 0 {
		t.Errorf("after Clear: NeighborsOf = %v", got)
	}

	// Moving a node and rebuilding places it in its new cell only.
	a.Position = geom.Vec{X: 500, Y: 500}
	ix.Rebuild([]*graph.Node{a})
	if got := ix.NeighborsOf(a); len(got) != 1 || got[0] != a {
		t.Errorf("after Rebuild: NeighborsOf = %v", got)
	}
	if got := ix.NeighborsOf(node(9, 1, 1)); len(got) != 0 {
		t.Errorf("old cell still holds %v", got)
	}
}
