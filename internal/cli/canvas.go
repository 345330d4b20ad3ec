package cli

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/pmwhite/gexf-viewer/pkg/geom"
	"github.com/pmwhite/gexf-viewer/pkg/layout"
)

// Terminal cells are roughly twice as tall as they are wide.
const cellAspect = 2.0

const (
	zoomStep = 1.25
	minZoom  = 0.1
	maxZoom  = 50
)

// viewport maps layout coordinates onto a grid of terminal cells. At zoom 1
// with no pan the whole graph fits the grid.
type viewport struct {
	zoom       float64
	panX, panY int
}

func newViewport() viewport { return viewport{zoom: 1} }

func (v viewport) zoomIn() viewport {
	v.zoom = min(v.zoom*zoomStep, maxZoom)
	return v
}

func (v viewport) zoomOut() viewport {
	v.zoom = max(v.zoom/zoomStep, minZoom)
	return v
}

// projection converts layout positions into cell coordinates.
type projection struct {
	center  geom.Vec
	scale   float64
	originX float64
	originY float64
}

// project fits the box lo..hi into a w by h grid.
func (v viewport) project(lo, hi geom.Vec, w, h int) projection {
	spanX := math.Max(hi.X-lo.X, 1)
	spanY := math.Max(hi.Y-lo.Y, 1)
	scale := math.Min(float64(max(w-1, 1))/spanX, float64(max(h-1, 1))*cellAspect/spanY)
	return projection{
		center:  lo.Add(hi).Scale(0.5),
		scale:   scale * v.zoom,
		originX: float64(w-1)/2 + float64(v.panX),
		originY: float64(h-1)/2 + float64(v.panY),
	}
}

// cell returns the column and row for p.
func (p projection) cell(pos geom.Vec) (x, y int) {
	d := pos.Sub(p.center)
	x = int(math.Floor(p.originX + d.X*p.scale + 0.5))
	y = int(math.Floor(p.originY + d.Y*p.scale/cellAspect + 0.5))
	return x, y
}

// cellKind orders what may overwrite what: nodes beat labels beat edges.
type cellKind uint8

const (
	cellEmpty cellKind = iota
	cellEdge
	cellLabel
	cellNode
)

type cell struct {
	r    rune
	kind cellKind
	band int
}

// canvas is a fixed-size grid of styled runes.
type canvas struct {
	w, h  int
	cells []cell
}

func newCanvas(w, h int) *canvas {
	w, h = max(w, 0), max(h, 0)
	c := &canvas{w: w, h: h, cells: make([]cell, w*h)}
	for i := range c.cells {
		c.cells[i].r = ' '
	}
	return c
}

func (c *canvas) set(x, y int, r rune, kind cellKind, band int) {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return
	}
	i := y*c.w + x
	if c.cells[i].kind > kind {
		return
	}
	c.cells[i] = cell{r: r, kind: kind, band: band}
}

// at returns the rune at x, y, or 0 outside the grid.
func (c *canvas) at(x, y int) rune {
	if x < 0 || y < 0 || x >= c.w || y >= c.h {
		return 0
	}
	return c.cells[y*c.w+x].r
}

// line draws a Bresenham line between two cells, excluding the endpoints.
func (c *canvas) line(x0, y0, x1, y1 int) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := sign(x1-x0), sign(y1-y0)
	e := dx + dy
	x, y := x0, y0
	for x != x1 || y != y1 {
		if x != x0 || y != y0 {
			c.set(x, y, '·', cellEdge, 0)
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}
		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func (c *canvas) text(x, y int, s string) {
	for _, r := range s {
		c.set(x, y, r, cellLabel, 0)
		x++
	}
}

// String renders the grid, styling runs of cells that share a style.
func (c *canvas) String() string {
	var b strings.Builder
	for y := range c.h {
		row := c.cells[y*c.w : (y+1)*c.w]
		for start := 0; start < len(row); {
			end := start + 1
			for end < len(row) && row[end].kind == row[start].kind && row[end].band == row[start].band {
				end++
			}
			var run strings.Builder
			for _, cl := range row[start:end] {
				run.WriteRune(cl.r)
			}
			b.WriteString(styleFor(row[start]).Render(run.String()))
			start = end
		}
		if y < c.h-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func styleFor(cl cell) lipgloss.Style {
	switch cl.kind {
	case cellNode:
		return lipgloss.NewStyle().Foreground(bandColor(cl.band))
	case cellEdge:
		return styleEdge
	case cellLabel:
		return styleLabel
	default:
		return lipgloss.NewStyle()
	}
}

// draw paints snap onto a w by h canvas through v. Edges are drawn first so
// nodes and labels sit on top of them.
func draw(snap layout.Snapshot, v viewport, w, h int, labels bool) *canvas {
	c := newCanvas(w, h)
	lo, hi, ok := snap.Bounds()
	if !ok || c.w == 0 || c.h == 0 {
		return c
	}
	proj := v.project(lo, hi, c.w, c.h)

	type point struct{ x, y int }
	cells := make([]point, len(snap.Nodes))
	for i, n := range snap.Nodes {
		x, y := proj.cell(n.Position)
		cells[i] = point{x, y}
	}

	index := snap.IndexByID()
	for i, n := range snap.Nodes {
		for _, id := range n.Outward {
			if j, ok := index[id]; ok {
				c.line(cells[i].x, cells[i].y, cells[j].x, cells[j].y)
			}
		}
	}
	if labels {
		for i, n := range snap.Nodes {
			c.text(cells[i].x+2, cells[i].y, n.Label)
		}
	}
	for i, n := range snap.Nodes {
		c.set(cells[i].x, cells[i].y, '●', cellNode, n.Height)
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
