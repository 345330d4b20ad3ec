package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/pmwhite/gexf-viewer/pkg/geom"
	"github.com/pmwhite/gexf-viewer/pkg/layout"
)

func snapshot() layout.Snapshot {
	return layout.Snapshot{
		Tick:  3,
		State: "running",
		Nodes: []layout.NodeState{
			{ID: 1, Label: "app", Position: geom.Vec{X: 10, Y: 0}, Height: 0, Outward: []int{2}},
			{ID: 2, Label: "lib", Position: geom.Vec{X: 12.5, Y: 100}, Height: 1, Outward: []int{}},
		},
	}
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(snapshot(), Options{})

	for _, want := range []string{
		"digraph G",
		"layout=neato",
		`1 [label="app", pos="10.00,0.00!"`,
		`2 [label="lib", pos="12.50,-100.00!"`,
		"1 -> 2;",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q:\n%s", want, dot)
		}
	}
}

func TestToDOT_Scale(t *testing.T) {
	dot := ToDOT(snapshot(), Options{Scale: 2})
	if !strings.Contains(dot, `pos="25.00,-200.00!"`) {
		t.Errorf("ToDOT() ignored scale:\n%s", dot)
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(snapshot(), Options{Detailed: true})
	if !strings.Contains(dot, `label="lib\nid: 2\nheight: 1"`) {
		t.Errorf("ToDOT() detailed output missing id and height:\n%s", dot)
	}
}

func TestToDOT_ColorsByHeight(t *testing.T) {
	dot := ToDOT(snapshot(), Options{Colors: []string{"red", "blue"}})
	if !strings.Contains(dot, `fillcolor="red"`) || !strings.Contains(dot, `fillcolor="blue"`) {
		t.Errorf("ToDOT() did not cycle colours:\n%s", dot)
	}
}

func TestToDOT_Empty(t *testing.T) {
	dot := ToDOT(layout.Snapshot{}, Options{})
	if !strings.HasPrefix(dot, "digraph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("ToDOT(empty) = %q", dot)
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(snapshot(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG: %v", err)
	}
	out := string(svg)
	if !strings.Contains(out, "<svg") || !strings.Contains(out, "app") {
		t.Errorf("RenderSVG output missing svg or label:\n%s", out)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `width="100" height="50"`) || strings.Contains(out, "100pt") {
		t.Errorf("normalizeViewBox = %s", out)
	}
}
