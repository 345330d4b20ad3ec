package io

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pmwhite/gexf-viewer/pkg/errors"
	"github.com/pmwhite/gexf-viewer/pkg/graph"
	"github.com/pmwhite/gexf-viewer/pkg/layout"
)

const (
	gexfNamespace = "http://gexf.net/1.3"
	vizNamespace  = "http://gexf.net/1.3/viz"
)

// Element names carry no namespace so that files written against any GEXF
// version decode the same way.
type gexfIn struct {
	XMLName xml.Name `xml:"gexf"`
	Graph   struct {
		Nodes []struct {
			ID    string `xml:"id,attr"`
			Label string `xml:"label,attr"`
		} `xml:"nodes>node"`
		Edges []struct {
			Source string `xml:"source,attr"`
			Target string `xml:"target,attr"`
		} `xml:"edges>edge"`
	} `xml:"graph"`
}

// ReadGEXF decodes a GEXF document from r.
//
// Every node id and edge endpoint must parse as an integer; anything else is
// reported as INVALID_INPUT naming the offending element. Attributes and
// elements other than node ids, labels and edge endpoints are ignored.
// ReadGEXF does not check that edge endpoints refer to declared nodes.
func ReadGEXF(r io.Reader) (Document, error) {
	var in gexfIn
	if err := xml.NewDecoder(r).Decode(&in); err != nil {
		return Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode GEXF")
	}

	doc := Document{
		Nodes: make([]graph.NodeDescriptor, 0, len(in.Graph.Nodes)),
		Edges: make([]graph.EdgeDescriptor, 0, len(in.Graph.Edges)),
	}
	for i, n := range in.Graph.Nodes {
		id, err := parseID(n.ID)
		if err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "node %d: id", i)
		}
		doc.Nodes = append(doc.Nodes, graph.NodeDescriptor{ID: id, Label: n.Label})
	}
	for i, e := range in.Graph.Edges {
		source, err := parseID(e.Source)
		if err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "edge %d: source", i)
		}
		target, err := parseID(e.Target)
		if err != nil {
			return Document{}, errors.Wrap(errors.ErrCodeInvalidInput, err, "edge %d: target", i)
		}
		doc.Edges = append(doc.Edges, graph.EdgeDescriptor{Source: source, Target: target})
	}
	return doc, nil
}

func parseID(s string) (int, error) { return strconv.Atoi(strings.TrimSpace(s)) }

type gexfOut struct {
	XMLName xml.Name `xml:"gexf"`
	XMLNS   string   `xml:"xmlns,attr"`
	Viz     string   `xml:"xmlns:viz,attr"`
	Version string   `xml:"version,attr"`
	Graph   graphOut `xml:"graph"`
}

type graphOut struct {
	EdgeType string    `xml:"defaultedgetype,attr"`
	Nodes    []nodeOut `xml:"nodes>node"`
	Edges    []edgeOut `xml:"edges>edge"`
}

type nodeOut struct {
	ID       int         `xml:"id,attr"`
	Label    string      `xml:"label,attr,omitempty"`
	Position positionOut `xml:"viz:position"`
}

type positionOut struct {
	X float64 `xml:"x,attr"`
	Y float64 `xml:"y,attr"`
}

type edgeOut struct {
	ID     int `xml:"id,attr"`
	Source int `xml:"source,attr"`
	Target int `xml:"target,attr"`
}

// WriteGEXF encodes s as a directed GEXF graph with one viz:position per
// node. Edges are written in snapshot node order.
func WriteGEXF(s layout.Snapshot, w io.Writer) error {
	out := gexfOut{
		XMLNS:   gexfNamespace,
		Viz:     vizNamespace,
		Version: "1.3",
		Graph: graphOut{
			EdgeType: "directed",
			Nodes:    make([]nodeOut, len(s.Nodes)),
		},
	}
	for i, n := range s.Nodes {
		out.Graph.Nodes[i] = nodeOut{
			ID:       n.ID,
			Label:    n.Label,
			Position: positionOut{X: n.Position.X, Y: n.Position.Y},
		}
		for _, target := range n.Outward {
			out.Graph.Edges = append(out.Graph.Edges, edgeOut{
				ID:     len(out.Graph.Edges),
				Source: n.ID,
				Target: target,
			})
		}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}
