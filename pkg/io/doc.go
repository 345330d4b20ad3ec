// Package io reads graph descriptions and writes layout results.
//
// # Input Formats
//
// Two input formats are supported. Both produce a [Document] holding node and
// edge descriptors in file order; building and validating the graph is left
// to [graph.Load].
//
// GEXF files are read from the /gexf/graph/nodes/node and
// /gexf/graph/edges/edge elements. Node and edge endpoint ids must be
// integers:
//
//	<gexf xmlns="http://gexf.net/1.3" version="1.3">
//	  <graph defaultedgetype="directed">
//	    <nodes>
//	      <node id="1" label="app"/>
//	      <node id="2" label="lib"/>
//	    </nodes>
//	    <edges>
//	      <edge id="0" source="1" target="2"/>
//	    </edges>
//	  </graph>
//	</gexf>
//
// JSON files carry the same information:
//
//	{
//	  "nodes": [{"id": 1, "label": "app"}, {"id": 2, "label": "lib"}],
//	  "edges": [{"source": 1, "target": 2}]
//	}
//
// Use [Import] to read a file by path, choosing the decoder from the
// extension, or [ReadGEXF] and [ReadJSON] to decode from any io.Reader.
//
// # Output Formats
//
// [WriteSnapshot] encodes a [layout.Snapshot] as indented JSON.
// [WriteGEXF] writes the snapshot back out as GEXF with viz:position
// elements, so that the computed layout can be opened in other graph tools.
package io
