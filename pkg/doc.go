// Package pkg provides the libraries behind gexfview, a force-directed
// layout engine for directed graphs.
//
// # Overview
//
// A graph is loaded from GEXF or JSON, every node gets a height (its depth
// along inward or outward edges) and the engine then simulates four forces
// until the picture settles: repulsion between nearby nodes, springs along
// edges, a pull toward each node's height band and a weak pull toward the
// centroid. The packages are layered bottom-up:
//
//  1. [geom] - 2D vector arithmetic
//  2. [errors] - coded errors shared by every layer
//  3. [graph] - node and edge model, adjacency and heights
//  4. [spatial] - uniform grid used to limit repulsion to nearby nodes
//  5. [physics] - force accumulation and integration
//  6. [layout] - the engine: configuration, placement, stepping, snapshots
//  7. [scheduler] - goroutine-safe ticking at a fixed frame rate
//  8. [io], [config] - graph documents and configuration files
//  9. [render], [live], [watch] - Graphviz output, browser streaming and
//     file watching
//
// # Data Flow
//
//	GEXF / JSON file
//	       ↓
//	  [io] (decode descriptors)
//	       ↓
//	  [layout] Engine.Load → [graph] (adjacency, heights)
//	       ↓
//	  Engine.Start (seeded placement) → Engine.Step (physics)
//	       ↓
//	  [layout] Snapshot → [render/nodelink], [live], terminal view
//
// # Quick Start
//
//	doc, err := io.Import("deps.gexf")
//	if err != nil {
//	    return err
//	}
//	e, err := layout.New(layout.DefaultConfig())
//	if err != nil {
//	    return err
//	}
//	if err := e.Load(doc.Nodes, doc.Edges); err != nil {
//	    return err
//	}
//	if err := e.Start(); err != nil {
//	    return err
//	}
//	if err := e.Run(500); err != nil {
//	    return err
//	}
//	snap := e.Snapshot()
//
// [geom]: https://pkg.go.dev/github.com/pmwhite/gexf-viewer/pkg/geom
// [errors]: https://pkg.go.dev/github.com/pmwhite/gexf-viewer/pkg/errors
// [graph]: https://pkg.go.dev/github.com/pmwhite/gexf-viewer/pkg/graph
// [spatial]: https://pkg.go.dev/github.com/pmwhite/gexf-viewer/pkg/spatial
// [physics]: https://pkg.go.dev/github.com/pmwhite/gexf-viewer/pkg/physics
// [layout]: https://pkg.go.dev/github.com/pmwhite/gexf-viewer/pkg/layout
// [scheduler]: https://pkg.go.dev/github.com/pmwhite/gexf-viewer/pkg/scheduler
// [io]: https://pkg.go.dev/github.com/pmwhite/gexf-viewer/pkg/io
// [config]: https://pkg.go.dev/github.com/pmwhite/gexf-viewer/pkg/config
// [render]: https://pkg.go.dev/github.com/pmwhite/gexf-viewer/pkg/render
// [live]: https://pkg.go.dev/github.com/pmwhite/gexf-viewer/pkg/live
// [watch]: https://pkg.go.dev/github.com/pmwhite/gexf-viewer/pkg/watch
//
// [render/nodelink]: https://pkg.go.dev/github.com/pmwhite/gexf-viewer/pkg/render/nodelink
package pkg
