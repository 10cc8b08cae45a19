// Package render draws device topologies as Graphviz diagrams.
//
// [ToDOT] writes a coupling map as DOT source. With [Options] the diagram
// shows where each logical qubit sits and which couplings carried swaps:
//
//	dot := render.ToDOT(topo, render.Options{
//	    Placement: res.Final,
//	    Swaps:     swaps,
//	})
//	svg, err := render.RenderSVG(ctx, dot)
//
// SVG is produced in-process with [github.com/goccy/go-graphviz]. PDF and
// PNG go through rsvg-convert from librsvg; [Render] dispatches on a format
// name.
package render
