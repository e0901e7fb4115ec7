// Package render draws the track graph of a turnout as a Graphviz diagram.
//
// [ToDOT] turns a generation result into DOT: segments, endpoints and
// bumpers as nodes, joints as edges. One route group can be highlighted,
// which is how the visualize command steps through a turnout's paths.
//
//	res := paths.Generate(in, paths.DefaultOptions())
//	dot := render.ToDOT(res, render.Options{Title: in.Title, Group: 0})
//	svg, err := render.RenderSVG(ctx, dot)
//
// [Convert] turns the SVG into pdf or png with the external rsvg-convert tool.
package render
