package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/turnoutpaths/pkg/paths"
)

// NoGroup disables highlighting.
const NoGroup = -1

// Options configures the route diagram.
type Options struct {
	// Title is shown as the graph label.
	Title string
	// Group is the index of the route group to highlight, or NoGroup.
	Group int
	// Detailed adds the end number to every edge.
	Detailed bool
}

const highlight = "#d1495b"

// ToDOT converts a generation result to Graphviz DOT.
//
// Track segments become boxes, endpoints circles and bumpers squares. Edges
// join coincident segment ends and attach endpoints. With Options.Group set,
// the segments and joints used by that group's routes are drawn in colour.
func ToDOT(res *paths.Result, opts Options) string {
	adj := res.Adjacency
	hiNodes, hiEdges := highlighted(res, opts.Group)

	var buf bytes.Buffer
	buf.WriteString("graph turnout {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", opts.Title)
	}
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=14, style=filled, fillcolor=white];\n")
	buf.WriteString("\n")

	for s, track := range adj.Track {
		if !track {
			continue
		}
		writeNode(&buf, segNode(s), fmt.Sprintf("S%d", s), "box", hiNodes)
	}
	for i := range adj.Endpoints {
		writeNode(&buf, epNode(i), fmt.Sprintf("E%d", i), "circle", hiNodes)
	}
	bumpers := bumperEnds(res)
	for b := len(adj.Endpoints); b < len(adj.Endpoints)+res.Bumpers; b++ {
		writeNode(&buf, epNode(b), fmt.Sprintf("B%d", b), "square", hiNodes)
	}

	buf.WriteString("\n")
	for s := range adj.Ends {
		for e := 0; e < 2; e++ {
			for _, n := range adj.Ends[s][e] {
				if n.IsEndpoint() {
					writeEdge(&buf, epNode(n.Index), segNode(s), -1, e, opts.Detailed, hiEdges)
					continue
				}
				// each joint is listed on both ends; write it once
				if n.Index < s {
					continue
				}
				writeEdge(&buf, segNode(s), segNode(n.Index), e, n.End, opts.Detailed, hiEdges)
			}
		}
	}
	for b := len(adj.Endpoints); b < len(adj.Endpoints)+res.Bumpers; b++ {
		if se, ok := bumpers[b]; ok {
			writeEdge(&buf, epNode(b), segNode(se.Index), -1, se.End, opts.Detailed, hiEdges)
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

func segNode(s int) string { return "s" + strconv.Itoa(s) }
func epNode(i int) string  { return "e" + strconv.Itoa(i) }

func writeNode(buf *bytes.Buffer, id, label, shape string, hi map[string]bool) {
	attrs := fmt.Sprintf("label=%q, shape=%s", label, shape)
	if hi[id] {
		attrs += fmt.Sprintf(", fillcolor=%q, fontcolor=white", highlight)
	}
	fmt.Fprintf(buf, "  %s [%s];\n", id, attrs)
}

func writeEdge(buf *bytes.Buffer, a, b string, endA, endB int, detailed bool, hi map[string]bool) {
	var attrs []string
	if detailed {
		if endA >= 0 {
			attrs = append(attrs, fmt.Sprintf("taillabel=\"%d\"", endA))
		}
		attrs = append(attrs, fmt.Sprintf("headlabel=\"%d\"", endB))
	}
	if hi[edgeKey(a, b)] {
		attrs = append(attrs, fmt.Sprintf("color=%q", highlight), "penwidth=3")
	}
	if len(attrs) == 0 {
		fmt.Fprintf(buf, "  %s -- %s;\n", a, b)
		return
	}
	fmt.Fprintf(buf, "  %s -- %s [", a, b)
	for i, at := range attrs {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(at)
	}
	buf.WriteString("];\n")
}

func edgeKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

func elemNode(e paths.Elem) string {
	if e.IsEndpoint() {
		return epNode(e.Index)
	}
	return segNode(e.Index)
}

// highlighted collects the nodes and edges used by the routes of group g.
func highlighted(res *paths.Result, g int) (map[string]bool, map[string]bool) {
	nodes, edges := map[string]bool{}, map[string]bool{}
	if g < 0 || g >= len(res.Groups) {
		return nodes, edges
	}
	for _, sp := range res.Groups[g] {
		route := res.SubPaths[sp]
		for i, e := range route {
			nodes[elemNode(e)] = true
			if i > 0 {
				edges[edgeKey(elemNode(route[i-1]), elemNode(e))] = true
			}
		}
	}
	return nodes, edges
}

// bumperEnds finds the segment end each bumper closes.
func bumperEnds(res *paths.Result) map[int]paths.Elem {
	nreal := len(res.Adjacency.Endpoints)
	out := make(map[int]paths.Elem, res.Bumpers)
	for _, sp := range res.SubPaths {
		for _, i := range []int{0, len(sp) - 1} {
			if !sp[i].IsEndpoint() || sp[i].Index < nreal {
				continue
			}
			nb := i + 1
			if i > 0 {
				nb = i - 1
			}
			// the bumper sits on the far end of its neighbouring segment
			se := sp[nb]
			if i > 0 {
				se = se.Other()
			}
			out[sp[i].Index] = se
		}
	}
	return out
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's point-sized svg header with one that
// scales to its container.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}
