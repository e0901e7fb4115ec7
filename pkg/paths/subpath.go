package paths

import (
	"fmt"
	"strings"
)

// SubPath is one route through a turnout. Its first and last elements are
// endpoints (real or bumper), everything between is a segment end in order
// of travel. A SubPath never visits a segment twice.
type SubPath []Elem

// Terminals returns the endpoint indices at the two ends of the route.
func (sp SubPath) Terminals() (int, int) {
	return sp[0].Index, sp[len(sp)-1].Index
}

// Segments returns the segment indices the route traverses, in order.
func (sp SubPath) Segments() []int {
	segs := make([]int, 0, len(sp))
	for _, e := range sp {
		if !e.IsEndpoint() {
			segs = append(segs, e.Index)
		}
	}
	return segs
}

// Values returns the signed Path Table values of the route's segments.
func (sp SubPath) Values() []int {
	vals := make([]int, 0, len(sp))
	for _, e := range sp {
		if !e.IsEndpoint() {
			vals = append(vals, e.Value())
		}
	}
	return vals
}

func (sp SubPath) String() string {
	parts := make([]string, len(sp))
	for i, e := range sp {
		parts[i] = e.String()
	}
	return strings.Join(parts, " ")
}

// sameTerminals reports whether a and b join the same unordered endpoint pair.
func sameTerminals(a, b SubPath) bool {
	a0, a1 := a.Terminals()
	b0, b1 := b.Terminals()
	return (a0 == b0 && a1 == b1) || (a0 == b1 && a1 == b0)
}

// normalize orients sp so that no more than half of its segments are
// entered from end 1.
func normalize(sp SubPath) SubPath {
	var segs, reversed int
	for _, e := range sp {
		if e.IsEndpoint() {
			continue
		}
		segs++
		if e.End == 1 {
			reversed++
		}
	}
	if reversed*2 <= segs {
		return sp
	}
	out := make(SubPath, len(sp))
	for i, e := range sp {
		if !e.IsEndpoint() {
			e = e.Other()
		}
		out[len(sp)-1-i] = e
	}
	return out
}

// enumerate walks the graph from every endpoint and collects the routes.
func (g *generator) enumerate() {
	g.nextBumper = len(g.adj.Endpoints)
	g.visited = make([]bool, len(g.adj.Ends))
	for i, attached := range g.adj.Endpoints {
		clear(g.visited)
		for _, d := range attached {
			g.path = append(g.path[:0], EP(i))
			g.walk(d)
		}
	}
	g.path = nil
}

// walk extends the current path with node n.
func (g *generator) walk(n Elem) {
	if n.IsEndpoint() {
		g.path = append(g.path, n)
		g.emit()
		g.path = g.path[:len(g.path)-1]
		return
	}

	next := g.adj.Next(n.Other())
	if len(next) == 0 {
		g.path = append(g.path, n, EP(g.nextBumper))
		g.nextBumper++
		g.emit()
		g.path = g.path[:len(g.path)-2]
		return
	}

	if g.visited[n.Index] {
		if g.opts.Verbosity >= TraceWalk {
			g.logger.Debugf("loop at %s after %s", n, SubPath(g.path))
		}
		return
	}
	g.visited[n.Index] = true

	g.path = append(g.path, n)
	for _, m := range next {
		g.walk(m)
	}
	g.path = g.path[:len(g.path)-1]
}

// emit materializes the current path unless its endpoint pair is known.
func (g *generator) emit() {
	sp := SubPath(g.path)
	for _, have := range g.subPaths {
		if sameTerminals(have, sp) {
			if g.opts.Verbosity >= TraceWalk {
				g.logger.Debugf("duplicate %s", sp)
			}
			return
		}
	}
	g.subPaths = append(g.subPaths, normalize(append(SubPath(nil), sp...)))
}

func dumpSubPaths(subs []SubPath) string {
	var b strings.Builder
	for i, sp := range subs {
		fmt.Fprintf(&b, "%d: %s\n", i, sp)
	}
	return b.String()
}
