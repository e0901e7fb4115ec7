package paths

import (
	"fmt"
	"strings"

	"github.com/matzehuels/turnoutpaths/pkg/geom"
)

// AdjacencyMap records which graph nodes meet at each segment end, and which
// segment ends each endpoint attaches to.
type AdjacencyMap struct {
	// Ends[s][e] lists the nodes joined to end e of segment s: segment ends
	// first, in segment order, then endpoints. Nil for non-track segments.
	Ends [][2][]Elem
	// Endpoints[i] lists the segment ends endpoint i attaches to.
	Endpoints [][]Elem
	// Track[s] is set for segments taking part in the graph.
	Track []bool
}

// BuildAdjacency connects the track segments and endpoints of a turnout.
//
// Two segment ends join when their tangents oppose within tol degrees and
// their positions are at most dist apart. An endpoint attaches to a segment
// end whose tangent points the same way within tol and that lies within
// dist. Segments that are not track, or whose geometry is incomplete, are
// left out of the graph.
func BuildAdjacency(segs []geom.Segment, eps []geom.Endpoint, tol, dist float64) *AdjacencyMap {
	m := &AdjacencyMap{
		Ends:      make([][2][]Elem, len(segs)),
		Endpoints: make([][]Elem, len(eps)),
		Track:     make([]bool, len(segs)),
	}

	type end struct {
		pos   geom.Point
		angle float64
	}
	ends := make([][2]end, len(segs))
	for s, seg := range segs {
		if !seg.Track || seg.Validate() != nil {
			continue
		}
		m.Track[s] = true
		for e := 0; e < 2; e++ {
			ends[s][e].pos, ends[s][e].angle = seg.End(e)
		}
	}

	for s0 := range segs {
		if !m.Track[s0] {
			continue
		}
		for s1 := s0 + 1; s1 < len(segs); s1++ {
			if !m.Track[s1] {
				continue
			}
			for e0 := 0; e0 < 2; e0++ {
				for e1 := 0; e1 < 2; e1++ {
					a, b := ends[s0][e0], ends[s1][e1]
					if !geom.Opposing(a.angle, b.angle, tol) || a.pos.Distance(b.pos) > dist {
						continue
					}
					m.Ends[s0][e0] = append(m.Ends[s0][e0], SegEnd(s1, e1))
					m.Ends[s1][e1] = append(m.Ends[s1][e1], SegEnd(s0, e0))
				}
			}
		}
	}

	for i, ep := range eps {
		for s := range segs {
			if !m.Track[s] {
				continue
			}
			for e := 0; e < 2; e++ {
				se := ends[s][e]
				if !geom.Aligned(se.angle, ep.Angle, tol) || se.pos.Distance(ep.Pos) > dist {
					continue
				}
				m.Ends[s][e] = append(m.Ends[s][e], EP(i))
				m.Endpoints[i] = append(m.Endpoints[i], SegEnd(s, e))
			}
		}
	}
	return m
}

// Next returns the nodes joined to segment end e.
func (m *AdjacencyMap) Next(e Elem) []Elem {
	if e.IsEndpoint() || e.Index < 0 || e.Index >= len(m.Ends) {
		return nil
	}
	return m.Ends[e.Index][e.End]
}

// String dumps the map one segment end per line.
func (m *AdjacencyMap) String() string {
	var b strings.Builder
	for s := range m.Ends {
		if !m.Track[s] {
			fmt.Fprintf(&b, "S%d: -\n", s)
			continue
		}
		for e := 0; e < 2; e++ {
			fmt.Fprintf(&b, "S%d.%d:", s, e)
			for _, n := range m.Ends[s][e] {
				fmt.Fprintf(&b, " %s", n)
			}
			b.WriteByte('\n')
		}
	}
	for i, att := range m.Endpoints {
		fmt.Fprintf(&b, "E%d:", i)
		for _, n := range att {
			fmt.Fprintf(&b, " %s", n)
		}
		b.WriteByte('\n')
	}
	return b.String()
}
