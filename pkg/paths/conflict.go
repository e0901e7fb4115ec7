package paths

import "strings"

// ConflictMap is the symmetric conflict relation between routes. The
// diagonal is always set.
type ConflictMap [][]bool

// BuildConflicts marks every pair of routes sharing a segment, in either
// direction. With endpoints set, routes meeting at one of the first realEPs
// endpoints conflict as well.
func BuildConflicts(subs []SubPath, realEPs int, endpoints bool) ConflictMap {
	n := len(subs)
	segs := make([]map[int]struct{}, n)
	for i, sp := range subs {
		segs[i] = make(map[int]struct{}, len(sp))
		for _, s := range sp.Segments() {
			segs[i][s] = struct{}{}
		}
	}

	c := make(ConflictMap, n)
	for i := range c {
		c[i] = make([]bool, n)
		c[i][i] = true
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			hit := shareSegment(segs[i], segs[j])
			if !hit && endpoints {
				hit = shareEndpoint(subs[i], subs[j], realEPs)
			}
			c[i][j], c[j][i] = hit, hit
		}
	}
	return c
}

func shareSegment(a, b map[int]struct{}) bool {
	if len(b) < len(a) {
		a, b = b, a
	}
	for s := range a {
		if _, ok := b[s]; ok {
			return true
		}
	}
	return false
}

func shareEndpoint(a, b SubPath, realEPs int) bool {
	a0, a1 := a.Terminals()
	b0, b1 := b.Terminals()
	for _, x := range [2]int{a0, a1} {
		if x < realEPs && (x == b0 || x == b1) {
			return true
		}
	}
	return false
}

// Conflicts reports whether routes i and j conflict.
func (c ConflictMap) Conflicts(i, j int) bool {
	return c[i][j]
}

// String renders the map as rows of 'X' and '.'.
func (c ConflictMap) String() string {
	var b strings.Builder
	for _, row := range c {
		for _, hit := range row {
			if hit {
				b.WriteByte('X')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
