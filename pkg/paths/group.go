package paths

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

// Group is a set of mutually conflict-free routes, held as ascending indices
// into the route list.
type Group []int

// Contains reports whether route i is a member of g.
func (g Group) Contains(i int) bool {
	_, ok := slices.BinarySearch(g, i)
	return ok
}

// subsetOf reports whether every member of g is in h.
func (g Group) subsetOf(h Group) bool {
	if len(g) > len(h) {
		return false
	}
	j := 0
	for _, x := range g {
		for j < len(h) && h[j] < x {
			j++
		}
		if j == len(h) || h[j] != x {
			return false
		}
	}
	return true
}

// singletons gives every route a group of its own.
func (g *generator) singletons() {
	for i := range g.subPaths {
		g.groups = append(g.groups, Group{i})
	}
}

// combine searches for the maximal conflict-free groups.
func (g *generator) combine() {
	if len(g.subPaths) == 0 {
		return
	}
	g.search(0)
	if g.truncated {
		g.logger.Warn("route group search truncated",
			"turnout", g.title,
			"limit", g.opts.MaxGroups,
			"subpaths", len(g.subPaths),
			"groups", len(g.groups))
	}
}

// search decides whether route i joins the chain, trying exclusion first.
func (g *generator) search(i int) {
	if g.truncated {
		return
	}
	conflict := false
	for _, j := range g.chain {
		if g.conflicts[i][j] {
			conflict = true
			break
		}
	}

	if i == len(g.subPaths)-1 {
		cand := make(Group, len(g.chain), len(g.chain)+1)
		copy(cand, g.chain)
		if !conflict {
			cand = append(cand, i)
		}
		g.materialize(cand)
		return
	}

	g.search(i + 1)
	if conflict {
		return
	}
	g.chain = append(g.chain, i)
	g.search(i + 1)
	g.chain = g.chain[:len(g.chain)-1]
}

// materialize keeps cand unless a retained group already covers it, and
// drops retained groups that cand covers.
func (g *generator) materialize(cand Group) {
	g.materialized++
	if g.materialized > g.opts.MaxGroups {
		g.truncated = true
		return
	}
	if g.opts.Verbosity >= TraceWalk {
		g.logger.Debugf("group candidate %v", cand)
	}

	for _, have := range g.groups {
		if cand.subsetOf(have) && len(cand) < len(have) {
			return
		}
	}
	kept := g.groups[:0]
	for _, have := range g.groups {
		if !have.subsetOf(cand) {
			kept = append(kept, have)
		}
	}
	g.groups = append(kept, cand)
}

// compareSubPaths orders routes by their element keys, shorter first on a
// common prefix.
func compareSubPaths(a, b SubPath) int {
	return slices.CompareFunc(a, b, func(x, y Elem) int {
		return cmp.Compare(x.key(), y.key())
	})
}

// sortGroups puts groups into canonical order: by their member routes, then
// by the member indices themselves.
func sortGroups(subs []SubPath, groups []Group) {
	slices.SortStableFunc(groups, func(a, b Group) int {
		if c := slices.CompareFunc(a, b, func(x, y int) int {
			return compareSubPaths(subs[x], subs[y])
		}); c != 0 {
			return c
		}
		return slices.Compare(a, b)
	})
}

func dumpGroups(groups []Group) string {
	var b strings.Builder
	for i, grp := range groups {
		fmt.Fprintf(&b, "P%d: %v\n", i, []int(grp))
	}
	return b.String()
}
