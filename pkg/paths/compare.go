package paths

import (
	"cmp"
	"slices"
)

// Comparison is the outcome of comparing a saved table with a generated one.
type Comparison struct {
	Match bool   `json:"match"`
	Saved string `json:"saved"` // dump of the saved table
	Fresh string `json:"fresh"` // dump of the generated table
}

// Compare reports whether two tables hold the same routes grouped the same
// way. Labels, group order and route order within a group are ignored.
func Compare(saved, fresh Table) Comparison {
	return Comparison{
		Match: Equivalent(saved, fresh),
		Saved: saved.String(),
		Fresh: fresh.String(),
	}
}

// CompareEncoded decodes both tables and compares them.
func CompareEncoded(saved, fresh []byte) (Comparison, error) {
	s, err := Decode(saved)
	if err != nil {
		return Comparison{}, err
	}
	f, err := Decode(fresh)
	if err != nil {
		return Comparison{}, err
	}
	return Compare(s, f), nil
}

// Equivalent is the match test of Compare.
func Equivalent(a, b Table) bool {
	ca, cb := canonical(a), canonical(b)
	return slices.EqualFunc(ca, cb, func(x, y [][]int) bool {
		return slices.EqualFunc(x, y, equalInts)
	})
}

// canonical strips labels and sorts routes within groups, then groups by
// size and content.
func canonical(t Table) [][][]int {
	out := make([][][]int, len(t.Groups))
	for i, g := range t.Groups {
		grp := make([][]int, len(g.SubPaths))
		copy(grp, g.SubPaths)
		slices.SortFunc(grp, compareInts)
		out[i] = grp
	}
	slices.SortFunc(out, func(x, y [][]int) int {
		if c := cmp.Compare(len(x), len(y)); c != 0 {
			return c
		}
		return slices.CompareFunc(x, y, compareInts)
	})
	return out
}

func equalInts(a, b []int) bool { return slices.Equal(a, b) }

func compareInts(a, b []int) int { return slices.Compare(a, b) }
