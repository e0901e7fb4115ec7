package paths

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/turnoutpaths/pkg/errors"
)

// Table is the decoded form of a Path Table.
type Table struct {
	Groups []TableGroup `json:"groups" toml:"groups"`
}

// TableGroup is one labelled group of a Path Table. Each route is a list of
// signed segment values as described by Elem.Value.
type TableGroup struct {
	Label    string  `json:"label" toml:"label"`
	SubPaths [][]int `json:"subpaths" toml:"subpaths"`
}

// BuildTable lays out groups, already sorted, as a Table labelled P0, P1, ...
func BuildTable(subs []SubPath, groups []Group) Table {
	t := Table{Groups: make([]TableGroup, 0, len(groups))}
	for i, grp := range groups {
		tg := TableGroup{
			Label:    "P" + strconv.Itoa(i),
			SubPaths: make([][]int, 0, len(grp)),
		}
		for _, sp := range grp {
			tg.SubPaths = append(tg.SubPaths, subs[sp].Values())
		}
		t.Groups = append(t.Groups, tg)
	}
	return t
}

// Empty reports whether the table has no groups, meaning no routes.
func (t Table) Empty() bool { return len(t.Groups) == 0 }

// Clone returns a deep copy of t.
func (t Table) Clone() Table {
	out := Table{Groups: make([]TableGroup, len(t.Groups))}
	for i, g := range t.Groups {
		out.Groups[i].Label = g.Label
		out.Groups[i].SubPaths = make([][]int, len(g.SubPaths))
		for j, sp := range g.SubPaths {
			out.Groups[i].SubPaths[j] = append([]int(nil), sp...)
		}
	}
	return out
}

// Encode serializes t. It fails on empty or zero-containing labels, empty
// routes and values outside the signed byte range.
func (t Table) Encode() ([]byte, error) {
	var buf bytes.Buffer
	for gi, g := range t.Groups {
		if g.Label == "" || strings.IndexByte(g.Label, 0) >= 0 {
			return nil, errors.New(errors.ErrCodeInvalidTable, "group %d: invalid label %q", gi, g.Label)
		}
		buf.WriteString(g.Label)
		buf.WriteByte(0)
		for si, sp := range g.SubPaths {
			if len(sp) == 0 {
				return nil, errors.New(errors.ErrCodeInvalidTable, "group %s: route %d is empty", g.Label, si)
			}
			for _, v := range sp {
				if v == 0 || v < -errors.MaxSegments || v > errors.MaxSegments {
					return nil, errors.New(errors.ErrCodeInvalidTable, "group %s: value %d out of range", g.Label, v)
				}
				buf.WriteByte(byte(int8(v)))
			}
			buf.WriteByte(0)
		}
		buf.WriteByte(0)
	}
	buf.WriteByte(0)
	return buf.Bytes(), nil
}

// Decode parses an encoded Path Table. Bytes after the closing zero are
// ignored.
func Decode(buf []byte) (Table, error) {
	t, _, err := decode(buf)
	return t, err
}

// Length returns the size of the encoded table at the start of buf,
// including its closing zero.
func Length(buf []byte) (int, error) {
	_, n, err := decode(buf)
	return n, err
}

func decode(buf []byte) (Table, int, error) {
	var t Table
	pos := 0
	next := func() (byte, error) {
		if pos >= len(buf) {
			return 0, errors.New(errors.ErrCodeInvalidTable, "table truncated at byte %d", pos)
		}
		b := buf[pos]
		pos++
		return b, nil
	}

	for {
		b, err := next()
		if err != nil {
			return Table{}, 0, err
		}
		if b == 0 {
			return t, pos, nil
		}

		start := pos - 1
		for b != 0 {
			if b, err = next(); err != nil {
				return Table{}, 0, err
			}
		}
		g := TableGroup{Label: string(buf[start : pos-1])}

		for {
			if b, err = next(); err != nil {
				return Table{}, 0, err
			}
			if b == 0 {
				break
			}
			var sp []int
			for b != 0 {
				sp = append(sp, int(int8(b)))
				if b, err = next(); err != nil {
					return Table{}, 0, err
				}
			}
			g.SubPaths = append(g.SubPaths, sp)
		}
		t.Groups = append(t.Groups, g)
	}
}

// String dumps the table one group per line, e.g. `P "P0" 1 -2 0 3`.
func (t Table) String() string {
	var b strings.Builder
	for _, g := range t.Groups {
		fmt.Fprintf(&b, "P %q", g.Label)
		for i, sp := range g.SubPaths {
			if i > 0 {
				b.WriteString(" 0")
			}
			for _, v := range sp {
				fmt.Fprintf(&b, " %d", v)
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
