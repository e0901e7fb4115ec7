package paths

import "fmt"

// ElemKind distinguishes the two cases of an Elem.
type ElemKind uint8

const (
	// SegmentEnd references one end of a track segment.
	SegmentEnd ElemKind = iota
	// Endpoint references a turnout endpoint, real or bumper.
	Endpoint
)

// Elem is a node of the traversal graph: either a directed segment end or an
// endpoint. The zero value is end 0 of segment 0.
type Elem struct {
	Kind  ElemKind
	Index int // segment or endpoint index
	End   int // 0 or 1; segment ends only
}

// SegEnd returns the Elem for end of segment seg.
func SegEnd(seg, end int) Elem {
	return Elem{Kind: SegmentEnd, Index: seg, End: end}
}

// EP returns the Elem for endpoint index.
func EP(index int) Elem {
	return Elem{Kind: Endpoint, Index: index}
}

// IsEndpoint reports whether e references an endpoint.
func (e Elem) IsEndpoint() bool { return e.Kind == Endpoint }

// Other returns the opposite end of the same segment.
func (e Elem) Other() Elem {
	return SegEnd(e.Index, 1-e.End)
}

// Code returns the compact integer form: (segment+1)*2+end for segment ends
// and -(endpoint+1) for endpoints. Zero is never produced.
func (e Elem) Code() int {
	if e.IsEndpoint() {
		return -(e.Index + 1)
	}
	return (e.Index+1)*2 + e.End
}

// ElemFromCode is the inverse of Elem.Code. It panics on zero.
func ElemFromCode(code int) Elem {
	switch {
	case code < 0:
		return EP(-code - 1)
	case code == 0:
		panic("paths: zero element code")
	default:
		return SegEnd(code/2-1, code%2)
	}
}

// key orders elements for sorting. Endpoints share key 0 so that only
// segment identity affects the order.
func (e Elem) key() int {
	if e.IsEndpoint() {
		return 0
	}
	return e.Code()
}

// Value returns the signed Path Table value of a segment end: +(segment+1)
// when entered at end 0 and -(segment+1) when entered at end 1.
func (e Elem) Value() int {
	if e.End == 1 {
		return -(e.Index + 1)
	}
	return e.Index + 1
}

func (e Elem) String() string {
	if e.IsEndpoint() {
		return fmt.Sprintf("E%d", e.Index)
	}
	return fmt.Sprintf("S%d.%d", e.Index, e.End)
}
