package geom

import "fmt"

// SegmentKind identifies the shape of a Segment.
type SegmentKind string

const (
	KindStraight SegmentKind = "straight"
	KindCurve    SegmentKind = "curve"
	KindBezier   SegmentKind = "bezier"
)

// Segment is one drawable primitive of a turnout.
//
// The zero value is a zero-length straight line. Only segments with Track
// set take part in path generation; the rest are decoration (ties, labels,
// table edges) carried along for completeness.
type Segment struct {
	Kind  SegmentKind `json:"kind" toml:"kind"`
	Track bool        `json:"track" toml:"track"`

	// Straight: Pos[0] and Pos[1] are the two ends.
	// Bezier: Pos[0..3] are the control points; the ends are Pos[0] and Pos[3].
	Pos []Point `json:"pos,omitempty" toml:"pos,omitempty"`

	// Curve: arc around Center starting at angle A0 and sweeping A1 degrees
	// clockwise. A negative Radius swaps which end is end 0.
	Center Point   `json:"center,omitempty" toml:"center,omitempty"`
	Radius float64 `json:"radius,omitempty" toml:"radius,omitempty"`
	A0     float64 `json:"a0,omitempty" toml:"a0,omitempty"`
	A1     float64 `json:"a1,omitempty" toml:"a1,omitempty"`
}

// Straight returns a track segment from p0 to p1.
func Straight(p0, p1 Point) Segment {
	return Segment{Kind: KindStraight, Track: true, Pos: []Point{p0, p1}}
}

// Curve returns a curved track segment.
func Curve(center Point, radius, a0, a1 float64) Segment {
	return Segment{Kind: KindCurve, Track: true, Center: center, Radius: radius, A0: a0, A1: a1}
}

// Bezier returns a cubic Bézier track segment.
func Bezier(p0, p1, p2, p3 Point) Segment {
	return Segment{Kind: KindBezier, Track: true, Pos: []Point{p0, p1, p2, p3}}
}

// Validate checks that the segment carries the fields its kind needs.
func (s Segment) Validate() error {
	switch s.Kind {
	case KindStraight, "":
		if len(s.Pos) != 2 {
			return fmt.Errorf("straight segment needs 2 points, got %d", len(s.Pos))
		}
	case KindCurve:
		if s.Radius == 0 {
			return fmt.Errorf("curve segment has zero radius")
		}
	case KindBezier:
		if len(s.Pos) != 4 {
			return fmt.Errorf("bezier segment needs 4 points, got %d", len(s.Pos))
		}
	default:
		return fmt.Errorf("unknown segment kind %q", s.Kind)
	}
	return nil
}

// End returns the position and outward tangent angle of end ep (0 or 1).
// Validate must have succeeded.
func (s Segment) End(ep int) (Point, float64) {
	switch s.Kind {
	case KindCurve:
		r := s.Radius
		if r < 0 {
			r = -r
		}
		a := s.A0
		var angle float64
		if (ep == 1) == (s.Radius > 0) {
			a += s.A1
			angle = NormalizeAngle(a + 90)
		} else {
			angle = NormalizeAngle(a - 90)
		}
		return PointOnCircle(s.Center, r, a), angle
	case KindBezier:
		if ep == 1 {
			return s.Pos[3], FindAngle(s.Pos[2], s.Pos[3])
		}
		return s.Pos[0], FindAngle(s.Pos[1], s.Pos[0])
	default:
		return s.Pos[ep], FindAngle(s.Pos[1-ep], s.Pos[ep])
	}
}

// Endpoint is an external connection point of a turnout. Angle points away
// from the turnout, towards the adjoining track.
type Endpoint struct {
	Pos   Point   `json:"pos" toml:"pos"`
	Angle float64 `json:"angle" toml:"angle"`
}
