package geom

import (
	"math"
	"testing"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func nearPoint(a, b Point) bool { return near(a.X, b.X) && near(a.Y, b.Y) }

func TestNormalizeAngle(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0, 0},
		{360, 0},
		{-90, 270},
		{725, 5},
		{359.5, 359.5},
		{-720, 0},
	}
	for _, tt := range tests {
		if got := NormalizeAngle(tt.in); !near(got, tt.want) {
			t.Errorf("NormalizeAngle(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestFindAngle(t *testing.T) {
	o := Point{}
	tests := []struct {
		name string
		to   Point
		want float64
	}{
		{"north", Point{0, 1}, 0},
		{"east", Point{1, 0}, 90},
		{"south", Point{0, -1}, 180},
		{"west", Point{-1, 0}, 270},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FindAngle(o, tt.to); !near(got, tt.want) {
				t.Errorf("FindAngle = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOpposingAndAligned(t *testing.T) {
	tests := []struct {
		a0, a1   float64
		opposing bool
		aligned  bool
	}{
		{90, 270, true, false},
		{90, 271, true, false},
		{90, 273, false, false},
		{0, 358, false, true},
		{10, 10, false, true},
		{10, 13, false, false},
	}
	for _, tt := range tests {
		if got := Opposing(tt.a0, tt.a1, 5); got != tt.opposing {
			t.Errorf("Opposing(%v, %v) = %v, want %v", tt.a0, tt.a1, got, tt.opposing)
		}
		if got := Aligned(tt.a0, tt.a1, 5); got != tt.aligned {
			t.Errorf("Aligned(%v, %v) = %v, want %v", tt.a0, tt.a1, got, tt.aligned)
		}
	}
}

func TestStraightEnds(t *testing.T) {
	s := Straight(Point{0, 0}, Point{10, 0})
	p0, a0 := s.End(0)
	p1, a1 := s.End(1)
	if !nearPoint(p0, Point{0, 0}) || !near(a0, 270) {
		t.Errorf("End(0) = %v %v, want (0,0) 270", p0, a0)
	}
	if !nearPoint(p1, Point{10, 0}) || !near(a1, 90) {
		t.Errorf("End(1) = %v %v, want (10,0) 90", p1, a1)
	}
}

func TestCurveEnds(t *testing.T) {
	// Quarter circle from north to east, radius 10, clockwise.
	c := Curve(Point{0, 0}, 10, 0, 90)
	p0, a0 := c.End(0)
	p1, a1 := c.End(1)
	if !nearPoint(p0, Point{0, 10}) || !near(a0, 270) {
		t.Errorf("End(0) = %v %v, want (0,10) 270", p0, a0)
	}
	if !nearPoint(p1, Point{10, 0}) || !near(a1, 180) {
		t.Errorf("End(1) = %v %v, want (10,0) 180", p1, a1)
	}

	// Negative radius swaps ends.
	n := Curve(Point{0, 0}, -10, 0, 90)
	q0, b0 := n.End(0)
	if !nearPoint(q0, p1) || !near(b0, a1) {
		t.Errorf("negative radius End(0) = %v %v, want %v %v", q0, b0, p1, a1)
	}
}

func TestBezierEnds(t *testing.T) {
	b := Bezier(Point{0, 0}, Point{0, 5}, Point{5, 10}, Point{10, 10})
	_, a0 := b.End(0)
	_, a1 := b.End(1)
	if !near(a0, 180) {
		t.Errorf("End(0) angle = %v, want 180", a0)
	}
	if !near(a1, 90) {
		t.Errorf("End(1) angle = %v, want 90", a1)
	}
}

func TestPlacementRoundTrip(t *testing.T) {
	pl := Placement{Origin: Point{100, 50}, Angle: 30}
	pos, ang := Point{3, 4}, 45.0
	lp, la := pl.ToLayout(pos, ang)
	back, ba := pl.ToLocal(lp, la)
	if !nearPoint(back, pos) || !near(ba, ang) {
		t.Errorf("round trip = %v %v, want %v %v", back, ba, pos, ang)
	}
}

func TestSegmentValidate(t *testing.T) {
	tests := []struct {
		name    string
		seg     Segment
		wantErr bool
	}{
		{"straight", Straight(Point{}, Point{1, 0}), false},
		{"straight missing point", Segment{Kind: KindStraight, Pos: []Point{{}}}, true},
		{"curve", Curve(Point{}, 5, 0, 10), false},
		{"curve zero radius", Segment{Kind: KindCurve}, true},
		{"bezier short", Segment{Kind: KindBezier, Pos: []Point{{}, {}}}, true},
		{"unknown", Segment{Kind: "spiral"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.seg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
