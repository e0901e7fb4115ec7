// Package geom provides the plane geometry used to describe turnout track.
//
// Angles follow the layout convention: degrees, 0 pointing along +Y (north)
// and increasing clockwise. The tangent angle reported for a segment end
// points outward, away from the body of the segment, so two segments that
// join end to end report angles roughly 180° apart.
package geom

import "math"

// Point is a position in layout units.
type Point struct {
	X float64 `json:"x" toml:"x"`
	Y float64 `json:"y" toml:"y"`
}

// Distance returns the Euclidean distance between a and b.
func (a Point) Distance(b Point) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// Add returns a+b.
func (a Point) Add(b Point) Point {
	return Point{a.X + b.X, a.Y + b.Y}
}

// Sub returns a-b.
func (a Point) Sub(b Point) Point {
	return Point{a.X - b.X, a.Y - b.Y}
}

// Rotate turns a clockwise by angle degrees around orig.
func (a Point) Rotate(orig Point, angle float64) Point {
	s, c := math.Sincos(angle * math.Pi / 180)
	x, y := a.X-orig.X, a.Y-orig.Y
	return Point{
		X: x*c + y*s + orig.X,
		Y: y*c - x*s + orig.Y,
	}
}

// NormalizeAngle maps a into [0, 360).
func NormalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a = 0
	}
	return a
}

// FindAngle returns the direction from p0 towards p1.
func FindAngle(p0, p1 Point) float64 {
	return NormalizeAngle(math.Atan2(p1.X-p0.X, p1.Y-p0.Y) * 180 / math.Pi)
}

// PointOnCircle returns the point at angle a on the circle around center.
func PointOnCircle(center Point, radius, a float64) Point {
	s, c := math.Sincos(a * math.Pi / 180)
	return Point{center.X + radius*s, center.Y + radius*c}
}

// Opposing reports whether a0 and a1 point at each other within a window of
// tol degrees (±tol/2 around 180°).
func Opposing(a0, a1, tol float64) bool {
	return NormalizeAngle(a0-a1+180+tol/2) <= tol
}

// Aligned reports whether a0 and a1 point the same way within a window of
// tol degrees (±tol/2).
func Aligned(a0, a1, tol float64) bool {
	return NormalizeAngle(a0-a1+tol/2) <= tol
}

// Placement locates a turnout on the layout: its local origin and rotation.
type Placement struct {
	Origin Point   `json:"origin" toml:"origin"`
	Angle  float64 `json:"angle" toml:"angle"`
}

// ToLocal converts a layout position and angle into the turnout's frame.
func (p Placement) ToLocal(pos Point, angle float64) (Point, float64) {
	local := pos.Sub(p.Origin).Rotate(Point{}, -p.Angle)
	return local, NormalizeAngle(angle - p.Angle)
}

// ToLayout is the inverse of ToLocal.
func (p Placement) ToLayout(pos Point, angle float64) (Point, float64) {
	return pos.Rotate(Point{}, p.Angle).Add(p.Origin), NormalizeAngle(angle + p.Angle)
}
