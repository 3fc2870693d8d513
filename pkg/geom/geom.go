// Package geom provides the 2D geometry used to validate, triangulate and
// query room outlines. Everything here is a pure function over room-space
// coordinates (meters, y up).
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Point is a room-space vertex.
type Point = mgl64.Vec2

// Segment is a line segment between two points.
type Segment [2]Point

// Triangle is three points in clockwise order.
type Triangle [3]Point

// Reversed returns the segment with its endpoints swapped.
func (s Segment) Reversed() Segment {
	return Segment{s[1], s[0]}
}

// Length returns the length of the segment.
func (s Segment) Length() float64 {
	return Length(s[0], s[1])
}

// Angle returns the direction of the segment in radians.
func (s Segment) Angle() float64 {
	return math.Atan2(s[1][1]-s[0][1], s[1][0]-s[0][0])
}

// At returns the point at ratio t (0..1) along the segment.
func (s Segment) At(t float64) Point {
	return Point{Lerp(s[0][0], s[1][0], t), Lerp(s[0][1], s[1][1], t)}
}

// Length returns the distance between two points.
func Length(a, b Point) float64 {
	return b.Sub(a).Len()
}

// Lerp linearly interpolates between a and b using ratio (0..1).
func Lerp(a, b, ratio float64) float64 {
	return a + (b-a)*ratio
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// IsPowerOfTwo reports whether n is a power of two no smaller than 2.
func IsPowerOfTwo(n int) bool {
	return n >= 2 && n&(n-1) == 0
}

// Edges returns the closed loop of segments around vertices:
// edge i runs from vertices[i] to vertices[(i+1) % n].
func Edges(vertices []Point) []Segment {
	edges := make([]Segment, len(vertices))
	for i, v := range vertices {
		edges[i] = Segment{v, vertices[(i+1)%len(vertices)]}
	}
	return edges
}

// PolygonArea returns the signed shoelace area. Clockwise polygons are
// negative.
func PolygonArea(vertices []Point) float64 {
	var sum float64
	for i, a := range vertices {
		b := vertices[(i+1)%len(vertices)]
		sum += a[0]*b[1] - b[0]*a[1]
	}
	return sum / 2
}

// Area returns the unsigned area of the triangle.
func (t Triangle) Area() float64 {
	return math.Abs(PolygonArea(t[:]))
}

// Contains reports whether p lies strictly inside the triangle.
func (t Triangle) Contains(p Point) bool {
	d1 := cross(t[0], t[1], p)
	d2 := cross(t[1], t[2], p)
	d3 := cross(t[2], t[0], p)
	return (d1 < 0 && d2 < 0 && d3 < 0) || (d1 > 0 && d2 > 0 && d3 > 0)
}

// Bounds returns the axis-aligned bounding box of the points.
func Bounds(points []Point) (min, max Point) {
	if len(points) == 0 {
		return Point{}, Point{}
	}
	min, max = points[0], points[0]
	for _, p := range points[1:] {
		min = Point{math.Min(min[0], p[0]), math.Min(min[1], p[1])}
		max = Point{math.Max(max[0], p[0]), math.Max(max[1], p[1])}
	}
	return min, max
}

// cross returns the z component of (b-a) x (p-a).
func cross(a, b, p Point) float64 {
	return (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
}
