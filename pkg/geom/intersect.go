package geom

import (
	"errors"
	"fmt"
)

// ErrDegenerateSegment is returned when two segments share both endpoints
// or collapse to a single point. Such pairs have no meaningful crossing.
var ErrDegenerateSegment = errors.New("degenerate segment pair")

// RayFarY is the y coordinate of the far end of containment rays.
const RayFarY = 1e10

// rayLean offsets the far end of containment rays so that a ray cast from
// a point sharing its x with a vertex does not run through that vertex.
const rayLean = 1.234567e-3

// SegmentsIntersect reports whether a and b cross each other, endpoints
// included. Segments joined at exactly one endpoint never intersect.
// Parallel segments never intersect.
func SegmentsIntersect(a, b Segment) (bool, error) {
	switch uniquePoints(a[0], a[1], b[0], b[1]) {
	case 1:
		return false, fmt.Errorf("%w: all endpoints coincide at %v", ErrDegenerateSegment, a[0])
	case 2:
		return false, fmt.Errorf("%w: %v and %v are the same segment", ErrDegenerateSegment, a, b)
	case 3:
		return false, nil
	}

	ax, ay := a[0][0], a[0][1]
	bx, by := a[1][0], a[1][1]
	cx, cy := b[0][0], b[0][1]
	dx, dy := b[1][0], b[1][1]

	den := (bx-ax)*(dy-cy) - (by-ay)*(dx-cx)
	if den == 0 {
		return false, nil
	}
	r := ((ay-cy)*(dx-cx) - (ax-cx)*(dy-cy)) / den
	s := ((ay-cy)*(bx-ax) - (ax-cx)*(by-ay)) / den

	return r >= 0 && r <= 1 && s >= 0 && s <= 1, nil
}

// RayParityContains reports whether p lies inside the polygon bounded by
// edges, by counting crossings of a ray cast straight up from p.
// A ray running exactly through a vertex miscounts; callers avoid that.
func RayParityContains(p Point, edges []Segment) bool {
	ray := Segment{p, Point{p[0] + rayLean, RayFarY}}
	hits := 0
	for _, e := range edges {
		hit, err := SegmentsIntersect(ray, e)
		if err == nil && hit {
			hits++
		}
	}
	return hits%2 == 1
}

func uniquePoints(points ...Point) int {
	n := 0
	for i, p := range points {
		dup := false
		for _, q := range points[:i] {
			if p == q {
				dup = true
				break
			}
		}
		if !dup {
			n++
		}
	}
	return n
}
