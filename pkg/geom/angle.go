package geom

import "math"

// SignedTurnAngle returns the change of direction at cur when walking
// prev -> cur -> next, wrapped to (-π, π]. Negative values turn right,
// which is the convex case for clockwise outlines.
func SignedTurnAngle(prev, cur, next Point) float64 {
	a := Segment{prev, cur}.Angle()
	b := Segment{cur, next}.Angle()
	angle := b - a
	if angle > math.Pi {
		angle -= 2 * math.Pi
	}
	if angle <= -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

// TotalTurning sums SignedTurnAngle over every corner of the closed loop.
// Simple clockwise loops total -2π, counter-clockwise ones +2π.
func TotalTurning(vertices []Point) float64 {
	n := len(vertices)
	var total float64
	for i := range vertices {
		prev := vertices[(i+n-1)%n]
		next := vertices[(i+1)%n]
		total += SignedTurnAngle(prev, vertices[i], next)
	}
	return total
}

// IsClockwise reports whether the loop turns right overall.
func IsClockwise(vertices []Point) bool {
	return TotalTurning(vertices) < 0
}
