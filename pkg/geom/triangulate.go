package geom

import (
	"errors"
	"fmt"
)

// ErrTooFewVertices is returned when a polygon has fewer than 3 vertices.
var ErrTooFewVertices = errors.New("polygon needs at least 3 vertices")

// TriangulationError reports that ear clipping ran out of ears. The
// outline is degenerate or self-intersecting.
type TriangulationError struct {
	Remaining []Point
}

func (e *TriangulationError) Error() string {
	return fmt.Sprintf("triangulation failed: no ear among %d remaining vertices", len(e.Remaining))
}

// Triangulate splits a clockwise simple polygon into len(vertices)-2
// triangles by ear clipping. Each outer pass starts its scan one vertex
// further along to avoid fanning thin slivers from a single corner.
func Triangulate(vertices []Point) ([]Triangle, error) {
	if len(vertices) < 3 {
		return nil, ErrTooFewVertices
	}

	remaining := append([]Point(nil), vertices...)
	triangles := make([]Triangle, 0, len(vertices)-2)

	offset := 0
	for len(remaining) > 3 {
		n := len(remaining)
		offset = (offset + 1) % n

		clipped := -1
		for k := 0; k < n; k++ {
			i := (offset + k) % n
			ear, err := isEar(remaining, i)
			if err != nil {
				return nil, err
			}
			if ear {
				clipped = i
				break
			}
		}
		if clipped < 0 {
			return nil, &TriangulationError{Remaining: remaining}
		}

		prev := remaining[(clipped+n-1)%n]
		next := remaining[(clipped+1)%n]
		triangles = append(triangles, Triangle{prev, remaining[clipped], next})
		remaining = append(remaining[:clipped], remaining[clipped+1:]...)
	}

	triangles = append(triangles, Triangle{remaining[0], remaining[1], remaining[2]})
	return triangles, nil
}

// isEar reports whether vertex i of the clockwise loop is convex, its
// chord crosses no edge and no other vertex lies inside the ear.
func isEar(loop []Point, i int) (bool, error) {
	n := len(loop)
	prev := loop[(i+n-1)%n]
	cur := loop[i]
	next := loop[(i+1)%n]

	if SignedTurnAngle(prev, cur, next) >= 0 {
		return false, nil
	}

	chord := Segment{prev, next}
	for j := range loop {
		edge := Segment{loop[j], loop[(j+1)%n]}
		hit, err := SegmentsIntersect(edge, chord)
		if err != nil {
			return false, err
		}
		if hit {
			return false, nil
		}
	}

	ear := Triangle{prev, cur, next}
	for _, p := range loop {
		if p == prev || p == cur || p == next {
			continue
		}
		if ear.Contains(p) {
			return false, nil
		}
	}
	return true, nil
}
