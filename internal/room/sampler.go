package room

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/roomlight/internal/engine/camera"
	"github.com/Faultbox/roomlight/pkg/geom"
)

// SampleOffset is how far a texel's sample point sits off its surface.
const SampleOffset = 0.02

// FloorTexel maps a floor lightmap texel to a camera looking straight up.
// Texels whose center falls outside the outline have no mapping.
func (r *Room) FloorTexel(x, y int) (camera.Pose, bool) {
	p, ok := r.flatTexelPoint(r.FloorMap.Size, x, y)
	if !ok {
		return camera.Pose{}, false
	}
	return camera.Pose{
		Position: mgl64.Vec3{p[0], p[1], r.FloorHeight + SampleOffset},
		Pitch:    math.Pi / 2,
	}, true
}

// CeilingTexel maps a ceiling lightmap texel to a camera looking straight
// down.
func (r *Room) CeilingTexel(x, y int) (camera.Pose, bool) {
	p, ok := r.flatTexelPoint(r.CeilingMap.Size, x, y)
	if !ok {
		return camera.Pose{}, false
	}
	return camera.Pose{
		Position: mgl64.Vec3{p[0], p[1], r.CeilingHeight - SampleOffset},
		Pitch:    -math.Pi / 2,
	}, true
}

func (r *Room) flatTexelPoint(size func() (int, int), x, y int) (geom.Point, bool) {
	w, h := size()
	min, max := geom.Bounds(r.vertices)
	p := geom.Point{
		geom.Lerp(min[0], max[0], (float64(x)+0.5)/float64(w)),
		geom.Lerp(min[1], max[1], (float64(y)+0.5)/float64(h)),
	}
	return p, r.Contains(p)
}

// WallTexel maps a wall strip texel to a camera facing into the room from
// the wall. Texels in the opening of a shared wall, strictly between the
// neighbor's floor and ceiling, have no mapping.
func (r *Room) WallTexel(x, y int) (camera.Pose, bool) {
	w, h := r.WallMap.Size()
	u := (float64(x) + 0.5) / float64(w)
	z := geom.Lerp(r.FloorHeight, r.CeilingHeight, (float64(y)+0.5)/float64(h))

	i := r.wallAt(u)
	if n := r.SharedWalls[i]; n != nil && z > n.FloorHeight && z < n.CeilingHeight {
		return camera.Pose{}, false
	}

	wall := r.walls[i]
	iv := r.wallLightmap[i]
	p := wall.At((u - iv.Start) / iv.Span())

	// Clockwise outlines have their interior on the right of each wall.
	heading := wall.Angle() - math.Pi/2
	sin, cos := math.Sincos(heading)
	return camera.Pose{
		Position: mgl64.Vec3{p[0] + cos*SampleOffset, p[1] + sin*SampleOffset, z},
		Heading:  heading,
	}, true
}

// wallAt returns the wall whose lightmap interval holds u.
func (r *Room) wallAt(u float64) int {
	for i, iv := range r.wallLightmap {
		if u < iv.End {
			return i
		}
	}
	return len(r.wallLightmap) - 1
}
