// Package room models a single room: a clockwise outline with floor and
// ceiling heights, its triangulation, surface parameterizations and the
// walls it shares with neighboring rooms.
package room

import (
	"fmt"

	"github.com/Faultbox/roomlight/internal/lightmap"
	"github.com/Faultbox/roomlight/pkg/formats"
	"github.com/Faultbox/roomlight/pkg/geom"
)

// Validation checks reported by InvalidRoomError.
const (
	CheckVertexCount = "vertex count"
	CheckDuplicate   = "duplicate vertices"
	CheckIntersect   = "walls intersect"
	CheckWinding     = "winding"
	CheckHeights     = "heights"
)

// InvalidRoomError reports an outline that cannot be used as a room.
type InvalidRoomError struct {
	Check    string
	Vertices []int // Offending vertex indices, after winding correction
	Walls    []int // Offending wall indices
}

func (e *InvalidRoomError) Error() string {
	msg := "invalid room: " + e.Check
	if len(e.Vertices) > 0 {
		msg += fmt.Sprintf(" (vertices %v)", e.Vertices)
	}
	if len(e.Walls) > 0 {
		msg += fmt.Sprintf(" (walls %v)", e.Walls)
	}
	return msg
}

// Room is one polygonal room of a level.
type Room struct {
	Index int

	FloorHeight   float64
	CeilingHeight float64
	Emissive      float64

	Floor   Surface
	Ceiling Surface
	Walls   Surface
	Meshes  []formats.MeshData

	// SharedWalls maps a wall index to the room on the other side.
	SharedWalls map[int]*Room

	// Lightmaps, allocated by AllocateLightmaps.
	FloorMap   *lightmap.Lightmap
	CeilingMap *lightmap.Lightmap
	WallMap    *lightmap.Lightmap

	vertices  []geom.Point
	walls     []geom.Segment
	triangles []geom.Triangle

	wallTexture  []Interval
	wallLightmap []Interval
	perimeter    float64
}

// New validates an outline and returns a room with clockwise winding.
// Counter-clockwise input is reversed; running New on its own output
// leaves the order untouched.
func New(vertices []geom.Point, floor, ceiling float64) (*Room, error) {
	if len(vertices) < 3 {
		return nil, &InvalidRoomError{Check: CheckVertexCount}
	}
	if ceiling <= floor {
		return nil, &InvalidRoomError{Check: CheckHeights}
	}

	verts := append([]geom.Point(nil), vertices...)
	if !geom.IsClockwise(verts) {
		reverse(verts)
	}

	r := &Room{
		FloorHeight:   floor,
		CeilingHeight: ceiling,
		SharedWalls:   make(map[int]*Room),
		vertices:      verts,
		walls:         geom.Edges(verts),
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// FromData builds a room from its level document entry.
func FromData(index int, data formats.RoomData) (*Room, error) {
	points := data.Points()
	verts := make([]geom.Point, len(points))
	for i, p := range points {
		verts[i] = geom.Point{p[0], p[1]}
	}

	r, err := New(verts, data.FloorHeight, data.CeilingHeight)
	if err != nil {
		return nil, err
	}
	r.Index = index
	r.Emissive = data.Emissive
	r.Floor = surfaceFrom(data.Floor)
	r.Ceiling = surfaceFrom(data.Ceiling)
	r.Walls = surfaceFrom(data.Walls)
	r.Meshes = data.Meshes
	return r, nil
}

func (r *Room) validate() error {
	for i := range r.vertices {
		for j := i + 1; j < len(r.vertices); j++ {
			if r.vertices[i] == r.vertices[j] {
				return &InvalidRoomError{Check: CheckDuplicate, Vertices: []int{i, j}}
			}
		}
	}

	for i := range r.walls {
		for j := i + 1; j < len(r.walls); j++ {
			hit, err := geom.SegmentsIntersect(r.walls[i], r.walls[j])
			if err != nil || hit {
				return &InvalidRoomError{Check: CheckIntersect, Walls: []int{i, j}}
			}
		}
	}

	if !geom.IsClockwise(r.vertices) {
		return &InvalidRoomError{Check: CheckWinding}
	}
	return nil
}

// Vertices returns the clockwise outline.
func (r *Room) Vertices() []geom.Point {
	return r.vertices
}

// WallSegments returns the wall loop: wall i runs from vertex i to vertex i+1.
func (r *Room) WallSegments() []geom.Segment {
	return r.walls
}

// Height returns the clear height between floor and ceiling.
func (r *Room) Height() float64 {
	return r.CeilingHeight - r.FloorHeight
}

// Contains reports whether p lies inside the outline by ray parity.
func (r *Room) Contains(p geom.Point) bool {
	return geom.RayParityContains(p, r.walls)
}

// Triangulate splits the floor outline into triangles. It runs once, after
// all rooms of a level are loaded and linked.
func (r *Room) Triangulate() error {
	tris, err := geom.Triangulate(r.vertices)
	if err != nil {
		return fmt.Errorf("room %d: %w", r.Index, err)
	}
	r.triangles = tris
	return nil
}

// Triangles returns the floor triangulation, nil before Triangulate.
func (r *Room) Triangles() []geom.Triangle {
	return r.triangles
}

// Neighbor returns the room behind wall i, or nil for a solid wall.
func (r *Room) Neighbor(wall int) *Room {
	return r.SharedWalls[wall]
}

// LinkShared records every wall a and b have in common, in both rooms.
// Both outlines are clockwise, so a shared wall runs in opposite
// directions. It returns the number of walls linked.
func LinkShared(a, b *Room) int {
	linked := 0
	for i, wa := range a.walls {
		for j, wb := range b.walls {
			if wa[0] == wb[1] && wa[1] == wb[0] {
				a.SharedWalls[i] = b
				b.SharedWalls[j] = a
				linked++
			}
		}
	}
	return linked
}

func reverse(points []geom.Point) {
	for i, j := 0, len(points)-1; i < j; i, j = i+1, j-1 {
		points[i], points[j] = points[j], points[i]
	}
}
