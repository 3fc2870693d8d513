package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/roomlight/pkg/geom"
)

// solverIterations is how many push-out passes Step runs per body.
const solverIterations = 4

type body struct {
	tag      BodyTag
	pos      geom.Point
	velocity mgl64.Vec2
	radius   float64
}

// Space is a small 2D world of circle bodies against static segments.
// Bodies are kinematic: they move at the velocity they are given and are
// pushed out of any segment the filter says they collide with.
type Space struct {
	Filter CollisionFilter

	segments []StaticSegment
	bodies   []*body
}

// NewSpace creates an empty space. A nil filter collides everything.
func NewSpace(filter CollisionFilter) *Space {
	if filter == nil {
		filter = CollideAll
	}
	return &Space{Filter: filter}
}

// AddStaticSegment implements World.
func (s *Space) AddStaticSegment(seg StaticSegment) {
	s.segments = append(s.segments, seg)
}

// AddBody implements World.
func (s *Space) AddBody(tag BodyTag, pos geom.Point, radius float64) BodyID {
	s.bodies = append(s.bodies, &body{tag: tag, pos: pos, radius: radius})
	return BodyID(len(s.bodies) - 1)
}

// SetVelocity implements World.
func (s *Space) SetVelocity(id BodyID, v mgl64.Vec2) {
	s.bodies[id].velocity = v
}

// Position implements World.
func (s *Space) Position(id BodyID) geom.Point {
	return s.bodies[id].pos
}

// Teleport moves a body without collision.
func (s *Space) Teleport(id BodyID, pos geom.Point) {
	s.bodies[id].pos = pos
}

// Segments returns every static segment.
func (s *Space) Segments() []StaticSegment {
	return s.segments
}

// Step implements World.
func (s *Space) Step(dt float64) {
	for _, b := range s.bodies {
		b.pos = b.pos.Add(b.velocity.Mul(dt))
		for i := 0; i < solverIterations; i++ {
			if !s.resolve(b) {
				break
			}
		}
	}
}

// resolve pushes b out of every colliding segment and reports whether it
// moved.
func (s *Space) resolve(b *body) bool {
	moved := false
	for _, seg := range s.segments {
		if !s.Filter.ShouldCollide(b.tag, seg.Tag) {
			continue
		}
		closest := closestPoint(seg.Segment, b.pos)
		offset := b.pos.Sub(closest)
		dist := offset.Len()
		if dist >= b.radius {
			continue
		}
		if dist == 0 {
			// Centered on the wall: push toward its right, the inside of
			// a clockwise room.
			d := seg.Segment[1].Sub(seg.Segment[0])
			offset = mgl64.Vec2{d[1], -d[0]}
		}
		b.pos = closest.Add(offset.Normalize().Mul(b.radius))
		moved = true
	}
	return moved
}

func closestPoint(seg geom.Segment, p geom.Point) geom.Point {
	d := seg[1].Sub(seg[0])
	lenSq := d.Dot(d)
	if lenSq == 0 {
		return seg[0]
	}
	t := mgl64.Clamp(p.Sub(seg[0]).Dot(d)/lenSq, 0, 1)
	return seg[0].Add(d.Mul(t))
}
