// Package physics is the collision collaborator of the first-person
// controller: tagged static wall segments, circle bodies and a collision
// filter that lets players walk through shared walls.
package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/roomlight/pkg/geom"
)

// Kind identifies what a body is.
type Kind int

// Body kinds.
const (
	KindWall Kind = iota
	KindPlayer
	KindProp
)

func (k Kind) String() string {
	switch k {
	case KindWall:
		return "wall"
	case KindPlayer:
		return "player"
	case KindProp:
		return "prop"
	}
	return "unknown"
}

// BodyTag identifies a body for collision filtering. Room and Wall are
// only meaningful for walls.
type BodyTag struct {
	Kind Kind
	Room int
	Wall int
}

// WallTag returns the tag of wall i of room r.
func WallTag(r, i int) BodyTag {
	return BodyTag{Kind: KindWall, Room: r, Wall: i}
}

// Opening is the passable height range of a shared wall.
type Opening struct {
	Floor   float64
	Ceiling float64
}

// StaticSegment is one wall as seen by the physics world.
type StaticSegment struct {
	Segment geom.Segment
	Tag     BodyTag
	// Passable is set for walls shared with another room. Opening then
	// holds the height range both rooms have in common.
	Passable bool
	Opening  Opening
}

// BodyID is a handle to a dynamic body.
type BodyID int

// World is the physics engine seen from the controller and level loader.
type World interface {
	AddStaticSegment(seg StaticSegment)
	AddBody(tag BodyTag, pos geom.Point, radius float64) BodyID
	SetVelocity(id BodyID, v mgl64.Vec2)
	Position(id BodyID) geom.Point
	Step(dt float64)
}

// CollisionFilter decides whether two bodies collide.
type CollisionFilter interface {
	ShouldCollide(a, b BodyTag) bool
}

// FilterFunc adapts a function to CollisionFilter.
type FilterFunc func(a, b BodyTag) bool

// ShouldCollide calls f(a, b).
func (f FilterFunc) ShouldCollide(a, b BodyTag) bool {
	return f(a, b)
}

// CollideAll is a filter where everything collides.
var CollideAll = FilterFunc(func(BodyTag, BodyTag) bool { return true })
