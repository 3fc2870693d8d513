package physics

// Extent reports a body's current vertical extent.
type Extent func() (feet, head float64)

type wallKey struct {
	room int
	wall int
}

// SharedWallFilter lets the player through shared walls when the opening
// between the two rooms admits them: the sill is within step height of
// their feet and the header is above their head. Solid walls always
// collide; pairs not involving a wall and a player always collide.
type SharedWallFilter struct {
	StepHeight float64
	Player     Extent

	openings map[wallKey]Opening
}

// NewSharedWallFilter indexes the openings of the passable segments.
func NewSharedWallFilter(segments []StaticSegment, stepHeight float64, player Extent) *SharedWallFilter {
	f := &SharedWallFilter{
		StepHeight: stepHeight,
		Player:     player,
		openings:   make(map[wallKey]Opening),
	}
	for _, s := range segments {
		if s.Passable {
			f.openings[wallKey{s.Tag.Room, s.Tag.Wall}] = s.Opening
		}
	}
	return f
}

// ShouldCollide implements CollisionFilter.
func (f *SharedWallFilter) ShouldCollide(a, b BodyTag) bool {
	wall, other := a, b
	if b.Kind == KindWall {
		wall, other = b, a
	}
	if wall.Kind != KindWall || other.Kind != KindPlayer {
		return true
	}

	opening, ok := f.openings[wallKey{wall.Room, wall.Wall}]
	if !ok {
		return true
	}
	if f.Player == nil {
		return false
	}
	feet, head := f.Player()
	return opening.Floor > feet+f.StepHeight || opening.Ceiling < head
}
