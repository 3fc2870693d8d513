package physics

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/roomlight/pkg/geom"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "wall", KindWall.String())
	assert.Equal(t, "player", KindPlayer.String())
	assert.Equal(t, "prop", KindProp.String())
	assert.Equal(t, "unknown", Kind(42).String())
}

func sharedSegments() []StaticSegment {
	return []StaticSegment{
		{Segment: geom.Segment{{4, 4}, {4, 0}}, Tag: WallTag(0, 1), Passable: true, Opening: Opening{Floor: 0.2, Ceiling: 2.5}},
		{Segment: geom.Segment{{0, 4}, {4, 4}}, Tag: WallTag(0, 0)},
	}
}

func TestSharedWallFilter(t *testing.T) {
	feet, head := 0.0, 1.7
	f := NewSharedWallFilter(sharedSegments(), 0.3, func() (float64, float64) { return feet, head })
	player := BodyTag{Kind: KindPlayer}

	tests := []struct {
		name       string
		feet, head float64
		a, b       BodyTag
		want       bool
	}{
		{"solid wall", 0, 1.7, player, WallTag(0, 0), true},
		{"walk through", 0, 1.7, player, WallTag(0, 1), false},
		{"order independent", 0, 1.7, WallTag(0, 1), player, false},
		{"sill too high", -0.2, 1.5, player, WallTag(0, 1), true},
		{"header too low", 0, 2.6, player, WallTag(0, 1), true},
		{"crouched under", 0.5, 2.4, player, WallTag(0, 1), false},
		{"props never pass", 0, 1.7, BodyTag{Kind: KindProp}, WallTag(0, 1), true},
		{"unknown wall", 0, 1.7, player, WallTag(3, 1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			feet, head = tt.feet, tt.head
			assert.Equal(t, tt.want, f.ShouldCollide(tt.a, tt.b))
		})
	}
}

func TestSpaceMoves(t *testing.T) {
	s := NewSpace(nil)
	id := s.AddBody(BodyTag{Kind: KindPlayer}, geom.Point{1, 1}, 0.3)
	s.SetVelocity(id, mgl64.Vec2{2, 0})
	s.Step(0.5)
	assert.InDelta(t, 2, s.Position(id)[0], 1e-12)
	assert.InDelta(t, 1, s.Position(id)[1], 1e-12)
}

func TestSpaceBlocksSolidWall(t *testing.T) {
	s := NewSpace(nil)
	for _, seg := range sharedSegments() {
		s.AddStaticSegment(seg)
	}
	id := s.AddBody(BodyTag{Kind: KindPlayer}, geom.Point{3.5, 2}, 0.3)
	s.SetVelocity(id, mgl64.Vec2{1, 0})
	for i := 0; i < 60; i++ {
		s.Step(1.0 / 60)
	}
	assert.InDelta(t, 3.7, s.Position(id)[0], 1e-9)
}

func TestSpacePassesSharedWall(t *testing.T) {
	segs := sharedSegments()
	f := NewSharedWallFilter(segs, 0.3, func() (float64, float64) { return 0, 1.7 })
	s := NewSpace(f)
	for _, seg := range segs {
		s.AddStaticSegment(seg)
	}
	require.Len(t, s.Segments(), 2)

	id := s.AddBody(BodyTag{Kind: KindPlayer}, geom.Point{3.5, 2}, 0.3)
	s.SetVelocity(id, mgl64.Vec2{1, 0})
	for i := 0; i < 60; i++ {
		s.Step(1.0 / 60)
	}
	assert.Greater(t, s.Position(id)[0], 4.3)
}

func TestSpacePushesOutOfCorner(t *testing.T) {
	s := NewSpace(nil)
	s.AddStaticSegment(StaticSegment{Segment: geom.Segment{{0, 4}, {4, 4}}, Tag: WallTag(0, 0)})
	id := s.AddBody(BodyTag{Kind: KindPlayer}, geom.Point{2, 4}, 0.3)
	s.Step(0)
	assert.InDelta(t, 3.7, s.Position(id)[1], 1e-9)

	s.Teleport(id, geom.Point{2, 3.9})
	s.Step(0)
	assert.InDelta(t, 3.7, s.Position(id)[1], 1e-9)
}

func TestFilterFunc(t *testing.T) {
	called := false
	f := FilterFunc(func(a, b BodyTag) bool {
		called = true
		return a.Kind == b.Kind
	})
	assert.True(t, f.ShouldCollide(BodyTag{}, BodyTag{}))
	assert.True(t, called)
	assert.True(t, CollideAll.ShouldCollide(BodyTag{Kind: KindProp}, BodyTag{}))
}
