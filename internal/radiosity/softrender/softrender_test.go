package softrender

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/roomlight/internal/level"
	"github.com/Faultbox/roomlight/internal/radiosity"
	"github.com/Faultbox/roomlight/pkg/formats"
)

var opts = level.Options{SurfaceSize: 4, WallWidth: 16, WallHeight: 4}

func box(x0, y0, x1, y1, floor, ceiling, emissive float64) formats.RoomData {
	return formats.RoomData{
		Vertices:      [][]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}},
		FloorHeight:   floor,
		CeilingHeight: ceiling,
		Emissive:      emissive,
		Walls:         formats.SurfaceData{Scale: 1, Fit: formats.FitPerWall},
	}
}

func build(t *testing.T, rooms ...formats.RoomData) *level.Level {
	t.Helper()
	l, err := level.FromDocument(&formats.Level{Rooms: rooms}, nil, opts)
	require.NoError(t, err)
	return l
}

func TestTrace(t *testing.T) {
	l := build(t,
		box(0, 0, 4, 4, 0, 3, 0.25),
		box(4, 0, 8, 4, 1, 2, 0.75),
	)
	target := New(l.Rooms, 0)

	eye := mgl64.Vec3{2, 2, 1.5}
	assert.Equal(t, [3]float32{0.25, 0.25, 0.25}, target.Trace(eye, mgl64.Vec3{0, 0, 1}))
	assert.Equal(t, [3]float32{0.25, 0.25, 0.25}, target.Trace(eye, mgl64.Vec3{0, 0, -1}))
	assert.Equal(t, [3]float32{0.25, 0.25, 0.25}, target.Trace(eye, mgl64.Vec3{-1, 0, 0}))

	// Through the opening into the far wall of the neighbor.
	assert.Equal(t, [3]float32{0.75, 0.75, 0.75}, target.Trace(eye, mgl64.Vec3{1, 0, 0}))

	// Below the opening the shared wall is a solid sill.
	low := mgl64.Vec3{2, 2, 0.5}
	assert.Equal(t, [3]float32{0.25, 0.25, 0.25}, target.Trace(low, mgl64.Vec3{1, 0, 0}))

	// Nothing outside the level.
	assert.Equal(t, [3]float32{}, target.Trace(mgl64.Vec3{20, 20, 1}, mgl64.Vec3{1, 0, 0}))
}

func TestTraceUsesCommittedLightmap(t *testing.T) {
	l := build(t, box(0, 0, 4, 4, 0, 3, 0))
	r := l.Rooms[0]
	target := New(l.Rooms, 0.5)

	up := mgl64.Vec3{0, 0, 1}
	eye := mgl64.Vec3{2, 2, 1}
	assert.Equal(t, [3]float32{}, target.Trace(eye, up))

	// In-progress texels stay invisible until committed.
	w, h := r.CeilingMap.Size()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r.CeilingMap.Set(x, y, [3]float32{1, 1, 1})
		}
	}
	assert.Equal(t, [3]float32{}, target.Trace(eye, up))

	r.CeilingMap.Commit()
	assert.Equal(t, [3]float32{0.5, 0.5, 0.5}, target.Trace(eye, up))
}

func TestUniformEmissiveRoomSamplesItsEmission(t *testing.T) {
	const e = 0.6
	l := build(t, box(0, 0, 4, 4, 0, 3, e))
	s, err := radiosity.NewSampler(New(l.Rooms, 0), 64)
	require.NoError(t, err)

	for _, surf := range l.BakeTargets() {
		for _, texel := range [][2]int{{0, 0}, {1, 2}, {3, 3}} {
			pose, ok := surf.Texel(texel[0], texel[1])
			if !ok {
				continue
			}
			got, err := s.Sample(pose)
			require.NoError(t, err)
			for _, c := range got {
				assert.InDelta(t, e, c, 0.01, "%s texel %v", surf.Lightmap.Name, texel)
			}
		}
	}
}

func TestBakeLightsNeighbor(t *testing.T) {
	l := build(t,
		box(0, 0, 4, 4, 0, 3, 1),
		box(4, 0, 8, 4, 0, 3, 0),
	)
	s, err := radiosity.NewSampler(New(l.Rooms, 0.8), 16)
	require.NoError(t, err)

	e := radiosity.NewEngine(l.BakeTargets(), s)
	require.NoError(t, e.Finish())
	assert.Equal(t, radiosity.Done, e.State())

	avg := func(name string, at func(x, y int) [3]float32, w, h int) float32 {
		var sum float32
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				sum += at(x, y)[0]
			}
		}
		return sum / float32(w*h)
	}

	lit, dark := l.Rooms[0], l.Rooms[1]
	w, h := lit.FloorMap.Size()
	litFloor := avg("lit", lit.FloorMap.At, w, h)
	darkFloor := avg("dark", dark.FloorMap.At, w, h)

	assert.Greater(t, litFloor, float32(0.7))
	assert.Greater(t, darkFloor, float32(0))
	assert.Less(t, darkFloor, litFloor)

	// The dark room's floor is brighter near the opening.
	assert.Greater(t, dark.FloorMap.At(0, 1)[0], dark.FloorMap.At(3, 1)[0])
}
