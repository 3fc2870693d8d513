package radiosity

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/roomlight/internal/engine/camera"
	"github.com/Faultbox/roomlight/internal/lightmap"
)

// uniformTarget paints every face a flat color.
type uniformTarget struct {
	color  [3]float32
	faces  map[Face][3]float32
	canvas *Canvas
	begins int
	views  []FaceView
	err    error
}

func (u *uniformTarget) Begin(size int) error {
	if u.err != nil {
		return u.err
	}
	u.begins++
	u.canvas = NewCanvas(size)
	return nil
}

func (u *uniformTarget) RenderFace(v FaceView) error {
	u.views = append(u.views, v)
	c := u.color
	if fc, ok := u.faces[v.Face]; ok {
		c = fc
	}
	u.canvas.FillRect(v.Viewport, c)
	return nil
}

func (u *uniformTarget) End(dst *Canvas) error {
	copy(dst.Pix, u.canvas.Pix)
	return nil
}

func TestNewMaskRejectsSizes(t *testing.T) {
	for _, size := range []int{0, 8, 32, 100, 512, 2048} {
		_, err := NewMask(size)
		assert.True(t, errors.Is(err, ErrUnsupportedSampleSize), "size %d", size)
	}
	_, err := NewSampler(&uniformTarget{}, 128)
	assert.True(t, errors.Is(err, ErrUnsupportedSampleSize))
}

func TestMaskShape(t *testing.T) {
	m, err := NewMask(64)
	require.NoError(t, err)

	// Corner quadrants belong to no face.
	for _, p := range [][2]int{{0, 0}, {15, 15}, {63, 0}, {0, 63}, {50, 50}} {
		assert.Zero(t, m.At(p[0], p[1]), "pixel %v", p)
	}

	// Brightest at the center, fading toward the horizon.
	center := m.At(32, 32)
	assert.InDelta(t, 1, center, 0.01)
	assert.Less(t, m.At(32, 60), m.At(32, 40))
	assert.Less(t, m.At(1, 32), center)
	assert.Greater(t, m.At(1, 32), float32(0))

	// Symmetric under mirroring.
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			assert.InDelta(t, m.At(x, y), m.At(63-x, y), 1e-6)
			assert.InDelta(t, m.At(x, y), m.At(x, 63-y), 1e-6)
			assert.InDelta(t, m.At(x, y), m.At(y, x), 1e-6)
		}
	}

	assert.Equal(t, 64, m.Image().Bounds().Dx())
}

func TestUniformSceneSamplesItsBrightness(t *testing.T) {
	for _, size := range []int{16, 64, 256} {
		for _, e := range []float32{0, 0.25, 0.6, 1} {
			target := &uniformTarget{color: [3]float32{e, e, e}}
			s, err := NewSampler(target, size)
			require.NoError(t, err)

			got, err := s.Sample(camera.Pose{Pitch: math.Pi / 2})
			require.NoError(t, err)
			for _, c := range got {
				assert.InDelta(t, e, c, 1e-4, "size %d, E %v", size, e)
			}
			assert.Equal(t, 1, target.begins)
			assert.Len(t, target.views, 5)
		}
	}
}

func TestSampleChannelsAndWeighting(t *testing.T) {
	target := &uniformTarget{
		faces: map[Face][3]float32{FaceFront: {1, 0.5, 0}},
	}
	s, err := NewSampler(target, 64)
	require.NoError(t, err)

	got, err := s.Sample(camera.Pose{})
	require.NoError(t, err)

	// Only the front face is lit: a large share but not all of the light.
	assert.Greater(t, got[0], float32(0.3))
	assert.Less(t, got[0], float32(1))
	assert.InDelta(t, got[0]/2, got[1], 1e-4)
	assert.Zero(t, got[2])
}

func TestSampleClamps(t *testing.T) {
	target := &uniformTarget{color: [3]float32{5, -1, 1}}
	s, err := NewSampler(target, 16)
	require.NoError(t, err)
	got, err := s.Sample(camera.Pose{})
	require.NoError(t, err)
	assert.Equal(t, [3]float32{1, 0, 1}, got)
}

func TestHemicubeViews(t *testing.T) {
	pose := camera.Pose{Position: mgl64.Vec3{1, 2, 0.5}, Pitch: math.Pi / 2}
	views := HemicubeViews(pose, 256)
	b := pose.Basis()

	want := map[Face]struct {
		forward  mgl64.Vec3
		viewport Viewport
	}{
		FaceFront:  {b.Forward, Viewport{64, 64, 128, 128}},
		FaceTop:    {b.Up, Viewport{64, 192, 128, 128}},
		FaceBottom: {b.Up.Mul(-1), Viewport{64, -64, 128, 128}},
		FaceLeft:   {b.Right.Mul(-1), Viewport{-64, 64, 128, 128}},
		FaceRight:  {b.Right, Viewport{192, 64, 128, 128}},
	}

	for i, v := range views {
		assert.Equal(t, Face(i), v.Face)
		w := want[v.Face]
		assert.True(t, w.forward.ApproxEqualThreshold(v.Forward, 1e-9), "%s forward %v", v.Face, v.Forward)
		assert.Equal(t, w.viewport, v.Viewport, v.Face.String())
		assert.Equal(t, pose.Position, v.Eye)
		assert.InDelta(t, 0, v.Forward.Dot(v.Up), 1e-9)
	}

	// Every side face of an upward pose looks horizontally.
	for _, v := range views[1:] {
		assert.InDelta(t, 0, v.Forward.Z(), 1e-9, v.Face.String())
	}
}

func TestFaceRayContinuity(t *testing.T) {
	views := HemicubeViews(camera.Pose{Heading: 0.4}, 64)
	front, top := views[FaceFront], views[FaceTop]

	// The top edge of the front face meets the bottom edge of the top face.
	a := front.Ray(0.3, 1).Normalize()
	b := top.Ray(0.3, -1).Normalize()
	assert.True(t, a.ApproxEqualThreshold(b, 1e-9), "%v vs %v", a, b)

	left, right := views[FaceLeft], views[FaceRight]
	a = front.Ray(-1, 0.2).Normalize()
	b = left.Ray(1, 0.2).Normalize()
	assert.True(t, a.ApproxEqualThreshold(b, 1e-9), "%v vs %v", a, b)
	a = front.Ray(1, 0.2).Normalize()
	b = right.Ray(-1, 0.2).Normalize()
	assert.True(t, a.ApproxEqualThreshold(b, 1e-9), "%v vs %v", a, b)
}

func TestCanvas(t *testing.T) {
	c := NewCanvas(16)
	c.FillRect(Viewport{X: -4, Y: 12, W: 8, H: 8}, [3]float32{1, 1, 1})
	assert.Equal(t, [3]float32{1, 1, 1}, c.At(0, 15))
	assert.Equal(t, [3]float32{1, 1, 1}, c.At(3, 12))
	assert.Equal(t, [3]float32{}, c.At(4, 12))
	assert.Equal(t, [3]float32{}, c.At(0, 11))

	assert.Equal(t, Viewport{}, Viewport{X: 20, W: 4, H: 4}.Clip(16))
	assert.True(t, Viewport{X: 2, Y: 2, W: 2, H: 2}.Contains(3, 3))
	assert.False(t, Viewport{X: 2, Y: 2, W: 2, H: 2}.Contains(4, 3))

	c.Fill([3]float32{0.5, 0.5, 0.5})
	avg := reduce(c, NewCanvas(16))
	assert.InDelta(t, 0.5, avg[0], 1e-6)

	img := c.Image()
	assert.Equal(t, uint8(128), img.RGBAAt(0, 0).R)

	c.Clear()
	assert.Equal(t, [3]float32{}, c.At(5, 5))
}

// surfaceOf builds a surface whose mapping accepts texels for which keep
// returns true and records every call.
func surfaceOf(t *testing.T, name string, w, h int, keep func(x, y int) bool, calls *int) Surface {
	t.Helper()
	lm, err := lightmap.New(name, w, h)
	require.NoError(t, err)
	return Surface{
		Lightmap: lm,
		Texel: func(x, y int) (camera.Pose, bool) {
			*calls++
			if !keep(x, y) {
				return camera.Pose{}, false
			}
			return camera.Pose{Position: mgl64.Vec3{float64(x), float64(y), 0}}, true
		},
	}
}

func TestEngineVisitsEveryTexelOnce(t *testing.T) {
	target := &uniformTarget{color: [3]float32{0.5, 0.5, 0.5}}
	s, err := NewSampler(target, 16)
	require.NoError(t, err)

	calls := 0
	checker := func(x, y int) bool { return (x+y)%2 == 0 }
	none := func(x, y int) bool { return false }
	surfaces := []Surface{
		surfaceOf(t, "a", 4, 4, checker, &calls),
		surfaceOf(t, "b", 2, 2, none, &calls),
		surfaceOf(t, "c", 8, 2, checker, &calls),
	}
	e := NewEngine(surfaces, s)
	total := 16 + 4 + 16

	steps := 0
	for e.State() == Working {
		steps++
		require.LessOrEqual(t, steps, total, "engine did not finish within the texel count")
		_, err := e.Step()
		require.NoError(t, err)
	}

	assert.Equal(t, total, calls)
	assert.Equal(t, 16, target.begins, "renderer ran for unmapped texels")
	assert.Equal(t, 16, e.Sampled())
	assert.Equal(t, 1.0, e.Progress())
	assert.Equal(t, "done", e.State().String())

	// Done is terminal.
	more, err := e.Step()
	require.NoError(t, err)
	assert.False(t, more)
	assert.Equal(t, total, calls)

	// Mapped texels hold the sample, unmapped ones the in-progress fill.
	lm := surfaces[0].Lightmap
	assert.InDelta(t, 0.5, lm.At(0, 0)[0], 1.0/255)
	assert.InDelta(t, 127.0/255, lm.At(1, 0)[0], 1.0/255)
}

func TestEngineSkipsWithinOneCall(t *testing.T) {
	target := &uniformTarget{color: [3]float32{1, 1, 1}}
	s, err := NewSampler(target, 16)
	require.NoError(t, err)

	calls := 0
	lastOnly := func(x, y int) bool { return x == 3 && y == 3 }
	e := NewEngine([]Surface{surfaceOf(t, "a", 4, 4, lastOnly, &calls)}, s)

	more, err := e.Step()
	require.NoError(t, err)
	assert.True(t, more)
	assert.Equal(t, 16, calls)
	assert.Equal(t, Done, e.State())
}

func TestEngineCommitPolicies(t *testing.T) {
	all := func(x, y int) bool { return true }

	t.Run("row", func(t *testing.T) {
		s, err := NewSampler(&uniformTarget{color: [3]float32{1, 1, 1}}, 16)
		require.NoError(t, err)
		calls := 0
		surf := surfaceOf(t, "a", 4, 4, all, &calls)
		e := NewEngine([]Surface{surf}, s, WithCommitPolicy(CommitRow))

		require.NoError(t, e.Run(3))
		assert.Equal(t, Cursor{X: 3}, e.Cursor())
		assert.Zero(t, surf.Lightmap.At(0, 0)[0])

		require.NoError(t, e.Run(1))
		assert.Equal(t, Cursor{Y: 1}, e.Cursor())
		assert.InDelta(t, 1, surf.Lightmap.At(0, 0)[0], 1e-6)
		assert.Zero(t, surf.Lightmap.At(0, 1)[0])
	})

	t.Run("lightmap", func(t *testing.T) {
		s, err := NewSampler(&uniformTarget{color: [3]float32{1, 1, 1}}, 16)
		require.NoError(t, err)
		calls := 0
		surf := surfaceOf(t, "a", 4, 4, all, &calls)
		e := NewEngine([]Surface{surf}, s, WithCommitPolicy(CommitLightmap))

		require.NoError(t, e.Run(15))
		assert.Zero(t, surf.Lightmap.At(0, 0)[0])
		assert.Zero(t, surf.Lightmap.Version())

		require.NoError(t, e.Run(5))
		assert.Equal(t, Done, e.State())
		assert.InDelta(t, 1, surf.Lightmap.At(3, 3)[0], 1e-6)
		assert.Equal(t, uint64(1), surf.Lightmap.Version())
	})
}

func TestEngineRenderFailure(t *testing.T) {
	target := &uniformTarget{err: errors.New("no framebuffer")}
	s, err := NewSampler(target, 16)
	require.NoError(t, err)

	calls := 0
	e := NewEngine([]Surface{surfaceOf(t, "a", 2, 2, func(x, y int) bool { return true }, &calls)}, s)
	_, err = e.Step()
	assert.ErrorContains(t, err, "no framebuffer")
	assert.Equal(t, Cursor{}, e.Cursor())
	assert.Equal(t, Working, e.State())

	target.err = nil
	require.NoError(t, e.Finish())
	assert.Equal(t, Done, e.State())
}

func TestEngineWithoutSurfaces(t *testing.T) {
	e := NewEngine(nil, nil)
	assert.Equal(t, Done, e.State())
	assert.Equal(t, 1.0, e.Progress())
	more, err := e.Step()
	require.NoError(t, err)
	assert.False(t, more)
}
