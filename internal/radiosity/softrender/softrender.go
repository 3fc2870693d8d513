// Package softrender is a CPU ray-casting sample target for the radiosity
// sampler. It sees the same rooms the GL renderer draws, shaded from
// committed lightmaps, and needs no graphics context.
package softrender

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/roomlight/internal/lightmap"
	"github.com/Faultbox/roomlight/internal/radiosity"
	"github.com/Faultbox/roomlight/internal/room"
)

// epsilon is the minimum ray distance counted as a hit.
const epsilon = 1e-6

// Target ray-casts rooms into a hemicube canvas.
type Target struct {
	// Albedo scales reflected light; emission is added unscaled.
	Albedo float32

	rooms  []*room.Room
	canvas *radiosity.Canvas
}

// New creates a target over rooms.
func New(rooms []*room.Room, albedo float64) *Target {
	return &Target{Albedo: float32(albedo), rooms: rooms}
}

// Begin implements radiosity.SampleTarget.
func (t *Target) Begin(size int) error {
	if t.canvas == nil || t.canvas.Size != size {
		t.canvas = radiosity.NewCanvas(size)
	} else {
		t.canvas.Clear()
	}
	return nil
}

// RenderFace implements radiosity.SampleTarget.
func (t *Target) RenderFace(v radiosity.FaceView) error {
	vp := v.Viewport
	clip := vp.Clip(t.canvas.Size)
	halfW, halfH := float64(vp.W)/2, float64(vp.H)/2
	cx, cy := float64(vp.X)+halfW, float64(vp.Y)+halfH

	for y := clip.Y; y < clip.Y+clip.H; y++ {
		for x := clip.X; x < clip.X+clip.W; x++ {
			ndcX := (float64(x) + 0.5 - cx) / halfW
			ndcY := (float64(y) + 0.5 - cy) / halfH
			t.canvas.Set(x, y, t.Trace(v.Eye, v.Ray(ndcX, ndcY)))
		}
	}
	return nil
}

// End implements radiosity.SampleTarget.
func (t *Target) End(dst *radiosity.Canvas) error {
	copy(dst.Pix, t.canvas.Pix)
	return nil
}

type hit struct {
	dist float64
	room *room.Room
	lm   *lightmap.Lightmap
	u, v float64
}

// Trace returns the radiance seen along dir from eye: the emission of the
// first surface hit plus its committed light times albedo. Rays that
// leave the level are black.
func (t *Target) Trace(eye, dir mgl64.Vec3) [3]float32 {
	h := hit{dist: math.Inf(1)}
	for _, r := range t.rooms {
		t.traceFlat(r, eye, dir, &h)
		t.traceWalls(r, eye, dir, &h)
	}
	if h.room == nil {
		return [3]float32{}
	}

	e := float32(h.room.Emissive)
	light := h.lm.Sample(h.u, h.v)
	return [3]float32{
		e + t.Albedo*light[0],
		e + t.Albedo*light[1],
		e + t.Albedo*light[2],
	}
}

func (t *Target) traceFlat(r *room.Room, eye, dir mgl64.Vec3, h *hit) {
	if dir.Z() == 0 {
		return
	}
	for _, plane := range []struct {
		z  float64
		lm *lightmap.Lightmap
	}{
		{r.FloorHeight, r.FloorMap},
		{r.CeilingHeight, r.CeilingMap},
	} {
		dist := (plane.z - eye.Z()) / dir.Z()
		if dist <= epsilon || dist >= h.dist {
			continue
		}
		p := eye.Add(dir.Mul(dist))
		xy := mgl64.Vec2{p.X(), p.Y()}
		if !r.Contains(xy) {
			continue
		}
		u, v := r.FlatLightmapCoord(xy)
		*h = hit{dist: dist, room: r, lm: plane.lm, u: u, v: v}
	}
}

func (t *Target) traceWalls(r *room.Room, eye, dir mgl64.Vec3, h *hit) {
	origin := mgl64.Vec2{eye.X(), eye.Y()}
	d := mgl64.Vec2{dir.X(), dir.Y()}
	for i, w := range r.WallSegments() {
		dist, s, ok := raySegment(origin, d, w[0], w[1])
		if !ok || dist <= epsilon || dist >= h.dist {
			continue
		}
		z := eye.Z() + dir.Z()*dist
		for _, span := range r.SolidSpans(i) {
			if z < span.Bottom || z > span.Top {
				continue
			}
			*h = hit{
				dist: dist,
				room: r,
				lm:   r.WallMap,
				u:    r.WallLightmapInterval(i).Lerp(s),
				v:    (z - r.FloorHeight) / r.Height(),
			}
			break
		}
	}
}

// raySegment intersects the ray origin + dist*d with segment a-b and
// returns the ray distance and the position s in [0,1] along the segment.
func raySegment(origin, d, a, b mgl64.Vec2) (dist, s float64, ok bool) {
	e := b.Sub(a)
	denom := cross(d, e)
	if math.Abs(denom) < 1e-12 {
		return 0, 0, false
	}
	ao := a.Sub(origin)
	dist = cross(ao, e) / denom
	s = cross(ao, d) / denom
	return dist, s, s >= 0 && s <= 1
}

func cross(a, b mgl64.Vec2) float64 {
	return a[0]*b[1] - a[1]*b[0]
}
