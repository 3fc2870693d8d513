package room

import (
	"errors"
	"fmt"
	"math"

	"github.com/Faultbox/roomlight/internal/lightmap"
	"github.com/Faultbox/roomlight/pkg/formats"
	"github.com/Faultbox/roomlight/pkg/geom"
)

// ErrUnknownTextureFit is returned for a wall fit mode other than per_wall
// or overall.
var ErrUnknownTextureFit = errors.New("unknown texture fit mode")

// Surface describes how a floor, ceiling or wall strip is textured.
type Surface struct {
	Texture  string
	Scale    float64 // Texture tiles per meter are divided by this
	Rotation float64 // Degrees, floor and ceiling only
	Fit      string  // Wall strips only
}

func surfaceFrom(d formats.SurfaceData) Surface {
	return Surface{
		Texture:  d.Texture,
		Scale:    d.Scale,
		Rotation: d.Rotation,
		Fit:      d.Fit,
	}
}

func (s Surface) scale() float64 {
	if s.Scale <= 0 {
		return 1
	}
	return s.Scale
}

// Interval is a horizontal texture coordinate range along one wall.
type Interval struct {
	Start float64
	End   float64
}

// Lerp maps t in [0,1] into the interval.
func (iv Interval) Lerp(t float64) float64 {
	return geom.Lerp(iv.Start, iv.End, t)
}

// Span returns End - Start.
func (iv Interval) Span() float64 {
	return iv.End - iv.Start
}

// GenerateWallParameterization assigns every wall its texture and lightmap
// coordinate interval. aspect is the wall texture's width / height.
//
// Texture intervals follow the wall fit mode: per_wall restarts at 0 on
// every wall, overall runs continuously around the perimeter. Lightmap
// intervals always run continuously over [0,1) since all walls share one
// lightmap strip.
func (r *Room) GenerateWallParameterization(aspect float64) error {
	if aspect <= 0 {
		aspect = 1
	}

	lengths := make([]float64, len(r.walls))
	total := 0.0
	for i, w := range r.walls {
		lengths[i] = w.Length()
		total += lengths[i]
	}
	r.perimeter = total

	// Length of wall covered by one horizontal texture repeat.
	tile := r.Height() * aspect * r.Walls.scale()
	repeats := func(length float64) float64 {
		return math.Max(1, math.Round(length/tile))
	}

	r.wallTexture = make([]Interval, len(r.walls))
	r.wallLightmap = make([]Interval, len(r.walls))

	var overall float64
	switch r.Walls.Fit {
	case formats.FitPerWall, "":
	case formats.FitOverall:
		overall = repeats(total)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTextureFit, r.Walls.Fit)
	}

	before := 0.0
	for i, length := range lengths {
		after := before + length
		r.wallLightmap[i] = Interval{before / total, after / total}
		if overall > 0 {
			r.wallTexture[i] = Interval{before / total * overall, after / total * overall}
		} else {
			r.wallTexture[i] = Interval{0, repeats(length)}
		}
		before = after
	}
	return nil
}

// WallTextureInterval returns the texture interval of wall i.
func (r *Room) WallTextureInterval(i int) Interval {
	return r.wallTexture[i]
}

// WallLightmapInterval returns the lightmap interval of wall i.
func (r *Room) WallLightmapInterval(i int) Interval {
	return r.wallLightmap[i]
}

// Perimeter returns the total wall length.
func (r *Room) Perimeter() float64 {
	return r.perimeter
}

// AllocateLightmaps creates the floor, ceiling and wall strip lightmaps.
func (r *Room) AllocateLightmaps(surfaceSize, wallWidth, wallHeight int) error {
	var err error
	if r.FloorMap, err = lightmap.New(fmt.Sprintf("room%d-floor", r.Index), surfaceSize, surfaceSize); err != nil {
		return err
	}
	if r.CeilingMap, err = lightmap.New(fmt.Sprintf("room%d-ceiling", r.Index), surfaceSize, surfaceSize); err != nil {
		return err
	}
	if r.WallMap, err = lightmap.New(fmt.Sprintf("room%d-walls", r.Index), wallWidth, wallHeight); err != nil {
		return err
	}
	return nil
}

// FlatTexCoord returns the texture coordinate of a floor or ceiling point,
// rotated and scaled per the surface settings.
func FlatTexCoord(s Surface, p geom.Point) (u, v float64) {
	sin, cos := math.Sincos(geom.DegToRad(s.Rotation))
	x := p[0]*cos - p[1]*sin
	y := p[0]*sin + p[1]*cos
	return x / s.scale(), y / s.scale()
}

// FlatLightmapCoord maps a point inside the outline's bounding box to
// [0,1]².
func (r *Room) FlatLightmapCoord(p geom.Point) (u, v float64) {
	min, max := geom.Bounds(r.vertices)
	return (p[0] - min[0]) / (max[0] - min[0]), (p[1] - min[1]) / (max[1] - min[1])
}

// VertexStride is the number of floats per vertex in the surface meshes:
// position xyz, texture uv, lightmap uv.
const VertexStride = 7

// FloorVertices returns the floor triangles as interleaved vertex data.
func (r *Room) FloorVertices() []float32 {
	return r.flatVertices(r.Floor, r.FloorHeight, false)
}

// CeilingVertices returns the ceiling triangles, wound to face down.
func (r *Room) CeilingVertices() []float32 {
	return r.flatVertices(r.Ceiling, r.CeilingHeight, true)
}

func (r *Room) flatVertices(s Surface, z float64, flip bool) []float32 {
	data := make([]float32, 0, len(r.triangles)*3*VertexStride)
	for _, tri := range r.triangles {
		order := [3]int{0, 1, 2}
		if flip {
			order = [3]int{0, 2, 1}
		}
		for _, k := range order {
			p := tri[k]
			u, v := FlatTexCoord(s, p)
			lu, lv := r.FlatLightmapCoord(p)
			data = append(data,
				float32(p[0]), float32(p[1]), float32(z),
				float32(u), float32(v),
				float32(lu), float32(lv))
		}
	}
	return data
}

// Span is a solid height range of a wall.
type Span struct {
	Bottom float64
	Top    float64
}

// SolidSpans returns the parts of wall i that are solid. A solid wall is
// one span from floor to ceiling. A shared wall keeps only the sill below
// the neighbor's floor and the header above its ceiling.
func (r *Room) SolidSpans(i int) []Span {
	n := r.SharedWalls[i]
	if n == nil {
		return []Span{{r.FloorHeight, r.CeilingHeight}}
	}

	var spans []Span
	if sill := math.Min(n.FloorHeight, r.CeilingHeight); sill > r.FloorHeight {
		spans = append(spans, Span{r.FloorHeight, sill})
	}
	if header := math.Max(n.CeilingHeight, r.FloorHeight); header < r.CeilingHeight {
		spans = append(spans, Span{header, r.CeilingHeight})
	}
	return spans
}

// WallVertices returns two triangles per solid wall span as interleaved
// vertex data. Requires GenerateWallParameterization.
func (r *Room) WallVertices() []float32 {
	data := make([]float32, 0, len(r.walls)*6*VertexStride)
	texTop := 1 / r.Walls.scale()
	height := r.Height()
	for i, w := range r.walls {
		tex := r.wallTexture[i]
		lm := r.wallLightmap[i]
		for _, span := range r.SolidSpans(i) {
			v0 := (span.Bottom - r.FloorHeight) / height
			v1 := (span.Top - r.FloorHeight) / height
			corners := [4][7]float64{
				{w[0][0], w[0][1], span.Bottom, tex.Start, v0 * texTop, lm.Start, v0},
				{w[1][0], w[1][1], span.Bottom, tex.End, v0 * texTop, lm.End, v0},
				{w[1][0], w[1][1], span.Top, tex.End, v1 * texTop, lm.End, v1},
				{w[0][0], w[0][1], span.Top, tex.Start, v1 * texTop, lm.Start, v1},
			}
			for _, k := range [6]int{0, 1, 2, 0, 2, 3} {
				for _, f := range corners[k] {
					data = append(data, float32(f))
				}
			}
		}
	}
	return data
}
