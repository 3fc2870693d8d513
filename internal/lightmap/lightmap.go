// Package lightmap holds the pixel buffers baked by the radiosity pass.
//
// Each lightmap keeps two RGBA buffers: the committed image that renderers
// read, and an in-progress image the bake writes texel by texel. Texels
// only reach the committed image through CommitRow and Commit, so readers
// never observe a half-written row.
package lightmap

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/Faultbox/roomlight/pkg/geom"
)

// ErrUnsupportedSize is returned for dimensions that are not powers of two.
var ErrUnsupportedSize = errors.New("lightmap size must be a power of two")

// Initial buffer contents.
const (
	committedFill  = 0   // Nothing baked yet: black
	inProgressFill = 127 // Pending texels show mid-grey
)

// Lightmap is a power-of-two RGBA texel buffer pair.
type Lightmap struct {
	Name string

	width  int
	height int

	final      *image.RGBA
	inProgress *image.RGBA

	version uint64
}

// New creates a lightmap of the given size.
func New(name string, width, height int) (*Lightmap, error) {
	if !geom.IsPowerOfTwo(width) || !geom.IsPowerOfTwo(height) {
		return nil, fmt.Errorf("%w: %s is %dx%d", ErrUnsupportedSize, name, width, height)
	}

	lm := &Lightmap{
		Name:       name,
		width:      width,
		height:     height,
		final:      image.NewRGBA(image.Rect(0, 0, width, height)),
		inProgress: image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	fill(lm.final, committedFill)
	fill(lm.inProgress, inProgressFill)
	return lm, nil
}

// Size returns the lightmap dimensions in texels.
func (lm *Lightmap) Size() (width, height int) {
	return lm.width, lm.height
}

// TexelCount returns width*height.
func (lm *Lightmap) TexelCount() int {
	return lm.width * lm.height
}

// Set writes an RGB value (0..1 per channel) into the in-progress buffer.
func (lm *Lightmap) Set(x, y int, rgb [3]float32) {
	i := lm.inProgress.PixOffset(x, y)
	pix := lm.inProgress.Pix[i : i+4 : i+4]
	pix[0] = quantize(rgb[0])
	pix[1] = quantize(rgb[1])
	pix[2] = quantize(rgb[2])
	pix[3] = 255
}

// InProgressAt returns the in-progress value at a texel.
func (lm *Lightmap) InProgressAt(x, y int) [3]float32 {
	return at(lm.inProgress, x, y)
}

// At returns the committed value at a texel.
func (lm *Lightmap) At(x, y int) [3]float32 {
	return at(lm.final, x, y)
}

// CommitRow publishes one in-progress row to the committed image.
func (lm *Lightmap) CommitRow(y int) {
	start := lm.final.PixOffset(0, y)
	end := start + lm.width*4
	copy(lm.final.Pix[start:end], lm.inProgress.Pix[start:end])
	lm.version++
}

// Commit publishes the whole in-progress buffer.
func (lm *Lightmap) Commit() {
	copy(lm.final.Pix, lm.inProgress.Pix)
	lm.version++
}

// Version changes every time committed data changes, so GPU copies know
// when to re-upload.
func (lm *Lightmap) Version() uint64 {
	return lm.version
}

// Final returns the committed image. Callers must not modify it.
func (lm *Lightmap) Final() *image.RGBA {
	return lm.final
}

// InProgress returns the buffer being baked. Callers must not modify it.
func (lm *Lightmap) InProgress() *image.RGBA {
	return lm.inProgress
}

// Sample returns the bilinearly filtered committed value at u, v in
// [0, 1]. Texel centers sit at (i+0.5)/size; lookups clamp to the edge.
func (lm *Lightmap) Sample(u, v float64) [3]float32 {
	fx := u*float64(lm.width) - 0.5
	fy := v*float64(lm.height) - 0.5
	x0 := int(math.Floor(fx))
	y0 := int(math.Floor(fy))
	tx := float32(fx - float64(x0))
	ty := float32(fy - float64(y0))

	c00 := lm.clampedAt(x0, y0)
	c10 := lm.clampedAt(x0+1, y0)
	c01 := lm.clampedAt(x0, y0+1)
	c11 := lm.clampedAt(x0+1, y0+1)

	var out [3]float32
	for c := range out {
		top := c00[c] + (c10[c]-c00[c])*tx
		bottom := c01[c] + (c11[c]-c01[c])*tx
		out[c] = top + (bottom-top)*ty
	}
	return out
}

func (lm *Lightmap) clampedAt(x, y int) [3]float32 {
	x = min(max(x, 0), lm.width-1)
	y = min(max(y, 0), lm.height-1)
	return at(lm.final, x, y)
}

func at(img *image.RGBA, x, y int) [3]float32 {
	c := img.RGBAAt(x, y)
	return [3]float32{float32(c.R) / 255, float32(c.G) / 255, float32(c.B) / 255}
}

func fill(img *image.RGBA, value uint8) {
	c := color.RGBA{R: value, G: value, B: value, A: 255}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func quantize(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(float64(v) * 255))
}
