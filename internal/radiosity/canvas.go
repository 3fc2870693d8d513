package radiosity

import (
	"image"
	"image/color"
)

// Viewport is a rectangle of a canvas in pixels, origin bottom-left like
// an OpenGL viewport. It may extend past the canvas.
type Viewport struct {
	X, Y int
	W, H int
}

// Clip returns the part of v inside a size × size canvas.
func (v Viewport) Clip(size int) Viewport {
	x0, y0 := max(v.X, 0), max(v.Y, 0)
	x1, y1 := min(v.X+v.W, size), min(v.Y+v.H, size)
	if x1 <= x0 || y1 <= y0 {
		return Viewport{}
	}
	return Viewport{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains reports whether pixel (x, y) lies in v.
func (v Viewport) Contains(x, y int) bool {
	return x >= v.X && x < v.X+v.W && y >= v.Y && y < v.Y+v.H
}

// Canvas is a square float RGB buffer with row 0 at the bottom.
type Canvas struct {
	Size int
	Pix  []float32 // 3 floats per pixel
}

// NewCanvas allocates a black canvas.
func NewCanvas(size int) *Canvas {
	return &Canvas{Size: size, Pix: make([]float32, size*size*3)}
}

// Clear sets every pixel to black.
func (c *Canvas) Clear() {
	clear(c.Pix)
}

// At returns the color at (x, y).
func (c *Canvas) At(x, y int) [3]float32 {
	i := (y*c.Size + x) * 3
	return [3]float32{c.Pix[i], c.Pix[i+1], c.Pix[i+2]}
}

// Set writes the color at (x, y).
func (c *Canvas) Set(x, y int, rgb [3]float32) {
	i := (y*c.Size + x) * 3
	c.Pix[i], c.Pix[i+1], c.Pix[i+2] = rgb[0], rgb[1], rgb[2]
}

// Fill sets every pixel to rgb.
func (c *Canvas) Fill(rgb [3]float32) {
	c.FillRect(Viewport{W: c.Size, H: c.Size}, rgb)
}

// FillRect fills the part of v inside the canvas.
func (c *Canvas) FillRect(v Viewport, rgb [3]float32) {
	v = v.Clip(c.Size)
	for y := v.Y; y < v.Y+v.H; y++ {
		for x := v.X; x < v.X+v.W; x++ {
			c.Set(x, y, rgb)
		}
	}
}

// Multiply scales every pixel by the matching mask weight.
func (c *Canvas) Multiply(m *Mask) {
	for i, w := range m.Weights {
		c.Pix[i*3] *= w
		c.Pix[i*3+1] *= w
		c.Pix[i*3+2] *= w
	}
}

// downsample box-filters the bottom-left size × size region of src into
// the bottom-left size/2 × size/2 region of dst.
func downsample(src, dst *Canvas, size int) {
	half := size / 2
	for y := 0; y < half; y++ {
		for x := 0; x < half; x++ {
			a := src.At(2*x, 2*y)
			b := src.At(2*x+1, 2*y)
			c := src.At(2*x, 2*y+1)
			d := src.At(2*x+1, 2*y+1)
			dst.Set(x, y, [3]float32{
				(a[0] + b[0] + c[0] + d[0]) / 4,
				(a[1] + b[1] + c[1] + d[1]) / 4,
				(a[2] + b[2] + c[2] + d[2]) / 4,
			})
		}
	}
}

// reduce halves the canvas repeatedly, ping-ponging between c and
// scratch, until a 4×4 block remains and returns the mean of its 12
// non-corner pixels. Both canvases are clobbered.
func reduce(c, scratch *Canvas) [3]float32 {
	src, dst := c, scratch
	for size := c.Size; size > 4; size /= 2 {
		downsample(src, dst, size)
		src, dst = dst, src
	}

	var sum [3]float32
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if (x == 0 || x == 3) && (y == 0 || y == 3) {
				continue
			}
			p := src.At(x, y)
			sum[0] += p[0]
			sum[1] += p[1]
			sum[2] += p[2]
		}
	}
	return [3]float32{sum[0] / 12, sum[1] / 12, sum[2] / 12}
}

// Image converts the canvas to an 8-bit image, top row first, clamping to
// [0,1].
func (c *Canvas) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, c.Size, c.Size))
	for y := 0; y < c.Size; y++ {
		for x := 0; x < c.Size; x++ {
			p := c.At(x, y)
			img.SetRGBA(x, c.Size-1-y, color.RGBA{R: toByte(p[0]), G: toByte(p[1]), B: toByte(p[2]), A: 255})
		}
	}
	return img
}

func toByte(v float32) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}
