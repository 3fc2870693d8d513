package radiosity

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"math"
)

// ErrUnsupportedSampleSize is returned for a hemicube resolution other
// than one of SampleSizes.
var ErrUnsupportedSampleSize = errors.New("unsupported sample size")

// SampleSizes are the supported hemicube render resolutions.
var SampleSizes = []int{16, 64, 256, 1024}

// CheckSampleSize returns ErrUnsupportedSampleSize unless size is one of
// SampleSizes.
func CheckSampleSize(size int) error {
	for _, s := range SampleSizes {
		if s == size {
			return nil
		}
	}
	return fmt.Errorf("%w: %d (want one of %v)", ErrUnsupportedSampleSize, size, SampleSizes)
}

// Mask holds per-pixel weights for an unfolded hemicube: a Lambert cosine
// term toward the surface normal times a compensation term for the flat
// faces. The four corners of the canvas belong to no face and weigh zero.
type Mask struct {
	Size    int
	Weights []float32
}

// NewMask computes the weight mask for a size × size sample canvas.
func NewMask(size int) (*Mask, error) {
	if err := CheckSampleSize(size); err != nil {
		return nil, err
	}

	m := &Mask{Size: size, Weights: make([]float32, size*size)}
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			m.Weights[y*size+x] = float32(weight(size, float64(x)+0.5, float64(y)+0.5))
		}
	}
	return m, nil
}

// At returns the weight of pixel (x, y).
func (m *Mask) At(x, y int) float32 {
	return m.Weights[y*m.Size+x]
}

// weight returns the mask value at pixel center (cx, cy).
func weight(size int, cx, cy float64) float64 {
	d := float64(size)
	q := d / 4
	face, ok := faceAt(size, cx, cy)
	if !ok {
		return 0
	}

	// Offset from the point the face camera looks at, in face units, and
	// the pixel's height above the surface along the normal.
	var dx, dy, normal float64
	switch face {
	case FaceFront:
		dx, dy, normal = cx-d/2, cy-d/2, q
	case FaceTop:
		dx, dy, normal = cx-d/2, cy-d, d-cy
	case FaceBottom:
		dx, dy, normal = cx-d/2, cy, cy
	case FaceLeft:
		dx, dy, normal = cx, cy-d/2, cx
	case FaceRight:
		dx, dy, normal = cx-d, cy-d/2, d-cx
	}
	if normal <= 0 {
		return 0
	}

	dist := math.Hypot(dx, dy)
	lambert := normal / math.Sqrt(q*q+dist*dist)
	compensation := math.Cos(math.Atan(dist / q))
	return lambert * compensation
}

// faceAt returns the hemicube face covering pixel center (cx, cy).
func faceAt(size int, cx, cy float64) (Face, bool) {
	d := float64(size)
	q, tq := d/4, 3*d/4
	inBand := func(v float64) bool { return v > q && v < tq }

	switch {
	case cx < q:
		return FaceLeft, inBand(cy)
	case cx >= tq:
		return FaceRight, inBand(cy)
	case cy < q:
		return FaceBottom, inBand(cx)
	case cy >= tq:
		return FaceTop, inBand(cx)
	}
	return FaceFront, true
}

// Image renders the mask as a grayscale image, top row first.
func (m *Mask) Image() *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Size, m.Size))
	for y := 0; y < m.Size; y++ {
		for x := 0; x < m.Size; x++ {
			img.SetGray(x, m.Size-1-y, color.Gray{Y: toByte(m.At(x, y))})
		}
	}
	return img
}
