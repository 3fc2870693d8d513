package radiosity

import (
	"fmt"

	"github.com/Faultbox/roomlight/internal/engine/camera"
)

// SampleTarget draws the scene for the hemicube sampler. Implementations
// must draw with committed lightmaps only, so the bake never reads its
// own in-progress output.
type SampleTarget interface {
	// Begin binds a cleared size × size offscreen buffer.
	Begin(size int) error
	// RenderFace draws all opaque geometry for one face into its viewport.
	RenderFace(view FaceView) error
	// End reads the buffer back into dst and releases it.
	End(dst *Canvas) error
}

// Sampler estimates the light arriving at a point by rendering a
// hemicube around it.
type Sampler struct {
	target  SampleTarget
	mask    *Mask
	canvas  *Canvas
	scratch *Canvas
	norm    float32
}

// NewSampler creates a sampler rendering size × size hemicubes. The
// normalization divisor is the response of the same pipeline to a white
// canvas, so a uniformly lit environment of brightness E samples as E.
func NewSampler(target SampleTarget, size int) (*Sampler, error) {
	mask, err := NewMask(size)
	if err != nil {
		return nil, err
	}

	s := &Sampler{
		target:  target,
		mask:    mask,
		canvas:  NewCanvas(size),
		scratch: NewCanvas(size),
	}

	s.canvas.Fill([3]float32{1, 1, 1})
	s.canvas.Multiply(mask)
	s.norm = reduce(s.canvas, s.scratch)[0]
	return s, nil
}

// Size returns the hemicube resolution.
func (s *Sampler) Size() int {
	return s.mask.Size
}

// Mask returns the weight mask.
func (s *Sampler) Mask() *Mask {
	return s.mask
}

// Normalization returns the divisor applied to every sample.
func (s *Sampler) Normalization() float32 {
	return s.norm
}

// Canvas returns the sample buffer. After Render it holds the unweighted
// hemicube; Sample overwrites it.
func (s *Sampler) Canvas() *Canvas {
	return s.canvas
}

// Render draws the hemicube for pose into the sampler's canvas without
// weighting it.
func (s *Sampler) Render(pose camera.Pose) error {
	if err := s.target.Begin(s.Size()); err != nil {
		return fmt.Errorf("begin sample: %w", err)
	}
	for _, v := range HemicubeViews(pose, s.Size()) {
		if err := s.target.RenderFace(v); err != nil {
			return fmt.Errorf("render %s face: %w", v.Face, err)
		}
	}
	if err := s.target.End(s.canvas); err != nil {
		return fmt.Errorf("read sample: %w", err)
	}
	return nil
}

// Sample returns the incident light at pose, each channel in [0,1].
func (s *Sampler) Sample(pose camera.Pose) ([3]float32, error) {
	if err := s.Render(pose); err != nil {
		return [3]float32{}, err
	}

	s.canvas.Multiply(s.mask)
	avg := reduce(s.canvas, s.scratch)
	var out [3]float32
	for i, v := range avg {
		out[i] = min(max(v/s.norm, 0), 1)
	}
	return out, nil
}
