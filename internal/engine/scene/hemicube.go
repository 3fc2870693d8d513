package scene

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/roomlight/internal/engine/framebuffer"
	"github.com/Faultbox/roomlight/internal/radiosity"
)

// HemicubeTarget renders hemicube faces with the room renderer into a
// float framebuffer and reads them back for the radiosity sampler.
type HemicubeTarget struct {
	rooms   *RoomRenderer
	fb      *framebuffer.Framebuffer
	restore func()
}

// NewHemicubeTarget creates a sample target drawing rooms.
func NewHemicubeTarget(rooms *RoomRenderer) *HemicubeTarget {
	return &HemicubeTarget{rooms: rooms}
}

// Begin implements radiosity.SampleTarget.
func (h *HemicubeTarget) Begin(size int) error {
	if h.fb == nil {
		fb, err := framebuffer.New(int32(size), int32(size), framebuffer.RGBA32F)
		if err != nil {
			return fmt.Errorf("hemicube target: %w", err)
		}
		h.fb = fb
	}
	h.fb.Resize(int32(size), int32(size))

	h.restore = h.fb.BindWithViewport()
	gl.Enable(gl.DEPTH_TEST)
	h.fb.Clear(0, 0, 0, 1)
	return nil
}

// RenderFace implements radiosity.SampleTarget. Viewports may extend past
// the framebuffer; GL clips them.
func (h *HemicubeTarget) RenderFace(v radiosity.FaceView) error {
	vp := v.Viewport
	gl.Viewport(int32(vp.X), int32(vp.Y), int32(vp.W), int32(vp.H))
	h.rooms.Draw(v.Projection.Mul4(v.View), ModeBake)
	return nil
}

// End implements radiosity.SampleTarget.
func (h *HemicubeTarget) End(dst *radiosity.Canvas) error {
	if h.restore != nil {
		h.restore()
		h.restore = nil
	}
	return h.fb.ReadRGB(dst.Pix)
}

// Destroy releases the framebuffer.
func (h *HemicubeTarget) Destroy() {
	if h.fb != nil {
		h.fb.Destroy()
		h.fb = nil
	}
}
