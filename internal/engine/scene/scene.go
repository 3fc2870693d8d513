// Package scene renders level rooms for display and for hemicube sampling.
package scene

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/roomlight/internal/engine/camera"
	"github.com/Faultbox/roomlight/internal/level"
)

// Config contains scene configuration options.
type Config struct {
	Width  int32
	Height int32
	Albedo float32
}

// Scene draws the loaded level from the player's camera.
type Scene struct {
	config Config
	rooms  *RoomRenderer

	// ShowInProgress displays the in-progress lightmaps instead of the
	// committed ones.
	ShowInProgress bool
	ClearColor     [3]float32
}

// New creates a scene. A GL context must be current.
func New(cfg Config) (*Scene, error) {
	rooms, err := NewRoomRenderer(cfg.Albedo)
	if err != nil {
		return nil, fmt.Errorf("creating room renderer: %w", err)
	}
	return &Scene{config: cfg, rooms: rooms}, nil
}

// Load replaces the scene geometry with l.
func (s *Scene) Load(l *level.Level) {
	s.rooms.Load(l)
}

// Rooms returns the room renderer, shared with the hemicube target.
func (s *Scene) Rooms() *RoomRenderer {
	return s.rooms
}

// Mode returns the display shading mode.
func (s *Scene) Mode() Mode {
	if s.ShowInProgress {
		return ModeInProgress
	}
	return ModeCommitted
}

// Render draws the scene into the current framebuffer.
func (s *Scene) Render(cam *camera.FirstPersonCamera) {
	gl.Viewport(0, 0, s.config.Width, s.config.Height)
	gl.ClearColor(s.ClearColor[0], s.ClearColor[1], s.ClearColor[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	aspect := float64(s.config.Width) / float64(max(s.config.Height, 1))
	viewProj := cam.ProjectionMatrix(aspect).Mul4(cam.ViewMatrix())
	s.rooms.Draw(viewProj, s.Mode())
}

// Resize updates the display size.
func (s *Scene) Resize(width, height int32) {
	s.config.Width = width
	s.config.Height = height
}

// Destroy releases all GPU resources.
func (s *Scene) Destroy() {
	s.rooms.Destroy()
}
