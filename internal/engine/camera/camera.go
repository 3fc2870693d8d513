// Package camera provides the first-person camera and the pose/basis math
// shared by the player view and the hemicube sampler.
//
// World space is z-up: rooms lie in the xy plane and heights are z.
// Heading is measured counter-clockwise from +x, pitch upward from the
// horizon.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"
)

// WorldUp is the world's vertical axis.
var WorldUp = mgl64.Vec3{0, 0, 1}

// Pose is an eye position and view direction.
type Pose struct {
	Position mgl64.Vec3
	Heading  float64 // Radians, counter-clockwise from +x
	Pitch    float64 // Radians, positive looks up
}

// Basis returns the orientation frame of the pose.
func (p Pose) Basis() Basis {
	return BasisOf(p.Heading, p.Pitch)
}

// Basis is an orthonormal camera frame.
type Basis struct {
	Forward mgl64.Vec3
	Up      mgl64.Vec3
	Right   mgl64.Vec3
}

// BasisOf builds the frame for the given heading and pitch. At pitch ±π/2
// the frame stays well defined because right is taken from heading alone.
func BasisOf(heading, pitch float64) Basis {
	sh, ch := math.Sincos(heading)
	sp, cp := math.Sincos(pitch)
	forward := mgl64.Vec3{ch * cp, sh * cp, sp}
	right := mgl64.Vec3{sh, -ch, 0}
	return Basis{
		Forward: forward,
		Up:      right.Cross(forward),
		Right:   right,
	}
}

// ViewMatrix returns a right-handed look-at matrix for an eye at position
// looking along forward.
func ViewMatrix(position, forward, up mgl64.Vec3) mgl32.Mat4 {
	eye := vec32(position)
	return mgl32.LookAtV(eye, eye.Add(vec32(forward)), vec32(up))
}

// Perspective returns a projection with a vertical field of view in
// radians.
func Perspective(fovy, aspect, near, far float64) mgl32.Mat4 {
	return mgl32.Perspective(float32(fovy), float32(aspect), float32(near), float32(far))
}

func vec32(v mgl64.Vec3) mgl32.Vec3 {
	return mgl32.Vec3{float32(v[0]), float32(v[1]), float32(v[2])}
}

// FirstPersonCamera renders the world from a player's eyes.
type FirstPersonCamera struct {
	Pose

	// Projection
	FOV  float64 // Vertical field of view (radians)
	Near float64
	Far  float64
}

// NewFirstPersonCamera creates a first-person camera with default settings.
func NewFirstPersonCamera() *FirstPersonCamera {
	return &FirstPersonCamera{
		FOV:  mgl64.DegToRad(45),
		Near: 0.1,
		Far:  100.0,
	}
}

// Follow moves the camera to pose.
func (c *FirstPersonCamera) Follow(pose Pose) {
	c.Pose = pose
}

// ViewMatrix returns the view matrix for this camera.
func (c *FirstPersonCamera) ViewMatrix() mgl32.Mat4 {
	b := c.Basis()
	return ViewMatrix(c.Position, b.Forward, b.Up)
}

// ProjectionMatrix returns the perspective projection for a viewport
// aspect ratio.
func (c *FirstPersonCamera) ProjectionMatrix(aspect float64) mgl32.Mat4 {
	return Perspective(c.FOV, aspect, c.Near, c.Far)
}
