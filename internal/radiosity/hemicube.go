package radiosity

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/roomlight/internal/engine/camera"
)

// Face is one of the five hemicube faces.
type Face int

// Hemicube faces, in render order.
const (
	FaceFront Face = iota
	FaceTop
	FaceBottom
	FaceLeft
	FaceRight
)

var faceNames = [...]string{"front", "top", "bottom", "left", "right"}

func (f Face) String() string {
	if f < 0 || int(f) >= len(faceNames) {
		return "unknown"
	}
	return faceNames[f]
}

// Hemicube projection planes. Samples sit SampleOffset off their surface,
// so the near plane has to be closer than that.
const (
	NearPlane = 0.005
	FarPlane  = 100.0
)

// faceSetup is one row of the hemicube camera table. Viewports are in
// quarters of the canvas; pitch and heading are the extra rotation of the
// face camera relative to the sample pose.
type faceSetup struct {
	face       Face
	vx, vy     int
	pitch, yaw float64
}

// faceTable lays the faces out as an unfolded cube:
//
//	  +---+
//	+-+ T +-+
//	| L F R |
//	+-+ B +-+
//	  +---+
var faceTable = [5]faceSetup{
	{FaceFront, 1, 1, 0, 0},
	{FaceTop, 1, 3, 90, 0},
	{FaceBottom, 1, -1, -90, 0},
	{FaceLeft, -1, 1, 0, 90},
	{FaceRight, 3, 1, 0, -90},
}

// FaceView is everything a sample target needs to draw one face.
type FaceView struct {
	Face     Face
	Viewport Viewport
	Eye      mgl64.Vec3
	Forward  mgl64.Vec3
	Up       mgl64.Vec3

	View       mgl32.Mat4
	Projection mgl32.Mat4
}

// HemicubeViews returns the five face views for a sample pose on a size ×
// size canvas. Each face is a 90° perspective into a half-size viewport.
// The extra pitch and heading are applied in the pose's own frame, so a
// pose looking straight up still gets four side faces around it.
func HemicubeViews(pose camera.Pose, size int) [5]FaceView {
	q := size / 4
	b := pose.Basis()
	proj := camera.Perspective(math.Pi/2, 1, NearPlane, FarPlane)

	var views [5]FaceView
	for i, s := range faceTable {
		forward, up := b.Forward, b.Up
		switch {
		case s.pitch > 0:
			forward, up = b.Up, b.Forward.Mul(-1)
		case s.pitch < 0:
			forward, up = b.Up.Mul(-1), b.Forward
		case s.yaw > 0:
			forward = b.Right.Mul(-1)
		case s.yaw < 0:
			forward = b.Right
		}

		views[i] = FaceView{
			Face:       s.face,
			Viewport:   Viewport{X: s.vx * q, Y: s.vy * q, W: 2 * q, H: 2 * q},
			Eye:        pose.Position,
			Forward:    forward,
			Up:         up,
			View:       camera.ViewMatrix(pose.Position, forward, up),
			Projection: proj,
		}
	}
	return views
}

// Right returns the face camera's right vector.
func (v FaceView) Right() mgl64.Vec3 {
	return v.Forward.Cross(v.Up)
}

// Ray returns the unnormalized direction through normalized device
// coordinates (ndcX, ndcY) in [-1, 1] of this face.
func (v FaceView) Ray(ndcX, ndcY float64) mgl64.Vec3 {
	return v.Forward.Add(v.Right().Mul(ndcX)).Add(v.Up.Mul(ndcY))
}
