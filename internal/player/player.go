// Package player implements the first-person controller: input, heading
// and pitch, crouching, jumping and the vertical motion between a room's
// floor and ceiling.
package player

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/Faultbox/roomlight/internal/engine/camera"
	"github.com/Faultbox/roomlight/internal/physics"
	"github.com/Faultbox/roomlight/internal/room"
	"github.com/Faultbox/roomlight/pkg/geom"
)

// Config tunes the controller. Speeds are per second.
type Config struct {
	WalkSpeed      float64
	RunSpeed       float64
	StandingHeight float64
	CrouchHeight   float64
	JumpSpeed      float64
	Gravity        float64
	Radius         float64
	EyeMargin      float64 // Closest the eye gets to floor or ceiling
	MouseScale     float64 // Radians per mouse unit
}

// DefaultConfig returns the default tuning.
func DefaultConfig() Config {
	return Config{
		WalkSpeed:      3.0,
		RunSpeed:       6.0,
		StandingHeight: 1.7,
		CrouchHeight:   1.0,
		JumpSpeed:      4.0,
		Gravity:        9.8,
		Radius:         0.3,
		EyeMargin:      0.1,
		MouseScale:     0.01,
	}
}

// PositionSource says where the player's horizontal position lives.
// It is either Kinematic or Static.
type PositionSource interface {
	positionSource()
}

// Kinematic positions are owned by a physics body.
type Kinematic struct {
	Body physics.BodyID
}

// Static positions are owned by the controller itself.
type Static struct {
	Pos geom.Point
}

func (Kinematic) positionSource() {}
func (Static) positionSource()    {}

// Locator finds the room containing a point.
type Locator interface {
	RoomAt(p geom.Point) *room.Room
}

// Player is the first-person controller.
type Player struct {
	Config Config
	Input  Input

	Heading float64
	Pitch   float64

	source PositionSource
	world  physics.World
	rooms  Locator

	z             float64 // Feet height
	zSpeed        float64
	tallness      float64
	alreadyJumped bool
	room          *room.Room
	velocity      mgl64.Vec2
}

// New creates a player standing at pos. With a world, the player gets a
// kinematic body in it; without one it moves itself.
func New(cfg Config, rooms Locator, world physics.World, pos geom.Point, heading, pitch float64) *Player {
	p := &Player{
		Config:   cfg,
		Heading:  heading,
		Pitch:    mgl64.Clamp(pitch, -math.Pi/2, math.Pi/2),
		rooms:    rooms,
		world:    world,
		tallness: cfg.StandingHeight,
	}

	if world != nil {
		p.source = Kinematic{Body: world.AddBody(physics.BodyTag{Kind: physics.KindPlayer}, pos, cfg.Radius)}
	} else {
		p.source = Static{Pos: pos}
	}

	if r := rooms.RoomAt(pos); r != nil {
		p.room = r
		p.z = r.FloorHeight
	}
	return p
}

// Source returns where the position lives.
func (p *Player) Source() PositionSource {
	return p.source
}

// Position returns the horizontal position.
func (p *Player) Position() geom.Point {
	switch s := p.source.(type) {
	case Kinematic:
		return p.world.Position(s.Body)
	case Static:
		return s.Pos
	}
	return geom.Point{}
}

// Z returns the height of the player's feet.
func (p *Player) Z() float64 {
	return p.z
}

// Tallness returns the current head-to-feet height.
func (p *Player) Tallness() float64 {
	return p.tallness
}

// Extent returns the player's vertical extent. It has the shape of
// physics.Extent for the shared wall filter.
func (p *Player) Extent() (feet, head float64) {
	return p.z, p.z + p.tallness
}

// Room returns the room the player was in at the last update.
func (p *Player) Room() *room.Room {
	return p.room
}

// Velocity returns the horizontal velocity of the last update.
func (p *Player) Velocity() mgl64.Vec2 {
	return p.velocity
}

// Grounded reports whether the player stands on the current room's floor.
func (p *Player) Grounded() bool {
	return p.room != nil && p.z <= p.room.FloorHeight
}

// EyePosition returns the eye point, at the top of the player.
func (p *Player) EyePosition() mgl64.Vec3 {
	pos := p.Position()
	return mgl64.Vec3{pos[0], pos[1], p.z + p.tallness}
}

// Pose returns the eye pose for the camera.
func (p *Player) Pose() camera.Pose {
	return camera.Pose{Position: p.EyePosition(), Heading: p.Heading, Pitch: p.Pitch}
}

// Look turns by a mouse delta; positive dy looks up.
func (p *Player) Look(dx, dy float64) {
	scale := p.mouseScale()
	p.Heading -= dx * scale
	p.Pitch = mgl64.Clamp(p.Pitch+dy*scale, -math.Pi/2, math.Pi/2)
}

func (p *Player) mouseScale() float64 {
	if p.Config.MouseScale == 0 {
		return 0.01
	}
	return p.Config.MouseScale
}

// Update advances the controller by dt seconds.
func (p *Player) Update(dt float64) {
	p.room = p.rooms.RoomAt(p.Position())
	if p.room != nil {
		p.updateVertical(dt)
	}
	p.updateHorizontal(dt)
}

func (p *Player) updateVertical(dt float64) {
	floor, ceiling := p.room.FloorHeight, p.room.CeilingHeight

	// Jumps fire once per press and only from the ground. An airborne
	// press is left unconsumed: held through touchdown it fires on the
	// first grounded tick, released before it is forgotten.
	if p.Input.Jump {
		if !p.alreadyJumped && p.Grounded() {
			p.zSpeed += p.Config.JumpSpeed
			p.alreadyJumped = true
		}
	} else {
		p.alreadyJumped = false
	}

	target := p.Config.StandingHeight
	if p.Input.Crouch || ceiling-floor < p.Config.StandingHeight {
		target = p.Config.CrouchHeight
	}
	p.tallness += (target - p.tallness) / 2

	if p.z < floor {
		p.z += (floor - p.z) / 2
		p.zSpeed = max(p.zSpeed, 0)
	} else if p.z > floor {
		p.zSpeed -= p.Config.Gravity * dt
	}

	if head := p.z + p.tallness; head > ceiling {
		p.zSpeed = min(p.zSpeed, 0)
		p.z -= (head - ceiling) / 2
	}

	wasAbove := p.z > floor
	p.z += p.zSpeed * dt
	if wasAbove && p.z <= floor && p.zSpeed < 0 {
		p.zSpeed = 0
	}

	eye := p.z + p.tallness
	if clamped := mgl64.Clamp(eye, floor+p.Config.EyeMargin, ceiling-p.Config.EyeMargin); clamped != eye {
		p.z += clamped - eye
		p.zSpeed = 0
	}
}

func (p *Player) updateHorizontal(dt float64) {
	speed := p.Config.WalkSpeed
	if p.Input.Run {
		speed = p.Config.RunSpeed
	}

	x, y := p.Input.axes()
	sin, cos := math.Sincos(p.Heading)
	p.velocity = mgl64.Vec2{
		(x*cos - y*sin) * speed,
		(x*sin + y*cos) * speed,
	}

	switch s := p.source.(type) {
	case Kinematic:
		p.world.SetVelocity(s.Body, p.velocity)
	case Static:
		p.source = Static{Pos: s.Pos.Add(p.velocity.Mul(dt))}
	}
}
