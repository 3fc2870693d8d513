// Package session holds the state of one level in play.
package session

import (
	"go.uber.org/zap"

	"github.com/Faultbox/roomlight/internal/bake"
	"github.com/Faultbox/roomlight/internal/config"
	"github.com/Faultbox/roomlight/internal/level"
	"github.com/Faultbox/roomlight/internal/physics"
	"github.com/Faultbox/roomlight/internal/player"
	"github.com/Faultbox/roomlight/internal/radiosity"
	"github.com/Faultbox/roomlight/pkg/geom"
)

// Tick is the fixed controller and physics step in seconds.
const Tick = 1.0 / 60

// MaxSteps bounds the ticks one frame may run. Time beyond that is
// dropped so a stalled frame cannot spiral.
const MaxSteps = 8

// Session is one loaded level in play: the rooms, the physics space built
// from their walls, the player and the running bake. A reload replaces the
// whole session.
type Session struct {
	Level  *level.Level
	Space  *physics.Space
	Player *player.Player
	Baker  *bake.Baker

	pending float64 // Frame time not yet simulated
}

// New builds a session for l, sampling through target.
func New(l *level.Level, target radiosity.SampleTarget, cfg *config.Config, log *zap.Logger) (*Session, error) {
	s := &Session{Level: l}

	segments := l.WallSegments()
	filter := physics.NewSharedWallFilter(segments, cfg.Player.StepHeight, func() (feet, head float64) {
		return s.Player.Extent()
	})
	s.Space = physics.NewSpace(filter)
	for _, seg := range segments {
		s.Space.AddStaticSegment(seg)
	}

	spawn := l.Spawn
	s.Player = player.New(PlayerConfig(cfg.Player), l, s.Space,
		geom.Point{spawn.Position[0], spawn.Position[1]}, spawn.Heading, spawn.Pitch)

	baker, err := bake.New(l, target, cfg.Bake, log)
	if err != nil {
		return nil, err
	}
	s.Baker = baker

	log.Info("session started",
		zap.String("level", l.Path),
		zap.Int("rooms", len(l.Rooms)),
		zap.Int("walls", len(segments)),
	)
	return s, nil
}

// Advance consumes a frame of frameDt seconds in fixed Tick steps and
// returns how many ran. Leftover time carries into the next frame. Mouse
// look applies once per frame.
func (s *Session) Advance(frameDt float64, in player.Input, mouseDX, mouseDY float64) int {
	s.look(mouseDX, mouseDY)

	s.pending += max(frameDt, 0)
	steps := 0
	for s.pending >= Tick && steps < MaxSteps {
		s.step(in)
		s.pending -= Tick
		steps++
	}
	if s.pending >= Tick {
		s.pending = 0
	}
	return steps
}

// Update runs exactly one Tick.
func (s *Session) Update(in player.Input, mouseDX, mouseDY float64) {
	s.look(mouseDX, mouseDY)
	s.step(in)
}

// look applies mouse motion in SDL's convention, positive y down.
func (s *Session) look(dx, dy float64) {
	s.Player.Look(dx, -dy)
}

func (s *Session) step(in player.Input) {
	s.Player.Input = in
	s.Player.Update(Tick)
	s.Space.Step(Tick)
}

// Close releases the level's resources.
func (s *Session) Close() {
	s.Level.Close()
}

// PlayerConfig converts the player settings to controller tuning.
func PlayerConfig(c config.PlayerConfig) player.Config {
	return player.Config{
		WalkSpeed:      c.WalkSpeed,
		RunSpeed:       c.RunSpeed,
		StandingHeight: c.StandingHeight,
		CrouchHeight:   c.CrouchHeight,
		JumpSpeed:      c.JumpSpeed,
		Gravity:        c.Gravity,
		Radius:         c.Radius,
		EyeMargin:      c.EyeMargin,
		MouseScale:     c.MouseScale,
	}
}
