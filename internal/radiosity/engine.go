// Package radiosity bakes lightmaps with a progressive hemicube sampler.
// The Engine visits one lightmap texel at a time so the bake can be spread
// across frames.
package radiosity

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/roomlight/internal/engine/camera"
	"github.com/Faultbox/roomlight/internal/lightmap"
)

// TexelFunc maps a lightmap texel to the camera pose that samples it. It
// returns false for texels that need no light: outside the surface or
// hidden behind a shared wall opening.
type TexelFunc func(x, y int) (camera.Pose, bool)

// Surface pairs a lightmap with its texel mapping.
type Surface struct {
	Lightmap *lightmap.Lightmap
	Texel    TexelFunc
}

// State is the engine's progress state.
type State int

// Engine states. Done is terminal.
const (
	Working State = iota
	Done
)

func (s State) String() string {
	if s == Done {
		return "done"
	}
	return "working"
}

// CommitPolicy says when in-progress texels are published.
type CommitPolicy int

// Commit policies.
const (
	// CommitRow publishes each row as it completes.
	CommitRow CommitPolicy = iota
	// CommitLightmap publishes a lightmap only when all of it is baked.
	CommitLightmap
)

// Cursor is the next texel the engine will visit.
type Cursor struct {
	Lightmap int
	X, Y     int
}

// Option configures an Engine.
type Option func(*Engine)

// WithCommitPolicy sets the commit policy. The default is CommitRow.
func WithCommitPolicy(p CommitPolicy) Option {
	return func(e *Engine) { e.policy = p }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// Engine walks every texel of every surface in order, sampling the ones
// that map to a pose. It is not safe for concurrent use; call Step from
// the render loop.
type Engine struct {
	surfaces []Surface
	sampler  *Sampler
	policy   CommitPolicy
	log      *zap.Logger

	state   State
	cursor  Cursor
	visited int
	sampled int
	total   int
	started time.Time
}

// NewEngine creates an engine over surfaces in order. An engine with no
// surfaces starts Done.
func NewEngine(surfaces []Surface, sampler *Sampler, opts ...Option) *Engine {
	e := &Engine{
		surfaces: surfaces,
		sampler:  sampler,
		log:      zap.NewNop(),
		started:  time.Now(),
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, s := range surfaces {
		e.total += s.Lightmap.TexelCount()
	}
	if len(surfaces) == 0 {
		e.state = Done
	}
	return e
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// Cursor returns the next texel to visit.
func (e *Engine) Cursor() Cursor {
	return e.cursor
}

// Progress returns the fraction of texels visited, in [0,1].
func (e *Engine) Progress() float64 {
	if e.total == 0 {
		return 1
	}
	return float64(e.visited) / float64(e.total)
}

// Sampled returns how many texels were rendered.
func (e *Engine) Sampled() int {
	return e.sampled
}

// Step samples the next texel that has a pose, skipping unmapped ones on
// the way. It reports whether a texel was sampled; false means the engine
// reached Done. Every call visits at least one texel, so Done is reached
// within the total texel count of calls. A render failure is returned as
// is and leaves the cursor on the failed texel.
func (e *Engine) Step() (bool, error) {
	for e.state == Working {
		s := e.surfaces[e.cursor.Lightmap]
		x, y := e.cursor.X, e.cursor.Y

		pose, ok := s.Texel(x, y)
		if ok {
			rgb, err := e.sampler.Sample(pose)
			if err != nil {
				return false, err
			}
			s.Lightmap.Set(x, y, rgb)
			e.sampled++
		}

		e.advance()
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// Run calls Step until n texels were sampled or the engine is Done.
func (e *Engine) Run(n int) error {
	for i := 0; i < n; i++ {
		more, err := e.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return nil
}

// Finish steps until Done.
func (e *Engine) Finish() error {
	for e.state == Working {
		if _, err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) advance() {
	e.visited++
	lm := e.surfaces[e.cursor.Lightmap].Lightmap
	w, h := lm.Size()

	e.cursor.X++
	if e.cursor.X < w {
		return
	}
	e.cursor.X = 0
	if e.policy == CommitRow {
		lm.CommitRow(e.cursor.Y)
	}

	e.cursor.Y++
	if e.cursor.Y < h {
		return
	}
	e.cursor.Y = 0
	lm.Commit()
	e.log.Debug("lightmap baked",
		zap.String("lightmap", lm.Name),
		zap.Int("index", e.cursor.Lightmap))

	e.cursor.Lightmap++
	if e.cursor.Lightmap == len(e.surfaces) {
		e.state = Done
		e.log.Info("bake complete",
			zap.Int("lightmaps", len(e.surfaces)),
			zap.Int("texels", e.total),
			zap.Int("sampled", e.sampled),
			zap.Duration("elapsed", time.Since(e.started)))
	}
}
