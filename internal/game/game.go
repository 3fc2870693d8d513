// Package game runs the explorer: the window, the level session, the
// progressive bake and the main loop.
package game

import (
	"fmt"
	"time"

	"github.com/veandco/go-sdl2/sdl"
	"go.uber.org/zap"

	"github.com/Faultbox/roomlight/internal/config"
	"github.com/Faultbox/roomlight/internal/engine/camera"
	"github.com/Faultbox/roomlight/internal/engine/debug"
	"github.com/Faultbox/roomlight/internal/engine/input"
	"github.com/Faultbox/roomlight/internal/engine/renderer"
	"github.com/Faultbox/roomlight/internal/engine/scene"
	"github.com/Faultbox/roomlight/internal/engine/window"
	"github.com/Faultbox/roomlight/internal/level"
	"github.com/Faultbox/roomlight/internal/logger"
	"github.com/Faultbox/roomlight/internal/session"
)

// Game is the main explorer instance.
type Game struct {
	config  *config.Config
	log     *zap.Logger
	running bool

	window   *window.Window
	renderer *renderer.Renderer
	scene    *scene.Scene
	hemicube *scene.HemicubeTarget
	input    *input.Input
	camera   *camera.FirstPersonCamera
	dumper   *debug.Dumper

	session *session.Session
	watcher *level.Watcher
}

// New creates the window and loads the configured level.
func New(cfg *config.Config) (*Game, error) {
	g := &Game{
		config: cfg,
		log:    logger.Named("game"),
		camera: camera.NewFirstPersonCamera(),
		input:  input.New(),
	}
	g.dumper = debug.NewDumper(cfg.Debug.DumpDir, cfg.Debug.DumpFormat, g.log)

	var err error
	g.window, err = window.New(window.Config{
		Title:      "roomlight",
		Width:      cfg.Graphics.Width,
		Height:     cfg.Graphics.Height,
		Fullscreen: cfg.Graphics.Fullscreen,
		VSync:      cfg.Graphics.VSync,
	}, logger.Named("window"))
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %w", err)
	}

	// Drawable size, which differs from the window size on HiDPI displays
	width, height := g.window.GetSize()

	g.renderer, err = renderer.New(renderer.Config{Width: width, Height: height}, logger.Named("renderer"))
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	g.scene, err = scene.New(scene.Config{
		Width:  int32(width),
		Height: int32(height),
		Albedo: float32(cfg.Bake.Albedo),
	})
	if err != nil {
		g.Close()
		return nil, fmt.Errorf("failed to create scene: %w", err)
	}
	g.hemicube = scene.NewHemicubeTarget(g.scene.Rooms())

	l, err := level.Load(cfg.Level.Path, g.levelOptions(), logger.Named("assets"))
	if err != nil {
		g.Close()
		return nil, err
	}
	if err := g.startSession(l); err != nil {
		g.Close()
		return nil, err
	}

	if cfg.Level.Watch {
		g.watcher, err = level.Watch(cfg.Level.Path, g.levelOptions(), logger.Named("watcher"))
		if err != nil {
			g.log.Warn("level hot reload disabled", zap.Error(err))
		}
	}

	g.window.CaptureMouse(true)
	g.log.Info("game initialized", zap.String("level", cfg.Level.Path))
	return g, nil
}

func (g *Game) levelOptions() level.Options {
	return level.Options{
		SurfaceSize: g.config.Bake.SurfaceSize,
		WallWidth:   g.config.Bake.WallWidth,
		WallHeight:  g.config.Bake.WallHeight,
	}
}

// startSession replaces the running session with one for l.
func (g *Game) startSession(l *level.Level) error {
	s, err := session.New(l, g.hemicube, g.config, g.log)
	if err != nil {
		l.Close()
		return err
	}
	if g.session != nil {
		g.session.Close()
	}
	g.session = s
	g.scene.Load(l)
	return nil
}

// reload loads the level file again. A level that fails to load is
// reported and the current one stays.
func (g *Game) reload() {
	l, err := level.Load(g.config.Level.Path, g.levelOptions(), logger.Named("assets"))
	if err != nil {
		g.log.Error("level reload failed", zap.Error(err))
		return
	}
	g.swap(l)
}

func (g *Game) swap(l *level.Level) {
	if err := g.startSession(l); err != nil {
		g.log.Error("level reload failed", zap.Error(err))
		return
	}
	g.log.Info("level reloaded", zap.Int("rooms", len(l.Rooms)))
}

// Run starts the main loop.
func (g *Game) Run() error {
	g.running = true

	lastTime := time.Now()
	titleTimer := time.Now()

	g.log.Info("starting game loop")

	for g.running {
		now := time.Now()
		dt := now.Sub(lastTime).Seconds()
		lastTime = now

		if g.input.Update() {
			g.running = false
			break
		}
		g.handleEvents()
		g.pollReloads()

		if err := g.update(dt); err != nil {
			return fmt.Errorf("update error: %w", err)
		}

		g.camera.Follow(g.session.Player.Pose())
		g.scene.Render(g.camera)
		g.window.SwapBuffers()

		if time.Since(titleTimer) >= time.Second {
			g.window.SetTitle(g.title())
			titleTimer = time.Now()
		}
	}

	return nil
}

func (g *Game) handleEvents() {
	for _, event := range g.input.Events() {
		switch event.Type {
		case input.EventWindowResize:
			width, height := g.window.GetSize()
			g.renderer.Resize(width, height)
			g.scene.Resize(int32(width), int32(height))
		case input.EventKeyDown:
			switch event.Key {
			case sdl.SCANCODE_ESCAPE:
				g.running = false
			case sdl.SCANCODE_F5:
				g.reload()
			case sdl.SCANCODE_F12:
				g.dump()
			case sdl.SCANCODE_TAB:
				g.scene.ShowInProgress = !g.scene.ShowInProgress
			}
		}
	}
}

// dump writes the lightmaps and the sampler's weight mask.
func (g *Game) dump() {
	if _, err := g.dumper.DumpLightmaps(g.session.Level.Lightmaps()); err != nil {
		g.log.Error("lightmap dump failed", zap.Error(err))
		return
	}
	if _, err := g.dumper.DumpMask(g.session.Baker.Sampler().Mask()); err != nil {
		g.log.Error("mask dump failed", zap.Error(err))
	}
}

func (g *Game) pollReloads() {
	if g.watcher == nil {
		return
	}
	select {
	case r := <-g.watcher.Reloads():
		if r.Err != nil {
			g.log.Error("level reload failed", zap.Error(r.Err))
			return
		}
		g.swap(r.Level)
	default:
	}
}

func (g *Game) update(dt float64) error {
	dx, dy := g.input.MouseDelta()
	g.session.Advance(dt, g.input.Movement(), float64(dx), float64(dy))

	if g.session.Baker.Done() {
		return nil
	}
	return g.session.Baker.Tick(g.config.Bake.TexelsPerFrame)
}

func (g *Game) title() string {
	b := g.session.Baker
	if b.Done() {
		return "roomlight - baked"
	}
	return fmt.Sprintf("roomlight - pass %d, %.0f%%", b.Pass(), b.Progress()*100)
}

// Close releases all resources.
func (g *Game) Close() {
	g.log.Info("closing game")

	if g.watcher != nil {
		g.watcher.Close()
	}
	if g.session != nil {
		g.session.Close()
	}
	if g.hemicube != nil {
		g.hemicube.Destroy()
	}
	if g.scene != nil {
		g.scene.Destroy()
	}
	if g.renderer != nil {
		g.renderer.Close()
	}
	if g.window != nil {
		g.window.Close()
	}
}
