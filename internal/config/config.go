// Package config handles explorer configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/roomlight/internal/radiosity"
	"github.com/Faultbox/roomlight/pkg/geom"
)

// ErrInvalidConfig is returned by Validate for values that cannot be used.
var ErrInvalidConfig = errors.New("invalid config")

// Commit policies for the lightmap bake.
const (
	CommitRow      = "row"
	CommitLightmap = "lightmap"
)

// Debug dump formats.
const (
	DumpPNG  = "png"
	DumpWebP = "webp"
)

// Config holds all explorer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Level    LevelConfig    `yaml:"level"`
	Bake     BakeConfig     `yaml:"bake"`
	Player   PlayerConfig   `yaml:"player"`
	Debug    DebugConfig    `yaml:"debug"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
}

// LevelConfig selects the level document.
type LevelConfig struct {
	Path  string `yaml:"path"`
	Watch bool   `yaml:"watch"` // Reload when the file changes
}

// BakeConfig controls the radiosity bake.
type BakeConfig struct {
	SampleSize     int     `yaml:"sample_size"`      // Hemicube render size
	TexelsPerFrame int     `yaml:"texels_per_frame"` // Bake work per frame
	Passes         int     `yaml:"passes"`           // Light bounces
	Commit         string  `yaml:"commit"`           // row or lightmap
	SurfaceSize    int     `yaml:"surface_size"`     // Floor/ceiling lightmap edge
	WallWidth      int     `yaml:"wall_width"`       // Wall strip width
	WallHeight     int     `yaml:"wall_height"`      // Wall strip height
	Albedo         float64 `yaml:"albedo"`
}

// PlayerConfig holds first-person controller tuning.
type PlayerConfig struct {
	WalkSpeed      float64 `yaml:"walk_speed"`
	RunSpeed       float64 `yaml:"run_speed"`
	StandingHeight float64 `yaml:"standing_height"`
	CrouchHeight   float64 `yaml:"crouch_height"`
	JumpSpeed      float64 `yaml:"jump_speed"`
	Gravity        float64 `yaml:"gravity"`
	Radius         float64 `yaml:"radius"`
	EyeMargin      float64 `yaml:"eye_margin"`
	StepHeight     float64 `yaml:"step_height"`
	MouseScale     float64 `yaml:"mouse_scale"`
}

// DebugConfig holds debugging output settings.
type DebugConfig struct {
	DumpDir    string `yaml:"dump_dir"`
	DumpFormat string `yaml:"dump_format"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      800,
			Height:     500,
			Fullscreen: false,
			VSync:      true,
		},
		Level: LevelConfig{
			Path:  "resources/level.yaml",
			Watch: true,
		},
		Bake: BakeConfig{
			SampleSize:     256,
			TexelsPerFrame: 4,
			Passes:         2,
			Commit:         CommitRow,
			SurfaceSize:    32,
			WallWidth:      128,
			WallHeight:     16,
			Albedo:         0.8,
		},
		Player: PlayerConfig{
			WalkSpeed:      3.0,
			RunSpeed:       6.0,
			StandingHeight: 1.7,
			CrouchHeight:   1.0,
			JumpSpeed:      4.0,
			Gravity:        9.8,
			Radius:         0.3,
			EyeMargin:      0.1,
			StepHeight:     0.3,
			MouseScale:     0.01,
		},
		Debug: DebugConfig{
			DumpDir:    "dumps",
			DumpFormat: DumpPNG,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Validate rejects settings the explorer cannot run with. Values are never
// coerced into range.
func (c *Config) Validate() error {
	if err := radiosity.CheckSampleSize(c.Bake.SampleSize); err != nil {
		return fmt.Errorf("%w: bake.sample_size: %w", ErrInvalidConfig, err)
	}
	for name, size := range map[string]int{
		"bake.surface_size": c.Bake.SurfaceSize,
		"bake.wall_width":   c.Bake.WallWidth,
		"bake.wall_height":  c.Bake.WallHeight,
	} {
		if !geom.IsPowerOfTwo(size) {
			return fmt.Errorf("%w: %s %d is not a power of two", ErrInvalidConfig, name, size)
		}
	}
	if c.Bake.TexelsPerFrame < 1 {
		return fmt.Errorf("%w: bake.texels_per_frame must be positive", ErrInvalidConfig)
	}
	if c.Bake.Passes < 1 {
		return fmt.Errorf("%w: bake.passes must be positive", ErrInvalidConfig)
	}
	if c.Bake.Albedo < 0 || c.Bake.Albedo > 1 {
		return fmt.Errorf("%w: bake.albedo %.2f outside [0, 1]", ErrInvalidConfig, c.Bake.Albedo)
	}
	switch c.Bake.Commit {
	case CommitRow, CommitLightmap:
	default:
		return fmt.Errorf("%w: bake.commit %q", ErrInvalidConfig, c.Bake.Commit)
	}
	switch c.Debug.DumpFormat {
	case DumpPNG, DumpWebP:
	default:
		return fmt.Errorf("%w: debug.dump_format %q", ErrInvalidConfig, c.Debug.DumpFormat)
	}
	if c.Player.CrouchHeight > c.Player.StandingHeight {
		return fmt.Errorf("%w: player.crouch_height above standing_height", ErrInvalidConfig)
	}
	return nil
}
