package config

import "flag"

// Flags are the command-line overrides. Zero values leave the config
// untouched.
type Flags struct {
	Config     string
	Level      string
	Debug      bool
	Windowed   bool
	Fullscreen bool
	Width      int
	Height     int
	SampleSize int
	Passes     int
	NoWatch    bool
}

// CommandLine holds the flags parsed by ParseFlags.
var CommandLine = &Flags{}

// Register defines the flags on fs.
func (f *Flags) Register(fs *flag.FlagSet) {
	fs.StringVar(&f.Config, "config", "", "Path to config file")
	fs.StringVar(&f.Level, "level", "", "Level document to load")
	fs.BoolVar(&f.Debug, "debug", false, "Enable debug logging")
	fs.BoolVar(&f.Windowed, "windowed", false, "Run in windowed mode")
	fs.BoolVar(&f.Fullscreen, "fullscreen", false, "Run in fullscreen mode")
	fs.IntVar(&f.Width, "width", 0, "Window width")
	fs.IntVar(&f.Height, "height", 0, "Window height")
	fs.IntVar(&f.SampleSize, "sample-size", 0, "Hemicube sample size (16, 64, 256, 1024)")
	fs.IntVar(&f.Passes, "passes", 0, "Light bounces to bake")
	fs.BoolVar(&f.NoWatch, "no-watch", false, "Do not reload the level when it changes")
}

// ParseFlags parses the process arguments into CommandLine. Call this
// early in main().
func ParseFlags() {
	CommandLine.Register(flag.CommandLine)
	flag.Parse()
}

// Apply overrides cfg with every flag that was set.
func (f *Flags) Apply(cfg *Config) {
	if f.Debug {
		cfg.Logging.Level = "debug"
	}
	if f.Level != "" {
		cfg.Level.Path = f.Level
	}
	if f.NoWatch {
		cfg.Level.Watch = false
	}
	if f.Windowed {
		cfg.Graphics.Fullscreen = false
	}
	if f.Fullscreen {
		cfg.Graphics.Fullscreen = true
	}
	if f.Width > 0 {
		cfg.Graphics.Width = f.Width
	}
	if f.Height > 0 {
		cfg.Graphics.Height = f.Height
	}
	if f.SampleSize > 0 {
		cfg.Bake.SampleSize = f.SampleSize
	}
	if f.Passes > 0 {
		cfg.Bake.Passes = f.Passes
	}
}
