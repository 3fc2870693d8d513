// leveltool is a CLI utility for inspecting and baking level documents
// without a window.
package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/Faultbox/roomlight/internal/bake"
	"github.com/Faultbox/roomlight/internal/config"
	"github.com/Faultbox/roomlight/internal/engine/camera"
	"github.com/Faultbox/roomlight/internal/engine/debug"
	"github.com/Faultbox/roomlight/internal/level"
	"github.com/Faultbox/roomlight/internal/logger"
	"github.com/Faultbox/roomlight/internal/radiosity"
	"github.com/Faultbox/roomlight/internal/radiosity/softrender"
	"github.com/Faultbox/roomlight/pkg/geom"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	if err := logger.Init("warn", ""); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "validate":
		err = cmdValidate(args)
	case "rooms":
		err = cmdRooms(args)
	case "triangles", "tri":
		err = cmdTriangles(args)
	case "shared":
		err = cmdShared(args)
	case "mask":
		err = cmdMask(args)
	case "bake":
		err = cmdBake(args)
	case "hemicube":
		err = cmdHemicube(args)
	case "config":
		err = cmdConfig(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`leveltool - roomlight level utility

Usage:
  leveltool <command> [options]

Commands:
  validate <level.yaml>            Load and check a level
  rooms <level.yaml>               List rooms with heights and areas
  triangles <level.yaml>           Print each room's triangulation
  shared <level.yaml>              List shared walls between rooms
  mask <size> <out.png|out.webp>   Write the hemicube weight mask
  bake [flags] <level.yaml> <dir>  Bake lightmaps on the CPU and dump them
  hemicube [flags] <level.yaml> <out.png|out.webp>
                                   Render the unweighted hemicube seen from the spawn
  config [out.yaml]                Write the default config (user config dir if omitted)

Bake flags:
  -size N      Hemicube sample size (16, 64, 256, 1024; default 64)
  -passes N    Light bounces (default 2)
  -albedo F    Surface reflectance (default 0.8)
  -format F    png or webp (default png)

Hemicube flags:
  -size N      Hemicube sample size (default 256)
  -eye F       Eye height above the spawn room's floor (default 1.5)

Examples:
  leveltool validate resources/level.yaml
  leveltool mask 256 mask.png
  leveltool bake -size 16 -passes 3 resources/level.yaml ./lightmaps`)
}

func loadLevel(args []string, usage string) (*level.Level, error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: leveltool %s", usage)
	}
	return level.Load(args[0], level.DefaultOptions, logger.Named("assets"))
}

func cmdValidate(args []string) error {
	l, err := loadLevel(args, "validate <level.yaml>")
	if err != nil {
		return err
	}
	defer l.Close()

	texels := 0
	for _, lm := range l.Lightmaps() {
		texels += lm.TexelCount()
	}
	shared := 0
	for _, r := range l.Rooms {
		shared += len(r.SharedWalls)
	}
	fmt.Printf("Level:   %s\n", l.Path)
	fmt.Printf("Assets:  %s\n", l.Assets.Root())
	fmt.Printf("Rooms:   %d\n", len(l.Rooms))
	fmt.Printf("Shared:  %d\n", shared/2)
	fmt.Printf("Texels:  %d\n", texels)
	spawn := geom.Point{l.Spawn.Position[0], l.Spawn.Position[1]}
	if l.RoomAt(spawn) == nil {
		fmt.Println("Warning: player spawn is outside every room")
	}
	return nil
}

func cmdRooms(args []string) error {
	l, err := loadLevel(args, "rooms <level.yaml>")
	if err != nil {
		return err
	}
	defer l.Close()

	fmt.Printf("%-4s %-8s %-8s %-8s %-8s %-6s\n", "room", "floor", "ceiling", "area", "walls", "emit")
	for _, r := range l.Rooms {
		area := math.Abs(geom.PolygonArea(r.Vertices()))
		fmt.Printf("%-4d %-8.2f %-8.2f %-8.2f %-8d %-6.2f\n",
			r.Index, r.FloorHeight, r.CeilingHeight, area, len(r.WallSegments()), r.Emissive)
	}
	return nil
}

func cmdTriangles(args []string) error {
	l, err := loadLevel(args, "triangles <level.yaml>")
	if err != nil {
		return err
	}
	defer l.Close()

	for _, r := range l.Rooms {
		fmt.Printf("room %d: %d triangles\n", r.Index, len(r.Triangles()))
		for _, tri := range r.Triangles() {
			fmt.Printf("  (%.2f, %.2f) (%.2f, %.2f) (%.2f, %.2f)\n",
				tri[0][0], tri[0][1], tri[1][0], tri[1][1], tri[2][0], tri[2][1])
		}
	}
	return nil
}

func cmdShared(args []string) error {
	l, err := loadLevel(args, "shared <level.yaml>")
	if err != nil {
		return err
	}
	defer l.Close()

	count := 0
	for _, r := range l.Rooms {
		for i, w := range r.WallSegments() {
			n := r.Neighbor(i)
			if n == nil || n.Index < r.Index {
				continue
			}
			count++
			fmt.Printf("room %d wall %d <-> room %d: (%.2f, %.2f)-(%.2f, %.2f) opening %.2f..%.2f\n",
				r.Index, i, n.Index, w[0][0], w[0][1], w[1][0], w[1][1],
				max(r.FloorHeight, n.FloorHeight), min(r.CeilingHeight, n.CeilingHeight))
		}
	}
	fmt.Printf("%d shared walls\n", count)
	return nil
}

func cmdMask(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: leveltool mask <size> <out.png|out.webp>")
	}
	size, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("size %q: %w", args[0], err)
	}
	mask, err := radiosity.NewMask(size)
	if err != nil {
		return err
	}

	out := args[1]
	format := strings.TrimPrefix(filepath.Ext(out), ".")
	d := debug.NewDumper(filepath.Dir(out), format, logger.Named("dump"))
	if err := d.Write(strings.TrimSuffix(out, filepath.Ext(out)), mask.Image()); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", out)
	return nil
}

func cmdBake(args []string) error {
	defaults := config.Default().Bake

	fs := flag.NewFlagSet("bake", flag.ExitOnError)
	size := fs.Int("size", 64, "Hemicube sample size")
	passes := fs.Int("passes", defaults.Passes, "Light bounces")
	albedo := fs.Float64("albedo", defaults.Albedo, "Surface reflectance")
	format := fs.String("format", debug.FormatPNG, "Output format (png or webp)")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: leveltool bake [flags] <level.yaml> <dir>")
	}

	l, err := level.Load(fs.Arg(0), level.DefaultOptions, logger.Named("assets"))
	if err != nil {
		return err
	}
	defer l.Close()

	cfg := defaults
	cfg.SampleSize = *size
	cfg.Passes = *passes
	cfg.Commit = config.CommitLightmap

	log := logger.Named("bake")
	b, err := bake.New(l, softrender.New(l.Rooms, *albedo), cfg, log)
	if err != nil {
		return err
	}
	if err := b.Finish(); err != nil {
		return err
	}

	d := debug.NewDumper(fs.Arg(1), *format, log)
	for _, lm := range l.Lightmaps() {
		if err := d.Write(filepath.Join(fs.Arg(1), lm.Name), lm.Final()); err != nil {
			return err
		}
	}
	log.Info("bake written", zap.String("dir", fs.Arg(1)), zap.Int("lightmaps", len(l.Lightmaps())))
	fmt.Printf("Baked %d lightmaps in %d passes to %s\n", len(l.Lightmaps()), b.Pass(), fs.Arg(1))
	return nil
}

func cmdConfig(args []string) error {
	cfg := config.Default()
	if len(args) == 0 {
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Printf("Wrote defaults to %s\n", filepath.Join(config.ConfigDir(), "config.yaml"))
		return nil
	}
	if err := cfg.SaveTo(args[0]); err != nil {
		return err
	}
	fmt.Printf("Wrote defaults to %s\n", args[0])
	return nil
}

func cmdHemicube(args []string) error {
	fs := flag.NewFlagSet("hemicube", flag.ExitOnError)
	size := fs.Int("size", 256, "Hemicube sample size")
	eye := fs.Float64("eye", 1.5, "Eye height above the floor")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return fmt.Errorf("usage: leveltool hemicube [flags] <level.yaml> <out.png|out.webp>")
	}

	l, err := level.Load(fs.Arg(0), level.DefaultOptions, logger.Named("assets"))
	if err != nil {
		return err
	}
	defer l.Close()

	spawn := geom.Point{l.Spawn.Position[0], l.Spawn.Position[1]}
	r := l.RoomAt(spawn)
	if r == nil {
		return fmt.Errorf("spawn %v is outside every room", spawn)
	}

	sampler, err := radiosity.NewSampler(softrender.New(l.Rooms, config.Default().Bake.Albedo), *size)
	if err != nil {
		return err
	}
	pose := camera.Pose{
		Position: mgl64.Vec3{spawn[0], spawn[1], r.FloorHeight + *eye},
		Heading:  l.Spawn.Heading,
		Pitch:    l.Spawn.Pitch,
	}
	if err := sampler.Render(pose); err != nil {
		return err
	}

	out := fs.Arg(1)
	file, err := os.Create(out)
	if err != nil {
		return err
	}
	defer file.Close()
	// Canvas.Image is already top row first
	if err := debug.Encode(file, sampler.Canvas().Image(), strings.TrimPrefix(filepath.Ext(out), ".")); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", out)
	return nil
}
