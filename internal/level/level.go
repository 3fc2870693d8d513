// Package level is the level graph: the rooms of a level document, linked
// by their shared walls, with the queries the controller, the physics
// world and the bake need.
package level

import (
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/roomlight/internal/assets"
	"github.com/Faultbox/roomlight/internal/lightmap"
	"github.com/Faultbox/roomlight/internal/physics"
	"github.com/Faultbox/roomlight/internal/radiosity"
	"github.com/Faultbox/roomlight/internal/room"
	"github.com/Faultbox/roomlight/pkg/formats"
	"github.com/Faultbox/roomlight/pkg/geom"
)

// Options sizes the lightmaps allocated for each room.
type Options struct {
	SurfaceSize int // Floor and ceiling lightmap edge
	WallWidth   int
	WallHeight  int
}

// DefaultOptions matches the default bake configuration.
var DefaultOptions = Options{SurfaceSize: 32, WallWidth: 128, WallHeight: 16}

// Level is a loaded, validated level.
type Level struct {
	Path   string
	Spawn  formats.PlayerSpawn
	Rooms  []*room.Room
	Assets *assets.Manager
}

// Load reads the level document at path. Textures resolve relative to the
// document's directory.
func Load(path string, opts Options, log *zap.Logger) (*Level, error) {
	doc, err := formats.LoadLevel(path)
	if err != nil {
		return nil, errors.Wrap(err, "loading level")
	}

	res := assets.NewManager(filepath.Dir(path), log)
	l, err := FromDocument(doc, res, opts)
	if err != nil {
		res.Close()
		return nil, errors.Wrapf(err, "building level %s", path)
	}
	l.Path = path
	return l, nil
}

// FromDocument builds the level graph: rooms are validated, linked by
// shared walls, then triangulated and parameterized. res may be nil, in
// which case wall textures are treated as square.
func FromDocument(doc *formats.Level, res *assets.Manager, opts Options) (*Level, error) {
	rooms := make([]*room.Room, len(doc.Rooms))
	for i, data := range doc.Rooms {
		r, err := room.FromData(i, data)
		if err != nil {
			return nil, fmt.Errorf("room %d: %w", i, err)
		}
		rooms[i] = r
	}

	LinkSharedWalls(rooms)

	for _, r := range rooms {
		if err := r.Triangulate(); err != nil {
			return nil, err
		}
		aspect := 1.0
		if res != nil {
			aspect = res.Texture(r.Walls.Texture).Aspect()
		}
		if err := r.GenerateWallParameterization(aspect); err != nil {
			return nil, fmt.Errorf("room %d: %w", r.Index, err)
		}
		if err := r.AllocateLightmaps(opts.SurfaceSize, opts.WallWidth, opts.WallHeight); err != nil {
			return nil, fmt.Errorf("room %d: %w", r.Index, err)
		}
	}

	return &Level{
		Spawn:  doc.Player,
		Rooms:  rooms,
		Assets: res,
	}, nil
}

// LinkSharedWalls links every pair of rooms by their common walls and
// returns the number of shared walls found.
func LinkSharedWalls(rooms []*room.Room) int {
	linked := 0
	for i, a := range rooms {
		for _, b := range rooms[i+1:] {
			linked += room.LinkShared(a, b)
		}
	}
	return linked
}

// RoomAt returns the first room containing p, or nil. Rooms are tested in
// document order, so for overlapping footprints the earlier room wins.
func (l *Level) RoomAt(p geom.Point) *room.Room {
	for _, r := range l.Rooms {
		if r.Contains(p) {
			return r
		}
	}
	return nil
}

// BakeTargets lists every lightmap with its texel mapping: per room in
// order its floor, ceiling and walls.
func (l *Level) BakeTargets() []radiosity.Surface {
	surfaces := make([]radiosity.Surface, 0, len(l.Rooms)*3)
	for _, r := range l.Rooms {
		surfaces = append(surfaces,
			radiosity.Surface{Lightmap: r.FloorMap, Texel: r.FloorTexel},
			radiosity.Surface{Lightmap: r.CeilingMap, Texel: r.CeilingTexel},
			radiosity.Surface{Lightmap: r.WallMap, Texel: r.WallTexel},
		)
	}
	return surfaces
}

// Lightmaps returns every lightmap in bake order.
func (l *Level) Lightmaps() []*lightmap.Lightmap {
	var maps []*lightmap.Lightmap
	for _, s := range l.BakeTargets() {
		maps = append(maps, s.Lightmap)
	}
	return maps
}

// WallSegments returns every wall as a tagged physics segment. Shared
// walls are passable through the height range both rooms have open.
func (l *Level) WallSegments() []physics.StaticSegment {
	var segs []physics.StaticSegment
	for _, r := range l.Rooms {
		for i, w := range r.WallSegments() {
			seg := physics.StaticSegment{
				Segment: w,
				Tag:     physics.WallTag(r.Index, i),
			}
			if n := r.Neighbor(i); n != nil {
				seg.Passable = true
				seg.Opening = physics.Opening{
					Floor:   max(r.FloorHeight, n.FloorHeight),
					Ceiling: min(r.CeilingHeight, n.CeilingHeight),
				}
			}
			segs = append(segs, seg)
		}
	}
	return segs
}

// Close releases the level's resources.
func (l *Level) Close() {
	if l.Assets != nil {
		l.Assets.Close()
	}
}
