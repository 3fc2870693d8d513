package level

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/roomlight/internal/room"
	"github.com/Faultbox/roomlight/pkg/formats"
	"github.com/Faultbox/roomlight/pkg/geom"
)

var smallOptions = Options{SurfaceSize: 4, WallWidth: 16, WallHeight: 4}

func square(x0, y0, x1, y1, floor, ceiling float64) formats.RoomData {
	return formats.RoomData{
		Vertices:      [][]float64{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}},
		FloorHeight:   floor,
		CeilingHeight: ceiling,
		Walls:         formats.SurfaceData{Scale: 1, Fit: formats.FitPerWall},
	}
}

func twoRooms() *formats.Level {
	return &formats.Level{
		Player: formats.PlayerSpawn{Position: [2]float64{1, 1}},
		Rooms: []formats.RoomData{
			square(0, 0, 4, 4, 0, 3),
			square(4, 0, 8, 4, 0.5, 2.5),
		},
	}
}

const levelYAML = `
player:
  position: [1, 1]
  heading: 0.5
rooms:
  - vertices: [[0, 0], [4, 0], [4, 4], [0, 4]]
    floor_height: 0
    ceiling_height: 3
    walls: {texture: missing.png, fit: overall}
  - vertices: [[4, 0], [8, 0], [8, 4], [4, 4]]
    floor_height: 0
    ceiling_height: 3
`

func TestSharedWallsAreSymmetric(t *testing.T) {
	l, err := FromDocument(twoRooms(), nil, smallOptions)
	require.NoError(t, err)
	a, b := l.Rooms[0], l.Rooms[1]

	require.Len(t, a.SharedWalls, 1)
	require.Len(t, b.SharedWalls, 1)
	for i, n := range a.SharedWalls {
		assert.Same(t, b, n)
		wall := a.WallSegments()[i]
		assert.Equal(t, geom.Segment{{4, 4}, {4, 0}}, wall)

		found := false
		for j, back := range b.SharedWalls {
			assert.Same(t, a, back)
			assert.Equal(t, wall.Reversed(), b.WallSegments()[j])
			found = true
		}
		assert.True(t, found)
	}
}

func TestLinkSharedWallsCount(t *testing.T) {
	doc := twoRooms()
	doc.Rooms = append(doc.Rooms, square(0, 4, 4, 8, 0, 3), square(20, 20, 24, 24, 0, 3))
	l, err := FromDocument(doc, nil, smallOptions)
	require.NoError(t, err)

	assert.Len(t, l.Rooms[0].SharedWalls, 2)
	assert.Len(t, l.Rooms[2].SharedWalls, 1)
	assert.Empty(t, l.Rooms[3].SharedWalls)

	// Relinking a fresh copy finds the same two walls.
	var rooms []*room.Room
	for i, data := range doc.Rooms {
		r, err := room.FromData(i, data)
		require.NoError(t, err)
		rooms = append(rooms, r)
	}
	assert.Equal(t, 2, LinkSharedWalls(rooms))
}

func TestFromDocumentPreparesRooms(t *testing.T) {
	l, err := FromDocument(twoRooms(), nil, smallOptions)
	require.NoError(t, err)
	for _, r := range l.Rooms {
		assert.Len(t, r.Triangles(), 2)
		assert.NotNil(t, r.FloorMap)
		assert.NotNil(t, r.CeilingMap)
		w, h := r.WallMap.Size()
		assert.Equal(t, 16, w)
		assert.Equal(t, 4, h)
		assert.Equal(t, 16.0, r.Perimeter())
	}
	assert.Equal(t, [2]float64{1, 1}, l.Spawn.Position)
}

func TestFromDocumentRejects(t *testing.T) {
	doc := twoRooms()
	doc.Rooms[1].Vertices = [][]float64{{0, 0}, {4, 4}, {4, 0}, {0, 4}}
	_, err := FromDocument(doc, nil, smallOptions)
	var invalid *room.InvalidRoomError
	require.True(t, errors.As(err, &invalid), "got %v", err)
	assert.Contains(t, err.Error(), "room 1")

	doc = twoRooms()
	doc.Rooms[0].Walls.Fit = "stretch"
	_, err = FromDocument(doc, nil, smallOptions)
	assert.True(t, errors.Is(err, room.ErrUnknownTextureFit))

	_, err = FromDocument(twoRooms(), nil, Options{SurfaceSize: 5, WallWidth: 16, WallHeight: 4})
	assert.Error(t, err)
}

func TestRoomAt(t *testing.T) {
	doc := twoRooms()
	// Overlaps the first room; the first room in document order wins.
	doc.Rooms = append(doc.Rooms, square(1, 1, 3, 3, 0, 3))
	l, err := FromDocument(doc, nil, smallOptions)
	require.NoError(t, err)

	assert.Same(t, l.Rooms[0], l.RoomAt(geom.Point{2, 2}))
	assert.Same(t, l.Rooms[1], l.RoomAt(geom.Point{6, 2}))
	assert.Nil(t, l.RoomAt(geom.Point{10, 2}))
}

func TestBakeTargets(t *testing.T) {
	l, err := FromDocument(twoRooms(), nil, smallOptions)
	require.NoError(t, err)

	targets := l.BakeTargets()
	require.Len(t, targets, 6)
	assert.Same(t, l.Rooms[0].FloorMap, targets[0].Lightmap)
	assert.Same(t, l.Rooms[0].CeilingMap, targets[1].Lightmap)
	assert.Same(t, l.Rooms[0].WallMap, targets[2].Lightmap)
	assert.Same(t, l.Rooms[1].FloorMap, targets[3].Lightmap)
	assert.Len(t, l.Lightmaps(), 6)

	pose, ok := targets[0].Texel(0, 0)
	require.True(t, ok)
	assert.Greater(t, pose.Pitch, 0.0)
}

func TestWallSegments(t *testing.T) {
	l, err := FromDocument(twoRooms(), nil, smallOptions)
	require.NoError(t, err)

	segs := l.WallSegments()
	require.Len(t, segs, 8)

	passable := 0
	for _, s := range segs {
		if !s.Passable {
			continue
		}
		passable++
		assert.Equal(t, 0.5, s.Opening.Floor)
		assert.Equal(t, 2.5, s.Opening.Ceiling)
	}
	assert.Equal(t, 2, passable)
	assert.Equal(t, 1, segs[5].Tag.Room)
}

func writeLevel(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "level.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeLevel(t, t.TempDir(), levelYAML)

	l, err := Load(path, smallOptions, nil)
	require.NoError(t, err)
	defer l.Close()

	assert.Equal(t, path, l.Path)
	assert.Len(t, l.Rooms, 2)
	assert.Equal(t, 0.5, l.Spawn.Heading)
	// The missing wall texture falls back to a square checkerboard.
	assert.True(t, l.Assets.Texture("missing.png").Fallback)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), smallOptions, nil)
	assert.Error(t, err)

	path := writeLevel(t, t.TempDir(), "rooms: []\n")
	_, err = Load(path, smallOptions, nil)
	assert.True(t, errors.Is(err, formats.ErrNoRooms), "got %v", err)
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	path := writeLevel(t, dir, levelYAML)

	w, err := Watch(path, smallOptions, nil)
	require.NoError(t, err)
	defer w.Close()

	// Unrelated files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0644))

	require.NoError(t, os.WriteFile(path, []byte(levelYAML+`
  - vertices: [[0, 4], [4, 4], [4, 8], [0, 8]]
    floor_height: 0
    ceiling_height: 3
`), 0644))

	select {
	case r := <-w.Reloads():
		require.NoError(t, r.Err)
		assert.Len(t, r.Level.Rooms, 3)
		r.Level.Close()
	case <-time.After(5 * time.Second):
		t.Fatal("no reload")
	}

	require.NoError(t, os.WriteFile(path, []byte("rooms: [\n"), 0644))
	select {
	case r := <-w.Reloads():
		assert.Error(t, r.Err)
		assert.Nil(t, r.Level)
	case <-time.After(5 * time.Second):
		t.Fatal("no reload")
	}

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
