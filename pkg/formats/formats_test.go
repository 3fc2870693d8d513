package formats

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoRooms = `
player:
  position: [2, 2]
  heading: 1.5
rooms:
  - vertices: [[0, 0], [4, 0], [4, 4], [0, 4]]
    floor_height: 0
    ceiling_height: 3
    emissive: 0.25
    floor: {texture: textures/floor.png, scale: 2}
    walls: {texture: textures/wall.png, fit: OVERALL}
    meshes:
      - {path: models/chair.obj, position: [1, 1]}
      - {path: models/lamp.obj, position: [2, 2, 1.5]}
  - vertices: [[4, 0], [8, 0], [8, 4], [4, 4]]
    floor_height: 0.5
    ceiling_height: 2.5
`

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel([]byte(twoRooms))
	require.NoError(t, err)

	assert.Equal(t, [2]float64{2, 2}, level.Player.Position)
	assert.Equal(t, 1.5, level.Player.Heading)
	require.Len(t, level.Rooms, 2)

	first := level.Rooms[0]
	assert.Equal(t, [][2]float64{{0, 0}, {4, 0}, {4, 4}, {0, 4}}, first.Points())
	assert.Equal(t, 0.25, first.Emissive)
	assert.Equal(t, 2.0, first.Floor.Scale)
	assert.Equal(t, 1.0, first.Ceiling.Scale, "scale defaults to 1")
	assert.Equal(t, FitOverall, first.Walls.Fit)
	require.Len(t, first.Meshes, 2)
	assert.Equal(t, [3]float64{1, 1, 0}, first.Meshes[0].Position3(first.FloorHeight))
	assert.Equal(t, [3]float64{2, 2, 1.5}, first.Meshes[1].Position3(first.FloorHeight))

	second := level.Rooms[1]
	assert.Equal(t, FitPerWall, second.Walls.Fit, "fit defaults to per_wall")
	assert.Equal(t, 0.5, second.FloorHeight)
}

func TestParseLevelErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{"no rooms", "rooms: []", ErrNoRooms},
		{"two vertices", "rooms: [{vertices: [[0,0],[1,0]], ceiling_height: 1}]", ErrBadVertex},
		{"3d vertex", "rooms: [{vertices: [[0,0,0],[1,0],[1,1]], ceiling_height: 1}]", ErrBadVertex},
		{"inverted heights", "rooms: [{vertices: [[0,0],[1,0],[1,1]], floor_height: 2, ceiling_height: 1}]", ErrBadHeights},
		{"unknown fit", "rooms: [{vertices: [[0,0],[1,0],[1,1]], ceiling_height: 1, walls: {fit: stretch}}]", ErrUnknownFit},
		{"emissive", "rooms: [{vertices: [[0,0],[1,0],[1,1]], ceiling_height: 1, emissive: 3}]", ErrBadEmissive},
		{"mesh", "rooms: [{vertices: [[0,0],[1,0],[1,1]], ceiling_height: 1, meshes: [{path: a, position: [1]}]}]", ErrBadMeshPoint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLevel([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseLevelInvalidYAML(t *testing.T) {
	_, err := ParseLevel([]byte("rooms: [unterminated"))
	assert.Error(t, err)
}

func TestLoadLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "level.yaml")
	require.NoError(t, os.WriteFile(path, []byte(twoRooms), 0644))

	level, err := LoadLevel(path)
	require.NoError(t, err)
	assert.Len(t, level.Rooms, 2)

	_, err = LoadLevel(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
