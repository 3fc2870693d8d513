package formats

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Level parsing errors.
var (
	ErrNoRooms      = errors.New("level has no rooms")
	ErrBadVertex    = errors.New("invalid room vertex")
	ErrBadHeights   = errors.New("ceiling must be above floor")
	ErrUnknownFit   = errors.New("unknown texture fit mode")
	ErrBadEmissive  = errors.New("emissive must be within [0, 1]")
	ErrBadMeshPoint = errors.New("invalid mesh position")
)

// Texture fit modes for wall textures.
const (
	FitPerWall = "per_wall"
	FitOverall = "overall"
)

// Level is a parsed level document.
type Level struct {
	Player PlayerSpawn `yaml:"player"`
	Rooms  []RoomData  `yaml:"rooms"`
}

// PlayerSpawn is where the player starts.
type PlayerSpawn struct {
	Position [2]float64 `yaml:"position"`
	Heading  float64    `yaml:"heading"`
	Pitch    float64    `yaml:"pitch"`
}

// RoomData is one room as written in the document.
type RoomData struct {
	Vertices      [][]float64 `yaml:"vertices"`
	FloorHeight   float64     `yaml:"floor_height"`
	CeilingHeight float64     `yaml:"ceiling_height"`
	Emissive      float64     `yaml:"emissive"`
	Floor         SurfaceData `yaml:"floor"`
	Ceiling       SurfaceData `yaml:"ceiling"`
	Walls         SurfaceData `yaml:"walls"`
	Meshes        []MeshData  `yaml:"meshes"`
}

// SurfaceData describes how a surface is textured.
type SurfaceData struct {
	Texture  string  `yaml:"texture"`
	Scale    float64 `yaml:"scale"`
	Rotation float64 `yaml:"rotation"`
	Fit      string  `yaml:"fit"`
}

// MeshData is a decoration placed in a room. Positions with two
// components sit on the room's floor.
type MeshData struct {
	Path     string    `yaml:"path"`
	Texture  string    `yaml:"texture"`
	Position []float64 `yaml:"position"`
}

// LoadLevel reads and parses a level document from disk.
func LoadLevel(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level: %w", err)
	}
	return ParseLevel(data)
}

// ParseLevel parses a level document and checks its structure. Geometric
// validity of the outlines is checked later, when rooms are built.
func ParseLevel(data []byte) (*Level, error) {
	var level Level
	if err := yaml.Unmarshal(data, &level); err != nil {
		return nil, fmt.Errorf("decoding level: %w", err)
	}

	if len(level.Rooms) == 0 {
		return nil, ErrNoRooms
	}

	for i := range level.Rooms {
		if err := level.Rooms[i].normalize(); err != nil {
			return nil, fmt.Errorf("room %d: %w", i, err)
		}
	}

	return &level, nil
}

// Points returns the room's vertices as coordinate pairs.
func (r *RoomData) Points() [][2]float64 {
	points := make([][2]float64, len(r.Vertices))
	for i, v := range r.Vertices {
		points[i] = [2]float64{v[0], v[1]}
	}
	return points
}

// Position3 returns the mesh position, lifting 2D positions onto floor.
func (m *MeshData) Position3(floor float64) [3]float64 {
	if len(m.Position) == 2 {
		return [3]float64{m.Position[0], m.Position[1], floor}
	}
	return [3]float64{m.Position[0], m.Position[1], m.Position[2]}
}

func (r *RoomData) normalize() error {
	if len(r.Vertices) < 3 {
		return fmt.Errorf("%w: need at least 3 vertices, got %d", ErrBadVertex, len(r.Vertices))
	}
	for i, v := range r.Vertices {
		if len(v) != 2 {
			return fmt.Errorf("%w: vertex %d has %d components", ErrBadVertex, i, len(v))
		}
	}

	if r.CeilingHeight <= r.FloorHeight {
		return fmt.Errorf("%w: floor %.3f, ceiling %.3f", ErrBadHeights, r.FloorHeight, r.CeilingHeight)
	}

	if r.Emissive < 0 || r.Emissive > 1 {
		return fmt.Errorf("%w: %.3f", ErrBadEmissive, r.Emissive)
	}

	for _, s := range []*SurfaceData{&r.Floor, &r.Ceiling, &r.Walls} {
		if s.Scale == 0 {
			s.Scale = 1
		}
	}

	r.Walls.Fit = strings.ToLower(r.Walls.Fit)
	switch r.Walls.Fit {
	case "":
		r.Walls.Fit = FitPerWall
	case FitPerWall, FitOverall:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFit, r.Walls.Fit)
	}

	for i, m := range r.Meshes {
		if len(m.Position) != 2 && len(m.Position) != 3 {
			return fmt.Errorf("%w: mesh %d has %d components", ErrBadMeshPoint, i, len(m.Position))
		}
	}

	return nil
}
