package scene

import (
	"fmt"
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/roomlight/internal/assets"
	"github.com/Faultbox/roomlight/internal/engine/scene/shaders"
	"github.com/Faultbox/roomlight/internal/engine/shader"
	"github.com/Faultbox/roomlight/internal/level"
	"github.com/Faultbox/roomlight/internal/lightmap"
	"github.com/Faultbox/roomlight/internal/room"
)

// Mode selects how surfaces are shaded.
type Mode int

const (
	ModeCommitted  Mode = iota // Textured, committed lightmaps
	ModeInProgress             // Textured, in-progress lightmaps
	ModeBake                   // Untextured radiance for hemicube sampling
)

// surfaceMesh is one surface of a room on the GPU.
type surfaceMesh struct {
	vao, vbo uint32
	count    int32

	texture  uint32
	lightmap *lightmap.Lightmap
	lmTex    uint32
	version  uint64
	shown    Mode
	synced   bool
}

type roomMesh struct {
	room     *room.Room
	surfaces []*surfaceMesh
}

// RoomRenderer draws level rooms with their textures and lightmaps.
type RoomRenderer struct {
	// Albedo scales reflected light in bake mode.
	Albedo float32

	program  *shader.Program
	rooms    []roomMesh
	textures map[string]uint32
	fallback uint32
}

// NewRoomRenderer compiles the room shader. A GL context must be current.
func NewRoomRenderer(albedo float32) (*RoomRenderer, error) {
	program, err := shader.New(shaders.RoomVertexShader, shaders.RoomFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("room shader: %w", err)
	}
	rr := &RoomRenderer{
		Albedo:   albedo,
		program:  program,
		textures: make(map[string]uint32),
	}
	rr.fallback = uploadTexture(whitePixel(), false)
	return rr, nil
}

// Load uploads the geometry of every room in l, replacing what was loaded.
func (rr *RoomRenderer) Load(l *level.Level) {
	rr.clear()
	for _, r := range l.Rooms {
		mesh := roomMesh{room: r}
		for _, s := range []struct {
			data    []float32
			surface room.Surface
			lm      *lightmap.Lightmap
		}{
			{r.FloorVertices(), r.Floor, r.FloorMap},
			{r.CeilingVertices(), r.Ceiling, r.CeilingMap},
			{r.WallVertices(), r.Walls, r.WallMap},
		} {
			if len(s.data) == 0 {
				continue
			}
			sm := &surfaceMesh{
				count:    int32(len(s.data) / room.VertexStride),
				texture:  rr.texture(l.Assets, s.surface.Texture),
				lightmap: s.lm,
			}
			sm.upload(s.data)
			mesh.surfaces = append(mesh.surfaces, sm)
		}
		rr.rooms = append(rr.rooms, mesh)
	}
}

func (rr *RoomRenderer) texture(res *assets.Manager, path string) uint32 {
	if res == nil || path == "" {
		return rr.fallback
	}
	if id, ok := rr.textures[path]; ok {
		return id
	}
	id := uploadTexture(res.Texture(path).RGBA, true)
	rr.textures[path] = id
	return id
}

// Draw renders every room with the given view-projection matrix.
func (rr *RoomRenderer) Draw(viewProj mgl32.Mat4, mode Mode) {
	rr.program.Use()
	rr.program.SetMat4("uViewProj", viewProj)
	rr.program.SetInt("uTexture", 0)
	rr.program.SetInt("uLightmap", 1)
	rr.program.SetFloat("uAlbedo", rr.Albedo)
	rr.program.SetBool("uBake", mode == ModeBake)

	for _, rm := range rr.rooms {
		rr.program.SetFloat("uEmissive", float32(rm.room.Emissive))
		for _, sm := range rm.surfaces {
			sm.sync(mode)

			gl.ActiveTexture(gl.TEXTURE0)
			gl.BindTexture(gl.TEXTURE_2D, sm.texture)
			gl.ActiveTexture(gl.TEXTURE1)
			gl.BindTexture(gl.TEXTURE_2D, sm.lmTex)

			gl.BindVertexArray(sm.vao)
			gl.DrawArrays(gl.TRIANGLES, 0, sm.count)
		}
	}
	gl.BindVertexArray(0)
	gl.ActiveTexture(gl.TEXTURE0)
}

// Destroy releases all GPU resources.
func (rr *RoomRenderer) Destroy() {
	rr.clear()
	if rr.fallback != 0 {
		gl.DeleteTextures(1, &rr.fallback)
		rr.fallback = 0
	}
	rr.program.Delete()
}

func (rr *RoomRenderer) clear() {
	for _, rm := range rr.rooms {
		for _, sm := range rm.surfaces {
			sm.destroy()
		}
	}
	rr.rooms = nil
	for path, id := range rr.textures {
		gl.DeleteTextures(1, &id)
		delete(rr.textures, path)
	}
}

func (sm *surfaceMesh) upload(data []float32) {
	gl.GenVertexArrays(1, &sm.vao)
	gl.BindVertexArray(sm.vao)

	gl.GenBuffers(1, &sm.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, sm.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, unsafe.Pointer(&data[0]), gl.STATIC_DRAW)

	stride := int32(room.VertexStride * 4)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(1, 2, gl.FLOAT, false, stride, 3*4)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 5*4)
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	w, h := sm.lightmap.Size()
	gl.GenTextures(1, &sm.lmTex)
	gl.BindTexture(gl.TEXTURE_2D, sm.lmTex)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(w), int32(h), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

// sync re-uploads the lightmap when a commit happened or the shown buffer
// changed. The in-progress buffer changes on every sample, so it is
// uploaded every frame while shown.
func (sm *surfaceMesh) sync(mode Mode) {
	inProgress := mode == ModeInProgress
	if sm.synced && !inProgress && sm.shown != ModeInProgress && sm.version == sm.lightmap.Version() {
		return
	}

	img := sm.lightmap.Final()
	if inProgress {
		img = sm.lightmap.InProgress()
	}
	b := img.Bounds()
	gl.BindTexture(gl.TEXTURE_2D, sm.lmTex)
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(b.Dx()), int32(b.Dy()), gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))

	sm.version = sm.lightmap.Version()
	sm.shown = mode
	sm.synced = true
}

func (sm *surfaceMesh) destroy() {
	gl.DeleteVertexArrays(1, &sm.vao)
	gl.DeleteBuffers(1, &sm.vbo)
	gl.DeleteTextures(1, &sm.lmTex)
}

func uploadTexture(img *image.RGBA, mipmaps bool) uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	gl.BindTexture(gl.TEXTURE_2D, id)

	b := img.Bounds()
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(b.Dx()), int32(b.Dy()),
		0, gl.RGBA, gl.UNSIGNED_BYTE, unsafe.Pointer(&img.Pix[0]))

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	if mipmaps {
		gl.GenerateMipmap(gl.TEXTURE_2D)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	} else {
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}
	return id
}

func whitePixel() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	copy(img.Pix, []byte{255, 255, 255, 255})
	return img
}
