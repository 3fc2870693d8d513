// Package assets loads and caches level resources from disk. A Manager is
// owned by a loaded level and dropped with it, so nothing is memoized
// globally.
package assets

import (
	"bytes"
	"image"
	"image/draw"
	_ "image/jpeg" // register decoder
	_ "image/png"  // register decoder
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ftrvxmtrx/tga"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"  // register decoder
	_ "golang.org/x/image/webp" // register decoder
)

// fallbackSize is the edge length of the checkerboard used for textures
// that fail to load.
const fallbackSize = 8

// Texture is a decoded image ready for GPU upload.
type Texture struct {
	Path     string
	Width    int
	Height   int
	RGBA     *image.RGBA
	Fallback bool // Set when the file could not be loaded
}

// Aspect returns width / height.
func (t *Texture) Aspect() float64 {
	if t.Height == 0 {
		return 1
	}
	return float64(t.Width) / float64(t.Height)
}

// Manager resolves resource paths against a root directory and caches
// what it decodes.
type Manager struct {
	root  string
	log   *zap.Logger
	cache *Cache
	mu    sync.Mutex
}

// NewManager creates a manager rooted at dir. Relative resource paths in
// the level document are resolved against it.
func NewManager(dir string, log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{
		root:  dir,
		log:   log,
		cache: NewCache(),
	}
}

// Root returns the directory resources are resolved against.
func (m *Manager) Root() string {
	return m.root
}

// Load reads a file relative to the root, caching its bytes.
func (m *Manager) Load(path string) ([]byte, error) {
	if data, ok := m.cache.Get(path); ok {
		return data, nil
	}

	data, err := os.ReadFile(m.resolve(path))
	if err != nil {
		return nil, errors.Wrapf(err, "loading asset %q", path)
	}
	m.cache.Set(path, data)
	return data, nil
}

// Texture returns the decoded texture at path. An empty path, a missing
// file or an undecodable one yields a checkerboard marked Fallback; a
// broken texture never aborts a level load.
func (m *Manager) Texture(path string) *Texture {
	m.mu.Lock()
	defer m.mu.Unlock()

	if tex, ok := m.cache.Texture(path); ok {
		return tex
	}

	tex, err := m.decode(path)
	if err != nil {
		if path != "" {
			m.log.Warn("using fallback texture", zap.String("path", path), zap.Error(err))
		}
		tex = checkerboard(path)
	}
	m.cache.SetTexture(path, tex)
	return tex
}

// Close drops every cached resource.
func (m *Manager) Close() {
	m.cache.Clear()
}

// Stats returns cache statistics.
func (m *Manager) Stats() (hits, misses int) {
	return m.cache.Stats()
}

func (m *Manager) resolve(path string) string {
	if filepath.IsAbs(path) || m.root == "" {
		return path
	}
	return filepath.Join(m.root, path)
}

func (m *Manager) decode(path string) (*Texture, error) {
	if path == "" {
		return nil, errors.New("no texture")
	}

	data, err := m.Load(path)
	if err != nil {
		return nil, err
	}

	var img image.Image
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err = tga.Decode(bytes.NewReader(data))
	} else {
		img, _, err = image.Decode(bytes.NewReader(data))
	}
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %q", path)
	}

	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)

	return &Texture{
		Path:   path,
		Width:  b.Dx(),
		Height: b.Dy(),
		RGBA:   rgba,
	}, nil
}

func checkerboard(path string) *Texture {
	rgba := image.NewRGBA(image.Rect(0, 0, fallbackSize, fallbackSize))
	for y := 0; y < fallbackSize; y++ {
		for x := 0; x < fallbackSize; x++ {
			v := uint8(96)
			if (x/2+y/2)%2 == 0 {
				v = 192
			}
			i := rgba.PixOffset(x, y)
			rgba.Pix[i], rgba.Pix[i+1], rgba.Pix[i+2], rgba.Pix[i+3] = v, v, v, 255
		}
	}
	return &Texture{
		Path:     path,
		Width:    fallbackSize,
		Height:   fallbackSize,
		RGBA:     rgba,
		Fallback: true,
	}
}

// Cache is a simple in-memory cache for loaded assets.
type Cache struct {
	data     map[string][]byte
	textures map[string]*Texture
	mu       sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewCache creates a new cache.
func NewCache() *Cache {
	return &Cache{
		data:     make(map[string][]byte),
		textures: make(map[string]*Texture),
	}
}

// Get retrieves raw bytes from cache.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	c.count(ok)
	return data, ok
}

// Set stores raw bytes in cache.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Texture retrieves a decoded texture from cache.
func (c *Cache) Texture(key string) (*Texture, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	tex, ok := c.textures[key]
	c.count(ok)
	return tex, ok
}

// SetTexture stores a decoded texture in cache.
func (c *Cache) SetTexture(key string, tex *Texture) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.textures[key] = tex
}

// Clear clears the cache.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[string][]byte)
	c.textures = make(map[string]*Texture)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *Cache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *Cache) count(hit bool) {
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}
