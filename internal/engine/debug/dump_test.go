package debug

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/image/webp"

	"github.com/Faultbox/roomlight/internal/lightmap"
	"github.com/Faultbox/roomlight/internal/radiosity"
)

func TestFlipVertical(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 3))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	img.Set(1, 2, color.RGBA{B: 255, A: 255})

	flipped := FlipVertical(img)
	assert.Equal(t, color.RGBA{R: 255, A: 255}, flipped.RGBAAt(0, 2))
	assert.Equal(t, color.RGBA{B: 255, A: 255}, flipped.RGBAAt(1, 0))
}

func TestDumpLightmaps(t *testing.T) {
	for _, format := range []string{FormatPNG, FormatWebP} {
		t.Run(format, func(t *testing.T) {
			lm, err := lightmap.New("room0-floor", 4, 2)
			require.NoError(t, err)
			lm.Set(0, 0, [3]float32{1, 1, 1})
			lm.Commit()

			d := NewDumper(t.TempDir(), format, zap.NewNop())
			d.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

			dir, err := d.DumpLightmaps([]*lightmap.Lightmap{lm})
			require.NoError(t, err)
			assert.Equal(t, "2026-01-02_03-04-05", filepath.Base(dir))

			f, err := os.Open(filepath.Join(dir, "room0-floor."+format))
			require.NoError(t, err)
			defer f.Close()

			var img image.Image
			if format == FormatPNG {
				img, err = png.Decode(f)
			} else {
				img, err = webp.Decode(f)
			}
			require.NoError(t, err)
			assert.Equal(t, image.Rect(0, 0, 4, 2), img.Bounds())

			// Texel (0, 0) is the bottom row, written last.
			r, _, _, _ := img.At(0, 1).RGBA()
			assert.Equal(t, uint32(0xffff), r)
			r, _, _, _ = img.At(0, 0).RGBA()
			assert.Equal(t, uint32(0), r)

			_, err = os.Stat(filepath.Join(dir, "room0-floor-progress."+format))
			assert.NoError(t, err)
		})
	}
}

func TestDumpMask(t *testing.T) {
	mask, err := radiosity.NewMask(16)
	require.NoError(t, err)

	d := NewDumper(t.TempDir(), FormatPNG, zap.NewNop())
	path, err := d.DumpMask(mask)
	require.NoError(t, err)
	assert.Equal(t, "mask-16.png", filepath.Base(path))
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestEncodeUnknownFormat(t *testing.T) {
	err := Encode(nil, image.NewRGBA(image.Rect(0, 0, 1, 1)), "gif")
	assert.Error(t, err)
}
