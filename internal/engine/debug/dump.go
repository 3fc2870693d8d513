// Package debug writes bake state to image files for inspection.
package debug

import (
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"go.uber.org/zap"

	"github.com/Faultbox/roomlight/internal/lightmap"
	"github.com/Faultbox/roomlight/internal/radiosity"
)

// Image formats.
const (
	FormatPNG  = "png"
	FormatWebP = "webp"
)

// Dumper writes images into a directory, one timestamped subdirectory per
// dump.
type Dumper struct {
	outputDir string
	format    string
	log       *zap.Logger
	now       func() time.Time
}

// NewDumper creates a dumper writing format ("png" or "webp") files.
func NewDumper(outputDir, format string, log *zap.Logger) *Dumper {
	return &Dumper{
		outputDir: outputDir,
		format:    format,
		log:       log,
		now:       time.Now,
	}
}

// DumpLightmaps writes the committed and in-progress buffers of every
// lightmap and returns the directory written to.
func (d *Dumper) DumpLightmaps(maps []*lightmap.Lightmap) (string, error) {
	dir := filepath.Join(d.outputDir, d.now().Format("2006-01-02_15-04-05"))
	for _, lm := range maps {
		if err := d.Write(filepath.Join(dir, lm.Name), lm.Final()); err != nil {
			return "", err
		}
		if err := d.Write(filepath.Join(dir, lm.Name+"-progress"), lm.InProgress()); err != nil {
			return "", err
		}
	}
	d.log.Info("lightmaps dumped", zap.String("dir", dir), zap.Int("count", len(maps)))
	return dir, nil
}

// DumpMask writes the hemicube weight mask.
func (d *Dumper) DumpMask(mask *radiosity.Mask) (string, error) {
	path := filepath.Join(d.outputDir, fmt.Sprintf("mask-%d", mask.Size))
	if err := d.Write(path, mask.Image()); err != nil {
		return "", err
	}
	return path + "." + d.format, nil
}

// Write encodes img to path plus the format extension. Images are stored
// bottom row first, as GL reads them, and are flipped on the way out.
func (d *Dumper) Write(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}

	file, err := os.Create(path + "." + d.format)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	return Encode(file, FlipVertical(img), d.format)
}

// Encode writes img as PNG or lossless WebP.
func Encode(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatPNG:
		if err := png.Encode(w, img); err != nil {
			return fmt.Errorf("encoding PNG: %w", err)
		}
	case FormatWebP:
		if err := nativewebp.Encode(w, img, nil); err != nil {
			return fmt.Errorf("encoding WebP: %w", err)
		}
	default:
		return fmt.Errorf("unknown image format %q", format)
	}
	return nil
}

// FlipVertical returns an RGBA copy of img upside down.
func FlipVertical(img image.Image) *image.RGBA {
	b := img.Bounds()
	src := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(src, src.Bounds(), img, b.Min, draw.Src)

	dst := image.NewRGBA(src.Bounds())
	rowSize := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		srcOffset := (b.Dy() - 1 - y) * src.Stride
		dstOffset := y * dst.Stride
		copy(dst.Pix[dstOffset:dstOffset+rowSize], src.Pix[srcOffset:srcOffset+rowSize])
	}
	return dst
}
