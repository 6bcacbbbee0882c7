// Package imgfile encodes rendered gray buffers as image files.
package imgfile

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"

	mandel "github.com/marben/bandmandel"
)

type Format string

const (
	PNG  Format = "png"
	BMP  Format = "bmp"
	TIFF Format = "tiff"
)

// ParseFormat accepts a format name as used in urls and flags.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "png":
		return PNG, nil
	case "bmp":
		return BMP, nil
	case "tif", "tiff":
		return TIFF, nil
	}
	return "", fmt.Errorf("unknown image format %q", s)
}

// FormatFromPath picks the format by file extension, defaulting to PNG.
func FormatFromPath(path string) Format {
	f, err := ParseFormat(strings.TrimPrefix(filepath.Ext(path), "."))
	if err != nil {
		return PNG
	}
	return f
}

func (f Format) ContentType() string {
	switch f {
	case BMP:
		return "image/bmp"
	case TIFF:
		return "image/tiff"
	}
	return "image/png"
}

// Gray wraps pixels without copying. len(pixels) must equal res.Pixels().
func Gray(pixels []byte, res mandel.Resolution) *image.Gray {
	if len(pixels) != res.Pixels() {
		panic(fmt.Sprintf("imgfile: %d bytes for %dx%d image", len(pixels), res.Width, res.Height))
	}
	return &image.Gray{
		Pix:    pixels,
		Stride: res.Width,
		Rect:   image.Rect(0, 0, res.Width, res.Height),
	}
}

func Encode(w io.Writer, f Format, img *image.Gray) error {
	switch f {
	case PNG:
		return png.Encode(w, img)
	case BMP:
		return bmp.Encode(w, img)
	case TIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unknown image format %q", f)
}

// Write saves img to path in the format implied by its extension.
func Write(path string, img *image.Gray) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	if err := Encode(f, FormatFromPath(path), img); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
