package output

import (
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"
)

// Save writes img to filename, choosing the encoder from the extension
// (png, jpg, jpeg, gif, tif, tiff, bmp). Missing parent directories are created.
func Save(filename string, img image.Image) error {
	if _, err := imaging.FormatFromFilename(filename); err != nil {
		return fmt.Errorf("unsupported output file %s: %w", filename, err)
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	if err := imaging.Save(img, filename, imaging.JPEGQuality(95)); err != nil {
		return fmt.Errorf("failed to save %s: %w", filename, err)
	}
	return nil
}

// Encode writes img to w in the format named by ext (e.g. ".png" or "jpg")
func Encode(w io.Writer, img image.Image, ext string) error {
	format, err := imaging.FormatFromExtension(strings.TrimPrefix(ext, "."))
	if err != nil {
		return fmt.Errorf("unsupported image format %q: %w", ext, err)
	}
	return imaging.Encode(w, img, format, imaging.JPEGQuality(95))
}

// ContentType returns the MIME type for an image file extension
func ContentType(ext string) string {
	switch strings.ToLower(strings.TrimPrefix(ext, ".")) {
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "tif", "tiff":
		return "image/tiff"
	case "bmp":
		return "image/bmp"
	default:
		return "image/png"
	}
}

// Scale resizes img by factor using Lanczos resampling.
// A factor of 1 (or less than or equal to 0) returns img unchanged.
func Scale(img image.Image, factor float64) image.Image {
	if factor <= 0 || factor == 1 {
		return img
	}
	bounds := img.Bounds()
	width := uint(max(1, int(float64(bounds.Dx())*factor+0.5)))
	height := uint(max(1, int(float64(bounds.Dy())*factor+0.5)))
	return resize.Resize(width, height, img, resize.Lanczos3)
}
