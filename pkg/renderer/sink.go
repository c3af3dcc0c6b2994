package renderer

import (
	"image"
	"image/color"
)

// PixelSink receives finished pixel colors
type PixelSink interface {
	SetPixel(x, y int, c color.RGBA)
}

// ImageSink writes pixels into an in-memory image
type ImageSink struct {
	Image *image.RGBA
}

// NewImageSink allocates a width x height image
func NewImageSink(width, height int) *ImageSink {
	return &ImageSink{Image: image.NewRGBA(image.Rect(0, 0, width, height))}
}

func (s *ImageSink) SetPixel(x, y int, c color.RGBA) {
	s.Image.SetRGBA(x, y, c)
}

// FuncSink adapts a plain function to PixelSink
type FuncSink func(x, y int, c color.RGBA)

func (f FuncSink) SetPixel(x, y int, c color.RGBA) {
	f(x, y, c)
}
