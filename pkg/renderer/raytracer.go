package renderer

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
)

// ErrInvalidConfig is returned when a sampling configuration cannot be rendered
var ErrInvalidConfig = errors.New("invalid sampling config")

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int   // Image width in pixels
	Height          int   // Image height in pixels
	SamplesPerPixel int   // Number of rays per pixel
	MaxDepth        int   // Maximum ray bounce depth
	PixelCell       int   // Side of the square block one sample point covers (1 = every pixel)
	Seed            int64 // Seed for the render's random source
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		PixelCell:       1,
		Seed:            42,
	}
}

// MergeSamplingConfig returns base with every non-zero field of override applied
func MergeSamplingConfig(base, override SamplingConfig) SamplingConfig {
	if override.Width != 0 {
		base.Width = override.Width
	}
	if override.Height != 0 {
		base.Height = override.Height
	}
	if override.SamplesPerPixel != 0 {
		base.SamplesPerPixel = override.SamplesPerPixel
	}
	if override.MaxDepth != 0 {
		base.MaxDepth = override.MaxDepth
	}
	if override.PixelCell != 0 {
		base.PixelCell = override.PixelCell
	}
	if override.Seed != 0 {
		base.Seed = override.Seed
	}
	return base
}

// Validate reports whether the configuration can be rendered
func (c SamplingConfig) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: image size %dx%d must be positive", ErrInvalidConfig, c.Width, c.Height)
	case c.SamplesPerPixel <= 0:
		return fmt.Errorf("%w: samples per pixel %d must be positive", ErrInvalidConfig, c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth %d must not be negative", ErrInvalidConfig, c.MaxDepth)
	case c.PixelCell <= 0:
		return fmt.Errorf("%w: pixel cell %d must be positive", ErrInvalidConfig, c.PixelCell)
	}
	return nil
}

// Progress reports that every pixel up to and including (X, Y) is finished
type Progress struct {
	X, Y          int
	Width, Height int
}

// Percent returns the share of completed rows
func (p Progress) Percent() float64 {
	return 100 * float64(p.Y+1) / float64(p.Height)
}

// ProgressFunc is notified after each completed row. It cannot stop the render.
type ProgressFunc func(Progress)

// Raytracer renders a scene one pixel at a time
type Raytracer struct {
	camera     *geometry.Camera
	world      geometry.Hittable
	integrator integrator.Integrator
	config     SamplingConfig
	sampler    core.Sampler
	progress   ProgressFunc

	uScale, vScale float64 // viewport divisors, W-1 and H-1
}

// NewRaytracer creates a new raytracer with its own seeded random source
func NewRaytracer(camera *geometry.Camera, world geometry.Hittable, integ integrator.Integrator, config SamplingConfig) (*Raytracer, error) {
	if camera == nil || world == nil || integ == nil {
		return nil, fmt.Errorf("%w: camera, world and integrator are required", ErrInvalidConfig)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Raytracer{
		camera:     camera,
		world:      world,
		integrator: integ,
		config:     config,
		sampler:    core.NewSeededSampler(config.Seed),
		uScale:     viewportDivisor(config.Width),
		vScale:     viewportDivisor(config.Height),
	}, nil
}

// viewportDivisor maps pixel n-1 to 1. A single pixel maps to 0.
func viewportDivisor(n int) float64 {
	if n <= 1 {
		return 1
	}
	return float64(n - 1)
}

// SetProgressFunc installs a callback invoked after each completed row
func (rt *Raytracer) SetProgressFunc(fn ProgressFunc) {
	rt.progress = fn
}

// Config returns the sampling configuration
func (rt *Raytracer) Config() SamplingConfig {
	return rt.config
}

// Sample traces one jittered camera ray through pixel (x, y) and returns its color
func (rt *Raytracer) Sample(x, y int) core.Vec3 {
	cell := float64(rt.config.PixelCell)
	u := (float64(x) + core.Uniform(rt.sampler, 0, cell)) / rt.uScale
	v := 1 - (float64(y)+core.Uniform(rt.sampler, 0, cell))/rt.vScale

	ray := rt.camera.GetRay(u, v, rt.sampler)
	return rt.integrator.RayColor(ray, rt.world, rt.sampler, rt.config.MaxDepth)
}

// SamplePixel accumulates samples into stats
func (rt *Raytracer) SamplePixel(x, y, samples int, stats *PixelStats) {
	for i := 0; i < samples; i++ {
		stats.AddSample(rt.Sample(x, y))
	}
}

// isAnchor reports whether pixel (x, y) carries the samples for its cell
func (rt *Raytracer) isAnchor(x, y int) bool {
	return x%rt.config.PixelCell == 0 && y%rt.config.PixelCell == 0
}

// Render samples every pixel and writes the finished colors to sink in
// row-major order, starting at the top row.
func (rt *Raytracer) Render(sink PixelSink) RenderStats {
	start := time.Now()
	width, height, cell := rt.config.Width, rt.config.Height, rt.config.PixelCell

	// Colors of the sampled cells covering the current block of rows
	cells := make([]color.RGBA, (width+cell-1)/cell)

	for y := 0; y < height; y++ {
		if y%cell == 0 {
			for x := 0; x < width; x += cell {
				var stats PixelStats
				rt.SamplePixel(x, y, rt.config.SamplesPerPixel, &stats)
				cells[x/cell] = ToRGBA(stats.GetColor())
			}
		}

		for x := 0; x < width; x++ {
			sink.SetPixel(x, y, cells[x/cell])
		}

		if rt.progress != nil {
			rt.progress(Progress{X: width - 1, Y: y, Width: width, Height: height})
		}
	}

	sampled := ((width + cell - 1) / cell) * ((height + cell - 1) / cell)
	return RenderStats{
		TotalPixels:    width * height,
		SampledPixels:  sampled,
		TotalSamples:   sampled * rt.config.SamplesPerPixel,
		AverageSamples: float64(rt.config.SamplesPerPixel),
		MaxSamples:     rt.config.SamplesPerPixel,
		MinSamples:    rt.config.SamplesPerPixel,
		MaxSamplesUsed: rt.config.SamplesPerPixel,
		Duration:       time.Since(start),
	}
}

// RenderPass renders the full image with multi-sampling and returns it
func (rt *Raytracer) RenderPass() (*image.RGBA, RenderStats) {
	sink := NewImageSink(rt.config.Width, rt.config.Height)
	stats := rt.Render(sink)
	return sink.Image, stats
}

// ToRGBA converts an averaged linear color to 8-bit RGBA: gamma 2, clamp
// to [0, 0.999], scale by 256.
func ToRGBA(colorVec core.Vec3) color.RGBA {
	colorVec = colorVec.Sqrt().Clamp(0.0, 0.999)

	return color.RGBA{
		R: uint8(256 * colorVec.X),
		G: uint8(256 * colorVec.Y),
		B: uint8(256 * colorVec.Z),
		A: 255,
	}
}
