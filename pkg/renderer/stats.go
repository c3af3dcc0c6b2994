package renderer

import (
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int           // Total number of pixels written
	SampledPixels  int           // Pixels that carry samples (fewer than TotalPixels when PixelCell > 1)
	TotalSamples   int           // Total number of samples taken
	AverageSamples float64       // Average samples per sampled pixel
	MaxSamples     int           // Target samples per pixel for the pass
	MinSamples     int           // Minimum samples taken per sampled pixel
	MaxSamplesUsed int           // Maximum samples actually used by any pixel
	Duration       time.Duration // Wall time of the render or pass
}

// PixelStats tracks sampling statistics for a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // RGB accumulator for final result
	SampleCount int       // Number of samples taken
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}
