package renderer

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// ProgressiveConfig contains configuration for progressive rendering
type ProgressiveConfig struct {
	InitialSamples     int // Samples for first pass (1 recommended)
	MaxSamplesPerPixel int // Maximum total samples per pixel
	MaxPasses          int // Maximum number of passes
}

// DefaultProgressiveConfig returns sensible default values
func DefaultProgressiveConfig() ProgressiveConfig {
	return ProgressiveConfig{
		InitialSamples:     1,
		MaxSamplesPerPixel: 50,
		MaxPasses:          7, // 1, 9, 17, ... then the rest on the last pass
	}
}

// Validate reports whether the pass schedule is usable
func (c ProgressiveConfig) Validate() error {
	switch {
	case c.MaxPasses <= 0:
		return fmt.Errorf("%w: max passes %d must be positive", ErrInvalidConfig, c.MaxPasses)
	case c.InitialSamples <= 0:
		return fmt.Errorf("%w: initial samples %d must be positive", ErrInvalidConfig, c.InitialSamples)
	case c.MaxSamplesPerPixel < c.InitialSamples:
		return fmt.Errorf("%w: max samples %d below initial samples %d", ErrInvalidConfig, c.MaxSamplesPerPixel, c.InitialSamples)
	}
	return nil
}

// ProgressiveRaytracer refines an image over several passes, each adding
// samples to every pixel. Passes and rows run sequentially.
type ProgressiveRaytracer struct {
	raytracer   *Raytracer
	config      ProgressiveConfig
	currentPass int
	pixelStats  [][]PixelStats // Indexed by global image coordinates
	logger      core.Logger
}

// NewProgressiveRaytracer creates a new progressive raytracer on top of rt
func NewProgressiveRaytracer(rt *Raytracer, config ProgressiveConfig, logger core.Logger) (*ProgressiveRaytracer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = core.NopLogger{}
	}

	width, height := rt.config.Width, rt.config.Height
	pixelStats := make([][]PixelStats, height)
	for y := range pixelStats {
		pixelStats[y] = make([]PixelStats, width)
	}

	return &ProgressiveRaytracer{
		raytracer:  rt,
		config:     config,
		pixelStats: pixelStats,
		logger:     logger,
	}, nil
}

// getSamplesForPass calculates the target total samples for a given pass
func (pr *ProgressiveRaytracer) getSamplesForPass(passNumber int) int {
	// Special case: if only 1 pass, use all samples
	if pr.config.MaxPasses == 1 {
		return pr.config.MaxSamplesPerPixel
	}

	// First pass is a quick preview
	if passNumber == 1 {
		return pr.config.InitialSamples
	}

	// Divide remaining samples evenly across remaining passes
	remainingSamples := pr.config.MaxSamplesPerPixel - pr.config.InitialSamples
	remainingPasses := pr.config.MaxPasses - 1
	samplesPerPass := remainingSamples / remainingPasses

	targetSamples := pr.config.InitialSamples + (passNumber-1)*samplesPerPass

	// The final pass tops up to the maximum
	if passNumber >= pr.config.MaxPasses {
		targetSamples = pr.config.MaxSamplesPerPixel
	}

	return targetSamples
}

// RenderPass brings every sampled pixel up to the pass target and returns the
// current image. The context is checked between rows; a cancelled pass leaves
// the accumulated samples in place.
func (pr *ProgressiveRaytracer) RenderPass(ctx context.Context, passNumber int) (*image.RGBA, RenderStats, error) {
	pr.currentPass = passNumber
	targetSamples := pr.getSamplesForPass(passNumber)
	rt := pr.raytracer
	width, height := rt.config.Width, rt.config.Height

	pr.logger.Printf("Pass %d: Target %d samples per pixel...\n", passNumber, targetSamples)

	for y := 0; y < height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, RenderStats{}, err
		}

		for x := 0; x < width; x++ {
			if !rt.isAnchor(x, y) {
				continue
			}
			stats := &pr.pixelStats[y][x]
			rt.SamplePixel(x, y, targetSamples-stats.SampleCount, stats)
		}

		if rt.progress != nil {
			rt.progress(Progress{X: width - 1, Y: y, Width: width, Height: height})
		}
	}

	img, stats := pr.assembleCurrentImage(targetSamples)
	return img, stats, nil
}

// PassResult contains the result of a single pass
type PassResult struct {
	PassNumber int
	Image      *image.RGBA
	Stats      RenderStats
	IsLast     bool
}

// RenderProgressive renders with channel-based communication.
// The pass channel carries one result per completed pass; the error channel
// receives at most one error (including ctx.Err() on cancellation). Both are
// closed when rendering stops.
func (pr *ProgressiveRaytracer) RenderProgressive(ctx context.Context) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(errChan)

		pr.logger.Printf("Starting progressive rendering with %d passes...\n", pr.config.MaxPasses)

		for pass := 1; pass <= pr.config.MaxPasses; pass++ {
			startTime := time.Now()

			img, stats, err := pr.RenderPass(ctx, pass)
			if err != nil {
				pr.logger.Printf("Rendering cancelled during pass %d\n", pass)
				errChan <- err
				return
			}

			stats.Duration = time.Since(startTime)
			actualSamples := int(stats.AverageSamples)

			pr.logger.Printf("Pass %d completed in %v (actual: %d samples/pixel)\n",
				pass, stats.Duration, actualSamples)

			isLast := pass == pr.config.MaxPasses || actualSamples >= pr.config.MaxSamplesPerPixel
			result := PassResult{
				PassNumber: pass,
				Image:      img,
				Stats:      stats,
				IsLast:     isLast,
			}

			select {
			case passChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}

			if isLast {
				break
			}
		}
	}()

	return passChan, errChan
}

// assembleCurrentImage creates an image from the current state of the pixel
// stats and calculates render statistics in a single pass
func (pr *ProgressiveRaytracer) assembleCurrentImage(targetSamples int) (*image.RGBA, RenderStats) {
	rt := pr.raytracer
	width, height, cell := rt.config.Width, rt.config.Height, rt.config.PixelCell
	sink := NewImageSink(width, height)

	stats := RenderStats{
		TotalPixels: width * height,
		MaxSamples:  targetSamples,
		MinSamples:  pr.config.MaxSamplesPerPixel, // Start high, will be reduced
	}

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			anchor := &pr.pixelStats[y-y%cell][x-x%cell]
			sink.SetPixel(x, y, ToRGBA(anchor.GetColor()))

			if rt.isAnchor(x, y) {
				stats.SampledPixels++
				stats.TotalSamples += anchor.SampleCount
				stats.MinSamples = min(stats.MinSamples, anchor.SampleCount)
				stats.MaxSamplesUsed = max(stats.MaxSamplesUsed, anchor.SampleCount)
			}
		}
	}

	stats.AverageSamples = float64(stats.TotalSamples) / float64(stats.SampledPixels)

	return sink.Image, stats
}
