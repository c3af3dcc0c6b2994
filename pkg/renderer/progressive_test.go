package renderer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
)

// recordingLogger captures log output for assertions
type recordingLogger struct {
	lines []string
}

func (l *recordingLogger) Printf(format string, args ...interface{}) {
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func newTestProgressive(t *testing.T, integ integrator.Integrator, config ProgressiveConfig, logger core.Logger) *ProgressiveRaytracer {
	t.Helper()
	pr, err := NewProgressiveRaytracer(newTestRaytracer(t, integ, smallConfig(8, 4)), config, logger)
	if err != nil {
		t.Fatalf("NewProgressiveRaytracer: %v", err)
	}
	return pr
}

func TestProgressiveSampleCalculation(t *testing.T) {
	config := DefaultProgressiveConfig()
	config.InitialSamples = 1
	config.MaxSamplesPerPixel = 50
	config.MaxPasses = 7

	pr := &ProgressiveRaytracer{
		config: config,
	}

	// Pass 1: 1 sample
	// Pass 2-6: (50-1)/6 = 8 samples per pass -> 9, 17, 25, 33, 41
	// Pass 7: 50 (final pass gets all remaining)
	expectedTotalSamples := []int{1, 9, 17, 25, 33, 41, 50}

	for pass := 1; pass <= 7; pass++ {
		totalSamples := pr.getSamplesForPass(pass)

		if totalSamples != expectedTotalSamples[pass-1] {
			t.Errorf("Pass %d: expected %d total samples, got %d",
				pass, expectedTotalSamples[pass-1], totalSamples)
		}
	}

	single := &ProgressiveRaytracer{config: ProgressiveConfig{InitialSamples: 1, MaxSamplesPerPixel: 20, MaxPasses: 1}}
	if got := single.getSamplesForPass(1); got != 20 {
		t.Errorf("Single pass should take all samples, got %d", got)
	}
}

func TestProgressiveConfig(t *testing.T) {
	config := DefaultProgressiveConfig()

	if config.InitialSamples != 1 {
		t.Errorf("Expected default initial samples 1, got %d", config.InitialSamples)
	}
	if config.MaxSamplesPerPixel != 50 {
		t.Errorf("Expected default max samples 50, got %d", config.MaxSamplesPerPixel)
	}
	if config.MaxPasses != 7 {
		t.Errorf("Expected default max passes 7, got %d", config.MaxPasses)
	}
	if err := config.Validate(); err != nil {
		t.Errorf("Default config should be valid, got %v", err)
	}

	invalid := []ProgressiveConfig{
		{InitialSamples: 1, MaxSamplesPerPixel: 10, MaxPasses: 0},
		{InitialSamples: 0, MaxSamplesPerPixel: 10, MaxPasses: 3},
		{InitialSamples: 5, MaxSamplesPerPixel: 4, MaxPasses: 3},
	}
	for _, c := range invalid {
		if err := c.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("Config %+v: expected ErrInvalidConfig, got %v", c, err)
		}
	}
}

func TestProgressive_PassesAccumulate(t *testing.T) {
	integ := &MockIntegrator{color: core.NewVec3(0.25, 0.25, 0.25)}
	pr := newTestProgressive(t, integ, ProgressiveConfig{InitialSamples: 1, MaxSamplesPerPixel: 5, MaxPasses: 3}, nil)
	ctx := context.Background()

	// Schedule is 1, 3, 5 samples per pixel on an 8x4 image
	expectedRays := []int{32, 96, 160}
	for pass := 1; pass <= 3; pass++ {
		img, stats, err := pr.RenderPass(ctx, pass)
		if err != nil {
			t.Fatalf("Pass %d: %v", pass, err)
		}
		if len(integ.rays) != expectedRays[pass-1] {
			t.Errorf("Pass %d: expected %d rays in total, got %d", pass, expectedRays[pass-1], len(integ.rays))
		}
		target := pr.getSamplesForPass(pass)
		if stats.MinSamples != target || stats.MaxSamplesUsed != target || stats.AverageSamples != float64(target) {
			t.Errorf("Pass %d: unexpected stats %+v", pass, stats)
		}
		if got := img.RGBAAt(3, 2); got.R != 128 || got.A != 255 {
			t.Errorf("Pass %d: unexpected pixel %v", pass, got)
		}
	}
}

func TestProgressive_FinalPassHasAllSamples(t *testing.T) {
	newIntegrator := func() integrator.Integrator {
		return integrator.NewPathTracingIntegrator(integrator.DefaultBackground())
	}
	pr := newTestProgressive(t, newIntegrator(), ProgressiveConfig{InitialSamples: 1, MaxSamplesPerPixel: 4, MaxPasses: 2}, nil)

	var last PassResult
	passChan, errChan := pr.RenderProgressive(context.Background())
	for result := range passChan {
		last = result
	}
	if err := <-errChan; err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !last.IsLast || last.PassNumber != 2 {
		t.Fatalf("Expected pass 2 to be last, got %+v", last)
	}
	if last.Stats.TotalSamples != 8*4*4 {
		t.Errorf("Expected %d samples, got %d", 8*4*4, last.Stats.TotalSamples)
	}

	// The image stays inside the color range and is not blank
	nonBlack := 0
	for i := 0; i < len(last.Image.Pix); i += 4 {
		if last.Image.Pix[i] != 0 || last.Image.Pix[i+1] != 0 || last.Image.Pix[i+2] != 0 {
			nonBlack++
		}
	}
	if nonBlack == 0 {
		t.Error("Progressive render produced a black image")
	}
}

func TestProgressive_RenderProgressiveEmitsEveryPass(t *testing.T) {
	logger := &recordingLogger{}
	pr := newTestProgressive(t, &MockIntegrator{color: core.NewVec3(0.5, 0.5, 0.5)},
		ProgressiveConfig{InitialSamples: 1, MaxSamplesPerPixel: 9, MaxPasses: 3}, logger)

	passChan, errChan := pr.RenderProgressive(context.Background())

	var passes []PassResult
	for result := range passChan {
		passes = append(passes, result)
	}
	if err, ok := <-errChan; ok && err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if len(passes) != 3 {
		t.Fatalf("Expected 3 passes, got %d", len(passes))
	}
	for i, p := range passes {
		if p.PassNumber != i+1 {
			t.Errorf("Pass %d reported as %d", i+1, p.PassNumber)
		}
		if p.IsLast != (i == 2) {
			t.Errorf("Pass %d IsLast = %v", i+1, p.IsLast)
		}
		if p.Image.Bounds().Dx() != 8 || p.Image.Bounds().Dy() != 4 {
			t.Errorf("Pass %d image bounds %v", i+1, p.Image.Bounds())
		}
	}
	if passes[2].Stats.AverageSamples != 9 {
		t.Errorf("Expected 9 samples per pixel after the last pass, got %f", passes[2].Stats.AverageSamples)
	}

	if len(logger.lines) == 0 || !strings.Contains(logger.lines[0], "3 passes") {
		t.Errorf("Expected a start message, got %q", logger.lines)
	}
}

func TestProgressive_CancelledBeforeStart(t *testing.T) {
	integ := &MockIntegrator{}
	pr := newTestProgressive(t, integ, DefaultProgressiveConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, _, err := pr.RenderPass(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if len(integ.rays) != 0 {
		t.Errorf("Cancelled pass should not trace rays, traced %d", len(integ.rays))
	}

	passChan, errChan := pr.RenderProgressive(ctx)
	for range passChan {
		t.Error("Cancelled render should not produce passes")
	}
	if err := <-errChan; !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled on the error channel, got %v", err)
	}
}

func TestProgressive_CancelBetweenRows(t *testing.T) {
	integ := &MockIntegrator{}
	pr := newTestProgressive(t, integ, ProgressiveConfig{InitialSamples: 2, MaxSamplesPerPixel: 10, MaxPasses: 2}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Cancel as soon as the first row finishes
	pr.raytracer.SetProgressFunc(func(p Progress) {
		if p.Y == 0 {
			cancel()
		}
	})

	if _, _, err := pr.RenderPass(ctx, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	// One full row of 8 pixels at 2 samples each
	if len(integ.rays) != 16 {
		t.Errorf("Expected exactly one row to be sampled, got %d rays", len(integ.rays))
	}
}
