package renderer

import (
	"errors"
	"image/color"
	"testing"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
)

// MockIntegrator returns a fixed color and records every ray it is asked about
type MockIntegrator struct {
	color core.Vec3
	rays  []core.Ray
}

func (m *MockIntegrator) RayColor(ray core.Ray, world geometry.Hittable, sampler core.Sampler, depth int) core.Vec3 {
	m.rays = append(m.rays, ray)
	return m.color
}

func newTestCamera(t *testing.T, aspect float64) *geometry.Camera {
	t.Helper()
	camera, err := geometry.NewCamera(geometry.CameraConfig{
		Center:      core.NewVec3(0, 0, 0),
		LookAt:      core.NewVec3(0, 0, -1),
		Up:          core.NewVec3(0, 1, 0),
		VFov:        90,
		AspectRatio: aspect,
	})
	if err != nil {
		t.Fatalf("NewCamera: %v", err)
	}
	return camera
}

func newTestWorld() *geometry.HittableList {
	return geometry.NewHittableList(
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0))),
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3))),
	)
}

func smallConfig(width, height int) SamplingConfig {
	return MergeSamplingConfig(DefaultSamplingConfig(), SamplingConfig{
		Width:           width,
		Height:          height,
		SamplesPerPixel: 4,
		MaxDepth:        10,
	})
}

func newTestRaytracer(t *testing.T, integ integrator.Integrator, config SamplingConfig) *Raytracer {
	t.Helper()
	rt, err := NewRaytracer(newTestCamera(t, float64(config.Width)/float64(config.Height)), newTestWorld(), integ, config)
	if err != nil {
		t.Fatalf("NewRaytracer: %v", err)
	}
	return rt
}

func TestSamplingConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*SamplingConfig)
	}{
		{"zero width", func(c *SamplingConfig) { c.Width = 0 }},
		{"negative height", func(c *SamplingConfig) { c.Height = -1 }},
		{"zero samples", func(c *SamplingConfig) { c.SamplesPerPixel = 0 }},
		{"negative depth", func(c *SamplingConfig) { c.MaxDepth = -1 }},
		{"zero pixel cell", func(c *SamplingConfig) { c.PixelCell = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultSamplingConfig()
			tt.modify(&config)
			if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	if err := DefaultSamplingConfig().Validate(); err != nil {
		t.Errorf("Default config should be valid, got %v", err)
	}

	// Depth 0 is a legal budget: one hit, no bounce
	config := DefaultSamplingConfig()
	config.MaxDepth = 0
	if err := config.Validate(); err != nil {
		t.Errorf("Depth 0 should be valid, got %v", err)
	}
}

func TestMergeSamplingConfig(t *testing.T) {
	base := DefaultSamplingConfig()
	merged := MergeSamplingConfig(base, SamplingConfig{Width: 64, Seed: 7})

	if merged.Width != 64 || merged.Seed != 7 {
		t.Errorf("Overrides not applied: %+v", merged)
	}
	if merged.Height != base.Height || merged.SamplesPerPixel != base.SamplesPerPixel || merged.MaxDepth != base.MaxDepth || merged.PixelCell != base.PixelCell {
		t.Errorf("Zero override fields should keep base values: %+v", merged)
	}
}

func TestNewRaytracer_Invalid(t *testing.T) {
	camera := newTestCamera(t, 2)
	integ := integrator.NewPathTracingIntegrator(integrator.DefaultBackground())

	if _, err := NewRaytracer(nil, newTestWorld(), integ, DefaultSamplingConfig()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for missing camera, got %v", err)
	}
	if _, err := NewRaytracer(camera, nil, integ, DefaultSamplingConfig()); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for missing world, got %v", err)
	}
	bad := DefaultSamplingConfig()
	bad.SamplesPerPixel = -3
	if _, err := NewRaytracer(camera, newTestWorld(), integ, bad); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig for bad config, got %v", err)
	}
}

func TestToRGBA(t *testing.T) {
	tests := []struct {
		name     string
		input    core.Vec3
		expected color.RGBA
	}{
		{"black", core.NewVec3(0, 0, 0), color.RGBA{0, 0, 0, 255}},
		{"white clamps below 256", core.NewVec3(1, 1, 1), color.RGBA{255, 255, 255, 255}},
		{"overbright clamps", core.NewVec3(4, 9, 100), color.RGBA{255, 255, 255, 255}},
		{"gamma 2", core.NewVec3(0.25, 0.0625, 0.5625), color.RGBA{128, 64, 192, 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToRGBA(tt.input); got != tt.expected {
				t.Errorf("ToRGBA(%v) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRender_RowMajorOrderAndProgress(t *testing.T) {
	config := smallConfig(5, 3)
	rt := newTestRaytracer(t, &MockIntegrator{color: core.NewVec3(0.25, 0.25, 0.25)}, config)

	var progress []Progress
	rt.SetProgressFunc(func(p Progress) { progress = append(progress, p) })

	var order [][2]int
	stats := rt.Render(FuncSink(func(x, y int, c color.RGBA) {
		order = append(order, [2]int{x, y})
		if c != (color.RGBA{128, 128, 128, 255}) {
			t.Errorf("Pixel (%d, %d) = %v, expected mid grey", x, y, c)
		}
	}))

	if len(order) != 15 {
		t.Fatalf("Expected 15 pixels, got %d", len(order))
	}
	for i, p := range order {
		if p[0] != i%5 || p[1] != i/5 {
			t.Fatalf("Pixel %d emitted as %v, expected row-major order", i, p)
		}
	}

	if len(progress) != 3 {
		t.Fatalf("Expected one progress notification per row, got %d", len(progress))
	}
	for y, p := range progress {
		if p.X != 4 || p.Y != y || p.Width != 5 || p.Height != 3 {
			t.Errorf("Unexpected progress %+v for row %d", p, y)
		}
	}
	if progress[2].Percent() != 100 {
		t.Errorf("Last row should report 100%%, got %f", progress[2].Percent())
	}

	if stats.TotalPixels != 15 || stats.TotalSamples != 60 || stats.AverageSamples != 4 {
		t.Errorf("Unexpected stats %+v", stats)
	}
}

func TestRender_ViewportMapping(t *testing.T) {
	config := smallConfig(8, 10)
	config.SamplesPerPixel = 1
	integ := &MockIntegrator{}
	rt := newTestRaytracer(t, integ, config)
	rt.RenderPass()

	if len(integ.rays) != 80 {
		t.Fatalf("Expected 80 rays, got %d", len(integ.rays))
	}

	// Camera looks down -z with a 90 degree vfov, so directions span y in [-1, 1]
	// at z = -1. Row 0 is the top of the image.
	for x := 0; x < 8; x++ {
		top := integ.rays[x].Direction
		bottom := integ.rays[9*8+x].Direction
		if top.Y < 0.7 || top.Y > 1+1e-9 {
			t.Errorf("Top row ray %d has direction %v, expected y near 1", x, top)
		}
		if bottom.Y > -0.9 || bottom.Y < -1.3 {
			t.Errorf("Bottom row ray %d has direction %v, expected y near -1", x, bottom)
		}
	}

	// Left column maps to u near 0, right column to u near 1
	halfWidth := 0.8
	for y := 0; y < 10; y++ {
		left := integ.rays[y*8].Direction
		right := integ.rays[y*8+7].Direction
		if left.X > -halfWidth+0.25 || right.X < halfWidth-1e-9 {
			t.Errorf("Row %d: left %v, right %v do not span the viewport", y, left, right)
		}
	}
}

func TestRender_SinglePixel(t *testing.T) {
	config := smallConfig(1, 1)
	rt, err := NewRaytracer(newTestCamera(t, 1), newTestWorld(),
		integrator.NewPathTracingIntegrator(integrator.DefaultBackground()), config)
	if err != nil {
		t.Fatalf("NewRaytracer: %v", err)
	}

	img, stats := rt.RenderPass()
	if img.Bounds().Dx() != 1 || img.Bounds().Dy() != 1 {
		t.Fatalf("Expected 1x1 image, got %v", img.Bounds())
	}
	if stats.TotalPixels != 1 {
		t.Errorf("Expected 1 pixel, got %d", stats.TotalPixels)
	}
}

func TestRender_EmptyWorldShowsGradient(t *testing.T) {
	config := smallConfig(16, 8)
	camera := newTestCamera(t, 2)
	rt, err := NewRaytracer(camera, geometry.NewHittableList(),
		integrator.NewPathTracingIntegrator(integrator.DefaultBackground()), config)
	if err != nil {
		t.Fatalf("NewRaytracer: %v", err)
	}

	img, _ := rt.RenderPass()
	for x := 0; x < 16; x++ {
		top := img.RGBAAt(x, 0)
		bottom := img.RGBAAt(x, 7)
		if top.R >= bottom.R {
			t.Errorf("Column %d: top red %d should be below bottom red %d", x, top.R, bottom.R)
		}
		if top.B != 255 || bottom.B != 255 {
			t.Errorf("Column %d: blue channel should saturate, got %d and %d", x, top.B, bottom.B)
		}
	}
}

func TestRender_Deterministic(t *testing.T) {
	newIntegrator := func() integrator.Integrator {
		return integrator.NewPathTracingIntegrator(integrator.DefaultBackground())
	}
	config := smallConfig(12, 6)

	a, _ := newTestRaytracer(t, newIntegrator(), config).RenderPass()
	b, _ := newTestRaytracer(t, newIntegrator(), config).RenderPass()
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("Renders with the same seed differ at byte %d", i)
		}
	}

	config.Seed = 1234
	c, _ := newTestRaytracer(t, newIntegrator(), config).RenderPass()
	same := true
	for i := range a.Pix {
		if a.Pix[i] != c.Pix[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("Renders with different seeds should differ")
	}
}

func TestRender_PixelCell(t *testing.T) {
	config := smallConfig(5, 5)
	config.PixelCell = 2
	config.SamplesPerPixel = 1
	integ := &MockIntegrator{color: core.NewVec3(0.5, 0.5, 0.5)}
	rt := newTestRaytracer(t, integ, config)

	colors := map[[2]int]color.RGBA{}
	stats := rt.Render(FuncSink(func(x, y int, c color.RGBA) {
		colors[[2]int{x, y}] = c
	}))

	if len(colors) != 25 || stats.TotalPixels != 25 {
		t.Fatalf("Expected every pixel written, got %d", len(colors))
	}
	// Anchors at 0, 2, 4 in each axis
	if len(integ.rays) != 9 || stats.SampledPixels != 9 {
		t.Errorf("Expected 9 sampled pixels, got %d rays and %d in stats", len(integ.rays), stats.SampledPixels)
	}
	// Sample points are jittered across the whole cell
	cellHeight := 2.0 * 2.0 / 4.0 // viewport height 2 over H-1 = 4 pixel steps, 2 pixels per cell
	for _, ray := range integ.rays[:3] {
		if ray.Direction.Y < 1-cellHeight || ray.Direction.Y > 1+1e-9 {
			t.Errorf("Anchor ray %v outside its cell", ray.Direction)
		}
	}
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			if colors[[2]int{x, y}] != colors[[2]int{x - x%2, y - y%2}] {
				t.Errorf("Pixel (%d, %d) differs from its cell anchor", x, y)
			}
		}
	}
}

func TestRender_ImageSink(t *testing.T) {
	config := smallConfig(4, 2)
	rt := newTestRaytracer(t, &MockIntegrator{color: core.NewVec3(1, 0, 0.25)}, config)

	sink := NewImageSink(4, 2)
	rt.Render(sink)
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			if got := sink.Image.RGBAAt(x, y); got != (color.RGBA{255, 0, 128, 255}) {
				t.Errorf("Pixel (%d, %d) = %v", x, y, got)
			}
		}
	}
}
