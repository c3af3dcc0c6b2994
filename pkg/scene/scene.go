package scene

import (
	"fmt"

	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/integrator"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name           string
	Camera         *geometry.Camera
	CameraConfig   geometry.CameraConfig
	World          *geometry.HittableList // Spheres in insertion order
	Background     integrator.Background
	SamplingConfig renderer.SamplingConfig
}

// newScene builds the camera from defaults plus the first override, if any
func newScene(name string, defaultCameraConfig geometry.CameraConfig, samplingConfig renderer.SamplingConfig, cameraOverrides []geometry.CameraConfig) (*Scene, error) {
	cameraConfig := defaultCameraConfig
	if len(cameraOverrides) > 0 {
		cameraConfig = geometry.MergeCameraConfig(defaultCameraConfig, cameraOverrides[0])
	}

	camera, err := geometry.NewCamera(cameraConfig)
	if err != nil {
		return nil, fmt.Errorf("scene %s: %w", name, err)
	}

	s := &Scene{
		Name:           name,
		Camera:         camera,
		CameraConfig:   cameraConfig,
		World:          geometry.NewHittableList(),
		Background:     integrator.DefaultBackground(),
		SamplingConfig: samplingConfig,
	}
	s.SetWidth(samplingConfig.Width)
	return s, nil
}

// SetWidth sets the image width and derives the height from the camera aspect ratio
func (s *Scene) SetWidth(width int) {
	s.SamplingConfig.Width = width
	s.SamplingConfig.Height = max(1, int(float64(width)/s.CameraConfig.AspectRatio))
}

// GetPrimitiveCount returns the number of spheres in the scene
func (s *Scene) GetPrimitiveCount() int {
	return s.World.Len()
}

// NewIntegrator returns a path tracer lit by the scene's background
func (s *Scene) NewIntegrator() integrator.Integrator {
	return integrator.NewPathTracingIntegrator(s.Background)
}

// NewRaytracer creates a raytracer for the scene with the non-zero fields of
// overrides applied to the scene's sampling configuration
func (s *Scene) NewRaytracer(overrides renderer.SamplingConfig) (*renderer.Raytracer, error) {
	config := renderer.MergeSamplingConfig(s.SamplingConfig, overrides)
	return renderer.NewRaytracer(s.Camera, s.World, s.NewIntegrator(), config)
}
