package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// NewQuickstartScene creates a diffuse sphere resting on a large ground sphere
func NewQuickstartScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   16.0 / 9.0,
		VFov:          90.0,
		Aperture:      0.0, // Pinhole
		FocusDistance: 0.0, // Auto-calculate focus distance
	}

	samplingConfig := renderer.SamplingConfig{
		Width:           400,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		PixelCell:       1,
		Seed:            42,
	}

	s, err := newScene("quickstart", defaultCameraConfig, samplingConfig, cameraOverrides)
	if err != nil {
		return nil, err
	}

	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3))

	s.World.Add(geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, ground))
	s.World.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, center))

	return s, nil
}
