package scene

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// classicSamplingConfig is shared by the three-sphere family of scenes
func classicSamplingConfig() renderer.SamplingConfig {
	return renderer.SamplingConfig{
		Width:           1200,
		SamplesPerPixel: 8,
		MaxDepth:        10,
		PixelCell:       1,
		Seed:            42,
	}
}

// NewThreeSpheresScene creates a diffuse sphere between a glass sphere and a
// brushed gold sphere, seen head-on through a slightly open lens
func NewThreeSpheresScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   3.0 / 2.0,
		VFov:          90.0, // viewport height 2 at the look-at distance
		Aperture:      0.1,
		FocusDistance: 0.0,
	}

	s, err := newScene("three-spheres", defaultCameraConfig, classicSamplingConfig(), cameraOverrides)
	if err != nil {
		return nil, err
	}

	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	left := material.NewDielectric(1.5)
	right := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 1.0)

	s.World.Add(geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, ground))
	s.World.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, center))
	s.World.Add(geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, left))
	s.World.Add(geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, right))

	return s, nil
}

// NewHollowGlassScene creates the three-sphere layout with a hollow glass
// bubble on the left and a polished gold sphere on the right, viewed from
// above with a wide aperture
func NewHollowGlassScene(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	defaultCameraConfig := geometry.CameraConfig{
		Center:        core.NewVec3(3, 3, 2),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		AspectRatio:   3.0 / 2.0,
		VFov:          20.0,
		Aperture:      2.0,
		FocusDistance: 0.0,
	}

	s, err := newScene("hollow-glass", defaultCameraConfig, classicSamplingConfig(), cameraOverrides)
	if err != nil {
		return nil, err
	}

	ground := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.0))
	center := material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))
	glass := material.NewDielectric(1.5)
	right := material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 0.0)

	s.World.Add(geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, ground))
	s.World.Add(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, center))
	// Negative radius flips the inner shell's normals inward
	s.World.Add(geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, glass))
	s.World.Add(geometry.NewSphere(core.NewVec3(-1, 0, -1), -0.45, glass))
	s.World.Add(geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, right))

	return s, nil
}
