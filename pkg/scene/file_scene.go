package scene

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
	"github.com/df07/go-sphere-pathtracer/pkg/material"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// NewFileScene creates a scene from a JSON scene file
func NewFileScene(filename string, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	file, err := loaders.LoadScene(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene file: %w", err)
	}

	name := file.Name
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	}
	return FromSceneFile(name, file, cameraOverrides...)
}

// FromSceneFile converts parsed scene data into a renderable scene.
// Spheres naming the same material share one material value.
func FromSceneFile(name string, file *loaders.SceneFile, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	s, err := newScene(name, convertCamera(file.Camera), convertSampling(file.Image), cameraOverrides)
	if err != nil {
		return nil, err
	}

	// An explicit height wins over the one derived from the aspect ratio
	if file.Image.Height > 0 {
		s.SamplingConfig.Height = file.Image.Height
	}

	if file.Background != nil {
		if file.Background.Top != nil {
			s.Background.Top = file.Background.Top.Vec3()
		}
		if file.Background.Bottom != nil {
			s.Background.Bottom = file.Background.Bottom.Vec3()
		}
	}

	materials := make(map[string]material.Material, len(file.Materials))
	for matName, spec := range file.Materials {
		materials[matName] = convertMaterial(spec)
	}

	for i, sphere := range file.Spheres {
		mat, ok := materials[sphere.Material]
		if !ok {
			return nil, fmt.Errorf("sphere %d has no valid material (%q)", i, sphere.Material)
		}
		s.World.Add(geometry.NewSphere(sphere.Center.Vec3(), sphere.Radius, mat))
	}

	return s, nil
}

// convertCamera fills omitted camera fields with defaults
func convertCamera(spec loaders.CameraSpec) geometry.CameraConfig {
	config := geometry.CameraConfig{
		Center:        core.NewVec3(0, 0, 0),
		LookAt:        core.NewVec3(0, 0, -1),
		Up:            core.NewVec3(0, 1, 0),
		VFov:          90.0,
		AspectRatio:   16.0 / 9.0,
		Aperture:      spec.Aperture,
		FocusDistance: spec.FocusDistance,
	}

	if spec.LookFrom != nil {
		config.Center = spec.LookFrom.Vec3()
	}
	if spec.LookAt != nil {
		config.LookAt = spec.LookAt.Vec3()
	}
	if spec.Up != nil {
		config.Up = spec.Up.Vec3()
	}
	if spec.VFov != 0 {
		config.VFov = spec.VFov
	}
	if spec.AspectRatio != 0 {
		config.AspectRatio = spec.AspectRatio
	}
	return config
}

// convertSampling applies the file's image settings over the defaults
func convertSampling(spec loaders.ImageSpec) renderer.SamplingConfig {
	return renderer.MergeSamplingConfig(renderer.DefaultSamplingConfig(), renderer.SamplingConfig{
		Width:           spec.Width,
		SamplesPerPixel: spec.SamplesPerPixel,
		MaxDepth:        spec.MaxDepth,
		PixelCell:       spec.PixelCell,
		Seed:            spec.Seed,
	})
}

// convertMaterial builds a material from a validated spec
func convertMaterial(spec loaders.MaterialSpec) material.Material {
	switch spec.Type {
	case loaders.MaterialMetal:
		return material.NewMetal(spec.Albedo.Vec3(), spec.Fuzz)
	case loaders.MaterialDielectric:
		ior := spec.RefractiveIndex
		if ior == 0 {
			ior = 1.5 // Default glass IOR
		}
		return material.NewDielectric(ior)
	default:
		return material.NewLambertian(spec.Albedo.Vec3())
	}
}
