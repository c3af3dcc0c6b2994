package loaders

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Material type names accepted in scene files
const (
	MaterialLambertian = "lambertian"
	MaterialMetal      = "metal"
	MaterialDielectric = "dielectric"
)

// Vector is a JSON [x, y, z] triple
type Vector [3]float64

// Vec3 converts the triple to a core.Vec3
func (v Vector) Vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

func (v *Vector) UnmarshalJSON(data []byte) error {
	var components []float64
	if err := json.Unmarshal(data, &components); err != nil {
		return fmt.Errorf("vector must be an [x, y, z] array: %w", err)
	}
	if len(components) != 3 {
		return fmt.Errorf("vector must have exactly 3 components, got %d", len(components))
	}
	copy(v[:], components)
	return nil
}

// CameraSpec describes the camera. Omitted fields keep the loader defaults.
type CameraSpec struct {
	LookFrom      *Vector `json:"lookFrom"`
	LookAt        *Vector `json:"lookAt"`
	Up            *Vector `json:"up"`
	VFov          float64 `json:"vfov"`
	AspectRatio   float64 `json:"aspectRatio"`
	Aperture      float64 `json:"aperture"`
	FocusDistance float64 `json:"focusDistance"`
}

// ImageSpec describes the output image and sampling budget
type ImageSpec struct {
	Width           int   `json:"width"`
	Height          int   `json:"height"`
	SamplesPerPixel int   `json:"samplesPerPixel"`
	MaxDepth        int   `json:"maxDepth"`
	PixelCell       int   `json:"pixelCell"`
	Seed            int64 `json:"seed"`
}

// BackgroundSpec overrides the sky gradient
type BackgroundSpec struct {
	Top    *Color `json:"top"`
	Bottom *Color `json:"bottom"`
}

// MaterialSpec describes one named material
type MaterialSpec struct {
	Type            string  `json:"type"`
	Albedo          *Color  `json:"albedo"`
	Fuzz            float64 `json:"fuzz"`
	RefractiveIndex float64 `json:"refractiveIndex"`
}

// SphereSpec places one sphere. Material names a key of SceneFile.Materials.
type SphereSpec struct {
	Center   Vector  `json:"center"`
	Radius   float64 `json:"radius"`
	Material string  `json:"material"`
}

// SceneFile contains all parsed scene file data
type SceneFile struct {
	Name        string                  `json:"name"`
	Description string                  `json:"description"`
	Camera      CameraSpec              `json:"camera"`
	Image       ImageSpec               `json:"image"`
	Background  *BackgroundSpec         `json:"background"`
	Materials   map[string]MaterialSpec `json:"materials"`
	Spheres     []SphereSpec            `json:"spheres"`
}

// ParseScene parses scene file content from an io.Reader
func ParseScene(reader io.Reader) (*SceneFile, error) {
	decoder := json.NewDecoder(reader)
	decoder.DisallowUnknownFields()

	var file SceneFile
	if err := decoder.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode scene file: %w", err)
	}

	if err := file.Validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

// LoadScene loads and parses a scene file
func LoadScene(filename string) (*SceneFile, error) {
	if err := validateFilePath(filename); err != nil {
		return nil, err
	}

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open scene file: %w", err)
	}
	defer file.Close()

	scene, err := ParseScene(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return scene, nil
}

// Validate checks material parameters and sphere references
func (f *SceneFile) Validate() error {
	for name, mat := range f.Materials {
		if err := mat.validate(name); err != nil {
			return err
		}
	}

	for i, sphere := range f.Spheres {
		if sphere.Radius == 0 {
			return fmt.Errorf("sphere %d: radius must be non-zero", i)
		}
		if _, ok := f.Materials[sphere.Material]; !ok {
			return fmt.Errorf("sphere %d: unknown material %q", i, sphere.Material)
		}
	}

	if f.Image.Width < 0 || f.Image.Height < 0 || f.Image.SamplesPerPixel < 0 || f.Image.MaxDepth < 0 || f.Image.PixelCell < 0 {
		return fmt.Errorf("image settings must not be negative")
	}
	return nil
}

func (m MaterialSpec) validate(name string) error {
	switch m.Type {
	case MaterialLambertian:
		if m.Albedo == nil {
			return fmt.Errorf("material %q: lambertian requires albedo", name)
		}
	case MaterialMetal:
		if m.Albedo == nil {
			return fmt.Errorf("material %q: metal requires albedo", name)
		}
		if m.Fuzz < 0 || m.Fuzz > 1 {
			return fmt.Errorf("material %q: invalid metal fuzz %f: must be between 0 and 1", name, m.Fuzz)
		}
	case MaterialDielectric:
		if m.RefractiveIndex < 0 {
			return fmt.Errorf("material %q: invalid refractive index %f: must be positive", name, m.RefractiveIndex)
		}
	default:
		return fmt.Errorf("material %q: unsupported type %q", name, m.Type)
	}
	return nil
}

// validateFilePath validates a file path for security issues
func validateFilePath(filename string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	// Check for null bytes (could indicate path manipulation)
	if strings.Contains(filename, "\x00") {
		return fmt.Errorf("invalid file path: null bytes not allowed")
	}

	cleanPath := filepath.Clean(filename)

	// Only allow files in a scenes/ directory or the temp directory (for tests)
	if !strings.HasPrefix(cleanPath, "scenes"+string(filepath.Separator)) &&
		!strings.HasPrefix(cleanPath, os.TempDir()) &&
		!strings.Contains(cleanPath, string(filepath.Separator)+"scenes"+string(filepath.Separator)) {
		return fmt.Errorf("file path must be in scenes/ directory")
	}

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("invalid file path: directory traversal not allowed")
	}

	if !strings.HasSuffix(strings.ToLower(cleanPath), ".json") {
		return fmt.Errorf("invalid file type: only .json files are allowed")
	}

	if len(cleanPath) > 512 {
		return fmt.Errorf("file path too long: maximum 512 characters allowed")
	}

	return nil
}
