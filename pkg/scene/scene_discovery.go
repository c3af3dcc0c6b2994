package scene

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
	"github.com/df07/go-sphere-pathtracer/pkg/loaders"
)

// ErrUnknownScene is returned by Create for names not in the registry
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo describes a built-in or file scene
type SceneInfo struct {
	ID          string `json:"id"`          // Registry name or "file:<base name>"
	DisplayName string `json:"displayName"` // Human readable name
	Description string `json:"description"` // Optional description
	Type        string `json:"type"`        // "builtin" or "file"
	FilePath    string `json:"filePath"`    // Path to the scene file (file type only)
}

type builtinScene struct {
	info   SceneInfo
	create func(cameraOverrides ...geometry.CameraConfig) (*Scene, error)
}

var builtinScenes = []builtinScene{
	{
		info:   builtin("quickstart", "Diffuse sphere on a large ground sphere"),
		create: NewQuickstartScene,
	},
	{
		info:   builtin("three-spheres", "Glass, diffuse and fuzzy gold spheres"),
		create: NewThreeSpheresScene,
	},
	{
		info:   builtin("hollow-glass", "Hollow glass bubble seen through a wide aperture"),
		create: NewHollowGlassScene,
	},
	{
		info: builtin("random-spheres", "Hundreds of random small spheres around three large ones"),
		create: func(cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
			return NewRandomSpheresScene(DefaultLayoutSeed, cameraOverrides...)
		},
	},
}

func builtin(id, description string) SceneInfo {
	return SceneInfo{
		ID:          id,
		DisplayName: titleCase(id),
		Description: description,
		Type:        "builtin",
	}
}

// Names returns the registered scene names in sorted order
func Names() []string {
	names := make([]string, 0, len(builtinScenes))
	for _, b := range builtinScenes {
		names = append(names, b.info.ID)
	}
	sort.Strings(names)
	return names
}

// BuiltinScenes returns metadata for every registered scene, in registry order
func BuiltinScenes() []SceneInfo {
	infos := make([]SceneInfo, 0, len(builtinScenes))
	for _, b := range builtinScenes {
		infos = append(infos, b.info)
	}
	return infos
}

// Create builds the named built-in scene
func Create(name string, cameraOverrides ...geometry.CameraConfig) (*Scene, error) {
	for _, b := range builtinScenes {
		if b.info.ID == name {
			return b.create(cameraOverrides...)
		}
	}
	return nil, fmt.Errorf("%w %q (available: %s)", ErrUnknownScene, name, strings.Join(Names(), ", "))
}

// ListFileScenes scans dir for .json scene files. Files that fail to parse are
// reported through logger and skipped.
func ListFileScenes(dir string, logger core.Logger) ([]SceneInfo, error) {
	files, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan scenes directory: %w", err)
	}

	var scenes []SceneInfo
	for _, filePath := range files {
		file, err := loaders.LoadScene(filePath)
		if err != nil {
			logger.Printf("Warning: skipping scene file %s: %v\n", filePath, err)
			continue
		}

		nameWithoutExt := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
		info := SceneInfo{
			ID:          "file:" + nameWithoutExt,
			DisplayName: titleCase(nameWithoutExt),
			Description: file.Description,
			Type:        "file",
			FilePath:    filePath,
		}
		if file.Name != "" {
			info.DisplayName = file.Name
		}
		scenes = append(scenes, info)
	}

	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].DisplayName < scenes[j].DisplayName
	})

	return scenes, nil
}

// titleCase converts a filename-style string to title case
// e.g., "hollow-glass" -> "Hollow Glass"
func titleCase(s string) string {
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
