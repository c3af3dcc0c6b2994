package loaders

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Color is an RGB value in scene files. It decodes from an [r, g, b] array
// in [0, 1], an SVG color name such as "gold", or a "#rrggbb" hex string.
type Color core.Vec3

// Vec3 converts the color to a core.Vec3
func (c Color) Vec3() core.Vec3 {
	return core.Vec3(c)
}

func (c *Color) UnmarshalJSON(data []byte) error {
	var components []float64
	if err := json.Unmarshal(data, &components); err == nil {
		if len(components) != 3 {
			return fmt.Errorf("color must have exactly 3 components, got %d", len(components))
		}
		for _, v := range components {
			if v < 0 || v > 1 {
				return fmt.Errorf("color component %f out of range [0, 1]", v)
			}
		}
		*c = Color(core.NewVec3(components[0], components[1], components[2]))
		return nil
	}

	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("color must be an [r, g, b] array or a string: %s", data)
	}

	parsed, err := ParseColor(name)
	if err != nil {
		return err
	}
	*c = Color(parsed)
	return nil
}

// ParseColor resolves a color name or "#rrggbb" hex string to RGB in [0, 1]
func ParseColor(s string) (core.Vec3, error) {
	s = strings.TrimSpace(strings.ToLower(s))

	if hex, ok := strings.CutPrefix(s, "#"); ok {
		if len(hex) != 6 {
			return core.Vec3{}, fmt.Errorf("invalid hex color %q: expected #rrggbb", s)
		}
		v, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return core.Vec3{}, fmt.Errorf("invalid hex color %q: %w", s, err)
		}
		return core.NewVec3(
			float64((v>>16)&0xff)/255.0,
			float64((v>>8)&0xff)/255.0,
			float64(v&0xff)/255.0,
		), nil
	}

	rgba, ok := colornames.Map[s]
	if !ok {
		return core.Vec3{}, fmt.Errorf("unknown color name %q", s)
	}
	return core.NewVec3(
		float64(rgba.R)/255.0,
		float64(rgba.G)/255.0,
		float64(rgba.B)/255.0,
	), nil
}
