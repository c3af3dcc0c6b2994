package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// ErrInvalidCamera is returned when a camera configuration cannot produce a valid view
var ErrInvalidCamera = errors.New("invalid camera configuration")

// CameraConfig contains the parameters a camera is derived from
type CameraConfig struct {
	Center        core.Vec3 // Camera position (look-from)
	LookAt        core.Vec3 // Point the camera looks at
	Up            core.Vec3 // Up direction, must not be parallel to the view direction
	VFov          float64   // Vertical field of view in degrees, in (0, 180)
	AspectRatio   float64   // Width / height, must be positive
	Aperture      float64   // Lens diameter; 0 gives a pinhole camera
	FocusDistance float64   // Distance to the plane in perfect focus; 0 = distance to LookAt
}

// MergeCameraConfig returns base with every non-zero field of override applied
func MergeCameraConfig(base, override CameraConfig) CameraConfig {
	result := base
	zero := core.Vec3{}
	if !override.Center.Equals(zero) {
		result.Center = override.Center
	}
	if !override.LookAt.Equals(zero) {
		result.LookAt = override.LookAt
	}
	if !override.Up.Equals(zero) {
		result.Up = override.Up
	}
	if override.VFov != 0 {
		result.VFov = override.VFov
	}
	if override.AspectRatio != 0 {
		result.AspectRatio = override.AspectRatio
	}
	if override.Aperture != 0 {
		result.Aperture = override.Aperture
	}
	if override.FocusDistance != 0 {
		result.FocusDistance = override.FocusDistance
	}
	return result
}

// Camera generates rays for rendering. It is immutable once built.
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3
	lensRadius      float64
}

// NewCamera validates config and derives the camera
func NewCamera(config CameraConfig) (*Camera, error) {
	if config.AspectRatio <= 0 {
		return nil, fmt.Errorf("%w: aspect ratio must be positive, got %g", ErrInvalidCamera, config.AspectRatio)
	}
	if config.VFov <= 0 || config.VFov >= 180 {
		return nil, fmt.Errorf("%w: vertical field of view must be in (0, 180) degrees, got %g", ErrInvalidCamera, config.VFov)
	}
	if config.Aperture < 0 {
		return nil, fmt.Errorf("%w: aperture must not be negative, got %g", ErrInvalidCamera, config.Aperture)
	}
	if config.FocusDistance < 0 {
		return nil, fmt.Errorf("%w: focus distance must not be negative, got %g", ErrInvalidCamera, config.FocusDistance)
	}

	back := config.Center.Subtract(config.LookAt)
	if back.NearZero() {
		return nil, fmt.Errorf("%w: look-from %v and look-at %v coincide", ErrInvalidCamera, config.Center, config.LookAt)
	}
	side := config.Up.Cross(back)
	// sine of the angle between up and the view direction
	if side.Length() <= 1e-9*config.Up.Length()*back.Length() {
		return nil, fmt.Errorf("%w: up vector %v is parallel to the view direction", ErrInvalidCamera, config.Up)
	}

	focusDistance := config.FocusDistance
	if focusDistance == 0 {
		focusDistance = back.Length()
	}

	theta := config.VFov * math.Pi / 180
	viewportHeight := 2.0 * math.Tan(theta/2)
	viewportWidth := config.AspectRatio * viewportHeight

	// Right-handed basis: w points backwards, u right, v up
	w := back.Normalize()
	u := side.Normalize()
	v := w.Cross(u)

	origin := config.Center
	horizontal := u.Multiply(focusDistance * viewportWidth)
	vertical := v.Multiply(focusDistance * viewportHeight)
	lowerLeftCorner := origin.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focusDistance))

	return &Camera{
		origin:          origin,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2,
	}, nil
}

// MustNewCamera is like NewCamera but panics on an invalid configuration.
// Intended for built-in scenes whose parameters are constants.
func MustNewCamera(config CameraConfig) *Camera {
	camera, err := NewCamera(config)
	if err != nil {
		panic(err)
	}
	return camera
}

// GetRay generates a ray for viewport coordinates (s, t) where 0 <= s,t <= 1.
// (0, 0) is the lower-left corner of the viewport.
func (c *Camera) GetRay(s, t float64, sampler core.Sampler) core.Ray {
	rd := core.RandomInUnitDisk(sampler).Multiply(c.lensRadius)
	offset := c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))
	origin := c.origin.Add(offset)

	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(origin)

	return core.NewRay(origin, direction)
}

// Origin returns the lens center
func (c *Camera) Origin() core.Vec3 {
	return c.origin
}

// Forward returns the unit view direction
func (c *Camera) Forward() core.Vec3 {
	return c.w.Negate()
}

// LensRadius returns half the aperture
func (c *Camera) LensRadius() float64 {
	return c.lensRadius
}
