package integrator

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/geometry"
)

// ShadowAcneEpsilon is the minimum hit distance, keeping a scattered ray
// from re-hitting the surface it leaves
const ShadowAcneEpsilon = 0.001

var black = core.Vec3{}

// PathTracingIntegrator implements recursive unidirectional path tracing
// lit only by the background gradient
type PathTracingIntegrator struct {
	background Background
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(background Background) *PathTracingIntegrator {
	return &PathTracingIntegrator{background: background}
}

// RayColor computes the color for a single ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, world geometry.Hittable, sampler core.Sampler, depth int) core.Vec3 {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth < 0 {
		return black
	}

	hit, isHit := world.Hit(ray, ShadowAcneEpsilon, math.Inf(1))
	if !isHit {
		return pt.background.Color(ray)
	}

	scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
	if !didScatter {
		return black
	}

	return scatter.Attenuation.MultiplyVec(pt.RayColor(scatter.Scattered, world, sampler, depth-1))
}

// IterativePathTracingIntegrator traces the same paths as
// PathTracingIntegrator with an explicit loop instead of recursion
type IterativePathTracingIntegrator struct {
	background Background
}

// NewIterativePathTracingIntegrator creates a loop-based path tracing integrator
func NewIterativePathTracingIntegrator(background Background) *IterativePathTracingIntegrator {
	return &IterativePathTracingIntegrator{background: background}
}

// RayColor computes the color for a single ray.
// Attenuations are applied innermost first so results match the recursive
// form bit for bit.
func (it *IterativePathTracingIntegrator) RayColor(ray core.Ray, world geometry.Hittable, sampler core.Sampler, depth int) core.Vec3 {
	var attenuations []core.Vec3
	if depth >= 0 {
		attenuations = make([]core.Vec3, 0, min(depth+1, 64))
	}

	var color core.Vec3
	for {
		if depth < 0 {
			color = black
			break
		}

		hit, isHit := world.Hit(ray, ShadowAcneEpsilon, math.Inf(1))
		if !isHit {
			color = it.background.Color(ray)
			break
		}

		scatter, didScatter := hit.Material.Scatter(ray, *hit, sampler)
		if !didScatter {
			color = black
			break
		}

		attenuations = append(attenuations, scatter.Attenuation)
		ray = scatter.Scattered
		depth--
	}

	for i := len(attenuations) - 1; i >= 0; i-- {
		color = attenuations[i].MultiplyVec(color)
	}
	return color
}
