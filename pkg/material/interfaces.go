package material

import (
	"math"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

// Material interface for surfaces that can scatter rays.
// Implementations are immutable and shared by every shape that uses them.
type Material interface {
	// Scatter returns the outgoing ray and attenuation, or false if the
	// incoming ray is absorbed.
	Scatter(rayIn core.Ray, hit HitRecord, sampler core.Sampler) (ScatterResult, bool)
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   core.Ray  // The scattered ray
	Attenuation core.Vec3 // Color attenuation
}

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Surface normal, always facing against the incoming ray
	T         float64   // Parameter t along the ray
	FrontFace bool      // Whether the outward normal already opposed the ray
	Material  Material  // Material of the hit object (shared, not owned)
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// reflect calculates the reflection of a vector v off a surface with normal n
func reflect(v, n core.Vec3) core.Vec3 {
	return v.Subtract(n.Multiply(2 * v.Dot(n)))
}

// refract bends a unit vector through a surface using Snell's law
func refract(uv, n core.Vec3, etaiOverEtat float64) core.Vec3 {
	cosTheta := min(uv.Negate().Dot(n), 1.0)
	parallel := uv.Add(n.Multiply(cosTheta)).Multiply(etaiOverEtat)
	perp := n.Multiply(-math.Sqrt(math.Abs(1.0 - parallel.LengthSquared())))
	return parallel.Add(perp)
}
