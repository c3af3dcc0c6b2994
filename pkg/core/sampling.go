package core

import (
	"math"
	"math/rand"
)

// Sampler provides random numbers for rendering algorithms.
// Every render loop owns its own Sampler; nothing in the module keeps a
// package-level generator.
type Sampler interface {
	Get1D() float64 // uniform in [0, 1)
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// NewSeededSampler creates a sampler with its own deterministic stream
func NewSeededSampler(seed int64) *RandomSampler {
	return NewRandomSampler(rand.New(rand.NewSource(seed)))
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Uniform returns a uniform real in [min, max)
func Uniform(sampler Sampler, min, max float64) float64 {
	return min + (max-min)*sampler.Get1D()
}

// RandomVector returns a vector with independent components in [0, 1)
func RandomVector(sampler Sampler) Vec3 {
	return Vec3{sampler.Get1D(), sampler.Get1D(), sampler.Get1D()}
}

// RandomVectorRange returns a vector with independent components in [min, max)
func RandomVectorRange(sampler Sampler, min, max float64) Vec3 {
	return Vec3{Uniform(sampler, min, max), Uniform(sampler, min, max), Uniform(sampler, min, max)}
}

// RandomInUnitSphere rejection-samples a point strictly inside the unit ball
func RandomInUnitSphere(sampler Sampler) Vec3 {
	for {
		p := RandomVectorRange(sampler, -1, 1)
		if p.LengthSquared() < 1 {
			return p
		}
	}
}

// RandomUnitVector returns a uniformly distributed point on the unit sphere.
// Added to a surface normal it gives a cosine-weighted Lambertian direction.
func RandomUnitVector(sampler Sampler) Vec3 {
	a := Uniform(sampler, 0, 2*math.Pi)
	z := Uniform(sampler, -1, 1)
	r := math.Sqrt(1 - z*z)
	return Vec3{r * math.Cos(a), r * math.Sin(a), z}
}

// RandomInUnitDisk rejection-samples a point inside the unit disk at z = 0 (for depth of field)
func RandomInUnitDisk(sampler Sampler) Vec3 {
	for {
		p := Vec3{Uniform(sampler, -1, 1), Uniform(sampler, -1, 1), 0}
		if p.LengthSquared() < 1 {
			return p
		}
	}
}

// Reflectance calculates the Fresnel reflectance using Schlick's approximation
func Reflectance(cosine, refractionRatio float64) float64 {
	r0 := (1 - refractionRatio) / (1 + refractionRatio)
	r0 = r0 * r0
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
