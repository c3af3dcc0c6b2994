package material

import (
	"github.com/df07/go-sphere-pathtracer/pkg/core"
)

const tolerance = 1e-10

func vecNear(a, b core.Vec3) bool {
	return a.Subtract(b).Length() < tolerance
}

// sequenceSampler replays fixed values, wrapping around
type sequenceSampler struct {
	values []float64
	index  int
}

func (s *sequenceSampler) Get1D() float64 {
	v := s.values[s.index%len(s.values)]
	s.index++
	return v
}

// recordingSampler passes draws through from a seeded source and remembers them
type recordingSampler struct {
	inner core.Sampler
	draws []float64
}

func newRecordingSampler(seed int64) *recordingSampler {
	return &recordingSampler{inner: core.NewSeededSampler(seed)}
}

func (r *recordingSampler) Get1D() float64 {
	v := r.inner.Get1D()
	r.draws = append(r.draws, v)
	return v
}

func (r *recordingSampler) replay() *sequenceSampler {
	return &sequenceSampler{values: append([]float64(nil), r.draws...)}
}
