package sim

import (
	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/muscle"
)

// SweepPoint is one steady evaluation of an actuator.
type SweepPoint struct {
	Length        float64
	Activation    float64
	Force         float64
	DForceDLength float64
	DForceDRate   float64
	MuscleLength  float64
	Iterations    int
	Err           error
}

// Sweep evaluates fresh actuators over the grid of lengths and activations
// at a fixed lengthening rate, in parallel. Points are ordered by
// activation, then length. A point whose solve fails keeps its error and
// the sweep continues.
func Sweep(build func() (*muscle.Muscle, error), lengths, activations []float64, rate float64) ([]SweepPoint, error) {
	// fail early on a bad factory rather than once per point
	if _, err := build(); err != nil {
		return nil, err
	}

	n := len(lengths) * len(activations)
	points := make([]SweepPoint, n)

	dynamo.ParallelFor(n, 16, func(start, end int) {
		for k := start; k < end; k++ {
			p := &points[k]
			p.Activation = activations[k/len(lengths)]
			p.Length = lengths[k%len(lengths)]
			m, err := build()
			if err != nil {
				p.Err = err
				continue
			}
			p.Force, p.DForceDLength, p.DForceDRate, p.Err = m.ComputeTangent(p.Length, rate, p.Activation)
			p.MuscleLength = m.MuscleLength()
			p.Iterations = m.Iterations()
		}
	})

	return points, nil
}
