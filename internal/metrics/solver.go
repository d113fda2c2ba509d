package metrics

import (
	"math"
	"strings"

	"github.com/san-kum/musclesim/internal/dynamo"
)

// MaxResidual tracks the largest equilibrium residual reported under any
// output ending in "residual".
type MaxResidual struct {
	max float64
}

func NewMaxResidual() *MaxResidual { return &MaxResidual{} }

func (m *MaxResidual) Name() string { return "max_residual" }

func (m *MaxResidual) Observe(x dynamo.State, u dynamo.Control, t float64, out dynamo.Outputs) {
	for k, v := range out {
		if strings.HasSuffix(k, "residual") {
			m.max = math.Max(m.max, math.Abs(v))
		}
	}
}

func (m *MaxResidual) Value() float64 { return m.max }
func (m *MaxResidual) Reset()         { m.max = 0 }

// SolverIterations is the mean number of root-finding iterations per step,
// summed over actuators.
type SolverIterations struct {
	sum     float64
	samples int
}

func NewSolverIterations() *SolverIterations { return &SolverIterations{} }

func (s *SolverIterations) Name() string { return "solver_iterations" }

func (s *SolverIterations) Observe(x dynamo.State, u dynamo.Control, t float64, out dynamo.Outputs) {
	for k, v := range out {
		if strings.HasSuffix(k, "iterations") {
			s.sum += v
		}
	}
	s.samples++
}

func (s *SolverIterations) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

func (s *SolverIterations) Reset() {
	s.sum = 0
	s.samples = 0
}
