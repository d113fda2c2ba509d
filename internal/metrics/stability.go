package metrics

import "github.com/san-kum/musclesim/internal/dynamo"

// LengthRange is the fraction of steps on which the actuator length x[0]
// stayed inside [lo, hi].
type LengthRange struct {
	name       string
	lo, hi     float64
	violations int
	samples    int
}

func NewLengthRange(lo, hi float64) *LengthRange {
	return &LengthRange{
		name: "length_in_range",
		lo:   lo,
		hi:   hi,
	}
}

func (s *LengthRange) Name() string {
	return s.name
}

func (s *LengthRange) Observe(x dynamo.State, u dynamo.Control, t float64, out dynamo.Outputs) {
	if len(x) == 0 {
		return
	}
	s.samples++
	if x[0] < s.lo || x[0] > s.hi {
		s.violations++
	}
}

func (s *LengthRange) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *LengthRange) Reset() {
	s.violations = 0
	s.samples = 0
}
