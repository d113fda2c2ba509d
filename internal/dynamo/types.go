package dynamo

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (s State) Norm() float64 {
	sum := 0.0
	for _, v := range s {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func (s State) Add(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] + other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

func (s State) Scale(factor float64) State {
	result := make(State, len(s))
	for i := range s {
		result[i] = s[i] * factor
	}
	return result
}

func (s State) Sub(other State) State {
	result := make(State, len(s))
	for i := range s {
		if i < len(other) {
			result[i] = s[i] - other[i]
		} else {
			result[i] = s[i]
		}
	}
	return result
}

// Control holds one activation per actuator.
type Control []float64

// Outputs are named scalar readings from the last evaluation of a system,
// such as actuator force or solver residual.
type Outputs map[string]float64

func (o Outputs) Clone() Outputs {
	c := make(Outputs, len(o))
	for k, v := range o {
		c[k] = v
	}
	return c
}

type System interface {
	Derive(x State, u Control, t float64) (State, error)
	StateDim() int
	ControlDim() int
}

// Stateful systems carry history between steps. AdvanceState is called
// once per accepted step, before the step from t0 to t1 is taken.
type Stateful interface {
	AdvanceState(t0, t1 float64)
}

// Linearizable systems provide the Jacobian of Derive with respect to x.
type Linearizable interface {
	Jacobian(x State, u Control, t float64) (*mat.Dense, error)
}

// Probe exposes the outputs of the most recent Derive.
type Probe interface {
	Outputs() Outputs
}

type Integrator interface {
	Step(sys System, x State, u Control, t float64, dt float64) (State, error)
}

type Controller interface {
	Compute(x State, t float64) Control
}

type Metric interface {
	Name() string
	Observe(x State, u Control, t float64, out Outputs)
	Value() float64
	Reset()
}

type Observer interface {
	OnStep(x State, u Control, t float64, out Outputs)
}

type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}

type Config struct {
	Dt       float64
	Duration float64

	// Start is the time of the initial state, nonzero when resuming.
	Start         float64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            1e-3,
		Duration:      1.0,
		ValidateState: true,
	}
}

type Result struct {
	States     []State
	Controls   []Control
	Outputs    []Outputs
	Times      []float64
	Metrics    map[string]float64
	StepsTaken int
}
