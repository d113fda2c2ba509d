package physics

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/muscle"
)

// HangingMass is a point mass suspended below a single actuator. The state
// is the actuator length and its rate, [l, ldot]; gravity lengthens the
// actuator and its tension shortens it:
//
//	m*lddot = m*g - F(l, ldot, a)
type HangingMass struct {
	Muscle  *muscle.Muscle
	Mass    float64
	Gravity float64

	out dynamo.Outputs
}

func NewHangingMass(m *muscle.Muscle, mass float64) *HangingMass {
	return &HangingMass{
		Muscle:  m,
		Mass:    mass,
		Gravity: DefaultGravity,
		out:     make(dynamo.Outputs),
	}
}

func (h *HangingMass) StateDim() int   { return 2 }
func (h *HangingMass) ControlDim() int { return 1 }

func (h *HangingMass) Derive(x dynamo.State, u dynamo.Control, t float64) (dynamo.State, error) {
	if len(x) != 2 {
		return nil, fmt.Errorf("%w: hanging mass needs 2 states, got %d", dynamo.ErrDimensionMismatch, len(x))
	}
	a := activation(u, 0)
	f, err := h.Muscle.ComputeForce(x[0], x[1], a)
	if err != nil {
		return nil, err
	}
	probe(h.out, "", h.Muscle, f, a)
	return dynamo.State{x[1], h.Gravity - f/h.Mass}, nil
}

func (h *HangingMass) Jacobian(x dynamo.State, u dynamo.Control, t float64) (*mat.Dense, error) {
	if len(x) != 2 {
		return nil, fmt.Errorf("%w: hanging mass needs 2 states, got %d", dynamo.ErrDimensionMismatch, len(x))
	}
	_, dl, drate, err := h.Muscle.ComputeTangent(x[0], x[1], activation(u, 0))
	if err != nil {
		return nil, err
	}
	return mat.NewDense(2, 2, []float64{
		0, 1,
		-dl / h.Mass, -drate / h.Mass,
	}), nil
}

func (h *HangingMass) AdvanceState(t0, t1 float64) { h.Muscle.AdvanceState(t0, t1) }

func (h *HangingMass) Outputs() dynamo.Outputs { return h.out }

// Weight is the load the actuator carries at rest.
func (h *HangingMass) Weight() float64 { return h.Mass * h.Gravity }

func (h *HangingMass) GetParams() map[string]float64 {
	params := map[string]float64{
		"mass":    h.Mass,
		"gravity": h.Gravity,
	}
	muscleParams(params, "", h.Muscle)
	return params
}

func (h *HangingMass) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		if err := positive(name, value); err != nil {
			return err
		}
		h.Mass = value
	case "gravity":
		h.Gravity = value
	default:
		ok, err := setMuscleParam(h.Muscle, name, value)
		if !ok {
			return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
		}
		return err
	}
	return nil
}
