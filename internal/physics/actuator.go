package physics

import (
	"fmt"

	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/muscle"
)

const (
	DefaultMass    = 20.0
	DefaultGravity = 9.81
	DefaultGap     = 0.64
)

// activation reads channel i of u clamped to [0, 1]. Missing channels are
// relaxed.
func activation(u dynamo.Control, i int) float64 {
	if i >= len(u) {
		return 0
	}
	return min(max(u[i], 0), 1)
}

func probe(out dynamo.Outputs, prefix string, m *muscle.Muscle, force, a float64) {
	out[prefix+"force"] = force
	out[prefix+"activation"] = a
	out[prefix+"muscle_length"] = m.MuscleLength()
	out[prefix+"tendon_length"] = m.TendonLength()
	out[prefix+"fiber_length"] = m.FiberLength()
	out[prefix+"pennation"] = m.PennationAngle()
	out[prefix+"fiber_velocity"] = m.NormalizedFiberVelocity()
	out[prefix+"residual"] = m.Residual()
	out[prefix+"iterations"] = float64(m.Iterations())
}

func muscleParams(params map[string]float64, prefix string, m *muscle.Muscle) {
	p := m.Params()
	params[prefix+"max_iso_force"] = p.MaxIsoForce
	params[prefix+"opt_fiber_length"] = p.OptFiberLength
	params[prefix+"opt_pennation_angle"] = p.OptPennationAngle
	params[prefix+"tendon_slack_length"] = p.TendonSlackLength
	params[prefix+"max_contraction_velocity"] = p.MaxContractionVelocity
	params[prefix+"fiber_damping"] = p.FiberDamping
}

// setMuscleParam updates one named muscle parameter. It reports false when
// the name is not a muscle parameter.
func setMuscleParam(m *muscle.Muscle, name string, value float64) (bool, error) {
	p := m.Params()
	switch name {
	case "max_iso_force":
		p.MaxIsoForce = value
	case "opt_fiber_length":
		p.OptFiberLength = value
	case "opt_pennation_angle":
		p.OptPennationAngle = value
	case "tendon_slack_length":
		p.TendonSlackLength = value
	case "max_contraction_velocity":
		p.MaxContractionVelocity = value
	case "fiber_damping":
		p.FiberDamping = value
	default:
		return false, nil
	}
	if err := m.SetParams(p); err != nil {
		return true, fmt.Errorf("%w: %w", dynamo.ErrParameterBounds, err)
	}
	return true, nil
}

func positive(name string, value float64) error {
	if value <= 0 {
		return fmt.Errorf("%w: %s must be positive, got %g", dynamo.ErrParameterBounds, name, value)
	}
	return nil
}
