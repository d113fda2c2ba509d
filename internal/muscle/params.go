package muscle

import (
	"fmt"
	"math"
)

const (
	DefaultMaxIsoForce            = 1000.0
	DefaultOptFiberLength         = 0.1
	DefaultTendonSlackLength      = 0.2
	DefaultMaxContractionVelocity = 10.0
)

// Params are the physical parameters of a muscle-tendon unit. Lengths are in
// meters, angles in radians and the contraction velocity in optimal fiber
// lengths per second.
type Params struct {
	MaxIsoForce            float64 `yaml:"max_iso_force" json:"max_iso_force"`
	OptFiberLength         float64 `yaml:"opt_fiber_length" json:"opt_fiber_length"`
	OptPennationAngle      float64 `yaml:"opt_pennation_angle" json:"opt_pennation_angle"`
	TendonSlackLength      float64 `yaml:"tendon_slack_length" json:"tendon_slack_length"`
	MaxContractionVelocity float64 `yaml:"max_contraction_velocity" json:"max_contraction_velocity"`
	FiberDamping           float64 `yaml:"fiber_damping" json:"fiber_damping"`
	IgnoreForceVelocity    bool    `yaml:"ignore_force_velocity" json:"ignore_force_velocity"`
	RigidTendon            bool    `yaml:"rigid_tendon" json:"rigid_tendon"`
}

func DefaultParams() Params {
	return Params{
		MaxIsoForce:            DefaultMaxIsoForce,
		OptFiberLength:         DefaultOptFiberLength,
		TendonSlackLength:      DefaultTendonSlackLength,
		MaxContractionVelocity: DefaultMaxContractionVelocity,
	}
}

func (p Params) Validate() error {
	checks := []struct {
		name string
		val  float64
		ok   bool
	}{
		{"max_iso_force", p.MaxIsoForce, p.MaxIsoForce > 0},
		{"opt_fiber_length", p.OptFiberLength, p.OptFiberLength > 0},
		{"opt_pennation_angle", p.OptPennationAngle, p.OptPennationAngle >= 0 && p.OptPennationAngle < math.Pi/2},
		{"tendon_slack_length", p.TendonSlackLength, p.TendonSlackLength >= 0},
		{"max_contraction_velocity", p.MaxContractionVelocity, p.MaxContractionVelocity > 0},
		{"fiber_damping", p.FiberDamping, p.FiberDamping >= 0},
	}
	for _, c := range checks {
		if math.IsNaN(c.val) || math.IsInf(c.val, 0) || !c.ok {
			return fmt.Errorf("%w: %s = %g", ErrInvalidParams, c.name, c.val)
		}
	}
	return nil
}
