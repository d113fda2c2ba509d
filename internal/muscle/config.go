package muscle

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/san-kum/musclesim/internal/roots"
)

const (
	// ResidualTolerance bounds the normalized force imbalance of a solved
	// equilibrium.
	ResidualTolerance = 2.5e-10

	DefaultMaxIterations = 100

	bootstrapPasses = 3
	polishSteps     = 2
)

// VelocityMode selects how the fiber velocity is tied to the muscle length
// during an equilibrium solve.
type VelocityMode int

const (
	// VelocityFromLength differences the muscle length against the previous
	// step.
	VelocityFromLength VelocityMode = iota
	// VelocityFromTendon differences the tendon length instead and adds the
	// external lengthening rate.
	VelocityFromTendon
	// VelocityKnown fixes the velocity before the solve from the lengthening
	// rate and the previous step's stiffness split.
	VelocityKnown
)

func (v VelocityMode) String() string {
	switch v {
	case VelocityFromLength:
		return "length"
	case VelocityFromTendon:
		return "tendon"
	case VelocityKnown:
		return "known"
	}
	return fmt.Sprintf("VelocityMode(%d)", int(v))
}

func ParseVelocityMode(s string) (VelocityMode, error) {
	switch strings.ToLower(s) {
	case "length", "":
		return VelocityFromLength, nil
	case "tendon":
		return VelocityFromTendon, nil
	case "known", "rate":
		return VelocityKnown, nil
	}
	return 0, fmt.Errorf("unknown velocity mode: %s", s)
}

// Config selects the solver behavior of a muscle. It is fixed at
// construction.
type Config struct {
	Method        roots.Method
	Velocity      VelocityMode
	MaxIterations int
	Logger        *slog.Logger
}

func DefaultConfig() Config {
	return Config{
		Method:        roots.MethodNewton,
		Velocity:      VelocityFromLength,
		MaxIterations: DefaultMaxIterations,
	}
}
