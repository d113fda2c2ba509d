package muscle

import (
	"errors"
	"fmt"
)

var (
	// ErrNoConvergence indicates the equilibrium root find hit its iteration cap.
	ErrNoConvergence = errors.New("muscle: equilibrium solve did not converge")

	// ErrStateVersion indicates a checkpoint taken under a different tendon mode.
	ErrStateVersion = errors.New("muscle: state version mismatch")

	// ErrStateBuffer indicates a checkpoint buffer ran out of values.
	ErrStateBuffer = errors.New("muscle: state buffer exhausted")

	// ErrInvalidParams indicates a muscle parameter outside its valid range.
	ErrInvalidParams = errors.New("muscle: invalid parameters")
)

// ConvergenceError carries the inputs of a failed equilibrium solve.
type ConvergenceError struct {
	Length     float64
	Rate       float64
	Activation float64
	Iterations int
	Residual   float64
	Bracket    [2]float64
	Wrapped    error
}

func (e *ConvergenceError) Error() string {
	return fmt.Sprintf("muscle: no equilibrium after %d iterations (l=%g, ldot=%g, a=%g, residual=%.3g, bracket=[%g, %g])",
		e.Iterations, e.Length, e.Rate, e.Activation, e.Residual, e.Bracket[0], e.Bracket[1])
}

func (e *ConvergenceError) Is(target error) bool {
	return target == ErrNoConvergence
}

func (e *ConvergenceError) Unwrap() error {
	return e.Wrapped
}
