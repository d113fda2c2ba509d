package curves

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"
)

var (
	ErrMissingCurve = errors.New("curves: curve set is incomplete")
	ErrBadKnots     = errors.New("curves: knots must be strictly increasing")
)

type Curve interface {
	Value(x float64) float64
	Derivative(x float64) float64
}

// CurveSet holds the four curves of a muscle. Arguments are normalized fiber
// length, normalized fiber velocity and normalized tendon length.
type CurveSet struct {
	ActiveForceLength  Curve
	PassiveForceLength Curve
	ForceVelocity      Curve
	TendonForceLength  Curve
}

func (cs CurveSet) Validate() error {
	named := []struct {
		name string
		c    Curve
	}{
		{"active force-length", cs.ActiveForceLength},
		{"passive force-length", cs.PassiveForceLength},
		{"force-velocity", cs.ForceVelocity},
		{"tendon force-length", cs.TendonForceLength},
	}
	for _, n := range named {
		if n.c == nil {
			return fmt.Errorf("%w: missing %s", ErrMissingCurve, n.name)
		}
	}
	return nil
}

// Sample evaluates c at n evenly spaced points on [x0, x1].
func Sample(c Curve, x0, x1 float64, n int) (xs, ys []float64) {
	if n < 2 {
		n = 2
	}
	xs = floats.Span(make([]float64, n), x0, x1)
	ys = make([]float64, n)
	for i, x := range xs {
		ys[i] = c.Value(x)
	}
	return xs, ys
}

// SampleDerivative is Sample for the first derivative.
func SampleDerivative(c Curve, x0, x1 float64, n int) (xs, dys []float64) {
	if n < 2 {
		n = 2
	}
	xs = floats.Span(make([]float64, n), x0, x1)
	dys = make([]float64, n)
	for i, x := range xs {
		dys[i] = c.Derivative(x)
	}
	return xs, dys
}
