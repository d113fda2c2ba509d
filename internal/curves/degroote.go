package curves

import "math"

// Gaussian is exp(-(x-Center)^2 / Spread).
type Gaussian struct {
	Center float64
	Spread float64
}

func (g Gaussian) Value(x float64) float64 {
	d := x - g.Center
	return math.Exp(-d * d / g.Spread)
}

func (g Gaussian) Derivative(x float64) float64 {
	d := x - g.Center
	return -2 * d / g.Spread * math.Exp(-d*d/g.Spread)
}

// ExponentialPassive rises from zero at x = 1 and reaches 1 at x = 1+Strain.
// It is not clamped, so it goes slightly negative below optimal length.
type ExponentialPassive struct {
	Strain float64
	Shape  float64
}

func (p ExponentialPassive) Value(x float64) float64 {
	return (math.Exp(p.Shape*(x-1)/p.Strain) - 1) / (math.Exp(p.Shape) - 1)
}

func (p ExponentialPassive) Derivative(x float64) float64 {
	k := p.Shape / p.Strain
	return k * math.Exp(k*(x-1)) / (math.Exp(p.Shape) - 1)
}

// AsinhVelocity is shifted so that it passes through 1 at zero velocity.
// Negative velocities shorten the fiber.
type AsinhVelocity struct {
	D1, D2, D3 float64
}

func (v AsinhVelocity) Value(x float64) float64 {
	return v.D1*(math.Asinh(v.D2*x+v.D3)-math.Asinh(v.D3)) + 1
}

func (v AsinhVelocity) Derivative(x float64) float64 {
	s := v.D2*x + v.D3
	return v.D1 * v.D2 / math.Sqrt(s*s+1)
}

// ExponentialTendon is zero at and below slack length (x <= 1).
type ExponentialTendon struct {
	Scale     float64
	Stiffness float64
}

func (t ExponentialTendon) Value(x float64) float64 {
	if x <= 1 {
		return 0
	}
	return t.Scale * (math.Exp(t.Stiffness*(x-1)) - 1)
}

func (t ExponentialTendon) Derivative(x float64) float64 {
	if x <= 1 {
		return 0
	}
	return t.Scale * t.Stiffness * math.Exp(t.Stiffness*(x-1))
}

const (
	DefaultActiveSpread    = 0.45
	DefaultPassiveStrain   = 0.6
	DefaultPassiveShape    = 4.0
	DefaultTendonScale     = 0.2
	DefaultTendonStiffness = 35.0
)

// DeGroote2016 returns smooth closed-form curves after De Groote et al.,
// "Evaluation of direct collocation optimal control problem formulations for
// solving the muscle redundancy problem" (2016).
func DeGroote2016() CurveSet {
	return CurveSet{
		ActiveForceLength:  Gaussian{Center: 1, Spread: DefaultActiveSpread},
		PassiveForceLength: ExponentialPassive{Strain: DefaultPassiveStrain, Shape: DefaultPassiveShape},
		ForceVelocity:      AsinhVelocity{D1: -0.318, D2: -8.149, D3: -0.374},
		TendonForceLength:  ExponentialTendon{Scale: DefaultTendonScale, Stiffness: DefaultTendonStiffness},
	}
}

// Stiff returns DeGroote2016 with the tendon stiffness multiplied by factor.
// As factor grows the tendon approaches an inextensible one.
func Stiff(factor float64) CurveSet {
	cs := DeGroote2016()
	cs.TendonForceLength = ExponentialTendon{
		Scale:     DefaultTendonScale,
		Stiffness: DefaultTendonStiffness * factor,
	}
	return cs
}
