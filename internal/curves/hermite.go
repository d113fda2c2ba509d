package curves

import (
	"fmt"
	"sort"
)

// HermiteSpline interpolates knot values and slopes with cubic Hermite
// segments and extrapolates linearly past the end knots.
type HermiteSpline struct {
	x, y, dy []float64
}

func NewHermiteSpline(x, y, dy []float64) (*HermiteSpline, error) {
	if len(x) < 2 || len(y) != len(x) || len(dy) != len(x) {
		return nil, fmt.Errorf("%w: need at least 2 knots with matching values and slopes", ErrBadKnots)
	}
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return nil, fmt.Errorf("%w: x[%d]=%g after x[%d]=%g", ErrBadKnots, i, x[i], i-1, x[i-1])
		}
	}
	s := &HermiteSpline{
		x:  append([]float64(nil), x...),
		y:  append([]float64(nil), y...),
		dy: append([]float64(nil), dy...),
	}
	return s, nil
}

// Tabulate builds a spline from n evenly spaced samples of c on [x0, x1].
func Tabulate(c Curve, x0, x1 float64, n int) (*HermiteSpline, error) {
	xs, ys := Sample(c, x0, x1, n)
	_, dys := SampleDerivative(c, x0, x1, n)
	return NewHermiteSpline(xs, ys, dys)
}

func (s *HermiteSpline) Knots() int {
	return len(s.x)
}

func (s *HermiteSpline) Value(x float64) float64 {
	n := len(s.x)
	if x <= s.x[0] {
		return s.y[0] + s.dy[0]*(x-s.x[0])
	}
	if x >= s.x[n-1] {
		return s.y[n-1] + s.dy[n-1]*(x-s.x[n-1])
	}
	i, t, h := s.locate(x)
	t2 := t * t
	t3 := t2 * t
	h00 := 2*t3 - 3*t2 + 1
	h10 := t3 - 2*t2 + t
	h01 := -2*t3 + 3*t2
	h11 := t3 - t2
	return h00*s.y[i] + h10*h*s.dy[i] + h01*s.y[i+1] + h11*h*s.dy[i+1]
}

func (s *HermiteSpline) Derivative(x float64) float64 {
	n := len(s.x)
	if x <= s.x[0] {
		return s.dy[0]
	}
	if x >= s.x[n-1] {
		return s.dy[n-1]
	}
	i, t, h := s.locate(x)
	t2 := t * t
	d00 := 6*t2 - 6*t
	d10 := 3*t2 - 4*t + 1
	d01 := -6*t2 + 6*t
	d11 := 3*t2 - 2*t
	return (d00*s.y[i]+d01*s.y[i+1])/h + d10*s.dy[i] + d11*s.dy[i+1]
}

// locate returns the segment containing x, the local parameter in [0, 1]
// and the segment width. x must lie strictly inside the knot range.
func (s *HermiteSpline) locate(x float64) (int, float64, float64) {
	i := sort.SearchFloat64s(s.x, x) - 1
	if i < 0 {
		i = 0
	}
	if i > len(s.x)-2 {
		i = len(s.x) - 2
	}
	h := s.x[i+1] - s.x[i]
	return i, (x - s.x[i]) / h, h
}

// Tabulated converts cs into Hermite splines with n knots per curve over
// the ranges a muscle visits in practice.
func Tabulated(cs CurveSet, n int) (CurveSet, error) {
	ranges := []struct {
		c      Curve
		x0, x1 float64
	}{
		{cs.ActiveForceLength, 0, 3},
		{cs.PassiveForceLength, 0, 1.8},
		{cs.ForceVelocity, -1, 1.5},
		{cs.TendonForceLength, 1, 1.1},
	}
	out := make([]Curve, len(ranges))
	for i, r := range ranges {
		if r.c == nil {
			return CurveSet{}, ErrMissingCurve
		}
		sp, err := Tabulate(r.c, r.x0, r.x1, n)
		if err != nil {
			return CurveSet{}, err
		}
		out[i] = sp
	}
	return CurveSet{
		ActiveForceLength:  out[0],
		PassiveForceLength: out[1],
		ForceVelocity:      out[2],
		TendonForceLength:  out[3],
	}, nil
}
