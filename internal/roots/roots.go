// Package roots finds roots of scalar functions on a bracket.
//
// All methods take the bracket endpoints together with the function values
// already computed there, so callers that evaluated the ends while choosing
// the bracket do not pay for them twice.
package roots

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	ErrNoConvergence = errors.New("roots: iteration limit reached")
	ErrNotBracketed  = errors.New("roots: function values at bracket ends have the same sign")
)

// Func is a scalar function with its first derivative. Methods that do not
// need the derivative ignore it.
type Func interface {
	Eval(x float64) (g, dg float64)
}

// FuncOf adapts a plain function pair to Func.
type FuncOf func(x float64) (float64, float64)

func (f FuncOf) Eval(x float64) (float64, float64) { return f(x) }

type Settings struct {
	XTol    float64
	FTol    float64
	MaxIter int
}

func DefaultSettings() Settings {
	return Settings{XTol: 1e-12, FTol: 1e-12, MaxIter: 100}
}

type Result struct {
	Root       float64
	Residual   float64
	Iterations int
}

type Method int

const (
	MethodNewton Method = iota
	MethodBrent
	MethodBisect
)

func (m Method) String() string {
	switch m {
	case MethodNewton:
		return "newton"
	case MethodBrent:
		return "brent"
	case MethodBisect:
		return "bisect"
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(s) {
	case "newton", "":
		return MethodNewton, nil
	case "brent":
		return MethodBrent, nil
	case "bisect", "bisection":
		return MethodBisect, nil
	}
	return 0, fmt.Errorf("unknown root method: %s", s)
}

// Solve dispatches to the method m.
func Solve(m Method, f Func, a, fa, b, fb float64, s Settings) (Result, error) {
	switch m {
	case MethodBrent:
		return Brent(f, a, fa, b, fb, s)
	case MethodBisect:
		return Bisect(f, a, fa, b, fb, s)
	default:
		return Newton(f, a, fa, b, fb, s)
	}
}

// endpoint reports whether an end of the bracket already satisfies the
// residual tolerance, or that the bracket is invalid.
func endpoint(a, fa, b, fb float64, s Settings) (Result, bool, error) {
	if math.Abs(fa) <= s.FTol {
		return Result{Root: a, Residual: fa}, true, nil
	}
	if math.Abs(fb) <= s.FTol {
		return Result{Root: b, Residual: fb}, true, nil
	}
	if (fa < 0) == (fb < 0) {
		return Result{}, true, fmt.Errorf("%w: f(%g)=%g, f(%g)=%g", ErrNotBracketed, a, fa, b, fb)
	}
	return Result{}, false, nil
}

// Newton takes Newton steps from the midpoint and falls back to bisection
// whenever a step would leave the current bracket.
func Newton(f Func, a, fa, b, fb float64, s Settings) (Result, error) {
	if r, done, err := endpoint(a, fa, b, fb, s); done {
		return r, err
	}

	// lo holds the negative side, hi the positive side.
	lo, hi := a, b
	if fa > 0 {
		lo, hi = b, a
	}

	x := 0.5 * (a + b)
	var g float64
	for iter := 1; iter <= s.MaxIter; iter++ {
		var dg float64
		g, dg = f.Eval(x)
		if math.Abs(g) <= s.FTol {
			return Result{Root: x, Residual: g, Iterations: iter}, nil
		}
		if g < 0 {
			lo = x
		} else {
			hi = x
		}
		if math.Abs(hi-lo) <= s.XTol {
			return Result{Root: x, Residual: g, Iterations: iter}, nil
		}

		xn := x - g/dg
		left, right := math.Min(lo, hi), math.Max(lo, hi)
		if dg == 0 || math.IsNaN(xn) || xn <= left || xn >= right {
			xn = 0.5 * (lo + hi)
		}
		x = xn
	}
	return Result{Root: x, Residual: g, Iterations: s.MaxIter}, ErrNoConvergence
}

// Bisect halves the bracket until either tolerance is met.
func Bisect(f Func, a, fa, b, fb float64, s Settings) (Result, error) {
	if r, done, err := endpoint(a, fa, b, fb, s); done {
		return r, err
	}

	lo, hi := a, b
	if fa > 0 {
		lo, hi = b, a
	}
	var x, g float64
	for iter := 1; iter <= s.MaxIter; iter++ {
		x = 0.5 * (lo + hi)
		g, _ = f.Eval(x)
		if math.Abs(g) <= s.FTol || 0.5*math.Abs(hi-lo) <= s.XTol {
			return Result{Root: x, Residual: g, Iterations: iter}, nil
		}
		if g < 0 {
			lo = x
		} else {
			hi = x
		}
	}
	return Result{Root: x, Residual: g, Iterations: s.MaxIter}, ErrNoConvergence
}

// Brent is the Brent-Dekker method: inverse quadratic interpolation and
// secant steps guarded by bisection.
func Brent(f Func, a, fa, b, fb float64, s Settings) (Result, error) {
	if r, done, err := endpoint(a, fa, b, fb, s); done {
		return r, err
	}

	const eps = 2.220446049250313e-16
	c, fc := b, fb
	var d, e float64
	for iter := 1; iter <= s.MaxIter; iter++ {
		if (fb > 0 && fc > 0) || (fb < 0 && fc < 0) {
			c, fc = a, fa
			d = b - a
			e = d
		}
		if math.Abs(fc) < math.Abs(fb) {
			a, b, c = b, c, b
			fa, fb, fc = fb, fc, fb
		}

		tol := 2*eps*math.Abs(b) + 0.5*s.XTol
		xm := 0.5 * (c - b)
		if math.Abs(xm) <= tol || math.Abs(fb) <= s.FTol {
			return Result{Root: b, Residual: fb, Iterations: iter}, nil
		}

		if math.Abs(e) >= tol && math.Abs(fa) > math.Abs(fb) {
			var p, q float64
			sr := fb / fa
			if a == c {
				p = 2 * xm * sr
				q = 1 - sr
			} else {
				q = fa / fc
				r := fb / fc
				p = sr * (2*xm*q*(q-r) - (b-a)*(r-1))
				q = (q - 1) * (r - 1) * (sr - 1)
			}
			if p > 0 {
				q = -q
			}
			p = math.Abs(p)
			min1 := 3*xm*q - math.Abs(tol*q)
			min2 := math.Abs(e * q)
			if 2*p < math.Min(min1, min2) {
				e = d
				d = p / q
			} else {
				d = xm
				e = d
			}
		} else {
			d = xm
			e = d
		}

		a, fa = b, fb
		if math.Abs(d) > tol {
			b += d
		} else {
			b += math.Copysign(tol, xm)
		}
		fb, _ = f.Eval(b)
	}
	return Result{Root: b, Residual: fb, Iterations: s.MaxIter}, ErrNoConvergence
}
