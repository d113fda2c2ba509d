package muscle

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/diff/fd"

	"github.com/san-kum/musclesim/internal/curves"
)

func newTestMuscle(t *testing.T, p Params, cfg Config) *Muscle {
	t.Helper()
	m, err := New(p, curves.DeGroote2016(), cfg)
	if err != nil {
		t.Fatalf("new muscle: %v", err)
	}
	return m
}

// derivative is a central difference of a muscle query that must not fail.
func derivative(t *testing.T, f func(x float64) (float64, error), x float64) float64 {
	t.Helper()
	step := 1e-6 * math.Max(math.Abs(x), 1)
	var failed error
	d := fd.Derivative(func(x float64) float64 {
		v, err := f(x)
		if err != nil && failed == nil {
			failed = err
		}
		return v
	}, x, &fd.Settings{Formula: fd.Central, Step: step})
	if failed != nil {
		t.Fatalf("finite difference evaluation: %v", failed)
	}
	return d
}

// assertClose checks a relative tolerance, with an absolute floor for
// values that should both be zero.
func assertClose(t *testing.T, name string, got, want, rel, abs float64) {
	t.Helper()
	diff := math.Abs(got - want)
	scale := math.Max(math.Abs(got), math.Abs(want))
	if diff > rel*scale && diff > abs {
		t.Errorf("%s: got %.12g, want %.12g (rel err %.3g)", name, got, want, diff/math.Max(scale, 1e-300))
	}
}

// checkDerivatives compares both analytic derivatives at (l, ldot, a)
// against central differences of ComputeForce.
func checkDerivatives(t *testing.T, m *Muscle, l, ldot, a float64) {
	t.Helper()
	dl, err := m.ComputeDForceDLength(l, ldot, a)
	if err != nil {
		t.Fatal(err)
	}
	drate, err := m.ComputeDForceDRate(l, ldot, a)
	if err != nil {
		t.Fatal(err)
	}

	numL := derivative(t, func(x float64) (float64, error) { return m.ComputeForce(x, ldot, a) }, l)
	numRate := derivative(t, func(x float64) (float64, error) { return m.ComputeForce(l, x, a) }, ldot)

	floor := 1e-6 * m.params.MaxIsoForce
	assertClose(t, "dF/dl", dl, numL, 1e-6, floor)
	assertClose(t, "dF/dldot", drate, numRate, 1e-6, floor)
}
