package curves

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
)

func TestDeGroote2016Anchors(t *testing.T) {
	cs := DeGroote2016()
	require.NoError(t, cs.Validate())

	assert.InDelta(t, 1.0, cs.ActiveForceLength.Value(1), 1e-15)
	assert.InDelta(t, 0.0, cs.PassiveForceLength.Value(1), 1e-15)
	assert.InDelta(t, 1.0, cs.PassiveForceLength.Value(1+DefaultPassiveStrain), 1e-12)
	assert.InDelta(t, 1.0, cs.ForceVelocity.Value(0), 1e-15)
	assert.Less(t, cs.ForceVelocity.Value(-1), 0.05)
	assert.Greater(t, cs.ForceVelocity.Value(0.5), 1.0)
	assert.Equal(t, 0.0, cs.TendonForceLength.Value(0.9))
	assert.Equal(t, 0.0, cs.TendonForceLength.Value(1))
	assert.InDelta(t, 1.0, cs.TendonForceLength.Value(1.05), 0.2)
}

func TestCurveDerivatives(t *testing.T) {
	cs := DeGroote2016()
	tests := []struct {
		name string
		c    Curve
		xs   []float64
	}{
		{"active", cs.ActiveForceLength, []float64{0.4, 0.9, 1.0, 1.3}},
		{"passive", cs.PassiveForceLength, []float64{0.5, 1.0, 1.4}},
		{"velocity", cs.ForceVelocity, []float64{-0.9, -0.2, 0, 0.7}},
		{"tendon", cs.TendonForceLength, []float64{1.01, 1.04, 1.08}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, x := range tt.xs {
				want := fd.Derivative(tt.c.Value, x, &fd.Settings{Formula: fd.Central, Step: 1e-6})
				assert.InDelta(t, want, tt.c.Derivative(x), 1e-6*math.Max(1, math.Abs(want)), "x=%g", x)
			}
		})
	}
}

func TestStiffKeepsSlackLength(t *testing.T) {
	soft := DeGroote2016().TendonForceLength
	stiff := Stiff(100).TendonForceLength

	assert.Equal(t, 0.0, stiff.Value(1))
	assert.Greater(t, stiff.Value(1.001), soft.Value(1.001))
	assert.Greater(t, stiff.Derivative(1.001), 50*soft.Derivative(1.001))
}

func TestValidateMissing(t *testing.T) {
	cs := DeGroote2016()
	cs.ForceVelocity = nil
	assert.ErrorIs(t, cs.Validate(), ErrMissingCurve)
}

func TestHermiteSplineInterpolatesKnots(t *testing.T) {
	sp, err := NewHermiteSpline([]float64{0, 1, 2}, []float64{0, 1, 0}, []float64{1, 0, -1})
	require.NoError(t, err)

	assert.InDelta(t, 0.0, sp.Value(0), 1e-15)
	assert.InDelta(t, 1.0, sp.Value(1), 1e-15)
	assert.InDelta(t, 0.0, sp.Value(2), 1e-15)
	assert.InDelta(t, 0.0, sp.Derivative(1), 1e-15)

	// linear beyond the ends
	assert.InDelta(t, -0.5, sp.Value(-0.5), 1e-15)
	assert.InDelta(t, -1.0, sp.Value(3), 1e-15)
	assert.Equal(t, -1.0, sp.Derivative(5))
}

func TestHermiteSplineRejectsBadKnots(t *testing.T) {
	tests := []struct {
		name     string
		x, y, dy []float64
	}{
		{"too few", []float64{0}, []float64{0}, []float64{0}},
		{"not increasing", []float64{0, 0}, []float64{0, 1}, []float64{0, 0}},
		{"length mismatch", []float64{0, 1}, []float64{0}, []float64{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewHermiteSpline(tt.x, tt.y, tt.dy)
			assert.ErrorIs(t, err, ErrBadKnots)
		})
	}
}

func TestTabulatedMatchesClosedForm(t *testing.T) {
	cs := DeGroote2016()
	tab, err := Tabulated(cs, 201)
	require.NoError(t, err)

	for _, x := range []float64{0.6, 0.95, 1.2} {
		assert.InDelta(t, cs.ActiveForceLength.Value(x), tab.ActiveForceLength.Value(x), 1e-6)
		assert.InDelta(t, cs.PassiveForceLength.Value(x), tab.PassiveForceLength.Value(x), 1e-6)
	}
	for _, v := range []float64{-0.8, 0, 0.4} {
		assert.InDelta(t, cs.ForceVelocity.Value(v), tab.ForceVelocity.Value(v), 1e-5)
	}
	assert.Equal(t, 0.0, tab.TendonForceLength.Value(0.98))
	assert.InDelta(t, cs.TendonForceLength.Value(1.03), tab.TendonForceLength.Value(1.03), 1e-6)
}

func TestSample(t *testing.T) {
	xs, ys := Sample(Gaussian{Center: 1, Spread: 0.45}, 0, 2, 5)
	require.Len(t, xs, 5)
	assert.Equal(t, []float64{0, 0.5, 1, 1.5, 2}, xs)
	assert.InDelta(t, 1.0, ys[2], 1e-15)
	assert.InDelta(t, ys[1], ys[3], 1e-15)
}
