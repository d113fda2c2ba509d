package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/diff/fd"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/musclesim/internal/curves"
	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/muscle"
)

func newMuscle(t *testing.T, rigid bool) *muscle.Muscle {
	t.Helper()
	p := muscle.DefaultParams()
	p.RigidTendon = rigid
	m, err := muscle.New(p, curves.DeGroote2016(), muscle.DefaultConfig())
	require.NoError(t, err)
	return m
}

// numericJacobian differences Derive with the muscle solved from scratch at
// every point.
func numericJacobian(t *testing.T, sys dynamo.System, x dynamo.State, u dynamo.Control) *mat.Dense {
	t.Helper()
	n := len(x)
	jac := mat.NewDense(n, n, nil)
	fd.Jacobian(jac, func(y, x []float64) {
		dx, err := sys.Derive(x, u, 0)
		require.NoError(t, err)
		copy(y, dx)
	}, x, &fd.JacobianSettings{Formula: fd.Central})
	return jac
}

func TestHangingMassDerive(t *testing.T) {
	m := newMuscle(t, true)
	sys := NewHangingMass(m, 50)

	x := dynamo.State{0.32, 0.05}
	dx, err := sys.Derive(x, dynamo.Control{1}, 0)
	require.NoError(t, err)

	f, err := m.ComputeForce(0.32, 0.05, 1)
	require.NoError(t, err)
	assert.Equal(t, 0.05, dx[0])
	assert.InDelta(t, DefaultGravity-f/50, dx[1], 1e-12)

	out := sys.Outputs()
	assert.Equal(t, f, out["force"])
	assert.Equal(t, 1.0, out["activation"])
	assert.InDelta(t, 0.12, out["muscle_length"], 1e-15)
}

func TestActivationClamped(t *testing.T) {
	m := newMuscle(t, true)
	sys := NewHangingMass(m, 50)

	_, err := sys.Derive(dynamo.State{0.31, 0}, dynamo.Control{1.7}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1.0, sys.Outputs()["activation"])

	_, err = sys.Derive(dynamo.State{0.31, 0}, nil, 0)
	require.NoError(t, err)
	assert.Zero(t, sys.Outputs()["activation"])
}

func TestHangingMassJacobian(t *testing.T) {
	for _, rigid := range []bool{true, false} {
		sys := NewHangingMass(newMuscle(t, rigid), 50)
		x := dynamo.State{0.33, 0}
		u := dynamo.Control{0.8}

		got, err := sys.Jacobian(x, u, 0)
		require.NoError(t, err)
		want := numericJacobian(t, sys, x, u)
		assert.True(t, mat.EqualApprox(got, want, 1e-3), "rigid=%t\ngot  %v\nwant %v",
			rigid, mat.Formatted(got), mat.Formatted(want))
	}
}

func TestAntagonistBalanced(t *testing.T) {
	sys := NewAntagonistPair(newMuscle(t, false), newMuscle(t, false), 2, DefaultGap)

	dx, err := sys.Derive(dynamo.State{DefaultGap / 2, 0}, dynamo.Control{0.6, 0.6}, 0)
	require.NoError(t, err)
	assert.InDelta(t, 0, dx[1], 1e-9)
	assert.InDelta(t, 0, sys.Outputs()["net_force"], 1e-9)
	assert.Greater(t, sys.Outputs()["agonist_force"], 0.0)
}

func TestAntagonistRestoring(t *testing.T) {
	sys := NewAntagonistPair(newMuscle(t, true), newMuscle(t, true), 2, DefaultGap)
	u := dynamo.Control{0.5, 0.5}

	// stretching the agonist shortens the antagonist; the pair pulls back
	dx, err := sys.Derive(dynamo.State{DefaultGap/2 + 0.01, 0}, u, 0)
	require.NoError(t, err)
	assert.Less(t, dx[1], 0.0)

	jac, err := sys.Jacobian(dynamo.State{DefaultGap / 2, 0.1}, u, 0)
	require.NoError(t, err)
	want := numericJacobian(t, sys, dynamo.State{DefaultGap / 2, 0.1}, u)
	assert.True(t, mat.EqualApprox(jac, want, 1e-3))
}

func TestDimensionMismatch(t *testing.T) {
	tests := []struct {
		name string
		sys  interface {
			dynamo.System
			dynamo.Linearizable
		}
	}{
		{"hanging", NewHangingMass(newMuscle(t, true), 50)},
		{"antagonist", NewAntagonistPair(newMuscle(t, true), newMuscle(t, true), 2, DefaultGap)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, x := range []dynamo.State{{0.3}, {0.3, 0, 0}, nil} {
				_, err := tt.sys.Derive(x, dynamo.Control{0.5, 0.5}, 0)
				assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch, "derive %v", x)
				_, err = tt.sys.Jacobian(x, dynamo.Control{0.5, 0.5}, 0)
				assert.ErrorIs(t, err, dynamo.ErrDimensionMismatch, "jacobian %v", x)
			}
		})
	}
}

func TestSetParam(t *testing.T) {
	sys := NewAntagonistPair(newMuscle(t, true), newMuscle(t, true), 2, DefaultGap)

	require.NoError(t, sys.SetParam("agonist_max_iso_force", 1500))
	assert.Equal(t, 1500.0, sys.Agonist.Params().MaxIsoForce)
	assert.Equal(t, 1000.0, sys.Antagonist.Params().MaxIsoForce)
	assert.Equal(t, 1500.0, sys.GetParams()["agonist_max_iso_force"])

	require.NoError(t, sys.SetParam("gap", 0.7))
	assert.Equal(t, 0.7, sys.Gap)

	tests := []struct {
		name  string
		param string
		value float64
		want  error
	}{
		{"unknown", "stiffness", 1, dynamo.ErrUnknownParam},
		{"unprefixed muscle", "max_iso_force", 1, dynamo.ErrUnknownParam},
		{"negative mass", "mass", -1, dynamo.ErrParameterBounds},
		{"invalid muscle", "antagonist_opt_fiber_length", 0, muscle.ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, sys.SetParam(tt.param, tt.value), tt.want)
		})
	}

	hang := NewHangingMass(newMuscle(t, true), 50)
	require.NoError(t, hang.SetParam("fiber_damping", 0.1))
	assert.Equal(t, 0.1, hang.Muscle.Params().FiberDamping)
	assert.InDelta(t, 50*DefaultGravity, hang.Weight(), 1e-12)
}
