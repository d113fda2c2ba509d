package integrators

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/musclesim/internal/dynamo"
)

// BackwardEuler takes one linearized implicit step,
//
//	(I - dt*J) dx = dt*f(x)
//
// with J the Jacobian at the start of the step. Systems that do not
// implement dynamo.Linearizable are rejected.
type BackwardEuler struct {
	lhs *mat.Dense
}

func NewBackwardEuler() *BackwardEuler {
	return &BackwardEuler{}
}

func (b *BackwardEuler) Step(sys dynamo.System, x dynamo.State, u dynamo.Control, t, dt float64) (dynamo.State, error) {
	lin, ok := sys.(dynamo.Linearizable)
	if !ok {
		return nil, fmt.Errorf("backward euler: %T does not provide a jacobian", sys)
	}

	n := len(x)
	f, err := sys.Derive(x, u, t)
	if err != nil {
		return nil, err
	}
	jac, err := lin.Jacobian(x, u, t)
	if err != nil {
		return nil, err
	}

	if b.lhs == nil || b.lhs.RawMatrix().Rows != n {
		b.lhs = mat.NewDense(n, n, nil)
	}
	b.lhs.Scale(-dt, jac)
	for i := 0; i < n; i++ {
		b.lhs.Set(i, i, b.lhs.At(i, i)+1)
	}

	rhs := mat.NewVecDense(n, nil)
	for i := 0; i < n; i++ {
		rhs.SetVec(i, dt*f[i])
	}

	var delta mat.VecDense
	if err := delta.SolveVec(b.lhs, rhs); err != nil {
		var cond mat.Condition
		if !errors.As(err, &cond) {
			return nil, fmt.Errorf("backward euler: %w", err)
		}
	}

	result := make(dynamo.State, n)
	for i := 0; i < n; i++ {
		result[i] = x[i] + delta.AtVec(i)
	}
	return result, nil
}
