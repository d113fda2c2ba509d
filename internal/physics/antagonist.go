package physics

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/musclesim/internal/dynamo"
	"github.com/san-kum/musclesim/internal/muscle"
)

const (
	agonistPrefix    = "agonist_"
	antagonistPrefix = "antagonist_"
)

// AntagonistPair is a mass on a frictionless track between two actuators
// anchored a fixed gap apart. The state is the agonist length and its rate,
// [x, v]; the antagonist spans the rest of the gap and lengthens at -v:
//
//	m*xddot = -F1(x, v, a1) + F2(gap-x, -v, a2)
type AntagonistPair struct {
	Agonist    *muscle.Muscle
	Antagonist *muscle.Muscle
	Mass       float64
	Gap        float64

	out dynamo.Outputs
}

func NewAntagonistPair(agonist, antagonist *muscle.Muscle, mass, gap float64) *AntagonistPair {
	return &AntagonistPair{
		Agonist:    agonist,
		Antagonist: antagonist,
		Mass:       mass,
		Gap:        gap,
		out:        make(dynamo.Outputs),
	}
}

func (p *AntagonistPair) StateDim() int   { return 2 }
func (p *AntagonistPair) ControlDim() int { return 2 }

func (p *AntagonistPair) Derive(x dynamo.State, u dynamo.Control, t float64) (dynamo.State, error) {
	if len(x) != 2 {
		return nil, fmt.Errorf("%w: antagonist pair needs 2 states, got %d", dynamo.ErrDimensionMismatch, len(x))
	}
	a1, a2 := activation(u, 0), activation(u, 1)

	f1, err := p.Agonist.ComputeForce(x[0], x[1], a1)
	if err != nil {
		return nil, fmt.Errorf("agonist: %w", err)
	}
	f2, err := p.Antagonist.ComputeForce(p.Gap-x[0], -x[1], a2)
	if err != nil {
		return nil, fmt.Errorf("antagonist: %w", err)
	}

	probe(p.out, agonistPrefix, p.Agonist, f1, a1)
	probe(p.out, antagonistPrefix, p.Antagonist, f2, a2)
	p.out["net_force"] = f2 - f1
	return dynamo.State{x[1], (f2 - f1) / p.Mass}, nil
}

func (p *AntagonistPair) Jacobian(x dynamo.State, u dynamo.Control, t float64) (*mat.Dense, error) {
	if len(x) != 2 {
		return nil, fmt.Errorf("%w: antagonist pair needs 2 states, got %d", dynamo.ErrDimensionMismatch, len(x))
	}
	_, dl1, dv1, err := p.Agonist.ComputeTangent(x[0], x[1], activation(u, 0))
	if err != nil {
		return nil, fmt.Errorf("agonist: %w", err)
	}
	_, dl2, dv2, err := p.Antagonist.ComputeTangent(p.Gap-x[0], -x[1], activation(u, 1))
	if err != nil {
		return nil, fmt.Errorf("antagonist: %w", err)
	}
	return mat.NewDense(2, 2, []float64{
		0, 1,
		-(dl1 + dl2) / p.Mass, -(dv1 + dv2) / p.Mass,
	}), nil
}

func (p *AntagonistPair) AdvanceState(t0, t1 float64) {
	p.Agonist.AdvanceState(t0, t1)
	p.Antagonist.AdvanceState(t0, t1)
}

func (p *AntagonistPair) Outputs() dynamo.Outputs { return p.out }

func (p *AntagonistPair) GetParams() map[string]float64 {
	params := map[string]float64{
		"mass": p.Mass,
		"gap":  p.Gap,
	}
	muscleParams(params, agonistPrefix, p.Agonist)
	muscleParams(params, antagonistPrefix, p.Antagonist)
	return params
}

// SetParam accepts "mass", "gap" and muscle parameters prefixed with
// "agonist_" or "antagonist_".
func (p *AntagonistPair) SetParam(name string, value float64) error {
	switch name {
	case "mass":
		if err := positive(name, value); err != nil {
			return err
		}
		p.Mass = value
		return nil
	case "gap":
		if err := positive(name, value); err != nil {
			return err
		}
		p.Gap = value
		return nil
	}

	var (
		ok  bool
		err error
	)
	if rest, found := strings.CutPrefix(name, antagonistPrefix); found {
		ok, err = setMuscleParam(p.Antagonist, rest, value)
	} else if rest, found := strings.CutPrefix(name, agonistPrefix); found {
		ok, err = setMuscleParam(p.Agonist, rest, value)
	}
	if !ok {
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParam, name)
	}
	return err
}
