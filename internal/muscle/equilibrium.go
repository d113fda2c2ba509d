package muscle

import (
	"math"

	"github.com/san-kum/musclesim/internal/roots"
)

// velocityModel gives the muscle velocity at a trial muscle length,
// vm = base + (lm - ref)*dLm, together with the partials of vm with respect
// to the external length and lengthening rate.
type velocityModel struct {
	base  float64
	ref   float64
	dLm   float64
	dL    float64
	dRate float64
}

func (v velocityModel) at(lm float64) float64 {
	if v.dLm == 0 {
		return v.base
	}
	return v.base + (lm-v.ref)*v.dLm
}

// constantVelocity fixes vm for the whole solve. ratio is dvm/dldot.
func (m *Muscle) constantVelocity(vm, ratio float64) velocityModel {
	vmax := m.params.OptFiberLength * m.params.MaxContractionVelocity
	if math.Abs(vm/vmax) < ResidualTolerance {
		vm = 0
	}
	return velocityModel{base: vm, dRate: ratio}
}

// rateRatio estimates dvm/dldot from the stiffness split between fiber and
// tendon at a solved equilibrium.
func (m *Muscle) rateRatio(lm, lt, dm, dt float64) float64 {
	T := m.params.TendonSlackLength
	switch {
	case lm == 0:
		return 0
	case lt <= T+T*1e-8 || dm+dt == 0:
		return 1
	default:
		return dt / (dm + dt)
	}
}

type bound int

const (
	boundNone bound = iota
	// boundZero pins the muscle length at zero.
	boundZero
	// boundSlack pins the tendon at its slack length.
	boundSlack
)

type solution struct {
	lm         float64
	bound      bound
	residual   float64
	iterations int
}

// balance is the normalized force imbalance between fiber and tendon as a
// function of muscle length. It is increasing wherever the muscle is stable.
type balance struct {
	m   *Muscle
	l   float64
	a   float64
	vel velocityModel
}

func (b balance) Eval(lm float64) (float64, float64) {
	fs := b.m.fiberForce(lm, b.vel.at(lm), b.a)
	ft, dft := b.m.tendonForce(b.l - lm)
	return fs.force - ft, fs.dlm + fs.dvm*b.vel.dLm + dft
}

// findMuscleLength solves the balance for lm on [0, l-T].
func (m *Muscle) findMuscleLength(l, ldot, a float64, vel velocityModel) (solution, error) {
	f := balance{m: m, l: l, a: a, vel: vel}
	T := m.params.TendonSlackLength

	g0, _ := f.Eval(0)
	if g0 >= -ResidualTolerance || l <= T {
		return solution{lm: 0, bound: boundZero, residual: g0}, nil
	}

	hi := l - T
	gt, _ := f.Eval(hi)
	if gt < -ResidualTolerance {
		m.log.Debug("tendon slack at equilibrium", "length", l, "activation", a)
		return solution{lm: hi, bound: boundSlack, residual: gt}, nil
	}

	s := roots.Settings{
		XTol:    1e-8 * (T + m.params.OptFiberLength),
		FTol:    ResidualTolerance,
		MaxIter: m.cfg.MaxIterations,
	}
	res, err := roots.Solve(m.cfg.Method, f, 0, g0, hi, gt, s)
	if err != nil {
		cerr := &ConvergenceError{
			Length:     l,
			Rate:       ldot,
			Activation: a,
			Iterations: res.Iterations,
			Residual:   res.Residual,
			Bracket:    [2]float64{0, hi},
			Wrapped:    err,
		}
		m.log.Warn("equilibrium solve failed",
			"length", l, "rate", ldot, "activation", a,
			"method", m.cfg.Method, "iterations", res.Iterations, "residual", res.Residual)
		return solution{}, cerr
	}

	lm, r := polish(f, res.Root, 0, hi)
	return solution{lm: lm, residual: r, iterations: res.Iterations}, nil
}

// polish takes up to polishSteps Newton steps from a converged root while
// they stay inside [lo, hi] and reduce the residual.
func polish(f roots.Func, x, lo, hi float64) (float64, float64) {
	g, dg := f.Eval(x)
	for k := 0; k < polishSteps && g != 0 && dg != 0; k++ {
		next := x - g/dg
		if next < lo || next > hi {
			break
		}
		gn, dgn := f.Eval(next)
		if math.Abs(gn) >= math.Abs(g) {
			break
		}
		x, g, dg = next, gn, dgn
	}
	return x, g
}

// steadySolve runs the constant-velocity fixed point used when there is no
// previous step to difference against: solve with vm = 0, estimate dvm/dldot
// from the partials at that solution, re-solve with vm = ratio*ldot, and so
// on for bootstrapPasses solves.
func (m *Muscle) steadySolve(l, ldot, a float64) (solution, velocityModel, error) {
	var (
		sol   solution
		vel   velocityModel
		vm    float64
		ratio float64
		err   error
	)
	for k := 0; k < bootstrapPasses; k++ {
		vel = m.constantVelocity(vm, ratio)
		sol, err = m.findMuscleLength(l, ldot, a, vel)
		if err != nil {
			return solution{}, velocityModel{}, err
		}
		if k < bootstrapPasses-1 {
			fs := m.fiberForce(sol.lm, vel.at(sol.lm), a)
			_, dt := m.tendonForce(l - sol.lm)
			ratio = m.rateRatio(sol.lm, l-sol.lm, fs.dlm, dt)
			vm = ratio * ldot
		}
	}
	return sol, vel, nil
}
