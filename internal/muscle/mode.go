package muscle

// evaluation is everything one force query produces.
type evaluation struct {
	length       float64
	force        float64
	dForceDL     float64
	dForceDRate  float64
	muscleLength float64
	muscleVel    float64
	residual     float64
	iterations   int
}

// tendonModel is the per-mode behavior of a muscle. Only the elastic model
// carries history.
type tendonModel interface {
	evaluate(m *Muscle, l, ldot, a float64) (evaluation, error)
	passive(m *Muscle, l, ldot, a float64) (float64, error)
	advance(t0, t1 float64)
	persistent() bool
}

type rigidTendon struct{}

func (rigidTendon) evaluate(m *Muscle, l, ldot, a float64) (evaluation, error) {
	return m.rigidEvaluate(l, ldot, a), nil
}

func (rigidTendon) passive(m *Muscle, l, ldot, a float64) (float64, error) {
	lm := l - m.params.TendonSlackLength
	if lm <= 0 {
		return 0, nil
	}
	return m.params.MaxIsoForce * m.passiveFiberForce(lm, ldot), nil
}

func (rigidTendon) advance(t0, t1 float64) {}
func (rigidTendon) persistent() bool       { return false }

// rigidEvaluate is the closed form with an inextensible tendon: the muscle
// takes up everything beyond the slack length and moves with the rate.
func (m *Muscle) rigidEvaluate(l, ldot, a float64) evaluation {
	lm := l - m.params.TendonSlackLength
	if lm <= 0 {
		return evaluation{length: l}
	}
	fmax := m.params.MaxIsoForce
	fs := m.fiberForce(lm, ldot, a)
	return evaluation{
		length:       l,
		force:        fmax * fs.force,
		dForceDL:     fmax * fs.dlm,
		dForceDRate:  fmax * fs.dvm,
		muscleLength: lm,
		muscleVel:    ldot,
	}
}

type elasticTendon struct {
	st EquilibriumState
}

func newElasticTendon() *elasticTendon {
	return &elasticTendon{}
}

func (e *elasticTendon) evaluate(m *Muscle, l, ldot, a float64) (evaluation, error) {
	if m.params.TendonSlackLength <= 0 {
		return m.rigidEvaluate(l, ldot, a), nil
	}
	if err := e.solve(m, l, ldot, a); err != nil {
		return evaluation{}, err
	}
	st := &e.st
	fmax := m.params.MaxIsoForce
	ft, _ := m.tendonForce(l - st.MuscleLength)
	dl, drate := st.tangent(fmax)
	return evaluation{
		length:       l,
		force:        fmax * ft,
		dForceDL:     dl,
		dForceDRate:  drate,
		muscleLength: st.MuscleLength,
		muscleVel:    st.MuscleVel,
		residual:     st.Residual,
		iterations:   st.Iterations,
	}, nil
}

func (e *elasticTendon) passive(m *Muscle, l, ldot, a float64) (float64, error) {
	if m.params.TendonSlackLength <= 0 {
		return rigidTendon{}.passive(m, l, ldot, a)
	}
	if err := e.solve(m, l, ldot, a); err != nil {
		return 0, err
	}
	return m.params.MaxIsoForce * m.passiveFiberForce(e.st.MuscleLength, e.st.MuscleVel), nil
}

func (e *elasticTendon) advance(t0, t1 float64) { e.st.advance(t0, t1) }
func (e *elasticTendon) persistent() bool       { return true }

// solve brings the current slots up to date for (l, ldot, a). Repeated
// queries with the same inputs reuse the cached solution; different inputs
// re-solve against the same previous slots.
func (e *elasticTendon) solve(m *Muscle, l, ldot, a float64) error {
	st := &e.st
	if st.matches(l, ldot, a) {
		return nil
	}
	if st.H > 0 && !st.HistoryValid {
		if err := e.bootstrap(m, l, ldot, a); err != nil {
			return err
		}
	}

	var (
		sol solution
		vel velocityModel
		err error
	)
	switch {
	case st.H <= 0 && st.SteadyValid:
		vel = m.constantVelocity(st.SteadyRatio*ldot, st.SteadyRatio)
		sol, err = m.findMuscleLength(l, ldot, a, vel)
	case st.H <= 0:
		sol, vel, err = m.steadySolve(l, ldot, a)
		if err == nil {
			st.SteadyRatio, st.SteadyValid = vel.dRate, true
		}
	default:
		vel = e.velocity(m, l, ldot)
		sol, err = m.findMuscleLength(l, ldot, a, vel)
	}
	if err != nil {
		st.LengthValid = false
		return err
	}

	vm := vel.at(sol.lm)
	fs := m.fiberForce(sol.lm, vm, a)
	_, dt := m.tendonForce(l - sol.lm)

	st.Length = l
	st.Rate = ldot
	st.Activation = a
	st.MuscleLength = sol.lm
	st.MuscleVel = vm
	st.Dm, st.Dv, st.Dt = fs.dlm, fs.dvm, dt
	st.Residual = sol.residual
	st.Iterations = sol.iterations
	st.vel = vel
	st.bound = sol.bound
	st.LengthValid = true
	return nil
}

func (e *elasticTendon) velocity(m *Muscle, l, ldot float64) velocityModel {
	st := &e.st
	h := st.H
	switch m.cfg.Velocity {
	case VelocityKnown:
		lt := st.LengthPrev - st.MuscleLengthPrev
		c := m.rateRatio(st.MuscleLengthPrev, lt, st.DmPrev, st.DtPrev)
		return m.constantVelocity(c*ldot, c)
	case VelocityFromTendon:
		ltPrev := st.LengthPrev - st.MuscleLengthPrev
		return velocityModel{base: ldot, ref: l - ltPrev, dLm: 1 / h, dL: -1 / h, dRate: 1}
	default:
		return velocityModel{ref: st.MuscleLengthPrev, dLm: 1 / h}
	}
}

// bootstrap seeds the previous slots when a step has been taken but no
// equilibrium was recorded for it: the previous length is extrapolated
// back along the rate and solved with the steady fixed point.
func (e *elasticTendon) bootstrap(m *Muscle, l, ldot, a float64) error {
	st := &e.st
	lPrev := l - ldot*st.H
	sol, vel, err := m.steadySolve(lPrev, ldot, a)
	if err != nil {
		return err
	}
	fs := m.fiberForce(sol.lm, vel.at(sol.lm), a)
	_, dt := m.tendonForce(lPrev - sol.lm)

	st.LengthPrev = lPrev
	st.MuscleLengthPrev = sol.lm
	st.DmPrev, st.DtPrev = fs.dlm, dt
	st.HistoryValid = true

	m.log.Debug("bootstrapped muscle history",
		"length", lPrev, "muscle_length", sol.lm, "step", st.H)
	return nil
}
