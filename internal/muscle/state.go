package muscle

// EquilibriumState is the history an elastic-tendon muscle carries between
// calls. The current slots describe the last solve in this step, the
// previous slots the equilibrium accepted at the end of the last step.
type EquilibriumState struct {
	Length           float64
	LengthPrev       float64
	MuscleLength     float64
	MuscleLengthPrev float64
	MuscleVel        float64

	// Partials of the normalized fiber and tendon forces at the last solve.
	Dm, Dv, Dt float64
	// Dm and Dt at the end of the previous step.
	DmPrev, DtPrev float64

	// H is the size of the last step, zero until the first AdvanceState.
	H float64

	// SteadyRatio is dvm/dldot fixed by the first steady solve of a step.
	// Later solves in the same step reuse it, so vm stays linear in ldot.
	SteadyRatio float64
	SteadyValid bool

	Rate       float64
	Activation float64
	Residual   float64
	Iterations int

	LengthValid  bool
	HistoryValid bool

	vel   velocityModel
	bound bound
}

// matches reports whether the cached solve is valid for these inputs.
func (st *EquilibriumState) matches(l, ldot, a float64) bool {
	return st.LengthValid && l == st.Length && ldot == st.Rate && a == st.Activation
}

// tangent is the implicit derivative of the tendon force with respect to
// the external length and rate, from the partials cached at the last solve.
func (st *EquilibriumState) tangent(fmax float64) (dl, drate float64) {
	switch st.bound {
	case boundZero:
		return fmax * st.Dt, 0
	case boundSlack:
		return 0, 0
	}
	v := st.vel
	denom := st.Dm + st.Dv*v.dLm + st.Dt
	if denom == 0 {
		return 0, 0
	}
	dl = fmax * st.Dt * (st.Dm + st.Dv*(v.dLm+v.dL)) / denom
	drate = fmax * st.Dt * st.Dv * v.dRate / denom
	return dl, drate
}

func (st *EquilibriumState) advance(t0, t1 float64) {
	st.H = t1 - t0
	if st.LengthValid {
		st.LengthPrev = st.Length
		st.MuscleLengthPrev = st.MuscleLength
		st.DmPrev, st.DtPrev = st.Dm, st.Dt
		st.HistoryValid = true
	} else {
		st.HistoryValid = false
	}
	st.LengthValid = false
	st.SteadyValid = false
}

func (st *EquilibriumState) encode(buf *DataBuffer) {
	buf.DPut(st.Length)
	buf.DPut(st.MuscleLength)
	buf.DPut(st.MuscleLengthPrev)
	buf.DPut(st.Dt)
	buf.DPut(st.Dm)
	buf.DPut(st.H)
	buf.ZPutBool(st.HistoryValid)
	buf.ZPutBool(st.LengthValid)

	buf.DPut(st.LengthPrev)
	buf.DPut(st.MuscleVel)
	buf.DPut(st.Dv)
	buf.DPut(st.DmPrev)
	buf.DPut(st.DtPrev)
	buf.DPut(st.Rate)
	buf.DPut(st.Activation)
	buf.DPut(st.Residual)
	buf.DPut(st.vel.base)
	buf.DPut(st.vel.ref)
	buf.DPut(st.vel.dLm)
	buf.DPut(st.vel.dL)
	buf.DPut(st.vel.dRate)
	buf.DPut(st.SteadyRatio)
	buf.ZPut(st.Iterations)
	buf.ZPut(int(st.bound))
	buf.ZPutBool(st.SteadyValid)
}

func (st *EquilibriumState) decode(buf *DataBuffer) error {
	var s EquilibriumState
	s.Length = buf.DGet()
	s.MuscleLength = buf.DGet()
	s.MuscleLengthPrev = buf.DGet()
	s.Dt = buf.DGet()
	s.Dm = buf.DGet()
	s.H = buf.DGet()
	s.HistoryValid = buf.ZGetBool()
	s.LengthValid = buf.ZGetBool()

	s.LengthPrev = buf.DGet()
	s.MuscleVel = buf.DGet()
	s.Dv = buf.DGet()
	s.DmPrev = buf.DGet()
	s.DtPrev = buf.DGet()
	s.Rate = buf.DGet()
	s.Activation = buf.DGet()
	s.Residual = buf.DGet()
	s.vel.base = buf.DGet()
	s.vel.ref = buf.DGet()
	s.vel.dLm = buf.DGet()
	s.vel.dL = buf.DGet()
	s.vel.dRate = buf.DGet()
	s.SteadyRatio = buf.DGet()
	s.Iterations = buf.ZGet()
	s.bound = bound(buf.ZGet())
	s.SteadyValid = buf.ZGetBool()

	if err := buf.Err(); err != nil {
		return err
	}
	*st = s
	return nil
}
